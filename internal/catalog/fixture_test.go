package catalog

// sampleCatalog returns a small valid catalog in which "Write" is declared by
// both "fmt" and "io".
func sampleCatalog() *RawCatalog {
	return &RawCatalog{Modules: []RawModule{
		{
			ID:           "fmt",
			Introductory: "I deal with String formatting",
			Capabilities: []Capability{
				{
					Name:             "Display",
					ImplementorFacts: []string{"I can be printed with {}."},
					TraitFacts:       []string{"I can't be derived."},
					Example:          "println!(\"{}\", x);",
					Signature:        "pub trait Display { fn fmt(&self, f: &mut Formatter<'_>) -> Result; }",
				},
				{
					Name:             "Write",
					ImplementorFacts: []string{"I can be written formatted text into."},
					TraitFacts:       []string{"I only accept valid UTF-8."},
					Example:          "write!(s, \"{}\", 1)?;",
					Signature:        "pub trait Write { fn write_str(&mut self, s: &str) -> Result; }",
				},
			},
		},
		{
			ID:           "io",
			Introductory: "I deal with input/output",
			Capabilities: []Capability{
				{
					Name:             "Read",
					ImplementorFacts: []string{"Bytes can be read from me."},
					Example:          "f.read(&mut buf)?;",
					Signature:        "pub trait Read { fn read(&mut self, buf: &mut [u8]) -> Result<usize>; }",
				},
				{
					Name:             "Write",
					ImplementorFacts: []string{"Bytes can be written into me."},
					TraitFacts:       []string{"I am byte oriented."},
					Example:          "f.write_all(b\"hi\")?;",
					Signature:        "pub trait Write { fn write(&mut self, buf: &[u8]) -> Result<usize>; }",
				},
			},
		},
		{
			ID:           "marker",
			Introductory: "We are primitive traits",
			Capabilities: []Capability{
				{
					Name:       "Copy",
					TraitFacts: []string{"I can be derived."},
					Example:    "#[derive(Clone, Copy)] struct P;",
					Signature:  "pub trait Copy: Clone { }",
				},
			},
		},
	}}
}

func mustLoad(raw *RawCatalog) *Registry {
	r, err := Load(raw)
	if err != nil {
		panic(err)
	}
	return r
}
