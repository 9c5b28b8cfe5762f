package testutil

// Small catalogs in each supported format. Together FmtHCL and IoYAML
// declare Write twice, which makes a bare Write ambiguous.
const (
	FmtHCL = `
module "fmt" {
  introductory = "I deal with formatting"

  capability "Display" {
    implementor_facts = ["I can be printed with {}."]
    example           = <<EOT
println!("{}", value);
EOT
    signature = "pub trait Display"
  }

  capability "Write" {
    implementor_facts = ["I can be the target of write!."]
    example           = "write!(s, \"hi\")"
    signature         = "pub trait Write"
  }
}
`

	IoYAML = `
io:
  introductory: I deal with input/output
  capabilities:
    Write:
      implementor_facts:
        - I am a sink for bytes.
      trait_facts:
        - I need flush to be called to empty buffers.
      example: |
        out.write_all(b"hi")?;
      signature: pub trait Write
`
)
