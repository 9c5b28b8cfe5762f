package codec

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/vk/rustdex/internal/catalog"
	"github.com/vk/rustdex/internal/ctxlog"
	"gopkg.in/yaml.v3"
)

// yamlCapability is the body of one capability entry. Field order here is
// the order keys are written in.
type yamlCapability struct {
	ImplementorFacts []string `yaml:"implementor_facts"`
	TraitFacts       []string `yaml:"trait_facts"`
	Example          string   `yaml:"example"`
	Signature        string   `yaml:"signature"`
}

var (
	yamlModuleKeys     = []string{"introductory", "capabilities"}
	yamlCapabilityKeys = []string{"implementor_facts", "trait_facts", "example", "signature"}
)

// YAML is the codec for YAML catalogs. Decoding walks yaml.Node trees
// instead of Go maps because map iteration would lose declaration order.
type YAML struct{}

// NewYAML creates the YAML codec.
func NewYAML() *YAML { return &YAML{} }

func (*YAML) Name() string         { return "yaml" }
func (*YAML) Extensions() []string { return []string{".yaml", ".yml"} }

// Decode parses a YAML catalog.
func (*YAML) Decode(ctx context.Context, data []byte, filename string) (*catalog.RawCatalog, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Decoding YAML catalog.", "file", filename, "bytes", len(data))

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse YAML file %s: %w", filename, err)
	}

	raw := &catalog.RawCatalog{}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		// An empty document is syntactically fine; validation rejects it.
		return raw, nil
	}

	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, yamlErrorf(filename, root, "top level must map module ids to modules")
	}

	for i := 0; i+1 < len(root.Content); i += 2 {
		m, err := decodeYAMLModule(filename, root.Content[i], root.Content[i+1])
		if err != nil {
			return nil, err
		}
		raw.Modules = append(raw.Modules, m)
	}

	logger.Debug("YAML catalog decoded.", "file", filename, "modules", len(raw.Modules))
	return raw, nil
}

func decodeYAMLModule(filename string, key, val *yaml.Node) (catalog.RawModule, error) {
	var m catalog.RawModule
	if key.Kind != yaml.ScalarNode {
		return m, yamlErrorf(filename, key, "module id must be a string")
	}
	m.ID = key.Value
	if val.Kind != yaml.MappingNode {
		return m, yamlErrorf(filename, val, "module %q must be a mapping", m.ID)
	}
	if err := checkYAMLKeys(filename, val, yamlModuleKeys); err != nil {
		return m, err
	}

	for i := 0; i+1 < len(val.Content); i += 2 {
		k, v := val.Content[i], val.Content[i+1]
		switch k.Value {
		case "introductory":
			if err := v.Decode(&m.Introductory); err != nil {
				return m, yamlErrorf(filename, v, "module %q introductory: %v", m.ID, err)
			}
		case "capabilities":
			caps, err := decodeYAMLCapabilities(filename, m.ID, v)
			if err != nil {
				return m, err
			}
			m.Capabilities = caps
		}
	}
	return m, nil
}

func decodeYAMLCapabilities(filename, moduleID string, node *yaml.Node) ([]catalog.Capability, error) {
	if node.Tag == "!!null" {
		return nil, nil
	}
	if node.Kind != yaml.MappingNode {
		return nil, yamlErrorf(filename, node, "module %q capabilities must be a mapping", moduleID)
	}

	caps := make([]catalog.Capability, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		k, v := node.Content[i], node.Content[i+1]
		if k.Kind != yaml.ScalarNode {
			return nil, yamlErrorf(filename, k, "capability name in module %q must be a string", moduleID)
		}
		if v.Kind != yaml.MappingNode {
			return nil, yamlErrorf(filename, v, "capability %q in module %q must be a mapping", k.Value, moduleID)
		}
		if err := checkYAMLKeys(filename, v, yamlCapabilityKeys); err != nil {
			return nil, err
		}

		var body yamlCapability
		if err := v.Decode(&body); err != nil {
			return nil, yamlErrorf(filename, v, "capability %q in module %q: %v", k.Value, moduleID, err)
		}
		caps = append(caps, catalog.Capability{
			Name:             k.Value,
			ImplementorFacts: body.ImplementorFacts,
			TraitFacts:       body.TraitFacts,
			Example:          body.Example,
			Signature:        body.Signature,
		})
	}
	return caps, nil
}

// checkYAMLKeys rejects unknown and repeated keys. A repeated key would
// otherwise let the last value win silently.
func checkYAMLKeys(filename string, mapping *yaml.Node, allowed []string) error {
	seen := make(map[string]bool, len(allowed))
	for i := 0; i < len(mapping.Content); i += 2 {
		k := mapping.Content[i]
		if seen[k.Value] {
			return yamlErrorf(filename, k, "duplicate key %q", k.Value)
		}
		seen[k.Value] = true
		known := false
		for _, a := range allowed {
			if k.Value == a {
				known = true
				break
			}
		}
		if !known {
			return yamlErrorf(filename, k, "unexpected key %q (expected one of: %s)", k.Value, strings.Join(allowed, ", "))
		}
	}
	return nil
}

func yamlErrorf(filename string, node *yaml.Node, format string, args ...any) error {
	return fmt.Errorf("%s:%d:%d: %s", filename, node.Line, node.Column, fmt.Sprintf(format, args...))
}

// Encode writes raw as YAML, multi-line strings as literal blocks where YAML
// allows it.
func (*YAML) Encode(ctx context.Context, raw *catalog.RawCatalog) ([]byte, error) {
	if raw == nil {
		return nil, fmt.Errorf("cannot encode a nil catalog")
	}

	root := &yaml.Node{Kind: yaml.MappingNode}
	for _, m := range raw.Modules {
		caps := &yaml.Node{Kind: yaml.MappingNode}
		for _, c := range m.Capabilities {
			caps.Content = append(caps.Content, yamlString(c.Name), &yaml.Node{
				Kind: yaml.MappingNode,
				Content: []*yaml.Node{
					yamlString("implementor_facts"), yamlStrings(c.ImplementorFacts),
					yamlString("trait_facts"), yamlStrings(c.TraitFacts),
					yamlString("example"), yamlString(c.Example),
					yamlString("signature"), yamlString(c.Signature),
				},
			})
		}
		root.Content = append(root.Content, yamlString(m.ID), &yaml.Node{
			Kind: yaml.MappingNode,
			Content: []*yaml.Node{
				yamlString("introductory"), yamlString(m.Introductory),
				yamlString("capabilities"), caps,
			},
		})
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&yaml.Node{Kind: yaml.DocumentNode, Content: []*yaml.Node{root}}); err != nil {
		return nil, fmt.Errorf("failed to encode YAML catalog: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("failed to encode YAML catalog: %w", err)
	}

	ctxlog.FromContext(ctx).Debug("YAML catalog encoded.", "modules", len(raw.Modules))
	return buf.Bytes(), nil
}

func yamlString(s string) *yaml.Node {
	n := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: s}
	if strings.Contains(s, "\n") {
		n.Style = yaml.LiteralStyle
	}
	return n
}

func yamlStrings(items []string) *yaml.Node {
	seq := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
	if len(items) == 0 {
		seq.Style = yaml.FlowStyle
	}
	for _, s := range items {
		seq.Content = append(seq.Content, yamlString(s))
	}
	return seq
}
