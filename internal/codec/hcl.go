package codec

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/hashicorp/hcl/v2/hclwrite"
	"github.com/vk/rustdex/internal/catalog"
	"github.com/vk/rustdex/internal/ctxlog"
	"github.com/zclconf/go-cty/cty"
)

// hclRoot is the top level of a catalog file. There is no remain body, so
// unknown blocks and attributes are decode errors.
type hclRoot struct {
	Modules []*hclModule `hcl:"module,block"`
}

// hclModule represents a `module "<id>"` block.
type hclModule struct {
	ID           string           `hcl:"id,label"`
	Introductory string           `hcl:"introductory,optional"`
	Capabilities []*hclCapability `hcl:"capability,block"`
}

// hclCapability represents a `capability "<name>"` block. Every attribute is
// optional at this level; catalog.Validate reports what is missing.
type hclCapability struct {
	Name             string   `hcl:"name,label"`
	ImplementorFacts []string `hcl:"implementor_facts,optional"`
	TraitFacts       []string `hcl:"trait_facts,optional"`
	Example          string   `hcl:"example,optional"`
	Signature        string   `hcl:"signature,optional"`
}

// HCL is the codec for HCL native syntax catalogs.
type HCL struct{}

// NewHCL creates the HCL codec.
func NewHCL() *HCL { return &HCL{} }

func (*HCL) Name() string         { return "hcl" }
func (*HCL) Extensions() []string { return []string{".hcl"} }

// Decode parses an HCL catalog. Blocks are returned in source order.
func (*HCL) Decode(ctx context.Context, data []byte, filename string) (*catalog.RawCatalog, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Decoding HCL catalog.", "file", filename, "bytes", len(data))

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(data, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file %s: %w", filename, diags)
	}

	var root hclRoot
	diags = gohcl.DecodeBody(file.Body, nil, &root)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL file %s: %w", filename, diags)
	}

	raw := &catalog.RawCatalog{Modules: make([]catalog.RawModule, 0, len(root.Modules))}
	for _, m := range root.Modules {
		rm := catalog.RawModule{
			ID:           m.ID,
			Introductory: m.Introductory,
			Capabilities: make([]catalog.Capability, 0, len(m.Capabilities)),
		}
		for _, c := range m.Capabilities {
			rm.Capabilities = append(rm.Capabilities, catalog.Capability{
				Name:             c.Name,
				ImplementorFacts: c.ImplementorFacts,
				TraitFacts:       c.TraitFacts,
				Example:          c.Example,
				Signature:        c.Signature,
			})
		}
		raw.Modules = append(raw.Modules, rm)
	}

	logger.Debug("HCL catalog decoded.", "file", filename, "modules", len(raw.Modules))
	return raw, nil
}

// Encode writes raw as HCL. Strings are emitted as quoted literals, which
// hclwrite escapes, so any string survives a decode of the output.
func (*HCL) Encode(ctx context.Context, raw *catalog.RawCatalog) ([]byte, error) {
	if raw == nil {
		return nil, fmt.Errorf("cannot encode a nil catalog")
	}

	f := hclwrite.NewEmptyFile()
	root := f.Body()
	for i, m := range raw.Modules {
		if i > 0 {
			root.AppendNewline()
		}
		mb := root.AppendNewBlock("module", []string{m.ID}).Body()
		mb.SetAttributeValue("introductory", cty.StringVal(m.Introductory))

		for _, c := range m.Capabilities {
			mb.AppendNewline()
			cb := mb.AppendNewBlock("capability", []string{c.Name}).Body()
			cb.SetAttributeValue("implementor_facts", stringList(c.ImplementorFacts))
			cb.SetAttributeValue("trait_facts", stringList(c.TraitFacts))
			cb.SetAttributeValue("example", cty.StringVal(c.Example))
			cb.SetAttributeValue("signature", cty.StringVal(c.Signature))
		}
	}

	ctxlog.FromContext(ctx).Debug("HCL catalog encoded.", "modules", len(raw.Modules))
	return f.Bytes(), nil
}

func stringList(items []string) cty.Value {
	if len(items) == 0 {
		return cty.ListValEmpty(cty.String)
	}
	vals := make([]cty.Value, len(items))
	for i, s := range items {
		vals[i] = cty.StringVal(s)
	}
	return cty.ListVal(vals)
}
