package codec

import (
	"bytes"
	"context"
	"fmt"

	"github.com/vk/rustdex/internal/catalog"
	"github.com/vk/rustdex/internal/ctxlog"
	"github.com/vmihailenco/msgpack/v5"
)

// snapshotFormat marks a MessagePack payload as a catalog snapshot.
const snapshotFormat = "rustdex-catalog"

type packCatalog struct {
	Format  string       `msgpack:"format"`
	Modules []packModule `msgpack:"modules"`
}

type packModule struct {
	ID           string           `msgpack:"id"`
	Introductory string           `msgpack:"introductory"`
	Capabilities []packCapability `msgpack:"capabilities"`
}

type packCapability struct {
	Name             string   `msgpack:"name"`
	ImplementorFacts []string `msgpack:"implementor_facts"`
	TraitFacts       []string `msgpack:"trait_facts"`
	Example          string   `msgpack:"example"`
	Signature        string   `msgpack:"signature"`
}

// Msgpack is the codec for binary catalog snapshots. Modules and
// capabilities are stored as arrays, so order is part of the encoding.
type Msgpack struct{}

// NewMsgpack creates the MessagePack codec.
func NewMsgpack() *Msgpack { return &Msgpack{} }

func (*Msgpack) Name() string         { return "msgpack" }
func (*Msgpack) Extensions() []string { return []string{".msgpack", ".mpk"} }

// Decode reads a snapshot written by Encode.
func (*Msgpack) Decode(ctx context.Context, data []byte, filename string) (*catalog.RawCatalog, error) {
	var snap packCatalog
	dec := msgpack.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&snap); err != nil {
		return nil, fmt.Errorf("failed to decode msgpack file %s: %w", filename, err)
	}
	if snap.Format != snapshotFormat {
		return nil, fmt.Errorf("file %s is not a catalog snapshot (format %q)", filename, snap.Format)
	}

	raw := &catalog.RawCatalog{Modules: make([]catalog.RawModule, 0, len(snap.Modules))}
	for _, m := range snap.Modules {
		rm := catalog.RawModule{ID: m.ID, Introductory: m.Introductory}
		for _, c := range m.Capabilities {
			rm.Capabilities = append(rm.Capabilities, catalog.Capability(c))
		}
		raw.Modules = append(raw.Modules, rm)
	}

	ctxlog.FromContext(ctx).Debug("Msgpack catalog decoded.", "file", filename, "modules", len(raw.Modules))
	return raw, nil
}

// Encode writes raw as a snapshot.
func (*Msgpack) Encode(ctx context.Context, raw *catalog.RawCatalog) ([]byte, error) {
	if raw == nil {
		return nil, fmt.Errorf("cannot encode a nil catalog")
	}

	snap := packCatalog{Format: snapshotFormat, Modules: make([]packModule, 0, len(raw.Modules))}
	for _, m := range raw.Modules {
		pm := packModule{ID: m.ID, Introductory: m.Introductory}
		for _, c := range m.Capabilities {
			pm.Capabilities = append(pm.Capabilities, packCapability(c))
		}
		snap.Modules = append(snap.Modules, pm)
	}

	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	if err := enc.Encode(&snap); err != nil {
		return nil, fmt.Errorf("failed to encode msgpack catalog: %w", err)
	}

	ctxlog.FromContext(ctx).Debug("Msgpack catalog encoded.", "modules", len(raw.Modules), "bytes", buf.Len())
	return buf.Bytes(), nil
}
