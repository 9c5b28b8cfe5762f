// Package lookup answers capability queries independently of the transport
// that carried them. HTTP, socket.io and NATS all speak Query and Reply.
package lookup

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/vk/rustdex/internal/catalog"
	"github.com/vk/rustdex/internal/qname"
)

// Status classifies a Reply.
type Status string

const (
	StatusOK        Status = "ok"
	StatusNotFound  Status = "not_found"
	StatusAmbiguous Status = "ambiguous"
	StatusInvalid   Status = "invalid"
)

// Query asks for a capability. When Module is set, Ref is the exact
// capability name and is not parsed.
type Query struct {
	Ref    string `json:"ref"`
	Module string `json:"module,omitempty"`
}

// Record is the wire form of a catalog.Capability.
type Record struct {
	Name             string   `json:"name"`
	ImplementorFacts []string `json:"implementor_facts"`
	TraitFacts       []string `json:"trait_facts"`
	Example          string   `json:"example"`
	Signature        string   `json:"signature"`
}

// NewRecord converts c to its wire form. Fact lists are never null.
func NewRecord(c catalog.Capability) Record {
	return Record{
		Name:             c.Name,
		ImplementorFacts: nonNil(c.ImplementorFacts),
		TraitFacts:       nonNil(c.TraitFacts),
		Example:          c.Example,
		Signature:        c.Signature,
	}
}

// Reply is the outcome of a Query.
type Reply struct {
	Query      Query    `json:"query"`
	Status     Status   `json:"status"`
	Module     string   `json:"module,omitempty"`
	Capability *Record  `json:"capability,omitempty"`
	Candidates []string `json:"candidates,omitempty"`
	Error      string   `json:"error,omitempty"`
}

// Answer resolves q against reg.
func Answer(reg *catalog.Registry, q Query) Reply {
	reply := Reply{Query: q}

	var (
		ref qname.Ref
		err error
	)
	if q.Module != "" {
		ref, err = qname.Exact(q.Module, q.Ref)
	} else {
		ref, err = qname.Parse(q.Ref)
	}
	if err != nil {
		reply.Status = StatusInvalid
		reply.Error = err.Error()
		return reply
	}

	c, err := reg.Resolve(ref.Name, ref.Module)
	if err != nil {
		reply.Error = err.Error()
		var amb *catalog.AmbiguousError
		switch {
		case errors.As(err, &amb):
			reply.Status = StatusAmbiguous
			reply.Candidates = amb.Candidates
		case errors.Is(err, catalog.ErrNotFound):
			reply.Status = StatusNotFound
		default:
			reply.Status = StatusInvalid
		}
		return reply
	}

	rec := NewRecord(c)
	reply.Status = StatusOK
	reply.Capability = &rec
	reply.Module = ref.Module
	if reply.Module == "" {
		// A bare name resolved, so exactly one module declares it.
		reply.Module = reg.Candidates(ref.Name)[0]
	}
	return reply
}

// DecodeQuery reads a query from a JSON object, a JSON string, or a plain
// reference such as `io::Write`.
func DecodeQuery(payload []byte) (Query, error) {
	trimmed := bytes.TrimSpace(payload)
	if len(trimmed) == 0 {
		return Query{}, fmt.Errorf("empty query")
	}

	switch trimmed[0] {
	case '{':
		var q Query
		dec := json.NewDecoder(bytes.NewReader(trimmed))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&q); err != nil {
			return Query{}, fmt.Errorf("failed to decode query: %w", err)
		}
		return q, nil
	case '"':
		var ref string
		if err := json.Unmarshal(trimmed, &ref); err != nil {
			return Query{}, fmt.Errorf("failed to decode query: %w", err)
		}
		return Query{Ref: ref}, nil
	default:
		return Query{Ref: string(trimmed)}, nil
	}
}

// Encode renders r as JSON.
func (r Reply) Encode() []byte {
	out, err := json.Marshal(r)
	if err != nil {
		// Reply holds only strings and slices of strings.
		panic(fmt.Sprintf("lookup: failed to encode reply: %v", err))
	}
	return out
}

func nonNil(in []string) []string {
	if in == nil {
		return []string{}
	}
	return in
}

// ModuleView is the wire form of a catalog.Module: its id, introductory
// line and capability names in declaration order.
type ModuleView struct {
	ID           string   `json:"id"`
	Introductory string   `json:"introductory"`
	Capabilities []string `json:"capabilities"`
}

// NewModuleView converts m to its wire form.
func NewModuleView(m *catalog.Module) ModuleView {
	return ModuleView{ID: m.ID(), Introductory: m.Introductory(), Capabilities: nonNil(m.Names())}
}
