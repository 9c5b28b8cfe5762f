package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/vk/rustdex/internal/catalog"
	"github.com/vk/rustdex/internal/codec"
	"github.com/vk/rustdex/internal/ctxlog"
	"github.com/vk/rustdex/internal/lookup"
	"github.com/vk/rustdex/internal/metrics"
)

var exportContentTypes = map[string]string{
	"hcl":     "text/plain; charset=utf-8",
	"yaml":    "application/yaml",
	"msgpack": "application/msgpack",
}

type errorResponse struct {
	Error string `json:"error"`
}

type modulesResponse struct {
	Modules []string `json:"modules"`
}

type capabilityResponse struct {
	Module     string        `json:"module"`
	Capability lookup.Record `json:"capability"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, "OK")
}

func (s *Server) handleUnknown(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusNotFound, errorResponse{Error: fmt.Sprintf("no route for %s %s", r.Method, r.URL.Path)})
}

func (s *Server) handleModules(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, modulesResponse{Modules: s.src.Registry().ListModules()})
}

func (s *Server) handleModule(w http.ResponseWriter, r *http.Request) {
	m, err := s.src.Registry().GetModule(r.PathValue("module"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, lookup.NewModuleView(m))
}

func (s *Server) handleCapability(w http.ResponseWriter, r *http.Request) {
	module := r.PathValue("module")
	c, err := s.src.Registry().Resolve(r.PathValue("name"), module)
	s.metrics.ObserveLookup(metrics.TransportHTTP, string(lookupStatus(err)))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, capabilityResponse{Module: module, Capability: lookup.NewRecord(c)})
}

// lookupStatus classifies a Resolve error the way lookup.Answer does.
func lookupStatus(err error) lookup.Status {
	switch {
	case err == nil:
		return lookup.StatusOK
	case errors.Is(err, catalog.ErrAmbiguous):
		return lookup.StatusAmbiguous
	case errors.Is(err, catalog.ErrNotFound):
		return lookup.StatusNotFound
	default:
		return lookup.StatusInvalid
	}
}

func (s *Server) handleLookup(w http.ResponseWriter, r *http.Request) {
	q := lookup.Query{
		Ref:    r.URL.Query().Get("ref"),
		Module: r.URL.Query().Get("module"),
	}
	reply := lookup.Answer(s.src.Registry(), q)
	s.metrics.ObserveLookup(metrics.TransportHTTP, string(reply.Status))

	status := http.StatusOK
	switch reply.Status {
	case lookup.StatusNotFound:
		status = http.StatusNotFound
	case lookup.StatusAmbiguous:
		status = http.StatusConflict
	case lookup.StatusInvalid:
		status = http.StatusBadRequest
	}
	writeJSON(w, r, status, reply)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = "hcl"
	}
	c, err := codec.ByName(format)
	if err != nil {
		writeJSON(w, r, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	out, err := c.Encode(r.Context(), s.src.Registry().Export())
	if err != nil {
		writeError(w, r, fmt.Errorf("failed to export catalog: %w", err))
		return
	}
	w.Header().Set("Content-Type", exportContentTypes[c.Name()])
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(out); err != nil {
		ctxlog.FromContext(r.Context()).Warn("Failed to write export.", "error", err)
	}
}

// writeError maps catalog errors to status codes.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, catalog.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, catalog.ErrAmbiguous):
		status = http.StatusConflict
	default:
		ctxlog.FromContext(r.Context()).Error("Request failed.", "error", err)
	}
	writeJSON(w, r, status, errorResponse{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		ctxlog.FromContext(r.Context()).Warn("Failed to write response.", "error", err)
	}
}
