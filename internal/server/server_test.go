package server

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/rustdex/internal/catalog"
	"github.com/vk/rustdex/internal/codec"
	"github.com/vk/rustdex/internal/lookup"
	"github.com/vk/rustdex/internal/metrics"
)

type staticSource struct{ reg *catalog.Registry }

func (s staticSource) Registry() *catalog.Registry { return s.reg }

func newTestServer(t *testing.T) *Server {
	t.Helper()
	reg, err := catalog.Load(&catalog.RawCatalog{Modules: []catalog.RawModule{
		{
			ID:           "fmt",
			Introductory: "I deal with formatting",
			Capabilities: []catalog.Capability{
				{Name: "Display", ImplementorFacts: []string{"I print for users."}, Example: "x", Signature: "pub trait Display"},
				{Name: "Write", ImplementorFacts: []string{"I take strings."}, Example: "x", Signature: "pub trait Write"},
			},
		},
		{
			ID:           "io",
			Introductory: "I deal with input/output",
			Capabilities: []catalog.Capability{
				{Name: "Write", TraitFacts: []string{"I take bytes."}, Example: "y", Signature: "pub trait Write"},
			},
		},
	}})
	require.NoError(t, err)
	return New(staticSource{reg: reg}, metrics.New(), nil)
}

func do(t *testing.T, s *Server, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestServer_StatusCodes(t *testing.T) {
	s := newTestServer(t)

	testCases := []struct {
		name   string
		target string
		status int
	}{
		{name: "health", target: "/health", status: http.StatusOK},
		{name: "modules", target: "/v1/modules", status: http.StatusOK},
		{name: "module", target: "/v1/modules/io", status: http.StatusOK},
		{name: "unknown module", target: "/v1/modules/net", status: http.StatusNotFound},
		{name: "capability", target: "/v1/modules/io/capabilities/Write", status: http.StatusOK},
		{name: "unknown capability", target: "/v1/modules/io/capabilities/Display", status: http.StatusNotFound},
		{name: "lookup ok", target: "/v1/lookup?ref=Display", status: http.StatusOK},
		{name: "lookup qualified", target: "/v1/lookup?ref=io::Write", status: http.StatusOK},
		{name: "lookup module param", target: "/v1/lookup?ref=Write&module=fmt", status: http.StatusOK},
		{name: "lookup ambiguous", target: "/v1/lookup?ref=Write", status: http.StatusConflict},
		{name: "lookup not found", target: "/v1/lookup?ref=Iterator", status: http.StatusNotFound},
		{name: "lookup invalid", target: "/v1/lookup", status: http.StatusBadRequest},
		{name: "export default", target: "/v1/export", status: http.StatusOK},
		{name: "export unknown format", target: "/v1/export?format=toml", status: http.StatusBadRequest},
		{name: "metrics", target: "/metrics", status: http.StatusOK},
		{name: "unknown route", target: "/v2/anything", status: http.StatusNotFound},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rec := do(t, s, tc.target)

			assert.Equal(t, tc.status, rec.Code, rec.Body.String())
			_, err := uuid.Parse(rec.Header().Get(RequestIDHeader))
			assert.NoError(t, err, "every response carries a request id")
		})
	}
}

func TestServer_RequestIDIsEchoed(t *testing.T) {
	s := newTestServer(t)
	id := uuid.NewString()

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(RequestIDHeader, id)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	assert.Equal(t, id, rec.Header().Get(RequestIDHeader))
}

func TestServer_ModuleBodies(t *testing.T) {
	s := newTestServer(t)

	var modules modulesResponse
	require.NoError(t, json.Unmarshal(do(t, s, "/v1/modules").Body.Bytes(), &modules))
	assert.Equal(t, []string{"fmt", "io"}, modules.Modules)

	var view lookup.ModuleView
	require.NoError(t, json.Unmarshal(do(t, s, "/v1/modules/fmt").Body.Bytes(), &view))
	assert.Equal(t, lookup.ModuleView{
		ID:           "fmt",
		Introductory: "I deal with formatting",
		Capabilities: []string{"Display", "Write"},
	}, view)

	var c capabilityResponse
	require.NoError(t, json.Unmarshal(do(t, s, "/v1/modules/io/capabilities/Write").Body.Bytes(), &c))
	assert.Equal(t, "io", c.Module)
	assert.Equal(t, []string{"I take bytes."}, c.Capability.TraitFacts)
	assert.Equal(t, []string{}, c.Capability.ImplementorFacts)
}

func TestServer_LookupAmbiguousBody(t *testing.T) {
	rec := do(t, newTestServer(t), "/v1/lookup?ref=Write")

	var reply lookup.Reply
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &reply))
	assert.Equal(t, lookup.StatusAmbiguous, reply.Status)
	assert.Equal(t, []string{"fmt", "io"}, reply.Candidates)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
}

func TestServer_ExportRoundTrips(t *testing.T) {
	s := newTestServer(t)

	for _, format := range []string{"hcl", "yaml", "msgpack"} {
		t.Run(format, func(t *testing.T) {
			rec := do(t, s, "/v1/export?format="+format)
			require.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, exportContentTypes[format], rec.Header().Get("Content-Type"))

			c, err := codec.ByName(format)
			require.NoError(t, err)
			raw, err := c.Decode(context.Background(), rec.Body.Bytes(), "export."+format)
			require.NoError(t, err)
			reg, err := catalog.Load(raw)
			require.NoError(t, err)
			assert.Equal(t, []string{"fmt", "io"}, reg.ListModules())
			assert.Equal(t, 3, reg.Len())
		})
	}
}

func TestServer_MetricsCountLookups(t *testing.T) {
	s := newTestServer(t)
	do(t, s, "/v1/lookup?ref=Display")
	do(t, s, "/v1/lookup?ref=Write")

	body, err := io.ReadAll(do(t, s, "/metrics").Body)
	require.NoError(t, err)
	text := string(body)
	assert.True(t, strings.Contains(text, `rustdex_lookups_total{status="ok",transport="http"} 1`), text)
	assert.True(t, strings.Contains(text, `rustdex_lookups_total{status="ambiguous",transport="http"} 1`), text)
}

func TestServer_MetricsCountCapabilityRoute(t *testing.T) {
	s := newTestServer(t)
	do(t, s, "/v1/modules/fmt/capabilities/Display")
	do(t, s, "/v1/lookup?ref=io::Write")
	do(t, s, "/v1/modules/io/capabilities/Display")

	body, err := io.ReadAll(do(t, s, "/metrics").Body)
	require.NoError(t, err)
	text := string(body)
	assert.True(t, strings.Contains(text, `rustdex_lookups_total{status="ok",transport="http"} 2`), text)
	assert.True(t, strings.Contains(text, `rustdex_lookups_total{status="not_found",transport="http"} 1`), text)
}

func TestServer_ServeStopsOnCancel(t *testing.T) {
	// --- Arrange ---
	s := newTestServer(t)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, ln) }()

	// --- Act ---
	var resp *http.Response
	require.Eventually(t, func() bool {
		resp, err = http.Get("http://" + ln.Addr().String() + "/health")
		return err == nil
	}, 2*time.Second, 10*time.Millisecond)
	resp.Body.Close()
	cancel()

	// --- Assert ---
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop after cancellation")
	}
}
