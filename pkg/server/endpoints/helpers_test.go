package endpoints

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/doodlesbykumbi/incidentd/pkg/audit"
	"github.com/doodlesbykumbi/incidentd/pkg/config"
	"github.com/doodlesbykumbi/incidentd/pkg/server"
)

// testServer bundles a server with the doubles and sinks behind it.
type testServer struct {
	*server.Server
	incidents *MockIncidentsStore
	health    *MockHealthStore
	auditLog  *bytes.Buffer
	appLog    *bytes.Buffer
}

// newMockServer builds a server whose stores are testify mocks.
// configure, when non-nil, runs before the endpoints are registered.
func newMockServer(t *testing.T, configure func(*config.IncidentsConfig)) *testServer {
	t.Helper()

	cfg := config.Default()
	if configure != nil {
		configure(cfg)
	}

	ts := &testServer{
		incidents: NewMockIncidentsStore(),
		health:    NewMockHealthStore(),
		auditLog:  &bytes.Buffer{},
		appLog:    &bytes.Buffer{},
	}
	logger := slog.New(slog.NewTextHandler(ts.appLog, nil))
	ts.Server = server.NewServer(nil, cfg, logger, audit.NewLogger(ts.auditLog, nil, logger), "test")
	ts.AccessLog = io.Discard
	ts.IncidentsStore = ts.incidents
	ts.HealthStore = ts.health
	RegisterAll(ts.Server)

	t.Cleanup(func() {
		ts.incidents.AssertExpectations(t)
		ts.health.AssertExpectations(t)
	})
	return ts
}

func do(t *testing.T, s *server.Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	return serve(s, req)
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), "body: %s", w.Body.String())
	return v
}

func assertMessage(t *testing.T, w *httptest.ResponseRecorder, code int, message string) {
	t.Helper()
	require.Equal(t, code, w.Code, "body: %s", w.Body.String())
	require.Equal(t, "application/json", w.Header().Get("Content-Type"))
	require.Equal(t, MessageResponse{Message: message}, decode[MessageResponse](t, w))
}


func newRequest(method, path string) *http.Request {
	return httptest.NewRequest(method, path, nil)
}

func serve(s *server.Server, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}
