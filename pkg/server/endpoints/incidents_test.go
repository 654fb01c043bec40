package endpoints

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/doodlesbykumbi/incidentd/pkg/config"
	"github.com/doodlesbykumbi/incidentd/pkg/model"
	"github.com/doodlesbykumbi/incidentd/pkg/schema"
	"github.com/doodlesbykumbi/incidentd/pkg/server/middleware"
	"github.com/doodlesbykumbi/incidentd/pkg/server/store"
)

var (
	reportedAt = time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)
	errStorage = &store.StorageError{Op: "test", Err: errors.New("database is locked")}
)

func diskFull() model.Incident {
	return model.Incident{
		ID:          1,
		Title:       "Disk full",
		Description: "root volume at 98%",
		Severity:    model.SeverityHigh,
		ReportedAt:  reportedAt,
	}
}

func TestListIncidents(t *testing.T) {
	t.Run("returns incidents in store order", func(t *testing.T) {
		ts := newMockServer(t, nil)
		older := diskFull()
		newer := model.Incident{ID: 2, Title: "Latency", Description: "p99 up", Severity: model.SeverityLow, ReportedAt: reportedAt.Add(time.Minute)}
		ts.incidents.On("ListIncidents", mock.Anything).Return([]model.Incident{newer, older}, nil)

		w := do(t, ts.Server, http.MethodGet, "/incidents", "")

		require.Equal(t, http.StatusOK, w.Code)
		got := decode[[]schema.Incident](t, w)
		require.Len(t, got, 2)
		assert.Equal(t, int64(2), got[0].ID)
		assert.Equal(t, int64(1), got[1].ID)
		assert.Equal(t, "2024-03-01T09:30:00.000000+00:00", got[1].ReportedAt)
	})

	t.Run("empty store yields an empty array", func(t *testing.T) {
		ts := newMockServer(t, nil)
		ts.incidents.On("ListIncidents", mock.Anything).Return([]model.Incident{}, nil)

		w := do(t, ts.Server, http.MethodGet, "/incidents", "")

		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `[]`, w.Body.String())
	})

	t.Run("storage failure", func(t *testing.T) {
		ts := newMockServer(t, nil)
		ts.incidents.On("ListIncidents", mock.Anything).Return(nil, errStorage)

		w := do(t, ts.Server, http.MethodGet, "/incidents", "")

		assertMessage(t, w, http.StatusInternalServerError, "Error retrieving incidents")
		assert.Contains(t, ts.appLog.String(), "database is locked")
		assert.NotContains(t, w.Body.String(), "database is locked")
	})
}

func TestCreateIncident(t *testing.T) {
	t.Run("persists and echoes the stored record", func(t *testing.T) {
		ts := newMockServer(t, nil)
		ts.incidents.On("CreateIncident", mock.Anything, mock.MatchedBy(func(inc *model.Incident) bool {
			return inc.ID == 0 &&
				inc.Title == "Disk full" &&
				inc.Description == "root volume at 98%" &&
				inc.Severity == model.SeverityHigh &&
				inc.ReportedAt.IsZero()
		})).Run(func(args mock.Arguments) {
			inc := args.Get(1).(*model.Incident)
			inc.ID = 1
			inc.ReportedAt = reportedAt
		}).Return(nil)

		w := do(t, ts.Server, http.MethodPost, "/incidents",
			`{"title":"Disk full","description":"root volume at 98%","severity":"High"}`)

		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		assert.JSONEq(t,
			`{"id":1,"title":"Disk full","description":"root volume at 98%","severity":"High","reported_at":"2024-03-01T09:30:00.000000+00:00"}`,
			w.Body.String())
		assert.Contains(t, ts.auditLog.String(), "created incident 1 (High)")
	})

	t.Run("client supplied id and reported_at are ignored", func(t *testing.T) {
		ts := newMockServer(t, nil)
		ts.incidents.On("CreateIncident", mock.Anything, mock.MatchedBy(func(inc *model.Incident) bool {
			return inc.ID == 0 && inc.ReportedAt.IsZero()
		})).Run(func(args mock.Arguments) {
			inc := args.Get(1).(*model.Incident)
			inc.ID = 5
			inc.ReportedAt = reportedAt
		}).Return(nil)

		w := do(t, ts.Server, http.MethodPost, "/incidents",
			`{"id":99,"reported_at":"1999-01-01T00:00:00+00:00","title":"t","description":"d","severity":"Low"}`)

		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		assert.Equal(t, int64(5), decode[schema.Incident](t, w).ID)
	})

	t.Run("validation failures are reported per field", func(t *testing.T) {
		ts := newMockServer(t, nil)

		w := do(t, ts.Server, http.MethodPost, "/incidents",
			`{"title":"","description":"x","severity":"Critical"}`)

		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.JSONEq(t,
			`{"title":["Shorter than minimum length 1."],"severity":["Must be one of: Low, Medium, High."]}`,
			w.Body.String())
		ts.incidents.AssertNotCalled(t, "CreateIncident", mock.Anything, mock.Anything)
		assert.Contains(t, ts.auditLog.String(), "tried to create an incident")
	})

	t.Run("non-object body", func(t *testing.T) {
		ts := newMockServer(t, nil)

		w := do(t, ts.Server, http.MethodPost, "/incidents", `["title"]`)

		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.JSONEq(t, `{"_schema":["Invalid input type."]}`, w.Body.String())
	})

	inputErrors := []struct {
		name    string
		body    string
		message string
	}{
		{"empty body", "", "No input data"},
		{"empty object", "{}", "No input data"},
		{"null", "null", "No input data"},
		{"malformed json", `{"title":`, "Invalid JSON body"},
	}
	for _, tt := range inputErrors {
		t.Run(tt.name, func(t *testing.T) {
			ts := newMockServer(t, nil)

			w := do(t, ts.Server, http.MethodPost, "/incidents", tt.body)

			assertMessage(t, w, http.StatusBadRequest, tt.message)
			ts.incidents.AssertNotCalled(t, "CreateIncident", mock.Anything, mock.Anything)
		})
	}

	t.Run("oversized body", func(t *testing.T) {
		ts := newMockServer(t, func(cfg *config.IncidentsConfig) { cfg.MaxRequestBytes = 64 })

		body := `{"title":"` + strings.Repeat("x", 100) + `","description":"d","severity":"Low"}`
		w := do(t, ts.Server, http.MethodPost, "/incidents", body)

		assertMessage(t, w, http.StatusRequestEntityTooLarge, "Request body too large")
		ts.incidents.AssertNotCalled(t, "CreateIncident", mock.Anything, mock.Anything)
	})

	t.Run("storage failure", func(t *testing.T) {
		ts := newMockServer(t, nil)
		ts.incidents.On("CreateIncident", mock.Anything, mock.Anything).Return(errStorage)

		w := do(t, ts.Server, http.MethodPost, "/incidents",
			`{"title":"t","description":"d","severity":"Medium"}`)

		assertMessage(t, w, http.StatusInternalServerError, "Error saving incident")
		assert.Contains(t, ts.appLog.String(), "failed to save incident")
	})
}

func TestGetIncident(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		ts := newMockServer(t, nil)
		inc := diskFull()
		ts.incidents.On("GetIncident", mock.Anything, int64(1)).Return(&inc, nil)

		w := do(t, ts.Server, http.MethodGet, "/incidents/1", "")

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, schema.Dump(inc), decode[schema.Incident](t, w))
		assert.Contains(t, ts.auditLog.String(), "fetched incident 1")
	})

	t.Run("not found", func(t *testing.T) {
		ts := newMockServer(t, nil)
		ts.incidents.On("GetIncident", mock.Anything, int64(42)).Return(nil, store.ErrIncidentNotFound)

		w := do(t, ts.Server, http.MethodGet, "/incidents/42", "")

		assertMessage(t, w, http.StatusNotFound, "Incident not found")
	})

	t.Run("id beyond int64 range", func(t *testing.T) {
		ts := newMockServer(t, nil)

		w := do(t, ts.Server, http.MethodGet, "/incidents/99999999999999999999", "")

		assertMessage(t, w, http.StatusNotFound, "Incident not found")
		ts.incidents.AssertNotCalled(t, "GetIncident", mock.Anything, mock.Anything)
	})

	t.Run("non-numeric id falls through to the router", func(t *testing.T) {
		ts := newMockServer(t, nil)

		w := do(t, ts.Server, http.MethodGet, "/incidents/abc", "")

		assertMessage(t, w, http.StatusNotFound, "Not found")
	})

	t.Run("storage failure", func(t *testing.T) {
		ts := newMockServer(t, nil)
		ts.incidents.On("GetIncident", mock.Anything, int64(1)).Return(nil, errStorage)

		w := do(t, ts.Server, http.MethodGet, "/incidents/1", "")

		assertMessage(t, w, http.StatusInternalServerError, "Error retrieving details")
	})
}

func TestDeleteIncident(t *testing.T) {
	t.Run("deleted", func(t *testing.T) {
		ts := newMockServer(t, nil)
		inc := diskFull()
		ts.incidents.On("GetIncident", mock.Anything, int64(1)).Return(&inc, nil)
		ts.incidents.On("DeleteIncident", mock.Anything, int64(1)).Return(nil)

		w := do(t, ts.Server, http.MethodDelete, "/incidents/1", "")

		require.Equal(t, http.StatusNoContent, w.Code)
		assert.Empty(t, w.Body.String())
		assert.Contains(t, ts.auditLog.String(), "deleted incident 1")
	})

	t.Run("not found", func(t *testing.T) {
		ts := newMockServer(t, nil)
		ts.incidents.On("GetIncident", mock.Anything, int64(7)).Return(nil, store.ErrIncidentNotFound)

		w := do(t, ts.Server, http.MethodDelete, "/incidents/7", "")

		assertMessage(t, w, http.StatusNotFound, "Incident not found")
		ts.incidents.AssertNotCalled(t, "DeleteIncident", mock.Anything, mock.Anything)
	})

	t.Run("concurrent delete wins the race", func(t *testing.T) {
		ts := newMockServer(t, nil)
		inc := diskFull()
		ts.incidents.On("GetIncident", mock.Anything, int64(1)).Return(&inc, nil)
		ts.incidents.On("DeleteIncident", mock.Anything, int64(1)).Return(store.ErrIncidentNotFound)

		w := do(t, ts.Server, http.MethodDelete, "/incidents/1", "")

		assertMessage(t, w, http.StatusNotFound, "Incident not found")
	})

	t.Run("lookup failure", func(t *testing.T) {
		ts := newMockServer(t, nil)
		ts.incidents.On("GetIncident", mock.Anything, int64(1)).Return(nil, errStorage)

		w := do(t, ts.Server, http.MethodDelete, "/incidents/1", "")

		assertMessage(t, w, http.StatusInternalServerError, "Error deleting incident")
	})

	t.Run("delete failure", func(t *testing.T) {
		ts := newMockServer(t, nil)
		inc := diskFull()
		ts.incidents.On("GetIncident", mock.Anything, int64(1)).Return(&inc, nil)
		ts.incidents.On("DeleteIncident", mock.Anything, int64(1)).Return(errStorage)

		w := do(t, ts.Server, http.MethodDelete, "/incidents/1", "")

		assertMessage(t, w, http.StatusInternalServerError, "Error deleting incident")
		assert.Contains(t, ts.appLog.String(), "failed to delete incident")
	})
}

func TestRouting(t *testing.T) {
	t.Run("unknown route", func(t *testing.T) {
		ts := newMockServer(t, nil)

		w := do(t, ts.Server, http.MethodGet, "/nope", "")

		assertMessage(t, w, http.StatusNotFound, "Not found")
		assert.NotEmpty(t, w.Header().Get(middleware.RequestIDHeader))
	})

	t.Run("method not allowed", func(t *testing.T) {
		ts := newMockServer(t, nil)

		for _, tc := range []struct{ method, path string }{
			{http.MethodPut, "/incidents/1"},
			{http.MethodPatch, "/incidents/1"},
			{http.MethodDelete, "/incidents"},
		} {
			w := do(t, ts.Server, tc.method, tc.path, "")
			assertMessage(t, w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	t.Run("request id is echoed", func(t *testing.T) {
		ts := newMockServer(t, nil)
		ts.incidents.On("ListIncidents", mock.Anything).Return([]model.Incident{}, nil)

		req := newRequest(http.MethodGet, "/incidents")
		req.Header.Set(middleware.RequestIDHeader, "abc-123")
		w := serve(ts.Server, req)

		assert.Equal(t, "abc-123", w.Header().Get(middleware.RequestIDHeader))
	})

	t.Run("request context reaches the store", func(t *testing.T) {
		ts := newMockServer(t, nil)
		ts.incidents.On("ListIncidents", mock.MatchedBy(func(ctx context.Context) bool {
			_, ok := middleware.FromContext(ctx)
			return ok
		})).Return([]model.Incident{}, nil)

		w := do(t, ts.Server, http.MethodGet, "/incidents", "")
		require.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("handler panic is recovered", func(t *testing.T) {
		ts := newMockServer(t, nil)
		ts.incidents.On("ListIncidents", mock.Anything).Run(func(mock.Arguments) {
			panic("boom")
		}).Return(nil, nil)

		w := do(t, ts.Server, http.MethodGet, "/incidents", "")
		assert.Equal(t, http.StatusInternalServerError, w.Code)

		// The server keeps serving afterwards
		w = do(t, ts.Server, http.MethodGet, "/nope", "")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
