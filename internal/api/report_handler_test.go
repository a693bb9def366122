package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/phrazzld/teamboard/internal/domain"
	"github.com/phrazzld/teamboard/internal/domain/analytics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalytics(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/api/analytics", s.login(t, 1), nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var summary analytics.Summary
	decode(t, rec, &summary)
	assert.Equal(t, 4, summary.Totals.Tasks)
	assert.Equal(t, 1, summary.Totals.Completed)
	assert.Equal(t, 1, summary.ByStatus.Review)
	assert.Equal(t, 2, summary.ByPriority.High)
	assert.NotEmpty(t, summary.Workload)

	rec = s.do(t, http.MethodGet, "/api/analytics", s.login(t, 3), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &summary)
	assert.Equal(t, 2, summary.Totals.Tasks)
	assert.Empty(t, summary.Workload, "developers get no team breakdown")
}

func TestAudit(t *testing.T) {
	s := newTestServer(t)
	admin := s.login(t, 1)

	rec := s.do(t, http.MethodPost, "/api/tasks/3/move", admin, MoveTaskRequest{Status: "IN_PROGRESS"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = s.do(t, http.MethodGet, "/api/audit?entity_type=task&entity_id=TASK003", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var entries []domain.AuditEntry
	decode(t, rec, &entries)
	require.Len(t, entries, 1)
	assert.Equal(t, domain.ActionMoveTask, entries[0].Action)
	assert.Equal(t, "3", entries[0].EntityID)
	assert.Equal(t, "1", entries[0].PerformedBy)

	rec = s.do(t, http.MethodGet, "/api/audit?entity_type=user&performed_by=EMP001", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &entries)
	require.NotEmpty(t, entries)
	assert.Equal(t, domain.ActionLogin, entries[0].Action)

	rec = s.do(t, http.MethodGet, "/api/audit", s.login(t, 2), nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/audit?limit=abc", admin, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var health HealthResponse
	decode(t, rec, &health)
	assert.Equal(t, "ok", health.Status)
	assert.NotEmpty(t, rec.Header().Get("X-Trace-ID"))

	rec = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Trace-ID", "client-trace-1")
	s.router.ServeHTTP(rec, req)
	assert.Equal(t, "client-trace-1", rec.Header().Get("X-Trace-ID"))
}
