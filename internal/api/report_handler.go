package api

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/phrazzld/teamboard/internal/api/shared"
	"github.com/phrazzld/teamboard/internal/domain"
	"github.com/phrazzld/teamboard/internal/service"
	"github.com/phrazzld/teamboard/internal/store"
)

// ReportHandler serves the analytics summary and the audit trail.
type ReportHandler struct {
	analytics service.AnalyticsService
	audit     service.AuditService
	logger    *slog.Logger
}

// NewReportHandler creates a new ReportHandler.
func NewReportHandler(
	analytics service.AnalyticsService,
	audit service.AuditService,
	logger *slog.Logger,
) *ReportHandler {
	if logger == nil {
		// ALLOW-PANIC: constructor enforcing required dependency
		panic("logger cannot be nil for ReportHandler")
	}
	return &ReportHandler{
		analytics: analytics,
		audit:     audit,
		logger:    logger.With(slog.String("component", "report_handler")),
	}
}

// Analytics handles GET /api/analytics.
func (h *ReportHandler) Analytics(w http.ResponseWriter, r *http.Request) {
	s, ok := requireSession(w, r)
	if !ok {
		return
	}
	summary, err := h.analytics.Summary(r.Context(), s)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to compute analytics")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, summary)
}

// Audit handles GET /api/audit?entity_type=&entity_id=&performed_by=&limit=.
func (h *ReportHandler) Audit(w http.ResponseWriter, r *http.Request) {
	s, ok := requireSession(w, r)
	if !ok {
		return
	}
	limit, ok := queryInt(w, r, "limit", 0)
	if !ok {
		return
	}
	q := r.URL.Query()
	filter := store.AuditFilter{
		EntityType:  strings.ToUpper(strings.TrimSpace(q.Get("entity_type"))),
		EntityID:    q.Get("entity_id"),
		PerformedBy: q.Get("performed_by"),
		Limit:       limit,
	}

	entries, err := h.audit.List(r.Context(), s, filter)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to load audit log")
		return
	}
	if entries == nil {
		entries = []domain.AuditEntry{}
	}
	shared.RespondWithJSON(w, r, http.StatusOK, entries)
}

// Health handles GET /health.
func Health(w http.ResponseWriter, r *http.Request) {
	shared.RespondWithJSON(w, r, http.StatusOK, HealthResponse{Status: "ok", Time: time.Now().UTC()})
}
