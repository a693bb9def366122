package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/teamboard/internal/backend"
	"github.com/phrazzld/teamboard/internal/config"
	"github.com/phrazzld/teamboard/internal/domain"
	"github.com/phrazzld/teamboard/internal/domain/analytics"
	"github.com/phrazzld/teamboard/internal/platform/logger"
	"github.com/phrazzld/teamboard/internal/service/auth"
)

// AnalyticsService summarizes the board for the dashboard charts.
type AnalyticsService interface {
	Summary(ctx context.Context, s auth.Session) (*analytics.Summary, error)
}

type analyticsService struct {
	board     BoardService
	directory backend.DirectoryBackend
	limit     int
	now       func() time.Time
	logger    *slog.Logger
}

var _ AnalyticsService = (*analyticsService)(nil)

// NewAnalyticsService creates an AnalyticsService reading tasks from board.
func NewAnalyticsService(
	board BoardService,
	directory backend.DirectoryBackend,
	cfg config.BoardConfig,
	logger *slog.Logger,
) (AnalyticsService, error) {
	if board == nil {
		return nil, fmt.Errorf("board service cannot be nil")
	}
	if directory == nil {
		return nil, fmt.Errorf("directory backend cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &analyticsService{
		board:     board,
		directory: directory,
		limit:     cfg.WorkloadLimit,
		now:       time.Now,
		logger:    logger.With(slog.String("component", "analytics_service")),
	}, nil
}

func (a *analyticsService) Summary(ctx context.Context, s auth.Session) (*analytics.Summary, error) {
	tasks, err := a.board.Tasks(ctx, s)
	if err != nil {
		return nil, err
	}
	employees := a.scope(ctx, s)
	summary := analytics.Compute(s.Actor, tasks, employees, a.now(), a.limit)
	return &summary, nil
}

// scope returns the employees whose workload the actor may see: everyone for
// admins, the team for managers, nobody otherwise. Directory failures
// degrade to an empty breakdown.
func (a *analyticsService) scope(ctx context.Context, s auth.Session) []domain.Employee {
	var (
		list []domain.Employee
		err  error
	)
	switch {
	case s.Actor.Has(domain.RoleAdmin):
		list, err = a.directory.ListEmployees(ctx, s.Token)
	case s.Actor.Has(domain.RoleManager):
		list, err = a.directory.MyTeam(ctx, s.Token)
	default:
		return nil
	}
	if err != nil {
		logger.FromContextOrDefault(ctx, a.logger).Warn("workload scope unavailable",
			slog.String("employee_id", s.Actor.EmployeeID),
			slog.String("error", err.Error()))
		return nil
	}
	return list
}
