package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/phrazzld/teamboard/internal/backend"
	"github.com/phrazzld/teamboard/internal/config"
	"github.com/phrazzld/teamboard/internal/domain"
	"github.com/phrazzld/teamboard/internal/events"
	"github.com/phrazzld/teamboard/internal/platform/logger"
	"github.com/phrazzld/teamboard/internal/service/auth"
)

// DirectoryService manages employees and their sign-in accounts.
type DirectoryService interface {
	ListEmployees(ctx context.Context, s auth.Session) ([]domain.Employee, error)
	// MyTeam lists the employees reporting to the signed-in manager.
	MyTeam(ctx context.Context, s auth.Session) ([]domain.Employee, error)
	GetEmployee(ctx context.Context, s auth.Session, id string) (*domain.Employee, error)
	CreateEmployee(ctx context.Context, s auth.Session, e domain.Employee) (*domain.Employee, error)
	UpdateEmployee(ctx context.Context, s auth.Session, id string, u backend.EmployeeUpdate) (*domain.Employee, error)
	DeleteEmployee(ctx context.Context, s auth.Session, id string) error

	ListUsers(ctx context.Context, s auth.Session) ([]domain.User, error)
	CreateUser(ctx context.Context, s auth.Session, u backend.NewUser) (*domain.User, error)
	UpdateUser(ctx context.Context, s auth.Session, id string, u backend.UserUpdate) (*domain.User, error)
	DeleteUser(ctx context.Context, s auth.Session, id string) error

	// Me returns the signed-in user with their employee record, when the
	// directory has one.
	Me(ctx context.Context, s auth.Session) (*domain.User, error)
}

type directoryService struct {
	backend         backend.DirectoryBackend
	emitter         events.EventEmitter
	emailDomain     string
	defaultPassword string
	logger          *slog.Logger
}

var _ DirectoryService = (*directoryService)(nil)

// NewDirectoryService creates a DirectoryService.
func NewDirectoryService(
	b backend.DirectoryBackend,
	emitter events.EventEmitter,
	cfg config.BoardConfig,
	logger *slog.Logger,
) (DirectoryService, error) {
	if b == nil {
		return nil, fmt.Errorf("backend cannot be nil")
	}
	if emitter == nil {
		return nil, fmt.Errorf("event emitter cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &directoryService{
		backend:         b,
		emitter:         emitter,
		emailDomain:     cfg.EmailDomain,
		defaultPassword: cfg.DefaultPassword,
		logger:          logger.With(slog.String("component", "directory_service")),
	}, nil
}

func requireRole(s auth.Session, roles ...domain.Role) error {
	if !s.Actor.HasAny(roles...) {
		return ErrForbidden
	}
	return nil
}

func (d *directoryService) ListEmployees(ctx context.Context, s auth.Session) ([]domain.Employee, error) {
	if err := requireRole(s, domain.RoleAdmin); err != nil {
		return nil, err
	}
	list, err := d.backend.ListEmployees(ctx, s.Token)
	if err != nil {
		return nil, NewServiceError("directory", "ListEmployees", "failed to list employees", err)
	}
	return list, nil
}

func (d *directoryService) MyTeam(ctx context.Context, s auth.Session) ([]domain.Employee, error) {
	if err := requireRole(s, domain.RoleManager); err != nil {
		return nil, err
	}
	team, err := d.backend.MyTeam(ctx, s.Token)
	if err != nil {
		return nil, NewServiceError("directory", "MyTeam", "failed to list team", err)
	}
	return team, nil
}

func (d *directoryService) GetEmployee(ctx context.Context, s auth.Session, id string) (*domain.Employee, error) {
	if _, err := domain.NormalizeID(id); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	e, err := d.backend.GetEmployee(ctx, s.Token, domain.CanonicalID(id))
	if err != nil {
		return nil, NewServiceError("directory", "GetEmployee", "failed to get employee", err)
	}
	return e, nil
}

func (d *directoryService) CreateEmployee(
	ctx context.Context,
	s auth.Session,
	e domain.Employee,
) (*domain.Employee, error) {
	log := logger.FromContextOrDefault(ctx, d.logger)

	if err := requireRole(s, domain.RoleAdmin); err != nil {
		return nil, err
	}
	e.Name = strings.TrimSpace(e.Name)
	e.Email = strings.TrimSpace(e.Email)
	e.Designation = strings.TrimSpace(e.Designation)
	e.ManagerID = domain.NormalizeManagerID(e.ManagerID)
	if err := e.Validate(d.emailDomain); err != nil {
		return nil, err
	}
	if e.ManagerID != "" {
		if _, err := domain.NormalizeID(e.ManagerID); err != nil {
			return nil, fmt.Errorf("%w: manager: %v", domain.ErrValidation, err)
		}
		e.ManagerID = domain.CanonicalID(e.ManagerID)
	}

	created, err := d.backend.CreateEmployee(ctx, s.Token, e)
	if err != nil {
		log.Error("failed to create employee",
			slog.String("email", e.Email),
			slog.String("error", err.Error()))
		return nil, NewServiceError("directory", "CreateEmployee", "failed to create employee", err)
	}
	log.Info("employee created", slog.String("employee_id", created.ID))
	d.emit(ctx, events.NewEntityEvent(events.EmployeeCreated, s.Actor, domain.EntityEmployee, created.ID))
	return created, nil
}

func (d *directoryService) UpdateEmployee(
	ctx context.Context,
	s auth.Session,
	id string,
	u backend.EmployeeUpdate,
) (*domain.Employee, error) {
	log := logger.FromContextOrDefault(ctx, d.logger)

	if err := requireRole(s, domain.RoleAdmin); err != nil {
		return nil, err
	}
	if u.Name == nil && u.Designation == nil && u.ManagerID == nil {
		return nil, fmt.Errorf("%w: nothing to update", domain.ErrValidation)
	}
	if u.Name != nil {
		v := strings.TrimSpace(*u.Name)
		if v == "" {
			return nil, domain.ErrEmptyName
		}
		u.Name = &v
	}
	if u.Designation != nil {
		v := strings.TrimSpace(*u.Designation)
		if v == "" {
			return nil, fmt.Errorf("%w: designation cannot be empty", domain.ErrValidation)
		}
		u.Designation = &v
	}
	if u.ManagerID != nil {
		v := domain.NormalizeManagerID(*u.ManagerID)
		if v != "" {
			if domain.SameID(v, id) {
				return nil, fmt.Errorf("%w: an employee cannot manage themselves", domain.ErrValidation)
			}
			v = domain.CanonicalID(v)
		}
		u.ManagerID = &v
	}

	updated, err := d.backend.UpdateEmployee(ctx, s.Token, domain.CanonicalID(id), u)
	if err != nil {
		log.Error("failed to update employee",
			slog.String("employee_id", id),
			slog.String("error", err.Error()))
		return nil, NewServiceError("directory", "UpdateEmployee", "failed to update employee", err)
	}
	log.Info("employee updated", slog.String("employee_id", updated.ID))
	d.emit(ctx, events.NewEntityEvent(events.EmployeeUpdated, s.Actor, domain.EntityEmployee, updated.ID))
	return updated, nil
}

func (d *directoryService) DeleteEmployee(ctx context.Context, s auth.Session, id string) error {
	log := logger.FromContextOrDefault(ctx, d.logger)

	if err := requireRole(s, domain.RoleAdmin); err != nil {
		return err
	}
	if s.Actor.Is(id) {
		return fmt.Errorf("%w: you cannot delete yourself", domain.ErrValidation)
	}
	canonical := domain.CanonicalID(id)
	if err := d.backend.DeleteEmployee(ctx, s.Token, canonical); err != nil {
		log.Error("failed to delete employee",
			slog.String("employee_id", id),
			slog.String("error", err.Error()))
		return NewServiceError("directory", "DeleteEmployee", "failed to delete employee", err)
	}
	log.Info("employee deleted", slog.String("employee_id", canonical))
	d.emit(ctx, events.NewEntityEvent(events.EmployeeDeleted, s.Actor, domain.EntityEmployee, canonical))
	return nil
}

func (d *directoryService) ListUsers(ctx context.Context, s auth.Session) ([]domain.User, error) {
	if err := requireRole(s, domain.RoleAdmin); err != nil {
		return nil, err
	}
	users, err := d.backend.ListUsers(ctx, s.Token)
	if err != nil {
		return nil, NewServiceError("directory", "ListUsers", "failed to list users", err)
	}
	return users, nil
}

func (d *directoryService) CreateUser(ctx context.Context, s auth.Session, u backend.NewUser) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, d.logger)

	if err := requireRole(s, domain.RoleAdmin); err != nil {
		return nil, err
	}
	if _, err := domain.NormalizeID(u.EmployeeID); err != nil {
		return nil, fmt.Errorf("%w: employee: %v", domain.ErrValidation, err)
	}
	if !u.Role.Valid() {
		return nil, domain.ErrInvalidRole
	}
	u.EmployeeID = domain.CanonicalID(u.EmployeeID)
	if u.Password == "" {
		u.Password = d.defaultPassword
	}

	// The account must belong to an existing employee.
	if _, err := d.backend.GetEmployee(ctx, s.Token, u.EmployeeID); err != nil {
		return nil, NewServiceError("directory", "CreateUser", "employee lookup failed", err)
	}

	created, err := d.backend.CreateUser(ctx, s.Token, u)
	if err != nil {
		log.Error("failed to create user",
			slog.String("employee_id", u.EmployeeID),
			slog.String("error", err.Error()))
		return nil, NewServiceError("directory", "CreateUser", "failed to create user", err)
	}
	log.Info("user created",
		slog.String("employee_id", created.EmployeeID),
		slog.String("role", string(u.Role)))
	d.emit(ctx, events.NewEntityEvent(events.UserCreated, s.Actor, domain.EntityUser, created.EmployeeID))
	return created, nil
}

func (d *directoryService) UpdateUser(
	ctx context.Context,
	s auth.Session,
	id string,
	u backend.UserUpdate,
) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, d.logger)

	if err := requireRole(s, domain.RoleAdmin); err != nil {
		return nil, err
	}
	if u.Role == nil && u.Status == nil {
		return nil, fmt.Errorf("%w: nothing to update", domain.ErrValidation)
	}
	if u.Role != nil && !u.Role.Valid() {
		return nil, domain.ErrInvalidRole
	}
	if u.Status != nil && !u.Status.Valid() {
		return nil, domain.ErrInvalidUserStatus
	}

	updated, err := d.backend.UpdateUser(ctx, s.Token, domain.CanonicalID(id), u)
	if err != nil {
		log.Error("failed to update user",
			slog.String("employee_id", id),
			slog.String("error", err.Error()))
		return nil, NewServiceError("directory", "UpdateUser", "failed to update user", err)
	}
	log.Info("user updated", slog.String("employee_id", updated.EmployeeID))
	d.emit(ctx, events.NewEntityEvent(events.UserUpdated, s.Actor, domain.EntityUser, updated.EmployeeID))
	return updated, nil
}

func (d *directoryService) DeleteUser(ctx context.Context, s auth.Session, id string) error {
	log := logger.FromContextOrDefault(ctx, d.logger)

	if err := requireRole(s, domain.RoleAdmin); err != nil {
		return err
	}
	if s.Actor.Is(id) {
		return fmt.Errorf("%w: you cannot delete your own account", domain.ErrValidation)
	}
	canonical := domain.CanonicalID(id)
	if err := d.backend.DeleteUser(ctx, s.Token, canonical); err != nil {
		log.Error("failed to delete user",
			slog.String("employee_id", id),
			slog.String("error", err.Error()))
		return NewServiceError("directory", "DeleteUser", "failed to delete user", err)
	}
	log.Info("user deleted", slog.String("employee_id", canonical))
	d.emit(ctx, events.NewEntityEvent(events.UserDeleted, s.Actor, domain.EntityUser, canonical))
	return nil
}

func (d *directoryService) Me(ctx context.Context, s auth.Session) (*domain.User, error) {
	user := &domain.User{
		EmployeeID: domain.CanonicalID(s.Actor.EmployeeID),
		Roles:      append([]domain.Role(nil), s.Actor.Roles...),
		Status:     domain.UserStatusActive,
	}
	e, err := d.backend.GetEmployee(ctx, s.Token, user.EmployeeID)
	if err != nil {
		logger.FromContextOrDefault(ctx, d.logger).Warn("profile without employee record",
			slog.String("employee_id", user.EmployeeID),
			slog.String("error", err.Error()))
		return user, nil
	}
	user.Employee = e
	return user, nil
}

func (d *directoryService) emit(ctx context.Context, event *events.BoardEvent) {
	if err := d.emitter.EmitEvent(ctx, event); err != nil {
		logger.FromContextOrDefault(ctx, d.logger).Error("failed to emit event",
			slog.String("event_type", string(event.Type)),
			slog.String("error", err.Error()))
	}
}
