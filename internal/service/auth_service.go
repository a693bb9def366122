package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/phrazzld/teamboard/internal/backend"
	"github.com/phrazzld/teamboard/internal/domain"
	"github.com/phrazzld/teamboard/internal/events"
	"github.com/phrazzld/teamboard/internal/platform/logger"
	"github.com/phrazzld/teamboard/internal/service/auth"
)

// MinPasswordLength is the shortest password accepted on change or reset.
const MinPasswordLength = 6

// ErrInvalidCredentials is returned when the employee id and password do not
// match an active account.
var ErrInvalidCredentials = errors.New("invalid employee id or password")

// LoginResult is a successful sign-in.
type LoginResult struct {
	Session    auth.Session
	TokenType  string
	FirstLogin bool
}

// AuthService signs users in and manages their passwords. Tokens are issued
// by the backend and validated locally with the shared secret.
type AuthService interface {
	// Login accepts an employee id such as "1" or "EMP001".
	Login(ctx context.Context, employeeID, password string) (*LoginResult, error)

	// Authenticate validates a bearer token and returns its session.
	Authenticate(ctx context.Context, token string) (*auth.Session, error)

	// Logout drops the session's cached board.
	Logout(ctx context.Context, s auth.Session)

	ChangePassword(ctx context.Context, s auth.Session, currentPassword, newPassword string) error

	// ForgotPassword starts a reset and returns the single-use reset token.
	ForgotPassword(ctx context.Context, employeeID string) (string, error)

	ResetPassword(ctx context.Context, resetToken, newPassword string) error
}

type authService struct {
	backend backend.AuthBackend
	jwt     auth.JWTService
	board   BoardService
	emitter events.EventEmitter
	logger  *slog.Logger
}

var _ AuthService = (*authService)(nil)

// NewAuthService creates an AuthService. board may be nil when no board
// state needs dropping on logout.
func NewAuthService(
	b backend.AuthBackend,
	jwtService auth.JWTService,
	board BoardService,
	emitter events.EventEmitter,
	logger *slog.Logger,
) (AuthService, error) {
	if b == nil {
		return nil, fmt.Errorf("backend cannot be nil")
	}
	if jwtService == nil {
		return nil, fmt.Errorf("jwt service cannot be nil")
	}
	if emitter == nil {
		return nil, fmt.Errorf("event emitter cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &authService{
		backend: b,
		jwt:     jwtService,
		board:   board,
		emitter: emitter,
		logger:  logger.With(slog.String("component", "auth_service")),
	}, nil
}

func (a *authService) Login(ctx context.Context, employeeID, password string) (*LoginResult, error) {
	log := logger.FromContextOrDefault(ctx, a.logger)

	id, err := domain.NormalizeID(employeeID)
	if err != nil {
		return nil, fmt.Errorf("%w: employee id: %v", domain.ErrValidation, err)
	}
	if password == "" {
		return nil, fmt.Errorf("%w: password is required", domain.ErrValidation)
	}

	res, err := a.backend.Login(ctx, id, password)
	if err != nil {
		if errors.Is(err, backend.ErrInvalidCredentials) {
			log.Info("login rejected", slog.Int("employee_id", id))
			return nil, ErrInvalidCredentials
		}
		log.Error("login failed", slog.Int("employee_id", id), slog.String("error", err.Error()))
		return nil, NewServiceError("auth", "Login", "backend login failed", err)
	}

	claims, err := a.jwt.ValidateToken(ctx, res.AccessToken)
	if err != nil {
		log.Error("backend issued an unusable token",
			slog.Int("employee_id", id),
			slog.String("error", err.Error()))
		return nil, NewServiceError("auth", "Login", "token validation failed", err)
	}

	session := auth.NewSession(res.AccessToken, claims)
	tokenType := res.TokenType
	if tokenType == "" {
		tokenType = "bearer"
	}

	log.Info("user logged in",
		slog.String("employee_id", session.Actor.EmployeeID),
		slog.Bool("first_login", res.FirstLogin))
	a.emit(ctx, events.NewEntityEvent(events.UserLoggedIn, session.Actor, domain.EntityUser, session.Actor.EmployeeID))

	return &LoginResult{Session: session, TokenType: tokenType, FirstLogin: res.FirstLogin}, nil
}

func (a *authService) Authenticate(ctx context.Context, token string) (*auth.Session, error) {
	claims, err := a.jwt.ValidateToken(ctx, token)
	if err != nil {
		return nil, err
	}
	session := auth.NewSession(token, claims)
	return &session, nil
}

func (a *authService) Logout(ctx context.Context, s auth.Session) {
	if a.board != nil {
		a.board.Invalidate(s)
	}
	logger.FromContextOrDefault(ctx, a.logger).Info("user logged out",
		slog.String("employee_id", s.Actor.EmployeeID))
}

func validateNewPassword(password string) error {
	if len(strings.TrimSpace(password)) < MinPasswordLength {
		return fmt.Errorf("%w: password must be at least %d characters", domain.ErrValidation, MinPasswordLength)
	}
	return nil
}

func (a *authService) ChangePassword(
	ctx context.Context,
	s auth.Session,
	currentPassword, newPassword string,
) error {
	log := logger.FromContextOrDefault(ctx, a.logger)

	if currentPassword == "" {
		return fmt.Errorf("%w: current password is required", domain.ErrValidation)
	}
	if err := validateNewPassword(newPassword); err != nil {
		return err
	}
	if currentPassword == newPassword {
		return fmt.Errorf("%w: new password must differ from the current one", domain.ErrValidation)
	}

	if err := a.backend.ChangePassword(ctx, s.Token, currentPassword, newPassword); err != nil {
		if errors.Is(err, backend.ErrInvalidCredentials) {
			return ErrInvalidCredentials
		}
		log.Error("failed to change password",
			slog.String("employee_id", s.Actor.EmployeeID),
			slog.String("error", err.Error()))
		return NewServiceError("auth", "ChangePassword", "failed to change password", err)
	}

	log.Info("password changed", slog.String("employee_id", s.Actor.EmployeeID))
	a.emit(ctx, events.NewEntityEvent(events.PasswordChanged, s.Actor, domain.EntityUser, s.Actor.EmployeeID))
	return nil
}

func (a *authService) ForgotPassword(ctx context.Context, employeeID string) (string, error) {
	id, err := domain.NormalizeID(employeeID)
	if err != nil {
		return "", fmt.Errorf("%w: employee id: %v", domain.ErrValidation, err)
	}
	token, err := a.backend.ForgotPassword(ctx, id)
	if err != nil {
		return "", NewServiceError("auth", "ForgotPassword", "failed to start password reset", err)
	}
	logger.FromContextOrDefault(ctx, a.logger).Info("password reset requested", slog.Int("employee_id", id))
	return token, nil
}

func (a *authService) ResetPassword(ctx context.Context, resetToken, newPassword string) error {
	if strings.TrimSpace(resetToken) == "" {
		return fmt.Errorf("%w: reset token is required", domain.ErrValidation)
	}
	if err := validateNewPassword(newPassword); err != nil {
		return err
	}
	if err := a.backend.ResetPassword(ctx, resetToken, newPassword); err != nil {
		return NewServiceError("auth", "ResetPassword", "failed to reset password", err)
	}
	logger.FromContextOrDefault(ctx, a.logger).Info("password reset completed")
	return nil
}

func (a *authService) emit(ctx context.Context, event *events.BoardEvent) {
	if err := a.emitter.EmitEvent(ctx, event); err != nil {
		logger.FromContextOrDefault(ctx, a.logger).Error("failed to emit event",
			slog.String("event_type", string(event.Type)),
			slog.String("error", err.Error()))
	}
}
