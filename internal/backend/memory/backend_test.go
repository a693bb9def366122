package memory

import (
	"context"
	"testing"
	"time"

	"github.com/phrazzld/teamboard/internal/backend"
	"github.com/phrazzld/teamboard/internal/config"
	"github.com/phrazzld/teamboard/internal/domain"
	"github.com/phrazzld/teamboard/internal/service/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testSecret = "test-secret-that-is-at-least-32-characters"

func newTestBackend(t *testing.T) *Backend {
	t.Helper()
	jwtSvc, err := auth.NewJWTService(config.AuthConfig{JWTSecret: testSecret, TokenLifetimeMinutes: 60})
	require.NoError(t, err)

	seed, err := DefaultSeed()
	require.NoError(t, err)

	b, err := New(seed, Options{
		JWT:             jwtSvc,
		Passwords:       auth.NewBcryptVerifier(bcrypt.MinCost),
		DefaultPassword: "welcome123",
	})
	require.NoError(t, err)
	return b
}

func login(t *testing.T, b *Backend, id int) string {
	t.Helper()
	result, err := b.Login(context.Background(), id, "welcome123")
	require.NoError(t, err)
	return result.AccessToken
}

func TestParseSeed(t *testing.T) {
	seed, err := ParseSeed([]byte(`
employees:
  - id: "7"
    name: Test
users:
  - e_id: EMP007
    role: developer
`))
	require.NoError(t, err)
	require.Len(t, seed.Employees, 1)
	assert.Equal(t, "EMP007", seed.Users[0].EmployeeID)

	_, err = ParseSeed([]byte("employees: [unterminated"))
	assert.Error(t, err)
}

func TestNew_RejectsBadSeed(t *testing.T) {
	jwtSvc, err := auth.NewJWTService(config.AuthConfig{JWTSecret: testSecret, TokenLifetimeMinutes: 60})
	require.NoError(t, err)
	opts := Options{JWT: jwtSvc, Passwords: auth.NewBcryptVerifier(bcrypt.MinCost), DefaultPassword: "welcome123"}

	_, err = New(&Seed{Users: []SeedUser{{EmployeeID: "1", Role: "OWNER"}}}, opts)
	assert.ErrorIs(t, err, domain.ErrInvalidRole)

	_, err = New(nil, opts)
	assert.Error(t, err)
}

func TestLogin(t *testing.T) {
	b := newTestBackend(t)
	ctx := context.Background()

	result, err := b.Login(ctx, 3, "welcome123")
	require.NoError(t, err)
	assert.Equal(t, "bearer", result.TokenType)
	assert.True(t, result.FirstLogin)

	claims, err := b.jwt.ValidateToken(ctx, result.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "3", claims.EmployeeID)
	assert.Equal(t, domain.RoleDeveloper, claims.Role)

	_, err = b.Login(ctx, 3, "wrong")
	assert.ErrorIs(t, err, backend.ErrInvalidCredentials)

	_, err = b.Login(ctx, 99, "welcome123")
	assert.ErrorIs(t, err, backend.ErrInvalidCredentials)
}

func TestLogin_SeededHash(t *testing.T) {
	jwtSvc, err := auth.NewJWTService(config.AuthConfig{JWTSecret: testSecret, TokenLifetimeMinutes: 60})
	require.NoError(t, err)
	hash, err := bcrypt.GenerateFromPassword([]byte("from-a-hash"), bcrypt.MinCost)
	require.NoError(t, err)

	b, err := New(&Seed{
		Employees: []SeedEmployee{{ID: "1", Name: "Asha Raman", Email: "asha.raman@ust.com"}},
		Users:     []SeedUser{{EmployeeID: "1", Role: "admin", Password: "ignored", PasswordHash: string(hash)}},
	}, Options{JWT: jwtSvc, Passwords: auth.NewBcryptVerifier(bcrypt.MinCost), DefaultPassword: "welcome123"})
	require.NoError(t, err)

	ctx := context.Background()
	_, err = b.Login(ctx, 1, "from-a-hash")
	assert.NoError(t, err)
	_, err = b.Login(ctx, 1, "ignored")
	assert.ErrorIs(t, err, backend.ErrInvalidCredentials)
}

func TestPasswordLifecycle(t *testing.T) {
	b := newTestBackend(t)
	ctx := context.Background()
	token := login(t, b, 3)

	err := b.ChangePassword(ctx, token, "wrong", "newpass1")
	assert.ErrorIs(t, err, backend.ErrBadRequest)

	require.NoError(t, b.ChangePassword(ctx, token, "welcome123", "newpass1"))
	result, err := b.Login(ctx, 3, "newpass1")
	require.NoError(t, err)
	assert.False(t, result.FirstLogin)

	resetToken, err := b.ForgotPassword(ctx, 3)
	require.NoError(t, err)
	require.NoError(t, b.ResetPassword(ctx, resetToken, "another1"))
	_, err = b.Login(ctx, 3, "another1")
	require.NoError(t, err)

	err = b.ResetPassword(ctx, resetToken, "again123")
	assert.ErrorIs(t, err, backend.ErrBadRequest, "reset tokens are single use")
}

func TestTasks(t *testing.T) {
	b := newTestBackend(t)
	ctx := context.Background()
	manager := login(t, b, 2)
	developer := login(t, b, 3)

	t.Run("developer sees only assigned tasks", func(t *testing.T) {
		tasks, err := b.ListTasks(ctx, developer)
		require.NoError(t, err)
		for _, task := range tasks {
			assert.Equal(t, "3", task.AssignedTo)
		}
	})

	t.Run("developer cannot create", func(t *testing.T) {
		_, err := b.CreateTask(ctx, developer, backend.NewTask{Title: "x"})
		assert.ErrorIs(t, err, backend.ErrForbidden)
	})

	t.Run("manager creates updates and deletes", func(t *testing.T) {
		created, err := b.CreateTask(ctx, manager, backend.NewTask{
			Title:           "New feature",
			Description:     "Build it",
			Priority:        domain.PriorityHigh,
			ExpectedClosure: time.Now().Add(48 * time.Hour),
			AssignedTo:      "EMP003",
			Reviewer:        "2",
		})
		require.NoError(t, err)
		assert.Equal(t, domain.StatusToDo, created.Status)
		assert.Equal(t, "3", created.AssignedTo)
		assert.Equal(t, "2", created.AssignedBy)

		status := domain.StatusInProgress
		updated, err := b.UpdateTask(ctx, developer, created.ID, domain.TaskPatch{Status: &status})
		require.NoError(t, err)
		assert.Equal(t, domain.StatusInProgress, updated.Status)
		assert.Equal(t, "3", updated.UpdatedBy)

		remark, err := b.AddRemark(ctx, developer, created.ID, "started")
		require.NoError(t, err)
		assert.Equal(t, "Priya Nair", remark.UserName)

		remarks, err := b.ListRemarks(ctx, manager, created.ID)
		require.NoError(t, err)
		assert.Len(t, remarks, 1)

		require.NoError(t, b.DeleteTask(ctx, manager, created.ID))
		_, err = b.ListRemarks(ctx, manager, created.ID)
		assert.ErrorIs(t, err, backend.ErrNotFound)
	})

	t.Run("invalid token", func(t *testing.T) {
		_, err := b.ListTasks(ctx, "garbage")
		assert.ErrorIs(t, err, backend.ErrUnauthorized)
	})
}

func TestDirectory(t *testing.T) {
	b := newTestBackend(t)
	ctx := context.Background()
	admin := login(t, b, 1)
	manager := login(t, b, 2)

	team, err := b.MyTeam(ctx, manager)
	require.NoError(t, err)
	assert.Len(t, team, 2)

	_, err = b.ListUsers(ctx, manager)
	assert.ErrorIs(t, err, backend.ErrForbidden)

	created, err := b.CreateEmployee(ctx, admin, domain.Employee{
		Name:        "New Hire",
		Email:       "new.hire@ust.com",
		Designation: "Engineer",
		ManagerID:   "0",
	})
	require.NoError(t, err)
	assert.Equal(t, "5", created.ID)
	assert.Empty(t, created.ManagerID)

	_, err = b.CreateEmployee(ctx, admin, domain.Employee{Name: "Dup", Email: "new.hire@ust.com"})
	assert.ErrorIs(t, err, backend.ErrConflict)

	user, err := b.CreateUser(ctx, admin, backend.NewUser{EmployeeID: created.ID, Role: domain.RoleDeveloper})
	require.NoError(t, err)
	require.NotNil(t, user.Employee)
	assert.Equal(t, "New Hire", user.Employee.Name)

	_, err = b.Login(ctx, 5, "welcome123")
	require.NoError(t, err)

	inactive := domain.UserStatusInactive
	_, err = b.UpdateUser(ctx, admin, "5", backend.UserUpdate{Status: &inactive})
	require.NoError(t, err)
	_, err = b.Login(ctx, 5, "welcome123")
	assert.ErrorIs(t, err, backend.ErrInvalidCredentials)

	require.NoError(t, b.DeleteEmployee(ctx, admin, "5"))
	_, err = b.GetEmployee(ctx, admin, "5")
	assert.ErrorIs(t, err, backend.ErrNotFound)
}
