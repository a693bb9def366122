// Package memory provides an in-process backend.Backend seeded from fixture
// data. It serves demo and offline deployments and backs service tests.
package memory

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/teamboard/internal/backend"
	"github.com/phrazzld/teamboard/internal/domain"
	"github.com/phrazzld/teamboard/internal/domain/kanban"
	"github.com/phrazzld/teamboard/internal/service/auth"
)

// account is a user record with its password hash.
type account struct {
	user domain.User
	hash string
}

// Backend is a thread-safe fixture backend.
type Backend struct {
	mu          sync.RWMutex
	employees   []domain.Employee
	accounts    map[int]*account
	tasks       []domain.Task
	remarks     map[int][]domain.Remark
	resetTokens map[string]int
	nextTaskID  int
	nextEmpID   int

	jwt             auth.JWTService
	hasher          auth.PasswordHasher
	verifier        auth.PasswordVerifier
	defaultPassword string
	now             func() time.Time
	logger          *slog.Logger
}

// Ensure Backend implements backend.Backend interface
var _ backend.Backend = (*Backend)(nil)

// Options configures a memory backend.
type Options struct {
	JWT             auth.JWTService
	Passwords       *auth.BcryptVerifier
	DefaultPassword string
	Logger          *slog.Logger
	// Now overrides the clock; nil uses time.Now.
	Now func() time.Time
}

// New builds a backend from seed.
func New(seed *Seed, opts Options) (*Backend, error) {
	if seed == nil {
		return nil, fmt.Errorf("seed cannot be nil")
	}
	if opts.JWT == nil {
		return nil, fmt.Errorf("jwt service cannot be nil")
	}
	if opts.Passwords == nil {
		return nil, fmt.Errorf("password hasher cannot be nil")
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	b := &Backend{
		accounts:        make(map[int]*account),
		remarks:         make(map[int][]domain.Remark),
		resetTokens:     make(map[string]int),
		jwt:             opts.JWT,
		hasher:          opts.Passwords,
		verifier:        opts.Passwords,
		defaultPassword: opts.DefaultPassword,
		now:             opts.Now,
		logger:          opts.Logger.With(slog.String("component", "memory_backend")),
	}
	if err := b.load(seed); err != nil {
		return nil, err
	}
	return b, nil
}

func (b *Backend) load(seed *Seed) error {
	now := b.now().UTC()

	for _, se := range seed.Employees {
		id, err := domain.NormalizeID(se.ID)
		if err != nil {
			return fmt.Errorf("seed employee %q: %w", se.Name, err)
		}
		b.employees = append(b.employees, domain.Employee{
			ID:          strconv.Itoa(id),
			Name:        se.Name,
			Email:       se.Email,
			Designation: se.Designation,
			ManagerID:   canonicalManager(se.ManagerID),
			Department:  se.Department,
			CreatedAt:   now,
		})
		if id > b.nextEmpID {
			b.nextEmpID = id
		}
	}

	for _, su := range seed.Users {
		id, err := domain.NormalizeID(su.EmployeeID)
		if err != nil {
			return fmt.Errorf("seed user: %w", err)
		}
		role, err := domain.ParseRole(su.Role)
		if err != nil {
			return fmt.Errorf("seed user %d: %w", id, err)
		}
		status := domain.UserStatusActive
		if su.Status != "" {
			if status, err = domain.ParseUserStatus(su.Status); err != nil {
				return fmt.Errorf("seed user %d: %w", id, err)
			}
		}
		hash := su.PasswordHash
		if hash == "" {
			password := su.Password
			if password == "" {
				password = b.defaultPassword
			}
			if hash, err = b.hasher.Hash(password); err != nil {
				return err
			}
		}
		u := domain.User{
			EmployeeID: strconv.Itoa(id),
			Roles:      []domain.Role{role},
			Status:     status,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		if su.PasswordChanged {
			u.PasswordChangedAt = &now
		}
		b.accounts[id] = &account{user: u, hash: hash}
	}

	for _, st := range seed.Tasks {
		id, err := domain.NormalizeID(st.ID)
		if err != nil {
			return fmt.Errorf("seed task %q: %w", st.Title, err)
		}
		closure, err := domain.ParseClosure(st.ExpectedClosure)
		if err != nil {
			return fmt.Errorf("seed task %d: %w", id, err)
		}
		priority, err := domain.ParsePriority(st.Priority)
		if err != nil {
			return fmt.Errorf("seed task %d: %w", id, err)
		}
		status, err := domain.ParseTaskStatus(st.Status)
		if err != nil {
			return fmt.Errorf("seed task %d: %w", id, err)
		}
		t := domain.Task{
			ID:              strconv.Itoa(id),
			Title:           st.Title,
			Description:     st.Description,
			CreatedBy:       domain.CanonicalID(st.CreatedBy),
			AssignedTo:      domain.CanonicalID(st.AssignedTo),
			Reviewer:        domain.CanonicalID(st.Reviewer),
			Priority:        priority,
			Status:          status,
			ExpectedClosure: closure,
			CreatedAt:       now,
		}
		if t.AssignedTo != "" {
			t.AssignedBy = t.CreatedBy
			t.AssignedAt = &now
		}
		if status == domain.StatusDone {
			t.ActualClosure = &now
		}
		b.tasks = append(b.tasks, t)
		if id > b.nextTaskID {
			b.nextTaskID = id
		}
	}

	for _, sr := range seed.Remarks {
		taskID, err := domain.NormalizeID(sr.TaskID)
		if err != nil {
			return fmt.Errorf("seed remark: %w", err)
		}
		b.remarks[taskID] = append(b.remarks[taskID], domain.Remark{
			ID:        uuid.NewString(),
			TaskID:    strconv.Itoa(taskID),
			UserID:    domain.CanonicalID(sr.UserID),
			UserName:  domain.EmployeeName(b.employees, sr.UserID),
			Content:   sr.Content,
			CreatedAt: now,
		})
	}
	return nil
}

func canonicalManager(id string) string {
	id = domain.NormalizeManagerID(id)
	if id == "" {
		return ""
	}
	return domain.CanonicalID(id)
}

// fail builds the error an HTTP backend would report for status.
func fail(status int, format string, args ...any) error {
	return &backend.APIError{StatusCode: status, Detail: fmt.Sprintf(format, args...)}
}

// authorize validates token and returns the caller, requiring one of roles
// when any are given.
func (b *Backend) authorize(ctx context.Context, token string, roles ...domain.Role) (domain.Actor, error) {
	claims, err := b.jwt.ValidateToken(ctx, token)
	if err != nil {
		return domain.Actor{}, fail(http.StatusUnauthorized, "Could not validate credentials")
	}
	actor := claims.Actor()
	if len(roles) > 0 && !actor.HasAny(roles...) {
		return domain.Actor{}, fail(http.StatusForbidden, "Not enough permissions")
	}
	return actor, nil
}

// Login implements backend.AuthBackend.
func (b *Backend) Login(ctx context.Context, employeeID int, password string) (*backend.LoginResult, error) {
	b.mu.RLock()
	acct, ok := b.accounts[employeeID]
	b.mu.RUnlock()

	if !ok || acct.user.Status != domain.UserStatusActive {
		return nil, fmt.Errorf("%w: Incorrect employee id or password", backend.ErrInvalidCredentials)
	}
	if err := b.verifier.Compare(acct.hash, password); err != nil {
		if !errors.Is(err, auth.ErrPasswordMismatch) {
			b.logger.Error("password comparison failed", slog.String("error", err.Error()))
		}
		return nil, fmt.Errorf("%w: Incorrect employee id or password", backend.ErrInvalidCredentials)
	}

	token, err := b.jwt.GenerateToken(ctx, acct.user.EmployeeID, acct.user.Roles[0])
	if err != nil {
		return nil, err
	}
	return &backend.LoginResult{
		AccessToken: token,
		TokenType:   "bearer",
		FirstLogin:  acct.user.FirstLogin(),
	}, nil
}

// ChangePassword implements backend.AuthBackend.
func (b *Backend) ChangePassword(ctx context.Context, token, currentPassword, newPassword string) error {
	actor, err := b.authorize(ctx, token)
	if err != nil {
		return err
	}
	id, _ := domain.NormalizeID(actor.EmployeeID)

	b.mu.Lock()
	defer b.mu.Unlock()
	acct, ok := b.accounts[id]
	if !ok {
		return fail(http.StatusNotFound, "User not found")
	}
	if err := b.verifier.Compare(acct.hash, currentPassword); err != nil {
		return fail(http.StatusBadRequest, "Current password is incorrect")
	}
	return b.setPassword(acct, newPassword)
}

// setPassword must be called with b.mu held.
func (b *Backend) setPassword(acct *account, password string) error {
	if len(password) < 6 {
		return fail(http.StatusBadRequest, "Password must be at least 6 characters")
	}
	hash, err := b.hasher.Hash(password)
	if err != nil {
		return err
	}
	now := b.now().UTC()
	acct.hash = hash
	acct.user.PasswordChangedAt = &now
	acct.user.UpdatedAt = now
	return nil
}

// ForgotPassword implements backend.AuthBackend.
func (b *Backend) ForgotPassword(ctx context.Context, employeeID int) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.accounts[employeeID]; !ok {
		return "", fail(http.StatusNotFound, "User not found")
	}
	resetToken := uuid.NewString()
	b.resetTokens[resetToken] = employeeID
	return resetToken, nil
}

// ResetPassword implements backend.AuthBackend.
func (b *Backend) ResetPassword(ctx context.Context, resetToken, newPassword string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	id, ok := b.resetTokens[resetToken]
	if !ok {
		return fail(http.StatusBadRequest, "Invalid or expired reset token")
	}
	acct, ok := b.accounts[id]
	if !ok {
		return fail(http.StatusNotFound, "User not found")
	}
	if err := b.setPassword(acct, newPassword); err != nil {
		return err
	}
	delete(b.resetTokens, resetToken)
	return nil
}

// ListTasks implements backend.TaskBackend.
func (b *Backend) ListTasks(ctx context.Context, token string) ([]domain.Task, error) {
	actor, err := b.authorize(ctx, token)
	if err != nil {
		return nil, err
	}
	b.mu.RLock()
	defer b.mu.RUnlock()

	visible := kanban.VisibleTasks(actor, b.tasks)
	out := make([]domain.Task, 0, len(visible))
	for _, t := range visible {
		c := t.Clone()
		c.Remarks = []domain.Remark{}
		out = append(out, c)
	}
	return out, nil
}

// findTask must be called with b.mu held.
func (b *Backend) findTask(id string) (int, error) {
	for i := range b.tasks {
		if domain.SameID(b.tasks[i].ID, id) {
			return i, nil
		}
	}
	return -1, fail(http.StatusNotFound, "Task not found")
}

// CreateTask implements backend.TaskBackend.
func (b *Backend) CreateTask(ctx context.Context, token string, task backend.NewTask) (*domain.Task, error) {
	actor, err := b.authorize(ctx, token, domain.RoleAdmin, domain.RoleManager)
	if err != nil {
		return nil, err
	}
	now := b.now().UTC()

	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextTaskID++
	t := domain.Task{
		ID:              strconv.Itoa(b.nextTaskID),
		Title:           task.Title,
		Description:     task.Description,
		CreatedBy:       domain.CanonicalID(actor.EmployeeID),
		Priority:        task.Priority,
		Status:          domain.StatusToDo,
		Reviewer:        domain.CanonicalID(task.Reviewer),
		ExpectedClosure: task.ExpectedClosure.UTC(),
		CreatedAt:       now,
	}
	if task.AssignedTo != "" {
		t.AssignedTo = domain.CanonicalID(task.AssignedTo)
		t.AssignedBy = t.CreatedBy
		t.AssignedAt = &now
	}
	if err := t.Validate(); err != nil {
		b.nextTaskID--
		return nil, fail(http.StatusUnprocessableEntity, "%s", err.Error())
	}
	b.tasks = append(b.tasks, t)

	created := t.Clone()
	created.Remarks = []domain.Remark{}
	return &created, nil
}

// UpdateTask implements backend.TaskBackend.
func (b *Backend) UpdateTask(
	ctx context.Context,
	token, id string,
	patch domain.TaskPatch,
) (*domain.Task, error) {
	actor, err := b.authorize(ctx, token)
	if err != nil {
		return nil, err
	}
	if err := patch.Validate(); err != nil {
		return nil, fail(http.StatusUnprocessableEntity, "%s", err.Error())
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	i, err := b.findTask(id)
	if err != nil {
		return nil, err
	}
	if !kanban.Visible(actor, b.tasks[i]) {
		return nil, fail(http.StatusForbidden, "Not allowed to update this task")
	}
	if patch.AssignedTo != nil {
		v := domain.CanonicalID(*patch.AssignedTo)
		patch.AssignedTo = &v
	}
	if patch.Reviewer != nil {
		v := domain.CanonicalID(*patch.Reviewer)
		patch.Reviewer = &v
	}
	patch.Apply(&b.tasks[i], domain.CanonicalID(actor.EmployeeID), b.now().UTC())

	updated := b.tasks[i].Clone()
	updated.Remarks = []domain.Remark{}
	return &updated, nil
}

// DeleteTask implements backend.TaskBackend.
func (b *Backend) DeleteTask(ctx context.Context, token, id string) error {
	actor, err := b.authorize(ctx, token, domain.RoleAdmin, domain.RoleManager)
	if err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	i, err := b.findTask(id)
	if err != nil {
		return err
	}
	if !actor.Has(domain.RoleAdmin) && !actor.Is(b.tasks[i].CreatedBy) {
		return fail(http.StatusForbidden, "Only the creator can delete this task")
	}
	n, _ := domain.NormalizeID(b.tasks[i].ID)
	b.tasks = append(b.tasks[:i], b.tasks[i+1:]...)
	delete(b.remarks, n)
	return nil
}

// ListRemarks implements backend.TaskBackend.
func (b *Backend) ListRemarks(ctx context.Context, token, taskID string) ([]domain.Remark, error) {
	actor, err := b.authorize(ctx, token)
	if err != nil {
		return nil, err
	}

	b.mu.RLock()
	defer b.mu.RUnlock()
	i, err := b.findTask(taskID)
	if err != nil {
		return nil, err
	}
	if !kanban.Visible(actor, b.tasks[i]) {
		return nil, fail(http.StatusForbidden, "Not allowed to view this task")
	}
	n, _ := domain.NormalizeID(b.tasks[i].ID)
	out := make([]domain.Remark, len(b.remarks[n]))
	copy(out, b.remarks[n])
	return out, nil
}

// AddRemark implements backend.TaskBackend.
func (b *Backend) AddRemark(ctx context.Context, token, taskID, content string) (*domain.Remark, error) {
	actor, err := b.authorize(ctx, token)
	if err != nil {
		return nil, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	i, err := b.findTask(taskID)
	if err != nil {
		return nil, err
	}
	if !kanban.Visible(actor, b.tasks[i]) {
		return nil, fail(http.StatusForbidden, "Not allowed to comment on this task")
	}
	r := domain.Remark{
		ID:        uuid.NewString(),
		TaskID:    b.tasks[i].ID,
		UserID:    domain.CanonicalID(actor.EmployeeID),
		UserName:  domain.EmployeeName(b.employees, actor.EmployeeID),
		Content:   content,
		CreatedAt: b.now().UTC(),
	}
	if err := r.Validate(); err != nil {
		return nil, fail(http.StatusUnprocessableEntity, "%s", err.Error())
	}
	n, _ := domain.NormalizeID(r.TaskID)
	b.remarks[n] = append(b.remarks[n], r)
	return &r, nil
}

// ListEmployees implements backend.DirectoryBackend.
func (b *Backend) ListEmployees(ctx context.Context, token string) ([]domain.Employee, error) {
	if _, err := b.authorize(ctx, token); err != nil {
		return nil, err
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]domain.Employee, len(b.employees))
	copy(out, b.employees)
	return out, nil
}

// MyTeam implements backend.DirectoryBackend.
func (b *Backend) MyTeam(ctx context.Context, token string) ([]domain.Employee, error) {
	actor, err := b.authorize(ctx, token, domain.RoleManager)
	if err != nil {
		return nil, err
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	team := make([]domain.Employee, 0)
	for _, e := range b.employees {
		if actor.Is(e.ManagerID) {
			team = append(team, e)
		}
	}
	return team, nil
}

// findEmployee must be called with b.mu held.
func (b *Backend) findEmployee(id string) (int, error) {
	for i := range b.employees {
		if domain.SameID(b.employees[i].ID, id) {
			return i, nil
		}
	}
	return -1, fail(http.StatusNotFound, "Employee not found")
}

// GetEmployee implements backend.DirectoryBackend.
func (b *Backend) GetEmployee(ctx context.Context, token, id string) (*domain.Employee, error) {
	if _, err := b.authorize(ctx, token); err != nil {
		return nil, err
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	i, err := b.findEmployee(id)
	if err != nil {
		return nil, err
	}
	e := b.employees[i]
	return &e, nil
}

// CreateEmployee implements backend.DirectoryBackend.
func (b *Backend) CreateEmployee(ctx context.Context, token string, employee domain.Employee) (*domain.Employee, error) {
	if _, err := b.authorize(ctx, token, domain.RoleAdmin); err != nil {
		return nil, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, e := range b.employees {
		if e.Email != "" && e.Email == employee.Email {
			return nil, fail(http.StatusConflict, "Email already registered")
		}
	}
	if mgr := canonicalManager(employee.ManagerID); mgr != "" {
		if _, err := b.findEmployee(mgr); err != nil {
			return nil, fail(http.StatusBadRequest, "Manager not found")
		}
		employee.ManagerID = mgr
	} else {
		employee.ManagerID = ""
	}
	b.nextEmpID++
	employee.ID = strconv.Itoa(b.nextEmpID)
	employee.CreatedAt = b.now().UTC()
	b.employees = append(b.employees, employee)
	return &employee, nil
}

// UpdateEmployee implements backend.DirectoryBackend.
func (b *Backend) UpdateEmployee(
	ctx context.Context,
	token, id string,
	update backend.EmployeeUpdate,
) (*domain.Employee, error) {
	if _, err := b.authorize(ctx, token, domain.RoleAdmin); err != nil {
		return nil, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	i, err := b.findEmployee(id)
	if err != nil {
		return nil, err
	}
	e := &b.employees[i]
	if update.Name != nil {
		e.Name = *update.Name
	}
	if update.Designation != nil {
		e.Designation = *update.Designation
	}
	if update.ManagerID != nil {
		mgr := canonicalManager(*update.ManagerID)
		if mgr != "" && domain.SameID(mgr, e.ID) {
			return nil, fail(http.StatusBadRequest, "Employee cannot manage themselves")
		}
		e.ManagerID = mgr
	}
	updated := *e
	return &updated, nil
}

// DeleteEmployee implements backend.DirectoryBackend.
func (b *Backend) DeleteEmployee(ctx context.Context, token, id string) error {
	if _, err := b.authorize(ctx, token, domain.RoleAdmin); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	i, err := b.findEmployee(id)
	if err != nil {
		return err
	}
	n, _ := domain.NormalizeID(b.employees[i].ID)
	b.employees = append(b.employees[:i], b.employees[i+1:]...)
	delete(b.accounts, n)
	return nil
}

// ListUsers implements backend.DirectoryBackend.
func (b *Backend) ListUsers(ctx context.Context, token string) ([]domain.User, error) {
	if _, err := b.authorize(ctx, token, domain.RoleAdmin); err != nil {
		return nil, err
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	ids := make([]int, 0, len(b.accounts))
	for id := range b.accounts {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	users := make([]domain.User, 0, len(ids))
	for _, id := range ids {
		users = append(users, b.userView(b.accounts[id]))
	}
	return users, nil
}

// userView must be called with b.mu held.
func (b *Backend) userView(acct *account) domain.User {
	u := acct.user
	u.Roles = append([]domain.Role(nil), acct.user.Roles...)
	if i, err := b.findEmployee(u.EmployeeID); err == nil {
		e := b.employees[i]
		u.Employee = &e
	}
	return u
}

// CreateUser implements backend.DirectoryBackend.
func (b *Backend) CreateUser(ctx context.Context, token string, user backend.NewUser) (*domain.User, error) {
	if _, err := b.authorize(ctx, token, domain.RoleAdmin); err != nil {
		return nil, err
	}
	id, err := domain.NormalizeID(user.EmployeeID)
	if err != nil {
		return nil, fail(http.StatusBadRequest, "Invalid employee id")
	}
	password := user.Password
	if password == "" {
		password = b.defaultPassword
	}
	hash, err := b.hasher.Hash(password)
	if err != nil {
		return nil, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if _, err := b.findEmployee(user.EmployeeID); err != nil {
		return nil, err
	}
	if _, exists := b.accounts[id]; exists {
		return nil, fail(http.StatusConflict, "User already exists")
	}
	now := b.now().UTC()
	acct := &account{
		user: domain.User{
			EmployeeID: strconv.Itoa(id),
			Roles:      []domain.Role{user.Role},
			Status:     domain.UserStatusActive,
			CreatedAt:  now,
			UpdatedAt:  now,
		},
		hash: hash,
	}
	b.accounts[id] = acct
	u := b.userView(acct)
	return &u, nil
}

// UpdateUser implements backend.DirectoryBackend.
func (b *Backend) UpdateUser(ctx context.Context, token, id string, update backend.UserUpdate) (*domain.User, error) {
	if _, err := b.authorize(ctx, token, domain.RoleAdmin); err != nil {
		return nil, err
	}
	n, err := domain.NormalizeID(id)
	if err != nil {
		return nil, fail(http.StatusBadRequest, "Invalid employee id")
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	acct, ok := b.accounts[n]
	if !ok {
		return nil, fail(http.StatusNotFound, "User not found")
	}
	if update.Role != nil {
		acct.user.Roles = []domain.Role{*update.Role}
	}
	if update.Status != nil {
		acct.user.Status = *update.Status
	}
	acct.user.UpdatedAt = b.now().UTC()
	u := b.userView(acct)
	return &u, nil
}

// DeleteUser implements backend.DirectoryBackend.
func (b *Backend) DeleteUser(ctx context.Context, token, id string) error {
	if _, err := b.authorize(ctx, token, domain.RoleAdmin); err != nil {
		return err
	}
	n, err := domain.NormalizeID(id)
	if err != nil {
		return fail(http.StatusBadRequest, "Invalid employee id")
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.accounts[n]; !ok {
		return fail(http.StatusNotFound, "User not found")
	}
	delete(b.accounts, n)
	return nil
}
