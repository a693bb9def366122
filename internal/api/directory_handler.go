package api

import (
	"log/slog"
	"net/http"

	"github.com/phrazzld/teamboard/internal/api/shared"
	"github.com/phrazzld/teamboard/internal/domain"
	"github.com/phrazzld/teamboard/internal/service"
)

// DirectoryHandler handles employees, user accounts and the caller's
// profile.
type DirectoryHandler struct {
	directory service.DirectoryService
	logger    *slog.Logger
}

// NewDirectoryHandler creates a new DirectoryHandler.
func NewDirectoryHandler(directory service.DirectoryService, logger *slog.Logger) *DirectoryHandler {
	if logger == nil {
		// ALLOW-PANIC: constructor enforcing required dependency
		panic("logger cannot be nil for DirectoryHandler")
	}
	return &DirectoryHandler{
		directory: directory,
		logger:    logger.With(slog.String("component", "directory_handler")),
	}
}

// Me handles GET /api/me.
func (h *DirectoryHandler) Me(w http.ResponseWriter, r *http.Request) {
	s, ok := requireSession(w, r)
	if !ok {
		return
	}
	user, err := h.directory.Me(r.Context(), s)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to load profile")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, user)
}

// ListEmployees handles GET /api/employees.
func (h *DirectoryHandler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	s, ok := requireSession(w, r)
	if !ok {
		return
	}
	employees, err := h.directory.ListEmployees(r.Context(), s)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to load employees")
		return
	}
	if employees == nil {
		employees = []domain.Employee{}
	}
	shared.RespondWithJSON(w, r, http.StatusOK, employees)
}

// MyTeam handles GET /api/employees/me, the caller's direct reports.
func (h *DirectoryHandler) MyTeam(w http.ResponseWriter, r *http.Request) {
	s, ok := requireSession(w, r)
	if !ok {
		return
	}
	team, err := h.directory.MyTeam(r.Context(), s)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to load team")
		return
	}
	if team == nil {
		team = []domain.Employee{}
	}
	shared.RespondWithJSON(w, r, http.StatusOK, TeamResponse{ManagerID: s.Actor.EmployeeID, Team: team})
}

// GetEmployee handles GET /api/employees/{id}.
func (h *DirectoryHandler) GetEmployee(w http.ResponseWriter, r *http.Request) {
	s, ok := requireSession(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	e, err := h.directory.GetEmployee(r.Context(), s, id)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to load employee")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, e)
}

// CreateEmployee handles POST /api/employees.
func (h *DirectoryHandler) CreateEmployee(w http.ResponseWriter, r *http.Request) {
	s, ok := requireSession(w, r)
	if !ok {
		return
	}
	var req CreateEmployeeRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	e, err := h.directory.CreateEmployee(r.Context(), s, req.ToEmployee())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create employee")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusCreated, e)
}

// UpdateEmployee handles PUT /api/employees/{id}.
func (h *DirectoryHandler) UpdateEmployee(w http.ResponseWriter, r *http.Request) {
	s, ok := requireSession(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req UpdateEmployeeRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	e, err := h.directory.UpdateEmployee(r.Context(), s, id, req.ToUpdate())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to update employee")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, e)
}

// DeleteEmployee handles DELETE /api/employees/{id}.
func (h *DirectoryHandler) DeleteEmployee(w http.ResponseWriter, r *http.Request) {
	s, ok := requireSession(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.directory.DeleteEmployee(r.Context(), s, id); err != nil {
		HandleAPIError(w, r, err, "Failed to delete employee")
		return
	}
	shared.RespondNoContent(w)
}

// ListUsers handles GET /api/users.
func (h *DirectoryHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	s, ok := requireSession(w, r)
	if !ok {
		return
	}
	users, err := h.directory.ListUsers(r.Context(), s)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to load users")
		return
	}
	if users == nil {
		users = []domain.User{}
	}
	shared.RespondWithJSON(w, r, http.StatusOK, users)
}

// CreateUser handles POST /api/users.
func (h *DirectoryHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	s, ok := requireSession(w, r)
	if !ok {
		return
	}
	var req CreateUserRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	nu, err := req.ToNewUser()
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	user, err := h.directory.CreateUser(r.Context(), s, nu)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create user")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusCreated, user)
}

// UpdateUser handles PUT /api/users/{id}.
func (h *DirectoryHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	s, ok := requireSession(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req UpdateUserRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	update, err := req.ToUpdate()
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	user, err := h.directory.UpdateUser(r.Context(), s, id, update)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to update user")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, user)
}

// DeleteUser handles DELETE /api/users/{id}.
func (h *DirectoryHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	s, ok := requireSession(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.directory.DeleteUser(r.Context(), s, id); err != nil {
		HandleAPIError(w, r, err, "Failed to delete user")
		return
	}
	shared.RespondNoContent(w)
}
