package api

import (
	"log/slog"
	"net/http"

	"github.com/phrazzld/teamboard/internal/api/shared"
	"github.com/phrazzld/teamboard/internal/domain"
	"github.com/phrazzld/teamboard/internal/domain/kanban"
	"github.com/phrazzld/teamboard/internal/platform/logger"
	"github.com/phrazzld/teamboard/internal/service"
)

// TaskHandler handles the board, tasks and their remarks.
type TaskHandler struct {
	board  service.BoardService
	logger *slog.Logger
}

// NewTaskHandler creates a new TaskHandler.
func NewTaskHandler(board service.BoardService, logger *slog.Logger) *TaskHandler {
	if logger == nil {
		// ALLOW-PANIC: constructor enforcing required dependency
		panic("logger cannot be nil for TaskHandler")
	}
	return &TaskHandler{
		board:  board,
		logger: logger.With(slog.String("component", "task_handler")),
	}
}

// Board handles GET /api/board?q=&status=.
func (h *TaskHandler) Board(w http.ResponseWriter, r *http.Request) {
	s, ok := requireSession(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	filter, err := kanban.ParseFilter(q.Get("q"), q.Get("status"))
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	board, err := h.board.Board(r.Context(), s, filter)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to load board")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, board)
}

// ListTasks handles GET /api/tasks. An optional status narrows the list to
// one column, sorted by priority.
func (h *TaskHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	s, ok := requireSession(w, r)
	if !ok {
		return
	}

	var (
		tasks []domain.Task
		err   error
	)
	if raw := r.URL.Query().Get("status"); raw != "" {
		status, perr := parseStatus(raw)
		if perr != nil {
			HandleAPIError(w, r, perr, "")
			return
		}
		tasks, err = h.board.TasksByStatus(r.Context(), s, status)
	} else {
		tasks, err = h.board.Tasks(r.Context(), s)
	}
	if err != nil {
		HandleAPIError(w, r, err, "Failed to load tasks")
		return
	}
	if tasks == nil {
		tasks = []domain.Task{}
	}
	shared.RespondWithJSON(w, r, http.StatusOK, TaskListResponse{Tasks: tasks, Count: len(tasks)})
}

// GetTask handles GET /api/tasks/{id}.
func (h *TaskHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	s, ok := requireSession(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	task, err := h.board.GetTask(r.Context(), s, id)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to load task")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, task)
}

// CreateTask handles POST /api/tasks.
func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	s, ok := requireSession(w, r)
	if !ok {
		return
	}
	var req CreateTaskRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	nt, err := req.ToNewTask()
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	task, err := h.board.CreateTask(r.Context(), s, nt)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create task")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusCreated, task)
}

// UpdateTask handles PATCH /api/tasks/{id}.
func (h *TaskHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	s, ok := requireSession(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req UpdateTaskRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	patch, err := req.ToPatch()
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	task, err := h.board.UpdateTask(r.Context(), s, id, patch)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to update task")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, task)
}

// DeleteTask handles DELETE /api/tasks/{id}.
func (h *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	s, ok := requireSession(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.board.DeleteTask(r.Context(), s, id); err != nil {
		HandleAPIError(w, r, err, "Failed to delete task")
		return
	}
	shared.RespondNoContent(w)
}

// MoveTask handles POST /api/tasks/{id}/move.
func (h *TaskHandler) MoveTask(w http.ResponseWriter, r *http.Request) {
	s, ok := requireSession(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req MoveTaskRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	to, err := parseStatus(req.Status)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	res, err := h.board.MoveTask(r.Context(), s, id, to, req.Remark)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to move task")
		return
	}
	if !res.RemarkSynced && req.Remark != "" && res.Changed {
		logger.FromContextOrDefault(r.Context(), h.logger).Warn("move remark kept locally",
			slog.String("task_id", id))
	}
	shared.RespondWithJSON(w, r, http.StatusOK, res)
}

// ListRemarks handles GET /api/tasks/{id}/remarks.
func (h *TaskHandler) ListRemarks(w http.ResponseWriter, r *http.Request) {
	s, ok := requireSession(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	remarks, err := h.board.Remarks(r.Context(), s, id)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to load remarks")
		return
	}
	if remarks == nil {
		remarks = []domain.Remark{}
	}
	shared.RespondWithJSON(w, r, http.StatusOK, remarks)
}

// AddRemark handles POST /api/tasks/{id}/remarks. A remark the backend
// could not store is still returned, with synced set to false, and the
// response status is 202 instead of 201.
func (h *TaskHandler) AddRemark(w http.ResponseWriter, r *http.Request) {
	s, ok := requireSession(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req AddRemarkRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	res, err := h.board.AddRemark(r.Context(), s, id, req.Content)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to add remark")
		return
	}
	status := http.StatusCreated
	if !res.Synced {
		status = http.StatusAccepted
	}
	shared.RespondWithJSON(w, r, status, res)
}
