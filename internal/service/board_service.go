package service

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/phrazzld/teamboard/internal/backend"
	"github.com/phrazzld/teamboard/internal/config"
	"github.com/phrazzld/teamboard/internal/domain"
	"github.com/phrazzld/teamboard/internal/domain/kanban"
	"github.com/phrazzld/teamboard/internal/events"
	"github.com/phrazzld/teamboard/internal/platform/logger"
	"github.com/phrazzld/teamboard/internal/service/auth"
	"golang.org/x/sync/errgroup"
)

// remarkFetchLimit caps concurrent remark requests during a board load.
const remarkFetchLimit = 8

// MoveResult describes the outcome of moving a task between columns.
type MoveResult struct {
	Task domain.Task `json:"task"`
	// Changed is false when the task was already in the target column.
	Changed bool `json:"changed"`
	// RemarkSynced is false when the remark sent with the move is only held
	// locally because the backend rejected it.
	RemarkSynced bool `json:"remark_synced"`
}

// RemarkResult describes a newly added remark.
type RemarkResult struct {
	Remark domain.Remark `json:"remark"`
	// Synced is false when the backend could not store the remark and it is
	// only held locally.
	Synced bool `json:"synced"`
}

// BoardService keeps each signed-in user's view of the kanban board and
// synchronizes changes with the backend.
type BoardService interface {
	// Load fetches the user's tasks, remarks and the employee directory.
	Load(ctx context.Context, s auth.Session) error

	// Board returns the filtered board laid out in columns.
	Board(ctx context.Context, s auth.Session, f kanban.Filter) (kanban.Board, error)

	// Tasks returns every task visible to the user.
	Tasks(ctx context.Context, s auth.Session) ([]domain.Task, error)

	// TasksByStatus returns the user's tasks in one column, by priority.
	TasksByStatus(ctx context.Context, s auth.Session, status domain.TaskStatus) ([]domain.Task, error)

	// GetTask returns one visible task or ErrTaskNotFound.
	GetTask(ctx context.Context, s auth.Session, id string) (*domain.Task, error)

	// CreateTask creates a task in the To Do column. Admins and managers only.
	CreateTask(ctx context.Context, s auth.Session, task backend.NewTask) (*domain.Task, error)

	// UpdateTask applies a partial update. Status changes go through the
	// transition guard.
	UpdateTask(ctx context.Context, s auth.Session, id string, patch domain.TaskPatch) (*domain.Task, error)

	// DeleteTask removes a task. Admins and managers only.
	DeleteTask(ctx context.Context, s auth.Session, id string) error

	// MoveTask moves a task to another column, applying the change locally
	// before the backend confirms it and rolling it back on failure.
	MoveTask(ctx context.Context, s auth.Session, id string, to domain.TaskStatus, remark string) (*MoveResult, error)

	// Remarks returns the remarks of a visible task, oldest first.
	Remarks(ctx context.Context, s auth.Session, taskID string) ([]domain.Remark, error)

	// AddRemark comments on a task. The remark is kept locally when the
	// backend rejects it.
	AddRemark(ctx context.Context, s auth.Session, taskID, content string) (*RemarkResult, error)

	// Invalidate drops the user's cached board.
	Invalidate(s auth.Session)
}

type boardService struct {
	backend backend.Backend
	emitter events.EventEmitter
	cache   *boardCache
	ttl     time.Duration
	now     func() time.Time
	logger  *slog.Logger
}

var _ BoardService = (*boardService)(nil)

// NewBoardService creates a BoardService backed by b. Events for every
// change are published through emitter.
func NewBoardService(
	b backend.Backend,
	emitter events.EventEmitter,
	cfg config.BoardConfig,
	logger *slog.Logger,
) (BoardService, error) {
	if b == nil {
		return nil, fmt.Errorf("backend cannot be nil")
	}
	if emitter == nil {
		return nil, fmt.Errorf("event emitter cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &boardService{
		backend: b,
		emitter: emitter,
		cache:   newBoardCache(),
		ttl:     time.Duration(cfg.CacheTTLSeconds) * time.Second,
		now:     time.Now,
		logger:  logger.With(slog.String("component", "board_service")),
	}, nil
}

// withState runs fn with the user's state loaded and locked.
func (s *boardService) withState(ctx context.Context, sess auth.Session, fn func(st *boardState) error) error {
	st := s.cache.get(sess.Actor.EmployeeID)
	st.mu.Lock()
	defer st.mu.Unlock()

	if !st.fresh(s.now(), s.ttl) {
		if err := s.load(ctx, sess, st); err != nil {
			return err
		}
	}
	return fn(st)
}

func (s *boardService) Load(ctx context.Context, sess auth.Session) error {
	st := s.cache.get(sess.Actor.EmployeeID)
	st.mu.Lock()
	defer st.mu.Unlock()
	return s.load(ctx, sess, st)
}

// load refreshes st from the backend. Must be called with st.mu held.
func (s *boardService) load(ctx context.Context, sess auth.Session, st *boardState) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	tasks, err := s.backend.ListTasks(ctx, sess.Token)
	if err != nil {
		log.Error("failed to load tasks",
			slog.String("employee_id", sess.Actor.EmployeeID),
			slog.String("error", err.Error()))
		return NewServiceError("board", "Load", "failed to load tasks", err)
	}

	var employees []domain.Employee
	remarks := make([][]domain.Remark, len(tasks))
	fetched := make([]bool, len(tasks))

	// Directory and remarks are best-effort: the board still renders
	// without author names or comments.
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(remarkFetchLimit)
	g.Go(func() error {
		list, err := s.backend.ListEmployees(gctx, sess.Token)
		if err != nil {
			log.Warn("failed to load employee directory", slog.String("error", err.Error()))
			return nil
		}
		employees = list
		return nil
	})
	for i := range tasks {
		i := i
		g.Go(func() error {
			list, err := s.backend.ListRemarks(gctx, sess.Token, tasks[i].ID)
			if err != nil {
				log.Warn("failed to load remarks",
					slog.String("task_id", tasks[i].ID),
					slog.String("error", err.Error()))
				return nil
			}
			remarks[i] = list
			fetched[i] = true
			return nil
		})
	}
	_ = g.Wait()

	for i := range tasks {
		if fetched[i] {
			tasks[i].Remarks = remarks[i]
		}
		if tasks[i].Remarks == nil {
			tasks[i].Remarks = []domain.Remark{}
		}
		for j := range tasks[i].Remarks {
			tasks[i].Remarks[j].ResolveAuthor(employees)
		}
		sortRemarks(tasks[i].Remarks)
	}

	st.tasks = tasks
	st.employees = employees
	st.loaded = true
	st.loadedAt = s.now()

	log.Debug("board loaded",
		slog.String("employee_id", sess.Actor.EmployeeID),
		slog.Int("task_count", len(tasks)),
		slog.Int("employee_count", len(employees)))
	return nil
}

func (s *boardService) Board(ctx context.Context, sess auth.Session, f kanban.Filter) (kanban.Board, error) {
	var board kanban.Board
	err := s.withState(ctx, sess, func(st *boardState) error {
		board = kanban.BuildBoard(sess.Actor, st.snapshot(), f, s.now())
		return nil
	})
	return board, err
}

func (s *boardService) Tasks(ctx context.Context, sess auth.Session) ([]domain.Task, error) {
	var tasks []domain.Task
	err := s.withState(ctx, sess, func(st *boardState) error {
		tasks = kanban.VisibleTasks(sess.Actor, st.snapshot())
		return nil
	})
	return tasks, err
}

func (s *boardService) TasksByStatus(
	ctx context.Context,
	sess auth.Session,
	status domain.TaskStatus,
) ([]domain.Task, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidStatus, status)
	}
	tasks, err := s.Tasks(ctx, sess)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Task, 0, len(tasks))
	for _, t := range tasks {
		if t.Status == status {
			out = append(out, t)
		}
	}
	kanban.SortByPriority(out)
	return out, nil
}

// lookup returns the index of a task the actor can see. Must be called with
// st.mu held.
func lookup(st *boardState, actor domain.Actor, id string) (int, error) {
	i := st.index(id)
	if i < 0 || !kanban.Visible(actor, st.tasks[i]) {
		return -1, ErrTaskNotFound
	}
	return i, nil
}

func (s *boardService) GetTask(ctx context.Context, sess auth.Session, id string) (*domain.Task, error) {
	var task domain.Task
	err := s.withState(ctx, sess, func(st *boardState) error {
		i, err := lookup(st, sess.Actor, id)
		if err != nil {
			return err
		}
		task = st.tasks[i].Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &task, nil
}

func (s *boardService) CreateTask(ctx context.Context, sess auth.Session, nt backend.NewTask) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if !sess.Actor.HasAny(domain.RoleAdmin, domain.RoleManager) {
		return nil, ErrForbidden
	}
	if err := validateNewTask(&nt); err != nil {
		return nil, err
	}

	var created domain.Task
	err := s.withState(ctx, sess, func(st *boardState) error {
		task, err := s.backend.CreateTask(ctx, sess.Token, nt)
		if err != nil {
			log.Error("failed to create task",
				slog.String("title", nt.Title),
				slog.String("error", err.Error()))
			return NewServiceError("board", "CreateTask", "failed to create task", err)
		}

		created = task.Clone()
		if created.Status == "" {
			created.Status = domain.StatusToDo
		}
		if created.CreatedBy == "" {
			created.CreatedBy = domain.CanonicalID(sess.Actor.EmployeeID)
		}
		if created.AssignedTo != "" && created.AssignedBy == "" {
			now := s.now().UTC()
			created.AssignedBy = domain.CanonicalID(sess.Actor.EmployeeID)
			created.AssignedAt = &now
		}
		if created.Remarks == nil {
			created.Remarks = []domain.Remark{}
		}
		st.tasks = append(st.tasks, created.Clone())
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.cache.markStale(sess.Actor.EmployeeID)

	log.Info("task created",
		slog.String("task_id", created.ID),
		slog.String("assigned_to", created.AssignedTo))

	event := events.NewTaskEvent(events.TaskCreated, s.actor(sess), created)
	event.Assigned = created.AssignedTo != ""
	s.emit(ctx, event)
	return &created, nil
}

// validateNewTask checks and normalizes the data for a new task.
func validateNewTask(nt *backend.NewTask) error {
	nt.Title = strings.TrimSpace(nt.Title)
	nt.Description = strings.TrimSpace(nt.Description)
	if nt.Priority == "" {
		nt.Priority = domain.PriorityMedium
	}
	candidate := domain.Task{
		Title:           nt.Title,
		Description:     nt.Description,
		Priority:        nt.Priority,
		Status:          domain.StatusToDo,
		ExpectedClosure: nt.ExpectedClosure,
	}
	if err := candidate.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(nt.AssignedTo) == "" {
		return domain.ErrMissingAssignee
	}
	if strings.TrimSpace(nt.Reviewer) == "" {
		return domain.ErrMissingReviewer
	}
	if _, err := domain.NormalizeID(nt.AssignedTo); err != nil {
		return fmt.Errorf("%w: assignee: %v", domain.ErrValidation, err)
	}
	if _, err := domain.NormalizeID(nt.Reviewer); err != nil {
		return fmt.Errorf("%w: reviewer: %v", domain.ErrValidation, err)
	}
	nt.AssignedTo = domain.CanonicalID(nt.AssignedTo)
	nt.Reviewer = domain.CanonicalID(nt.Reviewer)
	return nil
}

func (s *boardService) UpdateTask(
	ctx context.Context,
	sess auth.Session,
	id string,
	patch domain.TaskPatch,
) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if patch.Empty() {
		return nil, fmt.Errorf("%w: nothing to update", domain.ErrValidation)
	}
	if err := patch.Validate(); err != nil {
		return nil, err
	}
	if patch.AssignedTo != nil {
		v := domain.CanonicalID(*patch.AssignedTo)
		patch.AssignedTo = &v
	}
	if patch.Reviewer != nil {
		v := domain.CanonicalID(*patch.Reviewer)
		patch.Reviewer = &v
	}

	editsFields := patch.Title != nil || patch.Description != nil || patch.Priority != nil ||
		patch.AssignedTo != nil || patch.Reviewer != nil || patch.ExpectedClosure != nil
	if editsFields && !sess.Actor.HasAny(domain.RoleAdmin, domain.RoleManager) {
		return nil, ErrForbidden
	}

	var (
		updated  domain.Task
		from     domain.TaskStatus
		assigned bool
	)
	err := s.withState(ctx, sess, func(st *boardState) error {
		i, err := lookup(st, sess.Actor, id)
		if err != nil {
			return err
		}
		current := st.tasks[i]
		from = current.Status
		if patch.Status != nil && *patch.Status != current.Status {
			if err := kanban.CheckMove(sess.Actor, current, *patch.Status, ""); err != nil {
				return err
			}
		}
		assigned = patch.AssignedTo != nil && !domain.SameID(*patch.AssignedTo, current.AssignedTo)

		remote, err := s.backend.UpdateTask(ctx, sess.Token, current.ID, patch)
		if err != nil {
			log.Error("failed to update task",
				slog.String("task_id", current.ID),
				slog.String("error", err.Error()))
			return NewServiceError("board", "UpdateTask", "failed to update task", err)
		}

		next := current.Clone()
		if remote != nil {
			remarks := next.Remarks
			next = remote.Clone()
			next.Remarks = remarks
		} else {
			patch.Apply(&next, domain.CanonicalID(sess.Actor.EmployeeID), s.now().UTC())
		}
		if next.UpdatedAt == nil {
			now := s.now().UTC()
			next.UpdatedAt = &now
		}
		st.tasks[i] = next
		updated = next.Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.cache.markStale(sess.Actor.EmployeeID)

	log.Info("task updated", slog.String("task_id", updated.ID))

	actor := s.actor(sess)
	event := events.NewTaskEvent(events.TaskUpdated, actor, updated)
	event.Assigned = assigned
	s.emit(ctx, event)
	if updated.Status != from {
		s.emit(ctx, events.NewMoveEvent(actor, updated, from, updated.Status, ""))
	}
	return &updated, nil
}

func (s *boardService) DeleteTask(ctx context.Context, sess auth.Session, id string) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if !sess.Actor.HasAny(domain.RoleAdmin, domain.RoleManager) {
		return ErrForbidden
	}

	var deleted domain.Task
	err := s.withState(ctx, sess, func(st *boardState) error {
		i, err := lookup(st, sess.Actor, id)
		if err != nil {
			return err
		}
		if err := s.backend.DeleteTask(ctx, sess.Token, st.tasks[i].ID); err != nil {
			log.Error("failed to delete task",
				slog.String("task_id", st.tasks[i].ID),
				slog.String("error", err.Error()))
			return NewServiceError("board", "DeleteTask", "failed to delete task", err)
		}
		deleted = st.tasks[i]
		st.tasks = append(st.tasks[:i], st.tasks[i+1:]...)
		return nil
	})
	if err != nil {
		return err
	}
	s.cache.markStale(sess.Actor.EmployeeID)

	log.Info("task deleted", slog.String("task_id", deleted.ID))
	s.emit(ctx, events.NewTaskEvent(events.TaskDeleted, s.actor(sess), deleted))
	return nil
}

func (s *boardService) MoveTask(
	ctx context.Context,
	sess auth.Session,
	id string,
	to domain.TaskStatus,
	remark string,
) (*MoveResult, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)
	remark = strings.TrimSpace(remark)

	var (
		result MoveResult
		from   domain.TaskStatus
	)
	err := s.withState(ctx, sess, func(st *boardState) error {
		i, err := lookup(st, sess.Actor, id)
		if err != nil {
			return err
		}
		current := st.tasks[i]
		from = current.Status
		if to == current.Status {
			result = MoveResult{Task: current.Clone(), Changed: false, RemarkSynced: true}
			return nil
		}
		if err := kanban.CheckMove(sess.Actor, current, to, remark); err != nil {
			log.Debug("move rejected",
				slog.String("task_id", current.ID),
				slog.String("from", string(from)),
				slog.String("to", string(to)),
				slog.String("reason", err.Error()))
			return err
		}

		snapshot := current.Clone()
		actorID := domain.CanonicalID(sess.Actor.EmployeeID)
		now := s.now().UTC()

		next := current.Clone()
		status := to
		domain.TaskPatch{Status: &status}.Apply(&next, actorID, now)
		var local *domain.Remark
		if remark != "" {
			r := domain.Remark{
				ID:        fmt.Sprintf("local-%d", now.UnixNano()),
				TaskID:    next.ID,
				UserID:    actorID,
				UserName:  s.actorName(st, sess),
				Content:   remark,
				CreatedAt: now,
			}
			next.Remarks = append(next.Remarks, r)
			local = &next.Remarks[len(next.Remarks)-1]
		}
		st.tasks[i] = next

		if _, err := s.backend.UpdateTask(ctx, sess.Token, next.ID, domain.TaskPatch{Status: &status}); err != nil {
			st.tasks[i] = snapshot
			log.Warn("move rolled back",
				slog.String("task_id", next.ID),
				slog.String("from", string(from)),
				slog.String("to", string(to)),
				slog.String("error", err.Error()))
			return NewServiceError("board", "MoveTask", "failed to update task status", err)
		}

		result.RemarkSynced = true
		if local != nil {
			saved, err := s.backend.AddRemark(ctx, sess.Token, next.ID, remark)
			if err != nil {
				result.RemarkSynced = false
				log.Warn("move remark kept locally",
					slog.String("task_id", next.ID),
					slog.String("error", err.Error()))
			} else if saved != nil {
				r := *saved
				r.ResolveAuthor(st.employees)
				*local = r
			}
		}

		result.Task = st.tasks[i].Clone()
		result.Changed = true
		return nil
	})
	if err != nil {
		return nil, err
	}
	if !result.Changed {
		return &result, nil
	}
	s.cache.markStale(sess.Actor.EmployeeID)

	log.Info("task moved",
		slog.String("task_id", result.Task.ID),
		slog.String("from", string(from)),
		slog.String("to", string(to)))

	s.emit(ctx, events.NewMoveEvent(s.actor(sess), result.Task, from, to, remark))
	return &result, nil
}

func (s *boardService) Remarks(ctx context.Context, sess auth.Session, taskID string) ([]domain.Remark, error) {
	var remarks []domain.Remark
	err := s.withState(ctx, sess, func(st *boardState) error {
		i, err := lookup(st, sess.Actor, taskID)
		if err != nil {
			return err
		}
		remarks = make([]domain.Remark, len(st.tasks[i].Remarks))
		copy(remarks, st.tasks[i].Remarks)
		return nil
	})
	return remarks, err
}

func (s *boardService) AddRemark(
	ctx context.Context,
	sess auth.Session,
	taskID, content string,
) (*RemarkResult, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	content = strings.TrimSpace(content)
	if content == "" {
		return nil, domain.ErrEmptyContent
	}

	var (
		result RemarkResult
		task   domain.Task
	)
	err := s.withState(ctx, sess, func(st *boardState) error {
		i, err := lookup(st, sess.Actor, taskID)
		if err != nil {
			return err
		}

		saved, err := s.backend.AddRemark(ctx, sess.Token, st.tasks[i].ID, content)
		if err != nil {
			log.Warn("remark kept locally",
				slog.String("task_id", st.tasks[i].ID),
				slog.String("error", err.Error()))
		}
		result.Synced = err == nil
		if saved != nil {
			result.Remark = *saved
		} else {
			now := s.now().UTC()
			result.Remark = domain.Remark{
				ID:        fmt.Sprintf("local-%d", now.UnixNano()),
				TaskID:    st.tasks[i].ID,
				UserID:    domain.CanonicalID(sess.Actor.EmployeeID),
				UserName:  s.actorName(st, sess),
				Content:   content,
				CreatedAt: now,
			}
		}
		result.Remark.ResolveAuthor(st.employees)
		st.tasks[i].Remarks = append(st.tasks[i].Remarks, result.Remark)
		task = st.tasks[i].Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.cache.markStale(sess.Actor.EmployeeID)

	log.Info("remark added",
		slog.String("task_id", task.ID),
		slog.Bool("synced", result.Synced))

	s.emit(ctx, events.NewRemarkEvent(s.actor(sess), task, content))
	return &result, nil
}

func (s *boardService) Invalidate(sess auth.Session) {
	s.cache.drop(sess.Actor.EmployeeID)
}

// actor returns the session's actor with its display name filled in from
// the cached directory, when known.
func (s *boardService) actor(sess auth.Session) domain.Actor {
	actor := sess.Actor
	if actor.Name != "" {
		return actor
	}
	st := s.cache.get(actor.EmployeeID)
	st.mu.Lock()
	defer st.mu.Unlock()
	actor.Name = s.actorName(st, sess)
	return actor
}

// actorName must be called with st.mu held.
func (s *boardService) actorName(st *boardState, sess auth.Session) string {
	if sess.Actor.Name != "" {
		return sess.Actor.Name
	}
	if name := domain.EmployeeName(st.employees, sess.Actor.EmployeeID); name != "" {
		return name
	}
	return domain.UnknownAuthor
}

// emit publishes an event. A failing handler never fails the operation that
// triggered it.
func (s *boardService) emit(ctx context.Context, event *events.BoardEvent) {
	if err := s.emitter.EmitEvent(ctx, event); err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to emit event",
			slog.String("event_type", string(event.Type)),
			slog.String("entity_id", event.EntityID),
			slog.String("error", err.Error()))
	}
}

func sortRemarks(remarks []domain.Remark) {
	sort.SliceStable(remarks, func(i, j int) bool {
		return remarks[i].CreatedAt.Before(remarks[j].CreatedAt)
	})
}
