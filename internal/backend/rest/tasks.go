package rest

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/phrazzld/teamboard/internal/backend"
	"github.com/phrazzld/teamboard/internal/domain"
)

// ListTasks implements backend.TaskBackend.
func (c *Client) ListTasks(ctx context.Context, token string) ([]domain.Task, error) {
	var wire []wireTask
	if err := c.do(ctx, request{method: http.MethodGet, path: "/api/tasks/", token: token}, &wire); err != nil {
		return nil, err
	}
	tasks := make([]domain.Task, 0, len(wire))
	for _, w := range wire {
		tasks = append(tasks, w.toDomain())
	}
	return tasks, nil
}

// CreateTask implements backend.TaskBackend.
func (c *Client) CreateTask(ctx context.Context, token string, task backend.NewTask) (*domain.Task, error) {
	assignee, err := wireID(task.AssignedTo)
	if err != nil {
		return nil, err
	}
	reviewer, err := wireID(task.Reviewer)
	if err != nil {
		return nil, err
	}

	var wire wireTask
	err = c.do(ctx, request{
		method: http.MethodPost,
		path:   "/api/tasks/",
		token:  token,
		body: map[string]any{
			"title":            task.Title,
			"description":      task.Description,
			"priority":         string(task.Priority),
			"expected_closure": task.ExpectedClosure.UTC().Format(time.RFC3339),
			"assigned_to":      assignee,
			"reviewer":         reviewer,
		},
	}, &wire)
	if err != nil {
		return nil, err
	}
	created := wire.toDomain()
	return &created, nil
}

// UpdateTask implements backend.TaskBackend.
func (c *Client) UpdateTask(
	ctx context.Context,
	token, id string,
	patch domain.TaskPatch,
) (*domain.Task, error) {
	taskID, err := wireID(id)
	if err != nil {
		return nil, err
	}
	body, err := taskPatchBody(patch)
	if err != nil {
		return nil, err
	}

	var wire wireTask
	err = c.do(ctx, request{
		method: http.MethodPatch,
		path:   "/api/tasks/" + itoa(taskID),
		token:  token,
		body:   body,
	}, &wire)
	if err != nil {
		return nil, err
	}
	updated := wire.toDomain()
	if updated.ID == "" {
		// Some deployments answer with a status message instead of the task.
		return nil, nil
	}
	return &updated, nil
}

// DeleteTask implements backend.TaskBackend.
func (c *Client) DeleteTask(ctx context.Context, token, id string) error {
	taskID, err := wireID(id)
	if err != nil {
		return err
	}
	return c.do(ctx, request{method: http.MethodDelete, path: "/api/tasks/" + itoa(taskID), token: token}, nil)
}

// ListRemarks implements backend.TaskBackend.
func (c *Client) ListRemarks(ctx context.Context, token, taskID string) ([]domain.Remark, error) {
	id, err := wireID(taskID)
	if err != nil {
		return nil, err
	}
	var wire []wireRemark
	err = c.do(ctx, request{
		method: http.MethodGet,
		path:   "/api/remarks/task/" + itoa(id) + "/",
		token:  token,
	}, &wire)
	if err != nil {
		return nil, err
	}
	remarks := make([]domain.Remark, 0, len(wire))
	for _, w := range wire {
		r := w.toDomain()
		if r.TaskID == "" {
			r.TaskID = taskID
		}
		remarks = append(remarks, r)
	}
	return remarks, nil
}

// AddRemark implements backend.TaskBackend. The backend takes the remark as
// query parameters.
func (c *Client) AddRemark(ctx context.Context, token, taskID, content string) (*domain.Remark, error) {
	id, err := wireID(taskID)
	if err != nil {
		return nil, err
	}
	var wire wireRemark
	err = c.do(ctx, request{
		method: http.MethodPost,
		path:   "/api/remarks/",
		token:  token,
		query:  url.Values{"task_id": {itoa(id)}, "comment": {content}},
	}, &wire)
	if err != nil {
		return nil, err
	}
	r := wire.toDomain()
	if r.TaskID == "" {
		r.TaskID = taskID
	}
	if strings.TrimSpace(r.Content) == "" {
		r.Content = content
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	return &r, nil
}
