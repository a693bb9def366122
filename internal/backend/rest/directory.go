package rest

import (
	"context"
	"net/http"

	"github.com/phrazzld/teamboard/internal/backend"
	"github.com/phrazzld/teamboard/internal/domain"
)

func (c *Client) listEmployees(ctx context.Context, token, path string) ([]domain.Employee, error) {
	var wire []wireEmployee
	if err := c.do(ctx, request{method: http.MethodGet, path: path, token: token}, &wire); err != nil {
		return nil, err
	}
	employees := make([]domain.Employee, 0, len(wire))
	for _, w := range wire {
		employees = append(employees, w.toDomain())
	}
	return employees, nil
}

// ListEmployees implements backend.DirectoryBackend.
func (c *Client) ListEmployees(ctx context.Context, token string) ([]domain.Employee, error) {
	return c.listEmployees(ctx, token, "/api/employees/")
}

// MyTeam implements backend.DirectoryBackend.
func (c *Client) MyTeam(ctx context.Context, token string) ([]domain.Employee, error) {
	return c.listEmployees(ctx, token, "/api/employees/me/")
}

// GetEmployee implements backend.DirectoryBackend.
func (c *Client) GetEmployee(ctx context.Context, token, id string) (*domain.Employee, error) {
	eid, err := wireID(id)
	if err != nil {
		return nil, err
	}
	var wire wireEmployee
	err = c.do(ctx, request{method: http.MethodGet, path: "/api/employees/" + itoa(eid) + "/", token: token}, &wire)
	if err != nil {
		return nil, err
	}
	e := wire.toDomain()
	return &e, nil
}

// CreateEmployee implements backend.DirectoryBackend.
func (c *Client) CreateEmployee(ctx context.Context, token string, employee domain.Employee) (*domain.Employee, error) {
	mgr, err := optionalID(domain.NormalizeManagerID(employee.ManagerID))
	if err != nil {
		return nil, err
	}
	var wire wireEmployee
	err = c.do(ctx, request{
		method: http.MethodPost,
		path:   "/api/employees/",
		token:  token,
		body: map[string]any{
			"name":        employee.Name,
			"email":       employee.Email,
			"designation": employee.Designation,
			"mgr_id":      mgr,
		},
	}, &wire)
	if err != nil {
		return nil, err
	}
	e := wire.toDomain()
	return &e, nil
}

// UpdateEmployee implements backend.DirectoryBackend.
func (c *Client) UpdateEmployee(
	ctx context.Context,
	token, id string,
	update backend.EmployeeUpdate,
) (*domain.Employee, error) {
	eid, err := wireID(id)
	if err != nil {
		return nil, err
	}
	body := make(map[string]any)
	if update.Name != nil {
		body["name"] = *update.Name
	}
	if update.Designation != nil {
		body["designation"] = *update.Designation
	}
	if update.ManagerID != nil {
		mgr, err := optionalID(domain.NormalizeManagerID(*update.ManagerID))
		if err != nil {
			return nil, err
		}
		body["mgr_id"] = mgr
	}

	var wire wireEmployee
	err = c.do(ctx, request{
		method: http.MethodPut,
		path:   "/api/employees/" + itoa(eid) + "/",
		token:  token,
		body:   body,
	}, &wire)
	if err != nil {
		return nil, err
	}
	e := wire.toDomain()
	return &e, nil
}

// DeleteEmployee implements backend.DirectoryBackend.
func (c *Client) DeleteEmployee(ctx context.Context, token, id string) error {
	eid, err := wireID(id)
	if err != nil {
		return err
	}
	return c.do(ctx, request{method: http.MethodDelete, path: "/api/employees/" + itoa(eid) + "/", token: token}, nil)
}

// ListUsers implements backend.DirectoryBackend.
func (c *Client) ListUsers(ctx context.Context, token string) ([]domain.User, error) {
	var wire []wireUser
	if err := c.do(ctx, request{method: http.MethodGet, path: "/api/users/", token: token}, &wire); err != nil {
		return nil, err
	}
	users := make([]domain.User, 0, len(wire))
	for _, w := range wire {
		users = append(users, w.toDomain())
	}
	return users, nil
}

// CreateUser implements backend.DirectoryBackend.
func (c *Client) CreateUser(ctx context.Context, token string, user backend.NewUser) (*domain.User, error) {
	eid, err := wireID(user.EmployeeID)
	if err != nil {
		return nil, err
	}
	body := map[string]any{"e_id": eid, "role": string(user.Role)}
	if user.Password != "" {
		body["password"] = user.Password
	}
	var wire wireUser
	if err := c.do(ctx, request{method: http.MethodPost, path: "/api/users/", token: token, body: body}, &wire); err != nil {
		return nil, err
	}
	u := wire.toDomain()
	return &u, nil
}

// UpdateUser implements backend.DirectoryBackend.
func (c *Client) UpdateUser(ctx context.Context, token, id string, update backend.UserUpdate) (*domain.User, error) {
	eid, err := wireID(id)
	if err != nil {
		return nil, err
	}
	body := make(map[string]any)
	if update.Role != nil {
		body["role"] = string(*update.Role)
	}
	if update.Status != nil {
		body["status"] = string(*update.Status)
	}
	var wire wireUser
	err = c.do(ctx, request{method: http.MethodPut, path: "/api/users/" + itoa(eid) + "/", token: token, body: body}, &wire)
	if err != nil {
		return nil, err
	}
	u := wire.toDomain()
	return &u, nil
}

// DeleteUser implements backend.DirectoryBackend.
func (c *Client) DeleteUser(ctx context.Context, token, id string) error {
	eid, err := wireID(id)
	if err != nil {
		return err
	}
	return c.do(ctx, request{method: http.MethodDelete, path: "/api/users/" + itoa(eid) + "/", token: token}, nil)
}
