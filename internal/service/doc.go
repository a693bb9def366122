// Package service contains the dashboard's use cases. Services combine the
// upstream backend, the per-user board state, the dashboard's own stores and
// the event pipeline.
//
// Every operation runs on behalf of an auth.Session: the session's actor
// decides what is permitted and its token is forwarded upstream, so the
// backend applies its own authorization as well.
//
// Services return sentinel errors for expected conditions (ErrForbidden,
// ErrTaskNotFound, domain and kanban validation errors) and wrap everything
// else in *ServiceError. Backend errors stay in the chain so the API layer
// can tell an unreachable backend from a rejected request.
package service
