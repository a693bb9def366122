// Package api handles incoming HTTP requests for the dashboard: routing,
// request validation and response formatting. Handlers translate HTTP into
// calls on the service layer and map service errors to status codes in
// errors.go.
package api
