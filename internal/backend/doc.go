// Package backend defines the dashboard's view of the upstream REST backend
// that owns authentication, employees, users, tasks and remarks. The rest
// subpackage talks to the real service over HTTP; the memory subpackage is a
// seeded in-process stand-in used for demos and tests.
package backend
