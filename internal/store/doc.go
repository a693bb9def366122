// Package store defines the persistence interfaces for the data the
// dashboard owns itself: the notification feed and the audit trail.
// Employees, users and tasks live in the upstream backend and never pass
// through this package.
package store
