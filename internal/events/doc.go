// Package events carries board activity from the services to the components
// that react to it (the audit trail and the notification feed) without the
// services knowing who listens.
package events
