// Package jobs runs short background jobs on a fixed pool of workers fed by a
// bounded queue. The event pipeline uses it so that audit writes and
// notification fan-out do not hold up HTTP handlers.
package jobs
