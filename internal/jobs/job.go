package jobs

import "context"

// Job is a unit of background work.
type Job interface {
	// Name identifies the job in logs.
	Name() string

	// Run executes the job.
	Run(ctx context.Context) error
}

// Func adapts a function to the Job interface.
type Func struct {
	JobName string
	Fn      func(ctx context.Context) error
}

// Name implements Job.
func (f Func) Name() string { return f.JobName }

// Run implements Job.
func (f Func) Run(ctx context.Context) error { return f.Fn(ctx) }

// Submitter accepts jobs for execution.
type Submitter interface {
	Submit(ctx context.Context, job Job)
}
