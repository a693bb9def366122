package events

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/phrazzld/teamboard/internal/jobs"
)

// InMemoryEventEmitter stores registered handlers in memory and dispatches
// events to them. With a job submitter each handler call becomes a
// background job; without one, handlers run before EmitEvent returns.
type InMemoryEventEmitter struct {
	handlers  []EventHandler
	mu        sync.RWMutex
	submitter jobs.Submitter
	logger    *slog.Logger
}

// Ensure InMemoryEventEmitter implements EventEmitter interface
var _ EventEmitter = (*InMemoryEventEmitter)(nil)

// NewInMemoryEventEmitter creates a new emitter. submitter may be nil.
func NewInMemoryEventEmitter(logger *slog.Logger, submitter jobs.Submitter) *InMemoryEventEmitter {
	if logger == nil {
		logger = slog.Default()
	}
	return &InMemoryEventEmitter{
		handlers:  make([]EventHandler, 0),
		submitter: submitter,
		logger:    logger.With("component", "in_memory_event_emitter"),
	}
}

// RegisterHandler adds a new event handler to receive events.
func (e *InMemoryEventEmitter) RegisterHandler(handler EventHandler) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.handlers = append(e.handlers, handler)
	e.logger.Debug("registered new event handler", "handler_count", len(e.handlers))
}

// EmitEvent publishes the given event to all registered handlers.
// Synchronously, every handler receives the event even if an earlier one
// fails, and the first error is returned. Asynchronously, handler errors are
// only logged and EmitEvent returns nil.
func (e *InMemoryEventEmitter) EmitEvent(ctx context.Context, event *BoardEvent) error {
	e.mu.RLock()
	handlers := make([]EventHandler, len(e.handlers))
	copy(handlers, e.handlers)
	e.mu.RUnlock()

	e.logger.Debug("emitting event",
		"event_id", event.ID,
		"event_type", event.Type,
		"handler_count", len(handlers))

	if len(handlers) == 0 {
		e.logger.Warn("no handlers registered for event",
			"event_id", event.ID,
			"event_type", event.Type)
		return nil
	}

	if e.submitter != nil {
		for i, handler := range handlers {
			h := handler
			e.submitter.Submit(ctx, jobs.Func{
				JobName: fmt.Sprintf("event:%s#%d", event.Type, i),
				Fn: func(ctx context.Context) error {
					return h.HandleEvent(ctx, event)
				},
			})
		}
		return nil
	}

	var firstErr error
	for i, handler := range handlers {
		if err := handler.HandleEvent(ctx, event); err != nil {
			e.logger.Error("handler failed to process event",
				"error", err,
				"handler_index", i,
				"event_id", event.ID,
				"event_type", event.Type)
			if firstErr == nil {
				firstErr = err
			}
		}
	}

	return firstErr
}
