package service

import (
	"sync"
	"time"

	"github.com/phrazzld/teamboard/internal/domain"
)

// boardState is one user's cached view of the board: the tasks visible to
// them, with remarks, and the employee directory used to name authors.
type boardState struct {
	mu        sync.Mutex
	tasks     []domain.Task
	employees []domain.Employee
	loaded    bool
	loadedAt  time.Time
}

// fresh reports whether the state may be served without reloading. Must be
// called with mu held.
func (st *boardState) fresh(now time.Time, ttl time.Duration) bool {
	if !st.loaded {
		return false
	}
	return ttl > 0 && now.Sub(st.loadedAt) < ttl
}

// index returns the position of the task with the given id, or -1. Must be
// called with mu held.
func (st *boardState) index(id string) int {
	for i := range st.tasks {
		if domain.SameID(st.tasks[i].ID, id) {
			return i
		}
	}
	return -1
}

// snapshot returns a deep copy of the tasks. Must be called with mu held.
func (st *boardState) snapshot() []domain.Task {
	out := make([]domain.Task, len(st.tasks))
	for i, t := range st.tasks {
		out[i] = t.Clone()
	}
	return out
}

// boardCache maps employee ids to their board state.
type boardCache struct {
	mu     sync.Mutex
	states map[string]*boardState
}

func newBoardCache() *boardCache {
	return &boardCache{states: make(map[string]*boardState)}
}

func (c *boardCache) get(employeeID string) *boardState {
	key := domain.CanonicalID(employeeID)
	c.mu.Lock()
	defer c.mu.Unlock()
	st, ok := c.states[key]
	if !ok {
		st = &boardState{}
		c.states[key] = st
	}
	return st
}

func (c *boardCache) drop(employeeID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.states, domain.CanonicalID(employeeID))
}

// markStale forces every state except the actor's to reload on next use, so
// other users see a change made by the actor.
func (c *boardCache) markStale(exceptEmployeeID string) {
	except := domain.CanonicalID(exceptEmployeeID)
	c.mu.Lock()
	states := make([]*boardState, 0, len(c.states))
	for key, st := range c.states {
		if key != except {
			states = append(states, st)
		}
	}
	c.mu.Unlock()

	for _, st := range states {
		st.mu.Lock()
		st.loaded = false
		st.mu.Unlock()
	}
}
