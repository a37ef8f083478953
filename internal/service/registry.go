package service

import (
	"context"
	"sync"

	"github.com/Bessima/quicksms/internal/models"
)

// task is the in-memory handle of one PENDING order. mu serialises every
// transition of the order.
type task struct {
	mu        sync.Mutex
	order     models.Order
	state     State
	seenCodes map[string]struct{}
	stop      context.CancelFunc
}

func newTask(order models.Order) *task {
	return &task{
		order:     order,
		state:     WaitingState,
		seenCodes: map[string]struct{}{},
		stop:      func() {},
	}
}

// terminate moves the task to a terminal state and wakes its polling loop.
// Callers hold mu.
func (t *task) terminate(state State) {
	t.state = state
	t.stop()
}

func (t *task) current() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// registry holds the live polling tasks, at most one per order id.
type registry struct {
	mu    sync.Mutex
	tasks map[string]*task
}

func newRegistry() *registry {
	return &registry{tasks: map[string]*task{}}
}

func (r *registry) add(t *task) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.tasks[t.order.ID]; ok {
		return false
	}
	r.tasks[t.order.ID] = t
	return true
}

func (r *registry) remove(t *task) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.tasks[t.order.ID] == t {
		delete(r.tasks, t.order.ID)
	}
}

func (r *registry) get(orderID string) (*task, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.tasks[orderID]
	return t, ok
}

func (r *registry) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.tasks)
}
