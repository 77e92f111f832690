package report

import (
	"fmt"
	"sync"
)

// Registry manages registered report steps
type Registry struct {
	mu    sync.RWMutex
	steps map[string]Step
	order []string // Maintains registration order
}

// NewRegistry creates a new Step registry
func NewRegistry() *Registry {
	return &Registry{
		steps: make(map[string]Step),
		order: make([]string, 0),
	}
}

// Register adds a Step to the registry
func (r *Registry) Register(step Step) error {
	if step == nil {
		return fmt.Errorf("cannot register nil step")
	}

	id := step.ID()
	if id == "" {
		return fmt.Errorf("step ID cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.steps[id]; exists {
		return fmt.Errorf("step with ID %s already registered", id)
	}

	r.steps[id] = step
	r.order = append(r.order, id)
	return nil
}

// Ordered returns the registered steps in the given order. Every id must be
// registered; registered steps missing from order are appended in
// registration order.
func (r *Registry) Ordered(order []string) ([]Step, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[string]bool, len(order))
	steps := make([]Step, 0, len(r.steps))
	for _, id := range order {
		step, exists := r.steps[id]
		if !exists {
			return nil, fmt.Errorf("step with ID %s not found", id)
		}
		if seen[id] {
			continue
		}
		seen[id] = true
		steps = append(steps, step)
	}
	for _, id := range r.order {
		if !seen[id] {
			steps = append(steps, r.steps[id])
		}
	}
	return steps, nil
}
