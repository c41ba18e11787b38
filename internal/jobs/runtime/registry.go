package runtime

import (
	"fmt"
	"sort"
	"sync"
	"time"
)

type Handler interface {
	Type() string
	Run(ctx *Context) error
}

// RetryPolicy is copied onto each job row at enqueue time. A failed run is
// retried after Backoff until it has been attempted MaxAttempts times.
type RetryPolicy struct {
	MaxAttempts int
	Backoff     time.Duration
}

// PolicyHandler is implemented by handlers that want more than one attempt.
type PolicyHandler interface {
	RetryPolicy() RetryPolicy
}

var DefaultRetryPolicy = RetryPolicy{MaxAttempts: 1}

type Registry struct {
	mu       sync.RWMutex
	handlers map[string]Handler
}

func NewRegistry() *Registry {
	return &Registry{handlers: make(map[string]Handler)}
}

func (r *Registry) Register(h Handler) error {
	if h == nil {
		return fmt.Errorf("nil handler")
	}
	t := h.Type()
	if t == "" {
		return fmt.Errorf("handler Type() is empty")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.handlers[t]; exists {
		return fmt.Errorf("handler already registered for job_type=%s", t)
	}
	r.handlers[t] = h
	return nil
}

func (r *Registry) Get(jobType string) (Handler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.handlers[jobType]
	return h, ok
}

func (r *Registry) Policy(jobType string) RetryPolicy {
	h, ok := r.Get(jobType)
	if !ok {
		return DefaultRetryPolicy
	}
	ph, ok := h.(PolicyHandler)
	if !ok {
		return DefaultRetryPolicy
	}
	p := ph.RetryPolicy()
	if p.MaxAttempts < 1 {
		p.MaxAttempts = 1
	}
	return p
}

func (r *Registry) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.handlers))
	for t := range r.handlers {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}
