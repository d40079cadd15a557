package navigation

import (
	"context"
	"sync"
)

// Visit is one recorded navigation.
type Visit struct {
	To   string
	From string
}

// Recorder is a Navigator that remembers every navigation. It is safe for
// concurrent use.
type Recorder struct {
	mu     sync.Mutex
	visits []Visit
}

// Navigate implements Navigator.
func (r *Recorder) Navigate(_ context.Context, to, from string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.visits = append(r.visits, Visit{To: to, From: from})
}

// Visits returns a copy of the recorded navigations.
func (r *Recorder) Visits() []Visit {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Visit(nil), r.visits...)
}

// Last returns the most recent navigation.
func (r *Recorder) Last() (Visit, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.visits) == 0 {
		return Visit{}, false
	}
	return r.visits[len(r.visits)-1], true
}
