package web

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-diagnostic/pkg/wizard"
)

// entry is one browser session. mu serialises requests of that session since
// a Controller is single-owner.
type entry struct {
	mu       sync.Mutex
	ctrl     *wizard.Controller
	lastSeen time.Time
}

type sessionTable struct {
	mu      sync.Mutex
	entries map[string]*entry
	ttl     time.Duration
	now     func() time.Time
}

func newSessionTable(ttl time.Duration) *sessionTable {
	return &sessionTable{
		entries: make(map[string]*entry),
		ttl:     ttl,
		now:     time.Now,
	}
}

func (t *sessionTable) get(id string) (*entry, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	e, ok := t.entries[id]
	if !ok {
		return nil, false
	}
	e.lastSeen = t.now()
	return e, true
}

// add stores ctrl under a fresh id, pruning idle sessions first.
func (t *sessionTable) add(ctrl *wizard.Controller) string {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.pruneLocked()

	id := uuid.NewString()
	t.entries[id] = &entry{ctrl: ctrl, lastSeen: t.now()}
	return id
}

func (t *sessionTable) remove(id string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.entries, id)
}

func (t *sessionTable) len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.entries)
}

func (t *sessionTable) pruneLocked() {
	if t.ttl <= 0 {
		return
	}
	cutoff := t.now().Add(-t.ttl)
	for id, e := range t.entries {
		if e.lastSeen.Before(cutoff) {
			delete(t.entries, id)
		}
	}
}
