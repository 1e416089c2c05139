// Package lock serializes work per key inside one process.
package lock

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

var ErrLockTimeout = errors.New("could not acquire lock")

const (
	DefaultAttempts       = 3
	DefaultAttemptTimeout = 2 * time.Second
)

type Options struct {
	// Attempts - how many times Acquire waits for the lock before giving up.
	Attempts int
	// AttemptTimeout - how long a single attempt waits.
	AttemptTimeout time.Duration
}

type entry struct {
	sem chan struct{}
	// refs - holders plus waiters, guarded by Registry.mu.
	refs     int
	lastUsed time.Time
}

// Registry hands out one mutex per key. Entries are created on first use
// and live until Reclaim removes them.
type Registry struct {
	opts    Options
	mu      sync.Mutex
	entries map[string]*entry
	now     func() time.Time
}

func NewRegistry(opts Options) *Registry {
	if opts.Attempts < 1 {
		opts.Attempts = DefaultAttempts
	}
	if opts.AttemptTimeout <= 0 {
		opts.AttemptTimeout = DefaultAttemptTimeout
	}
	return &Registry{
		opts:    opts,
		entries: make(map[string]*entry),
		now:     time.Now,
	}
}

// Handle - a held lock. Release is safe to call more than once.
type Handle struct {
	ID   string
	Key  string
	r    *Registry
	e    *entry
	once sync.Once
}

func (h *Handle) Release() {
	h.once.Do(func() {
		<-h.e.sem
		h.r.unref(h.e)
	})
}

// Acquire blocks until the key's lock is held, ctx is done or every attempt timed out.
func (r *Registry) Acquire(ctx context.Context, key string) (*Handle, error) {
	e := r.ref(key)
	for range r.opts.Attempts {
		timer := time.NewTimer(r.opts.AttemptTimeout)
		select {
		case e.sem <- struct{}{}:
			timer.Stop()
			return &Handle{ID: uuid.NewString(), Key: key, r: r, e: e}, nil
		case <-ctx.Done():
			timer.Stop()
			r.unref(e)
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
	r.unref(e)
	return nil, ErrLockTimeout
}

func (r *Registry) ref(key string) *entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[key]
	if !ok {
		e = &entry{sem: make(chan struct{}, 1)}
		r.entries[key] = e
	}
	e.refs++
	e.lastUsed = r.now()
	return e
}

func (r *Registry) unref(e *entry) {
	r.mu.Lock()
	e.refs--
	e.lastUsed = r.now()
	r.mu.Unlock()
}

// Reclaim drops entries nobody holds or waits on that were idle longer than ttl.
// Returns the number of removed entries.
func (r *Registry) Reclaim(ttl time.Duration) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	removed := 0
	deadline := r.now().Add(-ttl)
	for key, e := range r.entries {
		if e.refs == 0 && !e.lastUsed.After(deadline) {
			delete(r.entries, key)
			removed++
		}
	}
	return removed
}

// Len returns the number of live entries.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// RunJanitor reclaims idle entries every ttl/2 until ctx is done.
func (r *Registry) RunJanitor(ctx context.Context, ttl time.Duration, onReclaim func(removed int)) {
	if ttl <= 0 {
		return
	}
	ticker := time.NewTicker(ttl / 2)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := r.Reclaim(ttl); n > 0 && onReclaim != nil {
				onReclaim(n)
			}
		}
	}
}
