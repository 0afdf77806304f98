package indexer

import (
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
)

// DevicePool models spec §5's resource pool around a Backend: callers
// acquire a reference-counted Session rather than touching the backend
// directly. AutoDispose only affects a session whose reference count
// reaches zero: it is marked disposed, so a further Release on it is
// skipped. The pool never releases or closes the backend itself, with or
// without AutoDispose; the backend handle stays live for the pool's
// lifetime.
type DevicePool struct {
	backend     Backend
	autoDispose bool

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewDevicePool constructs a DevicePool around backend.
func NewDevicePool(backend Backend, autoDispose bool) *DevicePool {
	return &DevicePool{
		backend:     backend,
		autoDispose: autoDispose,
		sessions:    make(map[string]*Session),
	}
}

// Session is one checked-out, ref-counted handle on a DevicePool's backend.
type Session struct {
	ID       string
	pool     *DevicePool
	refCount int32
	disposed bool
}

// Acquire checks out a new Session with an initial reference count of 1.
func (p *DevicePool) Acquire() *Session {
	s := &Session{ID: uuid.NewString(), pool: p, refCount: 1}
	p.mu.Lock()
	p.sessions[s.ID] = s
	p.mu.Unlock()
	return s
}

// Backend returns the pool's backend for this session.
func (s *Session) Backend() Backend { return s.pool.backend }

// Retain increments the session's reference count, e.g. when a single
// logical operation fans out across multiple concurrent indexer calls.
func (s *Session) Retain() {
	atomic.AddInt32(&s.refCount, 1)
}

// Release decrements the reference count. Once it reaches zero the session
// is removed from the pool; under AutoDispose the session is additionally
// marked disposed and a further Release is a no-op.
func (s *Session) Release() {
	if atomic.AddInt32(&s.refCount, -1) > 0 {
		return
	}
	s.pool.mu.Lock()
	defer s.pool.mu.Unlock()
	if s.disposed {
		return
	}
	delete(s.pool.sessions, s.ID)
	if s.pool.autoDispose {
		s.disposed = true
	}
}

// Active reports the number of live sessions.
func (p *DevicePool) Active() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.sessions)
}
