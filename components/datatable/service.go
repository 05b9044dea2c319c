package datatable

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
)

// Factory mounts a fresh table for a session.
type Factory func(ctx context.Context, session string) (Handle, error)

// Session limits applied when Options leaves them zero.
const (
	DefaultSessionIdle = 30 * time.Minute
	DefaultMaxSessions = 1000
)

// Options configures the table service.
type Options struct {
	Telemetry Telemetry
	// SessionIdle unmounts sessions not touched for this long. Negative disables it.
	SessionIdle time.Duration
	// MaxSessions caps mounted sessions; the least recently used one is unmounted to
	// make room. Negative disables the cap.
	MaxSessions int
	Now         func() time.Time
}

// Service keeps one mounted table per session and table name.
type Service struct {
	mu        sync.Mutex
	factories map[string]Factory
	order     []string
	mounts    map[string]map[string]Handle
	seen      map[string]time.Time
	idle      time.Duration
	max       int
	now       func() time.Time
	telemetry Telemetry
}

// NewService builds an empty service.
func NewService(opts Options) *Service {
	if opts.SessionIdle == 0 {
		opts.SessionIdle = DefaultSessionIdle
	}
	if opts.MaxSessions == 0 {
		opts.MaxSessions = DefaultMaxSessions
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Service{
		factories: make(map[string]Factory),
		mounts:    make(map[string]map[string]Handle),
		seen:      make(map[string]time.Time),
		idle:      opts.SessionIdle,
		max:       opts.MaxSessions,
		now:       opts.Now,
		telemetry: normalizeTelemetry(opts.Telemetry),
	}
}

// Register adds a table factory under name.
func (s *Service) Register(name string, factory Factory) error {
	name = strings.TrimSpace(name)
	if name == "" || factory == nil {
		return fmt.Errorf("datatable: register requires a name and factory")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.factories[name]; exists {
		return fmt.Errorf("%w: %s", ErrTableExists, name)
	}
	s.factories[name] = factory
	s.order = append(s.order, name)
	return nil
}

// Tables lists registered table names in registration order.
func (s *Service) Tables() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.order...)
}

// Handle returns the session's mounted table, mounting it on first use. Mounting a new
// session first evicts idle sessions and, at the cap, the least recently used one.
func (s *Service) Handle(ctx context.Context, session, table string) (Handle, error) {
	if session == "" {
		return nil, ErrSessionRequired
	}
	var evicted map[string]map[string]Handle
	defer func() { s.closeEvicted(ctx, evicted, "evict") }()

	s.mu.Lock()
	defer s.mu.Unlock()
	factory, ok := s.factories[table]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTable, table)
	}
	now := s.now()
	if handle, ok := s.mounts[session][table]; ok {
		s.seen[session] = now
		return handle, nil
	}
	if s.mounts[session] == nil {
		evicted = s.evictLocked(now, session)
	}
	handle, err := factory(ctx, session)
	if err != nil {
		return nil, fmt.Errorf("datatable: mount %s: %w", table, err)
	}
	if s.mounts[session] == nil {
		s.mounts[session] = make(map[string]Handle)
	}
	s.mounts[session][table] = handle
	s.seen[session] = now
	s.telemetry.Record(ctx, "datatable.mount", map[string]any{"table": table, "session": session})
	return handle, nil
}

// Sweep unmounts sessions idle for longer than the configured timeout and returns how
// many sessions were closed.
func (s *Service) Sweep(ctx context.Context) int {
	s.mu.Lock()
	evicted := s.evictLocked(s.now(), "")
	s.mu.Unlock()
	s.closeEvicted(ctx, evicted, "sweep")
	return len(evicted)
}

// RunSweeper calls Sweep every interval until ctx is done.
func (s *Service) RunSweeper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep(ctx)
		}
	}
}

// evictLocked detaches idle sessions and, when incoming would exceed the cap, the least
// recently used ones. The caller closes the returned handles after unlocking.
func (s *Service) evictLocked(now time.Time, incoming string) map[string]map[string]Handle {
	evicted := make(map[string]map[string]Handle)
	if s.idle > 0 {
		for session, last := range s.seen {
			if now.Sub(last) > s.idle {
				evicted[session] = s.detachLocked(session)
			}
		}
	}
	if incoming != "" && s.max > 0 {
		for len(s.mounts) >= s.max {
			oldest, first := "", true
			for session, last := range s.seen {
				if first || last.Before(s.seen[oldest]) {
					oldest, first = session, false
				}
			}
			if first {
				break
			}
			evicted[oldest] = s.detachLocked(oldest)
		}
	}
	return evicted
}

func (s *Service) detachLocked(session string) map[string]Handle {
	handles := s.mounts[session]
	delete(s.mounts, session)
	delete(s.seen, session)
	return handles
}

func (s *Service) closeEvicted(ctx context.Context, evicted map[string]map[string]Handle, reason string) {
	for session, handles := range evicted {
		for _, handle := range handles {
			handle.Close()
		}
		s.telemetry.Record(ctx, "datatable.unmount", map[string]any{
			"session": session,
			"tables":  len(handles),
			"reason":  reason,
		})
	}
}

// Unmount tears down every table of a session and returns how many were closed.
func (s *Service) Unmount(ctx context.Context, session string) int {
	s.mu.Lock()
	handles := s.detachLocked(session)
	s.mu.Unlock()

	for _, handle := range handles {
		handle.Close()
	}
	if len(handles) > 0 {
		s.telemetry.Record(ctx, "datatable.unmount", map[string]any{"session": session, "tables": len(handles)})
	}
	return len(handles)
}

// Sessions returns the number of sessions with mounted tables.
func (s *Service) Sessions() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.mounts)
}

// Close unmounts every session.
func (s *Service) Close() {
	s.mu.Lock()
	mounts := s.mounts
	s.mounts = make(map[string]map[string]Handle)
	s.seen = make(map[string]time.Time)
	s.mu.Unlock()

	for _, handles := range mounts {
		for _, handle := range handles {
			handle.Close()
		}
	}
}
