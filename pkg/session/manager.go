package session

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"garden/pkg/calendar"
	"garden/pkg/editor"
	"garden/pkg/occupancy"
)

type Options struct {
	Field       occupancy.Field
	DefaultArea string
	Locale      string
	Location    *time.Location
	Clock       func() time.Time
	NewID       func() string
	Logger      *zap.Logger
	// IdleTimeout evicts sessions not fetched for this long. Zero keeps
	// every session until Drop.
	IdleTimeout time.Duration
}

type entry struct {
	s    *Session
	seen time.Time
}

// Manager keeps one Session per user id. With an IdleTimeout the map only
// holds users seen within that window.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*entry
	store    Store
	opts     Options
	now      func() time.Time
	l        *zap.Logger
}

func NewManager(store Store, opts Options) *Manager {
	if opts.Locale == "" {
		opts.Locale = "ja"
	}
	if opts.DefaultArea == "" && len(opts.Field.Areas) > 0 {
		opts.DefaultArea = opts.Field.Areas[0]
	}
	l := opts.Logger
	if l == nil {
		l = zap.NewNop()
	}
	now := opts.Clock
	if now == nil {
		now = time.Now
	}
	return &Manager{sessions: map[string]*entry{}, store: store, opts: opts, now: now, l: l.Named("session")}
}

// Get returns the session for uid, creating and loading it on first use. A
// failed initial load leaves the session in its error state rather than
// failing the call.
func (m *Manager) Get(ctx context.Context, uid string) *Session {
	m.mu.Lock()
	now := m.now()
	m.evictIdle(now)
	if e, ok := m.sessions[uid]; ok {
		e.seen = now
		m.mu.Unlock()
		return e.s
	}
	s := m.newSession(uid)
	// Hold the session until its first load finishes so no caller sees an
	// empty cache.
	s.mu.Lock()
	m.sessions[uid] = &entry{s: s, seen: now}
	m.mu.Unlock()

	defer s.mu.Unlock()
	if err := s.reloadLocked(ctx); err == nil {
		m.l.Info("session started", zap.String("uid", uid), zap.Int("plots", len(s.plots)), zap.Int("crops", len(s.crops)))
	}
	return s
}

func (m *Manager) newSession(uid string) *Session {
	var calOpts []calendar.Option
	if m.opts.Clock != nil {
		calOpts = append(calOpts, calendar.WithClock(m.opts.Clock))
	}
	if m.opts.Location != nil {
		calOpts = append(calOpts, calendar.WithLocation(m.opts.Location))
	}
	edOpts := []editor.Option{editor.WithLocale(m.opts.Locale)}
	if m.opts.NewID != nil {
		edOpts = append(edOpts, editor.WithIDGenerator(m.opts.NewID))
	}
	return &Session{
		uid:    uid,
		store:  m.store,
		field:  m.opts.Field,
		locale: m.opts.Locale,
		l:      m.l,
		cursor: calendar.NewCursor(time.Time{}, calOpts...),
		editor: editor.New(m.opts.Field, nil, edOpts...),
		area:   m.opts.DefaultArea,
	}
}

// evictIdle runs with m.mu held. Unsaved drafts of evicted sessions are lost.
func (m *Manager) evictIdle(now time.Time) {
	if m.opts.IdleTimeout <= 0 {
		return
	}
	for uid, e := range m.sessions {
		if now.Sub(e.seen) > m.opts.IdleTimeout {
			delete(m.sessions, uid)
			m.l.Info("session evicted", zap.String("uid", uid), zap.Duration("idle", now.Sub(e.seen)))
		}
	}
}

// Drop forgets the session for uid.
func (m *Manager) Drop(uid string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, uid)
}

func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}
