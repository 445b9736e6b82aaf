package session

import (
	"context"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pixil98/castlemaker/internal/game"
)

// Info describes one live session.
type Info struct {
	ID         uuid.UUID
	Remote     string
	Kind       string
	PlayerID   game.PlayerID
	Name       string
	Joined     bool
	LastActive time.Time
}

type entry struct {
	info   Info
	cancel context.CancelCauseFunc
}

// Manager tracks the live sessions and reaps idle ones on Tick.
type Manager struct {
	mu          sync.Mutex
	sessions    map[uuid.UUID]*entry
	idleTimeout time.Duration
	now         func() time.Time
}

type ManagerOpt func(*Manager)

// WithIdleTimeout kicks sessions that have been quiet for longer than d.
// Zero disables idle kicks.
func WithIdleTimeout(d time.Duration) ManagerOpt {
	return func(m *Manager) {
		m.idleTimeout = d
	}
}

func NewManager(opts ...ManagerOpt) *Manager {
	m := &Manager{
		sessions: map[uuid.UUID]*entry{},
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Manager) register(remote, kind string, cancel context.CancelCauseFunc) uuid.UUID {
	id := uuid.New()

	m.mu.Lock()
	defer m.mu.Unlock()

	m.sessions[id] = &entry{
		info: Info{
			ID:         id,
			Remote:     remote,
			Kind:       kind,
			LastActive: m.now(),
		},
		cancel: cancel,
	}
	return id
}

func (m *Manager) joined(id uuid.UUID, player game.PlayerID, name string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if e, ok := m.sessions[id]; ok {
		e.info.PlayerID = player
		e.info.Name = name
		e.info.Joined = true
		e.info.LastActive = m.now()
	}
}

func (m *Manager) touch(id uuid.UUID) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if e, ok := m.sessions[id]; ok {
		e.info.LastActive = m.now()
	}
}

func (m *Manager) unregister(id uuid.UUID) {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.sessions, id)
}

// Count returns the number of live sessions.
func (m *Manager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.sessions)
}

// Sessions lists the live sessions, oldest activity first.
func (m *Manager) Sessions() []Info {
	m.mu.Lock()
	infos := make([]Info, 0, len(m.sessions))
	for _, e := range m.sessions {
		infos = append(infos, e.info)
	}
	m.mu.Unlock()

	slices.SortFunc(infos, func(a, b Info) int {
		if c := a.LastActive.Compare(b.LastActive); c != 0 {
			return c
		}
		return slices.Compare(a.ID[:], b.ID[:])
	})
	return infos
}

// Kick ends the session with the given id.
func (m *Manager) Kick(id uuid.UUID, cause error) bool {
	m.mu.Lock()
	e, ok := m.sessions[id]
	m.mu.Unlock()

	if !ok {
		return false
	}
	e.cancel(cause)
	return true
}

// Tick kicks idle sessions and logs the session count.
func (m *Manager) Tick(ctx context.Context) error {
	now := m.now()

	var idle []*entry
	m.mu.Lock()
	total := len(m.sessions)
	if m.idleTimeout > 0 {
		for _, e := range m.sessions {
			if now.Sub(e.info.LastActive) > m.idleTimeout {
				idle = append(idle, e)
			}
		}
	}
	m.mu.Unlock()

	for _, e := range idle {
		slog.InfoContext(ctx, "kicking idle session", "session", e.info.ID, "remote", e.info.Remote, "name", e.info.Name)
		e.cancel(ErrKicked)
	}

	slog.DebugContext(ctx, "session status", "sessions", total, "kicked", len(idle))
	return nil
}
