package listener

import (
	"context"
	"io"
	"log/slog"
	"runtime/debug"

	"github.com/pixil98/castlemaker/internal/session"
	"github.com/pixil98/castlemaker/internal/transport"
	"github.com/remeh/sizedwaitgroup"
)

// ConnectionManager hands accepted connections to the session handler,
// bounding how many run at once.
type ConnectionManager struct {
	handler *session.Handler
	slots   *sizedwaitgroup.SizedWaitGroup
}

type ConnectionManagerOpt func(*ConnectionManager)

// WithMaxConnections bounds concurrent sessions. Connections beyond the limit
// wait for a free slot. Zero means unlimited.
func WithMaxConnections(n int) ConnectionManagerOpt {
	return func(m *ConnectionManager) {
		if n > 0 {
			swg := sizedwaitgroup.New(n)
			m.slots = &swg
		}
	}
}

func NewConnectionManager(h *session.Handler, opts ...ConnectionManagerOpt) *ConnectionManager {
	m := &ConnectionManager{
		handler: h,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// AcceptConnection runs a binary protocol session and returns when it ends.
func (m *ConnectionManager) AcceptConnection(ctx context.Context, conn transport.Conn) {
	defer conn.Close()

	release, ok := m.acquire(ctx)
	if !ok {
		return
	}
	defer release()
	defer m.recoverSession(ctx, conn.RemoteAddr())

	if err := m.handler.Serve(ctx, conn); err != nil {
		slog.WarnContext(ctx, "player session", "remote", conn.RemoteAddr(), "error", err)
	}
}

// AcceptText runs a line based session and returns when it ends.
func (m *ConnectionManager) AcceptText(ctx context.Context, rw io.ReadWriter, remote string) {
	release, ok := m.acquire(ctx)
	if !ok {
		return
	}
	defer release()
	defer m.recoverSession(ctx, remote)

	if err := m.handler.ServeText(ctx, rw, remote); err != nil {
		slog.WarnContext(ctx, "text session", "remote", remote, "error", err)
	}
}

func (m *ConnectionManager) acquire(ctx context.Context) (func(), bool) {
	if m.slots == nil {
		return func() {}, true
	}
	if err := m.slots.AddWithContext(ctx); err != nil {
		return nil, false
	}
	return m.slots.Done, true
}

// recoverSession keeps a panicking session from taking the server down.
func (m *ConnectionManager) recoverSession(ctx context.Context, remote string) {
	if r := recover(); r != nil {
		slog.ErrorContext(ctx, "session panicked", "remote", remote, "panic", r, "stack", string(debug.Stack()))
	}
}
