package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"
	"github.com/pixil98/castlemaker/internal/game"
	"github.com/pixil98/castlemaker/internal/protocol"
	"github.com/pixil98/castlemaker/internal/stats"
	"github.com/pixil98/castlemaker/internal/transport"
)

// DefaultSpawn is where players appear when no spawn points are configured.
var DefaultSpawn = game.Loc(0, 2, 3)

// Subscriber delivers messages published on a subject until the returned
// function is called.
type Subscriber interface {
	Subscribe(subject string, fn func([]byte)) (func(), error)
}

// Handler runs sessions against a shared world.
type Handler struct {
	world      *game.WorldState
	codec      protocol.Codec
	spawns     []game.MapLoc
	sessions   *Manager
	subscriber Subscriber
	roller     stats.Roller
}

type HandlerOpt func(*Handler)

// WithSpawnPoints sets the ordered spawn candidates.
func WithSpawnPoints(locs ...game.MapLoc) HandlerOpt {
	return func(h *Handler) {
		if len(locs) > 0 {
			h.spawns = locs
		}
	}
}

// WithSubscriber enables live snapshots when other players change the map.
func WithSubscriber(s Subscriber) HandlerOpt {
	return func(h *Handler) {
		h.subscriber = s
	}
}

func WithManager(m *Manager) HandlerOpt {
	return func(h *Handler) {
		h.sessions = m
	}
}

func WithRoller(r stats.Roller) HandlerOpt {
	return func(h *Handler) {
		h.roller = r
	}
}

func WithCodec(c protocol.Codec) HandlerOpt {
	return func(h *Handler) {
		h.codec = c
	}
}

func NewHandler(world *game.WorldState, opts ...HandlerOpt) *Handler {
	h := &Handler{
		world:  world,
		spawns: []game.MapLoc{DefaultSpawn},
		roller: stats.DefaultRoller,
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.sessions == nil {
		h.sessions = NewManager()
	}
	return h
}

// Sessions returns the registry of live sessions.
func (h *Handler) Sessions() *Manager {
	return h.sessions
}

// Serve runs a binary protocol session until the client leaves, the
// connection fails or ctx is canceled. The connection is closed on return.
// A clean disconnect or server shutdown returns nil.
func (h *Handler) Serve(ctx context.Context, conn transport.Conn) error {
	ctx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)

	sid := h.sessions.register(conn.RemoteAddr(), "binary", cancel)
	defer h.sessions.unregister(sid)

	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()
	defer conn.Close()

	return exitError(ctx, h.serve(ctx, sid, conn))
}

func (h *Handler) serve(ctx context.Context, sid uuid.UUID, conn transport.Conn) error {
	msg, err := h.codec.ReadClient(conn)
	if err != nil {
		return fmt.Errorf("reading handshake: %w", err)
	}

	hs, ok := msg.(protocol.Handshake)
	if !ok {
		return fmt.Errorf("%w: expected handshake, got %s", protocol.ErrProtocolViolation, protocol.KindName(msg))
	}
	if hs.Version != protocol.ProtocolVersion {
		return fmt.Errorf("%w: client version %d, server version %d", protocol.ErrProtocolViolation, hs.Version, protocol.ProtocolVersion)
	}
	name, err := NormalizeName(hs.Name)
	if err != nil {
		return fmt.Errorf("%w: %w", protocol.ErrProtocolViolation, err)
	}

	id, loc, err := h.join(ctx, sid, name)
	if err != nil {
		return err
	}
	defer h.leave(ctx, id)

	if h.subscriber != nil {
		unwatch := h.watchMap(ctx, loc.MapID, id, conn)
		defer unwatch()
	}

	if err := h.sendWorld(conn); err != nil {
		return err
	}

	for {
		msg, err := h.codec.ReadClient(conn)
		if err != nil {
			return err
		}
		h.sessions.touch(sid)

		switch m := msg.(type) {
		case protocol.MoveDir:
			if err := h.world.MovePlayer(id, m.Dir); err != nil {
				return fmt.Errorf("moving player %d: %w", id, err)
			}
		case protocol.ClientNoop:
		default:
			return fmt.Errorf("%w: unexpected %s after join", protocol.ErrProtocolViolation, protocol.KindName(msg))
		}

		if err := h.sendWorld(conn); err != nil {
			return err
		}
	}
}

func (h *Handler) join(ctx context.Context, sid uuid.UUID, name string) (game.PlayerID, game.MapLoc, error) {
	for _, loc := range h.spawns {
		if id, ok := h.world.AddPlayer(name, loc); ok {
			h.sessions.joined(sid, id, name)
			slog.InfoContext(ctx, "player joined", "session", sid, "name", name, "player", id, "loc", loc.String())
			return id, loc, nil
		}
	}
	return 0, game.MapLoc{}, ErrNoSpawn
}

func (h *Handler) leave(ctx context.Context, id game.PlayerID) {
	if err := h.world.RemovePlayer(id); err != nil {
		slog.WarnContext(ctx, "removing player", "player", id, "error", err)
		return
	}
	slog.InfoContext(ctx, "player left", "player", id)
}

func (h *Handler) sendWorld(w protocol.FrameWriter) error {
	return h.codec.WriteServer(w, protocol.SendWorld{World: h.world.Snapshot()})
}

// watchMap pushes a fresh snapshot whenever another player changes the map.
// Bursts of events collapse into a single push.
func (h *Handler) watchMap(ctx context.Context, mapId game.MapID, self game.PlayerID, w protocol.FrameWriter) func() {
	notify := make(chan struct{}, 1)

	unsub, err := h.subscriber.Subscribe(game.MapSubject(mapId), func(data []byte) {
		ev, err := game.UnmarshalWorldEvent(data)
		if err != nil {
			slog.Warn("dropping world event", "map", mapId, "error", err)
			return
		}
		if ev.PlayerID == self {
			return
		}
		select {
		case notify <- struct{}{}:
		default:
		}
	})
	if err != nil {
		slog.WarnContext(ctx, "subscribing to map events", "map", mapId, "error", err)
		return func() {}
	}

	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-done:
				return
			case <-ctx.Done():
				return
			case <-notify:
				if err := h.sendWorld(w); err != nil {
					slog.DebugContext(ctx, "pushing snapshot", "player", self, "error", err)
					return
				}
			}
		}
	}()

	return func() {
		unsub()
		close(done)
	}
}

// exitError maps the reason a session ended to what its caller should see.
func exitError(ctx context.Context, err error) error {
	if cause := context.Cause(ctx); cause != nil {
		if errors.Is(cause, context.Canceled) {
			return nil
		}
		return cause
	}
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}
