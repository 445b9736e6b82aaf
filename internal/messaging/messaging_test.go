package messaging

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pixil98/castlemaker/internal/game"
	"github.com/pixil98/go-testutil"
)

func startServer(t *testing.T) *NatsServer {
	t.Helper()

	s, err := NewNatsServer(WithPort(-1), WithStartTimeout(5*time.Second))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Start(ctx) }()
	t.Cleanup(func() {
		cancel()
		if err := <-done; err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	deadline := time.Now().Add(5 * time.Second)
	for s.Flush() != nil {
		if time.Now().After(deadline) {
			t.Fatal("nats server did not start")
		}
		time.Sleep(10 * time.Millisecond)
	}
	return s
}

func TestNatsServer_NotStarted(t *testing.T) {
	s, err := NewNatsServer(WithPort(-1))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := s.Publish("x", nil); !errors.Is(err, ErrNotStarted) {
		t.Errorf("error = %v, expected %v", err, ErrNotStarted)
	}
	if _, err := s.Subscribe("x", func([]byte) {}); !errors.Is(err, ErrNotStarted) {
		t.Errorf("error = %v, expected %v", err, ErrNotStarted)
	}
}

func TestNatsPublisher_PublishWorldEvent(t *testing.T) {
	s := startServer(t)

	got := make(chan game.WorldEvent, 4)
	unsub, err := s.Subscribe(game.MapSubject(0), func(data []byte) {
		ev, err := game.UnmarshalWorldEvent(data)
		if err != nil {
			t.Errorf("unexpected error: %v", err)
			return
		}
		got <- ev
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer unsub()
	if err := s.Flush(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	pub := NewNatsPublisher(s)
	exp := game.WorldEvent{Kind: game.EventMoved, PlayerID: 4, Loc: game.Loc(0, 3, 3)}
	if err := pub.PublishWorldEvent(exp); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Events on other maps go elsewhere.
	if err := pub.PublishWorldEvent(game.WorldEvent{Kind: game.EventJoined, Loc: game.Loc(1, 1, 1)}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	select {
	case ev := <-got:
		testutil.AssertEqual(t, "event", ev, exp)
	case <-time.After(5 * time.Second):
		t.Fatal("event not delivered")
	}

	select {
	case ev := <-got:
		t.Errorf("unexpected event %v", ev)
	case <-time.After(100 * time.Millisecond):
	}
}
