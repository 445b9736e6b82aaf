package listener

import (
	"bytes"
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"errors"
	"io"
	"net"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/pixil98/castlemaker/internal/game"
	"github.com/pixil98/castlemaker/internal/protocol"
	"github.com/pixil98/castlemaker/internal/session"
	"github.com/pixil98/castlemaker/internal/transport"
	"github.com/pixil98/go-testutil"
	"golang.org/x/crypto/ssh"
)

type addrWorker interface {
	Start(context.Context) error
	Addr(context.Context) (net.Addr, error)
}

// startWorker runs w until the test ends and returns its bound address.
func startWorker(t *testing.T, w addrWorker) string {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Start(ctx) }()
	t.Cleanup(func() {
		cancel()
		select {
		case err := <-done:
			if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		case <-time.After(5 * time.Second):
			t.Error("listener did not stop")
		}
	})

	waitCtx, waitCancel := context.WithTimeout(ctx, 5*time.Second)
	defer waitCancel()
	addr, err := w.Addr(waitCtx)
	if err != nil {
		t.Fatalf("listener not ready: %v", err)
	}
	return addr.String()
}

func newManager(opts ...ConnectionManagerOpt) (*game.WorldState, *ConnectionManager) {
	ws := game.NewWorldState(game.NewDefaultWorld())
	h := session.NewHandler(ws, session.WithSpawnPoints(game.Loc(0, 2, 3), game.Loc(0, 5, 5)))
	return ws, NewConnectionManager(h, opts...)
}

func handshake(t *testing.T, conn transport.Conn, name string) game.World {
	t.Helper()

	var codec protocol.Codec
	if err := codec.WriteClient(conn, protocol.Handshake{Name: name, Version: protocol.ProtocolVersion}); err != nil {
		t.Fatalf("sending handshake: %v", err)
	}
	msg, err := codec.ReadServer(conn)
	if err != nil {
		t.Fatalf("reading snapshot: %v", err)
	}
	sw, ok := msg.(protocol.SendWorld)
	if !ok {
		t.Fatalf("got %s, expected send_world", protocol.KindName(msg))
	}
	return sw.World
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestTcpListener(t *testing.T) {
	ws, cm := newManager()
	addr := startWorker(t, NewTcpListener(0, cm))

	nc, err := net.Dial("tcp", addr)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	conn := transport.NewNetConn(nc)

	w := handshake(t, conn, "lolz")
	testutil.AssertEqual(t, "players", w.Players.Len(), 1)

	conn.Close()
	waitFor(t, "player removal", func() bool { return ws.PlayerCount() == 0 })
}

func TestTcpListener_BindFailure(t *testing.T) {
	taken, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer taken.Close()

	_, cm := newManager()
	l := NewTcpListener(uint16(taken.Addr().(*net.TCPAddr).Port), cm)
	l.host = "127.0.0.1"

	if err := l.Start(context.Background()); err == nil {
		t.Error("expected bind failure")
	}
}

func TestSshListener(t *testing.T) {
	_, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	hostKey, err := ssh.NewSignerFromKey(priv)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ws, cm := newManager()
	addr := startWorker(t, NewSshListener(0, cm, hostKey))

	client, err := ssh.Dial("tcp", addr, &ssh.ClientConfig{
		User:            "lolz",
		HostKeyCallback: ssh.FixedHostKey(hostKey.PublicKey()),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer client.Close()

	if _, _, err := client.OpenChannel("direct-tcpip", nil); err == nil {
		t.Error("expected unknown channel type to be rejected")
	}

	ch, reqs, err := client.OpenChannel(protocol.SSHChannelType, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	go ssh.DiscardRequests(reqs)
	conn := transport.NewStreamConn(ch, addr)

	w := handshake(t, conn, "lolz")
	testutil.AssertEqual(t, "players", w.Players.Len(), 1)

	conn.Close()
	waitFor(t, "player removal", func() bool { return ws.PlayerCount() == 0 })
}

func TestSshListener_Shell(t *testing.T) {
	_, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	hostKey, err := ssh.NewSignerFromKey(priv)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ws, cm := newManager()
	addr := startWorker(t, NewSshListener(0, cm, hostKey))

	client, err := ssh.Dial("tcp", addr, &ssh.ClientConfig{
		User:            "lolz",
		HostKeyCallback: ssh.FixedHostKey(hostKey.PublicKey()),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer client.Close()

	sess, err := client.NewSession()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer sess.Close()

	stdin, err := sess.StdinPipe()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	stdout, err := sess.StdoutPipe()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := sess.Shell(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := stdin.Write([]byte("lolz\r\nlook\r\nquit\r\n")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out, err := io.ReadAll(stdout)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, exp := range []string{"Hello, Lolz.\r\n", "You are at (2,3) on map 0.\r\n", "Farewell.\r\n"} {
		testutil.AssertEqual(t, exp, bytes.Contains(out, []byte(exp)), true)
	}
	waitFor(t, "player removal", func() bool { return ws.PlayerCount() == 0 })
}

func TestWaitForShell(t *testing.T) {
	tests := map[string]struct {
		requests []*ssh.Request
		close    bool
		exp      bool
	}{
		"shell": {
			requests: []*ssh.Request{{Type: "pty-req"}, {Type: "env"}, {Type: "shell"}},
			exp:      true,
		},
		"shell then close": {
			requests: []*ssh.Request{{Type: "shell"}},
			close:    true,
			exp:      true,
		},
		"closed without shell": {
			requests: []*ssh.Request{{Type: "pty-req"}},
			close:    true,
			exp:      false,
		},
		"closed immediately": {
			close: true,
			exp:   false,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			in := make(chan *ssh.Request, len(tt.requests))
			for _, req := range tt.requests {
				in <- req
			}
			if tt.close {
				close(in)
			}

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			got := make(chan bool, 1)
			go func() { got <- waitForShell(ctx, in) }()

			select {
			case ok := <-got:
				testutil.AssertEqual(t, "shell", ok, tt.exp)
			case <-time.After(2 * time.Second):
				t.Fatal("waitForShell did not return")
			}
		})
	}
}

func TestTelnetListener(t *testing.T) {
	ws, cm := newManager()
	addr := startWorker(t, NewTelnetListener(0, cm))

	conn, err := net.Dial("tcp", addr)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer conn.Close()

	if _, err := conn.Write([]byte("lolz\nlook\nquit\n")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	out, err := io.ReadAll(conn)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, exp := range []string{"By what name are you known?", "Hello, Lolz.", "You are at (2,3) on map 0.", "Farewell."} {
		testutil.AssertEqual(t, exp, bytes.Contains(out, []byte(exp)), true)
	}
	waitFor(t, "player removal", func() bool { return ws.PlayerCount() == 0 })
}

func TestTelnetListener_BindFailure(t *testing.T) {
	taken, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer taken.Close()

	_, cm := newManager()
	l := NewTelnetListener(uint16(taken.Addr().(*net.TCPAddr).Port), cm)
	l.host = "127.0.0.1"

	if err := l.Start(context.Background()); err == nil {
		t.Error("expected bind failure")
	}
}

func TestWebSocketListener(t *testing.T) {
	ws, cm := newManager()
	addr := startWorker(t, NewWebSocketListener(0, "", cm))

	wsConn, _, err := websocket.DefaultDialer.Dial("ws://"+addr+DefaultWebSocketPath, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	conn := transport.NewWebSocketConn(wsConn)

	w := handshake(t, conn, "lolz")
	testutil.AssertEqual(t, "players", w.Players.Len(), 1)

	conn.Close()
	waitFor(t, "player removal", func() bool { return ws.PlayerCount() == 0 })
}

func TestConnectionManager_MaxConnections(t *testing.T) {
	_, cm := newManager(WithMaxConnections(1))
	addr := startWorker(t, NewTcpListener(0, cm))

	first, err := net.Dial("tcp", addr)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	firstConn := transport.NewNetConn(first)
	handshake(t, firstConn, "one")

	second, err := net.Dial("tcp", addr)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer second.Close()
	secondConn := transport.NewNetConn(second)

	var codec protocol.Codec
	if err := codec.WriteClient(secondConn, protocol.Handshake{Name: "two", Version: protocol.ProtocolVersion}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// The second session waits for a slot.
	second.SetReadDeadline(time.Now().Add(200 * time.Millisecond))
	_, err = secondConn.ReadFrame()
	var netErr net.Error
	if !errors.As(err, &netErr) || !netErr.Timeout() {
		t.Fatalf("error = %v, expected a timeout", err)
	}

	firstConn.Close()
	second.SetReadDeadline(time.Now().Add(5 * time.Second))
	msg, err := codec.ReadServer(secondConn)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	sw, ok := msg.(protocol.SendWorld)
	if !ok {
		t.Fatalf("got %s, expected send_world", protocol.KindName(msg))
	}
	testutil.AssertEqual(t, "players", sw.World.Players.Len(), 1)
}

func TestConnectionManager_AcceptText(t *testing.T) {
	ws, cm := newManager()

	a, b := net.Pipe()
	done := make(chan struct{})
	go func() {
		defer close(done)
		cm.AcceptText(context.Background(), b, "pipe")
	}()

	go func() {
		a.Write([]byte("lolz\nquit\n"))
	}()
	out, _ := io.ReadAll(a)

	<-done
	testutil.AssertEqual(t, "farewell", bytes.Contains(out, []byte("Farewell.")), true)
	testutil.AssertEqual(t, "players", ws.PlayerCount(), 0)
}

func TestCRLFReadWriter(t *testing.T) {
	var out bytes.Buffer
	rw := newCRLFReadWriter(struct {
		io.Reader
		io.Writer
	}{bytes.NewReader([]byte("north\r\nlook\rwho\n")), &out})

	n, err := rw.Write([]byte("a\nb\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testutil.AssertEqual(t, "written", n, 4)
	testutil.AssertEqual(t, "converted", out.String(), "a\r\nb\r\n")

	in, err := io.ReadAll(rw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testutil.AssertEqual(t, "normalized", string(in), "north\nlook\nwho\n")
	testutil.AssertEqual(t, "close", rw.Close(), error(nil))
}
