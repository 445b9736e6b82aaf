package listener

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"sync"
)

// netListener is the part every net.Listener based worker shares.
type netListener struct {
	kind  string
	host  string
	port  uint16
	ready chan struct{}
	addr  net.Addr
}

func newNetListener(kind string, port uint16) netListener {
	return netListener{kind: kind, port: port, ready: make(chan struct{})}
}

// Addr waits until the listener is bound and returns its address.
func (l *netListener) Addr(ctx context.Context) (net.Addr, error) {
	select {
	case <-l.ready:
		return l.addr, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (l *netListener) listen(ctx context.Context) (net.Listener, error) {
	ln, err := net.Listen("tcp", fmt.Sprintf("%s:%d", l.host, l.port))
	if err != nil {
		return nil, fmt.Errorf("listening for %s on port %d: %w", l.kind, l.port, err)
	}
	l.addr = ln.Addr()
	close(l.ready)

	slog.InfoContext(ctx, "listening for "+l.kind, "addr", ln.Addr().String())
	return ln, nil
}

// serve accepts connections until ctx is canceled, then cancels the
// connection context and waits for every handler to return.
func (l *netListener) serve(ctx context.Context, ln net.Listener, handle func(context.Context, net.Conn)) error {
	connCtx, cancelConns := context.WithCancel(context.Background())
	var wg sync.WaitGroup

	// Close the listener when the parent context is canceled
	stop := context.AfterFunc(ctx, func() { ln.Close() })
	defer stop()

	for {
		conn, err := ln.Accept()
		if err != nil {
			// Check if shutdown was requested
			select {
			case <-ctx.Done():
				cancelConns()
				wg.Wait()
				return nil
			default:
			}
			slog.ErrorContext(ctx, "accepting "+l.kind+" connection", "error", err)
			continue
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			handle(connCtx, conn)
		}()
	}
}
