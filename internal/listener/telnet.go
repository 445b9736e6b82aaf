package listener

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/iammegalith/telnet"
)

// TelnetListener serves text sessions to telnet clients. The telnet server
// strips IAC sequences; no options are negotiated, so clients stay in line
// mode with local echo.
type TelnetListener struct {
	netListener
	cm *ConnectionManager
}

func NewTelnetListener(port uint16, cm *ConnectionManager) *TelnetListener {
	return &TelnetListener{
		netListener: newNetListener("telnet", port),
		cm:          cm,
	}
}

// Start serves until ctx is canceled, then cancels every open session and
// waits for them to end.
func (l *TelnetListener) Start(ctx context.Context) error {
	ln, err := l.listen(ctx)
	if err != nil {
		return err
	}

	connCtx, cancelConns := context.WithCancel(context.Background())
	handler := &telnetHandler{accept: l.cm.AcceptText, ctx: connCtx}
	defer func() {
		cancelConns()
		handler.wg.Wait()
	}()

	stop := context.AfterFunc(ctx, func() { ln.Close() })
	defer stop()

	err = telnet.NewServer(ln.Addr().String(), handler).Serve(ln)
	if ctx.Err() != nil {
		return nil
	}
	return fmt.Errorf("serving telnet on %s: %w", ln.Addr(), err)
}

type telnetHandler struct {
	wg     sync.WaitGroup
	seq    atomic.Uint64
	accept func(context.Context, io.ReadWriter, string)
	ctx    context.Context
}

// HandleTelnet runs one session. The server closes the socket afterwards.
func (h *telnetHandler) HandleTelnet(conn *telnet.Connection) {
	h.wg.Add(1)
	defer h.wg.Done()

	remote := fmt.Sprintf("telnet-%d %s", h.seq.Add(1), conn.RemoteAddr())
	slog.DebugContext(h.ctx, "telnet connection", "remote", remote)
	h.accept(h.ctx, conn, remote)
}
