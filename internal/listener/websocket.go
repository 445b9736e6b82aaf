package listener

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/pixil98/castlemaker/internal/transport"
)

const DefaultWebSocketPath = "/ws"

// WebSocketListener carries one protocol frame per binary websocket message.
type WebSocketListener struct {
	netListener
	cm       *ConnectionManager
	path     string
	upgrader websocket.Upgrader
}

func NewWebSocketListener(port uint16, path string, cm *ConnectionManager) *WebSocketListener {
	if path == "" {
		path = DefaultWebSocketPath
	}
	return &WebSocketListener{
		netListener: newNetListener("websocket", port),
		cm:          cm,
		path:        path,
		upgrader: websocket.Upgrader{
			// Game clients are not browsers; there is no origin to check.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

func (l *WebSocketListener) Start(ctx context.Context) error {
	ln, err := l.listen(ctx)
	if err != nil {
		return err
	}

	connCtx, cancelConns := context.WithCancel(context.Background())
	var wg sync.WaitGroup

	mux := http.NewServeMux()
	mux.HandleFunc(l.path, func(w http.ResponseWriter, r *http.Request) {
		ws, err := l.upgrader.Upgrade(w, r, nil)
		if err != nil {
			slog.WarnContext(ctx, "upgrading websocket", "remote", r.RemoteAddr, "error", err)
			return
		}

		wg.Add(1)
		defer wg.Done()
		l.cm.AcceptConnection(connCtx, transport.NewWebSocketConn(ws))
	})

	srv := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	stop := context.AfterFunc(ctx, func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		cancelConns()
		_ = srv.Shutdown(shutdownCtx)
	})
	defer stop()

	err = srv.Serve(ln)
	if errors.Is(err, http.ErrServerClosed) {
		wg.Wait()
		return nil
	}
	cancelConns()
	return err
}
