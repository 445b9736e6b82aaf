package listener

import (
	"context"
	"net"

	"github.com/pixil98/castlemaker/internal/transport"
)

// TcpListener speaks the framed binary protocol over plain TCP.
type TcpListener struct {
	netListener
	cm *ConnectionManager
}

func NewTcpListener(port uint16, cm *ConnectionManager) *TcpListener {
	return &TcpListener{
		netListener: newNetListener("tcp", port),
		cm:          cm,
	}
}

func (l *TcpListener) Start(ctx context.Context) error {
	ln, err := l.listen(ctx)
	if err != nil {
		return err
	}

	return l.serve(ctx, ln, func(ctx context.Context, conn net.Conn) {
		l.cm.AcceptConnection(ctx, transport.NewNetConn(conn))
	})
}
