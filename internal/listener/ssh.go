package listener

import (
	"context"
	"log/slog"
	"net"

	"github.com/pixil98/castlemaker/internal/protocol"
	"github.com/pixil98/castlemaker/internal/transport"
	"golang.org/x/crypto/ssh"
)

// SshListener accepts ssh connections. A "castlemaker" channel carries the
// framed binary protocol; a "session" channel with a shell gets a text
// session.
type SshListener struct {
	netListener
	cm      *ConnectionManager
	hostKey ssh.Signer
}

func NewSshListener(port uint16, cm *ConnectionManager, hostKey ssh.Signer) *SshListener {
	return &SshListener{
		netListener: newNetListener("ssh", port),
		cm:          cm,
		hostKey:     hostKey,
	}
}

func (l *SshListener) Start(ctx context.Context) error {
	config := &ssh.ServerConfig{
		NoClientAuth: true,
	}
	config.AddHostKey(l.hostKey)

	ln, err := l.listen(ctx)
	if err != nil {
		return err
	}

	return l.serve(ctx, ln, func(ctx context.Context, conn net.Conn) {
		l.handleConnection(ctx, conn, config)
	})
}

func (l *SshListener) handleConnection(ctx context.Context, conn net.Conn, config *ssh.ServerConfig) {
	defer conn.Close()

	sshConn, chans, reqs, err := ssh.NewServerConn(conn, config)
	if err != nil {
		slog.ErrorContext(ctx, "ssh handshake", "remote", conn.RemoteAddr().String(), "error", err)
		return
	}
	defer sshConn.Close()

	remote := sshConn.RemoteAddr().String()
	slog.InfoContext(ctx, "ssh connection established", "remote", remote, "user", sshConn.User())

	// Closing the ssh connection ends the channel loop below.
	stop := context.AfterFunc(ctx, func() { sshConn.Close() })
	defer stop()

	go ssh.DiscardRequests(reqs)

	for newChan := range chans {
		switch newChan.ChannelType() {
		case protocol.SSHChannelType:
			ch, requests, err := newChan.Accept()
			if err != nil {
				slog.ErrorContext(ctx, "accepting ssh channel", "error", err)
				continue
			}
			go ssh.DiscardRequests(requests)

			l.cm.AcceptConnection(ctx, transport.NewStreamConn(ch, remote))

		case "session":
			ch, requests, err := newChan.Accept()
			if err != nil {
				slog.ErrorContext(ctx, "accepting ssh channel", "error", err)
				continue
			}
			if !waitForShell(ctx, requests) {
				ch.Close()
				continue
			}

			l.cm.AcceptText(ctx, newCRLFReadWriter(ch), remote)
			ch.Close()

		default:
			newChan.Reject(ssh.UnknownChannelType, "unknown channel type")
		}
	}
}

// waitForShell answers channel requests until the client asks for a shell.
// SSH clients won't forward input until they receive the shell reply. It
// reports false when the channel closes or ctx ends first.
func waitForShell(ctx context.Context, in <-chan *ssh.Request) bool {
	shellReady := make(chan struct{})
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for req := range in {
			switch req.Type {
			case "pty-req":
				// Reject PTY so the client keeps local echo and line buffering.
				req.Reply(false, nil)
			case "shell":
				req.Reply(true, nil)
				select {
				case <-shellReady:
				default:
					close(shellReady)
				}
			default:
				req.Reply(false, nil)
			}
		}
	}()

	select {
	case <-shellReady:
		return true
	case <-closed:
		// A shell request may have been the last one before the close.
		select {
		case <-shellReady:
			return true
		default:
			return false
		}
	case <-ctx.Done():
		return false
	}
}
