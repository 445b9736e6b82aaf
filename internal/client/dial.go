package client

import (
	"context"
	"fmt"
	"net"
	"net/url"

	"github.com/gorilla/websocket"
	"github.com/pixil98/castlemaker/internal/protocol"
	"github.com/pixil98/castlemaker/internal/transport"
	"golang.org/x/crypto/ssh"
)

const (
	TransportTCP       = "tcp"
	TransportSSH       = "ssh"
	TransportWebSocket = "ws"
)

// Options select how Dial reaches the server.
type Options struct {
	Transport string
	Addr      string

	// Path is the websocket endpoint.
	Path string

	// User is the ssh user name. HostKeyCallback defaults to accepting any
	// host key.
	User            string
	HostKeyCallback ssh.HostKeyCallback
}

// Dial connects to a server and returns an unjoined client.
func Dial(ctx context.Context, opts Options) (*Client, error) {
	var conn transport.Conn
	var err error

	switch opts.Transport {
	case TransportTCP, "":
		conn, err = dialTCP(ctx, opts)
	case TransportSSH:
		conn, err = dialSSH(ctx, opts)
	case TransportWebSocket:
		conn, err = dialWebSocket(ctx, opts)
	default:
		return nil, fmt.Errorf("unknown transport %q", opts.Transport)
	}
	if err != nil {
		return nil, err
	}
	return New(conn), nil
}

func dialTCP(ctx context.Context, opts Options) (transport.Conn, error) {
	var d net.Dialer
	nc, err := d.DialContext(ctx, "tcp", opts.Addr)
	if err != nil {
		return nil, fmt.Errorf("dialing %s: %w", opts.Addr, err)
	}
	return transport.NewNetConn(nc), nil
}

type sshStream struct {
	ssh.Channel
	client *ssh.Client
}

func (s sshStream) Close() error {
	_ = s.Channel.Close()
	return s.client.Close()
}

func dialSSH(ctx context.Context, opts Options) (transport.Conn, error) {
	var d net.Dialer
	nc, err := d.DialContext(ctx, "tcp", opts.Addr)
	if err != nil {
		return nil, fmt.Errorf("dialing %s: %w", opts.Addr, err)
	}

	hostKeyCallback := opts.HostKeyCallback
	if hostKeyCallback == nil {
		hostKeyCallback = ssh.InsecureIgnoreHostKey()
	}
	user := opts.User
	if user == "" {
		user = "castlemaker"
	}

	sc, chans, reqs, err := ssh.NewClientConn(nc, opts.Addr, &ssh.ClientConfig{
		User:            user,
		HostKeyCallback: hostKeyCallback,
	})
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("ssh handshake with %s: %w", opts.Addr, err)
	}
	client := ssh.NewClient(sc, chans, reqs)

	ch, chReqs, err := client.OpenChannel(protocol.SSHChannelType, nil)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("opening %s channel: %w", protocol.SSHChannelType, err)
	}
	go ssh.DiscardRequests(chReqs)

	return transport.NewStreamConn(sshStream{Channel: ch, client: client}, opts.Addr), nil
}

func dialWebSocket(ctx context.Context, opts Options) (transport.Conn, error) {
	path := opts.Path
	if path == "" {
		path = "/ws"
	}
	u := url.URL{Scheme: "ws", Host: opts.Addr, Path: path}

	ws, _, err := websocket.DefaultDialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("dialing %s: %w", u.String(), err)
	}
	return transport.NewWebSocketConn(ws), nil
}
