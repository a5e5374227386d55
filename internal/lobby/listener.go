package lobby

import (
	"fmt"
	"net"

	"github.com/rocketscienceinc/tris-server/internal/session"
)

// Listener hands out one transport per accepted client.
type Listener interface {
	Accept() (session.Transport, error)
	Close() error
	Addr() net.Addr
}

// TCPListener - Listener over a TCP socket, each connection framed as text lines.
type TCPListener struct {
	listener net.Listener
}

// Listen - opens a TCP listener on addr, e.g. ":3000" or "127.0.0.1:0".
func Listen(addr string) (*TCPListener, error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	return &TCPListener{listener: listener}, nil
}

func (that *TCPListener) Accept() (session.Transport, error) {
	conn, err := that.listener.Accept()
	if err != nil {
		return nil, err
	}

	return session.NewLineConn(conn), nil
}

func (that *TCPListener) Close() error {
	return that.listener.Close()
}

func (that *TCPListener) Addr() net.Addr {
	return that.listener.Addr()
}
