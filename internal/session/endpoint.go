package session

import (
	"fmt"
	"sync"

	"github.com/rocketscienceinc/tris-server/internal/apperror"
	"github.com/rocketscienceinc/tris-server/internal/entity"
)

// Endpoint binds a seat to one client's transport. It is the unit of addressing of a match.
type Endpoint struct {
	Seat entity.Seat

	transport Transport
	closeOnce sync.Once
}

func NewEndpoint(seat entity.Seat, transport Transport) *Endpoint {
	return &Endpoint{
		Seat:      seat,
		transport: transport,
	}
}

// SendLine - writes one line to the client. Any failure is reported as apperror.ErrDisconnected.
func (that *Endpoint) SendLine(text string) error {
	if err := that.transport.WriteLine(text); err != nil {
		return fmt.Errorf("%w: seat %d: %w", apperror.ErrDisconnected, that.Seat, err)
	}

	return nil
}

// ReadLine - reads the next line. End of stream and I/O failures both come back as apperror.ErrDisconnected.
func (that *Endpoint) ReadLine() (string, error) {
	line, err := that.transport.ReadLine()
	if err != nil {
		return "", fmt.Errorf("%w: seat %d: %w", apperror.ErrDisconnected, that.Seat, err)
	}

	return line, nil
}

// Close - releases the transport once; errors from closing an already broken connection are dropped.
func (that *Endpoint) Close() {
	that.closeOnce.Do(func() {
		_ = that.transport.Close()
	})
}

// Alive - false once the client is known to be gone. Transports that cannot tell report true.
func (that *Endpoint) Alive() bool {
	if probe, ok := that.transport.(interface{ Alive() bool }); ok {
		return probe.Alive()
	}

	return true
}

// Addr - the peer address when the transport knows it.
func (that *Endpoint) Addr() string {
	if addr, ok := that.transport.(interface{ RemoteAddr() string }); ok {
		return addr.RemoteAddr()
	}

	return ""
}
