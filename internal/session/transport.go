package session

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"net"
	"strings"
	"time"

	"github.com/rocketscienceinc/tris-server/internal/apperror"
)

const (
	// MaxLineLength bounds one client line, terminator included.
	MaxLineLength = 256

	aliveProbe = 10 * time.Millisecond
)

// Transport is a line-oriented, bidirectional text channel to one client.
type Transport interface {
	// ReadLine blocks for the next line without its terminator; io.EOF once the peer is gone.
	ReadLine() (string, error)
	WriteLine(text string) error
	Close() error
}

// LineConn - Transport over a stream connection, one newline-terminated line per message.
type LineConn struct {
	conn   io.ReadWriteCloser
	reader *bufio.Reader
}

func NewLineConn(conn io.ReadWriteCloser) *LineConn {
	return &LineConn{
		conn:   conn,
		reader: bufio.NewReaderSize(conn, MaxLineLength),
	}
}

func (that *LineConn) ReadLine() (string, error) {
	line, err := that.reader.ReadSlice('\n')
	switch {
	case err == nil:
		return trimEOL(string(line)), nil
	case errors.Is(err, bufio.ErrBufferFull):
		return "", fmt.Errorf("%w: over %d bytes", apperror.ErrLineTooLong, MaxLineLength)
	case errors.Is(err, io.EOF) && len(line) > 0:
		// a final line without terminator still counts, EOF is reported on the next call
		return trimEOL(string(line)), nil
	default:
		return "", err
	}
}

// Alive - reports whether the peer is still connected without consuming its input.
// Only a connection with read deadlines can be checked; anything else is assumed alive.
func (that *LineConn) Alive() bool {
	conn, ok := that.conn.(net.Conn)
	if !ok || that.reader.Buffered() > 0 {
		return true
	}

	if err := conn.SetReadDeadline(time.Now().Add(aliveProbe)); err != nil {
		return false
	}
	defer func() { _ = conn.SetReadDeadline(time.Time{}) }()

	_, err := that.reader.Peek(1)
	if err == nil {
		return true
	}

	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func (that *LineConn) WriteLine(text string) error {
	if _, err := io.WriteString(that.conn, text+"\n"); err != nil {
		return fmt.Errorf("failed to write line: %w", err)
	}

	return nil
}

func (that *LineConn) Close() error {
	return that.conn.Close()
}

// RemoteAddr - peer address for logging, empty when the connection is not a net.Conn.
func (that *LineConn) RemoteAddr() string {
	if conn, ok := that.conn.(net.Conn); ok && conn.RemoteAddr() != nil {
		return conn.RemoteAddr().String()
	}

	return ""
}

func trimEOL(line string) string {
	return strings.TrimRight(line, "\r\n")
}
