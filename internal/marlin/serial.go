package marlin

import (
	"bufio"
	"fmt"
	"time"

	"github.com/pkg/term"
)

// serialTransport wraps github.com/pkg/term exactly as the teacher's
// src/serial_port.go does - open in raw mode, set speed, write, read,
// close - just behind the Transport interface instead of bare
// package-level functions, since Controller needs to inject a fake in
// tests.
type serialTransport struct {
	t      *term.Term
	reader *bufio.Reader
}

// OpenSerial opens devicename (e.g. "/dev/ttyUSB0") at baud and returns a
// Transport ready for Controller. baud == 0 leaves the port speed alone.
func OpenSerial(devicename string, baud int) (Transport, error) {
	t, err := term.Open(devicename, term.RawMode)
	if err != nil {
		return nil, &PortError{Op: "open", Err: err}
	}

	switch baud {
	case 0:
		// leave it alone
	case 1200, 2400, 4800, 9600, 19200, 38400, 57600, 115200, 250000:
		if err := t.SetSpeed(baud); err != nil {
			t.Close()
			return nil, &PortError{Op: "set speed", Err: err}
		}
	default:
		return nil, &PortError{Op: "open", Err: fmt.Errorf("unsupported baud rate %d", baud)}
	}

	return &serialTransport{t: t, reader: bufio.NewReader(t)}, nil
}

func (s *serialTransport) Write(p []byte) (int, error) {
	n, err := s.t.Write(p)
	if err != nil {
		return n, &PortError{Op: "write", Err: err}
	}
	return n, nil
}

// ReadLine reads up to a line-feed terminator, auto-detecting \n or
// \r\n per §6. timeout is not applied here: the call blocks until a
// line-feed arrives or the underlying read fails.
func (s *serialTransport) ReadLine(timeout time.Duration) (string, error) {
	line, err := s.reader.ReadString('\n')
	if err != nil {
		return "", &PortError{Op: "read", Err: err}
	}
	return trimLineEnding(line), nil
}

func trimLineEnding(s string) string {
	for len(s) > 0 && (s[len(s)-1] == '\n' || s[len(s)-1] == '\r') {
		s = s[:len(s)-1]
	}
	return s
}

// Reset flushes any buffered input. pkg/term doesn't expose DTR-toggle
// control on this platform, so a hard firmware reset is left to the
// operator power-cycling the board; this drops any stale bytes left over
// from a previous, aborted session.
func (s *serialTransport) Reset() error {
	if err := s.t.Flush(); err != nil {
		return &PortError{Op: "reset", Err: err}
	}
	s.reader = bufio.NewReader(s.t)
	return nil
}

func (s *serialTransport) Close() error {
	return s.t.Close()
}
