package marlin

import (
	"bufio"
	"errors"
	"os"
	"time"
)

var errNoData = errors.New("marlin: no data")

// ptyTransport wraps one end of a pty pair as a Transport, for tests that
// want to exercise the controller against a goroutine standing in for
// Marlin firmware rather than a pure in-memory fake, grounded on the
// teacher's own pty-backed KISS TNC loopback test fixture (src/kiss.go).
type ptyTransport struct {
	f      *os.File
	reader *bufio.Reader
}

func newPtyTransport(f *os.File) *ptyTransport {
	return &ptyTransport{f: f, reader: bufio.NewReader(f)}
}

func (p *ptyTransport) Write(b []byte) (int, error) { return p.f.Write(b) }

func (p *ptyTransport) ReadLine(timeout time.Duration) (string, error) {
	p.f.SetReadDeadline(time.Now().Add(timeout))
	line, err := p.reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return trimLineEnding(line), nil
}

func (p *ptyTransport) Reset() error { return nil }
func (p *ptyTransport) Close() error { return p.f.Close() }

// memTransport is a pure in-memory fake for tests that don't need real
// pty timing: scripted replies keyed by a matcher function.
type memTransport struct {
	sent    []string
	replies func(sent string) []string
	pending []string
}

func (m *memTransport) Write(b []byte) (int, error) {
	line := trimLineEnding(string(b))
	m.sent = append(m.sent, line)
	m.pending = append(m.pending, m.replies(line)...)
	return len(b), nil
}

func (m *memTransport) ReadLine(timeout time.Duration) (string, error) {
	if len(m.pending) == 0 {
		return "", errNoData
	}
	line := m.pending[0]
	m.pending = m.pending[1:]
	return line, nil
}

func (m *memTransport) Reset() error { return nil }
func (m *memTransport) Close() error { return nil }
