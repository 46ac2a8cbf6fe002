// Package serial provides the text command channel over a serial port.
// Outbound text is line oriented and CRLF terminated; inbound commands are
// single bytes.
package serial

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	bugst "go.bug.st/serial"
)

// LineEnding terminates every outbound line.
const LineEnding = "\r\n"

// DefaultBaud matches the controller's UART setting.
const DefaultBaud = 115200

// readTimeout bounds each blocking read so ReadCommands notices cancellation.
const readTimeout = 200 * time.Millisecond

// Channel is a text channel over any byte port. It satisfies logic.Console.
type Channel struct {
	mu   sync.Mutex // serializes writes
	port io.ReadWriteCloser
}

// New wraps an already open port.
func New(port io.ReadWriteCloser) *Channel {
	return &Channel{port: port}
}

// Open opens the named serial device at baud, 8N1.
func Open(name string, baud int) (*Channel, error) {
	mode := &bugst.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   bugst.NoParity,
		StopBits: bugst.OneStopBit,
	}
	p, err := bugst.Open(name, mode)
	if err != nil {
		return nil, fmt.Errorf("open serial %s: %w", name, err)
	}
	if err := p.SetReadTimeout(readTimeout); err != nil {
		p.Close()
		return nil, fmt.Errorf("set read timeout: %w", err)
	}
	return New(p), nil
}

// WriteLine sends line followed by CRLF.
func (c *Channel) WriteLine(line string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, err := io.WriteString(c.port, line+LineEnding); err != nil {
		return fmt.Errorf("write serial: %w", err)
	}
	return nil
}

// ReadCommands forwards every inbound command byte to out until ctx is done
// or the port fails. CR and LF from terminal line endings are skipped.
// A timed-out read (0 bytes, no error) just re-checks ctx.
func (c *Channel) ReadCommands(ctx context.Context, out chan<- byte) error {
	buf := make([]byte, 64)
	for {
		if err := ctx.Err(); err != nil {
			return nil
		}

		n, err := c.port.Read(buf)
		for _, b := range buf[:n] {
			if b == '\r' || b == '\n' {
				continue
			}
			select {
			case out <- b:
			case <-ctx.Done():
				return nil
			}
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("read serial: %w", err)
		}
	}
}

// Close closes the underlying port.
func (c *Channel) Close() error {
	return c.port.Close()
}
