package command

import (
	"bufio"
	"io"
)

// MaxLineLength bounds a command line; further characters overwrite the last one.
const MaxLineLength = 15

// Conn is the device side of a host session: a line oriented command reader
// and a buffered binary response writer over one byte stream.
type Conn struct {
	r *bufio.Reader
	w *bufio.Writer

	// Echo sends typed characters back for interactive terminals.
	Echo bool
}

func NewConn(rw io.ReadWriter) *Conn {
	return &Conn{
		r: bufio.NewReader(rw),
		w: bufio.NewWriter(rw),
	}
}

func isLineChar(c byte) bool {
	switch {
	case c >= 'a' && c <= 'z':
		return true
	case c >= 'A' && c <= 'Z':
		return true
	case c >= '0' && c <= '9':
		return true
	}
	return c == ' '
}

// ReadLine reads one carriage return terminated command line. Letters are
// lower-cased, backspace edits the line and any other byte is dropped.
func (c *Conn) ReadLine() (string, error) {
	line := make([]byte, 0, MaxLineLength)

	for {
		b, err := c.r.ReadByte()
		if err != nil {
			return "", err
		}

		switch {
		case b == '\r':
			if c.Echo {
				_, _ = c.w.WriteString("\r\n")
			}
			return string(line), c.w.Flush()

		case b == '\b':
			if len(line) > 0 {
				line = line[:len(line)-1]
				if c.Echo {
					_, _ = c.w.WriteString("\b \b")
				}
			}

		case isLineChar(b):
			if b >= 'A' && b <= 'Z' {
				b += 'a' - 'A'
			}
			if len(line) == MaxLineLength {
				line = line[:len(line)-1]
				if c.Echo {
					_ = c.w.WriteByte('\b')
				}
			}
			line = append(line, b)
			if c.Echo {
				_ = c.w.WriteByte(b)
			}

		default:
			continue
		}

		if c.Echo {
			if err = c.w.Flush(); err != nil {
				return "", err
			}
		}
	}
}

// Read reads whatever payload bytes are available, at most len(p).
func (c *Conn) Read(p []byte) (int, error) {
	return c.r.Read(p)
}

func (c *Conn) ReadLength() (uint32, error) {
	return ReadLength(c.r)
}

func (c *Conn) Write(p []byte) (int, error) {
	return c.w.Write(p)
}

func (c *Conn) WriteString(s string) (int, error) {
	return c.w.WriteString(s)
}

// WriteStatus writes a response header.
func (c *Conn) WriteStatus(status Status, length int) error {
	return WriteHeader(c.w, status, uint32(length))
}

// Respond writes a bare status and flushes it.
func (c *Conn) Respond(status Status) error {
	if err := c.WriteStatus(status, 0); err != nil {
		return err
	}
	return c.w.Flush()
}

func (c *Conn) Flush() error {
	return c.w.Flush()
}
