package client

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"gbcart/cartridge"
	"gbcart/command"
	"io"
	"time"
)

// ChunkSize is how much write data is in flight before waiting for its echo.
// Small board UARTs only buffer 64 bytes.
const ChunkSize = 64

const receiveSize = 1024

var ErrEchoMismatch = errors.New("client: echoed data differs from sent data")

// Client drives a cartridge reader over any byte stream: a serial port, a
// websocket bridge or an in-process pipe.
type Client struct {
	r *bufio.Reader
	w io.Writer

	// Progress is called as payload moves, with bytes done and total.
	Progress func(done, total int)
	// Latency is called with the round trip of every echoed write chunk.
	Latency func(d time.Duration)
}

func New(rw io.ReadWriter) *Client {
	return &Client{
		r: bufio.NewReader(rw),
		w: rw,
	}
}

func (c *Client) progress(done, total int) {
	if c.Progress != nil {
		c.Progress(done, total)
	}
}

func (c *Client) send(cmd string) error {
	if _, err := io.WriteString(c.w, cmd+"\r"); err != nil {
		return fmt.Errorf("client: send %q: %w", cmd, err)
	}
	return nil
}

func (c *Client) expectOK(cmd string) error {
	status, err := command.ReadStatus(c.r)
	if err != nil {
		return err
	}
	if status != command.OK {
		return &command.StatusError{Command: cmd, Status: status}
	}
	return nil
}

// receive reads a length-prefixed payload into w.
func (c *Client) receive(cmd string, w io.Writer) (int, error) {
	if err := c.expectOK(cmd); err != nil {
		return 0, err
	}

	length, err := command.ReadLength(c.r)
	if err != nil {
		return 0, err
	}

	total := int(length)
	done := 0
	c.progress(done, total)
	for done < total {
		n := total - done
		if n > receiveSize {
			n = receiveSize
		}
		m, err := io.CopyN(w, c.r, int64(n))
		done += int(m)
		if err != nil {
			return done, fmt.Errorf("client: %s: received %d of %d bytes: %w", cmd, done, total, err)
		}
		c.progress(done, total)
	}

	return done, nil
}

// Run sends a command line whose answer is a length-prefixed payload and
// copies that payload to w.
func (c *Client) Run(cmd string, w io.Writer) (int, error) {
	if err := c.send(cmd); err != nil {
		return 0, err
	}
	return c.receive(cmd, w)
}

func (c *Client) text(cmd string) (string, error) {
	b := &bytes.Buffer{}
	if _, err := c.Run(cmd, b); err != nil {
		return "", err
	}
	return b.String(), nil
}

func (c *Client) Help() (string, error) {
	return c.text("help")
}

func (c *Client) ParseHeader() (string, error) {
	return c.text("parse header")
}

func (c *Client) ReadROM(w io.Writer) (int, error) {
	return c.Run("read rom", w)
}

func (c *Client) ReadRAM(w io.Writer) (int, error) {
	return c.Run("read ram", w)
}

func (c *Client) ReadRTC() (rtc cartridge.RTC, err error) {
	b := &bytes.Buffer{}
	if _, err = c.Run("read rtc", b); err != nil {
		return
	}
	if b.Len() != cartridge.RTCSize {
		err = fmt.Errorf("client: read rtc: expected %d bytes, got %d", cartridge.RTCSize, b.Len())
		return
	}
	return cartridge.RTCFromBytes(b.Bytes()), nil
}

// write runs the acknowledge, announce size, acknowledge handshake of a
// write command.
func (c *Client) write(cmd string, size int) error {
	if err := c.send(cmd); err != nil {
		return err
	}
	if err := c.expectOK(cmd); err != nil {
		return err
	}
	if err := command.WriteLength(c.w, uint32(size)); err != nil {
		return fmt.Errorf("client: %s: send size: %w", cmd, err)
	}
	return c.expectOK(cmd)
}

// WriteRAM sends a complete RAM image ChunkSize bytes at a time, waiting for
// each chunk to be echoed before sending the next.
func (c *Client) WriteRAM(data []byte) error {
	const cmd = "write ram"
	if err := c.write(cmd, len(data)); err != nil {
		return err
	}

	echo := make([]byte, ChunkSize)
	c.progress(0, len(data))
	for o := 0; o < len(data); o += ChunkSize {
		chunk := data[o:]
		if len(chunk) > ChunkSize {
			chunk = chunk[:ChunkSize]
		}

		start := time.Now()
		if _, err := c.w.Write(chunk); err != nil {
			return fmt.Errorf("client: %s: %w", cmd, err)
		}
		if _, err := io.ReadFull(c.r, echo[:len(chunk)]); err != nil {
			return fmt.Errorf("client: %s: read echo: %w", cmd, err)
		}
		if c.Latency != nil {
			c.Latency(time.Since(start))
		}
		if !bytes.Equal(echo[:len(chunk)], chunk) {
			return fmt.Errorf("%w at offset %d", ErrEchoMismatch, o)
		}

		c.progress(o+len(chunk), len(data))
	}

	return nil
}

// WriteRTC asks the device to set the clock. Devices cannot set it yet and
// answer InvalidRTCWriteSize straight away, so no clock data is sent.
func (c *Client) WriteRTC() error {
	const cmd = "write rtc"
	if err := c.send(cmd); err != nil {
		return err
	}
	return c.expectOK(cmd)
}
