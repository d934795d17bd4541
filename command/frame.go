package command

import (
	"encoding/binary"
	"fmt"
	"io"
)

// AppendHeader appends a response header: the status byte followed by the
// little-endian payload length, which is omitted when the length is zero.
func AppendHeader(b []byte, status Status, length uint32) []byte {
	b = append(b, byte(status))
	if length > 0 {
		b = binary.LittleEndian.AppendUint32(b, length)
	}
	return b
}

func WriteHeader(w io.Writer, status Status, length uint32) error {
	var buf [5]byte
	_, err := w.Write(AppendHeader(buf[:0], status, length))
	return err
}

func ReadStatus(r io.Reader) (Status, error) {
	var b [1]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, fmt.Errorf("command: read status: %w", err)
	}
	return Status(b[0]), nil
}

// ReadLength reads a 4 byte little-endian length, either a payload length
// following an OK or the size announced by the host before a write.
func ReadLength(r io.Reader) (uint32, error) {
	var b [4]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, fmt.Errorf("command: read length: %w", err)
	}
	return binary.LittleEndian.Uint32(b[:]), nil
}

func WriteLength(w io.Writer, length uint32) error {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], length)
	_, err := w.Write(b[:])
	return err
}
