package header

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
)

const (
	// Address is where the header starts on the cartridge bus.
	Address = 0x0100
	// Size of the header in bytes, 0x0100-0x014F.
	Size = 0x50
)

var (
	ErrShortHeader    = errors.New("header: buffer too short to contain cartridge header")
	ErrInvalidROMSize = errors.New("header: invalid ROM size code")
	ErrInvalidRAMSize = errors.New("header: invalid RAM size code")
)

// Logo is the bitmap every licensed cartridge carries at 0x0104.
var Logo = [48]byte{
	0xCE, 0xED, 0x66, 0x66, 0xCC, 0x0D, 0x00, 0x0B,
	0x03, 0x73, 0x00, 0x83, 0x00, 0x0C, 0x00, 0x0D,
	0x00, 0x08, 0x11, 0x1F, 0x88, 0x89, 0x00, 0x0E,
	0xDC, 0xCC, 0x6E, 0xE6, 0xDD, 0xDD, 0xD9, 0x99,
	0xBB, 0xBB, 0x67, 0x63, 0x6E, 0x0E, 0xEC, 0xCC,
	0xDD, 0xDC, 0x99, 0x9F, 0xBB, 0xB9, 0x33, 0x3E,
}

// $0100
type Header struct {
	EntryPoint     [4]byte
	Logo           [48]byte
	Title          [16]byte
	NewLicensee    [2]byte
	SGBFlag        byte
	CartridgeType  byte
	ROMSize        byte
	RAMSize        byte
	Destination    byte
	OldLicensee    byte
	Version        byte
	HeaderChecksum byte
	GlobalChecksum [2]byte
}

// Parse decodes the first Size bytes of buf. The buffer is expected to start
// at bus address 0x0100.
func Parse(buf []byte) (h *Header, err error) {
	if len(buf) < Size {
		return nil, fmt.Errorf("%w: %d < %d", ErrShortHeader, len(buf), Size)
	}

	h = &Header{}
	err = binary.Read(bytes.NewReader(buf[:Size]), binary.LittleEndian, h)
	if err != nil {
		return nil, fmt.Errorf("header: %w", err)
	}
	return
}

// Bytes re-encodes the header into its on-cartridge layout.
func (h *Header) Bytes() []byte {
	b := &bytes.Buffer{}
	b.Grow(Size)
	_ = binary.Write(b, binary.LittleEndian, h)
	return b.Bytes()
}

func (h *Header) LogoValid() bool {
	return h.Logo == Logo
}

func isPrintable(c byte) bool {
	return c >= 0x20 && c <= 0x7E
}

// DisplayTitle returns the title up to the first non-printable byte.
func (h *Header) DisplayTitle() string {
	for i, c := range h.Title {
		if !isPrintable(c) {
			return string(h.Title[:i])
		}
	}
	return string(h.Title[:])
}

// ManufacturerCode is the printable part of title bytes 11-14 which newer
// cartridges use for a 4 character manufacturer code.
func (h *Header) ManufacturerCode() string {
	code := make([]byte, 0, 4)
	for _, c := range h.Title[11:15] {
		if isPrintable(c) {
			code = append(code, c)
		}
	}
	return string(code)
}

// CGBFlag is the last title byte.
func (h *Header) CGBFlag() byte {
	return h.Title[15]
}

func (h *Header) CGBSupport() string {
	switch h.CGBFlag() {
	case 0x80:
		return "CGB supported, but backwards compatible"
	case 0xC0:
		return "CGB exclusive"
	default:
		return "No"
	}
}

func (h *Header) Type() Type {
	return LookupType(h.CartridgeType)
}

func (h *Header) ROMBanks() (int, error) {
	return ROMBanks(h.ROMSize)
}

func (h *Header) RAMBanks() (int, error) {
	return RAMBanks(h.RAMSize)
}

// ROMBanks maps a ROM size code to its count of 16 KiB banks. Only the power
// of two codes 0x00-0x08 are accepted.
func ROMBanks(code byte) (int, error) {
	if code > 0x08 {
		return 0, fmt.Errorf("%w: $%02x", ErrInvalidROMSize, code)
	}
	return 2 << code, nil
}

// RAMBanks maps a RAM size code to its count of 8 KiB banks.
func RAMBanks(code byte) (int, error) {
	switch code {
	case 0x00:
		return 0, nil
	case 0x02:
		return 1, nil
	case 0x03:
		return 4, nil
	case 0x04:
		return 16, nil
	case 0x05:
		return 8, nil
	default:
		return 0, fmt.Errorf("%w: $%02x", ErrInvalidRAMSize, code)
	}
}

// ComputeChecksum is the boot ROM's header checksum over 0x0134-0x014C.
func (h *Header) ComputeChecksum() byte {
	b := h.Bytes()
	var sum byte
	for _, c := range b[0x34:0x4D] {
		sum = sum - c - 1
	}
	return sum
}

func (h *Header) ChecksumValid() bool {
	return h.ComputeChecksum() == h.HeaderChecksum
}

func (h *Header) NewLicenseeName() string {
	return NewLicenseeName(h.NewLicensee)
}

func (h *Header) OldLicenseeName() string {
	return OldLicenseeName(h.OldLicensee)
}
