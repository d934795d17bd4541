package cartridge

// Family is the memory controller a cartridge type is built around.
type Family uint8

const (
	Unsupported Family = iota
	ROMOnly
	MBC1
	MBC3
	MBC5
)

func (f Family) String() string {
	switch f {
	case ROMOnly:
		return "ROM only"
	case MBC1:
		return "MBC1"
	case MBC3:
		return "MBC3"
	case MBC5:
		return "MBC5"
	default:
		return "unsupported"
	}
}

// MaxROMBanks is the number of ROM banks the controller can address.
func (f Family) MaxROMBanks() int {
	switch f {
	case ROMOnly:
		return 2
	case MBC1:
		return 128
	case MBC3:
		return 256
	case MBC5:
		return 512
	default:
		return 0
	}
}

// MaxRAMBanks is the number of RAM banks the controller can address.
func (f Family) MaxRAMBanks() int {
	switch f {
	case ROMOnly:
		return 1
	case MBC1, MBC3:
		return 4
	case MBC5:
		return 16
	default:
		return 0
	}
}

// Controller is the set of transfers every memory controller protocol offers.
// Each call resets the controller first and leaves the bus in its safe state.
// Data moves through the cartridge bank buffer.
type Controller interface {
	// ReadROM fills the buffer with one 16 KiB ROM bank.
	ReadROM(bank int) error

	// ReadRAM fills the first 8 KiB of the buffer with one RAM bank.
	ReadRAM(bank int) error

	// WriteRAM commits the first 8 KiB of the buffer to one RAM bank.
	WriteRAM(bank int) error

	// ReadRTC latches the real-time clock and reads its five registers into
	// the first bytes of the buffer.
	ReadRTC() (RTC, error)
}
