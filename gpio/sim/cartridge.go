package sim

import (
	"errors"
	"fmt"
)

// Cartridge is what sits behind the edge connector: ROM, optional RAM and a
// memory controller intercepting writes to 0x0000-0x7FFF.
type Cartridge interface {
	Read(addr uint16) byte
	Write(addr uint16, value byte)
}

// BatteryBacked exposes the external RAM of a simulated cartridge.
type BatteryBacked interface {
	RAM() []byte
}

var ErrImageTooSmall = errors.New("sim: ROM image too small to contain a header")

const (
	romBankSize = 0x4000
	ramBankSize = 0x2000
)

// NewCartridge picks a memory controller model from the image header.
func NewCartridge(rom []byte) (Cartridge, error) {
	if len(rom) < 0x150 {
		return nil, ErrImageTooSmall
	}

	ram := make([]byte, ramSizeBytes(rom[0x149]))

	switch code := rom[0x147]; code {
	case 0x00, 0x08, 0x09:
		return &ROMOnly{rom: rom, ram: ram}, nil
	case 0x01, 0x02, 0x03:
		return &MBC1{rom: rom, ram: ram}, nil
	case 0x0F, 0x10, 0x11, 0x12, 0x13:
		return &MBC3{rom: rom, ram: ram}, nil
	case 0x19, 0x1A, 0x1B:
		return &MBC5{rom: rom, ram: ram}, nil
	case 0x1C, 0x1D, 0x1E:
		return &MBC5{rom: rom, ram: ram, Rumble: true}, nil
	default:
		return nil, fmt.Errorf("sim: no model for cartridge type $%02x", code)
	}
}

func ramSizeBytes(code byte) int {
	switch code {
	case 0x02:
		return 1 * ramBankSize
	case 0x03:
		return 4 * ramBankSize
	case 0x04:
		return 16 * ramBankSize
	case 0x05:
		return 8 * ramBankSize
	default:
		return 0
	}
}

// romAt mirrors reads past the end of the image like partially decoded ROM chips do.
func romAt(rom []byte, bank int, addr uint16) byte {
	if len(rom) == 0 {
		return 0xFF
	}
	return rom[(bank*romBankSize+int(addr&0x3FFF))%len(rom)]
}

func ramIndex(ram []byte, bank int, addr uint16) int {
	if len(ram) == 0 {
		return -1
	}
	return (bank*ramBankSize + int(addr-0xA000)) % len(ram)
}

// ROMOnly has no controller; writes below 0x8000 go nowhere.
type ROMOnly struct {
	rom []byte
	ram []byte
}

func (c *ROMOnly) RAM() []byte { return c.ram }

func (c *ROMOnly) Read(addr uint16) byte {
	switch {
	case addr < 0x8000:
		return romAt(c.rom, int(addr>>14), addr)
	case addr >= 0xA000 && addr < 0xC000:
		if i := ramIndex(c.ram, 0, addr); i >= 0 {
			return c.ram[i]
		}
	}
	return 0xFF
}

func (c *ROMOnly) Write(addr uint16, value byte) {
	if addr >= 0xA000 && addr < 0xC000 {
		if i := ramIndex(c.ram, 0, addr); i >= 0 {
			c.ram[i] = value
		}
	}
}

// MBC1 follows the register layout described in Pan Docs:
// 0000-1FFF RAMG, 2000-3FFF BANK1 (5 bits, 0 reads as 1), 4000-5FFF BANK2
// (2 bits), 6000-7FFF MODE.
type MBC1 struct {
	rom []byte
	ram []byte

	ramg  byte
	bank1 byte
	bank2 byte
	mode  byte
}

func (m *MBC1) RAM() []byte { return m.ram }

func (m *MBC1) Read(addr uint16) byte {
	switch {
	case addr < 0x4000:
		bank := 0
		if m.mode == 1 {
			bank = int(m.bank2) << 5
		}
		return romAt(m.rom, bank, addr)
	case addr < 0x8000:
		b1 := m.bank1
		if b1 == 0 {
			b1 = 1
		}
		return romAt(m.rom, int(m.bank2)<<5|int(b1), addr)
	case addr >= 0xA000 && addr < 0xC000:
		if m.ramg&0x0F != 0x0A {
			return 0xFF
		}
		if i := ramIndex(m.ram, m.ramBank(), addr); i >= 0 {
			return m.ram[i]
		}
	}
	return 0xFF
}

func (m *MBC1) Write(addr uint16, value byte) {
	switch {
	case addr < 0x2000:
		m.ramg = value
	case addr < 0x4000:
		m.bank1 = value & 0x1F
	case addr < 0x6000:
		m.bank2 = value & 0x03
	case addr < 0x8000:
		m.mode = value & 0x01
	case addr >= 0xA000 && addr < 0xC000:
		if m.ramg&0x0F != 0x0A {
			return
		}
		if i := ramIndex(m.ram, m.ramBank(), addr); i >= 0 {
			m.ram[i] = value
		}
	}
}

func (m *MBC1) ramBank() int {
	if m.mode == 1 {
		return int(m.bank2)
	}
	return 0
}

// Clock is the MBC3 real-time clock register file.
type Clock struct {
	Seconds byte
	Minutes byte
	Hours   byte
	DayLow  byte
	DayHigh byte
}

func (c *Clock) reg(i byte) *byte {
	switch i {
	case 0x08:
		return &c.Seconds
	case 0x09:
		return &c.Minutes
	case 0x0A:
		return &c.Hours
	case 0x0B:
		return &c.DayLow
	case 0x0C:
		return &c.DayHigh
	}
	return nil
}

// MBC3 with RAM and RTC, with the 8 bit ROMB of the MBC30. RAMB values 0x00-0x03 select RAM, 0x08-0x0C select
// one of the latched clock registers.
type MBC3 struct {
	rom []byte
	ram []byte

	// Live is the running clock; Latched is what the cartridge presents.
	Live    Clock
	Latched Clock

	ramg      byte
	romb      byte
	ramb      byte
	lastLatch byte
}

func (m *MBC3) RAM() []byte { return m.ram }

func (m *MBC3) Read(addr uint16) byte {
	switch {
	case addr < 0x4000:
		return romAt(m.rom, 0, addr)
	case addr < 0x8000:
		bank := int(m.romb)
		if bank == 0 {
			bank = 1
		}
		return romAt(m.rom, bank, addr)
	case addr >= 0xA000 && addr < 0xC000:
		if m.ramg&0x0F != 0x0A {
			return 0xFF
		}
		if r := m.Latched.reg(m.ramb); r != nil {
			return *r
		}
		if m.ramb <= 0x03 {
			if i := ramIndex(m.ram, int(m.ramb), addr); i >= 0 {
				return m.ram[i]
			}
		}
	}
	return 0xFF
}

func (m *MBC3) Write(addr uint16, value byte) {
	switch {
	case addr < 0x2000:
		m.ramg = value
	case addr < 0x4000:
		m.romb = value
	case addr < 0x6000:
		m.ramb = value
	case addr < 0x8000:
		if m.lastLatch == 0 && value == 1 {
			m.Latched = m.Live
		}
		m.lastLatch = value
	case addr >= 0xA000 && addr < 0xC000:
		if m.ramg&0x0F != 0x0A {
			return
		}
		if r := m.Live.reg(m.ramb); r != nil {
			*r = value
			return
		}
		if m.ramb <= 0x03 {
			if i := ramIndex(m.ram, int(m.ramb), addr); i >= 0 {
				m.ram[i] = value
			}
		}
	}
}

// MBC5: 2000-2FFF ROMB0, 3000-3FFF ROMB1 (bit 8), 4000-5FFF RAMB. On rumble
// cartridges bit 3 of RAMB drives the motor instead of selecting RAM.
type MBC5 struct {
	rom []byte
	ram []byte

	Rumble bool
	// Motor is true while a rumble cartridge has its motor switched on.
	Motor bool
	// MotorStarts counts how often the motor was switched on.
	MotorStarts int

	ramg byte
	romb uint16
	ramb byte
}

func (m *MBC5) RAM() []byte { return m.ram }

func (m *MBC5) Read(addr uint16) byte {
	switch {
	case addr < 0x4000:
		return romAt(m.rom, 0, addr)
	case addr < 0x8000:
		return romAt(m.rom, int(m.romb), addr)
	case addr >= 0xA000 && addr < 0xC000:
		if m.ramg&0x0F != 0x0A {
			return 0xFF
		}
		if i := ramIndex(m.ram, int(m.ramb), addr); i >= 0 {
			return m.ram[i]
		}
	}
	return 0xFF
}

func (m *MBC5) Write(addr uint16, value byte) {
	switch {
	case addr < 0x2000:
		m.ramg = value
	case addr < 0x3000:
		m.romb = m.romb&0x100 | uint16(value)
	case addr < 0x4000:
		m.romb = m.romb&0x0FF | uint16(value&0x01)<<8
	case addr < 0x6000:
		if m.Rumble {
			on := value&0x08 != 0
			if on && !m.Motor {
				m.MotorStarts++
			}
			m.Motor = on
			m.ramb = value & 0x07
		} else {
			m.ramb = value & 0x0F
		}
	case addr >= 0xA000 && addr < 0xC000:
		if m.ramg&0x0F != 0x0A {
			return
		}
		if i := ramIndex(m.ram, int(m.ramb), addr); i >= 0 {
			m.ram[i] = value
		}
	}
}
