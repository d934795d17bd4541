package cartridge

import (
	"errors"
	"gbcart/bus"
)

const (
	HeaderAddress = 0x0100
	HeaderSize    = 0x50

	ROMBankSize = 0x4000
	RAMBankSize = 0x2000

	romArea1 = 0x0000
	romArea2 = 0x4000
	ramArea  = 0xA000
)

var (
	ErrNotSupported   = errors.New("cartridge: operation not supported by this memory controller")
	ErrBankOutOfRange = errors.New("cartridge: bank out of range")
	ErrNoController   = errors.New("cartridge: no controller for this cartridge family")
)

// Cartridge owns the bus and the bank buffer shared by every transfer.
//
// The buffer holds one ROM bank. Every read overwrites it and every write
// consumes it, so its contents are only meaningful until the next bus
// operation. Access must be serialized by the caller.
type Cartridge struct {
	bus *bus.Bus
	buf [ROMBankSize]byte
}

func New(b *bus.Bus) *Cartridge {
	return &Cartridge{bus: b}
}

func (c *Cartridge) Bus() *bus.Bus { return c.bus }

// Buffer returns the bank buffer.
func (c *Cartridge) Buffer() []byte { return c.buf[:] }

// Close leaves the bus in the safe state and releases the GPIO lines.
func (c *Cartridge) Close() error {
	c.bus.Reset()
	return c.bus.Pins().Close()
}

// registerWrite addresses one of the memory controller's virtual registers.
// There is no memory behind the address; the controller intercepts the write.
func (c *Cartridge) registerWrite(address uint16, value byte) {
	c.bus.ShiftOutAddress(address)
	c.bus.ShiftOutData(value)
}

// resetRegisters zeroes the given controller registers and returns the bus to
// its safe state. Required before every banked access.
func (c *Cartridge) resetRegisters(registers ...uint16) {
	for _, r := range registers {
		c.registerWrite(r, 0)
	}
	c.bus.Reset()
}

func (c *Cartridge) readROMByte(address uint16) byte {
	c.bus.Assert(bus.RDn)
	c.bus.ShiftOutAddress(address)
	v := c.bus.ShiftInData()
	c.bus.Deassert(bus.RDn)
	return v
}

// readROMArea fills the buffer from one 16 KiB ROM window.
func (c *Cartridge) readROMArea(base uint16) {
	for offs := 0; offs < ROMBankSize; offs++ {
		c.buf[offs] = c.readROMByte(base + uint16(offs))
	}
}

// readRAMBank fills the first 8 KiB of the buffer from the RAM window.
// Unlike ROM reads, RAM accesses assert chip select.
func (c *Cartridge) readRAMBank() {
	for offs := 0; offs < RAMBankSize; offs++ {
		c.buf[offs] = c.readExternalByte(ramArea + uint16(offs))
	}
}

func (c *Cartridge) readExternalByte(address uint16) byte {
	c.bus.Assert(bus.RDn)
	c.bus.ShiftOutAddress(address)
	c.bus.Assert(bus.CSn)
	v := c.bus.ShiftInData()
	c.bus.Deassert(bus.CSn, bus.RDn)
	return v
}

// writeRAMBank commits the first 8 KiB of the buffer to the RAM window.
func (c *Cartridge) writeRAMBank() {
	for offs := 0; offs < RAMBankSize; offs++ {
		c.bus.ShiftOutAddress(ramArea + uint16(offs))
		c.bus.Assert(bus.CSn)
		c.bus.ShiftOutData(c.buf[offs])
		c.bus.Deassert(bus.CSn)
	}
}

// ReadHeader reads the cartridge header into the buffer at its bus offset and
// returns that window of the buffer. Every controller powers up presenting
// bank 0, so no banking is needed; only the header range is read.
//
// The returned slice aliases the buffer and is invalid after the next bus
// operation.
func (c *Cartridge) ReadHeader() []byte {
	m := &mbc1{c}
	m.reset()
	defer c.bus.Reset()

	c.registerWrite(mbc1MODE, 0)

	for addr := uint16(HeaderAddress); addr < HeaderAddress+HeaderSize; addr++ {
		c.buf[addr] = c.readROMByte(addr)
	}

	return c.buf[HeaderAddress : HeaderAddress+HeaderSize]
}

// Controller returns the register protocol for a cartridge family.
func (c *Cartridge) Controller(f Family) (Controller, error) {
	switch f {
	case ROMOnly, MBC1:
		// ROM-only cartridges leave WRn unconnected so the MBC1 register
		// writes are harmless.
		return &mbc1{c}, nil
	case MBC3:
		return &mbc3{c}, nil
	case MBC5:
		return &mbc5{c}, nil
	default:
		return nil, ErrNoController
	}
}
