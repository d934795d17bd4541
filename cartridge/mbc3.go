package cartridge

// MBC3 register map. RAMG also gates the RTC, RAMB doubles as the RTC
// register select and writing 0 then 1 to the latch register copies the
// running clock into the readable RTC registers.
const (
	mbc3RAMG  = 0x0000
	mbc3ROMB  = 0x2000
	mbc3RAMB  = 0x4000
	mbc3LATCH = 0x6000

	mbc3RAMEnable = 0b00001010

	mbc3RTCBase  = 0x08
	mbc3RTCCount = 5
)

type mbc3 struct {
	c *Cartridge
}

func (m *mbc3) reset() {
	m.c.resetRegisters(mbc3RAMG, mbc3ROMB, mbc3RAMB, mbc3LATCH)
}

// ReadROM selects the bank through the single ROMB register, written with
// all 8 bits so MBC30 chips reach banks 0x80-0xFF. Only bank 0 is read from
// the 0x0000 area; ROMB cannot map bank 0 into 0x4000.
func (m *mbc3) ReadROM(bank int) error {
	if bank < 0 {
		return ErrBankOutOfRange
	}
	bank &= 0xFF

	m.reset()
	defer m.c.bus.Reset()

	base := uint16(romArea1)
	if bank != 0 {
		base = romArea2
	}

	m.c.registerWrite(mbc3ROMB, byte(bank))

	m.c.readROMArea(base)
	return nil
}

func (m *mbc3) ReadRAM(bank int) error {
	if bank < 0 || bank >= MBC3.MaxRAMBanks() {
		return ErrBankOutOfRange
	}

	m.reset()
	defer m.c.bus.Reset()

	m.c.registerWrite(mbc3RAMG, mbc3RAMEnable)
	m.c.registerWrite(mbc3RAMB, byte(bank))

	m.c.readRAMBank()
	return nil
}

func (m *mbc3) WriteRAM(bank int) error {
	if bank < 0 || bank >= MBC3.MaxRAMBanks() {
		return ErrBankOutOfRange
	}

	m.reset()
	defer m.c.bus.Reset()

	m.c.registerWrite(mbc3RAMG, mbc3RAMEnable)
	m.c.registerWrite(mbc3RAMB, byte(bank))

	m.c.writeRAMBank()
	return nil
}

// ReadRTC latches the clock and reads the five RTC registers. Each register
// is selected through RAMB and appears over the whole 0xA000 area, read with
// chip select asserted like RAM.
//
// RTC registers want 4 microseconds between accesses; the per-signal settle
// delay spent shifting out the address already covers that.
func (m *mbc3) ReadRTC() (RTC, error) {
	m.reset()
	defer m.c.bus.Reset()

	m.c.registerWrite(mbc3RAMG, mbc3RAMEnable)

	m.c.registerWrite(mbc3LATCH, 0)
	m.c.registerWrite(mbc3LATCH, 1)

	for i := 0; i < mbc3RTCCount; i++ {
		m.c.registerWrite(mbc3RAMB, byte(mbc3RTCBase+i))
		m.c.buf[i] = m.c.readExternalByte(ramArea)
	}

	return RTCFromBytes(m.c.buf[:mbc3RTCCount]), nil
}
