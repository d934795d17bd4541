package cartridge

// MBC1 register map.
const (
	mbc1RAMG  = 0x0000
	mbc1BANK1 = 0x2000
	mbc1BANK2 = 0x4000
	mbc1MODE  = 0x6000

	mbc1RAMEnable = 0b00001010
)

type mbc1 struct {
	c *Cartridge
}

func (m *mbc1) reset() {
	m.c.resetRegisters(mbc1RAMG, mbc1BANK1, mbc1BANK2, mbc1MODE)
}

// ReadROM selects the bank through the 5 bit BANK1 and 2 bit BANK2 registers.
// In mode 1 BANK2 also applies to the 0x0000 area, which is the only place
// banks 0x00, 0x20, 0x40 and 0x60 can be seen. Banks past what the registers
// hold wrap around to the mirrors the chip decodes.
func (m *mbc1) ReadROM(bank int) error {
	if bank < 0 {
		return ErrBankOutOfRange
	}
	bank &= 0xFF

	m.reset()
	defer m.c.bus.Reset()

	base := uint16(romArea1)
	if bank&0b11111 != 0 {
		base = romArea2
	}

	m.c.registerWrite(mbc1MODE, 1)
	m.c.registerWrite(mbc1BANK1, byte(bank&0b11111))
	m.c.registerWrite(mbc1BANK2, byte((bank>>5)&0b11))

	m.c.readROMArea(base)
	return nil
}

// ReadRAM uses mode 1 so that BANK2 selects the RAM bank.
func (m *mbc1) ReadRAM(bank int) error {
	if bank < 0 || bank >= MBC1.MaxRAMBanks() {
		return ErrBankOutOfRange
	}

	m.reset()
	defer m.c.bus.Reset()

	m.selectRAM(bank)
	m.c.readRAMBank()
	return nil
}

func (m *mbc1) WriteRAM(bank int) error {
	if bank < 0 || bank >= MBC1.MaxRAMBanks() {
		return ErrBankOutOfRange
	}

	m.reset()
	defer m.c.bus.Reset()

	m.selectRAM(bank)
	m.c.writeRAMBank()
	return nil
}

func (m *mbc1) selectRAM(bank int) {
	m.c.registerWrite(mbc1RAMG, mbc1RAMEnable)
	m.c.registerWrite(mbc1MODE, 1)
	m.c.registerWrite(mbc1BANK2, byte(bank&0b11))
}

func (m *mbc1) ReadRTC() (RTC, error) {
	return RTC{}, ErrNotSupported
}
