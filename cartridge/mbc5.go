package cartridge

// MBC5 register map. The 9 bit ROM bank is split over ROMB0 (low 8 bits) and
// ROMB1 (bit 8).
const (
	mbc5RAMG  = 0x0000
	mbc5ROMB0 = 0x2000
	mbc5ROMB1 = 0x3000
	mbc5RAMB  = 0x4000

	mbc5RAMEnable = 0b00001010
)

// SplitBank returns the values written to ROMB0 and ROMB1 for a 9 bit bank.
func SplitBank(bank uint16) (low, high byte) {
	return byte(bank & 0xFF), byte((bank >> 8) & 0b1)
}

// JoinBank is the inverse of SplitBank.
func JoinBank(low, high byte) uint16 {
	return uint16(high&0b1)<<8 | uint16(low)
}

type mbc5 struct {
	c *Cartridge
}

func (m *mbc5) reset() {
	m.c.resetRegisters(mbc5RAMG, mbc5ROMB0, mbc5ROMB1, mbc5RAMB)
}

// ReadROM always reads through the 0x4000 area; unlike MBC1 and MBC3 the
// MBC5 maps bank 0 there as well.
func (m *mbc5) ReadROM(bank int) error {
	if bank < 0 || bank >= MBC5.MaxROMBanks() {
		return ErrBankOutOfRange
	}

	m.reset()
	defer m.c.bus.Reset()

	low, high := SplitBank(uint16(bank))
	m.c.registerWrite(mbc5ROMB0, low)
	m.c.registerWrite(mbc5ROMB1, high)

	m.c.readROMArea(romArea2)
	return nil
}

// ReadRAM selects the bank through RAMB. Bit 3 of RAMB drives the motor on
// rumble cartridges, which never carry more than 8 RAM banks.
func (m *mbc5) ReadRAM(bank int) error {
	if bank < 0 || bank >= MBC5.MaxRAMBanks() {
		return ErrBankOutOfRange
	}

	m.reset()
	defer m.c.bus.Reset()

	m.c.registerWrite(mbc5RAMG, mbc5RAMEnable)
	m.c.registerWrite(mbc5RAMB, byte(bank))

	m.c.readRAMBank()
	return nil
}

func (m *mbc5) WriteRAM(bank int) error {
	if bank < 0 || bank >= MBC5.MaxRAMBanks() {
		return ErrBankOutOfRange
	}

	m.reset()
	defer m.c.bus.Reset()

	m.c.registerWrite(mbc5RAMG, mbc5RAMEnable)
	m.c.registerWrite(mbc5RAMB, byte(bank))

	m.c.writeRAMBank()
	return nil
}

func (m *mbc5) ReadRTC() (RTC, error) {
	return RTC{}, ErrNotSupported
}
