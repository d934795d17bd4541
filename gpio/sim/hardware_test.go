package sim

import (
	"gbcart/bus"
	"testing"
)

func newROM(cartType, romSize, ramSize byte, banks int) []byte {
	rom := make([]byte, banks*romBankSize)
	for bank := 0; bank < banks; bank++ {
		// tag the first byte of every bank with its number
		rom[bank*romBankSize] = byte(bank)
		rom[bank*romBankSize+1] = byte(bank >> 8)
	}
	rom[0x147] = cartType
	rom[0x148] = romSize
	rom[0x149] = ramSize
	return rom
}

func TestHardwareDecodesBus(t *testing.T) {
	rom := newROM(0x00, 0x00, 0x00, 2)
	rom[0x0134] = 'T'
	rom[0x4567] = 0x5A

	h := New(&ROMOnly{rom: rom})
	b := bus.New(h, 0)

	tests := []struct {
		addr     uint16
		expected byte
	}{
		{0x0134, 'T'},
		{0x4567, 0x5A},
		{0x4000, 1},
	}
	for _, tt := range tests {
		b.Assert(bus.RDn)
		b.ShiftOutAddress(tt.addr)
		if actual := h.Address(); actual != tt.addr {
			t.Fatalf("latched address, actual = %#04x, expected = %#04x", actual, tt.addr)
		}
		if actual := b.ShiftInData(); actual != tt.expected {
			t.Errorf("read %#04x, actual = %#02x, expected = %#02x", tt.addr, actual, tt.expected)
		}
		b.Deassert(bus.RDn)
	}

	if h.Contention != 0 {
		t.Errorf("bus contention detected %d times", h.Contention)
	}
}

func TestHardwareRequiresReadStrobe(t *testing.T) {
	rom := newROM(0x00, 0x00, 0x00, 2)
	h := New(&ROMOnly{rom: rom})
	b := bus.New(h, 0)

	b.ShiftOutAddress(0x0000)
	if actual, expected := b.ShiftInData(), byte(0xFF); actual != expected {
		t.Errorf("read without RDn, actual = %#02x, expected = %#02x", actual, expected)
	}
}

func TestHardwareWriteReachesController(t *testing.T) {
	rom := newROM(0x19, 0x02, 0x00, 8)
	m := &MBC5{rom: rom}
	h := New(m)
	b := bus.New(h, 0)

	b.ShiftOutAddress(0x2000)
	b.ShiftOutData(5)

	if h.Writes != 1 {
		t.Fatalf("Writes = %d, expected 1", h.Writes)
	}
	if m.romb != 5 {
		t.Errorf("ROMB0, actual = %d, expected = 5", m.romb)
	}
}

func TestExternalRAMNeedsChipSelect(t *testing.T) {
	rom := newROM(0x1B, 0x00, 0x02, 2)
	cart, err := NewCartridge(rom)
	if err != nil {
		t.Fatal(err)
	}
	h := New(cart)
	b := bus.New(h, 0)

	b.ShiftOutAddress(0x0000)
	b.ShiftOutData(0x0A)

	// without chip select the write must not land
	b.ShiftOutAddress(0xA010)
	b.ShiftOutData(0x42)
	if ram := cart.(BatteryBacked).RAM(); ram[0x10] != 0 {
		t.Fatalf("RAM written without chip select: %#02x", ram[0x10])
	}

	b.ShiftOutAddress(0xA010)
	b.Assert(bus.CSn)
	b.ShiftOutData(0x42)
	b.Deassert(bus.CSn)
	if ram := cart.(BatteryBacked).RAM(); ram[0x10] != 0x42 {
		t.Errorf("RAM[0x10], actual = %#02x, expected = 0x42", ram[0x10])
	}
}

func TestNewCartridgeModels(t *testing.T) {
	tests := []struct {
		name     string
		cartType byte
		check    func(c Cartridge) bool
	}{
		{"rom", 0x00, func(c Cartridge) bool { _, ok := c.(*ROMOnly); return ok }},
		{"mbc1", 0x03, func(c Cartridge) bool { _, ok := c.(*MBC1); return ok }},
		{"mbc3", 0x10, func(c Cartridge) bool { _, ok := c.(*MBC3); return ok }},
		{"mbc5", 0x1A, func(c Cartridge) bool { m, ok := c.(*MBC5); return ok && !m.Rumble }},
		{"mbc5 rumble", 0x1E, func(c Cartridge) bool { m, ok := c.(*MBC5); return ok && m.Rumble }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := NewCartridge(newROM(tt.cartType, 0, 0, 2))
			if err != nil {
				t.Fatal(err)
			}
			if !tt.check(c) {
				t.Errorf("unexpected model %T", c)
			}
		})
	}

	if _, err := NewCartridge(newROM(0x05, 0, 0, 2)); err == nil {
		t.Error("expected error for MBC2")
	}
	if _, err := NewCartridge(make([]byte, 0x100)); err != ErrImageTooSmall {
		t.Errorf("short image error = %v", err)
	}
}

func TestMBC5RumbleMotor(t *testing.T) {
	m := &MBC5{rom: newROM(0x1C, 0, 0, 2), Rumble: true}
	m.Write(0x4000, 0x0B)
	if !m.Motor || m.ramb != 3 {
		t.Errorf("motor = %v, ramb = %d", m.Motor, m.ramb)
	}
	m.Write(0x4000, 0x03)
	if m.Motor {
		t.Error("motor still running")
	}
	m.Write(0x4000, 0x08)
	m.Write(0x4000, 0x0F)
	if m.MotorStarts != 2 {
		t.Errorf("MotorStarts, actual = %d, expected = 2", m.MotorStarts)
	}
}
