package header

import "gbcart/cartridge"

// Type describes what a cartridge type code says is on the board.
type Type struct {
	Code    byte
	Label   string
	Family  cartridge.Family
	RAM     bool
	Battery bool
	RTC     bool
	Rumble  bool
}

const unrecognized = "Not recognized"

var types = map[byte]Type{
	0x00: {Label: "ROM", Family: cartridge.ROMOnly},
	0x01: {Label: "MBC1", Family: cartridge.MBC1},
	0x02: {Label: "MBC1 + RAM", Family: cartridge.MBC1, RAM: true},
	0x03: {Label: "MBC1 + RAM + Battery", Family: cartridge.MBC1, RAM: true, Battery: true},
	0x05: {Label: "MBC2"},
	0x06: {Label: "MBC2 + Battery", Battery: true},
	0x08: {Label: "ROM + RAM", Family: cartridge.ROMOnly, RAM: true},
	0x09: {Label: "ROM + RAM + Battery", Family: cartridge.ROMOnly, RAM: true, Battery: true},
	0x0B: {Label: "MMM01"},
	0x0C: {Label: "MMM01 + RAM", RAM: true},
	0x0D: {Label: "MMM01 + RAM + Battery", RAM: true, Battery: true},
	0x0F: {Label: "MBC3 + RTC + Battery", Family: cartridge.MBC3, Battery: true, RTC: true},
	0x10: {Label: "MBC3 + RTC + RAM + Battery", Family: cartridge.MBC3, RAM: true, Battery: true, RTC: true},
	0x11: {Label: "MBC3", Family: cartridge.MBC3},
	0x12: {Label: "MBC3 + RAM", Family: cartridge.MBC3, RAM: true},
	0x13: {Label: "MBC3 + RAM + Battery", Family: cartridge.MBC3, RAM: true, Battery: true},
	0x19: {Label: "MBC5", Family: cartridge.MBC5},
	0x1A: {Label: "MBC5 + RAM", Family: cartridge.MBC5, RAM: true},
	0x1B: {Label: "MBC5 + RAM + Battery", Family: cartridge.MBC5, RAM: true, Battery: true},
	0x1C: {Label: "MBC5 + Rumble", Family: cartridge.MBC5, Rumble: true},
	0x1D: {Label: "MBC5 + Rumble + RAM", Family: cartridge.MBC5, RAM: true, Rumble: true},
	0x1E: {Label: "MBC5 + Rumble + RAM + Battery", Family: cartridge.MBC5, RAM: true, Battery: true, Rumble: true},
	0x20: {Label: "MBC6"},
	0x22: {Label: "MBC7 + Sensor + Rumble + RAM + Battery", RAM: true, Battery: true, Rumble: true},
	0xFC: {Label: "Pocket Camera"},
	0xFD: {Label: "Bandai TAMA5"},
	0xFE: {Label: "HuC3"},
	0xFF: {Label: "HuC1 + RAM + Battery", RAM: true, Battery: true},
}

// LookupType never fails; unknown codes come back with an unrecognized label
// and the Unsupported family. Known types without a controller implementation
// are Unsupported too.
func LookupType(code byte) Type {
	t, ok := types[code]
	if !ok {
		t = Type{Label: unrecognized}
	}
	t.Code = code
	return t
}

func (t Type) String() string {
	return t.Label
}
