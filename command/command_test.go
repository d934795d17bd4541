package command

import (
	"bytes"
	"encoding/binary"
	"gbcart/bus"
	"gbcart/cartridge"
	"gbcart/gpio/sim"
	"io"
	"testing"
)

type stream struct {
	io.Reader
	io.Writer
}

// session wires a Conn to scripted host input and captures everything the
// device sends back.
func session(input []byte) (*Conn, *bytes.Buffer) {
	out := &bytes.Buffer{}
	return NewConn(stream{Reader: bytes.NewReader(input), Writer: out}), out
}

func makeROM(cartType, romSize, ramSize byte) []byte {
	rom := make([]byte, (2<<romSize)*cartridge.ROMBankSize)
	for i := range rom {
		rom[i] = byte(i*13 + i>>14)
	}
	copy(rom[0x0134:0x0144], "TESTGAME\x00\x00\x00\x00\x00\x00\x00\x80")
	rom[0x0147] = cartType
	rom[0x0148] = romSize
	rom[0x0149] = ramSize
	return rom
}

func newCart(t *testing.T, rom []byte) (*cartridge.Cartridge, sim.Cartridge) {
	t.Helper()
	model, err := sim.NewCartridge(rom)
	if err != nil {
		t.Fatal(err)
	}
	return cartridge.New(bus.New(sim.New(model), 0)), model
}

func le32(n uint32) []byte {
	return binary.LittleEndian.AppendUint32(nil, n)
}

func TestAppendHeader(t *testing.T) {
	tests := []struct {
		name     string
		status   Status
		length   uint32
		expected []byte
	}{
		{"ok without payload", OK, 0, []byte{0x00}},
		{"ok with payload", OK, 32768, []byte{0x00, 0x00, 0x80, 0x00, 0x00}},
		{"ok with odd length", OK, 0x01020304, []byte{0x00, 0x04, 0x03, 0x02, 0x01}},
		{"error status", CartridgeHasNoRTC, 0, []byte{23}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if actual := AppendHeader(nil, tt.status, tt.length); !bytes.Equal(actual, tt.expected) {
				t.Errorf("actual = % x, expected = % x", actual, tt.expected)
			}

			b := &bytes.Buffer{}
			if err := WriteHeader(b, tt.status, tt.length); err != nil {
				t.Fatal(err)
			}
			if !bytes.Equal(b.Bytes(), tt.expected) {
				t.Errorf("WriteHeader(), actual = % x, expected = % x", b.Bytes(), tt.expected)
			}
		})
	}
}

func TestStatusValues(t *testing.T) {
	expected := map[Status]byte{
		OK: 0, UnknownCommand: 1,
		InvalidNumROMBanks: 10, InvalidNumRAMBanks: 11, InvalidCartridgeType: 12,
		InvalidRAMWriteSize: 21, CartridgeHasNoRAM: 22, CartridgeHasNoRTC: 23, InvalidRTCWriteSize: 24,
	}
	for s, v := range expected {
		if byte(s) != v {
			t.Errorf("%s = %d, expected %d", s, byte(s), v)
		}
		if !s.Known() {
			t.Errorf("%s not known", s)
		}
	}
	if Status(2).Known() || Status(2).String() != "Status(2)" {
		t.Errorf("Status(2) = %s", Status(2))
	}
}

func TestReadLine(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{"lower case", "Read ROM\r", []string{"read rom"}},
		{"backspace", "rea\bad ram\r", []string{"read ram"}},
		{"backspace on empty line", "\b\bhelp\r", []string{"help"}},
		{"invalid bytes dropped", "parse-header!\n\r", []string{"parseheader"}},
		{"two lines", "help\r\rread rtc\r", []string{"help", "", "read rtc"}},
		{"too long", "abcdefghijklmnopqrst\r", []string{"abcdefghijklmnt"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := session([]byte(tt.input))
			for _, expected := range tt.expected {
				line, err := c.ReadLine()
				if err != nil {
					t.Fatal(err)
				}
				if line != expected {
					t.Errorf("ReadLine(), actual = %q, expected = %q", line, expected)
				}
			}
			if _, err := c.ReadLine(); err != io.EOF {
				t.Errorf("ReadLine() at end = %v, expected io.EOF", err)
			}
		})
	}
}

func TestReadLineEcho(t *testing.T) {
	c, out := session([]byte("aB\bc\r"))
	c.Echo = true

	line, err := c.ReadLine()
	if err != nil {
		t.Fatal(err)
	}
	if line != "ac" {
		t.Errorf("ReadLine(), actual = %q, expected = %q", line, "ac")
	}
	if actual, expected := out.String(), "ab\b \bc\r\n"; actual != expected {
		t.Errorf("echo, actual = %q, expected = %q", actual, expected)
	}
}

func TestLookup(t *testing.T) {
	for _, name := range Commands() {
		if _, ok := Lookup(name); !ok {
			t.Errorf("Lookup(%q) failed", name)
		}
	}
	if _, ok := Lookup("format"); ok {
		t.Error("Lookup(format) succeeded")
	}

	c, out := session(nil)
	h, _ := Lookup("format")
	if err := h(c, nil); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(out.Bytes(), []byte{byte(UnknownCommand)}) {
		t.Errorf("unknown, actual = % x", out.Bytes())
	}
}

// run executes h against cart with the given host input and checks the bus
// was left alone afterwards.
func run(t *testing.T, h Handler, cart *cartridge.Cartridge, input []byte) []byte {
	t.Helper()
	c, out := session(input)
	if err := h(c, cart); err != nil {
		t.Fatal(err)
	}
	if st := cart.Bus().State(); st != bus.Safe {
		t.Errorf("bus left in state %v", st)
	}
	return out.Bytes()
}

func TestStatusResponses(t *testing.T) {
	tests := []struct {
		name     string
		handler  Handler
		rom      []byte
		input    []byte
		expected []byte
	}{
		{"mbc1 read rtc", ReadRTC, makeROM(0x01, 0x00, 0x00), nil, []byte{23}},
		{"mbc3 without rtc write rtc", WriteRTC, makeROM(0x13, 0x00, 0x03), nil, []byte{23}},
		{"mbc3 rtc write rtc", WriteRTC, makeROM(0x10, 0x00, 0x03), nil, []byte{24}},
		{"read ram without ram", ReadRAM, makeROM(0x19, 0x00, 0x00), nil, []byte{22}},
		{"read ram size code 1", ReadRAM, makeROM(0x1B, 0x00, 0x01), nil, []byte{22}},
		{"read ram bad size code", ReadRAM, makeROM(0x1B, 0x00, 0x07), nil, []byte{11}},
		{"read ram type without ram", ReadRAM, makeROM(0x11, 0x00, 0x02), nil, []byte{22}},
		{"write ram type without ram", WriteRAM, makeROM(0x19, 0x00, 0x03), nil, []byte{22}},
		{"write ram bad size code", WriteRAM, makeROM(0x13, 0x00, 0x09), nil, []byte{11}},
		{"write ram wrong size", WriteRAM, makeROM(0x13, 0x00, 0x03), le32(16383), []byte{0, 21}},
		{"read ram rumble 16 banks", ReadRAM, makeROM(0x1E, 0x00, 0x04), nil, []byte{11}},
		{"write ram rumble 16 banks", WriteRAM, makeROM(0x1D, 0x00, 0x04), nil, []byte{11}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cart, _ := newCart(t, tt.rom)
			if actual := run(t, tt.handler, cart, tt.input); !bytes.Equal(actual, tt.expected) {
				t.Errorf("actual = % x, expected = % x", actual, tt.expected)
			}
		})
	}
}

func TestReadROMInvalid(t *testing.T) {
	// the header is patched after the model is built so the simulator still
	// gets a cartridge it can model
	tests := []struct {
		name     string
		cartType byte
		romSize  byte
		expected Status
	}{
		{"size code 0x52", 0x01, 0x52, InvalidNumROMBanks},
		{"size code 9", 0x19, 0x09, InvalidNumROMBanks},
		{"mbc2", 0x05, 0x00, InvalidCartridgeType},
		{"unknown type", 0x42, 0x00, InvalidCartridgeType},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rom := makeROM(0x19, 0x00, 0x00)
			model, err := sim.NewCartridge(rom)
			if err != nil {
				t.Fatal(err)
			}
			rom[0x0147] = tt.cartType
			rom[0x0148] = tt.romSize
			cart := cartridge.New(bus.New(sim.New(model), 0))

			if actual := run(t, ReadROM, cart, nil); !bytes.Equal(actual, []byte{byte(tt.expected)}) {
				t.Errorf("actual = % x, expected = %02x", actual, byte(tt.expected))
			}
		})
	}
}

func TestReadROMAnySizeCode(t *testing.T) {
	tests := []struct {
		name     string
		cartType byte
		romSize  byte
	}{
		{"rom only with 4 banks", 0x00, 0x01},
		{"mbc1 with 8 banks", 0x01, 0x02},
		{"mbc3 with 8 banks", 0x11, 0x02},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rom := makeROM(0x19, 0x00, 0x00)
			model, err := sim.NewCartridge(rom)
			if err != nil {
				t.Fatal(err)
			}
			rom[0x0147] = tt.cartType
			rom[0x0148] = tt.romSize
			cart := cartridge.New(bus.New(sim.New(model), 0))

			size := (2 << tt.romSize) * cartridge.ROMBankSize
			out := run(t, ReadROM, cart, nil)
			if !bytes.Equal(out[:5], AppendHeader(nil, OK, uint32(size))) {
				t.Fatalf("header, actual = % x", out[:5])
			}
			if actual, expected := len(out)-5, size; actual != expected {
				t.Errorf("payload, actual = %d, expected = %d", actual, expected)
			}
		})
	}
}

func TestRAMUnsupportedFamily(t *testing.T) {
	tests := []struct {
		name     string
		handler  Handler
		cartType byte
		expected Status
	}{
		{"read ram mbc2 battery", ReadRAM, 0x06, InvalidCartridgeType},
		{"write ram mbc2 battery", WriteRAM, 0x06, CartridgeHasNoRAM},
		{"write ram mmm01 ram", WriteRAM, 0x0C, CartridgeHasNoRAM},
		{"write ram huc1", WriteRAM, 0xFF, CartridgeHasNoRAM},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rom := makeROM(0x13, 0x00, 0x02)
			model, err := sim.NewCartridge(rom)
			if err != nil {
				t.Fatal(err)
			}
			rom[0x0147] = tt.cartType
			cart := cartridge.New(bus.New(sim.New(model), 0))

			if actual := run(t, tt.handler, cart, nil); !bytes.Equal(actual, []byte{byte(tt.expected)}) {
				t.Errorf("actual = % x, expected = %02x", actual, byte(tt.expected))
			}
		})
	}
}

func TestRumbleMotorStaysOff(t *testing.T) {
	for _, ramSize := range []byte{0x03, 0x04, 0x05} {
		cart, model := newCart(t, makeROM(0x1E, 0x00, ramSize))
		m := model.(*sim.MBC5)

		_ = run(t, ReadRAM, cart, nil)
		_ = run(t, WriteRAM, cart, le32(0))
		if m.MotorStarts != 0 {
			t.Errorf("ram size %02x: motor started %d times", ramSize, m.MotorStarts)
		}
	}
}

func TestReadROMOnly(t *testing.T) {
	rom := makeROM(0x00, 0x00, 0x00)
	cart, _ := newCart(t, rom)

	out := run(t, ReadROM, cart, nil)

	expected := append([]byte{0x00, 0x00, 0x80, 0x00, 0x00}, rom...)
	if len(out) != len(expected) {
		t.Fatalf("length, actual = %d, expected = %d", len(out), len(expected))
	}
	if !bytes.Equal(out[:5], expected[:5]) {
		t.Errorf("header, actual = % x, expected = % x", out[:5], expected[:5])
	}
	if !bytes.Equal(out[5:], rom) {
		t.Error("streamed banks differ from ROM image")
	}
}

func TestReadROMMBC5(t *testing.T) {
	rom := makeROM(0x19, 0x02, 0x00)
	cart, _ := newCart(t, rom)

	out := run(t, ReadROM, cart, nil)
	if !bytes.Equal(out[:5], AppendHeader(nil, OK, uint32(len(rom)))) {
		t.Errorf("header, actual = % x", out[:5])
	}
	if !bytes.Equal(out[5:], rom) {
		t.Error("streamed banks differ from ROM image")
	}
}

func TestWriteThenReadRAM(t *testing.T) {
	rom := makeROM(0x13, 0x00, 0x03)
	cart, model := newCart(t, rom)

	image := make([]byte, 4*cartridge.RAMBankSize)
	for i := range image {
		image[i] = byte(i>>8 ^ i*7)
	}

	input := append(le32(uint32(len(image))), image...)
	out := run(t, WriteRAM, cart, input)

	if !bytes.Equal(out[:2], []byte{0, 0}) {
		t.Fatalf("acknowledgements, actual = % x", out[:2])
	}
	if !bytes.Equal(out[2:], image) {
		t.Error("echo differs from the written image")
	}
	if !bytes.Equal(model.(sim.BatteryBacked).RAM(), image) {
		t.Error("cartridge RAM differs from the written image")
	}

	out = run(t, ReadRAM, cart, nil)
	if !bytes.Equal(out[:5], []byte{0x00, 0x00, 0x80, 0x00, 0x00}) {
		t.Errorf("header, actual = % x", out[:5])
	}
	if !bytes.Equal(out[5:], image) {
		t.Error("read back differs from the written image")
	}
}

func TestReadRTC(t *testing.T) {
	cart, model := newCart(t, makeROM(0x0F, 0x00, 0x00))
	model.(*sim.MBC3).Live = sim.Clock{Seconds: 59, Minutes: 59, Hours: 23, DayLow: 0x01, DayHigh: 0x81}

	out := run(t, ReadRTC, cart, nil)
	expected := []byte{0x00, 0x05, 0x00, 0x00, 0x00, 59, 59, 23, 0x01, 0x81}
	if !bytes.Equal(out, expected) {
		t.Errorf("actual = % x, expected = % x", out, expected)
	}
}

func TestParseHeader(t *testing.T) {
	cart, _ := newCart(t, makeROM(0x13, 0x00, 0x03))

	out := run(t, ParseHeader, cart, nil)
	if out[0] != byte(OK) {
		t.Fatalf("status = %d", out[0])
	}
	length := binary.LittleEndian.Uint32(out[1:5])
	if int(length) != len(out)-5 {
		t.Errorf("length, actual = %d, expected = %d", length, len(out)-5)
	}
	if !bytes.Contains(out, []byte("  Title:             TESTGAME\r\n")) {
		t.Errorf("report missing title\n%s", out[5:])
	}
	if !bytes.Contains(out, []byte("  CGB Flag:          CGB supported, but backwards compatible\r\n")) {
		t.Errorf("report missing CGB flag\n%s", out[5:])
	}
}

func TestHelp(t *testing.T) {
	out := run(t, Help, mustCart(t), nil)
	if !bytes.Equal(out[:5], AppendHeader(nil, OK, uint32(len(helpText)))) {
		t.Errorf("header, actual = % x", out[:5])
	}
	if string(out[5:]) != helpText {
		t.Errorf("help text, actual = %q", out[5:])
	}
}

func mustCart(t *testing.T) *cartridge.Cartridge {
	cart, _ := newCart(t, makeROM(0x00, 0x00, 0x00))
	return cart
}
