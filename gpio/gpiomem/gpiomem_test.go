package gpiomem

import (
	"errors"
	"gbcart/gpio"
	"testing"
)

func testOptions() gpio.Options {
	opts := gpio.Options{Inputs: 1 << 2, Initial: 0x0003}
	for i := range opts.Lines {
		opts.Lines[i] = -1
	}
	opts.Lines[0] = 4
	opts.Lines[1] = 17
	opts.Lines[2] = 27
	opts.Lines[3] = 10
	return opts
}

func TestSetFunction(t *testing.T) {
	tests := []struct {
		pin      int
		reg      int
		expected uint32
	}{
		{0, 0, 1 << 0},
		{9, 0, 1 << 27},
		{10, 1, 1 << 0},
		{27, 2, 1 << 21},
	}
	for _, tt := range tests {
		regs := make([]uint32, numRegisters)
		regs[tt.reg] = 0xFFFFFFFF
		setFunction(regs, tt.pin, fnOutput)

		mask := uint32(7) << (uint(tt.pin%10) * 3)
		if actual := regs[tt.reg] & mask; actual != tt.expected {
			t.Errorf("pin %d, actual = %08x, expected = %08x", tt.pin, actual, tt.expected)
		}
		if regs[tt.reg]|mask != 0xFFFFFFFF {
			t.Errorf("pin %d disturbed neighbours: %08x", tt.pin, regs[tt.reg])
		}
		if function(regs, tt.pin) != fnOutput {
			t.Errorf("pin %d function = %d", tt.pin, function(regs, tt.pin))
		}
	}
}

func TestNewPins(t *testing.T) {
	regs := make([]uint32, numRegisters)
	p, err := newPins(regs, nil, testOptions())
	if err != nil {
		t.Fatal(err)
	}

	for pin, expected := range map[int]uint32{4: fnOutput, 17: fnOutput, 27: fnInput, 10: fnOutput} {
		if actual := function(regs, pin); actual != expected {
			t.Errorf("pin %d function, actual = %d, expected = %d", pin, actual, expected)
		}
	}

	// initial levels: lines 0 and 1 high, line 3 low
	if actual, expected := regs[gpset0], uint32(1<<4|1<<17); actual != expected {
		t.Errorf("GPSET0, actual = %08x, expected = %08x", actual, expected)
	}
	if actual, expected := regs[gpclr0], uint32(1<<10); actual != expected {
		t.Errorf("GPCLR0, actual = %08x, expected = %08x", actual, expected)
	}

	p.Write(0x0008)
	if actual, expected := regs[gpset0], uint32(1<<10); actual != expected {
		t.Errorf("GPSET0, actual = %08x, expected = %08x", actual, expected)
	}
	if actual, expected := regs[gpclr0], uint32(1<<4|1<<17); actual != expected {
		t.Errorf("GPCLR0, actual = %08x, expected = %08x", actual, expected)
	}

	regs[gplev0] = 1<<27 | 1<<4 | 1<<5
	if actual, expected := p.Read(), uint16(0x0005); actual != expected {
		t.Errorf("Read(), actual = %04x, expected = %04x", actual, expected)
	}

	if err = p.Close(); err != nil {
		t.Fatal(err)
	}
	for _, pin := range []int{4, 17, 27, 10} {
		if function(regs, pin) != fnInput {
			t.Errorf("pin %d still an output after Close", pin)
		}
	}
}

func TestNewPinsInvalid(t *testing.T) {
	tests := []struct {
		name   string
		modify func(opts *gpio.Options)
	}{
		{"pin out of range", func(opts *gpio.Options) { opts.Lines[5] = 28 }},
		{"pin used twice", func(opts *gpio.Options) { opts.Lines[5] = 17 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := testOptions()
			tt.modify(&opts)
			if _, err := newPins(make([]uint32, numRegisters), nil, opts); !errors.Is(err, ErrInvalidPin) {
				t.Errorf("actual = %v, expected = %v", err, ErrInvalidPin)
			}
		})
	}
}

func TestRegistered(t *testing.T) {
	found := false
	for _, name := range gpio.Drivers() {
		if name == driverName {
			found = true
		}
	}
	if !found {
		t.Errorf("%q not in %v", driverName, gpio.Drivers())
	}
}
