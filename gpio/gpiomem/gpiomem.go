// Package gpiomem drives BCM283x GPIO lines through the memory mapped
// register block exposed by /dev/gpiomem.
package gpiomem

import (
	"errors"
	"fmt"
	"gbcart/gpio"
	"log"
)

const driverName = "gpiomem"

const DefaultDevice = "/dev/gpiomem"

// register word offsets
const (
	gpfsel0 = 0x00 / 4
	gpset0  = 0x1C / 4
	gpclr0  = 0x28 / 4
	gplev0  = 0x34 / 4

	numRegisters = 0xB4 / 4
	blockSize    = 4096
)

const (
	fnInput  = 0
	fnOutput = 1
)

// MaxPin is the highest pin on the 40 pin header.
const MaxPin = 27

var (
	ErrInvalidPin          = errors.New("gpiomem: invalid pin")
	ErrUnsupportedPlatform = errors.New("gpiomem: not supported on this platform")
)

// setFunction selects the alternate function of one pin, 3 bits per pin and
// 10 pins per GPFSEL register.
func setFunction(regs []uint32, pin int, fn uint32) {
	reg := gpfsel0 + pin/10
	shift := uint(pin%10) * 3
	regs[reg] = regs[reg]&^(7<<shift) | fn<<shift
}

func function(regs []uint32, pin int) uint32 {
	return regs[gpfsel0+pin/10] >> (uint(pin%10) * 3) & 7
}

// Pins maps the packed word onto the bank 0 registers.
type Pins struct {
	regs   []uint32
	unmap  func() error
	lines  [16]int
	masks  [16]uint32
	used   uint16
	inputs uint16
}

func newPins(regs []uint32, unmap func() error, opts gpio.Options) (*Pins, error) {
	if len(regs) < numRegisters {
		return nil, fmt.Errorf("gpiomem: register block too small: %d words", len(regs))
	}

	p := &Pins{regs: regs, unmap: unmap, lines: opts.Lines, inputs: opts.Inputs}

	var taken uint32
	for n, pin := range opts.Lines {
		if pin < 0 {
			continue
		}
		if pin > MaxPin {
			return nil, fmt.Errorf("%w %d for line %d", ErrInvalidPin, pin, n)
		}
		if taken&(1<<uint(pin)) != 0 {
			return nil, fmt.Errorf("%w %d used twice", ErrInvalidPin, pin)
		}
		taken |= 1 << uint(pin)
		p.masks[n] = 1 << uint(pin)
		p.used |= 1 << uint(n)
	}

	// drive initial levels before any line becomes an output
	p.Write(opts.Initial)
	for n, pin := range p.lines {
		if p.used&(1<<uint(n)) == 0 {
			continue
		}
		if p.inputs&(1<<uint(n)) != 0 {
			setFunction(regs, pin, fnInput)
		} else {
			setFunction(regs, pin, fnOutput)
		}
	}

	return p, nil
}

func (p *Pins) Write(state uint16) {
	var set, clr uint32
	outputs := p.used &^ p.inputs
	for n := 0; n < 16; n++ {
		if outputs&(1<<uint(n)) == 0 {
			continue
		}
		if state&(1<<uint(n)) != 0 {
			set |= p.masks[n]
		} else {
			clr |= p.masks[n]
		}
	}
	if set != 0 {
		p.regs[gpset0] = set
	}
	if clr != 0 {
		p.regs[gpclr0] = clr
	}
}

func (p *Pins) Read() uint16 {
	lev := p.regs[gplev0]
	var word uint16
	for n := 0; n < 16; n++ {
		if lev&p.masks[n] != 0 {
			word |= 1 << uint(n)
		}
	}
	return word
}

// Close returns every used line to input and releases the mapping.
func (p *Pins) Close() error {
	if p.regs == nil {
		return nil
	}
	for n := 0; n < 16; n++ {
		if p.used&(1<<uint(n)) != 0 {
			setFunction(p.regs, p.lines[n], fnInput)
		}
	}
	p.regs = nil

	if p.unmap != nil {
		return p.unmap()
	}
	return nil
}

type Driver struct{}

func (d *Driver) Open(opts gpio.Options) (gpio.Pins, error) {
	device := opts.Device
	if device == "" {
		device = DefaultDevice
	}

	regs, unmap, err := mapRegisters(device)
	if err != nil {
		return nil, err
	}

	p, err := newPins(regs, unmap, opts)
	if err != nil {
		_ = unmap()
		return nil, err
	}

	log.Printf("gpiomem: mapped %s\n", device)
	return p, nil
}

func init() {
	gpio.Register(driverName, &Driver{})
}
