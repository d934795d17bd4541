package bus

import (
	"gbcart/gpio"
	"time"
)

// DefaultSettle keeps the effective bus clock far below the 4.19 MHz the
// cartridge is rated for.
const DefaultSettle = time.Microsecond

// Bus bit-bangs the cartridge address and data buses through three shift
// registers hanging off a handful of GPIO lines:
//
//	address:  16 bit serial-in/parallel-out, latched by ADDR_RCLK
//	data out:  8 bit serial-in/parallel-out, latched by DATA_OUT_RCLK, driven while DATA_OUT_OEn is low
//	data in:   8 bit parallel-in/serial-out, loaded while DATA_IN_PLn is low
//
// A Bus is not safe for concurrent use. Exactly one caller may drive it.
type Bus struct {
	pins   gpio.Pins
	state  State
	settle time.Duration
}

func New(pins gpio.Pins, settle time.Duration) *Bus {
	b := &Bus{pins: pins, settle: settle}
	b.Reset()
	return b
}

func (b *Bus) State() State { return b.state }

func (b *Bus) Pins() gpio.Pins { return b.pins }

// Reset drives every control line to its safe value.
func (b *Bus) Reset() {
	b.state = Safe
	b.write()
}

// Assert pulls an active-low line low.
func (b *Bus) Assert(s Signal) {
	b.state = b.state.With(s, false)
	b.write()
}

// Deassert releases active-low lines.
func (b *Bus) Deassert(signals ...Signal) {
	for _, s := range signals {
		b.state = b.state.With(s, true)
	}
	b.write()
}

// ShiftOutAddress clocks addr MSB first into the address register and latches it.
func (b *Bus) ShiftOutAddress(addr uint16) {
	b.state = b.state.With(AddrRClk, false)

	for i := 0; i < 16; i++ {
		b.state = b.state.With(AddrSClk, false)
		b.state = b.state.With(AddrSData, (addr>>(15-i))&1 != 0)
		b.write()

		b.state = b.state.With(AddrSClk, true)
		b.write()
	}

	b.state = b.state.With(AddrRClk, true)
	b.write()
}

// ShiftOutData clocks v MSB first into the data-out register, latches it and
// strobes it onto the cartridge with WRn.
func (b *Bus) ShiftOutData(v byte) {
	b.state = b.state.With(DataOutRClk, false)

	for i := 0; i < 8; i++ {
		b.state = b.state.With(DataOutSClk, false)
		b.state = b.state.With(DataOutSData, (v>>(7-i))&1 != 0)
		b.write()

		b.state = b.state.With(DataOutSClk, true)
		b.write()
	}

	b.state = b.state.With(DataOutRClk, true)
	b.write()

	b.state = b.state.With(DataOutOEn, false).With(WRn, false)
	b.write()

	b.state = b.state.With(DataOutOEn, true).With(WRn, true)
	b.write()
}

// ShiftInData snapshots the cartridge data bus into the data-in register and
// clocks it out MSB first.
func (b *Bus) ShiftInData() (v byte) {
	b.state = b.state.With(DataInRClk, false)
	b.write()

	b.state = b.state.With(DataInRClk, true).With(DataInPLn, false)
	b.write()

	b.state = b.state.With(DataInPLn, true)
	b.write()

	for i := 0; i < 8; i++ {
		v |= b.read() << (7 - i)

		b.state = b.state.With(DataInSClk, false)
		b.write()

		b.state = b.state.With(DataInSClk, true)
		b.write()
	}

	return
}

func (b *Bus) write() {
	b.pins.Write(uint16(b.state))
	b.wait()
}

// read samples the data-in serial line and returns its level.
func (b *Bus) read() byte {
	level := State(b.pins.Read())
	b.state = b.state.With(DataInSData, level.Get(DataInSData))
	b.wait()
	return b.state.Bit(DataInSData)
}

// wait spins rather than sleeps: the scheduler cannot deliver microsecond sleeps.
func (b *Bus) wait() {
	if b.settle <= 0 {
		return
	}
	deadline := time.Now().Add(b.settle)
	for time.Now().Before(deadline) {
	}
}
