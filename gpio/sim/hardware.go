package sim

import (
	"gbcart/bus"
)

// Hardware simulates the shift register board with a cartridge plugged in.
// It decodes the GPIO word written by the bus driver the way the real chips
// would and serves the cartridge data bus back through the data-in register.
type Hardware struct {
	Cart Cartridge

	state bus.State

	addrShift uint16
	addrLatch uint16
	dataShift byte
	dataLatch byte
	dataIn    byte

	// Contention counts writes that drove the data bus while the cartridge
	// was asked to drive it too.
	Contention int
	// Writes counts write strobes that reached the cartridge.
	Writes int

	closed bool
}

func New(cart Cartridge) *Hardware {
	return &Hardware{Cart: cart, state: bus.Safe}
}

// Address is the word currently latched on the address bus.
func (h *Hardware) Address() uint16 { return h.addrLatch }

func (h *Hardware) Closed() bool { return h.closed }

func (h *Hardware) Write(word uint16) {
	prev, next := h.state, bus.State(word&^bus.InputMask)
	h.state = next

	rising := func(s bus.Signal) bool { return !prev.Get(s) && next.Get(s) }
	falling := func(s bus.Signal) bool { return prev.Get(s) && !next.Get(s) }

	if rising(bus.AddrSClk) {
		h.addrShift = h.addrShift<<1 | uint16(next.Bit(bus.AddrSData))
	}
	if rising(bus.AddrRClk) {
		h.addrLatch = h.addrShift
	}

	if rising(bus.DataOutSClk) {
		h.dataShift = h.dataShift<<1 | next.Bit(bus.DataOutSData)
	}
	if rising(bus.DataOutRClk) {
		h.dataLatch = h.dataShift
	}

	if !next.Get(bus.DataOutOEn) && !next.Get(bus.RDn) {
		h.Contention++
	}

	if falling(bus.WRn) && !next.Get(bus.DataOutOEn) {
		h.cartWrite(next)
	}

	// the data-in register follows the bus while PLn is held low and
	// shifts on the clock edge once it is released
	if !next.Get(bus.DataInPLn) {
		h.dataIn = h.cartRead(next)
	} else if rising(bus.DataInSClk) {
		h.dataIn <<= 1
	}
}

func (h *Hardware) Read() uint16 {
	return uint16(h.state.With(bus.DataInSData, h.dataIn&0x80 != 0))
}

func (h *Hardware) Close() error {
	h.closed = true
	return nil
}

// external RAM and RTC live in 0xA000-0xBFFF and only answer with chip select asserted.
func isExternal(addr uint16) bool { return addr >= 0xA000 && addr < 0xC000 }

func (h *Hardware) cartRead(st bus.State) byte {
	if st.Get(bus.RDn) {
		return 0xFF
	}
	addr := h.addrLatch
	switch {
	case addr < 0x8000:
		return h.Cart.Read(addr)
	case isExternal(addr) && !st.Get(bus.CSn):
		return h.Cart.Read(addr)
	default:
		return 0xFF
	}
}

func (h *Hardware) cartWrite(st bus.State) {
	addr := h.addrLatch
	switch {
	case addr < 0x8000:
		h.Cart.Write(addr, h.dataLatch)
	case isExternal(addr) && !st.Get(bus.CSn):
		h.Cart.Write(addr, h.dataLatch)
	default:
		return
	}
	h.Writes++
}
