package bus

import "fmt"

// Signal is the bit position of one line in the packed State.
//
// DATA_OUT is the host to cartridge direction, DATA_IN is cartridge to host.
type Signal uint8

const (
	RDn Signal = iota
	CSn
	AddrSData
	AddrRClk
	WRn
	AddrSClk

	DataOutSData
	DataOutRClk
	DataInSData
	DataInRClk
	DataOutOEn
	DataOutSClk
	DataInPLn
	DataInSClk

	// bits 14 and 15 are reserved
	numSignals
)

var signalNames = [numSignals]string{
	"RDn",
	"CSn",
	"ADDR_SDATA",
	"ADDR_RCLK",
	"WRn",
	"ADDR_SCLK",
	"DATA_OUT_SDATA",
	"DATA_OUT_RCLK",
	"DATA_IN_SDATA",
	"DATA_IN_RCLK",
	"DATA_OUT_OEn",
	"DATA_OUT_SCLK",
	"DATA_IN_PLn",
	"DATA_IN_SCLK",
}

func (s Signal) String() string {
	if s >= numSignals {
		return fmt.Sprintf("Signal(%d)", uint8(s))
	}
	return signalNames[s]
}

func (s Signal) Mask() uint16 { return 1 << s }

// Signals lists every defined signal in bit order.
func Signals() []Signal {
	list := make([]Signal, 0, numSignals)
	for s := Signal(0); s < numSignals; s++ {
		list = append(list, s)
	}
	return list
}

// SignalByName looks a signal up by its schematic name, e.g. "ADDR_SCLK".
func SignalByName(name string) (Signal, bool) {
	for s, n := range signalNames {
		if n == name {
			return Signal(s), true
		}
	}
	return 0, false
}

// InputMask has the bit of every line sampled from hardware.
const InputMask uint16 = 1 << DataInSData

// State is the packed control/address/data signal register mirrored onto GPIO.
type State uint16

// Safe has every strobe, chip select, output enable and parallel load line
// deasserted so that neither side drives the data bus.
const Safe = State(1<<RDn | 1<<CSn | 1<<WRn | 1<<DataOutOEn | 1<<DataInPLn)

func (st State) Get(s Signal) bool {
	return uint16(st)&s.Mask() != 0
}

func (st State) Bit(s Signal) uint8 {
	return uint8(uint16(st)>>s) & 1
}

func (st State) With(s Signal, high bool) State {
	if high {
		return st | State(s.Mask())
	}
	return st &^ State(s.Mask())
}

func (st State) String() string {
	return fmt.Sprintf("%#04x", uint16(st))
}
