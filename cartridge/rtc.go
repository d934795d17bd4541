package cartridge

import "fmt"

// RTC is a latched MBC3 real-time clock snapshot in register order.
type RTC struct {
	Seconds byte
	Minutes byte
	Hours   byte
	DayLow  byte

	// bit 0: day counter bit 8, bit 6: halt, bit 7: day counter carry
	DayHigh byte
}

const RTCSize = 5

const (
	rtcDayHighBit = 1 << 0
	rtcHaltBit    = 1 << 6
	rtcCarryBit   = 1 << 7
)

func RTCFromBytes(b []byte) RTC {
	_ = b[RTCSize-1]
	return RTC{
		Seconds: b[0],
		Minutes: b[1],
		Hours:   b[2],
		DayLow:  b[3],
		DayHigh: b[4],
	}
}

func (r RTC) Bytes() [RTCSize]byte {
	return [RTCSize]byte{r.Seconds, r.Minutes, r.Hours, r.DayLow, r.DayHigh}
}

// Days is the 9 bit day counter.
func (r RTC) Days() int {
	return int(r.DayHigh&rtcDayHighBit)<<8 | int(r.DayLow)
}

func (r RTC) Halted() bool { return r.DayHigh&rtcHaltBit != 0 }

// Carry reports a day counter overflow past 511.
func (r RTC) Carry() bool { return r.DayHigh&rtcCarryBit != 0 }

func (r RTC) String() string {
	s := fmt.Sprintf("day %d %02d:%02d:%02d", r.Days(), r.Hours, r.Minutes, r.Seconds)
	if r.Halted() {
		s += " halted"
	}
	if r.Carry() {
		s += " carry"
	}
	return s
}
