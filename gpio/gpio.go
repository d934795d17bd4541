package gpio

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// Pins is a bank of up to 16 GPIO lines addressed as one packed word.
// Bit n of the word is line n; the caller decides what each line means.
type Pins interface {
	// Write drives every output line to the matching bit of state.
	// Bits that belong to input lines are ignored.
	Write(state uint16)

	// Read samples the level of every line.
	Read() uint16

	Close() error
}

// Options describes how a driver should map the packed word onto hardware.
type Options struct {
	// Lines maps bit n of the packed word to a hardware pin number.
	// A negative entry leaves that bit unconnected.
	Lines [16]int

	// Inputs has a bit set for every line that is sampled rather than driven.
	Inputs uint16

	// Initial is written before any line is switched to output so that
	// active-low strobes never glitch low during bring-up.
	Initial uint16

	// Device is a driver specific device path, e.g. /dev/gpiomem.
	Device string

	// Image is a ROM image used by simulating drivers.
	Image string
}

type Driver interface {
	Open(opts Options) (Pins, error)
}

var ErrUnknownDriver = errors.New("gpio: unknown driver")

var (
	driversMu sync.RWMutex
	drivers   = make(map[string]Driver)
)

// Register makes a GPIO driver available by the provided name.
// If Register is called twice with the same name or if driver is nil,
// it panics.
func Register(name string, driver Driver) {
	driversMu.Lock()
	defer driversMu.Unlock()
	if driver == nil {
		panic("gpio: Register driver is nil")
	}
	if _, dup := drivers[name]; dup {
		panic("gpio: Register called twice for driver " + name)
	}
	drivers[name] = driver
}

// Drivers returns a sorted list of the names of the registered drivers.
func Drivers() []string {
	driversMu.RLock()
	defer driversMu.RUnlock()
	list := make([]string, 0, len(drivers))
	for name := range drivers {
		list = append(list, name)
	}
	sort.Strings(list)
	return list
}

func Open(driverName string, opts Options) (Pins, error) {
	driversMu.RLock()
	driveri, ok := drivers[driverName]
	driversMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w %q (forgotten import?)", ErrUnknownDriver, driverName)
	}

	return driveri.Open(opts)
}
