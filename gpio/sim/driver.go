package sim

import (
	"fmt"
	"gbcart/gpio"
	"log"
	"os"
)

const driverName = "sim"

// Driver opens a simulated board with the cartridge described by a ROM image.
type Driver struct{}

func (d *Driver) Open(opts gpio.Options) (gpio.Pins, error) {
	if opts.Image == "" {
		return nil, fmt.Errorf("sim: no ROM image configured")
	}

	rom, err := os.ReadFile(opts.Image)
	if err != nil {
		return nil, fmt.Errorf("sim: %w", err)
	}

	cart, err := NewCartridge(rom)
	if err != nil {
		return nil, err
	}

	log.Printf("sim: loaded %d byte image '%s'\n", len(rom), opts.Image)

	h := New(cart)
	h.Write(opts.Initial)
	return h, nil
}

func init() {
	gpio.Register(driverName, &Driver{})
}
