package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"gbcart/bus"
	"gbcart/gpio"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"
)

const fileName = "config.json"

var ErrUnknownSignal = errors.New("config: unknown signal")

type GPIOConfiguration struct {
	// Driver is a registered gpio driver name, "gpiomem" or "sim".
	Driver string `json:"driver"`
	Device string `json:"device,omitempty"`

	// Image is the ROM image the sim driver serves.
	Image string `json:"image,omitempty"`

	// SettleNS is the bus settle delay in nanoseconds.
	SettleNS int64 `json:"settleNs"`

	// Pins maps signal names such as "ADDR_SCLK" to BCM pin numbers.
	Pins map[string]int `json:"pins"`
}

type SerialConfiguration struct {
	// Port is the device path; empty disables the serial listener.
	Port string `json:"port"`
	Baud int    `json:"baud"`
}

type WebSocketConfiguration struct {
	// Listen is a host:port; empty disables the websocket listener.
	Listen string `json:"listen"`
}

type Config struct {
	GPIO      GPIOConfiguration      `json:"gpio"`
	Serial    SerialConfiguration    `json:"serial"`
	WebSocket WebSocketConfiguration `json:"websocket"`
}

// DefaultPins wires signal n to BCM pin n+2, which keeps clear of the ID
// EEPROM pins and uses one contiguous header block.
func DefaultPins() map[string]int {
	pins := make(map[string]int)
	for _, s := range bus.Signals() {
		pins[s.String()] = int(s) + 2
	}
	return pins
}

func Default() *Config {
	return &Config{
		GPIO: GPIOConfiguration{
			Driver:   "gpiomem",
			Device:   "/dev/gpiomem",
			SettleNS: int64(bus.DefaultSettle),
			Pins:     DefaultPins(),
		},
		Serial: SerialConfiguration{
			Port: "/dev/ttyGS0",
			Baud: 115200,
		},
	}
}

func orElse(a, b string) string {
	if a == "" {
		return b
	}
	return a
}

// Dir is where the configuration lives by default.
func Dir() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "gbcart"), nil
}

// Path is $GBCART_CONFIG or config.json in Dir.
func Path() string {
	path := os.Getenv("GBCART_CONFIG")
	if path != "" {
		return path
	}

	dir, err := Dir()
	if err != nil {
		return fileName
	}
	return filepath.Join(dir, fileName)
}

// Load reads the configuration at path over the defaults. A missing file
// leaves the defaults in place.
func Load(path string) (*Config, error) {
	c := Default()

	b, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		log.Printf("config: '%s' not found; using defaults\n", path)
		return c, nil
	}
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	if err = json.Unmarshal(b, c); err != nil {
		return nil, fmt.Errorf("config: could not json unmarshal '%s': %w", path, err)
	}

	log.Printf("config: loaded '%s'\n", path)
	return c, nil
}

func (c *Config) Save(path string) error {
	b, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("config: could not json marshal: %w", err)
	}

	if err = os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if err = os.WriteFile(path, b, 0644); err != nil {
		return fmt.Errorf("config: could not write '%s': %w", path, err)
	}
	return nil
}

// ApplyEnv overrides settings from GBCART_* variables.
func (c *Config) ApplyEnv(getenv func(string) string) error {
	c.GPIO.Driver = orElse(getenv("GBCART_GPIO_DRIVER"), c.GPIO.Driver)
	c.GPIO.Image = orElse(getenv("GBCART_IMAGE"), c.GPIO.Image)
	c.Serial.Port = orElse(getenv("GBCART_SERIAL_PORT"), c.Serial.Port)
	c.WebSocket.Listen = orElse(getenv("GBCART_WS_LISTEN"), c.WebSocket.Listen)

	if s := getenv("GBCART_SERIAL_BAUD"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			return fmt.Errorf("config: GBCART_SERIAL_BAUD: %w", err)
		}
		c.Serial.Baud = n
	}
	if s := getenv("GBCART_SETTLE_NS"); s != "" {
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return fmt.Errorf("config: GBCART_SETTLE_NS: %w", err)
		}
		c.GPIO.SettleNS = n
	}

	return nil
}

func (c *Config) Settle() time.Duration {
	if c.GPIO.SettleNS < 0 {
		return 0
	}
	return time.Duration(c.GPIO.SettleNS)
}

// GPIOOptions translates the pin map into driver options. Signals missing
// from the map are left unconnected.
func (c *Config) GPIOOptions() (gpio.Options, error) {
	opts := gpio.Options{
		Inputs:  bus.InputMask,
		Initial: uint16(bus.Safe),
		Device:  c.GPIO.Device,
		Image:   c.GPIO.Image,
	}
	for i := range opts.Lines {
		opts.Lines[i] = -1
	}

	names := make([]string, 0, len(c.GPIO.Pins))
	for name := range c.GPIO.Pins {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		s, ok := bus.SignalByName(name)
		if !ok {
			return opts, fmt.Errorf("%w %q", ErrUnknownSignal, name)
		}
		opts.Lines[s] = c.GPIO.Pins[name]
	}

	return opts, nil
}
