package config

import (
	"errors"
	"gbcart/bus"
	"gbcart/util"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadMissingFile(t *testing.T) {
	util.RedirectLog(t)

	c, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	if err != nil {
		t.Fatal(err)
	}
	if c.GPIO.Driver != "gpiomem" || c.Serial.Baud != 115200 {
		t.Errorf("actual = %+v, expected defaults", c)
	}
	if c.Settle() != bus.DefaultSettle {
		t.Errorf("Settle(), actual = %v, expected = %v", c.Settle(), bus.DefaultSettle)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	util.RedirectLog(t)

	path := filepath.Join(t.TempDir(), "config.json")
	doc := `{"gpio":{"driver":"sim","image":"tetris.gb","settleNs":0},"websocket":{"listen":":8080"}}`
	if err := os.WriteFile(path, []byte(doc), 0644); err != nil {
		t.Fatal(err)
	}

	c, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if c.GPIO.Driver != "sim" || c.GPIO.Image != "tetris.gb" {
		t.Errorf("gpio, actual = %+v", c.GPIO)
	}
	if c.Settle() != 0 {
		t.Errorf("Settle(), actual = %v, expected = 0", c.Settle())
	}
	if c.WebSocket.Listen != ":8080" {
		t.Errorf("websocket, actual = %q", c.WebSocket.Listen)
	}
	// untouched sections keep their defaults
	if c.Serial.Port != "/dev/ttyGS0" || len(c.GPIO.Pins) != len(bus.Signals()) {
		t.Errorf("defaults lost: %+v", c)
	}
}

func TestLoadInvalid(t *testing.T) {
	util.RedirectLog(t)

	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte("{gpio"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("Load() of invalid json succeeded")
	}
}

func TestSaveThenLoad(t *testing.T) {
	util.RedirectLog(t)

	path := filepath.Join(t.TempDir(), "sub", "config.json")
	c := Default()
	c.GPIO.Pins["RDn"] = 26
	c.Serial.Port = ""

	if err := c.Save(path); err != nil {
		t.Fatal(err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.GPIO.Pins["RDn"] != 26 || loaded.Serial.Port != "" {
		t.Errorf("actual = %+v", loaded)
	}
}

func TestApplyEnv(t *testing.T) {
	tests := []struct {
		name   string
		env    map[string]string
		check  func(c *Config) bool
		failed bool
	}{
		{
			"empty leaves config",
			map[string]string{},
			func(c *Config) bool { return c.GPIO.Driver == "gpiomem" && c.Serial.Baud == 115200 },
			false,
		},
		{
			"driver and image",
			map[string]string{"GBCART_GPIO_DRIVER": "sim", "GBCART_IMAGE": "/tmp/a.gb"},
			func(c *Config) bool { return c.GPIO.Driver == "sim" && c.GPIO.Image == "/tmp/a.gb" },
			false,
		},
		{
			"serial and websocket",
			map[string]string{"GBCART_SERIAL_PORT": "/dev/ttyAMA0", "GBCART_SERIAL_BAUD": "9600", "GBCART_WS_LISTEN": "127.0.0.1:9000"},
			func(c *Config) bool {
				return c.Serial.Port == "/dev/ttyAMA0" && c.Serial.Baud == 9600 && c.WebSocket.Listen == "127.0.0.1:9000"
			},
			false,
		},
		{
			"settle",
			map[string]string{"GBCART_SETTLE_NS": "2500"},
			func(c *Config) bool { return c.Settle() == 2500*time.Nanosecond },
			false,
		},
		{"bad baud", map[string]string{"GBCART_SERIAL_BAUD": "fast"}, nil, true},
		{"bad settle", map[string]string{"GBCART_SETTLE_NS": "1us"}, nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Default()
			err := c.ApplyEnv(func(key string) string { return tt.env[key] })
			if (err != nil) != tt.failed {
				t.Fatalf("ApplyEnv() error = %v, expected failure = %v", err, tt.failed)
			}
			if tt.check != nil && !tt.check(c) {
				t.Errorf("actual = %+v", c)
			}
		})
	}
}

func TestGPIOOptions(t *testing.T) {
	c := Default()
	c.GPIO.Pins = map[string]int{"RDn": 17, "DATA_IN_SDATA": 27}

	opts, err := c.GPIOOptions()
	if err != nil {
		t.Fatal(err)
	}
	if opts.Lines[bus.RDn] != 17 || opts.Lines[bus.DataInSData] != 27 {
		t.Errorf("Lines, actual = %v", opts.Lines)
	}
	if opts.Lines[bus.CSn] != -1 || opts.Lines[15] != -1 {
		t.Errorf("unmapped lines, actual = %v", opts.Lines)
	}
	if opts.Inputs != bus.InputMask || opts.Initial != uint16(bus.Safe) {
		t.Errorf("Inputs = %04x, Initial = %04x", opts.Inputs, opts.Initial)
	}

	c.GPIO.Pins["ADDR_SCLOCK"] = 5
	if _, err = c.GPIOOptions(); !errors.Is(err, ErrUnknownSignal) {
		t.Errorf("actual = %v, expected = %v", err, ErrUnknownSignal)
	}
}

func TestDefaultPins(t *testing.T) {
	c := Default()
	opts, err := c.GPIOOptions()
	if err != nil {
		t.Fatal(err)
	}
	seen := map[int]bool{}
	for _, s := range bus.Signals() {
		pin := opts.Lines[s]
		if pin < 2 || pin > 27 || seen[pin] {
			t.Errorf("%s mapped to pin %d", s, pin)
		}
		seen[pin] = true
	}
}
