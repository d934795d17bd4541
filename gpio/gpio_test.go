package gpio

import (
	"errors"
	"testing"
)

type nullPins struct{ state uint16 }

func (p *nullPins) Write(state uint16) { p.state = state }
func (p *nullPins) Read() uint16       { return p.state }
func (p *nullPins) Close() error       { return nil }

type nullDriver struct{}

func (d *nullDriver) Open(opts Options) (Pins, error) {
	return &nullPins{state: opts.Initial}, nil
}

func TestRegisterAndOpen(t *testing.T) {
	Register("test-null", &nullDriver{})

	found := false
	for _, name := range Drivers() {
		if name == "test-null" {
			found = true
		}
	}
	if !found {
		t.Fatalf("Drivers() does not list test-null: %v", Drivers())
	}

	pins, err := Open("test-null", Options{Initial: 0x1413})
	if err != nil {
		t.Fatal(err)
	}
	if actual, expected := pins.Read(), uint16(0x1413); actual != expected {
		t.Errorf("initial state, actual = %#04x, expected = %#04x", actual, expected)
	}
}

func TestOpenUnknown(t *testing.T) {
	_, err := Open("no-such-driver", Options{})
	if !errors.Is(err, ErrUnknownDriver) {
		t.Errorf("Open() error = %v, expected ErrUnknownDriver", err)
	}
}

func TestRegisterTwicePanics(t *testing.T) {
	Register("test-dup", &nullDriver{})
	defer func() {
		if recover() == nil {
			t.Error("expected panic on duplicate Register")
		}
	}()
	Register("test-dup", &nullDriver{})
}
