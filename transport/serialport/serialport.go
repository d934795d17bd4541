package serialport

import (
	"errors"
	"fmt"
	"go.bug.st/serial"
	"go.bug.st/serial/enumerator"
	"log"
	"strconv"
	"strings"
)

var (
	ErrNoDeviceFound = errors.New("serialport: no USB serial device found")
	baudRates        = []int{
		921600, // first rate that works on Windows
		460800,
		256000,
		230400, // first rate that works on MacOS
		153600,
		128000,
		115200,
		76800,
		57600,
		38400,
		28800,
		19200,
		14400,
		9600,
	}
)

// DefaultBaud is what the board firmware and the daemon's gadget port use.
const DefaultBaud = 115200

type Options struct {
	// Name is the port path; empty means detect the first matching USB port.
	Name string
	// Baud is the highest rate to try.
	Baud int

	// SerialNumber narrows detection to one USB device.
	SerialNumber string

	// DTR raises the data terminal ready line after opening.
	DTR bool
}

// ParseName splits the "port;baud" form accepted on command lines.
func ParseName(name string) (portName string, baud int) {
	parts := strings.Split(name, ";")
	portName = parts[0]
	if len(parts) > 1 {
		if n, err := strconv.Atoi(parts[1]); err == nil {
			baud = n
		}
	}
	return
}

func matches(port *enumerator.PortDetails, serialNumber string) bool {
	if !port.IsUSB {
		return false
	}
	if serialNumber == "" {
		return true
	}
	return strings.EqualFold(port.SerialNumber, serialNumber)
}

// DetectDevice returns the first USB serial port, or the one carrying the
// given USB serial number.
func DetectDevice(serialNumber string) (portName string, err error) {
	var ports []*enumerator.PortDetails

	ports, err = enumerator.GetDetailedPortsList()
	if err != nil {
		return
	}

	for _, port := range ports {
		if matches(port, serialNumber) {
			portName = port.Name
			return
		}
	}

	err = ErrNoDeviceFound
	return
}

// List describes every serial port the system knows about.
func List() ([]string, error) {
	ports, err := enumerator.GetDetailedPortsList()
	if err != nil {
		return nil, err
	}

	lines := make([]string, 0, len(ports))
	for _, port := range ports {
		if port.IsUSB {
			lines = append(lines, fmt.Sprintf("%s  USB %s:%s  serial %s  %s", port.Name, port.VID, port.PID, port.SerialNumber, port.Product))
		} else {
			lines = append(lines, port.Name)
		}
	}
	return lines, nil
}

// candidates lists the common baud rates at or below the requested one in
// descending order.
func candidates(request int) []int {
	if request <= 0 {
		request = DefaultBaud
	}

	rates := make([]int, 0, len(baudRates)+1)
	known := false
	for _, baud := range baudRates {
		if baud == request {
			known = true
		}
	}
	if !known {
		rates = append(rates, request)
	}
	for _, baud := range baudRates {
		if baud > request {
			continue
		}
		rates = append(rates, baud)
	}
	return rates
}

// Port is an open serial port carrying one host session.
type Port struct {
	f    serial.Port
	name string
	baud int
	dtr  bool
}

func Open(opts Options) (*Port, error) {
	var err error

	portName := opts.Name
	if portName == "" {
		portName, err = DetectDevice(opts.SerialNumber)
		if err != nil {
			return nil, err
		}
	}

	// Try all the common baud rates in descending order:
	f := serial.Port(nil)
	rate := 0
	for _, baud := range candidates(opts.Baud) {
		f, err = serial.Open(portName, &serial.Mode{
			BaudRate: baud,
			DataBits: 8,
			Parity:   serial.NoParity,
			StopBits: serial.OneStopBit,
		})
		if err == nil {
			rate = baud
			break
		}
	}
	if err != nil {
		return nil, fmt.Errorf("serialport: failed to open %s at any baud rate: %w", portName, err)
	}

	if opts.DTR {
		if err = f.SetDTR(true); err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("serialport: failed to set DTR: %w", err)
		}
	}

	log.Printf("serialport: opened %s at %d baud\n", portName, rate)
	return &Port{f: f, name: portName, baud: rate, dtr: opts.DTR}, nil
}

func (p *Port) Name() string { return p.name }
func (p *Port) Baud() int    { return p.baud }

func (p *Port) Read(b []byte) (int, error) {
	n, err := p.f.Read(b)
	if err == nil && n <= 0 {
		return 0, fmt.Errorf("serialport: Read returned %d", n)
	}
	return n, err
}

func (p *Port) Write(b []byte) (int, error) {
	if err := sendSerial(p.f, b); err != nil {
		return 0, err
	}
	return len(b), nil
}

// Drain discards whatever the device already sent, e.g. a banner.
func (p *Port) Drain() error {
	return p.f.ResetInputBuffer()
}

func (p *Port) Close() (err error) {
	if p.dtr {
		// Clear DTR (ignore any errors since we're closing):
		_ = p.f.SetDTR(false)
	}

	err = p.f.Close()
	if err != nil {
		return fmt.Errorf("serialport: could not close %s: %w", p.name, err)
	}
	return
}

func sendSerial(f serial.Port, buf []byte) error {
	sent := 0
	for sent < len(buf) {
		n, e := f.Write(buf[sent:])
		if e != nil {
			return e
		}
		sent += n
	}
	return nil
}
