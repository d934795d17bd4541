package command

import "fmt"

// Status is the first byte of every response.
type Status byte

const (
	OK             Status = 0
	UnknownCommand Status = 1

	// the cartridge reports something it cannot be
	InvalidNumROMBanks   Status = 10
	InvalidNumRAMBanks   Status = 11
	InvalidCartridgeType Status = 12

	// the host asked for something the cartridge cannot do
	InvalidRAMWriteSize Status = 21
	CartridgeHasNoRAM   Status = 22
	CartridgeHasNoRTC   Status = 23
	InvalidRTCWriteSize Status = 24
)

var statusNames = map[Status]string{
	OK:                   "OK",
	UnknownCommand:       "UNKNOWN_COMMAND",
	InvalidNumROMBanks:   "INVALID_NUM_ROM_BANKS",
	InvalidNumRAMBanks:   "INVALID_NUM_RAM_BANKS",
	InvalidCartridgeType: "INVALID_CARTRIDGE_TYPE",
	InvalidRAMWriteSize:  "INVALID_RAM_WRITE_SIZE",
	CartridgeHasNoRAM:    "CARTRIDGE_HAS_NO_RAM",
	CartridgeHasNoRTC:    "CARTRIDGE_HAS_NO_RTC",
	InvalidRTCWriteSize:  "INVALID_RTC_WRITE_SIZE",
}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("Status(%d)", byte(s))
}

// Known reports whether s is one of the defined status codes.
func (s Status) Known() bool {
	_, ok := statusNames[s]
	return ok
}

// Describe is the operator-facing explanation of a status.
func (s Status) Describe() string {
	switch s {
	case OK:
		return "ok"
	case UnknownCommand:
		return `command not recognized, try "help" for command reference`
	case InvalidNumROMBanks:
		return "cartridge has invalid amount of ROM banks, broken cartridge or bad connection?"
	case InvalidNumRAMBanks:
		return "cartridge has invalid amount of RAM banks, broken cartridge or bad connection?"
	case InvalidCartridgeType:
		return "cartridge type not recognized, broken cartridge or bad connection?"
	case InvalidRAMWriteSize:
		return "RAM write size does not match cartridge RAM size"
	case CartridgeHasNoRAM:
		return "cartridge has no RAM"
	case CartridgeHasNoRTC:
		return "cartridge has no RTC"
	case InvalidRTCWriteSize:
		return "RTC write size does not match cartridge RTC size"
	default:
		return fmt.Sprintf("invalid response type %d", byte(s))
	}
}

// StatusError is a non-OK answer to a command.
type StatusError struct {
	Command string
	Status  Status
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: %s (%s)", e.Command, e.Status.Describe(), e.Status)
}
