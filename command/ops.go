package command

import (
	"gbcart/cartridge"
	"gbcart/header"
)

// Handler carries out one command. It runs with exclusive ownership of the
// cartridge and answers on c. Status codes are protocol answers; a returned
// error means the session or the hardware failed.
type Handler func(c *Conn, cart *cartridge.Cartridge) error

const helpText = "gbcart - Read & Write Game Boy cartridges\r\n" +
	"\r\n" +
	"Available commands:\r\n" +
	"-------------------\r\n" +
	"help          Display this help page\r\n" +
	"echo          Toggle echo of typed characters\r\n" +
	"parse header  Read cartridge header and parse into readable form\r\n" +
	"read rom      Read cartridge rom and echo it in binary\r\n" +
	"read ram      Read cartridge ram (if available) and echo it in binary\r\n" +
	"write ram     Write cartridge ram (if available) from binary terminal data\r\n" +
	"read rtc      Read cartridge RTC (if available) and echo it in binary\r\n" +
	"write rtc     Write cartridge RTC (if available) from binary terminal data\r\n"

func Help(c *Conn, _ *cartridge.Cartridge) error {
	if err := c.WriteStatus(OK, len(helpText)); err != nil {
		return err
	}
	if _, err := c.WriteString(helpText); err != nil {
		return err
	}
	return c.Flush()
}

func ToggleEcho(c *Conn, _ *cartridge.Cartridge) error {
	c.Echo = !c.Echo
	return c.Respond(OK)
}

func Unknown(c *Conn, _ *cartridge.Cartridge) error {
	return c.Respond(UnknownCommand)
}

// readHeader goes through the MBC1 sequence which every controller powers up
// compatible with.
func readHeader(cart *cartridge.Cartridge) (*header.Header, error) {
	return header.Parse(cart.ReadHeader())
}

func ParseHeader(c *Conn, cart *cartridge.Cartridge) error {
	h, err := readHeader(cart)
	if err != nil {
		return err
	}

	report := h.Report()
	if err = c.WriteStatus(OK, len(report)); err != nil {
		return err
	}
	if _, err = c.Write(report); err != nil {
		return err
	}
	return c.Flush()
}

func ReadROM(c *Conn, cart *cartridge.Cartridge) error {
	h, err := readHeader(cart)
	if err != nil {
		return err
	}

	banks, err := h.ROMBanks()
	if err != nil {
		return c.Respond(InvalidNumROMBanks)
	}

	ctl, err := cart.Controller(h.Type().Family)
	if err != nil {
		return c.Respond(InvalidCartridgeType)
	}

	for bank := 0; bank < banks; bank++ {
		if err = ctl.ReadROM(bank); err != nil {
			return err
		}

		if bank == 0 {
			if err = c.WriteStatus(OK, banks*cartridge.ROMBankSize); err != nil {
				return err
			}
		}

		if _, err = c.Write(cart.Buffer()); err != nil {
			return err
		}
	}

	return c.Flush()
}

// rumbleRAMBanks is the most RAM banks a rumble cartridge can be streamed
// through without RAMB bit 3 switching the motor on.
const rumbleRAMBanks = 8

// ramPlan validates a RAM transfer. Reads and writes check the same things
// but a write reports a family it cannot handle as having no RAM.
func ramPlan(cart *cartridge.Cartridge, write bool) (ctl cartridge.Controller, banks int, status Status, err error) {
	var h *header.Header
	h, err = readHeader(cart)
	if err != nil {
		return
	}

	if h.RAMSize == 0x00 || h.RAMSize == 0x01 {
		status = CartridgeHasNoRAM
		return
	}

	banks, err = h.RAMBanks()
	if err != nil {
		err = nil
		status = InvalidNumRAMBanks
		return
	}

	t := h.Type()
	ctl, err = cart.Controller(t.Family)
	if err != nil {
		err = nil
		status = InvalidCartridgeType
		if write {
			status = CartridgeHasNoRAM
		}
		return
	}
	if !t.RAM {
		status = CartridgeHasNoRAM
		return
	}
	if banks > t.Family.MaxRAMBanks() || (t.Rumble && banks > rumbleRAMBanks) {
		status = InvalidNumRAMBanks
		return
	}

	status = OK
	return
}

func ReadRAM(c *Conn, cart *cartridge.Cartridge) error {
	ctl, banks, status, err := ramPlan(cart, false)
	if err != nil {
		return err
	}
	if status != OK {
		return c.Respond(status)
	}

	for bank := 0; bank < banks; bank++ {
		if err = ctl.ReadRAM(bank); err != nil {
			return err
		}

		if bank == 0 {
			if err = c.WriteStatus(OK, banks*cartridge.RAMBankSize); err != nil {
				return err
			}
		}

		if _, err = c.Write(cart.Buffer()[:cartridge.RAMBankSize]); err != nil {
			return err
		}
	}

	return c.Flush()
}

// WriteRAM acknowledges the command, checks the size the host announces and
// then takes the image bank by bank. Every received byte is echoed back as
// flow control; a bank is committed once all of its bytes have arrived.
func WriteRAM(c *Conn, cart *cartridge.Cartridge) error {
	ctl, banks, status, err := ramPlan(cart, true)
	if err != nil {
		return err
	}
	if status != OK {
		return c.Respond(status)
	}

	if err = c.Respond(OK); err != nil {
		return err
	}

	size, err := c.ReadLength()
	if err != nil {
		return err
	}
	if size != uint32(banks*cartridge.RAMBankSize) {
		return c.Respond(InvalidRAMWriteSize)
	}

	if err = c.Respond(OK); err != nil {
		return err
	}

	buf := cart.Buffer()[:cartridge.RAMBankSize]
	for bank := 0; bank < banks; bank++ {
		for o := 0; o < len(buf); {
			n, err := c.Read(buf[o:])
			if err != nil {
				return err
			}
			if _, err = c.Write(buf[o : o+n]); err != nil {
				return err
			}
			if err = c.Flush(); err != nil {
				return err
			}
			o += n
		}

		if err = ctl.WriteRAM(bank); err != nil {
			return err
		}
	}

	return nil
}

func rtcController(cart *cartridge.Cartridge) (cartridge.Controller, bool, error) {
	h, err := readHeader(cart)
	if err != nil {
		return nil, false, err
	}

	t := h.Type()
	if !t.RTC || t.Family != cartridge.MBC3 {
		return nil, false, nil
	}

	ctl, err := cart.Controller(t.Family)
	if err != nil {
		return nil, false, err
	}
	return ctl, true, nil
}

func ReadRTC(c *Conn, cart *cartridge.Cartridge) error {
	ctl, ok, err := rtcController(cart)
	if err != nil {
		return err
	}
	if !ok {
		return c.Respond(CartridgeHasNoRTC)
	}

	rtc, err := ctl.ReadRTC()
	if err != nil {
		return err
	}

	b := rtc.Bytes()
	if err = c.WriteStatus(OK, len(b)); err != nil {
		return err
	}
	if _, err = c.Write(b[:]); err != nil {
		return err
	}
	return c.Flush()
}

// WriteRTC answers every RTC cartridge with InvalidRTCWriteSize: there is no
// register sequence for setting the clock, so no write is accepted and no
// data is read from the host.
func WriteRTC(c *Conn, cart *cartridge.Cartridge) error {
	_, ok, err := rtcController(cart)
	if err != nil {
		return err
	}
	if !ok {
		return c.Respond(CartridgeHasNoRTC)
	}
	return c.Respond(InvalidRTCWriteSize)
}
