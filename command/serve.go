package command

import (
	"errors"
	"gbcart/cartridge"
	"gbcart/device"
	"io"
	"log"
	"sort"
)

var handlers = map[string]Handler{
	"help":         Help,
	"echo":         ToggleEcho,
	"parse header": ParseHeader,
	"read header":  ParseHeader,
	"read rom":     ReadROM,
	"read ram":     ReadRAM,
	"write ram":    WriteRAM,
	"read rtc":     ReadRTC,
	"write rtc":    WriteRTC,
}

// Lookup finds the handler for a command line; unknown lines get Unknown.
func Lookup(line string) (h Handler, ok bool) {
	h, ok = handlers[line]
	if !ok {
		h = Unknown
	}
	return
}

// Commands lists every command name Lookup accepts.
func Commands() []string {
	names := make([]string, 0, len(handlers))
	for name := range handlers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Serve reads command lines from c until the stream ends and runs each one as
// a single queued command, so the whole exchange including streaming happens
// while no other session can touch the cartridge.
func Serve(q *device.Queue, c *Conn, name string) error {
	log.Printf("%s: session started\n", name)
	defer log.Printf("%s: session ended\n", name)

	for {
		if c.Echo {
			if _, err := c.WriteString("> "); err != nil {
				return err
			}
			if err := c.Flush(); err != nil {
				return err
			}
		}

		line, err := c.ReadLine()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		if line == "" {
			continue
		}

		h, ok := Lookup(line)
		if !ok {
			log.Printf("%s: %q command not recognized\n", name, line)
		} else {
			log.Printf("%s: %s\n", name, line)
		}

		err = q.Do(device.CallbackCommand(func(cart *cartridge.Cartridge) error {
			return h(c, cart)
		}))
		if err != nil {
			log.Printf("%s: %s: %v\n", name, line, err)
			return err
		}
	}
}
