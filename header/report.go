package header

import (
	"bytes"
	"fmt"
	"io"
)

// WriteReport renders the human-readable header description sent in answer
// to "parse header". Lines end in CRLF for terminal emulators.
func (h *Header) WriteReport(w io.Writer) (err error) {
	b := &bytes.Buffer{}

	b.WriteString("Overview:\r\n")
	b.WriteString("  Entry Point:      ")
	for _, c := range h.EntryPoint {
		fmt.Fprintf(b, " %02x", c)
	}
	b.WriteString("\r\n")

	logo := "Bad"
	if h.LogoValid() {
		logo = "Good"
	}
	fmt.Fprintf(b, "  Nintendo Logo:     %s\r\n", logo)
	fmt.Fprintf(b, "  Title:             %s\r\n", h.DisplayTitle())
	fmt.Fprintf(b, "  Manufac. Code (?): %s\r\n", h.ManufacturerCode())
	fmt.Fprintf(b, "  CGB Flag:          %s\r\n", h.CGBSupport())
	fmt.Fprintf(b, "  New Licensee Code: %s\r\n", h.NewLicenseeName())
	fmt.Fprintf(b, "  SGB Flag:          %s\r\n", yesNo(h.SGBFlag != 0))
	fmt.Fprintf(b, "  Type:              %s\r\n", h.Type())

	if banks, err := h.ROMBanks(); err == nil {
		fmt.Fprintf(b, "  ROM Size:          %d KiB (%d banks)\r\n", banks*16, banks)
	} else {
		fmt.Fprintf(b, "  ROM Size:          %02x not recognized.\r\n", h.ROMSize)
	}

	switch banks, err := h.RAMBanks(); {
	case err != nil:
		fmt.Fprintf(b, "  RAM Size:          %02x not recognized.\r\n", h.RAMSize)
	case banks == 0:
		b.WriteString("  RAM Size:          No RAM\r\n")
	default:
		fmt.Fprintf(b, "  RAM Size:          %d KiB (%d banks)\r\n", banks*8, banks)
	}

	destination := "Overseas"
	if h.Destination == 0x00 {
		destination = "Japan"
	}
	fmt.Fprintf(b, "  Destination Code:  %s\r\n", destination)
	fmt.Fprintf(b, "  Old Licensee Code: %s\r\n", h.OldLicenseeName())
	fmt.Fprintf(b, "  Version:           %02x\r\n", h.Version)
	fmt.Fprintf(b, "  Header Checksum:   %02x\r\n", h.HeaderChecksum)
	fmt.Fprintf(b, "  Global Checksum:   %02x %02x\r\n", h.GlobalChecksum[0], h.GlobalChecksum[1])
	b.WriteString("\r\n")

	b.WriteString("Full Header:")
	for i, c := range h.Bytes() {
		if i%0x10 == 0 {
			fmt.Fprintf(b, "\r\n  0x%04x: ", Address+i)
		}
		fmt.Fprintf(b, " %02x", c)
	}
	b.WriteString("\r\n")

	_, err = b.WriteTo(w)
	return
}

// Report is WriteReport into a byte slice.
func (h *Header) Report() []byte {
	b := &bytes.Buffer{}
	_ = h.WriteReport(b)
	return b.Bytes()
}

func yesNo(v bool) string {
	if v {
		return "Yes"
	}
	return "No"
}
