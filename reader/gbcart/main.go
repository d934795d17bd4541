package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"gbcart/client"
	"gbcart/command"
	"gbcart/transport/serialport"
	"gbcart/transport/wsbridge"
	"gbcart/util"
	"github.com/skratchdot/open-golang/open"
	"io"
	"log"
	"os"
	"strings"
	"time"
)

const dialTimeout = 10 * time.Second

var (
	portName     string
	baud         int
	serialNumber string
	outPath      string
	inPath       string
	openAfter    bool
	showStats    bool
	listPorts    bool
	quiet        bool
)

// session is one command run against a connected device.
type session struct {
	c     *client.Client
	st    styles
	log   io.Writer
	stats *stats
	quiet bool

	lastPercent int
}

func newSession(rw io.ReadWriter, st styles, logw io.Writer) *session {
	s := &session{
		c:           client.New(rw),
		st:          st,
		log:         logw,
		lastPercent: -1,
	}
	s.c.Progress = s.progress
	return s
}

func (s *session) progress(done, total int) {
	if s.stats != nil {
		s.stats.tick(time.Now())
	}
	if s.quiet || total == 0 {
		return
	}

	percent := done * 100 / total
	if percent == s.lastPercent {
		return
	}
	s.lastPercent = percent

	fmt.Fprintf(s.log, "\r%s", s.st.progress.Render(fmt.Sprintf("%3d%%  %d / %d bytes", percent, done, total)))
	if done == total {
		fmt.Fprintln(s.log)
	}
}

func readInput(in io.Reader) ([]byte, error) {
	data, err := io.ReadAll(in)
	if err != nil {
		return nil, fmt.Errorf("reader: read input: %w", err)
	}
	return data, nil
}

// run carries out one command line, copying any payload to out and taking
// write data from in.
func (s *session) run(cmd string, in io.Reader, out io.Writer) error {
	switch cmd {
	case "help":
		text, err := s.c.Help()
		if err != nil {
			return err
		}
		_, err = io.WriteString(out, text)
		return err

	case "parse header", "read header":
		text, err := s.c.ParseHeader()
		if err != nil {
			return err
		}
		_, err = io.WriteString(out, text)
		return err

	case "read rom":
		_, err := s.c.ReadROM(out)
		return err

	case "read ram":
		_, err := s.c.ReadRAM(out)
		return err

	case "read rtc":
		rtc, err := s.c.ReadRTC()
		if err != nil {
			return err
		}
		fmt.Fprintf(s.log, "%s %s\n", s.st.ok.Render("rtc"), rtc)
		b := rtc.Bytes()
		_, err = out.Write(b[:])
		return err

	case "write ram":
		data, err := readInput(in)
		if err != nil {
			return err
		}
		if s.stats != nil {
			s.c.Latency = s.stats.add
		}
		return s.c.WriteRAM(data)

	case "write rtc":
		return s.c.WriteRTC()

	default:
		_, err := s.c.Run(cmd, out)
		return err
	}
}

func dial(ctx context.Context) (io.ReadWriteCloser, error) {
	if strings.HasPrefix(portName, "ws://") || strings.HasPrefix(portName, "wss://") {
		conn, err := wsbridge.Dial(ctx, portName)
		if err != nil {
			return nil, err
		}
		return conn, nil
	}

	name, rate := serialport.ParseName(portName)
	if rate == 0 {
		rate = baud
	}
	port, err := serialport.Open(serialport.Options{
		Name:         name,
		Baud:         rate,
		SerialNumber: serialNumber,
		DTR:          true,
	})
	if err != nil {
		return nil, err
	}
	if err = port.Drain(); err != nil {
		log.Printf("reader: %v\n", err)
	}
	return port, nil
}

func main() {
	flag.StringVar(&portName, "p", "", "serial port (optionally port;baud) or ws://host:port"+wsbridge.Path+"; empty detects a USB serial port")
	flag.IntVar(&baud, "b", serialport.DefaultBaud, "highest baud rate to try")
	flag.StringVar(&serialNumber, "serial", "", "USB serial number to look for when detecting the port")
	flag.StringVar(&outPath, "o", "", "write the payload to this file instead of stdout")
	flag.StringVar(&inPath, "i", "", "read write data from this file instead of stdin")
	flag.BoolVar(&openAfter, "open", false, "open the -o file with its associated program when done")
	flag.BoolVar(&showStats, "stats", false, "print a histogram of transfer timings")
	flag.BoolVar(&listPorts, "list", false, "list serial ports and exit")
	flag.BoolVar(&quiet, "q", false, "no progress output")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [flags] command...\n\ncommands:\n", os.Args[0])
		for _, name := range command.Commands() {
			fmt.Fprintf(flag.CommandLine.Output(), "  %s\n", name)
		}
		fmt.Fprintf(flag.CommandLine.Output(), "\nflags:\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	initConsole()
	st := newStyles(os.Stderr)

	if listPorts {
		lines, err := serialport.List()
		if err != nil {
			fmt.Fprintln(os.Stderr, st.err.Render(err.Error()))
			os.Exit(1)
		}
		fmt.Println(strings.Join(lines, "\n"))
		return
	}

	cmd := strings.ToLower(strings.Join(flag.Args(), " "))
	if cmd == "" {
		cmd = "help"
	}

	util.InitLog("gbcart-reader", io.Discard)
	log.Printf("reader: %s\n", cmd)

	os.Exit(execute(cmd, st))
}

func execute(cmd string, st styles) int {
	ctx, cancel := context.WithTimeout(context.Background(), dialTimeout)
	defer cancel()

	conn, err := dial(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, st.err.Render(err.Error()))
		log.Printf("reader: %v\n", err)
		return 1
	}
	defer conn.Close()

	var out io.Writer = os.Stdout
	if outPath != "" {
		f, err := os.Create(outPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, st.err.Render(err.Error()))
			return 1
		}
		defer f.Close()
		out = f
	}

	var in io.Reader = os.Stdin
	if inPath != "" {
		f, err := os.Open(inPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, st.err.Render(err.Error()))
			return 1
		}
		defer f.Close()
		in = f
	}

	s := newSession(conn, st, os.Stderr)
	s.quiet = quiet
	if showStats {
		s.stats = newStats(cmd)
	}

	fmt.Fprintln(os.Stderr, st.command.Render(cmd))
	start := time.Now()
	err = s.run(cmd, in, out)
	if err != nil {
		var se *command.StatusError
		if errors.As(err, &se) {
			fmt.Fprintf(os.Stderr, "%s %s\n", st.status.Render(se.Status.String()), se.Status.Describe())
		} else {
			fmt.Fprintln(os.Stderr, st.err.Render(err.Error()))
		}
		log.Printf("reader: %s: %v\n", cmd, err)
		return 1
	}

	fmt.Fprintf(os.Stderr, "%s %s\n", st.ok.Render("done"), st.dim.Render(time.Since(start).Round(time.Millisecond).String()))
	log.Printf("reader: %s: done in %v\n", cmd, time.Since(start))

	if s.stats != nil {
		_ = s.stats.print(os.Stderr)
	}

	if openAfter && outPath != "" {
		if err = open.Start(outPath); err != nil {
			log.Println(err)
		}
	}

	return 0
}
