package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"gbcart/bus"
	"gbcart/cartridge"
	"gbcart/command"
	"gbcart/config"
	"gbcart/device"
	"gbcart/gpio"
	"gbcart/transport/serialport"
	"gbcart/transport/wsbridge"
	"gbcart/util"
	"log"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"
)

// include these gpio drivers:
import (
	_ "gbcart/gpio/gpiomem"
	_ "gbcart/gpio/sim"
)

const reopenDelay = 2 * time.Second

var (
	configPath  string
	writeConfig bool
	listDrivers bool
)

func openDevice(cfg *config.Config) (*device.Queue, error) {
	opts, err := cfg.GPIOOptions()
	if err != nil {
		return nil, err
	}

	pins, err := gpio.Open(cfg.GPIO.Driver, opts)
	if err != nil {
		return nil, err
	}

	cart := cartridge.New(bus.New(pins, cfg.Settle()))
	return device.NewQueue("gbcart", cart), nil
}

// serveSerial keeps one session running on the serial port, reopening the
// port whenever the host side goes away, until ctx is cancelled.
func serveSerial(ctx context.Context, q *device.Queue, sc config.SerialConfiguration) {
	for ctx.Err() == nil {
		port, err := serialport.Open(serialport.Options{Name: sc.Port, Baud: sc.Baud})
		if err != nil {
			log.Printf("gbcart: %v\n", err)
		} else {
			closed := make(chan struct{})
			go func() {
				select {
				case <-ctx.Done():
				case <-closed:
				}
				_ = port.Close()
			}()

			err = command.Serve(q, command.NewConn(port), "serial "+port.Name())
			close(closed)
			if errors.Is(err, device.ErrQueueClosed) || device.IsTerminalError(err) {
				return
			}
		}

		select {
		case <-ctx.Done():
		case <-time.After(reopenDelay):
		}
	}
}

func serveWebSocket(ctx context.Context, q *device.Queue, listen string) {
	s := wsbridge.NewServer(listen, func(c *wsbridge.Conn) {
		_ = command.Serve(q, command.NewConn(c), "ws "+c.Name())
	})
	if err := s.ListenAndServe(ctx); err != nil {
		log.Printf("gbcart: websocket: %v\n", err)
	}
}

func main() {
	defer func() {
		if err := recover(); err != nil {
			util.LogPanic(err)
			os.Exit(2)
		}
	}()

	flag.StringVar(&configPath, "config", config.Path(), "configuration file")
	flag.BoolVar(&writeConfig, "write-config", false, "write the effective configuration to the -config path and exit")
	flag.BoolVar(&listDrivers, "drivers", false, "list GPIO drivers and exit")
	flag.Parse()

	if listDrivers {
		fmt.Println(strings.Join(gpio.Drivers(), "\n"))
		return
	}

	util.InitLog("gbcart", os.Stdout)

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("gbcart: %v\n", err)
	}
	if err = cfg.ApplyEnv(os.Getenv); err != nil {
		log.Fatalf("gbcart: %v\n", err)
	}

	if writeConfig {
		if err = cfg.Save(configPath); err != nil {
			log.Fatalf("gbcart: %v\n", err)
		}
		log.Printf("gbcart: wrote '%s'\n", configPath)
		return
	}

	if cfg.Serial.Port == "" && cfg.WebSocket.Listen == "" {
		log.Fatalf("gbcart: neither a serial port nor a websocket listener is configured\n")
	}

	q, err := openDevice(cfg)
	if err != nil {
		log.Fatalf("gbcart: GPIO initialization failed: %v\n", err)
	}
	log.Printf("gbcart: %s driver ready\n", cfg.GPIO.Driver)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	wg := sync.WaitGroup{}
	if cfg.Serial.Port != "" {
		wg.Add(1)
		go func() {
			defer wg.Done()
			serveSerial(ctx, q, cfg.Serial)
		}()
	}
	if cfg.WebSocket.Listen != "" {
		wg.Add(1)
		go func() {
			defer wg.Done()
			serveWebSocket(ctx, q, cfg.WebSocket.Listen)
		}()
	}

	select {
	case <-ctx.Done():
		log.Printf("gbcart: shutting down\n")
	case <-q.Done():
		log.Printf("gbcart: device queue stopped\n")
		stop()
	}

	wg.Wait()
	if err = q.Close(); err != nil {
		log.Printf("gbcart: %v\n", err)
	}
	_ = util.FlushLogger()
}
