//go:build windows

package main

import (
	"golang.org/x/sys/windows"
	"os"
)

// initConsole turns on ANSI escape handling for progress and colour output.
func initConsole() {
	h := windows.Handle(os.Stderr.Fd())
	var mode uint32
	if err := windows.GetConsoleMode(h, &mode); err != nil {
		return
	}
	if err := windows.SetConsoleMode(h, mode|windows.ENABLE_VIRTUAL_TERMINAL_PROCESSING); err != nil {
		return
	}
}
