//go:build linux

package gpiomem

import (
	"fmt"
	"golang.org/x/sys/unix"
	"os"
	"unsafe"
)

func mapRegisters(device string) ([]uint32, func() error, error) {
	f, err := os.OpenFile(device, os.O_RDWR|os.O_SYNC, 0)
	if err != nil {
		return nil, nil, fmt.Errorf("gpiomem: %w", err)
	}
	defer f.Close()

	mem, err := unix.Mmap(int(f.Fd()), 0, blockSize, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		return nil, nil, fmt.Errorf("gpiomem: mmap %s: %w", device, err)
	}

	regs := unsafe.Slice((*uint32)(unsafe.Pointer(&mem[0])), blockSize/4)
	unmap := func() error {
		return unix.Munmap(mem)
	}
	return regs, unmap, nil
}
