//go:build !linux

package gpiomem

func mapRegisters(device string) ([]uint32, func() error, error) {
	return nil, nil, ErrUnsupportedPlatform
}
