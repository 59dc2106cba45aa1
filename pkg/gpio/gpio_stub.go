//go:build !linux

package gpio

import "github.com/pkg/errors"

// Chip is a placeholder for platforms without the Linux GPIO character
// device. All opens fail; tests use in-memory pin fakes instead.
type Chip struct{}

func OpenChip(path string) (*Chip, error) {
	return nil, errors.New("gpio unsupported on this platform")
}

func (c *Chip) Close() error { return nil }

func (c *Chip) Output(offset int) (OutputPin, error) {
	return nil, errors.New("gpio unsupported on this platform")
}

func (c *Chip) EdgeInput(offset int) (EdgePin, error) {
	return nil, errors.New("gpio unsupported on this platform")
}
