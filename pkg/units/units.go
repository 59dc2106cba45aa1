// Package units defines the physical units shared across the sensor and
// desk packages.
package units

import "fmt"

// Centimeter is an integral height in centimeters. The desk hardware
// operates well within 0-255 cm, so the uint8 range is deliberate.
type Centimeter uint8

func (c Centimeter) String() string {
	return fmt.Sprintf("%dcm", uint8(c))
}

// WithinTolerance reports whether c is within +-tolerance of target.
// The comparison is done in int space so it cannot wrap at the type
// boundaries.
func (c Centimeter) WithinTolerance(target Centimeter, tolerance int) bool {
	diff := int(c) - int(target)
	if diff < 0 {
		diff = -diff
	}
	return diff <= tolerance
}
