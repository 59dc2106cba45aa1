package desk

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/ultradesk/deskctl/pkg/units"
)

var (
	// ErrMoveTimeout is returned when the desk does not reach the target
	// height before the movement deadline.
	ErrMoveTimeout = errors.New("desk did not reach target height before the deadline")

	// ErrCalibrateTimeout is returned when the desk does not stop moving
	// before the calibration step deadline.
	ErrCalibrateTimeout = errors.New("desk did not stop moving before the calibration deadline")
)

// Bound identifies which table bound a rejected height violated.
type Bound string

const (
	BoundMin Bound = "min"
	BoundMax Bound = "max"
)

// BoundsError is returned when a requested height lies outside the
// configured table bounds. It is produced before any motor command.
type BoundsError struct {
	Requested units.Centimeter
	Limit     units.Centimeter
	Bound     Bound
}

func (e *BoundsError) Error() string {
	if e.Bound == BoundMax {
		return fmt.Sprintf("cannot move table higher than %s, requested %s", e.Limit, e.Requested)
	}
	return fmt.Sprintf("cannot move table lower than %s, requested %s", e.Limit, e.Requested)
}
