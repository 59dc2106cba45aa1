package sensor

import "github.com/pkg/errors"

var (
	// ErrEchoStartTimeout is returned when the echo line never signals the
	// start of a measurement after a trigger pulse.
	ErrEchoStartTimeout = errors.New("unsuccessful measurement, echo trigger timed out")

	// ErrSpuriousLowEcho is returned when the first observed edge left the
	// echo line low, meaning no real start-of-measurement edge occurred.
	ErrSpuriousLowEcho = errors.New("unsuccessful measurement, echo triggered on low signal")

	// ErrEchoOutOfRange is returned when the echo duration reaches the
	// sensor's out-of-range ceiling, i.e. there is no object close enough.
	ErrEchoOutOfRange = errors.New("unsuccessful measurement, probably no object close enough")
)
