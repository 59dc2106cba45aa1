package sensor

import (
	"time"

	pkgerrors "github.com/pkg/errors"

	"github.com/ultradesk/deskctl/pkg/gpio"
)

const (
	// The sensor wants the trigger held high for at least 10us; 100us
	// leaves a comfortable margin.
	triggerHold = 100 * time.Microsecond
	// The start-of-measurement edge arrives around 500us after the
	// trigger per the HC-SR04 datasheet.
	echoStartTimeout = 10 * time.Millisecond
	// The sensor returns the line to low after 200ms at the latest to
	// signal an unsuccessful measurement.
	echoEndTimeout  = 250 * time.Millisecond
	maxEchoDuration = 200 * time.Millisecond
)

// echoTimer produces single raw echo duration measurements.
type echoTimer interface {
	measureOneEcho() (time.Duration, error)
}

// pulseTimer runs the HC-SR04 ranging protocol: a trigger pulse on the
// output line, then two timestamped edges on the echo line.
type pulseTimer struct {
	trigger gpio.OutputPin
	echo    gpio.EdgePin
}

func (t *pulseTimer) measureOneEcho() (time.Duration, error) {
	t.echo.Flush()

	// "Load" the trigger - the falling edge below is what actually starts
	// the ranging.
	if err := t.trigger.SetHigh(); err != nil {
		return 0, pkgerrors.Wrap(err, "failed to raise trigger")
	}
	sleepFn(triggerHold)
	if err := t.trigger.SetLow(); err != nil {
		return 0, pkgerrors.Wrap(err, "failed to lower trigger")
	}

	start, startErr := t.echo.WaitForEdge(echoStartTimeout)
	end, endErr := t.echo.WaitForEdge(echoEndTimeout)

	// Validity checks are deferred until after both waits to keep the
	// measurement window itself free of branching.
	if startErr != nil {
		if pkgerrors.Is(startErr, gpio.ErrEdgeTimeout) {
			return 0, ErrEchoStartTimeout
		}
		return 0, startErr
	}
	if start.Level == gpio.Low {
		return 0, ErrSpuriousLowEcho
	}
	if endErr != nil {
		if pkgerrors.Is(endErr, gpio.ErrEdgeTimeout) {
			return 0, ErrEchoOutOfRange
		}
		return 0, endErr
	}

	duration := end.Timestamp - start.Timestamp
	if duration >= maxEchoDuration {
		return 0, ErrEchoOutOfRange
	}
	return duration, nil
}
