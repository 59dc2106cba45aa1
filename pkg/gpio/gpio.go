// Package gpio provides the digital pin substrate the desk hardware is
// wired to: plain outputs for the sensor trigger and motor relays, and an
// edge-timestamping input for the sensor echo line.
//
// On Linux the pins are backed by the GPIO character device
// (warthog618/go-gpiocdev); other platforms get a stub that fails at open
// time so the rest of the code base stays portable for tests.
package gpio

import (
	"time"

	"github.com/pkg/errors"
)

// Level is the logical level of a digital line.
type Level int

const (
	Low Level = iota
	High
)

func (l Level) String() string {
	if l == High {
		return "high"
	}
	return "low"
}

// Edge is a single observed transition on an input line.
type Edge struct {
	// Level is the level the line transitioned to.
	Level Level
	// Timestamp is the kernel's monotonic timestamp of the event. Only
	// differences between timestamps of the same line are meaningful.
	Timestamp time.Duration
}

// ErrEdgeTimeout is returned by EdgePin.WaitForEdge when no edge arrives
// within the given timeout.
var ErrEdgeTimeout = errors.New("timed out waiting for signal edge")

// OutputPin is a digital output line.
type OutputPin interface {
	SetHigh() error
	SetLow() error
	Close() error
}

// EdgePin is a digital input line that reports signal edges in both
// directions.
type EdgePin interface {
	// WaitForEdge blocks until the next edge or the timeout, whichever
	// comes first. On timeout it returns ErrEdgeTimeout.
	WaitForEdge(timeout time.Duration) (Edge, error)
	// Flush discards edges that were buffered before the call, so a
	// subsequent WaitForEdge only observes new transitions.
	Flush()
	Close() error
}
