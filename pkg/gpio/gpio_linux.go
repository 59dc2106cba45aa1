//go:build linux

package gpio

import (
	"time"

	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/warthog618/go-gpiocdev"
)

const consumer = "deskctl"

// Chip is an open GPIO character device, e.g. /dev/gpiochip0 on a
// Raspberry Pi.
type Chip struct {
	chip *gpiocdev.Chip
}

// OpenChip opens the GPIO character device at the given path.
func OpenChip(path string) (*Chip, error) {
	chip, err := gpiocdev.NewChip(path, gpiocdev.WithConsumer(consumer))
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to open gpio chip %s", path)
	}
	return &Chip{chip: chip}, nil
}

// Close releases the chip. Pins requested from it must be closed first.
func (c *Chip) Close() error {
	return c.chip.Close()
}

// Output requests the line at offset as a digital output, initially low.
func (c *Chip) Output(offset int) (OutputPin, error) {
	line, err := c.chip.RequestLine(offset, gpiocdev.AsOutput(0))
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to request gpio %d as output", offset)
	}
	return &outputLine{line: line}, nil
}

// EdgeInput requests the line at offset as a pulled-down input reporting
// edges in both directions.
func (c *Chip) EdgeInput(offset int) (EdgePin, error) {
	p := &edgeLine{
		// Two edges per measurement; the buffer only needs to absorb
		// events between Flush calls.
		events: make(chan Edge, 16),
	}
	line, err := c.chip.RequestLine(offset,
		gpiocdev.AsInput,
		gpiocdev.WithPullDown,
		gpiocdev.WithBothEdges,
		gpiocdev.WithEventHandler(p.handleEvent))
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to request gpio %d as edge input", offset)
	}
	p.line = line
	return p, nil
}

type outputLine struct {
	line *gpiocdev.Line
}

func (o *outputLine) SetHigh() error { return o.line.SetValue(1) }
func (o *outputLine) SetLow() error  { return o.line.SetValue(0) }
func (o *outputLine) Close() error   { return o.line.Close() }

type edgeLine struct {
	line   *gpiocdev.Line
	events chan Edge
}

func (e *edgeLine) handleEvent(evt gpiocdev.LineEvent) {
	level := Low
	if evt.Type == gpiocdev.LineEventRisingEdge {
		level = High
	}
	select {
	case e.events <- Edge{Level: level, Timestamp: evt.Timestamp}:
	default:
		// A full buffer means the consumer is not measuring; these edges
		// are stale by definition.
		logrus.WithField("level", level).Trace("dropping buffered gpio edge")
	}
}

func (e *edgeLine) WaitForEdge(timeout time.Duration) (Edge, error) {
	select {
	case edge := <-e.events:
		return edge, nil
	case <-time.After(timeout):
		return Edge{}, ErrEdgeTimeout
	}
}

func (e *edgeLine) Flush() {
	for {
		select {
		case <-e.events:
		default:
			return
		}
	}
}

func (e *edgeLine) Close() error {
	return e.line.Close()
}
