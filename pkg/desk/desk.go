// Package desk implements the standing desk motion controller: the height
// seeking loop and the calibration sequence over a distance sensor and a
// motor.
package desk

import (
	"time"

	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/ultradesk/deskctl/pkg/motor"
	"github.com/ultradesk/deskctl/pkg/sensor"
	"github.com/ultradesk/deskctl/pkg/units"
)

const (
	// pollInterval is how often the height is re-read while the desk is
	// in motion.
	pollInterval = 200 * time.Millisecond
	// heightTolerance is the +-cm band within which the desk counts as
	// "at" a target height.
	heightTolerance = 1

	defaultMoveTimeout          = 90 * time.Second
	defaultCalibrateStepTimeout = 2 * time.Minute
)

// sleepFn is a seam so tests do not pay for poll intervals.
var sleepFn = time.Sleep

// Config is the static movement policy for a desk. It is immutable for
// the controller's lifetime.
type Config struct {
	StandingHeight units.Centimeter
	SittingHeight  units.Centimeter
	MinTableHeight units.Centimeter
	MaxTableHeight units.Centimeter

	// MoveTimeout bounds a single height-seeking movement. A stuck desk
	// or sensor fails with ErrMoveTimeout instead of blocking forever.
	MoveTimeout time.Duration
	// CalibrateStepTimeout bounds each drive-to-mechanical-stop step of
	// the calibration sequence.
	CalibrateStepTimeout time.Duration
}

// StandingDesk coordinates the distance sensor and the motor. It owns
// both exclusively; all operations are synchronous and single-threaded.
type StandingDesk struct {
	config Config
	sensor sensor.DistanceSensor
	motor  motor.Motor
}

type direction int

const (
	directionUp direction = iota
	directionDown
)

func (d direction) String() string {
	if d == directionUp {
		return "up"
	}
	return "down"
}

// New returns a StandingDesk controller over the given sensor and motor.
func New(config Config, s sensor.DistanceSensor, m motor.Motor) *StandingDesk {
	if config.MoveTimeout <= 0 {
		config.MoveTimeout = defaultMoveTimeout
	}
	if config.CalibrateStepTimeout <= 0 {
		config.CalibrateStepTimeout = defaultCalibrateStepTimeout
	}
	return &StandingDesk{
		config: config,
		sensor: s,
		motor:  m,
	}
}

// Config returns the desk's movement policy.
func (d *StandingDesk) Config() Config {
	return d.config
}

// WithConfig returns a controller over the same sensor and motor with a
// new movement policy.
func (d *StandingDesk) WithConfig(config Config) *StandingDesk {
	return New(config, d.sensor, d.motor)
}

// MoveToStanding moves the desk to the configured standing height.
func (d *StandingDesk) MoveToStanding() error {
	logrus.Info("moving to standing position")
	return d.MoveToHeight(d.config.StandingHeight)
}

// MoveToSitting moves the desk to the configured sitting height.
func (d *StandingDesk) MoveToSitting() error {
	logrus.Info("moving to sitting position")
	return d.MoveToHeight(d.config.SittingHeight)
}

// MoveToHeight moves the desk to the target height within the tolerance
// band. The movement direction is decided once from the initial reading;
// there is no correction pass on overshoot.
func (d *StandingDesk) MoveToHeight(target units.Centimeter) error {
	if target > d.config.MaxTableHeight {
		return &BoundsError{Requested: target, Limit: d.config.MaxTableHeight, Bound: BoundMax}
	}
	if target < d.config.MinTableHeight {
		return &BoundsError{Requested: target, Limit: d.config.MinTableHeight, Bound: BoundMin}
	}

	logrus.WithField("target", target).Info("moving to height")

	current, err := d.sensor.CurrentHeight()
	if err != nil {
		return pkgerrors.Wrap(err, "failed to read current height")
	}

	// Moving the table is not precise, so allow for some tolerance.
	if current.WithinTolerance(target, heightTolerance) {
		logrus.WithField("current", current).Debug("table already at desired height")
		return nil
	}

	if current < target {
		return d.seek(target, directionUp)
	}
	return d.seek(target, directionDown)
}

// seek drives the desk in one direction until the height reaches the
// target, the deadline passes, or the sensor fails. The motor is stopped
// on every exit path.
func (d *StandingDesk) seek(target units.Centimeter, dir direction) (err error) {
	deadline := time.Now().Add(d.config.MoveTimeout)

	if dir == directionUp {
		err = d.motor.Up()
	} else {
		err = d.motor.Down()
	}
	if err != nil {
		return pkgerrors.Wrapf(err, "failed to start motor %s", dir)
	}
	defer func() {
		if stopErr := d.motor.Stop(); stopErr != nil && err == nil {
			err = pkgerrors.Wrap(stopErr, "failed to stop motor")
		}
	}()

	for {
		current, herr := d.sensor.CurrentHeight()
		if herr != nil {
			return pkgerrors.Wrap(herr, "failed to read height while moving")
		}
		if dir == directionUp && current >= target {
			return nil
		}
		if dir == directionDown && current <= target {
			return nil
		}
		if time.Now().After(deadline) {
			logrus.WithFields(logrus.Fields{
				"target":    target,
				"current":   current,
				"direction": dir,
			}).Error("movement deadline exceeded")
			return ErrMoveTimeout
		}
		sleepFn(pollInterval)
	}
}

// Calibrate drives the desk to its mechanical top and bottom to record
// fresh calibration anchors, then moves to the sitting position. The
// mutated calibration data lives in the sensor; persisting it is the
// caller's responsibility.
func (d *StandingDesk) Calibrate() error {
	logrus.Info("calibrating")

	if err := d.driveToStop(directionUp); err != nil {
		return err
	}
	if err := d.sensor.SetMaxHeight(d.config.MaxTableHeight); err != nil {
		return pkgerrors.Wrap(err, "failed to set max height anchor")
	}

	if err := d.driveToStop(directionDown); err != nil {
		return err
	}
	if err := d.sensor.SetMinHeight(d.config.MinTableHeight); err != nil {
		return pkgerrors.Wrap(err, "failed to set min height anchor")
	}

	return d.MoveToSitting()
}

// driveToStop runs the motor in one direction until two consecutive
// readings show the desk no longer moving, i.e. it hit the mechanical
// stop. The motor is stopped on every exit path.
func (d *StandingDesk) driveToStop(dir direction) (err error) {
	deadline := time.Now().Add(d.config.CalibrateStepTimeout)

	if dir == directionUp {
		err = d.motor.Up()
	} else {
		err = d.motor.Down()
	}
	if err != nil {
		return pkgerrors.Wrapf(err, "failed to start motor %s", dir)
	}
	defer func() {
		if stopErr := d.motor.Stop(); stopErr != nil && err == nil {
			err = pkgerrors.Wrap(stopErr, "failed to stop motor")
		}
	}()

	previous, err := d.sensor.CurrentHeight()
	if err != nil {
		return pkgerrors.Wrap(err, "failed to read height while calibrating")
	}

	for {
		sleepFn(pollInterval)

		current, herr := d.sensor.CurrentHeight()
		if herr != nil {
			return pkgerrors.Wrap(herr, "failed to read height while calibrating")
		}
		if dir == directionUp && current <= previous {
			// No longer strictly increasing: the desk reached its top.
			return nil
		}
		if dir == directionDown && current >= previous {
			return nil
		}
		if time.Now().After(deadline) {
			logrus.WithFields(logrus.Fields{
				"direction": dir,
				"current":   current,
			}).Error("calibration step deadline exceeded")
			return ErrCalibrateTimeout
		}
		previous = current
	}
}
