// Package sensor implements height measurement with an HC-SR04 ultrasonic
// distance sensor. Raw echo durations are burst-averaged and mapped to a
// height through the calibration anchors.
package sensor

import (
	"time"

	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/ultradesk/deskctl/pkg/calibration"
	"github.com/ultradesk/deskctl/pkg/gpio"
	"github.com/ultradesk/deskctl/pkg/units"
)

const (
	// measurementBurst is the number of echo measurements averaged into
	// one reading.
	measurementBurst = 3
	// settleDelay gives the sensor's acoustics time to decay between
	// burst samples so one pulse cannot corrupt the next.
	settleDelay = 30 * time.Millisecond
)

// sleepFn is a seam so tests do not pay for settle delays.
var sleepFn = time.Sleep

// DistanceSensor measures the desk height and carries the calibration
// anchors that make the measurement meaningful.
type DistanceSensor interface {
	// CurrentHeight takes a height measurement in centimeters.
	CurrentHeight() (units.Centimeter, error)

	// SetMinHeight measures the current echo duration and stores it
	// together with height as the lower calibration anchor.
	SetMinHeight(height units.Centimeter) error

	// SetMaxHeight measures the current echo duration and stores it
	// together with height as the upper calibration anchor.
	SetMaxHeight(height units.Centimeter) error

	// CalibrationFile is the path the calibration data was loaded from.
	CalibrationFile() string

	// CalibrationData is the current in-memory calibration data.
	CalibrationData() *calibration.Data
}

// HCSR04 is a DistanceSensor backed by the physical HC-SR04 module.
type HCSR04 struct {
	calibrationFile string
	data            *calibration.Data
	timer           echoTimer
}

var _ DistanceSensor = &HCSR04{}

// New builds an HCSR04 over the trigger and echo pins. The calibration
// data is loaded once from calibrationFile; without valid calibration the
// sensor cannot be built.
func New(trigger gpio.OutputPin, echo gpio.EdgePin, calibrationFile string) (*HCSR04, error) {
	data, err := calibration.Load(calibrationFile)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "sensor needs valid calibration data")
	}
	logrus.WithFields(logrus.Fields{
		"calibrationFile": calibrationFile,
		"minHeight":       data.MinHeight,
		"maxHeight":       data.MaxHeight,
	}).Info("calibration data loaded")

	return &HCSR04{
		calibrationFile: calibrationFile,
		data:            data,
		timer:           &pulseTimer{trigger: trigger, echo: echo},
	}, nil
}

// measureBurstEcho averages several echo measurements for a less noisy
// signal. A single failed sample fails the whole burst.
func (s *HCSR04) measureBurstEcho() (time.Duration, error) {
	var total time.Duration
	for i := 0; i < measurementBurst; i++ {
		echo, err := s.timer.measureOneEcho()
		if err != nil {
			return 0, err
		}
		total += echo
		sleepFn(settleDelay)
	}
	average := total / measurementBurst
	logrus.WithField("averageEcho", average).Debug("burst measurement complete")
	return average, nil
}

func (s *HCSR04) CurrentHeight() (units.Centimeter, error) {
	echo, err := s.measureBurstEcho()
	if err != nil {
		return 0, err
	}
	height, err := s.data.HeightForEcho(echo)
	if err != nil {
		return 0, err
	}
	logrus.WithField("height", height).Debug("current height measured")
	return height, nil
}

func (s *HCSR04) SetMinHeight(height units.Centimeter) error {
	echo, err := s.measureBurstEcho()
	if err != nil {
		return err
	}
	logrus.WithFields(logrus.Fields{
		"height": height,
		"echo":   echo,
	}).Debug("setting min height anchor")
	s.data.MinHeight = height
	s.data.MinHeightEchoSecs = echo.Seconds()
	return nil
}

func (s *HCSR04) SetMaxHeight(height units.Centimeter) error {
	echo, err := s.measureBurstEcho()
	if err != nil {
		return err
	}
	logrus.WithFields(logrus.Fields{
		"height": height,
		"echo":   echo,
	}).Debug("setting max height anchor")
	s.data.MaxHeight = height
	s.data.MaxHeightEchoSecs = echo.Seconds()
	return nil
}

func (s *HCSR04) CalibrationFile() string {
	return s.calibrationFile
}

func (s *HCSR04) CalibrationData() *calibration.Data {
	return s.data
}
