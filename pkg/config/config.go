// Package config holds the daemon configuration: the table's movement
// policy, the GPIO wiring, and paths.
package config

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ultradesk/deskctl/pkg/units"
)

type Config interface {
	StandingHeight() units.Centimeter
	SittingHeight() units.Centimeter
	MinTableHeight() units.Centimeter
	MaxTableHeight() units.Centimeter

	GPIOChip() string
	TriggerPin() int
	EchoPin() int
	MotorUpPin() int
	MotorDownPin() int

	CalibrationFile() string
	MoveTimeout() time.Duration
	CalibrateStepTimeout() time.Duration
	AllowNonRootAccess() bool

	SetStandingHeight(units.Centimeter)
	SetSittingHeight(units.Centimeter)

	// Load reads the configuration from the source.
	Load() error
	// Save saves the configuration to the source.
	Save() error

	LogrusFields() logrus.Fields
}
