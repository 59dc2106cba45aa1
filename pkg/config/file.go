package config

import (
	"encoding/json"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/ultradesk/deskctl/pkg/units"
	"github.com/ultradesk/deskctl/pkg/utils/ptr"
)

var defaultFileConfig = &RawFileConfig{
	StandingHeight: ptr.To(110),
	SittingHeight:  ptr.To(70),
	MinTableHeight: ptr.To(60),
	MaxTableHeight: ptr.To(120),
	// Raspberry Pi header wiring defaults. BCM numbering.
	GPIOChip:     ptr.To("/dev/gpiochip0"),
	TriggerPin:   ptr.To(23),
	EchoPin:      ptr.To(24),
	MotorUpPin:   ptr.To(20),
	MotorDownPin: ptr.To(21),

	CalibrationFile:          ptr.To("/etc/deskctl-calibration.toml"),
	MoveTimeoutSeconds:       ptr.To(90),
	CalibrateStepTimeoutSecs: ptr.To(120),
	AllowNonRootAccess:       ptr.To(false),
}

var _ Config = &File{}

type File struct {
	c        *RawFileConfig
	mu       *sync.RWMutex
	filepath string
}

func NewFile(configPath string) (*File, error) {
	f := &File{
		filepath: configPath,
		mu:       &sync.RWMutex{},
	}
	err := f.Load()
	if err != nil {
		return nil, err
	}

	return f, nil
}

func NewFileFromConfig(c *RawFileConfig, configPath string) *File {
	if c == nil {
		c = defaultFileConfig
	}

	return &File{
		c:        c,
		mu:       &sync.RWMutex{},
		filepath: configPath,
	}
}

// RawFileConfig is the on-disk JSON shape. Absent fields fall back to
// defaults, so a partial config file is valid.
type RawFileConfig struct {
	StandingHeight *int `json:"standingHeight,omitempty"`
	SittingHeight  *int `json:"sittingHeight,omitempty"`
	MinTableHeight *int `json:"minTableHeight,omitempty"`
	MaxTableHeight *int `json:"maxTableHeight,omitempty"`

	GPIOChip     *string `json:"gpiochip,omitempty"`
	TriggerPin   *int    `json:"triggerPin,omitempty"`
	EchoPin      *int    `json:"echoPin,omitempty"`
	MotorUpPin   *int    `json:"motorUpPin,omitempty"`
	MotorDownPin *int    `json:"motorDownPin,omitempty"`

	CalibrationFile          *string `json:"calibrationFile,omitempty"`
	MoveTimeoutSeconds       *int    `json:"moveTimeoutSeconds,omitempty"`
	CalibrateStepTimeoutSecs *int    `json:"calibrateStepTimeoutSeconds,omitempty"`
	AllowNonRootAccess       *bool   `json:"allowNonRootAccess,omitempty"`
}

func NewRawFileConfigFromConfig(c Config) (*RawFileConfig, error) {
	if c == nil {
		return nil, pkgerrors.New("config is nil")
	}

	return &RawFileConfig{
		StandingHeight:           ptr.To(int(c.StandingHeight())),
		SittingHeight:            ptr.To(int(c.SittingHeight())),
		MinTableHeight:           ptr.To(int(c.MinTableHeight())),
		MaxTableHeight:           ptr.To(int(c.MaxTableHeight())),
		GPIOChip:                 ptr.To(c.GPIOChip()),
		TriggerPin:               ptr.To(c.TriggerPin()),
		EchoPin:                  ptr.To(c.EchoPin()),
		MotorUpPin:               ptr.To(c.MotorUpPin()),
		MotorDownPin:             ptr.To(c.MotorDownPin()),
		CalibrationFile:          ptr.To(c.CalibrationFile()),
		MoveTimeoutSeconds:       ptr.To(int(c.MoveTimeout() / time.Second)),
		CalibrateStepTimeoutSecs: ptr.To(int(c.CalibrateStepTimeout() / time.Second)),
		AllowNonRootAccess:       ptr.To(c.AllowNonRootAccess()),
	}, nil
}

// valueOr returns *v if set, falling back to the default.
func valueOr[T any](v, def *T) T {
	if v != nil {
		return *v
	}
	return *def
}

func (f *File) StandingHeight() units.Centimeter {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return units.Centimeter(valueOr(f.c.StandingHeight, defaultFileConfig.StandingHeight))
}

func (f *File) SittingHeight() units.Centimeter {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return units.Centimeter(valueOr(f.c.SittingHeight, defaultFileConfig.SittingHeight))
}

func (f *File) MinTableHeight() units.Centimeter {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return units.Centimeter(valueOr(f.c.MinTableHeight, defaultFileConfig.MinTableHeight))
}

func (f *File) MaxTableHeight() units.Centimeter {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return units.Centimeter(valueOr(f.c.MaxTableHeight, defaultFileConfig.MaxTableHeight))
}

func (f *File) GPIOChip() string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return valueOr(f.c.GPIOChip, defaultFileConfig.GPIOChip)
}

func (f *File) TriggerPin() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return valueOr(f.c.TriggerPin, defaultFileConfig.TriggerPin)
}

func (f *File) EchoPin() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return valueOr(f.c.EchoPin, defaultFileConfig.EchoPin)
}

func (f *File) MotorUpPin() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return valueOr(f.c.MotorUpPin, defaultFileConfig.MotorUpPin)
}

func (f *File) MotorDownPin() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return valueOr(f.c.MotorDownPin, defaultFileConfig.MotorDownPin)
}

func (f *File) CalibrationFile() string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return valueOr(f.c.CalibrationFile, defaultFileConfig.CalibrationFile)
}

func (f *File) MoveTimeout() time.Duration {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return time.Duration(valueOr(f.c.MoveTimeoutSeconds, defaultFileConfig.MoveTimeoutSeconds)) * time.Second
}

func (f *File) CalibrateStepTimeout() time.Duration {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return time.Duration(valueOr(f.c.CalibrateStepTimeoutSecs, defaultFileConfig.CalibrateStepTimeoutSecs)) * time.Second
}

func (f *File) AllowNonRootAccess() bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return valueOr(f.c.AllowNonRootAccess, defaultFileConfig.AllowNonRootAccess)
}

func (f *File) SetStandingHeight(h units.Centimeter) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.c.StandingHeight = ptr.To(int(h))
}

func (f *File) SetSittingHeight(h units.Centimeter) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.c.SittingHeight = ptr.To(int(h))
}

func (f *File) Load() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	fp, err := os.Open(f.filepath)
	if err != nil {
		if os.IsNotExist(err) {
			// If the file does not exist, return the empty config.
			// Do not make f.c a nil.
			f.c = &RawFileConfig{}
			return nil
		}
		return pkgerrors.Wrapf(err, "failed to open file %s", f.filepath)
	}
	defer func(fp *os.File) {
		err := fp.Close()
		if err != nil {
			logrus.Warnf("failed to close file %s", f.filepath)
		}
	}(fp)

	// Since we want to tell if the file is empty, using json.Decoder will
	// not work.
	b, err := io.ReadAll(fp)
	if err != nil {
		return pkgerrors.Wrapf(err, "failed to read file %s", f.filepath)
	}

	if strings.TrimSpace(string(b)) == "" {
		// If the file is empty, return the empty config.
		// Do not make f.c a nil.
		f.c = &RawFileConfig{}
		return nil
	}

	conf := RawFileConfig{}
	err = json.Unmarshal(b, &conf)
	if err != nil {
		return pkgerrors.Wrapf(err, "failed to unmarshal config from file %s", f.filepath)
	}
	f.c = &conf

	return nil
}

func (f *File) Save() error {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if f.c == nil {
		return pkgerrors.New("config is nil")
	}

	fp, err := os.OpenFile(f.filepath, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return pkgerrors.Wrapf(err, "failed to open file %s", f.filepath)
	}
	defer func(fp *os.File) {
		err := fp.Close()
		if err != nil {
			logrus.Warnf("failed to close file %s", f.filepath)
		}
	}(fp)

	enc := json.NewEncoder(fp)
	enc.SetIndent("", "  ")
	err = enc.Encode(f.c)
	if err != nil {
		return pkgerrors.Wrapf(err, "failed to encode config to file %s", f.filepath)
	}

	return nil
}

func (f *File) LogrusFields() logrus.Fields {
	return logrus.Fields{
		"standingHeight":  f.StandingHeight(),
		"sittingHeight":   f.SittingHeight(),
		"minTableHeight":  f.MinTableHeight(),
		"maxTableHeight":  f.MaxTableHeight(),
		"gpiochip":        f.GPIOChip(),
		"triggerPin":      f.TriggerPin(),
		"echoPin":         f.EchoPin(),
		"motorUpPin":      f.MotorUpPin(),
		"motorDownPin":    f.MotorDownPin(),
		"calibrationFile": f.CalibrationFile(),

		"moveTimeoutSeconds":          int(f.MoveTimeout() / time.Second),
		"calibrateStepTimeoutSeconds": int(f.CalibrateStepTimeout() / time.Second),
		"allowNonRootAccess":          f.AllowNonRootAccess(),
	}
}
