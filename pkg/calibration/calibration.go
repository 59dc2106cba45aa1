// Package calibration holds the distance sensor's calibration anchors and
// their on-disk representation.
//
// A calibration consists of two (height, echo duration) anchor pairs that
// define a linear mapping from echo duration to height. The sensor mutates
// the in-memory data during calibration; writing it back to disk is the
// caller's responsibility, so the persistence boundary stays explicit.
package calibration

import (
	"math"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	pkgerrors "github.com/pkg/errors"

	"github.com/ultradesk/deskctl/pkg/units"
)

var (
	// ErrDegenerate is returned when both echo anchors are equal, which
	// makes the interpolation divide by zero.
	ErrDegenerate = pkgerrors.New("calibration echo anchors are equal, cannot interpolate height")
)

// Data is the set of calibration anchors for the distance sensor.
type Data struct {
	// MinHeight is the lowest height that can be observed.
	MinHeight units.Centimeter `toml:"min_height" json:"minHeight"`
	// MinHeightEchoSecs is the echo duration in seconds at MinHeight.
	MinHeightEchoSecs float64 `toml:"min_height_echo_secs" json:"minHeightEchoSecs"`
	// MaxHeight is the highest height that can be observed.
	MaxHeight units.Centimeter `toml:"max_height" json:"maxHeight"`
	// MaxHeightEchoSecs is the echo duration in seconds at MaxHeight.
	MaxHeightEchoSecs float64 `toml:"max_height_echo_secs" json:"maxHeightEchoSecs"`
}

// Load reads calibration data from a TOML file.
func Load(path string) (*Data, error) {
	d := &Data{}
	if _, err := toml.DecodeFile(path, d); err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to load calibration data from %s", path)
	}
	if err := d.Validate(); err != nil {
		return nil, pkgerrors.Wrapf(err, "invalid calibration data in %s", path)
	}
	return d, nil
}

// Save writes calibration data to a TOML file.
func Save(path string, d *Data) error {
	if d == nil {
		return pkgerrors.New("calibration data is nil")
	}
	fp, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return pkgerrors.Wrapf(err, "failed to open file %s", path)
	}
	defer fp.Close()

	if err := toml.NewEncoder(fp).Encode(d); err != nil {
		return pkgerrors.Wrapf(err, "failed to encode calibration data to %s", path)
	}
	return nil
}

// Validate checks the structural invariants of the calibration data.
// Equal echo anchors are not checked here: a freshly calibrated desk can
// transiently hold equal anchors between SetMaxHeight and SetMinHeight, so
// that condition is only rejected at interpolation time.
func (d *Data) Validate() error {
	if d.MaxHeight <= d.MinHeight {
		return pkgerrors.Errorf("max height (%s) must be greater than min height (%s)",
			d.MaxHeight, d.MinHeight)
	}
	return nil
}

// HeightForEcho maps an averaged echo duration to a height by linear
// interpolation through the two anchors. Heights that round outside the
// Centimeter range saturate at the range boundaries.
func (d *Data) HeightForEcho(echo time.Duration) (units.Centimeter, error) {
	if d.MaxHeightEchoSecs == d.MinHeightEchoSecs {
		return 0, ErrDegenerate
	}
	normalized := (echo.Seconds() - d.MinHeightEchoSecs) /
		(d.MaxHeightEchoSecs - d.MinHeightEchoSecs)
	height := normalized*float64(d.MaxHeight-d.MinHeight) + float64(d.MinHeight)

	rounded := math.Round(height)
	if rounded < 0 {
		rounded = 0
	}
	if rounded > math.MaxUint8 {
		rounded = math.MaxUint8
	}
	return units.Centimeter(rounded), nil
}
