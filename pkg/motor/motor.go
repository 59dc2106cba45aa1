// Package motor drives the desk's lifting motor through a pair of relays.
package motor

import (
	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/ultradesk/deskctl/pkg/gpio"
)

// Motor is the capability surface the desk controller needs from the
// lifting motor.
type Motor interface {
	Up() error
	Down() error
	Stop() error
}

// Relay drives the motor through two relay outputs, one per direction.
// The relays are mutually exclusive: the opposite direction is always
// released before a direction is engaged, and Stop releases both.
type Relay struct {
	up   gpio.OutputPin
	down gpio.OutputPin
}

var _ Motor = &Relay{}

// NewRelay returns a Relay over the two direction outputs. Both relays
// are released so the motor starts out stopped.
func NewRelay(up, down gpio.OutputPin) (*Relay, error) {
	m := &Relay{up: up, down: down}
	if err := m.Stop(); err != nil {
		return nil, pkgerrors.Wrap(err, "failed to release motor relays")
	}
	return m, nil
}

// Up starts moving the desk upwards.
func (m *Relay) Up() error {
	logrus.Debug("motor up")
	if err := m.down.SetLow(); err != nil {
		return pkgerrors.Wrap(err, "failed to release down relay")
	}
	if err := m.up.SetHigh(); err != nil {
		return pkgerrors.Wrap(err, "failed to engage up relay")
	}
	return nil
}

// Down starts moving the desk downwards.
func (m *Relay) Down() error {
	logrus.Debug("motor down")
	if err := m.up.SetLow(); err != nil {
		return pkgerrors.Wrap(err, "failed to release up relay")
	}
	if err := m.down.SetHigh(); err != nil {
		return pkgerrors.Wrap(err, "failed to engage down relay")
	}
	return nil
}

// Stop halts the desk by releasing both relays.
func (m *Relay) Stop() error {
	logrus.Debug("motor stop")
	if err := m.up.SetLow(); err != nil {
		return pkgerrors.Wrap(err, "failed to release up relay")
	}
	if err := m.down.SetLow(); err != nil {
		return pkgerrors.Wrap(err, "failed to release down relay")
	}
	return nil
}

// Close stops the motor and releases both pins.
func (m *Relay) Close() error {
	err := m.Stop()
	if cerr := m.up.Close(); err == nil {
		err = cerr
	}
	if cerr := m.down.Close(); err == nil {
		err = cerr
	}
	return err
}
