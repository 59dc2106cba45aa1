package motor

import (
	"testing"

	"github.com/pkg/errors"
)

// fakePin records the sequence of level changes it receives.
type fakePin struct {
	name   string
	log    *[]string
	high   bool
	failOn string
	closed bool
}

func (p *fakePin) SetHigh() error {
	if p.failOn == "high" {
		return errors.New("pin failure")
	}
	p.high = true
	*p.log = append(*p.log, p.name+":high")
	return nil
}

func (p *fakePin) SetLow() error {
	if p.failOn == "low" {
		return errors.New("pin failure")
	}
	p.high = false
	*p.log = append(*p.log, p.name+":low")
	return nil
}

func (p *fakePin) Close() error {
	p.closed = true
	return nil
}

func newFakeMotor(t *testing.T) (*Relay, *fakePin, *fakePin, *[]string) {
	t.Helper()
	log := &[]string{}
	up := &fakePin{name: "up", log: log}
	down := &fakePin{name: "down", log: log}
	m, err := NewRelay(up, down)
	if err != nil {
		t.Fatalf("NewRelay returned error: %v", err)
	}
	*log = nil
	return m, up, down, log
}

func TestRelayReleasesOppositeRelayFirst(t *testing.T) {
	m, up, down, log := newFakeMotor(t)

	if err := m.Up(); err != nil {
		t.Fatalf("Up returned error: %v", err)
	}
	if got := *log; len(got) != 2 || got[0] != "down:low" || got[1] != "up:high" {
		t.Errorf("Up pin sequence = %v, want [down:low up:high]", got)
	}
	if !up.high || down.high {
		t.Errorf("after Up: up=%t down=%t, want up engaged only", up.high, down.high)
	}

	*log = nil
	if err := m.Down(); err != nil {
		t.Fatalf("Down returned error: %v", err)
	}
	if got := *log; len(got) != 2 || got[0] != "up:low" || got[1] != "down:high" {
		t.Errorf("Down pin sequence = %v, want [up:low down:high]", got)
	}
}

func TestRelayStopReleasesBoth(t *testing.T) {
	m, up, down, _ := newFakeMotor(t)

	if err := m.Up(); err != nil {
		t.Fatalf("Up returned error: %v", err)
	}
	if err := m.Stop(); err != nil {
		t.Fatalf("Stop returned error: %v", err)
	}
	if up.high || down.high {
		t.Errorf("after Stop: up=%t down=%t, want both released", up.high, down.high)
	}
}

func TestRelayPropagatesPinErrors(t *testing.T) {
	log := &[]string{}
	up := &fakePin{name: "up", log: log, failOn: "high"}
	down := &fakePin{name: "down", log: log}
	m, err := NewRelay(up, down)
	if err != nil {
		t.Fatalf("NewRelay returned error: %v", err)
	}

	if err := m.Up(); err == nil {
		t.Fatal("expected Up to propagate the pin error")
	}
}

func TestRelayCloseStopsAndClosesPins(t *testing.T) {
	m, up, down, _ := newFakeMotor(t)

	if err := m.Up(); err != nil {
		t.Fatalf("Up returned error: %v", err)
	}
	if err := m.Close(); err != nil {
		t.Fatalf("Close returned error: %v", err)
	}
	if up.high || down.high {
		t.Error("Close should release both relays")
	}
	if !up.closed || !down.closed {
		t.Error("Close should close both pins")
	}
}
