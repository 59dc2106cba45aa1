package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestFileDefaultsWhenMissing(t *testing.T) {
	f, err := NewFile(filepath.Join(t.TempDir(), "deskctl.json"))
	if err != nil {
		t.Fatalf("NewFile returned error: %v", err)
	}

	if f.StandingHeight() != 110 {
		t.Errorf("StandingHeight = %v, want 110cm", f.StandingHeight())
	}
	if f.SittingHeight() != 70 {
		t.Errorf("SittingHeight = %v, want 70cm", f.SittingHeight())
	}
	if f.MinTableHeight() != 60 || f.MaxTableHeight() != 120 {
		t.Errorf("table bounds = [%v, %v], want [60cm, 120cm]", f.MinTableHeight(), f.MaxTableHeight())
	}
	if f.GPIOChip() != "/dev/gpiochip0" {
		t.Errorf("GPIOChip = %s, want /dev/gpiochip0", f.GPIOChip())
	}
	if f.MoveTimeout() != 90*time.Second {
		t.Errorf("MoveTimeout = %v, want 90s", f.MoveTimeout())
	}
	if f.AllowNonRootAccess() {
		t.Error("AllowNonRootAccess should default to false")
	}
}

func TestFilePartialConfigUsesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deskctl.json")
	if err := os.WriteFile(path, []byte(`{"standingHeight": 105}`), 0644); err != nil {
		t.Fatal(err)
	}

	f, err := NewFile(path)
	if err != nil {
		t.Fatalf("NewFile returned error: %v", err)
	}
	if f.StandingHeight() != 105 {
		t.Errorf("StandingHeight = %v, want 105cm", f.StandingHeight())
	}
	if f.SittingHeight() != 70 {
		t.Errorf("SittingHeight = %v, want default 70cm", f.SittingHeight())
	}
}

func TestFileEmptyFileUsesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deskctl.json")
	if err := os.WriteFile(path, []byte("  \n"), 0644); err != nil {
		t.Fatal(err)
	}

	f, err := NewFile(path)
	if err != nil {
		t.Fatalf("NewFile returned error: %v", err)
	}
	if f.StandingHeight() != 110 {
		t.Errorf("StandingHeight = %v, want default 110cm", f.StandingHeight())
	}
}

func TestFileSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deskctl.json")
	f, err := NewFile(path)
	if err != nil {
		t.Fatalf("NewFile returned error: %v", err)
	}

	f.SetStandingHeight(112)
	f.SetSittingHeight(68)
	if err := f.Save(); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}

	reloaded, err := NewFile(path)
	if err != nil {
		t.Fatalf("NewFile returned error: %v", err)
	}
	if reloaded.StandingHeight() != 112 {
		t.Errorf("StandingHeight = %v, want 112cm", reloaded.StandingHeight())
	}
	if reloaded.SittingHeight() != 68 {
		t.Errorf("SittingHeight = %v, want 68cm", reloaded.SittingHeight())
	}
	// Fields never set stay on defaults after the round trip.
	if reloaded.TriggerPin() != 23 {
		t.Errorf("TriggerPin = %d, want default 23", reloaded.TriggerPin())
	}
}

func TestFileRejectsMalformedJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deskctl.json")
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := NewFile(path); err == nil {
		t.Fatal("expected NewFile to reject malformed JSON")
	}
}

func TestFileLogrusFieldsCoversEffectiveConfig(t *testing.T) {
	f, err := NewFile(filepath.Join(t.TempDir(), "deskctl.json"))
	if err != nil {
		t.Fatalf("NewFile returned error: %v", err)
	}

	fields := f.LogrusFields()
	for _, key := range []string{
		"standingHeight", "sittingHeight", "minTableHeight", "maxTableHeight",
		"gpiochip", "triggerPin", "echoPin", "motorUpPin", "motorDownPin",
		"calibrationFile", "moveTimeoutSeconds", "calibrateStepTimeoutSeconds",
		"allowNonRootAccess",
	} {
		if _, ok := fields[key]; !ok {
			t.Errorf("LogrusFields is missing %q", key)
		}
	}
	if fields["moveTimeoutSeconds"] != 90 {
		t.Errorf("moveTimeoutSeconds = %v, want 90", fields["moveTimeoutSeconds"])
	}
	if fields["allowNonRootAccess"] != false {
		t.Errorf("allowNonRootAccess = %v, want false", fields["allowNonRootAccess"])
	}
}
