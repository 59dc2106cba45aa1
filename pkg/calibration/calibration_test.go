package calibration

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ultradesk/deskctl/pkg/units"
)

func TestHeightForEcho(t *testing.T) {
	d := &Data{
		MinHeight:         60,
		MinHeightEchoSecs: 0.003,
		MaxHeight:         120,
		MaxHeightEchoSecs: 0.009,
	}

	tests := []struct {
		name string
		echo time.Duration
		want units.Centimeter
	}{
		{
			name: "min anchor round-trips to min height",
			echo: 3 * time.Millisecond,
			want: 60,
		},
		{
			name: "max anchor round-trips to max height",
			echo: 9 * time.Millisecond,
			want: 120,
		},
		{
			name: "midpoint echo yields midpoint height",
			echo: 6 * time.Millisecond,
			want: 90,
		},
		{
			name: "below min anchor extrapolates downwards",
			echo: 2500 * time.Microsecond,
			want: 55,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := d.HeightForEcho(tt.echo)
			if err != nil {
				t.Fatalf("HeightForEcho(%v) returned error: %v", tt.echo, err)
			}
			if got != tt.want {
				t.Errorf("HeightForEcho(%v) = %v, want %v", tt.echo, got, tt.want)
			}
		})
	}
}

func TestHeightForEchoMonotonic(t *testing.T) {
	d := &Data{
		MinHeight:         60,
		MinHeightEchoSecs: 0.003,
		MaxHeight:         120,
		MaxHeightEchoSecs: 0.009,
	}

	prev := units.Centimeter(0)
	for echo := 3 * time.Millisecond; echo <= 9*time.Millisecond; echo += 500 * time.Microsecond {
		h, err := d.HeightForEcho(echo)
		if err != nil {
			t.Fatalf("HeightForEcho(%v) returned error: %v", echo, err)
		}
		if h < prev {
			t.Fatalf("height decreased from %v to %v at echo %v", prev, h, echo)
		}
		prev = h
	}
	if prev != d.MaxHeight {
		t.Errorf("final height = %v, want %v", prev, d.MaxHeight)
	}
}

func TestHeightForEchoSaturates(t *testing.T) {
	d := &Data{
		MinHeight:         10,
		MinHeightEchoSecs: 0.001,
		MaxHeight:         250,
		MaxHeightEchoSecs: 0.002,
	}

	high, err := d.HeightForEcho(10 * time.Millisecond)
	if err != nil {
		t.Fatalf("HeightForEcho returned error: %v", err)
	}
	if high != 255 {
		t.Errorf("height above range = %v, want saturation at 255", high)
	}

	low, err := d.HeightForEcho(0)
	if err != nil {
		t.Fatalf("HeightForEcho returned error: %v", err)
	}
	if low != 0 {
		t.Errorf("height below range = %v, want saturation at 0", low)
	}
}

func TestHeightForEchoDegenerate(t *testing.T) {
	d := &Data{
		MinHeight:         60,
		MinHeightEchoSecs: 0.005,
		MaxHeight:         120,
		MaxHeightEchoSecs: 0.005,
	}

	_, err := d.HeightForEcho(5 * time.Millisecond)
	if !errors.Is(err, ErrDegenerate) {
		t.Fatalf("expected ErrDegenerate, got %v", err)
	}
}

func TestLoadSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "calibration.toml")
	want := &Data{
		MinHeight:         60,
		MinHeightEchoSecs: 0.003,
		MaxHeight:         120,
		MaxHeightEchoSecs: 0.009,
	}

	if err := Save(path, want); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if *got != *want {
		t.Errorf("Load = %+v, want %+v", got, want)
	}
}

func TestLoadRejectsInvalidData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "calibration.toml")
	bad := &Data{
		MinHeight:         120,
		MinHeightEchoSecs: 0.003,
		MaxHeight:         60,
		MaxHeightEchoSecs: 0.009,
	}
	if err := Save(path, bad); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}

	if _, err := Load(path); err == nil {
		t.Fatal("expected Load to reject max height <= min height")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
		t.Fatal("expected Load to fail for a missing file")
	}
}

func TestLoadMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "calibration.toml")
	if err := os.WriteFile(path, []byte("min_height = \"not a number\""), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected Load to fail for malformed TOML")
	}
}
