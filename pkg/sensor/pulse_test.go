package sensor

import (
	"errors"
	"testing"
	"time"

	"github.com/ultradesk/deskctl/pkg/gpio"
)

// fakeTrigger records trigger transitions into a shared op log.
type fakeTrigger struct {
	ops *[]string
}

func (p *fakeTrigger) SetHigh() error {
	*p.ops = append(*p.ops, "trigger:high")
	return nil
}

func (p *fakeTrigger) SetLow() error {
	*p.ops = append(*p.ops, "trigger:low")
	return nil
}

func (p *fakeTrigger) Close() error { return nil }

// fakeEcho replays a scripted sequence of edges. A nil entry simulates a
// wait timeout.
type fakeEcho struct {
	ops   *[]string
	edges []*gpio.Edge
	next  int
}

func (p *fakeEcho) WaitForEdge(timeout time.Duration) (gpio.Edge, error) {
	*p.ops = append(*p.ops, "echo:wait")
	if p.next >= len(p.edges) || p.edges[p.next] == nil {
		p.next++
		return gpio.Edge{}, gpio.ErrEdgeTimeout
	}
	edge := *p.edges[p.next]
	p.next++
	return edge, nil
}

func (p *fakeEcho) Flush() {
	*p.ops = append(*p.ops, "echo:flush")
}

func (p *fakeEcho) Close() error { return nil }

func edge(level gpio.Level, ts time.Duration) *gpio.Edge {
	return &gpio.Edge{Level: level, Timestamp: ts}
}

func newFakeTimer(edges ...*gpio.Edge) (*pulseTimer, *[]string) {
	ops := &[]string{}
	return &pulseTimer{
		trigger: &fakeTrigger{ops: ops},
		echo:    &fakeEcho{ops: ops, edges: edges},
	}, ops
}

func stubSleep(t *testing.T) {
	t.Helper()
	orig := sleepFn
	sleepFn = func(time.Duration) {}
	t.Cleanup(func() { sleepFn = orig })
}

func TestMeasureOneEcho(t *testing.T) {
	stubSleep(t)

	timer, _ := newFakeTimer(
		edge(gpio.High, 100*time.Millisecond),
		edge(gpio.Low, 105*time.Millisecond),
	)

	d, err := timer.measureOneEcho()
	if err != nil {
		t.Fatalf("measureOneEcho returned error: %v", err)
	}
	if d != 5*time.Millisecond {
		t.Errorf("echo duration = %v, want 5ms", d)
	}
}

func TestMeasureOneEchoProtocolOrder(t *testing.T) {
	stubSleep(t)

	timer, ops := newFakeTimer(
		edge(gpio.High, 100*time.Millisecond),
		edge(gpio.Low, 105*time.Millisecond),
	)

	if _, err := timer.measureOneEcho(); err != nil {
		t.Fatalf("measureOneEcho returned error: %v", err)
	}

	want := []string{"echo:flush", "trigger:high", "trigger:low", "echo:wait", "echo:wait"}
	got := *ops
	if len(got) != len(want) {
		t.Fatalf("op sequence = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("op sequence = %v, want %v", got, want)
		}
	}
}

func TestMeasureOneEchoErrors(t *testing.T) {
	tests := []struct {
		name    string
		edges   []*gpio.Edge
		wantErr error
	}{
		{
			name:    "start edge timeout",
			edges:   []*gpio.Edge{nil, nil},
			wantErr: ErrEchoStartTimeout,
		},
		{
			name: "spurious low start edge",
			edges: []*gpio.Edge{
				edge(gpio.Low, 100*time.Millisecond),
				edge(gpio.High, 101*time.Millisecond),
			},
			wantErr: ErrSpuriousLowEcho,
		},
		{
			name: "echo at out-of-range ceiling",
			edges: []*gpio.Edge{
				edge(gpio.High, 100*time.Millisecond),
				edge(gpio.Low, 300*time.Millisecond),
			},
			wantErr: ErrEchoOutOfRange,
		},
		{
			name: "end edge timeout",
			edges: []*gpio.Edge{
				edge(gpio.High, 100*time.Millisecond),
				nil,
			},
			wantErr: ErrEchoOutOfRange,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stubSleep(t)
			timer, _ := newFakeTimer(tt.edges...)

			_, err := timer.measureOneEcho()
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("measureOneEcho error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
