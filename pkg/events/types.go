package events

import "encoding/json"

// Event name constants
const (
	MoveStarted         = "move.started"
	MoveFinished        = "move.finished"
	MoveFailed          = "move.failed"
	CalibrationStarted  = "calibration.started"
	CalibrationFinished = "calibration.finished"
	CalibrationFailed   = "calibration.failed"
)

// Event is a generic SSE event from the daemon.
type Event struct {
	Name string          // SSE event name
	Data json.RawMessage // Raw JSON payload
}

// MoveEvent is the typed payload for the move.* events.
type MoveEvent struct {
	Target  int    `json:"target"`
	Message string `json:"message,omitempty"`
	Ts      int64  `json:"ts"`
}

// CalibrationEvent is the typed payload for the calibration.* events.
type CalibrationEvent struct {
	Message string `json:"message,omitempty"`
	Ts      int64  `json:"ts"`
}

// DecodeAs decodes the event payload into the caller-specified generic
// type T. It ignores the event name and simply unmarshals Data into T.
// If Data is empty, it returns the zero value of T with a nil error.
func DecodeAs[T any](e Event) (T, error) {
	var zero T
	if len(e.Data) == 0 {
		return zero, nil
	}
	var v T
	if err := json.Unmarshal(e.Data, &v); err != nil {
		return zero, err
	}
	return v, nil
}
