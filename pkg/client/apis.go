package client

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	pkgerrors "github.com/pkg/errors"

	"github.com/ultradesk/deskctl/pkg/calibration"
	"github.com/ultradesk/deskctl/pkg/config"
	"github.com/ultradesk/deskctl/pkg/events"
	"github.com/ultradesk/deskctl/pkg/units"
)

// Status is the daemon's status snapshot.
type Status struct {
	Height      *int                  `json:"height,omitempty"`
	HeightError string                `json:"heightError,omitempty"`
	Busy        bool                  `json:"busy"`
	Config      *config.RawFileConfig `json:"config"`
	Calibration *calibration.Data     `json:"calibration"`
}

func (c *Client) GetHeight() (units.Centimeter, error) {
	ret, err := c.Get("/height")
	if err != nil {
		return 0, pkgerrors.Wrapf(err, "failed to get current height")
	}
	height, err := strconv.Atoi(ret)
	if err != nil {
		return 0, pkgerrors.Wrapf(err, "failed to unmarshal current height")
	}
	return units.Centimeter(height), nil
}

func (c *Client) GetStatus() (*Status, error) {
	ret, err := c.Get("/status")
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to get status")
	}

	var st Status
	if err := json.Unmarshal([]byte(ret), &st); err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to unmarshal status")
	}
	return &st, nil
}

func (c *Client) GetConfig() (*config.RawFileConfig, error) {
	ret, err := c.Get("/config")
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to get config")
	}

	var conf config.RawFileConfig
	if err := json.Unmarshal([]byte(ret), &conf); err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to unmarshal config")
	}
	return &conf, nil
}

func (c *Client) GetCalibration() (*calibration.Data, error) {
	ret, err := c.Get("/calibration")
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to get calibration data")
	}

	var data calibration.Data
	if err := json.Unmarshal([]byte(ret), &data); err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to unmarshal calibration data")
	}
	return &data, nil
}

func (c *Client) GetVersion() (string, error) {
	ret, err := c.Get("/version")
	if err != nil {
		return "", pkgerrors.Wrapf(err, "failed to get version")
	}
	// Remove "" around JSON string. I don't want to use a JSON decoder just for this.
	ret = strings.Trim(ret, "\"")
	return ret, nil
}

func (c *Client) MoveToStanding() (string, error) {
	return c.Post("/move/standing", "")
}

func (c *Client) MoveToSitting() (string, error) {
	return c.Post("/move/sitting", "")
}

func (c *Client) MoveToHeight(height units.Centimeter) (string, error) {
	return c.Put("/move/height", strconv.Itoa(int(height)))
}

func (c *Client) Calibrate() (string, error) {
	return c.Post("/calibrate", "")
}

func (c *Client) SetStandingHeight(height units.Centimeter) (string, error) {
	return c.Put("/standing-height", strconv.Itoa(int(height)))
}

func (c *Client) SetSittingHeight(height units.Centimeter) (string, error) {
	return c.Put("/sitting-height", strconv.Itoa(int(height)))
}

// StreamEvents subscribes to the daemon's SSE stream and calls handler
// for every event until ctx is canceled or the stream ends.
func (c *Client) StreamEvents(ctx context.Context, handler func(events.Event)) error {
	req, err := http.NewRequestWithContext(ctx, "GET", "http://unix/events", nil)
	if err != nil {
		return pkgerrors.Wrap(err, "failed to create events request")
	}
	req.Header.Set("Accept", "text/event-stream")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return pkgerrors.Wrap(err, "failed to subscribe to events")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return pkgerrors.Errorf("got %d subscribing to events", resp.StatusCode)
	}

	var ev events.Event
	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case strings.HasPrefix(line, "event:"):
			ev.Name = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
		case strings.HasPrefix(line, "data:"):
			ev.Data = json.RawMessage(strings.TrimSpace(strings.TrimPrefix(line, "data:")))
		case line == "":
			if ev.Name != "" {
				handler(ev)
			}
			ev = events.Event{}
		}
	}
	if err := scanner.Err(); err != nil && ctx.Err() == nil {
		return pkgerrors.Wrap(err, "event stream failed")
	}
	return nil
}
