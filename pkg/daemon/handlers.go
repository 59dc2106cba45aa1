package daemon

import (
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/ultradesk/deskctl/pkg/calibration"
	"github.com/ultradesk/deskctl/pkg/config"
	"github.com/ultradesk/deskctl/pkg/desk"
	"github.com/ultradesk/deskctl/pkg/events"
	"github.com/ultradesk/deskctl/pkg/units"
	"github.com/ultradesk/deskctl/pkg/version"
)

// moveMu serializes movement and calibration. The desk is a single
// physical resource; a request that would overlap an in-flight movement
// is rejected instead of queued.
var moveMu = &sync.Mutex{}

// statusResponse mirrors client.Status.
type statusResponse struct {
	Height      *int                  `json:"height,omitempty"`
	HeightError string                `json:"heightError,omitempty"`
	Busy        bool                  `json:"busy"`
	Config      *config.RawFileConfig `json:"config"`
	Calibration *calibration.Data     `json:"calibration"`
}

func getHeight(c *gin.Context) {
	if !moveMu.TryLock() {
		c.IndentedJSON(http.StatusConflict, "desk is busy")
		return
	}
	defer moveMu.Unlock()

	height, err := deskSensor.CurrentHeight()
	if err != nil {
		logrus.Errorf("CurrentHeight failed: %v", err)
		c.IndentedJSON(http.StatusInternalServerError, err.Error())
		_ = c.AbortWithError(http.StatusInternalServerError, err)
		return
	}

	c.IndentedJSON(http.StatusOK, int(height))
}

func getStatus(c *gin.Context) {
	fc, err := config.NewRawFileConfigFromConfig(conf)
	if err != nil {
		_ = c.AbortWithError(http.StatusInternalServerError, err)
		return
	}

	st := statusResponse{
		Config:      fc,
		Calibration: deskSensor.CalibrationData(),
	}

	if moveMu.TryLock() {
		height, err := deskSensor.CurrentHeight()
		moveMu.Unlock()
		if err != nil {
			st.HeightError = err.Error()
		} else {
			h := int(height)
			st.Height = &h
		}
	} else {
		st.Busy = true
	}

	c.IndentedJSON(http.StatusOK, st)
}

func getConfig(c *gin.Context) {
	fc, err := config.NewRawFileConfigFromConfig(conf)
	if err != nil {
		_ = c.AbortWithError(http.StatusInternalServerError, err)
		return
	}
	c.IndentedJSON(http.StatusOK, fc)
}

func getCalibration(c *gin.Context) {
	c.IndentedJSON(http.StatusOK, deskSensor.CalibrationData())
}

func getVersion(c *gin.Context) {
	c.IndentedJSON(http.StatusOK, version.Version)
}

func setStandingHeight(c *gin.Context) {
	setPolicyHeight(c, "standing height", conf.SetStandingHeight)
}

func setSittingHeight(c *gin.Context) {
	setPolicyHeight(c, "sitting height", conf.SetSittingHeight)
}

func setPolicyHeight(c *gin.Context, name string, set func(units.Centimeter)) {
	var h int
	if err := c.BindJSON(&h); err != nil {
		c.IndentedJSON(http.StatusBadRequest, err.Error())
		_ = c.AbortWithError(http.StatusBadRequest, err)
		return
	}

	if h < int(conf.MinTableHeight()) || h > int(conf.MaxTableHeight()) {
		err := fmt.Errorf("%s must be between %s and %s, got %dcm",
			name, conf.MinTableHeight(), conf.MaxTableHeight(), h)
		c.IndentedJSON(http.StatusBadRequest, err.Error())
		_ = c.AbortWithError(http.StatusBadRequest, err)
		return
	}

	set(units.Centimeter(h))
	if err := conf.Save(); err != nil {
		logrus.Errorf("saveConfig failed: %v", err)
		c.IndentedJSON(http.StatusInternalServerError, err.Error())
		_ = c.AbortWithError(http.StatusInternalServerError, err)
		return
	}

	// The controller snapshots the policy at build time; rebuild it so
	// the new height takes effect immediately.
	rebuildController()

	msg := fmt.Sprintf("set %s to %dcm", name, h)
	logrus.Info(msg)
	c.IndentedJSON(http.StatusCreated, msg)
}

func rebuildController() {
	moveMu.Lock()
	defer moveMu.Unlock()
	deskCtrl = deskCtrl.WithConfig(deskConfig(conf))
}

func moveToStanding(c *gin.Context) {
	runMove(c, "standing position",
		func(d *desk.StandingDesk) int { return int(d.Config().StandingHeight) },
		func(d *desk.StandingDesk) error { return d.MoveToStanding() })
}

func moveToSitting(c *gin.Context) {
	runMove(c, "sitting position",
		func(d *desk.StandingDesk) int { return int(d.Config().SittingHeight) },
		func(d *desk.StandingDesk) error { return d.MoveToSitting() })
}

func moveToHeight(c *gin.Context) {
	var h int
	if err := c.BindJSON(&h); err != nil {
		c.IndentedJSON(http.StatusBadRequest, err.Error())
		_ = c.AbortWithError(http.StatusBadRequest, err)
		return
	}

	runMove(c, fmt.Sprintf("%dcm", h),
		func(*desk.StandingDesk) int { return h },
		func(d *desk.StandingDesk) error { return d.MoveToHeight(units.Centimeter(h)) })
}

// runMove executes a movement under the desk lock and reports progress on
// the event stream. The controller is read only after the lock is held:
// policy changes swap it out under the same lock, so an earlier read would
// race. Bounds violations map to 400, everything else to 500.
func runMove(c *gin.Context, target string, targetHeight func(*desk.StandingDesk) int, move func(*desk.StandingDesk) error) {
	if !moveMu.TryLock() {
		c.IndentedJSON(http.StatusConflict, "desk is busy")
		return
	}
	defer moveMu.Unlock()

	d := deskCtrl
	height := targetHeight(d)

	sseHub.Publish(events.MoveStarted, events.MoveEvent{
		Target: height,
		Ts:     time.Now().Unix(),
	})

	if err := move(d); err != nil {
		logrus.Errorf("move to %s failed: %v", target, err)
		sseHub.Publish(events.MoveFailed, events.MoveEvent{
			Target:  height,
			Message: err.Error(),
			Ts:      time.Now().Unix(),
		})

		status := http.StatusInternalServerError
		var boundsErr *desk.BoundsError
		if pkgerrors.As(err, &boundsErr) {
			status = http.StatusBadRequest
		}
		c.IndentedJSON(status, err.Error())
		_ = c.AbortWithError(status, err)
		return
	}

	sseHub.Publish(events.MoveFinished, events.MoveEvent{
		Target: height,
		Ts:     time.Now().Unix(),
	})

	msg := fmt.Sprintf("moved to %s", target)
	logrus.Info(msg)
	c.IndentedJSON(http.StatusOK, msg)
}

func calibrate(c *gin.Context) {
	if !moveMu.TryLock() {
		c.IndentedJSON(http.StatusConflict, "desk is busy")
		return
	}
	defer moveMu.Unlock()

	sseHub.Publish(events.CalibrationStarted, events.CalibrationEvent{
		Ts: time.Now().Unix(),
	})

	if err := deskCtrl.Calibrate(); err != nil {
		logrus.Errorf("calibration failed: %v", err)
		sseHub.Publish(events.CalibrationFailed, events.CalibrationEvent{
			Message: err.Error(),
			Ts:      time.Now().Unix(),
		})
		c.IndentedJSON(http.StatusInternalServerError, err.Error())
		_ = c.AbortWithError(http.StatusInternalServerError, err)
		return
	}

	// The sensor only mutates calibration in memory; persisting it is
	// the daemon's job.
	if err := calibration.Save(deskSensor.CalibrationFile(), deskSensor.CalibrationData()); err != nil {
		logrus.Errorf("failed to persist calibration data: %v", err)
		c.IndentedJSON(http.StatusInternalServerError, err.Error())
		_ = c.AbortWithError(http.StatusInternalServerError, err)
		return
	}

	sseHub.Publish(events.CalibrationFinished, events.CalibrationEvent{
		Ts: time.Now().Unix(),
	})

	msg := "calibration complete"
	logrus.Info(msg)
	c.IndentedJSON(http.StatusOK, msg)
}

func getEvents(c *gin.Context) {
	ch := sseHub.Subscribe()
	defer sseHub.Unsubscribe(ch)

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")

	c.Stream(func(_ io.Writer) bool {
		select {
		case ev, ok := <-ch:
			if !ok {
				return false
			}
			c.SSEvent(ev.Name, ev.Data)
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}
