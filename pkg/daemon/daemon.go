// Package daemon runs the desk controller and exposes it over an HTTP
// API on a unix socket.
package daemon

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/ultradesk/deskctl/pkg/config"
	"github.com/ultradesk/deskctl/pkg/desk"
	"github.com/ultradesk/deskctl/pkg/events"
	"github.com/ultradesk/deskctl/pkg/gpio"
	"github.com/ultradesk/deskctl/pkg/motor"
	"github.com/ultradesk/deskctl/pkg/sensor"
)

var (
	conf       config.Config
	deskSensor sensor.DistanceSensor
	deskCtrl   *desk.StandingDesk
	sseHub     *events.Hub
)

func setupRoutes() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(ginLogger(logrus.StandardLogger()))
	router.GET("/height", getHeight)
	router.GET("/status", getStatus)
	router.GET("/config", getConfig)
	router.GET("/calibration", getCalibration)
	router.GET("/version", getVersion)
	router.GET("/events", getEvents)
	router.PUT("/standing-height", setStandingHeight)
	router.PUT("/sitting-height", setSittingHeight)
	router.PUT("/move/height", moveToHeight)
	router.POST("/move/standing", moveToStanding)
	router.POST("/move/sitting", moveToSitting)
	router.POST("/calibrate", calibrate)

	return router
}

// buildHardware opens the GPIO chip and wires the sensor and motor. It
// returns a cleanup function releasing the pins and the chip.
func buildHardware(conf config.Config) (sensor.DistanceSensor, motor.Motor, func(), error) {
	chip, err := gpio.OpenChip(conf.GPIOChip())
	if err != nil {
		return nil, nil, nil, err
	}

	var pins []interface{ Close() error }
	cleanup := func() {
		for i := len(pins) - 1; i >= 0; i-- {
			if err := pins[i].Close(); err != nil {
				logrus.Errorf("failed to release gpio resource: %v", err)
			}
		}
		if err := chip.Close(); err != nil {
			logrus.Errorf("failed to close gpio chip: %v", err)
		}
	}

	trigger, err := chip.Output(conf.TriggerPin())
	if err != nil {
		cleanup()
		return nil, nil, nil, err
	}
	pins = append(pins, trigger)

	echo, err := chip.EdgeInput(conf.EchoPin())
	if err != nil {
		cleanup()
		return nil, nil, nil, err
	}
	pins = append(pins, echo)

	upPin, err := chip.Output(conf.MotorUpPin())
	if err != nil {
		cleanup()
		return nil, nil, nil, err
	}
	pins = append(pins, upPin)

	downPin, err := chip.Output(conf.MotorDownPin())
	if err != nil {
		cleanup()
		return nil, nil, nil, err
	}
	pins = append(pins, downPin)

	s, err := sensor.New(trigger, echo, conf.CalibrationFile())
	if err != nil {
		cleanup()
		return nil, nil, nil, err
	}

	m, err := motor.NewRelay(upPin, downPin)
	if err != nil {
		cleanup()
		return nil, nil, nil, err
	}

	return s, m, cleanup, nil
}

func deskConfig(conf config.Config) desk.Config {
	return desk.Config{
		StandingHeight:       conf.StandingHeight(),
		SittingHeight:        conf.SittingHeight(),
		MinTableHeight:       conf.MinTableHeight(),
		MaxTableHeight:       conf.MaxTableHeight(),
		MoveTimeout:          conf.MoveTimeout(),
		CalibrateStepTimeout: conf.CalibrateStepTimeout(),
	}
}

// reloadConfig re-reads the config file and rebuilds the controller so
// the new policy heights, bounds, and timeouts take effect immediately.
func reloadConfig() error {
	if err := conf.Load(); err != nil {
		return err
	}
	rebuildController()
	logrus.WithFields(conf.LogrusFields()).Info("config reloaded")
	return nil
}

func Run(configPath string, unixSocketPath string, allowNonRoot bool) error {
	router := setupRoutes()

	var err error
	conf, err = config.NewFile(configPath)
	if err != nil {
		logrus.Fatalf("failed to parse config during startup: %v", err)
	}
	logrus.WithFields(conf.LogrusFields()).Infof("config loaded")

	// Receive SIGHUP to reload config
	go func() {
		sigc := make(chan os.Signal, 1)
		signal.Notify(sigc, syscall.SIGHUP)
		for range sigc {
			if err := reloadConfig(); err != nil {
				logrus.Errorf("failed to reload config: %v", err)
			}
		}
	}()

	s, m, cleanupHardware, err := buildHardware(conf)
	if err != nil {
		logrus.Fatalf("failed to set up desk hardware: %v", err)
	}
	deskSensor = s
	deskCtrl = desk.New(deskConfig(conf), s, m)
	sseHub = events.NewHub()

	srv := &http.Server{
		Handler: router,
	}

	// Create the socket to listen on:
	l, err := net.Listen("unix", unixSocketPath)
	if err != nil {
		logrus.Fatal(err)
	}

	if conf.AllowNonRootAccess() || allowNonRoot {
		logrus.Infof("non-root access is allowed, changing permissions of %s to 0777", unixSocketPath)
		err = os.Chmod(unixSocketPath, 0777)
		if err != nil {
			logrus.Fatal(err)
		}
	}

	// Serve HTTP on unix socket
	go func() {
		logrus.Infof("http server listening on %s", l.Addr().String())
		if err := srv.Serve(l); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.Fatal(err)
		}
	}()

	// Handle common process-killing signals, so we can gracefully shut down:
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	// Wait for a SIGINT or SIGTERM:
	sig := <-sigc
	logrus.Infof("caught signal \"%s\": shutting down.", sig)

	logrus.Info("shutting down http server")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	err = srv.Shutdown(ctx)
	if err != nil {
		logrus.Errorf("failed to shutdown http server: %v", err)
	}
	cancel()

	// Wait for an in-flight movement so the motor is not left running,
	// then release the pins.
	logrus.Info("stopping desk hardware")
	moveMu.Lock()
	if err := m.Stop(); err != nil {
		logrus.Errorf("failed to stop motor before exiting: %v", err)
	}
	cleanupHardware()
	moveMu.Unlock()

	logrus.Info("exiting")
	return nil
}
