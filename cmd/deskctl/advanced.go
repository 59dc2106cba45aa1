package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ultradesk/deskctl/pkg/events"
	"github.com/ultradesk/deskctl/pkg/units"
)

func NewStandingHeightCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "standing-height [centimeters]",
		Short:   "Set the standing height",
		GroupID: gAdvanced,
		Long: `Set the height, in centimeters, that "deskctl stand" moves to.

The height must be within the configured table limits. The change is persisted and takes effect immediately.`,
		RunE: func(_ *cobra.Command, args []string) error {
			height, err := parseIntArg(args, "height")
			if err != nil {
				return err
			}

			ret, err := apiClient.SetStandingHeight(units.Centimeter(height))
			if err != nil {
				return fmt.Errorf("failed to set standing height: %v", err)
			}

			if ret != "" {
				logrus.Infof("daemon responded: %s", ret)
			}

			logrus.Infof("successfully set standing height to %dcm", height)

			return nil
		},
	}
}

func NewSittingHeightCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "sitting-height [centimeters]",
		Short:   "Set the sitting height",
		GroupID: gAdvanced,
		Long: `Set the height, in centimeters, that "deskctl sit" moves to.

The height must be within the configured table limits. The change is persisted and takes effect immediately.`,
		RunE: func(_ *cobra.Command, args []string) error {
			height, err := parseIntArg(args, "height")
			if err != nil {
				return err
			}

			ret, err := apiClient.SetSittingHeight(units.Centimeter(height))
			if err != nil {
				return fmt.Errorf("failed to set sitting height: %v", err)
			}

			if ret != "" {
				logrus.Infof("daemon responded: %s", ret)
			}

			logrus.Infof("successfully set sitting height to %dcm", height)

			return nil
		},
	}
}

func NewWatchCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "watch",
		Short:   "Stream desk events",
		GroupID: gAdvanced,
		Long: `Stream movement and calibration events from the daemon as they happen.

Press Ctrl-C to stop.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			err := apiClient.StreamEvents(ctx, func(ev events.Event) {
				printEvent(cmd, ev)
			})
			if ctx.Err() != nil {
				// Interrupted by the user.
				return nil
			}
			if err != nil {
				return fmt.Errorf("failed to stream events: %v", err)
			}
			return nil
		},
	}
}

func printEvent(cmd *cobra.Command, ev events.Event) {
	switch ev.Name {
	case events.MoveStarted, events.MoveFinished, events.MoveFailed:
		me, err := events.DecodeAs[events.MoveEvent](ev)
		if err != nil {
			logrus.Warnf("failed to decode %s event: %v", ev.Name, err)
			return
		}
		line := fmt.Sprintf("%s %s target=%dcm", eventTime(me.Ts), ev.Name, me.Target)
		if me.Message != "" {
			line += " " + me.Message
		}
		cmd.Println(line)
	case events.CalibrationStarted, events.CalibrationFinished, events.CalibrationFailed:
		ce, err := events.DecodeAs[events.CalibrationEvent](ev)
		if err != nil {
			logrus.Warnf("failed to decode %s event: %v", ev.Name, err)
			return
		}
		line := fmt.Sprintf("%s %s", eventTime(ce.Ts), ev.Name)
		if ce.Message != "" {
			line += " " + ce.Message
		}
		cmd.Println(line)
	default:
		cmd.Printf("%s %s\n", time.Now().Format(time.TimeOnly), ev.Name)
	}
}

func eventTime(ts int64) string {
	return time.Unix(ts, 0).Format(time.TimeOnly)
}
