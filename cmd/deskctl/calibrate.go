package main

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func NewCalibrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "calibrate",
		Aliases: []string{"cali"},
		Short:   "Calibrate the desk height sensor",
		GroupID: gAdvanced,
		Long: `Calibrate the desk height sensor.

The desk is driven to its highest and lowest mechanical positions to record fresh sensor reference points, then returns to the sitting position. Clear the space above and below the desk before starting.

The command blocks until calibration is complete. Use "deskctl watch" in another terminal to follow progress.`,
		RunE: func(_ *cobra.Command, _ []string) error {
			logrus.Info("calibrating, this takes a while...")

			ret, err := apiClient.Calibrate()
			if err != nil {
				return fmt.Errorf("calibration failed: %v", err)
			}

			if ret != "" {
				logrus.Infof("daemon responded: %s", ret)
			}

			logrus.Infof("calibration complete")

			return nil
		},
	}
}
