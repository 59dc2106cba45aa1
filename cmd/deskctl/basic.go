package main

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ultradesk/deskctl/pkg/units"
	"github.com/ultradesk/deskctl/pkg/version"
)

func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Printf("%s %s\n", version.Version, version.GitCommit)
		},
	}
}

func NewStandCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "stand",
		Short:   "Move the desk to the standing position",
		GroupID: gBasic,
		Long: `Move the desk to the configured standing height.

The command blocks until the desk has finished moving. To change the standing height, use "deskctl standing-height".`,
		RunE: func(_ *cobra.Command, _ []string) error {
			ret, err := apiClient.MoveToStanding()
			if err != nil {
				return fmt.Errorf("failed to move to standing position: %v", err)
			}

			if ret != "" {
				logrus.Infof("daemon responded: %s", ret)
			}

			logrus.Infof("desk is now at standing position")

			return nil
		},
	}
}

func NewSitCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "sit",
		Short:   "Move the desk to the sitting position",
		GroupID: gBasic,
		Long: `Move the desk to the configured sitting height.

The command blocks until the desk has finished moving. To change the sitting height, use "deskctl sitting-height".`,
		RunE: func(_ *cobra.Command, _ []string) error {
			ret, err := apiClient.MoveToSitting()
			if err != nil {
				return fmt.Errorf("failed to move to sitting position: %v", err)
			}

			if ret != "" {
				logrus.Infof("daemon responded: %s", ret)
			}

			logrus.Infof("desk is now at sitting position")

			return nil
		},
	}
}

func NewHeightCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "height [centimeters]",
		Short:   "Move the desk to a specific height",
		GroupID: gBasic,
		Long: `Move the desk to a specific height in centimeters.

The height must be within the configured table limits. Without an argument, the current height is printed instead.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				height, err := apiClient.GetHeight()
				if err != nil {
					return fmt.Errorf("failed to get current height: %v", err)
				}
				cmd.Println(height)
				return nil
			}

			height, err := parseIntArg(args, "height")
			if err != nil {
				return err
			}

			ret, err := apiClient.MoveToHeight(units.Centimeter(height))
			if err != nil {
				return fmt.Errorf("failed to move to %dcm: %v", height, err)
			}

			if ret != "" {
				logrus.Infof("daemon responded: %s", ret)
			}

			logrus.Infof("desk is now at %dcm", height)

			return nil
		},
	}
}
