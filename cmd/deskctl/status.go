package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ultradesk/deskctl/pkg/config"
)

func NewStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "status",
		GroupID: gBasic,
		Short:   "Get the current status of the desk",
		Long:    `Get the desk height, calibration state, and configuration.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			st, err := apiClient.GetStatus()
			if err != nil {
				return fmt.Errorf("failed to get status: %v", err)
			}

			conf := config.NewFileFromConfig(st.Config, "")

			cmd.Println(bold("Desk status:"))
			switch {
			case st.Busy:
				cmd.Println("  Height: " + color.YellowString("unknown (desk is moving)"))
			case st.HeightError != "":
				cmd.Println("  Height: " + color.RedString("measurement failed"))
				cmd.Printf("    %s\n", st.HeightError)
			case st.Height != nil:
				cmd.Printf("  Height: %s\n", bold("%dcm", *st.Height))
			}

			cmd.Println()

			cmd.Println(bold("Calibration:"))
			if st.Calibration != nil {
				cmd.Printf("  Lowest observable height: %s (echo %.4fs)\n",
					bold("%s", st.Calibration.MinHeight), st.Calibration.MinHeightEchoSecs)
				cmd.Printf("  Highest observable height: %s (echo %.4fs)\n",
					bold("%s", st.Calibration.MaxHeight), st.Calibration.MaxHeightEchoSecs)
			} else {
				cmd.Println("  Not calibrated. Run \"deskctl calibrate\" first.")
			}

			cmd.Println()

			cmd.Println(bold("Desk configuration:"))
			cmd.Printf("  Standing height: %s\n", bold("%s", conf.StandingHeight()))
			cmd.Printf("  Sitting height: %s\n", bold("%s", conf.SittingHeight()))
			cmd.Printf("  Table limits: %s\n", bold("%s - %s", conf.MinTableHeight(), conf.MaxTableHeight()))
			cmd.Printf("  GPIO chip: %s\n", conf.GPIOChip())
			cmd.Printf("  Sensor pins (trigger/echo): %d/%d\n", conf.TriggerPin(), conf.EchoPin())
			cmd.Printf("  Motor pins (up/down): %d/%d\n", conf.MotorUpPin(), conf.MotorDownPin())
			cmd.Printf("  Allow non-root users to access the daemon: %s\n", bool2Text(conf.AllowNonRootAccess()))

			return nil
		},
	}
}

func bool2Text(b bool) string {
	if b {
		return color.New(color.Bold, color.FgGreen).Sprint("✔")
	}
	return color.New(color.Bold, color.FgRed).Sprint("✘")
}

func bold(format string, a ...interface{}) string {
	return color.New(color.Bold).Sprintf(format, a...)
}
