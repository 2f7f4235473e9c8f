package fan

import (
	"context"
	"fmt"
	"strings"

	"github.com/markusressel/bmc2go/internal/fans"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var modeCmd = &cobra.Command{
	Use:       "mode [auto|manual]",
	Short:     "Set the fan control mode of the BMC",
	Long:      ``,
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"auto", "manual"},
	RunE: func(cmd *cobra.Command, args []string) error {
		pterm.DisableOutput()

		var manual bool
		switch strings.ToLower(args[0]) {
		case "auto", "automatic":
			manual = false
		case "manual":
			manual = true
		default:
			return fmt.Errorf("unknown mode: %s, must be one of: 'auto', 'manual'", args[0])
		}

		return withFanController(cmd.Context(), func(ctx context.Context, controller fans.Controller) error {
			if err := controller.SetManualMode(ctx, manual); err != nil {
				return err
			}

			switch controller.GetControlMode() {
			case fans.ControlModeManual:
				fmt.Printf("Manual control, fans stay at the last speed set")
			default:
				fmt.Printf("Automatic control by the BMC")
			}
			return nil
		})
	},
}

func init() {
	Command.AddCommand(modeCmd)
}
