package fan

import (
	"context"
	"fmt"
	"strconv"

	"github.com/markusressel/bmc2go/internal/fans"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var speedCmd = &cobra.Command{
	Use:   "speed <percent>",
	Short: "Switch to manual control and set all fans to the given speed ([0..100])",
	Long:  `The fans stay at the given speed until automatic control is restored with 'fan mode auto'.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		pterm.DisableOutput()

		percent, err := strconv.Atoi(args[0])
		if err != nil {
			return err
		}
		if percent < fans.MinSpeedValue || percent > fans.MaxSpeedValue {
			return fmt.Errorf("%w: %d", fans.ErrSpeedOutOfRange, percent)
		}

		return withFanController(cmd.Context(), func(ctx context.Context, controller fans.Controller) error {
			if err := controller.SetManualMode(ctx, true); err != nil {
				return err
			}
			if err := controller.SetFanSpeed(ctx, percent); err != nil {
				return err
			}
			fmt.Printf("%d", percent)
			return nil
		})
	},
}

func init() {
	Command.AddCommand(speedCmd)
}
