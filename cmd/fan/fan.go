package fan

import (
	"context"

	"github.com/markusressel/bmc2go/internal/bmc"
	"github.com/markusressel/bmc2go/internal/configuration"
	"github.com/markusressel/bmc2go/internal/fans"
	"github.com/markusressel/bmc2go/internal/ui"
	"github.com/spf13/cobra"
)

var Command = &cobra.Command{
	Use:              "fan",
	Short:            "Fan related commands",
	Long:             ``,
	TraverseChildren: true,
}

// withFanController connects to the configured BMC and passes a fan
// controller for it to the given function.
func withFanController(ctx context.Context, f func(ctx context.Context, controller fans.Controller) error) error {
	if ctx == nil {
		ctx = context.Background()
	}

	configPath := configuration.DetectAndReadConfigFile()
	ui.Info("Using configuration file at: %s", configPath)
	configuration.LoadConfig()
	err := configuration.Validate(configPath)
	if err != nil {
		return err
	}

	session, err := bmc.NewIpmitoolConnector(configuration.CurrentConfig.Bmc).Connect(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err := session.Close(); err != nil {
			ui.Warning("Error closing BMC session: %v", err)
		}
	}()

	return f(ctx, fans.NewRawFanController(session))
}
