package sensor

import (
	"bytes"
	"context"
	"fmt"

	"github.com/markusressel/bmc2go/cmd/global"
	"github.com/markusressel/bmc2go/internal/bmc"
	"github.com/markusressel/bmc2go/internal/configuration"
	"github.com/markusressel/bmc2go/internal/sensors"
	"github.com/markusressel/bmc2go/internal/ui"
	"github.com/spf13/cobra"
	"github.com/tomlazar/table"
)

var showAll bool

var Command = &cobra.Command{
	Use:   "sensor",
	Short: "List the sensors of the BMC",
	Long:  `Reads all sensors of the BMC once and prints them as they are classified by the control loop`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		readings, err := readSensors(cmd.Context())
		if err != nil {
			return err
		}

		classification := sensors.Classify(readings)

		ui.Printfln("> CPU temperatures (%s)", classification.CpuSource)
		if err := printClassified(classification.CpuTemperatures); err != nil {
			return err
		}
		ui.Printfln("> Temperatures")
		if err := printClassified(classification.Temperatures); err != nil {
			return err
		}
		ui.Printfln("> Fans")
		if err := printClassified(classification.Fans); err != nil {
			return err
		}

		if showAll {
			ui.Printfln("> All")
			return printReadings(readings)
		}
		return nil
	},
}

func init() {
	Command.Flags().BoolVarP(&showAll, "all", "a", false, "Also print sensors which are not used for fan control")
}

func readSensors(ctx context.Context) ([]sensors.Reading, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	configPath := configuration.DetectAndReadConfigFile()
	ui.Info("Using configuration file at: %s", configPath)
	configuration.LoadConfig()
	err := configuration.Validate(configPath)
	if err != nil {
		return nil, err
	}

	session, err := bmc.NewIpmitoolConnector(configuration.CurrentConfig.Bmc).Connect(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = session.Close()
	}()

	return session.ReadSensors(ctx)
}

func printClassified(readings []sensors.Classified) error {
	if len(readings) <= 0 {
		ui.Printfln("None")
		ui.Printfln("")
		return nil
	}

	tab := table.Table{
		Headers: []string{"Label", "Sensor", "Value", "Units", "Health"},
	}
	for _, r := range readings {
		tab.Rows = append(tab.Rows, []string{
			r.Label, r.Name, fmt.Sprintf("%.1f", r.Value), r.Units, r.Health.String(),
		})
	}
	return printTable(tab)
}

func printReadings(readings []sensors.Reading) error {
	tab := table.Table{
		Headers: []string{"Sensor", "Kind", "Value", "Units", "Health"},
	}
	for _, r := range readings {
		value := "N/A"
		if r.Available {
			value = fmt.Sprintf("%.2f", r.Value)
		}
		tab.Rows = append(tab.Rows, []string{
			r.Name, r.Kind.String(), value, r.Units, r.Health.String(),
		})
	}
	return printTable(tab)
}

func printTable(tab table.Table) error {
	var buf bytes.Buffer
	if err := tab.WriteTable(&buf, global.TableConfig()); err != nil {
		return err
	}
	ui.Printfln(buf.String())
	return nil
}
