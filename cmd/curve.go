package cmd

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/guptarohit/asciigraph"
	"github.com/markusressel/bmc2go/cmd/global"
	"github.com/markusressel/bmc2go/internal/configuration"
	"github.com/markusressel/bmc2go/internal/curves"
	"github.com/markusressel/bmc2go/internal/ui"
	"github.com/spf13/cobra"
	"github.com/tomlazar/table"
)

const (
	curveGraphFrom = 20
	curveGraphTo   = 110
	curveTableStep = 5
)

var curveCmd = &cobra.Command{
	Use:   "curve",
	Short: "Print the configured control curve to console",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath := configuration.DetectAndReadConfigFile()
		ui.Info("Using configuration file at: %s", configPath)
		configuration.LoadConfig()

		curveConf := configuration.CurrentConfig.Curve
		curve := curves.NewSpeedCurve(curveConf)

		ui.Printfln("Sigmoid (min: %d%%, max: %d%%, midpoint: %.1f°C, steepness: %.2f)",
			curveConf.MinSpeed, curveConf.MaxSpeed, curveConf.MidPoint, curveConf.Steepness)

		temperatures, speeds := curves.Sample(curve, curveGraphFrom, curveGraphTo, curveTableStep)
		tab := table.Table{
			Headers: []string{"Temperature", "Speed"},
		}
		for i := range temperatures {
			tab.Rows = append(tab.Rows, []string{
				fmt.Sprintf("%.0f°C", temperatures[i]),
				strconv.Itoa(int(speeds[i])) + "%",
			})
		}
		var buf bytes.Buffer
		if err := tab.WriteTable(&buf, global.TableConfig()); err != nil {
			return err
		}
		ui.Printfln(buf.String())

		_, values := curves.Sample(curve, curveGraphFrom, curveGraphTo, 1)
		caption := fmt.Sprintf("Speed %% / Temperature (%d..%d°C)", curveGraphFrom, curveGraphTo)
		graph := asciigraph.Plot(values, asciigraph.Height(15), asciigraph.Width(100), asciigraph.Caption(caption))
		ui.Printfln(graph)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(curveCmd)
}
