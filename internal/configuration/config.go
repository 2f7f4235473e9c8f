package configuration

import (
	"strings"
	"time"

	"github.com/markusressel/bmc2go/internal/ui"
	"github.com/mitchellh/go-homedir"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

const envPrefix = "BMC2GO"

type Configuration struct {
	Bmc        BmcConfig        `json:"bmc"`
	Controller ControllerConfig `json:"controller"`
	Curve      CurveConfig      `json:"curve"`
	Dashboard  DashboardConfig  `json:"dashboard"`
	Api        ApiConfig        `json:"api"`
	Statistics StatisticsConfig `json:"statistics"`

	PidFile string `json:"pidFile"`
}

var CurrentConfig Configuration

// InitConfig reads in config file and ENV variables if set.
func InitConfig(cfgFile string) {
	viper.SetConfigName("bmc2go")

	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := homedir.Dir()
		if err != nil {
			ui.Fatal("Couldn't detect home directory: %v", err)
		}

		viper.AddConfigPath(".")
		viper.AddConfigPath(home)
		viper.AddConfigPath("/etc/bmc2go/")
	}

	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv() // read in environment variables that match

	setDefaultValues()
}

func setDefaultValues() {
	viper.SetDefault("bmc.host", "")
	viper.SetDefault("bmc.port", 623)
	viper.SetDefault("bmc.username", "")
	viper.SetDefault("bmc.password", "")
	viper.SetDefault("bmc.kg", "")
	viper.SetDefault("bmc.interface", InterfaceLanPlus)
	viper.SetDefault("bmc.executable", "/usr/bin/ipmitool")
	viper.SetDefault("bmc.timeout", 10*time.Second)

	viper.SetDefault("controller.pollingRate", 10*time.Second)
	viper.SetDefault("controller.degradedRetryRate", 30*time.Second)
	viper.SetDefault("controller.modeSwitchDelay", 1*time.Second)
	viper.SetDefault("controller.restoreTimeout", 5*time.Second)

	viper.SetDefault("curve.minSpeed", 0)
	viper.SetDefault("curve.maxSpeed", 100)
	viper.SetDefault("curve.midPoint", 75.0)
	viper.SetDefault("curve.steepness", 0.15)
	viper.SetDefault("curve.defaultSpeed", 30)

	viper.SetDefault("dashboard.enabled", true)
	viper.SetDefault("dashboard.clearScreen", true)
	viper.SetDefault("dashboard.historySize", 60)

	viper.SetDefault("api.enabled", false)
	viper.SetDefault("api.host", "localhost")
	viper.SetDefault("api.port", 9001)

	viper.SetDefault("statistics.enabled", false)
	viper.SetDefault("statistics.port", 9000)

	viper.SetDefault("pidFile", "/run/bmc2go.pid")
}

// DetectAndReadConfigFile detects the path of the first existing config file
// and reads it. A missing file is not an error, the BMC connection can be
// configured entirely through the environment.
func DetectAndReadConfigFile() string {
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			ui.Fatal("Error reading config file, %s", err)
		}
		ui.Warning("No config file found, using defaults and environment")
	}
	// this is only populated _after_ ReadInConfig()
	return viper.ConfigFileUsed()
}

// LoadConfig loads the configuration into CurrentConfig.
func LoadConfig() {
	config, err := decode()
	if err != nil {
		ui.Fatal("unable to decode into struct, %v", err)
	}
	CurrentConfig = config
}

func decode() (Configuration, error) {
	var config Configuration
	err := viper.Unmarshal(&config, viper.DecodeHook(
		mapstructure.ComposeDecodeHookFunc(
			KgKeyHookFunc(),
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	))
	return config, err
}
