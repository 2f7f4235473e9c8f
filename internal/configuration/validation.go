package configuration

import (
	"errors"
	"fmt"
	"os"

	"github.com/markusressel/bmc2go/internal/ui"
	"golang.org/x/exp/slices"
)

// maxKgKeyLength is the size limit of the BMC key in IPMI v2.0
const maxKgKeyLength = 20

var supportedInterfaces = []string{InterfaceLan, InterfaceLanPlus}

func Validate(configPath string) error {
	err := validateConfig(&CurrentConfig)
	if err != nil {
		return err
	}

	if len(configPath) > 0 && len(CurrentConfig.Bmc.Password) > 0 {
		warnIfWorldReadable(configPath)
	}
	return nil
}

func validateConfig(config *Configuration) error {
	if err := validateBmc(&config.Bmc); err != nil {
		return err
	}
	if err := validateController(&config.Controller); err != nil {
		return err
	}
	if err := validateCurve(&config.Curve); err != nil {
		return err
	}
	if config.Dashboard.HistorySize <= 0 {
		return fmt.Errorf("dashboard: historySize must be positive, was %d", config.Dashboard.HistorySize)
	}
	if config.Api.Enabled && !isValidPort(config.Api.Port) {
		return fmt.Errorf("api: invalid port %d", config.Api.Port)
	}
	if config.Statistics.Enabled && !isValidPort(config.Statistics.Port) {
		return fmt.Errorf("statistics: invalid port %d", config.Statistics.Port)
	}
	return nil
}

func validateBmc(config *BmcConfig) error {
	if len(config.Host) <= 0 {
		return errors.New("bmc: host is missing")
	}
	if len(config.Username) <= 0 {
		return errors.New("bmc: username is missing")
	}
	if !isValidPort(config.Port) {
		return fmt.Errorf("bmc: invalid port %d", config.Port)
	}
	if !slices.Contains(supportedInterfaces, config.Interface) {
		return fmt.Errorf("bmc: unsupported interface '%s', use one of: %v", config.Interface, supportedInterfaces)
	}
	if len(config.Kg) > maxKgKeyLength {
		return fmt.Errorf("bmc: kg key exceeds %d bytes", maxKgKeyLength)
	}
	if len(config.Kg) > 0 && config.Interface != InterfaceLanPlus {
		return fmt.Errorf("bmc: kg key requires the '%s' interface", InterfaceLanPlus)
	}
	if len(config.Executable) <= 0 {
		return errors.New("bmc: executable is missing")
	}
	if config.Timeout <= 0 {
		return fmt.Errorf("bmc: timeout must be positive, was %s", config.Timeout)
	}
	return nil
}

func validateController(config *ControllerConfig) error {
	if config.PollingRate <= 0 {
		return fmt.Errorf("controller: pollingRate must be positive, was %s", config.PollingRate)
	}
	if config.DegradedRetryRate <= 0 {
		return fmt.Errorf("controller: degradedRetryRate must be positive, was %s", config.DegradedRetryRate)
	}
	if config.ModeSwitchDelay < 0 {
		return fmt.Errorf("controller: modeSwitchDelay must not be negative, was %s", config.ModeSwitchDelay)
	}
	if config.RestoreTimeout <= 0 {
		return fmt.Errorf("controller: restoreTimeout must be positive, was %s", config.RestoreTimeout)
	}
	return nil
}

func validateCurve(config *CurveConfig) error {
	if config.MinSpeed < 0 || config.MaxSpeed > 100 {
		return fmt.Errorf("curve: speed range must be within [0..100], was [%d..%d]", config.MinSpeed, config.MaxSpeed)
	}
	if config.MinSpeed >= config.MaxSpeed {
		return fmt.Errorf("curve: minSpeed (%d) must be lower than maxSpeed (%d)", config.MinSpeed, config.MaxSpeed)
	}
	if config.Steepness <= 0 {
		return fmt.Errorf("curve: steepness must be positive, was %v", config.Steepness)
	}
	if config.DefaultSpeed < 0 || config.DefaultSpeed > 100 {
		return fmt.Errorf("curve: defaultSpeed must be within [0..100], was %d", config.DefaultSpeed)
	}
	return nil
}

func isValidPort(port int) bool {
	return port > 0 && port <= 65535
}

func warnIfWorldReadable(path string) {
	info, err := os.Stat(path)
	if err != nil {
		return
	}
	if info.Mode()&os.FileMode(0o004) != 0 {
		ui.Warning("Config file '%s' contains the BMC password and is readable by others", path)
	}
}
