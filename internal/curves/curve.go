package curves

import (
	"github.com/markusressel/bmc2go/internal/configuration"
	"github.com/markusressel/bmc2go/internal/sensors"
)

const (
	MinSpeedValue = 0
	MaxSpeedValue = 100
)

type SpeedCurve interface {
	// Evaluate calculates the target fan speed for the given CPU temperatures,
	// returns a value in [0..100]
	Evaluate(cpuTemperatures []sensors.Classified) int
}

func NewSpeedCurve(config configuration.CurveConfig) SpeedCurve {
	return &sigmoidSpeedCurve{
		minSpeed:     float64(config.MinSpeed),
		maxSpeed:     float64(config.MaxSpeed),
		midPoint:     config.MidPoint,
		steepness:    config.Steepness,
		defaultSpeed: config.DefaultSpeed,
	}
}

// DefaultSpeedCurve returns the sigmoid centered on 75°C.
func DefaultSpeedCurve() SpeedCurve {
	return NewSpeedCurve(configuration.CurveConfig{
		MinSpeed:     0,
		MaxSpeed:     100,
		MidPoint:     75,
		Steepness:    0.15,
		DefaultSpeed: 30,
	})
}
