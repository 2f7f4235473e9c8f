package curves

import (
	"math"

	"github.com/markusressel/bmc2go/internal/sensors"
	"github.com/markusressel/bmc2go/internal/util"
)

type sigmoidSpeedCurve struct {
	minSpeed     float64
	maxSpeed     float64
	midPoint     float64
	steepness    float64
	defaultSpeed int
}

// Evaluate uses the hottest of the given temperatures, returning the
// default speed if there are none.
func (c *sigmoidSpeedCurve) Evaluate(cpuTemperatures []sensors.Classified) int {
	if len(cpuTemperatures) <= 0 {
		return util.Coerce(c.defaultSpeed, MinSpeedValue, MaxSpeedValue)
	}

	maxTemp := util.Max(sensors.Values(cpuTemperatures))
	return c.speedFor(maxTemp)
}

func (c *sigmoidSpeedCurve) speedFor(temperature float64) int {
	speed := c.minSpeed + (c.maxSpeed-c.minSpeed)/(1+math.Exp(-c.steepness*(temperature-c.midPoint)))
	if math.IsNaN(speed) {
		return util.Coerce(c.defaultSpeed, MinSpeedValue, MaxSpeedValue)
	}
	return util.Coerce(int(math.Round(speed)), MinSpeedValue, MaxSpeedValue)
}

// Sample evaluates the curve for every temperature in [from..to] with the given step.
func Sample(curve SpeedCurve, from float64, to float64, step float64) (temperatures []float64, speeds []float64) {
	for t := from; t <= to; t += step {
		temperatures = append(temperatures, t)
		speed := curve.Evaluate([]sensors.Classified{{Value: t}})
		speeds = append(speeds, float64(speed))
	}
	return temperatures, speeds
}
