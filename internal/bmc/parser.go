package bmc

import (
	"encoding/hex"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/markusressel/bmc2go/internal/sensors"
)

const (
	unitsCelsius    = "degrees c"
	unitsFahrenheit = "degrees f"
	unitsRpm        = "rpm"

	valueNotAvailable = "na"
)

// ParseSensorList parses the pipe separated output of "ipmitool sensor list".
// Lines that cannot be parsed are skipped.
func ParseSensorList(output string) ([]sensors.Reading, error) {
	var result []sensors.Reading
	nonEmptyLines := 0
	for _, line := range strings.Split(output, "\n") {
		if len(strings.TrimSpace(line)) <= 0 {
			continue
		}
		nonEmptyLines++
		reading, ok := parseSensorLine(line)
		if !ok {
			continue
		}
		result = append(result, reading)
	}

	if nonEmptyLines > 0 && len(result) <= 0 {
		return nil, errors.New("unexpected sensor list format")
	}
	return result, nil
}

func parseSensorLine(line string) (sensors.Reading, bool) {
	fields := strings.Split(line, "|")
	if len(fields) < 4 {
		return sensors.Reading{}, false
	}
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}

	name := fields[0]
	if len(name) <= 0 {
		return sensors.Reading{}, false
	}

	reading := sensors.Reading{
		Name:   name,
		Units:  fields[2],
		Health: parseHealth(fields[3]),
	}

	units := strings.ToLower(fields[2])
	switch units {
	case unitsCelsius, unitsFahrenheit:
		reading.Kind = sensors.KindTemperature
	case unitsRpm:
		reading.Kind = sensors.KindFan
	default:
		reading.Kind = sensors.KindOther
	}

	rawValue := strings.ToLower(fields[1])
	if rawValue != valueNotAvailable {
		value, err := strconv.ParseFloat(rawValue, 64)
		if err == nil && !math.IsNaN(value) && !math.IsInf(value, 0) {
			reading.Value = value
			reading.Available = true
		}
	}

	if reading.Kind == sensors.KindTemperature && units == unitsFahrenheit {
		reading.Value = (reading.Value - 32) * 5 / 9
		reading.Units = "degrees C"
	}

	return reading, true
}

func parseHealth(status string) sensors.Health {
	switch strings.ToLower(status) {
	case "ok":
		return sensors.HealthOk
	case "nc":
		return sensors.HealthWarning
	case "cr", "nr":
		return sensors.HealthCritical
	default:
		return sensors.HealthUnknown
	}
}

// ParseRawResponse parses the hex bytes printed by "ipmitool raw".
func ParseRawResponse(output string) ([]byte, error) {
	result := []byte{}
	for _, field := range strings.Fields(output) {
		b, err := hex.DecodeString(field)
		if err != nil || len(b) != 1 {
			return nil, fmt.Errorf("invalid response byte '%s'", field)
		}
		result = append(result, b[0])
	}
	return result, nil
}

func formatByte(b uint8) string {
	return fmt.Sprintf("0x%02x", b)
}
