package sensors

import (
	"fmt"
	"strings"
)

// genericTempName is the name some BMCs use for every processor temperature sensor.
const genericTempName = "Temp"

var cpuNamePatterns = []string{"CPU", "Processor", "Core", "Die", "Package", "PROC"}

// CpuSource describes which policy produced the CPU temperature set.
type CpuSource int

const (
	CpuSourceNone CpuSource = iota
	CpuSourcePattern
	CpuSourceGenericTemp
	CpuSourceAllTemperatures
)

func (s CpuSource) String() string {
	switch s {
	case CpuSourcePattern:
		return "name pattern"
	case CpuSourceGenericTemp:
		return "generic Temp sensors"
	case CpuSourceAllTemperatures:
		return "all temperature sensors"
	default:
		return "none"
	}
}

type Classification struct {
	Temperatures    []Classified
	Fans            []Classified
	CpuTemperatures []Classified
	CpuSource       CpuSource
}

// Classify derives all collections of the given readings in a single call.
// The input is not modified.
func Classify(readings []Reading) Classification {
	temperatures := Temperatures(readings)
	cpuTemperatures, source := resolveCpuTemperatures(temperatures)
	return Classification{
		Temperatures:    temperatures,
		Fans:            Fans(readings),
		CpuTemperatures: cpuTemperatures,
		CpuSource:       source,
	}
}

// Temperatures returns all temperature readings with a present value.
func Temperatures(readings []Reading) []Classified {
	return filterKind(readings, KindTemperature)
}

// Fans returns all fan readings with a present value.
func Fans(readings []Reading) []Classified {
	return filterKind(readings, KindFan)
}

// CpuTemperatures returns the temperature readings that represent the processors.
func CpuTemperatures(readings []Reading) []Classified {
	result, _ := resolveCpuTemperatures(Temperatures(readings))
	return result
}

func filterKind(readings []Reading, kind Kind) []Classified {
	result := []Classified{}
	for _, r := range readings {
		if r.Kind != kind || !r.Available {
			continue
		}
		result = append(result, newClassified(r))
	}
	return result
}

// resolveCpuTemperatures prefers pattern matches, then generic "Temp" sensors
// and finally falls back to every temperature.
func resolveCpuTemperatures(temperatures []Classified) ([]Classified, CpuSource) {
	if len(temperatures) == 0 {
		return []Classified{}, CpuSourceNone
	}

	var matched []Classified
	var generic []Classified
	for _, t := range temperatures {
		if t.Name == genericTempName {
			t.Label = fmt.Sprintf("CPU %d (%s)", len(generic)+1, genericTempName)
			generic = append(generic, t)
			continue
		}
		if matchesCpuPattern(t.Name) {
			matched = append(matched, t)
		}
	}

	switch {
	case len(matched) > 0:
		return matched, CpuSourcePattern
	case len(generic) > 0:
		return generic, CpuSourceGenericTemp
	default:
		result := make([]Classified, len(temperatures))
		copy(result, temperatures)
		return result, CpuSourceAllTemperatures
	}
}

func matchesCpuPattern(name string) bool {
	lower := strings.ToLower(name)
	for _, pattern := range cpuNamePatterns {
		if strings.Contains(lower, strings.ToLower(pattern)) {
			return true
		}
	}
	return false
}
