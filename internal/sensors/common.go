package sensors

import "fmt"

type Kind int

const (
	KindOther Kind = iota
	KindTemperature
	KindFan
)

func (k Kind) String() string {
	switch k {
	case KindTemperature:
		return "temperature"
	case KindFan:
		return "fan"
	default:
		return "other"
	}
}

func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *Kind) UnmarshalText(text []byte) error {
	for _, candidate := range []Kind{KindOther, KindTemperature, KindFan} {
		if candidate.String() == string(text) {
			*k = candidate
			return nil
		}
	}
	return fmt.Errorf("unknown sensor kind: %s", text)
}

// Health is the threshold status the BMC reports alongside a reading.
type Health int

const (
	HealthUnknown Health = iota
	HealthOk
	HealthWarning
	HealthCritical
)

func (h Health) String() string {
	switch h {
	case HealthOk:
		return "ok"
	case HealthWarning:
		return "warning"
	case HealthCritical:
		return "critical"
	default:
		return "unknown"
	}
}

func (h Health) MarshalText() ([]byte, error) {
	return []byte(h.String()), nil
}

func (h *Health) UnmarshalText(text []byte) error {
	for _, candidate := range []Health{HealthUnknown, HealthOk, HealthWarning, HealthCritical} {
		if candidate.String() == string(text) {
			*h = candidate
			return nil
		}
	}
	return fmt.Errorf("unknown sensor health: %s", text)
}

// Reading is a single sensor sample as reported by the BMC.
// Value is only meaningful if Available is true.
type Reading struct {
	Name      string  `json:"name"`
	Kind      Kind    `json:"kind"`
	Value     float64 `json:"value"`
	Available bool    `json:"available"`
	Units     string  `json:"units"`
	Health    Health  `json:"health"`
}

func (r Reading) String() string {
	if !r.Available {
		return fmt.Sprintf("%s: N/A", r.Name)
	}
	return fmt.Sprintf("%s: %.1f %s", r.Name, r.Value, r.Units)
}

// Classified is a reading of a known kind with a present value.
type Classified struct {
	// Label is the name used for display, it differs from Name
	// for synthesized CPU labels.
	Label  string  `json:"label"`
	Name   string  `json:"name"`
	Value  float64 `json:"value"`
	Units  string  `json:"units"`
	Health Health  `json:"health"`
}

func newClassified(r Reading) Classified {
	return Classified{
		Label:  r.Name,
		Name:   r.Name,
		Value:  r.Value,
		Units:  r.Units,
		Health: r.Health,
	}
}

// Values returns the values of all given readings, in order.
func Values(readings []Classified) []float64 {
	result := make([]float64, 0, len(readings))
	for _, r := range readings {
		result = append(result, r.Value)
	}
	return result
}
