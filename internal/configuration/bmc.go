package configuration

import "time"

const (
	InterfaceLan     = "lan"
	InterfaceLanPlus = "lanplus"
)

type BmcConfig struct {
	Host     string `json:"host"`
	Port     int    `json:"port"`
	Username string `json:"username"`
	Password string `json:"password"`
	// Kg is the optional BMC key used during RMCP+ session establishment
	Kg        KgKey  `json:"kg"`
	Interface string `json:"interface"`
	// Executable is the path of the ipmitool binary
	Executable string        `json:"executable"`
	Timeout    time.Duration `json:"timeout"`
}

type ControllerConfig struct {
	PollingRate       time.Duration `json:"pollingRate"`
	DegradedRetryRate time.Duration `json:"degradedRetryRate"`
	// ModeSwitchDelay gives the BMC time to settle after entering manual mode
	ModeSwitchDelay time.Duration `json:"modeSwitchDelay"`
	// RestoreTimeout bounds the final restoration of automatic fan control
	RestoreTimeout time.Duration `json:"restoreTimeout"`
}

type CurveConfig struct {
	MinSpeed     int     `json:"minSpeed"`
	MaxSpeed     int     `json:"maxSpeed"`
	MidPoint     float64 `json:"midPoint"`
	Steepness    float64 `json:"steepness"`
	DefaultSpeed int     `json:"defaultSpeed"`
}
