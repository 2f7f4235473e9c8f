package fans

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/markusressel/bmc2go/internal/bmc"
)

const (
	MaxSpeedValue = 100
	MinSpeedValue = 0

	// NetFnDellOem is the OEM network function used for fan control on Dell PowerEdge BMCs
	NetFnDellOem uint8 = 0x30
	// CmdFanControl is the fan control command of NetFnDellOem
	CmdFanControl uint8 = 0x30

	subCmdAutomaticMode uint8 = 0x00
	subCmdManualMode    uint8 = 0x01
	subCmdSetSpeed      uint8 = 0x02
	// allFans addresses every fan of the system
	allFans uint8 = 0xFF
)

var ErrSpeedOutOfRange = errors.New("fan speed out of range")

type ControlMode int

const (
	// ControlModeAutomatic lets the BMC control the fans based on its own thermal profile
	ControlModeAutomatic ControlMode = iota
	// ControlModeManual applies the last fixed speed that was set
	ControlModeManual
)

func (m ControlMode) String() string {
	switch m {
	case ControlModeManual:
		return "manual"
	default:
		return "automatic"
	}
}

// Controller sets the fan control mode and speed of all fans of a system.
type Controller interface {
	SetManualMode(ctx context.Context, enabled bool) error
	SetFanSpeed(ctx context.Context, percent int) error
	GetControlMode() ControlMode
}

// RawFanController drives the fans using Dell OEM raw commands.
type RawFanController struct {
	session bmc.Session

	mu   sync.Mutex
	mode ControlMode
}

func NewRawFanController(session bmc.Session) *RawFanController {
	return &RawFanController{
		session: session,
		mode:    ControlModeAutomatic,
	}
}

// SetManualMode enables or disables manual fan control. The held mode only
// changes if the BMC accepted the command.
func (c *RawFanController) SetManualMode(ctx context.Context, enabled bool) error {
	data := []byte{subCmdAutomaticMode, 0x00}
	mode := ControlModeAutomatic
	if enabled {
		data[0] = subCmdManualMode
		mode = ControlModeManual
	}

	if _, err := c.session.RawCommand(ctx, NetFnDellOem, CmdFanControl, data); err != nil {
		return fmt.Errorf("unable to switch to %s fan control: %w", mode, err)
	}

	c.mu.Lock()
	c.mode = mode
	c.mu.Unlock()
	return nil
}

// SetFanSpeed sets all fans to the given percentage in [0..100].
func (c *RawFanController) SetFanSpeed(ctx context.Context, percent int) error {
	if percent < MinSpeedValue || percent > MaxSpeedValue {
		return fmt.Errorf("%w: %d", ErrSpeedOutOfRange, percent)
	}

	data := []byte{subCmdSetSpeed, allFans, uint8(percent)}
	if _, err := c.session.RawCommand(ctx, NetFnDellOem, CmdFanControl, data); err != nil {
		return fmt.Errorf("unable to set fan speed to %d%%: %w", percent, err)
	}
	return nil
}

func (c *RawFanController) GetControlMode() ControlMode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mode
}
