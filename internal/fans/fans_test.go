package fans

import (
	"context"
	"errors"
	"testing"

	"github.com/markusressel/bmc2go/internal/testingutils"
	"github.com/stretchr/testify/assert"
)

func TestSetManualMode_RoundTrip(t *testing.T) {
	// GIVEN
	session := &testingutils.MockSession{}
	controller := NewRawFanController(session)

	// WHEN
	errOn := controller.SetManualMode(context.Background(), true)
	modeOn := controller.GetControlMode()
	errOff := controller.SetManualMode(context.Background(), false)
	modeOff := controller.GetControlMode()

	// THEN
	assert.NoError(t, errOn)
	assert.NoError(t, errOff)
	assert.Equal(t, ControlModeManual, modeOn)
	assert.Equal(t, ControlModeAutomatic, modeOff)
	assert.Equal(t, [][]byte{{0x01, 0x00}, {0x00, 0x00}}, session.RawPayloads())
	for _, call := range session.RawCalls {
		assert.Equal(t, NetFnDellOem, call.NetFn)
		assert.Equal(t, CmdFanControl, call.Command)
	}
}

func TestSetManualMode_Idempotent(t *testing.T) {
	// GIVEN
	session := &testingutils.MockSession{}
	controller := NewRawFanController(session)

	// WHEN
	_ = controller.SetManualMode(context.Background(), true)
	err := controller.SetManualMode(context.Background(), true)

	// THEN
	assert.NoError(t, err)
	assert.Equal(t, ControlModeManual, controller.GetControlMode())
	assert.Equal(t, [][]byte{{0x01, 0x00}, {0x01, 0x00}}, session.RawPayloads())
}

func TestSetManualMode_FailureKeepsMode(t *testing.T) {
	// GIVEN
	session := &testingutils.MockSession{
		RawErr: func(call testingutils.RawCall) error { return testingutils.ErrMock },
	}
	controller := NewRawFanController(session)

	// WHEN
	err := controller.SetManualMode(context.Background(), true)

	// THEN
	assert.ErrorIs(t, err, testingutils.ErrMock)
	assert.Equal(t, ControlModeAutomatic, controller.GetControlMode())
}

func TestSetFanSpeed(t *testing.T) {
	// GIVEN
	session := &testingutils.MockSession{}
	controller := NewRawFanController(session)

	// WHEN
	err := controller.SetFanSpeed(context.Background(), 68)

	// THEN
	assert.NoError(t, err)
	assert.Equal(t, [][]byte{{0x02, 0xFF, 68}}, session.RawPayloads())
}

func TestSetFanSpeed_Bounds(t *testing.T) {
	// GIVEN
	session := &testingutils.MockSession{}
	controller := NewRawFanController(session)

	// WHEN
	errLow := controller.SetFanSpeed(context.Background(), -1)
	errHigh := controller.SetFanSpeed(context.Background(), 101)
	errMin := controller.SetFanSpeed(context.Background(), 0)
	errMax := controller.SetFanSpeed(context.Background(), 100)

	// THEN
	assert.True(t, errors.Is(errLow, ErrSpeedOutOfRange))
	assert.True(t, errors.Is(errHigh, ErrSpeedOutOfRange))
	assert.NoError(t, errMin)
	assert.NoError(t, errMax)
	assert.Equal(t, [][]byte{{0x02, 0xFF, 0}, {0x02, 0xFF, 100}}, session.RawPayloads())
}

func TestSetFanSpeed_FailureKeepsMode(t *testing.T) {
	// GIVEN
	session := &testingutils.MockSession{}
	controller := NewRawFanController(session)
	_ = controller.SetManualMode(context.Background(), true)
	session.RawErr = func(call testingutils.RawCall) error { return testingutils.ErrMock }

	// WHEN
	err := controller.SetFanSpeed(context.Background(), 50)

	// THEN
	assert.ErrorIs(t, err, testingutils.ErrMock)
	assert.Equal(t, ControlModeManual, controller.GetControlMode())
}
