package controller

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/markusressel/bmc2go/internal/configuration"
	"github.com/markusressel/bmc2go/internal/curves"
	"github.com/markusressel/bmc2go/internal/sensors"
	"github.com/markusressel/bmc2go/internal/status"
	"github.com/markusressel/bmc2go/internal/testingutils"
	"github.com/markusressel/bmc2go/internal/ui"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	manualOn  = []byte{0x01, 0x00}
	manualOff = []byte{0x00, 0x00}
)

type MockDisplay struct {
	Frames   []ui.Frame
	Degraded []error
	PanicOn  int
}

func (d *MockDisplay) Show(frame ui.Frame) {
	d.Frames = append(d.Frames, frame)
	if d.PanicOn > 0 && len(d.Frames) >= d.PanicOn {
		panic("display broken")
	}
}

func (d *MockDisplay) ShowDegraded(timestamp time.Time, readings []sensors.Reading, cause error) {
	d.Degraded = append(d.Degraded, cause)
}

// fakeSleeper returns immediately and cancels the context once the
// given number of sleeps of the given duration happened.
type fakeSleeper struct {
	durations []time.Duration
	cancelOn  time.Duration
	cancelAt  int
	cancel    context.CancelFunc
	count     int
}

func (f *fakeSleeper) sleep(ctx context.Context, d time.Duration) error {
	f.durations = append(f.durations, d)
	if d == f.cancelOn {
		f.count++
		if f.count >= f.cancelAt {
			f.cancel()
		}
	}
	return ctx.Err()
}

func createControllerConfig() configuration.ControllerConfig {
	return configuration.ControllerConfig{
		PollingRate:       10 * time.Second,
		DegradedRetryRate: 30 * time.Second,
		ModeSwitchDelay:   1 * time.Second,
		RestoreTimeout:    5 * time.Second,
	}
}

func createSupervisor(connector *testingutils.MockConnector, display *MockDisplay) (*Supervisor, *status.Store) {
	store := status.NewStore(10)
	supervisor := NewSupervisor(connector, curves.DefaultSpeedCurve(), display, store, createControllerConfig())
	return supervisor, store
}

func countPayload(payloads [][]byte, payload []byte) int {
	count := 0
	for _, p := range payloads {
		if bytes.Equal(p, payload) {
			count++
		}
	}
	return count
}

func TestRun_InitFailureIssuesNoModeCommand(t *testing.T) {
	// GIVEN
	session := &testingutils.MockSession{}
	connector := &testingutils.MockConnector{Session: session, Err: errors.New("connection refused")}
	supervisor, _ := createSupervisor(connector, &MockDisplay{})

	// WHEN
	err := supervisor.Run(context.Background())

	// THEN
	require.Error(t, err)
	assert.True(t, IsKind(err, FatalInit))
	assert.Empty(t, session.RawCalls)
	assert.Equal(t, 1, connector.ConnectCalls)
}

func TestRun_ControlCycle(t *testing.T) {
	// GIVEN
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	session := &testingutils.MockSession{
		Readings: [][]sensors.Reading{{
			testingutils.Temperature("CPU1 Temp", 80),
			testingutils.Temperature("CPU2 Temp", 60),
			testingutils.Temperature("Inlet Temp", 22),
			testingutils.Fan("Fan1", 5040),
		}},
	}
	display := &MockDisplay{}
	supervisor, store := createSupervisor(&testingutils.MockConnector{Session: session}, display)
	sleeper := &fakeSleeper{cancelOn: 10 * time.Second, cancelAt: 1, cancel: cancel}
	supervisor.sleep = sleeper.sleep

	// WHEN
	err := supervisor.Run(ctx)

	// THEN
	require.NoError(t, err)
	assert.Equal(t, [][]byte{manualOn, {0x02, 0xFF, 68}, manualOff}, session.RawPayloads())
	assert.Equal(t, []time.Duration{1 * time.Second, 10 * time.Second}, sleeper.durations)
	assert.True(t, session.Closed)

	require.Len(t, display.Frames, 1)
	frame := display.Frames[0]
	assert.Equal(t, 68, frame.TargetSpeed)
	assert.Len(t, frame.CpuTemperatures, 2)
	assert.Len(t, frame.Fans, 1)
	assert.Equal(t, []float64{80}, frame.History)

	snapshot := store.Snapshot()
	assert.Equal(t, 68, snapshot.TargetSpeed)
	assert.Equal(t, uint64(1), snapshot.Counters.Cycles)
	assert.Equal(t, "automatic", snapshot.ControlMode)
	assert.Equal(t, StateTerminating, supervisor.GetState())
}

func TestRun_InterruptDuringSleepRestoresOnce(t *testing.T) {
	// GIVEN
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	session := &testingutils.MockSession{
		Readings: [][]sensors.Reading{{testingutils.Temperature("CPU1 Temp", 50)}},
	}
	supervisor, _ := createSupervisor(&testingutils.MockConnector{Session: session}, &MockDisplay{})
	sleeper := &fakeSleeper{cancelOn: 10 * time.Second, cancelAt: 3, cancel: cancel}
	supervisor.sleep = sleeper.sleep

	// WHEN
	err := supervisor.Run(ctx)

	// THEN
	require.NoError(t, err)
	payloads := session.RawPayloads()
	assert.Equal(t, 1, countPayload(payloads, manualOff))
	assert.Equal(t, manualOff, payloads[len(payloads)-1])
	assert.Equal(t, 3, countPayload(payloads, []byte{0x02, 0xFF, 2}))
}

func TestRun_InterruptDuringModeSwitchDelay(t *testing.T) {
	// GIVEN
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	session := &testingutils.MockSession{}
	supervisor, _ := createSupervisor(&testingutils.MockConnector{Session: session}, &MockDisplay{})
	sleeper := &fakeSleeper{cancelOn: 1 * time.Second, cancelAt: 1, cancel: cancel}
	supervisor.sleep = sleeper.sleep

	// WHEN
	err := supervisor.Run(ctx)

	// THEN
	require.NoError(t, err)
	assert.Equal(t, [][]byte{manualOn, manualOff}, session.RawPayloads())
	assert.Equal(t, 0, session.ReadCalls)
}

func TestRun_DegradedWaitOnReadFailure(t *testing.T) {
	// GIVEN
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	session := &testingutils.MockSession{
		Readings:   [][]sensors.Reading{{testingutils.Temperature("CPU1 Temp", 75)}},
		ReadErrors: []error{testingutils.ErrMock, nil},
	}
	display := &MockDisplay{}
	supervisor, store := createSupervisor(&testingutils.MockConnector{Session: session}, display)
	sleeper := &fakeSleeper{cancelOn: 10 * time.Second, cancelAt: 1, cancel: cancel}
	supervisor.sleep = sleeper.sleep

	// WHEN
	err := supervisor.Run(ctx)

	// THEN
	require.NoError(t, err)
	assert.Equal(t, []time.Duration{1 * time.Second, 30 * time.Second, 10 * time.Second}, sleeper.durations)
	require.Len(t, display.Degraded, 1)
	assert.ErrorIs(t, display.Degraded[0], testingutils.ErrMock)
	assert.Equal(t, [][]byte{manualOn, {0x02, 0xFF, 50}, manualOff}, session.RawPayloads())

	counters := store.Snapshot().Counters
	assert.Equal(t, uint64(1), counters.SampleFailures)
	assert.Equal(t, uint64(1), counters.DegradedCycles)
}

func TestRun_DegradedWaitWithoutTemperatures(t *testing.T) {
	// GIVEN
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	session := &testingutils.MockSession{
		Readings: [][]sensors.Reading{{testingutils.Fan("Fan1", 3000)}},
	}
	display := &MockDisplay{}
	supervisor, _ := createSupervisor(&testingutils.MockConnector{Session: session}, display)
	sleeper := &fakeSleeper{cancelOn: 30 * time.Second, cancelAt: 2, cancel: cancel}
	supervisor.sleep = sleeper.sleep

	// WHEN
	err := supervisor.Run(ctx)

	// THEN
	require.NoError(t, err)
	assert.Equal(t, []error{nil, nil}, display.Degraded)
	assert.Empty(t, display.Frames)
	assert.Equal(t, [][]byte{manualOn, manualOff}, session.RawPayloads())
}

func TestRun_ActuationFailureContinues(t *testing.T) {
	// GIVEN
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	session := &testingutils.MockSession{
		Readings: [][]sensors.Reading{{testingutils.Temperature("Temp", 80)}},
		RawErr: func(call testingutils.RawCall) error {
			if call.Data[0] == 0x02 {
				return testingutils.ErrMock
			}
			return nil
		},
	}
	display := &MockDisplay{}
	supervisor, store := createSupervisor(&testingutils.MockConnector{Session: session}, display)
	sleeper := &fakeSleeper{cancelOn: 10 * time.Second, cancelAt: 2, cancel: cancel}
	supervisor.sleep = sleeper.sleep

	// WHEN
	err := supervisor.Run(ctx)

	// THEN
	require.NoError(t, err)
	assert.Len(t, display.Frames, 2)
	assert.Equal(t, "CPU 1 (Temp)", display.Frames[0].CpuTemperatures[0].Label)
	assert.Equal(t, uint64(2), store.Snapshot().Counters.ActuationFailures)
	assert.Equal(t, 1, countPayload(session.RawPayloads(), manualOff))
}

func TestRun_EnterManualFailureStillRuns(t *testing.T) {
	// GIVEN
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	session := &testingutils.MockSession{
		Readings: [][]sensors.Reading{{testingutils.Temperature("CPU1 Temp", 75)}},
		RawErr: func(call testingutils.RawCall) error {
			if bytes.Equal(call.Data, manualOn) {
				return testingutils.ErrMock
			}
			return nil
		},
	}
	display := &MockDisplay{}
	supervisor, _ := createSupervisor(&testingutils.MockConnector{Session: session}, display)
	sleeper := &fakeSleeper{cancelOn: 10 * time.Second, cancelAt: 1, cancel: cancel}
	supervisor.sleep = sleeper.sleep

	// WHEN
	err := supervisor.Run(ctx)

	// THEN
	require.NoError(t, err)
	assert.Len(t, display.Frames, 1)
	assert.Equal(t, [][]byte{manualOn, {0x02, 0xFF, 50}, manualOff}, session.RawPayloads())
}

func TestRun_PanicRestoresAutomaticMode(t *testing.T) {
	// GIVEN
	session := &testingutils.MockSession{
		Readings: [][]sensors.Reading{{testingutils.Temperature("CPU1 Temp", 75)}},
	}
	display := &MockDisplay{PanicOn: 1}
	supervisor, _ := createSupervisor(&testingutils.MockConnector{Session: session}, display)
	supervisor.sleep = func(ctx context.Context, d time.Duration) error { return nil }

	// WHEN
	err := supervisor.Run(context.Background())

	// THEN
	require.Error(t, err)
	assert.True(t, IsKind(err, Unexpected))
	assert.Contains(t, err.Error(), "display broken")
	assert.Equal(t, [][]byte{manualOn, {0x02, 0xFF, 50}, manualOff}, session.RawPayloads())
	assert.True(t, session.Closed)
}

func TestRun_RestoreFailureIsNotRetried(t *testing.T) {
	// GIVEN
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	session := &testingutils.MockSession{
		RawErr: func(call testingutils.RawCall) error {
			if bytes.Equal(call.Data, manualOff) {
				return testingutils.ErrMock
			}
			return nil
		},
	}
	supervisor, store := createSupervisor(&testingutils.MockConnector{Session: session}, &MockDisplay{})
	sleeper := &fakeSleeper{cancelOn: 1 * time.Second, cancelAt: 1, cancel: cancel}
	supervisor.sleep = sleeper.sleep

	// WHEN
	err := supervisor.Run(ctx)

	// THEN
	require.NoError(t, err)
	assert.Equal(t, [][]byte{manualOn, manualOff}, session.RawPayloads())
	assert.Equal(t, "manual", store.Snapshot().ControlMode)
	assert.True(t, session.Closed)
}

func TestRun_FanReadFailureShowsNoFans(t *testing.T) {
	// GIVEN
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	session := &testingutils.MockSession{
		Readings: [][]sensors.Reading{{
			testingutils.Temperature("CPU1 Temp", 75),
			testingutils.Fan("Fan1", 3000),
		}},
		ReadErrors: []error{nil, testingutils.ErrMock},
	}
	display := &MockDisplay{}
	supervisor, _ := createSupervisor(&testingutils.MockConnector{Session: session}, display)
	sleeper := &fakeSleeper{cancelOn: 10 * time.Second, cancelAt: 1, cancel: cancel}
	supervisor.sleep = sleeper.sleep

	// WHEN
	err := supervisor.Run(ctx)

	// THEN
	require.NoError(t, err)
	require.Len(t, display.Frames, 1)
	assert.Empty(t, display.Frames[0].Fans)
}

func TestRun_UsesRealSleepUntilCancelled(t *testing.T) {
	// GIVEN
	ctx, cancel := context.WithCancel(context.Background())
	session := &testingutils.MockSession{
		Readings: [][]sensors.Reading{{testingutils.Temperature("CPU1 Temp", 75)}},
		OnRead: func(call int) {
			if call >= 1 {
				cancel()
			}
		},
	}
	supervisor, _ := createSupervisor(&testingutils.MockConnector{Session: session}, &MockDisplay{})
	supervisor.config.ModeSwitchDelay = time.Millisecond

	// WHEN
	err := supervisor.Run(ctx)

	// THEN
	require.NoError(t, err)
	assert.Equal(t, 1, countPayload(session.RawPayloads(), manualOff))
}

func TestSleepContext(t *testing.T) {
	// GIVEN
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// WHEN
	err := sleepContext(ctx, time.Hour)

	// THEN
	assert.ErrorIs(t, err, context.Canceled)
	assert.NoError(t, sleepContext(context.Background(), time.Millisecond))
}

func TestErrorKinds(t *testing.T) {
	// GIVEN
	err := newError(RecoverableActuate, "set fan speed", testingutils.ErrMock)

	// THEN
	assert.True(t, IsKind(err, RecoverableActuate))
	assert.False(t, IsKind(err, Unexpected))
	assert.False(t, IsKind(testingutils.ErrMock, Unexpected))
	assert.ErrorIs(t, err, testingutils.ErrMock)
	assert.Equal(t, "set fan speed: mock failure", err.Error())
}
