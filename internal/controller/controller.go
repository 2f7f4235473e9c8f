package controller

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/markusressel/bmc2go/internal/bmc"
	"github.com/markusressel/bmc2go/internal/configuration"
	"github.com/markusressel/bmc2go/internal/curves"
	"github.com/markusressel/bmc2go/internal/fans"
	"github.com/markusressel/bmc2go/internal/sensors"
	"github.com/markusressel/bmc2go/internal/status"
	"github.com/markusressel/bmc2go/internal/ui"
)

// Display shows the result of every control cycle.
type Display interface {
	Show(frame ui.Frame)
	ShowDegraded(timestamp time.Time, readings []sensors.Reading, cause error)
}

type sleepFunc func(ctx context.Context, d time.Duration) error

// Supervisor runs the control loop against a single BMC.
type Supervisor struct {
	connector bmc.Connector
	curve     curves.SpeedCurve
	display   Display
	store     *status.Store
	config    configuration.ControllerConfig

	newFanController func(session bmc.Session) fans.Controller
	sleep            sleepFunc
	now              func() time.Time

	mu            sync.Mutex
	state         State
	lastCpuSource sensors.CpuSource
}

func NewSupervisor(
	connector bmc.Connector,
	curve curves.SpeedCurve,
	display Display,
	store *status.Store,
	config configuration.ControllerConfig,
) *Supervisor {
	return &Supervisor{
		connector: connector,
		curve:     curve,
		display:   display,
		store:     store,
		config:    config,
		newFanController: func(session bmc.Session) fans.Controller {
			return fans.NewRawFanController(session)
		},
		sleep: sleepContext,
		now:   time.Now,
	}
}

func (s *Supervisor) GetState() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Supervisor) setState(state State) {
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
	s.store.SetState(state.String())
	ui.Debug("Controller state: %s", state)
}

// Run connects to the BMC and controls the fans until ctx is done.
// Once a session is established, automatic fan control is restored
// exactly once before Run returns, even if the loop panics.
// Returns nil if the loop was stopped through ctx.
func (s *Supervisor) Run(ctx context.Context) (err error) {
	s.setState(StateInitializing)
	session, err := s.connector.Connect(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return newError(FatalInit, "connect", err)
	}
	fanController := s.newFanController(session)

	defer func() {
		if r := recover(); r != nil {
			err = newError(Unexpected, s.GetState().String(), fmt.Errorf("panic: %v", r))
		}
		if err != nil {
			ui.Error("Controller failed: %v", err)
		}
		s.terminate(ctx, session, fanController)
	}()

	return s.loop(ctx, session, fanController)
}

func (s *Supervisor) loop(ctx context.Context, session bmc.Session, fanController fans.Controller) error {
	s.setState(StateEnterManual)
	if err := fanController.SetManualMode(ctx, true); err != nil {
		s.reportActuationFailure(newError(RecoverableActuate, "enter manual mode", err))
	} else {
		ui.Info("Switched to manual fan control")
	}
	s.store.SetControlMode(fanController.GetControlMode().String())
	if s.sleep(ctx, s.config.ModeSwitchDelay) != nil {
		return nil
	}

	for {
		if ctx.Err() != nil {
			return nil
		}

		s.setState(StatePolling)
		readings, err := session.ReadSensors(ctx)
		if ctx.Err() != nil {
			return nil
		}
		classification := sensors.Classify(readings)
		if err != nil {
			ui.Warning("%v", newError(RecoverableSample, "read sensors", err))
		} else {
			s.store.UpdateReadings(readings)
			s.reportCpuSource(classification)
		}

		if err != nil || len(classification.CpuTemperatures) <= 0 {
			s.setState(StateDegradedWait)
			timestamp := s.now()
			s.store.RecordDegraded(timestamp, err)
			s.display.ShowDegraded(timestamp, readings, err)
			if s.sleep(ctx, s.config.DegradedRetryRate) != nil {
				return nil
			}
			continue
		}

		s.setState(StateActuating)
		timestamp := s.now()
		targetSpeed := s.curve.Evaluate(classification.CpuTemperatures)
		if err := fanController.SetFanSpeed(ctx, targetSpeed); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			s.reportActuationFailure(newError(RecoverableActuate, "set fan speed", err))
		}
		s.store.RecordCycle(timestamp, classification, targetSpeed)

		if ctx.Err() != nil {
			return nil
		}
		s.setState(StateDisplaying)
		s.show(ctx, session, timestamp, classification, targetSpeed)

		if ctx.Err() != nil {
			return nil
		}
		s.setState(StateAwaitingNextCycle)
		if s.sleep(ctx, s.config.PollingRate) != nil {
			return nil
		}
	}
}

// show re-reads the sensors to display up to date fan speeds.
func (s *Supervisor) show(ctx context.Context, session bmc.Session, timestamp time.Time, classification sensors.Classification, targetSpeed int) {
	fanReadings := []sensors.Classified{}
	readings, err := session.ReadSensors(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		ui.Warning("Unable to read fan speeds: %v", err)
	} else {
		fanReadings = sensors.Fans(readings)
	}
	s.store.RecordFans(fanReadings)

	snapshot := s.store.Snapshot()
	s.display.Show(ui.Frame{
		Timestamp:       timestamp,
		CpuTemperatures: classification.CpuTemperatures,
		Fans:            fanReadings,
		TargetSpeed:     targetSpeed,
		History:         s.store.History(),
		Peak:            snapshot.PeakCpuTemperature,
	})
}

// terminate restores automatic fan control, bounded by the restore timeout.
// A failure is reported but not retried.
func (s *Supervisor) terminate(ctx context.Context, session bmc.Session, fanController fans.Controller) {
	s.setState(StateTerminating)

	restoreCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.config.RestoreTimeout)
	defer cancel()

	ui.Info("Restoring automatic fan control...")
	if err := fanController.SetManualMode(restoreCtx, false); err != nil {
		ui.Error("Unable to restore automatic fan control, fans may remain at a fixed speed: %v", err)
	} else {
		ui.Success("Automatic fan control restored")
	}
	s.store.SetControlMode(fanController.GetControlMode().String())

	if err := session.Close(); err != nil {
		ui.Warning("Error closing BMC session: %v", err)
	}
}

func (s *Supervisor) reportActuationFailure(err *Error) {
	ui.Error("%v", err)
	s.store.RecordActuationFailure(err)
}

// reportCpuSource logs which sensors are used whenever the policy changes.
func (s *Supervisor) reportCpuSource(classification sensors.Classification) {
	if classification.CpuSource == s.lastCpuSource {
		return
	}
	s.lastCpuSource = classification.CpuSource

	var names []string
	for _, t := range classification.CpuTemperatures {
		names = append(names, t.Label)
	}
	switch classification.CpuSource {
	case sensors.CpuSourceAllTemperatures:
		ui.Warning("No CPU temperature sensors identified, using all temperature sensors: %s", strings.Join(names, ", "))
	case sensors.CpuSourceNone:
		ui.Warning("No temperature sensors available")
	default:
		ui.Info("Using CPU temperature sensors (%s): %s", classification.CpuSource, strings.Join(names, ", "))
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
