package status

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/asecurityteam/rolling"
	"github.com/markusressel/bmc2go/internal/sensors"
	"github.com/markusressel/bmc2go/internal/util"
	cmap "github.com/orcaman/concurrent-map/v2"
	"github.com/qdm12/reprint"
)

type Counters struct {
	Cycles            uint64 `json:"cycles"`
	SampleFailures    uint64 `json:"sampleFailures"`
	ActuationFailures uint64 `json:"actuationFailures"`
	DegradedCycles    uint64 `json:"degradedCycles"`
}

// Snapshot is the state of the controller after the last cycle.
type Snapshot struct {
	Timestamp   time.Time `json:"timestamp"`
	State       string    `json:"state"`
	ControlMode string    `json:"controlMode"`
	Degraded    bool      `json:"degraded"`
	LastError   string    `json:"lastError,omitempty"`

	TargetSpeed     int                  `json:"targetSpeed"`
	CpuSource       string               `json:"cpuSource"`
	CpuTemperatures []sensors.Classified `json:"cpuTemperatures"`
	Fans            []sensors.Classified `json:"fans"`

	MaxCpuTemperature  float64 `json:"maxCpuTemperature"`
	PeakCpuTemperature float64 `json:"peakCpuTemperature"`
	AvgCpuTemperature  float64 `json:"avgCpuTemperature"`

	Counters Counters `json:"counters"`
}

// Store holds the latest controller data. It is written by the control loop
// and read concurrently by the dashboard, the api and the statistics exporter.
type Store struct {
	readings cmap.ConcurrentMap[string, sensors.Reading]

	mu          sync.RWMutex
	snapshot    Snapshot
	history     []float64
	historySize int
	peakWindow  *rolling.PointPolicy
}

func NewStore(historySize int) *Store {
	if historySize <= 0 {
		historySize = 1
	}
	return &Store{
		readings:    cmap.New[sensors.Reading](),
		historySize: historySize,
		peakWindow:  util.CreateRollingWindow(historySize),
		snapshot: Snapshot{
			CpuTemperatures: []sensors.Classified{},
			Fans:            []sensors.Classified{},
		},
	}
}

// SensorId returns the identifier of a sensor name, the occurrence
// distinguishes sensors that share the same name.
func SensorId(name string, occurrence int) string {
	id := strings.ToLower(strings.Join(strings.Fields(name), "_"))
	if occurrence > 1 {
		id = fmt.Sprintf("%s_%d", id, occurrence)
	}
	return id
}

// UpdateReadings replaces all stored readings at once.
func (s *Store) UpdateReadings(readings []sensors.Reading) {
	items := make(map[string]sensors.Reading, len(readings))
	occurrences := map[string]int{}
	for _, r := range readings {
		occurrences[r.Name]++
		items[SensorId(r.Name, occurrences[r.Name])] = r
	}
	next := cmap.New[sensors.Reading]()
	next.MSet(items)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.readings = next
}

func (s *Store) Readings() map[string]sensors.Reading {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.readings.Items()
}

func (s *Store) Reading(id string) (sensors.Reading, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.readings.Get(id)
}

// RecordCycle stores the result of a successful control cycle.
func (s *Store) RecordCycle(timestamp time.Time, classification sensors.Classification, targetSpeed int) {
	maxTemp := util.Max(sensors.Values(classification.CpuTemperatures))

	s.mu.Lock()
	defer s.mu.Unlock()

	s.history = append(s.history, maxTemp)
	if len(s.history) > s.historySize {
		s.history = s.history[len(s.history)-s.historySize:]
	}
	s.peakWindow.Append(maxTemp)

	s.snapshot.Timestamp = timestamp
	s.snapshot.Degraded = false
	s.snapshot.LastError = ""
	s.snapshot.TargetSpeed = targetSpeed
	s.snapshot.CpuSource = classification.CpuSource.String()
	s.snapshot.CpuTemperatures = classification.CpuTemperatures
	s.snapshot.MaxCpuTemperature = maxTemp
	s.snapshot.PeakCpuTemperature = util.GetWindowMax(s.peakWindow)
	s.snapshot.AvgCpuTemperature = util.Avg(s.history)
	s.snapshot.Counters.Cycles++
}

// RecordFans stores the fan readings shown for the last cycle.
func (s *Store) RecordFans(fans []sensors.Classified) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot.Fans = fans
}

// RecordDegraded marks the last cycle as degraded, cause may be nil if
// the sensors were readable but contained no CPU temperature.
// A failed read drops the stored readings, they are no longer current.
func (s *Store) RecordDegraded(timestamp time.Time, cause error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot.Timestamp = timestamp
	s.snapshot.Degraded = true
	s.snapshot.LastError = ""
	if cause != nil {
		s.readings = cmap.New[sensors.Reading]()
		s.snapshot.LastError = cause.Error()
		s.snapshot.Counters.SampleFailures++
	}
	s.snapshot.Counters.DegradedCycles++
}

func (s *Store) RecordActuationFailure(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot.LastError = err.Error()
	s.snapshot.Counters.ActuationFailures++
}

func (s *Store) SetState(state string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot.State = state
}

func (s *Store) SetControlMode(mode string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot.ControlMode = mode
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := s.snapshot
	result.CpuTemperatures = copyClassified(s.snapshot.CpuTemperatures)
	result.Fans = copyClassified(s.snapshot.Fans)
	return result
}

func copyClassified(readings []sensors.Classified) []sensors.Classified {
	if len(readings) <= 0 {
		return []sensors.Classified{}
	}
	return reprint.This(readings).([]sensors.Classified)
}

// History returns the max CPU temperature of recent cycles, oldest first.
func (s *Store) History() []float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]float64{}, s.history...)
}
