package testingutils

import (
	"context"
	"errors"
	"sync"

	"github.com/markusressel/bmc2go/internal/bmc"
	"github.com/markusressel/bmc2go/internal/sensors"
)

var ErrMock = errors.New("mock failure")

type RawCall struct {
	NetFn   uint8
	Command uint8
	Data    []byte
}

// MockSession is an in-memory bmc.Session that records all raw commands.
type MockSession struct {
	mu sync.Mutex

	// Readings is returned by ReadSensors, one entry per call, the last one repeats
	Readings [][]sensors.Reading
	// ReadErrors is returned by ReadSensors, one entry per call, the last one repeats
	ReadErrors []error
	// RawErr returns an error for the given raw call, if set
	RawErr func(call RawCall) error
	// OnRead is called on every ReadSensors call, before returning
	OnRead func(call int)

	RawCalls  []RawCall
	ReadCalls int
	Closed    bool
}

func (s *MockSession) ReadSensors(ctx context.Context) ([]sensors.Reading, error) {
	s.mu.Lock()
	call := s.ReadCalls
	s.ReadCalls++
	var readings []sensors.Reading
	if len(s.Readings) > 0 {
		readings = s.Readings[min(call, len(s.Readings)-1)]
	}
	var err error
	if len(s.ReadErrors) > 0 {
		err = s.ReadErrors[min(call, len(s.ReadErrors)-1)]
	}
	onRead := s.OnRead
	s.mu.Unlock()

	if onRead != nil {
		onRead(call)
	}
	if err != nil {
		return nil, err
	}
	return readings, nil
}

func (s *MockSession) RawCommand(ctx context.Context, netFn uint8, command uint8, data []byte) ([]byte, error) {
	call := RawCall{NetFn: netFn, Command: command, Data: append([]byte{}, data...)}

	s.mu.Lock()
	s.RawCalls = append(s.RawCalls, call)
	rawErr := s.RawErr
	s.mu.Unlock()

	if rawErr != nil {
		if err := rawErr(call); err != nil {
			return nil, err
		}
	}
	return []byte{}, nil
}

func (s *MockSession) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Closed = true
	return nil
}

// RawPayloads returns the data of all recorded raw calls.
func (s *MockSession) RawPayloads() [][]byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	result := [][]byte{}
	for _, call := range s.RawCalls {
		result = append(result, call.Data)
	}
	return result
}

type MockConnector struct {
	Session *MockSession
	Err     error

	ConnectCalls int
}

func (c *MockConnector) Connect(ctx context.Context) (bmc.Session, error) {
	c.ConnectCalls++
	if c.Err != nil {
		return nil, c.Err
	}
	return c.Session, nil
}

func Temperature(name string, value float64) sensors.Reading {
	return sensors.Reading{Name: name, Kind: sensors.KindTemperature, Value: value, Available: true, Units: "degrees C", Health: sensors.HealthOk}
}

func Fan(name string, rpm float64) sensors.Reading {
	return sensors.Reading{Name: name, Kind: sensors.KindFan, Value: rpm, Available: true, Units: "RPM", Health: sensors.HealthOk}
}
