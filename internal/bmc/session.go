package bmc

import (
	"context"
	"errors"

	"github.com/markusressel/bmc2go/internal/sensors"
)

var ErrSessionClosed = errors.New("session closed")

// Session is an authenticated connection to a BMC.
type Session interface {
	// ReadSensors returns all sensor readings in the order reported by the BMC
	ReadSensors(ctx context.Context) ([]sensors.Reading, error)
	// RawCommand sends a raw IPMI request and returns the response data
	RawCommand(ctx context.Context, netFn uint8, command uint8, data []byte) ([]byte, error)
	Close() error
}

type Connector interface {
	Connect(ctx context.Context) (Session, error)
}
