package bmc

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/markusressel/bmc2go/internal/configuration"
	"github.com/markusressel/bmc2go/internal/sensors"
	"github.com/markusressel/bmc2go/internal/ui"
	"github.com/markusressel/bmc2go/internal/util"
)

const passwordEnvVariable = "IPMI_PASSWORD"

type commandRunner func(ctx context.Context, executable string, args []string, env []string, timeout time.Duration) (string, error)

// IpmitoolConnector establishes sessions by invoking ipmitool over LAN.
type IpmitoolConnector struct {
	Config configuration.BmcConfig

	execute commandRunner
}

func NewIpmitoolConnector(config configuration.BmcConfig) *IpmitoolConnector {
	return &IpmitoolConnector{
		Config:  config,
		execute: util.SafeCmdExecution,
	}
}

// Connect verifies that the BMC is reachable with the configured credentials.
func (c *IpmitoolConnector) Connect(ctx context.Context) (Session, error) {
	session := &ipmitoolSession{
		config:  c.Config,
		execute: c.execute,
	}

	if _, err := session.run(ctx, "mc", "info"); err != nil {
		return nil, fmt.Errorf("unable to establish session with %s:%d: %w", c.Config.Host, c.Config.Port, err)
	}
	ui.Debug("Established session with %s:%d as %s", c.Config.Host, c.Config.Port, c.Config.Username)

	return session, nil
}

type ipmitoolSession struct {
	config  configuration.BmcConfig
	execute commandRunner

	mu     sync.Mutex
	closed bool
}

func (s *ipmitoolSession) ReadSensors(ctx context.Context) ([]sensors.Reading, error) {
	output, err := s.run(ctx, "sensor", "list")
	if err != nil {
		return nil, fmt.Errorf("unable to read sensors: %w", err)
	}
	return ParseSensorList(output)
}

func (s *ipmitoolSession) RawCommand(ctx context.Context, netFn uint8, command uint8, data []byte) ([]byte, error) {
	args := []string{"raw", formatByte(netFn), formatByte(command)}
	for _, b := range data {
		args = append(args, formatByte(b))
	}

	output, err := s.run(ctx, args...)
	if err != nil {
		return nil, fmt.Errorf("raw command %s %s failed: %w", formatByte(netFn), formatByte(command), err)
	}
	return ParseRawResponse(output)
}

func (s *ipmitoolSession) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *ipmitoolSession) run(ctx context.Context, command ...string) (string, error) {
	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if closed {
		return "", ErrSessionClosed
	}

	args := append(connectionArgs(s.config), command...)
	var env []string
	if len(s.config.Password) > 0 {
		env = []string{passwordEnvVariable + "=" + s.config.Password}
	}
	return s.execute(ctx, s.config.Executable, args, env, s.config.Timeout)
}

// connectionArgs never contains the password, it is passed through the environment.
func connectionArgs(config configuration.BmcConfig) []string {
	args := []string{
		"-I", config.Interface,
		"-H", config.Host,
		"-p", strconv.Itoa(config.Port),
		"-U", config.Username,
	}
	if len(config.Password) > 0 {
		args = append(args, "-E")
	}
	if len(config.Kg) > 0 {
		args = append(args, "-y", config.Kg.Hex())
	}
	return args
}
