package internal

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"strconv"
	"syscall"
	"time"

	"github.com/markusressel/bmc2go/internal/api"
	"github.com/markusressel/bmc2go/internal/bmc"
	"github.com/markusressel/bmc2go/internal/configuration"
	"github.com/markusressel/bmc2go/internal/controller"
	"github.com/markusressel/bmc2go/internal/curves"
	"github.com/markusressel/bmc2go/internal/pid"
	"github.com/markusressel/bmc2go/internal/statistics"
	"github.com/markusressel/bmc2go/internal/status"
	"github.com/markusressel/bmc2go/internal/ui"
	"github.com/oklog/run"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const shutdownTimeout = 5 * time.Second

// RunDaemon runs the control loop until it is interrupted and returns the
// exit code of the process.
func RunDaemon() int {
	config := configuration.CurrentConfig

	if len(config.PidFile) > 0 {
		if err := pid.Write(config.PidFile); err != nil {
			ui.Error("%v", err)
			return 1
		}
		defer func() {
			if err := pid.Remove(config.PidFile); err != nil {
				ui.Warning("%v", err)
			}
		}()
	}

	store := status.NewStore(config.Dashboard.HistorySize)

	registry := prometheus.NewRegistry()
	statistics.Register(registry,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		statistics.NewSensorCollector(store),
		statistics.NewControllerCollector(store),
	)

	var display controller.Display = ui.LogDisplay{}
	if config.Dashboard.Enabled {
		display = ui.NewDashboard(os.Stdout, config.Dashboard.ClearScreen)
	}

	supervisor := controller.NewSupervisor(
		bmc.NewIpmitoolConnector(config.Bmc),
		curves.NewSpeedCurve(config.Curve),
		display,
		store,
		config.Controller,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var g run.Group
	{
		// === control loop
		g.Add(func() error {
			ui.Info("Connecting to BMC at %s:%d...", config.Bmc.Host, config.Bmc.Port)
			return supervisor.Run(ctx)
		}, func(err error) {
			cancel()
		})
	}
	{
		g.Add(run.SignalHandler(ctx, os.Interrupt, syscall.SIGTERM))
	}
	if config.Api.Enabled {
		// === REST api
		rest := api.CreateRestService(store, registry)

		g.Add(func() error {
			addr := net.JoinHostPort(config.Api.Host, strconv.Itoa(config.Api.Port))
			ui.Info("Starting REST api at %s", addr)
			if err := rest.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
				ui.Error("Cannot start REST api (%v)", err)
			}
			<-ctx.Done()
			return nil
		}, func(err error) {
			cancel()
			timeoutCtx, timeoutCancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer timeoutCancel()
			if err := rest.Shutdown(timeoutCtx); err != nil {
				ui.Warning("Error stopping REST api: %v", err)
			}
		})
	}
	if config.Statistics.Enabled {
		// === Prometheus Exporter
		server := &http.Server{
			Addr:              fmt.Sprintf(":%d", config.Statistics.Port),
			Handler:           promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
			ReadHeaderTimeout: 5 * time.Second,
		}

		g.Add(func() error {
			ui.Info("Starting statistics endpoint at %s/metrics", server.Addr)
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				ui.Error("Cannot start prometheus metrics endpoint (%v)", err)
			}
			<-ctx.Done()
			return nil
		}, func(err error) {
			cancel()
			timeoutCtx, timeoutCancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer timeoutCancel()
			if err := server.Shutdown(timeoutCtx); err != nil {
				ui.Warning("Error stopping statistics server: %v", err)
			}
		})
	}

	return exitCode(g.Run())
}

func exitCode(err error) int {
	var signalErr run.SignalError
	switch {
	case err == nil:
		ui.Info("Done.")
		return 0
	case errors.As(err, &signalErr):
		ui.Info("Received %s signal, exited.", signalErr.Signal)
		return 0
	case errors.Is(err, context.Canceled):
		ui.Info("Done.")
		return 0
	default:
		ui.Error("%v", err)
		return 1
	}
}
