package statistics

import (
	"github.com/markusressel/bmc2go/internal/fans"
	"github.com/markusressel/bmc2go/internal/status"
	"github.com/prometheus/client_golang/prometheus"
)

const controllerSubsystem = "controller"

type ControllerCollector struct {
	store *status.Store

	targetSpeed       *prometheus.Desc
	manualMode        *prometheus.Desc
	degraded          *prometheus.Desc
	maxCpuTemperature *prometheus.Desc
	cycles            *prometheus.Desc
	sampleFailures    *prometheus.Desc
	actuationFailures *prometheus.Desc
	degradedCycles    *prometheus.Desc
}

func NewControllerCollector(store *status.Store) *ControllerCollector {
	return &ControllerCollector{
		store: store,
		targetSpeed: prometheus.NewDesc(prometheus.BuildFQName(namespace, controllerSubsystem, "target_speed_percent"),
			"Fan speed requested in the last control cycle",
			nil, nil,
		),
		manualMode: prometheus.NewDesc(prometheus.BuildFQName(namespace, controllerSubsystem, "manual_mode"),
			"1 if the BMC is in manual fan control mode, 0 otherwise",
			nil, nil,
		),
		degraded: prometheus.NewDesc(prometheus.BuildFQName(namespace, controllerSubsystem, "degraded"),
			"1 if the last control cycle had no usable CPU temperature",
			nil, nil,
		),
		maxCpuTemperature: prometheus.NewDesc(prometheus.BuildFQName(namespace, controllerSubsystem, "max_cpu_temperature_celsius"),
			"Hottest CPU temperature of the last control cycle",
			nil, nil,
		),
		cycles: prometheus.NewDesc(prometheus.BuildFQName(namespace, controllerSubsystem, "cycles_total"),
			"Number of completed control cycles",
			nil, nil,
		),
		sampleFailures: prometheus.NewDesc(prometheus.BuildFQName(namespace, controllerSubsystem, "sample_failures_total"),
			"Number of failed sensor reads",
			nil, nil,
		),
		actuationFailures: prometheus.NewDesc(prometheus.BuildFQName(namespace, controllerSubsystem, "actuation_failures_total"),
			"Number of fan commands rejected by the BMC",
			nil, nil,
		),
		degradedCycles: prometheus.NewDesc(prometheus.BuildFQName(namespace, controllerSubsystem, "degraded_cycles_total"),
			"Number of control cycles without usable CPU temperature",
			nil, nil,
		),
	}
}

func (collector *ControllerCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- collector.targetSpeed
	ch <- collector.manualMode
	ch <- collector.degraded
	ch <- collector.maxCpuTemperature
	ch <- collector.cycles
	ch <- collector.sampleFailures
	ch <- collector.actuationFailures
	ch <- collector.degradedCycles
}

// Collect implements required collect function for all prometheus collectors
func (collector *ControllerCollector) Collect(ch chan<- prometheus.Metric) {
	snapshot := collector.store.Snapshot()

	ch <- prometheus.MustNewConstMetric(collector.targetSpeed, prometheus.GaugeValue, float64(snapshot.TargetSpeed))
	ch <- prometheus.MustNewConstMetric(collector.manualMode, prometheus.GaugeValue, boolToFloat(snapshot.ControlMode == fans.ControlModeManual.String()))
	ch <- prometheus.MustNewConstMetric(collector.degraded, prometheus.GaugeValue, boolToFloat(snapshot.Degraded))
	ch <- prometheus.MustNewConstMetric(collector.maxCpuTemperature, prometheus.GaugeValue, snapshot.MaxCpuTemperature)
	ch <- prometheus.MustNewConstMetric(collector.cycles, prometheus.CounterValue, float64(snapshot.Counters.Cycles))
	ch <- prometheus.MustNewConstMetric(collector.sampleFailures, prometheus.CounterValue, float64(snapshot.Counters.SampleFailures))
	ch <- prometheus.MustNewConstMetric(collector.actuationFailures, prometheus.CounterValue, float64(snapshot.Counters.ActuationFailures))
	ch <- prometheus.MustNewConstMetric(collector.degradedCycles, prometheus.CounterValue, float64(snapshot.Counters.DegradedCycles))
}

func boolToFloat(value bool) float64 {
	if value {
		return 1
	}
	return 0
}
