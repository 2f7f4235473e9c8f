package statistics

import (
	"github.com/markusressel/bmc2go/internal/status"
	"github.com/markusressel/bmc2go/internal/util"
	"github.com/prometheus/client_golang/prometheus"
)

const subsystemSensor = "sensor"

type SensorCollector struct {
	store *status.Store
	value *prometheus.Desc
}

func NewSensorCollector(store *status.Store) *SensorCollector {
	return &SensorCollector{
		store: store,
		value: prometheus.NewDesc(prometheus.BuildFQName(namespace, subsystemSensor, "value"),
			"Current value of the sensor",
			[]string{"id", "name", "kind", "units"}, nil,
		),
	}
}

func (collector *SensorCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- collector.value
}

// Collect implements required collect function for all prometheus collectors
func (collector *SensorCollector) Collect(ch chan<- prometheus.Metric) {
	readings := collector.store.Readings()
	for _, id := range util.SortedKeys(readings) {
		reading := readings[id]
		if !reading.Available {
			continue
		}
		ch <- prometheus.MustNewConstMetric(collector.value, prometheus.GaugeValue, reading.Value,
			id, reading.Name, reading.Kind.String(), reading.Units)
	}
}
