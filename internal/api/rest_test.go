package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/markusressel/bmc2go/internal/sensors"
	"github.com/markusressel/bmc2go/internal/status"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createStore() *status.Store {
	store := status.NewStore(10)
	store.UpdateReadings([]sensors.Reading{
		{Name: "CPU1 Temp", Kind: sensors.KindTemperature, Value: 80, Available: true, Units: "degrees C", Health: sensors.HealthOk},
		{Name: "Fan1 RPM", Kind: sensors.KindFan, Value: 5040, Available: true, Units: "RPM", Health: sensors.HealthOk},
	})
	store.RecordCycle(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC), sensors.Classification{
		CpuTemperatures: []sensors.Classified{{Label: "CPU1 Temp", Name: "CPU1 Temp", Value: 80}},
		CpuSource:       sensors.CpuSourcePattern,
	}, 68)
	return store
}

func serve(t *testing.T, store *status.Store, path string) *httptest.ResponseRecorder {
	rest := CreateRestService(store, prometheus.NewRegistry())
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	rest.ServeHTTP(rec, req)
	return rec
}

func TestAlive(t *testing.T) {
	// WHEN
	rec := serve(t, createStore(), "/alive")

	// THEN
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestGetSensors(t *testing.T) {
	// WHEN
	rec := serve(t, createStore(), "/sensor/")

	// THEN
	require.Equal(t, http.StatusOK, rec.Code)
	var result map[string]sensors.Reading
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Len(t, result, 2)
	assert.Equal(t, 5040.0, result["fan1_rpm"].Value)
}

func TestGetSensor(t *testing.T) {
	// WHEN
	rec := serve(t, createStore(), "/sensor/cpu1_temp/")

	// THEN
	require.Equal(t, http.StatusOK, rec.Code)
	var result map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, "CPU1 Temp", result["name"])
	assert.Equal(t, "temperature", result["kind"])
	assert.Equal(t, "ok", result["health"])
}

func TestGetSensor_NotFound(t *testing.T) {
	// WHEN
	rec := serve(t, createStore(), "/sensor/unknown/")

	// THEN
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "No item with id 'unknown' found")
}

func TestGetStatus(t *testing.T) {
	// WHEN
	rec := serve(t, createStore(), "/status")

	// THEN
	require.Equal(t, http.StatusOK, rec.Code)
	var result map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, 68.0, result["targetSpeed"])
	assert.Equal(t, "name pattern", result["cpuSource"])
	assert.Equal(t, 80.0, result["maxCpuTemperature"])
}

func TestGetStatusHistory(t *testing.T) {
	// WHEN
	rec := serve(t, createStore(), "/status/history/")

	// THEN
	require.Equal(t, http.StatusOK, rec.Code)
	var result []float64
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, []float64{80}, result)
}
