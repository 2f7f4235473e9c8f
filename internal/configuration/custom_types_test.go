package configuration

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKgKeyHex(t *testing.T) {
	// WHEN
	key := ParseKgKey("0102ff")

	// THEN
	assert.Equal(t, KgKey{0x01, 0x02, 0xff}, key)
	assert.Equal(t, "0102ff", key.Hex())
}

func TestParseKgKeyHexWithPrefix(t *testing.T) {
	// WHEN
	key := ParseKgKey("0xAB")

	// THEN
	assert.Equal(t, KgKey{0xab}, key)
}

func TestParseKgKeyLiteralFallback(t *testing.T) {
	// WHEN
	key := ParseKgKey("secret!")

	// THEN
	assert.Equal(t, KgKey("secret!"), key)
	assert.Equal(t, "73656372657421", key.Hex())
}

func TestParseKgKeyEmpty(t *testing.T) {
	// WHEN
	key := ParseKgKey("  ")

	// THEN
	assert.Nil(t, key)
}

func TestDecodeAppliesHooksAndDefaults(t *testing.T) {
	// GIVEN
	viper.Reset()
	setDefaultValues()
	viper.Set("bmc.host", "idrac.local")
	viper.Set("bmc.kg", "00ff")
	viper.Set("controller.pollingRate", "5s")
	defer viper.Reset()

	// WHEN
	config, err := decode()

	// THEN
	require.NoError(t, err)
	assert.Equal(t, "idrac.local", config.Bmc.Host)
	assert.Equal(t, 623, config.Bmc.Port)
	assert.Equal(t, KgKey{0x00, 0xff}, config.Bmc.Kg)
	assert.Equal(t, InterfaceLanPlus, config.Bmc.Interface)
	assert.Equal(t, 5*time.Second, config.Controller.PollingRate)
	assert.Equal(t, 30*time.Second, config.Controller.DegradedRetryRate)
	assert.Equal(t, 75.0, config.Curve.MidPoint)
	assert.Equal(t, 0.15, config.Curve.Steepness)
	assert.Equal(t, 30, config.Curve.DefaultSpeed)
}
