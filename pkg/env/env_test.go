package env

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGetEnvDurationOrDefault(t *testing.T) {
	t.Setenv("BRIDGE_TEST_DURATION", "1500")
	assert.Equal(t, 1500*time.Millisecond, GetEnvDurationOrDefault("BRIDGE_TEST_DURATION", time.Second))

	t.Setenv("BRIDGE_TEST_DURATION", "2m")
	assert.Equal(t, 2*time.Minute, GetEnvDurationOrDefault("BRIDGE_TEST_DURATION", time.Second))

	t.Setenv("BRIDGE_TEST_DURATION", "soon")
	assert.Equal(t, time.Second, GetEnvDurationOrDefault("BRIDGE_TEST_DURATION", time.Second))

	assert.Equal(t, time.Second, GetEnvDurationOrDefault("BRIDGE_TEST_DURATION_UNSET", time.Second))
}

func TestGetEnvStringSliceOrDefault(t *testing.T) {
	t.Setenv("BRIDGE_TEST_SLICE", " --mute-audio, ,--disable-gpu ")
	assert.Equal(t, []string{"--mute-audio", "--disable-gpu"}, GetEnvStringSliceOrDefault("BRIDGE_TEST_SLICE", nil))

	t.Setenv("BRIDGE_TEST_SLICE", " , ")
	assert.Equal(t, []string{"x"}, GetEnvStringSliceOrDefault("BRIDGE_TEST_SLICE", []string{"x"}))
}

func TestGetEnvBoolAndIntDefaults(t *testing.T) {
	t.Setenv("BRIDGE_TEST_BOOL", "yes")
	assert.True(t, GetEnvBoolOrDefault("BRIDGE_TEST_BOOL", true))
	assert.False(t, GetEnvBoolOrDefault("BRIDGE_TEST_BOOL", false))

	t.Setenv("BRIDGE_TEST_INT", "0x10")
	assert.Equal(t, 16, GetEnvIntOrDefault("BRIDGE_TEST_INT", 1))

	t.Setenv("BRIDGE_TEST_FLOAT", "2.5")
	assert.Equal(t, 2.5, GetEnvFloat64OrDefault("BRIDGE_TEST_FLOAT", 1))
}
