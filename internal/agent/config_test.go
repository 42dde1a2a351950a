package agent_test

import (
	"bytes"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptime-induestries/ecfan-agent/internal/agent"
	"github.com/uptime-induestries/ecfan-agent/pkg/fancurve"
	"github.com/uptime-induestries/ecfan-agent/pkg/hal"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := agent.LoadConfig(viper.New())
	require.NoError(t, err)

	assert.Equal(t, uint16(5200), cfg.Controller.MaxFan1RPM)
	assert.Equal(t, uint16(5000), cfg.Controller.MaxFan2RPM)
	assert.False(t, cfg.Controller.WriteDutyCycleRegisters)
	assert.Equal(t, 5*time.Second, cfg.PollInterval)
	assert.Equal(t, 100*time.Millisecond, cfg.VerifyDelay)
	assert.Nil(t, cfg.Profile)
	assert.Equal(t, ":9667", cfg.MetricsAddr)
	assert.NotEmpty(t, cfg.Hal.Backend)
}

func TestLoadConfig_File(t *testing.T) {
	v := viper.New()
	v.SetConfigType("yaml")
	require.NoError(t, v.ReadConfig(bytes.NewBufferString(`
hal:
  backend: simulated
controller:
  max_fan1_rpm: 4800
  write_duty_cycle_registers: true
poll_interval: 2s
verify_delay: 250ms
restore_on_exit: true
profile:
  fan1_curve: [0, 30, 35, 40, 45, 50, 55, 60, 65, 70]
  fan2_curve: [0, 31, 36, 41, 46, 51, 56, 61, 66, 71]
  acc_time: [1, 2, 3, 5, 8, 13, 21, 34, 55, 89]
  dec_time: [10, 11, 12, 13, 14, 15, 16, 17, 18, 19]
  cpu_upper_temp: [50, 55, 60, 65, 70, 75, 80, 85, 90, 95]
  cpu_lower_temp: [0, 47, 52, 57, 62, 67, 72, 77, 82, 87]
  gpu_upper_temp: [48, 53, 58, 63, 68, 73, 78, 83, 88, 93]
  gpu_lower_temp: [0, 45, 50, 55, 60, 65, 70, 75, 80, 85]
  vrm_upper_temp: [60, 64, 68, 72, 76, 80, 84, 88, 92, 96]
  vrm_lower_temp: [0, 57, 61, 65, 69, 73, 77, 81, 85, 89]
`)))

	cfg, err := agent.LoadConfig(v)
	require.NoError(t, err)

	assert.Equal(t, hal.BackendSimulated, cfg.Hal.Backend)
	assert.Equal(t, uint16(4800), cfg.Controller.MaxFan1RPM)
	assert.Equal(t, uint16(5000), cfg.Controller.MaxFan2RPM)
	assert.True(t, cfg.Controller.WriteDutyCycleRegisters)
	assert.Equal(t, 2*time.Second, cfg.PollInterval)
	assert.Equal(t, 250*time.Millisecond, cfg.VerifyDelay)
	assert.True(t, cfg.RestoreOnExit)
	require.NotNil(t, cfg.Profile)
	assert.Equal(t, testProfile(), *cfg.Profile)
}

func TestLoadConfig_InvalidProfile(t *testing.T) {
	v := viper.New()
	v.SetConfigType("yaml")
	require.NoError(t, v.ReadConfig(bytes.NewBufferString(`
profile:
  fan1_curve: [0, 30, 35]
`)))

	_, err := agent.LoadConfig(v)
	assert.ErrorIs(t, err, fancurve.ErrInvalidTableSize)
}

func TestLoadConfig_OutOfRangeTableEntry(t *testing.T) {
	v := viper.New()
	v.SetConfigType("yaml")
	require.NoError(t, v.ReadConfig(bytes.NewBufferString(`
profile:
  fan1_curve: [0, 30, 35, 40, 45, 50, 55, 60, 65, 700]
`)))

	_, err := agent.LoadConfig(v)
	assert.Error(t, err)
}

func TestLoadConfig_Environment(t *testing.T) {
	t.Setenv("ECFAN_POLL_INTERVAL", "750ms")
	t.Setenv("ECFAN_CONTROLLER_MAX_FAN2_RPM", "4400")

	cfg, err := agent.LoadConfig(viper.New())
	require.NoError(t, err)
	assert.Equal(t, 750*time.Millisecond, cfg.PollInterval)
	assert.Equal(t, uint16(4400), cfg.Controller.MaxFan2RPM)
}
