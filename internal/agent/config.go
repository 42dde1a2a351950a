package agent

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
	"github.com/uptime-induestries/ecfan-agent/pkg/fancontroller"
	"github.com/uptime-induestries/ecfan-agent/pkg/fancurve"
	"github.com/uptime-induestries/ecfan-agent/pkg/hal"
	"github.com/uptime-induestries/ecfan-agent/pkg/util"
)

type EcFanAgentConfig struct {
	// Hal selects and configures the port I/O backend
	Hal hal.Opts `mapstructure:"hal"`
	// Controller configures the EC fan controller
	Controller fancontroller.Config `mapstructure:"controller"`

	// PollInterval is the interval between two status reads. Zero disables polling.
	PollInterval time.Duration `mapstructure:"poll_interval"`
	// VerifyDelay is the time between writing a configuration and reading it back
	VerifyDelay time.Duration `mapstructure:"verify_delay"`

	// Profile is written to the EC on startup when set
	Profile *fancurve.Config `mapstructure:"profile"`
	// RestoreOnExit writes the configuration found on startup back when the agent exits
	RestoreOnExit bool `mapstructure:"restore_on_exit"`

	// Listen is the gRPC listen address (unix:// or tcp://)
	Listen string `mapstructure:"listen"`
	// MetricsAddr is the listen address of the prometheus endpoint
	MetricsAddr string `mapstructure:"metrics_addr"`

	Clock util.Clock `mapstructure:"-"`
}

func defaultBackend() hal.Backend {
	switch runtime.GOOS {
	case "windows":
		return hal.BackendWinRing0
	case "linux":
		return hal.BackendDevPort
	default:
		return hal.BackendSimulated
	}
}

// SetDefaults registers the default agent configuration with v
func SetDefaults(v *viper.Viper) {
	ctrl := fancontroller.DefaultConfig()
	v.SetDefault("hal.backend", string(defaultBackend()))
	v.SetDefault("hal.driver_path", "")
	v.SetDefault("controller.max_fan1_rpm", ctrl.MaxFan1RPM)
	v.SetDefault("controller.max_fan2_rpm", ctrl.MaxFan2RPM)
	v.SetDefault("controller.write_duty_cycle_registers", ctrl.WriteDutyCycleRegisters)
	v.SetDefault("poll_interval", 5*time.Second)
	v.SetDefault("verify_delay", 100*time.Millisecond)
	v.SetDefault("restore_on_exit", false)
	v.SetDefault("listen", "unix:///tmp/ecfan-agent.sock")
	v.SetDefault("metrics_addr", ":9667")
}

// LoadConfig decodes the agent configuration from v, applying defaults and ECFAN_* environment overrides
func LoadConfig(v *viper.Viper) (EcFanAgentConfig, error) {
	SetDefaults(v)
	v.SetEnvPrefix("ECFAN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg EcFanAgentConfig
	err := v.Unmarshal(&cfg, viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		fancurve.TableDecodeHook(),
	)))
	if err != nil {
		return EcFanAgentConfig{}, fmt.Errorf("failed to decode agent configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return EcFanAgentConfig{}, err
	}
	return cfg, nil
}

// Validate checks the configuration for values the agent cannot run with
func (c *EcFanAgentConfig) Validate() error {
	var errs []error
	if c.PollInterval < 0 {
		errs = append(errs, fmt.Errorf("poll_interval must not be negative"))
	}
	if c.VerifyDelay < 0 {
		errs = append(errs, fmt.Errorf("verify_delay must not be negative"))
	}
	if c.Controller.MaxFan1RPM == 0 || c.Controller.MaxFan2RPM == 0 {
		errs = append(errs, fmt.Errorf("controller.max_fan1_rpm and controller.max_fan2_rpm must be greater than zero"))
	}
	if c.Profile != nil {
		if err := c.Profile.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("profile: %w", err))
		}
	}
	return errors.Join(errs...)
}
