package fancontroller

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/uptime-induestries/ecfan-agent/pkg/ec"
	"github.com/uptime-induestries/ecfan-agent/pkg/fancurve"
	"github.com/uptime-induestries/ecfan-agent/pkg/hal"
	"github.com/uptime-induestries/ecfan-agent/pkg/log"
	"go.uber.org/zap"
)

// FanController programs the fan curves of the EC
type FanController interface {
	// Initialize acquires the port I/O capability. Idempotent.
	Initialize(ctx context.Context) error
	// Deinitialize releases the capability and resets all state. Always safe to call.
	Deinitialize(ctx context.Context)
	// ReadStatus reads measured fan state and the programmed configuration
	ReadStatus(ctx context.Context) (fancurve.Status, error)
	// WriteConfig programs all ten tables and applies them to the active breakpoint.
	// A nil error may still leave a warning in LastError.
	WriteConfig(ctx context.Context, cfg fancurve.Config) error
	IsInitialized() bool
	// LastError returns the message of the last failure or warning, empty if none
	LastError() string
}

// Config configures the EC fan controller
type Config struct {
	// MaxFan1RPM is the RPM reported as 100% for fan 1
	MaxFan1RPM uint16 `mapstructure:"max_fan1_rpm"`
	// MaxFan2RPM is the RPM reported as 100% for fan 2
	MaxFan2RPM uint16 `mapstructure:"max_fan2_rpm"`
	// WriteDutyCycleRegisters additionally drives the PWM duty cycle registers after a write
	WriteDutyCycleRegisters bool `mapstructure:"write_duty_cycle_registers"`
}

// DefaultConfig returns the maximum RPMs of the stock fans
func DefaultConfig() Config {
	return Config{
		MaxFan1RPM: 5200,
		MaxFan2RPM: 5000,
	}
}

type ecFanController struct {
	mu sync.Mutex

	port   hal.PortIO
	engine *ec.Engine
	config Config

	loaded      bool
	initialized bool
	lastErr     string
}

// NewEcFanController creates a FanController driving the EC through port.
// The capability is not touched until Initialize.
func NewEcFanController(port hal.PortIO, config Config) (FanController, error) {
	if port == nil {
		return nil, fmt.Errorf("port I/O capability is required")
	}
	if config.MaxFan1RPM == 0 || config.MaxFan2RPM == 0 {
		return nil, fmt.Errorf("maximum fan RPM must be greater than zero")
	}
	return &ecFanController{
		port:   port,
		engine: ec.NewEngine(port),
		config: config,
	}, nil
}

func (f *ecFanController) fail(err error) error {
	f.lastErr = err.Error()
	return err
}

func (f *ecFanController) Initialize(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.lastErr = ""
	if f.initialized {
		return nil
	}

	if err := f.port.Load(); err != nil {
		status := f.port.Status()
		f.release(ctx)
		return f.fail(fmt.Errorf("%w: load driver (status 0x%X): %w", ErrCapabilityUnavailable, status, err))
	}
	f.loaded = true

	if err := f.port.Init(); err != nil {
		status := f.port.Status()
		f.release(ctx)
		return f.fail(fmt.Errorf("%w: init driver (status 0x%X): %w", ErrCapabilityUnavailable, status, err))
	}
	f.initialized = true

	log.FromContext(ctx).Info("EC fan controller initialized", zap.Uint32("status", f.port.Status()))
	return nil
}

// release unloads the capability and resets to the uninitialized state
func (f *ecFanController) release(ctx context.Context) {
	if err := f.port.Unload(); err != nil {
		log.FromContext(ctx).Warn("failed to unload port I/O capability", zap.Error(err))
	}
	f.loaded = false
	f.initialized = false
}

func (f *ecFanController) Deinitialize(ctx context.Context) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.loaded || f.initialized {
		f.release(ctx)
		log.FromContext(ctx).Info("EC fan controller deinitialized")
	}
	f.lastErr = ""
}

func (f *ecFanController) IsInitialized() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.initialized
}

func (f *ecFanController) LastError() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastErr
}

// statusReader reads a sequence of registers, remembering the first error
type statusReader struct {
	engine *ec.Engine
	err    error
}

func (r *statusReader) reg(addr ec.Address) uint8 {
	if r.err != nil {
		return 0
	}
	v, err := r.engine.Read(addr)
	r.err = err
	return v
}

func (r *statusReader) word(lsb, msb ec.Address) uint16 {
	if r.err != nil {
		return 0
	}
	v, err := r.engine.ReadWord(lsb, msb)
	r.err = err
	return v
}

func (r *statusReader) table(base ec.Address) fancurve.Table {
	if r.err != nil {
		return nil
	}
	v, err := r.engine.ReadArray(base, fancurve.TableSize)
	r.err = err
	return v
}

func (f *ecFanController) ReadStatus(ctx context.Context) (fancurve.Status, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.lastErr = ""
	if !f.initialized {
		return fancurve.Status{}, f.fail(ErrNotInitialized)
	}

	r := &statusReader{engine: f.engine}
	var st fancurve.Status

	st.Fan1RPM = r.word(ec.Fan1RPMLSB, ec.Fan1RPMMSB)
	st.Fan2RPM = r.word(ec.Fan2RPMLSB, ec.Fan2RPMMSB)
	st.Fan1Percent = fancurve.Percent(st.Fan1RPM, f.config.MaxFan1RPM)
	st.Fan2Percent = fancurve.Percent(st.Fan2RPM, f.config.MaxFan2RPM)

	st.Fan1Curve = r.table(ec.Fan1Base)
	st.Fan2Curve = r.table(ec.Fan2Base)
	st.AccTime = r.table(ec.FanAccBase)
	st.DecTime = r.table(ec.FanDecBase)
	st.CPUUpperTemp = r.table(ec.CPUTemp)
	st.CPULowerTemp = r.table(ec.CPUTempHyst)
	st.GPUUpperTemp = r.table(ec.GPUTemp)
	st.GPULowerTemp = r.table(ec.GPUTempHyst)
	st.VRMUpperTemp = r.table(ec.VRMTemp)
	st.VRMLowerTemp = r.table(ec.VRMTempHyst)

	st.ChipID1 = r.reg(ec.ECHIPID1)
	st.ChipID2 = r.reg(ec.ECHIPID2)
	st.ChipVersion = r.reg(ec.ECHIPVER)
	st.FirmwareVersion = uint16(r.reg(ec.FWVer))

	st.Fan1TargetDuty = r.reg(ec.Fan1TargetDuty)
	st.Fan2TargetDuty = r.reg(ec.Fan2TargetDuty)
	st.Fan1TargetCurveValue = r.reg(ec.Fan1TargetCurveVal)
	st.Fan2TargetCurveValue = r.reg(ec.Fan2TargetCurveVal)
	st.CurrentPoint = r.reg(ec.FanCurPoint)

	st.Fan1CurrentAcc = r.reg(ec.Fan1CurAcc)
	st.Fan1CurrentDec = r.reg(ec.Fan1CurDec)
	st.Fan2CurrentAcc = r.reg(ec.Fan2CurAcc)
	st.Fan2CurrentDec = r.reg(ec.Fan2CurDec)

	if r.err != nil {
		return fancurve.Status{}, f.fail(fmt.Errorf("%w: read status: %w", ErrTransactionFault, r.err))
	}
	return st, nil
}

// dutyCycle converts a target curve value to a PWM duty cycle (0..255), saturating at 45
func dutyCycle(v uint8) uint8 {
	if v <= 45 {
		return uint8(uint16(v) * 255 / 45)
	}
	return 255
}

func (f *ecFanController) WriteConfig(ctx context.Context, cfg fancurve.Config) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.lastErr = ""
	if !f.initialized {
		return f.fail(ErrNotInitialized)
	}
	if err := cfg.Validate(); err != nil {
		return f.fail(fmt.Errorf("%w: %w", ErrInvalidArgument, err))
	}

	warning, err := f.writeConfig(ctx, cfg)
	if err != nil {
		return f.fail(fmt.Errorf("%w: write config: %w", ErrTransactionFault, err))
	}
	if warning != nil {
		log.FromContext(ctx).Warn("fan configuration partially applied", zap.Error(warning))
		f.lastErr = warning.Error()
	}
	return nil
}

// writeConfig returns a non-nil warning when the live register step was skipped
func (f *ecFanController) writeConfig(ctx context.Context, cfg fancurve.Config) (warning error, err error) {
	tables := []struct {
		base ec.Address
		data fancurve.Table
	}{
		{ec.Fan1Base, cfg.Fan1Curve},
		{ec.Fan2Base, cfg.Fan2Curve},
		{ec.CPUTemp, cfg.CPUUpperTemp},
		{ec.GPUTemp, cfg.GPUUpperTemp},
		{ec.VRMTemp, cfg.VRMUpperTemp},
		{ec.CPUTempHyst, cfg.CPULowerTemp},
		{ec.GPUTempHyst, cfg.GPULowerTemp},
		{ec.VRMTempHyst, cfg.VRMLowerTemp},
		{ec.FanAccBase, cfg.AccTime},
		{ec.FanDecBase, cfg.DecTime},
	}
	for _, t := range tables {
		if err := f.engine.WriteArray(t.base, t.data); err != nil {
			return nil, err
		}
	}

	// latch the curve value of the active breakpoint into the target duty
	latches := []struct {
		curve, duty, dcr ec.Address
	}{
		{ec.Fan1TargetCurveVal, ec.Fan1TargetDuty, ec.DCR5},
		{ec.Fan2TargetCurveVal, ec.Fan2TargetDuty, ec.DCR4},
	}
	for _, l := range latches {
		v, err := f.engine.Read(l.curve)
		if err != nil {
			return nil, err
		}
		if err := f.engine.Write(l.duty, v); err != nil {
			return nil, err
		}
		if f.config.WriteDutyCycleRegisters {
			if err := f.engine.Write(l.dcr, dutyCycle(v)); err != nil {
				return nil, err
			}
		}
	}

	point, err := f.engine.Read(ec.FanCurPoint)
	if err != nil {
		return nil, err
	}
	if int(point) >= fancurve.TableSize {
		return errors.Join(
			fmt.Errorf("%w: invalid acceleration time index read from EC: %d", ErrPartialApply, point),
			fmt.Errorf("%w: invalid deceleration time index read from EC: %d", ErrPartialApply, point),
		), nil
	}

	live := []struct {
		addr ec.Address
		val  uint8
	}{
		{ec.Fan1CurAcc, cfg.AccTime[point]},
		{ec.Fan2CurAcc, cfg.AccTime[point]},
		{ec.Fan1CurDec, cfg.DecTime[point]},
		{ec.Fan2CurDec, cfg.DecTime[point]},
	}
	for _, l := range live {
		if err := f.engine.Write(l.addr, l.val); err != nil {
			return nil, err
		}
	}
	log.FromContext(ctx).Debug("fan configuration applied", zap.Uint8("point", point))
	return nil, nil
}
