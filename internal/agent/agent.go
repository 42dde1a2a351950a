package agent

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/uptime-induestries/ecfan-agent/pkg/ec"
	"github.com/uptime-induestries/ecfan-agent/pkg/eventbus"
	"github.com/uptime-induestries/ecfan-agent/pkg/fancontroller"
	"github.com/uptime-induestries/ecfan-agent/pkg/fancurve"
	"github.com/uptime-induestries/ecfan-agent/pkg/hal"
	"github.com/uptime-induestries/ecfan-agent/pkg/log"
	"github.com/uptime-induestries/ecfan-agent/pkg/util"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const statusTopic = "status"

type Event int

const (
	NoopEvent = iota
	ReadyEvent
	ShutdownEvent
	VerifyOkEvent
	VerifyFailedEvent
)

func (e Event) String() string {
	switch e {
	case NoopEvent:
		return "noop"
	case ReadyEvent:
		return "ready"
	case ShutdownEvent:
		return "shutdown"
	case VerifyOkEvent:
		return "verify_ok"
	case VerifyFailedEvent:
		return "verify_failed"
	default:
		return "unknown"
	}
}

// ApplyResult is the outcome of a verified configuration write
type ApplyResult struct {
	// Warning is the non-fatal warning left by the write, e.g. a skipped live register update
	Warning string `json:"warning,omitempty" yaml:"warning,omitempty"`
	// Verified is true when the configuration read back equals the written one
	Verified bool `json:"verified" yaml:"verified"`
	// Mismatches lists the entries that did not read back as written
	Mismatches []fancurve.Mismatch `json:"mismatches,omitempty" yaml:"mismatches,omitempty"`
}

// EcFanAgent owns the EC and serializes all access to it
type EcFanAgent interface {
	// Run initializes the EC and blocks until the context is canceled or an error occurs
	Run(ctx context.Context) error
	// ReadStatus reads the current fan status
	ReadStatus(ctx context.Context) (fancurve.Status, error)
	// WriteConfig writes a configuration, waits for the EC to settle and verifies it by reading it back
	WriteConfig(ctx context.Context, cfg fancurve.Config) (ApplyResult, error)
	// ReadRegister reads one byte of EC memory
	ReadRegister(ctx context.Context, addr ec.Address) (uint8, error)
	// WaitForReady blocks until the EC is initialized
	WaitForReady(ctx context.Context) error
}

// ecFanAgentImpl is the implementation of the EcFanAgent interface
type ecFanAgentImpl struct {
	opts  EcFanAgentConfig
	clock util.Clock

	// mu serializes all EC transactions
	mu         sync.Mutex
	controller fancontroller.FanController
	engine     *ec.Engine
	baseline   *fancurve.Config

	state *ecfanState
	bus   eventbus.EventBus[fancurve.Status]
}

// NewEcFanAgent creates an agent using the port I/O backend selected in opts
func NewEcFanAgent(ctx context.Context, opts EcFanAgentConfig) (EcFanAgent, error) {
	port, err := hal.NewPortIO(ctx, opts.Hal)
	if err != nil {
		return nil, err
	}
	return NewEcFanAgentFromPort(ctx, port, opts)
}

// NewEcFanAgentFromPort creates an agent driving the EC through port
func NewEcFanAgentFromPort(ctx context.Context, port hal.PortIO, opts EcFanAgentConfig) (EcFanAgent, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	controller, err := fancontroller.NewEcFanController(port, opts.Controller)
	if err != nil {
		return nil, err
	}

	clock := opts.Clock
	if clock == nil {
		clock = util.RealClock{}
	}

	return &ecFanAgentImpl{
		opts:       opts,
		clock:      clock,
		controller: controller,
		engine:     ec.NewEngine(port),
		state:      NewEcFanState(),
		bus:        eventbus.New[fancurve.Status](),
	}, nil
}

func (a *ecFanAgentImpl) registerEvent(event Event) {
	eventCounter.WithLabelValues(event.String()).Inc()
	a.state.RegisterEvent(event)
}

func (a *ecFanAgentImpl) Run(origCtx context.Context) error {
	ctx := log.Named(origCtx, "agent")
	log.FromContext(ctx).Info("Starting EC fan agent")

	// Ingest noop event to initialise metrics
	a.registerEvent(NoopEvent)

	if err := a.initialize(ctx); err != nil {
		return err
	}
	defer a.cleanup(ctx)

	if a.opts.Profile != nil {
		log.FromContext(ctx).Info("Applying startup profile")
		res, err := a.WriteConfig(ctx, *a.opts.Profile)
		if err != nil {
			return fmt.Errorf("failed to apply startup profile: %w", err)
		}
		if !res.Verified {
			log.FromContext(ctx).Warn("Startup profile did not verify", zap.Int("mismatches", len(res.Mismatches)))
		}
	}

	sub := a.bus.Subscribe(statusTopic, 1, eventbus.MatchAll[fancurve.Status])
	defer sub.Unsubscribe()

	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		log.FromContext(groupCtx).Info("Starting status poller")
		return a.runStatusPoller(groupCtx)
	})

	group.Go(func() error {
		log.FromContext(groupCtx).Info("Starting metrics exporter")
		for {
			select {
			case <-groupCtx.Done():
				return groupCtx.Err()
			case st, ok := <-sub.C():
				if !ok {
					return nil
				}
				exportStatus(st)
			}
		}
	})

	return group.Wait()
}

// initialize acquires the EC and remembers the configuration found on it
func (a *ecFanAgentImpl) initialize(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.controller.Initialize(ctx); err != nil {
		log.FromContext(ctx).Error("Failed to initialize EC", zap.Error(err))
		return err
	}

	st, err := a.controller.ReadStatus(ctx)
	if err != nil {
		a.controller.Deinitialize(ctx)
		return fmt.Errorf("failed to read baseline configuration: %w", err)
	}
	baseline := st.Config.Clone()
	a.baseline = &baseline

	log.FromContext(ctx).Info("EC ready",
		zap.String("chip", fmt.Sprintf("0x%04X", st.ChipID())),
		zap.Uint8("chip_version", st.ChipVersion),
		zap.Uint16("firmware", st.FirmwareVersion),
	)
	if err := st.CheckThresholds(); err != nil {
		log.FromContext(ctx).Warn("EC thresholds inconsistent", zap.Error(err))
	}
	a.registerEvent(ReadyEvent)
	return nil
}

// cleanup restores the baseline configuration if requested and releases the EC. Ignores canceled context!
func (a *ecFanAgentImpl) cleanup(ctx context.Context) {
	cleanupCtx := context.WithoutCancel(ctx)
	log.FromContext(ctx).Info("Exiting, releasing EC")

	if a.opts.RestoreOnExit && a.baseline != nil {
		if _, err := a.WriteConfig(cleanupCtx, *a.baseline); err != nil {
			log.FromContext(ctx).Error("Failed to restore baseline configuration", zap.Error(err))
		}
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.controller.Deinitialize(cleanupCtx)
	a.registerEvent(ShutdownEvent)
}

func (a *ecFanAgentImpl) runStatusPoller(ctx context.Context) error {
	if a.opts.PollInterval == 0 {
		<-ctx.Done()
		return ctx.Err()
	}
	for {
		if _, err := a.ReadStatus(ctx); err != nil {
			log.FromContext(ctx).Error("Failed to read EC status", zap.Error(err))
		}
		if err := util.Sleep(ctx, a.clock, a.opts.PollInterval); err != nil {
			return err
		}
	}
}

// ReadStatus reads the fan status and publishes it to subscribers
func (a *ecFanAgentImpl) ReadStatus(ctx context.Context) (fancurve.Status, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	st, err := a.controller.ReadStatus(ctx)
	if err != nil {
		statusReads.WithLabelValues("failed").Inc()
		return fancurve.Status{}, err
	}
	statusReads.WithLabelValues("ok").Inc()
	a.bus.Publish(statusTopic, st)
	return st, nil
}

// WriteConfig writes cfg, waits for the EC to settle and compares the read back configuration
func (a *ecFanAgentImpl) WriteConfig(ctx context.Context, cfg fancurve.Config) (ApplyResult, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := cfg.CheckThresholds(); err != nil {
		log.FromContext(ctx).Warn("Writing inconsistent thresholds", zap.Error(err))
	}

	if err := a.controller.WriteConfig(ctx, cfg); err != nil {
		configWrites.WithLabelValues("failed").Inc()
		return ApplyResult{}, err
	}
	res := ApplyResult{Warning: a.controller.LastError()}

	if err := util.Sleep(ctx, a.clock, a.opts.VerifyDelay); err != nil {
		return res, err
	}

	st, err := a.controller.ReadStatus(ctx)
	if err != nil {
		configWrites.WithLabelValues("failed").Inc()
		return res, fmt.Errorf("failed to read back configuration: %w", err)
	}
	a.bus.Publish(statusTopic, st)

	res.Mismatches = fancurve.Diff(cfg, st.Config)
	res.Verified = len(res.Mismatches) == 0

	switch {
	case !res.Verified:
		configWrites.WithLabelValues("mismatch").Inc()
		a.registerEvent(VerifyFailedEvent)
		log.FromContext(ctx).Warn("Configuration did not read back as written", zap.Int("mismatches", len(res.Mismatches)))
	case res.Warning != "":
		configWrites.WithLabelValues("warning").Inc()
		a.registerEvent(VerifyOkEvent)
	default:
		configWrites.WithLabelValues("verified").Inc()
		a.registerEvent(VerifyOkEvent)
	}
	log.FromContext(ctx).Info("Configuration written", zap.Bool("verified", res.Verified), zap.String("warning", res.Warning))
	return res, nil
}

// ReadRegister reads a single byte of EC memory
func (a *ecFanAgentImpl) ReadRegister(ctx context.Context, addr ec.Address) (uint8, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.controller.IsInitialized() {
		return 0, fancontroller.ErrNotInitialized
	}
	val, err := a.engine.Read(addr)
	if err != nil {
		return 0, errors.Join(fancontroller.ErrTransactionFault, err)
	}
	log.FromContext(ctx).Debug("Register read", zap.Stringer("addr", addr), zap.Uint8("value", val))
	return val, nil
}

// WaitForReady waits for the EC to be initialized
func (a *ecFanAgentImpl) WaitForReady(ctx context.Context) error {
	return a.state.WaitForReady(ctx)
}
