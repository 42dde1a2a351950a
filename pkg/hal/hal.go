package hal

import (
	"context"
	"errors"
	"fmt"

	"github.com/uptime-induestries/ecfan-agent/pkg/log"
	"go.uber.org/zap"
)

// Backend selects the implementation behind PortIO
type Backend string

const (
	// BackendWinRing0 drives the ports through the WinRing0 ring-0 driver (windows only)
	BackendWinRing0 Backend = "winring0"
	// BackendDevPort drives the ports through /dev/port (linux x86 only)
	BackendDevPort Backend = "devport"
	// BackendSimulated uses an in-memory ITE EC
	BackendSimulated Backend = "simulated"
)

var (
	// ErrUnsupportedPlatform is returned when a backend is not available on this OS/architecture
	ErrUnsupportedPlatform = errors.New("port I/O backend not supported on this platform")
	// ErrPortNotReady is returned by port operations before Init succeeded or after Unload
	ErrPortNotReady = errors.New("port I/O capability not initialized")
)

// StatusUnavailable is reported by Status when no driver status can be determined
const StatusUnavailable uint32 = 0xFFFFFFFF

type Opts struct {
	// Backend is one of winring0, devport or simulated
	Backend Backend `mapstructure:"backend"`
	// DriverPath is the WinRing0 DLL path (winring0) or the port device (devport)
	DriverPath string `mapstructure:"driver_path"`
}

// PortIO is the privileged capability to access raw x86 I/O ports.
// Implementations are not safe for concurrent use; callers serialize access.
type PortIO interface {
	// Load acquires the driver or device. Idempotent.
	Load() error
	// Init performs driver-level initialisation. Requires Load. Idempotent.
	Init() error
	// ReadPort reads one byte from an I/O port
	ReadPort(port uint16) (uint8, error)
	// WritePort writes one byte to an I/O port
	WritePort(port uint16, value uint8) error
	// Status returns the driver status code, or the last load error code when loading failed
	Status() uint32
	// Unload releases everything acquired by Load/Init. Safe to call at any time.
	Unload() error
}

// NewPortIO returns the PortIO backend selected by opts
func NewPortIO(ctx context.Context, opts Opts) (PortIO, error) {
	log.FromContext(ctx).Info("selecting port I/O backend", zap.String("backend", string(opts.Backend)))
	switch opts.Backend {
	case BackendWinRing0:
		return newWinRing0(opts)
	case BackendDevPort:
		return newDevPort(opts)
	case BackendSimulated:
		backend.WithLabelValues(string(BackendSimulated)).Set(1)
		return NewSimulatedEC(), nil
	default:
		return nil, fmt.Errorf("unsupported port I/O backend: %q", opts.Backend)
	}
}
