//go:build linux && (amd64 || 386)

package hal

import (
	"fmt"

	"github.com/u-root/u-root/pkg/memio"
	"golang.org/x/sys/unix"
)

const devPortPath = "/dev/port"

// fails if devPort does not implement PortIO
var _ PortIO = &devPort{}

// devPort accesses I/O ports through the kernel's /dev/port character device.
// memio always uses /dev/port, DriverPath is only used for the access check.
type devPort struct {
	path string

	loaded      bool
	initialized bool
	lastErrno   uint32
}

func newDevPort(opts Opts) (PortIO, error) {
	path := opts.DriverPath
	if path == "" {
		path = devPortPath
	}
	backend.WithLabelValues(string(BackendDevPort)).Set(1)
	return &devPort{path: path}, nil
}

func (d *devPort) Load() error {
	if d.loaded {
		return nil
	}
	if err := unix.Access(d.path, unix.R_OK|unix.W_OK); err != nil {
		if errno, ok := err.(unix.Errno); ok {
			d.lastErrno = uint32(errno)
		}
		return fmt.Errorf("accessing %s: %w", d.path, err)
	}
	d.lastErrno = 0
	d.loaded = true
	return nil
}

func (d *devPort) Init() error {
	if !d.loaded {
		return fmt.Errorf("devport: init before load: %w", ErrPortNotReady)
	}
	d.initialized = true
	return nil
}

func (d *devPort) ReadPort(port uint16) (uint8, error) {
	if !d.initialized {
		observePort("read", ErrPortNotReady)
		return 0, ErrPortNotReady
	}
	var val memio.Uint8
	err := memio.In(port, &val)
	observePort("read", err)
	if err != nil {
		return 0, fmt.Errorf("in(0x%X): %w", port, err)
	}
	return uint8(val), nil
}

func (d *devPort) WritePort(port uint16, value uint8) error {
	if !d.initialized {
		observePort("write", ErrPortNotReady)
		return ErrPortNotReady
	}
	val := memio.Uint8(value)
	err := memio.Out(port, &val)
	observePort("write", err)
	if err != nil {
		return fmt.Errorf("out(0x%X, 0x%X): %w", port, value, err)
	}
	return nil
}

func (d *devPort) Status() uint32 {
	if d.initialized {
		return 0
	}
	if d.lastErrno != 0 {
		return d.lastErrno
	}
	return StatusUnavailable
}

func (d *devPort) Unload() error {
	d.loaded = false
	d.initialized = false
	return nil
}

func newWinRing0(_ Opts) (PortIO, error) {
	return nil, ErrUnsupportedPlatform
}
