//go:build windows

package hal

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"syscall"

	"golang.org/x/sys/windows"
)

const winRing0DllName = "WinRing0x64.dll"

// fails if winRing0 does not implement PortIO
var _ PortIO = &winRing0{}

// winRing0 talks to the WinRing0 kernel driver through its user-mode DLL.
type winRing0 struct {
	path string

	dll             *windows.DLL
	initializeOls   *windows.Proc
	deinitializeOls *windows.Proc
	getDllStatus    *windows.Proc
	readIoPortByte  *windows.Proc
	writeIoPortByte *windows.Proc

	initialized   bool
	lastLoadError uint32
}

func newWinRing0(opts Opts) (PortIO, error) {
	path := opts.DriverPath
	if path == "" {
		exe, err := os.Executable()
		if err != nil {
			return nil, fmt.Errorf("locating %s: %w", winRing0DllName, err)
		}
		path = filepath.Join(filepath.Dir(exe), winRing0DllName)
	}
	backend.WithLabelValues(string(BackendWinRing0)).Set(1)
	return &winRing0{path: path}, nil
}

func (w *winRing0) Load() error {
	if w.dll != nil {
		return nil
	}
	w.lastLoadError = 0

	dll, err := windows.LoadDLL(w.path)
	if err != nil {
		w.lastLoadError = errnoOf(err)
		return fmt.Errorf("loading %s: %w", w.path, err)
	}

	procs := map[string]**windows.Proc{
		"InitializeOls":   &w.initializeOls,
		"DeinitializeOls": &w.deinitializeOls,
		"GetDllStatus":    &w.getDllStatus,
		"ReadIoPortByte":  &w.readIoPortByte,
		"WriteIoPortByte": &w.writeIoPortByte,
	}
	for name, dst := range procs {
		proc, err := dll.FindProc(name)
		if err != nil {
			w.lastLoadError = errnoOf(err)
			_ = dll.Release()
			w.resetProcs()
			return fmt.Errorf("resolving %s in %s: %w", name, w.path, err)
		}
		*dst = proc
	}

	w.dll = dll
	return nil
}

func (w *winRing0) Init() error {
	if w.dll == nil {
		return fmt.Errorf("winring0: init before load: %w", ErrPortNotReady)
	}
	if w.initialized {
		return nil
	}
	ok, _, _ := w.initializeOls.Call()
	if ok == 0 {
		return fmt.Errorf("winring0: InitializeOls failed (dll status %d)", w.Status())
	}
	w.initialized = true
	return nil
}

func (w *winRing0) ReadPort(port uint16) (uint8, error) {
	if !w.initialized {
		observePort("read", ErrPortNotReady)
		return 0, ErrPortNotReady
	}
	val, _, _ := w.readIoPortByte.Call(uintptr(port))
	observePort("read", nil)
	return uint8(val), nil
}

func (w *winRing0) WritePort(port uint16, value uint8) error {
	if !w.initialized {
		observePort("write", ErrPortNotReady)
		return ErrPortNotReady
	}
	_, _, _ = w.writeIoPortByte.Call(uintptr(port), uintptr(value))
	observePort("write", nil)
	return nil
}

func (w *winRing0) Status() uint32 {
	if w.dll == nil && w.lastLoadError != 0 {
		return w.lastLoadError
	}
	if w.getDllStatus != nil {
		status, _, _ := w.getDllStatus.Call()
		return uint32(status)
	}
	return StatusUnavailable
}

func (w *winRing0) Unload() error {
	if w.initialized && w.deinitializeOls != nil {
		_, _, _ = w.deinitializeOls.Call()
	}
	var err error
	if w.dll != nil {
		err = w.dll.Release()
	}
	w.dll = nil
	w.initialized = false
	w.lastLoadError = 0
	w.resetProcs()
	return err
}

func (w *winRing0) resetProcs() {
	w.initializeOls = nil
	w.deinitializeOls = nil
	w.getDllStatus = nil
	w.readIoPortByte = nil
	w.writeIoPortByte = nil
}

func errnoOf(err error) uint32 {
	var errno syscall.Errno
	if errors.As(err, &errno) {
		return uint32(errno)
	}
	return StatusUnavailable
}

func newDevPort(_ Opts) (PortIO, error) {
	return nil, ErrUnsupportedPlatform
}
