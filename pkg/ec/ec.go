// Package ec implements addressed access to ITE embedded controller memory through the
// SIO index/data port pair and the D2EC bridge.
package ec

import (
	"errors"
	"fmt"

	"github.com/uptime-induestries/ecfan-agent/pkg/hal"
)

const (
	// AddrPort is the SIO index port
	AddrPort uint16 = 0x4E
	// DataPort is the SIO data port
	DataPort uint16 = 0x4F

	sioD2ECIndex = 0x2E
	sioD2ECData  = 0x2F

	d2ecAddrLow  = 0x10
	d2ecAddrHigh = 0x11
	d2ecData     = 0x12
)

// ErrAddressOverflow is returned when an array transaction would run past the end of EC memory
var ErrAddressOverflow = errors.New("EC address range overflows 16 bits")

// Engine performs EC transactions over a PortIO capability.
// A transaction is a sequence of port accesses that must not interleave with another
// transaction; Engine does no locking, callers serialize.
type Engine struct {
	port hal.PortIO
}

// NewEngine returns an Engine issuing transactions through port
func NewEngine(port hal.PortIO) *Engine {
	return &Engine{port: port}
}

// selectD2EC points the SIO at D2EC register reg. After it returns, DataPort accesses
// go to that register.
func (e *Engine) selectD2EC(reg uint8) error {
	if err := e.port.WritePort(AddrPort, sioD2ECIndex); err != nil {
		return err
	}
	if err := e.port.WritePort(DataPort, reg); err != nil {
		return err
	}
	return e.port.WritePort(AddrPort, sioD2ECData)
}

// address latches addr into the D2EC bridge and selects the data register
func (e *Engine) address(addr Address) error {
	if err := e.selectD2EC(d2ecAddrHigh); err != nil {
		return err
	}
	if err := e.port.WritePort(DataPort, uint8(addr>>8)); err != nil {
		return err
	}
	if err := e.selectD2EC(d2ecAddrLow); err != nil {
		return err
	}
	if err := e.port.WritePort(DataPort, uint8(addr)); err != nil {
		return err
	}
	return e.selectD2EC(d2ecData)
}

// Read reads one byte of EC memory
func (e *Engine) Read(addr Address) (uint8, error) {
	transactions.WithLabelValues("read").Inc()
	if err := e.address(addr); err != nil {
		transactionErrors.WithLabelValues("read").Inc()
		return 0, fmt.Errorf("read %s: %w", addr, err)
	}
	val, err := e.port.ReadPort(DataPort)
	if err != nil {
		transactionErrors.WithLabelValues("read").Inc()
		return 0, fmt.Errorf("read %s: %w", addr, err)
	}
	return val, nil
}

// Write writes one byte of EC memory
func (e *Engine) Write(addr Address, value uint8) error {
	transactions.WithLabelValues("write").Inc()
	if err := e.address(addr); err != nil {
		transactionErrors.WithLabelValues("write").Inc()
		return fmt.Errorf("write %s: %w", addr, err)
	}
	if err := e.port.WritePort(DataPort, value); err != nil {
		transactionErrors.WithLabelValues("write").Inc()
		return fmt.Errorf("write %s: %w", addr, err)
	}
	return nil
}

// ReadWord reads a 16-bit little-endian value split over two registers (LSB first)
func (e *Engine) ReadWord(lsb, msb Address) (uint16, error) {
	low, err := e.Read(lsb)
	if err != nil {
		return 0, err
	}
	high, err := e.Read(msb)
	if err != nil {
		return 0, err
	}
	return uint16(high)<<8 | uint16(low), nil
}

// ReadArray reads n consecutive bytes starting at base, one transaction per byte.
// The result is not atomic: the EC may change memory between two transactions.
func (e *Engine) ReadArray(base Address, n int) ([]uint8, error) {
	if err := checkRange(base, n); err != nil {
		return nil, err
	}
	buf := make([]uint8, n)
	for i := range buf {
		val, err := e.Read(base + Address(i))
		if err != nil {
			return nil, err
		}
		buf[i] = val
	}
	return buf, nil
}

// WriteArray writes data to consecutive addresses starting at base, one transaction per byte.
// Empty data issues no port access.
func (e *Engine) WriteArray(base Address, data []uint8) error {
	if len(data) == 0 {
		return nil
	}
	if err := checkRange(base, len(data)); err != nil {
		return err
	}
	for i, val := range data {
		if err := e.Write(base+Address(i), val); err != nil {
			return err
		}
	}
	return nil
}

func checkRange(base Address, n int) error {
	if n < 0 {
		return fmt.Errorf("negative length %d", n)
	}
	if int(base)+n > 0x10000 {
		return fmt.Errorf("%s + %d: %w", base, n, ErrAddressOverflow)
	}
	return nil
}
