package hal

import (
	"fmt"
	"sync"
)

// fails if SimulatedEC does not implement PortIO
var _ PortIO = &SimulatedEC{}

const (
	simIndexPort = 0x4E
	simDataPort  = 0x4F

	// SIO registers selecting and accessing the D2EC bridge
	simSioD2ECIndex = 0x2E
	simSioD2ECData  = 0x2F

	// D2EC registers
	simD2ECAddrLow  = 0x10
	simD2ECAddrHigh = 0x11
	simD2ECData     = 0x12
)

// PortOp is one recorded port access of the simulated EC
type PortOp struct {
	Write bool
	Port  uint16
	Value uint8
}

func (op PortOp) String() string {
	if op.Write {
		return fmt.Sprintf("out(0x%02X, 0x%02X)", op.Port, op.Value)
	}
	return fmt.Sprintf("in(0x%02X) = 0x%02X", op.Port, op.Value)
}

// SimulatedEC emulates an ITE embedded controller behind the SIO index/data port pair.
// It decodes the D2EC bridge protocol into a flat 64KiB EC memory.
type SimulatedEC struct {
	mu sync.Mutex

	loaded      bool
	initialized bool

	sioIndex  uint8
	d2ecIndex uint8
	sio       [256]uint8
	addr      uint16
	mem       [0x10000]uint8

	trace   []PortOp
	tracing bool
}

// NewSimulatedEC returns a simulated EC seeded with a plausible factory fan configuration
func NewSimulatedEC() *SimulatedEC {
	s := &SimulatedEC{}
	s.seed()
	return s
}

func (s *SimulatedEC) seed() {
	fill := func(base uint16, vals ...uint8) {
		copy(s.mem[base:], vals)
	}
	// chip identification (IT5570), firmware version
	fill(0x2000, 0x55, 0x70, 0x02)
	fill(0xC2C7, 0x1C)
	// fan curves
	fill(0xC540, 0, 20, 25, 30, 35, 40, 45, 50, 55, 60)
	fill(0xC550, 0, 20, 25, 30, 35, 40, 45, 50, 55, 60)
	// acceleration / deceleration timers
	fill(0xC560, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2)
	fill(0xC570, 4, 4, 4, 4, 4, 4, 4, 4, 4, 4)
	// CPU/GPU/VRM upper thresholds and their hysteresis lower bounds
	for _, base := range []uint16{0xC580, 0xC5A0, 0xC5C0} {
		fill(base, 45, 50, 55, 60, 65, 70, 75, 80, 85, 100)
		fill(base+0x10, 0, 42, 47, 52, 57, 62, 67, 72, 77, 82)
	}
	// fan RPM counters (LSB, MSB): 2600 / 2500
	fill(0xC5E0, 0x28, 0x0A, 0xC4, 0x09)
	fill(0xC534, 3)
}

// Trace starts recording port operations and discards anything recorded so far
func (s *SimulatedEC) Trace() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.trace = nil
	s.tracing = true
}

// Ops returns the port operations recorded since the last call to Trace
func (s *SimulatedEC) Ops() []PortOp {
	s.mu.Lock()
	defer s.mu.Unlock()
	ops := make([]PortOp, len(s.trace))
	copy(ops, s.trace)
	return ops
}

// Peek reads EC memory directly, bypassing the port protocol
func (s *SimulatedEC) Peek(addr uint16) uint8 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mem[addr]
}

// Poke writes EC memory directly, bypassing the port protocol
func (s *SimulatedEC) Poke(addr uint16, vals ...uint8) {
	s.mu.Lock()
	defer s.mu.Unlock()
	copy(s.mem[addr:], vals)
}

func (s *SimulatedEC) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loaded = true
	return nil
}

func (s *SimulatedEC) Init() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loaded {
		return fmt.Errorf("simulated EC: init before load: %w", ErrPortNotReady)
	}
	s.initialized = true
	return nil
}

func (s *SimulatedEC) Status() uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.initialized {
		return 0
	}
	return StatusUnavailable
}

func (s *SimulatedEC) Unload() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loaded = false
	s.initialized = false
	return nil
}

func (s *SimulatedEC) ReadPort(port uint16) (uint8, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		observePort("read", ErrPortNotReady)
		return 0, ErrPortNotReady
	}

	var val uint8
	switch port {
	case simIndexPort:
		val = s.sioIndex
	case simDataPort:
		switch s.sioIndex {
		case simSioD2ECIndex:
			val = s.d2ecIndex
		case simSioD2ECData:
			val = s.readD2EC()
		default:
			val = s.sio[s.sioIndex]
		}
	default:
		err := fmt.Errorf("simulated EC: port 0x%X not decoded", port)
		observePort("read", err)
		return 0, err
	}

	if s.tracing {
		s.trace = append(s.trace, PortOp{Port: port, Value: val})
	}
	observePort("read", nil)
	return val, nil
}

func (s *SimulatedEC) WritePort(port uint16, value uint8) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		observePort("write", ErrPortNotReady)
		return ErrPortNotReady
	}

	switch port {
	case simIndexPort:
		s.sioIndex = value
	case simDataPort:
		switch s.sioIndex {
		case simSioD2ECIndex:
			s.d2ecIndex = value
		case simSioD2ECData:
			s.writeD2EC(value)
		default:
			s.sio[s.sioIndex] = value
		}
	default:
		err := fmt.Errorf("simulated EC: port 0x%X not decoded", port)
		observePort("write", err)
		return err
	}

	if s.tracing {
		s.trace = append(s.trace, PortOp{Write: true, Port: port, Value: value})
	}
	observePort("write", nil)
	return nil
}

func (s *SimulatedEC) readD2EC() uint8 {
	switch s.d2ecIndex {
	case simD2ECAddrHigh:
		return uint8(s.addr >> 8)
	case simD2ECAddrLow:
		return uint8(s.addr)
	case simD2ECData:
		return s.mem[s.addr]
	default:
		return 0xFF
	}
}

func (s *SimulatedEC) writeD2EC(value uint8) {
	switch s.d2ecIndex {
	case simD2ECAddrHigh:
		s.addr = s.addr&0x00FF | uint16(value)<<8
	case simD2ECAddrLow:
		s.addr = s.addr&0xFF00 | uint16(value)
	case simD2ECData:
		s.mem[s.addr] = value
	}
}
