package hal

import (
	"github.com/stretchr/testify/mock"
)

// fails if PortIOMock does not implement PortIO
var _ PortIO = &PortIOMock{}

// PortIOMock implements a mock for the PortIO interface
type PortIOMock struct {
	mock.Mock
}

func (m *PortIOMock) Load() error {
	args := m.Called()
	return args.Error(0)
}

func (m *PortIOMock) Init() error {
	args := m.Called()
	return args.Error(0)
}

func (m *PortIOMock) ReadPort(port uint16) (uint8, error) {
	args := m.Called(port)
	return args.Get(0).(uint8), args.Error(1)
}

func (m *PortIOMock) WritePort(port uint16, value uint8) error {
	args := m.Called(port, value)
	return args.Error(0)
}

func (m *PortIOMock) Status() uint32 {
	args := m.Called()
	return args.Get(0).(uint32)
}

func (m *PortIOMock) Unload() error {
	args := m.Called()
	return args.Error(0)
}
