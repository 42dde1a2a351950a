package ec_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/uptime-induestries/ecfan-agent/pkg/ec"
	"github.com/uptime-induestries/ecfan-agent/pkg/hal"
)

func simulatedEngine(t *testing.T) (*ec.Engine, *hal.SimulatedEC) {
	t.Helper()
	sim := hal.NewSimulatedEC()
	require.NoError(t, sim.Load())
	require.NoError(t, sim.Init())
	return ec.NewEngine(sim), sim
}

func out(port uint16, val uint8) hal.PortOp {
	return hal.PortOp{Write: true, Port: port, Value: val}
}

func TestEngine_ReadPhases(t *testing.T) {
	t.Parallel()

	engine, sim := simulatedEngine(t)
	sim.Poke(0xC583, 0x37)
	sim.Trace()

	val, err := engine.Read(ec.CPUTemp + 3)
	require.NoError(t, err)
	assert.Equal(t, uint8(0x37), val)

	expected := []hal.PortOp{
		// address high byte
		out(0x4E, 0x2E), out(0x4F, 0x11), out(0x4E, 0x2F), out(0x4F, 0xC5),
		// address low byte
		out(0x4E, 0x2E), out(0x4F, 0x10), out(0x4E, 0x2F), out(0x4F, 0x83),
		// select data register
		out(0x4E, 0x2E), out(0x4F, 0x12), out(0x4E, 0x2F),
		// transfer
		{Port: 0x4F, Value: 0x37},
	}
	assert.Equal(t, expected, sim.Ops())
}

func TestEngine_WritePhases(t *testing.T) {
	t.Parallel()

	engine, sim := simulatedEngine(t)
	sim.Trace()

	require.NoError(t, engine.Write(ec.Fan1CurAcc, 0x05))
	assert.Equal(t, uint8(0x05), sim.Peek(0xC3DC))

	ops := sim.Ops()
	require.Len(t, ops, 12)
	assert.Equal(t, out(0x4F, 0xC3), ops[3])
	assert.Equal(t, out(0x4F, 0xDC), ops[7])
	assert.Equal(t, out(0x4F, 0x05), ops[11])
	for _, op := range ops {
		assert.True(t, op.Write, "write transaction must not read: %s", op)
	}
}

func TestEngine_ArrayRoundTrip(t *testing.T) {
	t.Parallel()

	engine, _ := simulatedEngine(t)
	data := []uint8{10, 20, 30, 40, 50, 60, 70, 80, 90, 100}

	require.NoError(t, engine.WriteArray(ec.Fan2Base, data))
	got, err := engine.ReadArray(ec.Fan2Base, len(data))
	require.NoError(t, err)
	assert.Equal(t, data, got)
}

func TestEngine_WriteArrayEmpty(t *testing.T) {
	t.Parallel()

	port := &hal.PortIOMock{}
	engine := ec.NewEngine(port)

	assert.NoError(t, engine.WriteArray(ec.Fan1Base, nil))
	assert.NoError(t, engine.WriteArray(ec.Fan1Base, []uint8{}))
	port.AssertNotCalled(t, "WritePort", mock.Anything, mock.Anything)
	port.AssertNotCalled(t, "ReadPort", mock.Anything)
}

func TestEngine_ReadArrayZeroLength(t *testing.T) {
	t.Parallel()

	port := &hal.PortIOMock{}
	engine := ec.NewEngine(port)

	got, err := engine.ReadArray(ec.Fan1Base, 0)
	assert.NoError(t, err)
	assert.Empty(t, got)
	port.AssertNotCalled(t, "WritePort", mock.Anything, mock.Anything)
}

func TestEngine_AddressOverflow(t *testing.T) {
	t.Parallel()

	port := &hal.PortIOMock{}
	engine := ec.NewEngine(port)

	_, err := engine.ReadArray(0xFFFE, 3)
	assert.ErrorIs(t, err, ec.ErrAddressOverflow)
	err = engine.WriteArray(0xFFFF, []uint8{1, 2})
	assert.ErrorIs(t, err, ec.ErrAddressOverflow)
	port.AssertNotCalled(t, "WritePort", mock.Anything, mock.Anything)

	// the last byte of EC memory is still addressable
	simEngine, sim := simulatedEngine(t)
	sim.Poke(0xFFFF, 0xA5)
	got, err := simEngine.ReadArray(0xFFFF, 1)
	require.NoError(t, err)
	assert.Equal(t, []uint8{0xA5}, got)
}

func TestEngine_PortErrorAbortsTransaction(t *testing.T) {
	t.Parallel()

	errBus := errors.New("bus error")
	port := &hal.PortIOMock{}
	port.On("WritePort", ec.AddrPort, uint8(0x2E)).Return(nil).Once()
	port.On("WritePort", ec.DataPort, uint8(0x11)).Return(errBus).Once()
	engine := ec.NewEngine(port)

	_, err := engine.Read(ec.FWVer)
	assert.ErrorIs(t, err, errBus)
	assert.Contains(t, err.Error(), "0xC2C7")
	port.AssertNumberOfCalls(t, "WritePort", 2)
	port.AssertNotCalled(t, "ReadPort", mock.Anything)
}

func TestEngine_ReadErrorStopsArray(t *testing.T) {
	t.Parallel()

	port := &hal.PortIOMock{}
	port.On("WritePort", mock.Anything, mock.Anything).Return(nil)
	port.On("ReadPort", ec.DataPort).Return(uint8(7), nil).Once()
	port.On("ReadPort", ec.DataPort).Return(uint8(0), hal.ErrPortNotReady).Once()
	engine := ec.NewEngine(port)

	got, err := engine.ReadArray(ec.FanAccBase, 10)
	assert.ErrorIs(t, err, hal.ErrPortNotReady)
	assert.Nil(t, got)
	port.AssertNumberOfCalls(t, "ReadPort", 2)
}

func TestEngine_ReadWord(t *testing.T) {
	t.Parallel()

	engine, sim := simulatedEngine(t)
	sim.Poke(0xC5E0, 0x28, 0x0A)

	rpm, err := engine.ReadWord(ec.Fan1RPMLSB, ec.Fan1RPMMSB)
	require.NoError(t, err)
	assert.Equal(t, uint16(2600), rpm)
}
