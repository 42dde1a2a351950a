package hal_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptime-induestries/ecfan-agent/pkg/hal"
)

func readyEC(t *testing.T) *hal.SimulatedEC {
	t.Helper()
	sim := hal.NewSimulatedEC()
	require.NoError(t, sim.Load())
	require.NoError(t, sim.Init())
	return sim
}

func TestSimulatedEC_NotReady(t *testing.T) {
	t.Parallel()

	sim := hal.NewSimulatedEC()

	_, err := sim.ReadPort(0x4F)
	assert.ErrorIs(t, err, hal.ErrPortNotReady)
	assert.ErrorIs(t, sim.WritePort(0x4E, 0x2E), hal.ErrPortNotReady)
	assert.ErrorIs(t, sim.Init(), hal.ErrPortNotReady)
	assert.Equal(t, hal.StatusUnavailable, sim.Status())
}

func TestSimulatedEC_UnloadResets(t *testing.T) {
	t.Parallel()

	sim := readyEC(t)
	assert.Equal(t, uint32(0), sim.Status())

	require.NoError(t, sim.Unload())
	require.NoError(t, sim.Unload())
	_, err := sim.ReadPort(0x4F)
	assert.ErrorIs(t, err, hal.ErrPortNotReady)
}

func TestSimulatedEC_D2ECProtocol(t *testing.T) {
	t.Parallel()

	sim := readyEC(t)
	sim.Poke(0xC583, 0x42)

	selectD2EC := func(reg, val uint8) {
		require.NoError(t, sim.WritePort(0x4E, 0x2E))
		require.NoError(t, sim.WritePort(0x4F, reg))
		require.NoError(t, sim.WritePort(0x4E, 0x2F))
		require.NoError(t, sim.WritePort(0x4F, val))
	}

	selectD2EC(0x11, 0xC5)
	selectD2EC(0x10, 0x83)
	require.NoError(t, sim.WritePort(0x4E, 0x2E))
	require.NoError(t, sim.WritePort(0x4F, 0x12))
	require.NoError(t, sim.WritePort(0x4E, 0x2F))

	val, err := sim.ReadPort(0x4F)
	require.NoError(t, err)
	assert.Equal(t, uint8(0x42), val)

	// writing through the data register lands in EC memory
	require.NoError(t, sim.WritePort(0x4F, 0x99))
	assert.Equal(t, uint8(0x99), sim.Peek(0xC583))
}

func TestSimulatedEC_UndecodedPort(t *testing.T) {
	t.Parallel()

	sim := readyEC(t)
	_, err := sim.ReadPort(0x62)
	assert.Error(t, err)
	assert.Error(t, sim.WritePort(0x66, 0x80))
}

func TestSimulatedEC_Trace(t *testing.T) {
	t.Parallel()

	sim := readyEC(t)
	require.NoError(t, sim.WritePort(0x4E, 0x2E))
	assert.Empty(t, sim.Ops(), "nothing is recorded before Trace")

	sim.Trace()
	require.NoError(t, sim.WritePort(0x4E, 0x2F))
	_, err := sim.ReadPort(0x4F)
	require.NoError(t, err)

	ops := sim.Ops()
	require.Len(t, ops, 2)
	assert.Equal(t, hal.PortOp{Write: true, Port: 0x4E, Value: 0x2F}, ops[0])
	assert.False(t, ops[1].Write)
	assert.Equal(t, uint16(0x4F), ops[1].Port)
	assert.Equal(t, "out(0x4E, 0x2F)", ops[0].String())
}

func TestNewPortIO(t *testing.T) {
	t.Parallel()

	port, err := hal.NewPortIO(context.Background(), hal.Opts{Backend: hal.BackendSimulated})
	require.NoError(t, err)
	assert.IsType(t, &hal.SimulatedEC{}, port)

	_, err = hal.NewPortIO(context.Background(), hal.Opts{Backend: "inpout32"})
	assert.Error(t, err)
}
