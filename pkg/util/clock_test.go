package util_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/uptime-induestries/ecfan-agent/pkg/util"
)

func TestSleep_Elapsed(t *testing.T) {
	t.Parallel()

	clk := &util.MockClock{}
	clk.On("After", 100*time.Millisecond).Return(util.Fired(time.Now()))

	err := util.Sleep(context.Background(), clk, 100*time.Millisecond)
	assert.NoError(t, err)
	clk.AssertExpectations(t)
}

func TestSleep_ZeroDurationSkipsClock(t *testing.T) {
	t.Parallel()

	clk := &util.MockClock{}
	err := util.Sleep(context.Background(), clk, 0)
	assert.NoError(t, err)
	clk.AssertNotCalled(t, "After", 0*time.Second)
}

func TestSleep_Canceled(t *testing.T) {
	t.Parallel()

	clk := &util.MockClock{}
	clk.On("After", time.Second).Return(make(chan time.Time))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := util.Sleep(ctx, clk, time.Second)
	assert.ErrorIs(t, err, context.Canceled)
}
