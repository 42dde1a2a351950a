package fancurve_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptime-induestries/ecfan-agent/pkg/fancurve"
)

func TestDecodeConfig(t *testing.T) {
	t.Parallel()

	input := map[string]interface{}{
		"fan1_curve":     []interface{}{0, 20, 25, 30, 35, 40, 45, 50, 55, 60},
		"fan2_curve":     []interface{}{0.0, 22.0, 27.0, 32.0, 37.0, 42.0, 47.0, 52.0, 57.0, 62.0},
		"acc_time":       []int{2, 2, 2, 2, 2, 2, 2, 2, 2, 2},
		"dec_time":       []interface{}{4, 4, 4, 4, 4, 4, 4, 4, 4, 4},
		"cpu_upper_temp": []interface{}{45, 50, 55, 60, 65, 70, 75, 80, 85, 100},
	}

	cfg, err := fancurve.DecodeConfig(input)
	require.NoError(t, err)
	assert.Equal(t, fancurve.Table{0, 22, 27, 32, 37, 42, 47, 52, 57, 62}, cfg.Fan2Curve)
	assert.Equal(t, fancurve.Table{2, 2, 2, 2, 2, 2, 2, 2, 2, 2}, cfg.AccTime)
	assert.Nil(t, cfg.GPUUpperTemp)
	assert.ErrorIs(t, cfg.Validate(), fancurve.ErrInvalidTableSize)
}

func TestDecodeConfig_Errors(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name  string
		input map[string]interface{}
	}{
		{"out of range", map[string]interface{}{"fan1_curve": []interface{}{0, 300}}},
		{"negative", map[string]interface{}{"fan1_curve": []interface{}{-1}}},
		{"fraction", map[string]interface{}{"fan1_curve": []interface{}{1.5}}},
		{"not a number", map[string]interface{}{"fan1_curve": []interface{}{"fast"}}},
		{"unknown key", map[string]interface{}{"fan3_curve": []interface{}{1}}},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := fancurve.DecodeConfig(tc.input)
			assert.Error(t, err)
		})
	}
}
