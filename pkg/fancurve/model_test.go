package fancurve_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptime-induestries/ecfan-agent/pkg/fancurve"
	"gopkg.in/yaml.v3"
)

func validConfig() fancurve.Config {
	return fancurve.Config{
		Fan1Curve:    fancurve.Table{0, 20, 25, 30, 35, 40, 45, 50, 55, 60},
		Fan2Curve:    fancurve.Table{0, 22, 27, 32, 37, 42, 47, 52, 57, 62},
		AccTime:      fancurve.Table{2, 2, 2, 2, 2, 2, 2, 2, 2, 2},
		DecTime:      fancurve.Table{4, 4, 4, 4, 4, 4, 4, 4, 4, 4},
		CPUUpperTemp: fancurve.Table{45, 50, 55, 60, 65, 70, 75, 80, 85, 100},
		CPULowerTemp: fancurve.Table{0, 42, 47, 52, 57, 62, 67, 72, 77, 82},
		GPUUpperTemp: fancurve.Table{45, 50, 55, 60, 65, 70, 75, 80, 85, 100},
		GPULowerTemp: fancurve.Table{0, 42, 47, 52, 57, 62, 67, 72, 77, 82},
		VRMUpperTemp: fancurve.Table{45, 50, 55, 60, 65, 70, 75, 80, 85, 100},
		VRMLowerTemp: fancurve.Table{0, 42, 47, 52, 57, 62, 67, 72, 77, 82},
	}
}

func TestConfig_Validate(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	assert.NoError(t, cfg.Validate())

	cfg.GPULowerTemp = cfg.GPULowerTemp[:9]
	cfg.AccTime = append(cfg.AccTime.Clone(), 1)
	err := cfg.Validate()
	assert.ErrorIs(t, err, fancurve.ErrInvalidTableSize)
	assert.Contains(t, err.Error(), "gpu_lower_temp has 9 entries")
	assert.Contains(t, err.Error(), "acc_time has 11 entries")

	var empty fancurve.Config
	assert.ErrorIs(t, empty.Validate(), fancurve.ErrInvalidTableSize)
}

func TestConfig_TablesOrder(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	tables := cfg.Tables()
	require.Len(t, tables, 10)

	names := make([]string, len(tables))
	for i, nt := range tables {
		names[i] = nt.Name
	}
	assert.Equal(t, []string{
		"fan1_curve", "fan2_curve", "acc_time", "dec_time",
		"cpu_upper_temp", "cpu_lower_temp",
		"gpu_upper_temp", "gpu_lower_temp",
		"vrm_upper_temp", "vrm_lower_temp",
	}, names)
	assert.Equal(t, cfg.Fan2Curve, tables[1].Table)
}

func TestConfig_CloneIsIndependent(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	c := cfg.Clone()
	c.Fan1Curve[3] = 99
	assert.Equal(t, uint8(30), cfg.Fan1Curve[3])
}

func TestPercent(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		rpm, max uint16
		expected int
	}{
		{"half", 2600, 5200, 50},
		{"stopped", 0, 5200, 0},
		{"truncates", 2599, 5200, 49},
		{"above max", 6000, 5000, 120},
		{"zero max", 1000, 0, 0},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.expected, fancurve.Percent(tc.rpm, tc.max))
		})
	}
}

func TestDiff(t *testing.T) {
	t.Parallel()

	want := validConfig()
	got := want.Clone()
	assert.Empty(t, fancurve.Diff(want, got))

	got.Fan2Curve[9] = 70
	got.DecTime = got.DecTime[:8]
	mismatches := fancurve.Diff(want, got)
	assert.Equal(t, []fancurve.Mismatch{
		{Table: "fan2_curve", Index: 9, Want: 62, Got: 70},
		{Table: "dec_time", Index: 8, Want: 4, Got: 0},
		{Table: "dec_time", Index: 9, Want: 4, Got: 0},
	}, mismatches)
	assert.Equal(t, "fan2_curve[9]: want 62, got 70", mismatches[0].String())
}

func TestTable_JSON(t *testing.T) {
	t.Parallel()

	b, err := json.Marshal(fancurve.Table{1, 2, 255})
	require.NoError(t, err)
	assert.JSONEq(t, `[1,2,255]`, string(b))

	var tbl fancurve.Table
	require.NoError(t, json.Unmarshal([]byte(`[0, 128, 255]`), &tbl))
	assert.Equal(t, fancurve.Table{0, 128, 255}, tbl)

	assert.Error(t, json.Unmarshal([]byte(`[256]`), &tbl))
	assert.Error(t, json.Unmarshal([]byte(`[-1]`), &tbl))
}

func TestStatus_JSONFlattensConfig(t *testing.T) {
	t.Parallel()

	st := fancurve.Status{Config: validConfig(), Fan1RPM: 2600, Fan1Percent: 50, ChipID1: 0x55, ChipID2: 0x70}
	b, err := json.Marshal(st)
	require.NoError(t, err)

	var m map[string]interface{}
	require.NoError(t, json.Unmarshal(b, &m))
	assert.Equal(t, float64(2600), m["fan1_rpm"])
	assert.Len(t, m["fan1_curve"], 10)
	assert.Equal(t, uint16(0x5570), st.ChipID())

	var back fancurve.Status
	require.NoError(t, json.Unmarshal(b, &back))
	assert.Equal(t, st, back)
}

func TestConfig_YAMLRoundTrip(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	b, err := yaml.Marshal(cfg)
	require.NoError(t, err)
	assert.Contains(t, string(b), "fan1_curve:")

	var back fancurve.Config
	require.NoError(t, yaml.Unmarshal(b, &back))
	assert.Equal(t, cfg, back)
}
