package ec_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/uptime-induestries/ecfan-agent/pkg/ec"
)

func TestRegisterMap(t *testing.T) {
	t.Parallel()

	// spot checks against the vendor firmware layout
	testCases := []struct {
		name string
		addr ec.Address
	}{
		{"FAN1_BASE", 0xC540},
		{"FAN2_BASE", 0xC550},
		{"FAN_ACC_BASE", 0xC560},
		{"FAN_DEC_BASE", 0xC570},
		{"CPU_TEMP", 0xC580},
		{"CPU_TEMP_HYST", 0xC590},
		{"GPU_TEMP", 0xC5A0},
		{"GPU_TEMP_HYST", 0xC5B0},
		{"VRM_TEMP", 0xC5C0},
		{"VRM_TEMP_HYST", 0xC5D0},
		{"FAN1_TARGET_DUTY", 0xC5E4},
		{"FAN2_TARGET_DUTY", 0xC5E5},
		{"FAN1_TARGET_CURVE_VAL", 0xC5FC},
		{"FAN2_TARGET_CURVE_VAL", 0xC5FD},
		{"FAN_CUR_POINT", 0xC534},
		{"FAN1_CUR_ACC", 0xC3DC},
		{"FAN2_CUR_DEC", 0xC3DF},
		{"FAN1_RPM_LSB", 0xC5E0},
		{"FAN2_RPM_MSB", 0xC5E3},
		{"ECHIPID1", 0x2000},
		{"FW_VER", 0xC2C7},
		{"DCR4", 0x1806},
		{"DCR5", 0x1807},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			addr, ok := ec.Lookup(tc.name)
			assert.True(t, ok)
			assert.Equal(t, tc.addr, addr)
		})
	}
}

func TestLookup_CaseInsensitive(t *testing.T) {
	t.Parallel()

	addr, ok := ec.Lookup("fan_cur_point")
	assert.True(t, ok)
	assert.Equal(t, ec.FanCurPoint, addr)

	_, ok = ec.Lookup("FAN3_BASE")
	assert.False(t, ok)
}

func TestRegisterNames_SortedByAddress(t *testing.T) {
	t.Parallel()

	names := ec.RegisterNames()
	assert.Equal(t, "ECINDAR0", names[0])
	for i := 1; i < len(names); i++ {
		prev, _ := ec.Lookup(names[i-1])
		cur, _ := ec.Lookup(names[i])
		assert.LessOrEqual(t, prev, cur)
	}
}

func TestParseAddress(t *testing.T) {
	t.Parallel()

	addr, err := ec.ParseAddress("FW_VER")
	assert.NoError(t, err)
	assert.Equal(t, ec.FWVer, addr)

	addr, err = ec.ParseAddress("0xC583")
	assert.NoError(t, err)
	assert.Equal(t, ec.Address(0xC583), addr)

	addr, err = ec.ParseAddress("8192")
	assert.NoError(t, err)
	assert.Equal(t, ec.ECHIPID1, addr)

	_, err = ec.ParseAddress("0x10000")
	assert.Error(t, err)
	_, err = ec.ParseAddress("FAN9")
	assert.Error(t, err)
}

func TestAddress_String(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "0xC5E4", ec.Fan1TargetDuty.String())
}
