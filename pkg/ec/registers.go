package ec

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Address is a 16-bit location in EC memory, reachable only through the D2EC bridge
type Address uint16

func (a Address) String() string {
	return fmt.Sprintf("0x%04X", uint16(a))
}

// Register map of the ITE EC firmware found on this laptop family.
// Values are vendor firmware layout and must stay bit-exact.
const (
	ECINDAR0 Address = 0x103B
	ECINDAR1 Address = 0x103C
	ECINDAR2 Address = 0x103D
	ECINDAR3 Address = 0x103E
	ECINDDR  Address = 0x103F

	GPDRA  Address = 0x1601
	GPCRA0 Address = 0x1610
	GPCRA1 Address = 0x1611
	GPCRA2 Address = 0x1612
	GPCRA3 Address = 0x1613
	GPCRA4 Address = 0x1614
	GPCRA5 Address = 0x1615
	GPCRA6 Address = 0x1616
	GPCRA7 Address = 0x1617
	GPOTA  Address = 0x1671
	GPDMRA Address = 0x1661

	// PWM duty cycle registers. DCR4/DCR5 drive fan 2/fan 1.
	DCR0 Address = 0x1802
	DCR1 Address = 0x1803
	DCR2 Address = 0x1804
	DCR3 Address = 0x1805
	DCR4 Address = 0x1806
	DCR5 Address = 0x1807
	DCR6 Address = 0x1808
	DCR7 Address = 0x1809
	CTR2 Address = 0x1842

	ECHIPID1 Address = 0x2000
	ECHIPID2 Address = 0x2001
	ECHIPVER Address = 0x2002
	ECDEBUG  Address = 0x2003

	EADDR Address = 0x2100
	EDAT  Address = 0x2101
	ECNT  Address = 0x2102
	ESTS  Address = 0x2103

	FWVer Address = 0xC2C7

	FanCurPoint Address = 0xC534
	FanPoint    Address = 0xC535

	// 10-entry tables
	Fan1Base    Address = 0xC540
	Fan2Base    Address = 0xC550
	FanAccBase  Address = 0xC560
	FanDecBase  Address = 0xC570
	CPUTemp     Address = 0xC580
	CPUTempHyst Address = 0xC590
	GPUTemp     Address = 0xC5A0
	GPUTempHyst Address = 0xC5B0
	VRMTemp     Address = 0xC5C0
	VRMTempHyst Address = 0xC5D0

	Fan1TargetDuty     Address = 0xC5FC - 0x18
	Fan2TargetDuty     Address = 0xC5FD - 0x18
	Fan1TargetCurveVal Address = 0xC5FC
	Fan2TargetCurveVal Address = 0xC5FD

	CPUTempEn Address = 0xC631
	GPUTempEn Address = 0xC632
	VRMTempEn Address = 0xC633

	Fan1AccTimer Address = 0xC3DA
	Fan2AccTimer Address = 0xC3DB
	Fan1CurAcc   Address = 0xC3DC
	Fan1CurDec   Address = 0xC3DD
	Fan2CurAcc   Address = 0xC3DE
	Fan2CurDec   Address = 0xC3DF

	Fan1RPMLSB Address = 0xC5E0
	Fan1RPMMSB Address = 0xC5E1
	Fan2RPMLSB Address = 0xC5E2
	Fan2RPMMSB Address = 0xC5E3
)

var registers = map[string]Address{
	"ECINDAR0":              ECINDAR0,
	"ECINDAR1":              ECINDAR1,
	"ECINDAR2":              ECINDAR2,
	"ECINDAR3":              ECINDAR3,
	"ECINDDR":               ECINDDR,
	"GPDRA":                 GPDRA,
	"GPCRA0":                GPCRA0,
	"GPCRA1":                GPCRA1,
	"GPCRA2":                GPCRA2,
	"GPCRA3":                GPCRA3,
	"GPCRA4":                GPCRA4,
	"GPCRA5":                GPCRA5,
	"GPCRA6":                GPCRA6,
	"GPCRA7":                GPCRA7,
	"GPOTA":                 GPOTA,
	"GPDMRA":                GPDMRA,
	"DCR0":                  DCR0,
	"DCR1":                  DCR1,
	"DCR2":                  DCR2,
	"DCR3":                  DCR3,
	"DCR4":                  DCR4,
	"DCR5":                  DCR5,
	"DCR6":                  DCR6,
	"DCR7":                  DCR7,
	"CTR2":                  CTR2,
	"ECHIPID1":              ECHIPID1,
	"ECHIPID2":              ECHIPID2,
	"ECHIPVER":              ECHIPVER,
	"ECDEBUG":               ECDEBUG,
	"EADDR":                 EADDR,
	"EDAT":                  EDAT,
	"ECNT":                  ECNT,
	"ESTS":                  ESTS,
	"FW_VER":                FWVer,
	"FAN_CUR_POINT":         FanCurPoint,
	"FAN_POINT":             FanPoint,
	"FAN1_BASE":             Fan1Base,
	"FAN2_BASE":             Fan2Base,
	"FAN_ACC_BASE":          FanAccBase,
	"FAN_DEC_BASE":          FanDecBase,
	"CPU_TEMP":              CPUTemp,
	"CPU_TEMP_HYST":         CPUTempHyst,
	"GPU_TEMP":              GPUTemp,
	"GPU_TEMP_HYST":         GPUTempHyst,
	"VRM_TEMP":              VRMTemp,
	"VRM_TEMP_HYST":         VRMTempHyst,
	"FAN1_TARGET_DUTY":      Fan1TargetDuty,
	"FAN2_TARGET_DUTY":      Fan2TargetDuty,
	"FAN1_TARGET_CURVE_VAL": Fan1TargetCurveVal,
	"FAN2_TARGET_CURVE_VAL": Fan2TargetCurveVal,
	"CPU_TEMP_EN":           CPUTempEn,
	"GPU_TEMP_EN":           GPUTempEn,
	"VRM_TEMP_EN":           VRMTempEn,
	"FAN1_ACC_TIMER":        Fan1AccTimer,
	"FAN2_ACC_TIMER":        Fan2AccTimer,
	"FAN1_CUR_ACC":          Fan1CurAcc,
	"FAN1_CUR_DEC":          Fan1CurDec,
	"FAN2_CUR_ACC":          Fan2CurAcc,
	"FAN2_CUR_DEC":          Fan2CurDec,
	"FAN1_RPM_LSB":          Fan1RPMLSB,
	"FAN1_RPM_MSB":          Fan1RPMMSB,
	"FAN2_RPM_LSB":          Fan2RPMLSB,
	"FAN2_RPM_MSB":          Fan2RPMMSB,
}

// Lookup returns the address of a named register (case-insensitive)
func Lookup(name string) (Address, bool) {
	addr, ok := registers[strings.ToUpper(name)]
	return addr, ok
}

// RegisterNames returns all register names, sorted by address
func RegisterNames() []string {
	names := make([]string, 0, len(registers))
	for name := range registers {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		ai, aj := registers[names[i]], registers[names[j]]
		if ai != aj {
			return ai < aj
		}
		return names[i] < names[j]
	})
	return names
}

// ParseAddress accepts a register name or a numeric literal (0x-prefixed hex or decimal)
func ParseAddress(s string) (Address, error) {
	if addr, ok := Lookup(s); ok {
		return addr, nil
	}
	v, err := strconv.ParseUint(s, 0, 16)
	if err != nil {
		return 0, fmt.Errorf("%q is neither a register name nor a 16-bit address", s)
	}
	return Address(v), nil
}
