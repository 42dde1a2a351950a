// Package fancurve holds the in-memory fan configuration of the EC: ten-point fan curves,
// acceleration/deceleration timers and the per-zone temperature breakpoints.
package fancurve

import (
	"encoding/json"
	"errors"
	"fmt"
)

// TableSize is the number of breakpoints of every EC table
const TableSize = 10

// ErrInvalidTableSize is returned when a table does not hold exactly TableSize entries
var ErrInvalidTableSize = errors.New("table must have exactly 10 entries")

// Table is one ten-point EC table. Entry i applies while the temperature is in breakpoint i.
type Table []uint8

// MarshalJSON encodes the table as an array of integers rather than base64
func (t Table) MarshalJSON() ([]byte, error) {
	if t == nil {
		return []byte("null"), nil
	}
	ints := make([]int, len(t))
	for i, v := range t {
		ints[i] = int(v)
	}
	return json.Marshal(ints)
}

// UnmarshalJSON decodes an array of integers in the range 0..255
func (t *Table) UnmarshalJSON(data []byte) error {
	var ints []int
	if err := json.Unmarshal(data, &ints); err != nil {
		return err
	}
	if ints == nil {
		*t = nil
		return nil
	}
	tbl, err := tableFromInts(ints)
	if err != nil {
		return err
	}
	*t = tbl
	return nil
}

// MarshalYAML encodes the table as a sequence of integers
func (t Table) MarshalYAML() (interface{}, error) {
	ints := make([]int, len(t))
	for i, v := range t {
		ints[i] = int(v)
	}
	return ints, nil
}

// UnmarshalYAML decodes a sequence of integers in the range 0..255
func (t *Table) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var ints []int
	if err := unmarshal(&ints); err != nil {
		return err
	}
	tbl, err := tableFromInts(ints)
	if err != nil {
		return err
	}
	*t = tbl
	return nil
}

func tableFromInts(ints []int) (Table, error) {
	tbl := make(Table, len(ints))
	for i, v := range ints {
		if v < 0 || v > 255 {
			return nil, fmt.Errorf("entry %d: value %d out of range 0..255", i, v)
		}
		tbl[i] = uint8(v)
	}
	return tbl, nil
}

// Clone returns an independent copy of the table
func (t Table) Clone() Table {
	if t == nil {
		return nil
	}
	c := make(Table, len(t))
	copy(c, t)
	return c
}

// Config is the writable fan configuration: ten parallel tables
type Config struct {
	Fan1Curve Table `mapstructure:"fan1_curve" json:"fan1_curve" yaml:"fan1_curve"`
	Fan2Curve Table `mapstructure:"fan2_curve" json:"fan2_curve" yaml:"fan2_curve"`
	AccTime   Table `mapstructure:"acc_time" json:"acc_time" yaml:"acc_time"`
	DecTime   Table `mapstructure:"dec_time" json:"dec_time" yaml:"dec_time"`

	CPUUpperTemp Table `mapstructure:"cpu_upper_temp" json:"cpu_upper_temp" yaml:"cpu_upper_temp"`
	CPULowerTemp Table `mapstructure:"cpu_lower_temp" json:"cpu_lower_temp" yaml:"cpu_lower_temp"`
	GPUUpperTemp Table `mapstructure:"gpu_upper_temp" json:"gpu_upper_temp" yaml:"gpu_upper_temp"`
	GPULowerTemp Table `mapstructure:"gpu_lower_temp" json:"gpu_lower_temp" yaml:"gpu_lower_temp"`
	VRMUpperTemp Table `mapstructure:"vrm_upper_temp" json:"vrm_upper_temp" yaml:"vrm_upper_temp"`
	VRMLowerTemp Table `mapstructure:"vrm_lower_temp" json:"vrm_lower_temp" yaml:"vrm_lower_temp"`
}

// NamedTable pairs a table with its configuration key
type NamedTable struct {
	Name  string
	Table Table
}

// Tables returns all ten tables in canonical order
func (c *Config) Tables() []NamedTable {
	return []NamedTable{
		{"fan1_curve", c.Fan1Curve},
		{"fan2_curve", c.Fan2Curve},
		{"acc_time", c.AccTime},
		{"dec_time", c.DecTime},
		{"cpu_upper_temp", c.CPUUpperTemp},
		{"cpu_lower_temp", c.CPULowerTemp},
		{"gpu_upper_temp", c.GPUUpperTemp},
		{"gpu_lower_temp", c.GPULowerTemp},
		{"vrm_upper_temp", c.VRMUpperTemp},
		{"vrm_lower_temp", c.VRMLowerTemp},
	}
}

// Validate checks that every table holds exactly TableSize entries
func (c *Config) Validate() error {
	var errs []error
	for _, nt := range c.Tables() {
		if len(nt.Table) != TableSize {
			errs = append(errs, fmt.Errorf("%s has %d entries: %w", nt.Name, len(nt.Table), ErrInvalidTableSize))
		}
	}
	return errors.Join(errs...)
}

// Clone returns a deep copy of the configuration
func (c Config) Clone() Config {
	return Config{
		Fan1Curve:    c.Fan1Curve.Clone(),
		Fan2Curve:    c.Fan2Curve.Clone(),
		AccTime:      c.AccTime.Clone(),
		DecTime:      c.DecTime.Clone(),
		CPUUpperTemp: c.CPUUpperTemp.Clone(),
		CPULowerTemp: c.CPULowerTemp.Clone(),
		GPUUpperTemp: c.GPUUpperTemp.Clone(),
		GPULowerTemp: c.GPULowerTemp.Clone(),
		VRMUpperTemp: c.VRMUpperTemp.Clone(),
		VRMLowerTemp: c.VRMLowerTemp.Clone(),
	}
}

// Status is a snapshot of measured fan state together with the currently programmed configuration
type Status struct {
	Config `mapstructure:",squash" yaml:",inline"`

	Fan1RPM     uint16 `json:"fan1_rpm" yaml:"fan1_rpm"`
	Fan2RPM     uint16 `json:"fan2_rpm" yaml:"fan2_rpm"`
	Fan1Percent int    `json:"fan1_percent" yaml:"fan1_percent"`
	Fan2Percent int    `json:"fan2_percent" yaml:"fan2_percent"`

	ChipID1         uint8  `json:"chip_id1" yaml:"chip_id1"`
	ChipID2         uint8  `json:"chip_id2" yaml:"chip_id2"`
	ChipVersion     uint8  `json:"chip_version" yaml:"chip_version"`
	FirmwareVersion uint16 `json:"firmware_version" yaml:"firmware_version"`

	Fan1TargetDuty       uint8 `json:"fan1_target_duty" yaml:"fan1_target_duty"`
	Fan2TargetDuty       uint8 `json:"fan2_target_duty" yaml:"fan2_target_duty"`
	Fan1TargetCurveValue uint8 `json:"fan1_target_curve_value" yaml:"fan1_target_curve_value"`
	Fan2TargetCurveValue uint8 `json:"fan2_target_curve_value" yaml:"fan2_target_curve_value"`

	// CurrentPoint is the breakpoint index the EC is currently operating in
	CurrentPoint uint8 `json:"current_point" yaml:"current_point"`

	Fan1CurrentAcc uint8 `json:"fan1_current_acc" yaml:"fan1_current_acc"`
	Fan1CurrentDec uint8 `json:"fan1_current_dec" yaml:"fan1_current_dec"`
	Fan2CurrentAcc uint8 `json:"fan2_current_acc" yaml:"fan2_current_acc"`
	Fan2CurrentDec uint8 `json:"fan2_current_dec" yaml:"fan2_current_dec"`
}

// ChipID returns the EC chip identifier, e.g. 0x5570
func (s *Status) ChipID() uint16 {
	return uint16(s.ChipID1)<<8 | uint16(s.ChipID2)
}

// Percent derives a duty percentage from an RPM reading with integer truncation.
// Readings above max yield more than 100; a zero max yields 0.
func Percent(rpm, max uint16) int {
	if max == 0 {
		return 0
	}
	return int(rpm) * 100 / int(max)
}

// Mismatch describes one table entry that differs between two configurations
type Mismatch struct {
	Table string `json:"table" yaml:"table"`
	Index int    `json:"index" yaml:"index"`
	Want  uint8  `json:"want" yaml:"want"`
	Got   uint8  `json:"got" yaml:"got"`
}

func (m Mismatch) String() string {
	return fmt.Sprintf("%s[%d]: want %d, got %d", m.Table, m.Index, m.Want, m.Got)
}

// Diff compares two configurations entry by entry. Entries missing on either side count as
// mismatches against 0.
func Diff(want, got Config) []Mismatch {
	var out []Mismatch
	gotTables := got.Tables()
	for i, w := range want.Tables() {
		g := gotTables[i].Table
		n := len(w.Table)
		if len(g) > n {
			n = len(g)
		}
		for j := 0; j < n; j++ {
			var wv, gv uint8
			if j < len(w.Table) {
				wv = w.Table[j]
			}
			if j < len(g) {
				gv = g[j]
			}
			if wv != gv || j >= len(w.Table) || j >= len(g) {
				out = append(out, Mismatch{Table: w.Name, Index: j, Want: wv, Got: gv})
			}
		}
	}
	return out
}
