package fancurve

import (
	"errors"
	"fmt"
)

// DefaultHysteresis is the gap in degrees between a breakpoint's upper bound and the next
// breakpoint's lower bound
const DefaultHysteresis uint8 = 3

// ErrThresholdOrder is reported when a lower temperature bound is above its upper bound
var ErrThresholdOrder = errors.New("lower threshold above upper threshold")

// Zone is a temperature sensor zone with its own breakpoint tables
type Zone string

const (
	ZoneCPU Zone = "cpu"
	ZoneGPU Zone = "gpu"
	ZoneVRM Zone = "vrm"
)

// Zones lists all zones in register order
var Zones = []Zone{ZoneCPU, ZoneGPU, ZoneVRM}

// Thresholds returns pointers to the upper and lower tables of a zone
func (c *Config) Thresholds(z Zone) (upper, lower *Table, err error) {
	switch z {
	case ZoneCPU:
		return &c.CPUUpperTemp, &c.CPULowerTemp, nil
	case ZoneGPU:
		return &c.GPUUpperTemp, &c.GPULowerTemp, nil
	case ZoneVRM:
		return &c.VRMUpperTemp, &c.VRMLowerTemp, nil
	default:
		return nil, nil, fmt.Errorf("unknown zone %q", z)
	}
}

// ApplyHysteresis derives a lower-bound table from upper: lower[i+1] = max(0, upper[i]-margin).
// lower[0] is kept from the given lower table (0 when it is empty).
func ApplyHysteresis(upper, lower Table, margin uint8) Table {
	out := make(Table, len(upper))
	if len(lower) > 0 && len(out) > 0 {
		out[0] = lower[0]
	}
	for i := 0; i+1 < len(upper); i++ {
		if upper[i] > margin {
			out[i+1] = upper[i] - margin
		}
	}
	return out
}

// ApplyHysteresis rewrites the lower-bound tables of every zone from its upper-bound table
func (c *Config) ApplyHysteresis(margin uint8) {
	for _, z := range Zones {
		upper, lower, _ := c.Thresholds(z)
		*lower = ApplyHysteresis(*upper, *lower, margin)
	}
}

// CheckThresholds reports every breakpoint whose lower bound exceeds its upper bound.
// The EC accepts such tables; the result is advisory.
func (c *Config) CheckThresholds() error {
	var errs []error
	for _, z := range Zones {
		upper, lower, _ := c.Thresholds(z)
		n := len(*upper)
		if len(*lower) < n {
			n = len(*lower)
		}
		for i := 0; i < n; i++ {
			if (*lower)[i] > (*upper)[i] {
				errs = append(errs, fmt.Errorf("%s breakpoint %d: %d > %d: %w", z, i, (*lower)[i], (*upper)[i], ErrThresholdOrder))
			}
		}
	}
	return errors.Join(errs...)
}
