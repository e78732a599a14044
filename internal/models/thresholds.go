package models

import (
	"fmt"
	"math"
)

// Thresholds maps threshold names to numeric boundary values. The evaluator
// reads it at the start of every evaluation; updates merge into it.
type Thresholds map[string]float64

// Threshold keys recognized by the evaluator.
const (
	ThresholdCPUWarning          = "cpu_warning"
	ThresholdCPUCritical         = "cpu_critical"
	ThresholdMemoryWarning       = "memory_warning"
	ThresholdMemoryCritical      = "memory_critical"
	ThresholdIfErrorRateWarning  = "interface_error_rate_warning"
	ThresholdIfErrorRateCritical = "interface_error_rate_critical"
	ThresholdTempWarning         = "temperature_warning"
	ThresholdTempCritical        = "temperature_critical"
)

// DefaultThresholds returns the stock threshold set.
func DefaultThresholds() Thresholds {
	return Thresholds{
		ThresholdCPUWarning:          70.0,
		ThresholdCPUCritical:         90.0,
		ThresholdMemoryWarning:       80.0,
		ThresholdMemoryCritical:      95.0,
		ThresholdIfErrorRateWarning:  0.01, // 1%
		ThresholdIfErrorRateCritical: 0.05, // 5%
		ThresholdTempWarning:         70.0,
		ThresholdTempCritical:        85.0,
	}
}

// Clone returns an independent copy.
func (t Thresholds) Clone() Thresholds {
	out := make(Thresholds, len(t))
	for k, v := range t {
		out[k] = v
	}
	return out
}

// Merge returns a copy with every entry of other overwritten or added;
// untouched keys are retained. The receiver is not modified.
func (t Thresholds) Merge(other Thresholds) Thresholds {
	out := t.Clone()
	for k, v := range other {
		out[k] = v
	}
	return out
}

// Validate rejects entries that would corrupt the threshold map. Callers
// validate a partial update in full before merging it.
func (t Thresholds) Validate() error {
	for k, v := range t {
		if k == "" {
			return fmt.Errorf("threshold with empty name")
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("threshold %q has non-finite value", k)
		}
		if v < 0 {
			return fmt.Errorf("threshold %q is negative", k)
		}
	}
	return nil
}
