//go:build linux

package cmd

import (
	perf "github.com/hodgesds/perf-utils"
)

// measure counts the CPU instructions retired by f, falling back to wall
// time when perf events are not available.
func measure(f func() error) (cost float64, unit string, err error) {
	var pv *perf.ProfileValue
	if pv, err = perf.CPUInstructions(f); err != nil {
		return wallTime(f)
	}
	return float64(pv.Value), "instructions", nil
}
