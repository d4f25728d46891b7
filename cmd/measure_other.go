//go:build !linux

package cmd

func measure(f func() error) (cost float64, unit string, err error) {
	return wallTime(f)
}
