// Package mute implements the fixed traffic duty cycle: 2 minutes
// active, 3 minutes muted, repeating on UTC minute boundaries.
package mute

import "time"

const (
	cycleMinutes  = 5
	activeMinutes = 2
)

// Muted reports whether the gate is currently in the forced-fallback
// phase of the duty cycle. The cycle is anchored to the UTC epoch
// minute, so every instance observes the same phase regardless of when
// it started or when the configuration last changed. When the system is
// disabled there is no mute concept and Muted returns false.
func Muted(enabled bool, now time.Time) bool {
	if !enabled {
		return false
	}
	minute := now.UTC().Unix() / 60
	return minute%cycleMinutes >= activeMinutes
}
