package domain

import "github.com/jonboulle/clockwork"

// clock is the package time source used to stamp assessments. Tests freeze it
// via SetClock for deterministic ProcessedAt values.
var clock = clockwork.NewRealClock()

// SetClock swaps the package time source. Pass nil to restore the real clock.
func SetClock(c clockwork.Clock) {
	if c == nil {
		clock = clockwork.NewRealClock()
		return
	}
	clock = c
}
