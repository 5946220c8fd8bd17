package export

import (
	"time"

	"github.com/reelpress/reelpress/internal/utils"
)

// Scheduler drives the render loop: step is invoked repeatedly with one
// suspension point per iteration until it returns false.
type Scheduler interface {
	Run(step func() bool)
}

// TickerScheduler suspends on a wall-clock ticker, one tick per output
// frame.
type TickerScheduler struct {
	Interval time.Duration
}

func (s TickerScheduler) Run(step func() bool) {
	interval := s.Interval
	if interval <= 0 {
		interval = utils.Fps(OutputFPS)
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for range ticker.C {
		if !step() {
			return
		}
	}
}
