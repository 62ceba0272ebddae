package world

import (
	"sync/atomic"
	"time"
)

// TickRate reports and adjusts the World's tick speed. A server under load
// can slow ticks down, or fast-forward an idle world, without restarting
// the tick loop.
type TickRate struct {
	interval atomic.Int64 // nanoseconds
}

func newTickRate() *TickRate {
	tr := &TickRate{}
	tr.interval.Store(int64(tickInterval))
	return tr
}

// Interval returns the current duration of one tick.
func (tr *TickRate) Interval() time.Duration { return time.Duration(tr.interval.Load()) }

// SetInterval changes the duration of one tick, taking effect on the tick
// loop's next iteration.
func (tr *TickRate) SetInterval(d time.Duration) { tr.interval.Store(int64(d)) }

// TickRate returns the World's TickRate controller.
func (w *World) TickRate() *TickRate { return w.tickRate }
