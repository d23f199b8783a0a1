package refs

import "sync/atomic"

// Counter is an Observer that tracks live and total slots per kind.
type Counter struct {
	live    [4]atomic.Int64
	created [4]atomic.Int64
	peak    [4]atomic.Int64
}

// OnRefEvent implements Observer.
func (c *Counter) OnRefEvent(e Event) {
	k := e.Kind & 3
	switch e.Type {
	case EventCreated:
		c.created[k].Add(1)
		n := c.live[k].Add(1)
		for {
			p := c.peak[k].Load()
			if n <= p || c.peak[k].CompareAndSwap(p, n) {
				break
			}
		}
	case EventDropped:
		c.live[k].Add(-1)
	}
}

// Live returns the number of live slots of kind.
func (c *Counter) Live(kind Kind) int64 { return c.live[kind&3].Load() }

// Created returns the number of slots of kind ever created.
func (c *Counter) Created(kind Kind) int64 { return c.created[kind&3].Load() }

// Peak returns the highest number of simultaneously live slots of kind.
func (c *Counter) Peak(kind Kind) int64 { return c.peak[kind&3].Load() }
