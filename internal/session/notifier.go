package session

import "context"

// Subscribe registers an event channel that receives phase changes until
// ctx is done or the returned cancel func is called. Slow subscribers drop
// events instead of blocking the controller.
func (c *Controller) Subscribe(ctx context.Context) (<-chan Event, func()) {
	ch := make(chan Event, 16)

	c.subMu.Lock()
	c.subs[ch] = struct{}{}
	c.subMu.Unlock()

	var cancel func()
	cancel = func() {
		c.subMu.Lock()
		if _, ok := c.subs[ch]; ok {
			delete(c.subs, ch)
			close(ch)
		}
		c.subMu.Unlock()
	}

	go func() {
		<-ctx.Done()
		cancel()
	}()

	return ch, cancel
}

func (c *Controller) publish(ev Event) {
	c.subMu.Lock()
	defer c.subMu.Unlock()
	for ch := range c.subs {
		select {
		case ch <- ev:
		default:
			// subscriber is not keeping up; drop
		}
	}
}
