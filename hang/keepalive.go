package hang

import (
	"context"
	"sync"
	"time"
)

// Keepalive sends a ping envelope on a fixed interval to keep the server
// from idling the connection out. A failed ping is the one send failure
// treated as a signal rather than a silent log: it flips the client's
// authenticated flag and stops the scheduler until a new connection
// reports open.
type Keepalive struct {
	stop chan struct{}
	once sync.Once
}

// StartKeepalive begins pinging c every interval. It returns a handle that
// the owning client stops when the connection goes away.
func StartKeepalive(c *Client, interval time.Duration) *Keepalive {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	k := &Keepalive{stop: make(chan struct{})}
	go k.run(c, interval)
	return k
}

// Stop halts further pings. Safe to call more than once.
func (k *Keepalive) Stop() {
	k.once.Do(func() { close(k.stop) })
}

func (k *Keepalive) run(c *Client, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), interval)
			err := c.Ping(ctx)
			cancel()
			if err != nil {
				c.logger.Warn("keepalive ping failed", map[string]any{
					"channel": string(c.channel), "error": err.Error(),
				})
				c.markUnauthenticated()
				return
			}
		case <-k.stop:
			return
		}
	}
}
