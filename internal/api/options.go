package api

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/jmagar/axon/internal/batchexecute"
)

// Option configures a Client
type Option func(*Client)

// WithLogger sets the logger used by the client and its transport.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.log = l
		}
	}
}

// WithHTTPClient sets the HTTP client used for batchexecute requests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.transport = append(c.transport, batchexecute.WithHTTPClient(hc))
	}
}

// WithRateLimit caps requests per second across all calls, polling included.
func WithRateLimit(rps float64) Option {
	return func(c *Client) {
		c.transport = append(c.transport, batchexecute.WithRateLimit(rps, 1))
	}
}

// WithPollBackoff sets the source polling curve: the first delay, the
// growth factor applied after every poll, and the cap.
func WithPollBackoff(initial time.Duration, factor float64, limit time.Duration) Option {
	return func(c *Client) {
		if initial > 0 {
			c.poll.initial = initial
		}
		if factor >= 1 {
			c.poll.factor = factor
		}
		if limit > 0 {
			c.poll.max = limit
		}
	}
}

type pollBackoff struct {
	initial time.Duration
	factor  float64
	max     time.Duration
}

var defaultPollBackoff = pollBackoff{
	initial: time.Second,
	factor:  1.5,
	max:     10 * time.Second,
}

func (p pollBackoff) next(d time.Duration) time.Duration {
	d = time.Duration(float64(d) * p.factor)
	if d > p.max {
		d = p.max
	}
	return d
}
