package errwebhook

import (
	"net/http"

	"golang.org/x/time/rate"
)

type Option func(*Client)

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithRate limita los POST por segundo (burst 1).
func WithRate(rps float64) Option {
	return func(c *Client) {
		if rps > 0 {
			c.lim = rate.NewLimiter(rate.Limit(rps), 1)
		}
	}
}

func WithQueueSize(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.queue = make(chan string, n)
		}
	}
}
