package errwebhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// Límite de content de Discord.
const maxContent = 2000

const defaultQueue = 256

// Client implementa service.ErrorSink posteando a un webhook de Discord.
// Report encola y Run consume respetando el rate limit.
type Client struct {
	url   string
	http  *http.Client
	lim   *rate.Limiter
	queue chan string
	log   zerolog.Logger

	dropped atomic.Int64
}

func New(webhookURL string, log zerolog.Logger, opts ...Option) *Client {
	c := &Client{
		url:   webhookURL,
		http:  &http.Client{Timeout: 10 * time.Second},
		lim:   rate.NewLimiter(rate.Limit(1), 1),
		queue: make(chan string, defaultQueue),
		log:   log.With().Str("component", "errwebhook").Logger(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Report no bloquea: si la cola está llena el mensaje se descarta.
func (c *Client) Report(text string) {
	select {
	case c.queue <- truncate(text):
	default:
		n := c.dropped.Add(1)
		c.log.Warn().Int64("dropped", n).Msg("error webhook queue full, dropping report")
	}
}

// Dropped cuenta los reportes descartados por cola llena.
func (c *Client) Dropped() int64 { return c.dropped.Load() }

// Run postea hasta que ctx se cancela.
func (c *Client) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case text := <-c.queue:
			if err := c.lim.Wait(ctx); err != nil {
				return
			}
			if err := c.Post(ctx, text); err != nil {
				c.log.Error().Err(err).Msg("failed to post to error webhook")
			}
		}
	}
}

type payload struct {
	Content         string          `json:"content"`
	AllowedMentions allowedMentions `json:"allowed_mentions"`
}

type allowedMentions struct {
	Parse []string `json:"parse"`
}

// Post manda un mensaje; en 429 respeta Retry-After y reintenta una vez.
func (c *Client) Post(ctx context.Context, text string) error {
	return c.post(ctx, text, true)
}

func (c *Client) post(ctx context.Context, text string, retry bool) error {
	body, err := json.Marshal(payload{Content: text, AllowedMentions: allowedMentions{Parse: []string{}}})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("error webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("error webhook http: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusTooManyRequests && retry {
		if wait := retryAfter(res.Header.Get("Retry-After")); wait > 0 {
			select {
			case <-time.After(wait):
			case <-ctx.Done():
				return ctx.Err()
			}
			return c.post(ctx, text, false)
		}
	}

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(res.Body, 4<<10))
		return &APIError{Status: res.StatusCode, Body: strings.TrimSpace(string(b))}
	}
	return nil
}

// Retry-After en segundos (puede traer decimales).
func retryAfter(v string) time.Duration {
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil || f <= 0 {
		return 0
	}
	return time.Duration(f * float64(time.Second))
}

func truncate(s string) string {
	r := []rune(s)
	if len(r) <= maxContent {
		return s
	}
	return string(r[:maxContent-1]) + "…"
}
