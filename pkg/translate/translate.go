// Package translate implements the batch translation client.
//
// A batch call sends every text in one prompt and asks the service for a
// structured id/translation array. The protocol degrades in layers: strict
// JSON parse first, then a line-scan for recoverable fragments, then a
// one-shot fallback call per still-missing text, and finally passthrough of
// the source text. The client always resolves every text it was given.
package translate

import (
	"context"
	"math"
	"math/rand"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/vellumworks/sheetglot/pkg/inference"
)

// Config configures client behavior.
type Config struct {
	// BatchMaxRetries is the attempt budget for a batch call when throttled.
	// Default: 5
	BatchMaxRetries int

	// SingleMaxRetries is the attempt budget for a single-text fallback call.
	// Default: 3
	SingleMaxRetries int

	// BatchMaxTokens bounds the batch response length.
	// Default: 16384
	BatchMaxTokens int

	// SingleMaxTokens bounds the single-text response length.
	// Default: 1024
	SingleMaxTokens int

	// Temperature is the sampling temperature for all calls.
	// Default: 0.1
	Temperature float32

	// RateLimit is the maximum inference requests per second.
	// Zero means unlimited (the retry backoff handles provider throttling).
	// Default: 0
	RateLimit float64
}

// DefaultConfig returns the default client configuration.
func DefaultConfig() Config {
	return Config{
		BatchMaxRetries:  5,
		SingleMaxRetries: 3,
		BatchMaxTokens:   16384,
		SingleMaxTokens:  1024,
		Temperature:      0.1,
	}
}

// Outcome reports how a batch resolved.
//
// Translations always contains one entry per requested text; the counters
// say how each entry got there.
type Outcome struct {
	// Translations maps each source text to its output value.
	Translations map[string]string

	// Structured counts texts resolved by the batch response itself.
	Structured int

	// FromCache counts texts answered from the cache without a call.
	FromCache int

	// Fallback counts texts resolved through single-text fallback calls.
	Fallback int

	// Passthrough lists texts returned unchanged after every attempt failed.
	Passthrough []string
}

// Translated returns how many texts received an actual translation.
func (o *Outcome) Translated() int {
	return o.Structured + o.FromCache + o.Fallback
}

// Client performs batch and single-text translation calls.
//
// Client is safe for concurrent use; retry sleeps are local to one call and
// never block other callers.
type Client struct {
	inf    inference.Client
	cache  Cache
	cfg    Config
	logger *zap.Logger

	// Rate limiter (nil if unlimited)
	limiter *rate.Limiter

	// Injection points for tests.
	sleep  func(ctx context.Context, d time.Duration) error
	jitter func() time.Duration
}

// New creates a translation client.
//
// Use WithCache and WithLogger to attach optional collaborators after
// creation.
func New(inf inference.Client, cfg Config) *Client {
	def := DefaultConfig()
	if cfg.BatchMaxRetries <= 0 {
		cfg.BatchMaxRetries = def.BatchMaxRetries
	}
	if cfg.SingleMaxRetries <= 0 {
		cfg.SingleMaxRetries = def.SingleMaxRetries
	}
	if cfg.BatchMaxTokens <= 0 {
		cfg.BatchMaxTokens = def.BatchMaxTokens
	}
	if cfg.SingleMaxTokens <= 0 {
		cfg.SingleMaxTokens = def.SingleMaxTokens
	}
	if cfg.Temperature == 0 {
		cfg.Temperature = def.Temperature
	}

	c := &Client{
		inf:    inf,
		cache:  NopCache{},
		cfg:    cfg,
		logger: zap.NewNop(),
		sleep:  sleepCtx,
		jitter: func() time.Duration { return time.Duration(rand.Int63n(int64(time.Second))) },
	}

	if cfg.RateLimit > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), 1)
	}

	return c
}

// WithCache sets the translation cache. Returns the client for chaining.
func (c *Client) WithCache(cache Cache) *Client {
	if cache != nil {
		c.cache = cache
	}
	return c
}

// WithLogger sets the logger. Returns the client for chaining.
func (c *Client) WithLogger(logger *zap.Logger) *Client {
	if logger != nil {
		c.logger = logger
	}
	return c
}

// TranslateBatch resolves every text in the batch.
//
// The only error returned is context cancellation; service failures degrade
// through fallback and passthrough instead of surfacing.
func (c *Client) TranslateBatch(ctx context.Context, texts []string, sourceLang, targetLang string) (*Outcome, error) {
	out := &Outcome{Translations: make(map[string]string, len(texts))}
	if len(texts) == 0 {
		return out, nil
	}

	// Serve what the cache already knows and collect the remainder.
	var pending []string
	for _, text := range texts {
		if cached, ok := c.cache.Get(sourceLang, targetLang, text); ok {
			out.Translations[text] = cached
			out.FromCache++
			continue
		}
		pending = append(pending, text)
	}

	if len(pending) > 0 {
		structured, err := c.callBatch(ctx, pending, sourceLang, targetLang)
		if err != nil {
			return nil, err
		}
		for text, translation := range structured {
			out.Translations[text] = translation
			c.cache.Put(sourceLang, targetLang, text, translation)
			out.Structured++
		}
	}

	// Per-text fallback for whatever the batch response did not cover.
	for _, text := range pending {
		if _, ok := out.Translations[text]; ok {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		translated, ok := c.translateSingle(ctx, text, sourceLang, targetLang)
		out.Translations[text] = translated
		if ok {
			c.cache.Put(sourceLang, targetLang, text, translated)
			out.Fallback++
		} else {
			out.Passthrough = append(out.Passthrough, text)
		}
	}

	return out, nil
}

// TranslateSingle translates one text, returning the source text unchanged
// when every attempt fails.
func (c *Client) TranslateSingle(ctx context.Context, text, sourceLang, targetLang string) string {
	if cached, ok := c.cache.Get(sourceLang, targetLang, text); ok {
		return cached
	}
	translated, ok := c.translateSingle(ctx, text, sourceLang, targetLang)
	if ok {
		c.cache.Put(sourceLang, targetLang, text, translated)
	}
	return translated
}

// callBatch runs the batch protocol with throttle retries and returns the
// text→translation entries recovered from the response.
func (c *Client) callBatch(ctx context.Context, texts []string, sourceLang, targetLang string) (map[string]string, error) {
	prompt := batchPrompt(texts, sourceLang, targetLang)

	for attempt := 0; attempt < c.cfg.BatchMaxRetries; attempt++ {
		if err := c.waitForRateLimit(ctx); err != nil {
			return nil, err
		}

		raw, err := c.inf.Complete(ctx, inference.Request{
			Prompt:      prompt,
			MaxTokens:   c.cfg.BatchMaxTokens,
			Temperature: c.cfg.Temperature,
		})
		if err == nil {
			entries := parseBatchResponse(raw, len(texts))
			result := make(map[string]string, len(entries))
			for id, translation := range entries {
				result[texts[id]] = translation
			}
			c.logger.Debug("batch call resolved",
				zap.Int("requested", len(texts)),
				zap.Int("resolved", len(result)),
				zap.Int("attempt", attempt+1))
			return result, nil
		}

		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}

		if !inference.IsThrottled(err) {
			// Permanent failure class: don't burn the retry budget, let the
			// per-text fallback absorb the batch.
			c.logger.Warn("batch call failed", zap.Error(err))
			return nil, nil
		}

		if attempt < c.cfg.BatchMaxRetries-1 {
			delay := c.backoffDelay(attempt)
			c.logger.Info("batch call throttled, backing off",
				zap.Duration("delay", delay),
				zap.Int("attempt", attempt+2),
				zap.Int("max_attempts", c.cfg.BatchMaxRetries))
			if err := c.sleep(ctx, delay); err != nil {
				return nil, err
			}
		}
	}

	c.logger.Warn("batch call exhausted retry budget", zap.Int("texts", len(texts)))
	return nil, nil
}

// translateSingle runs the one-shot protocol. The bool reports whether the
// returned value is a real translation (false means passthrough).
func (c *Client) translateSingle(ctx context.Context, text, sourceLang, targetLang string) (string, bool) {
	if text == "" {
		return text, false
	}

	prompt := singlePrompt(text, targetLang)

	for attempt := 0; attempt < c.cfg.SingleMaxRetries; attempt++ {
		if err := c.waitForRateLimit(ctx); err != nil {
			return text, false
		}

		raw, err := c.inf.Complete(ctx, inference.Request{
			Prompt:      prompt,
			MaxTokens:   c.cfg.SingleMaxTokens,
			Temperature: c.cfg.Temperature,
		})
		if err == nil {
			if translated := sanitizeSingle(raw); translated != "" {
				return translated, true
			}
			return text, false
		}

		if ctx.Err() != nil {
			return text, false
		}

		if inference.IsThrottled(err) && attempt < c.cfg.SingleMaxRetries-1 {
			if err := c.sleep(ctx, c.backoffDelay(attempt)); err != nil {
				return text, false
			}
			continue
		}

		c.logger.Debug("single call failed, passing text through", zap.Error(err))
		return text, false
	}

	return text, false
}

// backoffDelay returns 2^(attempt+1) seconds plus sub-second jitter.
func (c *Client) backoffDelay(attempt int) time.Duration {
	base := time.Duration(math.Pow(2, float64(attempt+1))) * time.Second
	return base + c.jitter()
}

// MaxBackoff returns the worst-case cumulative backoff wait for a fully
// throttled call with the given retry budget: Σ 2^(k+1) seconds for k in
// [0, maxRetries). Jitter adds at most one extra second per attempt.
func MaxBackoff(maxRetries int) time.Duration {
	var total time.Duration
	for k := 0; k < maxRetries; k++ {
		total += time.Duration(math.Pow(2, float64(k+1))) * time.Second
	}
	return total
}

// waitForRateLimit blocks until the rate limiter allows a request.
// Returns immediately if rate limiting is disabled.
func (c *Client) waitForRateLimit(ctx context.Context) error {
	if c.limiter == nil {
		return nil
	}
	return c.limiter.Wait(ctx)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
