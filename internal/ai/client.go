package ai

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"fintrack/internal/cache"
	"fintrack/internal/log"
)

const (
	cacheSize = 256
	cacheTTL  = 6 * time.Hour
)

// Completion is a successful provider response.
type Completion struct {
	Provider string
	Text     string
}

// Client walks the provider priority list until one completes the prompt.
type Client struct {
	providers []Provider
	retries   int
	backoff   time.Duration
	cache     *cache.LRU[Completion]
	logger    *log.Logger
}

// NewClient builds the fallback chain in priority order. retries is the
// number of extra attempts per provider after the first.
func NewClient(timeout time.Duration, retries int, logger *log.Logger) *Client {
	if retries < 0 {
		retries = 0
	}
	return &Client{
		providers: []Provider{
			NewOpenAIProvider(timeout),
			NewAnthropicProvider(timeout),
			NewGeminiProvider(timeout),
		},
		retries: retries,
		backoff: 500 * time.Millisecond,
		cache:   cache.NewLRU[Completion](cacheSize, cacheTTL),
		logger:  logger.WithComponent(log.ComponentAI),
	}
}

// Generate tries each provider the caller holds a key for, in priority
// order. The first success is cached under cacheKey and returned.
func (c *Client) Generate(ctx context.Context, keys map[string]string, cacheKey, prompt string) (Completion, error) {
	if len(keys) == 0 {
		return Completion{}, ErrNoCredentials
	}

	key := hashKey(cacheKey, prompt)
	if hit, ok := c.cache.Get(key); ok {
		return hit, nil
	}

	var errs []error
	for _, p := range c.providers {
		apiKey, ok := keys[p.Name()]
		if !ok || apiKey == "" {
			continue
		}

		text, err := c.complete(ctx, p, apiKey, prompt)
		if err != nil {
			c.logger.WarnContext(ctx, "Provider failed, falling through",
				log.FieldProvider, p.Name(),
				log.FieldError, err.Error())
			errs = append(errs, fmt.Errorf("%s: %w", p.Name(), err))
			continue
		}

		out := Completion{Provider: p.Name(), Text: text}
		c.cache.Set(key, out)
		return out, nil
	}

	if len(errs) == 0 {
		return Completion{}, ErrNoCredentials
	}
	return Completion{}, fmt.Errorf("all providers failed: %w", errors.Join(errs...))
}

// complete runs one provider with linear backoff between attempts.
func (c *Client) complete(ctx context.Context, p Provider, apiKey, prompt string) (string, error) {
	var lastErr error
	for attempt := 0; attempt <= c.retries; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(time.Duration(attempt) * c.backoff):
			case <-ctx.Done():
				return "", ctx.Err()
			}
		}

		text, err := p.Complete(ctx, apiKey, prompt)
		if err == nil {
			return text, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			return "", lastErr
		}
	}
	return "", lastErr
}

// RunCacheJanitor evicts expired completions until ctx is cancelled.
// Intended to run in its own goroutine.
func (c *Client) RunCacheJanitor(ctx context.Context) {
	c.cache.Janitor(ctx, time.Hour)
}

func hashKey(cacheKey, prompt string) string {
	sum := sha256.Sum256([]byte(cacheKey + "\x00" + prompt))
	return hex.EncodeToString(sum[:])
}
