// Package ai generates budget insights through external LLM providers.
// Providers are tried in a fixed priority order and the first success
// wins; responses are cached so repeated prompts stay cheap.
package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"
)

const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderGemini    = "gemini"
)

var ErrNoCredentials = errors.New("no provider credentials configured")

// Provider is a single LLM backend.
type Provider interface {
	Name() string
	Complete(ctx context.Context, apiKey, prompt string) (string, error)
}

// KnownProvider reports whether name is one of the supported backends.
func KnownProvider(name string) bool {
	switch name {
	case ProviderOpenAI, ProviderAnthropic, ProviderGemini:
		return true
	}
	return false
}

func newHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &http.Client{Timeout: timeout}
}

// statusError distinguishes HTTP-level failures from transport errors.
type statusError struct {
	provider string
	code     int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("%s returned status %d", e.provider, e.code)
}
