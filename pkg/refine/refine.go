// Package refine turns a rough free-text idea into a polished music
// description suitable for the generation API. Refinement is a
// best-effort enhancement: failures surface inline and never block the
// generation workflow.
package refine

import (
	"context"
	"fmt"
	"sync"
)

// SystemPrompt steers the model toward a single usable description.
const SystemPrompt = "You help users describe music for AI music generation. " +
	"Given their rough idea, return a clear, detailed music description (1-2 sentences) " +
	"suitable for Suno-style generation. Include mood, genre, instruments, and theme. " +
	"Return ONLY the refined description, no quotes or extra text."

// DefaultPrompt substitutes for blank input.
const DefaultPrompt = "I want some music but I'm not sure how to describe it."

// MaxTokens caps the refined description length.
const MaxTokens = 150

// Refiner produces a refined description for a rough prompt.
type Refiner interface {
	Refine(ctx context.Context, prompt string) (string, error)
}

// ProviderFactory creates a Refiner for a named provider.
type ProviderFactory func() (Refiner, error)

var (
	registryMu sync.RWMutex
	registry   = map[string]ProviderFactory{}
)

// RegisterProvider registers a factory for a named provider.
// Call this from init() in provider packages.
func RegisterProvider(name string, factory ProviderFactory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[name] = factory
}

// New constructs a Refiner for the given provider name. The empty name
// selects "openai".
func New(provider string) (Refiner, error) {
	if provider == "" {
		provider = "openai"
	}
	registryMu.RLock()
	factory, ok := registry[provider]
	registryMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("refine: no provider registered for %q — did you import the providers package?", provider)
	}
	return factory()
}
