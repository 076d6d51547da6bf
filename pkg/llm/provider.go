package llm

import (
	"context"
	"fmt"
)

// Message is a chat message in a provider-agnostic format.
type Message struct {
	Role    string // "system", "user", "assistant"
	Content string
}

// GenerationError wraps a completion provider failure.
type GenerationError struct {
	Err error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generation: %v", e.Err)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

// Option allows for optional parameters like Temperature, MaxTokens, etc.
type Option func(*Options)

type Options struct {
	Temperature float64
	MaxTokens   int
	Model       string // Override default model
}

func WithTemperature(temp float64) Option {
	return func(o *Options) {
		o.Temperature = temp
	}
}

func WithMaxTokens(maxTokens int) Option {
	return func(o *Options) {
		o.MaxTokens = maxTokens
	}
}

func WithModel(model string) Option {
	return func(o *Options) {
		o.Model = model
	}
}

// Provider defines the contract for any completion backend.
type Provider interface {
	// Complete sends an ordered message list to the model and returns the
	// generated text. Non-streaming, single round trip.
	Complete(ctx context.Context, messages []Message, options ...Option) (string, error)
}
