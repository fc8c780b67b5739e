package ai

import (
	"context"
	"errors"

	"go.uber.org/zap"
)

// attemptTag classifies the outcome of one model attempt so the chain driver
// never has to sniff error strings.
type attemptTag int

const (
	attemptSuccess attemptTag = iota
	attemptRetryable
	attemptFatal
)

// GenerationResult is the outcome of a successful chain traversal.
type GenerationResult struct {
	Text  string
	Model string
}

// FallbackChain tries an ordered list of model identifiers until one returns
// non-empty text. Each candidate is attempted exactly once per invocation.
// Retryable failures (model not found, transport, empty text) advance the
// chain; fatal failures (bad credential, exhausted quota) abort it, since no
// other candidate can succeed with the same account.
type FallbackChain struct {
	gen    Generator
	models []string
	logger *zap.Logger
}

// NewFallbackChain constructs the chain driver.
func NewFallbackChain(gen Generator, models []string, logger *zap.Logger) *FallbackChain {
	return &FallbackChain{gen: gen, models: models, logger: logger}
}

// Generate walks the candidate list in order. It does not mutate any ticket
// or persistent state; the result is purely a function of the prompt and the
// candidate list.
func (f *FallbackChain) Generate(ctx context.Context, prompt Prompt) (GenerationResult, error) {
	for _, model := range f.models {
		text, err := f.gen.Generate(ctx, model, prompt)
		switch classifyAttempt(err) {
		case attemptSuccess:
			f.logger.Info("model generation succeeded", zap.String("model", model))
			return GenerationResult{Text: text, Model: model}, nil
		case attemptFatal:
			if errors.Is(err, ErrAuthFailed) {
				f.logger.Error("model authentication failed, aborting chain",
					zap.String("model", model), zap.Error(err))
			} else {
				f.logger.Error("model quota exceeded, aborting chain",
					zap.String("model", model), zap.Error(err))
			}
			return GenerationResult{}, err
		default:
			f.logger.Warn("model attempt failed, advancing chain",
				zap.String("model", model), zap.Error(err))
		}
	}
	return GenerationResult{}, ErrChainExhausted
}

func classifyAttempt(err error) attemptTag {
	if err == nil {
		return attemptSuccess
	}
	if errors.Is(err, ErrAuthFailed) || errors.Is(err, ErrQuotaExceeded) {
		return attemptFatal
	}
	return attemptRetryable
}
