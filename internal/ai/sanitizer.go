package ai

import (
	"context"
	"strings"

	"go.uber.org/zap"
)

// FallbackMessage is stored as the draft when every model attempt failed.
// It is a plain string by design; admins see it in the same UI slot as a
// real draft.
const FallbackMessage = "AI suggestion unavailable at the moment. Please review manually."

// Drafter wraps the fallback chain with the non-empty guarantee: Draft always
// returns displayable text, never an error. All failure detail lands in logs.
type Drafter struct {
	chain  *FallbackChain
	logger *zap.Logger
}

// NewDrafter constructs the guarantee layer.
func NewDrafter(chain *FallbackChain, logger *zap.Logger) *Drafter {
	return &Drafter{chain: chain, logger: logger}
}

// Draft generates a reply suggestion for the prompt. The returned model
// identifier is empty when the placeholder was substituted.
func (d *Drafter) Draft(ctx context.Context, prompt Prompt) (text string, model string) {
	result, err := d.chain.Generate(ctx, prompt)
	if err != nil {
		d.logger.Warn("draft generation failed, using placeholder", zap.Error(err))
		return FallbackMessage, ""
	}
	trimmed := strings.TrimSpace(result.Text)
	if trimmed == "" {
		// Chain contract forbids empty success; guard anyway.
		d.logger.Warn("chain returned empty text, using placeholder",
			zap.String("model", result.Model))
		return FallbackMessage, ""
	}
	return trimmed, result.Model
}
