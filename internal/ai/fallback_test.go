package ai

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// scriptedGenerator returns a canned outcome per model identifier and records
// the order of attempts.
type scriptedGenerator struct {
	outcomes map[string]scriptedOutcome
	calls    []string
}

type scriptedOutcome struct {
	text string
	err  error
}

func (g *scriptedGenerator) Generate(_ context.Context, model string, _ Prompt) (string, error) {
	g.calls = append(g.calls, model)
	outcome, ok := g.outcomes[model]
	if !ok {
		return "", fmt.Errorf("model %s: %w", model, ErrModelNotFound)
	}
	return outcome.text, outcome.err
}

func TestFallbackChainFirstModelSucceeds(t *testing.T) {
	gen := &scriptedGenerator{outcomes: map[string]scriptedOutcome{
		"primary": {text: "draft text"},
	}}
	chain := NewFallbackChain(gen, []string{"primary", "secondary"}, zap.NewNop())

	result, err := chain.Generate(context.Background(), Prompt{User: "hello"})

	require.NoError(t, err)
	assert.Equal(t, "draft text", result.Text)
	assert.Equal(t, "primary", result.Model)
	assert.Equal(t, []string{"primary"}, gen.calls)
}

func TestFallbackChainAdvancesOnModelNotFound(t *testing.T) {
	gen := &scriptedGenerator{outcomes: map[string]scriptedOutcome{
		"primary":   {err: fmt.Errorf("model primary: %w", ErrModelNotFound)},
		"secondary": {text: "from secondary"},
	}}
	chain := NewFallbackChain(gen, []string{"primary", "secondary"}, zap.NewNop())

	result, err := chain.Generate(context.Background(), Prompt{User: "hello"})

	require.NoError(t, err)
	assert.Equal(t, "from secondary", result.Text)
	assert.Equal(t, "secondary", result.Model)
	assert.Equal(t, []string{"primary", "secondary"}, gen.calls)
}

func TestFallbackChainAdvancesOnTransportError(t *testing.T) {
	gen := &scriptedGenerator{outcomes: map[string]scriptedOutcome{
		"primary":   {err: errors.New("connection refused")},
		"secondary": {text: "ok"},
	}}
	chain := NewFallbackChain(gen, []string{"primary", "secondary"}, zap.NewNop())

	result, err := chain.Generate(context.Background(), Prompt{User: "hello"})

	require.NoError(t, err)
	assert.Equal(t, "secondary", result.Model)
}

func TestFallbackChainAbortsOnAuthFailure(t *testing.T) {
	gen := &scriptedGenerator{outcomes: map[string]scriptedOutcome{
		"primary":   {err: fmt.Errorf("model primary: %w", ErrAuthFailed)},
		"secondary": {text: "never reached"},
	}}
	chain := NewFallbackChain(gen, []string{"primary", "secondary"}, zap.NewNop())

	_, err := chain.Generate(context.Background(), Prompt{User: "hello"})

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAuthFailed)
	// Fatal outcome must not waste attempts on the rest of the chain.
	assert.Equal(t, []string{"primary"}, gen.calls)
}

func TestFallbackChainAbortsOnQuotaExceeded(t *testing.T) {
	gen := &scriptedGenerator{outcomes: map[string]scriptedOutcome{
		"primary": {err: fmt.Errorf("model primary: %w", ErrQuotaExceeded)},
	}}
	chain := NewFallbackChain(gen, []string{"primary", "secondary"}, zap.NewNop())

	_, err := chain.Generate(context.Background(), Prompt{User: "hello"})

	assert.ErrorIs(t, err, ErrQuotaExceeded)
	assert.Equal(t, []string{"primary"}, gen.calls)
}

func TestFallbackChainExhausted(t *testing.T) {
	gen := &scriptedGenerator{outcomes: map[string]scriptedOutcome{}}
	chain := NewFallbackChain(gen, []string{"a", "b", "c"}, zap.NewNop())

	_, err := chain.Generate(context.Background(), Prompt{User: "hello"})

	assert.ErrorIs(t, err, ErrChainExhausted)
	// Each candidate gets exactly one attempt.
	assert.Equal(t, []string{"a", "b", "c"}, gen.calls)
}

func TestDrafterReturnsGeneratedText(t *testing.T) {
	gen := &scriptedGenerator{outcomes: map[string]scriptedOutcome{
		"primary": {text: "  generated reply  "},
	}}
	drafter := NewDrafter(NewFallbackChain(gen, []string{"primary"}, zap.NewNop()), zap.NewNop())

	text, model := drafter.Draft(context.Background(), Prompt{User: "hello"})

	assert.Equal(t, "generated reply", text)
	assert.Equal(t, "primary", model)
}

func TestDrafterSubstitutesPlaceholderOnFailure(t *testing.T) {
	gen := &scriptedGenerator{outcomes: map[string]scriptedOutcome{}}
	drafter := NewDrafter(NewFallbackChain(gen, []string{"a", "b"}, zap.NewNop()), zap.NewNop())

	text, model := drafter.Draft(context.Background(), Prompt{User: "hello"})

	assert.Equal(t, FallbackMessage, text)
	assert.Empty(t, model)
}

func TestDrafterGuardsEmptySuccess(t *testing.T) {
	gen := &scriptedGenerator{outcomes: map[string]scriptedOutcome{
		"primary": {text: "   "},
	}}
	drafter := NewDrafter(NewFallbackChain(gen, []string{"primary"}, zap.NewNop()), zap.NewNop())

	text, model := drafter.Draft(context.Background(), Prompt{User: "hello"})

	assert.Equal(t, FallbackMessage, text)
	assert.Empty(t, model)
}
