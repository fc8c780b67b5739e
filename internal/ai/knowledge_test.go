package ai

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/zetsuserv/support-portal/internal/domain"
)

func TestBuildKnowledgeContext(t *testing.T) {
	entries := []domain.KnowledgeEntry{
		{Question: "How do I reset my password?", Answer: "Use the reset link on the login page."},
		{Question: "Where are invoices?", Answer: "Under Billing in your dashboard."},
	}

	ctx := BuildKnowledgeContext(entries)

	assert.Contains(t, ctx, "Q: How do I reset my password?")
	assert.Contains(t, ctx, "A: Use the reset link on the login page.")
	assert.Contains(t, ctx, "Q: Where are invoices?")
	// Entries are separated by a blank line, no trailing whitespace.
	assert.Contains(t, ctx, "login page.\n\nQ: Where are invoices?")
	assert.Equal(t, strings.TrimSpace(ctx), ctx)
}

func TestBuildKnowledgeContextSkipsBlankEntries(t *testing.T) {
	entries := []domain.KnowledgeEntry{
		{Question: "   ", Answer: "orphan answer"},
		{Question: "orphan question", Answer: ""},
		{Question: "Kept?", Answer: "Yes."},
	}

	ctx := BuildKnowledgeContext(entries)

	assert.NotContains(t, ctx, "orphan")
	assert.Equal(t, "Q: Kept?\nA: Yes.", ctx)
}

func TestBuildKnowledgeContextEmpty(t *testing.T) {
	assert.Equal(t, "", BuildKnowledgeContext(nil))
	assert.Equal(t, "", BuildKnowledgeContext([]domain.KnowledgeEntry{}))
}

func TestBuildKnowledgeContextBounded(t *testing.T) {
	big := strings.Repeat("x", 3000)
	entries := []domain.KnowledgeEntry{
		{Question: "q1", Answer: big},
		{Question: "q2", Answer: big},
		{Question: "q3", Answer: big},
		{Question: "q4", Answer: big},
	}

	ctx := BuildKnowledgeContext(entries)

	assert.LessOrEqual(t, len(ctx), maxContextChars)
	assert.Contains(t, ctx, "Q: q1")
	assert.NotContains(t, ctx, "Q: q4")
}
