package ai

import (
	"fmt"
	"strings"

	"github.com/zetsuserv/support-portal/internal/domain"
)

// maxContextChars bounds the knowledge block handed to the model so a large
// FAQ cannot blow the prompt budget.
const maxContextChars = 8000

// BuildKnowledgeContext concatenates question/answer pairs in display order
// into a single text block. Blank entries are skipped; an empty knowledge
// base yields an empty string.
func BuildKnowledgeContext(entries []domain.KnowledgeEntry) string {
	var b strings.Builder
	for _, entry := range entries {
		question := strings.TrimSpace(entry.Question)
		answer := strings.TrimSpace(entry.Answer)
		if question == "" || answer == "" {
			continue
		}
		block := fmt.Sprintf("Q: %s\nA: %s\n\n", question, answer)
		if b.Len()+len(block) > maxContextChars {
			break
		}
		b.WriteString(block)
	}
	return strings.TrimSpace(b.String())
}
