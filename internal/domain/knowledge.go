package domain

import "time"

// KnowledgeEntry is a FAQ-style record used both on the public FAQ page and
// as grounding context for AI draft generation.
type KnowledgeEntry struct {
	ID           string
	Question     string
	Answer       string
	Category     string
	DisplayOrder int
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
