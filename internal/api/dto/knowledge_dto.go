package dto

import "time"

// KnowledgeRequest payload for create and update.
type KnowledgeRequest struct {
	Question     string `json:"question"`
	Answer       string `json:"answer"`
	Category     string `json:"category"`
	DisplayOrder int    `json:"display_order"`
}

// KnowledgeResponse represents one FAQ entry.
type KnowledgeResponse struct {
	ID           string    `json:"id"`
	Question     string    `json:"question"`
	Answer       string    `json:"answer"`
	Category     string    `json:"category"`
	DisplayOrder int       `json:"display_order"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
