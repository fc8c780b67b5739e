package dto

import (
	"time"

	"github.com/zetsuserv/support-portal/internal/domain"
)

// CreateTicketRequest payload.
type CreateTicketRequest struct {
	IssueType     domain.IssueType `json:"issue_type"`
	Message       string           `json:"message"`
	AttachmentRef *string          `json:"attachment_ref,omitempty"`
}

// TicketSummary response.
type TicketSummary struct {
	ID              string                `json:"id"`
	ExternalKey     string                `json:"external_key"`
	IssueType       domain.IssueType      `json:"issue_type"`
	Status          domain.TicketStatus   `json:"status"`
	Priority        domain.TicketPriority `json:"priority"`
	AIAutoResponded bool                  `json:"ai_auto_responded"`
	CreatedAt       time.Time             `json:"created_at"`
	UpdatedAt       time.Time             `json:"updated_at"`
}

// TicketDetailResponse provides full ticket info including the stored AI
// suggestion and the reply thread.
type TicketDetailResponse struct {
	ID              string                `json:"id"`
	ExternalKey     string                `json:"external_key"`
	IssueType       domain.IssueType      `json:"issue_type"`
	Message         string                `json:"message"`
	AttachmentRef   *string               `json:"attachment_ref,omitempty"`
	Status          domain.TicketStatus   `json:"status"`
	Priority        domain.TicketPriority `json:"priority"`
	AISuggestion    string                `json:"ai_suggestion"`
	AIAutoResponded bool                  `json:"ai_auto_responded"`
	CreatedAt       time.Time             `json:"created_at"`
	UpdatedAt       time.Time             `json:"updated_at"`
	ClosedAt        *time.Time            `json:"closed_at"`
	Replies         []TicketReplyResponse `json:"replies"`
}

// TicketReplyResponse represents one thread entry.
type TicketReplyResponse struct {
	ID         string                 `json:"id"`
	AuthorType domain.ReplyAuthorType `json:"author_type"`
	AuthorID   *string                `json:"author_id"`
	Body       string                 `json:"body"`
	CreatedAt  time.Time              `json:"created_at"`
}

// CreateReplyRequest payload.
type CreateReplyRequest struct {
	Body string `json:"body"`
}

// UpdatePriorityRequest payload.
type UpdatePriorityRequest struct {
	Priority domain.TicketPriority `json:"priority"`
}
