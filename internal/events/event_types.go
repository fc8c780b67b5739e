package events

import (
	"time"

	"github.com/zetsuserv/support-portal/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated      EventType = "ticket_created"
	EventAIDraftCreated     EventType = "ai_draft_created"
	EventAIAutoResponded    EventType = "ai_auto_responded"
	EventTicketReplied      EventType = "ticket_replied"
	EventTicketClosed       EventType = "ticket_closed"
	EventBroadcastCompleted EventType = "broadcast_completed"
)

// Actor encapsulates actor metadata for an event.
type Actor struct {
	Type    domain.SubjectType `json:"type"`
	UserID  *string            `json:"user_id,omitempty"`
	AdminID *string            `json:"admin_id,omitempty"`
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	TicketID  string      `json:"ticket_id,omitempty"`
	Actor     Actor       `json:"actor"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	IssueType      domain.IssueType      `json:"issue_type"`
	Priority       domain.TicketPriority `json:"priority"`
	Escalated      bool                  `json:"escalated"`
	RequesterName  string                `json:"requester_name"`
	RequesterEmail string                `json:"requester_email"`
	MessagePreview string                `json:"message_preview"`
}

// AIDraftCreatedPayload payload. Model is empty when the placeholder was
// stored instead of generated text.
type AIDraftCreatedPayload struct {
	Model string `json:"model,omitempty"`
}

// AIAutoRespondedPayload payload.
type AIAutoRespondedPayload struct {
	RequesterEmail string `json:"requester_email"`
	Model          string `json:"model,omitempty"`
}

// TicketRepliedPayload payload.
type TicketRepliedPayload struct {
	ReplyID        string `json:"reply_id"`
	RequesterEmail string `json:"requester_email"`
	RequesterName  string `json:"requester_name"`
	BodyPreview    string `json:"body_preview"`
}

// TicketClosedPayload payload.
type TicketClosedPayload struct {
	ClosedBy domain.SubjectType `json:"closed_by"`
}

// BroadcastCompletedPayload payload.
type BroadcastCompletedPayload struct {
	Subject   string `json:"subject"`
	Attempted int    `json:"attempted"`
	Succeeded int    `json:"succeeded"`
	Failed    int    `json:"failed"`
}
