package domain

import "time"

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusOpen     TicketStatus = "OPEN"
	TicketStatusAnswered TicketStatus = "ANSWERED"
	TicketStatusClosed   TicketStatus = "CLOSED"
)

// TicketPriority enumerates SLA urgency.
type TicketPriority string

const (
	TicketPriorityLow    TicketPriority = "LOW"
	TicketPriorityMedium TicketPriority = "MEDIUM"
	TicketPriorityHigh   TicketPriority = "HIGH"
	TicketPriorityUrgent TicketPriority = "URGENT"
)

var priorityRank = map[TicketPriority]int{
	TicketPriorityLow:    1,
	TicketPriorityMedium: 2,
	TicketPriorityHigh:   3,
	TicketPriorityUrgent: 4,
}

// AtLeast reports whether p is equal to or more urgent than other.
func (p TicketPriority) AtLeast(other TicketPriority) bool {
	return priorityRank[p] >= priorityRank[other]
}

// ValidTicketPriority reports whether p is a known priority level.
func ValidTicketPriority(p TicketPriority) bool {
	_, ok := priorityRank[p]
	return ok
}

// IssueType categorizes what a ticket is about.
type IssueType string

const (
	IssueTechnicalSupport IssueType = "Technical Support"
	IssueBillingInquiry   IssueType = "Billing Inquiry"
	IssueFeatureRequest   IssueType = "Feature Request"
	IssueBugReport        IssueType = "Bug Report"
	IssueGeneralQuestion  IssueType = "General Question"
)

var allowedIssueTypes = map[IssueType]struct{}{
	IssueTechnicalSupport: {},
	IssueBillingInquiry:   {},
	IssueFeatureRequest:   {},
	IssueBugReport:        {},
	IssueGeneralQuestion:  {},
}

// ValidIssueType reports whether t is one of the supported categories.
func ValidIssueType(t IssueType) bool {
	_, ok := allowedIssueTypes[t]
	return ok
}

// Ticket is the aggregate for support requests. Message is immutable after
// creation; AISuggestion and AIAutoResponded are written exactly once during
// creation-time enrichment.
type Ticket struct {
	ID              string
	ExternalKey     string
	RequesterID     string
	IssueType       IssueType
	Message         string
	AttachmentRef   *string
	Status          TicketStatus
	Priority        TicketPriority
	AISuggestion    string
	AIAutoResponded bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
	ClosedAt        *time.Time
}

// ReplyAuthorType identifies who wrote a ticket reply.
type ReplyAuthorType string

const (
	ReplyAuthorUser  ReplyAuthorType = "USER"
	ReplyAuthorAdmin ReplyAuthorType = "ADMIN"
)

// TicketReply is a human follow-up on a ticket thread.
type TicketReply struct {
	ID         string
	TicketID   string
	AuthorType ReplyAuthorType
	AuthorID   *string
	Body       string
	CreatedAt  time.Time
}
