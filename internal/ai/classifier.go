package ai

import (
	"strings"

	"github.com/zetsuserv/support-portal/internal/domain"
)

// urgencyKeywords are distress signals scanned for in ticket text. Matching
// is case-insensitive substring search, so entries must be specific enough
// not to fire on unrelated words.
var urgencyKeywords = []string{
	"urgent",
	"critical",
	"emergency",
	"angry",
	"asap",
	"immediately",
	"furious",
	"unacceptable",
	"outage",
}

// ShouldEscalate reports whether the message contains an urgency signal.
// Deterministic and side-effect free; empty text never escalates.
func ShouldEscalate(message string) bool {
	message = strings.ToLower(message)
	if strings.TrimSpace(message) == "" {
		return false
	}
	for _, keyword := range urgencyKeywords {
		if strings.Contains(message, keyword) {
			return true
		}
	}
	return false
}

// EscalatePriority raises current to High unless it is already High or
// Urgent. Escalation never downgrades.
func EscalatePriority(current domain.TicketPriority) domain.TicketPriority {
	if current.AtLeast(domain.TicketPriorityHigh) {
		return current
	}
	return domain.TicketPriorityHigh
}
