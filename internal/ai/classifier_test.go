package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/zetsuserv/support-portal/internal/domain"
)

func TestShouldEscalate(t *testing.T) {
	cases := []struct {
		name     string
		message  string
		expected bool
	}{
		{"plain request", "How do I change my DNS records?", false},
		{"urgent keyword", "This is urgent, my site is down", true},
		{"uppercase keyword", "URGENT please help", true},
		{"mixed case", "this is UnAcCePtAbLe", true},
		{"keyword inside sentence", "we have a production outage since 3am", true},
		{"asap", "need this fixed ASAP", true},
		{"empty message", "", false},
		{"whitespace only", "   \t\n", false},
		{"calm billing question", "Could you explain my last invoice?", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, ShouldEscalate(tc.message))
		})
	}
}

func TestEscalatePriorityRaisesToHigh(t *testing.T) {
	assert.Equal(t, domain.TicketPriorityHigh, EscalatePriority(domain.TicketPriorityLow))
	assert.Equal(t, domain.TicketPriorityHigh, EscalatePriority(domain.TicketPriorityMedium))
}

func TestEscalatePriorityNeverDowngrades(t *testing.T) {
	assert.Equal(t, domain.TicketPriorityHigh, EscalatePriority(domain.TicketPriorityHigh))
	assert.Equal(t, domain.TicketPriorityUrgent, EscalatePriority(domain.TicketPriorityUrgent))
}
