package domain

import "time"

// Administrator models a portal operator who reviews tickets, manages the
// knowledge base and sends broadcasts. The availability flag is advisory
// state kept outside this record (see repository.AvailabilityRepository).
type Administrator struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
