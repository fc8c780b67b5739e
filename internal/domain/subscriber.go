package domain

import "time"

// Subscriber is a newsletter recipient.
type Subscriber struct {
	ID        string
	Email     string
	CreatedAt time.Time
}
