package dto

// SubscribeRequest payload for newsletter signup.
type SubscribeRequest struct {
	Email string `json:"email"`
}

// BroadcastRequest payload for a newsletter send.
type BroadcastRequest struct {
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// BroadcastResponse reports per-run delivery counts.
type BroadcastResponse struct {
	Attempted int `json:"attempted"`
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
}
