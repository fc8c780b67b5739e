package dto

// AvailabilityRequest payload for the availability toggle.
type AvailabilityRequest struct {
	Available bool `json:"available"`
}

// AvailabilityResponse reports the stored flag.
type AvailabilityResponse struct {
	AdminID   string `json:"admin_id"`
	Available bool   `json:"available"`
}
