package models

// ConfirmationOutcome is the structured result of a guest-facing confirmation
// attempt. Expected conditions (blank input, no match, already confirmed,
// storage trouble) are all outcomes, never errors; the message is safe to
// show to the guest as-is.
type ConfirmationOutcome struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Guest   *Guest `json:"guest,omitempty"`
}

// Stats is the read-side aggregate over the guest list, recomputed on every
// call.
type Stats struct {
	Total       int     `json:"total"`
	Confirmed   int     `json:"confirmed"`
	Unconfirmed int     `json:"unconfirmed"`
	Rate        float64 `json:"rate"`
}
