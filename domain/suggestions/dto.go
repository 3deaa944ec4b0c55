package suggestions

// RejectRequest is the body for POST /api/suggestions/:id/reject
type RejectRequest struct {
	Reason string `json:"reason"`
}

// AutoApproveRequest is the body for POST /api/suggestions/auto-approve.
// A nil threshold falls back to the configured default.
type AutoApproveRequest struct {
	Threshold *float64 `json:"threshold,omitempty"`
}
