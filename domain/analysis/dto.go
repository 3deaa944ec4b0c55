package analysis

// ToggleRequest flips a job's enabled flag
type ToggleRequest struct {
	Enabled bool `json:"enabled"`
}
