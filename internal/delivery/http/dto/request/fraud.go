package request

type ReviewSuspectRequest struct {
	Status      string `json:"status"`
	ReviewedBy  string `json:"reviewedBy"`
	ReviewNotes string `json:"reviewNotes,omitempty"`
}
