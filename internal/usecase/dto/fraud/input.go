package frauddto

import "github.com/LavaJover/shvark-referral-service/internal/domain"

type ReviewSuspectInput struct {
	SuspectID   string
	Status      domain.SuspectStatus
	ReviewedBy  string
	ReviewNotes string
}

func (in *ReviewSuspectInput) Validate() error {
	if in.SuspectID == "" {
		return domain.ValidationError("suspect id is required")
	}
	if in.Status != domain.SuspectConfirmed && in.Status != domain.SuspectDismissed {
		return domain.ValidationError("status must be confirmed or dismissed")
	}
	if in.ReviewedBy == "" {
		return domain.ValidationError("reviewedBy is required")
	}
	return nil
}
