package dto

import "time"

// AttemptDTO is the snapshot of one (user, lab) progress record returned by
// every student-facing operation. A user who never started a lab gets a
// virtual not_started snapshot without a backing row.
type AttemptDTO struct {
	Status          string     `json:"status"`
	StartedAt       *time.Time `json:"started_at,omitempty"`
	CompletedAt     *time.Time `json:"completed_at,omitempty"`
	Attempts        int        `json:"attempts"`
	HintsUsed       int        `json:"hints_used"`
	SubmissionNotes string     `json:"submission_notes,omitempty"`
	Score           *int       `json:"score,omitempty"`
	Awarded         bool       `json:"awarded"`
}

// HintDTO is the result of a hint reveal. A nil HintText means the hints are
// exhausted, which is a normal outcome rather than an error.
type HintDTO struct {
	HintText       *string `json:"hint_text"`
	HintsUsed      int     `json:"hints_used"`
	HintsRemaining int     `json:"hints_remaining"`
}

// SubmitResultDTO pairs the updated attempt with whether this specific call
// triggered the one-time point award.
type SubmitResultDTO struct {
	Attempt               AttemptDTO `json:"attempt"`
	PointsAwardedThisCall bool       `json:"points_awarded_this_call"`
	PointsAwarded         int        `json:"points_awarded"`
}
