package dto

// StartLabDTO identifies the user beginning (or resuming) a lab. User
// resolution will move to the auth layer; for now it travels in the body
// the same way the rest of the API carries user_id.
type StartLabDTO struct {
	UserID uint `json:"user_id" binding:"required"`
}

// HintRequestDTO identifies the user requesting the next hint.
type HintRequestDTO struct {
	UserID uint `json:"user_id" binding:"required"`
}

// LabSubmitDTO carries one submission. Score, when present, is clamped into
// [0,100] by the engine. Flag is only meaningful for CTF labs.
type LabSubmitDTO struct {
	UserID       uint    `json:"user_id" binding:"required"`
	Notes        string  `json:"notes"`
	Flag         *string `json:"flag,omitempty"`
	Score        *int    `json:"score,omitempty"`
	MarkComplete bool    `json:"mark_complete"`
}
