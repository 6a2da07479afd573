package model

import (
	"time"

	"gorm.io/gorm"
)

// Attempt lifecycle states.
const (
	StatusNotStarted = "not_started"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
)

// LabAttempt is the single mutable progress record for one (user, lab)
// pair. Created lazily on first start, never deleted in normal operation.
// Every mutation goes through a version-guarded update so that concurrent
// requests against the same record stay linearizable.
type LabAttempt struct {
	ID     uint `gorm:"primarykey" json:"id"`
	UserID uint `json:"user_id" gorm:"not null;uniqueIndex:idx_user_lab"`
	LabID  uint `json:"lab_id" gorm:"not null;uniqueIndex:idx_user_lab;index"`

	Lab PracticeLab `json:"lab,omitempty" gorm:"foreignKey:LabID"`

	Status      string     `json:"status" gorm:"not null;default:'in_progress'"`
	StartedAt   *time.Time `json:"started_at,omitempty"`   // set once on first start
	CompletedAt *time.Time `json:"completed_at,omitempty"` // set once on first completion

	Attempts  int `json:"attempts" gorm:"not null;default:0"`   // every submit call counts
	HintsUsed int `json:"hints_used" gorm:"not null;default:0"` // bounded by len(lab.Hints)

	SubmissionNotes string `json:"submission_notes,omitempty" gorm:"type:text"` // latest wins
	FlagSubmitted   string `json:"flag_submitted,omitempty"`                    // latest wins
	Score           *int   `json:"score,omitempty"`                             // [0,100]

	// Awarded flips false->true at most once ever. Deliberately independent
	// of CompletedAt: an administrative reset does not by itself re-enable
	// a second point award.
	Awarded bool `json:"awarded" gorm:"not null;default:false"`

	// Version increments on every mutation; writers commit only against the
	// version they read.
	Version int64 `json:"version" gorm:"not null;default:0"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
