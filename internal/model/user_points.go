package model

import "time"

// UserPointsLedger holds one running total per user. It is credited exactly
// once per (user, lab) on first completion, inside the same transaction as
// the attempt update that triggered the award.
type UserPointsLedger struct {
	ID          uint      `gorm:"primarykey" json:"id"`
	UserID      uint      `json:"user_id" gorm:"not null;uniqueIndex"`
	TotalPoints int       `json:"total_points" gorm:"not null;default:0"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
