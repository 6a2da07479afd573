package repository

import (
	"github.com/strikelab/cyberlab/internal/model"
	"gorm.io/gorm"
)

type AttemptRepository interface {
	Create(attempt *model.LabAttempt) error
	FindByUserAndLab(userID, labID uint) (*model.LabAttempt, error)
	FindByUserAndLabIDs(userID uint, labIDs []uint) (map[uint]model.LabAttempt, error)
	CountByUserAndStatus(userID uint, status string) (int64, error)

	// UpdateVersioned commits the mutated attempt only if the stored row
	// still carries expectedVersion. Returns false when another writer got
	// there first; the caller reloads and retries.
	UpdateVersioned(attempt *model.LabAttempt, expectedVersion int64) (bool, error)

	// UpdateVersionedTx is UpdateVersioned inside a caller-owned
	// transaction, used when the attempt write must commit atomically with
	// a points-ledger change.
	UpdateVersionedTx(tx *gorm.DB, attempt *model.LabAttempt, expectedVersion int64) (bool, error)
}

type attemptRepository struct {
	db *gorm.DB
}

func NewAttemptRepository(db *gorm.DB) AttemptRepository {
	return &attemptRepository{db: db}
}

func (r *attemptRepository) Create(attempt *model.LabAttempt) error {
	return r.db.Create(attempt).Error
}

func (r *attemptRepository) FindByUserAndLab(userID, labID uint) (*model.LabAttempt, error) {
	var attempt model.LabAttempt
	err := r.db.Where("user_id = ? AND lab_id = ?", userID, labID).First(&attempt).Error
	if err != nil {
		return nil, err
	}
	return &attempt, nil
}

func (r *attemptRepository) FindByUserAndLabIDs(userID uint, labIDs []uint) (map[uint]model.LabAttempt, error) {
	attempts := make(map[uint]model.LabAttempt, len(labIDs))
	if len(labIDs) == 0 {
		return attempts, nil
	}
	var rows []model.LabAttempt
	if err := r.db.Where("user_id = ? AND lab_id IN ?", userID, labIDs).Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, a := range rows {
		attempts[a.LabID] = a
	}
	return attempts, nil
}

func (r *attemptRepository) CountByUserAndStatus(userID uint, status string) (int64, error) {
	var count int64
	err := r.db.Model(&model.LabAttempt{}).
		Where("user_id = ? AND status = ?", userID, status).
		Count(&count).Error
	return count, err
}

func (r *attemptRepository) UpdateVersioned(attempt *model.LabAttempt, expectedVersion int64) (bool, error) {
	return r.UpdateVersionedTx(r.db, attempt, expectedVersion)
}

func (r *attemptRepository) UpdateVersionedTx(tx *gorm.DB, attempt *model.LabAttempt, expectedVersion int64) (bool, error) {
	// An explicit column map so cleared fields (nil score, empty notes)
	// are written rather than skipped as zero values.
	res := tx.Model(&model.LabAttempt{}).
		Where("id = ? AND version = ?", attempt.ID, expectedVersion).
		Updates(map[string]interface{}{
			"status":           attempt.Status,
			"started_at":       attempt.StartedAt,
			"completed_at":     attempt.CompletedAt,
			"attempts":         attempt.Attempts,
			"hints_used":       attempt.HintsUsed,
			"submission_notes": attempt.SubmissionNotes,
			"flag_submitted":   attempt.FlagSubmitted,
			"score":            attempt.Score,
			"awarded":          attempt.Awarded,
			"version":          attempt.Version,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
