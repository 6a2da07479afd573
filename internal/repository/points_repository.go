package repository

import (
	"errors"

	"github.com/strikelab/cyberlab/internal/model"
	"gorm.io/gorm"
)

type PointsRepository interface {
	TotalPoints(userID uint) (int, error)

	// CreditTx adds points to the user's running total inside the caller's
	// transaction, creating the ledger row on first credit.
	CreditTx(tx *gorm.DB, userID uint, points int) error

	// DebitTx subtracts points, flooring at zero. Used only by the
	// administrative reset when award revocation is enabled.
	DebitTx(tx *gorm.DB, userID uint, points int) error
}

type pointsRepository struct {
	db *gorm.DB
}

func NewPointsRepository(db *gorm.DB) PointsRepository {
	return &pointsRepository{db: db}
}

func (r *pointsRepository) TotalPoints(userID uint) (int, error) {
	var ledger model.UserPointsLedger
	err := r.db.Where("user_id = ?", userID).First(&ledger).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return ledger.TotalPoints, nil
}

func (r *pointsRepository) CreditTx(tx *gorm.DB, userID uint, points int) error {
	ledger := model.UserPointsLedger{UserID: userID}
	if err := tx.Where("user_id = ?", userID).FirstOrCreate(&ledger).Error; err != nil {
		return err
	}
	return tx.Model(&model.UserPointsLedger{}).
		Where("user_id = ?", userID).
		UpdateColumn("total_points", gorm.Expr("total_points + ?", points)).Error
}

func (r *pointsRepository) DebitTx(tx *gorm.DB, userID uint, points int) error {
	var ledger model.UserPointsLedger
	err := tx.Where("user_id = ?", userID).First(&ledger).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	newTotal := ledger.TotalPoints - points
	if newTotal < 0 {
		newTotal = 0
	}
	return tx.Model(&ledger).UpdateColumn("total_points", newTotal).Error
}
