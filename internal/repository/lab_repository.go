package repository

import (
	"github.com/strikelab/cyberlab/internal/model"
	"gorm.io/gorm"
)

type LabRepository interface {
	Create(lab *model.PracticeLab) error
	FindActiveByModuleID(moduleID uint) ([]model.PracticeLab, error)
	FindActiveBySlug(moduleID uint, labSlug string) (*model.PracticeLab, error)
	FindBySlug(moduleID uint, labSlug string) (*model.PracticeLab, error)
}

type labRepository struct {
	db *gorm.DB
}

func NewLabRepository(db *gorm.DB) LabRepository {
	return &labRepository{db: db}
}

func (r *labRepository) Create(lab *model.PracticeLab) error {
	return r.db.Create(lab).Error
}

func (r *labRepository) FindActiveByModuleID(moduleID uint) ([]model.PracticeLab, error) {
	var labs []model.PracticeLab
	err := r.db.
		Where("module_id = ? AND is_active = ?", moduleID, true).
		Order("display_order ASC, title ASC").
		Find(&labs).Error
	return labs, err
}

func (r *labRepository) FindActiveBySlug(moduleID uint, labSlug string) (*model.PracticeLab, error) {
	var lab model.PracticeLab
	err := r.db.
		Where("module_id = ? AND slug = ? AND is_active = ?", moduleID, labSlug, true).
		First(&lab).Error
	if err != nil {
		return nil, err
	}
	return &lab, nil
}

// FindBySlug ignores the active flag for administrative commands.
func (r *labRepository) FindBySlug(moduleID uint, labSlug string) (*model.PracticeLab, error) {
	var lab model.PracticeLab
	err := r.db.
		Where("module_id = ? AND slug = ?", moduleID, labSlug).
		First(&lab).Error
	if err != nil {
		return nil, err
	}
	return &lab, nil
}
