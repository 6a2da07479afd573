package repository

import (
	"github.com/strikelab/cyberlab/internal/model"
	"gorm.io/gorm"
)

type ModuleRepository interface {
	FindActiveBySlug(slug string) (*model.LearningModule, error)
	FindBySlug(slug string) (*model.LearningModule, error)
	FindAllActiveWithLabCount() ([]struct {
		model.LearningModule
		LabCount int
	}, error)
}

type moduleRepository struct {
	db *gorm.DB
}

func NewModuleRepository(db *gorm.DB) ModuleRepository {
	return &moduleRepository{db: db}
}

func (r *moduleRepository) FindActiveBySlug(slug string) (*model.LearningModule, error) {
	var module model.LearningModule
	if err := r.db.Where("slug = ? AND is_active = ?", slug, true).First(&module).Error; err != nil {
		return nil, err
	}
	return &module, nil
}

// FindBySlug ignores the active flag; administrative commands still need
// to reach deactivated modules.
func (r *moduleRepository) FindBySlug(slug string) (*model.LearningModule, error) {
	var module model.LearningModule
	if err := r.db.Where("slug = ?", slug).First(&module).Error; err != nil {
		return nil, err
	}
	return &module, nil
}

func (r *moduleRepository) FindAllActiveWithLabCount() ([]struct {
	model.LearningModule
	LabCount int
}, error) {
	var results []struct {
		model.LearningModule
		LabCount int
	}
	err := r.db.Model(&model.LearningModule{}).
		Select("learning_modules.*, (SELECT COUNT(*) FROM practice_labs WHERE practice_labs.module_id = learning_modules.id AND practice_labs.is_active = true AND practice_labs.deleted_at IS NULL) as lab_count").
		Where("learning_modules.is_active = ? AND learning_modules.deleted_at IS NULL", true).
		Order("learning_modules.display_order ASC, learning_modules.title ASC").
		Scan(&results).Error
	return results, err
}
