package model

import (
	"time"

	"gorm.io/gorm"
)

// LearningModule groups practice labs into a curriculum section.
// Modules are authored externally; this engine only reads them.
type LearningModule struct {
	ID          uint           `gorm:"primarykey" json:"id"`
	Title       string         `json:"title" gorm:"not null"`
	Slug        string         `json:"slug" gorm:"not null;uniqueIndex"`
	Description string         `json:"description,omitempty" gorm:"type:text"`
	Icon        string         `json:"icon" gorm:"default:'fas fa-seedling'"` // FontAwesome class
	Order       int            `json:"order" gorm:"column:display_order;default:0"`
	IsActive    bool           `json:"is_active" gorm:"default:true"`
	Labs        []PracticeLab  `json:"labs,omitempty" gorm:"foreignKey:ModuleID"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}
