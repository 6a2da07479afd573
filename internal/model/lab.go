package model

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Lab difficulty levels.
const (
	DifficultyBeginner     = "beginner"
	DifficultyIntermediate = "intermediate"
	DifficultyAdvanced     = "advanced"
	DifficultyExpert       = "expert"
)

// Lab types. CTF labs may carry a canonical flag that gates completion.
const (
	LabTypeInteractive = "interactive"
	LabTypeCTF         = "ctf"
	LabTypeScenario    = "scenario"
	LabTypeQuiz        = "quiz"
	LabTypeCoding      = "coding"
	LabTypeNetwork     = "network"
	LabTypeWebApp      = "webapp"
)

// PracticeLab is an immutable hands-on exercise definition. The slug is
// unique within its module. Content authoring happens outside this engine.
type PracticeLab struct {
	ID                   uint                        `gorm:"primarykey" json:"id"`
	ModuleID             uint                        `json:"module_id" gorm:"not null;index;uniqueIndex:idx_module_lab_slug"`
	Module               LearningModule              `json:"module,omitempty" gorm:"foreignKey:ModuleID"`
	Slug                 string                      `json:"slug" gorm:"not null;uniqueIndex:idx_module_lab_slug"`
	Title                string                      `json:"title" gorm:"not null"`
	Description          string                      `json:"description,omitempty" gorm:"type:text"`
	Difficulty           string                      `json:"difficulty" gorm:"not null;default:'beginner'"`
	LabType              string                      `json:"lab_type" gorm:"not null;default:'interactive'"`
	Objectives           datatypes.JSONSlice[string] `json:"objectives"`
	Instructions         string                      `json:"instructions" gorm:"type:text"`
	Hints                datatypes.JSONSlice[string] `json:"hints"`
	Solution             string                      `json:"solution,omitempty" gorm:"type:text"` // revealed post-completion only
	CanonicalFlag        *string                     `json:"-"`                                   // never serialized
	ExternalURL          *string                     `json:"external_url,omitempty"`
	ToolsRequired        datatypes.JSONSlice[string] `json:"tools_required"`
	EstimatedTimeMinutes int                         `json:"estimated_time_minutes" gorm:"default:0"`
	Points               int                         `json:"points" gorm:"default:0"`
	Order                int                         `json:"order" gorm:"column:display_order;default:0"`
	IsActive             bool                        `json:"is_active" gorm:"default:true"`
	IsPremium            bool                        `json:"is_premium" gorm:"default:false"`
	CreatedAt            time.Time                   `json:"created_at"`
	UpdatedAt            time.Time                   `json:"updated_at"`
	DeletedAt            gorm.DeletedAt              `gorm:"index" json:"-"`
}

// RequiresFlag reports whether completion is gated on an exact flag match.
func (l *PracticeLab) RequiresFlag() bool {
	return l.LabType == LabTypeCTF && l.CanonicalFlag != nil && *l.CanonicalFlag != ""
}
