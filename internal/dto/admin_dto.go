package dto

// LabCreateDTO is the operator-facing payload for seeding a lab into an
// existing module. Full content authoring lives in the admin screens, not
// in this engine; this surface exists for bootstrap and fixtures.
type LabCreateDTO struct {
	ModuleSlug           string   `json:"module_slug" binding:"required"`
	Slug                 string   `json:"slug" binding:"required"`
	Title                string   `json:"title" binding:"required"`
	Description          string   `json:"description"`
	Difficulty           string   `json:"difficulty" binding:"required,oneof=beginner intermediate advanced expert"`
	LabType              string   `json:"lab_type" binding:"required,oneof=interactive ctf scenario quiz coding network webapp"`
	Objectives           []string `json:"objectives"`
	Instructions         string   `json:"instructions" binding:"required"`
	Hints                []string `json:"hints"`
	Solution             string   `json:"solution"`
	CanonicalFlag        *string  `json:"canonical_flag,omitempty"`
	ExternalURL          *string  `json:"external_url,omitempty"`
	ToolsRequired        []string `json:"tools_required"`
	EstimatedTimeMinutes int      `json:"estimated_time_minutes" binding:"min=0"`
	Points               int      `json:"points" binding:"min=0"`
	Order                int      `json:"order"`
	IsActive             bool     `json:"is_active"`
	IsPremium            bool     `json:"is_premium"`
}

// ResetProgressDTO is the privileged reset command. It is deliberately a
// separate payload from the student-facing operations: reset is a different
// authority level, not a branch of the attempt state machine.
type ResetProgressDTO struct {
	UserID     uint   `json:"user_id" binding:"required"`
	ModuleSlug string `json:"module_slug" binding:"required"`
	LabSlug    string `json:"lab_slug" binding:"required"`
}
