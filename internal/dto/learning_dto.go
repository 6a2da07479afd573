package dto

import "time"

// ModuleSummaryDTO is one row of the learning home listing.
type ModuleSummaryDTO struct {
	ID          uint   `json:"id"`
	Title       string `json:"title"`
	Slug        string `json:"slug"`
	Description string `json:"description,omitempty"`
	Icon        string `json:"icon"`
	LabCount    int    `json:"lab_count"`
}

// LabSummaryDTO is one row of a module's lab listing, decorated with the
// requesting user's attempt status.
type LabSummaryDTO struct {
	Slug                 string `json:"slug"`
	Title                string `json:"title"`
	Description          string `json:"description,omitempty"`
	Difficulty           string `json:"difficulty"`
	LabType              string `json:"lab_type"`
	EstimatedTimeMinutes int    `json:"estimated_time_minutes"`
	Points               int    `json:"points"`
	IsPremium            bool   `json:"is_premium"`
	Status               string `json:"status"`
}

// LabDetailDTO is the full lab view. Solution is populated only once the
// requesting user's attempt is completed.
type LabDetailDTO struct {
	ID                   uint       `json:"id"`
	ModuleSlug           string     `json:"module_slug"`
	Slug                 string     `json:"slug"`
	Title                string     `json:"title"`
	Description          string     `json:"description,omitempty"`
	Difficulty           string     `json:"difficulty"`
	LabType              string     `json:"lab_type"`
	Objectives           []string   `json:"objectives"`
	Instructions         string     `json:"instructions"`
	HintCount            int        `json:"hint_count"`
	Solution             string     `json:"solution,omitempty"`
	ExternalURL          *string    `json:"external_url,omitempty"`
	ToolsRequired        []string   `json:"tools_required"`
	EstimatedTimeMinutes int        `json:"estimated_time_minutes"`
	Points               int        `json:"points"`
	IsPremium            bool       `json:"is_premium"`
	CreatedAt            time.Time  `json:"created_at"`
	Attempt              AttemptDTO `json:"attempt"`
}

// ProgressSummaryDTO aggregates a user's standing across all labs.
type ProgressSummaryDTO struct {
	UserID      uint `json:"user_id"`
	Completed   int  `json:"completed"`
	InProgress  int  `json:"in_progress"`
	TotalPoints int  `json:"total_points"`
}
