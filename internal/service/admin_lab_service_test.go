package service

import (
	"testing"

	"github.com/strikelab/cyberlab/config"
	"github.com/strikelab/cyberlab/internal/apperr"
	"github.com/strikelab/cyberlab/internal/dto"
	"github.com/strikelab/cyberlab/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func completeLab(t *testing.T, e *engine, userID uint, moduleSlug, labSlug string) *dto.SubmitResultDTO {
	t.Helper()
	result, err := e.submissions.Submit(moduleSlug, labSlug, submitReq(userID, func(r *dto.LabSubmitDTO) {
		r.Notes = "done"
		r.MarkComplete = true
	}))
	require.NoError(t, err)
	return result
}

func TestResetClearsProgressKeepsAward(t *testing.T) {
	e := newEngine(t)
	module := seedModule(t, e.db, "forensics")
	seedLab(t, e.db, module.ID, "disk-imaging", func(l *model.PracticeLab) {
		l.Points = 60
		l.Hints = []string{"h1"}
	})

	_, err := e.hints.RevealNextHint(1, "forensics", "disk-imaging")
	require.NoError(t, err)
	completeLab(t, e, 1, "forensics", "disk-imaging")

	reset, err := e.admin.ResetProgress(dto.ResetProgressDTO{
		UserID: 1, ModuleSlug: "forensics", LabSlug: "disk-imaging",
	})
	require.NoError(t, err)

	assert.Equal(t, model.StatusInProgress, reset.Status)
	assert.Nil(t, reset.CompletedAt)
	assert.Zero(t, reset.Attempts)
	assert.Zero(t, reset.HintsUsed)
	assert.Empty(t, reset.SubmissionNotes)
	assert.Nil(t, reset.Score)
	assert.NotNil(t, reset.StartedAt, "the original start survives a reset")
	assert.True(t, reset.Awarded, "the award is kept under the default policy")

	points, err := e.pointsRepo.TotalPoints(1)
	require.NoError(t, err)
	assert.Equal(t, 60, points)

	// Completing again after the reset does not double-award.
	again := completeLab(t, e, 1, "forensics", "disk-imaging")
	assert.False(t, again.PointsAwardedThisCall)
	points, err = e.pointsRepo.TotalPoints(1)
	require.NoError(t, err)
	assert.Equal(t, 60, points)
}

func TestResetRevokesAwardWhenConfigured(t *testing.T) {
	e := newEngine(t, func(cfg *config.Config) {
		cfg.Learning.ResetRevokesAward = true
	})
	module := seedModule(t, e.db, "forensics")
	seedLab(t, e.db, module.ID, "disk-imaging", func(l *model.PracticeLab) { l.Points = 60 })

	completeLab(t, e, 1, "forensics", "disk-imaging")

	reset, err := e.admin.ResetProgress(dto.ResetProgressDTO{
		UserID: 1, ModuleSlug: "forensics", LabSlug: "disk-imaging",
	})
	require.NoError(t, err)
	assert.False(t, reset.Awarded)

	points, err := e.pointsRepo.TotalPoints(1)
	require.NoError(t, err)
	assert.Zero(t, points)

	// With the award revoked, finishing again earns the points again.
	again := completeLab(t, e, 1, "forensics", "disk-imaging")
	assert.True(t, again.PointsAwardedThisCall)
	points, err = e.pointsRepo.TotalPoints(1)
	require.NoError(t, err)
	assert.Equal(t, 60, points)
}

func TestResetWithoutAttemptIsNotFound(t *testing.T) {
	e := newEngine(t)
	module := seedModule(t, e.db, "forensics")
	seedLab(t, e.db, module.ID, "disk-imaging", nil)

	_, err := e.admin.ResetProgress(dto.ResetProgressDTO{
		UserID: 1, ModuleSlug: "forensics", LabSlug: "disk-imaging",
	})
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestResetReachesInactiveLabs(t *testing.T) {
	e := newEngine(t)
	module := seedModule(t, e.db, "forensics")
	seedLab(t, e.db, module.ID, "disk-imaging", nil)

	completeLab(t, e, 1, "forensics", "disk-imaging")
	require.NoError(t, e.db.Model(&model.PracticeLab{}).
		Where("slug = ?", "disk-imaging").Update("is_active", false).Error)

	// Admin operations ignore the active filter; retiring a lab must not
	// strand its attempts.
	reset, err := e.admin.ResetProgress(dto.ResetProgressDTO{
		UserID: 1, ModuleSlug: "forensics", LabSlug: "disk-imaging",
	})
	require.NoError(t, err)
	assert.Equal(t, model.StatusInProgress, reset.Status)
}

func TestCreateLab(t *testing.T) {
	cache := &fakeCatalogCache{}
	e := newEngineWithCache(t, &config.Config{}, cache)
	seedModule(t, e.db, "web-security")

	_, err := e.catalog.ListModules()
	require.NoError(t, err)
	require.Equal(t, 1, cache.sets)

	detail, err := e.admin.CreateLab(dto.LabCreateDTO{
		ModuleSlug:    "web-security",
		Slug:          "xss-basics",
		Title:         "XSS Basics",
		Difficulty:    model.DifficultyIntermediate,
		LabType:       model.LabTypeWebApp,
		Objectives:    []string{"find the sink"},
		Instructions:  "inject a script tag",
		Hints:         []string{"look at the search box"},
		Points:        80,
		IsActive:      true,
		ToolsRequired: []string{"browser"},
	})
	require.NoError(t, err)

	assert.Equal(t, "web-security", detail.ModuleSlug)
	assert.Equal(t, "xss-basics", detail.Slug)
	assert.Equal(t, 1, detail.HintCount)
	assert.Equal(t, []string{"find the sink"}, detail.Objectives)
	assert.Equal(t, model.StatusNotStarted, detail.Attempt.Status)
	assert.Equal(t, 1, cache.invalidates, "module lab counts changed")

	labs, err := e.catalog.ListLabs("web-security", 1)
	require.NoError(t, err)
	require.Len(t, labs, 1)
	assert.Equal(t, 80, labs[0].Points)
}

func TestCreateLabUnknownModule(t *testing.T) {
	e := newEngine(t)
	_, err := e.admin.CreateLab(dto.LabCreateDTO{
		ModuleSlug:   "no-such-module",
		Slug:         "xss-basics",
		Title:        "XSS Basics",
		Difficulty:   model.DifficultyBeginner,
		LabType:      model.LabTypeInteractive,
		Instructions: "n/a",
	})
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}
