package service

import (
	"testing"

	"github.com/strikelab/cyberlab/internal/apperr"
	"github.com/strikelab/cyberlab/internal/dto"
	"github.com/strikelab/cyberlab/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStartCreatesInProgressAttempt(t *testing.T) {
	e := newEngine(t)
	module := seedModule(t, e.db, "network-security")
	seedLab(t, e.db, module.ID, "port-scanning", nil)

	attempt, err := e.progress.Start(1, "network-security", "port-scanning")
	require.NoError(t, err)

	assert.Equal(t, model.StatusInProgress, attempt.Status)
	require.NotNil(t, attempt.StartedAt)
	assert.Zero(t, attempt.Attempts)
	assert.Zero(t, attempt.HintsUsed)
	assert.False(t, attempt.Awarded)
}

func TestStartIsIdempotent(t *testing.T) {
	e := newEngine(t)
	module := seedModule(t, e.db, "network-security")
	seedLab(t, e.db, module.ID, "port-scanning", nil)

	first, err := e.progress.Start(1, "network-security", "port-scanning")
	require.NoError(t, err)
	second, err := e.progress.Start(1, "network-security", "port-scanning")
	require.NoError(t, err)

	assert.Equal(t, model.StatusInProgress, second.Status)
	require.NotNil(t, second.StartedAt)
	assert.True(t, first.StartedAt.Equal(*second.StartedAt), "startedAt must not move on re-start")

	var count int64
	require.NoError(t, e.db.Model(&model.LabAttempt{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestStartAfterCompletionStaysCompleted(t *testing.T) {
	e := newEngine(t)
	module := seedModule(t, e.db, "network-security")
	seedLab(t, e.db, module.ID, "port-scanning", nil)

	_, err := e.submissions.Submit("network-security", "port-scanning", submitReq(1, func(r *dto.LabSubmitDTO) {
		r.MarkComplete = true
	}))
	require.NoError(t, err)

	attempt, err := e.progress.Start(1, "network-security", "port-scanning")
	require.NoError(t, err)
	assert.Equal(t, model.StatusCompleted, attempt.Status)
	assert.NotNil(t, attempt.CompletedAt)
}

func TestStartUnknownLab(t *testing.T) {
	e := newEngine(t)
	seedModule(t, e.db, "network-security")

	_, err := e.progress.Start(1, "network-security", "no-such-lab")
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	_, err = e.progress.Start(1, "no-such-module", "port-scanning")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestStartInactiveLabIsNotFound(t *testing.T) {
	e := newEngine(t)
	module := seedModule(t, e.db, "network-security")
	seedLab(t, e.db, module.ID, "retired-lab", func(l *model.PracticeLab) {
		l.IsActive = false
	})

	_, err := e.progress.Start(1, "network-security", "retired-lab")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestGetStatusNeverCreatesARow(t *testing.T) {
	e := newEngine(t)
	module := seedModule(t, e.db, "network-security")
	seedLab(t, e.db, module.ID, "port-scanning", nil)

	status, err := e.progress.GetStatus(7, "network-security", "port-scanning")
	require.NoError(t, err)
	assert.Equal(t, model.StatusNotStarted, status.Status)
	assert.Nil(t, status.StartedAt)

	var count int64
	require.NoError(t, e.db.Model(&model.LabAttempt{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestGetUserSummary(t *testing.T) {
	e := newEngine(t)
	module := seedModule(t, e.db, "network-security")
	seedLab(t, e.db, module.ID, "lab-a", func(l *model.PracticeLab) { l.Points = 50 })
	seedLab(t, e.db, module.ID, "lab-b", nil)
	seedLab(t, e.db, module.ID, "lab-c", nil)

	_, err := e.submissions.Submit("network-security", "lab-a", submitReq(1, func(r *dto.LabSubmitDTO) {
		r.MarkComplete = true
	}))
	require.NoError(t, err)
	_, err = e.progress.Start(1, "network-security", "lab-b")
	require.NoError(t, err)

	summary, err := e.progress.GetUserSummary(1)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Completed)
	assert.Equal(t, 1, summary.InProgress)
	assert.Equal(t, 50, summary.TotalPoints)

	// A user with no history gets an all-zero summary, not an error.
	empty, err := e.progress.GetUserSummary(99)
	require.NoError(t, err)
	assert.Zero(t, empty.Completed)
	assert.Zero(t, empty.InProgress)
	assert.Zero(t, empty.TotalPoints)
}
