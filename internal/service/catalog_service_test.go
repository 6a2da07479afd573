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

// fakeCatalogCache is an in-memory CatalogCache that counts its calls.
type fakeCatalogCache struct {
	modules     []dto.ModuleSummaryDTO
	populated   bool
	hits, sets  int
	invalidates int
}

func (f *fakeCatalogCache) GetModules() ([]dto.ModuleSummaryDTO, bool) {
	if !f.populated {
		return nil, false
	}
	f.hits++
	return f.modules, true
}

func (f *fakeCatalogCache) SetModules(modules []dto.ModuleSummaryDTO) {
	f.modules = modules
	f.populated = true
	f.sets++
}

func (f *fakeCatalogCache) InvalidateModules() {
	f.modules = nil
	f.populated = false
	f.invalidates++
}

func TestListModulesCountsActiveLabs(t *testing.T) {
	e := newEngine(t)
	netsec := seedModule(t, e.db, "network-security")
	websec := seedModule(t, e.db, "web-security")
	seedModule(t, e.db, "empty-module")

	inactive := seedModule(t, e.db, "retired-module")
	require.NoError(t, e.db.Model(inactive).Update("is_active", false).Error)

	seedLab(t, e.db, netsec.ID, "lab-a", nil)
	seedLab(t, e.db, netsec.ID, "lab-b", nil)
	seedLab(t, e.db, netsec.ID, "lab-hidden", func(l *model.PracticeLab) { l.IsActive = false })
	seedLab(t, e.db, websec.ID, "lab-c", nil)

	modules, err := e.catalog.ListModules()
	require.NoError(t, err)
	require.Len(t, modules, 3, "inactive modules stay out of the listing")

	counts := map[string]int{}
	for _, m := range modules {
		counts[m.Slug] = m.LabCount
	}
	assert.Equal(t, 2, counts["network-security"], "inactive labs do not count")
	assert.Equal(t, 1, counts["web-security"])
	assert.Equal(t, 0, counts["empty-module"])
}

func TestListModulesServedFromCache(t *testing.T) {
	cache := &fakeCatalogCache{}
	e := newEngineWithCache(t, &config.Config{}, cache)
	module := seedModule(t, e.db, "network-security")
	seedLab(t, e.db, module.ID, "lab-a", nil)

	first, err := e.catalog.ListModules()
	require.NoError(t, err)
	assert.Equal(t, 1, cache.sets)
	assert.Zero(t, cache.hits)

	second, err := e.catalog.ListModules()
	require.NoError(t, err)
	assert.Equal(t, 1, cache.hits)
	assert.Equal(t, 1, cache.sets, "a hit does not rewrite the cache")
	assert.Equal(t, first, second)
}

func TestListLabsDecoratesAttemptStatus(t *testing.T) {
	e := newEngine(t)
	module := seedModule(t, e.db, "network-security")
	seedLab(t, e.db, module.ID, "lab-started", nil)
	seedLab(t, e.db, module.ID, "lab-done", nil)
	seedLab(t, e.db, module.ID, "lab-untouched", nil)
	seedLab(t, e.db, module.ID, "lab-inactive", func(l *model.PracticeLab) { l.IsActive = false })

	_, err := e.progress.Start(1, "network-security", "lab-started")
	require.NoError(t, err)
	_, err = e.submissions.Submit("network-security", "lab-done", submitReq(1, func(r *dto.LabSubmitDTO) {
		r.MarkComplete = true
	}))
	require.NoError(t, err)

	labs, err := e.catalog.ListLabs("network-security", 1)
	require.NoError(t, err)
	require.Len(t, labs, 3)

	statuses := map[string]string{}
	for _, lab := range labs {
		statuses[lab.Slug] = lab.Status
	}
	assert.Equal(t, model.StatusInProgress, statuses["lab-started"])
	assert.Equal(t, model.StatusCompleted, statuses["lab-done"])
	assert.Equal(t, model.StatusNotStarted, statuses["lab-untouched"])
}

func TestListLabsHidesPremiumWithoutEntitlement(t *testing.T) {
	e := newEngine(t)
	module := seedModule(t, e.db, "network-security")
	seedLab(t, e.db, module.ID, "free-lab", nil)
	seedLab(t, e.db, module.ID, "premium-lab", func(l *model.PracticeLab) { l.IsPremium = true })

	labs, err := e.catalog.ListLabs("network-security", 1)
	require.NoError(t, err)
	require.Len(t, labs, 1)
	assert.Equal(t, "free-lab", labs[0].Slug)
}

func TestListLabsShowsPremiumWithOpenAccess(t *testing.T) {
	e := newEngine(t, func(cfg *config.Config) {
		cfg.Learning.PremiumOpenAccess = true
	})
	module := seedModule(t, e.db, "network-security")
	seedLab(t, e.db, module.ID, "free-lab", nil)
	seedLab(t, e.db, module.ID, "premium-lab", func(l *model.PracticeLab) { l.IsPremium = true })

	labs, err := e.catalog.ListLabs("network-security", 1)
	require.NoError(t, err)
	assert.Len(t, labs, 2)
}

func TestListLabsUnknownModule(t *testing.T) {
	e := newEngine(t)
	_, err := e.catalog.ListLabs("no-such-module", 1)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestGetLabDetailPremiumForbidden(t *testing.T) {
	e := newEngine(t)
	module := seedModule(t, e.db, "network-security")
	seedLab(t, e.db, module.ID, "premium-lab", func(l *model.PracticeLab) { l.IsPremium = true })

	_, err := e.catalog.GetLabDetail("network-security", "premium-lab", 1)
	assert.ErrorIs(t, err, apperr.ErrForbidden)
}

func TestGetLabDetailHidesSolutionUntilCompleted(t *testing.T) {
	e := newEngine(t)
	module := seedModule(t, e.db, "network-security")
	seedLab(t, e.db, module.ID, "lab-a", func(l *model.PracticeLab) {
		l.Solution = "the walkthrough"
		l.Hints = []string{"h1", "h2", "h3"}
		l.Objectives = []string{"learn scanning"}
	})

	before, err := e.catalog.GetLabDetail("network-security", "lab-a", 1)
	require.NoError(t, err)
	assert.Empty(t, before.Solution)
	assert.Equal(t, 3, before.HintCount, "hint texts stay hidden, the count does not")
	assert.Equal(t, []string{"learn scanning"}, before.Objectives)
	assert.Equal(t, model.StatusNotStarted, before.Attempt.Status)

	_, err = e.submissions.Submit("network-security", "lab-a", submitReq(1, func(r *dto.LabSubmitDTO) {
		r.MarkComplete = true
	}))
	require.NoError(t, err)

	after, err := e.catalog.GetLabDetail("network-security", "lab-a", 1)
	require.NoError(t, err)
	assert.Equal(t, "the walkthrough", after.Solution)
	assert.Equal(t, model.StatusCompleted, after.Attempt.Status)

	// Another user still sees it hidden.
	other, err := e.catalog.GetLabDetail("network-security", "lab-a", 2)
	require.NoError(t, err)
	assert.Empty(t, other.Solution)
}
