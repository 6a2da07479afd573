package service

import (
	"fmt"
	"strings"
	"testing"

	"github.com/strikelab/cyberlab/config"
	"github.com/strikelab/cyberlab/internal/dto"
	"github.com/strikelab/cyberlab/internal/model"
	"github.com/strikelab/cyberlab/internal/repository"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	// A named shared in-memory database so the pool's connections all see
	// the same data, isolated per test by name.
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&model.LearningModule{},
		&model.PracticeLab{},
		&model.LabAttempt{},
		&model.UserPointsLedger{},
	))
	return db
}

// engine bundles the full service stack over one test database.
type engine struct {
	db          *gorm.DB
	cfg         *config.Config
	attemptRepo repository.AttemptRepository
	pointsRepo  repository.PointsRepository
	catalog     CatalogService
	progress    ProgressService
	hints       HintService
	submissions SubmissionService
	admin       AdminLabService
}

func newEngine(t *testing.T, opts ...func(*config.Config)) *engine {
	t.Helper()
	cfg := &config.Config{}
	for _, opt := range opts {
		opt(cfg)
	}
	return newEngineWithCache(t, cfg, nil)
}

func newEngineWithCache(t *testing.T, cfg *config.Config, catalogCache CatalogCache) *engine {
	t.Helper()
	db := newTestDB(t)

	moduleRepo := repository.NewModuleRepository(db)
	labRepo := repository.NewLabRepository(db)
	attemptRepo := repository.NewAttemptRepository(db)
	pointsRepo := repository.NewPointsRepository(db)

	entitlements := NewStaticEntitlements(cfg)
	progress := NewProgressService(moduleRepo, labRepo, attemptRepo, pointsRepo)

	return &engine{
		db:          db,
		cfg:         cfg,
		attemptRepo: attemptRepo,
		pointsRepo:  pointsRepo,
		catalog:     NewCatalogService(moduleRepo, labRepo, attemptRepo, entitlements, catalogCache),
		progress:    progress,
		hints:       NewHintService(moduleRepo, labRepo, attemptRepo, progress),
		submissions: NewSubmissionService(moduleRepo, labRepo, attemptRepo, pointsRepo, progress, db),
		admin:       NewAdminLabService(moduleRepo, labRepo, attemptRepo, pointsRepo, catalogCache, cfg, db),
	}
}

func seedModule(t *testing.T, db *gorm.DB, slug string) *model.LearningModule {
	t.Helper()
	module := &model.LearningModule{
		Title:    slug,
		Slug:     slug,
		IsActive: true,
	}
	require.NoError(t, db.Create(module).Error)
	return module
}

func seedLab(t *testing.T, db *gorm.DB, moduleID uint, slug string, mutate func(*model.PracticeLab)) *model.PracticeLab {
	t.Helper()
	lab := &model.PracticeLab{
		ModuleID:     moduleID,
		Slug:         slug,
		Title:        slug,
		Difficulty:   model.DifficultyBeginner,
		LabType:      model.LabTypeInteractive,
		Instructions: "follow the steps",
		Hints:        datatypes.JSONSlice[string]{},
		Points:       100,
		IsActive:     true,
	}
	if mutate != nil {
		mutate(lab)
	}
	require.NoError(t, db.Create(lab).Error)
	return lab
}

func submitReq(userID uint, mutate func(*dto.LabSubmitDTO)) dto.LabSubmitDTO {
	req := dto.LabSubmitDTO{UserID: userID}
	if mutate != nil {
		mutate(&req)
	}
	return req
}

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }
