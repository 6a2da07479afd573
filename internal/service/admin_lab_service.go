package service

import (
	"errors"
	"fmt"

	"github.com/jinzhu/copier"
	"github.com/rs/zerolog/log"
	"github.com/strikelab/cyberlab/config"
	"github.com/strikelab/cyberlab/internal/apperr"
	"github.com/strikelab/cyberlab/internal/dto"
	"github.com/strikelab/cyberlab/internal/model"
	"github.com/strikelab/cyberlab/internal/repository"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// AdminLabService carries the privileged operations. Reset lives here and
// not in the student-facing state machine: two authority levels never share
// one transition function.
type AdminLabService interface {
	CreateLab(req dto.LabCreateDTO) (*dto.LabDetailDTO, error)

	// ResetProgress returns an attempt to in_progress, clearing its
	// counters, completion timestamp, score and latest submission. The
	// awarded flag (and the credited points) survive unless
	// RESET_REVOKES_AWARD is enabled.
	ResetProgress(req dto.ResetProgressDTO) (*dto.AttemptDTO, error)
}

type adminLabService struct {
	moduleRepo  repository.ModuleRepository
	labRepo     repository.LabRepository
	attemptRepo repository.AttemptRepository
	pointsRepo  repository.PointsRepository
	cache       CatalogCache // nil disables invalidation
	cfg         *config.Config
	db          *gorm.DB
}

func NewAdminLabService(
	moduleRepo repository.ModuleRepository,
	labRepo repository.LabRepository,
	attemptRepo repository.AttemptRepository,
	pointsRepo repository.PointsRepository,
	cache CatalogCache,
	cfg *config.Config,
	db *gorm.DB,
) AdminLabService {
	return &adminLabService{
		moduleRepo:  moduleRepo,
		labRepo:     labRepo,
		attemptRepo: attemptRepo,
		pointsRepo:  pointsRepo,
		cache:       cache,
		cfg:         cfg,
		db:          db,
	}
}

func (s *adminLabService) CreateLab(req dto.LabCreateDTO) (*dto.LabDetailDTO, error) {
	module, err := s.moduleRepo.FindBySlug(req.ModuleSlug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("module %q: %w", req.ModuleSlug, apperr.ErrNotFound)
		}
		return nil, fmt.Errorf("loading module %q: %w: %v", req.ModuleSlug, apperr.ErrStorage, err)
	}

	lab := model.PracticeLab{
		ModuleID:             module.ID,
		Slug:                 req.Slug,
		Title:                req.Title,
		Description:          req.Description,
		Difficulty:           req.Difficulty,
		LabType:              req.LabType,
		Objectives:           datatypes.JSONSlice[string](req.Objectives),
		Instructions:         req.Instructions,
		Hints:                datatypes.JSONSlice[string](req.Hints),
		Solution:             req.Solution,
		CanonicalFlag:        req.CanonicalFlag,
		ExternalURL:          req.ExternalURL,
		ToolsRequired:        datatypes.JSONSlice[string](req.ToolsRequired),
		EstimatedTimeMinutes: req.EstimatedTimeMinutes,
		Points:               req.Points,
		Order:                req.Order,
		IsActive:             req.IsActive,
		IsPremium:            req.IsPremium,
	}
	if err := s.labRepo.Create(&lab); err != nil {
		return nil, fmt.Errorf("creating lab %q: %w: %v", req.Slug, apperr.ErrStorage, err)
	}

	if s.cache != nil {
		// Lab counts on the module listing just changed.
		s.cache.InvalidateModules()
	}
	log.Info().Str("module", req.ModuleSlug).Str("lab", req.Slug).Msg("Lab created")

	var detail dto.LabDetailDTO
	if err := copier.Copy(&detail, &lab); err != nil {
		return nil, fmt.Errorf("preparing lab detail: %w", err)
	}
	detail.ModuleSlug = module.Slug
	detail.Objectives = []string(lab.Objectives)
	detail.ToolsRequired = []string(lab.ToolsRequired)
	detail.HintCount = len(lab.Hints)
	detail.Attempt = virtualAttemptDTO()
	return &detail, nil
}

func (s *adminLabService) ResetProgress(req dto.ResetProgressDTO) (*dto.AttemptDTO, error) {
	module, err := s.moduleRepo.FindBySlug(req.ModuleSlug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("module %q: %w", req.ModuleSlug, apperr.ErrNotFound)
		}
		return nil, fmt.Errorf("loading module %q: %w: %v", req.ModuleSlug, apperr.ErrStorage, err)
	}
	lab, err := s.labRepo.FindBySlug(module.ID, req.LabSlug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("lab %q in module %q: %w", req.LabSlug, req.ModuleSlug, apperr.ErrNotFound)
		}
		return nil, fmt.Errorf("loading lab %q: %w: %v", req.LabSlug, apperr.ErrStorage, err)
	}

	for try := 0; try < maxVersionRetries; try++ {
		attempt, err := s.attemptRepo.FindByUserAndLab(req.UserID, lab.ID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("no attempt for user %d on lab %q: %w", req.UserID, req.LabSlug, apperr.ErrNotFound)
			}
			return nil, fmt.Errorf("loading attempt user=%d lab=%d: %w: %v", req.UserID, lab.ID, apperr.ErrStorage, err)
		}

		expected := attempt.Version
		revoke := s.cfg.Learning.ResetRevokesAward && attempt.Awarded

		attempt.Status = model.StatusInProgress
		attempt.CompletedAt = nil
		attempt.Attempts = 0
		attempt.HintsUsed = 0
		attempt.SubmissionNotes = ""
		attempt.FlagSubmitted = ""
		attempt.Score = nil
		if revoke {
			attempt.Awarded = false
		}
		attempt.Version++

		ok, err := s.commitReset(attempt, expected, revoke, lab.Points)
		if err != nil {
			return nil, fmt.Errorf("resetting attempt user=%d lab=%d: %w: %v", req.UserID, lab.ID, apperr.ErrStorage, err)
		}
		if !ok {
			continue
		}

		log.Info().Uint("userID", req.UserID).Str("lab", req.LabSlug).Bool("revokedAward", revoke).Msg("Lab progress reset")
		snapshot := attemptToDTO(attempt)
		return &snapshot, nil
	}

	return nil, fmt.Errorf("resetting lab %q: %w", req.LabSlug, apperr.ErrConflict)
}

func (s *adminLabService) commitReset(attempt *model.LabAttempt, expectedVersion int64, revoke bool, points int) (bool, error) {
	if !revoke {
		return s.attemptRepo.UpdateVersioned(attempt, expectedVersion)
	}

	committed := false
	err := s.db.Transaction(func(tx *gorm.DB) error {
		ok, err := s.attemptRepo.UpdateVersionedTx(tx, attempt, expectedVersion)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		if err := s.pointsRepo.DebitTx(tx, attempt.UserID, points); err != nil {
			return err
		}
		committed = true
		return nil
	})
	return committed, err
}
