package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/jinzhu/copier"
	"github.com/rs/zerolog/log"
	"github.com/strikelab/cyberlab/internal/apperr"
	"github.com/strikelab/cyberlab/internal/dto"
	"github.com/strikelab/cyberlab/internal/model"
	"github.com/strikelab/cyberlab/internal/repository"
	"gorm.io/gorm"
)

// maxVersionRetries bounds the optimistic-concurrency retry loop shared by
// every mutating attempt operation.
const maxVersionRetries = 5

type ProgressService interface {
	Start(userID uint, moduleSlug, labSlug string) (*dto.AttemptDTO, error)
	GetStatus(userID uint, moduleSlug, labSlug string) (*dto.AttemptDTO, error)
	GetUserSummary(userID uint) (*dto.ProgressSummaryDTO, error)

	// EnsureStarted loads the attempt for (user, lab), creating it in
	// in_progress on first contact. Hint reveals and submissions use this
	// so neither requires a prior explicit start call.
	EnsureStarted(userID, labID uint) (*model.LabAttempt, error)
}

type progressService struct {
	moduleRepo  repository.ModuleRepository
	labRepo     repository.LabRepository
	attemptRepo repository.AttemptRepository
	pointsRepo  repository.PointsRepository
}

func NewProgressService(
	moduleRepo repository.ModuleRepository,
	labRepo repository.LabRepository,
	attemptRepo repository.AttemptRepository,
	pointsRepo repository.PointsRepository,
) ProgressService {
	return &progressService{
		moduleRepo:  moduleRepo,
		labRepo:     labRepo,
		attemptRepo: attemptRepo,
		pointsRepo:  pointsRepo,
	}
}

// findActiveLab resolves (moduleSlug, labSlug) against the catalog, mapping
// unknown or inactive entries to NotFound.
func findActiveLab(moduleRepo repository.ModuleRepository, labRepo repository.LabRepository, moduleSlug, labSlug string) (*model.PracticeLab, error) {
	module, err := moduleRepo.FindActiveBySlug(moduleSlug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("module %q: %w", moduleSlug, apperr.ErrNotFound)
		}
		return nil, fmt.Errorf("loading module %q: %w: %v", moduleSlug, apperr.ErrStorage, err)
	}
	lab, err := labRepo.FindActiveBySlug(module.ID, labSlug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("lab %q in module %q: %w", labSlug, moduleSlug, apperr.ErrNotFound)
		}
		return nil, fmt.Errorf("loading lab %q: %w: %v", labSlug, apperr.ErrStorage, err)
	}
	return lab, nil
}

func attemptToDTO(attempt *model.LabAttempt) dto.AttemptDTO {
	var snapshot dto.AttemptDTO
	if err := copier.Copy(&snapshot, attempt); err != nil {
		log.Error().Err(err).Uint("attemptID", attempt.ID).Msg("Failed to copy LabAttempt to AttemptDTO")
	}
	return snapshot
}

func virtualAttemptDTO() dto.AttemptDTO {
	return dto.AttemptDTO{Status: model.StatusNotStarted}
}

func (s *progressService) Start(userID uint, moduleSlug, labSlug string) (*dto.AttemptDTO, error) {
	lab, err := findActiveLab(s.moduleRepo, s.labRepo, moduleSlug, labSlug)
	if err != nil {
		return nil, err
	}

	attempt, err := s.EnsureStarted(userID, lab.ID)
	if err != nil {
		return nil, err
	}

	snapshot := attemptToDTO(attempt)
	return &snapshot, nil
}

func (s *progressService) EnsureStarted(userID, labID uint) (*model.LabAttempt, error) {
	attempt, err := s.attemptRepo.FindByUserAndLab(userID, labID)
	if err == nil {
		// Resume in place. A completed attempt comes back unchanged too:
		// re-entering a finished lab is a review, not a reset.
		return attempt, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("loading attempt user=%d lab=%d: %w: %v", userID, labID, apperr.ErrStorage, err)
	}

	now := time.Now()
	fresh := &model.LabAttempt{
		UserID:    userID,
		LabID:     labID,
		Status:    model.StatusInProgress,
		StartedAt: &now,
	}
	if createErr := s.attemptRepo.Create(fresh); createErr != nil {
		// Lost the create race to a concurrent request: the unique
		// (user, lab) index rejected the insert, so the row exists now.
		attempt, err = s.attemptRepo.FindByUserAndLab(userID, labID)
		if err != nil {
			return nil, fmt.Errorf("creating attempt user=%d lab=%d: %w: %v", userID, labID, apperr.ErrStorage, createErr)
		}
		return attempt, nil
	}

	log.Info().Uint("userID", userID).Uint("labID", labID).Msg("Lab attempt started")
	return fresh, nil
}

func (s *progressService) GetStatus(userID uint, moduleSlug, labSlug string) (*dto.AttemptDTO, error) {
	lab, err := findActiveLab(s.moduleRepo, s.labRepo, moduleSlug, labSlug)
	if err != nil {
		return nil, err
	}

	attempt, err := s.attemptRepo.FindByUserAndLab(userID, lab.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Reads never create rows; an untouched lab is a virtual record.
			snapshot := virtualAttemptDTO()
			return &snapshot, nil
		}
		return nil, fmt.Errorf("loading attempt user=%d lab=%d: %w: %v", userID, lab.ID, apperr.ErrStorage, err)
	}

	snapshot := attemptToDTO(attempt)
	return &snapshot, nil
}

func (s *progressService) GetUserSummary(userID uint) (*dto.ProgressSummaryDTO, error) {
	completed, err := s.attemptRepo.CountByUserAndStatus(userID, model.StatusCompleted)
	if err != nil {
		return nil, fmt.Errorf("counting completed labs for user %d: %w: %v", userID, apperr.ErrStorage, err)
	}
	inProgress, err := s.attemptRepo.CountByUserAndStatus(userID, model.StatusInProgress)
	if err != nil {
		return nil, fmt.Errorf("counting in-progress labs for user %d: %w: %v", userID, apperr.ErrStorage, err)
	}
	points, err := s.pointsRepo.TotalPoints(userID)
	if err != nil {
		return nil, fmt.Errorf("loading points for user %d: %w: %v", userID, apperr.ErrStorage, err)
	}

	return &dto.ProgressSummaryDTO{
		UserID:      userID,
		Completed:   int(completed),
		InProgress:  int(inProgress),
		TotalPoints: points,
	}, nil
}
