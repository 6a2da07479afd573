package service

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/strikelab/cyberlab/internal/apperr"
	"github.com/strikelab/cyberlab/internal/dto"
	"github.com/strikelab/cyberlab/internal/repository"
)

type HintService interface {
	// RevealNextHint discloses the next unseen hint for the caller's
	// attempt. Requesting a hint on an untouched lab starts it implicitly.
	// Exhausted hints return a nil HintText, not an error.
	RevealNextHint(userID uint, moduleSlug, labSlug string) (*dto.HintDTO, error)
}

type hintService struct {
	moduleRepo  repository.ModuleRepository
	labRepo     repository.LabRepository
	attemptRepo repository.AttemptRepository
	progress    ProgressService
}

func NewHintService(
	moduleRepo repository.ModuleRepository,
	labRepo repository.LabRepository,
	attemptRepo repository.AttemptRepository,
	progress ProgressService,
) HintService {
	return &hintService{
		moduleRepo:  moduleRepo,
		labRepo:     labRepo,
		attemptRepo: attemptRepo,
		progress:    progress,
	}
}

func (s *hintService) RevealNextHint(userID uint, moduleSlug, labSlug string) (*dto.HintDTO, error) {
	lab, err := findActiveLab(s.moduleRepo, s.labRepo, moduleSlug, labSlug)
	if err != nil {
		return nil, err
	}

	for try := 0; try < maxVersionRetries; try++ {
		attempt, err := s.progress.EnsureStarted(userID, lab.ID)
		if err != nil {
			return nil, err
		}

		if attempt.HintsUsed >= len(lab.Hints) {
			return &dto.HintDTO{
				HintText:       nil,
				HintsUsed:      attempt.HintsUsed,
				HintsRemaining: 0,
			}, nil
		}

		hint := lab.Hints[attempt.HintsUsed]
		expected := attempt.Version
		attempt.HintsUsed++
		attempt.Version++

		ok, err := s.attemptRepo.UpdateVersioned(attempt, expected)
		if err != nil {
			return nil, fmt.Errorf("persisting hint reveal user=%d lab=%d: %w: %v", userID, lab.ID, apperr.ErrStorage, err)
		}
		if !ok {
			log.Debug().Uint("userID", userID).Uint("labID", lab.ID).Int("try", try).Msg("Hint reveal hit a version conflict, retrying")
			continue
		}

		return &dto.HintDTO{
			HintText:       &hint,
			HintsUsed:      attempt.HintsUsed,
			HintsRemaining: len(lab.Hints) - attempt.HintsUsed,
		}, nil
	}

	return nil, fmt.Errorf("revealing hint for lab %q: %w", labSlug, apperr.ErrConflict)
}
