package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/jinzhu/copier"
	"github.com/rs/zerolog/log"
	"github.com/strikelab/cyberlab/internal/apperr"
	"github.com/strikelab/cyberlab/internal/dto"
	"github.com/strikelab/cyberlab/internal/model"
	"github.com/strikelab/cyberlab/internal/repository"
	"gorm.io/gorm"
)

type SubmissionService interface {
	// Submit records one submission against the caller's attempt. Every
	// call counts as an attempt, whatever the outcome. On a CTF flag
	// mismatch the incremented counter and latest notes/flag still persist
	// and the returned error wraps apperr.ErrValidation alongside the
	// persisted snapshot.
	Submit(moduleSlug, labSlug string, req dto.LabSubmitDTO) (*dto.SubmitResultDTO, error)
}

type submissionService struct {
	moduleRepo  repository.ModuleRepository
	labRepo     repository.LabRepository
	attemptRepo repository.AttemptRepository
	pointsRepo  repository.PointsRepository
	progress    ProgressService
	db          *gorm.DB // transaction scope for the completion/award commit
}

func NewSubmissionService(
	moduleRepo repository.ModuleRepository,
	labRepo repository.LabRepository,
	attemptRepo repository.AttemptRepository,
	pointsRepo repository.PointsRepository,
	progress ProgressService,
	db *gorm.DB,
) SubmissionService {
	return &submissionService{
		moduleRepo:  moduleRepo,
		labRepo:     labRepo,
		attemptRepo: attemptRepo,
		pointsRepo:  pointsRepo,
		progress:    progress,
		db:          db,
	}
}

// clampScore folds a self-reported score into [0,100], defaulting to 100
// when none was given.
func clampScore(score *int) int {
	if score == nil {
		return 100
	}
	if *score < 0 {
		return 0
	}
	if *score > 100 {
		return 100
	}
	return *score
}

func (s *submissionService) Submit(moduleSlug, labSlug string, req dto.LabSubmitDTO) (*dto.SubmitResultDTO, error) {
	lab, err := findActiveLab(s.moduleRepo, s.labRepo, moduleSlug, labSlug)
	if err != nil {
		return nil, err
	}

	for try := 0; try < maxVersionRetries; try++ {
		attempt, err := s.progress.EnsureStarted(req.UserID, lab.ID)
		if err != nil {
			return nil, err
		}

		expected := attempt.Version
		attempt.Attempts++
		attempt.SubmissionNotes = req.Notes
		if req.Flag != nil {
			attempt.FlagSubmitted = *req.Flag
		}

		flagMismatch := false
		awardedThisCall := false
		if req.MarkComplete {
			if lab.RequiresFlag() && strings.TrimSpace(attempt.FlagSubmitted) != *lab.CanonicalFlag {
				// The failed try still counts and the latest notes/flag
				// still persist below; only the completion is refused.
				flagMismatch = true
			} else {
				score := clampScore(req.Score)
				attempt.Score = &score
				if attempt.Status != model.StatusCompleted {
					attempt.Status = model.StatusCompleted
					now := time.Now()
					attempt.CompletedAt = &now
					if !attempt.Awarded {
						attempt.Awarded = true
						awardedThisCall = true
					}
				}
			}
		}
		attempt.Version++

		ok, err := s.commit(attempt, expected, awardedThisCall, lab.Points)
		if err != nil {
			return nil, fmt.Errorf("persisting submission user=%d lab=%d: %w: %v", req.UserID, lab.ID, apperr.ErrStorage, err)
		}
		if !ok {
			log.Debug().Uint("userID", req.UserID).Uint("labID", lab.ID).Int("try", try).Msg("Submission hit a version conflict, retrying")
			continue
		}

		result := &dto.SubmitResultDTO{PointsAwardedThisCall: awardedThisCall}
		if awardedThisCall {
			result.PointsAwarded = lab.Points
			log.Info().Uint("userID", req.UserID).Uint("labID", lab.ID).Int("points", lab.Points).Msg("Lab completed, points awarded")
		}
		if err := copier.Copy(&result.Attempt, attempt); err != nil {
			log.Error().Err(err).Uint("attemptID", attempt.ID).Msg("Failed to copy LabAttempt to AttemptDTO")
		}

		if flagMismatch {
			return result, fmt.Errorf("submitted flag does not match for lab %q: %w", lab.Slug, apperr.ErrValidation)
		}
		return result, nil
	}

	return nil, fmt.Errorf("submitting lab %q: %w", labSlug, apperr.ErrConflict)
}

// commit writes the attempt, joining it with the points credit in one
// transaction when this call fires the award. The credit never lands
// without the version-guarded attempt write it belongs to.
func (s *submissionService) commit(attempt *model.LabAttempt, expectedVersion int64, award bool, points int) (bool, error) {
	if !award {
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
		if err := s.pointsRepo.CreditTx(tx, attempt.UserID, points); err != nil {
			return err
		}
		committed = true
		return nil
	})
	return committed, err
}
