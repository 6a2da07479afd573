package service

import (
	"errors"
	"fmt"

	"github.com/jinzhu/copier"
	"github.com/rs/zerolog/log"
	"github.com/strikelab/cyberlab/internal/apperr"
	"github.com/strikelab/cyberlab/internal/dto"
	"github.com/strikelab/cyberlab/internal/model"
	"github.com/strikelab/cyberlab/internal/repository"
	"gorm.io/gorm"
)

type CatalogService interface {
	ListModules() ([]dto.ModuleSummaryDTO, error)
	ListLabs(moduleSlug string, userID uint) ([]dto.LabSummaryDTO, error)
	GetLabDetail(moduleSlug, labSlug string, userID uint) (*dto.LabDetailDTO, error)
}

type catalogService struct {
	moduleRepo   repository.ModuleRepository
	labRepo      repository.LabRepository
	attemptRepo  repository.AttemptRepository
	entitlements EntitlementChecker
	cache        CatalogCache // nil disables caching
}

func NewCatalogService(
	moduleRepo repository.ModuleRepository,
	labRepo repository.LabRepository,
	attemptRepo repository.AttemptRepository,
	entitlements EntitlementChecker,
	cache CatalogCache,
) CatalogService {
	return &catalogService{
		moduleRepo:   moduleRepo,
		labRepo:      labRepo,
		attemptRepo:  attemptRepo,
		entitlements: entitlements,
		cache:        cache,
	}
}

func (s *catalogService) ListModules() ([]dto.ModuleSummaryDTO, error) {
	if s.cache != nil {
		if modules, ok := s.cache.GetModules(); ok {
			return modules, nil
		}
	}

	modulesWithCount, err := s.moduleRepo.FindAllActiveWithLabCount()
	if err != nil {
		log.Error().Err(err).Msg("Failed to list modules with lab counts")
		return nil, fmt.Errorf("listing modules: %w: %v", apperr.ErrStorage, err)
	}

	summaries := make([]dto.ModuleSummaryDTO, 0, len(modulesWithCount))
	for _, mwc := range modulesWithCount {
		summaries = append(summaries, dto.ModuleSummaryDTO{
			ID:          mwc.LearningModule.ID,
			Title:       mwc.LearningModule.Title,
			Slug:        mwc.LearningModule.Slug,
			Description: mwc.LearningModule.Description,
			Icon:        mwc.LearningModule.Icon,
			LabCount:    mwc.LabCount,
		})
	}

	if s.cache != nil {
		s.cache.SetModules(summaries)
	}
	return summaries, nil
}

func (s *catalogService) ListLabs(moduleSlug string, userID uint) ([]dto.LabSummaryDTO, error) {
	module, err := s.moduleRepo.FindActiveBySlug(moduleSlug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("module %q: %w", moduleSlug, apperr.ErrNotFound)
		}
		return nil, fmt.Errorf("loading module %q: %w: %v", moduleSlug, apperr.ErrStorage, err)
	}

	labs, err := s.labRepo.FindActiveByModuleID(module.ID)
	if err != nil {
		return nil, fmt.Errorf("listing labs for module %q: %w: %v", moduleSlug, apperr.ErrStorage, err)
	}

	entitled, err := s.entitlements.HasPremiumAccess(userID)
	if err != nil {
		return nil, fmt.Errorf("checking entitlement for user %d: %w", userID, err)
	}

	labIDs := make([]uint, 0, len(labs))
	for _, lab := range labs {
		labIDs = append(labIDs, lab.ID)
	}
	attempts, err := s.attemptRepo.FindByUserAndLabIDs(userID, labIDs)
	if err != nil {
		return nil, fmt.Errorf("loading attempts for user %d: %w: %v", userID, apperr.ErrStorage, err)
	}

	summaries := make([]dto.LabSummaryDTO, 0, len(labs))
	for _, lab := range labs {
		if lab.IsPremium && !entitled {
			continue
		}
		status := model.StatusNotStarted
		if attempt, ok := attempts[lab.ID]; ok {
			status = attempt.Status
		}
		summaries = append(summaries, dto.LabSummaryDTO{
			Slug:                 lab.Slug,
			Title:                lab.Title,
			Description:          lab.Description,
			Difficulty:           lab.Difficulty,
			LabType:              lab.LabType,
			EstimatedTimeMinutes: lab.EstimatedTimeMinutes,
			Points:               lab.Points,
			IsPremium:            lab.IsPremium,
			Status:               status,
		})
	}
	return summaries, nil
}

func (s *catalogService) GetLabDetail(moduleSlug, labSlug string, userID uint) (*dto.LabDetailDTO, error) {
	lab, err := findActiveLab(s.moduleRepo, s.labRepo, moduleSlug, labSlug)
	if err != nil {
		return nil, err
	}

	if lab.IsPremium {
		entitled, entErr := s.entitlements.HasPremiumAccess(userID)
		if entErr != nil {
			return nil, fmt.Errorf("checking entitlement for user %d: %w", userID, entErr)
		}
		if !entitled {
			return nil, fmt.Errorf("premium lab %q: %w", labSlug, apperr.ErrForbidden)
		}
	}

	var detail dto.LabDetailDTO
	if err := copier.Copy(&detail, lab); err != nil {
		log.Error().Err(err).Uint("labID", lab.ID).Msg("Failed to copy PracticeLab to LabDetailDTO")
		return nil, fmt.Errorf("preparing lab detail: %w", err)
	}
	detail.ModuleSlug = moduleSlug
	detail.Objectives = []string(lab.Objectives)
	detail.ToolsRequired = []string(lab.ToolsRequired)
	detail.HintCount = len(lab.Hints)

	attempt, err := s.attemptRepo.FindByUserAndLab(userID, lab.ID)
	switch {
	case err == nil:
		detail.Attempt = attemptToDTO(attempt)
	case errors.Is(err, gorm.ErrRecordNotFound):
		detail.Attempt = virtualAttemptDTO()
	default:
		return nil, fmt.Errorf("loading attempt user=%d lab=%d: %w: %v", userID, lab.ID, apperr.ErrStorage, err)
	}

	// The walkthrough stays hidden until the caller has finished the lab.
	if detail.Attempt.Status != model.StatusCompleted {
		detail.Solution = ""
	}
	return &detail, nil
}
