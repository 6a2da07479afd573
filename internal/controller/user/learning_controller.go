package user

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/strikelab/cyberlab/internal/apperr"
	"github.com/strikelab/cyberlab/internal/controller"
	"github.com/strikelab/cyberlab/internal/dto"
	"github.com/strikelab/cyberlab/internal/service"
)

type LearningController struct {
	catalogService    service.CatalogService
	progressService   service.ProgressService
	hintService       service.HintService
	submissionService service.SubmissionService
}

func NewLearningController(
	catalogService service.CatalogService,
	progressService service.ProgressService,
	hintService service.HintService,
	submissionService service.SubmissionService,
) *LearningController {
	return &LearningController{
		catalogService:    catalogService,
		progressService:   progressService,
		hintService:       hintService,
		submissionService: submissionService,
	}
}

// parseUserID reads the optional user_id query param; 0 means anonymous.
func parseUserID(ctx *gin.Context) (uint, bool) {
	userIDStr := ctx.Query("user_id")
	if userIDStr == "" {
		return 0, true
	}
	val, err := strconv.ParseUint(userIDStr, 10, 32)
	if err != nil {
		return 0, false
	}
	return uint(val), true
}

// GetModules godoc
// @Summary List learning modules
// @Description Get the active learning modules with their lab counts.
// @Tags Learning
// @Produce json
// @Success 200 {array} dto.ModuleSummaryDTO
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /learning/modules [get]
func (c *LearningController) GetModules(ctx *gin.Context) {
	modules, err := c.catalogService.ListModules()
	if err != nil {
		log.Error().Err(err).Msg("GetModules: Service error")
		ctx.JSON(controller.StatusForError(err), dto.ErrorResponse{Message: "Failed to list modules", Details: []string{err.Error()}})
		return
	}
	ctx.JSON(http.StatusOK, modules)
}

// GetModuleLabs godoc
// @Summary List a module's practice labs
// @Description Get the active labs of a module, with the requesting user's attempt status. Premium labs are hidden from users without entitlement.
// @Tags Learning
// @Produce json
// @Param module_slug path string true "Module slug"
// @Param user_id query int false "Requesting user ID"
// @Success 200 {array} dto.LabSummaryDTO
// @Failure 404 {object} dto.ErrorResponse "Module not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /learning/{module_slug}/labs [get]
func (c *LearningController) GetModuleLabs(ctx *gin.Context) {
	userID, ok := parseUserID(ctx)
	if !ok {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid user_id format in query"})
		return
	}

	labs, err := c.catalogService.ListLabs(ctx.Param("module_slug"), userID)
	if err != nil {
		log.Warn().Err(err).Str("module", ctx.Param("module_slug")).Msg("GetModuleLabs: Service error")
		ctx.JSON(controller.StatusForError(err), dto.ErrorResponse{Message: "Failed to list labs", Details: []string{err.Error()}})
		return
	}
	ctx.JSON(http.StatusOK, labs)
}

// GetLabDetail godoc
// @Summary Get a lab with the caller's attempt
// @Description Full lab content plus the requesting user's attempt (a virtual not_started record if the user never touched the lab). The solution stays hidden until the lab is completed.
// @Tags Learning
// @Produce json
// @Param module_slug path string true "Module slug"
// @Param lab_slug path string true "Lab slug"
// @Param user_id query int false "Requesting user ID"
// @Success 200 {object} dto.LabDetailDTO
// @Failure 403 {object} dto.ErrorResponse "Premium lab without entitlement"
// @Failure 404 {object} dto.ErrorResponse "Lab not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /learning/{module_slug}/labs/{lab_slug} [get]
func (c *LearningController) GetLabDetail(ctx *gin.Context) {
	userID, ok := parseUserID(ctx)
	if !ok {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid user_id format in query"})
		return
	}

	detail, err := c.catalogService.GetLabDetail(ctx.Param("module_slug"), ctx.Param("lab_slug"), userID)
	if err != nil {
		log.Warn().Err(err).Str("lab", ctx.Param("lab_slug")).Msg("GetLabDetail: Service error")
		ctx.JSON(controller.StatusForError(err), dto.ErrorResponse{Message: "Failed to load lab", Details: []string{err.Error()}})
		return
	}
	ctx.JSON(http.StatusOK, detail)
}

// StartLab godoc
// @Summary Start or resume a lab
// @Description Creates the attempt on first start; a repeated start returns the existing attempt unchanged, including completed ones.
// @Tags Learning
// @Accept json
// @Produce json
// @Param module_slug path string true "Module slug"
// @Param lab_slug path string true "Lab slug"
// @Param request body dto.StartLabDTO true "Requesting user"
// @Success 200 {object} dto.AttemptDTO
// @Failure 400 {object} dto.ErrorResponse "Invalid request body"
// @Failure 404 {object} dto.ErrorResponse "Lab not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /learning/{module_slug}/labs/{lab_slug}/start [post]
func (c *LearningController) StartLab(ctx *gin.Context) {
	var req dto.StartLabDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request body", Details: []string{err.Error()}})
		return
	}

	attempt, err := c.progressService.Start(req.UserID, ctx.Param("module_slug"), ctx.Param("lab_slug"))
	if err != nil {
		log.Warn().Err(err).Uint("userID", req.UserID).Str("lab", ctx.Param("lab_slug")).Msg("StartLab: Service error")
		ctx.JSON(controller.StatusForError(err), dto.ErrorResponse{Message: "Failed to start lab", Details: []string{err.Error()}})
		return
	}
	ctx.JSON(http.StatusOK, attempt)
}

// GetHint godoc
// @Summary Reveal the next hint
// @Description Discloses the next unseen hint and advances the counter. Requesting a hint on an untouched lab starts it. A null hint_text means every hint has been revealed already, which is a normal outcome.
// @Tags Learning
// @Accept json
// @Produce json
// @Param module_slug path string true "Module slug"
// @Param lab_slug path string true "Lab slug"
// @Param request body dto.HintRequestDTO true "Requesting user"
// @Success 200 {object} dto.HintDTO
// @Failure 400 {object} dto.ErrorResponse "Invalid request body"
// @Failure 404 {object} dto.ErrorResponse "Lab not found"
// @Failure 409 {object} dto.ErrorResponse "Concurrent update conflict, retry"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /learning/{module_slug}/labs/{lab_slug}/hint [post]
func (c *LearningController) GetHint(ctx *gin.Context) {
	var req dto.HintRequestDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request body", Details: []string{err.Error()}})
		return
	}

	hint, err := c.hintService.RevealNextHint(req.UserID, ctx.Param("module_slug"), ctx.Param("lab_slug"))
	if err != nil {
		log.Warn().Err(err).Uint("userID", req.UserID).Str("lab", ctx.Param("lab_slug")).Msg("GetHint: Service error")
		ctx.JSON(controller.StatusForError(err), dto.ErrorResponse{Message: "Failed to reveal hint", Details: []string{err.Error()}})
		return
	}
	ctx.JSON(http.StatusOK, hint)
}

// SubmitLab godoc
// @Summary Submit a lab
// @Description Records a submission. Every call counts as an attempt. With mark_complete, CTF labs require the exact flag; other labs are self-certified with an optional score clamped into [0,100]. Points are awarded at most once per user and lab.
// @Tags Learning
// @Accept json
// @Produce json
// @Param module_slug path string true "Module slug"
// @Param lab_slug path string true "Lab slug"
// @Param request body dto.LabSubmitDTO true "Submission payload"
// @Success 200 {object} dto.SubmitResultDTO
// @Failure 400 {object} dto.ErrorResponse "Invalid request body"
// @Failure 404 {object} dto.ErrorResponse "Lab not found"
// @Failure 409 {object} dto.ErrorResponse "Concurrent update conflict, retry"
// @Failure 422 {object} dto.ErrorResponse "Flag mismatch on a completion attempt"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /learning/{module_slug}/labs/{lab_slug}/submit [post]
func (c *LearningController) SubmitLab(ctx *gin.Context) {
	var req dto.LabSubmitDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request body", Details: []string{err.Error()}})
		return
	}

	result, err := c.submissionService.Submit(ctx.Param("module_slug"), ctx.Param("lab_slug"), req)
	if err != nil {
		if errors.Is(err, apperr.ErrValidation) {
			// The attempt counter and latest notes/flag were persisted;
			// only the completion was refused.
			ctx.JSON(http.StatusUnprocessableEntity, dto.ErrorResponse{Message: "Submitted flag does not match", Details: []string{err.Error()}})
			return
		}
		log.Warn().Err(err).Uint("userID", req.UserID).Str("lab", ctx.Param("lab_slug")).Msg("SubmitLab: Service error")
		ctx.JSON(controller.StatusForError(err), dto.ErrorResponse{Message: "Failed to submit lab", Details: []string{err.Error()}})
		return
	}
	ctx.JSON(http.StatusOK, result)
}

// GetProgressSummary godoc
// @Summary Get a user's progress summary
// @Description Completed and in-progress lab counts plus the user's points total.
// @Tags Learning
// @Produce json
// @Param user_id query int true "User ID"
// @Success 200 {object} dto.ProgressSummaryDTO
// @Failure 400 {object} dto.ErrorResponse "Missing or invalid user_id"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /learning/progress [get]
func (c *LearningController) GetProgressSummary(ctx *gin.Context) {
	userID, ok := parseUserID(ctx)
	if !ok || userID == 0 {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "user_id query param is required"})
		return
	}

	summary, err := c.progressService.GetUserSummary(userID)
	if err != nil {
		log.Error().Err(err).Uint("userID", userID).Msg("GetProgressSummary: Service error")
		ctx.JSON(controller.StatusForError(err), dto.ErrorResponse{Message: "Failed to load progress summary", Details: []string{err.Error()}})
		return
	}
	ctx.JSON(http.StatusOK, summary)
}
