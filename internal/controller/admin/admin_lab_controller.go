package admin

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/strikelab/cyberlab/internal/controller"
	"github.com/strikelab/cyberlab/internal/dto"
	"github.com/strikelab/cyberlab/internal/service"
)

type AdminLabController struct {
	adminLabService service.AdminLabService
}

func NewAdminLabController(adminLabService service.AdminLabService) *AdminLabController {
	return &AdminLabController{adminLabService: adminLabService}
}

// CreateLab godoc
// @Summary (Admin) Create a practice lab
// @Description Operator-facing lab creation for bootstrap and fixtures. Full content authoring happens in the admin screens.
// @Tags Admin - Labs
// @Accept json
// @Produce json
// @Param lab_data body dto.LabCreateDTO true "Lab definition"
// @Success 201 {object} dto.LabDetailDTO "Lab created"
// @Failure 400 {object} dto.ErrorResponse "Invalid input data"
// @Failure 404 {object} dto.ErrorResponse "Module not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /admin/labs [post]
func (c *AdminLabController) CreateLab(ctx *gin.Context) {
	var req dto.LabCreateDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		log.Warn().Err(err).Msg("Admin CreateLab: Failed to bind JSON")
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request body", Details: []string{err.Error()}})
		return
	}

	lab, err := c.adminLabService.CreateLab(req)
	if err != nil {
		log.Error().Err(err).Str("module", req.ModuleSlug).Str("lab", req.Slug).Msg("Admin CreateLab: Service error")
		ctx.JSON(controller.StatusForError(err), dto.ErrorResponse{Message: "Failed to create lab", Details: []string{err.Error()}})
		return
	}
	ctx.JSON(http.StatusCreated, lab)
}

// ResetProgress godoc
// @Summary (Admin) Reset a user's lab progress
// @Description Returns the attempt to in_progress and clears its counters, completion timestamp, score and latest submission. Whether the point award is revoked follows the RESET_REVOKES_AWARD policy.
// @Tags Admin - Progress
// @Accept json
// @Produce json
// @Param reset_data body dto.ResetProgressDTO true "User and lab to reset"
// @Success 200 {object} dto.AttemptDTO "Reset attempt snapshot"
// @Failure 400 {object} dto.ErrorResponse "Invalid request body"
// @Failure 404 {object} dto.ErrorResponse "No attempt to reset"
// @Failure 409 {object} dto.ErrorResponse "Concurrent update conflict, retry"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /admin/progress/reset [post]
func (c *AdminLabController) ResetProgress(ctx *gin.Context) {
	var req dto.ResetProgressDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		log.Warn().Err(err).Msg("Admin ResetProgress: Failed to bind JSON")
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request body", Details: []string{err.Error()}})
		return
	}

	attempt, err := c.adminLabService.ResetProgress(req)
	if err != nil {
		log.Error().Err(err).Uint("userID", req.UserID).Str("lab", req.LabSlug).Msg("Admin ResetProgress: Service error")
		ctx.JSON(controller.StatusForError(err), dto.ErrorResponse{Message: "Failed to reset progress", Details: []string{err.Error()}})
		return
	}
	ctx.JSON(http.StatusOK, attempt)
}
