package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/siakad-go/siakad-api/internal/service"
	appErrors "github.com/siakad-go/siakad-api/pkg/errors"
	"github.com/siakad-go/siakad-api/pkg/response"
)

// SchoolHandler manages school profile, achievements, programs and
// registration links.
type SchoolHandler struct {
	service *service.SchoolService
}

// NewSchoolHandler constructs handler.
func NewSchoolHandler(svc *service.SchoolService) *SchoolHandler {
	return &SchoolHandler{service: svc}
}

// Profile godoc
// @Summary Get school profile
// @Tags School
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /school/profile [get]
func (h *SchoolHandler) Profile(c *gin.Context) {
	profile, err := h.service.Profile(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, profile, nil)
}

// SaveProfile godoc
// @Summary Update school profile
// @Tags School
// @Accept json
// @Produce json
// @Param payload body service.SaveProfileRequest true "Profile payload"
// @Success 200 {object} response.Envelope
// @Router /school/profile [put]
func (h *SchoolHandler) SaveProfile(c *gin.Context) {
	var req service.SaveProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	profile, err := h.service.SaveProfile(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, profile, nil)
}

func (h *SchoolHandler) ListAchievements(c *gin.Context) {
	achievements, err := h.service.ListAchievements(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, achievements, nil)
}

func (h *SchoolHandler) CreateAchievement(c *gin.Context) {
	var req service.CreateAchievementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	achievement, err := h.service.CreateAchievement(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, achievement)
}

func (h *SchoolHandler) DeleteAchievement(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.service.DeleteAchievement(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

func (h *SchoolHandler) ListPrograms(c *gin.Context) {
	programs, err := h.service.ListPrograms(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, programs, nil)
}

func (h *SchoolHandler) CreateProgram(c *gin.Context) {
	var req service.CreateProgramRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	program, err := h.service.CreateProgram(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, program)
}

func (h *SchoolHandler) DeleteProgram(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.service.DeleteProgram(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// CreateRegistrationLink godoc
// @Summary Issue a signed registration link
// @Tags School
// @Accept json
// @Produce json
// @Param payload body object true "Audience payload"
// @Success 201 {object} response.Envelope
// @Router /school/registration-links [post]
func (h *SchoolHandler) CreateRegistrationLink(c *gin.Context) {
	var payload struct {
		Audience string `json:"audience" binding:"required"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	link, err := h.service.CreateRegistrationLink(c.Request.Context(), payload.Audience)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, link)
}

// ValidateRegistrationLink godoc
// @Summary Validate a registration link token
// @Tags School
// @Produce json
// @Param token query string true "Signed token"
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /school/registration-links/validate [get]
func (h *SchoolHandler) ValidateRegistrationLink(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "token wajib diisi"))
		return
	}
	link, err := h.service.ValidateRegistrationLink(c.Request.Context(), token)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, link, nil)
}
