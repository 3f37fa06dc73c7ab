package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/siakad-go/siakad-api/internal/models"
	"github.com/siakad-go/siakad-api/internal/service"
	appErrors "github.com/siakad-go/siakad-api/pkg/errors"
	"github.com/siakad-go/siakad-api/pkg/response"
)

// TeacherSubjectHandler manages teaching assignment endpoints.
type TeacherSubjectHandler struct {
	service *service.TeacherSubjectService
}

// NewTeacherSubjectHandler constructs handler.
func NewTeacherSubjectHandler(svc *service.TeacherSubjectService) *TeacherSubjectHandler {
	return &TeacherSubjectHandler{service: svc}
}

// List godoc
// @Summary List teaching assignments
// @Tags TeacherSubjects
// @Produce json
// @Param teacherId query int false "Filter by teacher"
// @Param subjectId query int false "Filter by subject"
// @Param kelasId query int false "Filter by class"
// @Param ids query string false "Comma-separated ids, batch-resolved to a map keyed by id"
// @Success 200 {object} response.Envelope
// @Router /teacher-subjects [get]
func (h *TeacherSubjectHandler) List(c *gin.Context) {
	if raw := c.Query("ids"); raw != "" {
		ids, err := parseIDList(raw)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "ids harus berupa daftar angka dipisah koma"))
			return
		}
		assignments, err := h.service.MapByIDs(c.Request.Context(), ids)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.JSON(c, http.StatusOK, assignments, nil)
		return
	}

	filter := models.TeacherSubjectFilter{
		TeacherID: queryInt64(c, "teacherId"),
		SubjectID: queryInt64(c, "subjectId"),
		KelasID:   queryInt64(c, "kelasId"),
	}
	assignments, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, assignments, nil)
}

// Get godoc
// @Summary Get teaching assignment by id
// @Tags TeacherSubjects
// @Produce json
// @Param id path int true "Assignment ID"
// @Success 200 {object} response.Envelope
// @Router /teacher-subjects/{id} [get]
func (h *TeacherSubjectHandler) Get(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	assignment, err := h.service.FindByID(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, assignment, nil)
}

// Create godoc
// @Summary Create teaching assignment
// @Tags TeacherSubjects
// @Accept json
// @Produce json
// @Param payload body service.CreateTeacherSubjectRequest true "Assignment payload"
// @Success 201 {object} response.Envelope
// @Router /teacher-subjects [post]
func (h *TeacherSubjectHandler) Create(c *gin.Context) {
	var req service.CreateTeacherSubjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	assignment, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, assignment)
}

// Delete godoc
// @Summary Delete teaching assignment
// @Tags TeacherSubjects
// @Produce json
// @Param id path int true "Assignment ID"
// @Success 204
// @Router /teacher-subjects/{id} [delete]
func (h *TeacherSubjectHandler) Delete(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
