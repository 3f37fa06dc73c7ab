package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/siakad-go/siakad-api/internal/models"
	"github.com/siakad-go/siakad-api/internal/service"
	appErrors "github.com/siakad-go/siakad-api/pkg/errors"
	"github.com/siakad-go/siakad-api/pkg/response"
)

// GradeHandler manages grade endpoints.
type GradeHandler struct {
	service  *service.GradeService
	teachers *service.TeacherService
}

// NewGradeHandler constructs handler. The teacher service maps the caller's
// account to their teacher row for walikelas verification.
func NewGradeHandler(svc *service.GradeService, teachers *service.TeacherService) *GradeHandler {
	return &GradeHandler{service: svc, teachers: teachers}
}

// List godoc
// @Summary List grades
// @Tags Grades
// @Produce json
// @Param studentId query int false "Filter by student"
// @Param teacherId query int false "Filter by teacher"
// @Param subjectId query int false "Filter by subject"
// @Param semesterId query int false "Filter by semester"
// @Success 200 {object} response.Envelope
// @Router /grades [get]
func (h *GradeHandler) List(c *gin.Context) {
	filter := models.GradeFilter{
		StudentID:  queryInt64(c, "studentId"),
		TeacherID:  queryInt64(c, "teacherId"),
		SubjectID:  queryInt64(c, "subjectId"),
		SemesterID: queryInt64(c, "semesterId"),
	}
	grades, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, grades, nil)
}

// Create godoc
// @Summary Create grade
// @Tags Grades
// @Accept json
// @Produce json
// @Param payload body service.CreateGradeRequest true "Grade payload"
// @Success 201 {object} response.Envelope
// @Router /grades [post]
func (h *GradeHandler) Create(c *gin.Context) {
	var req service.CreateGradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	grade, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, grade)
}

// Update godoc
// @Summary Update grade
// @Tags Grades
// @Accept json
// @Produce json
// @Param id path int true "Grade ID"
// @Param payload body service.UpdateGradeRequest true "Grade payload"
// @Success 200 {object} response.Envelope
// @Router /grades/{id} [put]
func (h *GradeHandler) Update(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var req service.UpdateGradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	grade, err := h.service.Update(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, grade, nil)
}

// Verify godoc
// @Summary Verify grade as walikelas
// @Tags Grades
// @Produce json
// @Param id path int true "Grade ID"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /grades/{id}/verify [post]
func (h *GradeHandler) Verify(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	teacher, err := h.teachers.FindByUserID(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrForbidden, "akun tidak terhubung dengan data guru"))
		return
	}
	grade, err := h.service.Verify(c.Request.Context(), id, teacher.ID, claims.Nama)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, grade, nil)
}

// Delete godoc
// @Summary Delete grade
// @Tags Grades
// @Produce json
// @Param id path int true "Grade ID"
// @Success 204
// @Router /grades/{id} [delete]
func (h *GradeHandler) Delete(c *gin.Context) {
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
