package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/siakad-go/siakad-api/internal/service"
	appErrors "github.com/siakad-go/siakad-api/pkg/errors"
	"github.com/siakad-go/siakad-api/pkg/response"
)

// ExportHandler serves downloadable exports.
type ExportHandler struct {
	service *service.ExportService
}

// NewExportHandler constructs handler.
func NewExportHandler(svc *service.ExportService) *ExportHandler {
	return &ExportHandler{service: svc}
}

// Timetable godoc
// @Summary Download a class timetable
// @Tags Export
// @Produce octet-stream
// @Param kelasId query int true "Class ID"
// @Param format query string false "csv or pdf, defaults to csv"
// @Success 200 {file} binary
// @Failure 400 {object} response.Envelope
// @Router /export/timetable [get]
func (h *ExportHandler) Timetable(c *gin.Context) {
	kelasID := queryInt64(c, "kelasId")
	if kelasID == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "kelasId wajib diisi"))
		return
	}
	format := c.DefaultQuery("format", service.ExportFormatCSV)

	result, err := h.service.Timetable(c.Request.Context(), *kelasID, format)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.FileName))
	c.Data(http.StatusOK, result.ContentType, result.Data)
}
