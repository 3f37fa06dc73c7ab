package handler

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/siakad-go/siakad-api/internal/models"
	"github.com/siakad-go/siakad-api/internal/service"
)

type scheduleRepoStub struct {
	candidates []models.ScheduleDetail
}

func (s *scheduleRepoStub) ListDetailed(ctx context.Context, filter models.ScheduleFilter) ([]models.ScheduleDetail, error) {
	return nil, nil
}

func (s *scheduleRepoStub) FindByID(ctx context.Context, id int64) (*models.ScheduleEntry, error) {
	return nil, sql.ErrNoRows
}

func (s *scheduleRepoStub) FindDetailedByID(ctx context.Context, id int64) (*models.ScheduleDetail, error) {
	return &models.ScheduleDetail{ScheduleEntry: models.ScheduleEntry{ID: id}}, nil
}

func (s *scheduleRepoStub) FindCandidates(ctx context.Context, hari, column string, value, excludeID int64) ([]models.ScheduleDetail, error) {
	return s.candidates, nil
}

func (s *scheduleRepoStub) Create(ctx context.Context, entry *models.ScheduleEntry) error {
	entry.ID = 1
	return nil
}

func (s *scheduleRepoStub) Update(ctx context.Context, entry *models.ScheduleEntry) error {
	return nil
}

func (s *scheduleRepoStub) Delete(ctx context.Context, id int64) error {
	return nil
}

type relationReaderStub struct{}

func (relationReaderStub) MapByIDs(ctx context.Context, ids []int64) (map[int64]models.TeacherSubject, error) {
	out := make(map[int64]models.TeacherSubject, len(ids))
	for _, id := range ids {
		out[id] = models.TeacherSubject{ID: id, TeacherID: 3, SubjectID: 7, KelasID: 2}
	}
	return out, nil
}

type semesterReaderStub struct{}

func (semesterReaderStub) FindByID(ctx context.Context, id int64) (*models.Semester, error) {
	return &models.Semester{ID: id, TahunAjaran: "2024/2025", Semester: 1}, nil
}

func buildScheduleRouter(repo *scheduleRepoStub) *gin.Engine {
	gin.SetMode(gin.TestMode)
	svc := service.NewScheduleService(repo, relationReaderStub{}, semesterReaderStub{}, nil, nil, nil)
	h := NewScheduleHandler(svc)

	router := gin.New()
	router.POST("/schedules", h.Create)
	return router
}

func TestScheduleCreateEndpointConflictEnvelope(t *testing.T) {
	repo := &scheduleRepoStub{candidates: []models.ScheduleDetail{
		{ScheduleEntry: models.ScheduleEntry{ID: 9, Hari: "Senin", JamMulai: "07:30", JamSelesai: "09:00"}},
	}}
	router := buildScheduleRouter(repo)

	payload := `{"teacherSubjectId":10,"semesterId":5,"hari":"Senin","jamMulai":"07:00","jamSelesai":"08:30"}`
	req, _ := http.NewRequest(http.MethodPost, "/schedules", bytes.NewBufferString(payload))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	require.Equal(t, http.StatusConflict, resp.Code)
	var body struct {
		Error struct {
			Code    string `json:"code"`
			Details []struct {
				ID            int64  `json:"id"`
				ConflictScope string `json:"conflictScope"`
			} `json:"details"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	assert.Equal(t, "SCHEDULE_CONFLICT", body.Error.Code)
	require.Len(t, body.Error.Details, 1)
	assert.Equal(t, int64(9), body.Error.Details[0].ID)
	assert.Equal(t, "kelas", body.Error.Details[0].ConflictScope)
}

func TestScheduleCreateEndpointAcceptsNumericStrings(t *testing.T) {
	router := buildScheduleRouter(&scheduleRepoStub{})

	payload := `{"teacherSubjectId":"10","semesterId":"5","hari":"Selasa","jamMulai":"10:00","jamSelesai":"11:30"}`
	req, _ := http.NewRequest(http.MethodPost, "/schedules", bytes.NewBufferString(payload))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	require.Equal(t, http.StatusCreated, resp.Code)
}
