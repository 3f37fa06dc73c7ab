package handler

import (
	"context"
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

type assignmentRepoStub struct {
	assignments map[int64]models.TeacherSubject
	requested   []int64
}

func (s *assignmentRepoStub) MapByIDs(ctx context.Context, ids []int64) (map[int64]models.TeacherSubject, error) {
	s.requested = ids
	out := make(map[int64]models.TeacherSubject)
	for _, id := range ids {
		if row, ok := s.assignments[id]; ok {
			out[id] = row
		}
	}
	return out, nil
}

func (s *assignmentRepoStub) FindByID(ctx context.Context, id int64) (*models.TeacherSubject, error) {
	row, ok := s.assignments[id]
	if !ok {
		return nil, nil
	}
	return &row, nil
}

func (s *assignmentRepoStub) FindDetailedByID(ctx context.Context, id int64) (*models.TeacherSubjectDetail, error) {
	return nil, nil
}

func (s *assignmentRepoStub) ListDetailed(ctx context.Context, filter models.TeacherSubjectFilter) ([]models.TeacherSubjectDetail, error) {
	return nil, nil
}

func (s *assignmentRepoStub) ExistsByTriple(ctx context.Context, teacherID, subjectID, kelasID, excludeID int64) (bool, error) {
	return false, nil
}

func (s *assignmentRepoStub) Create(ctx context.Context, row *models.TeacherSubject) error {
	return nil
}

func (s *assignmentRepoStub) Delete(ctx context.Context, id int64) error {
	return nil
}

func buildTeacherSubjectRouter(repo *assignmentRepoStub) *gin.Engine {
	gin.SetMode(gin.TestMode)
	svc := service.NewTeacherSubjectService(repo, nil, nil, nil, nil, nil)
	h := NewTeacherSubjectHandler(svc)

	router := gin.New()
	router.GET("/teacher-subjects", h.List)
	return router
}

func TestTeacherSubjectListBatchResolvesIDs(t *testing.T) {
	repo := &assignmentRepoStub{assignments: map[int64]models.TeacherSubject{
		4: {ID: 4, TeacherID: 3, SubjectID: 7, KelasID: 2},
		9: {ID: 9, TeacherID: 5, SubjectID: 7, KelasID: 2},
	}}
	router := buildTeacherSubjectRouter(repo)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/teacher-subjects?ids=4,9", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Data map[string]models.TeacherSubject `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Data, 2)
	assert.Equal(t, int64(3), body.Data["4"].TeacherID)
	assert.Equal(t, int64(5), body.Data["9"].TeacherID)
	assert.Equal(t, []int64{4, 9}, repo.requested)
}

func TestTeacherSubjectListRejectsMalformedIDs(t *testing.T) {
	repo := &assignmentRepoStub{}
	router := buildTeacherSubjectRouter(repo)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/teacher-subjects?ids=4,abc", nil))
	require.Equal(t, http.StatusBadRequest, w.Code)

	var body struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "VALIDATION_ERROR", body.Error.Code)
	assert.Nil(t, repo.requested)
}
