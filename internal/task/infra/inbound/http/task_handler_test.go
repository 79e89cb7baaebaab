package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/davicafu/tasksense/internal/task/application"
	taskDomain "github.com/davicafu/tasksense/internal/task/domain"
	"github.com/davicafu/tasksense/tests/mocks"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func setupRouter(t *testing.T) (*gin.Engine, *mocks.InMemoryTaskRepo) {
	t.Helper()
	repo := mocks.NewInMemoryTaskRepo()
	service := application.NewTaskService(repo, nil, nil, time.Second, zap.NewNop())
	r := gin.New()
	RegisterTaskRoutes(r, NewTaskHandler(service))
	return r, repo
}

func do(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCreateTask_Created(t *testing.T) {
	r, repo := setupRouter(t)

	w := do(r, http.MethodPost, "/tasks",
		`{"name":"Gym","start":"2025-03-10T09:00:00","end":"2025-03-10T11:00:00","type":"HEALTH","userId":7}`)
	require.Equal(t, http.StatusCreated, w.Code)

	var resp struct {
		Data taskDomain.Task `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotZero(t, resp.Data.ID)
	assert.Equal(t, "Gym", resp.Data.Name)
	require.NotNil(t, resp.Data.UserID)
	assert.Equal(t, int64(7), *resp.Data.UserID)
	assert.Len(t, repo.Tasks, 1)
}

func TestCreateTask_BadBody(t *testing.T) {
	r, _ := setupRouter(t)

	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodPost, "/tasks", `{"description":"no name"}`).Code)
	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodPost, "/tasks", `{"name":"x","start":"10/03/2025"}`).Code)
}

func TestCreateTask_EndBeforeStart(t *testing.T) {
	r, repo := setupRouter(t)

	w := do(r, http.MethodPost, "/tasks", `{"name":"x","start":"2025-03-10T11:00:00","end":"2025-03-10T09:00:00"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Empty(t, repo.Tasks)
}

func TestGetTask(t *testing.T) {
	r, _ := setupRouter(t)
	require.Equal(t, http.StatusCreated, do(r, http.MethodPost, "/tasks", `{"name":"Read"}`).Code)

	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/tasks/1", "").Code)
	assert.Equal(t, http.StatusNotFound, do(r, http.MethodGet, "/tasks/42", "").Code)
	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodGet, "/tasks/abc", "").Code)
}

func TestListUserTasks(t *testing.T) {
	r, _ := setupRouter(t)
	for _, body := range []string{`{"name":"a","userId":1}`, `{"name":"b","userId":1}`, `{"name":"c","userId":2}`} {
		require.Equal(t, http.StatusCreated, do(r, http.MethodPost, "/tasks", body).Code)
	}

	w := do(r, http.MethodGet, "/users/1/tasks", "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data []taskDomain.Task `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Data, 2)
}
