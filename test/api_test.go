package test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/Khaldybek/habit-tracker/internal"
	"github.com/Khaldybek/habit-tracker/internal/api"
	"github.com/Khaldybek/habit-tracker/internal/auth"
	"github.com/Khaldybek/habit-tracker/internal/config"
	"github.com/Khaldybek/habit-tracker/internal/scheduler"
	"github.com/Khaldybek/habit-tracker/internal/storage"
)

func setupRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dir := t.TempDir()
	logger := internal.NewZapLogger(zap.NewNop().Sugar())
	repos, fs, err := storage.NewFileRepositories(
		filepath.Join(dir, "habits.json"),
		filepath.Join(dir, "checkins.json"),
		filepath.Join(dir, "notifications.json"),
		logger,
	)
	assert.NoError(t, err)
	t.Cleanup(func() { _ = fs.Close() })

	sched := scheduler.New(repos.Habits, repos.Notifications, logger)
	t.Cleanup(sched.Stop)

	app := &api.Application{Log: logger, Repos: repos, Scheduler: sched}
	cfg := &config.Config{Env: "development", AuthToken: "MOCK-TOKEN"}
	provider := auth.NewLocalAuthProvider(cfg.AuthToken, logger)

	r := gin.New()
	api.RegisterRoutes(r, app, auth.AuthMiddleware(provider, cfg))
	return r
}

func doRequest(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	var req *http.Request
	if body != "" {
		req, _ = http.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req, _ = http.NewRequest(method, path, nil)
	}
	req.Header.Set("Authorization", "Bearer MOCK-TOKEN")
	r.ServeHTTP(w, req)
	return w
}

func dataField(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var resp struct {
		Data map[string]interface{} `json:"data"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Data
}

const habitBody = `{"title":"Read","icon":"book","category":"learning","frequency":{"type":"daily"}}`

func createHabit(t *testing.T, r *gin.Engine) string {
	t.Helper()
	w := doRequest(r, "POST", "/api/habits", habitBody)
	assert.Equal(t, 200, w.Code)
	id, _ := dataField(t, w)["id"].(string)
	assert.NotEmpty(t, id)
	return id
}

func TestAuthRequired(t *testing.T) {
	r := setupRouter(t)
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/habits", nil)
	r.ServeHTTP(w, req)
	assert.Equal(t, 401, w.Code)

	w = httptest.NewRecorder()
	req, _ = http.NewRequest("GET", "/api/habits", nil)
	req.Header.Set("Authorization", "Bearer WRONG-TOKEN")
	r.ServeHTTP(w, req)
	assert.Equal(t, 401, w.Code)
}

func TestPostHabit_ValidAndInvalid(t *testing.T) {
	r := setupRouter(t)

	w := doRequest(r, "POST", "/api/habits", habitBody)
	assert.Equal(t, 200, w.Code)
	data := dataField(t, w)
	assert.Equal(t, "Read", data["title"])
	assert.Equal(t, "#4F46E5", data["color"])

	// Missing title
	w = doRequest(r, "POST", "/api/habits", `{"icon":"book","category":"learning","frequency":{"type":"daily"}}`)
	assert.Equal(t, 400, w.Code)

	// Unknown category
	w = doRequest(r, "POST", "/api/habits", `{"title":"X","icon":"x","category":"banana","frequency":{"type":"daily"}}`)
	assert.Equal(t, 400, w.Code)
}

func TestHabitLifecycle(t *testing.T) {
	r := setupRouter(t)
	id := createHabit(t, r)

	w := doRequest(r, "GET", "/api/habits/"+id, "")
	assert.Equal(t, 200, w.Code)

	w = doRequest(r, "PUT", "/api/habits/"+id, `{"title":"Read more","icon":"book","category":"learning","frequency":{"type":"daily"}}`)
	assert.Equal(t, 200, w.Code)
	assert.Equal(t, "Read more", dataField(t, w)["title"])

	w = doRequest(r, "POST", "/api/habits/"+id+"/archive", "")
	assert.Equal(t, 200, w.Code)
	assert.Equal(t, true, dataField(t, w)["archived"])

	w = doRequest(r, "DELETE", "/api/habits/"+id, "")
	assert.Equal(t, 200, w.Code)

	w = doRequest(r, "GET", "/api/habits/"+id, "")
	assert.Equal(t, 404, w.Code)
}

func TestPostCheckIn_DuplicateRejected(t *testing.T) {
	r := setupRouter(t)
	id := createHabit(t, r)

	body := `{"habitId":"` + id + `","date":"2024-03-10","status":true,"mood":4}`
	w := doRequest(r, "POST", "/api/checkins", body)
	assert.Equal(t, 200, w.Code)

	w = doRequest(r, "POST", "/api/checkins", body)
	assert.Equal(t, 400, w.Code)
	assert.Contains(t, w.Body.String(), "already exists")

	// Unknown habit
	w = doRequest(r, "POST", "/api/checkins", `{"habitId":"missing","date":"2024-03-10","status":true}`)
	assert.Equal(t, 404, w.Code)
}

func TestCheckIn_StatusEncodings(t *testing.T) {
	r := setupRouter(t)
	id := createHabit(t, r)

	// Boolean and numeric encodings both accepted.
	w := doRequest(r, "POST", "/api/checkins", `{"habitId":"`+id+`","date":"2024-03-10","status":true}`)
	assert.Equal(t, 200, w.Code)
	w = doRequest(r, "POST", "/api/checkins", `{"habitId":"`+id+`","date":"2024-03-11","status":0.5}`)
	assert.Equal(t, 200, w.Code)
	assert.Equal(t, 0.5, dataField(t, w)["status"])

	// Negative numbers are rejected.
	w = doRequest(r, "POST", "/api/checkins", `{"habitId":"`+id+`","date":"2024-03-12","status":-1}`)
	assert.Equal(t, 400, w.Code)

	// Stats on the habit reflect both check-ins.
	w = doRequest(r, "GET", "/api/habits/"+id, "")
	assert.Equal(t, 200, w.Code)
	stats := dataField(t, w)["stats"].(map[string]interface{})
	assert.Equal(t, 2.0, stats["totalCheckIns"])
	assert.Equal(t, 2.0, stats["completedCheckIns"])
}

func TestGetCheckIns_FilterAndPaginate(t *testing.T) {
	r := setupRouter(t)
	id := createHabit(t, r)

	for _, date := range []string{"2024-03-08", "2024-03-09", "2024-03-10"} {
		w := doRequest(r, "POST", "/api/checkins", `{"habitId":"`+id+`","date":"`+date+`","status":true}`)
		assert.Equal(t, 200, w.Code)
	}

	w := doRequest(r, "GET", "/api/checkins?habitId="+id+"&startDate=2024-03-09", "")
	assert.Equal(t, 200, w.Code)
	var resp struct {
		Data []map[string]interface{} `json:"data"`
		Meta map[string]interface{}   `json:"meta"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Data, 2)
	assert.Equal(t, 2.0, resp.Meta["total"])

	w = doRequest(r, "GET", "/api/checkins?limit=1&page=2", "")
	assert.Equal(t, 200, w.Code)
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Data, 1)
	assert.Equal(t, 3.0, resp.Meta["pages"])
}

func TestHabitAnalytics(t *testing.T) {
	r := setupRouter(t)
	id := createHabit(t, r)

	for _, c := range []struct{ date, status string }{
		{"2024-03-08", "true"},
		{"2024-03-09", "true"},
		{"2024-03-10", "false"},
	} {
		w := doRequest(r, "POST", "/api/checkins", `{"habitId":"`+id+`","date":"`+c.date+`","status":`+c.status+`}`)
		assert.Equal(t, 200, w.Code)
	}

	w := doRequest(r, "GET", "/api/analytics/habits/"+id+"?period=day", "")
	assert.Equal(t, 200, w.Code)
	data := dataField(t, w)
	stats := data["stats"].(map[string]interface{})
	assert.Equal(t, 3.0, stats["total"])
	assert.Equal(t, 2.0, stats["completed"])
	assert.InDelta(t, 66.66, stats["completionRate"].(float64), 0.1)
	assert.Equal(t, 2.0, stats["longestStreak"])

	w = doRequest(r, "GET", "/api/analytics/habits/missing", "")
	assert.Equal(t, 404, w.Code)
}

func TestUserAnalyticsAndExport(t *testing.T) {
	r := setupRouter(t)
	id := createHabit(t, r)
	w := doRequest(r, "POST", "/api/checkins", `{"habitId":"`+id+`","date":"2024-03-10","status":true,"mood":4}`)
	assert.Equal(t, 200, w.Code)

	w = doRequest(r, "GET", "/api/analytics/user?period=month", "")
	assert.Equal(t, 200, w.Code)
	data := dataField(t, w)
	overall := data["overall"].(map[string]interface{})
	assert.Equal(t, 1.0, overall["totalHabits"])
	assert.Equal(t, 1.0, overall["totalCheckIns"])

	w = doRequest(r, "GET", "/api/analytics/export?format=csv", "")
	assert.Equal(t, 200, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "habit-tracker-export.csv")
	assert.Contains(t, w.Body.String(), "Habit ID,Habit Title")
	assert.Contains(t, w.Body.String(), "2024-03-10")

	w = doRequest(r, "GET", "/api/analytics/export", "")
	assert.Equal(t, 200, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "habit-tracker-export.json")
}

func TestNotificationsFlow(t *testing.T) {
	r := setupRouter(t)
	id := createHabit(t, r)
	w := doRequest(r, "POST", "/api/checkins", `{"habitId":"`+id+`","date":"2024-03-10","status":true}`)
	assert.Equal(t, 200, w.Code)

	// The check-in produced a notification.
	w = doRequest(r, "GET", "/api/notifications", "")
	assert.Equal(t, 200, w.Code)
	var resp struct {
		Data []map[string]interface{} `json:"data"`
		Meta map[string]interface{}   `json:"meta"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 1.0, resp.Meta["total"])
	notifID := resp.Data[0]["id"].(string)

	w = doRequest(r, "GET", "/api/notifications/unread-count", "")
	assert.Equal(t, 200, w.Code)
	var countResp struct {
		Meta map[string]interface{} `json:"meta"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &countResp))
	assert.Equal(t, 1.0, countResp.Meta["unread"])

	w = doRequest(r, "PUT", "/api/notifications/"+notifID+"/read", "")
	assert.Equal(t, 200, w.Code)

	w = doRequest(r, "GET", "/api/notifications/unread-count", "")
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &countResp))
	assert.Equal(t, 0.0, countResp.Meta["unread"])

	w = doRequest(r, "DELETE", "/api/notifications/"+notifID, "")
	assert.Equal(t, 200, w.Code)
	w = doRequest(r, "DELETE", "/api/notifications/"+notifID, "")
	assert.Equal(t, 404, w.Code)
}
