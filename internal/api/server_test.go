package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"femwork/internal/app"
	"femwork/internal/checkin"
	"femwork/internal/cycle"
	"femwork/internal/database"
	"femwork/internal/task"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef-test"

func newTestServer(t *testing.T) (*httptest.Server, string) {
	t.Helper()
	db, err := database.NewDB(filepath.Join(t.TempDir(), "api.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	now := time.Date(2024, time.October, 2, 10, 0, 0, 0, time.UTC)
	a := app.NewApp(app.Deps{
		Cycles:   cycle.NewRepository(db.SQL),
		CheckIns: checkin.NewRepository(db.SQL),
		Tasks:    task.NewRepository(db.SQL),
		Location: time.UTC,
		Clock:    func() time.Time { return now },
	})

	srv := httptest.NewServer(NewServer(a, testSecret, nil).Handler())
	t.Cleanup(srv.Close)

	token, err := IssueToken(testSecret, "u1", time.Hour)
	require.NoError(t, err)
	return srv, token
}

func do(t *testing.T, srv *httptest.Server, token, method, path, body string) (*http.Response, map[string]any) {
	t.Helper()
	req, err := http.NewRequest(method, srv.URL+path, strings.NewReader(body))
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]any
	if strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		var raw json.RawMessage
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&raw))
		if len(raw) > 0 && raw[0] == '{' {
			require.NoError(t, json.Unmarshal(raw, &out))
		}
	}
	return resp, out
}

func TestTokens(t *testing.T) {
	token, err := IssueToken(testSecret, "u1", time.Minute)
	require.NoError(t, err)

	user, err := ParseToken(testSecret, token)
	require.NoError(t, err)
	assert.Equal(t, "u1", user)

	_, err = ParseToken("another-secret-of-length", token)
	assert.Error(t, err)

	expired, err := IssueToken(testSecret, "u1", -time.Minute)
	require.NoError(t, err)
	_, err = ParseToken(testSecret, expired)
	assert.Error(t, err)

	_, err = IssueToken(testSecret, "", time.Minute)
	assert.Error(t, err)
}

func TestHealth_NoAuth(t *testing.T) {
	srv, _ := newTestServer(t)
	resp, body := do(t, srv, "", http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", body["status"])
}

func TestAuthRequired(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, _ := do(t, srv, "", http.MethodGet, "/api/v1/today", "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = do(t, srv, "not-a-jwt", http.MethodGet, "/api/v1/today", "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestTodayBeforeCheckIn(t *testing.T) {
	srv, token := newTestServer(t)
	resp, body := do(t, srv, token, http.MethodGet, "/api/v1/today", "")
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, app.ErrNoCheckIn.Error(), body["error"])
}

func TestCheckInAndPlan(t *testing.T) {
	srv, token := newTestServer(t)

	resp, _ := do(t, srv, token, http.MethodPost, "/api/v1/checkins", `{"energy": "sleepy", "brain_state": "calm"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, body := do(t, srv, token, http.MethodPost, "/api/v1/checkins", `{"energy": "high", "brain_state": "focused", "mood": "ready"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, false, body["impossible"])

	resp, body = do(t, srv, token, http.MethodPost, "/api/v1/tasks", `{"name": "Call supplier", "priority": "high", "due_date": "2024-10-02"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	id, _ := body["id"].(string)
	require.NotEmpty(t, id)
	assert.Equal(t, "High", body["priority"])

	resp, body = do(t, srv, token, http.MethodGet, "/api/v1/today", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "2024-10-02", body["date"])
	tasks, _ := body["tasks"].([]any)
	assert.Len(t, tasks, 1)

	resp, body = do(t, srv, token, http.MethodGet, "/api/v1/next", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	next, _ := body["task"].(map[string]any)
	assert.Equal(t, id, next["id"])

	resp, body = do(t, srv, token, http.MethodPost, "/api/v1/tasks/"+id+"/complete", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 1, body["completed_today"])

	resp, body = do(t, srv, token, http.MethodGet, "/api/v1/wins", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 1, body["tasks_completed"])
}

func TestCreateTask_Validation(t *testing.T) {
	srv, token := newTestServer(t)

	tests := map[string]string{
		"blank name":       `{"name": "  "}`,
		"unknown priority": `{"name": "x", "priority": "urgent"}`,
		"bad due date":     `{"name": "x", "due_date": "02/10/2024"}`,
		"unknown field":    `{"name": "x", "colour": "red"}`,
		"not json":         `name=x`,
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			resp, _ := do(t, srv, token, http.MethodPost, "/api/v1/tasks", body)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		})
	}
}

func TestCompleteTask_NotFound(t *testing.T) {
	srv, token := newTestServer(t)
	resp, _ := do(t, srv, token, http.MethodPost, "/api/v1/tasks/does-not-exist/complete", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestListTasks_Empty(t *testing.T) {
	srv, token := newTestServer(t)
	req, err := http.NewRequest(http.MethodGet, srv.URL+"/api/v1/tasks", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var tasks []task.Task
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&tasks))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, tasks)
	assert.NotNil(t, tasks)
}
