package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"TodoAPI/internal/app"
	"TodoAPI/internal/auth"
	"TodoAPI/internal/config"
	"TodoAPI/internal/repo"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type testAPI struct {
	router *gin.Engine
	issuer *auth.Issuer
}

// newTestAPI serves the production route table over in-memory repos, without the Redis cache.
func newTestAPI(t *testing.T) testAPI {
	t.Helper()
	gin.SetMode(gin.TestMode)

	var cfg config.Config
	cfg.App.Env = config.EnvDev
	cfg.Auth.JWTSecret = "test-secret"
	cfg.Auth.BcryptCost = bcrypt.MinCost
	require.NoError(t, cfg.Auth.TokenTTL.SetValue("1m"))

	r := gin.New()
	app.Setup(r, cfg, zerolog.Nop(), app.Deps{
		Users: repo.NewMemoryUserRepo(),
		Todos: repo.NewMemoryTodoRepo(),
	})
	return testAPI{router: r, issuer: auth.NewIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL.Duration())}
}

func (a testAPI) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v))
	return v
}

// register creates a user and returns its id.
func (a testAPI) register(t *testing.T, name, email string) string {
	t.Helper()
	w := a.do(t, http.MethodPost, "/users", "", gin.H{"name": name, "email": email, "password": "pw"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decode[map[string]any](t, w)["id"].(string)
}

func (a testAPI) login(t *testing.T, email string) string {
	t.Helper()
	w := a.do(t, http.MethodPost, "/login", "", gin.H{"email": email, "password": "pw"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decode[map[string]string](t, w)["access_token"]
}

func TestUsers_Register(t *testing.T) {
	a := newTestAPI(t)

	w := a.do(t, http.MethodPost, "/users", "", gin.H{"name": "Ann", "email": "ann@example.com", "password": "pw"})
	require.Equal(t, http.StatusCreated, w.Code)
	body := decode[map[string]any](t, w)
	assert.Equal(t, "Ann", body["name"])
	assert.NotContains(t, body, "password")
	assert.NotContains(t, body, "passwordHash")
	assert.Equal(t, []any{}, body["todos"])

	w = a.do(t, http.MethodPost, "/users", "", gin.H{"name": "Other", "email": "ann@example.com", "password": "x"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = a.do(t, http.MethodPost, "/users", "", gin.H{"name": "NoPass", "email": "np@example.com"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLogin(t *testing.T) {
	a := newTestAPI(t)
	id := a.register(t, "Ann", "ann@example.com")

	token := a.login(t, "ann@example.com")
	claims, err := a.issuer.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, id, claims.ID)
	assert.Equal(t, "ann@example.com", claims.Email)

	w := a.do(t, http.MethodPost, "/login", "", gin.H{"email": "ann@example.com", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	w = a.do(t, http.MethodPost, "/login", "", gin.H{"email": "nobody@example.com", "password": "pw"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	w = a.do(t, http.MethodPost, "/login", "", gin.H{"email": "ann@example.com"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	a := newTestAPI(t)
	id := uuid.NewString()
	routes := []struct{ method, path string }{
		{http.MethodGet, "/users"},
		{http.MethodGet, "/users/" + id},
		{http.MethodDelete, "/users/" + id},
		{http.MethodPost, "/todos"},
		{http.MethodGet, "/todos"},
		{http.MethodGet, "/todos/" + id},
		{http.MethodPatch, "/todos/" + id},
		{http.MethodDelete, "/todos/" + id},
	}
	for _, rt := range routes {
		w := a.do(t, rt.method, rt.path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code, rt.method+" "+rt.path)

		w = a.do(t, rt.method, rt.path, "not-a-jwt", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code, rt.method+" "+rt.path)
	}

	// registration and login stay public
	w := a.do(t, http.MethodPost, "/users", "", gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = a.do(t, http.MethodPost, "/login", "", gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUsers_GetAndDelete(t *testing.T) {
	a := newTestAPI(t)
	id := a.register(t, "Ann", "ann@example.com")
	token := a.login(t, "ann@example.com")

	w := a.do(t, http.MethodGet, "/users/"+id, token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, decode[map[string]any](t, w), "password")

	w = a.do(t, http.MethodGet, "/users", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]map[string]any](t, w), 1)

	w = a.do(t, http.MethodGet, "/users/not-an-id", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = a.do(t, http.MethodGet, "/users/"+uuid.NewString(), token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = a.do(t, http.MethodDelete, "/users/"+id, token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	msg := decode[map[string]any](t, w)
	assert.Equal(t, "User Deleted", msg["message"])
	assert.EqualValues(t, 200, msg["statusCode"])

	w = a.do(t, http.MethodDelete, "/users/"+id, token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestTodos_CreateValidation(t *testing.T) {
	a := newTestAPI(t)
	a.register(t, "Ann", "ann@example.com")
	token := a.login(t, "ann@example.com")

	tests := map[string]gin.H{
		"missing title": {"startDate": "2024-01-01", "endDate": "2024-01-02"},
		"missing dates": {"title": "x"},
		"blank start":   {"title": "x", "startDate": "", "endDate": "2024-01-02"},
		"end before":    {"title": "x", "startDate": "2024-01-02", "endDate": "2024-01-01"},
		"bad status":    {"title": "x", "startDate": "2024-01-01", "endDate": "2024-01-02", "status": "LATER"},
		"bad date":      {"title": "x", "startDate": "yesterday", "endDate": "2024-01-02"},
		"bad assignee":  {"title": "x", "startDate": "2024-01-01", "endDate": "2024-01-02", "assignedTo": []string{"nope"}},
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			w := a.do(t, http.MethodPost, "/todos", token, body)
			assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
		})
	}
}

func TestTodos_Lifecycle(t *testing.T) {
	a := newTestAPI(t)
	ann := a.register(t, "Ann", "ann@example.com")
	bob := a.register(t, "Bob", "bob@example.com")
	token := a.login(t, "ann@example.com")

	w := a.do(t, http.MethodPost, "/todos", token, gin.H{
		"title":      "write report",
		"desc":       "quarterly",
		"startDate":  "2024-01-01",
		"endDate":    "2024-01-05T10:00:00Z",
		"assignedTo": []string{ann, bob},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[map[string]any](t, w)
	todoID := created["id"].(string)
	assert.Equal(t, "TODO", created["status"])
	assert.Equal(t, []any{ann, bob}, created["assignedTo"])

	// same title is allowed
	w = a.do(t, http.MethodPost, "/todos", token, gin.H{"title": "write report", "startDate": "2024-01-01", "endDate": "2024-01-02"})
	require.Equal(t, http.StatusCreated, w.Code)

	w = a.do(t, http.MethodGet, "/todos/"+todoID, token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	got := decode[map[string]any](t, w)
	assignees := got["assignedTo"].([]any)
	require.Len(t, assignees, 2)
	assert.Equal(t, "Ann", assignees[0].(map[string]any)["name"])
	assert.NotContains(t, assignees[0].(map[string]any), "password")

	w = a.do(t, http.MethodGet, "/todos", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]map[string]any](t, w), 2)

	w = a.do(t, http.MethodPatch, "/todos/"+todoID, token, gin.H{"startDate": "2024-01-02", "endDate": "2024-01-01"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = a.do(t, http.MethodPatch, "/todos/"+todoID, token, gin.H{"startDate": "2024-01-01", "endDate": "2024-01-02", "status": "IN_PROGRESS"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "IN_PROGRESS", decode[map[string]any](t, w)["status"])

	w = a.do(t, http.MethodPatch, "/todos/"+uuid.NewString(), token, gin.H{"title": "y"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = a.do(t, http.MethodDelete, "/todos/"+todoID, token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "write report", decode[map[string]any](t, w)["title"])

	w = a.do(t, http.MethodGet, "/todos/"+todoID, token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	for _, id := range []string{ann, bob} {
		w = a.do(t, http.MethodGet, "/users/"+id, token, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, []any{}, decode[map[string]any](t, w)["todos"])
	}
}
