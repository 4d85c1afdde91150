package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nixie-Tech-LLC/sekine/internal/config"
	"github.com/Nixie-Tech-LLC/sekine/internal/db"
	"github.com/Nixie-Tech-LLC/sekine/internal/mqtt"
	"github.com/Nixie-Tech-LLC/sekine/internal/prayer"
	"github.com/Nixie-Tech-LLC/sekine/internal/redis"
)

func setupRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	RegisterRoutes(r, &config.Config{JWTSecret: "supersecret"}, Services{
		Store:    db.NewMemoryStore(),
		Pairings: redis.NewPairings(nil),
		Devices:  mqtt.NewHub(nil),
		Provider: prayer.StaticProvider{},
	})
	return r
}

func request(r http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHealthz(t *testing.T) {
	w := request(setupRouter(t), http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAdminRoutesNeedToken(t *testing.T) {
	r := setupRouter(t)
	assert.Equal(t, http.StatusUnauthorized, request(r, http.MethodGet, "/api/admin/screens", "", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, request(r, http.MethodGet, "/api/admin/auth/current_profile", "", nil).Code)
}

func TestSignupThenManageScreen(t *testing.T) {
	r := setupRouter(t)

	w := request(r, http.MethodPost, "/api/admin/auth/signup", "", gin.H{"email": "test@example.com", "password": "12345678"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var tok struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &tok))

	w = request(r, http.MethodPost, "/api/admin/screens", tok.Token, gin.H{"name": "Mihrab"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var screen struct {
		ID int `json:"id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &screen))
	assert.NotZero(t, screen.ID)
}

func TestTVQiblahIsPublic(t *testing.T) {
	w := request(setupRouter(t), http.MethodGet, "/api/tv/qiblah?lat=51.5074&lon=-0.1278", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"cardinal":"SE"`)
}
