package endpoints

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nixie-Tech-LLC/sekine/internal/db"
	"github.com/Nixie-Tech-LLC/sekine/internal/http/api"
	"github.com/Nixie-Tech-LLC/sekine/internal/http/api/admin/auth/packets"
)

const secret = "test-secret"

func newRouter(store db.Store) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	api.MountGroup(r, api.GroupConfig{Prefix: "/api/admin"}, AuthPublicModule(secret, store))
	api.MountGroup(r, api.GroupConfig{
		Prefix:    "/api/admin",
		Auth:      true,
		SecretKey: secret,
		Users:     store,
	}, AuthSessionModule(secret, store))
	return r
}

func send(r http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	b, _ := json.Marshal(body)
	req := httptest.NewRequest(method, path, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func tokenFrom(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp packets.TokenResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func TestSignupLoginProfile(t *testing.T) {
	r := newRouter(db.NewMemoryStore())

	tokenFrom(t, send(r, http.MethodPost, "/api/admin/auth/signup", "", gin.H{
		"email": "imam@example.com", "password": "testpassword",
	}))
	token := tokenFrom(t, send(r, http.MethodPost, "/api/admin/auth/login", "", gin.H{
		"email": "imam@example.com", "password": "testpassword",
	}))

	w := send(r, http.MethodGet, "/api/admin/auth/current_profile", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var p packets.ProfileResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &p))
	assert.Equal(t, "imam@example.com", p.Email)
}

func TestSignupDuplicateEmail(t *testing.T) {
	r := newRouter(db.NewMemoryStore())
	body := gin.H{"email": "imam@example.com", "password": "testpassword"}
	tokenFrom(t, send(r, http.MethodPost, "/api/admin/auth/signup", "", body))

	w := send(r, http.MethodPost, "/api/admin/auth/signup", "", body)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestLoginWrongPassword(t *testing.T) {
	r := newRouter(db.NewMemoryStore())
	tokenFrom(t, send(r, http.MethodPost, "/api/admin/auth/signup", "", gin.H{
		"email": "imam@example.com", "password": "testpassword",
	}))

	w := send(r, http.MethodPost, "/api/admin/auth/login", "", gin.H{
		"email": "imam@example.com", "password": "nope-nope",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = send(r, http.MethodPost, "/api/admin/auth/login", "", gin.H{
		"email": "nobody@example.com", "password": "testpassword",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestSignupValidation(t *testing.T) {
	r := newRouter(db.NewMemoryStore())
	w := send(r, http.MethodPost, "/api/admin/auth/signup", "", gin.H{"email": "not-an-email", "password": "short"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateProfile(t *testing.T) {
	r := newRouter(db.NewMemoryStore())
	token := tokenFrom(t, send(r, http.MethodPost, "/api/admin/auth/signup", "", gin.H{
		"email": "imam@example.com", "password": "testpassword",
	}))
	tokenFrom(t, send(r, http.MethodPost, "/api/admin/auth/signup", "", gin.H{
		"email": "muezzin@example.com", "password": "testpassword",
	}))

	w := send(r, http.MethodPut, "/api/admin/auth/current_profile", token, gin.H{"email": "muezzin@example.com"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = send(r, http.MethodPut, "/api/admin/auth/current_profile", token, gin.H{"email": "hoca@example.com", "name": "Hoca"})
	require.Equal(t, http.StatusOK, w.Code)
	var p packets.ProfileResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &p))
	assert.Equal(t, "hoca@example.com", p.Email)
	require.NotNil(t, p.Name)
	assert.Equal(t, "Hoca", *p.Name)
}
