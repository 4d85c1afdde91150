package endpoints

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nixie-Tech-LLC/sekine/internal/db"
	"github.com/Nixie-Tech-LLC/sekine/internal/http/api"
	"github.com/Nixie-Tech-LLC/sekine/internal/http/api/tv/packets"
	"github.com/Nixie-Tech-LLC/sekine/internal/prayer"
	"github.com/Nixie-Tech-LLC/sekine/internal/qiblah"
	"github.com/Nixie-Tech-LLC/sekine/internal/redis"
)

type codeLog map[string]string

func (c codeLog) Register(_ context.Context, code, deviceID string) error {
	c[code] = deviceID
	return nil
}

type trackLog []string

func (t *trackLog) Track(deviceID string) { *t = append(*t, deviceID) }

type failingProvider struct{}

func (failingProvider) Timings(context.Context, qiblah.Coordinate, time.Time) ([]prayer.Entry, error) {
	return nil, errors.New("upstream down")
}

type env struct {
	router  *gin.Engine
	store   *db.MemoryStore
	codes   codeLog
	tracked *trackLog
	owner   int
}

// clock is 13:00 in Istanbul (UTC+3).
var clock = time.Date(2025, time.August, 5, 10, 0, 0, 0, time.UTC)

func newEnv(t *testing.T, provider prayer.Provider, now time.Time) *env {
	t.Helper()
	gin.SetMode(gin.TestMode)
	store := db.NewMemoryStore()
	owner, err := store.CreateUser("owner@example.com", "x", nil)
	require.NoError(t, err)

	e := &env{router: gin.New(), store: store, codes: codeLog{}, tracked: &trackLog{}, owner: owner}
	api.MountGroup(e.router, api.GroupConfig{Prefix: "/api/tv"},
		PairingModule(store, e.codes, e.tracked),
		DevotionalModule(store, provider, func() time.Time { return now }),
	)
	return e
}

// pairedScreen creates a paired screen, optionally placed in Istanbul.
func (e *env) pairedScreen(t *testing.T, device string, located bool) {
	t.Helper()
	city := "Istanbul"
	s, err := e.store.CreateScreen("Hall", &city, e.owner)
	require.NoError(t, err)
	require.NoError(t, e.store.PairScreen(s.ID, device))
	if located {
		tz := "Europe/Istanbul"
		require.NoError(t, e.store.SetScreenCoordinates(s.ID, 41.0082, 28.9784, &tz))
	}
}

func (e *env) get(path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func (e *env) post(path string, body any) *httptest.ResponseRecorder {
	b, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func TestQiblahForCoordinate(t *testing.T) {
	e := newEnv(t, prayer.StaticProvider{}, clock)

	w := e.get("/api/tv/qiblah?lat=51.5074&lon=-0.1278")
	require.Equal(t, http.StatusOK, w.Code)
	var resp packets.QiblahResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Configured)
	require.NotNil(t, resp.Degrees)
	assert.InDelta(t, 119, *resp.Degrees, 1)
	assert.Equal(t, qiblah.SouthEast, resp.Cardinal)
}

func TestQiblahForCoordinateUnset(t *testing.T) {
	e := newEnv(t, prayer.StaticProvider{}, clock)

	w := e.get("/api/tv/qiblah?lat=0&lon=0")
	require.Equal(t, http.StatusOK, w.Code)
	var resp packets.QiblahResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Configured)
	assert.Nil(t, resp.Degrees)
}

func TestQiblahForCoordinateBadInput(t *testing.T) {
	e := newEnv(t, prayer.StaticProvider{}, clock)
	for _, q := range []string{"", "?lat=abc&lon=1", "?lat=1", "?lat=91&lon=0", "?lat=0&lon=181"} {
		assert.Equal(t, http.StatusBadRequest, e.get("/api/tv/qiblah"+q).Code, q)
	}
}

func TestQiblahForScreen(t *testing.T) {
	e := newEnv(t, prayer.StaticProvider{}, clock)
	e.pairedScreen(t, "tv-1", true)
	e.pairedScreen(t, "tv-2", false)

	var resp packets.QiblahResponse
	w := e.get("/api/tv/screens/tv-1/qiblah")
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Configured)
	assert.Equal(t, qiblah.SouthEast, resp.Cardinal)

	resp = packets.QiblahResponse{}
	w = e.get("/api/tv/screens/tv-2/qiblah")
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Configured)

	assert.Equal(t, http.StatusNotFound, e.get("/api/tv/screens/nope/qiblah").Code)
}

func TestPrayersForScreen(t *testing.T) {
	e := newEnv(t, prayer.StaticProvider{}, clock)
	e.pairedScreen(t, "tv-1", true)

	w := e.get("/api/tv/screens/tv-1/prayers")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp packets.PrayersResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	assert.True(t, resp.Configured)
	assert.Equal(t, "AUGUST 5, 2025", resp.Date)
	assert.Equal(t, "13:00", resp.Now)
	assert.Equal(t, "Europe/Istanbul", resp.Timezone)
	require.Len(t, resp.Prayers, 6)

	asr := resp.Prayers[3]
	assert.Equal(t, prayer.Asr, asr.Label)
	assert.True(t, asr.IsNext)
	assert.Equal(t, "15:30", asr.Time)
	assert.Equal(t, "2h 30m", asr.Countdown)

	assert.True(t, resp.Prayers[2].IsPassed)
	assert.Empty(t, resp.Prayers[2].Countdown)
	assert.False(t, resp.Prayers[4].IsPassed)
	assert.Nil(t, resp.Tomorrow)
}

func TestPrayersAfterIshaLooksAtTomorrow(t *testing.T) {
	late := time.Date(2025, time.August, 5, 18, 0, 0, 0, time.UTC) // 21:00 local
	e := newEnv(t, prayer.StaticProvider{}, late)
	e.pairedScreen(t, "tv-1", true)

	w := e.get("/api/tv/screens/tv-1/prayers")
	require.Equal(t, http.StatusOK, w.Code)
	var resp packets.PrayersResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	for _, p := range resp.Prayers {
		assert.True(t, p.IsPassed, p.Label)
		assert.False(t, p.IsNext, p.Label)
	}
	require.NotNil(t, resp.Tomorrow)
	assert.Equal(t, prayer.Fajr, resp.Tomorrow.Label)
	assert.Equal(t, "8h 23m", resp.Tomorrow.Countdown)
}

func TestPrayersUnconfigured(t *testing.T) {
	e := newEnv(t, prayer.StaticProvider{}, clock)
	e.pairedScreen(t, "tv-1", false)

	w := e.get("/api/tv/screens/tv-1/prayers")
	require.Equal(t, http.StatusOK, w.Code)
	var resp packets.PrayersResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Configured)
	assert.Empty(t, resp.Prayers)
}

func TestPrayersProviderFailure(t *testing.T) {
	e := newEnv(t, failingProvider{}, clock)
	e.pairedScreen(t, "tv-1", true)
	assert.Equal(t, http.StatusBadGateway, e.get("/api/tv/screens/tv-1/prayers").Code)
}

func TestRegisterPairingCode(t *testing.T) {
	e := newEnv(t, prayer.StaticProvider{}, clock)

	w := e.post("/api/tv/register", gin.H{"code": "K7Q2", "device_id": "tv-new"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp packets.RegisterPairingCodeResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "tv-new", resp.DeviceID)
	assert.Equal(t, int(redis.PairingTTL.Seconds()), resp.ExpiresIn)
	assert.Equal(t, "tv-new", e.codes["K7Q2"])
}

func TestRegisterPairingCodeAlreadyPaired(t *testing.T) {
	e := newEnv(t, prayer.StaticProvider{}, clock)
	e.pairedScreen(t, "tv-1", false)

	w := e.post("/api/tv/register", gin.H{"code": "K7Q2", "device_id": "tv-1"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, e.codes)
}

func TestConnect(t *testing.T) {
	e := newEnv(t, prayer.StaticProvider{}, clock)
	e.pairedScreen(t, "tv-1", false)

	w := e.post("/api/tv/connect", gin.H{"device_id": "tv-1"})
	require.Equal(t, http.StatusOK, w.Code)
	var resp packets.ConnectResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "tv/tv-1/commands", resp.Topic)
	assert.Equal(t, []string{"tv-1"}, []string(*e.tracked))

	w = e.post("/api/tv/connect", gin.H{"device_id": "stranger"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
