// Package aladhan fetches daily prayer timings from the api.aladhan.com service.
package aladhan

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/sekine/internal/prayer"
	"github.com/Nixie-Tech-LLC/sekine/internal/qiblah"
)

const DefaultBaseURL = "https://api.aladhan.com/v1"

type Client struct {
	baseURL    string
	method     int
	httpClient *http.Client
}

// New returns a client using the given calculation method (2 = ISNA).
func New(baseURL string, method int) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		method:  method,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

type timingsResponse struct {
	Code int `json:"code"`
	Data struct {
		Timings map[string]string `json:"timings"`
	} `json:"data"`
}

var _ prayer.Provider = (*Client)(nil)

// Timings implements prayer.Provider.
func (c *Client) Timings(ctx context.Context, at qiblah.Coordinate, day time.Time) ([]prayer.Entry, error) {
	q := url.Values{}
	q.Set("latitude", strconv.FormatFloat(at.Latitude, 'f', -1, 64))
	q.Set("longitude", strconv.FormatFloat(at.Longitude, 'f', -1, 64))
	q.Set("method", strconv.Itoa(c.method))
	u := fmt.Sprintf("%s/timings/%s?%s", c.baseURL, day.Format("02-01-2006"), q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("aladhan request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("aladhan returned status %d", resp.StatusCode)
	}

	var body timingsResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode aladhan response: %w", err)
	}

	entries := make([]prayer.Entry, 0, len(prayer.Order))
	for _, name := range prayer.Order {
		raw, ok := body.Data.Timings[name]
		if !ok {
			return nil, fmt.Errorf("aladhan response missing %s", name)
		}
		h, m, err := parseClock(raw)
		if err != nil {
			return nil, fmt.Errorf("aladhan %s: %w", name, err)
		}
		entries = append(entries, prayer.Entry{Label: name, Hour: h, Minute: m})
	}

	log.Debug().
		Float64("lat", at.Latitude).
		Float64("lon", at.Longitude).
		Str("date", day.Format("2006-01-02")).
		Msg("fetched prayer timings")
	return entries, nil
}

// parseClock reads "17:30" or "17:30 (CEST)".
func parseClock(s string) (int, int, error) {
	if i := strings.IndexByte(s, ' '); i >= 0 {
		s = s[:i]
	}
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid time %q", s)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return 0, 0, fmt.Errorf("invalid hour in %q", s)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 0, 0, fmt.Errorf("invalid minute in %q", s)
	}
	return h, m, nil
}
