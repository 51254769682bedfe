package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"gorm.io/gorm"

	"repolar/internal/api"
	"repolar/internal/reproject"
	"repolar/internal/seaice"
	"repolar/internal/source"
	"repolar/pkg/projection"
	"repolar/pkg/raster"
)

var (
	testNorthExtent = projection.Extent{MinX: -3850000, MinY: -5350000, MaxX: 3750000, MaxY: 5850000}
	testSouthExtent = projection.Extent{MinX: -3950000, MinY: -3950000, MaxX: 3950000, MaxY: 4350000}
)

// countingLoader satisfies reproject.Loader and records how often it ran.
type countingLoader struct {
	calls atomic.Int64
	fail  error
}

func (l *countingLoader) Load(ctx context.Context, ref string) (*raster.Image, error) {
	l.calls.Add(1)
	if l.fail != nil {
		return nil, l.fail
	}

	im := raster.New(304, 448)
	for i := 0; i < len(im.Pix); i++ {
		im.Pix[i] = 255
	}
	return im, nil
}

func setupTestServer(t *testing.T, loader reproject.Loader, db *gorm.DB) *httptest.Server {
	t.Helper()

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.Timeout(30 * time.Second))

	apiServer := NewServer(Config{
		Version:      "1.0.0-test",
		URLTemplate:  "http://archive.test/{hemisphere}/{date}.png",
		NorthExtent:  testNorthExtent,
		SouthExtent:  testSouthExtent,
		DefaultWidth: 64,
		MaxWidth:     512,
		Loader:       loader,
		DB:           db,
	})

	r.Route("/api/v1", func(r chi.Router) {
		apiServer.Mount(r)
	})

	return httptest.NewServer(r)
}

func TestHealthEndpoint(t *testing.T) {
	server := setupTestServer(t, &countingLoader{}, nil)
	defer server.Close()

	resp, err := http.Get(server.URL + "/api/v1/health")
	if err != nil {
		t.Fatalf("Failed to make request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected status 200, got %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("Expected Content-Type application/json, got %s", ct)
	}

	var healthResp api.HealthResponse
	if err := json.NewDecoder(resp.Body).Decode(&healthResp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	if healthResp.Status != api.Healthy {
		t.Errorf("Expected status 'healthy', got %s", healthResp.Status)
	}
	if healthResp.Version == nil || *healthResp.Version != "1.0.0-test" {
		t.Errorf("Expected version '1.0.0-test', got %v", healthResp.Version)
	}
	if time.Since(healthResp.Timestamp) > time.Minute {
		t.Errorf("Timestamp seems too old: %v", healthResp.Timestamp)
	}
}

func TestOverlayEndpoint_Success(t *testing.T) {
	loader := &countingLoader{}
	server := setupTestServer(t, loader, nil)
	defer server.Close()

	resp, err := http.Get(server.URL + "/api/v1/overlay?date=2024-09-01")
	if err != nil {
		t.Fatalf("Failed to make request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		t.Fatalf("Expected status 200, got %d. Body: %s", resp.StatusCode, string(body))
	}
	if ct := resp.Header.Get("Content-Type"); ct != "image/png" {
		t.Errorf("Expected Content-Type image/png, got %s", ct)
	}
	if resp.Header.Get("X-Request-ID") == "" {
		t.Error("Expected X-Request-ID header")
	}

	imageData, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("Failed to read response body: %v", err)
	}
	if len(imageData) < 8 || !bytes.Equal(imageData[:8], []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}) {
		t.Error("Response does not appear to be a valid PNG file")
	}

	decoded, err := raster.Decode(imageData)
	if err != nil {
		t.Fatalf("Failed to decode overlay PNG: %v", err)
	}
	if decoded.Width != 64 || decoded.Height != 32 {
		t.Errorf("Overlay is %dx%d, want the configured default 64x32", decoded.Width, decoded.Height)
	}
}

func TestOverlayEndpoint_CacheCoherence(t *testing.T) {
	loader := &countingLoader{}
	server := setupTestServer(t, loader, nil)
	defer server.Close()

	get := func(url string) {
		t.Helper()
		resp, err := http.Get(url)
		if err != nil {
			t.Fatalf("Failed to make request: %v", err)
		}
		defer resp.Body.Close()
		io.Copy(io.Discard, resp.Body)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("Expected status 200, got %d", resp.StatusCode)
		}
	}

	get(server.URL + "/api/v1/overlay?date=2024-09-01")
	get(server.URL + "/api/v1/overlay?date=2024-09-01")
	if got := loader.calls.Load(); got != 1 {
		t.Errorf("Loader ran %d times for two identical requests, want 1", got)
	}

	// A different width is a different fingerprint.
	get(server.URL + "/api/v1/overlay?date=2024-09-01&width=128")
	if got := loader.calls.Load(); got != 2 {
		t.Errorf("Loader ran %d times after a width change, want 2", got)
	}
}

func TestOverlayEndpoint_ValidationErrors(t *testing.T) {
	server := setupTestServer(t, &countingLoader{}, nil)
	defer server.Close()

	testCases := []struct {
		name  string
		query string
	}{
		{name: "missing date", query: ""},
		{name: "malformed date", query: "date=09/01/2024"},
		{name: "unknown hemisphere", query: "date=2024-09-01&hemisphere=east"},
		{name: "width below minimum", query: "date=2024-09-01&width=1"},
		{name: "width above maximum", query: "date=2024-09-01&width=100000"},
		{name: "non-numeric width", query: "date=2024-09-01&width=wide"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			resp, err := http.Get(server.URL + "/api/v1/overlay?" + tc.query)
			if err != nil {
				t.Fatalf("Failed to make request: %v", err)
			}
			defer resp.Body.Close()

			if resp.StatusCode != http.StatusBadRequest {
				body, _ := io.ReadAll(resp.Body)
				t.Fatalf("Expected status 400, got %d. Body: %s", resp.StatusCode, string(body))
			}

			var errorResp api.ErrorResponse
			if err := json.NewDecoder(resp.Body).Decode(&errorResp); err != nil {
				t.Fatalf("Failed to decode error response: %v", err)
			}
			if errorResp.Error != "VALIDATION_ERROR" {
				t.Errorf("Expected error code VALIDATION_ERROR, got %s", errorResp.Error)
			}
		})
	}
}

func TestOverlayEndpoint_SourceUnavailable(t *testing.T) {
	loader := &countingLoader{
		fail: &source.UnavailableError{Ref: "http://archive.test/north/20240901.png", StatusCode: 404},
	}
	server := setupTestServer(t, loader, nil)
	defer server.Close()

	resp, err := http.Get(server.URL + "/api/v1/overlay?date=2024-09-01")
	if err != nil {
		t.Fatalf("Failed to make request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadGateway {
		body, _ := io.ReadAll(resp.Body)
		t.Fatalf("Expected status 502, got %d. Body: %s", resp.StatusCode, string(body))
	}

	var errorResp api.ErrorResponse
	if err := json.NewDecoder(resp.Body).Decode(&errorResp); err != nil {
		t.Fatalf("Failed to decode error response: %v", err)
	}
	if errorResp.Error != "SOURCE_UNAVAILABLE" {
		t.Errorf("Expected error code SOURCE_UNAVAILABLE, got %s", errorResp.Error)
	}
	if errorResp.Details == nil {
		t.Fatal("Expected details with the source ref")
	}
	if status, ok := (*errorResp.Details)["upstream_status"].(float64); !ok || int(status) != 404 {
		t.Errorf("Expected upstream_status 404 in details, got %v", (*errorResp.Details)["upstream_status"])
	}
}

func TestStatisticsEndpoint(t *testing.T) {
	db, err := seaice.Open(":memory:", false)
	if err != nil {
		t.Fatalf("Failed to open in-memory store: %v", err)
	}

	recs := []seaice.Record{
		{Hemisphere: "north", Date: "20240901", IcePixels: 1000, TotalPixels: 136192},
		{Hemisphere: "north", Date: "20240902", IcePixels: 1100, TotalPixels: 136192},
		{Hemisphere: "north", Date: "20240903", IcePixels: 1200, TotalPixels: 136192},
		{Hemisphere: "south", Date: "20240901", IcePixels: 9000, TotalPixels: 104912},
	}
	if err := seaice.Upsert(db, recs); err != nil {
		t.Fatalf("Failed to seed store: %v", err)
	}

	server := setupTestServer(t, &countingLoader{}, db)
	defer server.Close()

	resp, err := http.Get(server.URL + "/api/v1/statistics?hemisphere=north&from=2024-09-01&to=2024-09-02")
	if err != nil {
		t.Fatalf("Failed to make request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		t.Fatalf("Expected status 200, got %d. Body: %s", resp.StatusCode, string(body))
	}

	var statsResp api.StatisticsResponse
	if err := json.NewDecoder(resp.Body).Decode(&statsResp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	if statsResp.Hemisphere != "north" {
		t.Errorf("Expected hemisphere north, got %s", statsResp.Hemisphere)
	}
	if len(statsResp.Records) != 2 {
		t.Fatalf("Expected 2 records in range, got %d", len(statsResp.Records))
	}
	if statsResp.Records[0].Date != "20240901" || statsResp.Records[1].Date != "20240902" {
		t.Errorf("Records out of order: %+v", statsResp.Records)
	}
	if statsResp.Summary == nil {
		t.Fatal("Expected a summary")
	}
	if statsResp.Summary.Days != 2 {
		t.Errorf("Expected summary over 2 days, got %d", statsResp.Summary.Days)
	}
	if statsResp.Summary.MeanIcePixels != 1050 {
		t.Errorf("Expected mean 1050, got %v", statsResp.Summary.MeanIcePixels)
	}
}

func TestStatisticsEndpoint_Disabled(t *testing.T) {
	server := setupTestServer(t, &countingLoader{}, nil)
	defer server.Close()

	resp, err := http.Get(server.URL + "/api/v1/statistics")
	if err != nil {
		t.Fatalf("Failed to make request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("Expected status 503, got %d", resp.StatusCode)
	}

	var errorResp api.ErrorResponse
	if err := json.NewDecoder(resp.Body).Decode(&errorResp); err != nil {
		t.Fatalf("Failed to decode error response: %v", err)
	}
	if errorResp.Error != "STATISTICS_DISABLED" {
		t.Errorf("Expected error code STATISTICS_DISABLED, got %s", errorResp.Error)
	}
}
