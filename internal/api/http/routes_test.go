package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/gridwatch/internal/battery"
	"github.com/i474232898/gridwatch/internal/grid"
	"github.com/i474232898/gridwatch/internal/grid/providers"
	"github.com/i474232898/gridwatch/internal/store"
)

type testEnv struct {
	app   *fiber.App
	store *store.SQLiteStore
}

// setupTestApp wires the full stack against a fake upstream served by handler.
func setupTestApp(t *testing.T, handler http.HandlerFunc) *testEnv {
	t.Helper()

	upstream := httptest.NewServer(handler)
	t.Cleanup(upstream.Close)

	db, err := store.Open(filepath.Join(t.TempDir(), "api.db"), nil)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	eia := providers.NewEIAProvider(upstream.Client(), providers.EIAConfig{
		BaseURL:    upstream.URL,
		APIKey:     "test-key",
		Respondent: "CISO",
	}, nil)

	app := NewApp([]string{"http://localhost:3000"})
	RegisterRoutes(app, grid.NewService(db, eia, nil), battery.NewService(db, nil), db, nil)

	return &testEnv{app: app, store: db}
}

func doJSON(t *testing.T, app *fiber.App, method, path string, body any, out any) int {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer resp.Body.Close()

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode response: %v", err)
		}
	}
	return resp.StatusCode
}

const upstreamPayload = `{"response": {"data": [
	{"period": "2024-06-01T05", "type": "D", "value": 150000, "value-units": "megawatthours"},
	{"period": "2024-06-01T05", "type": "NG", "value": 140000, "value-units": "megawatthours"},
	{"period": "2024-06-01T04", "type": "D", "value": 90000, "value-units": "megawatthours"},
	{"period": "2024-06-01T03", "type": "D", "value": 85000}
]}}`

func okUpstream(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(upstreamPayload))
}

func TestIngestEndpoint(t *testing.T) {
	env := setupTestApp(t, okUpstream)

	var first map[string]int
	if code := doJSON(t, env.app, http.MethodGet, "/eia-data", nil, &first); code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", code)
	}
	if first["inserted"] != 3 || first["fetched"] != 4 || first["skipped"] != 1 {
		t.Fatalf("unexpected first ingest response: %v", first)
	}

	var second map[string]int
	doJSON(t, env.app, http.MethodGet, "/eia-data", nil, &second)
	if second["inserted"] != 0 {
		t.Fatalf("second ingest inserted %d rows, want 0", second["inserted"])
	}

	var status map[string]any
	if code := doJSON(t, env.app, http.MethodGet, "/current-grid", nil, &status); code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", code)
	}
	if status["status"] != "high" || status["period"] != "2024-06-01T05" || status["unit"] != "megawatthours" {
		t.Fatalf("unexpected current status: %v", status)
	}
	if status["value"].(float64) != 150000 {
		t.Fatalf("unexpected value: %v", status["value"])
	}
}

func TestIngestEndpointUpstreamFailure(t *testing.T) {
	env := setupTestApp(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	var body map[string]any
	code := doJSON(t, env.app, http.MethodGet, "/eia-data", nil, &body)
	if code != http.StatusBadGateway {
		t.Fatalf("expected status %d, got %d", http.StatusBadGateway, code)
	}
	if body["status"].(float64) != http.StatusInternalServerError {
		t.Fatalf("expected upstream status 500 in body, got %v", body)
	}
	if _, ok := body["error"].(string); !ok {
		t.Fatalf("expected error message, got %v", body)
	}

	n, err := env.store.CountReadings(context.Background())
	if err != nil {
		t.Fatalf("CountReadings: %v", err)
	}
	if n != 0 {
		t.Fatalf("expected no stored readings, got %d", n)
	}
}

func TestEmptyStoreEndpoints(t *testing.T) {
	env := setupTestApp(t, okUpstream)

	var status map[string]any
	if code := doJSON(t, env.app, http.MethodGet, "/current-grid", nil, &status); code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", code)
	}
	if status["error"] != "no data" {
		t.Fatalf("unexpected body: %v", status)
	}

	req := httptest.NewRequest(http.MethodGet, "/grid-history", nil)
	resp, err := env.app.Test(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer resp.Body.Close()
	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK || strings.TrimSpace(string(raw)) != "[]" {
		t.Fatalf("expected 200 with [], got %d %s", resp.StatusCode, raw)
	}
}

func TestBatteryEndpoints(t *testing.T) {
	env := setupTestApp(t, okUpstream)

	var saved map[string]any
	code := doJSON(t, env.app, http.MethodPost, "/battery", map[string]float64{"battery_level": 0.87}, &saved)
	if code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", code)
	}
	if saved["battery"].(float64) != 0.87 {
		t.Fatalf("unexpected battery: %v", saved)
	}
	if id, ok := saved["id"].(float64); !ok || id < 1 {
		t.Fatalf("expected id, got %v", saved["id"])
	}

	var msg map[string]string
	code = doJSON(t, env.app, http.MethodPost, "/items", map[string]float64{"battery_level": 0.87}, &msg)
	if code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", code)
	}
	if msg["message"] != "Battery level: 87%" {
		t.Fatalf("unexpected message: %v", msg)
	}

	n, err := env.store.CountBattery(context.Background())
	if err != nil {
		t.Fatalf("CountBattery: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected exactly one stored battery row, got %d", n)
	}
}

func TestBatteryValidation(t *testing.T) {
	env := setupTestApp(t, okUpstream)

	var body map[string]any
	code := doJSON(t, env.app, http.MethodPost, "/battery", map[string]string{"level": "full"}, &body)
	if code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", code)
	}
	if body["error"] != true {
		t.Fatalf("expected centralized error body, got %v", body)
	}

	req := httptest.NewRequest(http.MethodPost, "/items", strings.NewReader("{"))
	req.Header.Set("Content-Type", "application/json")
	resp, err := env.app.Test(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", resp.StatusCode)
	}
}

func TestCORSAllowList(t *testing.T) {
	env := setupTestApp(t, okUpstream)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	resp, err := env.app.Test(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	resp.Body.Close()
	if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Fatalf("expected allowed origin echoed, got %q", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "http://evil.example.com")
	resp, err = env.app.Test(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	resp.Body.Close()
	if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "" {
		t.Fatalf("unexpected allow-origin for foreign origin: %q", got)
	}
}

type failingProvider struct{}

func (failingProvider) Name() string       { return "failing" }
func (failingProvider) Respondent() string { return "CISO" }

func (failingProvider) Fetch(context.Context) (grid.FetchResult, error) {
	return grid.FetchResult{}, &grid.UpstreamError{Status: http.StatusBadGateway}
}

func TestIngestEndpointUpstreamErrorWithoutCause(t *testing.T) {
	db, err := store.Open(filepath.Join(t.TempDir(), "api.db"), nil)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	app := NewApp([]string{"http://localhost:3000"})
	RegisterRoutes(app, grid.NewService(db, failingProvider{}, nil), battery.NewService(db, nil), db, nil)

	var body map[string]any
	code := doJSON(t, app, http.MethodGet, "/eia-data", nil, &body)
	if code != http.StatusBadGateway {
		t.Fatalf("expected status %d, got %d", http.StatusBadGateway, code)
	}
	if body["error"] != "upstream returned status 502" || body["status"].(float64) != http.StatusBadGateway {
		t.Fatalf("unexpected body: %v", body)
	}
}
