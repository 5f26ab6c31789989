package router

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"ecoblock-backend/internal/application/prediction"
	"ecoblock-backend/internal/config"
	"ecoblock-backend/internal/testutil"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupApp(t *testing.T, withRedis bool) *fiber.App {
	cfg := &config.Config{
		Env:                "test",
		HealthAdminKey:     "test-admin-key",
		CORSAllowedOrigins: "*",
		MetricsEnabled:     true,
		ExportPageSize:     100,
	}
	d := Deps{
		Config:    cfg,
		DB:        testutil.OpenDB(t),
		Predictor: prediction.NewPredictor(prediction.LinearModel{Slope: 2, Intercept: 0.5}),
	}
	if withRedis {
		mr, err := miniredis.Run()
		require.NoError(t, err)
		d.Rdb = redis.NewClient(&redis.Options{Addr: mr.Addr()})
		t.Cleanup(func() {
			d.Rdb.Close()
			mr.Close()
		})
	}
	return NewApp(d)
}

func TestRoutes_EndToEnd(t *testing.T) {
	app := setupApp(t, true)

	resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("X-Trace-Id"))

	body, _ := json.Marshal(map[string]interface{}{
		"material":         "Hempcrete",
		"quantity":         40,
		"source":           "EcoCement Co.",
		"carbon_savings":   10,
		"project_location": "Pune",
		"used_in_project":  "Walls",
		"date_added":       "2024-06-01",
	})
	req := httptest.NewRequest("POST", "/api/v1/materials", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)

	for path, status := range map[string]int{
		"/api/v1/materials":                 fiber.StatusOK,
		"/api/v1/materials/1":               fiber.StatusOK,
		"/api/v1/materials/export":          fiber.StatusOK,
		"/api/v1/materials/export.xlsx":     fiber.StatusOK,
		"/api/v1/predictions/1":             fiber.StatusOK,
		"/api/v1/analytics/carbon-savings":  fiber.StatusOK,
		"/api/v1/suggestions/1":             fiber.StatusOK,
		"/api/v1/sources":                   fiber.StatusOK,
		"/api/v1/materials/2":               fiber.StatusNotFound,
		"/health/json":                      fiber.StatusOK,
		"/health/errors":                    fiber.StatusOK,
		"/api/v1/does-not-exist":            fiber.StatusNotFound,
	} {
		resp, err := app.Test(httptest.NewRequest("GET", path, nil))
		require.NoError(t, err, path)
		assert.Equal(t, status, resp.StatusCode, path)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	app := setupApp(t, false)

	_, err := app.Test(httptest.NewRequest("GET", "/api/v1/sources", nil))
	require.NoError(t, err)

	resp, err := app.Test(httptest.NewRequest("GET", "/metrics", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	b, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(b), "ecoblock_http_requests_total")
}

func TestHealthEndpointsDoNotExposeAdminKey(t *testing.T) {
	app := setupApp(t, true)

	// The predictor has no model file, so the reload fails and lands in the error log too.
	resp, err := app.Test(httptest.NewRequest("POST", "/api/v1/predictions/reload?key=test-admin-key", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)

	for _, path := range []string{"/health/errors", "/health/json"} {
		resp, err := app.Test(httptest.NewRequest("GET", path, nil))
		require.NoError(t, err, path)
		b, _ := io.ReadAll(resp.Body)
		assert.Contains(t, string(b), "/api/v1/predictions/reload", path)
		assert.NotContains(t, string(b), "test-admin-key", path)
	}
}
