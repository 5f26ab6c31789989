package response

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvelopes(t *testing.T) {
	app := fiber.New()
	app.Get("/ok", func(c *fiber.Ctx) error { return Success(c, "fine", []int{1}, nil) })
	app.Get("/created", func(c *fiber.Ctx) error { return SuccessCreated(c, "made", fiber.Map{"id": 1}, nil) })
	app.Get("/bad", func(c *fiber.Ctx) error {
		return Error(c, "Invalid material input", fiber.StatusBadRequest, map[string]string{"quantity": "is required"})
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/ok", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	var ok map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&ok))
	assert.Equal(t, "success", ok["status"])
	assert.Equal(t, map[string]interface{}{}, ok["metadata"])

	resp, err = app.Test(httptest.NewRequest("GET", "/created", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest("GET", "/bad", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	var bad ErrorBody
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&bad))
	assert.Equal(t, "error", bad.Status)
	assert.Equal(t, 400, bad.Error.StatusCode)
	assert.Equal(t, map[string]interface{}{"quantity": "is required"}, bad.Error.Details)
}
