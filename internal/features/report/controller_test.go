package report

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"go-compliance/pkg/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFieldsTestApp(registry *fakeRegistry) *fiber.App {
	controller := &ReportController{Registry: registry}
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals(utils.UserClaimsKey, testActor())
		return c.Next()
	})
	app.Get("/api/reports/fields/:entityType", controller.GetFields)
	return app
}

func TestGetFieldsUnknownEntityTypeDegrades(t *testing.T) {
	app := newFieldsTestApp(newFakeRegistry())

	// The registry serves an empty catalog for entity types it does not
	// know; the endpoint must pass that through instead of rejecting.
	req := httptest.NewRequest(http.MethodGet, "/api/reports/fields/vendors", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		EntityType string      `json:"entity_type"`
		Groups     interface{} `json:"groups"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "vendors", body.EntityType)
	assert.Empty(t, body.Groups)
}
