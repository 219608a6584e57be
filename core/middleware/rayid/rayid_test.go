package rayid_test

import (
	"net/http/httptest"
	"testing"

	"tablediff/core/middleware/rayid"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRayID(t *testing.T) {
	app := fiber.New()
	app.Use(rayid.New())

	var seen string
	app.Get("/ping", func(c *fiber.Ctx) error {
		seen, _ = c.Locals(rayid.LocalsKey).(string)
		return c.SendString("pong")
	})

	t.Run("Generated", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/ping", nil)
		resp, err := app.Test(req)
		require.NoError(t, err)

		header := resp.Header.Get(rayid.HeaderName)
		assert.NotEmpty(t, header)
		assert.Equal(t, header, seen)
		_, err = uuid.Parse(header)
		assert.NoError(t, err)
	})

	t.Run("IncomingHeaderHonored", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/ping", nil)
		req.Header.Set(rayid.HeaderName, "upstream-id")

		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, "upstream-id", resp.Header.Get(rayid.HeaderName))
		assert.Equal(t, "upstream-id", seen)
	})
}
