package folio_test

import (
	"testing"

	"github.com/eventsphere/api/internal/database"
	"github.com/eventsphere/api/internal/folio"
	"github.com/eventsphere/api/internal/testutils"
	"github.com/stretchr/testify/assert"
)

func TestMakeHandle(t *testing.T) {
	assert.Equal(t, "brand-refresh-2026", folio.MakeHandle("Brand Refresh 2026"))
	assert.Equal(t, "spring-menu", folio.MakeHandle("  Spring  Menu!  "))
	assert.Equal(t, "a-b-c", folio.MakeHandle("a/b/c"))
}

func TestCreateFolioHandler(t *testing.T) {
	app, _ := testutils.SetupTestApp(t)

	user := testutils.CreateTestUser(t, database.DB, "organizer@example.com", "password123", "organizer")
	token := testutils.GetAuthToken(t, user.ID, "organizer")

	t.Run("Success - Handle derived from title", func(t *testing.T) {
		body := map[string]interface{}{
			"title":   "Brand Refresh",
			"summary": "Identity work",
		}

		resp, err := testutils.MakeRequest(app, "POST", "/folios/", body, token)
		assert.NoError(t, err)
		assert.Equal(t, 201, resp.Code)

		var result testutils.StandardResponse
		testutils.ParseResponse(t, resp, &result)
		data := result.Data.(map[string]interface{})
		assert.Equal(t, "brand-refresh", data["handle"])
	})

	t.Run("Error - Duplicate handle", func(t *testing.T) {
		body := map[string]interface{}{
			"title":  "Another Project",
			"handle": "brand-refresh",
		}

		resp, err := testutils.MakeRequest(app, "POST", "/folios/", body, token)
		assert.NoError(t, err)
		assert.Equal(t, 409, resp.Code)

		testutils.AssertError(t, resp, "CONFLICT")
	})

	t.Run("Error - Missing title", func(t *testing.T) {
		resp, err := testutils.MakeRequest(app, "POST", "/folios/", map[string]interface{}{}, token)
		assert.NoError(t, err)
		assert.Equal(t, 422, resp.Code)
	})
}
