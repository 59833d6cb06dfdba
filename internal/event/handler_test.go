package event_test

import (
	"fmt"
	"testing"

	"github.com/eventsphere/api/internal/database"
	"github.com/eventsphere/api/internal/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateEventHandler(t *testing.T) {
	app, _ := testutils.SetupTestApp(t)

	user := testutils.CreateTestUser(t, database.DB, "organizer@example.com", "password123", "organizer")
	token := testutils.GetAuthToken(t, user.ID, "organizer")

	t.Run("Success - Create event", func(t *testing.T) {
		body := map[string]interface{}{
			"title":       "Winter Expo",
			"description": "Annual showcase",
			"location":    "Hall B",
		}

		resp, err := testutils.MakeRequest(app, "POST", "/events/", body, token)
		assert.NoError(t, err)
		assert.Equal(t, 201, resp.Code)

		var result testutils.StandardResponse
		testutils.ParseResponse(t, resp, &result)
		assert.True(t, result.Success)

		data := result.Data.(map[string]interface{})
		assert.Equal(t, "Winter Expo", data["title"])
		assert.Equal(t, float64(user.ID), data["created_by"])
	})

	t.Run("Success - HTML is sanitized", func(t *testing.T) {
		body := map[string]interface{}{
			"title": "Expo <script>alert(1)</script>",
		}

		resp, err := testutils.MakeRequest(app, "POST", "/events/", body, token)
		assert.NoError(t, err)
		assert.Equal(t, 201, resp.Code)

		var result testutils.StandardResponse
		testutils.ParseResponse(t, resp, &result)
		data := result.Data.(map[string]interface{})
		assert.NotContains(t, data["title"], "<script>")
	})

	t.Run("Error - Missing title", func(t *testing.T) {
		body := map[string]interface{}{
			"location": "Hall B",
		}

		resp, err := testutils.MakeRequest(app, "POST", "/events/", body, token)
		assert.NoError(t, err)
		assert.Equal(t, 422, resp.Code)

		testutils.AssertError(t, resp, "VALIDATION_ERROR")
	})

	t.Run("Error - Viewer cannot create", func(t *testing.T) {
		viewer := testutils.CreateTestUser(t, database.DB, "viewer@example.com", "password123", "viewer")
		viewerToken := testutils.GetAuthToken(t, viewer.ID, "viewer")

		body := map[string]interface{}{
			"title": "Not allowed",
		}

		resp, err := testutils.MakeRequest(app, "POST", "/events/", body, viewerToken)
		assert.NoError(t, err)
		assert.Equal(t, 403, resp.Code)

		testutils.AssertError(t, resp, "FORBIDDEN")
	})
}

func TestGetEventHandler(t *testing.T) {
	app, _ := testutils.SetupTestApp(t)

	user := testutils.CreateTestUser(t, database.DB, "organizer@example.com", "password123", "organizer")
	token := testutils.GetAuthToken(t, user.ID, "organizer")
	ev := testutils.CreateTestEvent(t, database.DB, "Launch Party", user.ID)

	t.Run("Success - Get existing event with media view", func(t *testing.T) {
		resp, err := testutils.MakeRequest(app, "GET", fmt.Sprintf("/events/%d", ev.ID), nil, token)
		assert.NoError(t, err)
		assert.Equal(t, 200, resp.Code)

		var result testutils.StandardResponse
		testutils.ParseResponse(t, resp, &result)
		data := result.Data.(map[string]interface{})

		eventData := data["event"].(map[string]interface{})
		assert.Equal(t, "Launch Party", eventData["title"])

		media := data["media"].(map[string]interface{})
		assert.Nil(t, media["featured"])
		assert.Empty(t, media["gallery"])
	})

	t.Run("Error - Event not found", func(t *testing.T) {
		resp, err := testutils.MakeRequest(app, "GET", "/events/9999", nil, token)
		assert.NoError(t, err)
		assert.Equal(t, 404, resp.Code)

		testutils.AssertError(t, resp, "NOT_FOUND")
	})
}

func TestListEventsHandler(t *testing.T) {
	app, _ := testutils.SetupTestApp(t)

	user := testutils.CreateTestUser(t, database.DB, "organizer@example.com", "password123", "organizer")
	token := testutils.GetAuthToken(t, user.ID, "organizer")

	for i := 0; i < 3; i++ {
		testutils.CreateTestEvent(t, database.DB, fmt.Sprintf("Event %d", i), user.ID)
	}

	resp, err := testutils.MakeRequest(app, "GET", "/events/?page=1&limit=2", nil, token)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.Code)

	var result testutils.StandardResponse
	testutils.ParseResponse(t, resp, &result)
	assert.True(t, result.Success)

	events := result.Data.([]interface{})
	assert.Len(t, events, 2)

	require.NotNil(t, result.Meta)
	assert.Equal(t, int64(3), result.Meta.Total)
	assert.Equal(t, int64(2), result.Meta.TotalPages)
}

func TestDeleteEventHandler(t *testing.T) {
	app, _ := testutils.SetupTestApp(t)

	admin := testutils.CreateTestUser(t, database.DB, "admin@example.com", "password123", "admin")
	token := testutils.GetAuthToken(t, admin.ID, "admin")
	ev := testutils.CreateTestEvent(t, database.DB, "Doomed Event", admin.ID)

	resp, err := testutils.MakeRequest(app, "DELETE", fmt.Sprintf("/events/%d", ev.ID), nil, token)
	require.NoError(t, err)
	assert.Equal(t, 204, resp.Code)

	resp, err = testutils.MakeRequest(app, "GET", fmt.Sprintf("/events/%d", ev.ID), nil, token)
	require.NoError(t, err)
	assert.Equal(t, 404, resp.Code)
}
