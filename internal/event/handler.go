package event

import (
	"time"

	"github.com/eventsphere/api/internal/database"
	"github.com/eventsphere/api/internal/models"
	"github.com/eventsphere/api/internal/response"
	"github.com/eventsphere/api/internal/upload"
	"github.com/gofiber/fiber/v2"
	"github.com/microcosm-cc/bluemonday"
)

var policy = bluemonday.UGCPolicy()

type eventBody struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Location    string     `json:"location"`
	StartsAt    *time.Time `json:"starts_at"`
	EndsAt      *time.Time `json:"ends_at"`
}

func CreateEventHandler(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(uint)

	var body eventBody
	if err := c.BodyParser(&body); err != nil {
		return response.BadRequest(c, "Invalid request body", err.Error())
	}

	if body.Title == "" {
		return response.ValidationError(c, map[string]string{
			"title": "title is required",
		})
	}

	if body.StartsAt != nil && body.EndsAt != nil && body.EndsAt.Before(*body.StartsAt) {
		return response.ValidationError(c, map[string]string{
			"ends_at": "ends_at must be after starts_at",
		})
	}

	ev := models.Event{
		Title:       policy.Sanitize(body.Title),
		Description: policy.Sanitize(body.Description),
		Location:    policy.Sanitize(body.Location),
		StartsAt:    body.StartsAt,
		EndsAt:      body.EndsAt,
		CreatedBy:   userID,
	}

	if err := database.DB.Create(&ev).Error; err != nil {
		return response.InternalError(c, "Failed to create event")
	}

	return response.Created(c, ev, "Event created successfully")
}

func ListEventsHandler(c *fiber.Ctx) error {
	page := c.QueryInt("page", 1)
	limit := c.QueryInt("limit", 20)
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	events, total, err := ListEvents(page, limit)
	if err != nil {
		return response.InternalError(c, "Failed to fetch events")
	}

	totalPages := (total + int64(limit) - 1) / int64(limit)

	return response.SuccessWithMeta(c, events, &response.Meta{
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: totalPages,
	}, "Events retrieved successfully")
}

// GetEventHandler returns the event together with its resolved media view,
// so clients don't have to follow the /media subresource for the common case.
func GetEventHandler(pipeline *upload.Pipeline) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil {
			return response.BadRequest(c, "Invalid event ID", nil)
		}

		ev, err := GetEvent(uint(id))
		if err != nil {
			return response.NotFound(c, "Event")
		}

		media, err := pipeline.AttachedMedia(upload.OwnerRef{Type: models.OwnerTypeEvent, ID: ev.ID})
		if err != nil {
			return response.InternalError(c, "Failed to fetch event media")
		}

		return response.Success(c, fiber.Map{
			"event": ev,
			"media": media,
		}, "Event retrieved successfully")
	}
}

func UpdateEventHandler(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return response.BadRequest(c, "Invalid event ID", nil)
	}

	var body eventBody
	if err := c.BodyParser(&body); err != nil {
		return response.BadRequest(c, "Invalid request body", err.Error())
	}

	var ev models.Event
	if err := database.DB.First(&ev, id).Error; err != nil {
		return response.NotFound(c, "Event")
	}

	if body.Title != "" {
		ev.Title = policy.Sanitize(body.Title)
	}
	if body.Description != "" {
		ev.Description = policy.Sanitize(body.Description)
	}
	if body.Location != "" {
		ev.Location = policy.Sanitize(body.Location)
	}
	if body.StartsAt != nil {
		ev.StartsAt = body.StartsAt
	}
	if body.EndsAt != nil {
		ev.EndsAt = body.EndsAt
	}

	if ev.StartsAt != nil && ev.EndsAt != nil && ev.EndsAt.Before(*ev.StartsAt) {
		return response.ValidationError(c, map[string]string{
			"ends_at": "ends_at must be after starts_at",
		})
	}

	if err := database.DB.Save(&ev).Error; err != nil {
		return response.InternalError(c, "Failed to update event")
	}

	return response.Success(c, ev, "Event updated successfully")
}

// DeleteEventHandler soft-deletes the event. Attached media rows stay
// behind; the reconciler treats them as orphans and collects them the
// next time they are touched.
func DeleteEventHandler(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return response.BadRequest(c, "Invalid event ID", nil)
	}

	var ev models.Event
	if err := database.DB.First(&ev, id).Error; err != nil {
		return response.NotFound(c, "Event")
	}

	if err := database.DB.Delete(&ev).Error; err != nil {
		return response.InternalError(c, "Failed to delete event")
	}

	return response.NoContent(c)
}
