package folio

import (
	"github.com/eventsphere/api/internal/database"
	"github.com/eventsphere/api/internal/models"
	"github.com/eventsphere/api/internal/response"
	"github.com/eventsphere/api/internal/upload"
	"github.com/gofiber/fiber/v2"
	"github.com/microcosm-cc/bluemonday"
)

var policy = bluemonday.UGCPolicy()

type folioBody struct {
	Title   string `json:"title"`
	Summary string `json:"summary"`
	Handle  string `json:"handle"`
}

func CreateFolioHandler(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(uint)

	var body folioBody
	if err := c.BodyParser(&body); err != nil {
		return response.BadRequest(c, "Invalid request body", err.Error())
	}

	if body.Title == "" {
		return response.ValidationError(c, map[string]string{
			"title": "title is required",
		})
	}

	handle := body.Handle
	if handle == "" {
		handle = MakeHandle(body.Title)
	}

	var existing models.FolioWork
	if err := database.DB.Where("handle = ?", handle).First(&existing).Error; err == nil {
		return response.Conflict(c, "Folio with this handle already exists")
	}

	fw := models.FolioWork{
		Title:     policy.Sanitize(body.Title),
		Summary:   policy.Sanitize(body.Summary),
		Handle:    handle,
		CreatedBy: userID,
	}

	if err := database.DB.Create(&fw).Error; err != nil {
		return response.InternalError(c, "Failed to create folio")
	}

	return response.Created(c, fw, "Folio created successfully")
}

func ListFoliosHandler(c *fiber.Ctx) error {
	page := c.QueryInt("page", 1)
	limit := c.QueryInt("limit", 20)
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	works, total, err := ListFolios(page, limit)
	if err != nil {
		return response.InternalError(c, "Failed to fetch folios")
	}

	totalPages := (total + int64(limit) - 1) / int64(limit)

	return response.SuccessWithMeta(c, works, &response.Meta{
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: totalPages,
	}, "Folios retrieved successfully")
}

func GetFolioHandler(pipeline *upload.Pipeline) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil {
			return response.BadRequest(c, "Invalid folio ID", nil)
		}

		fw, err := GetFolio(uint(id))
		if err != nil {
			return response.NotFound(c, "Folio")
		}

		media, err := pipeline.AttachedMedia(upload.OwnerRef{Type: models.OwnerTypeFolio, ID: fw.ID})
		if err != nil {
			return response.InternalError(c, "Failed to fetch folio media")
		}

		return response.Success(c, fiber.Map{
			"folio": fw,
			"media": media,
		}, "Folio retrieved successfully")
	}
}

func UpdateFolioHandler(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return response.BadRequest(c, "Invalid folio ID", nil)
	}

	var body folioBody
	if err := c.BodyParser(&body); err != nil {
		return response.BadRequest(c, "Invalid request body", err.Error())
	}

	var fw models.FolioWork
	if err := database.DB.First(&fw, id).Error; err != nil {
		return response.NotFound(c, "Folio")
	}

	if body.Title != "" {
		fw.Title = policy.Sanitize(body.Title)
	}
	if body.Summary != "" {
		fw.Summary = policy.Sanitize(body.Summary)
	}
	if body.Handle != "" && body.Handle != fw.Handle {
		var existing models.FolioWork
		if err := database.DB.Where("handle = ? AND id != ?", body.Handle, id).First(&existing).Error; err == nil {
			return response.Conflict(c, "Handle already taken")
		}
		fw.Handle = body.Handle
	}

	if err := database.DB.Save(&fw).Error; err != nil {
		return response.InternalError(c, "Failed to update folio")
	}

	return response.Success(c, fw, "Folio updated successfully")
}

func DeleteFolioHandler(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return response.BadRequest(c, "Invalid folio ID", nil)
	}

	var fw models.FolioWork
	if err := database.DB.First(&fw, id).Error; err != nil {
		return response.NotFound(c, "Folio")
	}

	if err := database.DB.Delete(&fw).Error; err != nil {
		return response.InternalError(c, "Failed to delete folio")
	}

	return response.NoContent(c)
}
