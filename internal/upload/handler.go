package upload

import (
	"errors"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"time"

	"github.com/eventsphere/api/internal/models"
	"github.com/eventsphere/api/internal/response"
	"github.com/gofiber/fiber/v2"
	"github.com/microcosm-cc/bluemonday"
)

var policy = bluemonday.UGCPolicy()

func sanitizeInput(input string) string {
	return policy.Sanitize(input)
}

// UploadMediaHandler accepts a multipart batch ("featured" single + "gallery"
// many), validates synchronously, and answers 202 with placeholder tokens
// before any CDN upload starts.
func (p *Pipeline) UploadMediaHandler(ownerType string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(uint)

		ownerID, err := c.ParamsInt("id")
		if err != nil {
			return response.BadRequest(c, "Invalid owner ID", nil)
		}

		form, err := c.MultipartForm()
		if err != nil {
			return response.BadRequest(c, "Invalid form data", err.Error())
		}

		var files []FileInput
		if featured := form.File["featured"]; len(featured) > 0 {
			input, err := readFilePart(featured[0], models.MediaRoleFeatured)
			if err != nil {
				return response.InternalError(c, "Failed to read file: "+err.Error())
			}
			files = append(files, *input)
		}
		for _, fh := range form.File["gallery"] {
			input, err := readFilePart(fh, models.MediaRoleGallery)
			if err != nil {
				return response.InternalError(c, "Failed to read file: "+err.Error())
			}
			files = append(files, *input)
		}

		if len(files) == 0 {
			return response.BadRequest(c, "No files provided", nil)
		}

		owner := OwnerRef{Type: ownerType, ID: uint(ownerID)}
		result, err := p.Submit(owner, files, userID)
		if err != nil {
			if errors.Is(err, ErrOwnerNotFound) {
				return response.NotFound(c, "Owner")
			}
			return response.InternalError(c, "Failed to accept upload")
		}

		return response.Accepted(c, result, "Upload accepted")
	}
}

func (p *Pipeline) UploadStatusHandler(c *fiber.Ctx) error {
	status, err := p.GetStatus(c.Params("token"))
	if err != nil {
		if errors.Is(err, ErrUnknownToken) {
			return response.NotFound(c, "Upload token")
		}
		return response.InternalError(c, "Failed to fetch upload status")
	}
	return response.Success(c, status, "Upload status retrieved successfully")
}

func (p *Pipeline) GetMediaHandler(c *fiber.Ctx) error {
	var asset models.MediaAsset
	if err := p.db.First(&asset, "id = ?", c.Params("id")).Error; err != nil {
		return response.NotFound(c, "Media")
	}
	return response.Success(c, asset, "Media retrieved successfully")
}

func (p *Pipeline) UpdateMediaHandler(c *fiber.Ctx) error {
	var asset models.MediaAsset
	if err := p.db.First(&asset, "id = ?", c.Params("id")).Error; err != nil {
		return response.NotFound(c, "Media")
	}

	var body struct {
		Alt     string `json:"alt"`
		Caption string `json:"caption"`
	}
	if err := c.BodyParser(&body); err != nil {
		return response.BadRequest(c, "Invalid request body", err.Error())
	}

	asset.Alt = sanitizeInput(body.Alt)
	asset.Caption = sanitizeInput(body.Caption)

	if err := p.db.Model(&models.MediaAsset{}).
		Where("id = ?", asset.ID).
		Updates(map[string]interface{}{"alt": asset.Alt, "caption": asset.Caption}).Error; err != nil {
		return response.InternalError(c, "Failed to update media")
	}

	return response.Success(c, asset, "Media updated successfully")
}

func (p *Pipeline) BulkDeleteHandler(c *fiber.Ctx) error {
	var body struct {
		IDs []string `json:"ids"`
	}
	if err := c.BodyParser(&body); err != nil {
		return response.BadRequest(c, "Invalid request body", err.Error())
	}
	if len(body.IDs) == 0 {
		return response.ValidationError(c, map[string]string{
			"ids": "at least one media id is required",
		})
	}

	result := p.BulkDelete(body.IDs)
	return response.Success(c, result, "Bulk delete completed")
}

func (p *Pipeline) ListMediaHandler(ownerType string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ownerID, err := c.ParamsInt("id")
		if err != nil {
			return response.BadRequest(c, "Invalid owner ID", nil)
		}

		view, err := p.AttachedMedia(OwnerRef{Type: ownerType, ID: uint(ownerID)})
		if err != nil {
			if errors.Is(err, ErrOwnerNotFound) {
				return response.NotFound(c, "Owner")
			}
			return response.InternalError(c, "Failed to fetch media")
		}

		return response.Success(c, view, "Media retrieved successfully")
	}
}

func (p *Pipeline) MediaStatsHandler(ownerType string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ownerID, err := c.ParamsInt("id")
		if err != nil {
			return response.BadRequest(c, "Invalid owner ID", nil)
		}

		var from, to time.Time
		if v := c.Query("from"); v != "" {
			from, err = time.Parse(time.RFC3339, v)
			if err != nil {
				return response.BadRequest(c, "Invalid 'from' timestamp", nil)
			}
		}
		if v := c.Query("to"); v != "" {
			to, err = time.Parse(time.RFC3339, v)
			if err != nil {
				return response.BadRequest(c, "Invalid 'to' timestamp", nil)
			}
		}

		stats, err := p.Stats(OwnerRef{Type: ownerType, ID: uint(ownerID)}, from, to)
		if err != nil {
			return response.InternalError(c, "Failed to aggregate media stats")
		}

		return response.Success(c, stats, "Media statistics retrieved successfully")
	}
}

func readFilePart(fh *multipart.FileHeader, role models.MediaRole) (*FileInput, error) {
	src, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return nil, err
	}

	contentType := fh.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		if byExt := mime.TypeByExtension(filepath.Ext(fh.Filename)); byExt != "" {
			contentType = byExt
		} else {
			contentType = http.DetectContentType(data)
		}
	}

	return &FileInput{
		FileName:    fh.Filename,
		Role:        role,
		Data:        data,
		ContentType: contentType,
	}, nil
}
