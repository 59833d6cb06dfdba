package testutils

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http/httptest"
	"net/textproto"
	"testing"
	"time"

	"github.com/eventsphere/api/internal/cdn"
	"github.com/eventsphere/api/internal/database"
	"github.com/eventsphere/api/internal/models"
	"github.com/eventsphere/api/internal/server"
	"github.com/eventsphere/api/internal/upload"
	"github.com/eventsphere/api/internal/utils"
	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	assert.NoError(t, err, "Failed to create test database")

	err = db.AutoMigrate(
		&models.User{},
		&models.Role{},
		&models.Permission{},
		&models.RefreshToken{},
		&models.Event{},
		&models.FolioWork{},
		&models.MediaAsset{},
		&models.UploadJob{},
	)
	assert.NoError(t, err, "Failed to migrate test database")

	return db
}

// TestPipeline builds an upload pipeline against a temp-dir local CDN.
// Workers are not started; tests drive the pool explicitly or call
// pipeline.Start themselves.
func TestPipeline(t *testing.T, db *gorm.DB) *upload.Pipeline {
	client, err := cdn.NewLocalClientAt(t.TempDir())
	assert.NoError(t, err, "Failed to initialize test storage")

	return upload.NewPipeline(db, client, upload.Config{
		Workers:     2,
		MaxFileSize: 10 * 1024 * 1024,
		MaxAttempts: 3,
		Lease:       5 * time.Second,
	})
}

func SetupTestApp(t *testing.T) (*fiber.App, *upload.Pipeline) {
	db := TestDB(t)
	database.DB = db

	CreateTestRoles(t, db)

	pipeline := TestPipeline(t, db)

	app := server.New(pipeline)
	return app, pipeline
}

func CreateTestRoles(t *testing.T, db *gorm.DB) {
	adminRole := models.Role{
		Name:        "admin",
		Description: "Administrator with full access",
	}
	db.Create(&adminRole)

	adminPerms := []models.Permission{
		{RoleID: adminRole.ID, Module: "Media", Action: "create"},
		{RoleID: adminRole.ID, Module: "Media", Action: "read"},
		{RoleID: adminRole.ID, Module: "Media", Action: "update"},
		{RoleID: adminRole.ID, Module: "Media", Action: "delete"},
		{RoleID: adminRole.ID, Module: "Event", Action: "create"},
		{RoleID: adminRole.ID, Module: "Event", Action: "read"},
		{RoleID: adminRole.ID, Module: "Event", Action: "update"},
		{RoleID: adminRole.ID, Module: "Event", Action: "delete"},
		{RoleID: adminRole.ID, Module: "Folio", Action: "create"},
		{RoleID: adminRole.ID, Module: "Folio", Action: "read"},
		{RoleID: adminRole.ID, Module: "Folio", Action: "update"},
		{RoleID: adminRole.ID, Module: "Folio", Action: "delete"},
	}
	for _, perm := range adminPerms {
		db.Create(&perm)
	}

	organizerRole := models.Role{
		Name:        "organizer",
		Description: "Can manage own events, folios, and their media",
	}
	db.Create(&organizerRole)

	organizerPerms := []models.Permission{
		{RoleID: organizerRole.ID, Module: "Media", Action: "create"},
		{RoleID: organizerRole.ID, Module: "Media", Action: "read"},
		{RoleID: organizerRole.ID, Module: "Media", Action: "update"},
		{RoleID: organizerRole.ID, Module: "Media", Action: "delete"},
		{RoleID: organizerRole.ID, Module: "Event", Action: "create"},
		{RoleID: organizerRole.ID, Module: "Event", Action: "read"},
		{RoleID: organizerRole.ID, Module: "Event", Action: "update"},
		{RoleID: organizerRole.ID, Module: "Folio", Action: "create"},
		{RoleID: organizerRole.ID, Module: "Folio", Action: "read"},
		{RoleID: organizerRole.ID, Module: "Folio", Action: "update"},
	}
	for _, perm := range organizerPerms {
		db.Create(&perm)
	}

	viewerRole := models.Role{
		Name:        "viewer",
		Description: "Read only access",
	}
	db.Create(&viewerRole)

	viewerPerms := []models.Permission{
		{RoleID: viewerRole.ID, Module: "Media", Action: "read"},
		{RoleID: viewerRole.ID, Module: "Event", Action: "read"},
		{RoleID: viewerRole.ID, Module: "Folio", Action: "read"},
	}
	for _, perm := range viewerPerms {
		db.Create(&perm)
	}
}

func CreateTestUser(t *testing.T, db *gorm.DB, email, password, roleName string) *models.User {
	hashedPassword, _ := utils.HashPassword(password)

	var role models.Role
	if err := db.Where("name = ?", roleName).First(&role).Error; err != nil {
		t.Fatalf("Failed to find role '%s': %v. Make sure CreateTestRoles was called.", roleName, err)
	}

	user := &models.User{
		Name:     "Test User",
		Email:    email,
		Password: hashedPassword,
		Status:   "active",
		RoleID:   role.ID,
	}

	err := db.Create(user).Error
	assert.NoError(t, err, "Failed to create test user")

	db.Preload("Role.Permissions").First(user, user.ID)

	if user.Role == nil {
		t.Fatal("Role not loaded for user")
	}

	return user
}

func CreateTestEvent(t *testing.T, db *gorm.DB, title string, createdBy uint) *models.Event {
	ev := &models.Event{
		Title:     title,
		Location:  "Test Venue",
		CreatedBy: createdBy,
	}
	err := db.Create(ev).Error
	assert.NoError(t, err, "Failed to create test event")
	return ev
}

func CreateTestFolio(t *testing.T, db *gorm.DB, title, handle string, createdBy uint) *models.FolioWork {
	fw := &models.FolioWork{
		Title:     title,
		Handle:    handle,
		CreatedBy: createdBy,
	}
	err := db.Create(fw).Error
	assert.NoError(t, err, "Failed to create test folio")
	return fw
}

func GetAuthToken(t *testing.T, userID uint, roleName string) string {
	token, err := utils.GenerateJWT(userID, roleName)
	assert.NoError(t, err, "Failed to generate test token")
	return token
}

func MakeRequest(app *fiber.App, method, url string, body interface{}, token string) (*httptest.ResponseRecorder, error) {
	var bodyReader io.Reader
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		bodyReader = bytes.NewReader(jsonBody)
	}

	req := httptest.NewRequest(method, url, bodyReader)
	req.Header.Set("Content-Type", "application/json")

	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()

	resp, err := app.Test(req, -1)
	if err != nil {
		return rec, err
	}

	rec.Code = resp.StatusCode

	io.Copy(rec.Body, resp.Body)
	resp.Body.Close()

	return rec, nil
}

// TestFile is one part of a multipart upload request.
type TestFile struct {
	Field       string
	Name        string
	ContentType string
	Data        []byte
}

func MakeUploadRequest(app *fiber.App, url string, files []TestFile, token string) (*httptest.ResponseRecorder, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	for _, f := range files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="`+f.Field+`"; filename="`+f.Name+`"`)
		if f.ContentType != "" {
			h.Set("Content-Type", f.ContentType)
		}
		part, err := writer.CreatePart(h)
		if err != nil {
			return nil, err
		}
		part.Write(f.Data)
	}

	contentType := writer.FormDataContentType()
	writer.Close()

	req := httptest.NewRequest("POST", url, body)
	req.Header.Set("Content-Type", contentType)

	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	resp, err := app.Test(req, -1)
	if err != nil {
		return rec, err
	}

	rec.Code = resp.StatusCode
	io.Copy(rec.Body, resp.Body)
	resp.Body.Close()

	return rec, nil
}

func ParseResponse(t *testing.T, resp *httptest.ResponseRecorder, v interface{}) {
	if resp.Body.Len() == 0 {
		t.Log("Warning: Response body is empty")
		return
	}

	err := json.NewDecoder(resp.Body).Decode(v)
	if err != nil && err != io.EOF {
		t.Logf("Response body: %s", resp.Body.String())
		assert.NoError(t, err, "Failed to parse response")
	}
}

type StandardResponse struct {
	Success bool         `json:"success"`
	Message string       `json:"message"`
	Data    interface{}  `json:"data"`
	Error   *ErrorDetail `json:"error"`
	Meta    *Meta        `json:"meta"`
}

type ErrorDetail struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details"`
}

type Meta struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int64 `json:"total_pages"`
}

func AssertSuccess(t *testing.T, resp *httptest.ResponseRecorder) {
	var result StandardResponse
	ParseResponse(t, resp, &result)
	assert.True(t, result.Success, "Expected success response")
	assert.Empty(t, result.Error, "Expected no error")
}

func AssertError(t *testing.T, resp *httptest.ResponseRecorder, expectedCode string) {
	var result StandardResponse
	ParseResponse(t, resp, &result)
	assert.False(t, result.Success, "Expected error response")
	assert.NotNil(t, result.Error, "Expected error object")
	assert.Equal(t, expectedCode, result.Error.Code, "Error code mismatch")
}
