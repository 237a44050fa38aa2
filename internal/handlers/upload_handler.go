package handlers

import (
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// allowed upload extensions; everything else is rejected
var allowedImageExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

// UploadHandler stores uploaded images and hands back durable URLs. Cropping
// and resizing happen client-side before upload.
type UploadHandler struct {
	dir     string
	baseURL string
}

// NewUploadHandler creates an UploadHandler writing into dir
func NewUploadHandler(dir, baseURL string) *UploadHandler {
	return &UploadHandler{dir: dir, baseURL: baseURL}
}

// RegisterUploadRoutes registers the authenticated upload route
func (h *UploadHandler) RegisterUploadRoutes(g *echo.Group) {
	g.POST("/uploads", h.Upload)
}

// Upload accepts a multipart image under the "file" field and returns the
// URL the stored image is served from.
func (h *UploadHandler) Upload(c echo.Context) error {
	if getUserIDFromContext(c) == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "You must be logged in")
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Missing file")
	}

	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	if !allowedImageExts[ext] {
		return echo.NewHTTPError(http.StatusBadRequest, "Unsupported file type")
	}

	src, err := fileHeader.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Failed to read file")
	}
	defer src.Close()

	if err := os.MkdirAll(h.dir, 0o755); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to store file")
	}

	name := uuid.NewString() + ext
	dst, err := os.Create(filepath.Join(h.dir, name))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to store file")
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to store file")
	}

	return c.JSON(http.StatusCreated, echo.Map{"url": path.Join(h.baseURL, name)})
}
