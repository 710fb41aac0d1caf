package importer

import (
	"errors"
	"io/fs"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"romhub/internal/dat"
)

// DefaultMaxUploadBytes caps an uploaded DAT. The largest No-Intro DATs are
// a few tens of megabytes.
const DefaultMaxUploadBytes int64 = 128 << 20

type Handler struct {
	Importer       *Importer
	MaxUploadBytes int64
}

func NewHandler(im *Importer) *Handler {
	return &Handler{Importer: im, MaxUploadBytes: DefaultMaxUploadBytes}
}

// RegisterRoutes expects rg to carry the auth middleware.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("", h.importPath)          // POST /imports {"path": "..."}
	rg.POST("/upload", h.importUpload) // POST /imports/upload, body is the DAT
}

type importReq struct {
	Path string `json:"path"`
}

func (h *Handler) importPath(c *gin.Context) {
	var req importReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	req.Path = strings.TrimSpace(req.Path)
	if req.Path == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "path required"})
		return
	}

	res, err := h.Importer.ImportFile(c.Request.Context(), req.Path)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) importUpload(c *gin.Context) {
	source := c.DefaultQuery("source", "upload")
	body := http.MaxBytesReader(c.Writer, c.Request.Body, h.MaxUploadBytes)

	res, err := h.Importer.Import(c.Request.Context(), body, source)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func writeError(c *gin.Context, err error) {
	var unknown *dat.UnknownConsoleError
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "dat too large", "limit": tooLarge.Limit})
	case errors.Is(err, fs.ErrNotExist):
		c.JSON(http.StatusNotFound, gin.H{"error": "dat file not found"})
	case errors.As(err, &unknown):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error(), "console": unknown.Name})
	case errors.Is(err, dat.ErrMalformedMarkup),
		errors.Is(err, dat.ErrMissingTitle),
		errors.Is(err, dat.ErrEmptyReleaseImages):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "import failed"})
	}
}
