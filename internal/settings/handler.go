package settings

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	Store *Store
}

func NewHandler(store *Store) *Handler {
	return &Handler{Store: store}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.get) // GET /settings
}

// RegisterProtected expects rg to carry the auth middleware.
func (h *Handler) RegisterProtected(rg *gin.RouterGroup) {
	rg.PUT("/rom-paths/:abbr", h.setRomPath) // PUT /settings/rom-paths/:abbr
}

func (h *Handler) get(c *gin.Context) {
	c.JSON(http.StatusOK, h.Store.Get())
}

type romPathReq struct {
	Path *string `json:"path"`
}

func (h *Handler) setRomPath(c *gin.Context) {
	var req romPathReq
	if err := c.ShouldBindJSON(&req); err != nil || req.Path == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "path required"})
		return
	}

	abbr := c.Param("abbr")
	dir := strings.TrimSpace(*req.Path)
	if err := h.Store.SetRomPath(abbr, dir); err != nil {
		if errors.Is(err, ErrUnknownConsole) {
			c.JSON(http.StatusNotFound, gin.H{"error": "unknown console"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "save failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"abbreviation": abbr, "path": dir})
}
