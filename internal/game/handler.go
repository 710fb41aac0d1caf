package game

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	Repo *Repo
}

func NewHandler(repo *Repo) *Handler {
	return &Handler{Repo: repo}
}

// RegisterRoutes mounts on the API root since games and releases share it.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/games/:id", h.getByID)        // GET /games/:id
	rg.GET("/releases/:id/roms", h.romsOf) // GET /releases/:id/roms
}

func (h *Handler) getByID(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	g, err := h.Repo.GetWithReleases(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "get failed"})
		return
	}
	if g == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	c.JSON(http.StatusOK, g)
}

func (h *Handler) romsOf(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	roms, err := h.Repo.RomsForRelease(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list roms failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"release_id": id, "items": roms})
}

func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return id, true
}
