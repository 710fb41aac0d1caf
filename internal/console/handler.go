package console

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"romhub/internal/game"
	"romhub/pkg/models"
)

type Handler struct {
	Repo  *Repo
	Games *game.Repo
}

func NewHandler(repo *Repo, games *game.Repo) *Handler {
	return &Handler{Repo: repo, Games: games}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.list)            // GET /consoles
	rg.GET("/:id", h.getByID)     // GET /consoles/:id
	rg.GET("/:id/games", h.games) // GET /consoles/:id/games
	rg.GET("/:id/roms", h.roms)   // GET /consoles/:id/roms
}

// RegisterProtected mounts the write routes; rg is expected to carry the
// auth middleware.
func (h *Handler) RegisterProtected(rg *gin.RouterGroup) {
	rg.PUT("/:id/library", h.setInLibrary) // PUT /consoles/:id/library
}

func (h *Handler) list(c *gin.Context) {
	items, err := h.Repo.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
		return
	}
	if items == nil {
		items = []models.Console{}
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (h *Handler) getByID(c *gin.Context) {
	cons, ok := h.lookup(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, cons)
}

func (h *Handler) games(c *gin.Context) {
	cons, ok := h.lookup(c)
	if !ok {
		return
	}
	games, err := h.Games.GamesWithReleases(c.Request.Context(), cons.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list games failed"})
		return
	}
	c.JSON(http.StatusOK, models.ConsoleWithGames{Console: *cons, Games: games})
}

func (h *Handler) roms(c *gin.Context) {
	cons, ok := h.lookup(c)
	if !ok {
		return
	}
	roms, err := h.Games.RomsForConsole(c.Request.Context(), cons.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list roms failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"console_id": cons.ID, "items": roms})
}

type libraryReq struct {
	InLibrary *bool `json:"in_library"`
}

func (h *Handler) setInLibrary(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	var req libraryReq
	if err := c.ShouldBindJSON(&req); err != nil || req.InLibrary == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "in_library required"})
		return
	}

	found, err := h.Repo.SetInLibrary(c.Request.Context(), id, *req.InLibrary)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id, "in_library": *req.InLibrary})
}

// lookup resolves :id and writes the error response itself when it fails.
func (h *Handler) lookup(c *gin.Context) (*models.Console, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return nil, false
	}
	cons, err := h.Repo.GetByID(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "get failed"})
		return nil, false
	}
	if cons == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return nil, false
	}
	return cons, true
}
