package auth

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

type Handler struct {
	Tokens TokenService
	// AdminPasswordHash is a bcrypt hash; empty disables token issuing.
	AdminPasswordHash string
}

func NewHandler(tokens TokenService, adminPasswordHash string) *Handler {
	return &Handler{Tokens: tokens, AdminPasswordHash: adminPasswordHash}
}

// RequireAdmin guards admin routes. Without an admin password hash no
// admin token can be issued, so every request is refused before the
// bearer token is even looked at.
func (h *Handler) RequireAdmin() gin.HandlerFunc {
	if h.AdminPasswordHash == "" {
		return func(c *gin.Context) {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "admin access disabled"})
			c.Abort()
		}
	}
	return AuthMiddleware(h.Tokens, RoleAdmin)
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/token", h.token)
	rg.GET("/me", AuthMiddleware(h.Tokens, RoleAdmin), h.me)
}

type tokenReq struct {
	Password string `json:"password"`
}

func (h *Handler) token(c *gin.Context) {
	var req tokenReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if req.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "password required"})
		return
	}
	if h.AdminPasswordHash == "" {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "admin login disabled"})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(h.AdminPasswordHash), []byte(req.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	token, exp, err := h.Tokens.Sign(RoleAdmin, RoleAdmin)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "token failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token":      token,
		"expires_at": exp.UTC().Format(time.RFC3339),
	})
}

func (h *Handler) me(c *gin.Context) {
	claims := MustGetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"subject":    claims.Subject,
		"role":       claims.Role,
		"token_id":   claims.ID,
		"expires_at": claims.ExpiresAt.UTC().Format(time.RFC3339),
	})
}
