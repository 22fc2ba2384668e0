package handlers

import (
	"crypto/subtle"
	"net/http"

	"github.com/apex/log"
	"github.com/gin-gonic/gin"
)

// LoginRequest identifies the caller. Supplying the configured admin password
// grants operator rights; everyone else gets a citizen token.
type LoginRequest struct {
	UserID        string `json:"user_id" binding:"required"`
	AdminPassword string `json:"admin_password"`
}

// LoginResponse carries the issued bearer token.
type LoginResponse struct {
	Token   string `json:"token"`
	IsAdmin bool   `json:"is_admin"`
}

// Login handles POST /api/v1/login
func (h *Handlers) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id is required"})
		return
	}

	isAdmin := false
	if req.AdminPassword != "" {
		if h.cfg.AdminPassword == "" ||
			subtle.ConstantTimeCompare([]byte(req.AdminPassword), []byte(h.cfg.AdminPassword)) != 1 {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid admin password"})
			return
		}
		isAdmin = true
	}

	token, err := h.auth.GenerateToken(req.UserID, isAdmin)
	if err != nil {
		log.Errorf("Failed to generate token for %s: %v", req.UserID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to issue token"})
		return
	}

	c.JSON(http.StatusOK, LoginResponse{Token: token, IsAdmin: isAdmin})
}
