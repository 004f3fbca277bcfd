package handlers

import (
	"net/http"

	"grabyourtickets/internal/models"

	"github.com/gin-gonic/gin"
)

// Register - POST /api/auth/register
func (h *Handlers) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	resp, err := h.auth.Register(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err, "Failed to register")
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// Login - POST /api/auth/login
func (h *Handlers) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	resp, err := h.auth.Login(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err, "Failed to log in")
		return
	}

	c.JSON(http.StatusOK, resp)
}
