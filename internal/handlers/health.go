package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type HealthHandler struct {
	backend string
}

func NewHealthHandler(backend string) *HealthHandler {
	return &HealthHandler{backend: backend}
}

// Healthz 存活检查
func (h *HealthHandler) Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "store": h.backend})
}
