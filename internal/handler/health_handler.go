package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/callsight/callsight/internal/store"
)

type HealthHandler struct {
	conn *store.ConnManager
}

func NewHealthHandler(conn *store.ConnManager) *HealthHandler {
	return &HealthHandler{conn: conn}
}

func (h *HealthHandler) Check(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"store":  h.conn.State().String(),
	})
}
