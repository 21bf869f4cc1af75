package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/callsight/callsight/internal/middleware"
)

type RouterDeps struct {
	Calls     *CallHandler
	Health    *HealthHandler
	JWTSecret []byte
}

func RegisterRoutes(api *gin.RouterGroup, deps RouterDeps) {
	api.GET("/healthz", deps.Health.Check)

	ingestGroup := api.Group("")
	if len(deps.JWTSecret) > 0 {
		ingestGroup.Use(middleware.JWTAuth(deps.JWTSecret))
	}
	ingestGroup.POST("/calls_data/add_new", deps.Calls.AddNew)
}
