// README: HTTP router registration.
package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"wastagram/internal/http/handlers"
	"wastagram/internal/http/middleware"
	"wastagram/internal/modules/batching"
	"wastagram/internal/modules/location"
	"wastagram/internal/modules/recommendation"
)

type RouterDeps struct {
	Batching       *batching.Service
	Recommendation *recommendation.Service
	Location       *location.Service
}

func NewRouter(deps RouterDeps) *gin.Engine {
	r := gin.New()
	r.Use(middleware.Logging(), middleware.Recovery())

	api := r.Group("/api/v1")

	batchHandler := handlers.NewBatchHandler(deps.Batching)
	api.POST("/sessions/:session/requests", batchHandler.Submit)
	api.POST("/sessions/:session/requests/:id/pickup", batchHandler.Pickup)
	api.GET("/sessions/:session", batchHandler.Get)
	api.POST("/sessions/:session/suggestions/:sid/accept", batchHandler.Accept)
	api.POST("/sessions/:session/suggestions/:sid/decline", batchHandler.Decline)

	recommendationHandler := handlers.NewRecommendationHandler(deps.Recommendation)
	api.POST("/recommendations", recommendationHandler.Recommend)

	locationHandler := handlers.NewLocationHandler(deps.Location)
	api.PUT("/users/:id/location", locationHandler.Update)

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})

	return r
}
