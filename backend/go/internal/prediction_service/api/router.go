package api

import (
	"prediction_relay/backend/go/pkg/logger"

	"github.com/gin-gonic/gin"
)

// SetupRouter builds the gin engine serving the relay's routes.
func SetupRouter(api *API, base *logger.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), RequestLogger(base), CORS())
	RegisterRoutes(r, api)
	return r
}

// RegisterRoutes registers all the routes for the prediction service.
func RegisterRoutes(router gin.IRoutes, api *API) {
	router.GET("/", api.HealthHandler)
	router.POST("/predict", api.PredictHandler)
	router.GET("/history", api.HistoryHandler)
}
