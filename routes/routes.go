package routes

import (
	"net/http"
	"time"

	"cosecha/handlers"
	"cosecha/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RegisterCollectionRoutes registers the submission and approval endpoints.
func RegisterCollectionRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/collections")
	{
		api.Use(middleware.JWTAuthMiddleware())
		api.POST("", hb.SubmitCollectionHandler)

		// Approval transitions require the admin capability.
		admin := api.Group("")
		admin.Use(middleware.AdminOnlyMiddleware(hb.Capability))
		admin.PUT("/:id/approve", hb.ApproveCollectionHandler)
		admin.PUT("/:id/reject", hb.RejectCollectionHandler)
	}
}

// RegisterLotRoutes registers lot reads, writes and the aggregate surfaces.
func RegisterLotRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/lots")
	{
		api.Use(middleware.JWTAuthMiddleware())
		api.GET("/:id", hb.GetLotHandler)
		api.GET("/:id/summary", hb.LotSummaryHandler)
		api.GET("/:id/stream", hb.LotStreamHandler)

		admin := api.Group("")
		admin.Use(middleware.AdminOnlyMiddleware(hb.Capability))
		admin.PUT("/:id/status", hb.UpdateLotStatusHandler)
		admin.PUT("/:id/collaborators", hb.UpdateLotCollaboratorsHandler)
	}
}

// RegisterHealthRoute registers a health-check endpoint.
func RegisterHealthRoute(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
}

// RegisterRoutes wires CORS and every route group onto the engine.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	RegisterHealthRoute(r)
	RegisterCollectionRoutes(r, hb)
	RegisterLotRoutes(r, hb)
}
