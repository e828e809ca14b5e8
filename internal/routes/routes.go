package routes

import (
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/hushhome/hushhome-golang/internal/handlers"
	"github.com/hushhome/hushhome-golang/internal/middleware"
)

// CORSMiddleware allows the web client origin to call the API with the
// Authorization header. The origin comes from ALLOWED_ORIGIN.
func CORSMiddleware() gin.HandlerFunc {
	origin := os.Getenv("ALLOWED_ORIGIN")
	if origin == "" {
		origin = "http://localhost:5173"
	}
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		// Preflight requests get an empty 204.
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}

func SetupRouter(h *handlers.Handlers) *gin.Engine {
	router := gin.Default()

	router.Use(CORSMiddleware())

	v1 := router.Group("/v1")
	{
		// --- Ping Route (Public) ---
		v1.GET("/ping", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"message": "pong!"})
		})

		// --- Auth Routes (Public) ---
		v1.POST("/auth/register", h.Register)
		v1.POST("/auth/login", h.Login)
		v1.POST("/auth/verify-email", h.VerifyEmail)
		v1.POST("/auth/resend-code", h.ResendVerificationEmail)

		// --- Owner Landing Lead Capture (Public) ---
		v1.POST("/leads", h.CreateLead)

		// --- Protected Routes (Login Required) ---
		auth := v1.Group("/")
		auth.Use(middleware.AuthMiddleware(h.DB))
		{
			auth.GET("/auth/me", h.GetMe)

			// --- Notification Routes ---
			auth.GET("/notifications", h.ListNotifications)
			auth.GET("/notifications/unread-count", h.GetUnreadCount)
			auth.PATCH("/notifications/read-all", h.MarkAllNotificationsRead)
			auth.PATCH("/notifications/:id/read", h.MarkNotificationAsRead)
			auth.DELETE("/notifications/:id", h.DeleteNotification)

			// --- Property Routes (Owner) ---
			auth.POST("/properties", h.CreateProperty)
			auth.GET("/properties/mine", h.GetMyProperties)
			auth.PUT("/properties/:id", h.UpdateProperty)
			auth.PATCH("/properties/:id/status", h.UpdatePropertyStatus)
			auth.DELETE("/properties/:id", h.DeleteProperty)
			auth.POST("/properties/:id/generate-description", h.GenerateDescription)

			// --- Demand Routes (Buyer) ---
			auth.POST("/demands", h.CreateDemand)
			auth.GET("/demands/mine", h.GetMyDemands)
			auth.PUT("/demands/:id", h.UpdateDemand)
			auth.DELETE("/demands/:id", h.DeleteDemand)
			auth.GET("/demands/:id/matches", h.GetDemandMatches)
		}

		// --- Admin-Only Routes ---
		admin := v1.Group("/admin")
		admin.Use(middleware.AuthMiddleware(h.DB))
		admin.Use(middleware.AdminMiddleware(h.DB))
		{
			admin.GET("/stats", h.GetAdminStats)
			admin.GET("/users", h.GetUsers)
			admin.PATCH("/users/:id/status", h.UpdateUserStatus)
			admin.GET("/leads", h.GetLeads)
			admin.POST("/ai/chat", h.AdminChat)
		}
	}

	return router
}
