package routes

import (
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"hostel-backend/controllers"
	"hostel-backend/middleware"
)

func parseCorsOrigins() []string {
	raw := strings.TrimSpace(os.Getenv("CORS_ORIGINS"))
	if raw == "" {
		return []string{"*"}
	}

	parts := strings.Split(raw, ",")
	origins := make([]string, 0, len(parts))
	for _, part := range parts {
		origin := strings.TrimSpace(part)
		if origin != "" {
			origins = append(origins, origin)
		}
	}
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}

func SetupRouter(
	ac *controllers.AuthController,
	rc *controllers.RoomController,
	bc *controllers.BookingController,
	blc *controllers.BillingController,
	pc *controllers.PaymentController,
	jc *controllers.JobsController,
	jwtSecret string,
) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.Logger())

	origins := parseCorsOrigins()
	allowCredentials := true
	for _, origin := range origins {
		if origin == "*" {
			allowCredentials = false
			break
		}
	}

	r.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: allowCredentials,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	{
		api.POST("/auth/login", ac.Login)

		// the gateway redirects here with only the reference; no session
		api.GET("/payments/callback", pc.GatewayCallback)

		authed := api.Group("")
		authed.Use(middleware.RequireAuth(jwtSecret))
		{
			rooms := authed.Group("/rooms")
			{
				rooms.GET("", rc.GetRooms)
				rooms.GET("/:id", rc.GetRoom)
				rooms.POST("", middleware.RequireAdmin(), rc.CreateRoom)
				rooms.PATCH("/:id/maintenance", middleware.RequireAdmin(), rc.SetMaintenance)
			}

			bookings := authed.Group("/bookings")
			{
				bookings.POST("", bc.CreateBooking)
			}

			allocations := authed.Group("/allocations")
			{
				allocations.GET("", bc.GetAllocationHistory)
				allocations.GET("/me", bc.GetMyAllocation)
			}

			billings := authed.Group("/billings")
			{
				billings.GET("", blc.GetBillings)
				billings.GET("/:id", blc.GetBilling)
				billings.GET("/:id/payments", blc.GetBillingPayments)
				billings.POST("/:id/payments", pc.InitializePayment)
				billings.GET("/:id/payments/verify", pc.VerifyPayment)
				billings.POST("/:id/cancel", middleware.RequireAdmin(), blc.CancelBilling)
			}

			jobs := authed.Group("/jobs")
			jobs.Use(middleware.RequireAdmin())
			{
				jobs.POST("/:name/run", jc.RunJob)
			}
		}
	}

	return r
}
