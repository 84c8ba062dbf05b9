package app

import (
	"github.com/gin-gonic/gin"
	"github.com/newrelic/go-agent/v3/integrations/nrgin"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/redis/go-redis/v9"

	"highwaylink/internal/config"
	"highwaylink/internal/handler"
	"highwaylink/internal/middleware"
)

// RouterDeps contains all dependencies needed for the router.
type RouterDeps struct {
	RideHandler    *handler.RideHandler
	BookingHandler *handler.BookingHandler
	PaymentHandler *handler.PaymentHandler
	InquiryHandler *handler.InquiryHandler
	RedisClient    *redis.Client
	NewRelicApp    *newrelic.Application
	Auth           config.AuthConfig
}

// NewRouter creates a new Gin router with all routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	router := gin.New()

	// Global middleware.
	router.Use(gin.Recovery())
	router.Use(gin.Logger())
	router.Use(middleware.CORS())

	if deps.NewRelicApp != nil {
		router.Use(nrgin.Middleware(deps.NewRelicApp))
	}

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	v1 := router.Group("/v1")

	// Ride search is public; everything that acts on state needs a token.
	v1.GET("/rides", deps.RideHandler.ListRides)
	v1.GET("/rides/:id", deps.RideHandler.GetRide)

	// Gateway callbacks authenticate with a shared secret, not a user token.
	v1.POST("/payments/card-settlement",
		middleware.GatewayAuth(deps.Auth.GatewaySecret),
		deps.PaymentHandler.CardSettlement,
	)

	authed := v1.Group("")
	authed.Use(middleware.Auth(deps.Auth.JWTSecret))
	authed.Use(middleware.Idempotency(deps.RedisClient))
	{
		// Ride routes.
		rides := authed.Group("/rides")
		{
			rides.POST("", deps.RideHandler.CreateRide)
			rides.GET("/mine", deps.RideHandler.MyOffers)
			rides.PUT("/:id", deps.RideHandler.UpdateRide)
			rides.POST("/:id/start", deps.RideHandler.StartRide)
			rides.POST("/:id/end", deps.RideHandler.EndRide)
			rides.POST("/:id/cancel", deps.RideHandler.CancelRide)
			rides.POST("/:id/bookings", deps.BookingHandler.RequestBooking)
			rides.GET("/:id/bookings", deps.BookingHandler.ListRideBookings)
		}

		// Passenger trips view.
		authed.GET("/trips", deps.RideHandler.MyTrips)

		// Booking routes.
		bookings := authed.Group("/bookings")
		{
			bookings.GET("", deps.BookingHandler.ListMyBookings)
			bookings.GET("/:id", deps.BookingHandler.GetBooking)
			bookings.POST("/:id/approve", deps.BookingHandler.ApproveBooking)
			bookings.POST("/:id/reject", deps.BookingHandler.RejectBooking)
			bookings.POST("/:id/cancel", deps.BookingHandler.CancelBooking)
			bookings.POST("/:id/remove", deps.BookingHandler.RemoveBooking)
			bookings.POST("/:id/payment-method", deps.PaymentHandler.SelectPaymentMethod)
			bookings.POST("/:id/cash-collected", deps.PaymentHandler.ConfirmCashCollected)
		}

		// Earnings routes.
		earnings := authed.Group("/earnings")
		{
			earnings.GET("/today", deps.PaymentHandler.EarningsToday)
			earnings.GET("/total", deps.PaymentHandler.EarningsTotal)
		}

		// Inquiry routes.
		inquiries := authed.Group("/inquiries")
		{
			inquiries.POST("", deps.InquiryHandler.FileInquiry)
			inquiries.GET("", deps.InquiryHandler.ListInquiries)
			inquiries.GET("/:id", deps.InquiryHandler.GetInquiry)
			inquiries.POST("/:id/resolve", middleware.RequireAdmin(), deps.InquiryHandler.ResolveInquiry)
		}
	}

	return router
}
