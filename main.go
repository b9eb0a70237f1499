package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"hostel-backend/config"
	"hostel-backend/controllers"
	"hostel-backend/gateway"
	"hostel-backend/routes"
	"hostel-backend/services"
)

func main() {
	// Load .env (optional)
	if err := godotenv.Load(); err != nil {
		log.Println(".env not found or couldn't load it; continuing with environment variables")
	}

	env := config.LoadEnv()
	if env.GinMode != "" {
		os.Setenv("GIN_MODE", env.GinMode)
	}

	if env.GatewaySecretKey == "" {
		log.Println("warning: GATEWAY_SECRET_KEY is not set; payment calls will be rejected by the gateway")
	}

	if err := config.ConnectDatabase(); err != nil {
		log.Fatalf("database connect failed: %v", err)
	}
	db := config.DB
	log.Println("database connection established, migrations applied")

	gw := gateway.NewClient(env.GatewayBaseURL, env.GatewaySecretKey, env.GatewayTimeout)

	// Services
	roomService := services.NewRoomService(db)
	allocationService := services.NewAllocationService(db, roomService)
	billingService := services.NewBillingService(db)
	paymentService := services.NewPaymentService(db, gw, allocationService, env.GatewayCallbackURL, env.Currency)
	lifecycleService := services.NewLifecycleService(db, roomService)

	// Controllers
	authController := controllers.NewAuthController(db, env.JWTSecret)
	roomController := controllers.NewRoomController(roomService)
	bookingController := controllers.NewBookingController(allocationService)
	billingController := controllers.NewBillingController(billingService)
	paymentController := controllers.NewPaymentController(paymentService)
	jobsController := controllers.NewJobsController(lifecycleService)

	router := routes.SetupRouter(
		authController,
		roomController,
		bookingController,
		billingController,
		paymentController,
		jobsController,
		env.JWTSecret,
	)

	var scheduler *services.Scheduler
	if env.SchedulerEnabled {
		scheduler = services.NewScheduler(lifecycleService)
		scheduler.Start()
	} else {
		log.Println("lifecycle scheduler disabled by SCHEDULER_ENABLED=false")
	}

	srv := &http.Server{
		Addr:              env.AppAddr,
		Handler:           router,
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      20 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Printf("server starting on %s", env.AppAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("ListenAndServe(): %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	log.Println("shutdown signal received, shutting down server...")

	if scheduler != nil {
		scheduler.Stop()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("server forced to shutdown: %v", err)
	}

	log.Println("server stopped gracefully")
}
