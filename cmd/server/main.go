package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/Prakhar2818/NGO-APP/internal/config"
	"github.com/Prakhar2818/NGO-APP/internal/database"
	"github.com/Prakhar2818/NGO-APP/internal/handlers"
	"github.com/Prakhar2818/NGO-APP/internal/repository"
	"github.com/Prakhar2818/NGO-APP/internal/routing"
	cronjobs "github.com/Prakhar2818/NGO-APP/internal/scheduler"
	"github.com/Prakhar2818/NGO-APP/internal/services"
	"github.com/Prakhar2818/NGO-APP/pkg/email"
	"github.com/Prakhar2818/NGO-APP/pkg/logger"
	"github.com/Prakhar2818/NGO-APP/pkg/middleware"
	"github.com/gorilla/mux"
	"github.com/rs/cors"
)

func main() {
	// Load configuration from .env file
	cfg := config.LoadConfig()

	logger.InitLogger()
	logger.Log.Info("Logger initialized")

	// Connect to MongoDB
	db, err := database.ConnectDB(cfg)
	if err != nil {
		log.Fatalf("Database connection error: %v", err)
	}

	// --- Repositories ---
	donationRepo := repository.NewDonationRepository(db)
	userRepo := repository.NewUserRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)

	// --- Collaborators ---
	hub := handlers.NewHub(cfg.JWTSecret)
	mailSender := email.NewSender(cfg.SMTPSender, cfg.SMTPPassword, cfg.SMTPHost, cfg.SMTPPort)
	routeClient := routing.NewClient(cfg.OSRMBaseURL, cfg.RouteTimeout)

	// --- Services ---
	notifierService := services.NewNotifierService(donationRepo, userRepo, notificationRepo, hub, mailSender)
	donationService := services.NewDonationService(donationRepo, notifierService)
	browseService := services.NewBrowseService(donationRepo, routeClient)
	notificationService := services.NewNotificationService(notificationRepo)

	// --- Handlers ---
	donationHandler := handlers.NewDonationHandler(donationService, browseService, userRepo)
	routeHandler := handlers.NewRouteHandler(browseService)
	notificationHandler := handlers.NewNotificationHandler(notificationService)

	// Initialize Gorilla Mux router
	router := mux.NewRouter()

	// Restaurant routes
	restaurantRoutes := router.PathPrefix("/donations").Subrouter()
	restaurantRoutes.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	restaurantRoutes.Use(middleware.RequireRole("RESTAURANT"))
	restaurantRoutes.HandleFunc("", donationHandler.CreateDonationHandler).Methods("POST")
	restaurantRoutes.HandleFunc("/restaurant/dashboard", donationHandler.RestaurantDashboardHandler).Methods("GET")
	restaurantRoutes.HandleFunc("/{id}", donationHandler.UpdateDonationHandler).Methods("PATCH")
	restaurantRoutes.HandleFunc("/{id}", donationHandler.DeleteDonationHandler).Methods("DELETE")

	// NGO routes
	ngoRoutes := router.PathPrefix("/donations").Subrouter()
	ngoRoutes.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	ngoRoutes.Use(middleware.RequireRole("NGO"))
	ngoRoutes.HandleFunc("/browse", donationHandler.BrowseDonationsHandler).Methods("GET")
	ngoRoutes.HandleFunc("/route", routeHandler.GetRouteHandler).Methods("GET")
	ngoRoutes.HandleFunc("/ngo/history", donationHandler.NGOHistoryHandler).Methods("GET")
	ngoRoutes.HandleFunc("/{id}/accept", donationHandler.AcceptDonationHandler).Methods("POST")
	ngoRoutes.HandleFunc("/{id}/pickup", donationHandler.MarkPickedUpHandler).Methods("PATCH")

	// Notification feed
	notificationRoutes := router.PathPrefix("/notifications").Subrouter()
	notificationRoutes.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	notificationRoutes.HandleFunc("", notificationHandler.GetNotificationsHandler).Methods("GET")
	notificationRoutes.HandleFunc("/{id}/read", notificationHandler.MarkNotificationReadHandler).Methods("PATCH")

	// Real-time donation feed (token auth via query param)
	router.HandleFunc("/ws", hub.ServeWS)

	// Apply middleware for logging
	router.Use(middleware.LoggingMiddleware)

	// Background jobs
	cronjobs.StartDonationCronJobs(notifierService)

	// Start the HTTP server
	port := cfg.Port
	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"http://localhost:3000"}, // adjust to frontend origin
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})

	handler := c.Handler(router)

	fmt.Printf("Server running on port %s\n", port)
	log.Fatal(http.ListenAndServe(":"+port, handler))
}
