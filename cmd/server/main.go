package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	"parkboard/internal/api"
	"parkboard/internal/auth"
	"parkboard/internal/repository"
	"parkboard/internal/rtdb"
	"parkboard/internal/service"
)

func main() {
	godotenv.Load()
	ctx := context.Background()

	var store rtdb.Store
	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		pqStore, err := rtdb.NewPQStore(dbURL)
		if err != nil {
			log.Fatalf("Failed to open backing store: %v", err)
		}
		defer pqStore.Close()
		store = pqStore
		log.Println("Using Postgres-backed store")
	} else {
		store = rtdb.NewMemStore()
		log.Println("DATABASE_URL not set, using in-memory store")
	}

	repo := repository.NewParkingRepository(store)
	userRepo := repository.NewUserRepository(envOr("USERS_FILE", "users.json"))

	notify := service.NewNotifyService()
	userSvc := service.NewUserService(userRepo)
	reservationSvc := service.NewReservationService(repo, notify)
	adminSvc := service.NewAdminService(repo)
	jobSvc := service.NewJobService(repo, notify)
	adminAuthSvc := service.NewAdminAuthService(
		os.Getenv("ADMIN_EMAIL"),
		os.Getenv("ADMIN_PASSWORD_HASH"),
		os.Getenv("JWT_SECRET"),
	)

	hub := api.NewWebSocketHub()
	go hub.Run()

	syncSvc := service.NewSyncService(repo, hub, service.DefaultCards())
	if err := syncSvc.Start(ctx); err != nil {
		log.Fatalf("Failed to start synchronizer: %v", err)
	}

	// The in-memory store starts empty every boot; seed it so the
	// dashboard has data without an admin call.
	if _, ok := store.(*rtdb.MemStore); ok {
		if err := adminSvc.Provision(ctx, false); err != nil && !errors.Is(err, service.ErrAlreadyProvisioned) {
			log.Fatalf("Failed to seed store: %v", err)
		}
	}

	c := cron.New()
	c.AddFunc("@every 1m", func() {
		if _, err := jobSvc.CheckCounterDrift(ctx); err != nil {
			log.Printf("Drift sweep failed: %v", err)
		}
	})
	c.Start()

	userHandler := api.NewUserHandler(userSvc)
	reservationHandler := api.NewReservationHandler(reservationSvc)
	dashboardHandler := api.NewDashboardHandler(syncSvc)
	wsHandler := api.NewWebSocketHandler(hub, syncSvc.View)
	adminHandler := api.NewAdminHandler(adminAuthSvc, adminSvc, jobSvc)

	r := mux.NewRouter()

	// Public endpoints
	r.HandleFunc("/api/register", userHandler.Register).Methods("POST")
	r.HandleFunc("/api/login", userHandler.Login).Methods("POST")
	r.HandleFunc("/api/reservations", reservationHandler.ReserveSlot).Methods("POST")
	r.HandleFunc("/api/dashboard", dashboardHandler.GetDashboard).Methods("GET")
	r.HandleFunc("/ws", wsHandler.HandleWebSocket)

	// Admin endpoints (protected)
	r.HandleFunc("/admin/login", adminHandler.Login).Methods("POST")
	admin := r.PathPrefix("/admin").Subrouter()
	admin.Use(auth.AdminAuthMiddleware(os.Getenv("JWT_SECRET")))
	admin.HandleFunc("/provision", adminHandler.Provision).Methods("POST")
	admin.HandleFunc("/bookings", adminHandler.ListBookings).Methods("GET")
	admin.HandleFunc("/drift", adminHandler.DriftReport).Methods("GET")

	// Static entry page
	r.PathPrefix("/").Handler(http.FileServer(http.Dir(envOr("WEB_DIR", "web"))))

	handler := handlers.CORS(
		handlers.AllowedOrigins([]string{"*"}),
		handlers.AllowedMethods([]string{"GET", "POST", "OPTIONS"}),
		handlers.AllowedHeaders([]string{"Content-Type", "Authorization", "X-User-ID", "X-User-Email"}),
	)(r)
	handler = handlers.LoggingHandler(os.Stdout, handler)

	port := envOr("PORT", "8080")
	log.Printf("Server running on port %s", port)
	log.Fatal(http.ListenAndServe(":"+port, handler))
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
