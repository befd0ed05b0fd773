package rest

import (
	"net/http"
	"os"

	"surveycast/internal/service"
	"surveycast/internal/transport/rest/handler"
	"surveycast/internal/transport/rest/middleware"
	"surveycast/internal/transport/ws"

	"github.com/gorilla/mux"
)

// Container holds all dependencies for the router
type Container struct {
	AuthService   *service.AuthService
	Engine        *service.Engine
	ExportService *service.ExportService
	WSHub         *ws.Hub
}

// NewRouter creates the API router with all endpoints
func NewRouter(c *Container) http.Handler {
	r := mux.NewRouter()

	// Initialize handlers
	authHandler := handler.NewAuthHandler(c.AuthService, c.Engine)
	rosterHandler := handler.NewRosterHandler(c.Engine)
	surveyHandler := handler.NewSurveyHandler(c.Engine)
	resultsHandler := handler.NewResultsHandler(c.Engine, c.ExportService)
	answerHandler := handler.NewAnswerHandler(c.Engine)
	wsHandler := ws.NewHandler(c.WSHub, c.AuthService, c.Engine)

	// Initialize middleware
	authMW := middleware.NewAuthMiddleware(c.AuthService)

	// CORS middleware (apply first)
	r.Use(corsMiddleware)

	// API v1 routes
	v1 := r.PathPrefix("/v1").Subrouter()

	// Public routes
	v1.HandleFunc("/auth/login", authHandler.Login).Methods("POST", "OPTIONS")

	// WebSocket routes (public with token in query param)
	v1.HandleFunc("/ws/recipient", wsHandler.RecipientWS).Methods("GET")

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	// Admin routes (require admin auth)
	adminRoutes := v1.NewRoute().Subrouter()
	adminRoutes.Use(authMW.RequireAdmin)

	adminRoutes.HandleFunc("/auth/recipient", authHandler.RecipientToken).Methods("POST", "OPTIONS")
	adminRoutes.HandleFunc("/roster", rosterHandler.Upload).Methods("POST", "OPTIONS")
	adminRoutes.HandleFunc("/survey/title", surveyHandler.SubmitTitle).Methods("POST", "OPTIONS")
	adminRoutes.HandleFunc("/survey/questions", surveyHandler.AddQuestion).Methods("POST", "OPTIONS")
	adminRoutes.HandleFunc("/survey/reset", surveyHandler.Reset).Methods("POST", "OPTIONS")
	adminRoutes.HandleFunc("/survey/launch", surveyHandler.Launch).Methods("POST", "OPTIONS")
	adminRoutes.HandleFunc("/survey/progress", surveyHandler.Progress).Methods("GET", "OPTIONS")
	adminRoutes.HandleFunc("/results", resultsHandler.List).Methods("GET", "OPTIONS")
	adminRoutes.HandleFunc("/results/export", resultsHandler.Export).Methods("POST", "OPTIONS")
	adminRoutes.HandleFunc("/results/download", resultsHandler.Download).Methods("GET", "OPTIONS")
	adminRoutes.HandleFunc("/results/snapshot", resultsHandler.GetSnapshot).Methods("GET", "OPTIONS")

	// Recipient routes (require recipient auth)
	recipientRoutes := v1.NewRoute().Subrouter()
	recipientRoutes.Use(authMW.RequireRecipient)

	recipientRoutes.HandleFunc("/answers", answerHandler.Submit).Methods("POST", "OPTIONS")

	return r
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowedOrigins := os.Getenv("CORS_ALLOWED_ORIGINS")
		if allowedOrigins == "" {
			allowedOrigins = "*"
		}

		allowedMethods := os.Getenv("CORS_ALLOWED_METHODS")
		if allowedMethods == "" {
			allowedMethods = "GET, POST, PUT, DELETE, OPTIONS"
		}

		allowedHeaders := os.Getenv("CORS_ALLOWED_HEADERS")
		if allowedHeaders == "" {
			allowedHeaders = "Content-Type, Authorization"
		}

		w.Header().Set("Access-Control-Allow-Origin", allowedOrigins)
		w.Header().Set("Access-Control-Allow-Methods", allowedMethods)
		w.Header().Set("Access-Control-Allow-Headers", allowedHeaders)

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
