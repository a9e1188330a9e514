package routes

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/daemonXid/daemon-one/app"
	"github.com/daemonXid/daemon-one/handlers"
	"github.com/daemonXid/daemon-one/middleware"
)

// SetupRoutes configures all application routes and middleware
func SetupRoutes(deps *app.Dependencies) http.Handler {
	r := chi.NewRouter()

	// Core middleware
	r.Use(chimiddleware.RequestID)
	r.Use(propagateRequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(60 * time.Second))

	// CORS middleware
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:*", "https://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	healthHandler := handlers.NewHealthHandler(deps.DB.DB, deps.Facade.ActiveProvider(), deps.Logger)
	aiHandler := handlers.NewAIHandler(deps.Facade, deps.AuditService, deps.Logger)
	chatHandler := handlers.NewChatHandler(deps.ChatService, deps.Logger)
	paperHandler := handlers.NewPaperHandler(deps.PaperService, deps.Logger)
	visionHandler := handlers.NewVisionHandler(deps.VisionService, deps.Logger)
	auditHandler := handlers.NewAuditHandler(deps.AuditService, deps.Logger)
	authHandler := handlers.NewAuthHandler(deps.Validator, deps.Config.IsProduction(), deps.Logger)

	// Health check endpoints
	r.Get("/health", healthHandler.HandleHealth)
	r.Get("/health/live", healthHandler.HandleLiveness)
	r.Get("/health/ready", healthHandler.HandleReadiness)

	// Development token endpoint, disabled in production
	r.Post("/auth/token", authHandler.HandleToken)

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(deps.AuthMiddleware.RequireAuth)

		// Direct provider façade access
		r.Route("/ai", func(r chi.Router) {
			r.Post("/completions", aiHandler.HandleCompletion)
			r.Post("/embeddings", aiHandler.HandleEmbedding)
		})

		// Knowledge-base chat
		r.Route("/chat", func(r chi.Router) {
			r.Post("/messages", chatHandler.HandleAsk)
			r.Get("/messages", chatHandler.HandleHistory)
		})

		// Research paper analysis
		r.Route("/papers", func(r chi.Router) {
			r.Post("/", paperHandler.HandleCreate)
			r.Get("/", paperHandler.HandleList)
			r.Get("/{id}", paperHandler.HandleGet)
			r.Post("/{id}/process", paperHandler.HandleProcess)
			r.Post("/{id}/translate", paperHandler.HandleTranslate)
			r.Get("/{id}/formulas", paperHandler.HandleFormulas)
		})

		// Visual media analysis
		r.Route("/media", func(r chi.Router) {
			r.Post("/", visionHandler.HandleRegister)
			r.Get("/", visionHandler.HandleList)
			r.Get("/{id}", visionHandler.HandleGet)
			r.Post("/{id}/analyze", visionHandler.HandleAnalyze)
			r.Get("/{id}/analyses", visionHandler.HandleAnalyses)
		})

		// Audit logs (require admin role)
		r.Route("/audit", func(r chi.Router) {
			r.Use(deps.AuthMiddleware.RequireRole("admin"))
			r.Get("/logs", auditHandler.HandleList)
		})
	})

	// 404 handler
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"endpoint not found"}`))
	})

	return r
}

// propagateRequestID copies the chi request ID into the application context
// key so services can attach it to audit records.
func propagateRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := chimiddleware.GetReqID(r.Context())
		if requestID != "" {
			r = r.WithContext(middleware.WithRequestID(r.Context(), requestID))
		}
		next.ServeHTTP(w, r)
	})
}
