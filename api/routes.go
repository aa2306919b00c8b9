package api

import (
	"fmt"
	"net/http"

	"github.com/giglink/giglink/internal/blockchain"
	"github.com/giglink/giglink/internal/chat"
	"github.com/giglink/giglink/internal/config"
	"github.com/giglink/giglink/internal/db"
	"github.com/giglink/giglink/internal/repository/sqlite"
	"github.com/giglink/giglink/internal/skills"
	"github.com/giglink/giglink/pkg/models"
	"github.com/gorilla/mux"
)

func SetupRoutes(cfg *config.Config, version, buildTime string, database *db.DB, hub *chat.Hub) (*mux.Router, error) {
	r := mux.NewRouter()

	// Middleware chain
	r.Use(LoggingMiddleware)
	r.Use(CORSMiddleware(cfg.AllowedOrigins))
	r.Use(RecoveryMiddleware)

	// Repository
	repo := sqlite.New(database, logger)

	verifier := blockchain.NewVerifier(cfg.Explorer.APIKey, cfg.Explorer.Timeout, logger)

	llm, err := skills.NewLLMExtractor(cfg.Extractor)
	if err != nil {
		return nil, fmt.Errorf("create llm extractor: %w", err)
	}

	// Create handlers
	systemHandler := &SystemHandler{}
	authHandler := NewAuthHandler(repo, cfg.JWTSecret, cfg.TokenDuration)
	jobsHandler, err := NewJobsHandler(repo, verifier)
	if err != nil {
		return nil, err
	}
	connectionsHandler := NewConnectionsHandler(repo, repo)
	aiHandler := NewAIHandler(llm)
	profileHandler := NewProfileHandler(repo)
	chatHandler := NewChatHandler(hub, repo, cfg.AllowedOrigins)

	// Open endpoints
	r.HandleFunc("/version", systemHandler.VersionHandler(version, buildTime)).Methods("GET")
	r.HandleFunc("/health", systemHandler.HealthHandler).Methods("GET")
	r.HandleFunc("/{role:producer|freelancer}/signup", authHandler.Signup).Methods("POST")
	r.HandleFunc("/{role:producer|freelancer}/login", authHandler.Login).Methods("POST")

	// Everything else requires a bearer token
	protected := r.PathPrefix("/").Subrouter()
	protected.Use(JWTAuthMiddlewareWithSecret(cfg.JWTSecret))

	producerOnly := RequireRole(models.RoleProducer)
	freelancerOnly := RequireRole(models.RoleFreelancer)

	// Job endpoints
	protected.Handle("/producer/jobs", producerOnly(http.HandlerFunc(jobsHandler.CreateJob))).Methods("POST")
	protected.Handle("/producer/jobs", producerOnly(http.HandlerFunc(jobsHandler.ListProducerJobs))).Methods("GET")
	protected.Handle("/producer/jobs/{id:[0-9]+}/applicants", producerOnly(http.HandlerFunc(jobsHandler.ListApplicants))).Methods("GET")
	protected.Handle("/producer/jobs/{id:[0-9]+}/payment", producerOnly(http.HandlerFunc(jobsHandler.RecordPayment))).Methods("PATCH")
	protected.HandleFunc("/jobs", jobsHandler.ListJobs).Methods("GET")
	protected.Handle("/jobs/{id:[0-9]+}/apply", freelancerOnly(http.HandlerFunc(jobsHandler.Apply))).Methods("POST")
	protected.Handle("/freelancer/applied-jobs", freelancerOnly(http.HandlerFunc(jobsHandler.ListAppliedJobs))).Methods("GET")

	// Connection endpoints
	protected.HandleFunc("/connection-request", connectionsHandler.CreateRequest).Methods("POST")
	protected.HandleFunc("/all-incoming-connection-requests", connectionsHandler.ListIncoming).Methods("GET")
	protected.HandleFunc("/accept-connection-request/{id:[0-9]+}", connectionsHandler.Accept).Methods("PATCH")
	protected.HandleFunc("/reject-connection-request/{id:[0-9]+}", connectionsHandler.Reject).Methods("PATCH")

	// Profile endpoints
	protected.HandleFunc("/profile", profileHandler.Get).Methods("GET")
	protected.HandleFunc("/profile", profileHandler.Update).Methods("PUT")

	// AI endpoints
	protected.HandleFunc("/ai/extract-skills", aiHandler.ExtractSkills).Methods("POST")

	// Chat endpoints
	protected.HandleFunc("/ws", chatHandler.ServeWS).Methods("GET")
	protected.HandleFunc("/chat/history", chatHandler.History).Methods("GET")

	return r, nil
}
