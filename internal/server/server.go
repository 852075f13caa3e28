package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"

	"github.com/Marcel-mosha/task-manager/config"
	"github.com/Marcel-mosha/task-manager/internal/db"
	"github.com/Marcel-mosha/task-manager/internal/events"
	"github.com/Marcel-mosha/task-manager/internal/handlers"
	"github.com/Marcel-mosha/task-manager/internal/mq"
	"github.com/Marcel-mosha/task-manager/internal/services"
	"github.com/Marcel-mosha/task-manager/internal/session"
	"github.com/Marcel-mosha/task-manager/internal/store"
)

// Server wraps the HTTP server and its dependencies.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	db         *sql.DB
	rdb        *redis.Client
	publisher  mq.Publisher
}

// New constructs a Server with its full dependency graph: postgres
// stores, optional Redis sessions, optional event publication, services,
// and the chi router.
func New(ctx context.Context, cfg config.Config) (*Server, error) {
	dbConn, err := db.Open(ctx, cfg)
	if err != nil {
		return nil, err
	}

	userRepo := store.NewUserRepository(dbConn)
	tokenRepo := store.NewTokenRepository(dbConn)
	taskRepo := store.NewTaskRepository(dbConn)

	authService := services.NewAuthService(userRepo, tokenRepo, services.DefaultPasswordPolicy(cfg.Password))

	var rdb *redis.Client
	var sessions handlers.SessionStore
	if cfg.Redis.Addr != "" {
		if strings.TrimSpace(cfg.Session.Secret) == "" {
			_ = dbConn.Close()
			return nil, errors.New("SESSION_SECRET is required when Redis is configured")
		}
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		sessions = session.NewStore(rdb, cfg.Session.Secret, sessionTTL(cfg))
	}

	publisher, err := mq.NewPublisher(ctx, cfg.MQ)
	if err != nil {
		_ = dbConn.Close()
		return nil, err
	}
	var taskEvents services.TaskEvents
	if publisher != nil {
		taskEvents = events.NewPublisher(publisher, cfg.MQ.Topic)
	}

	taskService := services.NewTaskService(taskRepo, taskEvents)

	authHandler := handlers.NewAuthHandler(authService, sessions, cfg.Session.CookieName, sessionTTL(cfg))

	router := chi.NewRouter()
	router.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Recoverer,
		middleware.Logger,
		middleware.Timeout(60*time.Second),
	)
	router.Get("/healthz", handlers.Healthz)
	handlers.AuthRouter(router, authHandler)
	router.Route("/tasks", func(r chi.Router) {
		handlers.TaskRouter(r, taskService, authHandler.RequireAuth)
	})

	port := cfg.ServerPort
	if port == 0 {
		port = 8080
	}

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Server{
		httpServer: httpServer,
		router:     router,
		db:         dbConn,
		rdb:        rdb,
		publisher:  publisher,
	}, nil
}

// Router exposes the chi router for route registration.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Start runs the HTTP server.
func (s *Server) Start() error {
	fmt.Fprintf(os.Stderr, "listening on %s\n", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown closes the server and its backing connections.
func (s *Server) Shutdown() error {
	if s.publisher != nil {
		_ = s.publisher.Close()
	}
	if s.rdb != nil {
		_ = s.rdb.Close()
	}
	if s.db != nil {
		_ = s.db.Close()
	}
	return s.httpServer.Close()
}

func sessionTTL(cfg config.Config) time.Duration {
	hours := cfg.Session.TTLHours
	if hours <= 0 {
		hours = 24
	}
	return time.Duration(hours) * time.Hour
}
