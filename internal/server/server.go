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

	"github.com/aoki-blog/apiserver/config"
	"github.com/aoki-blog/apiserver/internal/auth"
	"github.com/aoki-blog/apiserver/internal/db"
	"github.com/aoki-blog/apiserver/internal/events"
	"github.com/aoki-blog/apiserver/internal/handlers"
	"github.com/aoki-blog/apiserver/internal/logging"
	"github.com/aoki-blog/apiserver/internal/services"
	"github.com/aoki-blog/apiserver/internal/storage"
	"github.com/aoki-blog/apiserver/internal/store"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Server wraps the HTTP server and its collaborators.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	db         *sql.DB
	publisher  *events.Publisher
}

// New constructs a Server: database, token service, optional broker and
// media backends, and the public/private route trees.
func New(ctx context.Context, cfg config.Config) (*Server, error) {
	log := logging.New(cfg.Dev())

	dbConn, err := db.Open(ctx, cfg)
	if err != nil {
		return nil, err
	}

	jwtSecret := strings.TrimSpace(os.Getenv("JWT_SECRET"))
	if jwtSecret == "" {
		_ = dbConn.Close()
		return nil, errors.New("JWT_SECRET is required")
	}
	tokens := auth.NewTokenService([]byte(jwtSecret), auth.DefaultTokenTTL)

	publisher, err := newPublisher(ctx, cfg, log)
	if err != nil {
		_ = dbConn.Close()
		return nil, err
	}

	covers, err := newCoverStore(ctx, cfg)
	if err != nil {
		_ = dbConn.Close()
		_ = publisher.Close()
		return nil, err
	}

	userRepo := store.NewUserRepository(dbConn)
	postRepo := store.NewPostRepository(dbConn)
	commentRepo := store.NewCommentRepository(dbConn)

	userService := services.NewUserService(userRepo)
	commentService := services.NewCommentService(commentRepo, publisher)
	postService := services.NewPostService(postRepo, commentRepo, covers, publisher, log)

	deps := handlers.Deps{
		Users:    userService,
		Posts:    postService,
		Comments: commentService,
		Tokens:   tokens,
		Log:      log,
		Dev:      cfg.Dev(),
	}

	router := chi.NewRouter()
	router.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Recoverer,
		middleware.Logger,
		middleware.Timeout(60*time.Second),
	)
	router.NotFound(handlers.NotFound)
	router.Get("/", handlers.Home)
	router.Get("/healthz", handlers.Healthz)
	router.Route("/api/public", func(r chi.Router) {
		handlers.PublicRouter(r, deps)
	})
	router.Route("/api/private", func(r chi.Router) {
		handlers.PrivateRouter(r, deps)
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
		publisher:  publisher,
	}, nil
}

// Router exposes the chi router for route registration.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Start runs the HTTP server.
func (s *Server) Start() error {
	return s.httpServer.ListenAndServe()
}

// Shutdown attempts a graceful shutdown.
func (s *Server) Shutdown() error {
	if s.db != nil {
		_ = s.db.Close()
	}
	_ = s.publisher.Close()
	return s.httpServer.Close()
}

// NewEventsBackend builds the broker backend selected by config, or nil
// when events are disabled.
func NewEventsBackend(ctx context.Context, cfg config.Config) (events.Backend, error) {
	switch cfg.Events.Backend {
	case "":
		return nil, nil
	case "rabbitmq":
		return events.NewRabbitMQBackend(cfg.Events.RabbitMQ)
	case "pubsub":
		return events.NewPubSubBackend(ctx, cfg.Events.PubSub)
	default:
		return nil, fmt.Errorf("unknown events backend %q", cfg.Events.Backend)
	}
}

func newPublisher(ctx context.Context, cfg config.Config, log logging.Logger) (*events.Publisher, error) {
	backend, err := NewEventsBackend(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return events.NewPublisher(backend, log), nil
}

func newCoverStore(ctx context.Context, cfg config.Config) (*storage.CoverStore, error) {
	var backend storage.ObjectStorage
	switch cfg.Media.Backend {
	case "":
		return nil, nil
	case "minio":
		minioBackend, err := storage.NewMinioBackend(cfg.Media.Minio)
		if err != nil {
			return nil, err
		}
		backend = minioBackend
	case "gcs":
		gcsBackend, err := storage.NewGCSBackend(ctx, cfg.Media.GCS)
		if err != nil {
			return nil, err
		}
		backend = gcsBackend
	default:
		return nil, fmt.Errorf("unknown media backend %q", cfg.Media.Backend)
	}

	covers := storage.NewCoverStore(backend)
	if err := covers.EnsureBucket(ctx); err != nil {
		return nil, err
	}
	return covers, nil
}
