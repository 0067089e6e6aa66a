package app

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/sirupsen/logrus"

	"github.com/markdave123-py/newsprint/internal/api/handlers"
	appMiddleware "github.com/markdave123-py/newsprint/internal/api/middlewares"
	"github.com/markdave123-py/newsprint/internal/config"
	"github.com/markdave123-py/newsprint/internal/core"
)

// Server wraps the HTTP server instance and its handlers.
type Server struct {
	httpServer *http.Server
	log        logrus.FieldLogger
}

// Deps are the components the routes are built from. Searcher, Embedder and
// LLM may be nil.
type Deps struct {
	Store    core.ArticleStore
	Searcher core.VectorSearcher
	Embedder core.EmbeddingProvider
	LLM      core.LLMProvider
	Queue    handlers.DocumentQueue
}

// NewServer builds and wires all routes.
func NewServer(cfg *config.Config, deps Deps, log logrus.FieldLogger) *Server {
	httpSrv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           NewRouter(cfg, deps, log),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return &Server{httpServer: httpSrv, log: log}
}

// NewRouter returns the chi router; tests drive it through httptest.
func NewRouter(cfg *config.Config, deps Deps, log logrus.FieldLogger) http.Handler {
	authHandler := handlers.NewAuthHandler(cfg.OperatorUser, cfg.OperatorPasswordHash, cfg.JWTSecret, cfg.TokenTTL)
	articleHandler := handlers.NewArticleHandler(deps.Store, deps.Searcher, deps.Embedder, deps.LLM, log)
	docHandler := handlers.NewDocumentHandler(cfg.InboxDir, deps.Queue, log)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RequestLogger(&middleware.DefaultLogFormatter{Logger: log, NoColor: true}))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8888"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Get("/health", healthHandler(deps.Store, cfg.PingTimeout))

	r.Route("/api", func(api chi.Router) {
		// public endpoints
		api.Post("/login", authHandler.Login)
		api.Get("/articles", articleHandler.ListArticles)
		api.Get("/articles/{id}", articleHandler.GetArticle)
		api.Post("/articles/search", articleHandler.SearchArticles)
		api.Post("/articles/ask", articleHandler.AskArticles)

		// protected endpoints
		api.Group(func(protected chi.Router) {
			protected.Use(appMiddleware.JWTMiddleware(cfg.JWTSecret))
			protected.Post("/documents/upload", docHandler.UploadDocument)
		})
	})

	return r
}

// healthHandler reports 200 while the store answers a ping, 503 otherwise.
func healthHandler(store core.ArticleStore, timeout time.Duration) http.HandlerFunc {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), timeout)
		defer cancel()

		status, code := "ok", http.StatusOK
		storeStatus := "ok"
		if err := store.Ping(ctx); err != nil {
			status, code, storeStatus = "degraded", http.StatusServiceUnavailable, err.Error()
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		_ = json.NewEncoder(w).Encode(map[string]string{"status": status, "store": storeStatus})
	}
}

// Start runs the HTTP server until Shutdown.
func (s *Server) Start() error {
	s.log.WithField("addr", s.httpServer.Addr).Info("HTTP server listening")
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info("Shutting down HTTP server...")
	return s.httpServer.Shutdown(ctx)
}
