package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"

	"Friendbook/internals/config"
	"Friendbook/internals/handlers"
	"Friendbook/internals/handlers/posts"
	"Friendbook/internals/handlers/users"
	"Friendbook/internals/logger"
)

const shutdownTimeout = 5 * time.Second

// Routes maps every page to its handler.
func Routes(env *handlers.Env) *http.ServeMux {
	router := http.NewServeMux()
	router.HandleFunc("GET /{$}", posts.FeedHandler(env))
	router.HandleFunc("GET /register", users.RegisterPage(env))
	router.HandleFunc("POST /register", users.RegisterHandler(env))
	router.HandleFunc("GET /login", users.LoginPage(env))
	router.HandleFunc("POST /login", users.LoginHandler(env))
	router.HandleFunc("GET /logout", users.LogoutHandler(env))
	router.HandleFunc("GET /create_post", posts.CreatePostPage(env))
	router.HandleFunc("POST /create_post", posts.CreatePostHandler(env))
	return router
}

// Handler wraps the routes in the middleware chain. CORS is only applied
// when origins are configured.
func Handler(env *handlers.Env, log logrus.FieldLogger, allowedOrigins []string) http.Handler {
	var h http.Handler = Routes(env)
	if len(allowedOrigins) > 0 {
		h = cors.New(cors.Options{
			AllowedOrigins:   allowedOrigins,
			AllowedMethods:   []string{http.MethodGet, http.MethodPost},
			AllowedHeaders:   []string{"Content-Type"},
			AllowCredentials: true,
		}).Handler(h)
	}
	h = middleware.Recoverer(h)
	h = logger.Requests(log)(h)
	h = middleware.RealIP(h)
	h = middleware.RequestID(h)
	return h
}

type Server struct {
	http *http.Server
	log  logrus.FieldLogger
}

func New(cfg *config.Config, env *handlers.Env, log logrus.FieldLogger) *Server {
	return &Server{
		http: &http.Server{
			Addr:         cfg.Addr(),
			Handler:      Handler(env, log, cfg.Cors.AllowedOrigins),
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
			IdleTimeout:  cfg.Server.IdleTimeout,
		},
		log: log,
	}
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.log.Infof("Server started on %s", s.http.Addr)
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	s.log.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.http.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	s.log.Info("Server stopped")
	return nil
}
