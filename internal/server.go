package internal

import (
	"context"
	"log/slog"
	"net"
	"net/http"

	"connectrpc.com/grpchealth"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/kazz187/taskboard/internal/board"
	"github.com/kazz187/taskboard/internal/config"
	"github.com/kazz187/taskboard/pkg/cerr"
	"github.com/kazz187/taskboard/pkg/clog"
)

type Server struct {
	server      *http.Server
	env         *config.Env
	boardServer *board.Server
}

func NewServer(env *config.Env, boardServer *board.Server) *Server {
	s := &Server{
		env:         env,
		boardServer: boardServer,
	}
	s.server = &http.Server{
		Addr:    net.JoinHostPort(env.HTTPHost, env.HTTPPort),
		Handler: s.Handler(),
	}
	return s
}

// Handler builds the full HTTP handler tree.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Route("/api", func(r chi.Router) {
		r.Use(clog.SlogChiMiddleware())
		r.Get("/events", s.boardServer.StreamEvents)
		jsonResponse := cerr.NewJSONResponseChiMiddleware()
		r.Group(func(r chi.Router) {
			r.Use(jsonResponse)
			s.boardServer.Routes(r)
		})
		r.NotFound(jsonResponse(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cerr.SetNewJSONError(r.Context(), cerr.NotFound, "not found", nil)
		})).ServeHTTP)
	})

	mux := http.NewServeMux()
	mux.Handle("/health", &HealthChecker{})
	mux.Handle("/api/", r)
	mux.Handle(grpchealth.NewHandler(grpchealth.NewStaticChecker()))

	return h2c.NewHandler(cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"*"},
	}).Handler(mux), &http2.Server{})
}

// ListenAndServe starts the HTTP server. ctx becomes the base context of every
// request, so cancelling it also ends open event streams.
// A server that was shut down before it started returns http.ErrServerClosed.
func (s *Server) ListenAndServe(ctx context.Context) error {
	slog.Info("starting server", "addr", s.server.Addr)
	s.server.BaseContext = func(_ net.Listener) context.Context { return ctx }
	return s.server.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

type HealthChecker struct{}

func (hc *HealthChecker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}
