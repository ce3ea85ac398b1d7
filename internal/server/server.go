// Package server wires the portal's HTTP routes over the store
// interfaces. One file per concern: sessions, auth, listings, upload,
// download, delete.
package server

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"

	"github.com/dreamingfree09/study-portal/internal/store"
)

// Config carries every dependency a handler needs. Stores are interfaces
// so tests can substitute in-memory fakes.
type Config struct {
	Addr           string
	Log            *slog.Logger
	Sessions       Sessions
	Users          store.UserStore
	Materials      store.MaterialStore
	Blobs          store.BlobStore
	MaxUploadBytes int64

	// Ping reports metadata-store connectivity for /health. Optional.
	Ping func(ctx context.Context) error
}

type Server struct {
	httpServer *http.Server
}

// New builds the router and the HTTP server around it.
func New(cfg Config) *Server {
	s := &http.Server{
		Addr:              cfg.Addr,
		Handler:           cfg.router(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return &Server{httpServer: s}
}

func (cfg Config) router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(cfg.requestLogger)
	r.Use(middleware.Recoverer)

	// Public routes.
	r.Get("/", cfg.indexHandler())
	r.Post("/login", cfg.loginHandler())
	r.Get("/register", cfg.registerFormHandler())
	r.Post("/register_user", cfg.registerHandler())
	r.Get("/logout", cfg.logoutHandler())
	r.Get("/health", cfg.healthHandler())

	// Routes for any authenticated user.
	r.Group(func(r chi.Router) {
		r.Use(cfg.Sessions.RequireUser)

		r.Get("/dashboard", cfg.dashboardHandler())
		r.Get("/materials", cfg.materialsHandler())
		r.Get("/question-papers", cfg.questionPapersHandler())
		r.Get("/material/{id}", cfg.serveFileHandler())
		r.Get("/preview/{id}", cfg.previewHandler())
		r.Get("/videos", cfg.videosHandler())

		// Admin-only routes.
		r.Route("/admin", func(r chi.Router) {
			r.Use(cfg.Sessions.RequireAdmin)

			r.Get("/upload", cfg.uploadFormHandler())
			r.Post("/upload_pdf", cfg.uploadHandler())
			r.Get("/delete/{id}", cfg.deleteHandler())
		})
	})

	return r
}

// requestLogger emits one structured line per request.
func (cfg Config) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		cfg.Log.Info("request",
			slog.String("request_id", middleware.GetReqID(r.Context())),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", ww.Status()),
			slog.Int("bytes", ww.BytesWritten()),
			slog.Duration("duration", time.Since(start)),
			slog.String("remote", r.RemoteAddr),
		)
	})
}

func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return err
	}
	return s.httpServer.Serve(ln)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
