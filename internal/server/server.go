// Package server exposes the calculator, advisor and article store over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/iamgilwell/hemat/internal/access"
	"github.com/iamgilwell/hemat/internal/ai"
	"github.com/iamgilwell/hemat/internal/content"
	"github.com/iamgilwell/hemat/internal/notification"
	"github.com/iamgilwell/hemat/internal/power"
	"github.com/iamgilwell/hemat/internal/publisher"
)

// Advisor produces tips and article drafts.
type Advisor interface {
	Analyze(ctx context.Context, req ai.AnalysisRequest) (*ai.Analysis, error)
	DraftArticle(ctx context.Context, req ai.DraftRequest) (*ai.Draft, error)
}

// ArticleStore is the persistence the article routes need.
type ArticleStore interface {
	Create(ctx context.Context, a *content.Article) error
	Get(ctx context.Context, id string) (*content.Article, error)
	GetPublished(ctx context.Context, id string) (*content.Article, error)
	Update(ctx context.Context, a *content.Article) error
	Delete(ctx context.Context, id string) error
	SetPublished(ctx context.Context, id string, published bool) error
	List(ctx context.Context, status content.Status) ([]*content.Article, error)
	FetchPage(ctx context.Context, offset int, f content.Filter) (content.Page, error)
}

// Options carries tunables from configuration.
type Options struct {
	Version         string
	DefaultRate     float64
	MinRate         float64
	PageSize        int
	MaxPageSize     int
	MaxBodyBytes    int64
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// Deps are the collaborators behind the routes. Advisor may be nil when no
// generative backend is configured.
type Deps struct {
	Calculator *power.Calculator
	Metrics    *power.Metrics
	Advisor    Advisor
	Articles   ArticleStore
	Access     *access.Manager
	Auditor    *notification.Auditor
	Events     publisher.Publisher
	Logger     *zap.Logger
}

// Server is the API server.
type Server struct {
	deps Deps
	opts Options
	mux  *http.ServeMux
	log  *zap.Logger
}

// New creates a server and registers its routes.
func New(deps Deps, opts Options) *Server {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Events == nil {
		deps.Events = publisher.Noop{}
	}
	if deps.Metrics == nil {
		deps.Metrics = power.NewMetrics()
	}
	if deps.Calculator == nil {
		deps.Calculator = power.NewCalculator(power.Options{})
	}
	if opts.DefaultRate <= 0 {
		opts.DefaultRate = 1500
	}
	if opts.PageSize <= 0 {
		opts.PageSize = content.DefaultPageSize
	}
	if opts.MaxPageSize < opts.PageSize {
		opts.MaxPageSize = opts.PageSize
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = 1 << 20
	}
	if opts.ShutdownTimeout <= 0 {
		opts.ShutdownTimeout = 10 * time.Second
	}

	s := &Server{
		deps: deps,
		opts: opts,
		mux:  http.NewServeMux(),
		log:  deps.Logger,
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /health", s.handleHealth)

	// Calculator
	s.mux.HandleFunc("POST /api/calculate", s.handleCalculate)
	s.mux.HandleFunc("POST /api/electricity-analysis", s.handleAnalysis)

	// Public articles
	s.mux.HandleFunc("GET /api/articles", s.handleListPublished)
	s.mux.HandleFunc("GET /api/articles/{id}", s.handleGetPublished)

	// Admin
	s.mux.HandleFunc("GET /api/admin/articles", s.admin(false, s.handleAdminList))
	s.mux.HandleFunc("GET /api/admin/articles/{id}", s.admin(false, s.handleAdminGet))
	s.mux.HandleFunc("POST /api/admin/articles", s.admin(true, s.handleCreate))
	s.mux.HandleFunc("PUT /api/admin/articles/{id}", s.admin(true, s.handleUpdate))
	s.mux.HandleFunc("DELETE /api/admin/articles/{id}", s.admin(true, s.handleDelete))
	s.mux.HandleFunc("POST /api/admin/articles/{id}/publish", s.admin(true, s.handlePublish(true)))
	s.mux.HandleFunc("POST /api/admin/articles/{id}/unpublish", s.admin(true, s.handlePublish(false)))
	s.mux.HandleFunc("POST /api/generate-content", s.admin(true, s.handleGenerate))
}

// Handler returns the routes wrapped in the logging and recovery middleware.
func (s *Server) Handler() http.Handler {
	return s.recoverer(s.requestLogger(s.mux))
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.Handler(),
		ReadTimeout:  s.opts.ReadTimeout,
		WriteTimeout: s.opts.WriteTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.log.Info("listening", zap.String("addr", addr), zap.String("version", s.opts.Version))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.opts.ShutdownTimeout)
		defer cancel()
		s.log.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// handleHealth handles GET /health
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, map[string]interface{}{
		"status":       "healthy",
		"version":      s.opts.Version,
		"calculations": s.deps.Metrics.Served(),
		"ai":           s.deps.Advisor != nil,
		"uptime":       s.deps.Metrics.Uptime().Round(time.Second).String(),
		"time":         time.Now().UTC().Format(time.RFC3339),
	}, http.StatusOK)
}

// clampRate applies the default and minimum tariff.
func (s *Server) clampRate(rate *float64) float64 {
	if rate == nil {
		return s.opts.DefaultRate
	}
	if *rate < s.opts.MinRate {
		return s.opts.MinRate
	}
	return *rate
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, s.opts.MaxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		s.writeError(w, "INVALID_JSON", err.Error(), http.StatusBadRequest)
		return false
	}
	return true
}

func (s *Server) publish(e publisher.Event) {
	if err := s.deps.Events.Publish(e); err != nil {
		s.log.Warn("event not published", zap.String("type", e.Type), zap.Error(err))
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, data interface{}, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Debug("writing response", zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, code, message string, status int) {
	s.writeJSON(w, map[string]string{
		"code":    code,
		"message": message,
	}, status)
}
