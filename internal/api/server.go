// Package api exposes the scoring engine over HTTP.
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"parkinson-insight/internal/ml"
	"parkinson-insight/internal/storage"
)

// RecordStore is the persistence the server needs.
type RecordStore interface {
	SavePrediction(rec storage.PredictionRecord) error
	GetPrediction(userID, id string) (storage.PredictionRecord, error)
	ListPredictions(userID string, limit int) ([]storage.PredictionRecord, error)
	DeletePrediction(userID, id string) error
	CountPredictions(userID string) (int, error)
}

// Publisher receives every stored record for live display.
type Publisher interface {
	Publish(record any)
}

// MetricsInterface is the subset of service metrics the server reports to.
type MetricsInterface interface {
	HTTPRequestInc(route string, code int)
	RateLimitedInc()
	StorageErrorsInc()
}

// Options configures a Server. Zero values disable the matching feature:
// no API key means no authentication, no rate means no rate limiting.
type Options struct {
	Port           int
	APIKey         string
	RateLimitRPS   float64
	RateLimitBurst int
	RequestTimeout time.Duration
	RecordPrefix   string
	MetricsHandler http.Handler
	Dashboard      http.Handler
	WebSocket      http.HandlerFunc
}

// Server provides the HTTP API for predictions and stored records.
type Server struct {
	engine  *ml.Engine
	store   RecordStore
	pub     Publisher
	metrics MetricsInterface
	opts    Options
	limiter *rate.Limiter
	router  *mux.Router
	server  *http.Server
}

// NewServer wires the routes. store, pub and metrics may be nil.
func NewServer(engine *ml.Engine, store RecordStore, pub Publisher, metrics MetricsInterface, opts Options) *Server {
	if opts.RecordPrefix == "" {
		opts.RecordPrefix = "pred"
	}
	if opts.RequestTimeout == 0 {
		opts.RequestTimeout = 10 * time.Second
	}

	s := &Server{
		engine:  engine,
		store:   store,
		pub:     pub,
		metrics: metrics,
		opts:    opts,
	}
	if opts.RateLimitRPS > 0 {
		burst := opts.RateLimitBurst
		if burst < 1 {
			burst = 1
		}
		s.limiter = rate.NewLimiter(rate.Limit(opts.RateLimitRPS), burst)
	}

	s.router = s.routes()
	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", opts.Port),
		Handler:           s.router,
		ReadHeaderTimeout: opts.RequestTimeout,
		ReadTimeout:       opts.RequestTimeout,
		WriteTimeout:      opts.RequestTimeout,
		IdleTimeout:       120 * time.Second,
	}

	return s
}

func (s *Server) routes() *mux.Router {
	r := mux.NewRouter()
	r.Use(s.observe, s.authenticate, s.rateLimit)

	r.HandleFunc("/predict", s.handlePredict).Methods(http.MethodPost)
	r.HandleFunc("/predict/ensemble", s.handleEnsemble).Methods(http.MethodPost)
	r.HandleFunc("/assess/clinical", s.handleAssessClinical).Methods(http.MethodPost)
	r.HandleFunc("/select", s.handleSelect).Methods(http.MethodPost)
	r.HandleFunc("/models", s.handleModels).Methods(http.MethodGet)
	r.HandleFunc("/users/{userId}/predictions", s.handleListPredictions).Methods(http.MethodGet)
	r.HandleFunc("/predictions/{recordId}", s.handleGetPrediction).Methods(http.MethodGet)
	r.HandleFunc("/predictions/{recordId}", s.handleDeletePrediction).Methods(http.MethodDelete)
	r.HandleFunc("/insights/importance", s.handleImportance).Methods(http.MethodGet)
	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)

	if s.opts.MetricsHandler != nil {
		r.Handle("/metrics", s.opts.MetricsHandler).Methods(http.MethodGet)
	}
	if s.opts.WebSocket != nil {
		r.HandleFunc("/ws", s.opts.WebSocket).Methods(http.MethodGet)
	}
	if s.opts.Dashboard != nil {
		r.Handle("/dashboard", s.opts.Dashboard).Methods(http.MethodGet)
	}

	return r
}

// Handler returns the root handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves until Shutdown is called. It returns nil after a clean
// shutdown.
func (s *Server) Start() error {
	log.Info().Str("addr", s.server.Addr).Msg("Starting API server")
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
