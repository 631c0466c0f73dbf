// Package adapthttp implements the HTTP adapter for the habits API.
package adapthttp

import (
	"net/http"

	"habits/internal/app"
	"habits/internal/metrics"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"go.uber.org/zap"
)

// MetricsAuth protects /metrics with HTTP basic auth. PasswordHash is a
// bcrypt hash; an empty hash leaves the endpoint open.
type MetricsAuth struct {
	Username     string
	PasswordHash string
}

// Options tunes the handler tree.
type Options struct {
	CORSOrigins []string
	MetricsAuth MetricsAuth
}

// Server is the driving HTTP adapter that routes requests to the habit
// service.
type Server struct {
	habits  *app.HabitService
	metrics *metrics.Metrics
	log     *zap.Logger
	opts    Options
}

// New creates a Server. m may be nil, in which case /metrics is not served
// and requests are not measured.
func New(hs *app.HabitService, m *metrics.Metrics, log *zap.Logger, opts Options) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	if len(opts.CORSOrigins) == 0 {
		opts.CORSOrigins = []string{"*"}
	}
	return &Server{habits: hs, metrics: m, log: log, opts: opts}
}

// Handler returns the root http.Handler for the application.
func (s *Server) Handler() http.Handler {
	root := mux.NewRouter()

	api := root.PathPrefix("/api").Subrouter()
	api.Use(s.loggingMiddleware)
	api.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)

	// search is registered ahead of /habits/{id} so it is not taken as an id.
	api.HandleFunc("/habits/search", s.handleSearchHabits).Methods(http.MethodGet)
	api.HandleFunc("/habits", s.handleListHabits).Methods(http.MethodGet)
	api.HandleFunc("/habits", s.handleCreateHabit).Methods(http.MethodPost)
	api.HandleFunc("/habits/{id}", s.handleGetHabit).Methods(http.MethodGet)
	api.HandleFunc("/habits/{id}", s.handleUpdateHabit).Methods(http.MethodPut)
	api.HandleFunc("/habits/{id}", s.handleDeleteHabit).Methods(http.MethodDelete)
	api.HandleFunc("/habits/{id}/entries", s.handleAddEntry).Methods(http.MethodPost)

	if s.metrics != nil {
		h := promhttp.HandlerFor(s.metrics.Registry, promhttp.HandlerOpts{})
		root.Handle("/metrics", s.metricsAuth(h)).Methods(http.MethodGet)
	}

	c := cors.New(cors.Options{
		AllowedOrigins: s.opts.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "Accept"},
	})
	return withNoCache(c.Handler(root))
}
