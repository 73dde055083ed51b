// Package api exposes the analytical resolver over HTTP.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"fjacquet/budget-analytics/internal/analytic"
	"fjacquet/budget-analytics/internal/logging"
	"fjacquet/budget-analytics/internal/models"
	"fjacquet/budget-analytics/internal/store"

	"github.com/gorilla/mux"
)

const (
	maxBodyBytes = 1 << 20
	maxBatchSize = 10000
)

// Server serves resolution requests against the current rule snapshot.
type Server struct {
	rules    store.RuleSource
	resolver *analytic.Resolver
	logger   logging.Logger
}

// NewServer creates the API server.
func NewServer(rules store.RuleSource, resolver *analytic.Resolver, logger logging.Logger) *Server {
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}
	if resolver == nil {
		resolver = analytic.NewResolver(logger)
	}
	return &Server{rules: rules, resolver: resolver, logger: logger}
}

// Routes registers HTTP routes.
func (s *Server) Routes() http.Handler {
	router := mux.NewRouter()
	router.Use(s.logRequests)

	router.HandleFunc("/healthz", s.health).Methods(http.MethodGet)

	v1 := router.PathPrefix("/api/v1").Subrouter()
	v1.HandleFunc("/resolve", s.resolve).Methods(http.MethodPost)
	v1.HandleFunc("/resolve/batch", s.resolveBatch).Methods(http.MethodPost)
	v1.HandleFunc("/rules", s.listRules).Methods(http.MethodGet)

	return router
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) resolve(w http.ResponseWriter, r *http.Request) {
	var line models.TransactionLineContext
	if err := decodeBody(w, r, &line); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	rules, err := s.rules.ListRules(r.Context())
	if err != nil {
		s.logger.WithError(err).Error("Failed to load rules")
		writeError(w, http.StatusInternalServerError, errors.New("rules unavailable"))
		return
	}

	writeJSON(w, http.StatusOK, s.resolver.Resolve(line, rules))
}

func (s *Server) resolveBatch(w http.ResponseWriter, r *http.Request) {
	var lines []models.TransactionLineContext
	if err := decodeBody(w, r, &lines); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if len(lines) > maxBatchSize {
		writeError(w, http.StatusBadRequest, fmt.Errorf("batch exceeds %d lines", maxBatchSize))
		return
	}

	rules, err := s.rules.ListRules(r.Context())
	if err != nil {
		s.logger.WithError(err).Error("Failed to load rules")
		writeError(w, http.StatusInternalServerError, errors.New("rules unavailable"))
		return
	}

	writeJSON(w, http.StatusOK, s.resolver.ResolveAll(lines, rules))
}

func (s *Server) listRules(w http.ResponseWriter, r *http.Request) {
	rules, err := s.rules.ListRules(r.Context())
	if err != nil {
		s.logger.WithError(err).Error("Failed to load rules")
		writeError(w, http.StatusInternalServerError, errors.New("rules unavailable"))
		return
	}
	writeJSON(w, http.StatusOK, rules)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.WithFields(
			logging.Field{Key: "method", Value: r.Method},
			logging.Field{Key: "path", Value: r.URL.Path},
			logging.Field{Key: logging.FieldDuration, Value: time.Since(start).String()},
		).Debug("HTTP request handled")
	})
}

func decodeBody(w http.ResponseWriter, r *http.Request, out interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(out); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
