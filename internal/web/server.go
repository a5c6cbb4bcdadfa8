// Package web exposes the HTTP control surface: dashboard, JSON control
// API, SSE plan stream and Prometheus metrics.
package web

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/crypto/acme/autocert"

	"github.com/caisyy0514/sentinel/config"
	"github.com/caisyy0514/sentinel/internal"
	"github.com/caisyy0514/sentinel/internal/domain"
)

const (
	planPollInterval  = 2 * time.Second
	heartbeatInterval = 30 * time.Second
	shutdownTimeout   = 5 * time.Second
)

// Engine is the slice of the controller the handlers need.
type Engine interface {
	Start(cfg config.Config) internal.StartResult
	Stop() internal.StopResult
	Status() internal.Status
}

type planReader interface {
	EventsAfter(index uint64) ([]domain.PlanRecord, error)
}

// Server exposes HTTP endpoints serving the HTML UI, the control API and
// an SSE stream of journaled plans.
type Server struct {
	addr    string
	base    config.Config
	engine  Engine
	plans   planReader
	metrics http.Handler
	logger  *zap.Logger
}

// NewServer creates a web server bound to the engine. base is the config
// starts are derived from, request bodies override individual fields.
func NewServer(base config.Config, engine Engine, plans planReader, metrics http.Handler, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		addr:    base.Web.Addr,
		base:    base,
		engine:  engine,
		plans:   plans,
		metrics: metrics,
		logger:  logger,
	}
}

// Handler builds the route table.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/", s.handleIndex).Methods(http.MethodGet)
	r.HandleFunc("/api/status", s.handleStatus).Methods(http.MethodGet)
	r.HandleFunc("/api/start", s.handleStart).Methods(http.MethodPost)
	r.HandleFunc("/api/stop", s.handleStop).Methods(http.MethodPost)
	r.HandleFunc("/plans/stream", s.handlePlanStream).Methods(http.MethodGet)
	if s.metrics != nil {
		r.Handle("/metrics", s.metrics).Methods(http.MethodGet)
	}
	return r
}

// Start runs the HTTP server (blocking) and shuts it down when ctx is
// cancelled.
func (s *Server) Start(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	server := &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	s.logger.Info("web server listening", zap.String("addr", s.addr))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// StartWithAutoTLS runs an HTTPS server with automatic certificates via
// ACME, plus an HTTP server on port 80 for HTTP-01 challenges.
func (s *Server) StartWithAutoTLS(ctx context.Context, domain, cacheDir string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if domain == "" {
		return fmt.Errorf("no domain provided for automatic TLS")
	}
	if cacheDir == "" {
		cacheDir = "cert-cache"
	}

	manager := &autocert.Manager{
		Prompt:     autocert.AcceptTOS,
		HostPolicy: autocert.HostWhitelist(domain),
		Cache:      autocert.DirCache(cacheDir),
	}

	// port 80 handles ACME challenges and redirects to HTTPS
	httpSrv := &http.Server{
		Addr:              ":80",
		Handler:           manager.HTTPHandler(nil),
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	tlsConfig := manager.TLSConfig()
	tlsConfig.MinVersion = tls.VersionTLS12

	httpsSrv := &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       120 * time.Second,
		TLSConfig:         tlsConfig,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Warn("acme server shutdown", zap.Error(err))
		}
		if err := httpsSrv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Warn("https server shutdown", zap.Error(err))
		}
	}()

	go func() {
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("acme server failed", zap.Error(err))
		}
	}()

	s.logger.Info("web server listening with TLS",
		zap.String("addr", s.addr),
		zap.String("domain", domain))
	if err := httpsSrv.ListenAndServeTLS("", ""); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) handleIndex(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprint(w, indexHTML)
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, s.engine.Status())
}

// handleStart launches the engine. The request body may carry overrides
// for individual config fields, an empty body starts with the base config.
func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	cfg := s.base

	var overrides config.Overrides
	if err := json.NewDecoder(r.Body).Decode(&overrides); err != nil && err != io.EOF {
		s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "malformed overrides: " + err.Error()})
		return
	}

	cfg, err := cfg.WithOverrides(overrides)
	if err != nil {
		s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	result := s.engine.Start(cfg)
	status := http.StatusOK
	if result.Outcome == internal.StartFailed {
		status = http.StatusInternalServerError
	}
	s.writeJSON(w, status, result)
}

func (s *Server) handleStop(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, s.engine.Stop())
}

// handlePlanStream pushes journaled plans over SSE. Clients resume from
// their last seen index via the Last-Event-ID header.
func (s *Server) handlePlanStream(w http.ResponseWriter, r *http.Request) {
	if s.plans == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		fmt.Fprint(w, "plan journal not available")
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	heartbeat := time.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()

	pollTicker := time.NewTicker(planPollInterval)
	defer pollTicker.Stop()

	lastIndex := parseLastEventID(r.Header.Get("Last-Event-ID"), r.URL.Query().Get("last_event_id"))
	sendPlans := func() error {
		records, err := s.plans.EventsAfter(lastIndex)
		if err != nil {
			return err
		}
		for _, record := range records {
			payload, err := json.Marshal(record.Plan)
			if err != nil {
				return err
			}
			fmt.Fprintf(w, "id: %d\n", record.Index)
			fmt.Fprintf(w, "event: plan\n")
			fmt.Fprintf(w, "data: %s\n\n", payload)
			flusher.Flush()
			lastIndex = record.Index
		}
		return nil
	}

	if err := sendPlans(); err != nil {
		http.Error(w, "failed to load plans", http.StatusInternalServerError)
		s.logger.Warn("plan stream initial load failed", zap.Error(err))
		return
	}

	for {
		select {
		case <-r.Context().Done():
			return
		case <-heartbeat.C:
			fmt.Fprintf(w, ": ping\n\n")
			flusher.Flush()
		case <-pollTicker.C:
			if err := sendPlans(); err != nil {
				s.logger.Warn("plan stream poll failed", zap.Error(err))
			}
		}
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("cannot encode response", zap.Error(err))
	}
}

// parseLastEventID extracts an SSE event ID from the Last-Event-ID header
// or a query parameter. The header wins, the query parameter allows manual
// reconnects from a known index.
func parseLastEventID(headerVal, queryVal string) uint64 {
	idStr := strings.TrimSpace(headerVal)
	if idStr == "" {
		idStr = strings.TrimSpace(queryVal)
	}
	if idStr == "" {
		return 0
	}

	id, err := strconv.ParseUint(idStr, 10, 64)
	if err != nil {
		return 0
	}
	return id
}
