// Package server accepts notification requests over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/jmylchreest/lmk/internal/model"
)

// MaxBodyBytes caps how much of a request body is read. Anything beyond it
// is ignored.
const MaxBodyBytes = 8192

// NotifyPath is the only route the server answers.
const NotifyPath = "/notify"

var okResponse = []byte("{\"status\":\"ok\"}\n")

// Submitter receives parsed requests.
type Submitter interface {
	Submit(req model.Request) (model.Notification, error)
	Defaults() model.Request
}

// Server is the HTTP request source.
type Server struct {
	mu        sync.Mutex
	logger    *slog.Logger
	submitter Submitter
	addr      string

	server   *http.Server
	listener net.Listener
	doneCh   chan struct{}
	running  bool
}

// New creates a server that will listen on addr.
func New(addr string, submitter Submitter, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		logger:    logger,
		submitter: submitter,
		addr:      addr,
	}
}

// Handler returns the HTTP handler without starting a listener.
func (s *Server) Handler() http.Handler {
	return http.HandlerFunc(s.handle)
}

// Start binds the listen address and serves in the background.
func (s *Server) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return nil
	}

	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.addr, err)
	}

	s.listener = listener
	s.server = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ErrorLog:          slog.NewLogLogger(s.logger.Handler(), slog.LevelDebug),
	}
	s.doneCh = make(chan struct{})
	s.running = true

	go func(srv *http.Server, done chan struct{}) {
		defer close(done)
		if err := srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("http server stopped", "error", err)
		}
	}(s.server, s.doneCh)

	s.logger.Info("http server listening", "addr", listener.Addr().String())
	return nil
}

// Addr returns the bound address, or the configured one before Start.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.addr
}

// Stop shuts the server down, waiting for in-flight requests until ctx ends.
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	srv, done := s.server, s.doneCh
	s.mu.Unlock()

	err := srv.Shutdown(ctx)
	<-done
	s.logger.Info("http server stopped")
	return err
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost || r.URL.Path != NotifyPath {
		http.NotFound(w, r)
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, MaxBodyBytes))
	if err != nil {
		s.logger.Debug("failed to read request body", "error", err)
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	req := ParseRequest(body, s.submitter.Defaults())
	if n, err := s.submitter.Submit(req); err != nil {
		s.logger.Warn("failed to submit notification", "error", err)
	} else {
		s.logger.Debug("notification received", "id", n.ID, "remote", r.RemoteAddr)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(okResponse)
}

// ParseRequest extracts the known fields from a JSON object. Each field is
// taken on its own: a missing or mistyped field keeps its default, and a
// document that is not a JSON object yields defaults for everything.
func ParseRequest(body []byte, defaults model.Request) model.Request {
	req := defaults

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return req
	}

	stringField(fields, "title", &req.Title)
	stringField(fields, "body", &req.Body)
	stringField(fields, "icon", &req.Icon)
	stringField(fields, "urgency", &req.Urgency)

	if ms, ok := durationField(fields["duration"]); ok && ms > 0 {
		req.DurationMs = ms
	}
	return req
}

// stringField copies a string value into dst. A null counts as missing.
func stringField(fields map[string]json.RawMessage, key string, dst *string) {
	raw, ok := fields[key]
	if !ok || string(raw) == "null" {
		return
	}
	var v string
	if err := json.Unmarshal(raw, &v); err == nil {
		*dst = v
	}
}

// durationField accepts a JSON number or a string holding one. Fractions
// are truncated.
func durationField(raw json.RawMessage) (int, bool) {
	if len(raw) == 0 {
		return 0, false
	}

	var num json.Number
	if err := json.Unmarshal(raw, &num); err == nil {
		return numberToInt(string(num))
	}

	var str string
	if err := json.Unmarshal(raw, &str); err == nil {
		return numberToInt(strings.TrimSpace(str))
	}
	return 0, false
}

func numberToInt(s string) (int, bool) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || f > math.MaxInt32 || f < math.MinInt32 {
		return 0, false
	}
	return int(f), true
}
