package httphealth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog"
)

// Lo implementa service.SchedulerService.
type TimerStats interface {
	Active() int
}

type Server struct {
	timers  TimerStats
	mux     *http.ServeMux
	srv     *http.Server
	started time.Time
	log     zerolog.Logger
}

func New(addr string, timers TimerStats, log zerolog.Logger) *Server {
	s := &Server{
		timers:  timers,
		mux:     http.NewServeMux(),
		started: time.Now(),
		log:     log.With().Str("component", "http").Logger(),
	}
	s.routes()
	s.srv = &http.Server{
		Addr:              addr,
		Handler:           s.mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

func (s *Server) routes() {
	s.mux.HandleFunc("/", s.handleAlive)
	s.mux.HandleFunc("/healthz", s.handleHealth)
}

func (s *Server) Handler() http.Handler { return s.mux }

func (s *Server) handleAlive(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("Bot is alive!"))
}

type health struct {
	Status       string `json:"status"`
	ActiveTimers int    `json:"active_timers"`
	Uptime       string `json:"uptime"`
	Since        string `json:"since"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	h := health{
		Status:       "ok",
		ActiveTimers: s.timers.Active(),
		Uptime:       time.Since(s.started).Truncate(time.Second).String(),
		Since:        humanize.Time(s.started),
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(h)
}

// Start bloquea hasta que el server se cierra.
func (s *Server) Start() error {
	s.log.Info().Str("addr", s.srv.Addr).Msg("http listening")
	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error { return s.srv.Shutdown(ctx) }
