package admin

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"codeblue-sim/internal/lifecycle"
	"codeblue-sim/internal/logging"
	"codeblue-sim/internal/sim"
	"codeblue-sim/internal/streak"
)

var (
	errNoSession     = errors.New("no session attached")
	errUnknownAction = errors.New("unknown action")
)

// Session is the part of sim.Session the admin UI drives.
type Session interface {
	Snapshot() sim.Snapshot
	Acknowledge(ctx context.Context, id string) error
	Dismiss(ctx context.Context, id string) error
}

// Server exposes session state and the acknowledge contract over HTTP.
type Server struct {
	Session Session
	Tracker *streak.Tracker
	Hub     *Hub
	tpl     *template.Template
}

//go:embed templates/index.html
var content embed.FS

// NewServer creates a server. tracker and hub may be nil.
func NewServer(session Session, tracker *streak.Tracker, hub *Hub) *Server {
	tpl := template.Must(template.New("index.html").ParseFS(content, "templates/index.html"))
	return &Server{Session: session, Tracker: tracker, Hub: hub, tpl: tpl}
}

// Handler returns the admin routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /state", s.handleState)
	mux.HandleFunc("POST /acknowledge", s.handleAcknowledge)
	mux.HandleFunc("POST /dismiss", s.handleDismiss)
	mux.HandleFunc("GET /streak", s.handleStreak)
	if s.Hub != nil {
		mux.HandleFunc("GET /ws", s.Hub.ServeWS)
	}
	return mux
}

// Start serves until ctx is done, then shuts the listener down.
func (s *Server) Start(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: Logger(logging.FromContext(ctx), s.Handler()), ReadHeaderTimeout: 5 * time.Second}
	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return nil
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	data := struct {
		Snapshot sim.Snapshot
		Streak   *streakView
	}{Snapshot: s.Session.Snapshot()}
	if s.Tracker != nil {
		v := s.streakView(r.Context())
		data.Streak = &v
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.tpl.Execute(w, data); err != nil {
		logging.FromContext(r.Context()).Error("render index", "error", err)
	}
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Session.Snapshot())
}

func (s *Server) handleAcknowledge(w http.ResponseWriter, r *http.Request) {
	s.resolve(w, r, s.Session.Acknowledge)
}

func (s *Server) handleDismiss(w http.ResponseWriter, r *http.Request) {
	s.resolve(w, r, s.Session.Dismiss)
}

func (s *Server) resolve(w http.ResponseWriter, r *http.Request, fn func(context.Context, string) error) {
	id := r.URL.Query().Get("id")
	if id == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing id"})
		return
	}
	if err := fn(r.Context(), id); err != nil {
		status := statusFor(err)
		if status >= http.StatusInternalServerError {
			logging.FromContext(r.Context()).Error("resolve event", "id", id, "error", err)
		}
		writeJSON(w, status, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, s.Session.Snapshot().Active)
}

// statusFor maps lifecycle errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, lifecycle.ErrNoActiveEvent), errors.Is(err, lifecycle.ErrUnknownEvent):
		return http.StatusNotFound
	case errors.Is(err, lifecycle.ErrActionRequired), errors.Is(err, lifecycle.ErrBusy), errors.Is(err, sim.ErrFinished):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

type streakView struct {
	Record streak.Record `json:"record"`
	Tier   *streak.Tier  `json:"tier,omitempty"`
	Next   *streak.Tier  `json:"next,omitempty"`
}

func (s *Server) streakView(ctx context.Context) streakView {
	rec := s.Tracker.Load(ctx)
	v := streakView{Record: rec}
	if t, ok := s.Tracker.Tiers().Lookup(rec.CurrentStreak); ok {
		v.Tier = &t
	}
	for _, t := range s.Tracker.Tiers() {
		if t.MinStreak > rec.CurrentStreak {
			next := t
			v.Next = &next
			break
		}
	}
	return v
}

func (s *Server) handleStreak(w http.ResponseWriter, r *http.Request) {
	if s.Tracker == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "streak tracking disabled"})
		return
	}
	writeJSON(w, http.StatusOK, s.streakView(r.Context()))
}

// Logger returns a request logger middleware.
func Logger(log *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log.Debug("admin request", "method", r.Method, "path", r.URL.Path)
		next.ServeHTTP(w, r.WithContext(logging.NewContext(r.Context(), log)))
	})
}
