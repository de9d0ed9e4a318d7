package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"blackjack21/internal/game"
	"blackjack21/internal/logging"
	"blackjack21/internal/session"
)

// Sessions is the part of session.Manager the HTTP layer needs.
type Sessions interface {
	Start(ctx context.Context) (*game.Round, error)
	Draw(ctx context.Context, id, side string) (*game.Round, game.Card, error)
	Get(ctx context.Context, id string) (*game.Round, error)
	Overwrite(ctx context.Context, id string, p session.Patch) (*game.Round, error)
}

type Server struct {
	sessions Sessions
	mux      *http.ServeMux
}

func New(sessions Sessions) *Server {
	s := &Server{sessions: sessions, mux: http.NewServeMux()}

	s.mux.HandleFunc("POST /api/start", s.handleStart)
	s.mux.HandleFunc("POST /api/getCard", s.handleGetCard)
	s.mux.HandleFunc("GET /api/gameStats/{id}", s.handleGetRound)
	s.mux.HandleFunc("PUT /api/gameStats/{id}", s.handlePutRound)
	s.mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})

	return s
}

func (s *Server) Handler() http.Handler {
	return withLogging(withCORS(s.mux))
}

// ListenAndServe runs until ctx is cancelled, then drains in-flight requests.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logging.L.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logging.L.Info("request", "method", r.Method, "path", r.URL.Path,
			"status", rec.status, "duration", time.Since(start))
	})
}

func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Methods", "GET, POST, PUT, OPTIONS")
		h.Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
