// Package web provides an HTTP status server for the room-controller daemon.
package web

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"

	"github.com/sweeney/room-controller/internal/status"
)

const httpTimeout = 5 * time.Second

// SubmitFunc queues a single command character for the controller.
// It returns an error if the command could not be queued.
type SubmitFunc func(ch byte) error

// Server serves the status page over HTTP.
type Server struct {
	httpServer *http.Server
	tracker    *status.Tracker
	submit     SubmitFunc
}

// New creates a Server that reads state from the given tracker. If submit is
// nil the command endpoint is not registered.
func New(addr string, tracker *status.Tracker, submit SubmitFunc) *Server {
	s := &Server{tracker: tracker, submit: submit}

	router := httprouter.New()
	router.GET("/", s.handleIndex)
	router.GET("/index.html", s.handleIndex)
	router.GET("/index.json", s.handleJSON)
	if submit != nil {
		router.POST("/command/:cmd", s.handleCommand)
	}

	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadTimeout:       httpTimeout,
		ReadHeaderTimeout: httpTimeout,
		WriteTimeout:      httpTimeout,
		IdleTimeout:       2 * httpTimeout,
	}
	return s
}

// ListenAndServe starts listening. It blocks until the server is shut down.
func (s *Server) ListenAndServe() error {
	return s.httpServer.ListenAndServe()
}

// Serve accepts connections on the given listener. Useful for tests.
func (s *Server) Serve(ln net.Listener) error {
	return s.httpServer.Serve(ln)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	snap := s.tracker.Snapshot()
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	renderHTML(w, snap)
}

func (s *Server) handleJSON(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	snap := s.tracker.Snapshot()
	w.Header().Set("Content-Type", "application/json")
	w.Write(status.FormatJSON(snap))
}

// handleCommand accepts exactly one command character, e.g. POST /command/o.
// Unknown characters are still queued; the controller answers them.
func (s *Server) handleCommand(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	cmd := p.ByName("cmd")
	if len(cmd) != 1 {
		http.Error(w, "command must be a single character", http.StatusBadRequest)
		return
	}
	if err := s.submit(cmd[0]); err != nil {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}
