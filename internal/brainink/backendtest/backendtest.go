// Package backendtest provides an in-process fake of the BrainInk services
// for tests.
package backendtest

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/brainink/hub/internal/setup/config"
	"github.com/bytedance/sonic"
)

// Path prefixes mounted by the fake.
const (
	FriendsPrefix     = "/friends"
	TournamentsPrefix = "/api/tournaments"
)

type route struct {
	status int
	body   []byte
}

// Server is a fake backend serving canned responses and counting requests.
type Server struct {
	*httptest.Server

	mu     sync.Mutex
	routes map[string]route
	hits   map[string]int
	total  int
	gate   chan struct{}
	seen   chan struct{}
}

// New starts a Server that is closed when t finishes.
func New(t testing.TB) *Server {
	t.Helper()

	s := &Server{
		routes: make(map[string]route),
		hits:   make(map[string]int),
		seen:   make(chan struct{}, 1024),
	}
	s.Server = httptest.NewServer(http.HandlerFunc(s.serve))
	t.Cleanup(s.Close)

	return s
}

// Endpoints returns config endpoints pointing at the fake.
func (s *Server) Endpoints() config.Endpoints {
	return config.Endpoints{
		Main:         s.URL,
		Achievements: s.URL,
		Friends:      s.URL + FriendsPrefix,
		Tournaments:  s.URL + TournamentsPrefix,
	}
}

// JSON answers method+path with 200 and body encoded as JSON. A string or
// []byte body is sent verbatim.
func (s *Server) JSON(method, path string, body any) {
	s.Respond(method, path, http.StatusOK, body)
}

// Respond answers method+path with status and body.
func (s *Server) Respond(method, path string, status int, body any) {
	var data []byte

	switch v := body.(type) {
	case nil:
	case string:
		data = []byte(v)
	case []byte:
		data = v
	default:
		encoded, err := sonic.Marshal(v)
		if err != nil {
			panic(err)
		}
		data = encoded
	}

	s.mu.Lock()
	s.routes[method+" "+path] = route{status: status, body: data}
	s.mu.Unlock()
}

// Hits returns how many requests reached method+path.
func (s *Server) Hits(method, path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits[method+" "+path]
}

// Total returns how many requests reached the fake.
func (s *Server) Total() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.total
}

// Hold blocks every request until the returned release func is called.
func (s *Server) Hold() (release func()) {
	gate := make(chan struct{})

	s.mu.Lock()
	s.gate = gate
	s.mu.Unlock()

	var once sync.Once

	return func() {
		once.Do(func() {
			s.mu.Lock()
			s.gate = nil
			s.mu.Unlock()
			close(gate)
		})
	}
}

// Seen returns a channel receiving one value per request as it arrives.
func (s *Server) Seen() <-chan struct{} {
	return s.seen
}

func (s *Server) serve(w http.ResponseWriter, r *http.Request) {
	key := r.Method + " " + r.URL.Path

	s.mu.Lock()
	s.hits[key]++
	s.total++
	rt, ok := s.routes[key]
	gate := s.gate
	s.mu.Unlock()

	select {
	case s.seen <- struct{}{}:
	default:
	}

	if gate != nil {
		select {
		case <-gate:
		case <-r.Context().Done():
			return
		}
	}

	if !ok {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(rt.status)
	_, _ = w.Write(rt.body)
}
