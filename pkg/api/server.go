package api

import (
	"encoding/json"
	"net/http"

	"github.com/rubiojr/topsongs/pkg/log"
	"github.com/rubiojr/topsongs/pkg/realtime"
	"github.com/rubiojr/topsongs/pkg/search"
)

var logger = log.ForService("api")

type Server struct {
	service *search.Service
	hub     *realtime.Hub
}

// NewServer creates the API server. hub may be nil, which disables /api/events.
func NewServer(service *search.Service, hub *realtime.Hub) *Server {
	return &Server{service: service, hub: hub}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Errorf("encoding JSON response: %v", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, error, message string) {
	response := ErrorResponse{
		Error:   error,
		Message: message,
	}
	s.writeJSON(w, status, response)
}

func CorsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
