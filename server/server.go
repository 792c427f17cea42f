// Package server exposes the chatbot over HTTP and WebSocket. The JSON
// surface mirrors what the web frontend expects: a chat endpoint, a
// location-extraction endpoint for the map view, and a nearest-shelter
// lookup.
package server

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/shelternet/shelterbot/internal/models"
	"github.com/shelternet/shelterbot/pkg/agent"
	"github.com/shelternet/shelterbot/pkg/store"
)

type Config struct {
	Port           string
	AllowedOrigins []string
}

type Server struct {
	config  Config
	graph   *agent.Graph
	toolbox *agent.Toolbox
	docs    *store.VectorStore
	started time.Time
}

func New(config Config, graph *agent.Graph, toolbox *agent.Toolbox, docs *store.VectorStore) *Server {
	if config.Port == "" {
		config.Port = "8001"
	}
	return &Server{
		config:  config,
		graph:   graph,
		toolbox: toolbox,
		docs:    docs,
		started: time.Now(),
	}
}

func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(s.cors)

	r.Route("/api", func(r chi.Router) {
		r.Post("/chatbot", s.handleChat)
		r.Post("/location/extract", s.handleLocationExtract)
		r.Get("/shelters/nearest", s.handleNearestShelters)
		r.Get("/health", s.handleHealth)
		r.Get("/status", s.handleStatus)
	})
	r.Get("/ws", s.handleWebSocket)

	return r
}

func (s *Server) ListenAndServe() error {
	addr := ":" + s.config.Port
	log.Printf("[server] listening on %s", addr)
	return http.ListenAndServe(addr, s.Router())
}

func (s *Server) cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := "*"
		if len(s.config.AllowedOrigins) > 0 {
			origin = s.config.AllowedOrigins[0]
		}
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type chatRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id"`
}

type chatResponse struct {
	Response       string                 `json:"response"`
	SessionID      string                 `json:"session_id"`
	Intent         string                 `json:"intent,omitempty"`
	StructuredData *models.StructuredData `json:"structured_data,omitempty"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	if s.graph == nil {
		writeError(w, http.StatusServiceUnavailable, "chatbot is not ready")
		return
	}

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Message == "" {
		writeError(w, http.StatusBadRequest, "message is required")
		return
	}
	if req.SessionID == "" {
		req.SessionID = uuid.NewString()
	}

	result, err := s.graph.Run(r.Context(), req.SessionID, req.Message)
	if err != nil {
		log.Printf("[server] chat failed: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to process message")
		return
	}

	writeJSON(w, http.StatusOK, chatResponse{
		Response:       result.Response,
		SessionID:      req.SessionID,
		Intent:         string(result.Intent),
		StructuredData: result.StructuredData,
	})
}

type locationExtractRequest struct {
	Query string `json:"query"`
}

type locationExtractResponse struct {
	Success     bool             `json:"success"`
	Location    string           `json:"location,omitempty"`
	Coordinates []float64        `json:"coordinates,omitempty"`
	Shelters    []models.Shelter `json:"shelters,omitempty"`
	TotalCount  int              `json:"total_count,omitempty"`
	Message     string           `json:"message,omitempty"`
}

func (s *Server) handleLocationExtract(w http.ResponseWriter, r *http.Request) {
	if s.toolbox == nil {
		writeError(w, http.StatusServiceUnavailable, "chatbot is not ready")
		return
	}

	var req locationExtractRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Query == "" {
		writeError(w, http.StatusBadRequest, "query is required")
		return
	}

	result, err := s.toolbox.ExtractLocation(r.Context(), req.Query)
	if err != nil {
		log.Printf("[server] location extract failed: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to extract location")
		return
	}
	if result.StructuredData == nil {
		writeJSON(w, http.StatusOK, locationExtractResponse{
			Success: false,
			Message: result.Text,
		})
		return
	}

	sd := result.StructuredData
	writeJSON(w, http.StatusOK, locationExtractResponse{
		Success:     true,
		Location:    sd.Location,
		Coordinates: sd.Coordinates,
		Shelters:    sd.Shelters,
		TotalCount:  sd.TotalCount,
	})
}

func (s *Server) handleNearestShelters(w http.ResponseWriter, r *http.Request) {
	if s.toolbox == nil {
		writeError(w, http.StatusServiceUnavailable, "chatbot is not ready")
		return
	}

	lat, errLat := strconv.ParseFloat(r.URL.Query().Get("lat"), 64)
	lon, errLon := strconv.ParseFloat(r.URL.Query().Get("lon"), 64)
	if errLat != nil || errLon != nil {
		writeError(w, http.StatusBadRequest, "lat and lon are required")
		return
	}

	k := 5
	if raw := r.URL.Query().Get("k"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			k = n
		}
	}

	shelters, err := s.toolbox.NearestShelters(r.Context(), lat, lon, k)
	if err != nil {
		log.Printf("[server] nearest shelters failed: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to find shelters")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"shelters": shelters,
		"count":    len(shelters),
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	status := map[string]interface{}{
		"status":         "ok",
		"uptime_seconds": int(time.Since(s.started).Seconds()),
		"ready":          s.graph != nil,
	}

	if s.docs != nil {
		if n, err := s.docs.Count(r.Context(), map[string]string{"type": models.TypeShelter}); err == nil {
			status["shelter_documents"] = n
		}
		if n, err := s.docs.Count(r.Context(), map[string]string{"type": models.TypeGuideline}); err == nil {
			status["guideline_documents"] = n
		}
	}

	writeJSON(w, http.StatusOK, status)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[server] failed to write response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
