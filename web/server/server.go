package server

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strconv"

	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/scene"
)

// DefaultTileSize is the tile edge used for streamed renders
const DefaultTileSize = 32

// Server streams progressive renders over Server-Sent Events
type Server struct {
	port      int
	scenesDir string
}

// NewServer creates a new web server
func NewServer(port int, scenesDir string) *Server {
	return &Server{port: port, scenesDir: scenesDir}
}

// RenderRequest represents a render request from the client
type RenderRequest struct {
	Scene           string // Built-in scene ID or scene file path
	Width           int    // Image width; 0 keeps the scene's width
	SamplesPerPixel int    // 0 keeps the scene's sample count
	SamplesStepSize int    // Samples added per pass; 0 keeps the scene's step
	MaxDepth        int    // -1 keeps the scene's bounce limit
	AsPoints        bool   // Render with flat vertex colors
}

// Handler returns the server's routes
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/scenes", s.handleScenes)
	mux.HandleFunc("/api/render", s.handleRender)
	mux.HandleFunc("/api/inspect", s.handleInspect)
	return mux
}

// Start starts the web server
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.port)
	log.Printf("Starting web server on http://localhost%s", addr)
	return http.ListenAndServe(addr, s.Handler())
}

// handleHealth provides a simple health check endpoint
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleScenes lists the built-in scenes and the scene files on disk
func (s *Server) handleScenes(w http.ResponseWriter, r *http.Request) {
	scenes, err := scene.ListScenes(s.scenesDir)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	type sceneJSON struct {
		ID          string `json:"id"`
		Name        string `json:"name"`
		Description string `json:"description"`
		Type        string `json:"type"`
	}
	response := make([]sceneJSON, len(scenes))
	for i, info := range scenes {
		response[i] = sceneJSON{ID: info.ID, Name: info.Name, Description: info.Description, Type: info.Type}
	}
	writeJSON(w, http.StatusOK, response)
}

// parseCommonSceneParams parses the parameters shared by render and inspect requests
func (s *Server) parseCommonSceneParams(r *http.Request, req *RenderRequest) error {
	query := r.URL.Query()

	req.Scene = query.Get("scene")
	if req.Scene == "" {
		req.Scene = "cornell" // Default scene
	}

	var err error
	if req.Width, err = parseIntParam(query, "width", 0, 16, 2000); err != nil {
		return err
	}
	if req.AsPoints, err = parseBoolParam(query, "asPoints"); err != nil {
		return err
	}
	return nil
}

// createScene resolves the requested scene, applies overrides and preprocesses it
func (s *Server) createScene(req *RenderRequest, logger core.Logger) (*scene.Scene, error) {
	sc, err := scene.Resolve(req.Scene, logger)
	if err != nil {
		return nil, err
	}

	if req.Width > 0 {
		sc.CameraConfig.Width = req.Width
	}
	if req.SamplesPerPixel > 0 {
		sc.SamplingConfig.SamplesPerPixel = req.SamplesPerPixel
	}
	if req.SamplesStepSize > 0 {
		sc.SamplingConfig.SamplesStepSize = req.SamplesStepSize
	}
	if req.MaxDepth >= 0 {
		sc.SamplingConfig.MaxDepth = req.MaxDepth
	}
	sc.SamplingConfig.AsPoints = sc.SamplingConfig.AsPoints || req.AsPoints

	if err := sc.Preprocess(); err != nil {
		return nil, err
	}
	return sc, nil
}

// parseIntParam parses an integer parameter from URL query with validation
func parseIntParam(values url.Values, key string, defaultValue, min, max int) (int, error) {
	if value := values.Get(key); value != "" {
		parsed, err := strconv.Atoi(value)
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %s", key, value)
		}
		if parsed < min || parsed > max {
			return 0, fmt.Errorf("%s must be between %d and %d, got: %d", key, min, max, parsed)
		}
		return parsed, nil
	}
	return defaultValue, nil
}

// parseBoolParam parses an optional boolean parameter from URL query
func parseBoolParam(values url.Values, key string) (bool, error) {
	value := values.Get(key)
	if value == "" {
		return false, nil
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %s", key, value)
	}
	return parsed, nil
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Error encoding response: %v", err)
	}
}
