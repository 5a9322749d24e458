package server

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"image"
	"image/png"
	"log"
	"net/http"
	"time"

	"github.com/df07/go-pathtracer/pkg/renderer"
	"github.com/df07/go-pathtracer/pkg/scene"
)

// TileUpdate reports a finished tile
type TileUpdate struct {
	TileX       int `json:"tileX"`
	TileY       int `json:"tileY"`
	PassNumber  int `json:"passNumber"`
	TileNumber  int `json:"tileNumber"`  // Current tile number in this pass (1-based)
	TotalTiles  int `json:"totalTiles"`  // Total number of tiles in the image
	TotalPasses int `json:"totalPasses"` // Total number of passes planned
}

// PassUpdate carries a full snapshot after each pass
type PassUpdate struct {
	PassNumber     int     `json:"passNumber"`
	TotalPasses    int     `json:"totalPasses"`
	ElapsedMs      int64   `json:"elapsedMs"`
	ImageData      string  `json:"imageData"` // Base64 encoded PNG
	Width          int     `json:"width"`
	Height         int     `json:"height"`
	TotalSamples   int     `json:"totalSamples"`
	AverageSamples float64 `json:"averageSamples"`
	MinSamples     int     `json:"minSamples"`
	MaxSamplesUsed int     `json:"maxSamplesUsed"`
	PrimitiveCount int     `json:"primitiveCount"`
	IsLast         bool    `json:"isLast"`
}

// handleRender streams a progressive render as events: console, tile, passComplete, error, complete.
// All writes to w happen on the handler goroutine.
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	s.setSSEHeaders(w)
	ctx := r.Context()

	req, err := s.parseRenderRequest(r)
	if err != nil {
		s.sendSSEEvent(w, "error", fmt.Sprintf("Invalid request: %v", err))
		return
	}

	consoleChan := make(chan ConsoleMessage, 50)
	renderID := fmt.Sprintf("render-%d", time.Now().UnixNano())
	logger := NewWebLogger(renderID, log.Writer(), consoleChan)

	sc, err := s.createScene(req, logger)
	if err != nil {
		s.sendSSEEvent(w, "error", err.Error())
		return
	}

	config := renderer.DefaultProgressiveConfig()
	config.TileSize = DefaultTileSize
	raytracer, err := renderer.NewProgressiveRaytracer(sc, config, nil, logger)
	if err != nil {
		s.sendSSEEvent(w, "error", err.Error())
		return
	}

	startTime := time.Now()
	passChan, tileChan, errChan := raytracer.RenderProgressive(ctx, renderer.RenderOptions{TileUpdates: true})

	if err := s.streamRenderEvents(ctx, w, sc, raytracer.TotalPasses(), startTime, consoleChan, passChan, tileChan); err != nil {
		log.Printf("[%s] stream ended: %v", renderID, err)
		return
	}

	if err := <-errChan; err != nil {
		s.sendSSEEvent(w, "error", fmt.Sprintf("Rendering failed: %v", err))
		return
	}

	s.flushConsole(w, consoleChan)
	s.sendSSEEvent(w, "complete", "Rendering completed")
}

// streamRenderEvents forwards render events until the pass channel closes
func (s *Server) streamRenderEvents(ctx context.Context, w http.ResponseWriter, sc *scene.Scene, totalPasses int,
	startTime time.Time, consoleChan <-chan ConsoleMessage,
	passChan <-chan renderer.PassResult, tileChan <-chan renderer.TileCompletionResult) error {

	for passChan != nil || tileChan != nil {
		var err error
		select {
		case msg := <-consoleChan:
			err = s.sendJSONEvent(w, "console", msg)

		case tile, ok := <-tileChan:
			if !ok {
				tileChan = nil
				continue
			}
			err = s.sendJSONEvent(w, "tile", TileUpdate{
				TileX:       tile.TileX,
				TileY:       tile.TileY,
				PassNumber:  tile.PassNumber,
				TileNumber:  tile.TileNumber,
				TotalTiles:  tile.TotalTiles,
				TotalPasses: tile.TotalPasses,
			})

		case pass, ok := <-passChan:
			if !ok {
				passChan = nil
				continue
			}
			err = s.sendPassComplete(w, pass, sc, totalPasses, startTime)

		case <-ctx.Done():
			return ctx.Err()
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// sendPassComplete encodes the pass snapshot and sends it
func (s *Server) sendPassComplete(w http.ResponseWriter, pass renderer.PassResult, sc *scene.Scene, totalPasses int, startTime time.Time) error {
	imageData, err := imageToBase64PNG(pass.Frame.ToRGBA(renderer.DefaultGamma))
	if err != nil {
		return fmt.Errorf("failed to encode pass %d: %w", pass.PassNumber, err)
	}

	return s.sendJSONEvent(w, "passComplete", PassUpdate{
		PassNumber:     pass.PassNumber,
		TotalPasses:    totalPasses,
		ElapsedMs:      time.Since(startTime).Milliseconds(),
		ImageData:      imageData,
		Width:          pass.Frame.Width,
		Height:         pass.Frame.Height,
		TotalSamples:   pass.Stats.TotalSamples,
		AverageSamples: pass.Stats.AverageSamples,
		MinSamples:     pass.Stats.MinSamples,
		MaxSamplesUsed: pass.Stats.MaxSamplesUsed,
		PrimitiveCount: sc.GetPrimitiveCount(),
		IsLast:         pass.IsLast,
	})
}

// flushConsole sends any console messages still queued
func (s *Server) flushConsole(w http.ResponseWriter, consoleChan <-chan ConsoleMessage) {
	for {
		select {
		case msg := <-consoleChan:
			if err := s.sendJSONEvent(w, "console", msg); err != nil {
				return
			}
		default:
			return
		}
	}
}

// setSSEHeaders sets the required headers for Server-Sent Events
func (s *Server) setSSEHeaders(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")
}

// parseRenderRequest parses request parameters
func (s *Server) parseRenderRequest(r *http.Request) (*RenderRequest, error) {
	req := &RenderRequest{}

	// Parse common scene parameters using shared function
	if err := s.parseCommonSceneParams(r, req); err != nil {
		return nil, err
	}

	query := r.URL.Query()
	var err error
	if req.SamplesPerPixel, err = parseIntParam(query, "samples", 0, 1, 10000); err != nil {
		return nil, err
	}
	if req.SamplesStepSize, err = parseIntParam(query, "step", 0, 1, 10000); err != nil {
		return nil, err
	}
	if req.MaxDepth, err = parseIntParam(query, "maxDepth", -1, 0, 1000); err != nil {
		return nil, err
	}

	// Performance warning
	if req.Width > 800 && req.SamplesPerPixel > 100 {
		log.Printf("Render warning: Large image with high samples may render slowly")
	}

	return req, nil
}

// imageToBase64PNG converts an image to base64-encoded PNG
func imageToBase64PNG(img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// sendJSONEvent marshals data and sends it as one event
func (s *Server) sendJSONEvent(w http.ResponseWriter, event string, data interface{}) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("error marshaling %s event: %w", event, err)
	}
	return s.sendSSEEvent(w, event, string(payload))
}

// sendSSEEvent writes a single SSE event and flushes it
func (s *Server) sendSSEEvent(w http.ResponseWriter, event, data string) error {
	if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, data); err != nil {
		return err
	}
	if flusher, ok := w.(http.Flusher); ok {
		flusher.Flush()
	}
	return nil
}
