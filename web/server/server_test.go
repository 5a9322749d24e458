package server

import (
	"bufio"
	"encoding/base64"
	"encoding/json"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const tinySceneTOML = `# Scene: Tiny Sphere
# Description: One grey sphere
samples_per_pixel = 2
samples_step_size = 1
max_bounces = 3
image_width = 8
aspect_ratio = 2.0
from = [0, 0, 3]
at = [0, 0, 0]
bg = [0.5, 0.7, 1.0]

[materials.grey]
kind = "solid"
color = 0.5

[[objects]]
kind = "sphere"
center = [0, 0, 0]
r = 1
material = "grey"
`

func newTestServer(t *testing.T) (*httptest.Server, string) {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "tiny.toml")
	if err := os.WriteFile(path, []byte(tinySceneTOML), 0644); err != nil {
		t.Fatal(err)
	}
	ts := httptest.NewServer(NewServer(0, dir).Handler())
	t.Cleanup(ts.Close)
	return ts, path
}

type sseEvent struct {
	name string
	data string
}

func readEvents(t *testing.T, body io.Reader) []sseEvent {
	t.Helper()
	var events []sseEvent
	var current sseEvent
	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case strings.HasPrefix(line, "event: "):
			current.name = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			current.data = strings.TrimPrefix(line, "data: ")
		case line == "":
			if current.name != "" {
				events = append(events, current)
			}
			current = sseEvent{}
		}
	}
	if err := scanner.Err(); err != nil {
		t.Fatalf("Error reading events: %v", err)
	}
	return events
}

func TestHandleHealth(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/api/health")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", resp.StatusCode)
	}
	var body map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body["status"] != "ok" {
		t.Errorf("Expected status ok, got %v", body)
	}
}

func TestHandleScenes(t *testing.T) {
	ts, path := newTestServer(t)

	resp, err := http.Get(ts.URL + "/api/scenes")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	var scenes []struct {
		ID          string `json:"id"`
		Name        string `json:"name"`
		Description string `json:"description"`
		Type        string `json:"type"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&scenes); err != nil {
		t.Fatal(err)
	}

	if len(scenes) != 5 {
		t.Fatalf("Expected 4 built-in scenes and 1 file, got %d", len(scenes))
	}
	if scenes[0].ID != "default" || scenes[0].Type != "builtin" {
		t.Errorf("Expected default built-in first, got %+v", scenes[0])
	}
	file := scenes[4]
	if file.ID != path || file.Name != "Tiny Sphere" || file.Description != "One grey sphere" || file.Type != "file" {
		t.Errorf("Unexpected file scene entry: %+v", file)
	}
}

func TestHandleRender(t *testing.T) {
	ts, path := newTestServer(t)

	resp, err := http.Get(ts.URL + "/api/render?scene=" + url.QueryEscape(path))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("Expected event stream content type, got %q", ct)
	}

	events := readEvents(t, resp.Body)
	if len(events) == 0 {
		t.Fatal("No events received")
	}
	if last := events[len(events)-1]; last.name != "complete" {
		t.Fatalf("Expected final complete event, got %s: %s", last.name, last.data)
	}

	var passes []PassUpdate
	tiles := 0
	for _, event := range events {
		switch event.name {
		case "passComplete":
			var update PassUpdate
			if err := json.Unmarshal([]byte(event.data), &update); err != nil {
				t.Fatalf("Bad passComplete payload: %v", err)
			}
			passes = append(passes, update)
		case "tile":
			var tile TileUpdate
			if err := json.Unmarshal([]byte(event.data), &tile); err != nil {
				t.Fatalf("Bad tile payload: %v", err)
			}
			tiles++
		case "error":
			t.Fatalf("Unexpected error event: %s", event.data)
		}
	}

	if len(passes) != 2 {
		t.Fatalf("Expected 2 passes, got %d", len(passes))
	}
	if tiles == 0 {
		t.Error("Expected tile events")
	}

	final := passes[len(passes)-1]
	if !final.IsLast || final.PassNumber != 2 || final.TotalPasses != 2 {
		t.Errorf("Unexpected final pass: %+v", final)
	}
	if final.Width != 8 || final.Height != 4 {
		t.Errorf("Expected 8x4 image, got %dx%d", final.Width, final.Height)
	}
	if final.PrimitiveCount != 1 {
		t.Errorf("Expected 1 primitive, got %d", final.PrimitiveCount)
	}

	data, err := base64.StdEncoding.DecodeString(final.ImageData)
	if err != nil {
		t.Fatalf("Image data is not base64: %v", err)
	}
	img, err := png.Decode(strings.NewReader(string(data)))
	if err != nil {
		t.Fatalf("Image data is not a PNG: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 8 || b.Dy() != 4 {
		t.Errorf("Expected 8x4 PNG, got %v", b)
	}
}

func TestHandleRender_InvalidParams(t *testing.T) {
	ts, _ := newTestServer(t)

	tests := []struct {
		name  string
		query string
	}{
		{"width too small", "width=4"},
		{"bad samples", "samples=abc"},
		{"samples too large", "samples=20000"},
		{"negative depth", "maxDepth=-2"},
		{"bad asPoints", "asPoints=maybe"},
		{"unknown scene", "scene=nonexistent"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := http.Get(ts.URL + "/api/render?" + tt.query)
			if err != nil {
				t.Fatal(err)
			}
			defer resp.Body.Close()

			events := readEvents(t, resp.Body)
			if len(events) != 1 || events[0].name != "error" {
				t.Errorf("Expected a single error event, got %+v", events)
			}
		})
	}
}

func TestHandleInspect(t *testing.T) {
	ts, path := newTestServer(t)

	get := func(query string) (*http.Response, InspectResponse) {
		t.Helper()
		resp, err := http.Get(ts.URL + "/api/inspect?scene=" + url.QueryEscape(path) + "&" + query)
		if err != nil {
			t.Fatal(err)
		}
		defer resp.Body.Close()
		var body InspectResponse
		if resp.StatusCode == http.StatusOK {
			if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
				t.Fatal(err)
			}
		}
		return resp, body
	}

	// Center pixel looks straight at the sphere
	resp, body := get("x=4&y=2")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", resp.StatusCode)
	}
	if !body.Hit {
		t.Fatal("Expected a hit at the image center")
	}
	if body.GeometryType != "sphere" || body.MaterialType != "lambertian" {
		t.Errorf("Expected lambertian sphere, got %s %s", body.MaterialType, body.GeometryType)
	}
	if body.Distance < 1.9 || body.Distance > 2.1 {
		t.Errorf("Expected distance near 2, got %f", body.Distance)
	}
	if !body.FrontFace {
		t.Error("Expected a front face hit")
	}

	// Corner pixel misses
	resp, body = get("x=0&y=0")
	if resp.StatusCode != http.StatusOK || body.Hit {
		t.Errorf("Expected a miss at the corner, got status %d hit %v", resp.StatusCode, body.Hit)
	}

	for _, query := range []string{"x=8&y=0", "x=0&y=4", "x=-1&y=0", "x=a&y=0", "y=0"} {
		resp, _ := get(query)
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("%s: expected status 400, got %d", query, resp.StatusCode)
		}
	}
}
