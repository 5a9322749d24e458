package main

import (
	"bytes"
	"context"
	"errors"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/renderer"
)

const tinySceneTOML = `
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

func writeTinyScene(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tiny.toml")
	if err := os.WriteFile(path, []byte(tinySceneTOML), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestCreateScene(t *testing.T) {
	tests := []struct {
		name        string
		sceneType   string
		expectError bool
	}{
		// Built-in scenes
		{"default scene", "default", false},
		{"cornell scene", "cornell", false},
		{"checkered spheres", "checkered-spheres", false},
		{"perlin spheres", "perlin-spheres", false},

		// Invalid scenes
		{"unknown scene", "nonexistent", true},
		{"invalid scene path", "scenes/nonexistent.toml", true},
		{"empty scene name", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scene, err := createScene(tt.sceneType, false, core.NopLogger{})

			if tt.expectError {
				if err == nil {
					t.Errorf("Expected error for scene type '%s', but got none", tt.sceneType)
				}
				if scene != nil {
					t.Errorf("Expected nil scene for invalid scene type '%s'", tt.sceneType)
				}
				return
			}

			if err != nil {
				t.Fatalf("Unexpected error for scene type '%s': %v", tt.sceneType, err)
			}
			if scene.SamplingConfig.Width <= 0 || scene.SamplingConfig.Height <= 0 {
				t.Errorf("Scene should be preprocessed, got %dx%d", scene.SamplingConfig.Width, scene.SamplingConfig.Height)
			}
			if scene.BVH == nil {
				t.Error("Scene should have a BVH")
			}
		})
	}
}

func TestCreateSceneFromFile(t *testing.T) {
	path := writeTinyScene(t)

	sc, err := createScene(path, false, core.NopLogger{})
	if err != nil {
		t.Fatalf("createScene failed: %v", err)
	}
	if sc.SamplingConfig.Width != 8 || sc.SamplingConfig.Height != 4 {
		t.Errorf("Expected 8x4, got %dx%d", sc.SamplingConfig.Width, sc.SamplingConfig.Height)
	}
	if sc.SamplingConfig.AsPoints {
		t.Error("Point mode should be off")
	}

	sc, err = createScene(path, true, core.NopLogger{})
	if err != nil {
		t.Fatalf("createScene failed: %v", err)
	}
	if !sc.SamplingConfig.AsPoints {
		t.Error("Point mode should be forced on")
	}
}

func TestApplyEnv(t *testing.T) {
	tests := []struct {
		name       string
		env        map[string]string
		debugSteps bool
		asPoints   bool
		wantErr    bool
	}{
		{"unset", map[string]string{}, false, false, false},
		{"debug steps", map[string]string{envDebugSteps: "1"}, true, false, false},
		{"as points", map[string]string{envAsPoints: "true"}, false, true, false},
		{"both off", map[string]string{envDebugSteps: "0", envAsPoints: "false"}, false, false, false},
		{"invalid", map[string]string{envAsPoints: "maybe"}, false, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var opts renderOptions
			err := applyEnv(&opts, func(key string) string { return tt.env[key] })
			if tt.wantErr {
				if err == nil {
					t.Error("Expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if opts.DebugSteps != tt.debugSteps || opts.AsPoints != tt.asPoints {
				t.Errorf("Got %+v", opts)
			}
		})
	}
}

func TestOutputPaths(t *testing.T) {
	now := time.Date(2024, 3, 5, 14, 30, 0, 0, time.UTC)
	got := defaultOutputPath("scenes/dragon.toml", now)
	want := filepath.Join("output", "dragon", "render_20240305_143000.png")
	if got != want {
		t.Errorf("defaultOutputPath = %q, want %q", got, want)
	}

	if got := passOutputPath("out/render.ppm", 7); got != "out/render_pass007.ppm" {
		t.Errorf("passOutputPath = %q", got)
	}
}

func TestWorkerCount(t *testing.T) {
	if got := workerCount(3); got != 3 {
		t.Errorf("Expected requested count 3, got %d", got)
	}
	if got := workerCount(0); got < 1 {
		t.Errorf("Expected at least one worker, got %d", got)
	}
}

func testFrame() *renderer.Frame {
	frame := renderer.NewFrame(2, 2)
	frame.Set(0, 0, core.NewVec3(1, 1, 1))
	frame.Set(1, 0, core.NewVec3(1, 0, 0))
	frame.Set(0, 1, core.NewVec3(0, 0.25, 0))
	frame.Set(1, 1, core.NewVec3(0, 0, 4))
	return frame
}

func TestWritePPM(t *testing.T) {
	var buf bytes.Buffer
	if err := writePPM(&buf, testFrame(), renderer.DefaultGamma); err != nil {
		t.Fatalf("writePPM failed: %v", err)
	}

	// 0.25 becomes 0.5 after gamma 2 and quantizes to 127
	expected := "P3\n2 2\n255\n255 255 255\n255 0 0\n0 127 0\n0 0 255\n"
	if buf.String() != expected {
		t.Errorf("Unexpected PPM output:\n%s\nwant:\n%s", buf.String(), expected)
	}
}

func TestWriteImage(t *testing.T) {
	dir := t.TempDir()

	pngPath := filepath.Join(dir, "frame.png")
	if err := writeImage(pngPath, testFrame(), renderer.DefaultGamma); err != nil {
		t.Fatalf("writeImage(png) failed: %v", err)
	}
	f, err := os.Open(pngPath)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("Output is not a PNG: %v", err)
	}
	if r, g, b, _ := img.At(1, 0).RGBA(); r>>8 != 255 || g != 0 || b != 0 {
		t.Errorf("Expected red top-right pixel, got %d %d %d", r>>8, g>>8, b>>8)
	}

	ppmPath := filepath.Join(dir, "frame.PPM")
	if err := writeImage(ppmPath, testFrame(), renderer.DefaultGamma); err != nil {
		t.Fatalf("writeImage(ppm) failed: %v", err)
	}
	data, err := os.ReadFile(ppmPath)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(data), "P3\n") {
		t.Error("Expected a P3 PPM file")
	}

	err = writeImage(filepath.Join(dir, "frame.jpg"), testFrame(), renderer.DefaultGamma)
	if !errors.Is(err, errUnknownFormat) {
		t.Errorf("Expected errUnknownFormat, got %v", err)
	}
}

func TestRun(t *testing.T) {
	outPath := filepath.Join(t.TempDir(), "renders", "tiny.ppm")
	opts := renderOptions{
		SceneName:  writeTinyScene(t),
		OutPath:    outPath,
		Workers:    2,
		TileSize:   4,
		DebugSteps: true,
	}

	if err := run(context.Background(), opts, core.NopLogger{}); err != nil {
		t.Fatalf("run failed: %v", err)
	}

	for _, path := range []string{outPath, passOutputPath(outPath, 1)} {
		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("Expected %s to exist: %v", path, err)
		}
		if !strings.HasPrefix(string(data), "P3\n8 4\n255\n") {
			t.Errorf("Unexpected header in %s", path)
		}
	}

	// The final pass is written only once, without a pass suffix
	if _, err := os.Stat(passOutputPath(outPath, 2)); !os.IsNotExist(err) {
		t.Errorf("Final pass should not be written as a step, got %v", err)
	}
}

func TestRunRejectsUnknownFormat(t *testing.T) {
	opts := renderOptions{
		SceneName: writeTinyScene(t),
		OutPath:   filepath.Join(t.TempDir(), "render.gif"),
		TileSize:  4,
	}
	if err := run(context.Background(), opts, core.NopLogger{}); !errors.Is(err, errUnknownFormat) {
		t.Errorf("Expected errUnknownFormat, got %v", err)
	}
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	opts := renderOptions{
		SceneName: writeTinyScene(t),
		OutPath:   filepath.Join(t.TempDir(), "render.png"),
		TileSize:  4,
	}
	if err := run(ctx, opts, core.NopLogger{}); !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}
