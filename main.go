package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/renderer"
	"github.com/df07/go-pathtracer/pkg/scene"
)

// Environment toggles
const (
	envDebugSteps = "PATHTRACER_DEBUG_STEPS" // write every progressive pass
	envAsPoints   = "PATHTRACER_AS_POINTS"   // render meshes as vertex spheres
)

// renderOptions collects the command line and environment settings for one render
type renderOptions struct {
	SceneName  string
	OutPath    string
	Workers    int
	TileSize   int
	DebugSteps bool
	AsPoints   bool
}

func main() {
	// Parse command line flags
	sceneName := flag.String("scene", "default", "Built-in scene name or path to a .toml scene file")
	outPath := flag.String("out", "", "Output image (.png or .ppm); default output/<scene>/render_<timestamp>.png")
	workers := flag.Int("workers", 0, "Number of render workers (0 = one per logical CPU)")
	tileSize := flag.Int("tile", renderer.DefaultProgressiveConfig().TileSize, "Tile size in pixels")
	scenesDir := flag.String("scenes", "scenes", "Directory of scene files listed by -help")
	help := flag.Bool("help", false, "Show help information")
	flag.Parse()

	// Show help if requested
	if *help {
		printHelp(*scenesDir)
		return
	}

	opts := renderOptions{
		SceneName: *sceneName,
		OutPath:   *outPath,
		Workers:   *workers,
		TileSize:  *tileSize,
	}
	if err := applyEnv(&opts, os.Getenv); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, opts, renderer.NewDefaultLogger()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printHelp(scenesDir string) {
	fmt.Println("Path Tracer")
	fmt.Println("Usage: pathtracer [options]")
	fmt.Println()
	fmt.Println("Options:")
	flag.PrintDefaults()
	fmt.Println()
	fmt.Println("Environment:")
	fmt.Printf("  %s=1  write a snapshot after every pass\n", envDebugSteps)
	fmt.Printf("  %s=1    render meshes as vertex spheres with flat colors\n", envAsPoints)
	fmt.Println()
	fmt.Println("Available scenes:")

	scenes, err := scene.ListScenes(scenesDir)
	if err != nil {
		fmt.Printf("  (failed to list %s: %v)\n", scenesDir, err)
		scenes = scene.BuiltinScenes()
	}
	for _, info := range scenes {
		if info.Description != "" {
			fmt.Printf("  %-20s %s - %s\n", info.ID, info.Name, info.Description)
		} else {
			fmt.Printf("  %-20s %s\n", info.ID, info.Name)
		}
	}
}

// applyEnv reads the environment toggles into opts
func applyEnv(opts *renderOptions, getenv func(string) string) error {
	var err error
	if opts.DebugSteps, err = envBool(getenv, envDebugSteps); err != nil {
		return err
	}
	if opts.AsPoints, err = envBool(getenv, envAsPoints); err != nil {
		return err
	}
	return nil
}

func envBool(getenv func(string) string, name string) (bool, error) {
	value := strings.TrimSpace(getenv(name))
	if value == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("invalid %s value %q: %w", name, value, err)
	}
	return b, nil
}

// run loads the scene, renders it and writes the output image
func run(ctx context.Context, opts renderOptions, logger core.Logger) error {
	logHostInfo(logger)

	logger.Printf("Loading scene %s...\n", opts.SceneName)
	sc, err := createScene(opts.SceneName, opts.AsPoints, logger)
	if err != nil {
		return err
	}

	outPath := opts.OutPath
	if outPath == "" {
		outPath = defaultOutputPath(opts.SceneName, time.Now())
	}
	if err := checkOutputFormat(outPath); err != nil {
		return err
	}
	if dir := filepath.Dir(outPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("error creating output directory: %w", err)
		}
	}

	config := renderer.DefaultProgressiveConfig()
	config.TileSize = opts.TileSize
	config.NumWorkers = workerCount(opts.Workers)

	raytracer, err := renderer.NewProgressiveRaytracer(sc, config, nil, logger)
	if err != nil {
		return err
	}

	logger.Printf("Rendering %dx%d, %d samples/pixel, %d passes, %d primitives, %d workers\n",
		sc.SamplingConfig.Width, sc.SamplingConfig.Height, sc.SamplingConfig.SamplesPerPixel,
		raytracer.TotalPasses(), sc.GetPrimitiveCount(), config.NumWorkers)

	startTime := time.Now()
	passChan, _, errChan := raytracer.RenderProgressive(ctx, renderer.RenderOptions{})

	var final *renderer.PassResult
	for result := range passChan {
		if opts.DebugSteps && !result.IsLast {
			stepPath := passOutputPath(outPath, result.PassNumber)
			if err := writeImage(stepPath, result.Frame, renderer.DefaultGamma); err != nil {
				return err
			}
			logger.Printf("Pass %d saved as %s\n", result.PassNumber, stepPath)
		}
		final = &result
	}
	if err := <-errChan; err != nil {
		return fmt.Errorf("render failed: %w", err)
	}
	if final == nil {
		return fmt.Errorf("render produced no passes")
	}

	logger.Printf("Render completed in %v\n", time.Since(startTime))
	logger.Printf("Samples per pixel: %.1f (range %d - %d)\n",
		final.Stats.AverageSamples, final.Stats.MinSamples, final.Stats.MaxSamplesUsed)

	if err := writeImage(outPath, final.Frame, renderer.DefaultGamma); err != nil {
		return err
	}
	logger.Printf("Render saved as %s\n", outPath)
	return nil
}

// createScene resolves a built-in scene or scene file and preprocesses it
func createScene(name string, asPoints bool, logger core.Logger) (*scene.Scene, error) {
	if name == "" {
		return nil, fmt.Errorf("no scene given: %w", core.ErrInvalidScene)
	}

	var sc *scene.Scene
	if strings.EqualFold(filepath.Ext(name), ".toml") {
		// Point mode changes how meshes are built, so it is applied before Build
		desc, err := scene.LoadDescription(name)
		if err != nil {
			return nil, err
		}
		desc.AsPoints = desc.AsPoints || asPoints
		sc, err = desc.Build(logger)
		if err != nil {
			return nil, err
		}
	} else {
		resolved, err := scene.Resolve(name, logger)
		if err != nil {
			return nil, err
		}
		sc = resolved
		sc.SamplingConfig.AsPoints = sc.SamplingConfig.AsPoints || asPoints
	}

	if err := sc.Preprocess(); err != nil {
		return nil, err
	}
	return sc, nil
}

// workerCount returns the requested worker count, or one per logical CPU
func workerCount(requested int) int {
	if requested > 0 {
		return requested
	}
	if n, err := cpu.Counts(true); err == nil && n > 0 {
		return n
	}
	return runtime.NumCPU()
}

// logHostInfo reports the CPU and memory available to the render
func logHostInfo(logger core.Logger) {
	physical, _ := cpu.Counts(false)
	logical, _ := cpu.Counts(true)

	model := "unknown CPU"
	if info, err := cpu.Info(); err == nil && len(info) > 0 {
		model = strings.TrimSpace(info[0].ModelName)
	}

	var totalGB float64
	if vm, err := mem.VirtualMemory(); err == nil {
		totalGB = float64(vm.Total) / (1 << 30)
	}

	logger.Printf("Host: %s, %d cores / %d threads, %.1f GB RAM\n", model, physical, logical, totalGB)
}

// defaultOutputPath names the output after the scene and the current time
func defaultOutputPath(sceneName string, now time.Time) string {
	base := strings.TrimSuffix(filepath.Base(sceneName), filepath.Ext(sceneName))
	timestamp := now.Format("20060102_150405")
	return filepath.Join("output", base, fmt.Sprintf("render_%s.png", timestamp))
}

// passOutputPath inserts the pass number before the extension
func passOutputPath(outPath string, pass int) string {
	ext := filepath.Ext(outPath)
	return fmt.Sprintf("%s_pass%03d%s", strings.TrimSuffix(outPath, ext), pass, ext)
}
