package renderer

import (
	"context"
	"fmt"
	"time"

	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/integrator"
	"github.com/df07/go-pathtracer/pkg/scene"
)

// DefaultLogger implements core.Logger by writing to stdout
type DefaultLogger struct{}

func (dl *DefaultLogger) Printf(format string, args ...interface{}) {
	fmt.Printf(format, args...)
}

// NewDefaultLogger creates a new default logger
func NewDefaultLogger() core.Logger {
	return &DefaultLogger{}
}

// ProgressiveConfig contains configuration for progressive rendering
type ProgressiveConfig struct {
	TileSize   int // Size of each tile (64x64 recommended)
	NumWorkers int // Number of parallel workers (0 = use CPU count)
}

// DefaultProgressiveConfig returns sensible default values
func DefaultProgressiveConfig() ProgressiveConfig {
	return ProgressiveConfig{
		TileSize:   64,
		NumWorkers: 0, // Auto-detect CPU count
	}
}

// ProgressiveRaytracer renders a scene in passes of increasing sample count.
// Every pass brings all pixels up to the pass target, so each snapshot is a
// valid running average. A ProgressiveRaytracer renders once.
type ProgressiveRaytracer struct {
	scene         *scene.Scene
	integrator    integrator.Integrator
	width, height int
	config        ProgressiveConfig
	tiles         []*Tile        // Tile management
	pixelStats    [][]PixelStats // Shared pixel statistics array (global image coordinates)
	workerPool    *WorkerPool    // Worker pool for parallel processing
	logger        core.Logger    // Logger for rendering output
}

// NewProgressiveRaytracer creates a new progressive raytracer for a preprocessed scene.
// A nil integrator selects one from the scene's sampling config.
func NewProgressiveRaytracer(sc *scene.Scene, config ProgressiveConfig, integratorInst integrator.Integrator, logger core.Logger) (*ProgressiveRaytracer, error) {
	if sc.Camera == nil || sc.BVH == nil {
		return nil, fmt.Errorf("scene must be preprocessed before rendering: %w", core.ErrInvalidScene)
	}
	if config.TileSize <= 0 {
		config.TileSize = DefaultProgressiveConfig().TileSize
	}
	if integratorInst == nil {
		integratorInst = integrator.New(sc.SamplingConfig)
	}
	if logger == nil {
		logger = core.NopLogger{}
	}

	width, height := sc.Camera.Width(), sc.Camera.Height()
	tiles := NewTileGrid(width, height, config.TileSize)

	pixelStats := make([][]PixelStats, height)
	for y := range pixelStats {
		pixelStats[y] = make([]PixelStats, width)
	}

	return &ProgressiveRaytracer{
		scene:      sc,
		integrator: integratorInst,
		width:      width,
		height:     height,
		config:     config,
		tiles:      tiles,
		pixelStats: pixelStats,
		workerPool: NewWorkerPool(sc, integratorInst, len(tiles), config.NumWorkers),
		logger:     logger,
	}, nil
}

// stepSize returns the number of samples added per pass
func (pr *ProgressiveRaytracer) stepSize() int {
	step := pr.scene.SamplingConfig.SamplesStepSize
	if step <= 0 || step > pr.scene.SamplingConfig.SamplesPerPixel {
		return pr.scene.SamplingConfig.SamplesPerPixel
	}
	return step
}

// TotalPasses returns the number of passes needed to reach the sample target
func (pr *ProgressiveRaytracer) TotalPasses() int {
	step := pr.stepSize()
	return (pr.scene.SamplingConfig.SamplesPerPixel + step - 1) / step
}

// getSamplesForPass calculates the target total samples for a given pass
func (pr *ProgressiveRaytracer) getSamplesForPass(passNumber int) int {
	return min(passNumber*pr.stepSize(), pr.scene.SamplingConfig.SamplesPerPixel)
}

// RenderPass renders a single progressive pass using parallel processing
func (pr *ProgressiveRaytracer) RenderPass(ctx context.Context, passNumber int, tileCallback func(TileCompletionResult)) (*Frame, RenderStats, error) {
	targetSamples := pr.getSamplesForPass(passNumber)

	pr.logger.Printf("Pass %d: Target %d samples per pixel (using %d workers)...\n",
		passNumber, targetSamples, pr.workerPool.GetNumWorkers())

	pr.workerPool.Start()

	for taskID, tile := range pr.tiles {
		pr.workerPool.SubmitTask(TileTask{
			Ctx:           ctx,
			Tile:          tile,
			PassNumber:    passNumber,
			TargetSamples: targetSamples,
			TaskID:        taskID,
			PixelStats:    pr.pixelStats,
		})
	}

	// Collect every result even after an error so no task outlives the pass
	var firstErr error
	for i := 0; i < len(pr.tiles); i++ {
		result, ok := pr.workerPool.GetResult()
		if !ok {
			return nil, RenderStats{}, fmt.Errorf("worker pool closed unexpectedly")
		}
		if result.Error != nil {
			if firstErr == nil {
				firstErr = result.Error
			}
			continue
		}

		tile := pr.tiles[result.TaskID]
		tile.PassesCompleted++

		if tileCallback != nil {
			tileCallback(TileCompletionResult{
				TileX:       tile.Bounds.Min.X / pr.config.TileSize,
				TileY:       tile.Bounds.Min.Y / pr.config.TileSize,
				PassNumber:  passNumber,
				TileNumber:  i + 1,
				TotalTiles:  len(pr.tiles),
				TotalPasses: pr.TotalPasses(),
			})
		}
	}
	if firstErr != nil {
		return nil, RenderStats{}, firstErr
	}

	frame, stats := pr.assembleCurrentFrame(targetSamples)
	return frame, stats, nil
}

// PassResult contains the result of a single pass
type PassResult struct {
	PassNumber int
	Frame      *Frame
	Stats      RenderStats
	IsLast     bool
}

// TileCompletionResult contains information about a completed tile for callbacks
type TileCompletionResult struct {
	TileX      int // Tile coordinates (not pixel coordinates)
	TileY      int
	PassNumber int // Which pass this tile was rendered in

	// Progress information
	TileNumber  int // Current tile number in this pass (1-based)
	TotalTiles  int // Total number of tiles in the image
	TotalPasses int // Total number of passes planned
}

// RenderOptions configures progressive rendering behavior
type RenderOptions struct {
	TileUpdates bool // Whether to generate tile completion events
}

// RenderProgressive renders with channel-based communication.
// The caller should read from these channels in separate goroutines.
// If options.TileUpdates is false, the tile channel is closed immediately.
func (pr *ProgressiveRaytracer) RenderProgressive(ctx context.Context, options RenderOptions) (<-chan PassResult, <-chan TileCompletionResult, <-chan error) {
	passChan := make(chan PassResult, 1)
	tileChan := make(chan TileCompletionResult, 100)
	errChan := make(chan error, 1)

	if !options.TileUpdates {
		close(tileChan)
	}

	go func() {
		defer close(passChan)
		if options.TileUpdates {
			defer close(tileChan)
		}
		defer close(errChan)
		defer pr.workerPool.Stop()

		totalPasses := pr.TotalPasses()
		pr.logger.Printf("Starting progressive rendering with %d passes...\n", totalPasses)

		for pass := 1; pass <= totalPasses; pass++ {
			if err := ctx.Err(); err != nil {
				pr.logger.Printf("Rendering cancelled before pass %d\n", pass)
				errChan <- err
				return
			}

			startTime := time.Now()

			var tileCallback func(TileCompletionResult)
			if options.TileUpdates {
				tileCallback = func(result TileCompletionResult) {
					select {
					case tileChan <- result:
					case <-ctx.Done():
					default:
						// Progress updates are best effort
					}
				}
			}

			frame, stats, err := pr.RenderPass(ctx, pass, tileCallback)
			if err != nil {
				errChan <- err
				return
			}

			pr.logger.Printf("Pass %d completed in %v (%.0f samples/pixel)\n",
				pass, time.Since(startTime), stats.AverageSamples)

			isLast := pass == totalPasses
			if isLast {
				pr.logInstabilities()
			}

			select {
			case passChan <- PassResult{PassNumber: pass, Frame: frame, Stats: stats, IsLast: isLast}:
			case <-ctx.Done():
				errChan <- ctx.Err()
				return
			}
		}
	}()

	return passChan, tileChan, errChan
}

// Render runs every pass and returns the final frame
func (pr *ProgressiveRaytracer) Render(ctx context.Context) (*Frame, RenderStats, error) {
	passChan, _, errChan := pr.RenderProgressive(ctx, RenderOptions{})

	var last PassResult
	for result := range passChan {
		last = result
	}
	if err := <-errChan; err != nil {
		return nil, RenderStats{}, err
	}
	if last.Frame == nil {
		return nil, RenderStats{}, fmt.Errorf("render produced no passes")
	}
	return last.Frame, last.Stats, nil
}

// logInstabilities reports discarded samples once per render
func (pr *ProgressiveRaytracer) logInstabilities() {
	counter, ok := pr.integrator.(interface{ Instabilities() int64 })
	if !ok {
		return
	}
	if n := counter.Instabilities(); n > 0 {
		pr.logger.Printf("Discarded %d numerically unstable samples\n", n)
	}
}

// assembleCurrentFrame snapshots the running averages and calculates render statistics
func (pr *ProgressiveRaytracer) assembleCurrentFrame(targetSamples int) (*Frame, RenderStats) {
	frame := NewFrame(pr.width, pr.height)

	stats := RenderStats{
		TotalPixels: pr.width * pr.height,
		MaxSamples:  targetSamples,
		MinSamples:  targetSamples, // Start high, will be reduced
	}

	for y := 0; y < pr.height; y++ {
		for x := 0; x < pr.width; x++ {
			pixel := &pr.pixelStats[y][x]
			frame.Set(x, y, pixel.GetColor())

			stats.TotalSamples += pixel.SampleCount
			stats.MinSamples = min(stats.MinSamples, pixel.SampleCount)
			stats.MaxSamplesUsed = max(stats.MaxSamplesUsed, pixel.SampleCount)
		}
	}

	stats.AverageSamples = float64(stats.TotalSamples) / float64(stats.TotalPixels)

	return frame, stats
}
