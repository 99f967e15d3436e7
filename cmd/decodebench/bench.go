package main

import (
	"context"
	"fmt"
	"math/rand/v2"
	"os"

	json "github.com/goccy/go-json"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/nvr-ai/go-decode/config"
	"github.com/nvr-ai/go-decode/decode"
	"github.com/nvr-ai/go-decode/device"
	"github.com/nvr-ai/go-decode/levels"
	"github.com/nvr-ai/go-decode/logger"
	"github.com/nvr-ai/go-decode/postprocess"
	"github.com/nvr-ai/go-decode/profiler"
)

// report is the benchmark summary.
type report struct {
	Backend    string                          `json:"backend"`
	Levels     []levelShape                    `json:"levels"`
	Rows       int                             `json:"rows"`
	Valid      int                             `json:"valid"`
	Kept       int                             `json:"kept_after_nms"`
	Classes    map[string]int                  `json:"classes,omitempty"`
	Iterations int64                           `json:"iterations"`
	PeakBytes  string                          `json:"peak_device_memory"`
	Stages     map[string]profiler.TimingStats `json:"stages"`
}

func runBench(ctx context.Context, cmd *cli.Command) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if backend != "" {
		b, err := device.Normalize(backend)
		if err != nil {
			return err
		}
		cfg.Device.Backend = b
	}
	if streams > 0 {
		cfg.Decode.Streams = int(streams)
	}
	if nmsIoU > 0 {
		cfg.NMS.IoUThreshold = nmsIoU
	}
	if debug {
		cfg.Log.Level = "debug"
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	shapes, err := parseLevels(levelSpec)
	if err != nil {
		return err
	}
	inputs, err := synthesize(shapes, uint64(seed))
	if err != nil {
		return err
	}

	tracker := profiler.NewTimeTracker(int(iterations + warmup))
	engine, err := decode.NewEngineBuilder().
		WithConfig(cfg.Decode).
		WithDeviceConfig(cfg.Device).
		WithLogger(log).
		WithTracker(tracker).
		Build()
	if err != nil {
		return errors.Wrap(err, "build engine")
	}
	defer engine.Close()

	log.Info("benchmark started",
		zap.String("backend", engine.Device().Name()),
		zap.Int("levels", len(inputs)),
		zap.Int64("iterations", iterations),
	)

	for i := int64(0); i < warmup; i++ {
		if _, err := engine.Decode(ctx, inputs, threshold, rescale); err != nil {
			return errors.Wrap(err, "warmup")
		}
	}

	var batch *decode.Batch
	for i := int64(0); i < iterations; i++ {
		batch, err = engine.Decode(ctx, inputs, threshold, rescale)
		if err != nil {
			return errors.Wrapf(err, "iteration %d", i)
		}
	}

	r := report{
		Backend:    engine.Device().Name(),
		Levels:     shapes,
		Iterations: iterations,
		PeakBytes:  profiler.FormatBytes(uint64(engine.Device().Stats().PeakBytes)),
		Stages:     tracker.Snapshot(),
	}
	for _, s := range shapes {
		r.Rows += s.Rows
	}
	if batch != nil {
		r.Valid = batch.Count()
		results := postprocess.FromBatch(batch, postprocess.Options{})
		kept := postprocess.ApplyNMS(results, &cfg.NMS)
		r.Kept = len(kept)
		if shapes[0].Cols-decode.ColFirstClass == len(postprocess.YOLOLabels) {
			r.Classes = postprocess.YOLOLabels.Count(kept)
		}
	}

	return printReport(r)
}

// synthesize builds flat head outputs with uniform scores and reshapes them into levels.
func synthesize(shapes []levelShape, seed uint64) ([]decode.TensorLevel, error) {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	outputs := make([][]float32, len(shapes))
	for i, s := range shapes {
		data := make([]float32, s.Rows*s.Cols)
		for r := 0; r < s.Rows; r++ {
			row := data[r*s.Cols : (r+1)*s.Cols]
			row[decode.ColCenterX] = rng.Float32() * 640
			row[decode.ColCenterY] = rng.Float32() * 640
			row[decode.ColWidth] = rng.Float32() * 128
			row[decode.ColHeight] = rng.Float32() * 128
			for c := decode.ColObjectness; c < s.Cols; c++ {
				row[c] = rng.Float32()
			}
		}
		outputs[i] = data
	}
	return levels.ReshapeAll(outputs, shapes[0].Cols-decode.ColFirstClass)
}

func printReport(r report) error {
	if jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	}

	fmt.Printf("backend:     %s\n", r.Backend)
	fmt.Printf("rows:        %d over %d levels\n", r.Rows, len(r.Levels))
	fmt.Printf("valid:       %d (%d after nms)\n", r.Valid, r.Kept)
	fmt.Printf("peak memory: %s\n", r.PeakBytes)
	fmt.Printf("iterations:  %d (+%d warmup)\n", r.Iterations, warmup)
	for _, stage := range []string{decode.StageAllocate, decode.StageLevels, decode.StageGather, decode.StageTotal} {
		if s, ok := r.Stages[stage]; ok {
			fmt.Printf("%-12s %s\n", stage+":", s)
		}
	}
	return nil
}
