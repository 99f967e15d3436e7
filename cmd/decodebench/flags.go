package main

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v3"

	"github.com/nvr-ai/go-decode/device"
)

var (
	configPath string
	levelSpec  string
	backend    string
	threshold  float64
	rescale    float64
	nmsIoU     float64
	iterations int64
	warmup     int64
	streams    int64
	seed       int64
	jsonOut    bool
	debug      bool
)

func benchFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "config",
			Aliases:     []string{"c"},
			Usage:       "YAML configuration file (decode, device, log and nms sections)",
			Destination: &configPath,
		},
		&cli.StringFlag{
			Name:        "levels",
			Aliases:     []string{"l"},
			Usage:       "comma separated ROWSxCOLS per head, e.g. 6400x85,1600x85,400x85",
			Value:       "6400x85,1600x85,400x85",
			Destination: &levelSpec,
		},
		&cli.StringFlag{
			Name:        "backend",
			Usage:       "device backend override (auto, host, cuda); usable in this build: " + device.Available(),
			Destination: &backend,
		},
		&cli.Float64Flag{
			Name:        "threshold",
			Aliases:     []string{"t"},
			Usage:       "objectness threshold",
			Value:       0.5,
			Destination: &threshold,
		},
		&cli.Float64Flag{
			Name:        "rescale",
			Usage:       "coordinate rescale factor (reference size / model size)",
			Value:       1,
			Destination: &rescale,
		},
		&cli.Float64Flag{
			Name:        "nms-iou",
			Usage:       "IoU threshold for suppression of the decoded results (0 keeps the config value)",
			Destination: &nmsIoU,
		},
		&cli.Int64Flag{
			Name:        "iterations",
			Aliases:     []string{"n"},
			Usage:       "number of timed decode calls",
			Value:       200,
			Destination: &iterations,
		},
		&cli.Int64Flag{
			Name:        "warmup",
			Usage:       "number of untimed decode calls",
			Value:       10,
			Destination: &warmup,
		},
		&cli.Int64Flag{
			Name:        "streams",
			Usage:       "device streams per call (0 keeps the config value)",
			Destination: &streams,
		},
		&cli.Int64Flag{
			Name:        "seed",
			Usage:       "seed for the synthetic head outputs",
			Value:       1,
			Destination: &seed,
		},
		&cli.BoolFlag{
			Name:        "json",
			Usage:       "print the report as JSON",
			Destination: &jsonOut,
		},
		&cli.BoolFlag{
			Name:        "debug",
			Usage:       "enable debug logging",
			Destination: &debug,
		},
	}
}

// levelShape is one head's row count and row width.
type levelShape struct {
	Rows int `json:"rows"`
	Cols int `json:"cols"`
}

// parseLevels parses "ROWSxCOLS,ROWSxCOLS,...". Every head must share a row width.
func parseLevels(spec string) ([]levelShape, error) {
	parts := strings.Split(spec, ",")
	shapes := make([]levelShape, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		rows, cols, ok := strings.Cut(strings.ToLower(part), "x")
		if !ok {
			return nil, errors.Errorf("level %q: expected ROWSxCOLS", part)
		}
		r, err := strconv.Atoi(rows)
		if err != nil || r < 0 {
			return nil, errors.Errorf("level %q: invalid row count", part)
		}
		c, err := strconv.Atoi(cols)
		if err != nil || c < 6 {
			return nil, errors.Errorf("level %q: row width must be >= 6", part)
		}
		if len(shapes) > 0 && shapes[0].Cols != c {
			return nil, errors.Errorf("level %q: row width %d differs from %d", part, c, shapes[0].Cols)
		}
		shapes = append(shapes, levelShape{Rows: r, Cols: c})
	}
	if len(shapes) == 0 {
		return nil, errors.New("no levels given")
	}
	return shapes, nil
}
