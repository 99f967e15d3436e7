package decode

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/nvr-ai/go-decode/device"
	"github.com/nvr-ai/go-decode/profiler"
)

// Timing stages recorded on an attached tracker.
const (
	StageAllocate = "allocate"
	StageLevels   = "levels"
	StageGather   = "gather"
	StageTotal    = "total"
)

// Engine decodes detection head outputs on an accelerator. It keeps no state between
// calls and is safe for concurrent use.
type Engine struct {
	cfg        Config
	dev        *device.Device
	ownsDevice bool
	groupCap   int
	logger     *zap.Logger
	tracker    *profiler.TimeTracker
}

// EngineBuilder assembles an Engine with a fluent API. The first error sticks and is
// returned from Build.
type EngineBuilder struct {
	cfg     Config
	dev     *device.Device
	devCfg  *device.Config
	logger  *zap.Logger
	tracker *profiler.TimeTracker
	err     error
}

// NewEngineBuilder creates a builder seeded with DefaultConfig.
//
// Returns:
//   - *EngineBuilder: The engine builder.
func NewEngineBuilder() *EngineBuilder {
	return &EngineBuilder{cfg: DefaultConfig()}
}

// WithConfig sets the engine configuration.
//
// Arguments:
//   - cfg: The engine configuration.
//
// Returns:
//   - *EngineBuilder: The engine builder.
func (b *EngineBuilder) WithConfig(cfg Config) *EngineBuilder {
	if b.HasError() {
		return b
	}
	if err := cfg.Validate(); err != nil {
		b.err = errors.Wrap(err, "invalid decode config")
		return b
	}
	b.cfg = cfg
	return b
}

// WithDevice runs the engine on an already opened device. The caller keeps ownership.
func (b *EngineBuilder) WithDevice(dev *device.Device) *EngineBuilder {
	if b.HasError() {
		return b
	}
	b.dev = dev
	b.devCfg = nil
	return b
}

// WithDeviceConfig makes Build open a device the engine owns and closes on Close.
func (b *EngineBuilder) WithDeviceConfig(cfg device.Config) *EngineBuilder {
	if b.HasError() {
		return b
	}
	b.devCfg = &cfg
	b.dev = nil
	return b
}

// WithLogger sets the logger used by the engine and any device it opens.
func (b *EngineBuilder) WithLogger(logger *zap.Logger) *EngineBuilder {
	if b.HasError() {
		return b
	}
	b.logger = logger
	return b
}

// WithTracker records per-call stage timings into tracker.
func (b *EngineBuilder) WithTracker(tracker *profiler.TimeTracker) *EngineBuilder {
	if b.HasError() {
		return b
	}
	b.tracker = tracker
	return b
}

// HasError checks if the engine builder has errors.
//
// Returns:
//   - bool: True if there are errors, false otherwise.
func (b *EngineBuilder) HasError() bool {
	return b.err != nil
}

// Build builds the engine.
//
// Returns:
//   - *Engine: The engine.
//   - error: The first error recorded by the builder, or a missing/incompatible device.
func (b *EngineBuilder) Build() (*Engine, error) {
	if b.HasError() {
		return nil, b.err
	}
	logger := b.logger
	if logger == nil {
		logger = zap.NewNop()
	}

	dev, owns := b.dev, false
	if dev == nil && b.devCfg != nil {
		opened, err := device.New(*b.devCfg, logger)
		if err != nil {
			return nil, errors.Wrap(err, "open device")
		}
		dev, owns = opened, true
	}
	if dev == nil {
		return nil, errors.New("device not configured")
	}

	groupCap := b.cfg.MaxGroupSize
	if groupCap == 0 {
		groupCap = dev.MaxGroupSize()
	}
	if groupCap > dev.MaxGroupSize() {
		if owns {
			_ = dev.Close()
		}
		return nil, errors.Errorf("max_group_size %d exceeds device cap %d", groupCap, dev.MaxGroupSize())
	}

	return &Engine{
		cfg:        b.cfg,
		dev:        dev,
		ownsDevice: owns,
		groupCap:   groupCap,
		logger:     logger.Named("decode"),
		tracker:    b.tracker,
	}, nil
}

// MustBuild builds the engine and panics if there is an error.
//
// Returns:
//   - *Engine: The engine.
func (b *EngineBuilder) MustBuild() *Engine {
	e, err := b.Build()
	if err != nil {
		panic(err)
	}
	return e
}

// Config returns the engine configuration.
func (e *Engine) Config() Config {
	return e.cfg
}

// Device returns the device the engine runs on.
func (e *Engine) Device() *device.Device {
	return e.dev
}

// Close releases the device if the engine opened it.
func (e *Engine) Close() error {
	if e.ownsDevice {
		return e.dev.Close()
	}
	return nil
}

func (e *Engine) params(threshold, rescale float64) kernelParams {
	return kernelParams{
		threshold:    float32(threshold),
		rescale:      float32(rescale),
		inputSize:    float64(e.cfg.NetworkInputSize),
		targetWidth:  e.cfg.TargetWidth,
		targetHeight: e.cfg.TargetHeight,
	}
}

// streamCount is the number of streams a call uses: the configured count, bounded by
// the number of levels that have rows.
func (e *Engine) streamCount(levels []TensorLevel) int {
	busy := 0
	for _, l := range levels {
		if l.Rows > 0 {
			busy++
		}
	}
	n := e.cfg.Streams
	if busy < n {
		n = busy
	}
	if n < 1 {
		n = 1
	}
	return n
}

// Decode converts detection head outputs into a batch of validated detections.
//
// Levels are decoded in order and concatenated: row i of level L lands at batch index
// offset(L)+i, where offset(L) is the total row count of the levels before L.
//
// Arguments:
//   - ctx: Bounds the call. When it ends, remaining levels are abandoned and the call fails.
//   - levels: The head outputs. Borrowed for the duration of the call.
//   - threshold: Rows whose objectness is not strictly greater are marked invalid.
//   - rescale: Coordinate correction applied to every box field before frame scaling.
//
// Returns:
//   - *Batch: One entry per input row.
//   - error: An *Error of kind ErrMalformedLevel, ErrAllocation, ErrDevice or ErrAborted.
//     No batch is returned alongside an error.
func (e *Engine) Decode(
	ctx context.Context,
	levels []TensorLevel,
	threshold, rescale float64,
) (*Batch, error) {
	total := 0
	for i, level := range levels {
		if err := level.Validate(); err != nil {
			return nil, &Error{Kind: ErrMalformedLevel, Level: i, Op: opValidate, Err: err}
		}
		total += level.Rows
	}
	if total == 0 {
		return &Batch{Detections: []Detection{}, Validity: []bool{}}, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, classify(opSchedule, -1, err)
	}

	start := time.Now()
	// The call ID is only minted when something will be logged.
	logger := e.logger
	debug := logger.Core().Enabled(zap.DebugLevel)
	if debug {
		logger = logger.With(zap.String("call_id", uuid.NewString()))
		logger.Debug("decode started", zap.Int("levels", len(levels)), zap.Int("rows", total))
	}

	batch, err := e.decode(ctx, levels, total, e.params(threshold, rescale))
	if err != nil {
		if !debug {
			logger = logger.With(zap.String("call_id", uuid.NewString()))
		}
		logger.Warn("decode failed", zap.Error(err), zap.Duration("elapsed", time.Since(start)))
		return nil, err
	}

	e.tracker.Record(StageTotal, time.Since(start))
	if debug {
		logger.Debug("decode finished",
			zap.Int("valid", batch.Count()),
			zap.Duration("elapsed", time.Since(start)),
		)
	}
	return batch, nil
}

func (e *Engine) decode(
	ctx context.Context,
	levels []TensorLevel,
	total int,
	p kernelParams,
) (batch *Batch, err error) {
	mark := time.Now()
	out, err := allocateAssembly(e.dev, total)
	if err != nil {
		return nil, classify(opAllocate, -1, err)
	}

	streams := make([]*device.Stream, 0, e.streamCount(levels))
	defer func() {
		for _, s := range streams {
			_ = s.Close()
		}
		e.release(streams, out, err)
	}()
	for i := 0; i < cap(streams); i++ {
		s, err := e.dev.NewStream()
		if err != nil {
			return nil, classify(opSchedule, -1, err)
		}
		streams = append(streams, s)
	}
	e.tracker.Record(StageAllocate, time.Since(mark))

	mark = time.Now()
	if err := e.runLevels(ctx, streams, out, levels, p); err != nil {
		return nil, err
	}
	e.tracker.Record(StageLevels, time.Since(mark))

	mark = time.Now()
	batch, err = out.gather()
	if err != nil {
		return nil, classify(opGather, -1, err)
	}
	e.tracker.Record(StageGather, time.Since(mark))
	return batch, nil
}

// release frees the batch outputs once no stream can still write them. After an abort the
// streams may still be running, so the wait happens off the caller's goroutine.
func (e *Engine) release(streams []*device.Stream, out *assembly, cause error) {
	wait := func() {
		for _, s := range streams {
			s.Wait()
		}
		_ = out.Free()
	}
	if errors.Is(cause, ErrAborted) {
		go wait()
		return
	}
	wait()
}
