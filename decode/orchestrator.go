package decode

import (
	"context"

	"github.com/nvr-ai/go-decode/device"
)

// enqueueLevel queues one level's transfer, launch and input release on s, writing rows
// at batch slots [offset, offset+rows). It returns the offset of the next level.
//
// The transferred input is released behind the level's own work on the same stream, so
// the release happens on every exit path and never before the kernel has read it.
func (e *Engine) enqueueLevel(
	s *device.Stream,
	out *assembly,
	index int,
	level TensorLevel,
	offset int,
	p kernelParams,
) (int, error) {
	next := offset + level.Rows
	if level.Rows == 0 {
		return next, nil
	}

	input, err := device.Alloc[float32](e.dev, len(level.Data))
	if err != nil {
		return offset, classify(opAllocate, index, err)
	}
	defer func() { _ = s.FreeAsync(input) }()

	if err := input.CopyFromHostAsync(s, level.Data); err != nil {
		return offset, classify(opUpload, index, err)
	}

	grid := PlanLaunch(level.Rows, e.groupCap)
	kernel := decodeKernel(
		input.View(),
		level.Cols,
		level.Rows,
		offset,
		p,
		out.detections.View(),
		out.validity.View(),
	)
	if err := s.Launch(grid, kernel); err != nil {
		return offset, classify(opDispatch, index, err)
	}
	return next, nil
}

// runLevels processes levels in input order. With a single stream every level is waited
// on before the next begins; with several, levels are spread round-robin and all streams
// are waited on at the end. Either way the offset is threaded level to level, so output
// placement does not depend on execution order.
func (e *Engine) runLevels(
	ctx context.Context,
	streams []*device.Stream,
	out *assembly,
	levels []TensorLevel,
	p kernelParams,
) error {
	serial := len(streams) == 1
	offset := 0
	for i, level := range levels {
		if err := ctx.Err(); err != nil {
			return classify(opSchedule, i, err)
		}

		s := streams[i%len(streams)]
		next, err := e.enqueueLevel(s, out, i, level, offset, p)
		if err != nil {
			return err
		}
		if serial && level.Rows > 0 {
			if err := s.Synchronize(ctx); err != nil {
				return classify(opSync, i, err)
			}
		}
		offset = next
	}

	if !serial {
		for _, s := range streams {
			if err := s.Synchronize(ctx); err != nil {
				return classify(opSync, -1, err)
			}
		}
	}
	return nil
}
