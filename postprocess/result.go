package postprocess

import (
	"sort"

	"github.com/nvr-ai/go-decode/decode"
)

// Result represents a single detection result.
type Result struct {
	// The bounding box of the result.
	Box Box `json:"box"`
	// The confidence score of the result.
	Score float64 `json:"score"`
	// The predicted class index of the result.
	Class int `json:"class"`
}

// Options filter the results taken from a batch.
type Options struct {
	// MinScore drops results whose confidence is below it.
	MinScore float64
	// Classes keeps only the listed class indices. Empty keeps every class.
	Classes []int
}

// FromBatch collects the valid detections of a batch, sorted by descending score.
// Invalid slots are never read.
//
// Arguments:
//   - b: The decoded batch.
//   - opts: Filters applied to each valid detection.
//
// Returns:
//   - []Result: The results, highest score first. Ties keep batch order.
func FromBatch(b *decode.Batch, opts Options) []Result {
	if b == nil {
		return nil
	}

	var keep map[int]struct{}
	if len(opts.Classes) > 0 {
		keep = make(map[int]struct{}, len(opts.Classes))
		for _, c := range opts.Classes {
			keep[c] = struct{}{}
		}
	}

	results := make([]Result, 0, b.Count())
	for i := 0; i < b.Len(); i++ {
		det, ok := b.At(i)
		if !ok || det.Confidence < opts.MinScore {
			continue
		}
		if keep != nil {
			if _, ok := keep[det.ClassID]; !ok {
				continue
			}
		}
		results = append(results, Result{
			Box:   Box{X: det.X, Y: det.Y, Width: det.Width, Height: det.Height},
			Score: det.Confidence,
			Class: det.ClassID,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	return results
}
