package postprocess

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nvr-ai/go-decode/decode"
)

func TestBoxIoU(t *testing.T) {
	tests := []struct {
		name string
		a, b Box
		want float64
	}{
		{name: "identical", a: Box{0, 0, 10, 10}, b: Box{0, 0, 10, 10}, want: 1},
		{name: "disjoint", a: Box{0, 0, 10, 10}, b: Box{20, 20, 5, 5}, want: 0},
		{name: "touching", a: Box{0, 0, 10, 10}, b: Box{10, 0, 10, 10}, want: 0},
		{name: "half overlap", a: Box{0, 0, 10, 10}, b: Box{5, 0, 10, 10}, want: 50.0 / 150.0},
		{name: "contained", a: Box{0, 0, 10, 10}, b: Box{2, 2, 5, 5}, want: 0.25},
		{name: "degenerate", a: Box{0, 0, 0, 10}, b: Box{0, 0, 0, 10}, want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, tt.a.IoU(tt.b), 1e-12)
			assert.InDelta(t, tt.want, tt.b.IoU(tt.a), 1e-12)
		})
	}
}

func TestNormalize(t *testing.T) {
	got := Normalize(Box{X: 400, Y: 150, Width: 80, Height: 30}, 800, 600)
	assert.InDelta(t, 0.0, got.X, 1e-12)
	assert.InDelta(t, -0.5, got.Y, 1e-12)
	assert.InDelta(t, 0.1, got.Width, 1e-12)
	assert.InDelta(t, 0.05, got.Height, 1e-12)

	corner := Normalize(Box{X: 0, Y: 600}, 800, 600)
	assert.Equal(t, -1.0, corner.X)
	assert.Equal(t, 1.0, corner.Y)
}

func testBatch() *decode.Batch {
	return &decode.Batch{
		Detections: []decode.Detection{
			{Confidence: 0.6, X: 0, Y: 0, Width: 10, Height: 10, ClassID: 0},
			{Confidence: 0.99, X: 1, Y: 1, Width: 10, Height: 10, ClassID: 7},
			{Confidence: 0.9, X: 50, Y: 50, Width: 10, Height: 10, ClassID: 1},
			{Confidence: 0.3, X: 0, Y: 0, Width: 10, Height: 10, ClassID: 0},
			{Confidence: 0.9, X: 1, Y: 0, Width: 10, Height: 10, ClassID: 0},
		},
		Validity: []bool{true, false, true, true, true},
	}
}

func TestFromBatch(t *testing.T) {
	results := FromBatch(testBatch(), Options{})
	require.Len(t, results, 4)
	assert.Equal(t, []float64{0.9, 0.9, 0.6, 0.3}, []float64{
		results[0].Score, results[1].Score, results[2].Score, results[3].Score,
	})
	// Equal scores keep batch order.
	assert.Equal(t, 1, results[0].Class)
	assert.Equal(t, 0, results[1].Class)
	for _, r := range results {
		assert.NotEqual(t, 7, r.Class, "invalid slot leaked into results")
	}

	filtered := FromBatch(testBatch(), Options{MinScore: 0.5, Classes: []int{0}})
	require.Len(t, filtered, 2)
	assert.Equal(t, 0.9, filtered[0].Score)
	assert.Equal(t, 0.6, filtered[1].Score)

	assert.Nil(t, FromBatch(nil, Options{}))
	assert.Empty(t, FromBatch(&decode.Batch{}, Options{}))
}

func TestApplyNMS(t *testing.T) {
	sorted := FromBatch(testBatch(), Options{})

	tests := []struct {
		name   string
		config NMSConfig
		want   []float64
	}{
		{
			name:   "greedy class aware",
			config: NMSConfig{Greedy: true, IoUThreshold: 0.5, ClassAware: true},
			want:   []float64{0.9, 0.9},
		},
		{
			name:   "greedy high threshold keeps all",
			config: NMSConfig{Greedy: true, IoUThreshold: 0.95, ClassAware: true},
			want:   []float64{0.9, 0.9, 0.6},
		},
		{
			name:   "parallel matches greedy",
			config: NMSConfig{IoUThreshold: 0.5, ClassAware: true, NumWorkers: 3},
			want:   []float64{0.9, 0.9},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ApplyNMS(sorted, &tt.config)
			scores := make([]float64, len(got))
			for i, r := range got {
				scores[i] = r.Score
			}
			assert.Equal(t, tt.want, scores)
		})
	}
}

func TestApplyNMSClassAgnostic(t *testing.T) {
	results := []Result{
		{Box: Box{0, 0, 10, 10}, Score: 0.9, Class: 0},
		{Box: Box{1, 1, 10, 10}, Score: 0.8, Class: 1},
		{Box: Box{100, 100, 10, 10}, Score: 0.7, Class: 1},
	}
	aware := DefaultNMSConfig()
	assert.Len(t, ApplyGreedyNMS(results, &aware), 3)

	agnostic := aware
	agnostic.ClassAware = false
	got := ApplyGreedyNMS(results, &agnostic)
	require.Len(t, got, 2)
	assert.Equal(t, 0.9, got[0].Score)
	assert.Equal(t, 0.7, got[1].Score)

	parallel := agnostic
	parallel.Greedy = false
	parallel.NumWorkers = 4
	assert.Equal(t, got, ApplyNMS(results, &parallel))

	assert.Nil(t, ApplyNMS(nil, &parallel))
}

func TestLabels(t *testing.T) {
	require.Len(t, YOLOLabels, 80)
	assert.Equal(t, "person", YOLOLabels.Name(0))
	assert.Equal(t, "toothbrush", YOLOLabels.Name(79))
	assert.Equal(t, "class_80", YOLOLabels.Name(80))

	_, ok := YOLOLabels.Lookup(-1)
	assert.False(t, ok)

	buoys := Labels{"abydos", "earth"}
	counts := buoys.Count([]Result{{Class: 0}, {Class: 1}, {Class: 0}, {Class: 4}})
	assert.Equal(t, map[string]int{"abydos": 2, "earth": 1, "class_4": 1}, counts)
}
