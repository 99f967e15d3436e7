package postprocess

import "strconv"

// Labels maps class indices to names.
type Labels []string

// YOLOLabels are the 80 COCO classes in the order YOLO heads emit them.
var YOLOLabels = Labels{
	"person", "bicycle", "car", "motorcycle", "airplane", "bus", "train", "truck", "boat",
	"traffic light", "fire hydrant", "stop sign", "parking meter", "bench", "bird", "cat", "dog", "horse",
	"sheep", "cow", "elephant", "bear", "zebra", "giraffe", "backpack", "umbrella", "handbag", "tie",
	"suitcase", "frisbee", "skis", "snowboard", "sports ball", "kite", "baseball bat", "baseball glove",
	"skateboard", "surfboard", "tennis racket", "bottle", "wine glass", "cup", "fork", "knife", "spoon",
	"bowl", "banana", "apple", "sandwich", "orange", "broccoli", "carrot", "hot dog", "pizza", "donut",
	"cake", "chair", "couch", "potted plant", "bed", "dining table", "toilet", "tv", "laptop", "mouse",
	"remote", "keyboard", "cell phone", "microwave", "oven", "toaster", "sink", "refrigerator", "book",
	"clock", "vase", "scissors", "teddy bear", "hair drier", "toothbrush",
}

// Lookup returns the name of class and whether the index is known.
func (l Labels) Lookup(class int) (string, bool) {
	if class < 0 || class >= len(l) {
		return "", false
	}
	return l[class], true
}

// Name returns the name of class, or "class_<n>" for unknown indices.
func (l Labels) Name(class int) string {
	if name, ok := l.Lookup(class); ok {
		return name
	}
	return "class_" + strconv.Itoa(class)
}

// Count tallies results per class name.
func (l Labels) Count(results []Result) map[string]int {
	counts := make(map[string]int)
	for _, r := range results {
		counts[l.Name(r.Class)]++
	}
	return counts
}
