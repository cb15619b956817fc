package board

import "math"

// Rect is an axis-aligned rectangle in screen coordinates.
type Rect struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

func (r Rect) corners() [4][2]float64 {
	right, bottom := r.Left+r.Width, r.Top+r.Height
	return [4][2]float64{
		{r.Left, r.Top},
		{right, r.Top},
		{r.Left, bottom},
		{right, bottom},
	}
}

// DropTarget is a droppable task or column and where it is drawn.
type DropTarget struct {
	ID   string `json:"id"`
	Rect Rect   `json:"rect"`
}

// ClosestCorners picks the target whose corners are, on average, nearest to the
// matching corners of the dragged rectangle. Ties go to the earlier target.
func ClosestCorners(active Rect, targets []DropTarget) (string, bool) {
	if len(targets) == 0 {
		return "", false
	}
	ac := active.corners()
	best, bestDist := "", math.Inf(1)
	for _, t := range targets {
		tc := t.Rect.corners()
		var sum float64
		for i := range ac {
			sum += math.Hypot(ac[i][0]-tc[i][0], ac[i][1]-tc[i][1])
		}
		if d := sum / 4; d < bestDist {
			best, bestDist = t.ID, d
		}
	}
	return best, true
}
