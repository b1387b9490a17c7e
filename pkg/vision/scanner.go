package vision

import (
	"fmt"

	"github.com/menta2k/focalcrop/pkg/backend"
	"github.com/menta2k/focalcrop/pkg/colorspace"
	"github.com/menta2k/focalcrop/pkg/types"
)

// Axis selects the direction of a slice scan
type Axis int

const (
	// Horizontal scans full-height columns from left to right and locates X
	Horizontal Axis = iota
	// Vertical scans full-width rows from top to bottom and locates Y
	Vertical
)

func (a Axis) String() string {
	if a == Horizontal {
		return "horizontal"
	}
	return "vertical"
}

// ScanResult is the outcome of scanning one axis
type ScanResult struct {
	// Center is the middle of the best slice as a fraction of the axis length
	Center float64
	// Weight is the directional bias: -1, 0 or +1
	Weight int
	// Best is the index of the highest scoring slice
	Best int
	// Scores holds the score of every slice in order
	Scores []float64
}

// Scanner scores equal slices of an image along one axis
type Scanner struct {
	img backend.RegionFeatureProvider
}

// NewScanner creates a scanner over img
func NewScanner(img backend.RegionFeatureProvider) *Scanner {
	return &Scanner{img: img}
}

// Scan divides the axis into sliceCount strips and scores each one by its
// color distance to reference (scaled by weight) plus its entropy (scaled by
// 1-weight). A weight of 0 skips the color sampling and a weight of 1 skips
// the entropy computation.
func (s *Scanner) Scan(axis Axis, sliceCount int, weight float64, reference colorspace.Lab) (ScanResult, error) {
	if sliceCount < 2 {
		return ScanResult{}, &types.GeometryError{Op: "scan", Reason: fmt.Sprintf("slice count must be at least 2, got %d", sliceCount)}
	}
	if weight < 0 || weight > 1 {
		return ScanResult{}, &types.GeometryError{Op: "scan", Reason: fmt.Sprintf("weight must be within [0,1], got %g", weight)}
	}

	size := s.img.Size()
	total := size.Width
	if axis == Vertical {
		total = size.Height
	}
	sliceSize := total / sliceCount
	if sliceSize == 0 {
		return ScanResult{}, &types.GeometryError{
			Op:     "scan",
			Reason: fmt.Sprintf("%s axis of %s is shorter than %d slices", axis, size, sliceCount),
		}
	}

	scores := make([]float64, sliceCount)
	for i := range scores {
		region := types.Region{X: sliceSize * i, Width: sliceSize, Height: size.Height}
		if axis == Vertical {
			region = types.Region{Y: sliceSize * i, Width: size.Width, Height: sliceSize}
		}

		var colorScore, entropyScore float64
		if weight != 0 {
			avg, err := s.img.AverageColor(region)
			if err != nil {
				return ScanResult{}, fmt.Errorf("slice %d average color: %w", i, err)
			}
			colorScore = colorspace.Distance(reference, colorspace.RGBToLab(avg))
		}
		if weight != 1 {
			e, err := s.img.Entropy(region)
			if err != nil {
				return ScanResult{}, fmt.Errorf("slice %d entropy: %w", i, err)
			}
			entropyScore = e
		}

		scores[i] = colorScore*weight + entropyScore*(1-weight)
	}

	best := BestSlice(scores)
	return ScanResult{
		Center: (float64(best) + 0.5) * float64(sliceSize) / float64(total),
		Weight: SliceWeight(scores, best),
		Best:   best,
		Scores: scores,
	}, nil
}

// BestSlice returns the index of the highest score. Ties go to the first index.
func BestSlice(scores []float64) int {
	best := 0
	for i, v := range scores {
		if v > scores[best] {
			best = i
		}
	}
	return best
}

// SliceWeight decides which side of the best slice deserves more room.
//
// When every score is equal there is nothing to prefer and the result is 0.
// A best slice at the start yields +1 and one at the end yields -1. Otherwise
// the sign of (mean of the scores before best) - (mean of the scores after
// best) is returned.
func SliceWeight(scores []float64, best int) int {
	n := len(scores)
	if n == 0 || allEqual(scores) {
		return 0
	}

	switch best {
	case 0:
		return 1
	case n - 1:
		return -1
	}

	var before, after float64
	for _, v := range scores[:best] {
		before += v
	}
	for _, v := range scores[best+1:] {
		after += v
	}
	before /= float64(best)
	after /= float64(n - best - 1)

	switch {
	case before > after:
		return 1
	case before < after:
		return -1
	default:
		return 0
	}
}

func allEqual(scores []float64) bool {
	for _, v := range scores[1:] {
		if v != scores[0] {
			return false
		}
	}
	return true
}
