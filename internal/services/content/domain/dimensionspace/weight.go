package dimensionspace

import "github.com/louisbranch/contentrepository/internal/services/content/domain/dimension"

// DimensionWeight is the depth of a point's value in one dimension.
type DimensionWeight struct {
	Dimension dimension.ID
	Depth     int
}

// Weight holds per-dimension depths in dimension priority order.
type Weight []DimensionWeight

// Depth returns the depth recorded for dimension id.
func (w Weight) Depth(id dimension.ID) int {
	for _, dw := range w {
		if dw.Dimension == id {
			return dw.Depth
		}
	}
	return 0
}

// Total sums the depths across dimensions.
func (w Weight) Total() int {
	total := 0
	for _, dw := range w {
		total += dw.Depth
	}
	return total
}

// Normalize encodes the weight as one integer in mixed radix with the given
// base. The highest priority dimension is the most significant digit, so a
// difference there outweighs any difference in later dimensions.
func (w Weight) Normalize(base int) int {
	normalized := 0
	for _, dw := range w {
		normalized = normalized*base + dw.Depth
	}
	return normalized
}

// WeightedPoint is a point with its weight.
type WeightedPoint struct {
	Point  Point
	Weight Weight
}

// Hash returns the point hash.
func (wp WeightedPoint) Hash() string {
	return wp.Point.Hash()
}
