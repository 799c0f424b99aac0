package dimensionspace

import (
	"encoding/json"
	"fmt"
)

// PointSet is an immutable set of points, unique by hash. Iteration follows
// insertion order so derived event payloads are deterministic.
type PointSet struct {
	points []Point
	index  map[string]struct{}
}

// NewPointSet builds a set, keeping the first occurrence of duplicates.
func NewPointSet(points ...Point) PointSet {
	s := PointSet{index: make(map[string]struct{}, len(points))}
	for _, p := range points {
		s.add(p)
	}
	return s
}

func (s *PointSet) add(p Point) {
	h := p.Hash()
	if _, ok := s.index[h]; ok {
		return
	}
	s.index[h] = struct{}{}
	s.points = append(s.points, p)
}

// Len returns the number of points.
func (s PointSet) Len() int {
	return len(s.points)
}

// IsEmpty reports whether the set has no points.
func (s PointSet) IsEmpty() bool {
	return len(s.points) == 0
}

// Contains reports whether p is in the set.
func (s PointSet) Contains(p Point) bool {
	_, ok := s.index[p.Hash()]
	return ok
}

// Points returns the points in iteration order.
func (s PointSet) Points() []Point {
	out := make([]Point, len(s.points))
	copy(out, s.points)
	return out
}

// Hashes returns the point hashes in iteration order.
func (s PointSet) Hashes() []string {
	out := make([]string, len(s.points))
	for i, p := range s.points {
		out[i] = p.Hash()
	}
	return out
}

// With returns a copy of the set including p.
func (s PointSet) With(p Point) PointSet {
	out := NewPointSet(s.points...)
	out.add(p)
	return out
}

// Intersect keeps the points of s that are also in other, in s's order.
func (s PointSet) Intersect(other PointSet) PointSet {
	out := NewPointSet()
	for _, p := range s.points {
		if other.Contains(p) {
			out.add(p)
		}
	}
	return out
}

// Union appends the points of other missing from s.
func (s PointSet) Union(other PointSet) PointSet {
	out := NewPointSet(s.points...)
	for _, p := range other.points {
		out.add(p)
	}
	return out
}

// Difference keeps the points of s that are not in other.
func (s PointSet) Difference(other PointSet) PointSet {
	out := NewPointSet()
	for _, p := range s.points {
		if !other.Contains(p) {
			out.add(p)
		}
	}
	return out
}

// Equal reports set equality regardless of order.
func (s PointSet) Equal(other PointSet) bool {
	if s.Len() != other.Len() {
		return false
	}
	for _, p := range s.points {
		if !other.Contains(p) {
			return false
		}
	}
	return true
}

// MarshalJSON renders the set as an array in iteration order.
func (s PointSet) MarshalJSON() ([]byte, error) {
	if s.points == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(s.points)
}

// UnmarshalJSON decodes an array of coordinate objects.
func (s *PointSet) UnmarshalJSON(data []byte) error {
	var points []Point
	if err := json.Unmarshal(data, &points); err != nil {
		return fmt.Errorf("decode dimension space point set: %w", err)
	}
	*s = NewPointSet(points...)
	return nil
}

// OriginPointSet is a PointSet of origins.
type OriginPointSet struct {
	set PointSet
}

// NewOriginPointSet builds a set of origins.
func NewOriginPointSet(origins ...OriginPoint) OriginPointSet {
	points := make([]Point, len(origins))
	for i, o := range origins {
		points[i] = o.point
	}
	return OriginPointSet{set: NewPointSet(points...)}
}

// OriginPointSetFrom treats every point of s as an origin.
func OriginPointSetFrom(s PointSet) OriginPointSet {
	return OriginPointSet{set: NewPointSet(s.points...)}
}

// Len returns the number of origins.
func (s OriginPointSet) Len() int {
	return s.set.Len()
}

// Contains reports whether o is in the set.
func (s OriginPointSet) Contains(o OriginPoint) bool {
	return s.set.Contains(o.point)
}

// Origins returns the origins in iteration order.
func (s OriginPointSet) Origins() []OriginPoint {
	out := make([]OriginPoint, len(s.set.points))
	for i, p := range s.set.points {
		out[i] = OriginPoint{point: p}
	}
	return out
}

// ToPointSet returns the origins as plain points.
func (s OriginPointSet) ToPointSet() PointSet {
	return NewPointSet(s.set.points...)
}

// Equal reports set equality regardless of order.
func (s OriginPointSet) Equal(other OriginPointSet) bool {
	return s.set.Equal(other.set)
}

// MarshalJSON renders the set as an array in iteration order.
func (s OriginPointSet) MarshalJSON() ([]byte, error) {
	return s.set.MarshalJSON()
}

// UnmarshalJSON decodes an array of coordinate objects.
func (s *OriginPointSet) UnmarshalJSON(data []byte) error {
	return s.set.UnmarshalJSON(data)
}
