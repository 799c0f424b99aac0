// Package dimensionspace models points in the space spanned by the content
// dimensions and the variation graph relating them.
package dimensionspace

import (
	"encoding/json"
	"fmt"

	"github.com/louisbranch/contentrepository/internal/services/content/core/encoding"
	"github.com/louisbranch/contentrepository/internal/services/content/domain/dimension"
)

// Point is an immutable coordinate: one value per configured dimension.
// Points are equal iff their coordinates are equal, which is decided by hash.
type Point struct {
	coordinates map[dimension.ID]string
	hash        string
}

// NewPoint copies coordinates into a point.
func NewPoint(coordinates map[dimension.ID]string) Point {
	copied := make(map[dimension.ID]string, len(coordinates))
	for k, v := range coordinates {
		copied[k] = v
	}
	return Point{coordinates: copied, hash: hashCoordinates(copied)}
}

// PointFromStrings is NewPoint for plain string keys.
func PointFromStrings(coordinates map[string]string) Point {
	copied := make(map[dimension.ID]string, len(coordinates))
	for k, v := range coordinates {
		copied[dimension.ID(k)] = v
	}
	return Point{coordinates: copied, hash: hashCoordinates(copied)}
}

// Hash returns the canonical identity of the point.
func (p Point) Hash() string {
	if p.hash == "" {
		return hashCoordinates(p.coordinates)
	}
	return p.hash
}

// Coordinate returns the value of dimension id.
func (p Point) Coordinate(id dimension.ID) (string, bool) {
	v, ok := p.coordinates[id]
	return v, ok
}

// Coordinates returns a copy of the coordinates.
func (p Point) Coordinates() map[dimension.ID]string {
	out := make(map[dimension.ID]string, len(p.coordinates))
	for k, v := range p.coordinates {
		out[k] = v
	}
	return out
}

// Vary returns a copy of the point with dimension id set to value.
func (p Point) Vary(id dimension.ID, value string) Point {
	varied := p.Coordinates()
	varied[id] = value
	return Point{coordinates: varied, hash: hashCoordinates(varied)}
}

// Equal reports whether both points have the same coordinates.
func (p Point) Equal(other Point) bool {
	return p.Hash() == other.Hash()
}

// String renders the point as canonical JSON.
func (p Point) String() string {
	return string(encoding.CoordinatesJSON(stringMap(p.coordinates)))
}

// MarshalJSON renders the coordinates with sorted keys.
func (p Point) MarshalJSON() ([]byte, error) {
	return encoding.CoordinatesJSON(stringMap(p.coordinates)), nil
}

// UnmarshalJSON decodes a coordinate object.
func (p *Point) UnmarshalJSON(data []byte) error {
	var raw map[string]string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decode dimension space point: %w", err)
	}
	*p = PointFromStrings(raw)
	return nil
}

// OriginPoint is a point used as the authored home of node content.
type OriginPoint struct {
	point Point
}

// NewOriginPoint marks p as an origin.
func NewOriginPoint(p Point) OriginPoint {
	return OriginPoint{point: p}
}

// ToPoint returns the underlying point.
func (o OriginPoint) ToPoint() Point {
	return o.point
}

// Hash returns the canonical identity of the origin.
func (o OriginPoint) Hash() string {
	return o.point.Hash()
}

// Coordinate returns the value of dimension id.
func (o OriginPoint) Coordinate(id dimension.ID) (string, bool) {
	return o.point.Coordinate(id)
}

// Equal reports whether both origins have the same coordinates.
func (o OriginPoint) Equal(other OriginPoint) bool {
	return o.point.Equal(other.point)
}

func (o OriginPoint) String() string {
	return o.point.String()
}

// MarshalJSON renders the coordinates with sorted keys.
func (o OriginPoint) MarshalJSON() ([]byte, error) {
	return o.point.MarshalJSON()
}

// UnmarshalJSON decodes a coordinate object.
func (o *OriginPoint) UnmarshalJSON(data []byte) error {
	return o.point.UnmarshalJSON(data)
}

func hashCoordinates(coordinates map[dimension.ID]string) string {
	return encoding.CoordinatesHash(stringMap(coordinates))
}

func stringMap(coordinates map[dimension.ID]string) map[string]string {
	out := make(map[string]string, len(coordinates))
	for k, v := range coordinates {
		out[string(k)] = v
	}
	return out
}
