package dimensionspace

import (
	apperrors "github.com/louisbranch/contentrepository/internal/platform/errors"
)

// ErrPointNotFound is returned when a point is outside the allowed subspace.
var ErrPointNotFound = apperrors.New(apperrors.CodeDimensionSpacePointNotFound, "dimension space point not found")

// PointNotFound reports p as outside the allowed subspace. The result matches
// ErrPointNotFound.
func PointNotFound(p Point) error {
	return apperrors.WithMetadata(
		apperrors.CodeDimensionSpacePointNotFound,
		p.String()+" was not found in the allowed dimension subspace",
		map[string]string{"DimensionSpacePoint": p.String()},
	)
}
