package contentgraph

import (
	"context"

	apperrors "github.com/louisbranch/contentrepository/internal/platform/errors"
	"github.com/louisbranch/contentrepository/internal/services/content/domain/dimensionspace"
)

// ErrNodeAggregatesTypeIsAmbiguous is returned when the variants of one
// aggregate disagree on their node type.
var ErrNodeAggregatesTypeIsAmbiguous = apperrors.New(apperrors.CodeNodeAggregatesTypeAmbiguous, "node aggregate type is ambiguous")

// Adapter is the read surface of the projected content graph consumed by
// command handlers. Lookups return nil or empty results when nothing matches;
// errors are reserved for ambiguity and adapter failures.
type Adapter interface {
	FindNodeAggregateByID(ctx context.Context, contentStreamID ContentStreamID, id NodeAggregateID) (*NodeAggregate, error)
	FindParentNodeAggregates(ctx context.Context, contentStreamID ContentStreamID, childID NodeAggregateID) ([]*NodeAggregate, error)
	FindParentNodeAggregateByChildOrigin(ctx context.Context, contentStreamID ContentStreamID, childID NodeAggregateID, childOrigin dimensionspace.OriginPoint) (*NodeAggregate, error)
	FindChildNodeAggregates(ctx context.Context, contentStreamID ContentStreamID, parentID NodeAggregateID) ([]*NodeAggregate, error)
	FindTetheredChildNodeAggregates(ctx context.Context, contentStreamID ContentStreamID, parentID NodeAggregateID) ([]*NodeAggregate, error)
	FindChildNodeAggregatesByName(ctx context.Context, contentStreamID ContentStreamID, parentID NodeAggregateID, name NodeName) ([]*NodeAggregate, error)
	// OccupiedDimensionSpacePointsByChildNodeName returns the points among
	// toCheck where the parent already has a child carrying name. parentOrigin
	// is the origin the named child is about to occupy.
	OccupiedDimensionSpacePointsByChildNodeName(ctx context.Context, contentStreamID ContentStreamID, name NodeName, parentID NodeAggregateID, parentOrigin dimensionspace.OriginPoint, toCheck dimensionspace.PointSet) (dimensionspace.PointSet, error)
	FindParentNodeInSubgraph(ctx context.Context, contentStreamID ContentStreamID, point dimensionspace.Point, childID NodeAggregateID) (*Node, error)
	FindChildNodeByNameInSubgraph(ctx context.Context, contentStreamID ContentStreamID, point dimensionspace.Point, parentID NodeAggregateID, name NodeName) (*Node, error)
	HasContentStream(ctx context.Context, contentStreamID ContentStreamID) (bool, error)
	FindStateForContentStream(ctx context.Context, contentStreamID ContentStreamID) (ContentStreamState, bool, error)
	FindVersionForContentStream(ctx context.Context, contentStreamID ContentStreamID) (Version, error)
	FindWorkspaceByName(ctx context.Context, name WorkspaceName) (*Workspace, error)
}
