// Package contentgraph describes the projected content graph as seen by
// command handlers: node aggregates, their nodes per dimension space point,
// content streams, and workspaces.
package contentgraph

import (
	"github.com/louisbranch/contentrepository/internal/services/content/domain/dimensionspace"
	"github.com/louisbranch/contentrepository/internal/services/content/domain/nodetype"
)

// ContentStreamID identifies a content stream.
type ContentStreamID string

// WorkspaceName identifies a workspace.
type WorkspaceName string

// NodeAggregateID identifies a node aggregate across all its variants.
type NodeAggregateID string

// NodeName is the name of a node under its parent.
type NodeName string

// ContentStreamState is the lifecycle state of a content stream.
type ContentStreamState string

const (
	ContentStreamStateCreated          ContentStreamState = "created"
	ContentStreamStateInUseByWorkspace ContentStreamState = "in_use_by_workspace"
	ContentStreamStateRebasing         ContentStreamState = "rebasing"
	ContentStreamStateRebaseError      ContentStreamState = "rebase_error"
	ContentStreamStateNoLongerInUse    ContentStreamState = "no_longer_in_use"
	ContentStreamStateClosed           ContentStreamState = "closed"
)

// Version is the version of a content stream, if known.
type Version struct {
	Value int
	Known bool
}

// KnownVersion returns a known version.
func KnownVersion(v int) Version {
	return Version{Value: v, Known: true}
}

// Classification distinguishes root, tethered, and regular aggregates.
type Classification string

const (
	ClassificationRegular  Classification = "regular"
	ClassificationRoot     Classification = "root"
	ClassificationTethered Classification = "tethered"
)

// Node is one variant of a node aggregate as visible in a subgraph.
type Node struct {
	AggregateID    NodeAggregateID
	NodeTypeName   nodetype.Name
	Name           NodeName
	Classification Classification
	Origin         dimensionspace.OriginPoint
	// SubgraphPoint is the covered point the node was found at.
	SubgraphPoint dimensionspace.Point
}

// Occupation is one variant of an aggregate: the origin it was authored at
// and the points it is visible at.
type Occupation struct {
	Origin  dimensionspace.OriginPoint
	Covered dimensionspace.PointSet
}

// NodeAggregate is the set of all variants sharing one identity.
type NodeAggregate struct {
	ContentStreamID ContentStreamID
	ID              NodeAggregateID
	NodeTypeName    nodetype.Name
	Name            NodeName
	Classification  Classification
	Occupations     []Occupation
}

// IsRoot reports whether the aggregate is a root.
func (a *NodeAggregate) IsRoot() bool {
	return a.Classification == ClassificationRoot
}

// IsTethered reports whether the aggregate is tethered to its parent.
func (a *NodeAggregate) IsTethered() bool {
	return a.Classification == ClassificationTethered
}

// OccupiedPoints returns the origins of every variant.
func (a *NodeAggregate) OccupiedPoints() dimensionspace.OriginPointSet {
	origins := make([]dimensionspace.OriginPoint, len(a.Occupations))
	for i, o := range a.Occupations {
		origins[i] = o.Origin
	}
	return dimensionspace.NewOriginPointSet(origins...)
}

// CoveredPoints returns the union of every variant's coverage.
func (a *NodeAggregate) CoveredPoints() dimensionspace.PointSet {
	covered := dimensionspace.NewPointSet()
	for _, o := range a.Occupations {
		covered = covered.Union(o.Covered)
	}
	return covered
}

// Occupies reports whether a variant originates at origin.
func (a *NodeAggregate) Occupies(origin dimensionspace.OriginPoint) bool {
	for _, o := range a.Occupations {
		if o.Origin.Equal(origin) {
			return true
		}
	}
	return false
}

// Covers reports whether any variant is visible at p.
func (a *NodeAggregate) Covers(p dimensionspace.Point) bool {
	for _, o := range a.Occupations {
		if o.Covered.Contains(p) {
			return true
		}
	}
	return false
}

// CoverageByOccupant returns the points covered by the variant at origin.
func (a *NodeAggregate) CoverageByOccupant(origin dimensionspace.OriginPoint) dimensionspace.PointSet {
	for _, o := range a.Occupations {
		if o.Origin.Equal(origin) {
			return o.Covered
		}
	}
	return dimensionspace.NewPointSet()
}

// OccupationByCovered returns the origin of the variant visible at p.
func (a *NodeAggregate) OccupationByCovered(p dimensionspace.Point) (dimensionspace.OriginPoint, bool) {
	for _, o := range a.Occupations {
		if o.Covered.Contains(p) {
			return o.Origin, true
		}
	}
	return dimensionspace.OriginPoint{}, false
}

// Workspace points at the content stream it currently writes to.
type Workspace struct {
	Name                   WorkspaceName
	BaseWorkspaceName      WorkspaceName
	CurrentContentStreamID ContentStreamID
}
