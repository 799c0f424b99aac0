package node

import (
	"context"
	"fmt"
	"strings"

	apperrors "github.com/louisbranch/contentrepository/internal/platform/errors"
	"github.com/louisbranch/contentrepository/internal/services/content/domain/contentgraph"
	"github.com/louisbranch/contentrepository/internal/services/content/domain/dimensionspace"
	"github.com/louisbranch/contentrepository/internal/services/content/domain/nodetype"
)

// tetheredPlan collects the events that give every variant of a parent the
// tethered children its type declares.
//
// Aggregates created earlier in the same plan are invisible to the adapter,
// so they are tracked by node path ("footer", "footer/meta") and later
// variants of the parent vary them instead of creating a second aggregate.
type tetheredPlan struct {
	h               *Handler
	contentStreamID contentgraph.ContentStreamID
	// supplied ids keyed by node path.
	supplied map[contentgraph.NodeName]contentgraph.NodeAggregateID
	// removed aggregates are ignored when looking up existing children.
	removed map[contentgraph.NodeAggregateID]bool

	minted   map[string]contentgraph.NodeAggregateID
	inFlight map[string]*contentgraph.NodeAggregate
	order    []string
	payloads []Payload
}

func (h *Handler) newTetheredPlan(contentStreamID contentgraph.ContentStreamID, supplied map[contentgraph.NodeName]contentgraph.NodeAggregateID, removed map[contentgraph.NodeAggregateID]bool) *tetheredPlan {
	return &tetheredPlan{
		h:               h,
		contentStreamID: contentStreamID,
		supplied:        supplied,
		removed:         removed,
		minted:          make(map[string]contentgraph.NodeAggregateID),
		inFlight:        make(map[string]*contentgraph.NodeAggregate),
	}
}

// complete adds the missing tethered children of every variant of parent,
// as declared by parentType.
func (p *tetheredPlan) complete(ctx context.Context, parent *contentgraph.NodeAggregate, parentType nodetype.Name) error {
	for _, occupation := range parent.Occupations {
		for _, tn := range p.h.NodeTypes.TetheredNodes(parentType) {
			name := contentgraph.NodeName(tn.Name)
			existing, err := p.h.Adapter.FindChildNodeByNameInSubgraph(ctx, p.contentStreamID, occupation.Origin.ToPoint(), parent.ID, name)
			if err != nil {
				return fmt.Errorf("find tethered child %s of %s: %w", name, parent.ID, err)
			}
			if existing != nil && !p.removed[existing.AggregateID] {
				continue
			}
			if err := p.ensure(ctx, parent.ID, tn, tn.Name, occupation.Origin, occupation.Covered); err != nil {
				return err
			}
		}
	}
	return nil
}

// ensure makes the tethered child at path exist at origin: by varying an
// aggregate that already carries the name, or by creating a new one.
func (p *tetheredPlan) ensure(ctx context.Context, parentID contentgraph.NodeAggregateID, tn nodetype.TetheredNode, path string, origin dimensionspace.OriginPoint, coverage dimensionspace.PointSet) error {
	if pending, ok := p.inFlight[path]; ok {
		if pending.Occupies(origin) {
			return nil
		}
		return p.varyInFlight(path, pending.Occupations[0].Origin, origin)
	}

	candidates, err := p.h.Adapter.FindChildNodeAggregatesByName(ctx, p.contentStreamID, parentID, contentgraph.NodeName(tn.Name))
	if err != nil {
		return fmt.Errorf("find children named %s of %s: %w", tn.Name, parentID, err)
	}
	var existing []*contentgraph.NodeAggregate
	for _, c := range candidates {
		if !p.removed[c.ID] {
			existing = append(existing, c)
		}
	}
	switch len(existing) {
	case 0:
		return p.create(parentID, tn, path, origin, coverage)
	case 1:
		child := existing[0]
		if !child.IsTethered() {
			return apperrors.WithMetadata(
				apperrors.CodeNodeNameOccupied,
				fmt.Sprintf("node name %q below %s is taken by untethered node aggregate %s", tn.Name, parentID, child.ID),
				map[string]string{"NodeName": tn.Name, "ParentNodeAggregateID": string(parentID), "NodeAggregateID": string(child.ID)},
			)
		}
		if child.Occupies(origin) {
			return nil
		}
		payloads, err := p.h.variantsWithTetheredDescendants(ctx, p.contentStreamID, child, child.Occupations[0].Origin, origin)
		if err != nil {
			return err
		}
		p.payloads = append(p.payloads, payloads...)
		return nil
	default:
		return apperrors.WithMetadata(
			apperrors.CodeNodeNameOccupied,
			fmt.Sprintf("tethered node name %q below %s is ambiguous", tn.Name, parentID),
			map[string]string{"NodeName": tn.Name, "ParentNodeAggregateID": string(parentID)},
		)
	}
}

// create adds a new tethered aggregate at path and, below it, the tethered
// children its own type declares.
func (p *tetheredPlan) create(parentID contentgraph.NodeAggregateID, tn nodetype.TetheredNode, path string, origin dimensionspace.OriginPoint, coverage dimensionspace.PointSet) error {
	childID, err := p.idFor(path)
	if err != nil {
		return err
	}
	p.payloads = append(p.payloads, NodeAggregateWithNodeWasCreated{
		ContentStreamID:             p.contentStreamID,
		NodeAggregateID:             childID,
		NodeTypeName:                tn.Type,
		OriginDimensionSpacePoint:   origin,
		CoveredDimensionSpacePoints: coverage,
		ParentNodeAggregateID:       parentID,
		NodeName:                    contentgraph.NodeName(tn.Name),
		Classification:              contentgraph.ClassificationTethered,
	})
	p.inFlight[path] = &contentgraph.NodeAggregate{
		ContentStreamID: p.contentStreamID,
		ID:              childID,
		NodeTypeName:    tn.Type,
		Name:            contentgraph.NodeName(tn.Name),
		Classification:  contentgraph.ClassificationTethered,
		Occupations:     []contentgraph.Occupation{{Origin: origin, Covered: coverage}},
	}
	p.order = append(p.order, path)

	for _, nested := range p.h.NodeTypes.TetheredNodes(tn.Type) {
		if err := p.create(childID, nested, path+"/"+nested.Name, origin, coverage); err != nil {
			return err
		}
	}
	return nil
}

// varyInFlight varies the pending aggregate at path and its pending
// descendants from source to target.
func (p *tetheredPlan) varyInFlight(path string, source, target dimensionspace.OriginPoint) error {
	for _, candidate := range p.order {
		if candidate != path && !strings.HasPrefix(candidate, path+"/") {
			continue
		}
		pending := p.inFlight[candidate]
		if !pending.Occupies(source) || pending.Occupies(target) {
			continue
		}
		payload, coverage, err := p.h.variantPayload(p.contentStreamID, pending, source, target)
		if err != nil {
			return err
		}
		p.payloads = append(p.payloads, payload)
		p.inFlight[candidate] = withVariant(pending, target, coverage)
	}
	return nil
}

// idFor returns the supplied id for path, or one minted id per path.
func (p *tetheredPlan) idFor(path string) (contentgraph.NodeAggregateID, error) {
	if supplied, ok := p.supplied[contentgraph.NodeName(path)]; ok {
		return supplied, nil
	}
	if minted, ok := p.minted[path]; ok {
		return minted, nil
	}
	minted, err := p.h.mintID()
	if err != nil {
		return "", err
	}
	p.minted[path] = minted
	return minted, nil
}
