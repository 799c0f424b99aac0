package memory

import (
	"context"
	"fmt"
	"slices"

	"github.com/louisbranch/contentrepository/internal/services/content/domain/command"
	"github.com/louisbranch/contentrepository/internal/services/content/domain/contentgraph"
	"github.com/louisbranch/contentrepository/internal/services/content/domain/dimensionspace"
	"github.com/louisbranch/contentrepository/internal/services/content/domain/event"
	"github.com/louisbranch/contentrepository/internal/services/content/domain/node"
)

// HandledTypes returns the event types Apply projects.
func (g *Graph) HandledTypes() []event.Type {
	return node.EventTypes()
}

// ApplyAll projects events in order, stopping at the first failure.
func (g *Graph) ApplyAll(ctx context.Context, events []event.Event) error {
	for _, evt := range events {
		if err := g.Apply(ctx, evt); err != nil {
			return err
		}
	}
	return nil
}

// Apply projects one event. A positive event version becomes the version of
// its content stream.
func (g *Graph) Apply(_ context.Context, evt event.Event) error {
	payload, err := node.DecodePayload(evt)
	if err != nil {
		return err
	}
	g.mu.Lock()
	defer g.mu.Unlock()

	contentStreamID := contentgraph.ContentStreamID(evt.ContentStreamID)
	s, ok := g.streams[contentStreamID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrContentStreamUnknown, contentStreamID)
	}

	switch p := payload.(type) {
	case *node.NodeAggregateWithNodeWasCreated:
		err = s.createAggregate(p)
	case *node.NodeAggregateWasRemoved:
		err = s.removeAggregate(p.NodeAggregateID, p.AffectedCoveredDimensionSpacePoints)
	case *node.NodeAggregateTypeWasChanged:
		err = s.update(p.NodeAggregateID, func(a *aggregate) { a.nodeTypeName = p.NewNodeTypeName })
	case *node.NodeAggregateNameWasChanged:
		err = s.update(p.NodeAggregateID, func(a *aggregate) { a.name = p.NewNodeName })
	case *node.NodeReferencesWereSet:
		err = s.setReferences(p)
	case *node.NodeSpecializationVariantWasCreated:
		err = s.addVariant(p.NodeAggregateID, p.SourceOrigin, p.SpecializationOrigin, p.SpecializationCoverage)
	case *node.NodeGeneralizationVariantWasCreated:
		err = s.addVariant(p.NodeAggregateID, p.SourceOrigin, p.GeneralizationOrigin, p.GeneralizationCoverage)
	case *node.NodePeerVariantWasCreated:
		err = s.addVariant(p.NodeAggregateID, p.SourceOrigin, p.PeerOrigin, p.PeerCoverage)
	default:
		err = fmt.Errorf("%w: %s", event.ErrTypeUnknown, evt.Type)
	}
	if err != nil {
		return fmt.Errorf("apply %s: %w", evt.Type, err)
	}
	if evt.Version > 0 {
		s.version = evt.Version
	}
	return nil
}

func (s *stream) createAggregate(p *node.NodeAggregateWithNodeWasCreated) error {
	if _, exists := s.aggregates[p.NodeAggregateID]; exists {
		return fmt.Errorf("%w: %s", ErrNodeAggregateDuplicate, p.NodeAggregateID)
	}
	a := &aggregate{
		id:             p.NodeAggregateID,
		nodeTypeName:   p.NodeTypeName,
		name:           p.NodeName,
		classification: p.Classification,
		variants: []*variant{{
			origin:     p.OriginDimensionSpacePoint,
			covered:    p.CoveredDimensionSpacePoints,
			properties: p.InitialPropertyValues,
		}},
		parents: make(map[string]contentgraph.NodeAggregateID),
	}
	for _, point := range p.CoveredDimensionSpacePoints.Points() {
		a.parents[point.Hash()] = p.ParentNodeAggregateID
	}
	s.aggregates[a.id] = a

	at := len(s.order)
	if p.SucceedingNodeAggregateID != "" {
		if i := slices.Index(s.order, p.SucceedingNodeAggregateID); i >= 0 {
			at = i
		}
	}
	s.order = slices.Insert(s.order, at, a.id)
	return nil
}

// removeAggregate detaches id and its descendants at points. Variants left
// without coverage disappear, and so do aggregates left without variants.
func (s *stream) removeAggregate(id contentgraph.NodeAggregateID, points dimensionspace.PointSet) error {
	if _, ok := s.aggregates[id]; !ok {
		return fmt.Errorf("%w: %s", ErrNodeAggregateUnknown, id)
	}
	for _, p := range points.Points() {
		s.removeAt(id, p)
	}
	s.prune()
	return nil
}

func (s *stream) removeAt(id contentgraph.NodeAggregateID, p dimensionspace.Point) {
	a := s.aggregates[id]
	v := a.variantCovering(p)
	if v == nil {
		return
	}
	hash := p.Hash()
	for _, childID := range s.order {
		if s.aggregates[childID].parents[hash] == id {
			s.removeAt(childID, p)
		}
	}
	v.covered = v.covered.Difference(dimensionspace.NewPointSet(p))
	delete(a.parents, hash)
}

func (s *stream) prune() {
	kept := s.order[:0]
	for _, id := range s.order {
		a := s.aggregates[id]
		a.variants = slices.DeleteFunc(a.variants, func(v *variant) bool { return v.covered.IsEmpty() })
		if len(a.variants) == 0 && a.classification != contentgraph.ClassificationRoot {
			delete(s.aggregates, id)
			continue
		}
		kept = append(kept, id)
	}
	s.order = kept
}

func (s *stream) update(id contentgraph.NodeAggregateID, change func(*aggregate)) error {
	a, ok := s.aggregates[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNodeAggregateUnknown, id)
	}
	change(a)
	return nil
}

func (s *stream) setReferences(p *node.NodeReferencesWereSet) error {
	a, ok := s.aggregates[p.SourceNodeAggregateID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNodeAggregateUnknown, p.SourceNodeAggregateID)
	}
	for _, origin := range p.AffectedSourceOriginDimensionSpacePoints.Origins() {
		v := a.variantAt(origin)
		if v == nil {
			continue
		}
		if v.references == nil {
			v.references = make(map[string][]command.ReferenceTarget)
		}
		v.references[p.ReferenceName] = slices.Clone(p.References)
	}
	return nil
}

// addVariant copies the variant at source to target. The new variant takes
// over coverage from the existing ones and hangs below the source's parent.
func (s *stream) addVariant(id contentgraph.NodeAggregateID, source, target dimensionspace.OriginPoint, coverage dimensionspace.PointSet) error {
	a, ok := s.aggregates[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNodeAggregateUnknown, id)
	}
	from := a.variantAt(source)
	if from == nil {
		return fmt.Errorf("node aggregate %s does not occupy %s", id, source)
	}
	parentID, ok := a.parents[source.ToPoint().Hash()]
	if !ok {
		for _, p := range from.covered.Points() {
			if parentID, ok = a.parents[p.Hash()]; ok {
				break
			}
		}
	}

	for _, v := range a.variants {
		v.covered = v.covered.Difference(coverage)
	}
	properties := make(map[string]any, len(from.properties))
	for k, value := range from.properties {
		properties[k] = value
	}
	references := make(map[string][]command.ReferenceTarget, len(from.references))
	for k, value := range from.references {
		references[k] = slices.Clone(value)
	}
	a.variants = append(a.variants, &variant{
		origin:     target,
		covered:    coverage,
		properties: properties,
		references: references,
	})
	if ok {
		for _, p := range coverage.Points() {
			a.parents[p.Hash()] = parentID
		}
	}
	return nil
}
