// Package app wires the content repository write side from configuration.
package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/prometheus/client_golang/prometheus"

	apperrors "github.com/louisbranch/contentrepository/internal/platform/errors"
	"github.com/louisbranch/contentrepository/internal/services/content/domain/command"
	"github.com/louisbranch/contentrepository/internal/services/content/domain/contentgraph"
	"github.com/louisbranch/contentrepository/internal/services/content/domain/contentgraph/memory"
	"github.com/louisbranch/contentrepository/internal/services/content/domain/dimension"
	"github.com/louisbranch/contentrepository/internal/services/content/domain/dimensionspace"
	"github.com/louisbranch/contentrepository/internal/services/content/domain/engine"
	"github.com/louisbranch/contentrepository/internal/services/content/domain/event"
	"github.com/louisbranch/contentrepository/internal/services/content/domain/node"
	"github.com/louisbranch/contentrepository/internal/services/content/domain/nodetype"
	"github.com/louisbranch/contentrepository/internal/services/content/observability/metrics"
	"github.com/louisbranch/contentrepository/internal/services/content/storage/sqlite"
)

// ErrConfigRequired indicates a blank configuration path.
var ErrConfigRequired = errors.New("configuration path is required")

// Config holds the content repository file locations.
type Config struct {
	DimensionsPath string `env:"CONTENTREPOSITORY_DIMENSIONS_PATH" envDefault:"dimensions.yaml"`
	NodeTypesPath  string `env:"CONTENTREPOSITORY_NODE_TYPES_PATH" envDefault:"nodetypes.yaml"`
	EventsDBPath   string `env:"CONTENTREPOSITORY_EVENTS_DB_PATH" envDefault:"data/content-events.db"`
}

// Validate checks that every path is set.
func (c Config) Validate() error {
	paths := []struct{ name, value string }{
		{"dimensions", c.DimensionsPath},
		{"node types", c.NodeTypesPath},
		{"events db", c.EventsDBPath},
	}
	for _, p := range paths {
		if strings.TrimSpace(p.value) == "" {
			return fmt.Errorf("%w: %s", ErrConfigRequired, p.name)
		}
	}
	return nil
}

// Repository is a bootstrapped content repository.
type Repository struct {
	Dimensions *dimensionspace.Graph
	NodeTypes  *nodetype.Manager
	// Graph is the in-memory projection the handlers read from.
	Graph   *memory.Graph
	Store   *sqlite.Store
	Engine  engine.Handler
	Metrics *metrics.Metrics
}

// Bootstrap loads dimensions and node types, builds the variation graph,
// opens the event store, and wires the engine. Configuration errors are
// returned as is so the caller can exit on them.
func Bootstrap(ctx context.Context, cfg Config, reg prometheus.Registerer) (*Repository, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	source, err := dimension.LoadFile(cfg.DimensionsPath)
	if err != nil {
		return nil, err
	}
	dimensions := dimensionspace.NewBuilder(dimensionspace.NewZookeeper(source)).Build()
	nodeTypes, err := nodetype.LoadFile(cfg.NodeTypesPath)
	if err != nil {
		return nil, err
	}

	registry := event.NewRegistry()
	if err := node.RegisterEvents(registry); err != nil {
		return nil, fmt.Errorf("register events: %w", err)
	}

	if dir := filepath.Dir(cfg.EventsDBPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create events dir: %w", err)
		}
	}
	store, err := sqlite.Open(cfg.EventsDBPath)
	if err != nil {
		return nil, err
	}

	m, err := metrics.New(reg)
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	m.SetDimensionSpacePoints(dimensions.AllowedSubspace().Len())

	graph := memory.NewGraph()
	r := &Repository{
		Dimensions: dimensions,
		NodeTypes:  nodeTypes,
		Graph:      graph,
		Store:      store,
		Metrics:    m,
		Engine: engine.Handler{
			Events:  registry,
			Nodes:   &node.Handler{Graph: dimensions, NodeTypes: nodeTypes, Adapter: graph},
			Sink:    store,
			Applier: graph,
			Metrics: m,
		},
	}
	log.Printf("content: %d dimension space points, %d node types", dimensions.AllowedSubspace().Len(), len(nodeTypes.Names()))
	return r, nil
}

// Close releases the event store.
func (r *Repository) Close() error {
	if r == nil {
		return nil
	}
	return r.Store.Close()
}

// Handle runs a command through the engine.
func (r *Repository) Handle(ctx context.Context, cmd command.Command, meta command.Metadata) ([]event.Event, error) {
	return r.Engine.Handle(ctx, cmd, meta)
}

// OpenWorkspace registers an empty content stream with a root aggregate of
// rootType covering the whole allowed subspace and points workspace at it.
func (r *Repository) OpenWorkspace(workspace contentgraph.WorkspaceName, contentStreamID contentgraph.ContentStreamID, rootID contentgraph.NodeAggregateID, rootType nodetype.Name) error {
	t, ok := r.NodeTypes.Get(rootType)
	if !ok {
		return apperrors.WithMetadata(apperrors.CodeNodeTypeNotFound, "root node type is not defined", map[string]string{"NodeTypeName": string(rootType)})
	}
	if !t.Root {
		return apperrors.WithMetadata(apperrors.CodeNodeConstraintViolation, "node type is not a root type", map[string]string{"NodeTypeName": string(rootType)})
	}
	if err := r.Graph.CreateContentStream(contentStreamID); err != nil {
		return err
	}
	if err := r.Graph.AddWorkspace(contentgraph.Workspace{Name: workspace, CurrentContentStreamID: contentStreamID}); err != nil {
		return err
	}
	return r.Graph.AddRootNodeAggregate(contentStreamID, rootID, rootType, r.Dimensions.AllowedSubspace())
}

// Replay applies the stored events of a content stream that the projection
// has not seen yet and returns how many were applied. The content stream must
// already exist in the projection.
func (r *Repository) Replay(ctx context.Context, contentStreamID contentgraph.ContentStreamID) (int, error) {
	version, err := r.Graph.FindVersionForContentStream(ctx, contentStreamID)
	if err != nil {
		return 0, err
	}
	if !version.Known {
		return 0, fmt.Errorf("%w: %s", memory.ErrContentStreamUnknown, contentStreamID)
	}
	events, err := r.Store.ListEvents(ctx, event.StreamName(string(contentStreamID)), version.Value)
	if err != nil {
		return 0, err
	}
	if err := r.Graph.ApplyAll(ctx, events); err != nil {
		return 0, fmt.Errorf("replay %s: %w", contentStreamID, err)
	}
	return len(events), nil
}
