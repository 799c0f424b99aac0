// Package content parses flags for the content command, rebuilds a content
// stream projection from the event store, and prints its node tree.
package content

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"sort"
	"strings"

	"github.com/prometheus/client_golang/prometheus"

	entrypoint "github.com/louisbranch/contentrepository/internal/platform/cmd"
	"github.com/louisbranch/contentrepository/internal/services/content/app"
	"github.com/louisbranch/contentrepository/internal/services/content/domain/contentgraph"
	"github.com/louisbranch/contentrepository/internal/services/content/domain/nodetype"
)

// Config holds content command configuration.
type Config struct {
	app.Config
	Workspace     string `env:"CONTENTREPOSITORY_WORKSPACE" envDefault:"live"`
	ContentStream string `env:"CONTENTREPOSITORY_CONTENT_STREAM" envDefault:"live"`
	RootID        string `env:"CONTENTREPOSITORY_ROOT_ID" envDefault:"sites"`
	RootType      string `env:"CONTENTREPOSITORY_ROOT_TYPE" envDefault:"Neos.Neos:Sites"`
	// Locale selects the language of failure messages.
	Locale string `env:"CONTENTREPOSITORY_LOCALE" envDefault:"en-US"`
}

// ParseConfig parses environment and flags into Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.StringVar(&cfg.DimensionsPath, "dimensions", cfg.DimensionsPath, "Path to the dimension YAML configuration")
	fs.StringVar(&cfg.NodeTypesPath, "node-types", cfg.NodeTypesPath, "Path to the node type YAML configuration")
	fs.StringVar(&cfg.EventsDBPath, "events-db", cfg.EventsDBPath, "Path to the content events SQLite database")
	fs.StringVar(&cfg.Workspace, "workspace", cfg.Workspace, "Workspace name")
	fs.StringVar(&cfg.ContentStream, "stream", cfg.ContentStream, "Content stream id to replay")
	fs.StringVar(&cfg.RootID, "root-id", cfg.RootID, "Root node aggregate id")
	fs.StringVar(&cfg.RootType, "root-type", cfg.RootType, "Root node type name")
	fs.StringVar(&cfg.Locale, "locale", cfg.Locale, "Locale of failure messages, e.g. de-CH")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run replays the content stream and writes its node tree to out.
func Run(ctx context.Context, cfg Config, out io.Writer) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceContent, func(ctx context.Context) error {
		repo, err := app.Bootstrap(ctx, cfg.Config, prometheus.NewRegistry())
		if err != nil {
			return err
		}
		defer func() {
			if err := repo.Close(); err != nil {
				log.Printf("content: close event store: %v", err)
			}
		}()

		contentStreamID := contentgraph.ContentStreamID(cfg.ContentStream)
		rootID := contentgraph.NodeAggregateID(cfg.RootID)
		if err := repo.OpenWorkspace(contentgraph.WorkspaceName(cfg.Workspace), contentStreamID, rootID, nodetype.Name(cfg.RootType)); err != nil {
			return err
		}
		applied, err := repo.Replay(ctx, contentStreamID)
		if err != nil {
			return err
		}
		log.Printf("content: replayed %d events of %s", applied, contentStreamID)
		return writeTree(ctx, out, repo, contentStreamID, rootID)
	})
}

func writeTree(ctx context.Context, out io.Writer, repo *app.Repository, contentStreamID contentgraph.ContentStreamID, rootID contentgraph.NodeAggregateID) error {
	root, err := repo.Graph.FindNodeAggregateByID(ctx, contentStreamID, rootID)
	if err != nil {
		return err
	}
	if root == nil {
		return fmt.Errorf("root node aggregate %s not found", rootID)
	}
	visited := make(map[contentgraph.NodeAggregateID]bool)
	var walk func(a *contentgraph.NodeAggregate, depth int) error
	walk = func(a *contentgraph.NodeAggregate, depth int) error {
		if visited[a.ID] {
			return nil
		}
		visited[a.ID] = true
		if err := writeAggregate(out, a, depth); err != nil {
			return err
		}
		children, err := repo.Graph.FindChildNodeAggregates(ctx, contentStreamID, a.ID)
		if err != nil {
			return err
		}
		for _, child := range children {
			if err := walk(child, depth+1); err != nil {
				return err
			}
		}
		return nil
	}
	return walk(root, 0)
}

func writeAggregate(out io.Writer, a *contentgraph.NodeAggregate, depth int) error {
	name := string(a.Name)
	if name == "" {
		name = "-"
	}
	origins := make([]string, 0, len(a.Occupations))
	for _, o := range a.Occupations {
		if a.IsRoot() {
			break
		}
		origins = append(origins, o.Origin.String())
	}
	sort.Strings(origins)
	_, err := fmt.Fprintf(out, "%s%s %s name=%s %s origins=[%s]\n",
		strings.Repeat("  ", depth), a.ID, a.NodeTypeName, name, a.Classification, strings.Join(origins, " "))
	return err
}
