// Package dimensions parses flags for the dimensions command and prints the
// variation graph of a dimension configuration.
package dimensions

import (
	"context"
	"flag"
	"fmt"
	"io"
	"sort"
	"strings"

	entrypoint "github.com/louisbranch/contentrepository/internal/platform/cmd"
	"github.com/louisbranch/contentrepository/internal/services/content/domain/dimension"
	"github.com/louisbranch/contentrepository/internal/services/content/domain/dimensionspace"
)

// Config holds dimensions command configuration.
type Config struct {
	ConfigPath string `env:"CONTENTREPOSITORY_DIMENSIONS_PATH" envDefault:"dimensions.yaml"`
	// Point restricts the output to one point, as key=value pairs separated
	// by commas.
	Point string
	// Locale selects the language of failure messages.
	Locale string `env:"CONTENTREPOSITORY_LOCALE" envDefault:"en-US"`
}

// ParseConfig parses environment and flags into Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.StringVar(&cfg.ConfigPath, "config", cfg.ConfigPath, "Path to the dimension YAML configuration")
	fs.StringVar(&cfg.Point, "point", cfg.Point, "Only print this point, e.g. language=de,audience=default")
	fs.StringVar(&cfg.Locale, "locale", cfg.Locale, "Locale of failure messages, e.g. de-CH")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run loads the configuration and writes one line per allowed point.
func Run(ctx context.Context, cfg Config, out io.Writer) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceDimensions, func(context.Context) error {
		source, err := dimension.LoadFile(cfg.ConfigPath)
		if err != nil {
			return err
		}
		graph := dimensionspace.NewBuilder(dimensionspace.NewZookeeper(source)).Build()

		points := graph.WeightedPoints()
		if strings.TrimSpace(cfg.Point) != "" {
			p, err := ParsePoint(cfg.Point)
			if err != nil {
				return err
			}
			wp, ok := graph.WeightedPoint(p)
			if !ok {
				return fmt.Errorf("%w: %s", dimensionspace.ErrPointNotFound, p)
			}
			points = []dimensionspace.WeightedPoint{wp}
		}
		for _, wp := range points {
			if err := writePoint(out, graph, wp); err != nil {
				return err
			}
		}
		return nil
	})
}

// ParsePoint reads "key=value,key=value" coordinates.
func ParsePoint(raw string) (dimensionspace.Point, error) {
	coordinates := make(map[string]string)
	for _, pair := range strings.Split(raw, ",") {
		key, value, ok := strings.Cut(strings.TrimSpace(pair), "=")
		key, value = strings.TrimSpace(key), strings.TrimSpace(value)
		if !ok || key == "" || value == "" {
			return dimensionspace.Point{}, fmt.Errorf("invalid coordinate %q, want key=value", pair)
		}
		if _, dup := coordinates[key]; dup {
			return dimensionspace.Point{}, fmt.Errorf("coordinate %s given twice", key)
		}
		coordinates[key] = value
	}
	return dimensionspace.PointFromStrings(coordinates), nil
}

func writePoint(out io.Writer, graph *dimensionspace.Graph, wp dimensionspace.WeightedPoint) error {
	weights := make([]string, len(wp.Weight))
	for i, w := range wp.Weight {
		weights[i] = fmt.Sprintf("%s:%d", w.Dimension, w.Depth)
	}
	primary := "-"
	if p, ok := graph.PrimaryGeneralization(wp.Point); ok {
		primary = p.String()
	}
	specializations := graph.IndexedSpecializations(wp.Point).Points()
	rendered := make([]string, len(specializations))
	for i, p := range specializations {
		rendered[i] = p.String()
	}
	sort.Strings(rendered)
	_, err := fmt.Fprintf(out, "%s weight=%s primary=%s specializations=[%s]\n",
		wp.Point, strings.Join(weights, ","), primary, strings.Join(rendered, " "))
	return err
}
