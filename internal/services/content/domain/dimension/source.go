package dimension

import (
	"fmt"
	"strings"

	apperrors "github.com/louisbranch/contentrepository/internal/platform/errors"
)

// Definition is the configuration form of a dimension.
type Definition struct {
	ID     ID                `yaml:"id"`
	Values []ValueDefinition `yaml:"values"`
	// Languages builds the value tree from BCP 47 tags instead of Values.
	Languages []string `yaml:"languages,omitempty"`
}

// ValueDefinition declares a value and its nested specializations.
type ValueDefinition struct {
	Value           string                     `yaml:"value"`
	Specializations []ValueDefinition          `yaml:"specializations,omitempty"`
	Constraints     map[string]map[string]bool `yaml:"constraints,omitempty"`
}

// Source holds the configured dimensions in priority order. The first
// dimension has the highest priority.
type Source struct {
	dimensions []*ContentDimension
	index      map[ID]int
}

// NewSource validates the definitions and builds a source. Every failure
// matches ErrConfigInvalid.
func NewSource(defs ...Definition) (*Source, error) {
	s := &Source{index: make(map[ID]int, len(defs))}
	for _, def := range defs {
		if strings.TrimSpace(string(def.ID)) == "" {
			return nil, configError("dimension id is required", nil)
		}
		if _, ok := s.index[def.ID]; ok {
			return nil, configError(fmt.Sprintf("dimension %s is declared twice", def.ID), map[string]string{"Dimension": string(def.ID)})
		}
		if len(def.Languages) > 0 {
			if len(def.Values) > 0 {
				return nil, configError(fmt.Sprintf("dimension %s declares both values and languages", def.ID), map[string]string{"Dimension": string(def.ID)})
			}
			langDef, err := LanguageDefinition(def.ID, def.Languages)
			if err != nil {
				return nil, err
			}
			def = langDef
		}
		dim, err := newContentDimension(def)
		if err != nil {
			return nil, err
		}
		s.index[def.ID] = len(s.dimensions)
		s.dimensions = append(s.dimensions, dim)
	}
	if err := s.validateConstraints(); err != nil {
		return nil, err
	}
	return s, nil
}

// Dimension looks up a dimension by id.
func (s *Source) Dimension(id ID) (*ContentDimension, bool) {
	i, ok := s.index[id]
	if !ok {
		return nil, false
	}
	return s.dimensions[i], true
}

// Dimensions returns the dimensions in priority order.
func (s *Source) Dimensions() []*ContentDimension {
	out := make([]*ContentDimension, len(s.dimensions))
	copy(out, s.dimensions)
	return out
}

// IDs returns the dimension ids in priority order.
func (s *Source) IDs() []ID {
	out := make([]ID, len(s.dimensions))
	for i, d := range s.dimensions {
		out[i] = d.id
	}
	return out
}

// MaximumDepth returns the greatest value depth across all dimensions.
func (s *Source) MaximumDepth() int {
	deepest := 0
	for _, d := range s.dimensions {
		deepest = max(deepest, d.maxDepth)
	}
	return deepest
}

func newContentDimension(def Definition) (*ContentDimension, error) {
	if len(def.Values) == 0 {
		return nil, configError(fmt.Sprintf("dimension %s has no values", def.ID), map[string]string{"Dimension": string(def.ID)})
	}
	d := &ContentDimension{id: def.ID, index: make(map[string]int)}

	type pending struct {
		def            ValueDefinition
		depth          int
		generalization string
	}
	// Depth-first, declaration order: push children reversed.
	stack := make([]pending, 0, len(def.Values))
	for i := len(def.Values) - 1; i >= 0; i-- {
		stack = append(stack, pending{def: def.Values[i]})
	}
	for len(stack) > 0 {
		item := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		name := item.def.Value
		if strings.TrimSpace(name) == "" {
			return nil, configError(fmt.Sprintf("dimension %s has an empty value", def.ID), map[string]string{"Dimension": string(def.ID)})
		}
		if name == Wildcard {
			return nil, configError(fmt.Sprintf("dimension %s uses reserved value %q", def.ID, Wildcard), map[string]string{"Dimension": string(def.ID)})
		}
		if _, ok := d.index[name]; ok {
			return nil, configError(
				fmt.Sprintf("dimension %s declares value %s twice", def.ID, name),
				map[string]string{"Dimension": string(def.ID), "Value": name},
			)
		}

		specializations := make([]string, 0, len(item.def.Specializations))
		for _, child := range item.def.Specializations {
			specializations = append(specializations, child.Value)
		}
		d.index[name] = len(d.values)
		d.values = append(d.values, Value{
			Value:           name,
			Depth:           item.depth,
			Generalization:  item.generalization,
			Specializations: specializations,
			Constraints:     NewConstraints(item.def.Constraints),
		})
		if item.depth > d.maxDepth {
			d.maxDepth = item.depth
		}
		for i := len(item.def.Specializations) - 1; i >= 0; i-- {
			stack = append(stack, pending{def: item.def.Specializations[i], depth: item.depth + 1, generalization: name})
		}
	}
	return d, nil
}

// validateConstraints rejects constraints naming undefined dimensions or values.
func (s *Source) validateConstraints() error {
	for _, d := range s.dimensions {
		for _, v := range d.values {
			for _, target := range v.Constraints.Dimensions() {
				meta := map[string]string{"Dimension": string(d.id), "Value": v.Value, "ConstrainedDimension": string(target)}
				if target == d.id {
					return configError(fmt.Sprintf("value %s of dimension %s constrains its own dimension", v.Value, d.id), meta)
				}
				other, ok := s.Dimension(target)
				if !ok {
					return configError(fmt.Sprintf("value %s of dimension %s constrains undefined dimension %s", v.Value, d.id, target), meta)
				}
				dc, _ := v.Constraints.For(target)
				for value := range dc.Values {
					if _, ok := other.Value(value); !ok {
						meta["ConstrainedValue"] = value
						return configError(fmt.Sprintf("value %s of dimension %s constrains undefined value %s of dimension %s", v.Value, d.id, value, target), meta)
					}
				}
			}
		}
	}
	return nil
}

func configError(message string, metadata map[string]string) error {
	return apperrors.WithMetadata(apperrors.CodeDimensionConfigInvalid, message, metadata)
}
