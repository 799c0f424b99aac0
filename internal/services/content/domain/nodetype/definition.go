package nodetype

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Definition is the configuration form of a node type.
type Definition struct {
	SuperTypes  []Name                `yaml:"superTypes,omitempty"`
	Abstract    bool                  `yaml:"abstract,omitempty"`
	Root        bool                  `yaml:"root,omitempty"`
	ChildNodes  ChildNodeDefinitions  `yaml:"childNodes,omitempty"`
	Constraints ConstraintsDefinition `yaml:"constraints,omitempty"`
	References  ReferenceDefinitions  `yaml:"references,omitempty"`
}

// ConstraintsDefinition wraps node type constraints.
type ConstraintsDefinition struct {
	NodeTypes Constraints `yaml:"nodeTypes,omitempty"`
}

// ChildNodeDefinition declares one tethered child.
type ChildNodeDefinition struct {
	Name        string                `yaml:"-"`
	Type        Name                  `yaml:"type"`
	Constraints ConstraintsDefinition `yaml:"constraints,omitempty"`
}

// ChildNodeDefinitions keeps tethered children in document order.
type ChildNodeDefinitions []ChildNodeDefinition

// UnmarshalYAML decodes a mapping of child name to definition in order.
func (d *ChildNodeDefinitions) UnmarshalYAML(value *yaml.Node) error {
	return decodeOrderedMapping(value, "childNodes", func(name string, node *yaml.Node) error {
		var def ChildNodeDefinition
		if err := node.Decode(&def); err != nil {
			return err
		}
		def.Name = name
		*d = append(*d, def)
		return nil
	})
}

// ReferenceDefinition declares one reference property.
type ReferenceDefinition struct {
	Name        string                        `yaml:"-"`
	Scope       ReferenceScope                `yaml:"scope,omitempty"`
	MaxItems    int                           `yaml:"maxItems,omitempty"`
	Constraints ConstraintsDefinition         `yaml:"constraints,omitempty"`
	Properties  map[string]PropertyDefinition `yaml:"properties,omitempty"`
}

// PropertyDefinition declares one property carried by each reference target.
type PropertyDefinition struct {
	Type PropertyType `yaml:"type"`
}

// ReferenceDefinitions keeps references in document order.
type ReferenceDefinitions []ReferenceDefinition

// UnmarshalYAML decodes a mapping of reference name to definition in order.
func (d *ReferenceDefinitions) UnmarshalYAML(value *yaml.Node) error {
	return decodeOrderedMapping(value, "references", func(name string, node *yaml.Node) error {
		var def ReferenceDefinition
		if err := node.Decode(&def); err != nil {
			return err
		}
		def.Name = name
		*d = append(*d, def)
		return nil
	})
}

func decodeOrderedMapping(value *yaml.Node, field string, decode func(name string, node *yaml.Node) error) error {
	if value.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: %s must be a mapping", value.Line, field)
	}
	for i := 0; i+1 < len(value.Content); i += 2 {
		key, node := value.Content[i], value.Content[i+1]
		if err := decode(key.Value, node); err != nil {
			return fmt.Errorf("%s.%s: %w", field, key.Value, err)
		}
	}
	return nil
}
