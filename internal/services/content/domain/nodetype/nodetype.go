// Package nodetype defines node types: the schema that decides which children
// a node may have, which children are tethered to it, and which references it
// may hold.
package nodetype

import (
	"math"

	apperrors "github.com/louisbranch/contentrepository/internal/platform/errors"
)

var (
	// ErrConfigInvalid marks node type configuration that cannot be used.
	ErrConfigInvalid = apperrors.New(apperrors.CodeNodeTypeConfigInvalid, "node type configuration is invalid")
)

// Name identifies a node type, e.g. "Neos.Neos:Document".
type Name string

// String returns the raw type name.
func (n Name) String() string {
	return string(n)
}

// TetheredNode is a child created together with its parent and named by the
// parent's type.
type TetheredNode struct {
	Name string
	Type Name
}

// ReferenceScope decides which origins of a source aggregate a reference
// change applies to.
type ReferenceScope string

const (
	// ScopeNode applies to the one source origin.
	ScopeNode ReferenceScope = "node"
	// ScopeSpecializations applies to the source origin and every occupied
	// specialization of it.
	ScopeSpecializations ReferenceScope = "specializations"
	// ScopeNodeAggregate applies to every occupied origin.
	ScopeNodeAggregate ReferenceScope = "nodeAggregate"
)

// Reference declares a named reference property.
type Reference struct {
	Name  string
	Scope ReferenceScope
	// MaxItems limits the number of targets; zero means unbounded.
	MaxItems          int
	TargetConstraints Constraints
	// Properties maps the declared reference property names to their types.
	Properties map[string]PropertyType
}

// PropertyType is the declared type of a reference property value.
type PropertyType string

const (
	PropertyString  PropertyType = "string"
	PropertyBoolean PropertyType = "boolean"
	PropertyInteger PropertyType = "integer"
	PropertyFloat   PropertyType = "float"
	PropertyArray   PropertyType = "array"
)

// Known reports whether t is one of the supported property types.
func (t PropertyType) Known() bool {
	switch t {
	case PropertyString, PropertyBoolean, PropertyInteger, PropertyFloat, PropertyArray:
		return true
	}
	return false
}

// Accepts reports whether v is a valid value for t. Numbers decoded from
// JSON arrive as float64, so integral floats satisfy PropertyInteger.
func (t PropertyType) Accepts(v any) bool {
	switch t {
	case PropertyString:
		_, ok := v.(string)
		return ok
	case PropertyBoolean:
		_, ok := v.(bool)
		return ok
	case PropertyInteger:
		switch n := v.(type) {
		case int, int32, int64:
			return true
		case float64:
			return n == math.Trunc(n)
		}
		return false
	case PropertyFloat:
		switch v.(type) {
		case float32, float64, int, int32, int64:
			return true
		}
		return false
	case PropertyArray:
		switch v.(type) {
		case []any, []string:
			return true
		}
		return false
	}
	return false
}

// NodeType is a fully resolved type with inherited declarations merged in.
type NodeType struct {
	Name       Name
	SuperTypes []Name
	Abstract   bool
	Root       bool
	// TetheredNodes keeps declaration order, supertype declarations first.
	TetheredNodes       []TetheredNode
	ChildConstraints    Constraints
	TetheredConstraints map[string]Constraints
	References          []Reference
}

// TetheredNode returns the tethered child declared under name.
func (t *NodeType) TetheredNode(name string) (TetheredNode, bool) {
	for _, tn := range t.TetheredNodes {
		if tn.Name == name {
			return tn, true
		}
	}
	return TetheredNode{}, false
}

// Reference returns the reference declared under name.
func (t *NodeType) Reference(name string) (Reference, bool) {
	for _, r := range t.References {
		if r.Name == name {
			return r, true
		}
	}
	return Reference{}, false
}
