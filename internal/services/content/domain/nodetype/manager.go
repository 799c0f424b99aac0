package nodetype

import (
	"fmt"
	"sort"

	"github.com/louisbranch/contentrepository/internal/platform/config"
	apperrors "github.com/louisbranch/contentrepository/internal/platform/errors"
)

// Manager resolves node type names to their merged definitions.
type Manager struct {
	types map[Name]*NodeType
}

// NewManager resolves inheritance for every definition. Unknown supertypes,
// inheritance cycles, and tethered children of unknown types fail with
// ErrConfigInvalid.
func NewManager(defs map[Name]Definition) (*Manager, error) {
	m := &Manager{types: make(map[Name]*NodeType, len(defs))}
	names := make([]Name, 0, len(defs))
	for name := range defs {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })

	resolving := make(map[Name]bool)
	var resolve func(name Name) (*NodeType, error)
	resolve = func(name Name) (*NodeType, error) {
		if t, ok := m.types[name]; ok {
			return t, nil
		}
		def, ok := defs[name]
		if !ok {
			return nil, configError(fmt.Sprintf("node type %s is not defined", name), name)
		}
		if resolving[name] {
			return nil, configError(fmt.Sprintf("node type %s inherits from itself", name), name)
		}
		resolving[name] = true
		defer delete(resolving, name)

		t := &NodeType{Name: name, SuperTypes: append([]Name(nil), def.SuperTypes...), Abstract: def.Abstract, Root: def.Root}
		for _, superName := range def.SuperTypes {
			super, err := resolve(superName)
			if err != nil {
				return nil, err
			}
			t.inherit(super)
		}
		t.declare(def)
		m.types[name] = t
		return t, nil
	}

	for _, name := range names {
		if name == "" || name == Wildcard {
			return nil, configError(fmt.Sprintf("invalid node type name %q", name), name)
		}
		if _, err := resolve(name); err != nil {
			return nil, err
		}
	}
	for _, name := range names {
		t := m.types[name]
		for _, tn := range t.TetheredNodes {
			if _, ok := m.types[tn.Type]; !ok {
				return nil, configError(fmt.Sprintf("tethered node %s of %s has undefined type %s", tn.Name, name, tn.Type), name)
			}
		}
		for _, r := range t.References {
			switch r.Scope {
			case ScopeNode, ScopeSpecializations, ScopeNodeAggregate:
			default:
				return nil, configError(fmt.Sprintf("reference %s of %s has unknown scope %q", r.Name, name, r.Scope), name)
			}
			for propName, propType := range r.Properties {
				if !propType.Known() {
					return nil, configError(fmt.Sprintf("reference property %s.%s of %s has unknown type %q", r.Name, propName, name, propType), name)
				}
			}
		}
	}
	return m, nil
}

func (t *NodeType) inherit(super *NodeType) {
	t.Root = t.Root || super.Root
	for _, tn := range super.TetheredNodes {
		t.setTethered(tn)
	}
	t.ChildConstraints = t.ChildConstraints.merge(super.ChildConstraints)
	for name, c := range super.TetheredConstraints {
		t.setTetheredConstraints(name, c)
	}
	for _, r := range super.References {
		t.setReference(r)
	}
}

func (t *NodeType) declare(def Definition) {
	for _, child := range def.ChildNodes {
		t.setTethered(TetheredNode{Name: child.Name, Type: child.Type})
		if len(child.Constraints.NodeTypes) > 0 {
			t.setTetheredConstraints(child.Name, child.Constraints.NodeTypes)
		}
	}
	t.ChildConstraints = t.ChildConstraints.merge(def.Constraints.NodeTypes)
	for _, ref := range def.References {
		scope := ref.Scope
		if scope == "" {
			scope = ScopeNode
		}
		var properties map[string]PropertyType
		if len(ref.Properties) > 0 {
			properties = make(map[string]PropertyType, len(ref.Properties))
			for name, p := range ref.Properties {
				properties[name] = p.Type
			}
		}
		t.setReference(Reference{Name: ref.Name, Scope: scope, MaxItems: ref.MaxItems, TargetConstraints: ref.Constraints.NodeTypes, Properties: properties})
	}
}

func (t *NodeType) setTethered(tn TetheredNode) {
	for i, existing := range t.TetheredNodes {
		if existing.Name == tn.Name {
			t.TetheredNodes[i] = tn
			return
		}
	}
	t.TetheredNodes = append(t.TetheredNodes, tn)
}

func (t *NodeType) setTetheredConstraints(name string, c Constraints) {
	if t.TetheredConstraints == nil {
		t.TetheredConstraints = make(map[string]Constraints)
	}
	t.TetheredConstraints[name] = t.TetheredConstraints[name].merge(c)
}

func (t *NodeType) setReference(r Reference) {
	for i, existing := range t.References {
		if existing.Name == r.Name {
			t.References[i] = r
			return
		}
	}
	t.References = append(t.References, r)
}

// LoadFile reads a YAML document mapping type names to definitions.
func LoadFile(path string) (*Manager, error) {
	var defs map[Name]Definition
	if err := config.LoadYAML(path, &defs); err != nil {
		return nil, apperrors.WrapWithMetadata(apperrors.CodeNodeTypeConfigInvalid, "load node types", map[string]string{"Path": path}, err)
	}
	return NewManager(defs)
}

// Get returns the resolved type.
func (m *Manager) Get(name Name) (*NodeType, bool) {
	t, ok := m.types[name]
	return t, ok
}

// Has reports whether the type is defined.
func (m *Manager) Has(name Name) bool {
	_, ok := m.types[name]
	return ok
}

// Names returns every defined type name, sorted.
func (m *Manager) Names() []Name {
	out := make([]Name, 0, len(m.types))
	for name := range m.types {
		out = append(out, name)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// TetheredNodes returns the tethered children declared by the type.
func (m *Manager) TetheredNodes(name Name) []TetheredNode {
	t, ok := m.types[name]
	if !ok {
		return nil
	}
	return append([]TetheredNode(nil), t.TetheredNodes...)
}

// IsOfType reports whether name is super or inherits from it.
func (m *Manager) IsOfType(name, super Name) bool {
	for _, level := range m.lineage(name) {
		for _, n := range level {
			if n == super {
				return true
			}
		}
	}
	return false
}

// AllowsChild reports whether a child of type child named childName may live
// under a parent of type parent. A tethered child name only admits its
// declared type; other names follow the parent's child constraints.
func (m *Manager) AllowsChild(parent Name, childName string, child Name) bool {
	p, ok := m.types[parent]
	if !ok {
		return false
	}
	if childName != "" {
		if tn, ok := p.TetheredNode(childName); ok {
			return m.IsOfType(child, tn.Type)
		}
	}
	return p.ChildConstraints.resolve(m.lineage(child))
}

// AllowsGrandchild reports whether a grandchild of type child may live under
// the tethered child parentName of a grandparent of type grandparent. Only
// tethered children carry grandchild constraints.
func (m *Manager) AllowsGrandchild(grandparent Name, parentName string, child Name) bool {
	g, ok := m.types[grandparent]
	if !ok {
		return false
	}
	if _, ok := g.TetheredNode(parentName); !ok {
		return true
	}
	return g.TetheredConstraints[parentName].resolve(m.lineage(child))
}

// AllowsReferenceTarget reports whether target may be referenced by ref.
func (m *Manager) AllowsReferenceTarget(ref Reference, target Name) bool {
	return ref.TargetConstraints.resolve(m.lineage(target))
}

// lineage returns name followed by its supertypes, one slice per
// inheritance distance.
func (m *Manager) lineage(name Name) [][]Name {
	levels := [][]Name{{name}}
	seen := map[Name]bool{name: true}
	for current := levels[0]; ; {
		var next []Name
		for _, n := range current {
			t, ok := m.types[n]
			if !ok {
				continue
			}
			for _, s := range t.SuperTypes {
				if !seen[s] {
					seen[s] = true
					next = append(next, s)
				}
			}
		}
		if len(next) == 0 {
			return levels
		}
		levels = append(levels, next)
		current = next
	}
}

func configError(message string, name Name) error {
	return apperrors.WithMetadata(apperrors.CodeNodeTypeConfigInvalid, message, map[string]string{"NodeTypeName": string(name)})
}
