package command

import (
	"context"
	"strings"

	apperrors "github.com/louisbranch/contentrepository/internal/platform/errors"
	"github.com/louisbranch/contentrepository/internal/services/content/domain/contentgraph"
	"github.com/louisbranch/contentrepository/internal/services/content/domain/dimensionspace"
	"github.com/louisbranch/contentrepository/internal/services/content/domain/event"
	"github.com/louisbranch/contentrepository/internal/services/content/domain/nodetype"
)

// ErrInvalid marks commands rejected before any state is read.
var ErrInvalid = apperrors.New(apperrors.CodeCommandInvalid, "command is invalid")

// Type identifies a command type.
type Type string

const (
	TypeCopyNodesRecursively    Type = "CopyNodesRecursively"
	TypeChangeNodeAggregateType Type = "ChangeNodeAggregateType"
	TypeSetNodeReferences       Type = "SetNodeReferences"
	TypeChangeNodeAggregateName Type = "ChangeNodeAggregateName"
	TypeCreateNodeVariant       Type = "CreateNodeVariant"
)

// Command is one of the commands declared in this package.
type Command interface {
	Type() Type
	// Validate checks the command on its own, without reading state.
	Validate() error
	// Accept dispatches the command to the matching Visitor method.
	Accept(ctx context.Context, v Visitor) (event.EventsToPublish, error)
	sealed()
}

// Visitor handles every command.
type Visitor interface {
	CopyNodesRecursively(ctx context.Context, cmd CopyNodesRecursively) (event.EventsToPublish, error)
	ChangeNodeAggregateType(ctx context.Context, cmd ChangeNodeAggregateType) (event.EventsToPublish, error)
	SetNodeReferences(ctx context.Context, cmd SetNodeReferences) (event.EventsToPublish, error)
	ChangeNodeAggregateName(ctx context.Context, cmd ChangeNodeAggregateName) (event.EventsToPublish, error)
	CreateNodeVariant(ctx context.Context, cmd CreateNodeVariant) (event.EventsToPublish, error)
}

// Metadata travels with a command and is stamped onto its events.
type Metadata struct {
	CorrelationID    string
	InitiatingUserID string
}

// NodeSubtreeSnapshot is a detached copy of a node and its descendants as
// read from one subgraph.
type NodeSubtreeSnapshot struct {
	NodeAggregateID contentgraph.NodeAggregateID
	NodeTypeName    nodetype.Name
	NodeName        contentgraph.NodeName
	Classification  contentgraph.Classification
	PropertyValues  map[string]any
	ChildNodes      []NodeSubtreeSnapshot
}

// CopyNodesRecursively duplicates a subtree below a target parent.
type CopyNodesRecursively struct {
	WorkspaceName               contentgraph.WorkspaceName
	SourceSubtree               NodeSubtreeSnapshot
	TargetOrigin                dimensionspace.OriginPoint
	TargetParentNodeAggregateID contentgraph.NodeAggregateID
	// TargetSucceedingSiblingNodeAggregateID is optional.
	TargetSucceedingSiblingNodeAggregateID contentgraph.NodeAggregateID
	// TargetNodeName names the copied root; empty leaves it unnamed.
	TargetNodeName contentgraph.NodeName
	// NodeAggregateIDMapping maps source ids to the ids of the copies. Source
	// ids without a mapping get fresh ids.
	NodeAggregateIDMapping map[contentgraph.NodeAggregateID]contentgraph.NodeAggregateID
}

// Type implements Command.
func (CopyNodesRecursively) Type() Type { return TypeCopyNodesRecursively }

// Validate implements Command.
func (c CopyNodesRecursively) Validate() error {
	if err := requireWorkspace(c.WorkspaceName); err != nil {
		return err
	}
	if blank(string(c.TargetParentNodeAggregateID)) {
		return invalid("target parent node aggregate id is required")
	}
	stack := []NodeSubtreeSnapshot{c.SourceSubtree}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if blank(string(n.NodeAggregateID)) {
			return invalid("source subtree node aggregate ids are required")
		}
		if blank(string(n.NodeTypeName)) {
			return invalid("source subtree node type names are required")
		}
		stack = append(stack, n.ChildNodes...)
	}
	targets := make(map[contentgraph.NodeAggregateID]bool, len(c.NodeAggregateIDMapping))
	for source, target := range c.NodeAggregateIDMapping {
		if blank(string(source)) || blank(string(target)) {
			return invalid("node aggregate id mapping must not contain blank ids")
		}
		if targets[target] {
			return invalid("node aggregate id mapping assigns " + string(target) + " more than once")
		}
		targets[target] = true
	}
	return nil
}

// Accept implements Command.
func (c CopyNodesRecursively) Accept(ctx context.Context, v Visitor) (event.EventsToPublish, error) {
	return v.CopyNodesRecursively(ctx, c)
}

func (CopyNodesRecursively) sealed() {}

// TypeChangeStrategy decides how children invalidated by a type change are
// handled.
type TypeChangeStrategy string

const (
	// StrategyHappyPath rejects the change when any child would be invalid.
	StrategyHappyPath TypeChangeStrategy = "happypath"
	// StrategyDelete removes invalid children along with the change.
	StrategyDelete TypeChangeStrategy = "delete"
)

// ChangeNodeAggregateType changes the type of every variant of an aggregate.
type ChangeNodeAggregateType struct {
	WorkspaceName   contentgraph.WorkspaceName
	NodeAggregateID contentgraph.NodeAggregateID
	NewNodeTypeName nodetype.Name
	Strategy        TypeChangeStrategy
	// TetheredDescendantNodeAggregateIDs assigns ids to tethered children the
	// new type requires, keyed by child node name.
	TetheredDescendantNodeAggregateIDs map[contentgraph.NodeName]contentgraph.NodeAggregateID
}

// Type implements Command.
func (ChangeNodeAggregateType) Type() Type { return TypeChangeNodeAggregateType }

// Validate implements Command.
func (c ChangeNodeAggregateType) Validate() error {
	if err := requireWorkspace(c.WorkspaceName); err != nil {
		return err
	}
	if blank(string(c.NodeAggregateID)) {
		return invalid("node aggregate id is required")
	}
	if blank(string(c.NewNodeTypeName)) {
		return invalid("new node type name is required")
	}
	switch c.Strategy {
	case StrategyHappyPath, StrategyDelete:
	default:
		return invalid("unknown type change strategy " + string(c.Strategy))
	}
	return nil
}

// Accept implements Command.
func (c ChangeNodeAggregateType) Accept(ctx context.Context, v Visitor) (event.EventsToPublish, error) {
	return v.ChangeNodeAggregateType(ctx, c)
}

func (ChangeNodeAggregateType) sealed() {}

// ReferenceTarget is one target of a reference with optional properties.
type ReferenceTarget struct {
	TargetNodeAggregateID contentgraph.NodeAggregateID `json:"targetNodeAggregateId"`
	Properties            map[string]any               `json:"properties,omitempty"`
}

// SetNodeReferences replaces the targets of a named reference.
type SetNodeReferences struct {
	WorkspaceName         contentgraph.WorkspaceName
	SourceNodeAggregateID contentgraph.NodeAggregateID
	SourceOrigin          dimensionspace.OriginPoint
	ReferenceName         string
	References            []ReferenceTarget
}

// Type implements Command.
func (SetNodeReferences) Type() Type { return TypeSetNodeReferences }

// Validate implements Command.
func (c SetNodeReferences) Validate() error {
	if err := requireWorkspace(c.WorkspaceName); err != nil {
		return err
	}
	if blank(string(c.SourceNodeAggregateID)) {
		return invalid("source node aggregate id is required")
	}
	if blank(c.ReferenceName) {
		return invalid("reference name is required")
	}
	for _, ref := range c.References {
		if blank(string(ref.TargetNodeAggregateID)) {
			return invalid("reference target node aggregate ids are required")
		}
	}
	return nil
}

// Accept implements Command.
func (c SetNodeReferences) Accept(ctx context.Context, v Visitor) (event.EventsToPublish, error) {
	return v.SetNodeReferences(ctx, c)
}

func (SetNodeReferences) sealed() {}

// ChangeNodeAggregateName renames every variant of an aggregate.
type ChangeNodeAggregateName struct {
	WorkspaceName   contentgraph.WorkspaceName
	NodeAggregateID contentgraph.NodeAggregateID
	NewNodeName     contentgraph.NodeName
}

// Type implements Command.
func (ChangeNodeAggregateName) Type() Type { return TypeChangeNodeAggregateName }

// Validate implements Command.
func (c ChangeNodeAggregateName) Validate() error {
	if err := requireWorkspace(c.WorkspaceName); err != nil {
		return err
	}
	if blank(string(c.NodeAggregateID)) {
		return invalid("node aggregate id is required")
	}
	if blank(string(c.NewNodeName)) {
		return invalid("new node name is required")
	}
	return nil
}

// Accept implements Command.
func (c ChangeNodeAggregateName) Accept(ctx context.Context, v Visitor) (event.EventsToPublish, error) {
	return v.ChangeNodeAggregateName(ctx, c)
}

func (ChangeNodeAggregateName) sealed() {}

// CreateNodeVariant creates a variant of an aggregate at another origin.
type CreateNodeVariant struct {
	WorkspaceName   contentgraph.WorkspaceName
	NodeAggregateID contentgraph.NodeAggregateID
	SourceOrigin    dimensionspace.OriginPoint
	TargetOrigin    dimensionspace.OriginPoint
}

// Type implements Command.
func (CreateNodeVariant) Type() Type { return TypeCreateNodeVariant }

// Validate implements Command.
func (c CreateNodeVariant) Validate() error {
	if err := requireWorkspace(c.WorkspaceName); err != nil {
		return err
	}
	if blank(string(c.NodeAggregateID)) {
		return invalid("node aggregate id is required")
	}
	if c.SourceOrigin.Equal(c.TargetOrigin) {
		return invalid("source and target origin must differ")
	}
	return nil
}

// Accept implements Command.
func (c CreateNodeVariant) Accept(ctx context.Context, v Visitor) (event.EventsToPublish, error) {
	return v.CreateNodeVariant(ctx, c)
}

func (CreateNodeVariant) sealed() {}

func requireWorkspace(name contentgraph.WorkspaceName) error {
	if blank(string(name)) {
		return invalid("workspace name is required")
	}
	return nil
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}

func invalid(message string) error {
	return apperrors.New(apperrors.CodeCommandInvalid, message)
}
