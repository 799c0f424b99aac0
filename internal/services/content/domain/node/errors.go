package node

import (
	apperrors "github.com/louisbranch/contentrepository/internal/platform/errors"
)

var (
	// ErrContentStreamNotFound indicates a workspace without a usable content stream.
	ErrContentStreamNotFound = apperrors.New(apperrors.CodeContentStreamNotFound, "content stream not found")
	// ErrContentStreamClosed indicates writes to a closed content stream.
	ErrContentStreamClosed = apperrors.New(apperrors.CodeContentStreamClosed, "content stream is closed")
	// ErrWorkspaceNotFound indicates an unknown workspace.
	ErrWorkspaceNotFound = apperrors.New(apperrors.CodeWorkspaceNotFound, "workspace not found")
	// ErrNodeTypeNotFound indicates an undefined node type.
	ErrNodeTypeNotFound = apperrors.New(apperrors.CodeNodeTypeNotFound, "node type not found")
	// ErrNodeTypeIsRoot indicates a root type where a regular type is required.
	ErrNodeTypeIsRoot = apperrors.New(apperrors.CodeNodeTypeIsRoot, "node type is of type root")
	// ErrNodeTypeIsAbstract indicates an abstract type used for a node.
	ErrNodeTypeIsAbstract = apperrors.New(apperrors.CodeNodeTypeIsAbstract, "node type is abstract")
	// ErrConstraintViolation indicates a parent or grandparent rejecting a child type.
	ErrConstraintViolation = apperrors.New(apperrors.CodeNodeConstraintViolation, "node constraints violated")
	// ErrNodeAggregateNotFound indicates an aggregate missing from the content stream.
	ErrNodeAggregateNotFound = apperrors.New(apperrors.CodeNodeAggregateNotFound, "node aggregate not found")
	// ErrNodeAggregateExists indicates an id that is already taken.
	ErrNodeAggregateExists = apperrors.New(apperrors.CodeNodeAggregateExists, "node aggregate already exists")
	// ErrNodeAggregateIsRoot indicates a root aggregate where it is not allowed.
	ErrNodeAggregateIsRoot = apperrors.New(apperrors.CodeNodeAggregateIsRoot, "node aggregate is root")
	// ErrNodeAggregateIsTethered indicates a tethered aggregate where it is not allowed.
	ErrNodeAggregateIsTethered = apperrors.New(apperrors.CodeNodeAggregateIsTethered, "node aggregate is tethered")
	// ErrNodeAggregateDoesNotCoverPoint indicates an aggregate invisible at a point.
	ErrNodeAggregateDoesNotCoverPoint = apperrors.New(apperrors.CodeNodeAggregateDoesNotCoverPoint, "node aggregate does not cover dimension space point")
	// ErrNodeAggregateDoesNotOccupyPoint indicates an aggregate without a variant at an origin.
	ErrNodeAggregateDoesNotOccupyPoint = apperrors.New(apperrors.CodeNodeAggregateDoesNotOccupyPoint, "node aggregate does not occupy dimension space point")
	// ErrNodeAggregateOccupiesPoint indicates an aggregate that already has a variant at an origin.
	ErrNodeAggregateOccupiesPoint = apperrors.New(apperrors.CodeNodeAggregateOccupiesPoint, "node aggregate already occupies dimension space point")
	// ErrNodeNameOccupied indicates a sibling already carrying the name.
	ErrNodeNameOccupied = apperrors.New(apperrors.CodeNodeNameOccupied, "node name is already occupied")
	// ErrReferenceNotDeclared indicates a reference the source type does not declare.
	ErrReferenceNotDeclared = apperrors.New(apperrors.CodeReferenceNotDeclared, "reference is not declared")
	// ErrReferenceCardinalityExceeded indicates more targets than the reference allows.
	ErrReferenceCardinalityExceeded = apperrors.New(apperrors.CodeReferenceCardinalityExceeded, "reference cardinality exceeded")
	// ErrReferenceTargetTypeDisallowed indicates a target type the reference rejects.
	ErrReferenceTargetTypeDisallowed = apperrors.New(apperrors.CodeReferenceTargetTypeDisallowed, "reference target type is not allowed")
	// ErrReferencePropertyInvalid indicates a reference property that is undeclared or mistyped.
	ErrReferencePropertyInvalid = apperrors.New(apperrors.CodeReferencePropertyInvalid, "reference property is invalid")
)

func nodeTypeNotFound(name string) error {
	return apperrors.WithMetadata(apperrors.CodeNodeTypeNotFound, "node type "+name+" not found", map[string]string{"NodeTypeName": name})
}

func aggregateError(code apperrors.Code, message string, id string, extra ...string) error {
	metadata := map[string]string{"NodeAggregateID": id}
	for i := 0; i+1 < len(extra); i += 2 {
		metadata[extra[i]] = extra[i+1]
	}
	return apperrors.WithMetadata(code, message, metadata)
}
