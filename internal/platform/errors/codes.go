// Package errors provides structured, coded errors for the content repository.
package errors

import "google.golang.org/grpc/codes"

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Configuration errors
	CodeDimensionConfigInvalid Code = "DIMENSION_CONFIG_INVALID"
	CodeNodeTypeConfigInvalid  Code = "NODE_TYPE_CONFIG_INVALID"

	// Dimension space errors
	CodeDimensionSpacePointNotFound Code = "DIMENSION_SPACE_POINT_NOT_FOUND"

	// Content stream and workspace errors
	CodeContentStreamNotFound Code = "CONTENT_STREAM_NOT_FOUND"
	CodeContentStreamClosed   Code = "CONTENT_STREAM_CLOSED"
	CodeWorkspaceNotFound     Code = "WORKSPACE_NOT_FOUND"

	// Node type errors
	CodeNodeTypeNotFound        Code = "NODE_TYPE_NOT_FOUND"
	CodeNodeTypeIsRoot          Code = "NODE_TYPE_IS_ROOT"
	CodeNodeTypeIsAbstract      Code = "NODE_TYPE_IS_ABSTRACT"
	CodeNodeConstraintViolation Code = "NODE_CONSTRAINT_VIOLATION"

	// Node aggregate errors
	CodeNodeAggregateNotFound           Code = "NODE_AGGREGATE_NOT_FOUND"
	CodeNodeAggregateExists             Code = "NODE_AGGREGATE_EXISTS"
	CodeNodeAggregateIsRoot             Code = "NODE_AGGREGATE_IS_ROOT"
	CodeNodeAggregateIsTethered         Code = "NODE_AGGREGATE_IS_TETHERED"
	CodeNodeAggregateDoesNotCoverPoint  Code = "NODE_AGGREGATE_DOES_NOT_COVER_POINT"
	CodeNodeAggregateDoesNotOccupyPoint Code = "NODE_AGGREGATE_DOES_NOT_OCCUPY_POINT"
	CodeNodeAggregateOccupiesPoint      Code = "NODE_AGGREGATE_OCCUPIES_POINT"
	CodeNodeNameOccupied                Code = "NODE_NAME_OCCUPIED"
	CodeNodeAggregatesTypeAmbiguous     Code = "NODE_AGGREGATES_TYPE_AMBIGUOUS"

	// Reference errors
	CodeReferenceNotDeclared          Code = "REFERENCE_NOT_DECLARED"
	CodeReferenceCardinalityExceeded  Code = "REFERENCE_CARDINALITY_EXCEEDED"
	CodeReferenceTargetTypeDisallowed Code = "REFERENCE_TARGET_TYPE_DISALLOWED"
	CodeReferencePropertyInvalid      Code = "REFERENCE_PROPERTY_INVALID"

	// Write path errors
	CodeCommandInvalid      Code = "COMMAND_INVALID"
	CodeConcurrencyConflict Code = "CONCURRENCY_CONFLICT"
)

// GRPCCode maps domain codes to gRPC status codes.
func (c Code) GRPCCode() codes.Code {
	switch c {
	// InvalidArgument - malformed commands
	case CodeCommandInvalid:
		return codes.InvalidArgument

	// FailedPrecondition - state doesn't allow operation
	case CodeContentStreamClosed,
		CodeNodeTypeIsRoot,
		CodeNodeTypeIsAbstract,
		CodeNodeConstraintViolation,
		CodeNodeAggregateIsRoot,
		CodeNodeAggregateIsTethered,
		CodeNodeAggregateDoesNotCoverPoint,
		CodeNodeAggregateDoesNotOccupyPoint,
		CodeNodeAggregateOccupiesPoint,
		CodeReferenceNotDeclared,
		CodeReferenceCardinalityExceeded,
		CodeReferenceTargetTypeDisallowed,
		CodeReferencePropertyInvalid,
		CodeNodeAggregatesTypeAmbiguous:
		return codes.FailedPrecondition

	// NotFound - resource doesn't exist
	case CodeDimensionSpacePointNotFound,
		CodeContentStreamNotFound,
		CodeWorkspaceNotFound,
		CodeNodeTypeNotFound,
		CodeNodeAggregateNotFound:
		return codes.NotFound

	// AlreadyExists - unique resource constraint
	case CodeNodeAggregateExists,
		CodeNodeNameOccupied:
		return codes.AlreadyExists

	// Aborted - optimistic concurrency lost
	case CodeConcurrencyConflict:
		return codes.Aborted

	default:
		return codes.Internal
	}
}
