package i18n

// Error codes must match the codes defined in internal/platform/errors/codes.go.
// These are duplicated as strings to avoid an import cycle.
const (
	CodeDimensionConfigInvalid          = "DIMENSION_CONFIG_INVALID"
	CodeNodeTypeConfigInvalid           = "NODE_TYPE_CONFIG_INVALID"
	CodeDimensionSpacePointNotFound     = "DIMENSION_SPACE_POINT_NOT_FOUND"
	CodeContentStreamNotFound           = "CONTENT_STREAM_NOT_FOUND"
	CodeContentStreamClosed             = "CONTENT_STREAM_CLOSED"
	CodeWorkspaceNotFound               = "WORKSPACE_NOT_FOUND"
	CodeNodeTypeNotFound                = "NODE_TYPE_NOT_FOUND"
	CodeNodeTypeIsRoot                  = "NODE_TYPE_IS_ROOT"
	CodeNodeTypeIsAbstract              = "NODE_TYPE_IS_ABSTRACT"
	CodeNodeConstraintViolation         = "NODE_CONSTRAINT_VIOLATION"
	CodeNodeAggregateNotFound           = "NODE_AGGREGATE_NOT_FOUND"
	CodeNodeAggregateExists             = "NODE_AGGREGATE_EXISTS"
	CodeNodeAggregateIsRoot             = "NODE_AGGREGATE_IS_ROOT"
	CodeNodeAggregateIsTethered         = "NODE_AGGREGATE_IS_TETHERED"
	CodeNodeAggregateDoesNotCoverPoint  = "NODE_AGGREGATE_DOES_NOT_COVER_POINT"
	CodeNodeAggregateDoesNotOccupyPoint = "NODE_AGGREGATE_DOES_NOT_OCCUPY_POINT"
	CodeNodeAggregateOccupiesPoint      = "NODE_AGGREGATE_OCCUPIES_POINT"
	CodeNodeNameOccupied                = "NODE_NAME_OCCUPIED"
	CodeNodeAggregatesTypeAmbiguous     = "NODE_AGGREGATES_TYPE_AMBIGUOUS"
	CodeReferenceNotDeclared            = "REFERENCE_NOT_DECLARED"
	CodeReferenceCardinalityExceeded    = "REFERENCE_CARDINALITY_EXCEEDED"
	CodeReferenceTargetTypeDisallowed   = "REFERENCE_TARGET_TYPE_DISALLOWED"
	CodeReferencePropertyInvalid        = "REFERENCE_PROPERTY_INVALID"
	CodeCommandInvalid                  = "COMMAND_INVALID"
	CodeConcurrencyConflict             = "CONCURRENCY_CONFLICT"
	CodeUnknown                         = "UNKNOWN"
)

// enUSMessages are the base locale templates. Templates read error metadata;
// optional keys are guarded with "with" so a missing key renders nothing.
var enUSMessages = map[Code]string{
	// Configuration errors
	CodeDimensionConfigInvalid: "The dimension configuration is invalid{{with .Dimension}} for dimension {{.}}{{end}}",
	CodeNodeTypeConfigInvalid:  "The node type configuration is invalid{{with .NodeTypeName}} for {{.}}{{end}}",

	// Dimension space errors
	CodeDimensionSpacePointNotFound: "Dimension space point{{with .DimensionSpacePoint}} {{.}}{{end}} is not allowed",

	// Content stream and workspace errors
	CodeContentStreamNotFound: "Content stream{{with .ContentStreamID}} {{.}}{{end}} was not found",
	CodeContentStreamClosed:   "Content stream{{with .ContentStreamID}} {{.}}{{end}} is closed",
	CodeWorkspaceNotFound:     "Workspace{{with .WorkspaceName}} {{.}}{{end}} was not found",

	// Node type errors
	CodeNodeTypeNotFound:        "Node type{{with .NodeTypeName}} {{.}}{{end}} is not defined",
	CodeNodeTypeIsRoot:          "Node type{{with .NodeTypeName}} {{.}}{{end}} is reserved for root nodes",
	CodeNodeTypeIsAbstract:      "Node type{{with .NodeTypeName}} {{.}}{{end}} is abstract",
	CodeNodeConstraintViolation: "The node type constraints do not allow this node here",

	// Node aggregate errors
	CodeNodeAggregateNotFound:           "Node{{with .NodeAggregateID}} {{.}}{{end}} was not found",
	CodeNodeAggregateExists:             "Node{{with .NodeAggregateID}} {{.}}{{end}} already exists",
	CodeNodeAggregateIsRoot:             "Node{{with .NodeAggregateID}} {{.}}{{end}} is a root node",
	CodeNodeAggregateIsTethered:         "Node{{with .NodeAggregateID}} {{.}}{{end}} is tethered to its parent",
	CodeNodeAggregateDoesNotCoverPoint:  "Node{{with .NodeAggregateID}} {{.}}{{end}} is not visible{{with .DimensionSpacePoint}} in {{.}}{{end}}",
	CodeNodeAggregateDoesNotOccupyPoint: "Node{{with .NodeAggregateID}} {{.}}{{end}} has no variant{{with .OriginDimensionSpacePoint}} in {{.}}{{end}}",
	CodeNodeAggregateOccupiesPoint:      "Node{{with .NodeAggregateID}} {{.}}{{end}} already has a variant{{with .OriginDimensionSpacePoint}} in {{.}}{{end}}",
	CodeNodeNameOccupied:                "The name{{with .NodeName}} {{.}}{{end}} is already taken by a sibling",
	CodeNodeAggregatesTypeAmbiguous:     "Node variants disagree on their node type",

	// Reference errors
	CodeReferenceNotDeclared:          "Reference{{with .ReferenceName}} {{.}}{{end}} is not declared by the node type",
	CodeReferenceCardinalityExceeded:  "Too many targets for reference{{with .ReferenceName}} {{.}}{{end}}",
	CodeReferenceTargetTypeDisallowed: "Reference{{with .ReferenceName}} {{.}}{{end}} cannot point to this node type",
	CodeReferencePropertyInvalid:      "Reference property{{with .PropertyName}} {{.}}{{end}} is not declared or has the wrong type",

	// Write path errors
	CodeCommandInvalid:      "The command is invalid",
	CodeConcurrencyConflict: "The content changed in the meantime, please retry",
	CodeUnknown:             "An unexpected error occurred",
}
