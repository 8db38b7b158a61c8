package neat

import "errors"

// Error categories returned by network operations. Call sites wrap these with
// additional context, so compare with errors.Is.
var (
	// ErrConstruction reports missing or ambiguous boundary nodes, or mismatched
	// input/output sizes when building, crossing over or merging networks.
	ErrConstruction = errors.New("construction error")
	// ErrDuplicateEdge reports a connection that already exists.
	ErrDuplicateEdge = errors.New("duplicate connection")
	// ErrNotFound reports a node, connection or gate that is not part of the network.
	ErrNotFound = errors.New("not found")
	// ErrShapeMismatch reports input or target slices of the wrong length.
	ErrShapeMismatch = errors.New("shape mismatch")
	// ErrExhaustedSearchSpace is logged (never returned) when a mutation has no legal target.
	ErrExhaustedSearchSpace = errors.New("no legal mutation target")
	// ErrUnknownMutation reports a mutation kind the receiver cannot apply.
	ErrUnknownMutation = errors.New("unknown mutation method")
	// ErrUnknownSquash reports an activation name that is not registered.
	ErrUnknownSquash = errors.New("unknown squash function")
)
