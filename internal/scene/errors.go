package scene

import "errors"

var (
	// ErrDuplicateBehavior is returned when a behavior type is attached twice to one node.
	ErrDuplicateBehavior = errors.New("behavior type already attached to node")
	// ErrInvalidBehaviorType is returned for an empty behavior type.
	ErrInvalidBehaviorType = errors.New("behavior type must not be empty")
	// ErrReadOnlyField is returned when writing a book-keeping field.
	ErrReadOnlyField = errors.New("field is read-only")
	// ErrInvalidPath is returned for a path that cannot address a field.
	ErrInvalidPath = errors.New("invalid field path")
	// ErrNoSuchField is returned when a path does not resolve to a value.
	ErrNoSuchField = errors.New("no such field")
	// ErrReservedField is returned when a user field collides with a book-keeping field.
	ErrReservedField = errors.New("field name is reserved")
)
