package lbvh

import "github.com/pkg/errors"

var (
	// ErrNoPrimitives is returned by Build for an empty triangle list.
	ErrNoPrimitives = errors.New("no primitives to build a hierarchy from")

	// ErrInvalidBounds is returned when the geometry bounds are inverted or not finite.
	ErrInvalidBounds = errors.New("invalid geometry bounds")

	// ErrMalformedTree is returned by traversal and Validate when a node has no bounding
	// volume or an internal node does not own exactly two children.
	ErrMalformedTree = errors.New("malformed bounding volume hierarchy")

	// ErrUnsupportedVolume is returned when a node carries a bounding volume kind traversal
	// does not know how to test.
	ErrUnsupportedVolume = errors.New("unsupported bounding volume")

	// ErrNotBuilt is returned by Handle when no tree has been stored yet.
	ErrNotBuilt = errors.New("hierarchy not built")
)
