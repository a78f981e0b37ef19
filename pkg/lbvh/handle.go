package lbvh

import (
	"go.uber.org/atomic"

	"github.com/saiko-tech/lbvh-tracer/pkg/lbvh/collision"
)

// Handle holds the current tree of a piece of geometry.
// Rebuilds swap the whole tree in, readers never observe a tree under construction.
// The zero value is an empty handle.
type Handle struct {
	tree atomic.Pointer[Tree]
}

func (h *Handle) Load() *Tree {
	return h.tree.Load()
}

func (h *Handle) Store(t *Tree) {
	h.tree.Store(t)
}

// Rebuild builds a new tree and stores it. If the build fails the previous tree is kept.
func (h *Handle) Rebuild(triangles []Triangle, bounds Box, opts ...Option) (*Tree, error) {
	t, err := Build(triangles, bounds, opts...)
	if err != nil {
		return nil, err
	}

	h.tree.Store(t)

	return t, nil
}

// Intersect traverses the current tree, see Tree.Intersect.
func (h *Handle) Intersect(ray collision.Ray, precision, near, far float32) ([]Hit, error) {
	t := h.tree.Load()
	if t == nil {
		return nil, ErrNotBuilt
	}

	return t.Intersect(ray, precision, near, far)
}
