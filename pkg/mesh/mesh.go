package mesh

import (
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/saiko-tech/lbvh-tracer/pkg/lbvh"
	"github.com/saiko-tech/lbvh-tracer/pkg/lbvh/collision"
)

// Mesh is geometry plus the hierarchy built from it.
// After changing Geometry or MorphInfluences call Rebuild; raycasts keep using the previous
// tree until the new one is swapped in. A failed Rebuild drops the previous tree.
type Mesh struct {
	ID              uuid.UUID
	Geometry        Geometry
	MorphInfluences []float32

	tree lbvh.Handle
}

// New creates a mesh with a random id.
func New(g Geometry) *Mesh {
	return &Mesh{
		ID:       uuid.New(),
		Geometry: g,
	}
}

func (m *Mesh) Triangles() ([]lbvh.Triangle, error) {
	if m.Geometry == nil {
		return nil, errors.Wrapf(ErrMalformedGeometry, "mesh %s has no geometry", m.ID)
	}

	return m.Geometry.Triangles(m.ID, m.MorphInfluences)
}

// Bounds returns the box around the current (morphed) geometry.
func (m *Mesh) Bounds() (lbvh.Box, error) {
	tris, err := m.Triangles()
	if err != nil {
		return lbvh.Box{}, err
	}

	return lbvh.BoundsOf(tris), nil
}

// Rebuild creates a new hierarchy from the current geometry and swaps it in.
func (m *Mesh) Rebuild(opts ...lbvh.Option) (*lbvh.Tree, error) {
	tris, err := m.Triangles()
	if err != nil {
		// the old tree describes geometry that no longer exists
		m.tree.Store(nil)

		return nil, errors.Wrapf(err, "failed to read triangles of mesh %s", m.ID)
	}

	t, err := m.tree.Rebuild(tris, lbvh.BoundsOf(tris), opts...)
	if err != nil {
		m.tree.Store(nil)

		return nil, errors.Wrapf(err, "failed to build hierarchy of mesh %s", m.ID)
	}

	return t, nil
}

// Tree returns the current hierarchy, nil before the first Rebuild.
func (m *Mesh) Tree() *lbvh.Tree {
	return m.tree.Load()
}

// Raycast returns all faces hit by ray, nearest first.
func (m *Mesh) Raycast(ray collision.Ray, precision, near, far float32) ([]lbvh.Hit, error) {
	hits, err := m.tree.Intersect(ray, precision, near, far)
	if err != nil {
		return nil, err
	}

	lbvh.SortHits(hits)

	return hits, nil
}
