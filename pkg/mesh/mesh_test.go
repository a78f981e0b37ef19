package mesh

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saiko-tech/lbvh-tracer/pkg/lbvh"
	"github.com/saiko-tech/lbvh-tracer/pkg/lbvh/collision"
)

var id = uuid.MustParse("0c7d9f3e-8a31-4a0e-bb43-7f6a2d1e9c55")

// two unit quads stacked along z, each split into two triangles
var quadPositions = []float32{
	0, 0, 0, 1, 0, 0, 1, 1, 0, 0, 1, 0,
	0, 0, 1, 1, 0, 1, 1, 1, 1, 0, 1, 1,
}

var quadIndices = []uint32{0, 1, 2, 0, 2, 3, 4, 5, 6, 4, 6, 7}

func TestBufferGeometry_NonIndexed(t *testing.T) {
	t.Parallel()

	g := &BufferGeometry{Positions: []float32{
		0, 0, 0, 1, 0, 0, 0, 1, 0,
		0, 0, 1, 1, 0, 1, 0, 1, 1,
	}}

	tris, err := g.Triangles(id, nil)
	require.NoError(t, err)
	require.Len(t, tris, 2)

	assert.Equal(t, [3]mgl32.Vec3{{0, 0, 1}, {1, 0, 1}, {0, 1, 1}}, tris[1].Vertices)
	assert.Equal(t, lbvh.PrimitiveID{Mesh: id, Face: 1}, tris[1].ID)

	_, err = (&BufferGeometry{Positions: make([]float32, 12)}).Triangles(id, nil)
	assert.ErrorIs(t, err, ErrMalformedGeometry)

	_, err = (&BufferGeometry{Positions: make([]float32, 10)}).Triangles(id, nil)
	assert.ErrorIs(t, err, ErrMalformedGeometry)
}

func TestBufferGeometry_Indexed(t *testing.T) {
	t.Parallel()

	g := &BufferGeometry{
		Positions: quadPositions,
		Indices:   []uint32{0, 1, 2, 0, 2, 3, 4, 5, 6, 4, 6, 7},
	}

	tris, err := g.Triangles(id, nil)
	require.NoError(t, err)
	require.Len(t, tris, 4)

	assert.Equal(t, [3]mgl32.Vec3{{0, 0, 1}, {1, 1, 1}, {0, 1, 1}}, tris[3].Vertices)
	assert.Equal(t, lbvh.PrimitiveID{Mesh: id, Face: 3}, tris[3].ID)
}

func TestBufferGeometry_Groups(t *testing.T) {
	t.Parallel()

	// the second group reuses the indices of the first quad, shifted to the second
	g := &BufferGeometry{
		Positions: quadPositions,
		Indices:   []uint32{0, 1, 2, 0, 2, 3},
		Groups: []Group{
			{Start: 0, Count: 6, Index: 0},
			{Start: 3, Count: 3, Index: 4},
		},
	}

	tris, err := g.Triangles(id, nil)
	require.NoError(t, err)
	require.Len(t, tris, 3)

	assert.Equal(t, [3]mgl32.Vec3{{0, 0, 1}, {1, 1, 1}, {0, 1, 1}}, tris[2].Vertices)
	assert.Equal(t, lbvh.PrimitiveID{Mesh: id, Face: 1, Offset: 4}, tris[2].ID)

	g.Groups = []Group{{Start: 3, Count: 6}}
	_, err = g.Triangles(id, nil)
	assert.ErrorIs(t, err, ErrMalformedGeometry)

	g.Groups = []Group{{Start: 0, Count: 6, Index: 6}}
	_, err = g.Triangles(id, nil)
	assert.ErrorIs(t, err, ErrMalformedGeometry)
}

func TestFaceGeometry_Morph(t *testing.T) {
	t.Parallel()

	g := &FaceGeometry{
		Vertices: []mgl32.Vec3{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}},
		Faces:    []Face{{A: 0, B: 1, C: 2}},
		MorphTargets: [][]mgl32.Vec3{
			{{0, 0, 2}, {1, 0, 2}, {0, 1, 2}},
			{{0, 0, 0}, {3, 0, 0}, {0, 1, 0}},
		},
	}

	tris, err := g.Triangles(id, nil)
	require.NoError(t, err)
	assert.Equal(t, [3]mgl32.Vec3{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}}, tris[0].Vertices)

	tris, err = g.Triangles(id, []float32{0.5, 0})
	require.NoError(t, err)
	assert.Equal(t, [3]mgl32.Vec3{{0, 0, 1}, {1, 0, 1}, {0, 1, 1}}, tris[0].Vertices)

	tris, err = g.Triangles(id, []float32{0.5, 0.5})
	require.NoError(t, err)
	assert.Equal(t, [3]mgl32.Vec3{{0, 0, 1}, {2, 0, 1}, {0, 1, 1}}, tris[0].Vertices)

	_, err = g.Triangles(id, []float32{1, 1, 1})
	assert.ErrorIs(t, err, ErrMalformedGeometry)

	g.Faces = append(g.Faces, Face{A: 0, B: 1, C: 5})
	_, err = g.Triangles(id, nil)
	assert.ErrorIs(t, err, ErrMalformedGeometry)
}

func TestMesh_RebuildAndRaycast(t *testing.T) {
	t.Parallel()

	m := New(&BufferGeometry{
		Positions: quadPositions,
		Indices:   quadIndices,
	})

	ray := collision.Ray{Origin: mgl32.Vec3{0.7, 0.2, -1}, Direction: mgl32.Vec3{0, 0, 1}}

	_, err := m.Raycast(ray, 0.0001, 0, 100)
	assert.ErrorIs(t, err, lbvh.ErrNotBuilt)

	tree, err := m.Rebuild()
	require.NoError(t, err)
	assert.Same(t, tree, m.Tree())
	assert.Equal(t, 4, tree.Stats().Leaves)

	hits, err := m.Raycast(ray, 0.0001, 0, 100)
	require.NoError(t, err)
	require.Len(t, hits, 2)

	// nearest first, the lower quad's first triangle then the upper one's
	assert.Equal(t, lbvh.PrimitiveID{Mesh: m.ID, Face: 0}, hits[0].ID)
	assert.Equal(t, lbvh.PrimitiveID{Mesh: m.ID, Face: 2}, hits[1].ID)
	assert.InDelta(t, 1, hits[0].Distance, 1e-6)
	assert.InDelta(t, 2, hits[1].Distance, 1e-6)

	bounds, err := m.Bounds()
	require.NoError(t, err)
	assert.Equal(t, lbvh.Box{Max: mgl32.Vec3{1, 1, 1}}, bounds)

	// geometry changes need a rebuild, the old tree keeps serving until then
	m.Geometry = &BufferGeometry{Positions: quadPositions[:9]}

	hits, err = m.Raycast(ray, 0.0001, 0, 100)
	require.NoError(t, err)
	assert.Len(t, hits, 2)

	_, err = m.Rebuild()
	require.NoError(t, err)

	hits, err = m.Raycast(ray, 0.0001, 0, 100)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, 0, hits[0].ID.Face)
}

func TestMesh_RebuildEmpty(t *testing.T) {
	t.Parallel()

	m := New(&FaceGeometry{})

	_, err := m.Rebuild()
	assert.ErrorIs(t, err, lbvh.ErrNoPrimitives)
	assert.Nil(t, m.Tree())

	_, err = (&Mesh{}).Rebuild()
	assert.ErrorIs(t, err, ErrMalformedGeometry)
}

func TestMesh_FailedRebuildDropsTree(t *testing.T) {
	t.Parallel()

	ray := collision.Ray{Origin: mgl32.Vec3{0.7, 0.2, -1}, Direction: mgl32.Vec3{0, 0, 1}}

	tests := []struct {
		name     string
		geometry Geometry
		want     error
	}{
		{name: "no faces", geometry: &BufferGeometry{}, want: lbvh.ErrNoPrimitives},
		{name: "malformed", geometry: &BufferGeometry{Positions: make([]float32, 10)}, want: ErrMalformedGeometry},
		{name: "no geometry", geometry: nil, want: ErrMalformedGeometry},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			m := New(&BufferGeometry{Positions: quadPositions, Indices: quadIndices})

			_, err := m.Rebuild()
			require.NoError(t, err)

			hits, err := m.Raycast(ray, 0, 0, 10)
			require.NoError(t, err)
			require.Len(t, hits, 2)

			m.Geometry = tt.geometry

			_, err = m.Rebuild()
			assert.ErrorIs(t, err, tt.want)
			assert.Nil(t, m.Tree())

			hits, err = m.Raycast(ray, 0, 0, 10)
			assert.ErrorIs(t, err, lbvh.ErrNotBuilt)
			assert.Empty(t, hits)
		})
	}
}
