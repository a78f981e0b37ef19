// Package mesh turns mesh geometry into positioned triangles and keeps a hierarchy per mesh.
package mesh

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/saiko-tech/lbvh-tracer/pkg/lbvh"
)

// ErrMalformedGeometry is returned when indices or buffers do not describe whole triangles.
var ErrMalformedGeometry = errors.New("malformed geometry")

// Geometry is a source of triangles.
type Geometry interface {
	// Triangles returns the positioned triangles of the geometry, ids referencing mesh.
	// influences are the morph target weights of the owning mesh.
	Triangles(mesh uuid.UUID, influences []float32) ([]lbvh.Triangle, error)
}

// Group is a draw range of an indexed buffer.
// Index is added to every index inside the range.
type Group struct {
	Start int
	Count int
	Index int
}

// BufferGeometry stores vertex positions as flat xyz triples.
// With Indices set every three indices form a face, otherwise every nine positions do.
type BufferGeometry struct {
	Positions []float32
	Indices   []uint32
	Groups    []Group
}

func (g *BufferGeometry) Triangles(mesh uuid.UUID, _ []float32) ([]lbvh.Triangle, error) {
	if len(g.Positions)%3 != 0 {
		return nil, errors.Wrapf(ErrMalformedGeometry, "%d position components are not xyz triples", len(g.Positions))
	}

	if g.Indices == nil {
		return g.nonIndexed(mesh)
	}

	return g.indexed(mesh)
}

func (g *BufferGeometry) vertex(i int) mgl32.Vec3 {
	return mgl32.Vec3{g.Positions[i*3], g.Positions[i*3+1], g.Positions[i*3+2]}
}

func (g *BufferGeometry) nonIndexed(mesh uuid.UUID) ([]lbvh.Triangle, error) {
	if len(g.Positions)%9 != 0 {
		return nil, errors.Wrapf(ErrMalformedGeometry, "%d vertices do not form whole triangles", len(g.Positions)/3)
	}

	tris := make([]lbvh.Triangle, 0, len(g.Positions)/9)

	for face := 0; face*9 < len(g.Positions); face++ {
		tris = append(tris, lbvh.Triangle{
			Vertices: [3]mgl32.Vec3{g.vertex(face * 3), g.vertex(face*3 + 1), g.vertex(face*3 + 2)},
			ID:       lbvh.PrimitiveID{Mesh: mesh, Face: face},
		})
	}

	return tris, nil
}

func (g *BufferGeometry) indexed(mesh uuid.UUID) ([]lbvh.Triangle, error) {
	groups := g.Groups
	if len(groups) == 0 {
		groups = []Group{{Start: 0, Count: len(g.Indices), Index: 0}}
	}

	numVertices := len(g.Positions) / 3

	var tris []lbvh.Triangle

	for _, group := range groups {
		if group.Start < 0 || group.Count%3 != 0 || group.Start+group.Count > len(g.Indices) {
			return nil, errors.Wrapf(ErrMalformedGeometry, "group %+v does not fit %d indices", group, len(g.Indices))
		}

		for i := group.Start; i < group.Start+group.Count; i += 3 {
			var tri lbvh.Triangle

			for k := 0; k < 3; k++ {
				v := group.Index + int(g.Indices[i+k])
				if v < 0 || v >= numVertices {
					return nil, errors.Wrapf(ErrMalformedGeometry, "index %d of face %d out of range", v, i/3)
				}

				tri.Vertices[k] = g.vertex(v)
			}

			tri.ID = lbvh.PrimitiveID{Mesh: mesh, Face: i / 3, Offset: group.Index}
			tris = append(tris, tri)
		}
	}

	return tris, nil
}

// Face references three vertices of a FaceGeometry.
type Face struct {
	A, B, C int
}

// FaceGeometry is a vertex list with faces and optional morph targets.
// Each morph target holds one position per vertex.
type FaceGeometry struct {
	Vertices     []mgl32.Vec3
	Faces        []Face
	MorphTargets [][]mgl32.Vec3
}

func (g *FaceGeometry) Triangles(mesh uuid.UUID, influences []float32) ([]lbvh.Triangle, error) {
	if len(influences) > len(g.MorphTargets) {
		return nil, errors.Wrapf(ErrMalformedGeometry, "%d influences for %d morph targets", len(influences), len(g.MorphTargets))
	}

	for t, target := range g.MorphTargets {
		if len(target) != len(g.Vertices) {
			return nil, errors.Wrapf(ErrMalformedGeometry, "morph target %d has %d of %d vertices", t, len(target), len(g.Vertices))
		}
	}

	tris := make([]lbvh.Triangle, len(g.Faces))

	for f, face := range g.Faces {
		for k, v := range [3]int{face.A, face.B, face.C} {
			if v < 0 || v >= len(g.Vertices) {
				return nil, errors.Wrapf(ErrMalformedGeometry, "vertex %d of face %d out of range", v, f)
			}

			tris[f].Vertices[k] = g.morphed(v, influences)
		}

		tris[f].ID = lbvh.PrimitiveID{Mesh: mesh, Face: f}
	}

	return tris, nil
}

// morphed blends the base position of vertex v with the weighted morph target offsets.
func (g *FaceGeometry) morphed(v int, influences []float32) mgl32.Vec3 {
	base := g.Vertices[v]
	out := base

	for t, influence := range influences {
		if influence == 0 {
			continue
		}

		out = out.Add(g.MorphTargets[t][v].Sub(base).Mul(influence))
	}

	return out
}
