package lbvh

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// PrimitiveID identifies the face a triangle was taken from.
type PrimitiveID struct {
	Mesh   uuid.UUID // owning mesh
	Face   int       // face index inside the mesh
	Offset int       // sub-buffer offset, 0 when the mesh has a single buffer
}

func (id PrimitiveID) String() string {
	return fmt.Sprintf("%s/%d+%d", id.Mesh, id.Face, id.Offset)
}

// Triangle is a positioned primitive: three vertices plus the id of the face they belong to.
type Triangle struct {
	Vertices [3]mgl32.Vec3
	ID       PrimitiveID
}

// Bounds returns the tight axis-aligned box around the three vertices.
func (t Triangle) Bounds() Box {
	b := EmptyBox()
	for _, v := range t.Vertices {
		b = b.ExpandByPoint(v)
	}

	return b
}

// Box is an axis-aligned bounding box.
type Box struct {
	Min, Max mgl32.Vec3
}

// EmptyBox returns an inverted box that any point or box expands.
func EmptyBox() Box {
	return Box{
		Min: mgl32.Vec3{mgl32.MaxValue, mgl32.MaxValue, mgl32.MaxValue},
		Max: mgl32.Vec3{mgl32.MinValue, mgl32.MinValue, mgl32.MinValue},
	}
}

// Empty reports whether the box is inverted on any axis.
func (b Box) Empty() bool {
	return b.Min[0] > b.Max[0] || b.Min[1] > b.Max[1] || b.Min[2] > b.Max[2]
}

func (b Box) ExpandByPoint(p mgl32.Vec3) Box {
	for i, f := range p {
		if f < b.Min[i] {
			b.Min[i] = f
		}
		if f > b.Max[i] {
			b.Max[i] = f
		}
	}

	return b
}

// Union returns the smallest box containing both b and other.
func (b Box) Union(other Box) Box {
	return b.ExpandByPoint(other.Min).ExpandByPoint(other.Max)
}

func (b Box) Size() mgl32.Vec3 {
	return b.Max.Sub(b.Min)
}

func (b Box) Center() mgl32.Vec3 {
	return b.Min.Add(b.Max).Mul(0.5)
}

// Contains reports whether other lies completely inside b.
func (b Box) Contains(other Box) bool {
	for i := 0; i < 3; i++ {
		if other.Min[i] < b.Min[i] || other.Max[i] > b.Max[i] {
			return false
		}
	}

	return true
}

// BoundingSphere returns the sphere through the corners of the box.
func (b Box) BoundingSphere() Sphere {
	center := b.Center()

	return Sphere{
		Center: center,
		Radius: b.Max.Sub(center).Len(),
	}
}

func (b Box) validate() error {
	if b.Empty() {
		return errors.Wrapf(ErrInvalidBounds, "inverted box %v - %v", b.Min, b.Max)
	}

	for i := 0; i < 3; i++ {
		if isNotFinite(b.Min[i]) || isNotFinite(b.Max[i]) {
			return errors.Wrapf(ErrInvalidBounds, "non-finite box %v - %v", b.Min, b.Max)
		}
	}

	return nil
}

func isNotFinite(f float32) bool {
	return math.IsNaN(float64(f)) || math.IsInf(float64(f), 0)
}

// Sphere is a bounding sphere.
type Sphere struct {
	Center mgl32.Vec3
	Radius float32
}

// BoundsOf finds the minimum and maximum extents of a triangle list.
func BoundsOf(tris []Triangle) Box {
	b := EmptyBox()
	for _, tri := range tris {
		for _, vertex := range tri.Vertices {
			b = b.ExpandByPoint(vertex)
		}
	}

	return b
}

// normalizedCentroid maps the center of the triangle's own box into the unit cube spanned by bounds.
// Axes along which bounds has no extent map to 0.
func normalizedCentroid(tri Triangle, bounds Box) (out mgl32.Vec3) {
	center := tri.Bounds().Center()
	size := bounds.Size()

	for i := 0; i < 3; i++ {
		if size[i] == 0 {
			continue
		}

		out[i] = (center[i] - bounds.Min[i]) / size[i]
	}

	return out
}
