package lbvh

import (
	"github.com/go-gl/mathgl/mgl32"
	"golang.org/x/exp/slices"

	"github.com/saiko-tech/lbvh-tracer/pkg/lbvh/collision"
	"github.com/saiko-tech/lbvh-tracer/pkg/lbvh/mollertrumbore"
)

// Hit is a ray/triangle intersection found during traversal.
type Hit struct {
	ID       PrimitiveID
	Distance float32 // ray parameter of Point
	Point    mgl32.Vec3
	Normal   mgl32.Vec3
	U, V     float32 // barycentric coordinates
}

// Intersect collects every triangle hit by ray with a ray parameter inside [near, far].
// precision is the barycentric slack of the triangle test.
// Hits are returned in traversal order, see SortHits.
func (t *Tree) Intersect(ray collision.Ray, precision, near, far float32) ([]Hit, error) {
	return t.IntersectInto(ray, precision, near, far, nil)
}

// IntersectInto is Intersect appending to a caller owned slice.
// On error the returned slice is hits as passed in.
func (t *Tree) IntersectInto(ray collision.Ray, precision, near, far float32, hits []Hit) ([]Hit, error) {
	if !t.valid(t.root) {
		return hits, ErrMalformedTree
	}

	out, err := t.intersect(t.root, ray, precision, near, far, hits)
	if err != nil {
		return hits, err
	}

	return out, nil
}

func (t *Tree) intersect(id NodeID, ray collision.Ray, precision, near, far float32, hits []Hit) ([]Hit, error) {
	n := t.nodes[id]

	if err := t.checkNode(id, n); err != nil {
		return hits, err
	}

	if n.Kind == KindLeaf {
		tri := t.triangles[n.Primitive]

		r := mollertrumbore.RayIntersectsTriangle(ray.Origin, ray.Direction, tri.Vertices, precision, near, far)
		if r.Hit {
			hits = append(hits, Hit{
				ID:       tri.ID,
				Distance: r.T,
				Point:    r.Point,
				Normal:   r.Normal,
				U:        r.U,
				V:        r.V,
			})
		}

		return hits, nil
	}

	if !rayHitsVolume(ray, n.Volume, near, far) {
		return hits, nil
	}

	var err error

	for _, c := range n.Children {
		hits, err = t.intersect(c, ray, precision, near, far, hits)
		if err != nil {
			return hits, err
		}
	}

	return hits, nil
}

// rayHitsVolume expects a volume that passed checkNode.
func rayHitsVolume(ray collision.Ray, v Volume, near, far float32) bool {
	if s, ok := v.Sphere(); ok {
		return collision.RayIntersectsSphere(ray, s.Center, s.Radius, near, far).Hit
	}

	return collision.RayIntersectsAxisAlignedBoundingBox(ray, v.box.Min, v.box.Max, near, far).Hit
}

// SortHits orders hits nearest first.
func SortHits(hits []Hit) {
	slices.SortStableFunc(hits, func(a, b Hit) bool {
		return a.Distance < b.Distance
	})
}
