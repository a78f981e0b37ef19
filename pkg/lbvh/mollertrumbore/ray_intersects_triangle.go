package mollertrumbore

import "github.com/go-gl/mathgl/mgl32"

const mollerTrumboreEpsilon = float32(0.0000001)

type RayCastResult struct {
	Hit    bool
	T      float32
	U, V   float32 // barycentric coordinates of Point
	Point  mgl32.Vec3
	Normal mgl32.Vec3
}

// RayIntersectsTriangle determines if a ray intersects a triangle using https://en.wikipedia.org/wiki/M%C3%B6ller%E2%80%93Trumbore_intersection_algorithm
// precision widens the barycentric bounds so hits on shared edges are not lost,
// only intersections with near <= t <= far are reported.
// based on https://github.com/Galaco/kero/blob/dedc4e04e830cc2597308cbfe9e9bcbe30491fae/physics/collision/ray.go#L143
func RayIntersectsTriangle(rayOrigin, rayVector mgl32.Vec3, inTriangle [3]mgl32.Vec3, precision, near, far float32) (r RayCastResult) {
	vertex0 := inTriangle[0]
	vertex1 := inTriangle[1]
	vertex2 := inTriangle[2]

	var (
		edge1, edge2, h, s, q mgl32.Vec3
		a, f, u, v            float32
	)

	edge1 = vertex1.Sub(vertex0)
	edge2 = vertex2.Sub(vertex0)
	h = rayVector.Cross(edge2)
	a = edge1.Dot(h)

	if a > -mollerTrumboreEpsilon && a < mollerTrumboreEpsilon {
		return r // This ray is parallel to this triangle.
	}

	f = 1.0 / a
	s = rayOrigin.Sub(vertex0)
	u = f * s.Dot(h)

	if u < -precision || u > 1+precision {
		return r
	}

	q = s.Cross(edge1)
	v = f * rayVector.Dot(q)

	if v < -precision || u+v > 1+precision {
		return r
	}

	t := f * edge2.Dot(q)

	if t <= mollerTrumboreEpsilon || t < near || t > far {
		// line intersection outside the valid part of the ray
		return r
	}

	r.Hit = true
	r.T = t
	r.U = u
	r.V = v
	r.Point = rayOrigin.Add(rayVector.Mul(t))
	r.Normal = edge1.Cross(edge2).Normalize()

	return r
}
