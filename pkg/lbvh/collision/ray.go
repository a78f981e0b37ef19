// Package collision implements the exact ray tests against bounding volumes.
package collision

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// substituted for zero direction components so the slab divisions stay finite
const zeroDirectionEpsilon = float32(0.00001)

// Ray is a half-line starting at Origin. Direction does not need to be normalized,
// distances reported for a ray are in units of Direction.
type Ray struct {
	Origin    mgl32.Vec3
	Direction mgl32.Vec3
}

// At returns the point at parameter t along the ray.
func (r Ray) At(t float32) mgl32.Vec3 {
	return r.Origin.Add(r.Direction.Mul(t))
}

type RayCastResult struct {
	T     float64
	Hit   bool
	Point mgl32.Vec3
}

// RayIntersectsAxisAlignedBoundingBox determines whether ray intersects an axis-aligned bounding box
// somewhere inside the parameter range [near, far].
// based on https://github.com/Galaco/kero/blob/dedc4e04e830cc2597308cbfe9e9bcbe30491fae/physics/collision/ray.go#L73
func RayIntersectsAxisAlignedBoundingBox(ray Ray, min, max mgl32.Vec3, near, far float32) (r RayCastResult) {
	dir := ray.Direction
	for i := range dir {
		if dir[i] == 0 {
			dir[i] = zeroDirectionEpsilon
		}
	}

	origin := ray.Origin

	t1 := float64((min[0] - origin[0]) / dir[0])
	t2 := float64((max[0] - origin[0]) / dir[0])
	t3 := float64((min[1] - origin[1]) / dir[1])
	t4 := float64((max[1] - origin[1]) / dir[1])
	t5 := float64((min[2] - origin[2]) / dir[2])
	t6 := float64((max[2] - origin[2]) / dir[2])

	tmin := math.Max(math.Max(math.Min(t1, t2), math.Min(t3, t4)), math.Min(t5, t6))
	tmax := math.Min(math.Min(math.Max(t1, t2), math.Max(t3, t4)), math.Max(t5, t6))

	// box lies entirely before near
	if tmax < float64(near) {
		return r
	}

	// box starts after far
	if tmin > float64(far) {
		return r
	}

	if tmin > tmax {
		return r
	}

	tResult := tmin

	// origin (or near) is inside the box, report the exit point
	if tmin < float64(near) {
		tResult = tmax
	}

	r.Hit = true
	r.T = tResult
	r.Point = ray.At(float32(tResult))

	return r
}

// RayIntersectsSphere determines whether ray intersects a sphere somewhere inside [near, far].
func RayIntersectsSphere(ray Ray, center mgl32.Vec3, radius, near, far float32) (r RayCastResult) {
	a := float64(ray.Direction.Dot(ray.Direction))
	if a == 0 {
		return r
	}

	oc := ray.Origin.Sub(center)
	b := 2 * float64(oc.Dot(ray.Direction))
	c := float64(oc.Dot(oc)) - float64(radius)*float64(radius)

	discriminant := b*b - 4*a*c
	if discriminant < 0 {
		return r
	}

	sq := math.Sqrt(discriminant)
	t0 := (-b - sq) / (2 * a)
	t1 := (-b + sq) / (2 * a)

	if t1 < float64(near) || t0 > float64(far) {
		return r
	}

	tResult := t0
	if t0 < float64(near) {
		tResult = t1
	}

	r.Hit = true
	r.T = tResult
	r.Point = ray.At(float32(tResult))

	return r
}
