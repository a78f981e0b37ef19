package lbvh

import (
	"math/rand"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
)

var testMesh = uuid.MustParse("5b1a6b7e-2f59-4c8e-9a55-0b8e4d3c2a10")

// flatTriangle returns a right triangle in the plane z = corner.Z() with legs of length size.
func flatTriangle(face int, corner mgl32.Vec3, size float32) Triangle {
	return Triangle{
		Vertices: [3]mgl32.Vec3{
			corner,
			corner.Add(mgl32.Vec3{size, 0, 0}),
			corner.Add(mgl32.Vec3{0, size, 0}),
		},
		ID: PrimitiveID{Mesh: testMesh, Face: face},
	}
}

func randomTriangles(seed int64, n int, extent float32) []Triangle {
	rnd := rand.New(rand.NewSource(seed))

	point := func() mgl32.Vec3 {
		return mgl32.Vec3{rnd.Float32() * extent, rnd.Float32() * extent, rnd.Float32() * extent}
	}

	tris := make([]Triangle, n)
	for i := range tris {
		base := point()
		tris[i] = Triangle{
			Vertices: [3]mgl32.Vec3{
				base,
				base.Add(point().Mul(0.05)),
				base.Add(point().Mul(0.05)),
			},
			ID: PrimitiveID{Mesh: testMesh, Face: i},
		}
	}

	return tris
}

func mustBuild(tris []Triangle, opts ...Option) *Tree {
	t, err := Build(tris, BoundsOf(tris), opts...)
	if err != nil {
		panic(err)
	}

	return t
}
