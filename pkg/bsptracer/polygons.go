package bsptracer

import (
	"github.com/galaco/bsp"
	"github.com/galaco/bsp/lumps"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"

	"github.com/saiko-tech/lbvh-tracer/pkg/lbvh"
)

// surfaces with more edges are not collidable
const maxSurfaceVerts = 32

// worldTriangles fan-triangulates the map's visible surfaces.
// Face is the index of the surface in the faces lump, Offset the triangle within the fan.
func worldTriangles(bspfile *bsp.Bsp, world uuid.UUID) []lbvh.Triangle {
	surfaces := bspfile.Lump(bsp.LumpFaces).(*lumps.Face).GetData()
	surfEdges := bspfile.Lump(bsp.LumpSurfEdges).(*lumps.Surfedge).GetData()
	vertices := bspfile.Lump(bsp.LumpVertexes).(*lumps.Vertex).GetData()
	edges := bspfile.Lump(bsp.LumpEdges).(*lumps.Edge).GetData()

	tris := make([]lbvh.Triangle, 0, 2*len(surfaces))
	verts := make([]mgl32.Vec3, 0, maxSurfaceVerts)

	for i, surface := range surfaces {
		firstEdge := int(surface.FirstEdge)
		numEdges := int(surface.NumEdges)

		if numEdges < 3 || numEdges > maxSurfaceVerts || surface.TexInfo <= 0 {
			continue
		}

		verts = verts[:0]

		for j := 0; j < numEdges; j++ {
			edgeIndex := surfEdges[firstEdge+j]
			if edgeIndex >= 0 {
				verts = append(verts, vertices[edges[edgeIndex][0]])
			} else {
				verts = append(verts, vertices[edges[-edgeIndex][1]])
			}
		}

		tris = appendFan(tris, verts, lbvh.PrimitiveID{Mesh: world, Face: i})
	}

	return tris
}

// appendFan appends the fan triangulation of a convex polygon around its first vertex.
// The Offset of each triangle's ID is its position in the fan.
func appendFan(tris []lbvh.Triangle, verts []mgl32.Vec3, id lbvh.PrimitiveID) []lbvh.Triangle {
	for j := 1; j+1 < len(verts); j++ {
		id.Offset = j - 1

		tris = append(tris, lbvh.Triangle{
			Vertices: [3]mgl32.Vec3{verts[0], verts[j], verts[j+1]},
			ID:       id,
		})
	}

	return tris
}
