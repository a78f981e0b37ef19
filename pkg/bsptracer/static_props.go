package bsptracer

import (
	"github.com/galaco/bsp"
	"github.com/galaco/bsp/lumps"
	"github.com/galaco/studiomodel"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"

	"github.com/saiko-tech/lbvh-tracer/pkg/lbvh"
)

// inches per meter, .phy vertices are in meters
const phyScale = 1 / 0.0254

// StaticProp is a placed instance of a prop model.
// Each instance is its own mesh, hits on it carry its ID.
type StaticProp struct {
	ID     uuid.UUID
	Model  string // empty if the model could not be loaded
	Origin mgl32.Vec3
	Angles mgl32.Vec3 // pitch, yaw, roll in degrees

	triangles []lbvh.Triangle
}

// Triangles returns the collision triangles of the prop in world space.
func (p StaticProp) Triangles() []lbvh.Triangle {
	return p.triangles
}

// phyToModel converts a collision model vertex to model space.
func phyToModel(vertex mgl32.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{
		phyScale * vertex[2],
		phyScale * -vertex[0],
		phyScale * -vertex[1],
	}
}

// propRotation returns the model to world rotation for Source angles (pitch, yaw, roll).
func propRotation(angles mgl32.Vec3) mgl32.Mat3 {
	pitch := mgl32.DegToRad(angles[0])
	yaw := mgl32.DegToRad(angles[1])
	roll := mgl32.DegToRad(angles[2])

	return mgl32.Rotate3DZ(yaw).Mul3(mgl32.Rotate3DY(pitch)).Mul3(mgl32.Rotate3DX(roll))
}

// placeTriangles moves model space triangles to the prop's position. Face is the triangle index.
func placeTriangles(prop *StaticProp, tris [][3]mgl32.Vec3) []lbvh.Triangle {
	rot := propRotation(prop.Angles)

	out := make([]lbvh.Triangle, len(tris))

	for i, tri := range tris {
		for j, v := range tri {
			out[i].Vertices[j] = rot.Mul3x1(v).Add(prop.Origin)
		}

		out[i].ID = lbvh.PrimitiveID{Mesh: prop.ID, Face: i}
	}

	return out
}

func phyTriangles(model *studiomodel.StudioModel) [][3]mgl32.Vec3 {
	if model == nil || model.Phy == nil {
		return nil
	}

	out := make([][3]mgl32.Vec3, len(model.Phy.TriangleFaces))

	for i, t := range model.Phy.TriangleFaces {
		out[i] = [3]mgl32.Vec3{
			phyToModel(model.Phy.Vertices[t.V1].Vec3()),
			phyToModel(model.Phy.Vertices[t.V2].Vec3()),
			phyToModel(model.Phy.Vertices[t.V3].Vec3()),
		}
	}

	return out
}

// staticProps places every static prop of the map.
func staticProps(bspfile *bsp.Bsp, models modelSet) []StaticProp {
	gameLump := bspfile.Lump(bsp.LumpGame).(*lumps.Game).GetData()
	spLump := gameLump.GetStaticPropLump()

	props := make([]StaticProp, 0, len(spLump.PropLumps))

	for _, p := range spLump.PropLumps {
		prop := StaticProp{
			ID:     uuid.New(),
			Origin: p.GetOrigin(),
			Angles: p.GetAngles(),
		}

		// nil if the model is missing
		if model := models.model(int(p.GetPropType())); model != nil {
			prop.Model = model.Filename
			prop.triangles = placeTriangles(&prop, phyTriangles(model))
		}

		props = append(props, prop)
	}

	return props
}
