// Package bsptracer implements Ray-Tracing / Ray-Casting on top of github.com/Galaco/bsp.
// World faces and static prop collision models are triangulated and indexed in a
// linear bounding volume hierarchy (see package lbvh).
package bsptracer

import (
	"github.com/galaco/bsp"
	vpk "github.com/galaco/vpk2"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/saiko-tech/lbvh-tracer/pkg/lbvh"
	"github.com/saiko-tech/lbvh-tracer/pkg/lbvh/collision"
)

// barycentric slack of the triangle tests, keeps rays from slipping between adjacent faces
const tracePrecision = float32(0.00001)

// Map is a loaded BSP map.
type Map struct {
	// World identifies the triangles of the world brushes.
	World uuid.UUID
	Props []StaticProp

	triangles []lbvh.Triangle
	tree      *lbvh.Tree
}

// Options configures LoadMap.
type Options struct {
	// VPKPaths lists VPK archives (without the _dir.vpk suffix) searched for prop models
	// that are not packed into the map.
	VPKPaths []string
	Logger   *zap.Logger
	// Tree is passed to lbvh.Build.
	Tree []lbvh.Option
}

// LoadMapFromFileSystem loads a BSP map from a file, looking up prop models in the given VPKs.
// If some models cannot be found the map is returned together with a MissingModelsError.
func LoadMapFromFileSystem(path string, vpkPaths ...string) (*Map, error) {
	return LoadMap(path, Options{VPKPaths: vpkPaths})
}

// LoadMap loads a BSP map from a file.
// If some models cannot be found the map is returned together with a MissingModelsError.
func LoadMap(path string, opts Options) (*Map, error) {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	log = log.Named("bsptracer").With(zap.String("map", path))

	bspfile, err := bsp.ReadFromFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read map %q", path)
	}

	vpks := make([]*vpk.VPK, 0, len(opts.VPKPaths))

	for _, p := range opts.VPKPaths {
		v, err := vpk.Open(vpk.MultiVPK(p))
		if err != nil {
			return nil, errors.Wrapf(err, "failed to open vpk %q", p)
		}

		vpks = append(vpks, v)
	}

	models, modelsErr := loadModels(bspfile, vpks)
	if modelsErr != nil {
		log.Warn("Models missing", zap.Error(modelsErr))
	}

	world := uuid.New()
	tris := worldTriangles(bspfile, world)
	props := staticProps(bspfile, models)

	log.Debug("Map geometry loaded",
		zap.Int("worldTriangles", len(tris)),
		zap.Int("staticProps", len(props)),
		zap.Int("nonSolidModels", models.nonSolid))

	m, err := newMap(world, tris, props, append([]lbvh.Option{lbvh.WithLogger(log)}, opts.Tree...)...)
	if err != nil {
		return nil, err
	}

	return m, modelsErr
}

func newMap(world uuid.UUID, tris []lbvh.Triangle, props []StaticProp, opts ...lbvh.Option) (*Map, error) {
	for _, p := range props {
		tris = append(tris, p.triangles...)
	}

	tree, err := lbvh.Build(tris, lbvh.BoundsOf(tris), opts...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to build hierarchy")
	}

	return &Map{
		World:     world,
		Props:     props,
		triangles: tris,
		tree:      tree,
	}, nil
}

// Tree returns the hierarchy over all map triangles.
func (m *Map) Tree() *lbvh.Tree {
	return m.tree
}

// Triangles returns world and static prop triangles.
func (m *Map) Triangles() []lbvh.Triangle {
	return m.triangles
}

// IsVisible returns true if destination is visible from origin, as computed by
// a ray trace.
func (m *Map) IsVisible(origin, destination mgl32.Vec3) bool {
	return m.TraceRay(origin, destination).Fraction >= 1
}

// TraceRay traces a ray from origin to destination and returns the result.
// It panics if the map's hierarchy is malformed.
func (m *Map) TraceRay(origin, destination mgl32.Vec3) *Trace {
	out := &Trace{
		Fraction: 1,
		EndPos:   destination,
	}

	ray := collision.Ray{Origin: origin, Direction: destination.Sub(origin)}

	hits, err := m.tree.Intersect(ray, tracePrecision, 0, 1)
	if err != nil {
		// newMap only stores trees returned by lbvh.Build
		panic(errors.Wrap(err, "map hierarchy is malformed"))
	}

	if len(hits) == 0 {
		return out
	}

	lbvh.SortHits(hits)

	out.Fraction = hits[0].Distance
	out.EndPos = hits[0].Point
	out.Hit = true
	out.ID = hits[0].ID
	out.Normal = hits[0].Normal

	return out
}

// Trace captures the result of a ray trace.
type Trace struct {
	// Fraction of the way from origin to destination the ray travelled, 1 if nothing was hit.
	Fraction float32
	EndPos   mgl32.Vec3
	Hit      bool
	// ID of the face that was hit, its Mesh is either Map.World or the ID of a StaticProp.
	ID     lbvh.PrimitiveID
	Normal mgl32.Vec3
}
