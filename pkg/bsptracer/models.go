package bsptracer

import (
	"fmt"
	"io"
	"strings"

	"github.com/galaco/bsp"
	"github.com/galaco/bsp/lumps"
	"github.com/galaco/studiomodel"
	"github.com/galaco/studiomodel/mdl"
	"github.com/galaco/studiomodel/phy"
	vpk "github.com/galaco/vpk2"
	"github.com/pkg/errors"
)

type virtualFileSystem interface {
	open(string) (io.ReadCloser, error)
}

func readFile[T any](fs virtualFileSystem, path string, read func(io.Reader) (T, error)) (T, error) {
	var def T

	f, err := fs.open(path)
	if err != nil {
		return def, err
	}

	defer f.Close()

	v, err := read(f)
	if err != nil {
		return def, errors.Wrapf(err, "failed to parse %q", path)
	}

	return v, nil
}

// loadCollisionModel reads the parts of a studio model needed for tracing: the .mdl header,
// which must exist, and the .phy collision hull. A model without .phy is not solid and
// gets a nil Phy. Render data (.vvd, .vtx) is not read.
func loadCollisionModel(fs virtualFileSystem, path string) (*studiomodel.StudioModel, error) {
	name := strings.TrimSuffix(path, ".mdl")

	header, err := readFile(fs, name+".mdl", mdl.ReadFromStream)
	if err != nil {
		return nil, err
	}

	hull, err := readFile(fs, name+".phy", phy.ReadFromStream)
	if err != nil && !errors.Is(err, errFileNotFound) {
		return nil, err
	}

	return &studiomodel.StudioModel{
		Filename: name,
		Mdl:      header,
		Phy:      hull,
	}, nil
}

type missingModel struct {
	name string
	err  error
}

// MissingModelsError is returned next to a usable map when some prop models could not be loaded.
// Props using these models have no triangles.
type MissingModelsError struct {
	missing []missingModel
}

// Models returns the names of the models that could not be loaded, in prop dictionary order.
func (m MissingModelsError) Models() []string {
	names := make([]string, len(m.missing))
	for i, mm := range m.missing {
		names[i] = mm.name
	}

	return names
}

// Unwrap returns why each model could not be loaded.
func (m MissingModelsError) Unwrap() []error {
	errs := make([]error, len(m.missing))
	for i, mm := range m.missing {
		errs[i] = mm.err
	}

	return errs
}

func (m MissingModelsError) Error() string {
	return fmt.Sprintf(`missing models: ("%s")`, strings.Join(m.Models(), `", "`))
}

// modelSet is the static prop dictionary resolved to collision models.
type modelSet struct {
	// indexed like the dictionary, nil if missing
	models []*studiomodel.StudioModel
	// number of loaded models without a collision hull
	nonSolid int
}

func (s modelSet) model(propType int) *studiomodel.StudioModel {
	if propType < 0 || propType >= len(s.models) {
		return nil
	}

	return s.models[propType]
}

// loadModelsFrom loads the named models. Names differing only in case share one load.
func loadModelsFrom(fs virtualFileSystem, names []string) (modelSet, error) {
	type result struct {
		model *studiomodel.StudioModel
		err   error
	}

	var (
		set     = modelSet{models: make([]*studiomodel.StudioModel, len(names))}
		loaded  = make(map[string]result, len(names))
		missing []missingModel
	)

	for i, name := range names {
		key := strings.ToLower(name)

		r, ok := loaded[key]
		if !ok {
			r.model, r.err = loadCollisionModel(fs, name)
			loaded[key] = r

			if r.model != nil && r.model.Phy == nil {
				set.nonSolid++
			}
		}

		if r.err != nil {
			missing = append(missing, missingModel{name: name, err: r.err})

			continue
		}

		set.models[i] = r.model
	}

	if len(missing) > 0 {
		return set, MissingModelsError{missing: missing}
	}

	return set, nil
}

// loadModels loads the models of the static prop dictionary.
func loadModels(bspfile *bsp.Bsp, vpks []*vpk.VPK) (modelSet, error) {
	fs := newVFS(bspfile.Lump(bsp.LumpPakfile).(*lumps.Pakfile).GetData(), vpks)

	gameLump := bspfile.Lump(bsp.LumpGame).(*lumps.Game).GetData()

	return loadModelsFrom(fs, gameLump.GetStaticPropLump().DictLump.Name)
}
