package bsptracer

import (
	"archive/zip"
	"io"
	"strings"

	"github.com/galaco/vpk2"
	"github.com/pkg/errors"
)

// vfs resolves model files from the map's pakfile first, then from the VPKs in order.
type vfs struct {
	pakfile *zip.Reader
	vpks    []*vpk.VPK

	// lower-case names, pakfile lookups are case-insensitive
	pakfileIndex map[string]*zip.File
}

var errFileNotFound = errors.New("file not found")

func newVFS(pakfile *zip.Reader, vpks []*vpk.VPK) *vfs {
	v := &vfs{
		pakfile:      pakfile,
		vpks:         vpks,
		pakfileIndex: make(map[string]*zip.File),
	}

	if pakfile != nil {
		for _, f := range pakfile.File {
			v.pakfileIndex[strings.ToLower(f.Name)] = f
		}
	}

	return v
}

func (v *vfs) open(path string) (io.ReadCloser, error) {
	if pakF, ok := v.pakfileIndex[strings.ToLower(path)]; ok && pakF.UncompressedSize64 > 0 {
		f, err := pakF.Open()
		if err == nil {
			return f, nil
		}
	}

	for _, vpkF := range v.vpks {
		f, err := vpkF.Open(path)
		if err != nil {
			continue
		}

		stat, err := f.Stat()
		if err == nil && stat.Size() > 0 {
			return f, nil
		}

		f.Close()
	}

	return nil, errors.Wrapf(errFileNotFound, "%s not found", path)
}
