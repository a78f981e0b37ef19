package lbvh

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
)

// NodeID indexes a node inside its Tree.
type NodeID int32

// NoNode marks a missing child or the parent of the root.
const NoNode NodeID = -1

type NodeKind uint8

const (
	KindInternal NodeKind = iota
	KindLeaf
)

func (k NodeKind) String() string {
	switch k {
	case KindInternal:
		return "internal"
	case KindLeaf:
		return "leaf"
	}

	return "unknown"
}

type VolumeKind uint8

const (
	// VolumeNone is the zero value, a node carrying it is malformed.
	VolumeNone VolumeKind = iota
	VolumeBox
	VolumeSphere
)

// Volume is the bounding volume of a node, either a box or a sphere.
type Volume struct {
	kind   VolumeKind
	box    Box
	sphere Sphere
}

func BoxVolume(b Box) Volume {
	return Volume{kind: VolumeBox, box: b}
}

func SphereVolume(s Sphere) Volume {
	return Volume{kind: VolumeSphere, sphere: s}
}

func (v Volume) Kind() VolumeKind {
	return v.kind
}

// Box returns the box of a VolumeBox volume.
func (v Volume) Box() (Box, bool) {
	return v.box, v.kind == VolumeBox
}

// Sphere returns the sphere of a VolumeSphere volume.
func (v Volume) Sphere() (Sphere, bool) {
	return v.sphere, v.kind == VolumeSphere
}

// Node is either an internal node owning exactly two children or a leaf referencing one triangle.
type Node struct {
	Kind     NodeKind
	Volume   Volume
	Children [2]NodeID // NoNode for leaves
	Parent   NodeID    // bookkeeping only, NoNode for the root
	// Primitive indexes the leaf's triangle, -1 for internal nodes.
	Primitive int
}

// Stats describes the shape of a built tree.
type Stats struct {
	Nodes    int
	Internal int
	Leaves   int
	MaxDepth int
}

// Tree is a bounding volume hierarchy over triangles.
// All nodes live in one arena owned by the tree; a Tree is never modified after Build
// returns and can be traversed from multiple goroutines.
type Tree struct {
	nodes     []Node
	triangles []Triangle
	root      NodeID
	stats     Stats
}

func (t *Tree) Root() NodeID {
	return t.root
}

func (t *Tree) Node(id NodeID) Node {
	return t.nodes[id]
}

// Len returns the number of nodes.
func (t *Tree) Len() int {
	return len(t.nodes)
}

// Triangle returns the triangle referenced by a leaf.
func (t *Tree) Triangle(leaf NodeID) Triangle {
	return t.triangles[t.nodes[leaf].Primitive]
}

func (t *Tree) Stats() Stats {
	return t.stats
}

// Bounds returns the box of the root node.
// For trees built with sphere volumes the box enclosing the root sphere is returned.
func (t *Tree) Bounds() Box {
	v := t.nodes[t.root].Volume
	if s, ok := v.Sphere(); ok {
		r := mgl32.Vec3{s.Radius, s.Radius, s.Radius}
		return Box{Min: s.Center.Sub(r), Max: s.Center.Add(r)}
	}

	return v.box
}

// Walk visits every node depth first, children in construction order.
// Returning false from fn skips the children of that node.
func (t *Tree) Walk(fn func(id NodeID, n Node, depth int) bool) {
	t.walk(t.root, 0, fn)
}

func (t *Tree) walk(id NodeID, depth int, fn func(id NodeID, n Node, depth int) bool) {
	n := t.nodes[id]
	if !fn(id, n, depth) || n.Kind != KindInternal {
		return
	}

	for _, c := range n.Children {
		if t.valid(c) {
			t.walk(c, depth+1, fn)
		}
	}
}

func (t *Tree) valid(id NodeID) bool {
	return id >= 0 && int(id) < len(t.nodes)
}

// checkNode returns an error if n cannot be traversed.
func (t *Tree) checkNode(id NodeID, n Node) error {
	switch n.Volume.kind {
	case VolumeBox, VolumeSphere:
	case VolumeNone:
		return errors.Wrapf(ErrMalformedTree, "node %d has no bounding volume", id)
	default:
		return errors.Wrapf(ErrUnsupportedVolume, "node %d has volume kind %d", id, n.Volume.kind)
	}

	switch n.Kind {
	case KindInternal:
		for _, c := range n.Children {
			if !t.valid(c) {
				return errors.Wrapf(ErrMalformedTree, "internal node %d has children %v", id, n.Children)
			}
		}
	case KindLeaf:
		if n.Primitive < 0 || n.Primitive >= len(t.triangles) {
			return errors.Wrapf(ErrMalformedTree, "leaf %d references primitive %d", id, n.Primitive)
		}
	default:
		return errors.Wrapf(ErrMalformedTree, "node %d has kind %d", id, n.Kind)
	}

	return nil
}

// Validate checks every node of the tree and returns the first defect found.
func (t *Tree) Validate() error {
	if !t.valid(t.root) {
		return errors.Wrapf(ErrMalformedTree, "root %d out of range", t.root)
	}

	var err error

	t.Walk(func(id NodeID, n Node, _ int) bool {
		if err != nil {
			return false
		}

		err = t.checkNode(id, n)

		return err == nil
	})

	return err
}
