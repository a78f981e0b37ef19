// Package lbvh builds linear bounding volume hierarchies over triangles and traces rays through them.
//
// Construction follows Tero Karras, "Thinking Parallel, Part III: Tree Construction on the GPU":
// triangle centroids are mapped onto a Z-order curve via 30-bit Morton codes, sorted, and the tree
// is derived from the common binary prefixes of neighbouring codes.
// https://developer.nvidia.com/blog/thinking-parallel-part-iii-tree-construction-gpu/
package lbvh

import (
	"math/bits"
	"time"

	"go.uber.org/zap"
	"golang.org/x/exp/slices"
)

type codedPrimitive struct {
	code uint32
	tri  Triangle
}

type builder struct {
	codes         []uint32
	triangles     []Triangle
	nodes         []Node
	sphereVolumes bool
	maxDepth      int
}

// Build creates a new hierarchy over triangles.
// bounds must contain the centroids of all triangles, it is used to normalize them into the
// unit cube before coding; BoundsOf(triangles) is the usual choice.
// The hierarchy is never updated, rebuild it whenever the geometry changes.
func Build(triangles []Triangle, bounds Box, opts ...Option) (*Tree, error) {
	if len(triangles) == 0 {
		return nil, ErrNoPrimitives
	}

	if err := bounds.validate(); err != nil {
		return nil, err
	}

	o := newOptions(opts)
	start := time.Now()

	coded := make([]codedPrimitive, len(triangles))
	for i, tri := range triangles {
		c := normalizedCentroid(tri, bounds)
		coded[i] = codedPrimitive{
			code: EncodeMorton(c[0], c[1], c[2]),
			tri:  tri,
		}
	}

	// order among equal codes is unspecified, ranges of equal codes are bisected
	slices.SortFunc(coded, func(a, b codedPrimitive) bool {
		return a.code < b.code
	})

	b := &builder{
		codes:         make([]uint32, len(coded)),
		triangles:     make([]Triangle, len(coded)),
		nodes:         make([]Node, 0, 2*len(coded)-1),
		sphereVolumes: o.sphereVolumes,
	}

	for i, c := range coded {
		b.codes[i] = c.code
		b.triangles[i] = c.tri
	}

	root, _ := b.buildRange(0, len(coded)-1, NoNode, 0)

	t := &Tree{
		nodes:     b.nodes,
		triangles: b.triangles,
		root:      root,
		stats: Stats{
			Nodes:    len(b.nodes),
			Internal: len(b.nodes) - len(b.triangles),
			Leaves:   len(b.triangles),
			MaxDepth: b.maxDepth,
		},
	}

	o.log.Debug("BVH tree built",
		zap.Duration("took", time.Since(start)),
		zap.Int("nodes", t.stats.Nodes),
		zap.Int("leaves", t.stats.Leaves),
		zap.Int("maxDepth", t.stats.MaxDepth),
		zap.Bool("sphereVolumes", o.sphereVolumes))

	return t, nil
}

// buildRange creates the subtree over the sorted primitives [first, last] and returns its id and box.
func (b *builder) buildRange(first, last int, parent NodeID, depth int) (NodeID, Box) {
	if depth > b.maxDepth {
		b.maxDepth = depth
	}

	id := NodeID(len(b.nodes))

	// single primitive, return a leaf
	if first == last {
		box := b.triangles[first].Bounds()
		b.nodes = append(b.nodes, Node{
			Kind:      KindLeaf,
			Volume:    BoxVolume(box),
			Children:  [2]NodeID{NoNode, NoNode},
			Parent:    parent,
			Primitive: first,
		})

		return id, box
	}

	// reserve the slot so children can point back at it
	b.nodes = append(b.nodes, Node{Kind: KindInternal, Parent: parent, Primitive: -1})

	split := findSplit(b.codes, first, last)

	childA, boxA := b.buildRange(first, split, id, depth+1)
	childB, boxB := b.buildRange(split+1, last, id, depth+1)

	box := boxA.Union(boxB)

	n := &b.nodes[id]
	n.Children = [2]NodeID{childA, childB}

	if b.sphereVolumes {
		n.Volume = SphereVolume(box.BoundingSphere())
	} else {
		n.Volume = BoxVolume(box)
	}

	return id, box
}

// commonPrefix returns the number of leading bits a and b share.
func commonPrefix(a, b uint32) int {
	return bits.LeadingZeros32(a ^ b)
}

// findSplit returns the index s in [first, last) after which the sorted range of codes
// [first, last] is divided: the last code that shares more leading bits with codes[first]
// than codes[last] does.
func findSplit(codes []uint32, first, last int) int {
	firstCode := codes[first]
	lastCode := codes[last]

	// identical codes carry no spatial information, bisect the range
	if firstCode == lastCode {
		return (first + last) >> 1
	}

	rangePrefix := commonPrefix(firstCode, lastCode)

	// binary search for the highest index sharing more than rangePrefix bits with firstCode
	split := first
	step := last - first

	for {
		step = (step + 1) >> 1
		newSplit := split + step

		if newSplit < last && commonPrefix(firstCode, codes[newSplit]) > rangePrefix {
			split = newSplit
		}

		if step <= 1 {
			break
		}
	}

	return split
}
