package bvh

import (
	"errors"
	"fmt"
	"sort"

	"bvh-raytracer/internal/geom"
	"bvh-raytracer/internal/mathutil"
	"bvh-raytracer/internal/shapes"
)

// DefaultLeafSize is the largest primitive range stored in a leaf.
const DefaultLeafSize = 2

var (
	ErrArenaFull        = errors.New("bvh: node arena exhausted")
	ErrPrimitiveRange   = errors.New("bvh: primitive index out of range")
	ErrDegenerateBounds = errors.New("bvh: degenerate interior bounds")
)

// Kind tags which primitive array a PrimRef indexes.
type Kind uint8

const (
	KindFace Kind = iota
	KindSphere
)

func (k Kind) String() string {
	switch k {
	case KindFace:
		return "face"
	case KindSphere:
		return "sphere"
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// PrimRef names a single primitive: a mesh face or a sphere.
type PrimRef struct {
	Kind  Kind
	Index int
}

// Node is an arena entry. Leaves cover Prims[First:First+Count]; interior
// nodes reference their children by arena index.
type Node struct {
	Bounds geom.AABB
	Left   int
	Right  int
	First  int
	Count  int
	Axis   int
	Leaf   bool
}

// Options tunes tree construction. Zero values select the defaults.
type Options struct {
	LeafSize int
	MaxNodes int // 0 = unbounded
}

// Tree is an immutable BVH over the faces of a mesh and a set of spheres.
// It may be traversed from many goroutines at once.
type Tree struct {
	nodes   []Node
	prims   []int // flat index space: faces first, then spheres
	mesh    *shapes.Mesh
	spheres []shapes.Sphere
	depth   int
}

type builder struct {
	tree      *Tree
	opts      Options
	bounds    []geom.AABB
	centroids []mathutil.Vec3
}

// Build constructs a tree over every face of mesh and every sphere. Vertex
// normals are derived first if the mesh does not have them yet.
func Build(mesh *shapes.Mesh, spheres []shapes.Sphere, opts Options) (*Tree, error) {
	if mesh == nil {
		mesh = &shapes.Mesh{}
	}
	if opts.LeafSize <= 0 {
		opts.LeafSize = DefaultLeafSize
	}
	if len(mesh.Normals) != len(mesh.Vertices) {
		mesh.ComputeVertexNormals()
	}

	t := &Tree{mesh: mesh, spheres: spheres}
	n := len(mesh.Faces) + len(spheres)
	if n == 0 {
		return t, nil
	}

	b := &builder{
		tree:      t,
		opts:      opts,
		bounds:    make([]geom.AABB, n),
		centroids: make([]mathutil.Vec3, n),
	}

	t.prims = make([]int, n)
	for i := range t.prims {
		t.prims[i] = i
		bb, err := b.primBounds(i)
		if err != nil {
			return nil, err
		}
		b.bounds[i] = bb
		b.centroids[i] = bb.Centroid()
	}

	t.nodes = make([]Node, 0, 2*n/opts.LeafSize+1)
	if _, err := b.build(0, n, 1); err != nil {
		return nil, err
	}
	return t, nil
}

func (b *builder) primBounds(idx int) (geom.AABB, error) {
	ref, err := b.tree.classify(idx)
	if err != nil {
		return geom.AABB{}, err
	}
	if ref.Kind == KindFace {
		return b.tree.mesh.FaceBounds(ref.Index), nil
	}
	return b.tree.spheres[ref.Index].Bounds(), nil
}

// build fills the node for prims[first:first+count] and returns its index.
func (b *builder) build(first, count, depth int) (int, error) {
	t := b.tree
	if b.opts.MaxNodes > 0 && len(t.nodes) >= b.opts.MaxNodes {
		return 0, fmt.Errorf("%w: limit %d", ErrArenaFull, b.opts.MaxNodes)
	}
	if depth > t.depth {
		t.depth = depth
	}

	idx := len(t.nodes)
	t.nodes = append(t.nodes, Node{})

	bounds := geom.EmptyAABB()
	for _, p := range t.prims[first : first+count] {
		bounds = bounds.Union(b.bounds[p])
	}

	if count <= b.opts.LeafSize {
		t.nodes[idx] = Node{Bounds: bounds, First: first, Count: count, Leaf: true}
		return idx, nil
	}

	if bounds.IsDegenerate() {
		return 0, fmt.Errorf("%w: %d primitives at %v", ErrDegenerateBounds, count, bounds.Min)
	}

	axis := bounds.LongestAxis()
	sortByCentroid(t.prims[first:first+count], b.centroids, axis)

	half := count / 2
	left, err := b.build(first, half, depth+1)
	if err != nil {
		return 0, err
	}
	right, err := b.build(first+half, count-half, depth+1)
	if err != nil {
		return 0, err
	}

	t.nodes[idx] = Node{Bounds: bounds, Left: left, Right: right, First: first, Count: count, Axis: axis}
	return idx, nil
}

func sortByCentroid(prims []int, centroids []mathutil.Vec3, axis int) {
	sort.Slice(prims, func(i, j int) bool {
		return centroids[prims[i]][axis] < centroids[prims[j]][axis]
	})
}

// classify maps a flat primitive index to its tagged form.
func (t *Tree) classify(idx int) (PrimRef, error) {
	faces := len(t.mesh.Faces)
	switch {
	case idx < 0:
	case idx < faces:
		return PrimRef{Kind: KindFace, Index: idx}, nil
	case idx-faces < len(t.spheres):
		return PrimRef{Kind: KindSphere, Index: idx - faces}, nil
	}
	return PrimRef{}, fmt.Errorf("%w: %d (faces=%d, spheres=%d)", ErrPrimitiveRange, idx, faces, len(t.spheres))
}

// Len returns the number of primitives in the tree.
func (t *Tree) Len() int {
	return len(t.prims)
}

// Ref returns the primitive stored at position i of the tree order.
func (t *Tree) Ref(i int) PrimRef {
	ref, _ := t.classify(t.prims[i])
	return ref
}

// Nodes exposes the arena for inspection tools.
func (t *Tree) Nodes() []Node {
	return t.nodes
}
