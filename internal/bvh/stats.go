package bvh

import "fmt"

// Stats summarises the shape of a tree.
type Stats struct {
	Nodes        int
	Leaves       int
	Faces        int
	Spheres      int
	MaxDepth     int
	MaxLeafSize  int
	MeanLeafSize float64
}

func (t *Tree) Stats() Stats {
	s := Stats{
		Nodes:    len(t.nodes),
		Faces:    len(t.mesh.Faces),
		Spheres:  len(t.spheres),
		MaxDepth: t.depth,
	}
	total := 0
	for i := range t.nodes {
		n := &t.nodes[i]
		if !n.Leaf {
			continue
		}
		s.Leaves++
		total += n.Count
		if n.Count > s.MaxLeafSize {
			s.MaxLeafSize = n.Count
		}
	}
	if s.Leaves > 0 {
		s.MeanLeafSize = float64(total) / float64(s.Leaves)
	}
	return s
}

func (s Stats) String() string {
	return fmt.Sprintf("%d nodes, %d leaves (max %d, mean %.2f prims), depth %d, %d faces + %d spheres",
		s.Nodes, s.Leaves, s.MaxLeafSize, s.MeanLeafSize, s.MaxDepth, s.Faces, s.Spheres)
}
