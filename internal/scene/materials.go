package scene

import "bvh-raytracer/internal/mathutil"

// Materials maps small integer ids to base colors. Ids that were never set
// fall back to a four-step grey ramp.
type Materials struct {
	colors []mathutil.Vec3
	set    []bool
}

// DefaultColor is the base color of an undefined material id.
func DefaultColor(id int) mathutil.Vec3 {
	if id < 0 {
		id = -id
	}
	c := (100 + 30*float64(id%4)) / 255
	return mathutil.Vec3{c, c, c}
}

// Set assigns a base color with channels in [0,1].
func (m *Materials) Set(id int, color mathutil.Vec3) {
	if id < 0 {
		return
	}
	for len(m.colors) <= id {
		m.colors = append(m.colors, mathutil.Vec3{})
		m.set = append(m.set, false)
	}
	m.colors[id] = color
	m.set[id] = true
}

// Color returns the base color of id.
func (m *Materials) Color(id int) mathutil.Vec3 {
	if id >= 0 && id < len(m.colors) && m.set[id] {
		return m.colors[id]
	}
	return DefaultColor(id)
}

// Len returns the number of explicitly defined materials.
func (m *Materials) Len() int {
	n := 0
	for _, ok := range m.set {
		if ok {
			n++
		}
	}
	return n
}
