package mask

import (
	"image"
	"sort"
)

// Component is a maximal 4-connected set of true pixels in a mask, with its
// bounding box and membership. Components are created fresh per mask per
// frame and never mutated afterwards.
type Component struct {
	MinX, MinY int
	MaxX, MaxY int
	Area       int
	Points     []image.Point
}

// Box returns the bounding box with the usual exclusive max convention.
func (c *Component) Box() image.Rectangle {
	return image.Rect(c.MinX, c.MinY, c.MaxX+1, c.MaxY+1)
}

// Width returns the bounding box width in pixels.
func (c *Component) Width() int { return c.MaxX - c.MinX + 1 }

// Height returns the bounding box height in pixels.
func (c *Component) Height() int { return c.MaxY - c.MinY + 1 }

// FillRatio is component area divided by bounding box area.
func (c *Component) FillRatio() float64 {
	box := c.Width() * c.Height()
	if box == 0 {
		return 0
	}
	return float64(c.Area) / float64(box)
}

// Aspect is the long side divided by the short side of the bounding box.
func (c *Component) Aspect() float64 {
	w, h := float64(c.Width()), float64(c.Height())
	if w == 0 || h == 0 {
		return 0
	}
	if w >= h {
		return w / h
	}
	return h / w
}

// Components flood-fills the bitmap into connected components using an
// iterative stack and 4-connectivity, discarding components below minArea
// pixels. The result is sorted by area, largest first.
func Components(b *Bitmap, minArea int) []Component {
	visited := make([]bool, len(b.Bits))
	var comps []Component

	for start := range b.Bits {
		if !b.Bits[start] || visited[start] {
			continue
		}

		comp := Component{
			MinX: b.Width, MinY: b.Height,
			MaxX: -1, MaxY: -1,
		}
		stack := []int{start}
		visited[start] = true

		for len(stack) > 0 {
			idx := stack[len(stack)-1]
			stack = stack[:len(stack)-1]

			x, y := idx%b.Width, idx/b.Width
			comp.Area++
			comp.Points = append(comp.Points, image.Pt(x, y))
			if x < comp.MinX {
				comp.MinX = x
			}
			if x > comp.MaxX {
				comp.MaxX = x
			}
			if y < comp.MinY {
				comp.MinY = y
			}
			if y > comp.MaxY {
				comp.MaxY = y
			}

			if x > 0 && b.Bits[idx-1] && !visited[idx-1] {
				visited[idx-1] = true
				stack = append(stack, idx-1)
			}
			if x < b.Width-1 && b.Bits[idx+1] && !visited[idx+1] {
				visited[idx+1] = true
				stack = append(stack, idx+1)
			}
			if y > 0 && b.Bits[idx-b.Width] && !visited[idx-b.Width] {
				visited[idx-b.Width] = true
				stack = append(stack, idx-b.Width)
			}
			if y < b.Height-1 && b.Bits[idx+b.Width] && !visited[idx+b.Width] {
				visited[idx+b.Width] = true
				stack = append(stack, idx+b.Width)
			}
		}

		if comp.Area >= minArea {
			comps = append(comps, comp)
		}
	}

	sort.Slice(comps, func(i, j int) bool {
		return comps[i].Area > comps[j].Area
	})
	return comps
}
