package imagery

import (
	"math"

	"github.com/minealert/minealert-backend/models"
)

type point struct{ x, y int }

type mask struct {
	width, height int
	bits          []bool
}

func newMask(width, height int) *mask {
	return &mask{width: width, height: height, bits: make([]bool, width*height)}
}

func (m *mask) set(x, y int) { m.bits[y*m.width+x] = true }

func (m *mask) at(p point) bool {
	if p.x < 0 || p.y < 0 || p.x >= m.width || p.y >= m.height {
		return false
	}
	return m.bits[p.y*m.width+p.x]
}

// neighbours in clockwise order, starting west, y axis pointing down
var neighbours = [8]point{{-1, 0}, {-1, -1}, {0, -1}, {1, -1}, {1, 0}, {1, 1}, {0, 1}, {-1, 1}}

type component struct {
	start point
	box   models.BoundingBox
	size  int
}

// components labels the 8-connected groups of marked pixels. The start of each component is its
// first pixel in raster order, which always lies on its outer boundary.
func components(m *mask) []component {
	visited := make([]bool, len(m.bits))
	var result []component
	var stack []point

	for y := 0; y < m.height; y++ {
		for x := 0; x < m.width; x++ {
			if !m.bits[y*m.width+x] || visited[y*m.width+x] {
				continue
			}
			c := component{start: point{x, y}}
			minX, minY, maxX, maxY := x, y, x, y

			visited[y*m.width+x] = true
			stack = append(stack[:0], point{x, y})
			for len(stack) > 0 {
				p := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				c.size++
				minX, maxX = min(minX, p.x), max(maxX, p.x)
				minY, maxY = min(minY, p.y), max(maxY, p.y)

				for _, d := range neighbours {
					n := point{p.x + d.x, p.y + d.y}
					if m.at(n) && !visited[n.y*m.width+n.x] {
						visited[n.y*m.width+n.x] = true
						stack = append(stack, n)
					}
				}
			}

			c.box = models.BoundingBox{X: minX, Y: minY, Width: maxX - minX + 1, Height: maxY - minY + 1}
			result = append(result, c)
		}
	}
	return result
}

// step looks clockwise around current, starting after backtrack, for the next marked pixel.
func (m *mask) step(current, backtrack point) (next, nextBacktrack point, found bool) {
	k := 0
	for i, d := range neighbours {
		if (point{current.x + d.x, current.y + d.y}) == backtrack {
			k = i
			break
		}
	}
	for i := 1; i <= 8; i++ {
		d := neighbours[(k+i)%8]
		candidate := point{current.x + d.x, current.y + d.y}
		if m.at(candidate) {
			prev := neighbours[(k+i-1)%8]
			return candidate, point{current.x + prev.x, current.y + prev.y}, true
		}
	}
	return point{}, point{}, false
}

// trace follows the outer boundary of the component clockwise (Moore neighbour tracing) and
// returns the boundary pixels, the start pixel not repeated at the end.
func (c component) trace(m *mask) []point {
	contour := []point{c.start}
	// the west neighbour of the first raster pixel is never marked
	current, backtrack := c.start, point{c.start.x - 1, c.start.y}
	var second point

	for i := range 4*c.size + 8 {
		next, nextBacktrack, found := m.step(current, backtrack)
		if !found {
			// isolated pixel
			return contour
		}
		if i > 0 && current == c.start && next == second {
			return contour[:len(contour)-1]
		}
		if i == 0 {
			second = next
		}
		contour = append(contour, next)
		current, backtrack = next, nextBacktrack
	}
	return contour
}

// contourMetrics returns the area enclosed by the outer boundary (shoelace formula over the
// boundary pixel centres) and the length of the boundary.
func (c component) contourMetrics(m *mask) (area, perimeter float64) {
	contour := c.trace(m)
	n := len(contour)
	if n < 2 {
		return 0, 0
	}

	twiceArea := 0
	for i, p := range contour {
		q := contour[(i+1)%n]
		twiceArea += p.x*q.y - q.x*p.y
		perimeter += math.Hypot(float64(q.x-p.x), float64(q.y-p.y))
	}
	return math.Abs(float64(twiceArea)) / 2, perimeter
}
