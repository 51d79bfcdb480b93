package drag

import "math"

// Point is a position in terminal cell coordinates.
type Point struct {
	X int
	Y int
}

// Rect is an axis-aligned rectangle in terminal cell coordinates.
type Rect struct {
	X int
	Y int
	W int
	H int
}

// Contains reports whether p lies inside the rectangle.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X < r.X+r.W && p.Y >= r.Y && p.Y < r.Y+r.H
}

// Area returns the rectangle's area; zero for degenerate rectangles.
func (r Rect) Area() int {
	if r.W <= 0 || r.H <= 0 {
		return 0
	}
	return r.W * r.H
}

// corners returns the rectangle's corners clockwise from the top left.
func (r Rect) corners() [4]Point {
	return [4]Point{
		{r.X, r.Y},
		{r.X + r.W, r.Y},
		{r.X + r.W, r.Y + r.H},
		{r.X, r.Y + r.H},
	}
}

// intersect returns the overlap of two rectangles; a rectangle with zero
// area when they do not overlap.
func intersect(a, b Rect) Rect {
	x1 := max(a.X, b.X)
	y1 := max(a.Y, b.Y)
	x2 := min(a.X+a.W, b.X+b.W)
	y2 := min(a.Y+a.H, b.Y+b.H)
	if x2 <= x1 || y2 <= y1 {
		return Rect{}
	}
	return Rect{X: x1, Y: y1, W: x2 - x1, H: y2 - y1}
}

// cornerDistance sums the distances between corresponding corners of two
// rectangles. Smaller means the rectangles sit closer to congruence, which
// is the primary drop-target score.
func cornerDistance(a, b Rect) float64 {
	ca, cb := a.corners(), b.corners()
	var sum float64
	for i := range ca {
		dx := float64(ca[i].X - cb[i].X)
		dy := float64(ca[i].Y - cb[i].Y)
		sum += math.Hypot(dx, dy)
	}
	return sum
}

// centeredOn returns a copy of r centered on p.
func (r Rect) centeredOn(p Point) Rect {
	return Rect{X: p.X - r.W/2, Y: p.Y - r.H/2, W: r.W, H: r.H}
}
