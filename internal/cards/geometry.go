package cards

// Point is a board position in pixels.
type Point struct {
	X int
	Y int
}

// Size in pixels.
type Size struct {
	W int
	H int
}

// Rect is an axis-aligned pixel rectangle. The right and bottom edges are
// exclusive, so two rects that merely touch do not overlap.
type Rect struct {
	X int
	Y int
	W int
	H int
}

func (r Rect) Left() int   { return r.X }
func (r Rect) Top() int    { return r.Y }
func (r Rect) Right() int  { return r.X + r.W }
func (r Rect) Bottom() int { return r.Y + r.H }

func (r Rect) TopLeft() Point { return Point{X: r.X, Y: r.Y} }
func (r Rect) Size() Size     { return Size{W: r.W, H: r.H} }

// Contains reports whether p falls inside r.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X < r.X+r.W && p.Y >= r.Y && p.Y < r.Y+r.H
}

// Overlaps reports whether the two rects share any interior area.
func (r Rect) Overlaps(o Rect) bool {
	return r.X < o.X+o.W && r.X+r.W > o.X && r.Y < o.Y+o.H && r.Y+r.H > o.Y
}

// MoveTo sets the top-left corner, keeping the size.
func (r *Rect) MoveTo(p Point) {
	r.X, r.Y = p.X, p.Y
}

// Cell is a slot position on the board grid. Fractional coordinates are
// legitimate, half and third cells are common in layouts.
type Cell struct {
	X float64
	Y float64
}

// Overlap is the fraction of a card's size that a stacked child is offset
// by, per axis. Zero is meaningful (a square pile), so optional overlaps
// are passed as *Overlap with nil selecting the default.
type Overlap struct {
	X float64
	Y float64
}

var defaultOverlap = Overlap{X: 0.2, Y: 0.2}

// Geometry maps grid cells to pixels: a pixel origin plus the cell size.
// Cell sizes are whole pixels, layouts truncate before building one.
type Geometry struct {
	Origin Point
	CellW  int
	CellH  int
}
