package cards

import (
	"fmt"
	"math"

	"go.uber.org/zap"
)

// Slot anchors a stack of cards at a grid cell on the board. Rules address
// piles through their slots, cards only through the head link.
type Slot struct {
	Name        string
	Cell        Cell
	Orientation Orientation
	Overlap     Overlap

	// Optional hints for rule code. The engine itself never reads them.
	Rank Rank
	Suit Suit

	// BlockedBy marks the slot whose stack must empty out before cards
	// here may be taken, as in the side columns of Backbone.
	BlockedBy *Slot

	child *Card
	rect  Rect
	board *Rect
	log   *zap.Logger
}

// NewSlot creates a slot at cell with the given fan orientation. A nil
// logger disables logging.
func NewSlot(cell Cell, orientation Orientation, name string, logger *zap.Logger) *Slot {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Slot{
		Name:        name,
		Cell:        cell,
		Orientation: orientation,
		Overlap:     defaultOverlap,
		log:         logger,
	}
}

func (s *Slot) String() string {
	if s.Name != "" {
		return s.Name
	}
	return fmt.Sprintf("slot(%g,%g)", s.Cell.X, s.Cell.Y)
}

func (s *Slot) Rect() Rect { return s.rect }

// Head returns the first card of the slot's stack, nil when empty.
func (s *Slot) Head() *Card { return s.child }

func (s *Slot) Empty() bool { return s.child == nil }

// Tail returns the last card of the slot's stack, nil when empty.
func (s *Slot) Tail() *Card {
	if s.child == nil {
		return nil
	}
	cur := s.child
	for cur.child != nil {
		cur = cur.child
	}
	return cur
}

// Cards returns the slot's stack in order, head first.
func (s *Slot) Cards() []*Card {
	if s.child == nil {
		return nil
	}
	return append([]*Card{s.child}, s.child.Children()...)
}

// Move sets the slot's pixel position. Its stack does not follow, use
// BoardMove for that.
func (s *Slot) Move(pos Point) {
	s.rect.MoveTo(pos)
}

// Resize sets the slot's pixel size, normally the current card size.
func (s *Slot) Resize(size Size) {
	s.rect.W, s.rect.H = size.W, size.H
}

// BoardMove repositions the slot from its grid cell under the given
// geometry and re-places its stack on top.
func (s *Slot) BoardMove(g Geometry) {
	s.Move(Point{
		X: int(float64(g.Origin.X) + s.Cell.X*float64(g.CellW)),
		Y: int(float64(g.Origin.Y) + s.Cell.Y*float64(g.CellH)),
	})
	if s.child != nil {
		s.child.Place(s)
	}
}

// Stack adds card, with its chain, to the slot: placed as head when the
// slot is empty, stacked on the tail otherwise.
func (s *Slot) Stack(card *Card) {
	if s.child == nil {
		card.Place(s)
		return
	}
	card.Stack(s.Tail(), OrientKeep, nil)
}

// Deal moves the slot's tail card to each target in turn, flipping it per
// facing first. Dealing from an empty slot logs a warning and stops.
func (s *Slot) Deal(facing Facing, targets ...*Slot) {
	for _, target := range targets {
		if s.child == nil {
			s.log.Warn("dealing from an empty slot",
				zap.Stringer("from", s), zap.Stringer("to", target))
			return
		}
		card := s.Tail()
		card.Flip(facing)
		target.Stack(card)
	}
}

// Fit shrinks the effective overlap of a fanned stack so its tail stays
// inside the board. Pass a board rect to set it, nil keeps the previous
// one. Piles and unfanned slots are left alone.
func (s *Slot) Fit(board *Rect) {
	if board != nil {
		b := *board
		s.board = &b
	}
	if s.board == nil {
		return
	}

	stack := s.Cards()
	length := len(stack)
	if length < 2 {
		return
	}

	var dir, edge, boardEdge, tailEdge, size int
	var slotOverlap float64
	tail := stack[length-1]
	switch s.Orientation {
	case OrientUp:
		dir, size, slotOverlap = -1, s.rect.H, s.Overlap.Y
		edge, boardEdge, tailEdge = s.rect.Top(), s.board.Top(), tail.Rect().Top()
	case OrientDown:
		dir, size, slotOverlap = 1, s.rect.H, s.Overlap.Y
		edge, boardEdge, tailEdge = s.rect.Bottom(), s.board.Bottom(), tail.Rect().Bottom()
	case OrientLeft:
		dir, size, slotOverlap = -1, s.rect.W, s.Overlap.X
		edge, boardEdge, tailEdge = s.rect.Left(), s.board.Left(), tail.Rect().Left()
	case OrientRight:
		dir, size, slotOverlap = 1, s.rect.W, s.Overlap.X
		edge, boardEdge, tailEdge = s.rect.Right(), s.board.Right(), tail.Rect().Right()
	default:
		return
	}

	dist := float64(dir * size * (length - 1))
	if dist == 0 {
		return
	}
	maxOverlap := float64(boardEdge-edge) / dist
	curOverlap := float64(tailEdge-edge) / dist

	if maxOverlap < curOverlap || math.Round(curOverlap*100)/100 < slotOverlap {
		overlap := math.Min(slotOverlap, maxOverlap)
		s.log.Debug("fitting stack overlap",
			zap.Stringer("slot", s),
			zap.Float64("current", curOverlap),
			zap.Float64("max", maxOverlap),
			zap.Float64("new", overlap))
		s.child.child.Snap(s.child, s.Orientation, &Overlap{X: overlap, Y: overlap})
	}
}
