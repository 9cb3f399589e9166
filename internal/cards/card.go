package cards

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// Item is any board element a pointer gesture can land on, a *Card or a *Slot.
type Item interface {
	Rect() Rect
}

// Card is a single playing card and a node in a stack: the parent and child
// links form the pile it belongs to, slot points at the pile's anchor.
// Corrupt stacking requests are auto-corrected with a logged warning rather
// than rejected, so rule code can stay straight-line.
type Card struct {
	Rank Rank
	Suit Suit

	name      string
	shortName string

	deck        *Deck
	slot        *Slot
	parent      *Card
	child       *Card
	orientation Orientation
	faceup      bool
	rect        Rect

	dragging   bool
	dragStart  Point
	dragOffset Point

	log *zap.Logger
}

func newCard(rank Rank, suit Suit, deck *Deck, faceup bool) *Card {
	return &Card{
		Rank:        rank,
		Suit:        suit,
		name:        fmt.Sprintf("%s of %s", rank, suit),
		shortName:   rank.Short() + strings.ToLower(suit.String()[:1]),
		deck:        deck,
		orientation: OrientDown,
		faceup:      faceup,
		log:         deck.log,
	}
}

// Name returns the long display name, "Queen of Hearts".
func (c *Card) Name() string { return c.name }

// ShortName returns the compact name, "Qh" or "10s".
func (c *Card) ShortName() string { return c.shortName }

func (c *Card) String() string { return c.shortName }

// Color returns the card's color, derived from the suit.
func (c *Card) Color() Color { return c.Suit.Color() }

func (c *Card) FaceUp() bool             { return c.faceup }
func (c *Card) Slot() *Slot              { return c.slot }
func (c *Card) Parent() *Card            { return c.parent }
func (c *Card) Child() *Card             { return c.child }
func (c *Card) Orientation() Orientation { return c.orientation }
func (c *Card) Rect() Rect               { return c.rect }
func (c *Card) Dragging() bool           { return c.dragging }

// Head reports whether the card has no parent.
func (c *Card) Head() bool { return c.parent == nil }

// Tail reports whether the card has no child.
func (c *Card) Tail() bool { return c.child == nil }

// Children returns the card's descendants in stacking order, nearest first.
func (c *Card) Children() []*Card {
	var chain []*Card
	for cur := c.child; cur != nil; cur = cur.child {
		chain = append(chain, cur)
	}
	return chain
}

func (c *Card) isDescendantOf(root *Card) bool {
	for cur := root.child; cur != nil; cur = cur.child {
		if cur == c {
			return true
		}
	}
	return false
}

// Stack attaches the card, along with its chain, as the child of other.
// Stacking onto itself is ignored, stacking onto a descendant pops the
// target first, and an occupied target has its child popped. A nil overlap
// uses the default.
func (c *Card) Stack(other *Card, orientation Orientation, overlap *Overlap) {
	if other == c {
		c.log.Warn("stacking card onto itself", zap.Stringer("card", c))
		return
	}
	if other.isDescendantOf(c) {
		c.log.Warn("stacking card onto its own descendant",
			zap.Stringer("card", c), zap.Stringer("target", other))
		other.Pop()
	}
	if other.child != nil {
		c.log.Warn("stack target already has a child",
			zap.Stringer("card", c), zap.Stringer("target", other), zap.Stringer("child", other.child))
		other.child.Pop()
	}
	c.Pop()
	c.parent = other
	other.child = c
	c.setSlot(other.slot)
	if orientation == OrientKeep {
		orientation = other.orientation
	}
	c.orientation = orientation
	c.Snap(other, orientation, overlap)
}

// Pop detaches the card, together with its chain, from its parent and slot.
// The links above are cleared, the chain below stays attached to the card.
func (c *Card) Pop() {
	if c.slot != nil && c.slot.child == c {
		c.slot.child = nil
	}
	c.setSlot(nil)
	if c.parent != nil {
		c.parent.child = nil
	}
	c.parent = nil
}

// Place puts the card, with its chain, at the head of slot. A non-empty
// slot has its old stack popped first, with a warning.
func (c *Card) Place(slot *Slot) {
	if slot.child != nil && slot.child != c {
		c.log.Warn("placing card in a non-empty slot",
			zap.Stringer("card", c), zap.Stringer("slot", slot), zap.Stringer("head", slot.child))
		slot.child.Pop()
	}
	c.Pop()
	slot.child = c
	c.setSlot(slot)
	c.orientation = slot.Orientation
	c.Move(slot.rect.TopLeft())
	if c.child != nil {
		c.child.Snap(c, c.orientation, &slot.Overlap)
	}
}

func (c *Card) setSlot(slot *Slot) {
	c.slot = slot
	if c.child != nil {
		c.child.setSlot(slot)
	}
}

// Snap moves the card next to ref according to orientation and overlap and
// then snaps the rest of the chain. Only positions change, never links.
// Offsets truncate toward zero after the full float computation.
func (c *Card) Snap(ref *Card, orientation Orientation, overlap *Overlap) {
	if orientation == OrientKeep {
		orientation = ref.orientation
	}
	c.orientation = orientation
	ov := defaultOverlap
	if overlap != nil {
		ov = *overlap
	}
	if orientation != OrientNone {
		dx, dy := orientation.vector()
		c.Move(Point{
			X: int(float64(ref.rect.X) + float64(dx)*ov.X*float64(ref.rect.W)),
			Y: int(float64(ref.rect.Y) + float64(dy)*ov.Y*float64(ref.rect.H)),
		})
	}
	if c.child != nil {
		c.child.Snap(c, orientation, overlap)
	}
}

// Flip turns the card per facing. FacingSame is a no-op.
func (c *Card) Flip(facing Facing) {
	switch facing {
	case FacingToggle:
		c.faceup = !c.faceup
	case FaceUp:
		c.faceup = true
	case FaceDown:
		c.faceup = false
	}
}

// Move places the card at pos and raises it to the top of the draw order.
func (c *Card) Move(pos Point) {
	c.rect.MoveTo(pos)
	c.deck.MoveToFront(c)
}

// Resize sets the card's pixel size. Positions are not adjusted, callers
// re-lay the board afterwards.
func (c *Card) Resize(size Size) {
	c.rect.W, c.rect.H = size.W, size.H
}

// StartDrag begins dragging the card and its chain, remembering the origin
// for a possible abort. pointer anchors the grab offset.
func (c *Card) StartDrag(pointer Point) {
	if c.dragging {
		c.log.Warn("drag started during an ongoing drag", zap.Stringer("card", c))
	}
	c.dragging = true
	c.dragStart = c.rect.TopLeft()
	c.dragOffset = Point{X: pointer.X - c.rect.X, Y: pointer.Y - c.rect.Y}
	c.deck.MoveToFront(c)
	if c.child != nil {
		c.child.StartDrag(pointer)
	}
}

// Drag moves the dragged chain to follow pointer.
func (c *Card) Drag(pointer Point) {
	if !c.dragging {
		c.log.Warn("drag without a preceding start", zap.Stringer("card", c))
		return
	}
	c.Move(Point{X: pointer.X - c.dragOffset.X, Y: pointer.Y - c.dragOffset.Y})
	if c.child != nil {
		c.child.Drag(pointer)
	}
}

// AbortDrag returns the dragged chain to where the drag started and ends it.
func (c *Card) AbortDrag() {
	if !c.dragging {
		c.log.Warn("drag abort without a preceding start", zap.Stringer("card", c))
		return
	}
	c.Move(c.dragStart)
	if c.child != nil {
		c.child.AbortDrag()
	}
	c.Drop()
}

// Drop ends the drag in place, discarding the saved origin.
func (c *Card) Drop() {
	c.dragging = false
	c.dragStart = Point{}
	c.dragOffset = Point{}
	if c.child != nil {
		c.child.Drop()
	}
}
