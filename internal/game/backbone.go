package game

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/cardtable/solitaire-be/internal/cards"
)

// Backbone is a double-deck game: eight foundations built up by suit, eight
// one-card tableau slots built down by suit, and an eighteen-slot backbone
// where each card is blocked until the slot above it empties. One redeal of
// the waste is allowed.
type Backbone struct {
	Base

	stock    *cards.Slot
	waste    *cards.Slot
	tableau  []*cards.Slot
	backbone []*cards.Slot
	block    *cards.Slot
}

var _ Game = (*Backbone)(nil)

// NewBackbone creates a Backbone game. A nil logger disables logging.
func NewBackbone(logger *zap.Logger) *Backbone {
	b := &Backbone{}
	b.init("Backbone", logger)
	b.rules = b
	b.gridW, b.gridH = 8, 4
	b.hasRedeals = true
	b.redeals = 1

	b.stock = b.CreateSlot(cards.Cell{X: 5, Y: 2}, cards.OrientPile, "Stock")
	b.waste = b.CreateSlot(cards.Cell{X: 6, Y: 2}, cards.OrientPile, "Waste")

	for i := 0; i < 8; i++ {
		b.foundations = append(b.foundations, b.CreateSlot(
			cards.Cell{X: float64(4 + i%4), Y: float64(i / 4)}, cards.OrientPile,
			fmt.Sprintf("Foundation %d", i+1)))
	}
	for i := 0; i < 8; i++ {
		b.tableau = append(b.tableau, b.CreateSlot(
			cards.Cell{X: float64(3 * (i / 4)), Y: float64(i % 4)}, cards.OrientPile,
			fmt.Sprintf("Tableau %d", i+1)))
	}
	for i := 0; i < 18; i++ {
		b.backbone = append(b.backbone, b.CreateSlot(
			cards.Cell{X: float64(1 + i/9), Y: 1.0 / 3 * float64(i%9)}, cards.OrientPile,
			fmt.Sprintf("Backbone %d", i+1)))
	}
	for i, slot := range b.backbone[:len(b.backbone)-1] {
		slot.BlockedBy = b.backbone[i+1]
	}

	b.block = b.CreateSlot(cards.Cell{X: 1.5, Y: 3}, cards.OrientPile, "Block")
	b.backbone[8].BlockedBy = b.block
	b.backbone[17].BlockedBy = b.block

	b.deck.CreateCards(true, 0, true)
	return b
}

// Setup piles both decks face down on the stock and deals one card face up
// to every tableau, backbone and block slot.
func (b *Backbone) Setup() {
	for _, card := range b.deck.Cards() {
		b.stock.Stack(card)
		card.Flip(cards.FaceDown)
	}

	targets := make([]*cards.Slot, 0, len(b.tableau)+len(b.backbone)+1)
	targets = append(targets, b.tableau...)
	targets = append(targets, b.backbone...)
	targets = append(targets, b.block)
	b.stock.Deal(cards.FaceUp, targets...)

	b.redeals = 1
}

// Click deals the stock tail to the waste and recycles the waste once on a
// stock slot click, spending the redeal. The recycle undoes as one entry,
// redeal credit included.
func (b *Backbone) Click(item cards.Item) bool {
	var undo []Command
	switch it := item.(type) {
	case *cards.Slot:
		if it == b.stock && b.redeals > 0 {
			for !b.waste.Empty() {
				b.waste.Deal(cards.FaceDown, b.stock)
				undo = append(undo, UndoDeal(b.stock, b.waste, cards.FaceUp))
			}
			b.redeals--
			undo = append(undo, UndoRedealCredit(&b.redeals))
			b.PushUndo(undo...)
			return true
		}
	case *cards.Card:
		if it.Slot() == b.stock {
			b.stock.Deal(cards.FaceUp, b.waste)
			b.PushUndo(UndoDeal(b.waste, b.stock, cards.FaceDown))
			return true
		}
	}
	return false
}

func (b *Backbone) DoubleClick(item cards.Item) bool {
	return b.doubleClickToFoundations(item, b.foundations)
}

// Draggable blocks the stock and foundations, and backbone cards whose
// blocking slot is still occupied.
func (b *Backbone) Draggable(card *cards.Card) bool {
	slot := card.Slot()
	if slot == b.stock || slotIn(b.foundations, slot) {
		return false
	}
	if slotIn(b.backbone, slot) && !slot.BlockedBy.Empty() {
		return false
	}
	return true
}

// Droppable narrows the default filter to Backbone rules: single cards
// build the foundations up by suit from the Ace, tableau cards build down
// by suit, and an empty tableau slot takes any card except from the
// backbone or block, which may only leave there as Kings.
func (b *Backbone) Droppable(card *cards.Card, targets []cards.Item) []cards.Item {
	targets = b.Base.Droppable(card, targets)
	var droplist []cards.Item
	for _, target := range targets {
		switch t := target.(type) {
		case *cards.Slot:
			if slotIn(b.foundations, t) {
				if card.Tail() && card.Rank == cards.Ace {
					droplist = append(droplist, t)
				}
			} else if slotIn(b.tableau, t) {
				fromSpine := slotIn(b.backbone, card.Slot()) || card.Slot() == b.block
				if !fromSpine || card.Rank == cards.King {
					droplist = append(droplist, t)
				}
			}
		case *cards.Card:
			if slotIn(b.foundations, t.Slot()) {
				if card.Tail() && t.Suit == card.Suit && t.Rank == card.Rank-1 {
					droplist = append(droplist, t)
				}
			} else if slotIn(b.tableau, t.Slot()) {
				if t.Suit == card.Suit && t.Rank == card.Rank+1 {
					droplist = append(droplist, t)
				}
			}
		}
	}
	return droplist
}
