package game

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/cardtable/solitaire-be/internal/cards"
)

// Klondike is the classic single-deck game: stock, waste, four foundations
// built up by suit from the Ace, and seven tableau columns built down in
// alternating colors.
type Klondike struct {
	Base

	stock   *cards.Slot
	waste   *cards.Slot
	tableau []*cards.Slot
}

var _ Game = (*Klondike)(nil)

// NewKlondike creates a Klondike game. A nil logger disables logging.
func NewKlondike(logger *zap.Logger) *Klondike {
	k := &Klondike{}
	k.initKlondike("Klondike", 7, 3.2, logger)
	k.rules = k
	return k
}

// initKlondike builds the Klondike board. Parameterized so variants can
// reuse the layout with their own grid.
func (k *Klondike) initKlondike(name string, gridW, gridH float64, logger *zap.Logger) {
	k.init(name, logger)
	k.gridW, k.gridH = gridW, gridH

	k.stock = k.CreateSlot(cards.Cell{X: 0, Y: 0}, cards.OrientPile, "Stock")
	k.waste = k.CreateSlot(cards.Cell{X: 1, Y: 0}, cards.OrientPile, "Waste")

	cols := int(gridW)
	for i := cols - 4; i < cols; i++ {
		k.foundations = append(k.foundations, k.CreateSlot(
			cards.Cell{X: float64(i), Y: 0}, cards.OrientPile,
			fmt.Sprintf("Foundation %d", i-3)))
	}
	for i := 0; i < cols; i++ {
		k.tableau = append(k.tableau, k.CreateSlot(
			cards.Cell{X: float64(i), Y: 1}, cards.OrientDown,
			fmt.Sprintf("Tableau %d", i+1)))
	}

	k.deck.CreateCards(false, 0, false)
}

// Setup piles the whole deck face down on the stock and deals the tableau:
// one card face up on each column, then one face down on every later
// column.
func (k *Klondike) Setup() {
	for _, card := range k.deck.Cards() {
		k.stock.Stack(card)
		card.Flip(cards.FaceDown)
	}
	for i := range k.tableau {
		k.stock.Deal(cards.FaceUp, k.tableau[i])
		k.stock.Deal(cards.FaceDown, k.tableau[i+1:]...)
	}
}

// Click deals the stock tail to the waste, recycles the waste on a stock
// slot click and flips face-down tail cards. Face-up cards are left alone
// so a drag release is not mistaken for a flip.
func (k *Klondike) Click(item cards.Item) bool {
	var undo []Command
	switch it := item.(type) {
	case *cards.Slot:
		if it == k.stock {
			for !k.waste.Empty() {
				k.waste.Deal(cards.FaceDown, k.stock)
				undo = append(undo, UndoDeal(k.stock, k.waste, cards.FaceUp))
			}
			k.PushUndo(undo...)
			return true
		}
	case *cards.Card:
		if it.Tail() && !it.FaceUp() {
			if it.Slot() == k.stock {
				k.stock.Deal(cards.FacingSame, k.waste)
				undo = append(undo, UndoDeal(k.waste, k.stock, cards.FacingSame))
			}
			it.Flip(cards.FacingToggle)
			undo = append(undo, UndoFlip(it))
			k.PushUndo(undo...)
			return true
		}
	}
	return false
}

func (k *Klondike) DoubleClick(item cards.Item) bool {
	return k.doubleClickToFoundations(item, k.foundations)
}

// Droppable narrows the default filter to Klondike rules: single cards
// build the foundations up by suit from the Ace, chains build the tableau
// down in alternating colors from the King.
func (k *Klondike) Droppable(card *cards.Card, targets []cards.Item) []cards.Item {
	targets = k.Base.Droppable(card, targets)
	var droplist []cards.Item
	for _, target := range targets {
		switch t := target.(type) {
		case *cards.Slot:
			if slotIn(k.foundations, t) {
				if card.Tail() && card.Rank == cards.Ace {
					droplist = append(droplist, t)
				}
			} else if slotIn(k.tableau, t) {
				if card.Rank == cards.King {
					droplist = append(droplist, t)
				}
			}
		case *cards.Card:
			if slotIn(k.foundations, t.Slot()) {
				if card.Tail() && t.Suit == card.Suit && t.Rank == card.Rank-1 {
					droplist = append(droplist, t)
				}
			} else if slotIn(k.tableau, t.Slot()) {
				if t.FaceUp() && t.Color() != card.Color() && t.Rank == card.Rank+1 {
					droplist = append(droplist, t)
				}
			}
		}
	}
	return droplist
}

func (k *Klondike) Status() string {
	hidden := 0
	for _, card := range k.deck.Cards() {
		if !card.FaceUp() {
			hidden++
		}
	}
	return fmt.Sprintf("Cards to uncover: %d", hidden)
}

// Win is a demonstration layout that deals itself straight into a won
// position, handy for exercising the win state.
type Win struct {
	Klondike
}

var _ Game = (*Win)(nil)

// NewWin creates a Win game. A nil logger disables logging.
func NewWin(logger *zap.Logger) *Win {
	w := &Win{}
	w.initKlondike("Win", 7, 4, logger)
	w.rules = w
	w.RemoveSlot(w.stock)
	w.RemoveSlot(w.waste)
	return w
}

// Setup deals Klondike and then moves everything face up onto the first
// foundation.
func (w *Win) Setup() {
	w.Klondike.Setup()
	for _, slot := range w.tableau {
		for !slot.Empty() {
			slot.Deal(cards.FaceUp, w.foundations[0])
		}
	}
	for !w.stock.Empty() {
		w.stock.Deal(cards.FaceUp, w.foundations[0])
	}
}
