package game

import (
	"go.uber.org/zap"

	"github.com/cardtable/solitaire-be/internal/cards"
)

// Yukon deals the Klondike board and then empties the stock face up over
// the tableau, so there is no stock or waste in play and chains move
// regardless of order.
type Yukon struct {
	Klondike
}

var _ Game = (*Yukon)(nil)

// NewYukon creates a Yukon game. A nil logger disables logging.
func NewYukon(logger *zap.Logger) *Yukon {
	y := &Yukon{}
	y.initYukon("Yukon", logger)
	y.rules = y
	return y
}

func (y *Yukon) initYukon(name string, logger *zap.Logger) {
	y.initKlondike(name, 7, 4, logger)
	y.RemoveSlot(y.stock)
	y.RemoveSlot(y.waste)
}

func (y *Yukon) Setup() {
	y.setupFrom(1)
}

// setupFrom deals Klondike and spreads the remaining stock face up over the
// tableau columns from index start on. Parameterized to be variation
// friendly.
func (y *Yukon) setupFrom(start int) {
	y.Klondike.Setup()
	for !y.stock.Empty() {
		y.stock.Deal(cards.FaceUp, y.tableau[start:]...)
	}
}

// Pylitaire is an easier Yukon: any card may land on an empty tableau slot,
// not only Kings.
type Pylitaire struct {
	Yukon
}

var _ Game = (*Pylitaire)(nil)

// NewPylitaire creates a Pylitaire game. A nil logger disables logging.
func NewPylitaire(logger *zap.Logger) *Pylitaire {
	p := &Pylitaire{}
	p.initYukon("Pylitaire", logger)
	p.rules = p
	return p
}

// Droppable adds the empty tableau slots to Yukon's drop places.
func (p *Pylitaire) Droppable(card *cards.Card, targets []cards.Item) []cards.Item {
	droplist := p.Yukon.Droppable(card, targets)
	for _, target := range targets {
		slot, ok := target.(*cards.Slot)
		if ok && slotIn(p.tableau, slot) && slot.Empty() && !itemIn(droplist, target) {
			droplist = append(droplist, target)
		}
	}
	return droplist
}
