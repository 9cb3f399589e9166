package game

import (
	"go.uber.org/zap"

	"github.com/cardtable/solitaire-be/internal/cards"
)

// Sandbox is a free-form board for poking at the engine: the whole deck
// fanned on one pile, no click rules, and a win as soon as the last slot is
// used.
type Sandbox struct {
	Base
}

var _ Game = (*Sandbox)(nil)

// NewSandbox creates a Sandbox game. A nil logger disables logging.
func NewSandbox(logger *zap.Logger) *Sandbox {
	s := &Sandbox{}
	s.init("Sandbox", logger)
	s.rules = s
	s.gridW, s.gridH = 3, 3

	s.deck.CreateCards(false, 0, true)
	for i := 0; i < 3; i++ {
		for j := 0; j < 2; j++ {
			slot := s.CreateSlot(cards.Cell{X: float64(i), Y: float64(j)}, cards.OrientPile, "")
			if j == 1 {
				slot.Orientation = cards.OrientDown
			}
		}
	}
	return s
}

func (s *Sandbox) Setup() {
	slot := s.slots[1]
	for _, card := range s.deck.Cards() {
		slot.Stack(card)
		card.Flip(cards.FaceUp)
	}
	slot.Fit(nil)
}

func (s *Sandbox) Click(item cards.Item) bool {
	return false
}

func (s *Sandbox) Win() bool {
	return !s.slots[len(s.slots)-1].Empty()
}
