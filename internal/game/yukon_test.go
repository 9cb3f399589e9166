package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cardtable/solitaire-be/internal/cards"
)

func TestYukon_Deal(t *testing.T) {
	y := NewYukon(nil)
	y.NewGame(1)

	assert.Len(t, y.Slots(), 11)
	assert.True(t, y.stock.Empty())
	assert.True(t, y.waste.Empty())

	wantLen := []int{1, 6, 7, 8, 9, 10, 11}
	total := 0
	for i, slot := range y.tableau {
		column := slot.Cards()
		require.Len(t, column, wantLen[i], "tableau %d", i+1)
		total += len(column)

		// The Klondike layer below stays hidden, the spread is face up.
		faceup := 5
		if i == 0 {
			faceup = 1
		}
		for j, c := range column {
			assert.Equal(t, j >= len(column)-faceup, c.FaceUp(), "tableau %d card %d", i+1, j)
		}
	}
	assert.Equal(t, 52, total)
}

func TestYukon_ChainMovesRegardlessOfOrder(t *testing.T) {
	y := NewYukon(nil)
	y.NewGame(1)
	y.Deck().PopCards()

	tenS := mustCard(t, y, cards.Ten, cards.Spades)
	tenS.Flip(cards.FaceUp)
	y.tableau[0].Stack(tenS)

	nineH := mustCard(t, y, cards.Nine, cards.Hearts)
	nineH.Flip(cards.FaceUp)
	y.tableau[1].Stack(nineH)
	twoC := mustCard(t, y, cards.Two, cards.Clubs)
	twoC.Flip(cards.FaceUp)
	twoC.Stack(nineH, cards.OrientKeep, nil)

	droplist := y.Droppable(nineH, []cards.Item{tenS})
	require.Equal(t, []cards.Item{tenS}, droplist)

	y.Drop(nineH, tenS)

	assert.Equal(t, tenS, nineH.Parent())
	assert.Equal(t, y.tableau[0], twoC.Slot())

	y.Undo()
	assert.Equal(t, y.tableau[1], nineH.Slot())
	assert.Equal(t, nineH, twoC.Parent())
}

func TestYukon_OnlyKingsOnEmptyColumns(t *testing.T) {
	y := NewYukon(nil)
	y.NewGame(1)
	y.Deck().PopCards()
	fiveH := mustCard(t, y, cards.Five, cards.Hearts)
	fiveH.Flip(cards.FaceUp)

	assert.Empty(t, y.Droppable(fiveH, []cards.Item{y.tableau[2]}))
}

func TestPylitaire_AnyCardOnEmptyColumn(t *testing.T) {
	p := NewPylitaire(nil)
	p.NewGame(1)
	p.Deck().PopCards()

	fiveH := mustCard(t, p, cards.Five, cards.Hearts)
	fiveH.Flip(cards.FaceUp)
	assert.Equal(t, []cards.Item{p.tableau[2]}, p.Droppable(fiveH, []cards.Item{p.tableau[2]}))

	// Kings are not listed twice.
	kingS := mustCard(t, p, cards.King, cards.Spades)
	kingS.Flip(cards.FaceUp)
	assert.Equal(t, []cards.Item{p.tableau[2]}, p.Droppable(kingS, []cards.Item{p.tableau[2]}))
}
