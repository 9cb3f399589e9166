package session

import (
	"math"

	"go.uber.org/zap"

	"github.com/cardtable/solitaire-be/internal/cards"
)

// layoutLocked recomputes the board geometry for the current viewport:
// split the margined area into the variant's grid, size the cards
// proportionally into a cell, grow the padding up to half a card wide and
// a fifth tall, trim the board to the real cell size, center it
// horizontally, then reposition every slot and refit its fan.
func (s *Session) layoutLocked() {
	gridW, gridH := s.game.Grid()
	marginX, marginY := s.cfg.MarginX, s.cfg.MarginY

	board := cards.Rect{
		X: marginX,
		Y: marginY,
		W: s.fullBoard.W - 2*marginX,
		H: s.fullBoard.H - 2*marginY,
	}

	maxCellW := (float64(board.W) + float64(marginX)) / gridW
	maxCellH := (float64(board.H) + float64(marginY)) / gridH

	cardSize := s.game.Deck().Resize(cards.Size{
		W: int(maxCellW - float64(marginX)),
		H: int(maxCellH - float64(marginY)),
	})

	padX := math.Max(float64(marginX), math.Min(maxCellW-float64(cardSize.W), float64(cardSize.W)/2))
	padY := math.Max(float64(marginY), math.Min(maxCellH-float64(cardSize.H), float64(cardSize.H)/5))

	cellW := float64(cardSize.W) + padX
	cellH := float64(cardSize.H) + padY

	board.W = int(cellW*gridW - padX)
	board.H = int(cellH*gridH - padY)
	board.X = s.fullBoard.X + s.fullBoard.W/2 - board.W/2

	s.board = board
	s.log.Debug("board resized",
		zap.Int("w", board.W), zap.Int("h", board.H),
		zap.Int("cellW", int(cellW)), zap.Int("cellH", int(cellH)),
		zap.Int("cardW", cardSize.W), zap.Int("cardH", cardSize.H))

	geometry := cards.Geometry{
		Origin: board.TopLeft(),
		CellW:  int(cellW),
		CellH:  int(cellH),
	}
	for _, slot := range s.game.Slots() {
		slot.Resize(cardSize)
		slot.BoardMove(geometry)
		slot.Fit(&board)
	}
}
