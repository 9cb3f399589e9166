package session

import (
	"github.com/cardtable/solitaire-be/internal/cards"
)

// RectView is a pixel rectangle in a snapshot.
type RectView struct {
	X int `json:"x"`
	Y int `json:"y"`
	W int `json:"w"`
	H int `json:"h"`
}

func rectView(r cards.Rect) RectView {
	return RectView{X: r.X, Y: r.Y, W: r.W, H: r.H}
}

// CardView is one card as a client may see it. The id is the card's deal
// position, stable for the whole deal. Identity fields are only present
// while the card is face up, a client cannot peek at hidden cards.
type CardView struct {
	ID        int      `json:"id"`
	Name      string   `json:"name,omitempty"`
	Short     string   `json:"short,omitempty"`
	FaceUp    bool     `json:"faceUp"`
	Rect      RectView `json:"rect"`
	Slot      string   `json:"slot,omitempty"`
	Draggable bool     `json:"draggable"`
}

// SlotView is one slot as a client sees it.
type SlotView struct {
	Name  string   `json:"name"`
	CellX float64  `json:"cellX"`
	CellY float64  `json:"cellY"`
	Rect  RectView `json:"rect"`
	Cards int      `json:"cards"`
}

// Snapshot is the full render-facing state of a session. Cards come in
// draw order, bottom first, so painting them in order is correct.
type Snapshot struct {
	ID        string     `json:"id"`
	Variant   string     `json:"variant"`
	Title     string     `json:"title"`
	Status    string     `json:"status"`
	Score     int        `json:"score"`
	Seed      int64      `json:"seed"`
	Moves     int        `json:"moves"`
	Won       bool       `json:"won"`
	ElapsedMs int64      `json:"elapsedMs"`
	Board     RectView   `json:"board"`
	Cards     []CardView `json:"cards"`
	Slots     []SlotView `json:"slots"`
}

// Snapshot captures the current state of the session.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Session) snapshotLocked() Snapshot {
	deck := s.game.Deck()
	index := make(map[*cards.Card]int, deck.Len())
	for i, c := range deck.Cards() {
		index[c] = i
	}

	snap := Snapshot{
		ID:        s.id,
		Variant:   s.game.Name(),
		Title:     s.game.Title(),
		Status:    s.game.Status(),
		Score:     s.game.Score(),
		Seed:      s.game.Seed(),
		Moves:     s.moves,
		Won:       s.won,
		ElapsedMs: s.elapsedLocked().Milliseconds(),
		Board:     rectView(s.board),
		Cards:     make([]CardView, 0, deck.Len()),
		Slots:     make([]SlotView, 0, len(s.game.Slots())),
	}

	for _, c := range deck.ZOrder() {
		view := CardView{
			ID:        index[c],
			FaceUp:    c.FaceUp(),
			Rect:      rectView(c.Rect()),
			Draggable: s.game.Draggable(c),
		}
		if c.FaceUp() {
			view.Name = c.Name()
			view.Short = c.ShortName()
		}
		if slot := c.Slot(); slot != nil {
			view.Slot = slot.String()
		}
		snap.Cards = append(snap.Cards, view)
	}

	for _, slot := range s.game.Slots() {
		snap.Slots = append(snap.Slots, SlotView{
			Name:  slot.String(),
			CellX: slot.Cell.X,
			CellY: slot.Cell.Y,
			Rect:  rectView(slot.Rect()),
			Cards: len(slot.Cards()),
		})
	}
	return snap
}
