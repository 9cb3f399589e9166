// Package session drives one game per client as a headless state machine:
// it resolves pointer gestures against the board, owns the board geometry
// and times the game from first touch to win. Board reads and writes go
// through the cards and game APIs only.
package session

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cardtable/solitaire-be/internal/cards"
	"github.com/cardtable/solitaire-be/internal/game"
)

// Defaults for a freshly created board, before the client reports its real
// viewport.
const (
	DefaultBoardW = 960
	DefaultBoardH = 640
)

// Config tunes a session. Zero values take the defaults.
type Config struct {
	// DoubleClick is the window within which a second press on the same
	// item counts as a double click. Default 400ms.
	DoubleClick time.Duration
	// MarginX and MarginY are the board margin and minimum card padding in
	// pixels. Defaults 20 and 10.
	MarginX int
	MarginY int
	// BoardW and BoardH size the board before the client reports its real
	// viewport.
	BoardW int
	BoardH int
}

func (c Config) withDefaults() Config {
	if c.DoubleClick <= 0 {
		c.DoubleClick = 400 * time.Millisecond
	}
	if c.MarginX <= 0 {
		c.MarginX = 20
	}
	if c.MarginY <= 0 {
		c.MarginY = 10
	}
	if c.BoardW <= 0 {
		c.BoardW = DefaultBoardW
	}
	if c.BoardH <= 0 {
		c.BoardH = DefaultBoardH
	}
	return c
}

// Update reports what a gesture did to the board.
type Update struct {
	Changed bool `json:"changed"`
	Won     bool `json:"won"`
}

// Result is the record of a finished game, produced once when the win is
// first observed.
type Result struct {
	GameID   string
	Variant  string
	Seed     int64
	Score    int
	Moves    int
	Duration time.Duration
}

// Session owns one game for one client: the rules instance, the board
// geometry and the transient pointer state. All access is serialized, so
// gestures apply atomically in arrival order.
type Session struct {
	mu sync.Mutex

	id   string
	game game.Game
	cfg  Config
	now  func() time.Time
	log  *zap.Logger

	fullBoard cards.Rect
	board     cards.Rect

	dragCard       *cards.Card
	clickItem      cards.Item
	doubleItem     cards.Item
	doubleDeadline time.Time

	started time.Time
	wonAt   time.Time
	won     bool
	moves   int
	result  *Result

	createdAt time.Time
}

// New creates a session running the named variant, lays out a default
// board and deals. Seed 0 draws a random one. A nil logger disables
// logging.
func New(variant string, seed int64, cfg Config, logger *zap.Logger) (*Session, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	g, err := game.Load(variant, logger)
	if err != nil {
		return nil, err
	}
	s := &Session{
		id:        uuid.New().String(),
		game:      g,
		cfg:       cfg.withDefaults(),
		now:       time.Now,
		log:       logger,
		createdAt: time.Now(),
	}
	s.fullBoard = cards.Rect{W: s.cfg.BoardW, H: s.cfg.BoardH}
	s.layoutLocked()
	s.game.NewGame(seed)
	return s, nil
}

// ID is the session's unique identifier.
func (s *Session) ID() string { return s.id }

// Variant is the display name of the game being played.
func (s *Session) Variant() string { return s.game.Name() }

// Seed of the current deal.
func (s *Session) Seed() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.game.Seed()
}

// CreatedAt is when the session was created.
func (s *Session) CreatedAt() time.Time { return s.createdAt }

// Won reports whether the current deal has been won.
func (s *Session) Won() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.won
}

// Press delivers a pointer-down. A second press on the same item inside
// the double-click window fires the double click; otherwise a draggable
// card starts a drag and the item is armed for click and double click.
// Presses on empty board do nothing.
func (s *Session) Press(pos cards.Point) Update {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.won {
		return s.updateLocked(false)
	}

	item := s.game.TopItemAt(pos)
	if item == nil {
		return s.updateLocked(false)
	}

	now := s.now()
	if s.started.IsZero() {
		s.started = now
	}

	changed := false
	if item == s.doubleItem && now.Before(s.doubleDeadline) {
		s.log.Debug("double click", zap.String("item", itemName(item)))
		s.doubleItem = nil
		s.doubleDeadline = time.Time{}
		if s.game.DoubleClick(item) {
			changed = true
			s.moves++
		}
	} else {
		if card, ok := item.(*cards.Card); ok && s.game.Draggable(card) {
			s.log.Debug("start dragging", zap.Stringer("card", card))
			s.dragCard = card
			card.StartDrag(pos)
		}
		s.clickItem = item
		s.doubleItem = item
		s.doubleDeadline = now.Add(s.cfg.DoubleClick)
	}
	return s.updateLocked(changed)
}

// Drag moves the dragged chain with the pointer. A no-op when nothing is
// being dragged.
func (s *Session) Drag(pos cards.Point) Update {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.won || s.dragCard == nil {
		return s.updateLocked(false)
	}
	s.dragCard.Drag(pos)
	return s.updateLocked(false)
}

// Release delivers a pointer-up. A drag in progress is dropped on the
// first valid target under it, or aborted back to where it started. An
// armed click still under the pointer is then delivered; a state-changing
// click cancels the pending double click.
func (s *Session) Release(pos cards.Point) Update {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.won {
		return s.updateLocked(false)
	}

	item := s.game.TopItemAt(pos)
	changed := false

	if s.dragCard != nil {
		drag := s.dragCard
		droplist := s.game.Droppable(drag, s.dropCandidatesLocked(drag))
		if len(droplist) > 0 {
			target := droplist[0]
			s.log.Debug("drop", zap.Stringer("card", drag), zap.String("target", itemName(target)))
			drag.Drop()
			from := drag.Slot()
			s.game.Drop(drag, target)
			from.Fit(nil)
			drag.Slot().Fit(nil)
			changed = true
			s.moves++
		} else {
			s.log.Debug("abort drag", zap.Stringer("card", drag))
			drag.AbortDrag()
		}
		s.dragCard = nil
		item = s.game.TopItemAt(pos)
	}

	if s.clickItem != nil {
		if item != nil && item == s.clickItem {
			s.log.Debug("click", zap.String("item", itemName(item)))
			if s.game.Click(item) {
				changed = true
				s.moves++
				s.doubleItem = nil
				s.doubleDeadline = time.Time{}
			}
		}
		s.clickItem = nil
	}
	return s.updateLocked(changed)
}

// dropCandidatesLocked lists what the dragged chain may land on: every
// card except the chain itself, in z-order, then every slot, all filtered
// by rect overlap with the dragged card. Order matters, the first valid
// candidate wins the drop.
func (s *Session) dropCandidatesLocked(drag *cards.Card) []cards.Item {
	chain := map[*cards.Card]bool{drag: true}
	for _, c := range drag.Children() {
		chain[c] = true
	}

	var candidates []cards.Item
	for _, c := range s.game.Deck().ZOrder() {
		if !chain[c] && c.Rect().Overlaps(drag.Rect()) {
			candidates = append(candidates, c)
		}
	}
	for _, slot := range s.game.Slots() {
		if slot.Rect().Overlaps(drag.Rect()) {
			candidates = append(candidates, slot)
		}
	}
	return candidates
}

// Undo reverts the last move. Refused mid-drag and when there is nothing
// to undo.
func (s *Session) Undo() Update {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.won {
		return s.updateLocked(false)
	}
	if s.dragCard != nil || !s.game.Undoable() {
		s.log.Info("undo not available")
		return s.updateLocked(false)
	}
	s.game.Undo()
	s.moves++
	return s.updateLocked(true)
}

// NewDeal shuffles with seed, 0 drawing a random one, and deals a fresh
// board. Returns the seed in use.
func (s *Session) NewDeal(seed int64) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetLocked()
	return s.game.NewGame(seed)
}

// Restart re-deals the current shuffle from the top.
func (s *Session) Restart() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetLocked()
	s.game.Restart()
}

func (s *Session) resetLocked() {
	s.dragCard = nil
	s.clickItem = nil
	s.doubleItem = nil
	s.doubleDeadline = time.Time{}
	s.started = time.Time{}
	s.wonAt = time.Time{}
	s.won = false
	s.moves = 0
	s.result = nil
}

// Resize lays the board out for a w by h viewport. Degenerate sizes are
// logged and ignored.
func (s *Session) Resize(w, h int) Update {
	s.mu.Lock()
	defer s.mu.Unlock()
	if w <= 0 || h <= 0 {
		s.log.Warn("ignoring degenerate board size", zap.Int("w", w), zap.Int("h", h))
		return s.updateLocked(false)
	}
	s.fullBoard = cards.Rect{W: w, H: h}
	s.layoutLocked()
	return s.updateLocked(false)
}

// TakeResult returns the finished-game record once: nil before the win
// and on every later call.
func (s *Session) TakeResult() *Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	r := s.result
	s.result = nil
	return r
}

// updateLocked folds a gesture outcome into the session, observing a win
// the moment a state change produces one.
func (s *Session) updateLocked(changed bool) Update {
	if changed && !s.won && s.game.Win() {
		s.won = true
		s.wonAt = s.now()
		s.dragCard = nil
		duration := s.elapsedLocked()
		s.result = &Result{
			GameID:   s.id,
			Variant:  s.game.Name(),
			Seed:     s.game.Seed(),
			Score:    s.game.Score(),
			Moves:    s.moves,
			Duration: duration,
		}
		s.log.Info("game won",
			zap.String("game", s.game.Name()),
			zap.Int64("seed", s.game.Seed()),
			zap.Int("moves", s.moves),
			zap.Duration("duration", duration))
	}
	return Update{Changed: changed, Won: s.won}
}

func (s *Session) elapsedLocked() time.Duration {
	if s.started.IsZero() {
		return 0
	}
	if s.won {
		return s.wonAt.Sub(s.started)
	}
	return s.now().Sub(s.started)
}

func itemName(item cards.Item) string {
	if s, ok := item.(fmt.Stringer); ok {
		return s.String()
	}
	return fmt.Sprintf("%v", item)
}
