// Package game holds the rules of the solitaire variants. Rules talk to the
// board only through the cards package API and to callers only through
// high-level events such as Click and Drop, so they stay independent of any
// transport or rendering concern.
package game

import (
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/cardtable/solitaire-be/internal/cards"
)

// Game is the rule surface a variant exposes to the gesture layer. Base
// implements all of it with permissive defaults, variants embed Base and
// override what their rules need.
type Game interface {
	// Name is the display name of the variant.
	Name() string
	// Title is the name and deal number shown in a status bar.
	Title() string
	// Seed of the current deal.
	Seed() int64
	// Grid is the board size in card cells, columns and rows. Fractional
	// rows are legitimate.
	Grid() (w, h float64)
	// Slots of the game, in creation order.
	Slots() []*cards.Slot
	// Deck owning the game's cards.
	Deck() *cards.Deck

	// NewGame shuffles with seed, or a random one when seed is 0, deals a
	// fresh board and returns the seed in use.
	NewGame(seed int64) int64
	// Restart re-deals the current shuffle from the top.
	Restart()
	// Setup deals a shuffled deck onto the slots. Called by NewGame and
	// Restart, not directly.
	Setup()

	// TopItemAt returns the topmost card at pos, or the first slot there,
	// or nil.
	TopItemAt(pos cards.Point) cards.Item

	// Click handles a click on a card or slot. Reports whether the board
	// changed.
	Click(item cards.Item) bool
	// DoubleClick handles a double click on a card or slot. Reports
	// whether the board changed.
	DoubleClick(item cards.Item) bool
	// Drop puts card on target, a card or a slot. Only called for targets
	// approved by Droppable.
	Drop(card *cards.Card, target cards.Item)
	// Draggable reports whether card may be picked up.
	Draggable(card *cards.Card) bool
	// Droppable filters targets down to the valid drop places for card.
	Droppable(card *cards.Card, targets []cards.Item) []cards.Item

	// Status is a short free-form progress line.
	Status() string
	// Score is the current score, by default cards on the foundations.
	Score() int
	// Win reports whether the game is won.
	Win() bool

	// Undoable reports whether an undo entry is available.
	Undoable() bool
	// Undo reverts the most recent undoable move.
	Undo()
}

var registry = map[string]func(*zap.Logger) Game{
	"klondike":  func(l *zap.Logger) Game { return NewKlondike(l) },
	"win":       func(l *zap.Logger) Game { return NewWin(l) },
	"yukon":     func(l *zap.Logger) Game { return NewYukon(l) },
	"pylitaire": func(l *zap.Logger) Game { return NewPylitaire(l) },
	"backbone":  func(l *zap.Logger) Game { return NewBackbone(l) },
	"sandbox":   func(l *zap.Logger) Game { return NewSandbox(l) },
}

// Load creates the named game. Names are case-insensitive.
func Load(name string, logger *zap.Logger) (Game, error) {
	factory, ok := registry[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("unknown game: %s", name)
	}
	g := factory(logger)
	if logger != nil {
		logger.Info("loading game", zap.String("game", g.Name()))
	}
	return g, nil
}

// Names returns the registered game names, sorted.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func itemIn(items []cards.Item, item cards.Item) bool {
	for _, it := range items {
		if it == item {
			return true
		}
	}
	return false
}

func slotIn(slots []*cards.Slot, slot *cards.Slot) bool {
	for _, s := range slots {
		if s == slot {
			return true
		}
	}
	return false
}
