package game

import (
	"fmt"
	"math/rand"
	"strings"

	"go.uber.org/zap"

	"github.com/cardtable/solitaire-be/internal/cards"
)

// Base carries the state and default behavior shared by every variant.
// Variants embed it, call init from their constructor and then set rules to
// themselves so that Base-level logic dispatches to their overrides, the
// way NewGame reaches the variant's Setup.
type Base struct {
	rules Game

	name     string
	gridW    float64
	gridH    float64
	slots    []*cards.Slot
	deck     *cards.Deck
	seed     int64
	undocmds [][]Command

	// foundations feed the default Score. Variants that have them append
	// theirs here.
	foundations []*cards.Slot

	// redeals is only meaningful when hasRedeals is set, games without a
	// redeal limit leave it alone.
	redeals    int
	hasRedeals bool

	log *zap.Logger
}

func (b *Base) init(name string, logger *zap.Logger) {
	if logger == nil {
		logger = zap.NewNop()
	}
	b.name = name
	b.deck = cards.NewDeck(logger)
	b.log = logger
}

func (b *Base) Name() string         { return b.name }
func (b *Base) Seed() int64          { return b.seed }
func (b *Base) Grid() (w, h float64) { return b.gridW, b.gridH }
func (b *Base) Slots() []*cards.Slot { return b.slots }
func (b *Base) Deck() *cards.Deck    { return b.deck }

// Title returns the variant name and deal number, "Klondike #1850103944".
func (b *Base) Title() string {
	return fmt.Sprintf("%s #%d", b.name, b.seed)
}

// NewGame shuffles the deck with seed, drawing a random 32-bit seed when 0,
// and deals a fresh board. Returns the seed in use.
func (b *Base) NewGame(seed int64) int64 {
	if seed == 0 {
		seed = rand.Int63n(1 << 32)
	}
	b.seed = seed
	b.log.Info("new game", zap.String("game", b.name), zap.Int64("seed", seed))
	b.deck.Shuffle(seed)
	b.restart(true)
	return b.seed
}

// Restart re-deals the current shuffle from the top, dropping the undo
// journal.
func (b *Base) Restart() {
	b.restart(false)
}

func (b *Base) restart(quiet bool) {
	if !quiet {
		b.log.Info("restart game", zap.String("game", b.name))
	}
	b.undocmds = nil
	b.deck.PopCards()
	b.rules.Setup()
}

// Setup does nothing, variants deal their board here.
func (b *Base) Setup() {}

// TopItemAt returns the topmost card at pos, or failing that the first slot
// whose rect contains pos, or nil.
func (b *Base) TopItemAt(pos cards.Point) cards.Item {
	if card := b.deck.TopCardAt(pos); card != nil {
		return card
	}
	for _, slot := range b.slots {
		if slot.Rect().Contains(pos) {
			return slot
		}
	}
	return nil
}

// Click flips a clicked card and does nothing on slots.
func (b *Base) Click(item cards.Item) bool {
	card, ok := item.(*cards.Card)
	if !ok {
		return false
	}
	card.Flip(cards.FacingToggle)
	b.PushUndo(UndoFlip(card))
	return true
}

// DoubleClick does nothing, variants with foundations usually send the card
// there.
func (b *Base) DoubleClick(item cards.Item) bool {
	return false
}

// Drop puts card on target and records the undo back to its prior slot.
// Only called for targets approved by Droppable, so the default action
// suits any game.
func (b *Base) Drop(card *cards.Card, target cards.Item) {
	slot := card.Slot()
	switch t := target.(type) {
	case *cards.Slot:
		card.Place(t)
	case *cards.Card:
		card.Stack(t, cards.OrientKeep, nil)
	}
	b.PushUndo(UndoStack(slot, card))
}

// Draggable allows dragging any face-up card.
func (b *Base) Draggable(card *cards.Card) bool {
	return card.FaceUp()
}

// Droppable keeps the targets that are empty slots or tail cards. A
// permissive first filter, variants narrow it down to their rules.
func (b *Base) Droppable(card *cards.Card, targets []cards.Item) []cards.Item {
	var droplist []cards.Item
	for _, target := range targets {
		switch t := target.(type) {
		case *cards.Slot:
			if t.Empty() {
				droplist = append(droplist, t)
			}
		case *cards.Card:
			if t.Tail() {
				droplist = append(droplist, t)
			}
		}
	}
	return droplist
}

// Status reports the stock count, taking the first slot as the stock by
// convention, and the redeals left for games that limit them.
func (b *Base) Status() string {
	var messages []string
	if len(b.slots) > 0 {
		messages = append(messages, fmt.Sprintf("Stock left: %d", len(b.slots[0].Cards())))
	}
	if b.hasRedeals {
		messages = append(messages, fmt.Sprintf("Redeals left: %d", b.redeals))
	}
	return strings.Join(messages, "  ")
}

// Score counts the cards on the foundations still present on the board.
func (b *Base) Score() int {
	score := 0
	for _, slot := range b.foundations {
		if slotIn(b.slots, slot) {
			score += len(slot.Cards())
		}
	}
	return score
}

// Win reports whether every card scored.
func (b *Base) Win() bool {
	return b.rules.Score() == b.deck.Len()
}

// Undoable reports whether an undo entry is available.
func (b *Base) Undoable() bool {
	return len(b.undocmds) > 0
}

// Undo pops the most recent entry and executes its commands in reverse.
func (b *Base) Undo() {
	if len(b.undocmds) == 0 {
		return
	}
	entry := b.undocmds[len(b.undocmds)-1]
	b.undocmds = b.undocmds[:len(b.undocmds)-1]
	for i := len(entry) - 1; i >= 0; i-- {
		b.log.Debug("executing undo", zap.Stringer("command", entry[i]))
		entry[i].Execute()
	}
}

// PushUndo appends one undo entry. All commands of an entry revert
// together, latest first. An empty entry is legitimate and undoes to a
// no-op.
func (b *Base) PushUndo(cmds ...Command) {
	b.undocmds = append(b.undocmds, cmds)
}

// CreateSlot makes a slot, registers it with the game and returns it.
func (b *Base) CreateSlot(cell cards.Cell, orientation cards.Orientation, name string) *cards.Slot {
	slot := cards.NewSlot(cell, orientation, name, b.log)
	b.slots = append(b.slots, slot)
	return slot
}

// RemoveSlot takes slot off the board. The slot object stays usable, games
// remove slots they deal through but do not play on.
func (b *Base) RemoveSlot(slot *cards.Slot) {
	for i, s := range b.slots {
		if s == slot {
			b.slots = append(b.slots[:i], b.slots[i+1:]...)
			return
		}
	}
}

// doubleClickToFoundations sends item to the first foundation it may drop
// on, if it is a draggable card not already there.
func (b *Base) doubleClickToFoundations(item cards.Item, foundations []*cards.Slot) bool {
	card, ok := item.(*cards.Card)
	if !ok {
		return false
	}
	if slotIn(foundations, card.Slot()) || !b.rules.Draggable(card) {
		return false
	}

	targets := make([]cards.Item, 0, len(foundations))
	for _, slot := range foundations {
		if slot.Empty() {
			targets = append(targets, slot)
		} else {
			targets = append(targets, slot.Tail())
		}
	}

	droplist := b.rules.Droppable(card, targets)
	if len(droplist) == 0 {
		return false
	}
	b.rules.Drop(card, droplist[0])
	return true
}
