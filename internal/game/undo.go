package game

import (
	"fmt"

	"github.com/cardtable/solitaire-be/internal/cards"
)

type commandOp int

const (
	opFlip commandOp = iota
	opStack
	opDeal
	opRedealCredit
)

// Command is one reversible step in the undo journal. The set of commands
// is closed: rules compose undo entries from these four constructors only,
// so replay cannot run arbitrary code.
type Command struct {
	op     commandOp
	card   *cards.Card
	from   *cards.Slot
	to     *cards.Slot
	facing cards.Facing
	credit *int
}

// UndoFlip toggles card's face when executed.
func UndoFlip(card *cards.Card) Command {
	return Command{op: opFlip, card: card}
}

// UndoStack returns card, with its chain, to slot when executed.
func UndoStack(slot *cards.Slot, card *cards.Card) Command {
	return Command{op: opStack, from: slot, card: card}
}

// UndoDeal deals one card from one slot to another when executed.
func UndoDeal(from, to *cards.Slot, facing cards.Facing) Command {
	return Command{op: opDeal, from: from, to: to, facing: facing}
}

// UndoRedealCredit gives back one redeal when executed.
func UndoRedealCredit(counter *int) Command {
	return Command{op: opRedealCredit, credit: counter}
}

// Execute applies the command to the board.
func (c Command) Execute() {
	switch c.op {
	case opFlip:
		c.card.Flip(cards.FacingToggle)
	case opStack:
		c.from.Stack(c.card)
	case opDeal:
		c.from.Deal(c.facing, c.to)
	case opRedealCredit:
		*c.credit++
	}
}

func (c Command) String() string {
	switch c.op {
	case opFlip:
		return fmt.Sprintf("flip(%s)", c.card)
	case opStack:
		return fmt.Sprintf("stack(%s, %s)", c.from, c.card)
	case opDeal:
		return fmt.Sprintf("deal(%s, %s, %s)", c.from, c.to, c.facing)
	case opRedealCredit:
		return "redealcredit()"
	}
	return fmt.Sprintf("command(%d)", int(c.op))
}
