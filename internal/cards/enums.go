package cards

import (
	"fmt"
	"strconv"
)

// Rank of a card, Ace low.
type Rank int

const (
	Ace Rank = iota + 1
	Two
	Three
	Four
	Five
	Six
	Seven
	Eight
	Nine
	Ten
	Jack
	Queen
	King
)

var rankNames = [...]string{
	"Ace", "Two", "Three", "Four", "Five", "Six", "Seven",
	"Eight", "Nine", "Ten", "Jack", "Queen", "King",
}

func (r Rank) String() string {
	if r < Ace || r > King {
		return fmt.Sprintf("Rank(%d)", int(r))
	}
	return rankNames[r-1]
}

// Short returns the rank part of a card shortname: digits for 2-10, the
// first letter otherwise (A, J, Q, K).
func (r Rank) Short() string {
	if r >= Two && r <= Ten {
		return strconv.Itoa(int(r))
	}
	return rankNames[r-1][:1]
}

// Suit of a card.
type Suit int

const (
	Clubs Suit = iota + 1
	Diamonds
	Hearts
	Spades
)

var suitNames = [...]string{"Clubs", "Diamonds", "Hearts", "Spades"}

func (s Suit) String() string {
	if s < Clubs || s > Spades {
		return fmt.Sprintf("Suit(%d)", int(s))
	}
	return suitNames[s-1]
}

// Color returns Black for Clubs and Spades, Red for Diamonds and Hearts.
func (s Suit) Color() Color {
	if s == Clubs || s == Spades {
		return Black
	}
	return Red
}

// Color of a suit.
type Color int

const (
	Black Color = iota + 1
	Red
)

func (c Color) String() string {
	switch c {
	case Black:
		return "Black"
	case Red:
		return "Red"
	}
	return fmt.Sprintf("Color(%d)", int(c))
}

// Orientation describes how a card is offset from its parent when stacked.
type Orientation int

const (
	OrientNone Orientation = iota // do not snap
	OrientKeep                    // inherit the parent's orientation
	OrientRight
	OrientLeft
	OrientDown
	OrientUp
	OrientPile // stack squarely on top
)

var orientNames = [...]string{"None", "Keep", "Right", "Left", "Down", "Up", "Pile"}

func (o Orientation) String() string {
	if o < OrientNone || o > OrientPile {
		return fmt.Sprintf("Orientation(%d)", int(o))
	}
	return orientNames[o]
}

// vector is the unit offset of the orientation, in cells of card size.
func (o Orientation) vector() (dx, dy int) {
	switch o {
	case OrientRight:
		return 1, 0
	case OrientLeft:
		return -1, 0
	case OrientDown:
		return 0, 1
	case OrientUp:
		return 0, -1
	}
	return 0, 0
}

// Facing selects how a flip changes a card's face.
type Facing int

const (
	FacingSame Facing = iota // leave as is, the no-op used by uniform dealing
	FacingToggle
	FaceUp
	FaceDown
)

var facingNames = [...]string{"Same", "Toggle", "FaceUp", "FaceDown"}

func (f Facing) String() string {
	if f < FacingSame || f > FaceDown {
		return fmt.Sprintf("Facing(%d)", int(f))
	}
	return facingNames[f]
}
