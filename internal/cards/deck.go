package cards

import (
	"fmt"
	"math"
	"math/rand"

	"go.uber.org/zap"
)

// Classic 79x123 sheet cell, the aspect every card is scaled against.
const (
	cardAspectW = 79
	cardAspectH = 123
)

type cardKey struct {
	rank Rank
	suit Suit
}

// Deck owns every card of one game and both of its orderings: the deal
// order cards are shuffled and dealt in, and the draw order that decides
// which card is on top under the pointer.
type Deck struct {
	cards    []*Card
	zorder   []*Card
	byKey    map[cardKey]*Card
	cardSize Size
	log      *zap.Logger
}

// NewDeck creates an empty deck. A nil logger disables logging.
func NewDeck(logger *zap.Logger) *Deck {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Deck{byKey: make(map[cardKey]*Card), log: logger}
}

// CreateCards rebuilds the full suit by rank cross product, twice over for
// double decks. Jokers are accepted in the request for the sake of rule
// authors but none are generated.
func (d *Deck) CreateCards(doubleDeck bool, jokers int, faceup bool) {
	if jokers > 0 {
		d.log.Warn("jokers are not supported, none created", zap.Int("jokers", jokers))
	}
	decks := 1
	if doubleDeck {
		decks = 2
	}
	d.cards = nil
	d.zorder = nil
	d.byKey = make(map[cardKey]*Card, decks*52)
	for i := 0; i < decks; i++ {
		for suit := Clubs; suit <= Spades; suit++ {
			for rank := Ace; rank <= King; rank++ {
				card := newCard(rank, suit, d, faceup)
				d.cards = append(d.cards, card)
				d.zorder = append(d.zorder, card)
				d.byKey[cardKey{rank: rank, suit: suit}] = card
			}
		}
	}
}

// Cards returns the deck in deal order.
func (d *Deck) Cards() []*Card { return d.cards }

// ZOrder returns the deck in draw order, bottom first.
func (d *Deck) ZOrder() []*Card { return d.zorder }

// Len is the number of cards in the deck.
func (d *Deck) Len() int { return len(d.cards) }

// CardSize is the current card size set by the last Resize.
func (d *Deck) CardSize() Size { return d.cardSize }

// Card returns the card of the given rank and suit. For double decks
// either instance may come back.
func (d *Deck) Card(rank Rank, suit Suit) (*Card, error) {
	card, ok := d.byKey[cardKey{rank: rank, suit: suit}]
	if !ok {
		return nil, fmt.Errorf("no such card: %s of %s", rank, suit)
	}
	return card, nil
}

// Shuffle permutes the deal order, deterministically for a given seed, and
// resets the draw order to match. Stack links are untouched, callers break
// stacks first when that matters.
func (d *Deck) Shuffle(seed int64) {
	r := rand.New(rand.NewSource(seed))
	r.Shuffle(len(d.cards), func(i, j int) {
		d.cards[i], d.cards[j] = d.cards[j], d.cards[i]
	})
	d.zorder = append(d.zorder[:0], d.cards...)
}

// PopCards breaks every stack, leaving all cards loose.
func (d *Deck) PopCards() {
	for _, card := range d.cards {
		card.Pop()
	}
}

// TopCardAt returns the topmost card whose rect contains pos, nil if none.
func (d *Deck) TopCardAt(pos Point) *Card {
	var top *Card
	for _, card := range d.zorder {
		if card.rect.Contains(pos) {
			top = card
		}
	}
	return top
}

// MoveToFront raises card to the top of the draw order.
func (d *Deck) MoveToFront(card *Card) {
	for i, c := range d.zorder {
		if c == card {
			d.zorder = append(append(d.zorder[:i], d.zorder[i+1:]...), card)
			return
		}
	}
}

// Resize scales every card to the largest size that fits within max while
// keeping the card aspect. Returns the chosen size.
func (d *Deck) Resize(max Size) Size {
	scale := math.Min(float64(max.W)/cardAspectW, float64(max.H)/cardAspectH)
	if scale < 0 {
		scale = 0
	}
	d.cardSize = Size{W: int(cardAspectW * scale), H: int(cardAspectH * scale)}
	for _, card := range d.cards {
		card.Resize(d.cardSize)
	}
	return d.cardSize
}
