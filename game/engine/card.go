package engine

import "fmt"

// CardKind separates the standard ranks from the wild cards
type CardKind string

const (
	KindStandard CardKind = "standard"
	KindBurner   CardKind = "burner"
	KindSaver    CardKind = "saver"
)

// Suit of a standard card. Wild cards carry no suit.
type Suit string

const (
	Hearts   Suit = "hearts"
	Diamonds Suit = "diamonds"
	Clubs    Suit = "clubs"
	Spades   Suit = "spades"
)

// Suits lists the four suits in catalog order
var Suits = []Suit{Hearts, Diamonds, Clubs, Spades}

// Standard ranks with a rule of their own
const (
	Ace   = 1
	Two   = 2
	Four  = 4
	Five  = 5
	Seven = 7
	Ten   = 10
	Jack  = 11
	Queen = 12
	King  = 13
)

var rankNames = map[int]string{
	1: "Ace", 2: "Two", 3: "Three", 4: "Four", 5: "Five", 6: "Six", 7: "Seven",
	8: "Eight", 9: "Nine", 10: "Ten", 11: "Jack", 12: "Queen", 13: "King",
}

// Card is an immutable playing card
type Card struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Kind        CardKind `json:"kind"`
	Rank        int      `json:"rank,omitempty"`
	Suit        Suit     `json:"suit,omitempty"`
}

func (c Card) String() string {
	if c.Kind == KindStandard && c.Suit != "" {
		return fmt.Sprintf("%s of %s", c.Name, c.Suit)
	}
	return c.Name
}

// Play is everything a card rule sees while it validates and acts
type Play struct {
	Card    Card
	Marbles []Marble
	Active  Colour
	Board   BoardManager
	Game    GameManager
}

func (p Play) ownCount() int {
	n := 0
	for _, m := range p.Marbles {
		if m.Colour == p.Active {
			n++
		}
	}
	return n
}

// cardRule holds the three hooks every card kind provides
type cardRule struct {
	summary         string
	validateSize    func(n int) bool
	validateColours func(p Play) bool
	act             func(p Play) error
}

func exactly(sizes ...int) func(int) bool {
	return func(n int) bool {
		for _, s := range sizes {
			if n == s {
				return true
			}
		}
		return false
	}
}

func allOwn(p Play) bool {
	return p.ownCount() == len(p.Marbles)
}

func anyColour(Play) bool { return true }

func moveRule(steps int, summary string) cardRule {
	return cardRule{
		summary:         summary,
		validateSize:    exactly(1),
		validateColours: allOwn,
		act: func(p Play) error {
			return p.Board.MoveBy(p.Marbles[0].ID, steps, false)
		},
	}
}

// zeroOrMove builds the rule for ranks that do something special with an
// empty selection and move their rank otherwise.
func zeroOrMove(steps int, destroy bool, summary string, zero func(p Play) error) cardRule {
	return cardRule{
		summary:         summary,
		validateSize:    exactly(0, 1),
		validateColours: allOwn,
		act: func(p Play) error {
			if len(p.Marbles) == 0 {
				return zero(p)
			}
			return p.Board.MoveBy(p.Marbles[0].ID, steps, destroy)
		},
	}
}

func field(p Play) error {
	return p.Game.FieldMarble()
}

var standardRules = map[int]cardRule{
	Ace: zeroOrMove(1, false, "Field a marble, or move one marble 1 step", field),
	Two: moveRule(2, "Move one of your marbles 2 steps"),
	3:   moveRule(3, "Move one of your marbles 3 steps"),
	Four: {
		summary:         "Move one of your marbles 4 steps backward",
		validateSize:    exactly(1),
		validateColours: allOwn,
		act: func(p Play) error {
			return p.Board.MoveBy(p.Marbles[0].ID, -4, false)
		},
	},
	Five: {
		summary:         "Move any marble on the board 5 steps",
		validateSize:    exactly(1),
		validateColours: anyColour,
		act: func(p Play) error {
			return p.Board.MoveBy(p.Marbles[0].ID, 5, false)
		},
	},
	6: moveRule(6, "Move one of your marbles 6 steps"),
	Seven: {
		summary:         "Move one marble 7 steps, or split the 7 steps between two of your marbles",
		validateSize:    exactly(1, 2),
		validateColours: allOwn,
		act: func(p Play) error {
			if len(p.Marbles) == 1 {
				return p.Board.MoveBy(p.Marbles[0].ID, SevenSteps, false)
			}
			d := p.Board.GetSplitDistance()
			if err := p.Board.MoveBy(p.Marbles[0].ID, d, false); err != nil {
				return err
			}
			return p.Board.MoveBy(p.Marbles[1].ID, SevenSteps-d, false)
		},
	},
	8: moveRule(8, "Move one of your marbles 8 steps"),
	9: moveRule(9, "Move one of your marbles 9 steps"),
	Ten: zeroOrMove(10, false, "Make the next player discard a card, or move one marble 10 steps",
		func(p Play) error {
			return p.Game.DiscardCardFor(p.Game.GetNextPlayerColour())
		}),
	Jack: {
		summary:      "Swap one of your marbles with an opponent's, or move one marble 11 steps",
		validateSize: exactly(1, 2),
		validateColours: func(p Play) bool {
			if len(p.Marbles) == 2 {
				return p.ownCount() == 1
			}
			return allOwn(p)
		},
		act: func(p Play) error {
			if len(p.Marbles) == 1 {
				return p.Board.MoveBy(p.Marbles[0].ID, 11, false)
			}
			own, other := p.Marbles[0], p.Marbles[1]
			if own.Colour != p.Active {
				own, other = other, own
			}
			return p.Board.Swap(own.ID, other.ID)
		},
	},
	Queen: zeroOrMove(12, false, "Make a random opponent discard a card, or move one marble 12 steps",
		func(p Play) error {
			return p.Game.DiscardCard()
		}),
	King: zeroOrMove(13, true, "Field a marble, or move one marble 13 steps destroying everything in its way", field),
}

var wildRules = map[CardKind]cardRule{
	KindBurner: {
		summary:      "Send an opponent's marble back to its base",
		validateSize: exactly(1),
		validateColours: func(p Play) bool {
			return p.ownCount() == 0
		},
		act: func(p Play) error {
			return p.Board.DestroyMarble(p.Marbles[0].ID)
		},
	},
	KindSaver: {
		summary:         "Send one of your marbles straight into your safe zone",
		validateSize:    exactly(1),
		validateColours: allOwn,
		act: func(p Play) error {
			return p.Board.SendToSafe(p.Marbles[0].ID)
		},
	},
}

func ruleFor(c Card) (cardRule, error) {
	if c.Kind == KindStandard {
		if r, ok := standardRules[c.Rank]; ok {
			return r, nil
		}
		return cardRule{}, fmt.Errorf("%w: no rank %d", ErrInvalidCard, c.Rank)
	}
	if r, ok := wildRules[c.Kind]; ok {
		return r, nil
	}
	return cardRule{}, fmt.Errorf("%w: unknown kind %q", ErrInvalidCard, c.Kind)
}

// ValidateSelection runs the size and ownership hooks of the card against a
// selection, before anything is acted on.
func ValidateSelection(p Play) error {
	rule, err := ruleFor(p.Card)
	if err != nil {
		return err
	}
	if !rule.validateSize(len(p.Marbles)) {
		return fmt.Errorf("%w: %s cannot be played with %d marbles", ErrInvalidMarble, p.Card, len(p.Marbles))
	}
	if !rule.validateColours(p) {
		return fmt.Errorf("%w: %s does not accept that marble ownership", ErrInvalidMarble, p.Card)
	}
	return nil
}

// Act validates the selection and then applies the card's effect
func Act(p Play) error {
	if err := ValidateSelection(p); err != nil {
		return err
	}
	rule, _ := ruleFor(p.Card)
	return rule.act(p)
}

// Summary returns the rule text of a card
func Summary(c Card) string {
	rule, err := ruleFor(c)
	if err != nil {
		return ""
	}
	return rule.summary
}
