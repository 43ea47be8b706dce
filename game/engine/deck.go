package engine

// Deck is the draw pile. The top of the deck is the end of Cards.
type Deck struct {
	Cards []Card `json:"cards"`
}

// NewDeck creates a deck holding a copy of cards
func NewDeck(cards []Card) *Deck {
	return &Deck{Cards: append([]Card(nil), cards...)}
}

// Size returns the number of cards left
func (d *Deck) Size() int {
	return len(d.Cards)
}

// Shuffle randomises the order of the deck
func (d *Deck) Shuffle(dice *Dice) {
	dice.Shuffle(len(d.Cards), func(i, j int) {
		d.Cards[i], d.Cards[j] = d.Cards[j], d.Cards[i]
	})
}

// Draw removes up to n cards from the top of the deck
func (d *Deck) Draw(n int) []Card {
	if n <= 0 {
		return nil
	}
	if n > len(d.Cards) {
		n = len(d.Cards)
	}
	cut := len(d.Cards) - n
	drawn := append([]Card(nil), d.Cards[cut:]...)
	d.Cards = d.Cards[:cut]
	return drawn
}

// Refill puts cards under the deck
func (d *Deck) Refill(cards []Card) {
	d.Cards = append(append([]Card(nil), cards...), d.Cards...)
}

func (d *Deck) clone() *Deck {
	return NewDeck(d.Cards)
}
