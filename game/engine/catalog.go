package engine

import (
	"fmt"
	"strings"
)

// Catalog codes. 0 to 13 are standard cards, the rest wild.
const (
	CodeRankFromDescriptor = 0
	CodeBurner             = 14
	CodeSaver              = 15
	MaxCardCode            = CodeSaver
)

// CardDescriptor is one catalog record. Frequency copies of the card go into the deck.
type CardDescriptor struct {
	Code        int    `json:"code"`
	Frequency   int    `json:"frequency"`
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`
	Rank        int    `json:"rank,omitempty"`
	Suit        Suit   `json:"suit,omitempty"`
}

// NewCard turns a descriptor into a card
func NewCard(d CardDescriptor) (Card, error) {
	var card Card
	switch {
	case d.Code >= 0 && d.Code <= King:
		rank := d.Code
		if d.Code == CodeRankFromDescriptor {
			rank = d.Rank
		} else if d.Rank != 0 && d.Rank != d.Code {
			return Card{}, fmt.Errorf("%w: code %d conflicts with rank %d", ErrInvalidCard, d.Code, d.Rank)
		}
		if rank < Ace || rank > King {
			return Card{}, fmt.Errorf("%w: rank %d out of range", ErrInvalidCard, rank)
		}
		if d.Suit != "" && !validSuit(d.Suit) {
			return Card{}, fmt.Errorf("%w: unknown suit %q", ErrInvalidCard, d.Suit)
		}
		card = Card{Name: rankNames[rank], Kind: KindStandard, Rank: rank, Suit: d.Suit}
	case d.Code == CodeBurner:
		card = Card{Name: "Burner", Kind: KindBurner}
	case d.Code == CodeSaver:
		card = Card{Name: "Saver", Kind: KindSaver}
	default:
		return Card{}, fmt.Errorf("%w: unknown code %d", ErrInvalidCard, d.Code)
	}

	if name := strings.TrimSpace(d.Name); name != "" {
		card.Name = name
	}
	card.Description = d.Description
	if card.Description == "" {
		card.Description = Summary(card)
	}
	return card, nil
}

func validSuit(s Suit) bool {
	for _, suit := range Suits {
		if s == suit {
			return true
		}
	}
	return false
}

// BuildCards expands a catalog into the full multiset of cards
func BuildCards(catalog []CardDescriptor) ([]Card, error) {
	var cards []Card
	for i, d := range catalog {
		if d.Frequency < 1 {
			return nil, fmt.Errorf("catalog entry %d: frequency must be positive, got %d", i, d.Frequency)
		}
		card, err := NewCard(d)
		if err != nil {
			return nil, fmt.Errorf("catalog entry %d: %w", i, err)
		}
		for n := 0; n < d.Frequency; n++ {
			cards = append(cards, card)
		}
	}
	return cards, nil
}

// DefaultCatalog is a 52 card deck plus two of each wild card
func DefaultCatalog() []CardDescriptor {
	catalog := make([]CardDescriptor, 0, len(Suits)*King+2)
	for _, suit := range Suits {
		for rank := Ace; rank <= King; rank++ {
			catalog = append(catalog, CardDescriptor{Code: rank, Frequency: 1, Suit: suit})
		}
	}
	catalog = append(catalog,
		CardDescriptor{Code: CodeBurner, Frequency: 2},
		CardDescriptor{Code: CodeSaver, Frequency: 2},
	)
	return catalog
}
