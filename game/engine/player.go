package engine

import "fmt"

// Player holds a hand, the ids of its marbles and what it has selected this turn
type Player struct {
	Name            string `json:"name"`
	Colour          Colour `json:"colour"`
	Hand            []Card `json:"hand"`
	Marbles         []int  `json:"marbles"`
	SelectedCard    int    `json:"selected_card"`
	SelectedMarbles []int  `json:"selected_marbles,omitempty"`
	// HasFielded is set once any of the player's marbles has entered the track.
	HasFielded bool `json:"has_fielded"`
}

// NewPlayer creates a player with an empty hand and no selection
func NewPlayer(name string, colour Colour, marbles []int) *Player {
	return &Player{
		Name:         name,
		Colour:       colour,
		Hand:         []Card{},
		Marbles:      append([]int(nil), marbles...),
		SelectedCard: -1,
	}
}

// Card returns the card at idx in the hand
func (p *Player) Card(idx int) (Card, error) {
	if idx < 0 || idx >= len(p.Hand) {
		return Card{}, fmt.Errorf("%w: %s has no card at position %d (hand size %d)", ErrInvalidCard, p.Name, idx, len(p.Hand))
	}
	return p.Hand[idx], nil
}

// RemoveCard takes the card at idx out of the hand
func (p *Player) RemoveCard(idx int) (Card, error) {
	card, err := p.Card(idx)
	if err != nil {
		return Card{}, err
	}
	p.Hand = append(p.Hand[:idx:idx], p.Hand[idx+1:]...)
	return card, nil
}

// Select records the player's current card and marble choice
func (p *Player) Select(card int, marbles []int) {
	p.SelectedCard = card
	p.SelectedMarbles = append([]int(nil), marbles...)
}

// ClearSelection forgets the current choice
func (p *Player) ClearSelection() {
	p.SelectedCard = -1
	p.SelectedMarbles = nil
}

func (p *Player) clone() *Player {
	c := *p
	c.Hand = append([]Card{}, p.Hand...)
	c.Marbles = append([]int(nil), p.Marbles...)
	c.SelectedMarbles = append([]int(nil), p.SelectedMarbles...)
	return &c
}
