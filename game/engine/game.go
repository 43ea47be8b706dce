package engine

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// GameManager is the capability cards use to touch turn and hand state
type GameManager interface {
	GetTurn() int
	GetCurrentPlayerIndex() int
	NextTurn()
	AddToFirePit(card *Card)
	IsGameOver() bool
	GetCurrentPlayer() *Player
	GetActivePlayerColour() Colour
	GetNextPlayerColour() Colour
	FieldMarble() error
	DiscardCard() error
	DiscardCardFor(colour Colour) error
}

// GameState is a whole game: board, deck, players, fire pit and turn machine
type GameState struct {
	ID                 string          `json:"id"`
	ConfigName         string          `json:"config_name"`
	Board              *Board          `json:"board"`
	Deck               *Deck           `json:"deck"`
	Players            []*Player       `json:"players"`
	CurrentPlayerIndex int             `json:"current_player_index"`
	Turn               int             `json:"turn"`
	FirePit            []Card          `json:"fire_pit"`
	Phase              TurnPhase       `json:"phase"`
	GameOver           bool            `json:"game_over"`
	Winner             Colour          `json:"winner,omitempty"`
	Eliminated         Colour          `json:"eliminated,omitempty"`
	Message            string          `json:"message"`
	HandSize           int             `json:"hand_size"`
	Replenish          ReplenishPolicy `json:"replenish"`
	WinCondition       WinCondition    `json:"win_condition"`
	Dice               Dice            `json:"dice"`
	LastEvents         []BoardEvent    `json:"last_events,omitempty"`

	PlayHistory []PlayHistoryEntry `json:"play_history"`
	TotalPlays  int                `json:"total_plays"`

	// CurrentPlays mirrors PlayHistory since the last reset; PlayHistory is cumulative.
	CurrentPlays      []PlayHistoryEntry `json:"current_plays"`
	CurrentPlaysCount int                `json:"current_plays_count"`
}

// NewGameState sets up a fresh game from a validated configuration and deals
// the first hands.
func NewGameState(config *GameConfig) (*GameState, error) {
	if config == nil {
		config = DefaultGameConfig()
	}
	cards, err := BuildCards(config.catalog())
	if err != nil {
		return nil, err
	}

	seed := config.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}

	board := NewBoard(Colours, config.TrackSpan, config.SafeZoneLength, config.EntryGap, config.MarblesPerPlayer)
	board.Dice = Dice{Seed: seed + 1}
	if err := board.SetSplitDistance(config.SplitDistance); err != nil {
		return nil, err
	}
	board.PlaceTraps(config.TrapCount)

	names := config.playerNames()
	players := make([]*Player, len(Colours))
	for i, c := range Colours {
		players[i] = NewPlayer(names[i], c, board.MarblesOf(c))
	}

	gs := &GameState{
		ID:           uuid.NewString(),
		ConfigName:   config.Name,
		Board:        board,
		Deck:         NewDeck(cards),
		Players:      players,
		FirePit:      []Card{},
		Phase:        AwaitingSelection,
		HandSize:     config.HandSize,
		Replenish:    config.replenish(),
		WinCondition: config.winCondition(),
		Dice:         Dice{Seed: seed},
		PlayHistory:  []PlayHistoryEntry{},
		CurrentPlays: []PlayHistoryEntry{},
	}
	gs.Deck.Shuffle(&gs.Dice)
	gs.dealAll()
	gs.Message = fmt.Sprintf("%s to play", gs.GetCurrentPlayer().Name)
	return gs, nil
}

// GetTurn returns the number of completed rounds
func (gs *GameState) GetTurn() int {
	return gs.Turn
}

// GetCurrentPlayerIndex returns the seat of the active player
func (gs *GameState) GetCurrentPlayerIndex() int {
	return gs.CurrentPlayerIndex
}

// GetCurrentPlayer returns the active player
func (gs *GameState) GetCurrentPlayer() *Player {
	return gs.Players[gs.CurrentPlayerIndex]
}

// GetActivePlayerColour returns the colour of the active player
func (gs *GameState) GetActivePlayerColour() Colour {
	return gs.GetCurrentPlayer().Colour
}

// GetNextPlayerColour returns the colour of the player who moves next
func (gs *GameState) GetNextPlayerColour() Colour {
	return gs.Players[(gs.CurrentPlayerIndex+1)%len(gs.Players)].Colour
}

// PlayerByColour returns the player seated at colour c
func (gs *GameState) PlayerByColour(c Colour) (*Player, bool) {
	for _, p := range gs.Players {
		if p.Colour == c {
			return p, true
		}
	}
	return nil, false
}

// NextTurn hands the turn to the next seat. Turn counts completed rounds.
func (gs *GameState) NextTurn() {
	gs.GetCurrentPlayer().ClearSelection()
	gs.CurrentPlayerIndex = (gs.CurrentPlayerIndex + 1) % len(gs.Players)
	if gs.CurrentPlayerIndex == 0 {
		gs.Turn++
	}
}

// AddToFirePit discards a card. A nil card is ignored.
func (gs *GameState) AddToFirePit(card *Card) {
	if card == nil {
		return
	}
	gs.FirePit = append(gs.FirePit, *card)
}

// IsGameOver reports whether the game has ended
func (gs *GameState) IsGameOver() bool {
	if gs.GameOver {
		return true
	}
	return gs.checkGameOver()
}

// checkGameOver applies the win predicate and records the outcome
func (gs *GameState) checkGameOver() bool {
	for _, p := range gs.Players {
		switch gs.WinCondition {
		case WinFirepit:
			if p.HasFielded && gs.countIn(p, InBase) == len(p.Marbles) {
				gs.GameOver = true
				gs.Eliminated = p.Colour
				gs.Message = fmt.Sprintf("%s has lost every marble. Game over!", p.Name)
				return true
			}
		default:
			if gs.countIn(p, InSafe) == len(p.Marbles) {
				gs.GameOver = true
				gs.Winner = p.Colour
				gs.Message = fmt.Sprintf("%s brought every marble home and wins!", p.Name)
				return true
			}
		}
	}
	return false
}

func (gs *GameState) countIn(p *Player, kind LocationKind) int {
	n := 0
	for _, id := range p.Marbles {
		if gs.Board.Marbles[id].Location.Kind == kind {
			n++
		}
	}
	return n
}

// FieldMarble moves one of the active player's base marbles onto its BASE cell
func (gs *GameState) FieldMarble() error {
	p := gs.GetCurrentPlayer()
	for _, id := range p.Marbles {
		if gs.Board.Marbles[id].Location.Kind == InBase {
			return gs.Board.SendToBase(id)
		}
	}
	return fmt.Errorf("%w: %s has no marble left in base", ErrCannotField, p.Name)
}

// DiscardCard makes a random opponent holding cards discard a random one
func (gs *GameState) DiscardCard() error {
	active := gs.GetActivePlayerColour()
	var candidates []Colour
	for _, p := range gs.Players {
		if p.Colour != active && len(p.Hand) > 0 {
			candidates = append(candidates, p.Colour)
		}
	}
	if len(candidates) == 0 {
		return fmt.Errorf("%w: no opponent holds a card", ErrCannotDiscard)
	}
	return gs.DiscardCardFor(candidates[gs.Dice.Intn(len(candidates))])
}

// DiscardCardFor makes the player of colour c discard a random card into the fire pit
func (gs *GameState) DiscardCardFor(c Colour) error {
	p, ok := gs.PlayerByColour(c)
	if !ok {
		return fmt.Errorf("%w: no player with colour %s", ErrCannotDiscard, c)
	}
	if len(p.Hand) == 0 {
		return fmt.Errorf("%w: %s has no cards", ErrCannotDiscard, p.Name)
	}
	card, err := p.RemoveCard(gs.Dice.Intn(len(p.Hand)))
	if err != nil {
		return err
	}
	gs.AddToFirePit(&card)
	return nil
}

// selection resolves marble ids and rejects unknown or repeated ones
func (gs *GameState) selection(ids []int) ([]Marble, error) {
	marbles := make([]Marble, 0, len(ids))
	seen := make(map[int]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			return nil, fmt.Errorf("%w: marble %d selected twice", ErrInvalidMarble, id)
		}
		seen[id] = true
		m, err := gs.Board.Marble(id)
		if err != nil {
			return nil, err
		}
		marbles = append(marbles, m)
	}
	return marbles, nil
}

// PlayCard plays the card at cardIdx of the active player's hand with the
// selected marbles. On failure the game is left exactly as it was and the
// turn does not advance.
func (gs *GameState) PlayCard(cardIdx int, marbleIDs []int) error {
	if gs.GameOver {
		return ErrGameOver
	}
	p := gs.GetCurrentPlayer()
	card, err := p.Card(cardIdx)
	if err != nil {
		gs.recordPlay(p, Card{}, marbleIDs, false, err)
		return err
	}
	p.Select(cardIdx, marbleIDs)

	marbles, err := gs.selection(marbleIDs)
	if err == nil {
		err = gs.act(card, marbles)
	}
	if err != nil {
		gs.Message = err.Error()
		gs.recordPlay(p, card, marbleIDs, false, err)
		return err
	}

	if _, err := p.RemoveCard(cardIdx); err != nil {
		return err
	}
	gs.AddToFirePit(&card)
	gs.Phase = CardPlayed
	gs.Message = fmt.Sprintf("%s played %s", p.Name, card)
	gs.recordPlay(p, card, marbleIDs, true, nil)
	gs.endTurn()
	return nil
}

// act runs the card rule on a snapshot-protected state
func (gs *GameState) act(card Card, marbles []Marble) error {
	play := Play{
		Card:    card,
		Marbles: marbles,
		Active:  gs.GetActivePlayerColour(),
		Board:   gs.Board,
		Game:    gs,
	}
	if err := ValidateSelection(play); err != nil {
		return err
	}

	snapshot := gs.Clone()
	if err := Act(play); err != nil {
		*gs = *snapshot
		return err
	}

	gs.LastEvents = gs.Board.DrainEvents()
	for _, ev := range gs.LastEvents {
		if ev.Kind == EventFielded {
			gs.Players[gs.Board.Marbles[ev.Marble].Owner].HasFielded = true
		}
	}
	return nil
}

// PassTurn discards the card at cardIdx without playing it. It is only allowed
// when the active player has no legal play.
func (gs *GameState) PassTurn(cardIdx int) error {
	if gs.GameOver {
		return ErrGameOver
	}
	p := gs.GetCurrentPlayer()
	if _, err := p.Card(cardIdx); err != nil {
		return err
	}
	if plays := gs.LegalPlays(); len(plays) > 0 {
		err := fmt.Errorf("%w: %s still has %d legal plays", ErrCannotDiscard, p.Name, len(plays))
		gs.Message = err.Error()
		return err
	}

	card, err := p.RemoveCard(cardIdx)
	if err != nil {
		return err
	}
	gs.AddToFirePit(&card)
	gs.LastEvents = nil
	gs.Message = fmt.Sprintf("%s passed and burned %s", p.Name, card)
	gs.recordPass(p, card)
	gs.endTurn()
	return nil
}

// endTurn checks for the end of the game, then advances and refills hands
func (gs *GameState) endTurn() {
	if gs.checkGameOver() {
		gs.Phase = GameOverPhase
		return
	}

	gs.NextTurn()
	gs.Phase = TurnAdvanced
	gs.replenish()

	// Seats without cards are skipped until the next deal.
	for i := 0; i < len(gs.Players) && len(gs.GetCurrentPlayer().Hand) == 0; i++ {
		gs.NextTurn()
		gs.replenish()
	}
	gs.Phase = AwaitingSelection
}

func (gs *GameState) replenish() {
	switch gs.Replenish {
	case ReplenishEmptyHand:
		if p := gs.GetCurrentPlayer(); len(p.Hand) == 0 {
			gs.deal(p)
		}
	default:
		for _, p := range gs.Players {
			if len(p.Hand) > 0 {
				return
			}
		}
		gs.dealAll()
	}
}

func (gs *GameState) dealAll() {
	for _, p := range gs.Players {
		gs.deal(p)
	}
}

// deal tops a hand up to HandSize, refilling the deck from the fire pit first
// when it is running short.
func (gs *GameState) deal(p *Player) {
	need := gs.HandSize - len(p.Hand)
	if need <= 0 {
		return
	}
	if gs.Deck.Size() < gs.HandSize && len(gs.FirePit) > 0 {
		pit := NewDeck(gs.FirePit)
		pit.Shuffle(&gs.Dice)
		gs.Deck.Refill(pit.Cards)
		gs.FirePit = []Card{}
	}
	p.Hand = append(p.Hand, gs.Deck.Draw(need)...)
}

// SelectableMarbles narrows the board's actionable marbles to those the card
// at cardIdx may target.
func (gs *GameState) SelectableMarbles(cardIdx int) ([]int, error) {
	card, err := gs.GetCurrentPlayer().Card(cardIdx)
	if err != nil {
		return nil, err
	}
	active := gs.GetActivePlayerColour()
	onTrack := func(ids []int) []int {
		var out []int
		for _, id := range ids {
			if gs.Board.Marbles[id].Location.Kind == OnTrack {
				out = append(out, id)
			}
		}
		return out
	}
	opponents := func() []int {
		var out []int
		for _, c := range gs.Board.Colours {
			if c != active {
				out = append(out, onTrack(gs.Board.GetActionableMarbles(c))...)
			}
		}
		return out
	}

	switch {
	case card.Kind == KindBurner:
		var out []int
		for _, id := range opponents() {
			if !gs.Board.onOwnBase(&gs.Board.Marbles[id]) {
				out = append(out, id)
			}
		}
		return out, nil
	case card.Kind == KindSaver:
		return onTrack(gs.Board.GetActionableMarbles(active)), nil
	case card.Rank == Five:
		var out []int
		for _, c := range gs.Board.Colours {
			out = append(out, gs.Board.GetActionableMarbles(c)...)
		}
		return out, nil
	case card.Rank == Jack:
		return append(gs.Board.GetActionableMarbles(active), opponents()...), nil
	}
	return gs.Board.GetActionableMarbles(active), nil
}

// CanPlay reports whether PlayCard would succeed, without changing the game
func (gs *GameState) CanPlay(cardIdx int, marbleIDs []int) error {
	if gs.GameOver {
		return ErrGameOver
	}
	return gs.clone(false).PlayCard(cardIdx, marbleIDs)
}

// PlayOption is one legal card and marble combination
type PlayOption struct {
	Card    int   `json:"card"`
	Marbles []int `json:"marbles"`
}

// LegalPlays enumerates every card and selection the active player could
// play right now, using the current split distance for Sevens.
func (gs *GameState) LegalPlays() []PlayOption {
	if gs.GameOver {
		return nil
	}
	var options []PlayOption
	for idx := range gs.GetCurrentPlayer().Hand {
		ids, err := gs.SelectableMarbles(idx)
		if err != nil {
			continue
		}
		candidates := [][]int{{}}
		for i, a := range ids {
			candidates = append(candidates, []int{a})
			for _, b := range ids[i+1:] {
				candidates = append(candidates, []int{a, b}, []int{b, a})
			}
		}
		card := gs.GetCurrentPlayer().Hand[idx]
		for _, sel := range candidates {
			marbles, err := gs.selection(sel)
			if err != nil {
				continue
			}
			play := Play{Card: card, Marbles: marbles, Active: gs.GetActivePlayerColour()}
			if ValidateSelection(play) != nil {
				continue
			}
			if gs.CanPlay(idx, sel) == nil {
				options = append(options, PlayOption{Card: idx, Marbles: sel})
			}
		}
	}
	return options
}

// Clone returns a deep copy of the game
func (gs *GameState) Clone() *GameState {
	return gs.clone(true)
}

func (gs *GameState) clone(withHistory bool) *GameState {
	c := *gs
	c.Board = gs.Board.Clone()
	c.Deck = gs.Deck.clone()
	c.Players = make([]*Player, len(gs.Players))
	for i, p := range gs.Players {
		c.Players[i] = p.clone()
	}
	c.FirePit = append([]Card{}, gs.FirePit...)
	c.LastEvents = append([]BoardEvent(nil), gs.LastEvents...)
	c.PlayHistory = []PlayHistoryEntry{}
	c.CurrentPlays = []PlayHistoryEntry{}
	if withHistory {
		c.PlayHistory = append(c.PlayHistory, gs.PlayHistory...)
		c.CurrentPlays = append(c.CurrentPlays, gs.CurrentPlays...)
	}
	return &c
}

func (gs *GameState) recordPlay(p *Player, card Card, marbles []int, success bool, err error) {
	entry := PlayHistoryEntry{
		Player:  p.Name,
		Colour:  p.Colour,
		Card:    card.String(),
		Marbles: append([]int(nil), marbles...),
		Success: success,
	}
	if err != nil {
		entry.Error = err.Error()
	}
	gs.AddPlayToHistory(entry)
}

func (gs *GameState) recordPass(p *Player, card Card) {
	gs.AddPlayToHistory(PlayHistoryEntry{
		Player:  p.Name,
		Colour:  p.Colour,
		Card:    card.String(),
		Pass:    true,
		Success: true,
	})
}

// AddPlayToHistory stamps an entry and appends it to both histories
func (gs *GameState) AddPlayToHistory(entry PlayHistoryEntry) {
	entry.Turn = gs.Turn
	entry.Timestamp = time.Now().Unix()
	entry.PlayNumber = gs.TotalPlays + 1

	gs.PlayHistory = append(gs.PlayHistory, entry)
	if len(gs.PlayHistory) > MaxPlayHistory {
		gs.PlayHistory = gs.PlayHistory[len(gs.PlayHistory)-MaxPlayHistory:]
	}
	gs.TotalPlays++

	gs.CurrentPlays = append(gs.CurrentPlays, entry)
	gs.CurrentPlaysCount++
}
