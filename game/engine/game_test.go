package engine

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"
)

func totalCards(gs *GameState) int {
	n := gs.Deck.Size() + len(gs.FirePit)
	for _, p := range gs.Players {
		n += len(p.Hand)
	}
	return n
}

func TestNewGameState(t *testing.T) {
	gs := createTestGame(t)

	if gs.ID == "" {
		t.Error("Expected a game id")
	}
	if len(gs.Players) != NumPlayers {
		t.Fatalf("Expected %d players, got %d", NumPlayers, len(gs.Players))
	}
	for i, p := range gs.Players {
		if p.Colour != Colours[i] {
			t.Errorf("Expected seat %d to be %s, got %s", i, Colours[i], p.Colour)
		}
		if len(p.Hand) != 4 {
			t.Errorf("Expected %s to hold 4 cards, got %d", p.Name, len(p.Hand))
		}
		if len(p.Marbles) != 4 {
			t.Errorf("Expected %s to own 4 marbles, got %d", p.Name, len(p.Marbles))
		}
	}
	if gs.Deck.Size() != 56-16 {
		t.Errorf("Expected 40 cards left in the deck, got %d", gs.Deck.Size())
	}
	if gs.Phase != AwaitingSelection {
		t.Errorf("Expected phase %s, got %s", AwaitingSelection, gs.Phase)
	}
	if gs.Players[0].Name != "Red" {
		t.Errorf("Expected default player name Red, got %s", gs.Players[0].Name)
	}
}

func TestNewGameState_Deterministic(t *testing.T) {
	a := createTestGame(t)
	b := createTestGame(t)
	if !reflect.DeepEqual(a.Deck.Cards, b.Deck.Cards) {
		t.Error("Expected the same seed to shuffle the same deck")
	}

	config := createTestConfig()
	config.Seed = 43
	c, err := NewGameState(config)
	if err != nil {
		t.Fatal(err)
	}
	if reflect.DeepEqual(a.Deck.Cards, c.Deck.Cards) {
		t.Error("Expected a different seed to shuffle differently")
	}
}

func TestNextTurn(t *testing.T) {
	gs := createTestGame(t)
	gs.GetCurrentPlayer().Select(0, []int{red0})

	gs.NextTurn()
	if gs.GetCurrentPlayerIndex() != 1 || gs.GetTurn() != 0 {
		t.Errorf("Expected seat 1 in turn 0, got seat %d turn %d", gs.GetCurrentPlayerIndex(), gs.GetTurn())
	}
	if gs.Players[0].SelectedCard != -1 || gs.Players[0].SelectedMarbles != nil {
		t.Error("Expected outgoing selection to be cleared")
	}
	if gs.GetActivePlayerColour() != Green || gs.GetNextPlayerColour() != Blue {
		t.Errorf("Unexpected colours: active %s next %s", gs.GetActivePlayerColour(), gs.GetNextPlayerColour())
	}

	gs.NextTurn()
	gs.NextTurn()
	if gs.GetNextPlayerColour() != Red {
		t.Errorf("Expected red to follow yellow, got %s", gs.GetNextPlayerColour())
	}
	gs.NextTurn()
	if gs.GetCurrentPlayerIndex() != 0 || gs.GetTurn() != 1 {
		t.Errorf("Expected wrap to seat 0 in turn 1, got seat %d turn %d", gs.GetCurrentPlayerIndex(), gs.GetTurn())
	}
}

func TestAddToFirePit(t *testing.T) {
	gs := createTestGame(t)
	gs.AddToFirePit(nil)
	if len(gs.FirePit) != 0 {
		t.Error("Expected nil card to be ignored")
	}
	c := testCard(t, Five)
	gs.AddToFirePit(&c)
	if len(gs.FirePit) != 1 || gs.FirePit[0] != c {
		t.Errorf("Expected fire pit to hold the card, got %v", gs.FirePit)
	}
}

func TestDeck_Conservation(t *testing.T) {
	cards := make([]Card, 10)
	for i := range cards {
		cards[i] = Card{Name: "c", Kind: KindStandard, Rank: i%13 + 1}
	}
	d := NewDeck(cards)

	drawn := d.Draw(4)
	if len(drawn) != 4 || d.Size() != 6 {
		t.Errorf("Expected 4 drawn and 6 left, got %d and %d", len(drawn), d.Size())
	}
	drawn = d.Draw(10)
	if len(drawn) != 6 || d.Size() != 0 {
		t.Errorf("Expected draw to stop at the pool size, got %d drawn and %d left", len(drawn), d.Size())
	}
	if d.Draw(0) != nil || d.Draw(-1) != nil {
		t.Error("Expected non-positive draws to return nothing")
	}

	d.Refill(cards[:3])
	if d.Size() != 3 {
		t.Errorf("Expected 3 cards after refill, got %d", d.Size())
	}
}

func TestPlay_CardConservation(t *testing.T) {
	gs := createTestGame(t)
	want := totalCards(gs)

	for i := 0; i < 200 && !gs.IsGameOver(); i++ {
		options := gs.LegalPlays()
		var err error
		if len(options) == 0 {
			err = gs.PassTurn(0)
		} else {
			err = gs.PlayCard(options[0].Card, options[0].Marbles)
		}
		if err != nil {
			t.Fatalf("Play %d failed: %v", i, err)
		}
		if got := totalCards(gs); got != want {
			t.Fatalf("Play %d: expected %d cards in circulation, got %d", i, want, got)
		}
		if len(gs.GetCurrentPlayer().Hand) == 0 && !gs.GameOver {
			t.Fatalf("Play %d: active player has no cards", i)
		}
		assertBoardConsistent(t, gs.Board)
	}
}

func TestPlay_FailureLeavesGameUnchanged(t *testing.T) {
	gs := createTestGame(t)
	placeOnTrack(t, gs.Board, red0, 5)
	placeOnTrack(t, gs.Board, green0, 6)
	placeOnTrack(t, gs.Board, blue0, 7)
	giveHand(t, gs, 3)
	before := gs.Clone()

	if err := gs.PlayCard(0, []int{red0}); !errors.Is(err, ErrIllegalMovement) {
		t.Fatalf("Expected ErrIllegalMovement, got %v", err)
	}
	if !reflect.DeepEqual(before.Board.Track, gs.Board.Track) || !reflect.DeepEqual(before.Board.Marbles, gs.Board.Marbles) {
		t.Error("Expected board unchanged after failed play")
	}
	if !reflect.DeepEqual(before.Deck, gs.Deck) || !reflect.DeepEqual(before.FirePit, gs.FirePit) {
		t.Error("Expected cards unchanged after failed play")
	}
	if gs.CurrentPlayerIndex != before.CurrentPlayerIndex || gs.Turn != before.Turn {
		t.Error("Expected turn not to advance after failed play")
	}
}

func TestCanPlay(t *testing.T) {
	gs := createTestGame(t)
	placeOnTrack(t, gs.Board, red0, 5)
	giveHand(t, gs, 3, CodeBurner)

	if err := gs.CanPlay(0, []int{red0}); err != nil {
		t.Errorf("Expected Three to be playable: %v", err)
	}
	if err := gs.CanPlay(1, []int{red0}); !errors.Is(err, ErrInvalidMarble) {
		t.Errorf("Expected Burner on own marble to be rejected, got %v", err)
	}
	if got := locationOf(t, gs.Board, red0); got != (Location{OnTrack, 5}) {
		t.Errorf("Expected dry run to leave marble at 5, got %s", got)
	}
	if len(gs.GetCurrentPlayer().Hand) != 2 || gs.GetCurrentPlayerIndex() != 0 {
		t.Error("Expected dry run to leave hand and turn untouched")
	}
	if len(gs.PlayHistory) != 0 {
		t.Error("Expected dry run to leave history untouched")
	}
}

func TestSelectableMarbles(t *testing.T) {
	gs := createTestGame(t)
	placeOnTrack(t, gs.Board, red0, 5)
	placeInSafe(t, gs.Board, red1, 0)
	placeOnTrack(t, gs.Board, green0, 20)
	placeOnTrack(t, gs.Board, green1, 13)
	placeOnTrack(t, gs.Board, blue0, 30)
	giveHand(t, gs, 3, CodeBurner, Jack, Five, CodeSaver)

	tests := []struct {
		name string
		card int
		want []int
	}{
		{"standard", 0, []int{red0, red1}},
		{"burner skips protected", 1, []int{green0, blue0}},
		{"jack", 2, []int{red0, red1, green0, green1, blue0}},
		{"five", 3, []int{red0, red1, green0, green1, blue0}},
		{"saver", 4, []int{red0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := gs.SelectableMarbles(tt.card)
			if err != nil {
				t.Fatal(err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Expected %v, got %v", tt.want, got)
			}
		})
	}

	if _, err := gs.SelectableMarbles(9); !errors.Is(err, ErrInvalidCard) {
		t.Errorf("Expected ErrInvalidCard, got %v", err)
	}
}

func TestPassTurn(t *testing.T) {
	t.Run("refused while a legal play exists", func(t *testing.T) {
		gs := createTestGame(t)
		giveHand(t, gs, Ace)

		if err := gs.PassTurn(0); !errors.Is(err, ErrCannotDiscard) {
			t.Fatalf("Expected ErrCannotDiscard, got %v", err)
		}
	})

	t.Run("burns a card when stuck", func(t *testing.T) {
		gs := createTestGame(t)
		giveHand(t, gs, Two)

		if err := gs.PassTurn(0); err != nil {
			t.Fatalf("Expected pass to succeed: %v", err)
		}
		if len(gs.FirePit) != 1 || gs.FirePit[0].Rank != Two {
			t.Errorf("Expected Two in fire pit, got %v", gs.FirePit)
		}
		if gs.GetCurrentPlayerIndex() != 1 {
			t.Errorf("Expected turn to advance, got seat %d", gs.GetCurrentPlayerIndex())
		}
		last := gs.PlayHistory[len(gs.PlayHistory)-1]
		if !last.Pass || !last.Success {
			t.Errorf("Expected a pass entry, got %+v", last)
		}
	})
}

func TestReplenish(t *testing.T) {
	t.Run("round deals when every hand is empty", func(t *testing.T) {
		gs := createTestGame(t)
		for range gs.Players {
			giveHand(t, gs, Ace)
			if err := gs.PlayCard(0, nil); err != nil {
				t.Fatalf("Expected Ace to field: %v", err)
			}
		}
		for _, p := range gs.Players {
			if len(p.Hand) != 4 {
				t.Errorf("Expected %s to be dealt 4 cards, got %d", p.Name, len(p.Hand))
			}
		}
		if gs.GetTurn() != 1 {
			t.Errorf("Expected one completed round, got %d", gs.GetTurn())
		}
	})

	t.Run("round skips empty hands", func(t *testing.T) {
		gs := createTestGame(t)
		gs.Players[1].Hand = []Card{}
		giveHand(t, gs, Ace)

		if err := gs.PlayCard(0, nil); err != nil {
			t.Fatal(err)
		}
		if gs.GetCurrentPlayerIndex() != 2 {
			t.Errorf("Expected seat 1 to be skipped, now at seat %d", gs.GetCurrentPlayerIndex())
		}
	})

	t.Run("empty hand draws at turn start", func(t *testing.T) {
		config := createTestConfig()
		config.Replenish = ReplenishEmptyHand
		gs, err := NewGameState(config)
		if err != nil {
			t.Fatal(err)
		}
		gs.Players[1].Hand = []Card{}
		giveHand(t, gs, Ace)

		if err := gs.PlayCard(0, nil); err != nil {
			t.Fatal(err)
		}
		if gs.GetCurrentPlayerIndex() != 1 || len(gs.Players[1].Hand) != 4 {
			t.Errorf("Expected seat 1 to draw 4 cards, got seat %d with %d", gs.GetCurrentPlayerIndex(), len(gs.Players[1].Hand))
		}
	})

	t.Run("deck refills from fire pit", func(t *testing.T) {
		gs := createTestGame(t)
		p := gs.Players[0]
		gs.FirePit = append(gs.FirePit, gs.Deck.Draw(gs.Deck.Size()-2)...)
		p.Hand = []Card{}
		before := totalCards(gs)

		gs.deal(p)
		if len(p.Hand) != 4 {
			t.Errorf("Expected a full hand, got %d", len(p.Hand))
		}
		if len(gs.FirePit) != 0 {
			t.Errorf("Expected fire pit emptied into the deck, got %d", len(gs.FirePit))
		}
		if totalCards(gs) != before {
			t.Errorf("Expected card count %d to be conserved, got %d", before, totalCards(gs))
		}
	})
}

func TestGameOver_Home(t *testing.T) {
	gs := createTestGame(t)
	placeInSafe(t, gs.Board, red0, 1)
	placeInSafe(t, gs.Board, red1, 2)
	placeInSafe(t, gs.Board, red2, 3)
	placeOnTrack(t, gs.Board, red3, 48)
	giveHand(t, gs, 3, 5)

	if gs.IsGameOver() {
		t.Fatal("Expected game to be running")
	}
	if err := gs.PlayCard(0, []int{red3}); err != nil {
		t.Fatalf("Expected winning move to succeed: %v", err)
	}
	if !gs.IsGameOver() || gs.Winner != Red || gs.Phase != GameOverPhase {
		t.Errorf("Expected red to win, got over=%v winner=%q phase=%s", gs.GameOver, gs.Winner, gs.Phase)
	}
	if err := gs.PlayCard(0, nil); !errors.Is(err, ErrGameOver) {
		t.Errorf("Expected ErrGameOver, got %v", err)
	}
	if err := gs.PassTurn(0); !errors.Is(err, ErrGameOver) {
		t.Errorf("Expected ErrGameOver, got %v", err)
	}
	if gs.LegalPlays() != nil {
		t.Error("Expected no legal plays after the game ended")
	}
}

func TestGameOver_Firepit(t *testing.T) {
	config := createTestConfig()
	config.WinCondition = WinFirepit
	gs, err := NewGameState(config)
	if err != nil {
		t.Fatal(err)
	}
	placeOnTrack(t, gs.Board, red0, 10)
	gs.Players[0].HasFielded = true
	gs.CurrentPlayerIndex = 1
	giveHand(t, gs, CodeBurner)

	if gs.IsGameOver() {
		t.Fatal("Expected game to be running")
	}
	if err := gs.PlayCard(0, []int{red0}); err != nil {
		t.Fatalf("Expected burner to succeed: %v", err)
	}
	if !gs.IsGameOver() || gs.Eliminated != Red || gs.Winner != "" {
		t.Errorf("Expected red eliminated without winner, got over=%v eliminated=%q winner=%q",
			gs.GameOver, gs.Eliminated, gs.Winner)
	}
}

func TestGameState_JSONRoundTrip(t *testing.T) {
	gs := createTestGame(t)
	placeOnTrack(t, gs.Board, red0, 5)
	giveHand(t, gs, 3, Queen)

	data, err := json.Marshal(gs)
	if err != nil {
		t.Fatalf("Failed to marshal: %v", err)
	}
	var restored GameState
	if err := json.Unmarshal(data, &restored); err != nil {
		t.Fatalf("Failed to unmarshal: %v", err)
	}

	if err := gs.PlayCard(1, nil); err != nil {
		t.Fatal(err)
	}
	if err := restored.PlayCard(1, nil); err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(gs.Players[1].Hand, restored.Players[1].Hand) ||
		!reflect.DeepEqual(gs.Players[2].Hand, restored.Players[2].Hand) ||
		!reflect.DeepEqual(gs.Players[3].Hand, restored.Players[3].Hand) {
		t.Error("Expected a restored game to replay the same random discard")
	}
	assertBoardConsistent(t, restored.Board)
}
