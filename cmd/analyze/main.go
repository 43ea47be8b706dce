// Command analyze prints quick, human-readable heuristics about the rule
// configurations in a directory (configs by default, or the first argument).
// It summarizes the board topology, where each colour fields and turns home,
// the deck composition, and flags tables where an opening hand is likely to
// hold no card that can field a marble.
package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/wricardo/mcp-training/jackaroo/game/engine"
)

// SeatLayout is where one colour's fixed cells sit on the track
type SeatLayout struct {
	Colour engine.Colour
	Base   int
	Entry  int
	// Lap is the number of steps from the BASE cell to the ENTRY cell
	Lap int
}

// DeckSummary breaks a deck down by what the cards can do
type DeckSummary struct {
	Size     int
	Fielders int // Aces and Kings
	Movers   int // any card that moves a marble forward a fixed distance
	Wild     int
	ByName   map[string]int
}

// Analysis is everything analyze reports for one config
type Analysis struct {
	Name        string
	TrackLength int
	SafeZone    int
	Seats       []SeatLayout
	Deck        DeckSummary
	HandSize    int
	// NoFielderOdds is the chance an opening hand holds neither Ace nor King
	NoFielderOdds float64
}

func main() {
	dir := "configs"
	if len(os.Args) > 1 {
		dir = os.Args[1]
	}

	files, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil || len(files) == 0 {
		fmt.Printf("No config files found in %s\n", dir)
		os.Exit(1)
	}
	sort.Strings(files)

	for _, configFile := range files {
		fmt.Printf("\n=== Analyzing %s ===\n", filepath.Base(configFile))
		if err := analyzeConfig(configFile, os.Stdout); err != nil {
			fmt.Printf("Error: %v\n", err)
		}
	}
}

func analyzeConfig(path string, w io.Writer) error {
	config, err := engine.LoadGameConfig(path)
	if err != nil {
		return err
	}
	analysis, err := analyze(config)
	if err != nil {
		return err
	}
	report(w, analysis)
	return nil
}

func analyze(config *engine.GameConfig) (*Analysis, error) {
	eng, err := engine.NewEngine(config)
	if err != nil {
		return nil, err
	}
	board := eng.GetState().Board
	cards, err := config.Cards()
	if err != nil {
		return nil, err
	}

	a := &Analysis{
		Name:        config.Name,
		TrackLength: len(board.Track),
		SafeZone:    config.SafeZoneLength,
		HandSize:    config.HandSize,
		Deck:        summarizeDeck(cards),
	}
	for _, c := range board.Colours {
		base, entry := board.BaseIndex(c), board.EntryIndex(c)
		a.Seats = append(a.Seats, SeatLayout{
			Colour: c,
			Base:   base,
			Entry:  entry,
			Lap:    (entry - base + a.TrackLength) % a.TrackLength,
		})
	}
	a.NoFielderOdds = missOdds(a.Deck.Size, a.Deck.Fielders, a.HandSize)
	return a, nil
}

func summarizeDeck(cards []engine.Card) DeckSummary {
	s := DeckSummary{Size: len(cards), ByName: make(map[string]int)}
	for _, c := range cards {
		s.ByName[c.Name]++
		switch {
		case c.Kind != engine.KindStandard:
			s.Wild++
		case c.Rank == engine.Ace || c.Rank == engine.King:
			s.Fielders++
			s.Movers++
		case c.Rank == engine.Four || c.Rank == engine.Jack:
		default:
			s.Movers++
		}
	}
	return s
}

// missOdds is the hypergeometric chance that a hand of n cards drawn from a
// deck of size cards holds none of the k marked ones.
func missOdds(size, k, n int) float64 {
	if n > size-k {
		return 0
	}
	p := 1.0
	for i := 0; i < n; i++ {
		p *= float64(size-k-i) / float64(size-i)
	}
	return p
}

func report(w io.Writer, a *Analysis) {
	fmt.Fprintf(w, "Name: %s\n", a.Name)
	fmt.Fprintf(w, "Track Length: %d\n", a.TrackLength)
	fmt.Fprintf(w, "Safe Zone: %d\n", a.SafeZone)
	for _, s := range a.Seats {
		fmt.Fprintf(w, "  %-6s BASE %3d  ENTRY %3d  lap %d steps\n", s.Colour, s.Base, s.Entry, s.Lap)
	}

	fmt.Fprintf(w, "Deck: %d cards (%d fielders, %d forward movers, %d wild)\n",
		a.Deck.Size, a.Deck.Fielders, a.Deck.Movers, a.Deck.Wild)
	names := make([]string, 0, len(a.Deck.ByName))
	for name := range a.Deck.ByName {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(w, "  %-7s x%d\n", name, a.Deck.ByName[name])
	}

	if a.NoFielderOdds > 0.25 {
		fmt.Fprintf(w, "⚠️  WARNING: %.0f%% of opening hands of %d cannot field a marble\n", a.NoFielderOdds*100, a.HandSize)
	} else {
		fmt.Fprintf(w, "✅ Opening hands without a fielder: %.1f%%\n", a.NoFielderOdds*100)
	}
}
