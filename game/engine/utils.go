package engine

// BuildBoardView projects the board into the shape renderers consume
func BuildBoardView(b *Board) BoardView {
	view := BoardView{
		Track:     make([]CellView, len(b.Track)),
		SafeZones: make(map[Colour][]CellView, len(b.SafeZones)),
		Bases:     make(map[Colour][]int, len(b.Colours)),
	}
	for i, cell := range b.Track {
		view.Track[i] = cellView(b, i, cell)
	}
	for c, zone := range b.SafeZones {
		cells := make([]CellView, len(zone))
		for i, cell := range zone {
			cells[i] = cellView(b, i, cell)
		}
		view.SafeZones[c] = cells
	}
	for _, c := range b.Colours {
		view.Bases[c] = []int{}
	}
	for _, m := range b.Marbles {
		if m.Location.Kind == InBase {
			view.Bases[m.Colour] = append(view.Bases[m.Colour], m.ID)
		}
	}
	return view
}

func cellView(b *Board, idx int, cell Cell) CellView {
	v := CellView{Index: idx, Type: cell.Type, Owner: cell.Owner, Trap: cell.Trap}
	if cell.Occupant != nil {
		m := b.Marbles[*cell.Occupant]
		v.Marble = &m
	}
	return v
}

// CountMarbles counts the marbles of colour c at the given kind of location
func CountMarbles(b *Board, c Colour, kind LocationKind) int {
	count := 0
	for _, m := range b.Marbles {
		if m.Colour == c && m.Location.Kind == kind {
			count++
		}
	}
	return count
}

// StepsToEntry returns how many forward steps separate a track index from the
// ENTRY cell of colour c.
func StepsToEntry(b *Board, c Colour, from int) int {
	n := len(b.Track)
	return ((b.EntryIndex(c)-from)%n + n) % n
}

// Progress sums how far each marble of colour c has come: 0 in base, steps
// travelled on the track, and track distance plus depth inside the safe zone.
func Progress(b *Board, c Colour) int {
	lap := len(b.Track) - b.EntryGap
	total := 0
	for _, m := range b.Marbles {
		if m.Colour != c {
			continue
		}
		switch m.Location.Kind {
		case OnTrack:
			total += lap - StepsToEntry(b, c, m.Location.Index)
		case InSafe:
			total += lap + 1 + m.Location.Index
		}
	}
	return total
}

// CountCards tallies a hand or pile by card name
func CountCards(cards []Card) map[string]int {
	counts := make(map[string]int)
	for _, c := range cards {
		counts[c.Name]++
	}
	return counts
}
