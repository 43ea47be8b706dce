package engine

import "fmt"

// BoardManager is the capability cards use to touch the board
type BoardManager interface {
	GetSplitDistance() int
	MoveBy(marble int, steps int, destroy bool) error
	Swap(a, b int) error
	DestroyMarble(marble int) error
	SendToBase(marble int) error
	SendToSafe(marble int) error
	GetActionableMarbles(colour Colour) []int
}

// BoardEventKind tags an entry in the board's commit log
type BoardEventKind string

const (
	EventMove      BoardEventKind = "move"
	EventCapture   BoardEventKind = "capture"
	EventFielded   BoardEventKind = "fielded"
	EventSafeEntry BoardEventKind = "safe_entry"
	EventSwap      BoardEventKind = "swap"
	EventTrap      BoardEventKind = "trap"
)

// BoardEvent records one committed change of a marble's location
type BoardEvent struct {
	Kind   BoardEventKind `json:"kind"`
	Marble int            `json:"marble"`
	From   Location       `json:"from"`
	To     Location       `json:"to"`
}

// Board owns the track, the safe zones and the marble arena. Marbles in Base
// occupy no cell.
type Board struct {
	Track         []Cell            `json:"track"`
	SafeZones     map[Colour][]Cell `json:"safe_zones"`
	Marbles       []Marble          `json:"marbles"`
	Colours       []Colour          `json:"colours"`
	Span          int               `json:"span"`
	EntryGap      int               `json:"entry_gap"`
	SplitDistance int               `json:"split_distance"`
	Dice          Dice              `json:"dice"`

	events []BoardEvent
}

// NewBoard lays out a board for the given seats. Each colour gets span track
// cells, a BASE cell at the start of its span and an ENTRY cell entryGap steps
// behind it.
func NewBoard(colours []Colour, span, safeLen, entryGap, marblesPerPlayer int) *Board {
	b := &Board{
		Track:         make([]Cell, len(colours)*span),
		SafeZones:     make(map[Colour][]Cell, len(colours)),
		Colours:       append([]Colour(nil), colours...),
		Span:          span,
		EntryGap:      entryGap,
		SplitDistance: DefaultSplitDist,
	}
	for i := range b.Track {
		b.Track[i] = Cell{Type: Normal}
	}
	for seat, c := range colours {
		b.Track[b.BaseIndex(c)] = Cell{Type: Base, Owner: c}
		b.Track[b.EntryIndex(c)] = Cell{Type: Entry, Owner: c}

		zone := make([]Cell, safeLen)
		for i := range zone {
			zone[i] = Cell{Type: Safe, Owner: c}
		}
		b.SafeZones[c] = zone

		for n := 0; n < marblesPerPlayer; n++ {
			b.Marbles = append(b.Marbles, Marble{
				ID:       len(b.Marbles),
				Colour:   c,
				Owner:    seat,
				Number:   n,
				Location: Location{Kind: InBase},
			})
		}
	}
	return b
}

// TrackLength returns the number of track cells
func (b *Board) TrackLength() int {
	return len(b.Track)
}

func (b *Board) seat(c Colour) int {
	for i, col := range b.Colours {
		if col == c {
			return i
		}
	}
	return -1
}

// BaseIndex returns the track index where marbles of colour c are fielded
func (b *Board) BaseIndex(c Colour) int {
	return b.seat(c) * b.Span
}

// EntryIndex returns the track index where marbles of colour c turn into their safe zone
func (b *Board) EntryIndex(c Colour) int {
	n := len(b.Track)
	return ((b.BaseIndex(c)-b.EntryGap)%n + n) % n
}

// Marble returns a copy of the marble with the given id
func (b *Board) Marble(id int) (Marble, error) {
	m, err := b.marble(id)
	if err != nil {
		return Marble{}, err
	}
	return *m, nil
}

func (b *Board) marble(id int) (*Marble, error) {
	if id < 0 || id >= len(b.Marbles) {
		return nil, fmt.Errorf("%w: no marble with id %d", ErrInvalidMarble, id)
	}
	return &b.Marbles[id], nil
}

// MarblesOf returns the ids of every marble of colour c
func (b *Board) MarblesOf(c Colour) []int {
	var ids []int
	for _, m := range b.Marbles {
		if m.Colour == c {
			ids = append(ids, m.ID)
		}
	}
	return ids
}

// TrackCells returns a copy of the track
func (b *Board) TrackCells() []Cell {
	return cloneCells(b.Track)
}

// SafeZoneCells returns a copy of the safe zone of colour c
func (b *Board) SafeZoneCells(c Colour) []Cell {
	return cloneCells(b.SafeZones[c])
}

// OccupantAt returns the marble standing at loc. Safe locations are resolved in
// the safe zone of colour c.
func (b *Board) OccupantAt(c Colour, loc Location) (Marble, bool) {
	cell := b.cellFor(c, loc)
	if cell == nil || cell.Empty() {
		return Marble{}, false
	}
	return b.Marbles[*cell.Occupant], true
}

func (b *Board) cellFor(c Colour, loc Location) *Cell {
	switch loc.Kind {
	case OnTrack:
		if loc.Index < 0 || loc.Index >= len(b.Track) {
			return nil
		}
		return &b.Track[loc.Index]
	case InSafe:
		zone := b.SafeZones[c]
		if loc.Index < 0 || loc.Index >= len(zone) {
			return nil
		}
		return &zone[loc.Index]
	}
	return nil
}

// Place puts a marble at loc directly, bypassing movement rules. It is meant
// for setting up positions and fails if the target cell is taken.
func (b *Board) Place(id int, loc Location) error {
	m, err := b.marble(id)
	if err != nil {
		return err
	}
	if loc.Kind != InBase {
		cell := b.cellFor(m.Colour, loc)
		if cell == nil {
			return fmt.Errorf("%w: %s is off the board", ErrIllegalMovement, loc)
		}
		if !cell.Empty() && *cell.Occupant != id {
			return fmt.Errorf("%w: %s is occupied", ErrIllegalMovement, loc)
		}
	}
	b.relocate(m, loc)
	return nil
}

// GetSplitDistance returns the number of steps the first marble of a Seven split takes
func (b *Board) GetSplitDistance() int {
	return b.SplitDistance
}

// SetSplitDistance configures the Seven split point
func (b *Board) SetSplitDistance(n int) error {
	if n < 0 || n > SevenSteps {
		return fmt.Errorf("%w: %d not in [0,%d]", ErrSplitOutOfRange, n, SevenSteps)
	}
	b.SplitDistance = n
	return nil
}

// GetActionableMarbles returns the marbles of colour c that a card could act on:
// those on the track or in their safe zone.
func (b *Board) GetActionableMarbles(c Colour) []int {
	var ids []int
	for _, m := range b.Marbles {
		if m.Colour == c && m.Location.Kind != InBase {
			ids = append(ids, m.ID)
		}
	}
	return ids
}

// tracePath returns every location the marble visits, starting with its
// current one. Forward movement turns into the safe zone at the marble's
// ENTRY cell.
func (b *Board) tracePath(m *Marble, steps int) ([]Location, error) {
	if m.Location.Kind == InBase {
		return nil, fmt.Errorf("%w: %s is in base", ErrIllegalMovement, m)
	}
	if steps < 0 && m.Location.Kind == InSafe {
		return nil, fmt.Errorf("%w: %s cannot leave its safe zone", ErrIllegalMovement, m)
	}

	n := len(b.Track)
	entry := b.EntryIndex(m.Colour)
	safeLen := len(b.SafeZones[m.Colour])

	loc := m.Location
	path := []Location{loc}
	if steps < 0 {
		for s := 0; s < -steps; s++ {
			loc = Location{Kind: OnTrack, Index: (loc.Index - 1 + n) % n}
			path = append(path, loc)
		}
		return path, nil
	}

	for s := 0; s < steps; s++ {
		switch {
		case loc.Kind == OnTrack && loc.Index == entry:
			loc = Location{Kind: InSafe, Index: 0}
		case loc.Kind == OnTrack:
			loc = Location{Kind: OnTrack, Index: (loc.Index + 1) % n}
		default:
			loc = Location{Kind: InSafe, Index: loc.Index + 1}
		}
		if loc.Kind == InSafe && loc.Index >= safeLen {
			return nil, fmt.Errorf("%w: %s would overshoot its safe zone by %d", ErrIllegalMovement, m, steps-s)
		}
		path = append(path, loc)
	}
	return path, nil
}

// validatePath checks a traced path against the blocking rules without
// touching the board.
func (b *Board) validatePath(m *Marble, path []Location, destroy bool) error {
	if len(path) < 2 {
		return fmt.Errorf("%w: empty path for %s", ErrIllegalMovement, m)
	}

	// Another marble on the mover's own entry cell blocks any path through or
	// onto it, in either direction.
	entry := b.EntryIndex(m.Colour)
	for _, loc := range path[1:] {
		if loc.Kind != OnTrack || loc.Index != entry {
			continue
		}
		if cell := &b.Track[entry]; !cell.Empty() && *cell.Occupant != m.ID {
			return fmt.Errorf("%w: entry cell of %s is taken by %s", ErrIllegalMovement, m.Colour, b.Marbles[*cell.Occupant])
		}
	}

	opposing := 0
	for i := 1; i < len(path)-1; i++ {
		loc := path[i]
		cell := b.cellFor(m.Colour, loc)
		if cell.Empty() || *cell.Occupant == m.ID {
			continue
		}
		other := b.Marbles[*cell.Occupant]

		if loc.Kind == InSafe {
			return fmt.Errorf("%w: %s blocks the safe zone", ErrIllegalMovement, other)
		}
		if other.Colour == m.Colour {
			if !destroy {
				return fmt.Errorf("%w: %s cannot pass own marble %s", ErrIllegalMovement, m, other)
			}
			continue
		}
		if cell.Type == Base && !destroy {
			return fmt.Errorf("%w: %s is protected on a base cell", ErrIllegalMovement, other)
		}
		opposing++
	}
	if opposing >= 2 {
		return fmt.Errorf("%w: %d opposing marbles block the path of %s", ErrIllegalMovement, opposing, m)
	}

	dest := path[len(path)-1]
	cell := b.cellFor(m.Colour, dest)
	if cell.Empty() || *cell.Occupant == m.ID {
		return nil
	}
	other := b.Marbles[*cell.Occupant]
	switch {
	case dest.Kind == InSafe:
		return fmt.Errorf("%w: safe cell %s is taken by %s", ErrIllegalMovement, dest, other)
	case other.Colour == m.Colour && !destroy:
		return fmt.Errorf("%w: %s cannot land on own marble %s", ErrIllegalMovement, m, other)
	case other.Colour != m.Colour && cell.Type == Base && !destroy:
		return fmt.Errorf("%w: %s is protected on a base cell", ErrIllegalMovement, other)
	}
	return nil
}

// commitPath applies a validated path
func (b *Board) commitPath(m *Marble, path []Location, destroy bool) {
	if destroy {
		for _, loc := range path[1 : len(path)-1] {
			if loc.Kind != OnTrack {
				continue
			}
			if cell := &b.Track[loc.Index]; !cell.Empty() && *cell.Occupant != m.ID {
				b.sendHome(*cell.Occupant)
			}
		}
	}

	dest := path[len(path)-1]
	cell := b.cellFor(m.Colour, dest)
	if !cell.Empty() && *cell.Occupant != m.ID {
		b.sendHome(*cell.Occupant)
	}

	from := m.Location
	b.relocate(m, dest)
	kind := EventMove
	if from.Kind == OnTrack && dest.Kind == InSafe {
		kind = EventSafeEntry
	}
	b.record(kind, m.ID, from, dest)

	if cell.Trap {
		b.sendHome(m.ID)
		b.moveTrap(dest.Index)
		b.record(EventTrap, m.ID, dest, m.Location)
	}
}

// MoveBy moves a marble steps cells forward, or backward when steps is
// negative. With destroy set every marble passed or landed on is sent home.
func (b *Board) MoveBy(id int, steps int, destroy bool) error {
	m, err := b.marble(id)
	if err != nil {
		return err
	}
	if steps == 0 {
		return nil
	}

	path, err := b.tracePath(m, steps)
	if err != nil {
		return err
	}
	if err := b.validatePath(m, path, destroy); err != nil {
		return err
	}
	b.commitPath(m, path, destroy)
	return nil
}

// Swap exchanges the positions of two marbles on the track
func (b *Board) Swap(a, c int) error {
	ma, err := b.marble(a)
	if err != nil {
		return err
	}
	mc, err := b.marble(c)
	if err != nil {
		return err
	}
	if a == c {
		return fmt.Errorf("%w: cannot swap %s with itself", ErrIllegalSwap, ma)
	}
	for _, m := range []*Marble{ma, mc} {
		if m.Location.Kind != OnTrack {
			return fmt.Errorf("%w: %s is not on the track", ErrIllegalSwap, m)
		}
	}
	for _, m := range []*Marble{ma, mc} {
		if m.Colour != ma.Colour && b.onOwnBase(m) {
			return fmt.Errorf("%w: %s is protected on its base cell", ErrIllegalSwap, m)
		}
	}

	la, lc := ma.Location, mc.Location
	b.Track[la.Index].Occupant = intPtr(c)
	b.Track[lc.Index].Occupant = intPtr(a)
	ma.Location, mc.Location = lc, la
	b.record(EventSwap, a, la, lc)
	b.record(EventSwap, c, lc, la)
	return nil
}

// DestroyMarble sends a marble on the track back to its base
func (b *Board) DestroyMarble(id int) error {
	m, err := b.marble(id)
	if err != nil {
		return err
	}
	if m.Location.Kind != OnTrack {
		return fmt.Errorf("%w: %s is not on the track", ErrIllegalDestroy, m)
	}
	if b.onOwnBase(m) {
		return fmt.Errorf("%w: %s is protected on its base cell", ErrIllegalDestroy, m)
	}
	b.sendHome(id)
	return nil
}

// SendToBase fields a marble from its base onto its BASE cell. An opponent
// standing there is captured.
func (b *Board) SendToBase(id int) error {
	m, err := b.marble(id)
	if err != nil {
		return err
	}
	if m.Location.Kind != InBase {
		return fmt.Errorf("%w: %s is already in play", ErrCannotField, m)
	}

	idx := b.BaseIndex(m.Colour)
	cell := &b.Track[idx]
	if !cell.Empty() {
		other := b.Marbles[*cell.Occupant]
		if other.Colour == m.Colour {
			return fmt.Errorf("%w: base cell of %s is taken by %s", ErrCannotField, m.Colour, other)
		}
		b.sendHome(other.ID)
	}

	from := m.Location
	b.relocate(m, Location{Kind: OnTrack, Index: idx})
	b.record(EventFielded, id, from, m.Location)
	return nil
}

// SendToSafe moves a marble on the track straight into the first free cell of
// its safe zone.
func (b *Board) SendToSafe(id int) error {
	m, err := b.marble(id)
	if err != nil {
		return err
	}
	if m.Location.Kind != OnTrack {
		return fmt.Errorf("%w: %s is not on the track", ErrInvalidMarble, m)
	}
	for i, cell := range b.SafeZones[m.Colour] {
		if !cell.Empty() {
			continue
		}
		from := m.Location
		b.relocate(m, Location{Kind: InSafe, Index: i})
		b.record(EventSafeEntry, id, from, m.Location)
		return nil
	}
	return fmt.Errorf("%w: safe zone of %s is full", ErrInvalidMarble, m.Colour)
}

func (b *Board) onOwnBase(m *Marble) bool {
	return m.Location.Kind == OnTrack && m.Location.Index == b.BaseIndex(m.Colour)
}

// sendHome returns a marble to its base
func (b *Board) sendHome(id int) {
	m := &b.Marbles[id]
	from := m.Location
	b.relocate(m, Location{Kind: InBase})
	b.record(EventCapture, id, from, m.Location)
}

func (b *Board) relocate(m *Marble, loc Location) {
	if old := b.cellFor(m.Colour, m.Location); old != nil && !old.Empty() && *old.Occupant == m.ID {
		old.Occupant = nil
	}
	m.Location = loc
	if cell := b.cellFor(m.Colour, loc); cell != nil {
		cell.Occupant = intPtr(m.ID)
	}
}

func (b *Board) record(kind BoardEventKind, id int, from, to Location) {
	b.events = append(b.events, BoardEvent{Kind: kind, Marble: id, From: from, To: to})
}

// DrainEvents returns and clears the commit log
func (b *Board) DrainEvents() []BoardEvent {
	events := b.events
	b.events = nil
	return events
}

// PlaceTraps arms n random empty normal cells
func (b *Board) PlaceTraps(n int) {
	for i := 0; i < n; i++ {
		if idx, ok := b.randomFreeCell(-1); ok {
			b.Track[idx].Trap = true
		}
	}
}

func (b *Board) moveTrap(from int) {
	b.Track[from].Trap = false
	if idx, ok := b.randomFreeCell(from); ok {
		b.Track[idx].Trap = true
	}
}

func (b *Board) randomFreeCell(exclude int) (int, bool) {
	var free []int
	for i, cell := range b.Track {
		if i != exclude && cell.Type == Normal && cell.Empty() && !cell.Trap {
			free = append(free, i)
		}
	}
	if len(free) == 0 {
		return 0, false
	}
	return free[b.Dice.Intn(len(free))], true
}

// Clone returns a deep copy of the board
func (b *Board) Clone() *Board {
	c := *b
	c.Track = cloneCells(b.Track)
	c.SafeZones = make(map[Colour][]Cell, len(b.SafeZones))
	for col, zone := range b.SafeZones {
		c.SafeZones[col] = cloneCells(zone)
	}
	c.Marbles = append([]Marble(nil), b.Marbles...)
	c.Colours = append([]Colour(nil), b.Colours...)
	c.events = append([]BoardEvent(nil), b.events...)
	return &c
}

func cloneCells(cells []Cell) []Cell {
	out := make([]Cell, len(cells))
	for i, cell := range cells {
		out[i] = cell
		if cell.Occupant != nil {
			out[i].Occupant = intPtr(*cell.Occupant)
		}
	}
	return out
}

func intPtr(v int) *int {
	return &v
}
