package engine

import (
	"errors"
	"math/rand"
	"sort"
	"sync"

	"github.com/minaorangina/seashooter/protocol"
)

// BoardSize is the width and height of every board
const BoardSize = 10

var (
	ErrGameFull        = errors.New("game already has two players")
	ErrAlreadyJoined   = errors.New("player is already in this game")
	ErrUnknownPlayer   = errors.New("player is not in this game")
	ErrNotPlacing      = errors.New("ships can only be placed before play starts")
	ErrFleetPlaced     = errors.New("ships have already been placed")
	ErrInvalidFleet    = errors.New("invalid fleet")
	ErrNotStarted      = errors.New("game has not started")
	ErrNotYourTurn     = errors.New("not your turn")
	ErrOutOfBounds     = errors.New("coordinates out of bounds")
	ErrAlreadyTargeted = errors.New("cell has already been targeted")
	ErrGameOver        = errors.New("game is already over")
)

// fleetLengths is the sorted list of ship lengths every fleet must contain
var fleetLengths = []int{2, 3, 3, 4, 5}

// PlayState represents the state of a match
// idle -> waiting for a second player
// placing -> both players are placing ships
// inProgress -> shots are being fired
// over -> a player has won
type PlayState int

const (
	Idle PlayState = iota
	Placing
	InProgress
	Over
)

func (ps PlayState) String() string {
	switch ps {
	case Idle:
		return "idle"
	case Placing:
		return "placing"
	case InProgress:
		return "inProgress"
	case Over:
		return "over"
	}
	return ""
}

type ship struct {
	cells map[protocol.Coordinate]bool
	hits  int
}

func (s *ship) sunk() bool {
	return s.hits == len(s.cells)
}

type fleet []*ship

func (f fleet) at(c protocol.Coordinate) *ship {
	for _, s := range f {
		if s.cells[c] {
			return s
		}
	}
	return nil
}

func (f fleet) sunk() bool {
	for _, s := range f {
		if !s.sunk() {
			return false
		}
	}
	return true
}

// ShotOutcome is the authority's ruling on a shot
type ShotOutcome struct {
	Hit    bool
	Sunk   bool
	Winner string
	// Turn is the player to fire next; empty once the game is won
	Turn string
}

// Match is the authoritative record of one game between two players
type Match struct {
	mu        sync.Mutex
	id        string
	creatorID string
	players   []string
	fleets    map[string]fleet
	shots     map[string]map[protocol.Coordinate]bool
	turn      string
	winner    string
	playState PlayState
	pick      func(n int) int
}

// NewMatch constructs a match waiting for a second player
func NewMatch(gameID, creatorID string) *Match {
	return &Match{
		id:        gameID,
		creatorID: creatorID,
		players:   []string{creatorID},
		fleets:    map[string]fleet{},
		shots:     map[string]map[protocol.Coordinate]bool{creatorID: {}},
		pick:      rand.Intn,
	}
}

func (m *Match) ID() string {
	return m.id
}

func (m *Match) CreatorID() string {
	return m.creatorID
}

func (m *Match) PlayState() PlayState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.playState
}

func (m *Match) Turn() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.turn
}

func (m *Match) Winner() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.winner
}

// Players returns the IDs of everyone in the match, creator first
func (m *Match) Players() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	ps := make([]string, len(m.players))
	copy(ps, m.players)
	return ps
}

// Opponent returns the other player's ID, or "" if there is none
func (m *Match) Opponent(playerID string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.opponent(playerID)
}

func (m *Match) opponent(playerID string) string {
	for _, p := range m.players {
		if p != playerID {
			return p
		}
	}
	return ""
}

func (m *Match) has(playerID string) bool {
	for _, p := range m.players {
		if p == playerID {
			return true
		}
	}
	return false
}

// Join adds the second player and picks who fires first
func (m *Match) Join(playerID string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.has(playerID) {
		return "", ErrAlreadyJoined
	}
	if m.playState != Idle {
		return "", ErrGameFull
	}

	m.players = append(m.players, playerID)
	m.shots[playerID] = map[protocol.Coordinate]bool{}
	m.turn = m.players[m.pick(len(m.players))]
	m.playState = Placing

	return m.turn, nil
}

// PlaceFleet records a player's ships. It reports whether both fleets
// are now placed, in which case play begins.
func (m *Match) PlaceFleet(playerID string, ships []protocol.Ship) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.has(playerID) {
		return false, ErrUnknownPlayer
	}
	if m.playState != Placing {
		return false, ErrNotPlacing
	}
	if _, ok := m.fleets[playerID]; ok {
		return false, ErrFleetPlaced
	}

	f, err := buildFleet(ships)
	if err != nil {
		return false, err
	}
	m.fleets[playerID] = f

	if len(m.fleets) < 2 {
		return false, nil
	}
	m.playState = InProgress
	return true, nil
}

// Fire resolves a shot at the opponent's fleet. The turn passes to the
// opponent after every shot that does not win the game.
func (m *Match) Fire(playerID string, x, y int) (ShotOutcome, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.has(playerID) {
		return ShotOutcome{}, ErrUnknownPlayer
	}
	switch m.playState {
	case Over:
		return ShotOutcome{}, ErrGameOver
	case InProgress:
	default:
		return ShotOutcome{}, ErrNotStarted
	}
	if m.turn != playerID {
		return ShotOutcome{}, ErrNotYourTurn
	}
	if !inBounds(x, y) {
		return ShotOutcome{}, ErrOutOfBounds
	}

	target := protocol.Coordinate{X: x, Y: y}
	if m.shots[playerID][target] {
		return ShotOutcome{}, ErrAlreadyTargeted
	}
	m.shots[playerID][target] = true

	opponentID := m.opponent(playerID)
	outcome := ShotOutcome{}
	opponentFleet := m.fleets[opponentID]
	if s := opponentFleet.at(target); s != nil {
		s.hits++
		outcome.Hit = true
		outcome.Sunk = s.sunk()
	}

	if opponentFleet.sunk() {
		m.winner = playerID
		m.turn = ""
		m.playState = Over
		outcome.Winner = playerID
		return outcome, nil
	}

	m.turn = opponentID
	outcome.Turn = opponentID
	return outcome, nil
}

func inBounds(x, y int) bool {
	return x >= 0 && x < BoardSize && y >= 0 && y < BoardSize
}

// buildFleet checks the fleet is the standard roster of straight,
// contiguous, in-bounds and non-overlapping ships
func buildFleet(ships []protocol.Ship) (fleet, error) {
	if len(ships) != len(fleetLengths) {
		return nil, ErrInvalidFleet
	}

	lengths := []int{}
	occupied := map[protocol.Coordinate]bool{}
	f := fleet{}

	for _, s := range ships {
		if !straightAndContiguous(s.Coordinates) {
			return nil, ErrInvalidFleet
		}

		cells := map[protocol.Coordinate]bool{}
		for _, c := range s.Coordinates {
			if !inBounds(c.X, c.Y) || occupied[c] {
				return nil, ErrInvalidFleet
			}
			occupied[c] = true
			cells[c] = true
		}

		lengths = append(lengths, len(cells))
		f = append(f, &ship{cells: cells})
	}

	sort.Ints(lengths)
	for i := range lengths {
		if lengths[i] != fleetLengths[i] {
			return nil, ErrInvalidFleet
		}
	}

	return f, nil
}

func straightAndContiguous(coords []protocol.Coordinate) bool {
	if len(coords) == 0 {
		return false
	}

	sorted := make([]protocol.Coordinate, len(coords))
	copy(sorted, coords)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].X != sorted[j].X {
			return sorted[i].X < sorted[j].X
		}
		return sorted[i].Y < sorted[j].Y
	})

	horizontal, vertical := true, true
	for i := 1; i < len(sorted); i++ {
		prev, cur := sorted[i-1], sorted[i]
		if cur.Y != prev.Y || cur.X != prev.X+1 {
			horizontal = false
		}
		if cur.X != prev.X || cur.Y != prev.Y+1 {
			vertical = false
		}
	}

	return horizontal || vertical
}
