package game

import "github.com/minaorangina/seashooter/protocol"

// BoardSize is the width and height of every board
const BoardSize = 10

// Cell is the state of one board square
type Cell int

const (
	Empty Cell = iota
	Ship
	Miss
	Hit
)

func (c Cell) String() string {
	switch c {
	case Empty:
		return "empty"
	case Ship:
		return "ship"
	case Miss:
		return "miss"
	case Hit:
		return "hit"
	}
	return "unknown"
}

// Resolved reports whether a shot has already landed on the cell
func (c Cell) Resolved() bool {
	return c == Hit || c == Miss
}

// Board is a fixed grid indexed [y][x]
type Board [BoardSize][BoardSize]Cell

// InBounds reports whether x and y address a cell
func InBounds(x, y int) bool {
	return x >= 0 && x < BoardSize && y >= 0 && y < BoardSize
}

// At returns the cell at x, y. Out of bounds cells read as Empty.
func (b Board) At(x, y int) Cell {
	if !InBounds(x, y) {
		return Empty
	}
	return b[y][x]
}

func (b *Board) set(x, y int, c Cell) {
	b[y][x] = c
}

// Count returns the number of cells in state c
func (b Board) Count(c Cell) int {
	n := 0
	for y := range b {
		for x := range b[y] {
			if b[y][x] == c {
				n++
			}
		}
	}
	return n
}

// allEmpty reports whether every coordinate is in bounds and Empty
func (b *Board) allEmpty(coords []protocol.Coordinate) bool {
	for _, c := range coords {
		if !InBounds(c.X, c.Y) {
			return false
		}
	}
	for _, c := range coords {
		if b.At(c.X, c.Y) != Empty {
			return false
		}
	}
	return true
}

// withoutShips returns a copy of the board with ship cells shown as Empty
func (b Board) withoutShips() Board {
	for y := range b {
		for x := range b[y] {
			if b[y][x] == Ship {
				b[y][x] = Empty
			}
		}
	}
	return b
}
