package game

import (
	"strings"

	"github.com/minaorangina/seashooter/protocol"
)

// Orientation is the axis a ship extends along from its anchor
type Orientation int

const (
	Horizontal Orientation = iota
	Vertical
)

func (o Orientation) String() string {
	if o == Vertical {
		return "vertical"
	}
	return "horizontal"
}

// ShipType is a roster entry: a named ship and how many remain to be placed
type ShipType struct {
	Name   string
	Length int
	Count  int
}

// PlacedShip is a ship on the own board
type PlacedShip struct {
	Name        string
	Coordinates []protocol.Coordinate
}

// DefaultRoster returns the fleet every player places before play begins
func DefaultRoster() []ShipType {
	return []ShipType{
		{Name: "Carrier", Length: 5, Count: 1},
		{Name: "Battleship", Length: 4, Count: 1},
		{Name: "Cruiser", Length: 3, Count: 1},
		{Name: "Submarine", Length: 3, Count: 1},
		{Name: "Destroyer", Length: 2, Count: 1},
	}
}

// TotalShips is the number of ships in the default roster
func TotalShips() int {
	total := 0
	for _, s := range DefaultRoster() {
		total += s.Count
	}
	return total
}

// ShipCoordinates extends length cells from the anchor along the orientation axis.
// The result may fall outside the board.
func ShipCoordinates(x, y, length int, o Orientation) []protocol.Coordinate {
	coords := make([]protocol.Coordinate, 0, length)
	for i := 0; i < length; i++ {
		if o == Horizontal {
			coords = append(coords, protocol.Coordinate{X: x + i, Y: y})
		} else {
			coords = append(coords, protocol.Coordinate{X: x, Y: y + i})
		}
	}
	return coords
}

func remaining(roster []ShipType) int {
	n := 0
	for _, s := range roster {
		n += s.Count
	}
	return n
}

func findShipType(roster []ShipType, name string) int {
	for i, s := range roster {
		if strings.EqualFold(s.Name, name) {
			return i
		}
	}
	return -1
}
