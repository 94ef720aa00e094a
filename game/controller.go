package game

import (
	"errors"
	"fmt"
	"strings"

	"github.com/minaorangina/seashooter/protocol"
)

var (
	ErrWrongStage       = errors.New("not allowed at this stage of the game")
	ErrMissingGameID    = errors.New("missing game ID")
	ErrNoShipSelected   = errors.New("no ship selected")
	ErrShipUnavailable  = errors.New("ship is not available to place")
	ErrInvalidPlacement = errors.New("invalid placement")
	ErrFleetIncomplete  = errors.New("all ships must be placed first")
	ErrRequestPending   = errors.New("request is awaiting acknowledgement")
	ErrUnknownAck       = errors.New("acknowledgement does not match a pending request")
	ErrUnexpectedEvent  = errors.New("event not expected at this stage of the game")
	ErrCellResolved     = errors.New("cell has already been targeted")
	ErrOutOfBounds      = errors.New("coordinates out of bounds")
)

const (
	invalidPlacementText = "Invalid placement"
	yourTurnText         = "Your turn"
	opponentTurnText     = "Opponent turn"
	youWonText           = "You won!"
	youLostText          = "You lost!"
	playerLeftText       = "Opponent left. Returning to lobby."
	timedOutText         = "%s timed out. Please try again."
)

// Controller is the game-flow state machine for one player.
// It mirrors the authority's decisions and never decides the legality
// of an opponent's move. A Controller is not safe for concurrent use:
// every call must come from the same serialized event loop.
type Controller struct {
	selfID string

	stage    Stage
	status   string
	gameID   string
	turnID   string
	winnerID string

	own      Board
	opponent Board

	roster      []ShipType
	placed      []PlacedShip
	selected    int
	orientation Orientation

	pending map[string]protocol.Cmd
}

// NewController constructs a Controller in the lobby.
// selfID is the identity the transport was assigned on connect.
func NewController(selfID string) *Controller {
	c := &Controller{selfID: selfID}
	c.Reset()
	return c
}

// Reset discards the whole session and returns to the lobby
func (c *Controller) Reset() {
	c.stage = Lobby
	c.status = ""
	c.gameID = ""
	c.turnID = ""
	c.winnerID = ""
	c.pending = map[string]protocol.Cmd{}
	c.resetFleet()
}

func (c *Controller) resetFleet() {
	c.own = Board{}
	c.opponent = Board{}
	c.roster = DefaultRoster()
	c.placed = []PlacedShip{}
	c.selected = -1
	c.orientation = Horizontal
}

func (c *Controller) SelfID() string {
	return c.selfID
}

func (c *Controller) Stage() Stage {
	return c.stage
}

func (c *Controller) Status() string {
	return c.status
}

// Pending returns the number of requests awaiting acknowledgement
func (c *Controller) Pending() int {
	return len(c.pending)
}

// SetGameID records the ID of a game to join
func (c *Controller) SetGameID(id string) error {
	if c.stage != Lobby {
		return ErrWrongStage
	}
	c.gameID = strings.ToUpper(strings.TrimSpace(id))
	return nil
}

// CreateGame asks the authority for a new game
func (c *Controller) CreateGame() (*protocol.Request, error) {
	if c.stage != Lobby {
		return nil, ErrWrongStage
	}
	return c.request(protocol.CmdCreateGame, nil)
}

// JoinGame asks to join the game set with SetGameID
func (c *Controller) JoinGame() (*protocol.Request, error) {
	if c.stage != Lobby {
		return nil, ErrWrongStage
	}
	if c.gameID == "" {
		return nil, ErrMissingGameID
	}
	return c.request(protocol.CmdJoinGame, protocol.JoinGamePayload{GameID: c.gameID})
}

// SelectShip chooses the roster entry the next PlaceShip will use
func (c *Controller) SelectShip(name string) error {
	if c.stage != PlaceShips {
		return ErrWrongStage
	}
	idx := findShipType(c.roster, name)
	if idx < 0 || c.roster[idx].Count == 0 {
		return fmt.Errorf("%w: %q", ErrShipUnavailable, name)
	}
	c.selected = idx
	return nil
}

// ToggleOrientation switches between horizontal and vertical placement
func (c *Controller) ToggleOrientation() Orientation {
	if c.orientation == Horizontal {
		c.orientation = Vertical
	} else {
		c.orientation = Horizontal
	}
	return c.orientation
}

// PlaceShip places the selected ship with its first cell at x, y.
// A rejected placement leaves the board untouched.
func (c *Controller) PlaceShip(x, y int) error {
	if c.stage != PlaceShips {
		return ErrWrongStage
	}
	if c.selected < 0 {
		return ErrNoShipSelected
	}

	shipType := &c.roster[c.selected]
	coords := ShipCoordinates(x, y, shipType.Length, c.orientation)
	if !c.own.allEmpty(coords) {
		c.status = invalidPlacementText
		return ErrInvalidPlacement
	}

	for _, coord := range coords {
		c.own.set(coord.X, coord.Y, Ship)
	}
	c.placed = append(c.placed, PlacedShip{Name: shipType.Name, Coordinates: coords})
	shipType.Count--
	c.selected = -1
	c.status = fmt.Sprintf("%s placed", shipType.Name)

	return nil
}

// CanConfirm reports whether every ship in the roster has been placed
func (c *Controller) CanConfirm() bool {
	return c.stage == PlaceShips && remaining(c.roster) == 0
}

// ConfirmPlacement sends the placed fleet to the authority
func (c *Controller) ConfirmPlacement() (*protocol.Request, error) {
	if c.stage != PlaceShips {
		return nil, ErrWrongStage
	}
	if !c.CanConfirm() {
		return nil, ErrFleetIncomplete
	}

	ships := make([]protocol.Ship, 0, len(c.placed))
	for _, s := range c.placed {
		coords := make([]protocol.Coordinate, len(s.Coordinates))
		copy(coords, s.Coordinates)
		ships = append(ships, protocol.Ship{Coordinates: coords})
	}

	return c.request(protocol.CmdPlaceShips, protocol.PlaceShipsPayload{GameID: c.gameID, Ships: ships})
}

// Fire returns a fire request, or nil when the shot is known to be illegal:
// wrong stage, not our turn, out of bounds or already targeted.
func (c *Controller) Fire(x, y int) *protocol.Request {
	if c.stage != Playing || c.turnID == "" || c.turnID != c.selfID {
		return nil
	}
	if !InBounds(x, y) || c.opponent.At(x, y) != Empty {
		return nil
	}
	if c.awaiting(protocol.CmdFire) {
		return nil
	}

	req, _ := c.request(protocol.CmdFire, protocol.FirePayload{GameID: c.gameID, X: x, Y: y})
	return req
}

func (c *Controller) request(cmd protocol.Cmd, payload interface{}) (*protocol.Request, error) {
	if c.awaiting(cmd) {
		return nil, ErrRequestPending
	}
	req := protocol.NewRequest(cmd, payload)
	c.pending[req.ID] = cmd
	return &req, nil
}

func (c *Controller) awaiting(cmd protocol.Cmd) bool {
	for _, pending := range c.pending {
		if pending == cmd {
			return true
		}
	}
	return false
}

// Expire forgets a request whose acknowledgement never arrived so the user
// can retry. It reports whether the request was still pending.
func (c *Controller) Expire(requestID string) bool {
	cmd, ok := c.pending[requestID]
	if !ok {
		return false
	}
	delete(c.pending, requestID)
	c.status = fmt.Sprintf(timedOutText, describe(cmd))
	return true
}

func describe(cmd protocol.Cmd) string {
	switch cmd {
	case protocol.CmdCreateGame:
		return "Creating the game"
	case protocol.CmdJoinGame:
		return "Joining the game"
	case protocol.CmdPlaceShips:
		return "Placing ships"
	case protocol.CmdFire:
		return "Firing"
	}
	return "Request"
}

func (c *Controller) turnText() string {
	if c.turnID == c.selfID {
		return yourTurnText
	}
	return opponentTurnText
}

func (c *Controller) resultText() string {
	if c.winnerID == c.selfID {
		return youWonText
	}
	return youLostText
}
