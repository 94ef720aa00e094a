package protocol

import (
	"errors"

	uuid "github.com/satori/go.uuid"
)

var (
	ErrUnknownEvent   = errors.New("unknown event")
	ErrMalformedFrame = errors.New("malformed frame")
)

// StatusOK is the acknowledgement status for a successful request
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// Cmd identifies a named event on the wire
type Cmd int

const (
	Null Cmd = iota
	// requests, client to server
	CmdCreateGame
	CmdJoinGame
	CmdPlaceShips
	CmdFire
	// server to client
	CmdAck
	CmdConnected
	CmdGameStarted
	CmdAllShipsPlaced
	CmdShotResult
	CmdTurnChanged
	CmdGameOver
	CmdPlayerLeft
)

var CmdNames = map[Cmd]string{
	Null:              "",
	CmdCreateGame:     "createGame",
	CmdJoinGame:       "joinGame",
	CmdPlaceShips:     "placeShips",
	CmdFire:           "fire",
	CmdAck:            "ack",
	CmdConnected:      "connected",
	CmdGameStarted:    "gameStarted",
	CmdAllShipsPlaced: "allShipsPlaced",
	CmdShotResult:     "shotResult",
	CmdTurnChanged:    "turnChanged",
	CmdGameOver:       "gameOver",
	CmdPlayerLeft:     "playerLeft",
}

var NameToCmd = map[string]Cmd{
	"createGame":     CmdCreateGame,
	"joinGame":       CmdJoinGame,
	"placeShips":     CmdPlaceShips,
	"fire":           CmdFire,
	"ack":            CmdAck,
	"connected":      CmdConnected,
	"gameStarted":    CmdGameStarted,
	"allShipsPlaced": CmdAllShipsPlaced,
	"shotResult":     CmdShotResult,
	"turnChanged":    CmdTurnChanged,
	"gameOver":       CmdGameOver,
	"playerLeft":     CmdPlayerLeft,
}

func (c Cmd) String() string {
	return CmdNames[c]
}

// IsRequest reports whether c is sent from a player to the server
func (c Cmd) IsRequest() bool {
	switch c {
	case CmdCreateGame, CmdJoinGame, CmdPlaceShips, CmdFire:
		return true
	}
	return false
}

// NewRequestID constructs a request ID used to match an acknowledgement to its request
func NewRequestID() string {
	return uuid.NewV4().String()
}
