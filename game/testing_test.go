package game

import (
	"testing"

	"github.com/minaorangina/seashooter/protocol"
	"github.com/stretchr/testify/require"
)

const (
	selfID     = "player-a"
	opponentID = "player-b"
	someGameID = "QWERTY"
)

// fleetLayout places every ship horizontally on its own even row
var fleetLayout = []struct {
	name string
	x, y int
}{
	{"Carrier", 0, 0},
	{"Battleship", 0, 2},
	{"Cruiser", 0, 4},
	{"Submarine", 0, 6},
	{"Destroyer", 0, 8},
}

func ack(req *protocol.Request) protocol.Ack {
	return protocol.Ack{ID: req.ID, Status: protocol.StatusOK}
}

func nack(req *protocol.Request, message string) protocol.Ack {
	return protocol.Ack{ID: req.ID, Status: protocol.StatusError, Message: message}
}

func waitingController(t *testing.T) *Controller {
	t.Helper()
	c := NewController(selfID)
	req, err := c.CreateGame()
	require.NoError(t, err)

	a := ack(req)
	a.GameID = someGameID
	require.NoError(t, c.Acknowledge(a))
	require.Equal(t, WaitingForOpponent, c.Stage())
	return c
}

func placingController(t *testing.T) *Controller {
	t.Helper()
	c := waitingController(t)
	require.NoError(t, c.Reconcile(protocol.GameStarted{Turn: selfID}))
	require.Equal(t, PlaceShips, c.Stage())
	return c
}

func placeFleet(t *testing.T, c *Controller) {
	t.Helper()
	for _, s := range fleetLayout {
		require.NoError(t, c.SelectShip(s.name))
		require.NoError(t, c.PlaceShip(s.x, s.y))
	}
}

func playingController(t *testing.T, turn string) *Controller {
	t.Helper()
	c := placingController(t)
	placeFleet(t, c)

	req, err := c.ConfirmPlacement()
	require.NoError(t, err)
	require.NoError(t, c.Acknowledge(ack(req)))
	require.NoError(t, c.Reconcile(protocol.AllShipsPlaced{Turn: turn}))
	require.Equal(t, Playing, c.Stage())
	return c
}
