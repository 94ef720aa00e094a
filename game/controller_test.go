package game

import (
	"testing"

	"github.com/minaorangina/seashooter/protocol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLobby(t *testing.T) {
	t.Run("starts in the lobby with nothing placed", func(t *testing.T) {
		c := NewController(selfID)

		assert.Equal(t, Lobby, c.Stage())
		assert.Equal(t, selfID, c.SelfID())
		assert.Equal(t, 0, c.Pending())

		view := c.View()
		assert.Equal(t, Board{}, view.OwnBoard)
		assert.Equal(t, Board{}, view.OpponentBoard)
		assert.Len(t, view.ShipsToPlace, 5)
		assert.Equal(t, 5, view.TotalShips)
	})

	t.Run("create game moves to waiting for opponent", func(t *testing.T) {
		c := NewController(selfID)
		req, err := c.CreateGame()
		require.NoError(t, err)
		assert.Equal(t, protocol.CmdCreateGame, req.Cmd)
		assert.NotEmpty(t, req.ID)
		assert.Nil(t, req.Payload)

		a := ack(req)
		a.GameID = someGameID
		require.NoError(t, c.Acknowledge(a))

		view := c.View()
		assert.Equal(t, WaitingForOpponent, view.Stage)
		assert.Equal(t, someGameID, view.GameID)
		assert.Equal(t, "Game created: QWERTY. Waiting for opponent...", view.Status)
		assert.Equal(t, 0, c.Pending())
	})

	t.Run("create game failure stays in lobby with the authority's message", func(t *testing.T) {
		c := NewController(selfID)
		req, err := c.CreateGame()
		require.NoError(t, err)

		require.NoError(t, c.Acknowledge(nack(req, "server is full")))
		assert.Equal(t, Lobby, c.Stage())
		assert.Equal(t, "server is full", c.Status())
	})

	t.Run("create game failure without a message gets a default", func(t *testing.T) {
		c := NewController(selfID)
		req, _ := c.CreateGame()

		require.NoError(t, c.Acknowledge(nack(req, "")))
		assert.Equal(t, "Error creating game.", c.Status())
	})

	t.Run("a second create is refused while the first is pending", func(t *testing.T) {
		c := NewController(selfID)
		_, err := c.CreateGame()
		require.NoError(t, err)

		_, err = c.CreateGame()
		assert.ErrorIs(t, err, ErrRequestPending)
		assert.Equal(t, 1, c.Pending())
	})

	t.Run("join needs a game ID", func(t *testing.T) {
		c := NewController(selfID)
		req, err := c.JoinGame()
		assert.ErrorIs(t, err, ErrMissingGameID)
		assert.Nil(t, req)
	})

	t.Run("join game moves straight to placing ships", func(t *testing.T) {
		c := NewController(selfID)
		require.NoError(t, c.SetGameID(" qwerty "))

		req, err := c.JoinGame()
		require.NoError(t, err)
		assert.Equal(t, protocol.CmdJoinGame, req.Cmd)
		assert.Equal(t, protocol.JoinGamePayload{GameID: someGameID}, req.Payload)

		a := ack(req)
		a.Turn = opponentID
		require.NoError(t, c.Acknowledge(a))

		view := c.View()
		assert.Equal(t, PlaceShips, view.Stage)
		assert.Equal(t, opponentID, view.Turn)
		assert.Equal(t, someGameID, view.GameID)
		assert.Equal(t, "Joined game. Place your ships.", view.Status)
	})

	t.Run("join game failure surfaces the message", func(t *testing.T) {
		c := NewController(selfID)
		require.NoError(t, c.SetGameID(someGameID))
		req, _ := c.JoinGame()

		require.NoError(t, c.Acknowledge(nack(req, "game is full")))
		assert.Equal(t, Lobby, c.Stage())
		assert.Equal(t, "game is full", c.Status())
	})

	t.Run("lobby operations are refused once a game exists", func(t *testing.T) {
		c := waitingController(t)

		_, err := c.CreateGame()
		assert.ErrorIs(t, err, ErrWrongStage)
		_, err = c.JoinGame()
		assert.ErrorIs(t, err, ErrWrongStage)
		assert.ErrorIs(t, c.SetGameID("OTHER"), ErrWrongStage)
	})

	t.Run("unknown acknowledgements are ignored", func(t *testing.T) {
		c := NewController(selfID)
		err := c.Acknowledge(protocol.Ack{ID: "nope", Status: protocol.StatusOK, GameID: someGameID})
		assert.ErrorIs(t, err, ErrUnknownAck)
		assert.Equal(t, Lobby, c.Stage())
	})
}

func TestShipPlacement(t *testing.T) {
	t.Run("places a destroyer horizontally", func(t *testing.T) {
		c := placingController(t)
		require.NoError(t, c.SelectShip("Destroyer"))
		require.NoError(t, c.PlaceShip(0, 0))

		view := c.View()
		assert.Equal(t, Ship, view.OwnBoard.At(0, 0))
		assert.Equal(t, Ship, view.OwnBoard.At(1, 0))
		assert.Equal(t, 2, view.OwnBoard.Count(Ship))
		assert.Equal(t, "Destroyer placed", view.Status)
		assert.Equal(t, "", view.Selected)
		assert.Equal(t, 1, view.Placed)
		assert.Len(t, view.ShipsToPlace, 4)
	})

	t.Run("rejects an overlapping ship and leaves the board unchanged", func(t *testing.T) {
		c := placingController(t)
		require.NoError(t, c.SelectShip("Destroyer"))
		require.NoError(t, c.PlaceShip(0, 0))
		before := c.View().OwnBoard

		require.NoError(t, c.SelectShip("Submarine"))
		c.ToggleOrientation()
		err := c.PlaceShip(1, 0)

		assert.ErrorIs(t, err, ErrInvalidPlacement)
		assert.Equal(t, before, c.View().OwnBoard)
		assert.Equal(t, "Invalid placement", c.Status())
		assert.Equal(t, "Submarine", c.View().Selected)
		assert.Equal(t, 1, c.View().Placed)
	})

	t.Run("places vertically", func(t *testing.T) {
		c := placingController(t)
		assert.Equal(t, Vertical, c.ToggleOrientation())
		require.NoError(t, c.SelectShip("cruiser"))
		require.NoError(t, c.PlaceShip(9, 7))

		board := c.View().OwnBoard
		assert.Equal(t, Ship, board.At(9, 7))
		assert.Equal(t, Ship, board.At(9, 8))
		assert.Equal(t, Ship, board.At(9, 9))
	})

	t.Run("rejects out of bounds placements", func(t *testing.T) {
		cases := []struct {
			name        string
			ship        string
			x, y        int
			orientation Orientation
		}{
			{"runs off the right edge", "Carrier", 6, 0, Horizontal},
			{"runs off the bottom edge", "Battleship", 0, 7, Vertical},
			{"negative anchor", "Destroyer", -1, 0, Horizontal},
			{"anchor past the board", "Destroyer", 3, 10, Horizontal},
		}

		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				c := placingController(t)
				if tc.orientation == Vertical {
					c.ToggleOrientation()
				}
				require.NoError(t, c.SelectShip(tc.ship))

				err := c.PlaceShip(tc.x, tc.y)
				assert.ErrorIs(t, err, ErrInvalidPlacement)
				assert.Equal(t, Board{}, c.View().OwnBoard)
			})
		}
	})

	t.Run("needs a selected ship", func(t *testing.T) {
		c := placingController(t)
		assert.ErrorIs(t, c.PlaceShip(0, 0), ErrNoShipSelected)
		assert.Equal(t, Board{}, c.View().OwnBoard)
	})

	t.Run("a placed ship cannot be selected again", func(t *testing.T) {
		c := placingController(t)
		require.NoError(t, c.SelectShip("Destroyer"))
		require.NoError(t, c.PlaceShip(0, 0))

		assert.ErrorIs(t, c.SelectShip("Destroyer"), ErrShipUnavailable)
		assert.ErrorIs(t, c.SelectShip("Rowboat"), ErrShipUnavailable)
	})

	t.Run("only allowed while placing ships", func(t *testing.T) {
		c := waitingController(t)
		assert.ErrorIs(t, c.SelectShip("Destroyer"), ErrWrongStage)
		assert.ErrorIs(t, c.PlaceShip(0, 0), ErrWrongStage)
	})

	t.Run("remaining count tracks placed ships", func(t *testing.T) {
		c := placingController(t)
		for i, s := range fleetLayout {
			require.NoError(t, c.SelectShip(s.name))
			require.NoError(t, c.PlaceShip(s.x, s.y))

			view := c.View()
			remainingShips := 0
			for _, st := range view.ShipsToPlace {
				remainingShips += st.Count
			}
			assert.Equal(t, view.TotalShips-view.Placed, remainingShips)
			assert.Equal(t, i+1, view.Placed)
			assert.Equal(t, remainingShips == 0, view.CanConfirm)
		}
		assert.Equal(t, 17, c.View().OwnBoard.Count(Ship))
	})
}

func TestConfirmPlacement(t *testing.T) {
	t.Run("refused until the fleet is complete", func(t *testing.T) {
		c := placingController(t)
		require.NoError(t, c.SelectShip("Destroyer"))
		require.NoError(t, c.PlaceShip(0, 0))

		req, err := c.ConfirmPlacement()
		assert.ErrorIs(t, err, ErrFleetIncomplete)
		assert.Nil(t, req)
		assert.Equal(t, 0, c.Pending())
	})

	t.Run("sends every placed ship", func(t *testing.T) {
		c := placingController(t)
		placeFleet(t, c)

		req, err := c.ConfirmPlacement()
		require.NoError(t, err)
		assert.Equal(t, protocol.CmdPlaceShips, req.Cmd)

		payload, ok := req.Payload.(protocol.PlaceShipsPayload)
		require.True(t, ok)
		assert.Equal(t, someGameID, payload.GameID)
		require.Len(t, payload.Ships, 5)
		assert.Equal(t, []protocol.Coordinate{{X: 0, Y: 8}, {X: 1, Y: 8}}, payload.Ships[4].Coordinates)

		require.NoError(t, c.Acknowledge(ack(req)))
		assert.Equal(t, WaitingForPlacement, c.Stage())
		assert.Equal(t, "Waiting for opponent to place ships...", c.Status())
	})

	t.Run("rejection keeps the placement so the user can retry", func(t *testing.T) {
		c := placingController(t)
		placeFleet(t, c)
		before := c.View().OwnBoard

		req, err := c.ConfirmPlacement()
		require.NoError(t, err)
		require.NoError(t, c.Acknowledge(nack(req, "ships overlap")))

		assert.Equal(t, PlaceShips, c.Stage())
		assert.Equal(t, "ships overlap", c.Status())
		assert.Equal(t, before, c.View().OwnBoard)
		assert.True(t, c.CanConfirm())

		_, err = c.ConfirmPlacement()
		assert.NoError(t, err)
	})
}

func TestFire(t *testing.T) {
	t.Run("sends a fire request on our turn", func(t *testing.T) {
		c := playingController(t, selfID)

		req := c.Fire(3, 3)
		require.NotNil(t, req)
		assert.Equal(t, protocol.CmdFire, req.Cmd)
		assert.Equal(t, protocol.FirePayload{GameID: someGameID, X: 3, Y: 3}, req.Payload)
	})

	t.Run("is a silent no-op when the shot is known to be illegal", func(t *testing.T) {
		notPlaying := placingController(t)
		notOurTurn := playingController(t, opponentID)
		alreadyHit := playingController(t, selfID)
		require.NoError(t, alreadyHit.Reconcile(protocol.ShotResult{Shooter: selfID, X: 3, Y: 3, Hit: true}))

		cases := []struct {
			name string
			c    *Controller
			x, y int
		}{
			{"not playing", notPlaying, 3, 3},
			{"not our turn", notOurTurn, 3, 3},
			{"already targeted", alreadyHit, 3, 3},
			{"out of bounds", alreadyHit, 10, 3},
		}

		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				before := tc.c.View()
				pending := tc.c.Pending()

				assert.Nil(t, tc.c.Fire(tc.x, tc.y))
				assert.Equal(t, before, tc.c.View())
				assert.Equal(t, pending, tc.c.Pending())
			})
		}
	})

	t.Run("does not fire twice before the first shot is acknowledged", func(t *testing.T) {
		c := playingController(t, selfID)
		require.NotNil(t, c.Fire(1, 1))
		assert.Nil(t, c.Fire(2, 2))
	})

	t.Run("rejected shot surfaces the authority's message", func(t *testing.T) {
		c := playingController(t, selfID)
		req := c.Fire(1, 1)
		require.NotNil(t, req)

		require.NoError(t, c.Acknowledge(nack(req, "not your turn")))
		assert.Equal(t, "not your turn", c.Status())
		assert.Equal(t, Playing, c.Stage())
		assert.Equal(t, Empty, c.View().OpponentBoard.At(1, 1))
	})
}

func TestExpire(t *testing.T) {
	t.Run("forgets the request and asks the user to retry", func(t *testing.T) {
		c := NewController(selfID)
		req, err := c.CreateGame()
		require.NoError(t, err)

		assert.True(t, c.Expire(req.ID))
		assert.Equal(t, "Creating the game timed out. Please try again.", c.Status())
		assert.Equal(t, Lobby, c.Stage())
		assert.Equal(t, 0, c.Pending())

		_, err = c.CreateGame()
		assert.NoError(t, err)
	})

	t.Run("a late acknowledgement is ignored", func(t *testing.T) {
		c := NewController(selfID)
		req, _ := c.CreateGame()
		c.Expire(req.ID)

		a := ack(req)
		a.GameID = someGameID
		assert.ErrorIs(t, c.Acknowledge(a), ErrUnknownAck)
		assert.Equal(t, Lobby, c.Stage())
	})

	t.Run("does nothing once acknowledged", func(t *testing.T) {
		c := NewController(selfID)
		req, _ := c.CreateGame()
		a := ack(req)
		a.GameID = someGameID
		require.NoError(t, c.Acknowledge(a))
		status := c.Status()

		assert.False(t, c.Expire(req.ID))
		assert.Equal(t, status, c.Status())
	})
}
