package game

import (
	"fmt"

	"github.com/minaorangina/seashooter/protocol"
)

// Acknowledge applies the authority's answer to one of our requests
func (c *Controller) Acknowledge(ack protocol.Ack) error {
	cmd, ok := c.pending[ack.ID]
	if !ok {
		return ErrUnknownAck
	}
	delete(c.pending, ack.ID)

	switch cmd {
	case protocol.CmdCreateGame:
		if c.stage != Lobby {
			return ErrWrongStage
		}
		if !ack.OK() || ack.GameID == "" {
			c.status = messageOr(ack, "Error creating game.")
			return nil
		}
		c.resetFleet()
		c.gameID = ack.GameID
		c.stage = WaitingForOpponent
		c.status = fmt.Sprintf("Game created: %s. Waiting for opponent...", ack.GameID)

	case protocol.CmdJoinGame:
		if c.stage != Lobby {
			return ErrWrongStage
		}
		if !ack.OK() || ack.Turn == "" {
			c.status = messageOr(ack, "Error joining game.")
			return nil
		}
		c.resetFleet()
		c.turnID = ack.Turn
		c.stage = PlaceShips
		c.status = "Joined game. Place your ships."

	case protocol.CmdPlaceShips:
		if c.stage != PlaceShips {
			return ErrWrongStage
		}
		if !ack.OK() {
			c.status = messageOr(ack, "Error placing ships.")
			return nil
		}
		c.stage = WaitingForPlacement
		c.status = "Waiting for opponent to place ships..."

	case protocol.CmdFire:
		if !ack.OK() {
			c.status = messageOr(ack, "Error firing.")
		}
	}

	return nil
}

func messageOr(ack protocol.Ack, fallback string) string {
	if ack.Message != "" {
		return ack.Message
	}
	return fallback
}

// Reconcile applies an event pushed by the authority.
// Events with no transition from the current stage are rejected
// with ErrUnexpectedEvent and change nothing.
func (c *Controller) Reconcile(ev protocol.Event) error {
	switch ev := ev.(type) {
	case protocol.Connected:
		if c.stage != Lobby {
			return ErrUnexpectedEvent
		}
		c.selfID = ev.ID

	case protocol.GameStarted:
		if c.stage != WaitingForOpponent {
			return ErrUnexpectedEvent
		}
		c.resetFleet()
		c.turnID = ev.Turn
		c.stage = PlaceShips
		c.status = "Game started. Place your ships."

	case protocol.AllShipsPlaced:
		switch c.stage {
		case WaitingForOpponent, WaitingForPlacement, Playing:
		default:
			return ErrUnexpectedEvent
		}
		c.turnID = ev.Turn
		c.stage = Playing
		c.status = c.turnText()

	case protocol.ShotResult:
		return c.applyShot(ev)

	case protocol.TurnChanged:
		if c.stage == Lobby || c.stage == GameOver {
			return ErrUnexpectedEvent
		}
		c.turnID = ev.Turn
		c.status = c.turnText()

	case protocol.GameOver:
		if c.stage != Playing {
			return ErrUnexpectedEvent
		}
		c.finish(ev.Winner)

	case protocol.PlayerLeft:
		c.Reset()
		c.status = playerLeftText

	default:
		return fmt.Errorf("%w: %T", ErrUnexpectedEvent, ev)
	}

	return nil
}

// applyShot records the outcome on exactly one board: the opponent's when we
// fired, our own otherwise.
func (c *Controller) applyShot(ev protocol.ShotResult) error {
	if c.stage != Playing {
		return ErrUnexpectedEvent
	}
	if !InBounds(ev.X, ev.Y) {
		return ErrOutOfBounds
	}

	outcome := Miss
	if ev.Hit {
		outcome = Hit
	}

	board := &c.own
	if ev.Shooter == c.selfID {
		board = &c.opponent
	}
	resolved := board.At(ev.X, ev.Y).Resolved()
	if !resolved {
		board.set(ev.X, ev.Y, outcome)
	}

	if ev.Winner != "" {
		c.finish(ev.Winner)
		return nil
	}
	if resolved {
		return ErrCellResolved
	}
	return nil
}

func (c *Controller) finish(winner string) {
	c.winnerID = winner
	c.stage = GameOver
	c.status = c.resultText()
}
