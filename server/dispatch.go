package server

import (
	"errors"
	"strings"

	"github.com/minaorangina/seashooter/engine"
	"github.com/minaorangina/seashooter/protocol"
	"github.com/minaorangina/seashooter/store"
	"go.uber.org/zap"
)

var (
	ErrNotInGame     = errors.New("you are not in a game")
	ErrAlreadyInGame = errors.New("you are already in a game")
	ErrWrongGame     = errors.New("that is not your game")
	ErrNoGameID      = errors.New("could not allocate a game ID")
)

// Attempts at finding an unused game ID before giving up
const gameIDAttempts = 10

// dispatch handles one inbound frame. Every frame with an ID gets exactly
// one ack; frames without one are dropped. Events caused by the request
// are pushed after the ack.
func (g *GameServer) dispatch(playerID string, data []byte) {
	env, err := protocol.ParseEnvelope(data)
	if err != nil {
		g.logger.Warn("dropping malformed frame", zap.String("player", playerID), zap.Error(err))
		return
	}
	if env.ID == "" {
		g.logger.Warn("dropping frame without an ID", zap.String("player", playerID), zap.String("event", env.Event))
		return
	}

	ack, then := g.handle(playerID, env)
	ack.ID = env.ID
	if !ack.OK() {
		g.logger.Info("request refused",
			zap.String("player", playerID),
			zap.String("event", env.Event),
			zap.String("reason", ack.Message),
		)
	}

	data, err = protocol.EncodeAck(ack)
	if err != nil {
		g.logger.Error("could not encode ack", zap.Error(err))
		return
	}
	if p := g.conn(playerID); p != nil {
		p.deliver(data)
	}

	if then != nil {
		then()
	}
}

func (g *GameServer) handle(playerID string, env protocol.Envelope) (protocol.Ack, func()) {
	cmd, err := env.Cmd()
	if err != nil || !cmd.IsRequest() {
		return refuse(protocol.ErrUnknownEvent), nil
	}

	switch cmd {
	case protocol.CmdCreateGame:
		return g.createGame(playerID), nil

	case protocol.CmdJoinGame:
		var payload protocol.JoinGamePayload
		if err := env.Bind(&payload); err != nil {
			return refuse(err), nil
		}
		return g.joinGame(playerID, payload)

	case protocol.CmdPlaceShips:
		var payload protocol.PlaceShipsPayload
		if err := env.Bind(&payload); err != nil {
			return refuse(err), nil
		}
		return g.placeShips(playerID, payload)

	case protocol.CmdFire:
		var payload protocol.FirePayload
		if err := env.Bind(&payload); err != nil {
			return refuse(err), nil
		}
		return g.fire(playerID, payload)
	}

	return refuse(protocol.ErrUnknownEvent), nil
}

func (g *GameServer) createGame(playerID string) protocol.Ack {
	if g.store.FindGameByPlayer(playerID) != nil {
		return refuse(ErrAlreadyInGame)
	}

	for i := 0; i < gameIDAttempts; i++ {
		match := engine.NewMatch(NewGameID(), playerID)
		err := g.store.AddInactiveGame(match)
		if errors.Is(err, store.ErrPlayerInGame) {
			return refuse(ErrAlreadyInGame)
		}
		if err != nil {
			continue
		}

		g.logger.Info("game created", zap.String("game", match.ID()), zap.String("player", playerID))
		return protocol.Ack{Status: protocol.StatusOK, GameID: match.ID()}
	}

	return refuse(ErrNoGameID)
}

func (g *GameServer) joinGame(playerID string, payload protocol.JoinGamePayload) (protocol.Ack, func()) {
	gameID := strings.ToUpper(strings.TrimSpace(payload.GameID))

	turn, err := g.store.AddPlayerToGame(gameID, playerID)
	if err != nil {
		return refuse(err), nil
	}

	g.logger.Info("game joined", zap.String("game", gameID), zap.String("player", playerID), zap.String("turn", turn))

	started := func() {
		if match := g.store.FindGame(gameID); match != nil {
			g.push(match.CreatorID(), protocol.GameStarted{Turn: turn})
		}
	}
	return protocol.Ack{Status: protocol.StatusOK, GameID: gameID, Turn: turn}, started
}

func (g *GameServer) placeShips(playerID string, payload protocol.PlaceShipsPayload) (protocol.Ack, func()) {
	match, err := g.matchFor(playerID, payload.GameID)
	if err != nil {
		return refuse(err), nil
	}

	allPlaced, err := match.PlaceFleet(playerID, payload.Ships)
	if err != nil {
		return refuse(err), nil
	}

	if !allPlaced {
		return protocol.Ack{Status: protocol.StatusOK}, nil
	}

	turn := match.Turn()
	g.logger.Info("play started", zap.String("game", match.ID()), zap.String("turn", turn))
	return protocol.Ack{Status: protocol.StatusOK}, func() {
		g.broadcast(match, protocol.AllShipsPlaced{Turn: turn})
	}
}

func (g *GameServer) fire(playerID string, payload protocol.FirePayload) (protocol.Ack, func()) {
	match, err := g.matchFor(playerID, payload.GameID)
	if err != nil {
		return refuse(err), nil
	}

	outcome, err := match.Fire(playerID, payload.X, payload.Y)
	if err != nil {
		return refuse(err), nil
	}

	if outcome.Winner != "" {
		g.store.RemoveGame(match.ID())
		g.logger.Info("game won", zap.String("game", match.ID()), zap.String("winner", outcome.Winner))
	}

	return protocol.Ack{Status: protocol.StatusOK}, func() {
		g.broadcast(match, protocol.ShotResult{
			Shooter: playerID,
			X:       payload.X,
			Y:       payload.Y,
			Hit:     outcome.Hit,
			Sunk:    outcome.Sunk,
			Winner:  outcome.Winner,
		})
		if outcome.Winner == "" {
			g.broadcast(match, protocol.TurnChanged{Turn: outcome.Turn})
		}
	}
}

// matchFor finds the player's match, checking it against the game ID the
// request names, if any
func (g *GameServer) matchFor(playerID, gameID string) (*engine.Match, error) {
	match := g.store.FindGameByPlayer(playerID)
	if match == nil {
		return nil, ErrNotInGame
	}
	if gameID != "" && !strings.EqualFold(gameID, match.ID()) {
		return nil, ErrWrongGame
	}
	return match, nil
}

func (g *GameServer) broadcast(match *engine.Match, ev protocol.Event) {
	for _, p := range match.Players() {
		g.push(p, ev)
	}
}

// push sends an event to a connected player. Players who have gone are skipped.
func (g *GameServer) push(playerID string, ev protocol.Event) {
	data, err := protocol.EncodeEvent(ev)
	if err != nil {
		g.logger.Error("could not encode event", zap.Stringer("event", ev.Cmd()), zap.Error(err))
		return
	}

	p := g.conn(playerID)
	if p == nil || !p.deliver(data) {
		g.logger.Debug("player gone, event dropped", zap.String("player", playerID), zap.Stringer("event", ev.Cmd()))
	}
}

func refuse(err error) protocol.Ack {
	return protocol.Ack{Status: protocol.StatusError, Message: err.Error()}
}
