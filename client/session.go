package client

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/minaorangina/seashooter/game"
	"github.com/minaorangina/seashooter/protocol"
	"go.uber.org/zap"
)

// DefaultAckTimeout bounds how long a request waits for its ack
const DefaultAckTimeout = 10 * time.Second

var (
	ErrSessionEnded   = errors.New("session has ended")
	ErrDisconnected   = errors.New("lost connection to the server")
	ErrUnknownGesture = errors.New("unknown gesture")
)

// End describes why a session stopped
type End int

const (
	EndGameOver End = iota
	EndPlayerLeft
	EndQuit
	EndRestart
	EndCancelled
	EndDisconnected
)

func (e End) String() string {
	switch e {
	case EndGameOver:
		return "game over"
	case EndPlayerLeft:
		return "player left"
	case EndQuit:
		return "quit"
	case EndRestart:
		return "restart"
	case EndCancelled:
		return "cancelled"
	case EndDisconnected:
		return "disconnected"
	}
	return ""
}

// Renderer is called after every handled gesture, message or timeout.
// err is the reason a gesture was rejected, if it was.
type Renderer func(view game.View, err error)

type SessionOpts struct {
	AckTimeout time.Duration
	Render     Renderer
	Logger     *zap.Logger
}

// Session plays one game over one Transport. Run is the only goroutine
// that touches the controller.
type Session struct {
	transport  Transport
	controller *game.Controller
	ackTimeout time.Duration
	render     Renderer
	logger     *zap.Logger

	gestures chan Gesture
	expired  chan string
	timers   map[string]*time.Timer
	done     chan struct{}
}

func NewSession(transport Transport, opts SessionOpts) *Session {
	if opts.AckTimeout <= 0 {
		opts.AckTimeout = DefaultAckTimeout
	}
	if opts.Render == nil {
		opts.Render = func(game.View, error) {}
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	return &Session{
		transport:  transport,
		controller: game.NewController(transport.ID()),
		ackTimeout: opts.AckTimeout,
		render:     opts.Render,
		logger:     opts.Logger.With(zap.String("player", transport.ID())),
		gestures:   make(chan Gesture),
		expired:    make(chan string),
		timers:     map[string]*time.Timer{},
		done:       make(chan struct{}),
	}
}

// Submit hands a gesture to the running session
func (s *Session) Submit(ctx context.Context, g Gesture) error {
	select {
	case s.gestures <- g:
		return nil
	case <-s.done:
		return ErrSessionEnded
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Done is closed once Run has returned
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Run drives the session until the game ends, the opponent leaves, the
// user quits or restarts mid-game, ctx is cancelled or the transport goes
// away. The transport is always closed on return.
func (s *Session) Run(ctx context.Context) (End, error) {
	defer s.shutdown()

	s.render(s.controller.View(), nil)

	inbound := s.transport.Inbound()
	for {
		select {
		case <-ctx.Done():
			return EndCancelled, ctx.Err()

		case g := <-s.gestures:
			if _, ok := g.(Quit); ok {
				return EndQuit, nil
			}
			active := s.controller.Stage().Active()
			err := s.apply(g)
			s.render(s.controller.View(), err)

			// a mid-game restart abandons the game on the server too
			if _, ok := g.(Restart); ok && active {
				return EndRestart, nil
			}

		case msg, ok := <-inbound:
			if !ok {
				return EndDisconnected, ErrDisconnected
			}
			s.receive(msg)
			s.render(s.controller.View(), nil)

			if _, left := msg.(protocol.PlayerLeft); left {
				return EndPlayerLeft, nil
			}
			if s.controller.Stage() == game.GameOver {
				return EndGameOver, nil
			}

		case id := <-s.expired:
			delete(s.timers, id)
			if s.controller.Expire(id) {
				s.logger.Warn("request timed out", zap.String("request", id))
				s.render(s.controller.View(), nil)
			}
		}
	}
}

func (s *Session) shutdown() {
	close(s.done)
	s.stopTimers()
	if err := s.transport.Close(); err != nil {
		s.logger.Warn("could not close transport", zap.Error(err))
	}
}

func (s *Session) stopTimers() {
	for id, t := range s.timers {
		t.Stop()
		delete(s.timers, id)
	}
}

func (s *Session) apply(g Gesture) error {
	c := s.controller

	switch g := g.(type) {
	case CreateGame:
		return s.emit(c.CreateGame())

	case JoinGame:
		if err := c.SetGameID(g.GameID); err != nil {
			return err
		}
		return s.emit(c.JoinGame())

	case SelectShip:
		return c.SelectShip(g.Name)

	case ToggleOrientation:
		c.ToggleOrientation()
		return nil

	case PlaceShip:
		return c.PlaceShip(g.X, g.Y)

	case ConfirmPlacement:
		return s.emit(c.ConfirmPlacement())

	case Fire:
		if req := c.Fire(g.X, g.Y); req != nil {
			return s.emit(req, nil)
		}
		return nil

	case Restart:
		s.stopTimers()
		c.Reset()
		return nil
	}

	return fmt.Errorf("%w: %T", ErrUnknownGesture, g)
}

// emit sends the request and starts its ack timer
func (s *Session) emit(req *protocol.Request, err error) error {
	if err != nil {
		return err
	}

	id := req.ID
	s.timers[id] = time.AfterFunc(s.ackTimeout, func() {
		select {
		case s.expired <- id:
		case <-s.done:
		}
	})

	if err := s.transport.Emit(*req); err != nil {
		s.timers[id].Stop()
		delete(s.timers, id)
		s.controller.Expire(id)
		return fmt.Errorf("send %s: %w", req.Cmd, err)
	}

	s.logger.Debug("request sent", zap.Stringer("event", req.Cmd), zap.String("request", id))
	return nil
}

func (s *Session) receive(msg protocol.Message) {
	switch m := msg.(type) {
	case protocol.Ack:
		if t, ok := s.timers[m.ID]; ok {
			t.Stop()
			delete(s.timers, m.ID)
		}
		if err := s.controller.Acknowledge(m); err != nil {
			s.logger.Debug("ack ignored", zap.String("request", m.ID), zap.Error(err))
		} else if !m.OK() {
			s.logger.Info("request refused", zap.String("request", m.ID), zap.String("reason", m.Message))
		}

	case protocol.Event:
		if shot, ok := m.(protocol.ShotResult); ok && shot.Sunk {
			s.logger.Info("ship sunk", zap.String("shooter", shot.Shooter), zap.Int("x", shot.X), zap.Int("y", shot.Y))
		}
		if err := s.controller.Reconcile(m); err != nil {
			s.logger.Warn("event ignored", zap.Stringer("event", m.Cmd()), zap.Error(err))
		}

	default:
		s.logger.Warn("unknown message", zap.String("type", fmt.Sprintf("%T", msg)))
	}
}
