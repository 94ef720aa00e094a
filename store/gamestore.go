package store

import (
	"errors"
	"fmt"
	"sync"

	"github.com/minaorangina/seashooter/engine"
)

var (
	ErrUnknownGameID           = errors.New("unknown game ID")
	ErrUnknownPlayerID         = errors.New("unknown player ID")
	ErrPlayerInGame            = errors.New("player is already in a game")
	ErrFnUnknownInactiveGameID = func(gameID string) error {
		return fmt.Errorf("pending game with id \"%s\" does not exist", gameID)
	}
	ErrFnDuplicateGameID = func(gameID string) error {
		return fmt.Errorf("game with id %s already exists", gameID)
	}
)

type GameStore interface {
	FindGame(gameID string) *engine.Match
	FindInactiveGame(gameID string) *engine.Match
	FindGameByPlayer(playerID string) *engine.Match
	AddInactiveGame(match *engine.Match) error
	AddPlayerToGame(gameID, playerID string) (string, error)
	RemoveGame(gameID string) []string
}

// InMemoryGameStore maps game id to match, and player id to game id
type InMemoryGameStore struct {
	mu      sync.RWMutex
	Games   map[string]*engine.Match
	Players map[string]string
}

// NewInMemoryGameStore constructs an InMemoryGameStore
func NewInMemoryGameStore() *InMemoryGameStore {
	return &InMemoryGameStore{
		Games:   map[string]*engine.Match{},
		Players: map[string]string{},
	}
}

func (s *InMemoryGameStore) FindGame(ID string) *engine.Match {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.Games[ID]
}

// FindInactiveGame returns the match only while it is waiting for a second player
func (s *InMemoryGameStore) FindInactiveGame(ID string) *engine.Match {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.findInactiveGame(ID)
}

func (s *InMemoryGameStore) findInactiveGame(ID string) *engine.Match {
	match, ok := s.Games[ID]
	if !ok {
		return nil
	}
	if match.PlayState() != engine.Idle {
		return nil
	}
	return match
}

func (s *InMemoryGameStore) FindGameByPlayer(playerID string) *engine.Match {
	s.mu.RLock()
	defer s.mu.RUnlock()

	gameID, ok := s.Players[playerID]
	if !ok {
		return nil
	}
	return s.Games[gameID]
}

// AddInactiveGame stores a freshly created match along with its creator
func (s *InMemoryGameStore) AddInactiveGame(match *engine.Match) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.Games[match.ID()]; exists {
		return ErrFnDuplicateGameID(match.ID())
	}
	if _, busy := s.Players[match.CreatorID()]; busy {
		return ErrPlayerInGame
	}

	s.Games[match.ID()] = match
	s.Players[match.CreatorID()] = match.ID()
	return nil
}

// AddPlayerToGame joins the player to a waiting match and returns the
// id of the player who fires first.
func (s *InMemoryGameStore) AddPlayerToGame(gameID, playerID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, busy := s.Players[playerID]; busy {
		return "", ErrPlayerInGame
	}

	match := s.findInactiveGame(gameID)
	if match == nil {
		return "", ErrFnUnknownInactiveGameID(gameID)
	}

	turn, err := match.Join(playerID)
	if err != nil {
		return "", err
	}
	s.Players[playerID] = gameID

	return turn, nil
}

// RemoveGame forgets the match and its players, returning who was in it
func (s *InMemoryGameStore) RemoveGame(gameID string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	match, ok := s.Games[gameID]
	if !ok {
		return nil
	}

	players := match.Players()
	for _, p := range players {
		delete(s.Players, p)
	}
	delete(s.Games, gameID)

	return players
}
