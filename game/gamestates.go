package game

// Stage represents the coarse phase of a session
type Stage int

const (
	Lobby Stage = iota
	WaitingForOpponent
	PlaceShips
	WaitingForPlacement
	Playing
	GameOver
)

var stageNames = []string{
	"lobby",
	"waitingForOpponent",
	"placeShips",
	"waitingForPlacement",
	"playing",
	"gameOver",
}

func (s Stage) String() string {
	if s < Lobby || s > GameOver {
		return "unknown"
	}
	return stageNames[s]
}

// Active reports whether a session exists in this stage
func (s Stage) Active() bool {
	return s != Lobby
}
