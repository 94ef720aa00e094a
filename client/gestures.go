package client

// Gesture is a user action forwarded from the presentation layer
type Gesture interface {
	isGesture()
}

type CreateGame struct{}

type JoinGame struct {
	GameID string
}

type SelectShip struct {
	Name string
}

type ToggleOrientation struct{}

// PlaceShip anchors the selected ship's first cell at X, Y
type PlaceShip struct {
	X, Y int
}

type ConfirmPlacement struct{}

type Fire struct {
	X, Y int
}

// Restart abandons the current state and returns to the lobby
type Restart struct{}

// Quit ends the session
type Quit struct{}

func (CreateGame) isGesture()        {}
func (JoinGame) isGesture()          {}
func (SelectShip) isGesture()        {}
func (ToggleOrientation) isGesture() {}
func (PlaceShip) isGesture()         {}
func (ConfirmPlacement) isGesture()  {}
func (Fire) isGesture()              {}
func (Restart) isGesture()           {}
func (Quit) isGesture()              {}
