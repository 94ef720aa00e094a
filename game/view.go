package game

// View is everything a presentation layer needs to draw the game.
// It is a snapshot: mutating it does not affect the Controller.
type View struct {
	Stage         Stage
	Status        string
	GameID        string
	SelfID        string
	Turn          string
	Winner        string
	OwnBoard      Board
	OpponentBoard Board
	ShipsToPlace  []ShipType
	Selected      string
	Orientation   Orientation
	Placed        int
	TotalShips    int
	CanConfirm    bool
	MyTurn        bool
}

// View projects the current state. The opponent board never shows ships.
func (c *Controller) View() View {
	toPlace := []ShipType{}
	for _, s := range c.roster {
		if s.Count > 0 {
			toPlace = append(toPlace, s)
		}
	}

	var selected string
	if c.selected >= 0 {
		selected = c.roster[c.selected].Name
	}

	return View{
		Stage:         c.stage,
		Status:        c.status,
		GameID:        c.gameID,
		SelfID:        c.selfID,
		Turn:          c.turnID,
		Winner:        c.winnerID,
		OwnBoard:      c.own,
		OpponentBoard: c.opponent.withoutShips(),
		ShipsToPlace:  toPlace,
		Selected:      selected,
		Orientation:   c.orientation,
		Placed:        len(c.placed),
		TotalShips:    TotalShips(),
		CanConfirm:    c.CanConfirm(),
		MyTurn:        c.stage == Playing && c.turnID != "" && c.turnID == c.selfID,
	}
}
