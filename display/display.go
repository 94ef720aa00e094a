package display

import (
	"fmt"
	"io"
	"strings"

	"github.com/minaorangina/seashooter/game"
)

const (
	lobbyHintText     = "Type \"create\" to start a game, or \"join <GAME ID>\" to join one."
	waitingHintText   = "Share the game ID with your opponent."
	placingHintText   = "Ships to place: %s\nOrientation: %s. Type \"select <ship>\", \"rotate\", then \"place <x> <y>\"."
	selectedHintText  = "Selected: %s"
	confirmHintText   = "All ships placed. Type \"confirm\" when you are happy."
	fireHintText      = "Type \"fire <x> <y>\"."
	gameOverHintText  = "Type \"restart\" to play again or \"quit\" to leave."
	ownBoardTitle     = "Your board"
	opponentBoardText = "Opponent board"
	boardGap          = "    "
)

func SendText(w io.Writer, text string, a ...interface{}) {
	fmt.Fprintf(w, text, a...)
}

// Render writes the whole view. It depends on nothing but the view.
func Render(w io.Writer, view game.View) {
	SendText(w, "\n")
	if view.GameID != "" {
		SendText(w, "Game %s | %s\n", view.GameID, view.Stage)
	} else {
		SendText(w, "%s\n", view.Stage)
	}
	if view.Status != "" {
		SendText(w, "%s\n", view.Status)
	}

	if view.Stage != game.Lobby && view.Stage != game.WaitingForOpponent {
		SendText(w, "\n%s", boardsText(view))
	}

	if hint := hintText(view); hint != "" {
		SendText(w, "\n%s\n", hint)
	}
}

func hintText(view game.View) string {
	switch view.Stage {
	case game.Lobby:
		return lobbyHintText
	case game.WaitingForOpponent:
		return waitingHintText
	case game.PlaceShips:
		if view.CanConfirm {
			return confirmHintText
		}
		hint := fmt.Sprintf(placingHintText, shipsText(view.ShipsToPlace), view.Orientation)
		if view.Selected != "" {
			hint += "\n" + fmt.Sprintf(selectedHintText, view.Selected)
		}
		return hint
	case game.Playing:
		if view.MyTurn {
			return fireHintText
		}
	case game.GameOver:
		return gameOverHintText
	}
	return ""
}

func shipsText(ships []game.ShipType) string {
	names := []string{}
	for _, s := range ships {
		names = append(names, fmt.Sprintf("%s (%d)", s.Name, s.Length))
	}
	return strings.Join(names, ", ")
}

// boardsText draws the two boards side by side
func boardsText(view game.View) string {
	own := boardLines(view.OwnBoard)
	opponent := boardLines(view.OpponentBoard)

	width := len(own[0])
	var b strings.Builder
	b.WriteString(fmt.Sprintf("%-*s%s%s\n", width, ownBoardTitle, boardGap, opponentBoardText))
	for i := range own {
		b.WriteString(own[i] + boardGap + opponent[i] + "\n")
	}
	return b.String()
}

func boardLines(board game.Board) []string {
	lines := make([]string, 0, game.BoardSize+1)

	header := "  "
	for x := 0; x < game.BoardSize; x++ {
		header += fmt.Sprintf(" %d", x)
	}
	lines = append(lines, header)

	for y := 0; y < game.BoardSize; y++ {
		row := fmt.Sprintf("%d ", y)
		for x := 0; x < game.BoardSize; x++ {
			row += " " + cellText(board.At(x, y))
		}
		lines = append(lines, row)
	}

	return lines
}

func cellText(c game.Cell) string {
	switch c {
	case game.Ship:
		return "#"
	case game.Hit:
		return "X"
	case game.Miss:
		return "o"
	}
	return "."
}
