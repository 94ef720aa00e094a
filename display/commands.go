package display

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/minaorangina/seashooter/client"
)

var (
	ErrEmptyCommand   = errors.New("empty command")
	ErrUnknownCommand = errors.New("unknown command")
	ErrBadArguments   = errors.New("bad arguments")
)

const usageText = `Commands:
  create               start a new game
  join <GAME ID>       join a game
  select <ship>        choose a ship to place
  rotate               switch between horizontal and vertical
  place <x> <y>        place the selected ship
  confirm              send your fleet
  fire <x> <y>         fire at the opponent board
  restart              return to the lobby
  quit                 leave
`

// Usage describes every command ParseCommand understands
func Usage() string {
	return usageText
}

// ParseCommand turns a typed line into a gesture
func ParseCommand(line string) (client.Gesture, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil, ErrEmptyCommand
	}

	cmd, args := strings.ToLower(fields[0]), fields[1:]

	switch cmd {
	case "create":
		return only(client.CreateGame{}, cmd, args)
	case "join":
		if len(args) != 1 {
			return nil, fmt.Errorf("%w: usage: join <GAME ID>", ErrBadArguments)
		}
		return client.JoinGame{GameID: args[0]}, nil
	case "select":
		if len(args) != 1 {
			return nil, fmt.Errorf("%w: usage: select <ship>", ErrBadArguments)
		}
		return client.SelectShip{Name: args[0]}, nil
	case "rotate":
		return only(client.ToggleOrientation{}, cmd, args)
	case "place":
		x, y, err := coordinates(cmd, args)
		if err != nil {
			return nil, err
		}
		return client.PlaceShip{X: x, Y: y}, nil
	case "confirm":
		return only(client.ConfirmPlacement{}, cmd, args)
	case "fire":
		x, y, err := coordinates(cmd, args)
		if err != nil {
			return nil, err
		}
		return client.Fire{X: x, Y: y}, nil
	case "restart":
		return only(client.Restart{}, cmd, args)
	case "quit", "exit":
		return only(client.Quit{}, cmd, args)
	}

	return nil, fmt.Errorf("%w: %q", ErrUnknownCommand, fields[0])
}

// only returns g if the command was given no arguments
func only(g client.Gesture, cmd string, args []string) (client.Gesture, error) {
	if len(args) != 0 {
		return nil, fmt.Errorf("%w: %s takes no arguments", ErrBadArguments, cmd)
	}
	return g, nil
}

func coordinates(cmd string, args []string) (int, int, error) {
	if len(args) != 2 {
		return 0, 0, fmt.Errorf("%w: usage: %s <x> <y>", ErrBadArguments, cmd)
	}
	x, errX := strconv.Atoi(args[0])
	y, errY := strconv.Atoi(args[1])
	if errX != nil || errY != nil {
		return 0, 0, fmt.Errorf("%w: coordinates must be numbers", ErrBadArguments)
	}
	return x, y, nil
}
