package protocol

import (
	"encoding/json"
	"fmt"
)

// Envelope is a single JSON frame on the wire.
// Requests and acknowledgements carry an ID; pushed events do not.
type Envelope struct {
	Event   string          `json:"event"`
	ID      string          `json:"id,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Cmd returns the command named by the envelope
func (e Envelope) Cmd() (Cmd, error) {
	cmd, ok := NameToCmd[e.Event]
	if !ok {
		return Null, fmt.Errorf("%w: %q", ErrUnknownEvent, e.Event)
	}
	return cmd, nil
}

// Bind unmarshals the payload into v. An absent payload leaves v untouched.
func (e Envelope) Bind(v interface{}) error {
	if len(e.Payload) == 0 || string(e.Payload) == "null" {
		return nil
	}
	if err := json.Unmarshal(e.Payload, v); err != nil {
		return fmt.Errorf("%w: %s payload: %v", ErrMalformedFrame, e.Event, err)
	}
	return nil
}

// Coordinate is a zero-based cell address
type Coordinate struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Ship is the wire form of a placed ship
type Ship struct {
	Coordinates []Coordinate `json:"coordinates"`
}

type JoinGamePayload struct {
	GameID string `json:"gameId"`
}

type PlaceShipsPayload struct {
	GameID string `json:"gameId"`
	Ships  []Ship `json:"ships"`
}

type FirePayload struct {
	GameID string `json:"gameId"`
	X      int    `json:"x"`
	Y      int    `json:"y"`
}

// Request is an outbound request that expects exactly one Ack
type Request struct {
	ID      string
	Cmd     Cmd
	Payload interface{}
}

// NewRequest constructs a Request with a fresh ID
func NewRequest(cmd Cmd, payload interface{}) Request {
	return Request{ID: NewRequestID(), Cmd: cmd, Payload: payload}
}

// Encode returns the wire form of the request
func (r Request) Encode() ([]byte, error) {
	return encode(r.Cmd, r.ID, r.Payload)
}

// Message is anything the server sends to a player: an Ack or an Event
type Message interface {
	isMessage()
}

// Ack answers a Request with the same ID
type Ack struct {
	ID      string `json:"-"`
	Status  string `json:"status"`
	GameID  string `json:"gameId,omitempty"`
	Turn    string `json:"turn,omitempty"`
	Message string `json:"message,omitempty"`
}

func (Ack) isMessage() {}

// OK reports whether the request succeeded
func (a Ack) OK() bool {
	return a.Status == StatusOK
}

// Event is a message pushed by the server without a matching request
type Event interface {
	Message
	Cmd() Cmd
}

// Connected carries the identity the server assigned to this connection
type Connected struct {
	ID string `json:"id"`
}

type GameStarted struct {
	Turn string `json:"turn"`
}

type AllShipsPlaced struct {
	Turn string `json:"turn"`
}

// ShotResult reports the outcome of a shot by either player.
// Winner is empty unless the shot ended the game.
type ShotResult struct {
	Shooter string `json:"shooter"`
	X       int    `json:"x"`
	Y       int    `json:"y"`
	Hit     bool   `json:"hit"`
	Sunk    bool   `json:"sunk"`
	Winner  string `json:"winner,omitempty"`
}

type TurnChanged struct {
	Turn string `json:"turn"`
}

type GameOver struct {
	Winner string `json:"winner"`
}

type PlayerLeft struct{}

func (Connected) isMessage()      {}
func (GameStarted) isMessage()    {}
func (AllShipsPlaced) isMessage() {}
func (ShotResult) isMessage()     {}
func (TurnChanged) isMessage()    {}
func (GameOver) isMessage()       {}
func (PlayerLeft) isMessage()     {}

func (Connected) Cmd() Cmd      { return CmdConnected }
func (GameStarted) Cmd() Cmd    { return CmdGameStarted }
func (AllShipsPlaced) Cmd() Cmd { return CmdAllShipsPlaced }
func (ShotResult) Cmd() Cmd     { return CmdShotResult }
func (TurnChanged) Cmd() Cmd    { return CmdTurnChanged }
func (GameOver) Cmd() Cmd       { return CmdGameOver }
func (PlayerLeft) Cmd() Cmd     { return CmdPlayerLeft }

// EncodeEvent returns the wire form of a pushed event
func EncodeEvent(ev Event) ([]byte, error) {
	return encode(ev.Cmd(), "", ev)
}

// EncodeAck returns the wire form of an acknowledgement
func EncodeAck(ack Ack) ([]byte, error) {
	return encode(CmdAck, ack.ID, ack)
}

func encode(cmd Cmd, id string, payload interface{}) ([]byte, error) {
	env := Envelope{Event: cmd.String(), ID: id}
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		env.Payload = raw
	}
	return json.Marshal(env)
}

// ParseEnvelope reads a frame without interpreting its payload
func ParseEnvelope(data []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return Envelope{}, fmt.Errorf("%w: %v", ErrMalformedFrame, err)
	}
	return env, nil
}

// Decode turns a server frame into an Ack or one of the Event types
func Decode(data []byte) (Message, error) {
	env, err := ParseEnvelope(data)
	if err != nil {
		return nil, err
	}

	cmd, err := env.Cmd()
	if err != nil {
		return nil, err
	}

	switch cmd {
	case CmdAck:
		var ack Ack
		if err := env.Bind(&ack); err != nil {
			return nil, err
		}
		ack.ID = env.ID
		return ack, nil
	case CmdConnected:
		return bind[Connected](env)
	case CmdGameStarted:
		return bind[GameStarted](env)
	case CmdAllShipsPlaced:
		return bind[AllShipsPlaced](env)
	case CmdShotResult:
		return bind[ShotResult](env)
	case CmdTurnChanged:
		return bind[TurnChanged](env)
	case CmdGameOver:
		return bind[GameOver](env)
	case CmdPlayerLeft:
		return PlayerLeft{}, nil
	}

	return nil, fmt.Errorf("%w: %q is not sent to players", ErrUnknownEvent, env.Event)
}

func bind[T Event](env Envelope) (Message, error) {
	var ev T
	if err := env.Bind(&ev); err != nil {
		return nil, err
	}
	return ev, nil
}
