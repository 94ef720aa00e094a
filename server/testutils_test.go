package server

import (
	"io/ioutil"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/minaorangina/seashooter/protocol"
	"github.com/minaorangina/seashooter/store"
	"github.com/stretchr/testify/require"
)

const readTimeout = 2 * time.Second

// newTestServer starts and returns a new server.
// The caller must call close to shut it down.
func newTestServer(str store.GameStore) *httptest.Server {
	return httptest.NewServer(NewServer(str, nil))
}

func makeWSUrl(serverURL string) string {
	return "ws" + strings.TrimPrefix(serverURL, "http") + "/ws"
}

func mustDialWS(t *testing.T, url string) *websocket.Conn {
	t.Helper()

	ws, resp, err := websocket.DefaultDialer.Dial(url, nil)

	if err != nil {
		var body []byte
		code := 0
		if resp != nil {
			body, _ = ioutil.ReadAll(resp.Body)
			code = resp.StatusCode
		}
		t.Fatalf("could not open a ws connection on %s, code %d: %s, %v", url, code, body, err)
	}
	if ws == nil {
		t.Fatal("unexpected nil websocket conn")
	}

	return ws
}

// testPlayer is a bare websocket client speaking the wire protocol
type testPlayer struct {
	t  *testing.T
	id string
	ws *websocket.Conn
}

func connectPlayer(t *testing.T, server *httptest.Server) *testPlayer {
	t.Helper()

	p := &testPlayer{t: t, ws: mustDialWS(t, makeWSUrl(server.URL))}
	t.Cleanup(func() { p.ws.Close() })

	connected, ok := p.next().(protocol.Connected)
	require.True(t, ok, "first frame should be connected")
	require.NotEmpty(t, connected.ID)
	p.id = connected.ID

	return p
}

func (p *testPlayer) send(cmd protocol.Cmd, payload interface{}) string {
	p.t.Helper()

	req := protocol.NewRequest(cmd, payload)
	data, err := req.Encode()
	require.NoError(p.t, err)
	require.NoError(p.t, p.ws.WriteMessage(websocket.TextMessage, data))

	return req.ID
}

func (p *testPlayer) next() protocol.Message {
	p.t.Helper()

	p.ws.SetReadDeadline(time.Now().Add(readTimeout))
	_, data, err := p.ws.ReadMessage()
	require.NoError(p.t, err)

	msg, err := protocol.Decode(data)
	require.NoError(p.t, err)

	return msg
}

// request sends a request and returns its ack, which must be the next frame
func (p *testPlayer) request(cmd protocol.Cmd, payload interface{}) protocol.Ack {
	p.t.Helper()

	id := p.send(cmd, payload)
	ack, ok := p.next().(protocol.Ack)
	require.True(p.t, ok, "expected an ack for %s", cmd)
	require.Equal(p.t, id, ack.ID)

	return ack
}

func (p *testPlayer) expect(want protocol.Event) {
	p.t.Helper()
	require.Equal(p.t, want, p.next())
}

func (p *testPlayer) expectClosed() {
	p.t.Helper()

	p.ws.SetReadDeadline(time.Now().Add(readTimeout))
	_, _, err := p.ws.ReadMessage()
	require.Error(p.t, err)
}

// aFleet puts each ship on its own even row, starting at column 0
func aFleet() []protocol.Ship {
	ships := []protocol.Ship{}
	for i, length := range []int{5, 4, 3, 3, 2} {
		s := protocol.Ship{}
		for x := 0; x < length; x++ {
			s.Coordinates = append(s.Coordinates, protocol.Coordinate{X: x, Y: i * 2})
		}
		ships = append(ships, s)
	}
	return ships
}

// startMatch creates and joins a game, returning the creator, the joiner
// and the ID of whoever fires first
func startMatch(t *testing.T, server *httptest.Server) (*testPlayer, *testPlayer, string, string) {
	t.Helper()

	creator := connectPlayer(t, server)
	joiner := connectPlayer(t, server)

	created := creator.request(protocol.CmdCreateGame, nil)
	require.True(t, created.OK())
	gameID := created.GameID

	joined := joiner.request(protocol.CmdJoinGame, protocol.JoinGamePayload{GameID: gameID})
	require.True(t, joined.OK(), joined.Message)
	require.Contains(t, []string{creator.id, joiner.id}, joined.Turn)

	creator.expect(protocol.GameStarted{Turn: joined.Turn})

	return creator, joiner, gameID, joined.Turn
}
