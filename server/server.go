package server

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"strings"
	"sync"

	"github.com/gorilla/handlers"
	"github.com/gorilla/websocket"
	"github.com/minaorangina/seashooter/protocol"
	"github.com/minaorangina/seashooter/store"
	uuid "github.com/satori/go.uuid"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type GetGameRes struct {
	Status  string `json:"status"`
	GameID  string `json:"game_id"`
	Players int    `json:"players"`
}

// GameServer is the authority for every match. Players talk to it over a
// single websocket each.
type GameServer struct {
	store  store.GameStore
	logger *zap.Logger

	mu    sync.Mutex
	conns map[string]*playerConn

	http.Server
}

func NewID() string {
	return uuid.NewV4().String()
}

// NewGameID returns a six letter join code
func NewGameID() string {
	letters := []byte("ABCDEFGHIJKLMNOPQRSTUVWXYZ")
	var code = []byte{}

	for i := 0; i < 6; i++ {
		code = append(code, letters[rand.Intn(len(letters))])
	}

	return string(code)
}

func unknownGameIDMsg(unknownID string) string {
	return fmt.Sprintf("unknown game ID '%s'", unknownID)
}

// NewServer creates a new GameServer. Requests from origins outside
// allowedOrigins get no CORS headers; with none given, any origin is allowed.
func NewServer(store store.GameStore, logger *zap.Logger, allowedOrigins ...string) *GameServer {
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &GameServer{
		store:  store,
		logger: logger,
		conns:  map[string]*playerConn{},
	}

	router := http.NewServeMux()

	router.Handle("/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "text/plain")
		w.Write([]byte("seashooter"))
	}))
	router.Handle("/game/", http.HandlerFunc(s.HandleFindGame))
	router.Handle("/ws", http.HandlerFunc(s.HandleWS))

	corsOpts := []handlers.CORSOption{handlers.AllowedMethods([]string{http.MethodGet})}
	if len(allowedOrigins) > 0 {
		corsOpts = append(corsOpts, handlers.AllowedOrigins(allowedOrigins))
	}

	s.Handler = handlers.LoggingHandler(
		zap.NewStdLog(logger.Named("http")).Writer(),
		handlers.CORS(corsOpts...)(router),
	)
	s.RegisterOnShutdown(s.closeAll)

	return s
}

// ServeHTTP serves http
func (g *GameServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	g.Handler.ServeHTTP(w, r)
}

// HandleFindGame reports whether a game exists and how far along it is
func (g *GameServer) HandleFindGame(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	gameID := strings.ToUpper(strings.TrimPrefix(r.URL.Path, "/game/"))
	if gameID == "" {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte("missing game ID"))
		return
	}

	match := g.store.FindGame(gameID)
	if match == nil {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(unknownGameIDMsg(gameID)))
		return
	}

	response := GetGameRes{
		Status:  match.PlayState().String(),
		GameID:  match.ID(),
		Players: len(match.Players()),
	}

	responseBytes, err := json.Marshal(response)
	if err != nil {
		g.logger.Error("could not encode game status", zap.Error(err))
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Add("Content-Type", "application/json")
	w.Write(responseBytes)
}

// HandleWS upgrades the request and gives the connection a fresh player ID
func (g *GameServer) HandleWS(w http.ResponseWriter, r *http.Request) {
	rawConn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already replied with an HTTP error
		g.logger.Warn("could not upgrade to websocket", zap.Error(err))
		return
	}

	p := newPlayerConn(NewID(), rawConn)
	g.register(p)

	go p.writePump()
	go g.readPump(p)
}

func (g *GameServer) register(p *playerConn) {
	g.mu.Lock()
	g.conns[p.id] = p
	g.mu.Unlock()

	g.logger.Info("player connected", zap.String("player", p.id))
	g.push(p.id, protocol.Connected{ID: p.id})
}

func (g *GameServer) unregister(p *playerConn) {
	g.mu.Lock()
	delete(g.conns, p.id)
	g.mu.Unlock()
}

func (g *GameServer) conn(playerID string) *playerConn {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.conns[playerID]
}

func (g *GameServer) closeAll() {
	g.mu.Lock()
	conns := make([]*playerConn, 0, len(g.conns))
	for _, p := range g.conns {
		conns = append(conns, p)
	}
	g.mu.Unlock()

	for _, p := range conns {
		p.close()
	}
}

// disconnect tears down whatever match the player was in
func (g *GameServer) disconnect(p *playerConn) {
	g.unregister(p)
	p.close()
	g.logger.Info("player disconnected", zap.String("player", p.id))

	match := g.store.FindGameByPlayer(p.id)
	if match == nil {
		return
	}

	for _, other := range g.store.RemoveGame(match.ID()) {
		if other != p.id {
			g.push(other, protocol.PlayerLeft{})
		}
	}
	g.logger.Info("game abandoned", zap.String("game", match.ID()), zap.String("player", p.id))
}
