package client

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/minaorangina/seashooter/protocol"
	"go.uber.org/zap"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 2048

	// Time allowed for the server to announce our identity.
	handshakeWait = 10 * time.Second
)

var (
	ErrClosed     = errors.New("transport closed")
	ErrNoIdentity = errors.New("server did not send a player ID")
)

// Transport carries requests to the authority and delivers its acks and
// events, in order, on Inbound. Inbound is closed when the transport closes.
type Transport interface {
	ID() string
	Emit(req protocol.Request) error
	Inbound() <-chan protocol.Message
	Close() error
}

// WSTransport is a Transport over a single websocket
type WSTransport struct {
	id      string
	ws      *websocket.Conn
	send    chan []byte
	inbound chan protocol.Message
	done    chan struct{}
	once    sync.Once
	logger  *zap.Logger
}

// Dial connects to the server and waits for it to assign a player ID
func Dial(ctx context.Context, url string, logger *zap.Logger) (*WSTransport, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	ws, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", url, err)
	}

	id, err := handshake(ctx, ws)
	if err != nil {
		ws.Close()
		return nil, err
	}

	t := &WSTransport{
		id:      id,
		ws:      ws,
		send:    make(chan []byte),
		inbound: make(chan protocol.Message, 16),
		done:    make(chan struct{}),
		logger:  logger.With(zap.String("player", id)),
	}

	go t.writePump()
	go t.readPump()

	return t, nil
}

// handshake reads the connected event the server sends first
func handshake(ctx context.Context, ws *websocket.Conn) (string, error) {
	deadline := time.Now().Add(handshakeWait)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	ws.SetReadDeadline(deadline)

	_, data, err := ws.ReadMessage()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNoIdentity, err)
	}

	msg, err := protocol.Decode(data)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNoIdentity, err)
	}

	connected, ok := msg.(protocol.Connected)
	if !ok || connected.ID == "" {
		return "", ErrNoIdentity
	}

	return connected.ID, nil
}

func (t *WSTransport) ID() string {
	return t.id
}

func (t *WSTransport) Inbound() <-chan protocol.Message {
	return t.inbound
}

// Emit queues a request for sending
func (t *WSTransport) Emit(req protocol.Request) error {
	data, err := req.Encode()
	if err != nil {
		return err
	}

	select {
	case t.send <- data:
		return nil
	case <-t.done:
		return ErrClosed
	}
}

// Close shuts the connection. It is safe to call more than once.
func (t *WSTransport) Close() error {
	t.once.Do(func() {
		close(t.done)
	})
	return nil
}

func (t *WSTransport) readPump() {
	defer func() {
		close(t.inbound)
		t.Close()
	}()

	t.ws.SetReadLimit(maxMessageSize)
	t.ws.SetReadDeadline(time.Now().Add(pongWait))
	t.ws.SetPongHandler(func(string) error {
		t.ws.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := t.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				t.logger.Warn("read failed", zap.Error(err))
			}
			return
		}

		msg, err := protocol.Decode(data)
		if err != nil {
			t.logger.Warn("undecodable frame", zap.ByteString("frame", data), zap.Error(err))
			continue
		}

		select {
		case t.inbound <- msg:
		case <-t.done:
			return
		}
	}
}

func (t *WSTransport) writePump() {
	ticker := time.NewTicker(pingPeriod)

	defer func() {
		ticker.Stop()
		t.ws.Close()
	}()

	for {
		select {
		case msg := <-t.send:
			t.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := t.ws.WriteMessage(websocket.TextMessage, msg); err != nil {
				t.logger.Warn("write failed", zap.Error(err))
				t.Close()
				return
			}

		case <-ticker.C:
			t.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := t.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				t.Close()
				return
			}

		case <-t.done:
			t.ws.SetWriteDeadline(time.Now().Add(writeWait))
			t.ws.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}
