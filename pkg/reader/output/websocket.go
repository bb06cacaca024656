package output

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/norasector/fdxb/pkg/fdxb"
	"github.com/rs/zerolog"
)

const clientSendBuffer = 256

type wsClient struct {
	conn *websocket.Conn
	send chan []byte
}

// WebSocketOutput streams every event as JSON to connected clients.
// Slow clients miss events rather than hold up decoding.
type WebSocketOutput struct {
	upgrader websocket.Upgrader
	recvChan chan *fdxb.Event
	mu       sync.Mutex
	clients  map[*wsClient]struct{}
	logger   zerolog.Logger
}

func NewWebSocketOutput(logger zerolog.Logger) *WebSocketOutput {
	return &WebSocketOutput{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		recvChan: make(chan *fdxb.Event, eventBufferLength),
		clients:  make(map[*wsClient]struct{}),
		logger:   logger,
	}
}

func (w *WebSocketOutput) Receive() chan<- *fdxb.Event {
	return w.recvChan
}

// Clients returns the number of connected clients.
func (w *WebSocketOutput) Clients() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.clients)
}

func (w *WebSocketOutput) ServeHTTP(rw http.ResponseWriter, r *http.Request) {
	conn, err := w.upgrader.Upgrade(rw, r, nil)
	if err != nil {
		w.logger.Debug().Err(err).Msg("websocket upgrade failed")
		return
	}

	c := &wsClient{conn: conn, send: make(chan []byte, clientSendBuffer)}
	w.mu.Lock()
	w.clients[c] = struct{}{}
	w.mu.Unlock()

	go func() {
		for msg := range c.send {
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				break
			}
		}
		conn.Close()
	}()

	// reads only detect the client going away
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
	w.remove(c)
}

func (w *WebSocketOutput) remove(c *wsClient) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.clients[c]; ok {
		delete(w.clients, c)
		close(c.send)
	}
}

func (w *WebSocketOutput) broadcast(msg []byte) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for c := range w.clients {
		select {
		case c.send <- msg:
		default:
		}
	}
}

func (w *WebSocketOutput) closeAll() {
	w.mu.Lock()
	clients := make([]*wsClient, 0, len(w.clients))
	for c := range w.clients {
		clients = append(clients, c)
	}
	w.mu.Unlock()

	for _, c := range clients {
		w.remove(c)
	}
}

func (w *WebSocketOutput) Start(ctx context.Context) error {
	defer w.closeAll()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-w.recvChan:
			if !ok {
				return nil
			}
			msg, err := json.Marshal(ev)
			if err != nil {
				return err
			}
			w.broadcast(msg)
		}
	}
}
