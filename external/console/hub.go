package console

import (
	"context"
	"log/slog"
	"sync"

	"github.com/gorilla/websocket"
)

const (
	clientSendBuffer = 64
	hubBacklog       = 256
)

// Client is one websocket connection following a single view.
type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	viewID string
	send   chan []byte
}

// Hub fans frames out to the clients following each view. Register,
// unregister and broadcast are serialized through Run.
type Hub struct {
	views      map[string]map[*Client]bool
	register   chan *Client
	unregister chan *Client
	closeView  chan string
	broadcast  chan *viewFrame
	done       chan struct{}

	countMu sync.RWMutex
	counts  map[string]int
}

type viewFrame struct {
	viewID string
	data   []byte
	// to limits the frame to one registered client of the view.
	to *Client
}

func NewHub() *Hub {
	return &Hub{
		views:      make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		closeView:  make(chan string),
		broadcast:  make(chan *viewFrame, hubBacklog),
		done:       make(chan struct{}),
		counts:     make(map[string]int),
	}
}

func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			for viewID := range h.views {
				h.dropView(viewID)
			}
			return

		case client := <-h.register:
			if h.views[client.viewID] == nil {
				h.views[client.viewID] = make(map[*Client]bool)
			}
			h.views[client.viewID][client] = true
			h.setCount(client.viewID)
			slog.Debug("stream client connected", "view_id", client.viewID)

		case client := <-h.unregister:
			h.remove(client)

		case viewID := <-h.closeView:
			h.dropView(viewID)

		case f := <-h.broadcast:
			if f.to != nil {
				if h.views[f.viewID][f.to] {
					h.deliver(f.to, f.data)
				}
				continue
			}
			for client := range h.views[f.viewID] {
				h.deliver(client, f.data)
			}
		}
	}
}

// Publish queues a frame for every client of viewID. It never blocks; frames
// are dropped when the hub is backlogged.
func (h *Hub) Publish(viewID string, t FrameType, payload any) {
	data, err := encodeFrame(t, payload)
	if err != nil {
		slog.Error("failed to encode stream frame", "error", err, "view_id", viewID, "type", t)
		return
	}
	select {
	case h.broadcast <- &viewFrame{viewID: viewID, data: data}:
	default:
		slog.Warn("hub backlog full; dropping frame", "view_id", viewID, "type", t)
	}
}

// SendTo queues a frame for client alone, behind every frame already published
// to its view. Unlike Publish it waits for room rather than dropping.
func (h *Hub) SendTo(client *Client, t FrameType, payload any) bool {
	data, err := encodeFrame(t, payload)
	if err != nil {
		slog.Error("failed to encode stream frame", "error", err, "view_id", client.viewID, "type", t)
		return false
	}
	select {
	case <-h.done:
		return false
	default:
	}
	select {
	case h.broadcast <- &viewFrame{viewID: client.viewID, data: data, to: client}:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) NewClient(conn *websocket.Conn, viewID string) *Client {
	return &Client{
		hub:    h,
		conn:   conn,
		viewID: viewID,
		send:   make(chan []byte, clientSendBuffer),
	}
}

// Register reports false once the hub has stopped.
func (h *Hub) Register(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// CloseView disconnects every client following viewID.
func (h *Hub) CloseView(viewID string) {
	select {
	case h.closeView <- viewID:
	case <-h.done:
	}
}

func (h *Hub) Clients(viewID string) int {
	h.countMu.RLock()
	defer h.countMu.RUnlock()
	return h.counts[viewID]
}

func (h *Hub) deliver(client *Client, data []byte) {
	select {
	case client.send <- data:
	default:
		slog.Warn("stream client too slow; disconnecting", "view_id", client.viewID)
		h.remove(client)
	}
}

func (h *Hub) remove(client *Client) {
	clients, ok := h.views[client.viewID]
	if !ok || !clients[client] {
		return
	}
	delete(clients, client)
	close(client.send)
	if len(clients) == 0 {
		delete(h.views, client.viewID)
	}
	h.setCount(client.viewID)
	slog.Debug("stream client disconnected", "view_id", client.viewID)
}

func (h *Hub) dropView(viewID string) {
	for client := range h.views[viewID] {
		close(client.send)
	}
	delete(h.views, viewID)
	h.setCount(viewID)
}

func (h *Hub) setCount(viewID string) {
	h.countMu.Lock()
	defer h.countMu.Unlock()
	if n := len(h.views[viewID]); n > 0 {
		h.counts[viewID] = n
	} else {
		delete(h.counts, viewID)
	}
}
