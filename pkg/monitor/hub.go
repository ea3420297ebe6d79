// Package monitor streams CPU snapshots to websocket clients.
//
// Clients only observe: the hub never hands them a way to touch the
// CPU or its memory, and anything they send other than Close is
// ignored. Snapshots are serialised on the CPU's goroutine before they
// reach the hub, so the hub never reads live machine state.
package monitor

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/cespare/xxhash"
	"github.com/gorilla/websocket"
	"github.com/thelolagemann/sm83/pkg/log"
)

var errNotTCP = errors.New("connection is not TCP")

// Hub fans snapshots out to every connected client.
type Hub struct {
	clients map[*Client]bool

	broadcast            chan []byte
	register, unregister chan *Client
	done                 chan struct{}

	compression bool
	quality     int

	cache     cache
	last      uint64
	published bool
	currentID uint8

	log log.Logger
	mu  sync.Mutex
}

// Opt configures a Hub.
type Opt func(h *Hub)

// WithCompression brotli compresses snapshot payloads at the given
// quality (0-11).
func WithCompression(quality int) Opt {
	return func(h *Hub) {
		h.compression = true
		h.quality = quality
	}
}

// WithLogger sets the hub's logger.
func WithLogger(l log.Logger) Opt {
	return func(h *Hub) {
		h.log = l
	}
}

// New returns a hub. Call Run to start delivering messages.
func New(opts ...Opt) *Hub {
	h := &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan []byte, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		log:        log.NewNullLogger(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Run delivers messages until ctx is cancelled, then disconnects every
// client.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case c := <-h.register:
			h.mu.Lock()
			h.clients[c] = true
			h.mu.Unlock()
			h.log.Debugf("monitor: client %d connected from %s", c.ID, c.RemoteAddr)
		case c := <-h.unregister:
			h.remove(c)
		case msg := <-h.broadcast:
			h.mu.Lock()
			for c := range h.clients {
				select {
				case c.send <- msg:
				default:
					// too slow to keep up
					close(c.send)
					delete(h.clients, c)
				}
			}
			h.mu.Unlock()
		case <-ctx.Done():
			h.mu.Lock()
			for c := range h.clients {
				close(c.send)
				delete(h.clients, c)
			}
			h.mu.Unlock()
			return
		}
	}
}

func (h *Hub) remove(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
		h.log.Debugf("monitor: client %d disconnected", c.ID)
	}
}

// Publish sends snapshot to every client. A snapshot identical to the
// previous one is skipped, and one still in the cache is sent by
// reference. Publish never blocks; if the hub is backed up the
// snapshot is dropped.
func (h *Hub) Publish(snapshot []byte) {
	hash := xxhash.Sum64(snapshot)

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.published && hash == h.last {
		return
	}

	var msg []byte
	if slot := h.cache.index(hash); slot != -1 {
		msg = newMessage(SnapshotCache, uint16(slot), nil)
	} else {
		payload, err := h.encode(snapshot)
		if err != nil {
			h.log.Errorf("monitor: compressing snapshot: %v", err)
			return
		}
		msg = newMessage(Snapshot, uint16(h.cache.add(hash, payload)), payload)
	}

	select {
	case h.broadcast <- msg:
		h.last, h.published = hash, true
	default:
		h.log.Debugf("monitor: dropped snapshot %016x", hash)
		if msg[0] == Snapshot {
			h.cache.remove(hash)
		}
	}
}

func (h *Hub) encode(snapshot []byte) ([]byte, error) {
	if !h.compression {
		return append([]byte(nil), snapshot...), nil
	}
	var buf bytes.Buffer
	w := brotli.NewWriterLevel(&buf, h.quality)
	if _, err := w.Write(snapshot); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// info returns the settings byte sent in Info messages.
func (h *Hub) info() byte {
	var settings byte
	if h.compression {
		settings |= settingCompression
	}
	return settings
}

// ServeHTTP upgrades the request to a websocket and attaches a client.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Errorf("monitor: upgrading %s: %v", r.RemoteAddr, err)
		return
	}

	c := h.newClient(conn, r)

	// queued ahead of any broadcast, as the client isn't registered yet
	h.mu.Lock()
	c.send <- []byte{Info, h.info(), c.ID}
	c.send <- append([]byte{CacheSync}, h.cache.sync()...)
	h.mu.Unlock()

	select {
	case h.register <- c:
	case <-h.done:
		conn.Close()
		return
	}

	go c.writePump()
	go c.readPump()
}

// ClientStats describes a connected client.
type ClientStats struct {
	ID         uint8
	RemoteAddr string
	UserAgent  string
	Latency    time.Duration
	Connected  time.Duration // time since the client attached
}

// Stats returns a description of every connected client.
func (h *Hub) Stats() []ClientStats {
	h.mu.Lock()
	defer h.mu.Unlock()

	stats := make([]ClientStats, 0, len(h.clients))
	for c := range h.clients {
		stats = append(stats, ClientStats{
			ID:         c.ID,
			RemoteAddr: c.RemoteAddr,
			UserAgent:  c.UserAgent,
			Latency:    c.Latency(),
			Connected:  time.Since(c.connectedAt),
		})
	}
	return stats
}

func (h *Hub) newClient(conn *websocket.Conn, r *http.Request) *Client {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.currentID++
	return &Client{
		hub:         h,
		conn:        conn,
		send:        make(chan []byte, 256),
		ID:          h.currentID,
		RemoteAddr:  r.RemoteAddr,
		UserAgent:   r.Header.Get("User-Agent"),
		connectedAt: time.Now(),
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024 * 16,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}
