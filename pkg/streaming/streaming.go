// Package streaming pushes ranking activity and distribution events to
// connected dashboards over a websocket, using the standard
// github.com/gorilla/websocket Upgrader/conn.WriteJSON upgrade-then-push
// pattern.
package streaming

import (
	"encoding/hex"
	"net/http"
	"strconv"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/goldminingco/GMC-Token-sub001/internal/logger"
	"github.com/goldminingco/GMC-Token-sub001/pkg/host"
	"github.com/goldminingco/GMC-Token-sub001/pkg/ranking"
)

// EventKind identifies what kind of ranking event occurred.
type EventKind string

const (
	EventActivity           EventKind = "activity"
	EventMonthlyDistributed EventKind = "monthly_distribution"
	EventAnnualDistributed  EventKind = "annual_distribution"
)

// Event is the JSON payload pushed to every connected client.
type Event struct {
	Kind EventKind   `json:"kind"`
	Data interface{} `json:"data"`
}

// ActivityPayload describes a single RecordActivity call.
type ActivityPayload struct {
	User  string               `json:"user"`
	Kind  ranking.ActivityKind `json:"activity_kind"`
	Value uint64               `json:"value"`
}

// DistributionPayload describes a completed monthly/annual distribution.
type DistributionPayload struct {
	Winners   []string `json:"winners"`
	Amounts   []uint64 `json:"amounts"`
	PoolAfter uint64   `json:"pool_after"`
}

// Hub fans out Events to every connected websocket client, using an
// upgrade-then-per-connection-writer idiom, simplified to one-way server
// push (this repo has no client-originated RPC to read back).
type Hub struct {
	mu       sync.Mutex
	clients  map[*websocket.Conn]chan Event
	upgrader websocket.Upgrader
	log      *logger.Logger
	srv      *http.Server
}

// NewHub builds a Hub listening on port at path "/v1/stream".
func NewHub(port int, log *logger.Logger) *Hub {
	h := &Hub{
		clients:  map[*websocket.Conn]chan Event{},
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		log: log,
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/stream", h.handleConnect)
	h.srv = &http.Server{Addr: ":" + strconv.Itoa(port), Handler: mux}
	return h
}

func (h *Hub) handleConnect(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.WithError(err).Warn("websocket upgrade failed")
		return
	}

	out := make(chan Event, 32)
	h.mu.Lock()
	h.clients[conn] = out
	h.mu.Unlock()

	defer func() {
		h.mu.Lock()
		delete(h.clients, conn)
		h.mu.Unlock()
		conn.Close()
	}()

	for ev := range out {
		if err := conn.WriteJSON(ev); err != nil {
			h.log.WithError(err).Debug("websocket write failed, dropping client")
			return
		}
	}
}

// Broadcast sends ev to every connected client, dropping it for any client
// whose outbound buffer is full rather than blocking the caller.
func (h *Hub) Broadcast(ev Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, out := range h.clients {
		select {
		case out <- ev:
		default:
		}
	}
}

// PublishActivity broadcasts a RecordActivity event.
func (h *Hub) PublishActivity(user host.Identity, kind ranking.ActivityKind, value uint64) {
	h.Broadcast(Event{
		Kind: EventActivity,
		Data: ActivityPayload{User: hex.EncodeToString(user[:]), Kind: kind, Value: value},
	})
}

// PublishDistribution broadcasts a completed distribution.
func (h *Hub) PublishDistribution(kind EventKind, winners []host.Identity, amounts []uint64, poolAfter uint64) {
	hexWinners := make([]string, len(winners))
	for i, w := range winners {
		hexWinners[i] = hex.EncodeToString(w[:])
	}
	h.Broadcast(Event{
		Kind: kind,
		Data: DistributionPayload{Winners: hexWinners, Amounts: amounts, PoolAfter: poolAfter},
	})
}

// Start blocks serving websocket upgrades until shut down.
func (h *Hub) Start() error {
	return h.srv.ListenAndServe()
}

// Shutdown closes all client channels and stops the HTTP server.
func (h *Hub) Shutdown() error {
	h.mu.Lock()
	for conn, out := range h.clients {
		close(out)
		conn.Close()
	}
	h.clients = map[*websocket.Conn]chan Event{}
	h.mu.Unlock()
	return h.srv.Close()
}
