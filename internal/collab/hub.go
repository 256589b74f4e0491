package collab

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/inkboard/inkboard/internal/document"
	"github.com/inkboard/inkboard/internal/typeid"
)

// DocLoader returns the stored scene for a session. A session that was
// never saved should load as an empty scene, not an error.
type DocLoader func(sessionID string) (document.Scene, error)

// DocSaver persists a session's scene.
type DocSaver func(sessionID string, sc document.Scene) error

type Room struct {
	sessionID string
	clients   map[string]*Client // clientID -> client
	presence  *PresenceManager
	doc       *DocumentState

	// opMu keeps apply and fan-out in one order for all senders.
	opMu sync.Mutex
}

func NewRoom(sessionID string, sc document.Scene) *Room {
	return &Room{
		sessionID: sessionID,
		clients:   make(map[string]*Client),
		presence:  NewPresenceManager(),
		doc:       NewDocumentState(sc),
	}
}

type Hub struct {
	mu         sync.RWMutex
	rooms      map[string]*Room // sessionID -> room
	register   chan *Client
	unregister chan *Client

	load         DocLoader
	save         DocSaver
	saveInterval time.Duration

	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}
}

func NewHub(load DocLoader, save DocSaver, saveInterval time.Duration) *Hub {
	if saveInterval <= 0 {
		saveInterval = 30 * time.Second
	}
	return &Hub{
		rooms:        make(map[string]*Room),
		register:     make(chan *Client),
		unregister:   make(chan *Client),
		load:         load,
		save:         save,
		saveInterval: saveInterval,
		stop:         make(chan struct{}),
		done:         make(chan struct{}),
	}
}

// Run serves registrations and flushes dirty rooms until Stop is called.
func (h *Hub) Run() {
	ticker := time.NewTicker(h.saveInterval)
	defer ticker.Stop()

	for {
		select {
		case client := <-h.register:
			h.addClient(client)
		case client := <-h.unregister:
			h.removeClient(client)
		case <-ticker.C:
			h.saveDirty()
		case <-h.stop:
			h.saveDirty()
			close(h.done)
			return
		}
	}
}

// Stop saves every dirty room and ends Run. It blocks until the final save
// has finished.
func (h *Hub) Stop() {
	h.stopOnce.Do(func() { close(h.stop) })
	<-h.done
}

func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.done:
		client.closeSend()
	}
}

func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

func (h *Hub) addClient(client *Client) {
	h.mu.Lock()
	room, ok := h.rooms[client.SessionID]
	if !ok {
		sc, err := h.load(client.SessionID)
		if err != nil {
			h.mu.Unlock()
			slog.Error("load session", "session", client.SessionID, "error", err)
			client.Send(errorMessage("failed to load session"))
			client.closeSend()
			return
		}
		room = NewRoom(client.SessionID, sc)
		h.rooms[client.SessionID] = room
	}
	room.clients[client.ClientID] = client
	h.mu.Unlock()

	client.Color = room.presence.Join(client.UserID, client.DisplayName)

	// The room's op lock keeps doc.sync consistent with later broadcasts.
	room.opMu.Lock()
	sc, seq := room.doc.Snapshot()
	client.Send(newMessage(TypeWelcome, client.UserID, WelcomePayload{
		ClientID:  client.ClientID,
		UserID:    client.UserID,
		Color:     client.Color,
		ServerSeq: seq,
	}))
	client.Send(newMessage(TypeDocSync, "", DocSyncPayload{Scene: sc, ServerSeq: seq}))
	room.opMu.Unlock()

	// Send current presence state to new client
	if stateMsg := room.presence.StateMessage(); stateMsg != nil {
		client.Send(stateMsg)
	}

	// Broadcast join to other clients
	h.broadcastToRoom(client.SessionID, newMessage(TypePresenceJoin, client.UserID, PresenceJoinPayload{
		UserID:      client.UserID,
		DisplayName: client.DisplayName,
		Color:       client.Color,
	}), client.ClientID)

	slog.Info("client joined", "user", client.UserID, "session", client.SessionID)
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	room, ok := h.rooms[client.SessionID]
	if !ok {
		h.mu.Unlock()
		return
	}
	if _, ok := room.clients[client.ClientID]; !ok {
		h.mu.Unlock()
		return
	}

	delete(room.clients, client.ClientID)
	client.closeSend()
	room.presence.Remove(client.UserID)

	empty := len(room.clients) == 0
	if empty {
		delete(h.rooms, client.SessionID)
	}
	h.mu.Unlock()

	if empty {
		h.saveRoom(room)
		slog.Info("session closed", "session", client.SessionID)
		return
	}

	// Broadcast leave to remaining clients
	h.broadcastToRoom(client.SessionID, newMessage(TypePresenceLeave, client.UserID, PresenceLeavePayload{
		UserID: client.UserID,
	}), "")

	slog.Info("client left", "user", client.UserID, "session", client.SessionID)
}

func (h *Hub) handleMessage(sender *Client, msg *Message) {
	switch msg.Type {
	case TypePresenceUpdate:
		h.handlePresenceUpdate(sender, msg)
	case TypeOpSubmit:
		h.handleOpSubmit(sender, msg)
	default:
		slog.Warn("unknown message type", "type", msg.Type, "user", sender.UserID)
	}
}

func (h *Hub) handlePresenceUpdate(sender *Client, msg *Message) {
	var presence PresencePayload
	if err := json.Unmarshal(msg.Payload, &presence); err != nil {
		slog.Warn("invalid presence payload", "error", err)
		return
	}

	room, ok := h.room(sender.SessionID)
	if !ok {
		return
	}

	out := room.presence.Update(sender.UserID, &presence)
	h.broadcastToRoom(sender.SessionID, newMessage(TypePresenceUpdate, sender.UserID, out), sender.ClientID)
}

// handleOpSubmit applies an operation in arrival order, acks the sender
// and relays it to everyone else.
func (h *Hub) handleOpSubmit(sender *Client, msg *Message) {
	var submit OperationSubmitPayload
	if err := json.Unmarshal(msg.Payload, &submit); err != nil {
		slog.Warn("invalid op payload", "error", err, "user", sender.UserID)
		sender.Send(newMessage(TypeOpNack, "", OperationNackPayload{Reason: "invalid payload"}))
		return
	}
	op := submit.Operation
	if op.ID == "" {
		op.ID = typeid.NewOpID()
	}

	room, ok := h.room(sender.SessionID)
	if !ok {
		return
	}
	h.submitToRoom(room, sender, op)
}

// submitToRoom applies op and fans it out. A room that closed between lookup
// and apply has already been saved, so the op is refused.
func (h *Hub) submitToRoom(room *Room, sender *Client, op Operation) {
	room.opMu.Lock()
	defer room.opMu.Unlock()

	if !h.isMember(room, sender) {
		slog.Debug("operation for closed session", "op", op.ID, "session", room.sessionID)
		sender.Send(newMessage(TypeOpNack, "", OperationNackPayload{
			OperationID: op.ID,
			Reason:      "not in session",
		}))
		return
	}

	seq, err := room.doc.ApplyOperation(op)
	if err != nil {
		slog.Debug("operation rejected", "op", op.ID, "type", op.Type, "error", err)
		sender.Send(newMessage(TypeOpNack, "", OperationNackPayload{
			OperationID: op.ID,
			Reason:      err.Error(),
		}))
		return
	}

	ack := newMessage(TypeOpAck, "", OperationAckPayload{
		OperationID:     op.ID,
		ServerSeq:       seq,
		ServerTimestamp: GetServerTimestamp(),
	})
	ack.Seq = seq
	sender.Send(ack)

	out := newMessage(TypeOpBroadcast, sender.UserID, OperationBroadcastPayload{
		Operation: op,
		UserID:    sender.UserID,
		ServerSeq: seq,
	})
	out.Seq = seq
	h.broadcastToRoom(room.sessionID, out, sender.ClientID)
}

// isMember reports whether room is still live and client is still in it.
func (h *Hub) isMember(room *Room, client *Client) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.rooms[room.sessionID] != room {
		return false
	}
	_, ok := room.clients[client.ClientID]
	return ok
}

func (h *Hub) room(sessionID string) (*Room, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	room, ok := h.rooms[sessionID]
	return room, ok
}

func (h *Hub) broadcastToRoom(sessionID string, msg *Message, excludeClientID string) {
	h.mu.RLock()
	room, ok := h.rooms[sessionID]
	if !ok {
		h.mu.RUnlock()
		return
	}

	clients := make([]*Client, 0, len(room.clients))
	for _, c := range room.clients {
		if c.ClientID != excludeClientID {
			clients = append(clients, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range clients {
		c.Send(msg)
	}
}

func (h *Hub) saveDirty() {
	h.mu.RLock()
	rooms := make([]*Room, 0, len(h.rooms))
	for _, room := range h.rooms {
		rooms = append(rooms, room)
	}
	h.mu.RUnlock()

	for _, room := range rooms {
		h.saveRoom(room)
	}
}

func (h *Hub) saveRoom(room *Room) {
	// waits out an op already past the membership check
	room.opMu.Lock()
	sc, dirty := room.doc.TakeDirty()
	room.opMu.Unlock()
	if !dirty {
		return
	}
	if err := h.save(room.sessionID, sc); err != nil {
		room.doc.MarkDirty()
		slog.Error("save session", "session", room.sessionID, "error", err)
		return
	}
	slog.Debug("session saved", "session", room.sessionID, "elements", sc.Len())
}

func newMessage(typ, userID string, payload interface{}) *Message {
	data, err := json.Marshal(payload)
	if err != nil {
		slog.Error("marshal payload", "type", typ, "error", err)
		data = json.RawMessage(`{}`)
	}
	return &Message{Type: typ, UserID: userID, Payload: data}
}

func errorMessage(text string) *Message {
	return newMessage(TypeError, "", ErrorPayload{Message: text})
}
