package collab

import (
	"encoding/json"
	"log/slog"
	"sync"
)

// Palette is the fixed set of presence colours, handed out in join order.
var Palette = [8]string{"#FF6B6B", "#4ECDC4", "#45B7D1", "#96CEB4", "#FFEAA7", "#DDA0DD", "#98D8C8", "#F7DC6F"}

type PresenceManager struct {
	mu        sync.RWMutex
	presences map[string]*PresencePayload // userID -> presence
	colors    map[string]string
	joined    int
}

func NewPresenceManager() *PresenceManager {
	return &PresenceManager{
		presences: make(map[string]*PresencePayload),
		colors:    make(map[string]string),
	}
}

// Join assigns userID its colour and records an empty presence. A user
// reconnecting keeps the colour they had.
func (pm *PresenceManager) Join(userID, displayName string) string {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	color, ok := pm.colors[userID]
	if !ok {
		color = Palette[pm.joined%len(Palette)]
		pm.joined++
		pm.colors[userID] = color
	}
	pm.presences[userID] = &PresencePayload{DisplayName: displayName, Color: color}
	return color
}

// Update replaces userID's presence, keeping the server-assigned name and
// colour.
func (pm *PresenceManager) Update(userID string, p *PresencePayload) *PresencePayload {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	if prev, ok := pm.presences[userID]; ok {
		p.DisplayName = prev.DisplayName
	}
	p.Color = pm.colors[userID]
	pm.presences[userID] = p
	return p
}

func (pm *PresenceManager) Remove(userID string) {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	delete(pm.presences, userID)
}

func (pm *PresenceManager) GetAll() map[string]*PresencePayload {
	pm.mu.RLock()
	defer pm.mu.RUnlock()

	result := make(map[string]*PresencePayload, len(pm.presences))
	for k, v := range pm.presences {
		result[k] = v
	}
	return result
}

func (pm *PresenceManager) StateMessage() *Message {
	all := pm.GetAll()
	payload, err := json.Marshal(PresenceStatePayload{Presences: all})
	if err != nil {
		slog.Error("marshal presence state", "error", err)
		return nil
	}
	return &Message{
		Type:    TypePresenceState,
		Payload: payload,
	}
}
