package chat

import "sync"

// RoomIndex maps a channel to the set of sessions currently subscribed
// to it. Pure in-memory bookkeeping; all mutations serialize on one
// lock, reads take snapshots.
type RoomIndex struct {
	mu    sync.RWMutex
	rooms map[int]map[string]struct{}
}

func NewRoomIndex() *RoomIndex {
	return &RoomIndex{rooms: make(map[int]map[string]struct{})}
}

// Subscribe is idempotent.
func (i *RoomIndex) Subscribe(channelID int, sessionID string) {
	i.mu.Lock()
	defer i.mu.Unlock()

	room, ok := i.rooms[channelID]
	if !ok {
		room = make(map[string]struct{})
		i.rooms[channelID] = room
	}
	room[sessionID] = struct{}{}
}

// Unsubscribe is idempotent. The channel entry is kept even when its
// last subscriber leaves, so a concurrent join never races a delete.
func (i *RoomIndex) Unsubscribe(channelID int, sessionID string) {
	i.mu.Lock()
	defer i.mu.Unlock()

	if room, ok := i.rooms[channelID]; ok {
		delete(room, sessionID)
	}
}

// RecipientsOf returns a snapshot of the sessions subscribed to the
// channel at the time of the call.
func (i *RoomIndex) RecipientsOf(channelID int) []string {
	i.mu.RLock()
	defer i.mu.RUnlock()

	room := i.rooms[channelID]
	recipients := make([]string, 0, len(room))
	for sessionID := range room {
		recipients = append(recipients, sessionID)
	}
	return recipients
}
