package chat

import (
	"sync"
	"time"
)

// Presence tracks online/offline/typing state per user, independent of
// durable channel membership. A user is online while at least one of
// their sessions is connected (multi-device OR). Nothing here is
// persisted.
type Presence struct {
	mu       sync.Mutex
	sessions map[int]map[string]struct{}
	lastSeen map[int]time.Time
	typing   map[int]int // userID -> channelID currently typed in
}

func NewPresence() *Presence {
	return &Presence{
		sessions: make(map[int]map[string]struct{}),
		lastSeen: make(map[int]time.Time),
		typing:   make(map[int]int),
	}
}

func (p *Presence) SetOnline(userID int, sessionID string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	live, ok := p.sessions[userID]
	if !ok {
		live = make(map[string]struct{})
		p.sessions[userID] = live
	}
	live[sessionID] = struct{}{}
	p.lastSeen[userID] = time.Now()
}

// SetOffline drops one session. It reports whether the user went
// offline, which only happens once their last session is gone.
func (p *Presence) SetOffline(userID int, sessionID string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	live, ok := p.sessions[userID]
	if !ok {
		return false
	}
	delete(live, sessionID)
	p.lastSeen[userID] = time.Now()
	if len(live) > 0 {
		return false
	}
	delete(p.sessions, userID)
	delete(p.typing, userID)
	return true
}

func (p *Presence) SetTyping(userID, channelID int, isTyping bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if isTyping {
		p.typing[userID] = channelID
		return
	}
	if p.typing[userID] == channelID {
		delete(p.typing, userID)
	}
}

// TypingIn returns the channel the user is currently typing in, if any.
func (p *Presence) TypingIn(userID int) (int, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	channelID, ok := p.typing[userID]
	return channelID, ok
}

func (p *Presence) Online(userID int) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	return len(p.sessions[userID]) > 0
}

func (p *Presence) LastSeen(userID int) (time.Time, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	t, ok := p.lastSeen[userID]
	return t, ok
}

// Snapshot returns the online flag for every user seen since startup.
func (p *Presence) Snapshot() map[int]bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	snapshot := make(map[int]bool, len(p.lastSeen))
	for userID := range p.lastSeen {
		snapshot[userID] = len(p.sessions[userID]) > 0
	}
	return snapshot
}
