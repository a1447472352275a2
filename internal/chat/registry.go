package chat

import (
	"fmt"
	"sort"
	"sync"
)

// Transport is the live handle used to push events to one connected
// client. Push must not block; implementations queue into a bounded
// buffer and report an error when the peer cannot keep up.
type Transport interface {
	Push(event OutboundEvent) error
	Close()
}

type session struct {
	id        string
	transport Transport
	userID    int
	userName  string
	channels  map[int]struct{}
}

func (s *session) authenticated() bool {
	return s.userID != 0
}

// Registry maps sessions to their transports and tracks which channels
// each session has joined. A session belongs to at most one user; one
// user may hold several concurrent sessions. All operations are pure
// in-memory bookkeeping behind a single lock, never blocking on I/O.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*session
	rooms    *RoomIndex
}

func NewRegistry(rooms *RoomIndex) *Registry {
	return &Registry{
		sessions: make(map[string]*session),
		rooms:    rooms,
	}
}

// Register adds a new transport connection under sessionID.
func (r *Registry) Register(sessionID string, t Transport) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sessions[sessionID]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateSession, sessionID)
	}
	r.sessions[sessionID] = &session{
		id:        sessionID,
		transport: t,
		channels:  make(map[int]struct{}),
	}
	return nil
}

// BindUser attaches an authenticated identity to the session. Until a
// user is bound the session may not join channels or send messages.
func (r *Registry) BindUser(sessionID string, userID int, userName string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	sess, ok := r.sessions[sessionID]
	if !ok {
		return fmt.Errorf("%w: session %s", ErrNotFound, sessionID)
	}
	sess.userID = userID
	sess.userName = userName
	return nil
}

// JoinChannel is idempotent; it records the membership on the session
// and subscribes the session in the room index.
func (r *Registry) JoinChannel(sessionID string, channelID int) error {
	r.mu.Lock()
	sess, ok := r.sessions[sessionID]
	if !ok {
		r.mu.Unlock()
		return fmt.Errorf("%w: session %s", ErrNotFound, sessionID)
	}
	if !sess.authenticated() {
		r.mu.Unlock()
		return ErrUnauthenticated
	}
	sess.channels[channelID] = struct{}{}
	r.mu.Unlock()

	r.rooms.Subscribe(channelID, sessionID)
	return nil
}

// LeaveChannel is the idempotent inverse of JoinChannel.
func (r *Registry) LeaveChannel(sessionID string, channelID int) error {
	r.mu.Lock()
	sess, ok := r.sessions[sessionID]
	if !ok {
		r.mu.Unlock()
		return fmt.Errorf("%w: session %s", ErrNotFound, sessionID)
	}
	delete(sess.channels, channelID)
	r.mu.Unlock()

	r.rooms.Unsubscribe(channelID, sessionID)
	return nil
}

// Unregister removes the session and unsubscribes it from every channel
// it had joined. It returns those channels in ascending order so the
// caller can emit the departure notifications. Unknown sessions are a
// no-op.
func (r *Registry) Unregister(sessionID string) []int {
	r.mu.Lock()
	sess, ok := r.sessions[sessionID]
	if !ok {
		r.mu.Unlock()
		return nil
	}
	delete(r.sessions, sessionID)
	channels := make([]int, 0, len(sess.channels))
	for channelID := range sess.channels {
		channels = append(channels, channelID)
	}
	r.mu.Unlock()

	sort.Ints(channels)
	for _, channelID := range channels {
		r.rooms.Unsubscribe(channelID, sessionID)
	}
	return channels
}

// TransportOf returns the live transport handle for a session.
func (r *Registry) TransportOf(sessionID string) (Transport, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	sess, ok := r.sessions[sessionID]
	if !ok {
		return nil, fmt.Errorf("%w: session %s", ErrNotFound, sessionID)
	}
	return sess.transport, nil
}

// UserOf returns the identity bound to the session, or
// ErrUnauthenticated when none is bound yet.
func (r *Registry) UserOf(sessionID string) (int, string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	sess, ok := r.sessions[sessionID]
	if !ok {
		return 0, "", fmt.Errorf("%w: session %s", ErrNotFound, sessionID)
	}
	if !sess.authenticated() {
		return 0, "", ErrUnauthenticated
	}
	return sess.userID, sess.userName, nil
}
