package chat

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRoomIndex_SubscribeIsIdempotent(t *testing.T) {
	rooms := NewRoomIndex()

	rooms.Subscribe(7, "s1")
	rooms.Subscribe(7, "s1")
	rooms.Subscribe(7, "s2")

	require.ElementsMatch(t, []string{"s1", "s2"}, rooms.RecipientsOf(7))
}

func TestRoomIndex_UnsubscribeIsIdempotent(t *testing.T) {
	rooms := NewRoomIndex()
	rooms.Subscribe(7, "s1")

	rooms.Unsubscribe(7, "s1")
	rooms.Unsubscribe(7, "s1")
	rooms.Unsubscribe(99, "s1")

	require.Empty(t, rooms.RecipientsOf(7))
}

func TestRoomIndex_EmptyChannelEntryIsKept(t *testing.T) {
	rooms := NewRoomIndex()
	rooms.Subscribe(7, "s1")
	rooms.Unsubscribe(7, "s1")

	rooms.mu.RLock()
	_, ok := rooms.rooms[7]
	rooms.mu.RUnlock()
	require.True(t, ok)

	// and a subsequent join still works
	rooms.Subscribe(7, "s2")
	require.Equal(t, []string{"s2"}, rooms.RecipientsOf(7))
}

func TestRoomIndex_RecipientsOfUnknownChannel(t *testing.T) {
	rooms := NewRoomIndex()
	require.Empty(t, rooms.RecipientsOf(404))
}
