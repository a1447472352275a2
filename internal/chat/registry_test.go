package chat

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRegistry_RegisterRejectsDuplicates(t *testing.T) {
	registry := NewRegistry(NewRoomIndex())

	require.NoError(t, registry.Register("s1", &fakeTransport{}))
	require.ErrorIs(t, registry.Register("s1", &fakeTransport{}), ErrDuplicateSession)
}

func TestRegistry_JoinRequiresBoundUser(t *testing.T) {
	registry := NewRegistry(NewRoomIndex())
	require.NoError(t, registry.Register("s1", &fakeTransport{}))

	require.ErrorIs(t, registry.JoinChannel("s1", 7), ErrUnauthenticated)

	require.NoError(t, registry.BindUser("s1", 1, "alice"))
	require.NoError(t, registry.JoinChannel("s1", 7))
}

func TestRegistry_JoinAndLeaveAreIdempotent(t *testing.T) {
	rooms := NewRoomIndex()
	registry := NewRegistry(rooms)
	require.NoError(t, registry.Register("s1", &fakeTransport{}))
	require.NoError(t, registry.BindUser("s1", 1, "alice"))

	require.NoError(t, registry.JoinChannel("s1", 7))
	require.NoError(t, registry.JoinChannel("s1", 7))
	require.Equal(t, []string{"s1"}, rooms.RecipientsOf(7))

	require.NoError(t, registry.LeaveChannel("s1", 7))
	require.NoError(t, registry.LeaveChannel("s1", 7))
	require.Empty(t, rooms.RecipientsOf(7))
}

func TestRegistry_UnregisterReturnsJoinedChannelsInOrder(t *testing.T) {
	rooms := NewRoomIndex()
	registry := NewRegistry(rooms)
	require.NoError(t, registry.Register("s1", &fakeTransport{}))
	require.NoError(t, registry.BindUser("s1", 1, "alice"))
	require.NoError(t, registry.JoinChannel("s1", 20))
	require.NoError(t, registry.JoinChannel("s1", 10))

	channels := registry.Unregister("s1")
	require.Equal(t, []int{10, 20}, channels)
	require.Empty(t, rooms.RecipientsOf(10))
	require.Empty(t, rooms.RecipientsOf(20))

	// unknown session is a no-op
	require.Nil(t, registry.Unregister("s1"))
}

func TestRegistry_TransportOf(t *testing.T) {
	registry := NewRegistry(NewRoomIndex())
	transport := &fakeTransport{}
	require.NoError(t, registry.Register("s1", transport))

	got, err := registry.TransportOf("s1")
	require.NoError(t, err)
	require.Same(t, transport, got)

	_, err = registry.TransportOf("missing")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestRegistry_UserOf(t *testing.T) {
	registry := NewRegistry(NewRoomIndex())
	require.NoError(t, registry.Register("s1", &fakeTransport{}))

	_, _, err := registry.UserOf("s1")
	require.ErrorIs(t, err, ErrUnauthenticated)

	require.NoError(t, registry.BindUser("s1", 5, "carol"))
	userID, name, err := registry.UserOf("s1")
	require.NoError(t, err)
	require.Equal(t, 5, userID)
	require.Equal(t, "carol", name)
}
