package chat

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPresence_MultiDeviceOnline(t *testing.T) {
	presence := NewPresence()

	presence.SetOnline(1, "phone")
	presence.SetOnline(1, "laptop")
	require.True(t, presence.Online(1))

	// still online while one session remains
	require.False(t, presence.SetOffline(1, "phone"))
	require.True(t, presence.Online(1))

	require.True(t, presence.SetOffline(1, "laptop"))
	require.False(t, presence.Online(1))
}

func TestPresence_OfflineForUnknownUser(t *testing.T) {
	presence := NewPresence()
	require.False(t, presence.SetOffline(9, "ghost"))
}

func TestPresence_Typing(t *testing.T) {
	presence := NewPresence()
	presence.SetOnline(1, "s1")

	presence.SetTyping(1, 7, true)
	channelID, ok := presence.TypingIn(1)
	require.True(t, ok)
	require.Equal(t, 7, channelID)

	// stop-typing for another channel does not clear it
	presence.SetTyping(1, 8, false)
	_, ok = presence.TypingIn(1)
	require.True(t, ok)

	presence.SetTyping(1, 7, false)
	_, ok = presence.TypingIn(1)
	require.False(t, ok)
}

func TestPresence_TypingClearedOnLastDisconnect(t *testing.T) {
	presence := NewPresence()
	presence.SetOnline(1, "s1")
	presence.SetTyping(1, 7, true)

	presence.SetOffline(1, "s1")
	_, ok := presence.TypingIn(1)
	require.False(t, ok)
}

func TestPresence_Snapshot(t *testing.T) {
	presence := NewPresence()
	presence.SetOnline(1, "s1")
	presence.SetOnline(2, "s2")
	presence.SetOffline(2, "s2")

	snapshot := presence.Snapshot()
	require.True(t, snapshot[1])
	require.False(t, snapshot[2])

	_, seen := presence.LastSeen(2)
	require.True(t, seen)
}
