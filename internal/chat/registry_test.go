package chat

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestRegistry(t *testing.T) (*Registry, *fakeRecipient) {
	t.Helper()

	users := NewRoster("users")
	watcher := newFakeRecipient("watcher")
	require.NoError(t, users.Add(watcher))
	watcher.drain()

	return NewRegistry(users), watcher
}

func TestRegistryAddRoomBroadcastsSortedListing(t *testing.T) {
	registry, watcher := newTestRegistry(t)

	require.NoError(t, registry.AddRoom(&Room{ID: "r2"}))
	require.Equal(t, "rooms r2", watcher.next(t))

	require.NoError(t, registry.AddRoom(&Room{ID: "r1"}))
	require.Equal(t, "rooms r1 r2", watcher.next(t))

	require.True(t, registry.Contains("r1"))
	require.True(t, registry.Contains("r2"))
}

func TestRegistryAddDuplicateRoomRejected(t *testing.T) {
	registry, watcher := newTestRegistry(t)

	require.NoError(t, registry.AddRoom(&Room{ID: "r1"}))
	watcher.drain()

	err := registry.AddRoom(&Room{ID: "r1"})
	require.ErrorIs(t, err, ErrDuplicateRoom)

	// A rejected add must not broadcast.
	watcher.expectNone(t)
}

func TestRegistryRemoveRoomBroadcastsUpdatedListing(t *testing.T) {
	registry, watcher := newTestRegistry(t)

	r1 := &Room{ID: "r1"}
	r2 := &Room{ID: "r2"}
	require.NoError(t, registry.AddRoom(r1))
	require.NoError(t, registry.AddRoom(r2))
	watcher.drain()

	registry.RemoveRoom(r1)
	require.Equal(t, "rooms r2", watcher.next(t))
	require.False(t, registry.Contains("r1"))

	registry.RemoveRoom(r2)
	require.Equal(t, "rooms", watcher.next(t))
}

func TestRegistryRemoveAbsentRoomIsNoOp(t *testing.T) {
	registry, watcher := newTestRegistry(t)

	registry.RemoveRoom(&Room{ID: "ghost"})
	watcher.expectNone(t)
}

func TestRegistryLookup(t *testing.T) {
	registry, _ := newTestRegistry(t)

	r1 := &Room{ID: "r1"}
	require.NoError(t, registry.AddRoom(r1))

	got, ok := registry.Lookup("r1")
	require.True(t, ok)
	require.Same(t, r1, got)

	_, ok = registry.Lookup("missing")
	require.False(t, ok)
}

func TestRegistryPushListingTargetsOneRecipient(t *testing.T) {
	registry, watcher := newTestRegistry(t)

	require.NoError(t, registry.AddRoom(&Room{ID: "r1"}))
	watcher.drain()

	newcomer := newFakeRecipient("newcomer")
	registry.PushListing(newcomer)

	require.Equal(t, "rooms r1", newcomer.next(t))
	watcher.expectNone(t)
}
