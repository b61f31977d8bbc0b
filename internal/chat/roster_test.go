package chat

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRosterRenderSortsNamesRegardlessOfInsertionOrder(t *testing.T) {
	ro := NewRoster("users")
	require.Equal(t, "users", ro.Render())

	for _, name := range []string{"carol", "alice", "bob"} {
		require.NoError(t, ro.Add(newFakeRecipient(name)))
	}

	require.Equal(t, "users alice bob carol", ro.Render())
	require.Equal(t, 3, ro.Size())
}

func TestRosterAddBroadcastsToEveryoneIncludingNewcomer(t *testing.T) {
	ro := NewRoster("users")

	alice := newFakeRecipient("alice")
	require.NoError(t, ro.Add(alice))
	require.Equal(t, "users alice", alice.next(t))

	bob := newFakeRecipient("bob")
	require.NoError(t, ro.Add(bob))
	require.Equal(t, "users alice bob", alice.next(t))
	require.Equal(t, "users alice bob", bob.next(t))
}

func TestRosterAddDuplicateNameRejected(t *testing.T) {
	ro := NewRoster("users")

	alice := newFakeRecipient("alice")
	require.NoError(t, ro.Add(alice))
	alice.drain()

	err := ro.Add(newFakeRecipient("alice"))
	require.ErrorIs(t, err, ErrDuplicateName)
	require.Equal(t, 1, ro.Size())

	// A rejected add must not broadcast.
	alice.expectNone(t)
}

func TestRosterConcurrentDuplicateAddsExactlyOneWins(t *testing.T) {
	ro := NewRoster("users")

	const attempts = 8
	errs := make(chan error, attempts)

	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- ro.Add(newFakeRecipient("highlander"))
		}()
	}
	wg.Wait()
	close(errs)

	var failures int
	for err := range errs {
		if err != nil {
			require.ErrorIs(t, err, ErrDuplicateName)
			failures++
		}
	}
	require.Equal(t, attempts-1, failures)
	require.Equal(t, 1, ro.Size())
}

func TestRosterRemoveBroadcastsToRemaining(t *testing.T) {
	ro := NewRoster("users")
	alice := newFakeRecipient("alice")
	bob := newFakeRecipient("bob")
	require.NoError(t, ro.Add(alice))
	require.NoError(t, ro.Add(bob))
	alice.drain()
	bob.drain()

	ro.Remove("bob")

	require.Equal(t, "users alice", alice.next(t))
	require.False(t, ro.Contains("bob"))
	require.Equal(t, 1, ro.Size())
}

func TestRosterRemoveAbsentIsNoOp(t *testing.T) {
	ro := NewRoster("users")
	alice := newFakeRecipient("alice")
	require.NoError(t, ro.Add(alice))
	alice.drain()

	ro.Remove("ghost")

	require.Equal(t, 1, ro.Size())
	alice.expectNone(t)
}

func TestRosterSizeTracksDistinctNames(t *testing.T) {
	ro := NewRoster("users")

	for i := 0; i < 5; i++ {
		require.NoError(t, ro.Add(newFakeRecipient(fmt.Sprintf("user%d", i))))
	}
	require.Equal(t, 5, ro.Size())

	ro.Remove("user0")
	ro.Remove("user0")
	ro.Remove("user3")
	require.Equal(t, 3, ro.Size())
}

func TestRosterBroadcastReachesCurrentMembersOnly(t *testing.T) {
	ro := NewRoster("users")
	alice := newFakeRecipient("alice")
	require.NoError(t, ro.Add(alice))
	alice.drain()

	ro.Broadcast("hello")
	require.Equal(t, "hello", alice.next(t))

	late := newFakeRecipient("late")
	require.NoError(t, ro.Add(late))
	late.drain()

	// Joining after a broadcast must not replay it.
	require.NotEqual(t, "hello", func() string {
		select {
		case msg := <-late.inbox:
			return msg
		default:
			return ""
		}
	}())
}
