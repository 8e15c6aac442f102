package ws

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// inject places a connection directly into the manager, bypassing the
// register channel so tests need no running manager loop.
func inject(m *Manager, userID int64) *Connection {
	c := &Connection{
		UserID:  userID,
		Send:    make(chan []byte, 8),
		manager: m,
	}
	m.mu.Lock()
	m.clients[userID] = c
	m.mu.Unlock()
	return c
}

func received(c *Connection) []byte {
	select {
	case msg := <-c.Send:
		return msg
	default:
		return nil
	}
}

func TestNewManagerFillsOptionDefaults(t *testing.T) {
	m := NewManager(Options{})
	assert.Equal(t, defaultPingInterval, m.opts.PingInterval)
	assert.Equal(t, defaultWriteWait, m.opts.WriteWait)
	assert.Equal(t, defaultPongWait, m.opts.PongWait)
	assert.Equal(t, int64(defaultMaxMessageSize), m.opts.MaxMessageSize)

	tuned := NewManager(Options{
		PingInterval:   20 * time.Second,
		WriteWait:      5 * time.Second,
		PongWait:       25 * time.Second,
		MaxMessageSize: 1024,
	})
	assert.Equal(t, 20*time.Second, tuned.opts.PingInterval)
	assert.Equal(t, 5*time.Second, tuned.opts.WriteWait)
	assert.Equal(t, 25*time.Second, tuned.opts.PongWait)
	assert.Equal(t, int64(1024), tuned.opts.MaxMessageSize)
}

func TestBroadcastGroupReachesOnlyMembers(t *testing.T) {
	m := NewManager(Options{})
	alice := inject(m, 1)
	bob := inject(m, 2)
	carol := inject(m, 3)

	m.JoinGroup("game:friday-night", 1)
	m.JoinGroup("game:friday-night", 2)
	m.JoinGroup("game:other", 3)

	m.BroadcastGroup("game:friday-night", []byte("deal"))

	assert.Equal(t, []byte("deal"), received(alice))
	assert.Equal(t, []byte("deal"), received(bob))
	assert.Nil(t, received(carol))
}

func TestLeaveGroupStopsDelivery(t *testing.T) {
	m := NewManager(Options{})
	alice := inject(m, 1)

	m.JoinGroup("game:friday-night", 1)
	m.LeaveGroup("game:friday-night", 1)

	m.BroadcastGroup("game:friday-night", []byte("deal"))
	assert.Nil(t, received(alice))

	// Empty groups are dropped entirely.
	m.mu.RLock()
	defer m.mu.RUnlock()
	assert.NotContains(t, m.groups, "game:friday-night")
}

func TestBroadcastGroupSkipsDisconnectedMembers(t *testing.T) {
	m := NewManager(Options{})
	alice := inject(m, 1)

	// Bob joined the group but his connection is gone; membership alone
	// must not break the broadcast.
	m.JoinGroup("game:friday-night", 1)
	m.JoinGroup("game:friday-night", 2)

	m.BroadcastGroup("game:friday-night", []byte("deal"))
	assert.Equal(t, []byte("deal"), received(alice))
}

func TestDropFromGroupsRemovesEveryMembership(t *testing.T) {
	m := NewManager(Options{})
	inject(m, 1)
	inject(m, 2)

	m.JoinGroup("game:friday-night", 1)
	m.JoinGroup("game:cup-2026", 1)
	m.JoinGroup("game:friday-night", 2)

	m.mu.Lock()
	m.dropFromGroups(1)
	m.mu.Unlock()

	m.mu.RLock()
	defer m.mu.RUnlock()
	require.Contains(t, m.groups, "game:friday-night")
	assert.NotContains(t, m.groups["game:friday-night"], int64(1))
	assert.Contains(t, m.groups["game:friday-night"], int64(2))
	assert.NotContains(t, m.groups, "game:cup-2026", "empty group is removed")
}

func TestSendToUserDeliversDirectly(t *testing.T) {
	m := NewManager(Options{})
	alice := inject(m, 1)

	m.SendToUser(1, []byte("your hand"))
	assert.Equal(t, []byte("your hand"), received(alice))

	// Unknown user is a no-op.
	m.SendToUser(99, []byte("nobody home"))
}
