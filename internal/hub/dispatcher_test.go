package hub

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBroadcastDeliversToAllConnections(t *testing.T) {
	registry := NewRegistry()
	dispatcher := NewDispatcher(registry)

	conns := make([]*testConn, 5)
	for i := range conns {
		conns[i] = newTestConn("user")
		require.NoError(t, registry.Attach("meeting-1", conns[i]))
	}

	report := dispatcher.Broadcast("meeting-1", Event{Type: EventPong})

	assert.Equal(t, 5, report.Succeeded)
	assert.Equal(t, 0, report.Failed)
	for i, conn := range conns {
		assert.Len(t, conn.Frames(), 1, "connection %d", i)
	}
}

func TestBroadcastDetachesFailingConnections(t *testing.T) {
	registry := NewRegistry()
	dispatcher := NewDispatcher(registry)

	healthy := newTestConn("healthy")
	broken := newTestConn("broken")
	broken.failing = true

	require.NoError(t, registry.Attach("meeting-1", healthy))
	require.NoError(t, registry.Attach("meeting-1", broken))

	report := dispatcher.Broadcast("meeting-1", Event{Type: EventPong})

	// Partial failure is not escalated: the healthy connection is served.
	assert.Equal(t, 1, report.Succeeded)
	assert.Equal(t, 1, report.Failed)
	assert.Len(t, healthy.Frames(), 1)

	// The failing connection is pruned and closed.
	assert.Equal(t, 1, registry.Count("meeting-1"))
	_, ok := registry.SessionOf(broken)
	assert.False(t, ok)
	assert.True(t, broken.IsClosed())
}

func TestBroadcastToUnknownSessionIsEmptyReport(t *testing.T) {
	dispatcher := NewDispatcher(NewRegistry())

	report := dispatcher.Broadcast("no-such-meeting", Event{Type: EventPong})

	assert.Equal(t, DeliveryReport{}, report)
}

func TestUnicastDetachesOnFailure(t *testing.T) {
	registry := NewRegistry()
	dispatcher := NewDispatcher(registry)

	conn := newTestConn("user")
	conn.failing = true
	require.NoError(t, registry.Attach("meeting-1", conn))

	err := dispatcher.Unicast(conn, Event{Type: EventPong})

	assert.Error(t, err)
	assert.Equal(t, 0, registry.Count("meeting-1"))
	assert.True(t, conn.IsClosed())
}
