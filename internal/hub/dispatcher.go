package hub

import (
	"log"

	"github.com/meetsync/backend/internal/metrics"
)

// DeliveryReport summarizes one broadcast: how many connections accepted the
// frame and how many were dropped for failing to.
type DeliveryReport struct {
	Succeeded int
	Failed    int
}

// Dispatcher delivers events to every connection of a session. A connection
// that fails to accept delivery is detached from the registry and closed;
// delivery to the remaining connections proceeds regardless, so partial
// failure never escalates to the caller.
//
// Frames broadcast to the same session by a serialized caller (the
// Controller holds the session lock across mutate-and-broadcast) reach each
// surviving connection in invocation order. A connection attaching
// concurrently with a broadcast may miss that frame.
type Dispatcher struct {
	registry *Registry
}

// NewDispatcher creates a Dispatcher over the given registry.
func NewDispatcher(registry *Registry) *Dispatcher {
	return &Dispatcher{registry: registry}
}

// Broadcast delivers the event to all connections of the session and returns
// a report of succeeded and failed deliveries.
func (d *Dispatcher) Broadcast(sessionID string, event Event) DeliveryReport {
	data, err := Encode(event)
	if err != nil {
		log.Printf("Failed to encode %s event for session %s: %v", event.Type, sessionID, err)
		return DeliveryReport{}
	}
	return d.BroadcastFrame(sessionID, data)
}

// BroadcastFrame delivers an already encoded frame to all connections of the
// session, pruning connections that reject it.
func (d *Dispatcher) BroadcastFrame(sessionID string, data []byte) DeliveryReport {
	var report DeliveryReport
	for _, conn := range d.registry.Connections(sessionID) {
		if err := conn.Send(data); err != nil {
			// Self-healing membership: drop the unreachable connection
			// and keep delivering to the rest.
			d.registry.Detach(conn)
			conn.Close()
			report.Failed++
			continue
		}
		report.Succeeded++
	}
	metrics.BroadcastsTotal.Inc()
	metrics.DeliveriesTotal.Add(float64(report.Succeeded))
	metrics.DeliveryFailuresTotal.Add(float64(report.Failed))
	return report
}

// Unicast delivers the event to a single connection, detaching it on failure.
func (d *Dispatcher) Unicast(conn Conn, event Event) error {
	data, err := Encode(event)
	if err != nil {
		return err
	}
	return d.SendFrame(conn, data)
}

// SendFrame pushes one frame to a single connection, detaching and closing
// it on failure.
func (d *Dispatcher) SendFrame(conn Conn, data []byte) error {
	if err := conn.Send(data); err != nil {
		d.registry.Detach(conn)
		conn.Close()
		return err
	}
	return nil
}
