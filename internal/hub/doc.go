// Package hub implements the live meeting session hub: it tracks which
// connections are attached to which meeting, keeps the in-progress session
// state (phase, transcript, participants), and fans out events to every
// attached connection in real time.
//
// The package is split into four collaborating parts:
//
//   - Registry: maps a session id to its attached connections and each
//     connection back to its session.
//   - Store: maps a session id to its live state. Liveness of a session is
//     independent of how many connections are attached.
//   - Dispatcher: delivers one event to every connection of a session,
//     detaching connections that fail to accept delivery.
//   - Controller: owns the per-session state machine and orchestrates
//     summarization calls at lifecycle boundaries.
//
// Nothing here is durable: session state lives only in process memory and is
// deleted when the meeting ends.
package hub
