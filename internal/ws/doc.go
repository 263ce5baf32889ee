// Package ws is the gateway adapter between physical WebSocket connections
// and the meeting session hub. It terminates one connection per client,
// decodes inbound command envelopes, invokes the session lifecycle
// controller, and pumps outbound broadcasts to the socket.
//
// A connection is bound to exactly one meeting for its lifetime; there is no
// session migration. Admission (authentication and meeting access) happens
// before HandleConnection is called; the gateway trusts that decision.
package ws
