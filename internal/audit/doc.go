// Package audit implements async event dispatching for session lifecycle
// operations.
//
//   - [Sink] is the consumer interface (channel, JSON writer, no-op, fan-out).
//   - [Dispatcher] is a buffered async relay with drop-if-full or
//     block-if-full semantics.
//   - [Event] is the structured record: ULID, timestamp, type, user, rsid, IP.
//
// This package owns buffering and delivery. Which events are emitted is
// decided by the engine.
package audit
