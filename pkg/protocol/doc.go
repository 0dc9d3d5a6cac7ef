// Package protocol implements the interactive connection protocol: the
// state machine that turns socket presses, releases and pointer moves into
// validated edge creation.
//
// # States
//
//   - [Idle]: nothing selected.
//   - [Dragging]: a socket was pressed and the pointer is held. A preview
//     edge follows the pointer.
//   - [AwaitingSecondClick]: a drag ended over empty canvas (or over its own
//     socket); the origin is remembered until the next socket press. Moving
//     the pointer resumes the preview without losing the origin.
//
// Both completion paths, drag-release and click-then-click, end in exactly
// one call to [Connector.ConnectSockets] and return to Idle. A rejected
// connection is logged and reported in the [Outcome]; it is never an error
// of the event call.
//
// The transition table has an entry for every (state, event) pair, so no
// event sequence can reach an undefined state. The preview edge is
// transient and never enters the edge store.
package protocol
