// Package bridge is the synchronization controller between the host editor
// and the embedded Neovim engine.
//
// The controller owns the engine process and the msgpack-RPC channel over
// its standard I/O. Inbound traffic is demultiplexed by method name:
//
//   - "vscode-action" asks the host to run a named editor action, optionally
//     scoped to a transient range, as a notification (with an optional
//     callback id for result delivery) or as a request (the result becomes
//     the RPC response).
//   - "vscode-neovim" carries a custom event that is republished on the
//     internal event bus for downstream collaborators.
//   - "redraw" carries UI update fragments. Fragments are buffered across
//     messages until a "flush" fragment arrives, then published as one
//     ordered, immutable batch.
//
// The method names follow the vscode-neovim runtime conventions so existing
// engine-side scripts can address the host unchanged.
//
// Downstream collaborators (buffer mirroring, cursor translation,
// highlighting, command line, status line) subscribe to the event bus; this
// package never interprets redraw payloads.
package bridge
