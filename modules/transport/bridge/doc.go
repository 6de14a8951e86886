// Package bridge implements the "transport.bridge" module: a WebSocket
// client to a chat-bridge sidecar that owns the actual messaging account
// (for example a whatsapp-web.js process holding the phone pairing).
//
// The bridge pushes every created message, including the bot's own sends,
// as message_create envelopes. The bot sends messages and lists contacts
// through correlated request/response envelopes. The connection is
// re-established with a fixed delay until the module stops.
package bridge
