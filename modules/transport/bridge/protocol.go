package bridge

import (
	"encoding/json"
	"time"
)

// MessageType identifies the kind of WebSocket message in the bridge protocol.
type MessageType string

// Protocol message types exchanged over the WebSocket connection.
const (
	// Bridge to bot.
	MsgMessageCreate MessageType = "message_create"
	MsgSendResult    MessageType = "send_result"
	MsgContacts      MessageType = "contacts"
	MsgPong          MessageType = "pong"
	MsgError         MessageType = "error"

	// Bot to bridge.
	MsgHello       MessageType = "hello"
	MsgSendMessage MessageType = "send_message"
	MsgGetContacts MessageType = "get_contacts"
	MsgPing        MessageType = "ping"
)

// Envelope is the wire format for all WebSocket messages. Responses carry
// the ID of the request they answer.
type Envelope struct {
	Type      MessageType     `json:"type"`
	ID        string          `json:"id,omitempty"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

// Hello authenticates the bot to the bridge right after connecting.
type Hello struct {
	Token string `json:"token,omitempty"`
}

// WireChat describes a conversation as the bridge reports it.
type WireChat struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	IsGroup bool   `json:"is_group"`
}

// WireSender describes the author of a message.
type WireSender struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

// MessageCreate is pushed by the bridge for every created message.
type MessageCreate struct {
	ID     string     `json:"id"`
	Chat   WireChat   `json:"chat"`
	Sender WireSender `json:"sender"`
	Body   string     `json:"body"`
	FromMe bool       `json:"from_me"`
	// Timestamp is in Unix seconds. Zero means unknown.
	Timestamp int64 `json:"timestamp,omitempty"`
}

// SendMessage asks the bridge to post a text message.
type SendMessage struct {
	ChatID  string `json:"chat_id"`
	Text    string `json:"text"`
	ReplyTo string `json:"reply_to,omitempty"`
}

// SendResult answers a SendMessage.
type SendResult struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

// WireContact is one address book entry.
type WireContact struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	IsGroup bool   `json:"is_group"`
}

// ContactsResult answers a get_contacts request.
type ContactsResult struct {
	Contacts []WireContact `json:"contacts"`
}

// ErrorPayload is carried by error envelopes.
type ErrorPayload struct {
	Message string `json:"message"`
}
