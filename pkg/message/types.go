// Package message defines the transport-agnostic data contract between chat
// transports and the relay: channels, senders, contacts and message events.
package message

// ChatType indicates the kind of conversation.
type ChatType string

const (
	// ChatDM is a direct (one-to-one) conversation.
	ChatDM ChatType = "dm"
	// ChatGroup is a multi-participant group conversation.
	ChatGroup ChatType = "group"
)

// ChannelRef is an opaque handle to a conversation on a given transport.
type ChannelRef struct {
	// Transport is the module ID of the transport that owns the conversation
	// (e.g. "transport.bridge"). The dispatcher routes on it.
	Transport string   `json:"transport,omitempty"`
	ID        string   `json:"id"`
	Type      ChatType `json:"type"`
	// Name is the display name of the conversation as the transport shows it.
	Name string `json:"name,omitempty"`
}

// IsGroup reports whether the channel is a group conversation.
func (c ChannelRef) IsGroup() bool {
	return c.Type == ChatGroup
}

// IsDirectMessage reports whether the channel is a direct conversation.
func (c ChannelRef) IsDirectMessage() bool {
	return c.Type == ChatDM
}

// Sender identifies the author of a message.
type Sender struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

// Contact is an entry of a transport's address book.
type Contact struct {
	Transport string `json:"transport,omitempty"`
	ID        string `json:"id"`
	Name      string `json:"name"`
	IsGroup   bool   `json:"is_group,omitempty"`
}
