package message

import "time"

// Event is emitted by a transport for every created message, including the
// messages the bot sends itself (FromMe is then true).
type Event struct {
	ID        string     `json:"id"`
	Timestamp time.Time  `json:"timestamp"`
	Chat      ChannelRef `json:"chat"`
	Sender    Sender     `json:"sender"`
	Body      string     `json:"body"`
	FromMe    bool       `json:"from_me,omitempty"`
}

// IsGroup reports whether the event was created in a group conversation.
func (e *Event) IsGroup() bool {
	return e.Chat.IsGroup()
}
