package message

// OutboundMessage represents a text message to be sent through a transport.
type OutboundMessage struct {
	Chat ChannelRef `json:"chat"`
	// ReplyToID quotes the message with that ID when the transport supports it.
	ReplyToID string `json:"reply_to_id,omitempty"`
	Text      string `json:"text"`
}

// NewTextMessage creates an outbound text message for the given channel.
func NewTextMessage(chat ChannelRef, text string) OutboundMessage {
	return OutboundMessage{Chat: chat, Text: text}
}

// NewReply creates an outbound text message quoting the given event.
func NewReply(ev Event, text string) OutboundMessage {
	return OutboundMessage{
		Chat:      ev.Chat,
		ReplyToID: ev.ID,
		Text:      text,
	}
}
