package bridge

import (
	"time"

	"github.com/flemzord/relaybot/pkg/message"
)

// convertEvent maps a message_create payload to a message.Event owned by
// the given transport.
func convertEvent(mc MessageCreate, transportID string) message.Event {
	chatType := message.ChatDM
	if mc.Chat.IsGroup {
		chatType = message.ChatGroup
	}

	ev := message.Event{
		ID: mc.ID,
		Chat: message.ChannelRef{
			Transport: transportID,
			ID:        mc.Chat.ID,
			Type:      chatType,
			Name:      mc.Chat.Name,
		},
		Sender: message.Sender{ID: mc.Sender.ID, Name: mc.Sender.Name},
		Body:   mc.Body,
		FromMe: mc.FromMe,
	}
	if mc.Timestamp > 0 {
		ev.Timestamp = time.Unix(mc.Timestamp, 0).UTC()
	}
	return ev
}

func convertOutbound(msg message.OutboundMessage) SendMessage {
	return SendMessage{
		ChatID:  msg.Chat.ID,
		Text:    msg.Text,
		ReplyTo: msg.ReplyToID,
	}
}

func convertContacts(wire []WireContact) []message.Contact {
	out := make([]message.Contact, 0, len(wire))
	for _, c := range wire {
		out = append(out, message.Contact{ID: c.ID, Name: c.Name, IsGroup: c.IsGroup})
	}
	return out
}
