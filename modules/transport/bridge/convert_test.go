package bridge

import (
	"testing"

	"github.com/flemzord/relaybot/pkg/message"
)

func TestConvertEvent(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		in       MessageCreate
		wantType message.ChatType
		zeroTime bool
	}{
		{"group", MessageCreate{ID: "1", Chat: WireChat{ID: "g", Name: "G", IsGroup: true}, Timestamp: 10}, message.ChatGroup, false},
		{"direct", MessageCreate{ID: "2", Chat: WireChat{ID: "r", Name: "R"}}, message.ChatDM, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ev := convertEvent(tt.in, "transport.bridge")
			if ev.Chat.Type != tt.wantType {
				t.Errorf("Type = %q, want %q", ev.Chat.Type, tt.wantType)
			}
			if ev.Chat.Transport != "transport.bridge" {
				t.Errorf("Transport = %q", ev.Chat.Transport)
			}
			if ev.Timestamp.IsZero() != tt.zeroTime {
				t.Errorf("Timestamp = %v, zero want %v", ev.Timestamp, tt.zeroTime)
			}
		})
	}
}

func TestConvertOutbound(t *testing.T) {
	t.Parallel()

	msg := message.OutboundMessage{Chat: message.ChannelRef{ID: "c-1"}, ReplyToID: "m-1", Text: "hi"}
	got := convertOutbound(msg)
	if got != (SendMessage{ChatID: "c-1", Text: "hi", ReplyTo: "m-1"}) {
		t.Errorf("convertOutbound = %+v", got)
	}
}

func TestConvertContacts(t *testing.T) {
	t.Parallel()

	got := convertContacts([]WireContact{{ID: "a", Name: "A"}, {ID: "g", Name: "G", IsGroup: true}})
	if len(got) != 2 || got[0].Name != "A" || !got[1].IsGroup {
		t.Errorf("convertContacts = %+v", got)
	}
	if got := convertContacts(nil); len(got) != 0 {
		t.Errorf("convertContacts(nil) = %+v, want empty", got)
	}
}
