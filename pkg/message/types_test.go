package message

import "testing"

func TestChannelRef_IsGroup(t *testing.T) {
	tests := []struct {
		name string
		chat ChannelRef
		want bool
	}{
		{"group chat", ChannelRef{ID: "1", Type: ChatGroup}, true},
		{"dm chat", ChannelRef{ID: "2", Type: ChatDM}, false},
		{"empty type", ChannelRef{ID: "3"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.chat.IsGroup(); got != tt.want {
				t.Errorf("ChannelRef.IsGroup() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestChannelRef_IsDirectMessage(t *testing.T) {
	tests := []struct {
		name string
		chat ChannelRef
		want bool
	}{
		{"dm chat", ChannelRef{ID: "1", Type: ChatDM}, true},
		{"group chat", ChannelRef{ID: "2", Type: ChatGroup}, false},
		{"empty type", ChannelRef{ID: "3"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.chat.IsDirectMessage(); got != tt.want {
				t.Errorf("ChannelRef.IsDirectMessage() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNewReply(t *testing.T) {
	ev := Event{
		ID:   "msg-1",
		Chat: ChannelRef{Transport: "transport.bridge", ID: "g1", Type: ChatGroup, Name: "G"},
	}
	out := NewReply(ev, "sorry")

	if out.Chat != ev.Chat {
		t.Errorf("Chat = %+v, want %+v", out.Chat, ev.Chat)
	}
	if out.ReplyToID != "msg-1" {
		t.Errorf("ReplyToID = %q, want %q", out.ReplyToID, "msg-1")
	}
	if out.Text != "sorry" {
		t.Errorf("Text = %q, want %q", out.Text, "sorry")
	}
}

func TestNewTextMessage(t *testing.T) {
	chat := ChannelRef{ID: "dm-1", Type: ChatDM}
	out := NewTextMessage(chat, "ping")
	if out.ReplyToID != "" {
		t.Errorf("ReplyToID = %q, want empty", out.ReplyToID)
	}
	if out.Text != "ping" || out.Chat != chat {
		t.Errorf("unexpected message: %+v", out)
	}
}
