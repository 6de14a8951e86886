package relay

import "strings"

// Settings names who the relay listens to and who it asks.
type Settings struct {
	// Group is the display name of the monitored group chat.
	Group string
	// Responder is the display name of the contact that answers queries.
	Responder string
	// Trigger is the substring that marks a group message as a query.
	Trigger string
}

// ExtractQuery removes the first occurrence of trigger from body and trims
// the surrounding whitespace.
func ExtractQuery(body, trigger string) string {
	return strings.TrimSpace(strings.Replace(body, trigger, "", 1))
}
