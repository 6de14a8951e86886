package transport

import (
	"context"

	"github.com/flemzord/relaybot/pkg/message"
)

// ContactLister lists the contacts reachable through one or more transports.
// *Dispatcher implements it.
type ContactLister interface {
	Contacts(ctx context.Context) ([]message.Contact, error)
}

// Directory resolves responder display names to contacts and their direct
// channels.
type Directory struct {
	contacts ContactLister
}

// NewDirectory creates a Directory backed by the given contact source.
func NewDirectory(contacts ContactLister) *Directory {
	return &Directory{contacts: contacts}
}

// FindByName returns the first non-group contact whose name is exactly name.
// A miss is reported as (zero, false, nil); an error means the address book
// could not be read at all.
func (d *Directory) FindByName(ctx context.Context, name string) (message.Contact, bool, error) {
	contacts, err := d.contacts.Contacts(ctx)
	if err != nil {
		return message.Contact{}, false, err
	}
	for _, c := range contacts {
		if c.Name == name && !c.IsGroup {
			return c, true, nil
		}
	}
	return message.Contact{}, false, nil
}

// DirectChannelOf returns the one-to-one conversation with contact.
func (d *Directory) DirectChannelOf(_ context.Context, contact message.Contact) (message.ChannelRef, error) {
	return message.ChannelRef{
		Transport: contact.Transport,
		ID:        contact.ID,
		Type:      message.ChatDM,
		Name:      contact.Name,
	}, nil
}
