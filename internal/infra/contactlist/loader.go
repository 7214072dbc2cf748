// Package contactlist loads the campaign contact queue.
// Contacts come from a YAML file when one is configured, otherwise the
// built-in demo queue is used.
package contactlist

import (
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"call-agent/internal/domain/entity"
)

// contactFile is the on-disk YAML shape:
//
//	contacts:
//	  - id: 1
//	    name: Contact 1
//	    phone: "+1234567890"
type contactFile struct {
	Contacts []contactEntry `yaml:"contacts"`
}

type contactEntry struct {
	ID    int64  `yaml:"id"`
	Name  string `yaml:"name"`
	Phone string `yaml:"phone"`
}

// DefaultContacts returns the built-in demo queue used when no contact
// file is configured.
func DefaultContacts() []entity.Contact {
	return []entity.Contact{
		{ID: 1, Name: "Contact 1", Phone: "+1234567890"},
		{ID: 2, Name: "Contact 2", Phone: "+1234567891"},
		{ID: 3, Name: "Contact 3", Phone: "+1234567892"},
	}
}

// Load reads and validates a YAML contact file.
// Every contact must pass entity validation; the first invalid entry
// fails the whole load so a campaign never starts with a partial queue.
func Load(path string) ([]entity.Contact, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read contact file: %w", err)
	}

	var file contactFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse contact file: %w", err)
	}

	if len(file.Contacts) == 0 {
		return nil, fmt.Errorf("%s: %w", path, entity.ErrEmptyContactList)
	}

	contacts := make([]entity.Contact, 0, len(file.Contacts))
	for i, entry := range file.Contacts {
		contact := entity.Contact{ID: entry.ID, Name: entry.Name, Phone: entry.Phone}
		if err := contact.Validate(); err != nil {
			return nil, fmt.Errorf("contact %d: %w", i, err)
		}
		contacts = append(contacts, contact)
	}

	slog.Info("loaded contact list",
		slog.String("path", path),
		slog.Int("contacts", len(contacts)))

	return contacts, nil
}
