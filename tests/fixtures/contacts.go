// Package fixtures provides reusable test data generators for integration tests.
// This package eliminates test data duplication and ensures consistent test content
// across different test suites.
package fixtures

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"call-agent/internal/domain/entity"
)

// ContactOption is a functional option for customizing test contacts.
type ContactOption func(*entity.Contact)

// NewTestContact creates a valid Contact with sensible defaults.
// Use functional options to customize the contact for specific test cases.
//
// Example:
//
//	contact := NewTestContact()
//	contact := NewTestContact(WithID(100), WithName("Bob"))
func NewTestContact(opts ...ContactOption) *entity.Contact {
	c := &entity.Contact{
		ID:    1,
		Name:  "Alice",
		Phone: "+15550000001",
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// WithID sets the ID of the contact.
func WithID(id int64) ContactOption {
	return func(c *entity.Contact) {
		c.ID = id
	}
}

// WithName sets the Name of the contact.
func WithName(name string) ContactOption {
	return func(c *entity.Contact) {
		c.Name = name
	}
}

// WithPhone sets the Phone of the contact.
func WithPhone(phone string) ContactOption {
	return func(c *entity.Contact) {
		c.Phone = phone
	}
}

// QueueOptions configures the generated contact queue.
type QueueOptions struct {
	// Size is the number of contacts in the queue
	Size int

	// StartID is the ID assigned to the first contact; IDs increment from here
	StartID int64
}

// baseNames is cycled to produce deterministic contact names.
var baseNames = []string{
	"Alice", "Bob", "Carol", "Dave", "Erin",
	"Frank", "Grace", "Heidi", "Ivan", "Judy",
	"Mallory", "Niaj", "Olivia", "Peggy", "Rupert",
	"Sybil", "Trent", "Victor", "Walter", "Wendy",
}

// GenerateContactQueue generates a queue of valid contacts based on the
// provided options. Names cycle through a fixed list and phone numbers are
// unique E.164 strings, so two calls with the same options produce the same
// queue.
//
// Example:
//
//	queue := GenerateContactQueue(QueueOptions{Size: 50, StartID: 1})
func GenerateContactQueue(opts QueueOptions) []entity.Contact {
	if opts.StartID == 0 {
		opts.StartID = 1
	}

	contacts := make([]entity.Contact, 0, opts.Size)
	for i := 0; i < opts.Size; i++ {
		id := opts.StartID + int64(i)
		name := baseNames[i%len(baseNames)]
		if i >= len(baseNames) {
			name = fmt.Sprintf("%s %d", name, i/len(baseNames)+1)
		}
		contacts = append(contacts, entity.Contact{
			ID:    id,
			Name:  name,
			Phone: fmt.Sprintf("+1555%07d", id),
		})
	}
	return contacts
}

// GenerateSmallQueue generates a queue of 3 contacts.
// This matches the size of the built-in demo queue.
//
// Example:
//
//	queue := GenerateSmallQueue()
func GenerateSmallQueue() []entity.Contact {
	return GenerateContactQueue(QueueOptions{Size: 3, StartID: 1})
}

// GenerateLargeQueue generates a queue of 100 contacts.
// This is useful for testing full campaign runs at scale.
//
// Example:
//
//	queue := GenerateLargeQueue()
func GenerateLargeQueue() []entity.Contact {
	return GenerateContactQueue(QueueOptions{Size: 100, StartID: 1})
}

// contactFileDoc mirrors the on-disk contact file shape consumed by the
// contactlist loader.
type contactFileDoc struct {
	Contacts []contactEntryDoc `yaml:"contacts"`
}

type contactEntryDoc struct {
	ID    int64  `yaml:"id"`
	Name  string `yaml:"name"`
	Phone string `yaml:"phone"`
}

// ContactsYAML serializes contacts into the YAML format the contactlist
// loader reads, for tests that exercise the file-loading path.
//
// Example:
//
//	data := ContactsYAML(GenerateSmallQueue())
//	os.WriteFile(filepath.Join(dir, "contacts.yaml"), data, 0o600)
func ContactsYAML(contacts []entity.Contact) []byte {
	doc := contactFileDoc{Contacts: make([]contactEntryDoc, 0, len(contacts))}
	for _, c := range contacts {
		doc.Contacts = append(doc.Contacts, contactEntryDoc{ID: c.ID, Name: c.Name, Phone: c.Phone})
	}

	data, err := yaml.Marshal(doc)
	if err != nil {
		// yaml.Marshal cannot fail on this fixed shape
		panic(fmt.Sprintf("fixtures: marshal contacts: %v", err))
	}
	return data
}
