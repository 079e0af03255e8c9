package entity

import (
	"time"

	"github.com/google/uuid"
)

// MaxContactImages bounds attachments on a contact request.
const MaxContactImages = 3

// ContactSubject is the closed set of enquiry topics.
type ContactSubject string

const (
	ContactSubjectGeneral       ContactSubject = "general"
	ContactSubjectOrder         ContactSubject = "order"
	ContactSubjectCommission    ContactSubject = "commission"
	ContactSubjectCollaboration ContactSubject = "collaboration"
	ContactSubjectFeedback      ContactSubject = "feedback"
)

// IsValid checks if the subject is a known value.
func (s ContactSubject) IsValid() bool {
	switch s {
	case ContactSubjectGeneral, ContactSubjectOrder, ContactSubjectCommission,
		ContactSubjectCollaboration, ContactSubjectFeedback:
		return true
	default:
		return false
	}
}

// ContactStatus tracks how far an enquiry has been handled.
type ContactStatus string

const (
	ContactStatusNew      ContactStatus = "new"
	ContactStatusRead     ContactStatus = "read"
	ContactStatusReplied  ContactStatus = "replied"
	ContactStatusResolved ContactStatus = "resolved"
)

var contactTransitions = map[ContactStatus][]ContactStatus{
	ContactStatusNew:     {ContactStatusRead, ContactStatusReplied, ContactStatusResolved},
	ContactStatusRead:    {ContactStatusReplied, ContactStatusResolved},
	ContactStatusReplied: {ContactStatusResolved},
}

// IsValid checks if the status is a known value.
func (s ContactStatus) IsValid() bool {
	switch s {
	case ContactStatusNew, ContactStatusRead, ContactStatusReplied, ContactStatusResolved:
		return true
	default:
		return false
	}
}

// CanTransitionTo reports whether next follows s.
func (s ContactStatus) CanTransitionTo(next ContactStatus) bool {
	for _, allowed := range contactTransitions[s] {
		if allowed == next {
			return true
		}
	}

	return false
}

// Contact is a message sent through the public contact form.
// Resolved contacts are deleted together with their images.
type Contact struct {
	ID        uuid.UUID
	Name      string
	Email     string
	Subject   ContactSubject
	Message   string
	Images    []MediaRef
	Status    ContactStatus
	CreatedAt time.Time
	UpdatedAt time.Time
}

// MediaIDs lists the storage keys of the attachments.
func (c *Contact) MediaIDs() []string {
	ids := make([]string, 0, len(c.Images))
	for _, img := range c.Images {
		if img.ID != "" {
			ids = append(ids, img.ID)
		}
	}

	return ids
}
