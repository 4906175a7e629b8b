package kafka

import "time"

type EventType string

const (
	OfferCreated      EventType = "offer_created"
	OfferUpdated      EventType = "offer_updated"
	OfferDeleted      EventType = "offer_deleted"
	VisibilityChanged EventType = "visibility_changed"
)

// Event is one offer-lifecycle record published after a successful
// write. Category is empty for deletions.
type Event struct {
	OfferID   string    `json:"offer_id"`
	ClientID  string    `json:"client_id,omitempty"`
	Type      EventType `json:"type"`
	Category  string    `json:"category,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}
