package offer

import (
	"time"

	types "servimarket/internal/types/offer"
)

// Offer is a persisted service offer as stored in the ofertas table.
type Offer struct {
	ID          string    `json:"id"`
	Title       string    `json:"titulo"`
	Description string    `json:"descripcion"`
	Category    string    `json:"categoria"`
	Location    string    `json:"ubicacion"`
	Keywords    []string  `json:"palabras_clave,omitempty"`
	Cost        float64   `json:"costo"`
	Schedule    string    `json:"horario,omitempty"`
	ClientID    string    `json:"cliente_id"`
	ClientName  string    `json:"cliente_nombre"`
	Visible     bool      `json:"visible"`
	CreatedAt   time.Time `json:"created_at"`
	ImageURL    string    `json:"imagen_url,omitempty"`
}

type OfferRepo interface {
	// Create persists a new offer with visible=true and a fresh
	// created_at, and returns the stored record with its assigned id.
	Create(o types.CreateOffer) (*Offer, error)
	// List returns one page of offers matching the filter.
	List(f types.OfferFilter) ([]Offer, error)
	GetByID(id string) (*Offer, error)
	// Update applies the non-nil fields of u to the offer with the
	// given id and returns the updated record.
	Update(id string, u types.UpdateOffer) (*Offer, error)
	// ChangeVisibility flips only the visible flag.
	ChangeVisibility(id string, visible bool) (*Offer, error)
	Delete(id string) error
	// ListByClient returns the visible offers of one client.
	ListByClient(clientID string) ([]Offer, error)
}
