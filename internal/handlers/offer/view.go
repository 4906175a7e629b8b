package offer

import (
	"time"

	"servimarket/internal/enrichment"
	repoOffer "servimarket/internal/offer"
)

// View is the offer shape returned by the public endpoints: the stored
// record plus the best-effort reputation fields. When the lookup did
// not succeed the photo is null and the reputation zero.
type View struct {
	repoOffer.Offer
	ClientPhotoURL   *string `json:"cliente_foto_url"`
	ClientReputation float64 `json:"cliente_reputacion"`
}

func newView(o repoOffer.Offer, res enrichment.Result) View {
	return View{
		Offer:            o,
		ClientPhotoURL:   res.Profile.PhotoURL,
		ClientReputation: res.Profile.Reputation,
	}
}

// ProfileView is the shape used when listing a client's own offers. It
// carries no client identity and no enrichment fields.
type ProfileView struct {
	ID          string    `json:"id"`
	Title       string    `json:"titulo"`
	Description string    `json:"descripcion"`
	Category    string    `json:"categoria"`
	Location    string    `json:"ubicacion"`
	Keywords    []string  `json:"palabras_clave,omitempty"`
	Cost        float64   `json:"costo"`
	Schedule    string    `json:"horario,omitempty"`
	Visible     bool      `json:"visible"`
	CreatedAt   time.Time `json:"created_at"`
	ImageURL    string    `json:"imagen_url,omitempty"`
}

func newProfileView(o repoOffer.Offer) ProfileView {
	return ProfileView{
		ID:          o.ID,
		Title:       o.Title,
		Description: o.Description,
		Category:    o.Category,
		Location:    o.Location,
		Keywords:    o.Keywords,
		Cost:        o.Cost,
		Schedule:    o.Schedule,
		Visible:     o.Visible,
		CreatedAt:   o.CreatedAt,
		ImageURL:    o.ImageURL,
	}
}
