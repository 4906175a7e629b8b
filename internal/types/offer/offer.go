package offer

// CreateOffer carries the validated fields of a new offer. Visibility
// and creation time are set by the repository, not by the caller.
type CreateOffer struct {
	Title       string   `json:"titulo"`
	Description string   `json:"descripcion"`
	Category    string   `json:"categoria"`
	Location    string   `json:"ubicacion"`
	Keywords    []string `json:"palabras_clave,omitempty"`
	Cost        float64  `json:"costo"`
	Schedule    string   `json:"horario,omitempty"`
	ClientID    string   `json:"cliente_id"`
	ClientName  string   `json:"cliente_nombre"`
	ImageURL    string   `json:"imagen_url,omitempty"`
}

// UpdateOffer is a partial patch: nil pointers mean "leave unchanged".
type UpdateOffer struct {
	Title       *string   `json:"titulo,omitempty"`
	Description *string   `json:"descripcion,omitempty"`
	Category    *string   `json:"categoria,omitempty"`
	Location    *string   `json:"ubicacion,omitempty"`
	Keywords    *[]string `json:"palabras_clave,omitempty"`
	Cost        *float64  `json:"costo,omitempty"`
	Schedule    *string   `json:"horario,omitempty"`
	ImageURL    *string   `json:"imagen_url,omitempty"`
}

// Empty reports whether the patch would change nothing.
func (u UpdateOffer) Empty() bool {
	return u.Title == nil &&
		u.Description == nil &&
		u.Category == nil &&
		u.Location == nil &&
		u.Keywords == nil &&
		u.Cost == nil &&
		u.Schedule == nil &&
		u.ImageURL == nil
}

// OfferFilter describes the conjunctive listing filters. Zero-valued
// string fields are ignored; cost bounds are inclusive and optional.
type OfferFilter struct {
	Category    string
	Keyword     string
	Location    string
	CostMin     *float64
	CostMax     *float64
	ClientID    string
	VisibleOnly bool
	Skip        int
	Limit       int
}
