package offer

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"servimarket/internal/category"
	"servimarket/internal/enrichment"
	kafkaPkg "servimarket/internal/kafka"
	repoOffer "servimarket/internal/offer"
	myErr "servimarket/internal/types/errors"
	typesOffer "servimarket/internal/types/offer"
)

const (
	maxUploadMemory = 32 << 20

	// Paging contract for GET /ofertas.
	defaultLimit = 100
	maxLimit     = 1000
)

// ImageSaver stores an uploaded image and returns its serving path.
type ImageSaver interface {
	Save(originalFilename string, r io.Reader) (string, error)
	Remove(url string) error
}

type OfferHandler struct {
	Logger       *zap.SugaredLogger
	OfferRepo    repoOffer.OfferRepo
	CategoryRepo category.CategoryRepo
	Images       ImageSaver
	Profiles     enrichment.ProfileFetcher
	Events       kafkaPkg.EventProducer
}

func NewOfferHandler(
	l *zap.SugaredLogger,
	or repoOffer.OfferRepo,
	cr category.CategoryRepo,
	images ImageSaver,
	profiles enrichment.ProfileFetcher,
	events kafkaPkg.EventProducer,
) *OfferHandler {
	return &OfferHandler{
		Logger:       l,
		OfferRepo:    or,
		CategoryRepo: cr,
		Images:       images,
		Profiles:     profiles,
		Events:       events,
	}
}

// parseKeywords splits the comma-separated palabras_clave form field.
func parseKeywords(raw string) []string {
	var keywords []string
	for _, kw := range strings.Split(raw, ",") {
		if kw = strings.TrimSpace(kw); kw != "" {
			keywords = append(keywords, kw)
		}
	}
	return keywords
}

func parseRequestForm(r *http.Request) error {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		return r.ParseMultipartForm(maxUploadMemory)
	}
	return r.ParseForm()
}

// saveUploadedImage stores the optional "imagen" file and returns its
// serving path, or "" when no file was attached.
func (h *OfferHandler) saveUploadedImage(r *http.Request) (string, error) {
	if r.MultipartForm == nil {
		return "", nil
	}

	file, header, err := r.FormFile("imagen")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return "", nil
		}
		return "", err
	}
	defer file.Close()

	return h.Images.Save(header.Filename, file)
}

func (h *OfferHandler) publishEvent(ctx context.Context, eventType kafkaPkg.EventType, offerID, clientID, cat string) {
	if h.Events == nil {
		return
	}

	err := h.Events.SendEvent(ctx, kafkaPkg.Event{
		OfferID:   offerID,
		ClientID:  clientID,
		Type:      eventType,
		Category:  cat,
		Timestamp: time.Now().UTC(),
	})
	if err != nil {
		h.Logger.Warnf("Failed to publish %s event for offer %s: %v", eventType, offerID, err)
	}
}

// checkCategoryExists maps an unknown category to ErrCategoryNotFound.
func (h *OfferHandler) checkCategoryExists(name string) error {
	exists, err := h.CategoryRepo.ExistsByName(name)
	if err != nil {
		return err
	}
	if !exists {
		return myErr.ErrCategoryNotFound
	}
	return nil
}

// Create handles POST /ofertas
func (h *OfferHandler) Create(w http.ResponseWriter, r *http.Request) {
	if err := parseRequestForm(r); err != nil {
		myErr.SendErrorTo(w, myErr.ErrInvalidFormPayload, http.StatusBadRequest, h.Logger)
		return
	}

	input := typesOffer.CreateOffer{
		Title:       r.FormValue("titulo"),
		Description: r.FormValue("descripcion"),
		Category:    r.FormValue("categoria"),
		Location:    r.FormValue("ubicacion"),
		Keywords:    parseKeywords(r.FormValue("palabras_clave")),
		Schedule:    r.FormValue("horario"),
		ClientID:    r.FormValue("cliente_id"),
		ClientName:  r.FormValue("cliente_nombre"),
	}

	if utf8.RuneCountInString(input.Title) < 5 {
		myErr.SendErrorTo(w, myErr.ErrTitleTooShort, http.StatusBadRequest, h.Logger)
		return
	}
	if utf8.RuneCountInString(input.Description) < 20 {
		myErr.SendErrorTo(w, myErr.ErrDescriptionTooShort, http.StatusBadRequest, h.Logger)
		return
	}
	if input.Category == "" {
		myErr.SendErrorTo(w, errors.New("missing categoria"), http.StatusBadRequest, h.Logger)
		return
	}
	if input.Location == "" {
		myErr.SendErrorTo(w, errors.New("missing ubicacion"), http.StatusBadRequest, h.Logger)
		return
	}
	if input.ClientID == "" || input.ClientName == "" {
		myErr.SendErrorTo(w, errors.New("missing cliente_id or cliente_nombre"), http.StatusBadRequest, h.Logger)
		return
	}

	cost, err := strconv.ParseFloat(r.FormValue("costo"), 64)
	if err != nil || cost <= 0 {
		myErr.SendErrorTo(w, myErr.ErrInvalidCost, http.StatusBadRequest, h.Logger)
		return
	}
	input.Cost = cost

	if err := h.checkCategoryExists(input.Category); err != nil {
		if errors.Is(err, myErr.ErrCategoryNotFound) {
			myErr.SendErrorTo(w, err, http.StatusBadRequest, h.Logger)
			return
		}
		myErr.SendErrorTo(w, err, http.StatusInternalServerError, h.Logger)
		return
	}

	imageURL, err := h.saveUploadedImage(r)
	if err != nil {
		h.Logger.Errorf("Failed to save uploaded image: %v", err)
		myErr.SendErrorTo(w, errors.New("failed to store image"), http.StatusInternalServerError, h.Logger)
		return
	}
	input.ImageURL = imageURL

	created, err := h.OfferRepo.Create(input)
	if err != nil {
		// the insert failed, so nothing references the stored image
		if input.ImageURL != "" {
			if rmErr := h.Images.Remove(input.ImageURL); rmErr != nil {
				h.Logger.Warnf("Failed to remove image %s after create failure: %v", input.ImageURL, rmErr)
			}
		}
		myErr.SendErrorTo(w, err, http.StatusInternalServerError, h.Logger)
		return
	}

	h.publishEvent(r.Context(), kafkaPkg.OfferCreated, created.ID, created.ClientID, created.Category)

	view := newView(*created, h.Profiles.Fetch(r.Context(), created.ClientID))

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(view); err != nil {
		myErr.SendErrorTo(w, err, http.StatusInternalServerError, h.Logger)
		return
	}

	h.Logger.Infof("offer created: %s", created.ID)
}

// parseListFilter reads the GET /ofertas query parameters.
func parseListFilter(r *http.Request) (typesOffer.OfferFilter, error) {
	q := r.URL.Query()

	f := typesOffer.OfferFilter{
		Category:    q.Get("categoria"),
		Keyword:     q.Get("palabra_clave"),
		Location:    q.Get("ubicacion"),
		ClientID:    q.Get("cliente_id"),
		VisibleOnly: true,
		Limit:       defaultLimit,
	}

	if raw := q.Get("solo_visibles"); raw != "" {
		visible, err := strconv.ParseBool(raw)
		if err != nil {
			return f, errors.New("solo_visibles must be a boolean")
		}
		f.VisibleOnly = visible
	}

	if raw := q.Get("skip"); raw != "" {
		skip, err := strconv.Atoi(raw)
		if err != nil || skip < 0 {
			return f, errors.New("skip must be a non-negative integer")
		}
		f.Skip = skip
	}

	if raw := q.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 {
			return f, errors.New("limit must be a positive integer")
		}
		if limit > maxLimit {
			limit = maxLimit
		}
		f.Limit = limit
	}

	if raw := q.Get("costo_min"); raw != "" {
		min, err := strconv.ParseFloat(raw, 64)
		if err != nil || min < 0 {
			return f, errors.New("costo_min must be a non-negative number")
		}
		f.CostMin = &min
	}

	if raw := q.Get("costo_max"); raw != "" {
		max, err := strconv.ParseFloat(raw, 64)
		if err != nil || max < 0 {
			return f, errors.New("costo_max must be a non-negative number")
		}
		f.CostMax = &max
	}

	return f, nil
}

// List handles GET /ofertas
func (h *OfferHandler) List(w http.ResponseWriter, r *http.Request) {
	filter, err := parseListFilter(r)
	if err != nil {
		myErr.SendErrorTo(w, err, http.StatusBadRequest, h.Logger)
		return
	}

	offers, err := h.OfferRepo.List(filter)
	if err != nil {
		myErr.SendErrorTo(w, err, http.StatusInternalServerError, h.Logger)
		return
	}

	clientIDs := make([]string, 0, len(offers))
	for _, o := range offers {
		clientIDs = append(clientIDs, o.ClientID)
	}
	profiles := enrichment.FetchMany(r.Context(), h.Profiles, clientIDs)

	views := make([]View, 0, len(offers))
	for _, o := range offers {
		views = append(views, newView(o, profiles[o.ClientID]))
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(views); err != nil {
		myErr.SendErrorTo(w, err, http.StatusInternalServerError, h.Logger)
		return
	}

	h.Logger.Infof("listed %d offers", len(views))
}

// GetByID handles GET /ofertas/{id}
func (h *OfferHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if _, err := uuid.Parse(id); err != nil {
		myErr.SendErrorTo(w, myErr.ErrBadID, http.StatusBadRequest, h.Logger)
		return
	}

	o, err := h.OfferRepo.GetByID(id)
	if err != nil {
		if errors.Is(err, myErr.ErrNotFound) {
			myErr.SendErrorTo(w, err, http.StatusNotFound, h.Logger)
			return
		}
		myErr.SendErrorTo(w, err, http.StatusInternalServerError, h.Logger)
		return
	}

	view := newView(*o, h.Profiles.Fetch(r.Context(), o.ClientID))

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(view); err != nil {
		myErr.SendErrorTo(w, err, http.StatusInternalServerError, h.Logger)
		return
	}
}

// parseUpdatePayload builds the patch from either a JSON body or a
// form body. Form fields are applied only when present, so an absent
// field and an untouched field are the same thing.
func parseUpdatePayload(r *http.Request) (typesOffer.UpdateOffer, error) {
	var u typesOffer.UpdateOffer

	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		if err := json.NewDecoder(r.Body).Decode(&u); err != nil {
			return u, myErr.ErrInvalidJSONPayload
		}
		return u, nil
	}

	if err := parseRequestForm(r); err != nil {
		return u, myErr.ErrInvalidFormPayload
	}

	fields := r.PostForm
	if r.MultipartForm != nil {
		fields = r.MultipartForm.Value
	}

	if v, ok := fields["titulo"]; ok {
		u.Title = &v[0]
	}
	if v, ok := fields["descripcion"]; ok {
		u.Description = &v[0]
	}
	if v, ok := fields["categoria"]; ok {
		u.Category = &v[0]
	}
	if v, ok := fields["ubicacion"]; ok {
		u.Location = &v[0]
	}
	if v, ok := fields["palabras_clave"]; ok {
		keywords := parseKeywords(v[0])
		u.Keywords = &keywords
	}
	if v, ok := fields["costo"]; ok {
		cost, err := strconv.ParseFloat(v[0], 64)
		if err != nil {
			return u, myErr.ErrInvalidCost
		}
		u.Cost = &cost
	}
	if v, ok := fields["horario"]; ok {
		u.Schedule = &v[0]
	}

	return u, nil
}

func validateUpdate(u typesOffer.UpdateOffer) error {
	if u.Title != nil && utf8.RuneCountInString(*u.Title) < 5 {
		return myErr.ErrTitleTooShort
	}
	if u.Description != nil && utf8.RuneCountInString(*u.Description) < 20 {
		return myErr.ErrDescriptionTooShort
	}
	if u.Category != nil && *u.Category == "" {
		return myErr.ErrCategoryNotFound
	}
	if u.Cost != nil && *u.Cost <= 0 {
		return myErr.ErrInvalidCost
	}
	return nil
}

// Update handles PUT /ofertas?id=
func (h *OfferHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if _, err := uuid.Parse(id); err != nil {
		myErr.SendErrorTo(w, myErr.ErrBadID, http.StatusBadRequest, h.Logger)
		return
	}

	patch, err := parseUpdatePayload(r)
	if err != nil {
		myErr.SendErrorTo(w, err, http.StatusBadRequest, h.Logger)
		return
	}

	if err := validateUpdate(patch); err != nil {
		myErr.SendErrorTo(w, err, http.StatusBadRequest, h.Logger)
		return
	}

	imageURL, err := h.saveUploadedImage(r)
	if err != nil {
		h.Logger.Errorf("Failed to save uploaded image: %v", err)
		myErr.SendErrorTo(w, errors.New("failed to store image"), http.StatusInternalServerError, h.Logger)
		return
	}
	if imageURL != "" {
		patch.ImageURL = &imageURL
	}

	if patch.Empty() {
		myErr.SendErrorTo(w, myErr.ErrEmptyUpdate, http.StatusBadRequest, h.Logger)
		return
	}

	if patch.Category != nil {
		if err := h.checkCategoryExists(*patch.Category); err != nil {
			if errors.Is(err, myErr.ErrCategoryNotFound) {
				myErr.SendErrorTo(w, err, http.StatusBadRequest, h.Logger)
				return
			}
			myErr.SendErrorTo(w, err, http.StatusInternalServerError, h.Logger)
			return
		}
	}

	updated, err := h.OfferRepo.Update(id, patch)
	if err != nil {
		if errors.Is(err, myErr.ErrNotFound) {
			myErr.SendErrorTo(w, err, http.StatusNotFound, h.Logger)
			return
		}
		myErr.SendErrorTo(w, err, http.StatusInternalServerError, h.Logger)
		return
	}

	h.publishEvent(r.Context(), kafkaPkg.OfferUpdated, updated.ID, updated.ClientID, updated.Category)

	view := newView(*updated, h.Profiles.Fetch(r.Context(), updated.ClientID))

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(view); err != nil {
		myErr.SendErrorTo(w, err, http.StatusInternalServerError, h.Logger)
		return
	}

	h.Logger.Infof("offer updated: %s", updated.ID)
}

// ChangeVisibility handles PATCH /ofertas/{id}/visibility
func (h *OfferHandler) ChangeVisibility(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if _, err := uuid.Parse(id); err != nil {
		myErr.SendErrorTo(w, myErr.ErrBadID, http.StatusBadRequest, h.Logger)
		return
	}

	if err := parseRequestForm(r); err != nil {
		myErr.SendErrorTo(w, myErr.ErrInvalidFormPayload, http.StatusBadRequest, h.Logger)
		return
	}

	visible, err := strconv.ParseBool(r.FormValue("visible"))
	if err != nil {
		myErr.SendErrorTo(w, errors.New("visible must be a boolean"), http.StatusBadRequest, h.Logger)
		return
	}

	updated, err := h.OfferRepo.ChangeVisibility(id, visible)
	if err != nil {
		if errors.Is(err, myErr.ErrNotFound) {
			myErr.SendErrorTo(w, err, http.StatusNotFound, h.Logger)
			return
		}
		myErr.SendErrorTo(w, err, http.StatusInternalServerError, h.Logger)
		return
	}

	h.publishEvent(r.Context(), kafkaPkg.VisibilityChanged, updated.ID, updated.ClientID, updated.Category)

	view := newView(*updated, h.Profiles.Fetch(r.Context(), updated.ClientID))

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(view); err != nil {
		myErr.SendErrorTo(w, err, http.StatusInternalServerError, h.Logger)
		return
	}

	h.Logger.Infof("offer %s visibility set to %t", updated.ID, visible)
}

// Delete handles DELETE /ofertas?id=
func (h *OfferHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if _, err := uuid.Parse(id); err != nil {
		myErr.SendErrorTo(w, myErr.ErrBadID, http.StatusBadRequest, h.Logger)
		return
	}

	if err := h.OfferRepo.Delete(id); err != nil {
		if errors.Is(err, myErr.ErrNotFound) {
			myErr.SendErrorTo(w, err, http.StatusNotFound, h.Logger)
			return
		}
		myErr.SendErrorTo(w, err, http.StatusInternalServerError, h.Logger)
		return
	}

	h.publishEvent(r.Context(), kafkaPkg.OfferDeleted, id, "", "")

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	response := struct {
		Message string `json:"mensaje"`
	}{
		Message: "Oferta eliminada correctamente",
	}
	if err := json.NewEncoder(w).Encode(response); err != nil {
		myErr.SendErrorTo(w, err, http.StatusInternalServerError, h.Logger)
		return
	}

	h.Logger.Infof("offer deleted: %s", id)
}

// ListByClient handles GET /ofertas/cliente/{cliente_id}
func (h *OfferHandler) ListByClient(w http.ResponseWriter, r *http.Request) {
	clientID := mux.Vars(r)["cliente_id"]
	if clientID == "" {
		myErr.SendErrorTo(w, errors.New("missing cliente_id"), http.StatusBadRequest, h.Logger)
		return
	}

	offers, err := h.OfferRepo.ListByClient(clientID)
	if err != nil {
		myErr.SendErrorTo(w, err, http.StatusInternalServerError, h.Logger)
		return
	}

	views := make([]ProfileView, 0, len(offers))
	for _, o := range offers {
		views = append(views, newProfileView(o))
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(views); err != nil {
		myErr.SendErrorTo(w, err, http.StatusInternalServerError, h.Logger)
		return
	}
}
