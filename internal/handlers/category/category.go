package category

import (
	"encoding/json"
	"errors"
	"net/http"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	repoCategory "servimarket/internal/category"
	typesCategory "servimarket/internal/types/category"
	myErr "servimarket/internal/types/errors"
)

type CategoryHandler struct {
	Logger       *zap.SugaredLogger
	CategoryRepo repoCategory.CategoryRepo
}

func NewCategoryHandler(l *zap.SugaredLogger, cr repoCategory.CategoryRepo) *CategoryHandler {
	return &CategoryHandler{
		Logger:       l,
		CategoryRepo: cr,
	}
}

// Create handles POST /categorias
func (h *CategoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input typesCategory.CreateCategory
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		myErr.SendErrorTo(w, myErr.ErrInvalidJSONPayload, http.StatusBadRequest, h.Logger)
		return
	}

	if utf8.RuneCountInString(input.Name) < 3 {
		myErr.SendErrorTo(w, myErr.ErrNameTooShort, http.StatusBadRequest, h.Logger)
		return
	}

	created, err := h.CategoryRepo.Create(input)
	if err != nil {
		if errors.Is(err, myErr.ErrAlreadyExists) {
			myErr.SendErrorTo(w, err, http.StatusConflict, h.Logger)
			return
		}
		myErr.SendErrorTo(w, err, http.StatusInternalServerError, h.Logger)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(created); err != nil {
		myErr.SendErrorTo(w, err, http.StatusInternalServerError, h.Logger)
		return
	}

	h.Logger.Infof("category created: %s", created.ID)
}

// List handles GET /categorias
func (h *CategoryHandler) List(w http.ResponseWriter, r *http.Request) {
	categories, err := h.CategoryRepo.List()
	if err != nil {
		myErr.SendErrorTo(w, err, http.StatusInternalServerError, h.Logger)
		return
	}

	if categories == nil {
		categories = []repoCategory.Category{}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(categories); err != nil {
		myErr.SendErrorTo(w, err, http.StatusInternalServerError, h.Logger)
		return
	}
}

// Delete handles DELETE /categorias/{id}
func (h *CategoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if _, err := uuid.Parse(id); err != nil {
		myErr.SendErrorTo(w, myErr.ErrBadID, http.StatusBadRequest, h.Logger)
		return
	}

	if err := h.CategoryRepo.Delete(id); err != nil {
		if errors.Is(err, myErr.ErrNotFound) {
			myErr.SendErrorTo(w, err, http.StatusNotFound, h.Logger)
			return
		}
		myErr.SendErrorTo(w, err, http.StatusInternalServerError, h.Logger)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	response := struct {
		Message string `json:"mensaje"`
	}{
		Message: "Categoría eliminada correctamente",
	}
	if err := json.NewEncoder(w).Encode(response); err != nil {
		myErr.SendErrorTo(w, err, http.StatusInternalServerError, h.Logger)
		return
	}

	h.Logger.Infof("category deleted: %s", id)
}
