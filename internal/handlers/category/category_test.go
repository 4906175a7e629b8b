package category

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	repoCategory "servimarket/internal/category"
	typesCategory "servimarket/internal/types/category"
	myErr "servimarket/internal/types/errors"
)

type fakeRepo struct {
	lastCreateInput typesCategory.CreateCategory
	returnCreate    *repoCategory.Category
	returnCreateErr error

	returnList    []repoCategory.Category
	returnListErr error

	lastDeleteID    string
	returnDeleteErr error

	existing map[string]bool
}

func (f *fakeRepo) Create(c typesCategory.CreateCategory) (*repoCategory.Category, error) {
	f.lastCreateInput = c
	return f.returnCreate, f.returnCreateErr
}

func (f *fakeRepo) List() ([]repoCategory.Category, error) {
	return f.returnList, f.returnListErr
}

func (f *fakeRepo) Delete(id string) error {
	f.lastDeleteID = id
	return f.returnDeleteErr
}

func (f *fakeRepo) ExistsByName(name string) (bool, error) {
	return f.existing[name], nil
}

const categoryID = "22222222-2222-2222-2222-222222222222"

func newHandler(t *testing.T, repo *fakeRepo) *CategoryHandler {
	t.Helper()
	return NewCategoryHandler(zaptest.NewLogger(t).Sugar(), repo)
}

func TestCreate_Success(t *testing.T) {
	repo := &fakeRepo{
		returnCreate: &repoCategory.Category{ID: categoryID, Name: "Plomería"},
	}
	handler := newHandler(t, repo)

	req := httptest.NewRequest(http.MethodPost, "/categorias", strings.NewReader(`{"nombre": "Plomería"}`))
	w := httptest.NewRecorder()
	handler.Create(w, req)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "Plomería", repo.lastCreateInput.Name)

	var created repoCategory.Category
	require.NoError(t, json.NewDecoder(w.Body).Decode(&created))
	assert.Equal(t, categoryID, created.ID)
	assert.Equal(t, "Plomería", created.Name)
}

func TestCreate_InvalidJSON(t *testing.T) {
	handler := newHandler(t, &fakeRepo{})

	req := httptest.NewRequest(http.MethodPost, "/categorias", strings.NewReader(`{bad json`))
	w := httptest.NewRecorder()
	handler.Create(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreate_ShortName(t *testing.T) {
	handler := newHandler(t, &fakeRepo{})

	req := httptest.NewRequest(http.MethodPost, "/categorias", strings.NewReader(`{"nombre": "ab"}`))
	w := httptest.NewRecorder()
	handler.Create(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreate_ShortNameMultibyte(t *testing.T) {
	handler := newHandler(t, &fakeRepo{})

	// two runes, four bytes
	req := httptest.NewRequest(http.MethodPost, "/categorias", strings.NewReader(`{"nombre": "ñá"}`))
	w := httptest.NewRecorder()
	handler.Create(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreate_Duplicate(t *testing.T) {
	repo := &fakeRepo{returnCreateErr: myErr.ErrAlreadyExists}
	handler := newHandler(t, repo)

	req := httptest.NewRequest(http.MethodPost, "/categorias", strings.NewReader(`{"nombre": "Plomería"}`))
	w := httptest.NewRecorder()
	handler.Create(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestCreate_RepoFailure(t *testing.T) {
	repo := &fakeRepo{returnCreateErr: myErr.ErrDBInternal}
	handler := newHandler(t, repo)

	req := httptest.NewRequest(http.MethodPost, "/categorias", strings.NewReader(`{"nombre": "Plomería"}`))
	w := httptest.NewRecorder()
	handler.Create(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestList_Success(t *testing.T) {
	repo := &fakeRepo{
		returnList: []repoCategory.Category{
			{ID: "1", Name: "Electricidad"},
			{ID: "2", Name: "Plomería"},
		},
	}
	handler := newHandler(t, repo)

	req := httptest.NewRequest(http.MethodGet, "/categorias", nil)
	w := httptest.NewRecorder()
	handler.List(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var categories []repoCategory.Category
	require.NoError(t, json.NewDecoder(w.Body).Decode(&categories))
	assert.Len(t, categories, 2)
}

func TestList_Empty(t *testing.T) {
	handler := newHandler(t, &fakeRepo{})

	req := httptest.NewRequest(http.MethodGet, "/categorias", nil)
	w := httptest.NewRecorder()
	handler.List(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "[]\n", w.Body.String())
}

func TestDelete_Success(t *testing.T) {
	repo := &fakeRepo{}
	handler := newHandler(t, repo)

	req := httptest.NewRequest(http.MethodDelete, "/categorias/"+categoryID, nil)
	req = mux.SetURLVars(req, map[string]string{"id": categoryID})
	w := httptest.NewRecorder()
	handler.Delete(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, categoryID, repo.lastDeleteID)
	assert.Contains(t, w.Body.String(), "Categoría eliminada correctamente")
}

func TestDelete_MalformedID(t *testing.T) {
	handler := newHandler(t, &fakeRepo{})

	req := httptest.NewRequest(http.MethodDelete, "/categorias/not-a-uuid", nil)
	req = mux.SetURLVars(req, map[string]string{"id": "not-a-uuid"})
	w := httptest.NewRecorder()
	handler.Delete(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDelete_NotFound(t *testing.T) {
	repo := &fakeRepo{returnDeleteErr: myErr.ErrNotFound}
	handler := newHandler(t, repo)

	req := httptest.NewRequest(http.MethodDelete, "/categorias/"+categoryID, nil)
	req = mux.SetURLVars(req, map[string]string{"id": categoryID})
	w := httptest.NewRecorder()
	handler.Delete(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
