package offer

import (
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	myErr "servimarket/internal/types/errors"
	types "servimarket/internal/types/offer"
)

var offerColumnList = []string{
	"id", "titulo", "descripcion", "categoria", "ubicacion", "palabras_clave",
	"costo", "horario", "cliente_id", "cliente_nombre", "visible", "created_at", "imagen_url",
}

func TestOfferDBRepository_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	logger := zaptest.NewLogger(t).Sugar()
	repo := NewOfferDBRepository(db, logger)

	createdAt := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name        string
		input       types.CreateOffer
		mock        func()
		expected    *Offer
		expectError error
	}{
		{
			name: "successful creation",
			input: types.CreateOffer{
				Title:       "Reparación de tubería",
				Description: "Reparar fuga en tubería de cocina, solo entre semana",
				Category:    "Plomería",
				Location:    "Bogotá",
				Keywords:    []string{"plomeria", "urgente"},
				Cost:        50000,
				Schedule:    "Lun-Vie 15:00-18:00",
				ClientID:    "client-1",
				ClientName:  "Ana",
			},
			mock: func() {
				mock.ExpectQuery("INSERT INTO ofertas").
					WithArgs(
						"Reparación de tubería",
						"Reparar fuga en tubería de cocina, solo entre semana",
						"Plomería",
						"Bogotá",
						pq.Array([]string{"plomeria", "urgente"}),
						50000.0,
						"Lun-Vie 15:00-18:00",
						"client-1",
						"Ana",
						"",
					).
					WillReturnRows(sqlmock.NewRows(offerColumnList).AddRow(
						"11111111-1111-1111-1111-111111111111",
						"Reparación de tubería",
						"Reparar fuga en tubería de cocina, solo entre semana",
						"Plomería",
						"Bogotá",
						"{plomeria,urgente}",
						50000.0,
						"Lun-Vie 15:00-18:00",
						"client-1",
						"Ana",
						true,
						createdAt,
						nil,
					))
			},
			expected: &Offer{
				ID:          "11111111-1111-1111-1111-111111111111",
				Title:       "Reparación de tubería",
				Description: "Reparar fuga en tubería de cocina, solo entre semana",
				Category:    "Plomería",
				Location:    "Bogotá",
				Keywords:    []string{"plomeria", "urgente"},
				Cost:        50000,
				Schedule:    "Lun-Vie 15:00-18:00",
				ClientID:    "client-1",
				ClientName:  "Ana",
				Visible:     true,
				CreatedAt:   createdAt,
			},
			expectError: nil,
		},
		{
			name: "database error",
			input: types.CreateOffer{
				Title:       "Corte de césped",
				Description: "Corte y mantenimiento de jardines residenciales",
				Category:    "Jardinería",
				Location:    "Medellín",
				Cost:        30000,
				ClientID:    "client-2",
				ClientName:  "Luis",
			},
			mock: func() {
				mock.ExpectQuery("INSERT INTO ofertas").
					WillReturnError(errors.New("database error"))
			},
			expected:    nil,
			expectError: myErr.ErrDBInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.mock()

			result, err := repo.Create(tt.input)
			assert.Equal(t, tt.expected, result)
			assert.Equal(t, tt.expectError, err)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestBuildListQuery(t *testing.T) {
	costMin := 1000.0
	costMax := 5000.0

	tests := []struct {
		name          string
		filter        types.OfferFilter
		expectedQuery string
		expectedArgs  []interface{}
	}{
		{
			name: "defaults only visible",
			filter: types.OfferFilter{
				VisibleOnly: true,
				Limit:       100,
			},
			expectedQuery: "SELECT " + offerColumns + " FROM ofertas WHERE visible = TRUE ORDER BY created_at DESC OFFSET $1 LIMIT $2",
			expectedArgs:  []interface{}{0, 100},
		},
		{
			name: "all filters",
			filter: types.OfferFilter{
				Category:    "Plomería",
				Keyword:     "fuga",
				Location:    "bogotá",
				CostMin:     &costMin,
				CostMax:     &costMax,
				ClientID:    "client-1",
				VisibleOnly: true,
				Skip:        10,
				Limit:       20,
			},
			expectedQuery: "SELECT " + offerColumns + " FROM ofertas WHERE visible = TRUE" +
				" AND categoria = $1" +
				" AND (titulo ILIKE '%' || $2 || '%' OR descripcion ILIKE '%' || $2 || '%')" +
				" AND LOWER(ubicacion) = LOWER($3)" +
				" AND costo >= $4" +
				" AND costo <= $5" +
				" AND cliente_id = $6" +
				" ORDER BY created_at DESC OFFSET $7 LIMIT $8",
			expectedArgs: []interface{}{"Plomería", "fuga", "bogotá", 1000.0, 5000.0, "client-1", 10, 20},
		},
		{
			name: "hidden offers included",
			filter: types.OfferFilter{
				VisibleOnly: false,
				Limit:       100,
			},
			expectedQuery: "SELECT " + offerColumns + " FROM ofertas ORDER BY created_at DESC OFFSET $1 LIMIT $2",
			expectedArgs:  []interface{}{0, 100},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			query, args := buildListQuery(tt.filter)
			assert.Equal(t, tt.expectedQuery, query)
			assert.Equal(t, tt.expectedArgs, args)
		})
	}
}

func TestOfferDBRepository_List(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	logger := zaptest.NewLogger(t).Sugar()
	repo := NewOfferDBRepository(db, logger)

	createdAt := time.Now().UTC()

	costMin := 20000.0
	costMax := 60000.0
	filter := types.OfferFilter{
		CostMin:     &costMin,
		CostMax:     &costMax,
		VisibleOnly: true,
		Limit:       100,
	}

	mock.ExpectQuery("SELECT (.+) FROM ofertas WHERE visible = TRUE AND costo >=").
		WithArgs(20000.0, 60000.0, 0, 100).
		WillReturnRows(sqlmock.NewRows(offerColumnList).
			AddRow(
				"1", "Pintura de interiores", "Pintura de apartamentos y casas, acabados finos",
				"Pintura", "Cali", "{pintura}", 20000.0, nil, "client-1", "Ana", true, createdAt, nil,
			).
			AddRow(
				"2", "Pintura de fachadas", "Pintura de fachadas con andamios certificados",
				"Pintura", "Cali", nil, 60000.0, nil, "client-2", "Luis", true, createdAt, "/images/a.png",
			))

	offers, err := repo.List(filter)
	require.NoError(t, err)
	require.Len(t, offers, 2)

	// inclusive bounds are passed through untouched
	assert.Equal(t, 20000.0, offers[0].Cost)
	assert.Equal(t, 60000.0, offers[1].Cost)
	assert.Nil(t, offers[1].Keywords)
	assert.Equal(t, "/images/a.png", offers[1].ImageURL)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOfferDBRepository_GetByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	logger := zaptest.NewLogger(t).Sugar()
	repo := NewOfferDBRepository(db, logger)

	createdAt := time.Now().UTC()

	t.Run("found", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM ofertas WHERE id =").
			WithArgs("id-1").
			WillReturnRows(sqlmock.NewRows(offerColumnList).AddRow(
				"id-1", "Clases de guitarra", "Clases de guitarra para principiantes a domicilio",
				"Música", "Bogotá", nil, 40000.0, nil, "client-1", "Ana", true, createdAt, nil,
			))

		o, err := repo.GetByID("id-1")
		require.NoError(t, err)
		assert.Equal(t, "id-1", o.ID)
		assert.Equal(t, "Clases de guitarra", o.Title)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM ofertas WHERE id =").
			WithArgs("missing").
			WillReturnRows(sqlmock.NewRows(offerColumnList))

		o, err := repo.GetByID("missing")
		assert.Nil(t, o)
		assert.Equal(t, myErr.ErrNotFound, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestOfferDBRepository_Update(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	logger := zaptest.NewLogger(t).Sugar()
	repo := NewOfferDBRepository(db, logger)

	createdAt := time.Now().UTC()

	t.Run("single field leaves the rest untouched", func(t *testing.T) {
		newCost := 45000.0

		mock.ExpectExec("UPDATE ofertas SET costo = \\$1 WHERE id = \\$2").
			WithArgs(45000.0, "id-1").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery("SELECT (.+) FROM ofertas WHERE id =").
			WithArgs("id-1").
			WillReturnRows(sqlmock.NewRows(offerColumnList).AddRow(
				"id-1", "Clases de guitarra", "Clases de guitarra para principiantes a domicilio",
				"Música", "Bogotá", nil, 45000.0, nil, "client-1", "Ana", true, createdAt, nil,
			))

		o, err := repo.Update("id-1", types.UpdateOffer{Cost: &newCost})
		require.NoError(t, err)
		assert.Equal(t, 45000.0, o.Cost)
		assert.Equal(t, "Clases de guitarra", o.Title)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("blank schedule and image clear the columns", func(t *testing.T) {
		blank := ""

		mock.ExpectExec("UPDATE ofertas SET horario = NULLIF\\(\\$1, ''\\), imagen_url = NULLIF\\(\\$2, ''\\) WHERE id = \\$3").
			WithArgs("", "", "id-1").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery("SELECT (.+) FROM ofertas WHERE id =").
			WithArgs("id-1").
			WillReturnRows(sqlmock.NewRows(offerColumnList).AddRow(
				"id-1", "Clases de guitarra", "Clases de guitarra para principiantes a domicilio",
				"Música", "Bogotá", nil, 45000.0, nil, "client-1", "Ana", true, createdAt, nil,
			))

		o, err := repo.Update("id-1", types.UpdateOffer{Schedule: &blank, ImageURL: &blank})
		require.NoError(t, err)
		assert.Empty(t, o.Schedule)
		assert.Empty(t, o.ImageURL)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing offer", func(t *testing.T) {
		title := "Nuevo título largo"

		mock.ExpectExec("UPDATE ofertas SET titulo = \\$1 WHERE id = \\$2").
			WithArgs("Nuevo título largo", "missing").
			WillReturnResult(sqlmock.NewResult(0, 0))

		o, err := repo.Update("missing", types.UpdateOffer{Title: &title})
		assert.Nil(t, o)
		assert.Equal(t, myErr.ErrNotFound, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("empty patch falls back to a read", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM ofertas WHERE id =").
			WithArgs("id-1").
			WillReturnRows(sqlmock.NewRows(offerColumnList).AddRow(
				"id-1", "Clases de guitarra", "Clases de guitarra para principiantes a domicilio",
				"Música", "Bogotá", nil, 45000.0, nil, "client-1", "Ana", true, createdAt, nil,
			))

		o, err := repo.Update("id-1", types.UpdateOffer{})
		require.NoError(t, err)
		assert.Equal(t, "id-1", o.ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestOfferDBRepository_ChangeVisibility(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	logger := zaptest.NewLogger(t).Sugar()
	repo := NewOfferDBRepository(db, logger)

	createdAt := time.Now().UTC()

	t.Run("hide offer", func(t *testing.T) {
		mock.ExpectExec("UPDATE ofertas SET visible = \\$1 WHERE id = \\$2").
			WithArgs(false, "id-1").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery("SELECT (.+) FROM ofertas WHERE id =").
			WithArgs("id-1").
			WillReturnRows(sqlmock.NewRows(offerColumnList).AddRow(
				"id-1", "Clases de guitarra", "Clases de guitarra para principiantes a domicilio",
				"Música", "Bogotá", nil, 45000.0, nil, "client-1", "Ana", false, createdAt, nil,
			))

		o, err := repo.ChangeVisibility("id-1", false)
		require.NoError(t, err)
		assert.False(t, o.Visible)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing offer", func(t *testing.T) {
		mock.ExpectExec("UPDATE ofertas SET visible = \\$1 WHERE id = \\$2").
			WithArgs(true, "missing").
			WillReturnResult(sqlmock.NewResult(0, 0))

		o, err := repo.ChangeVisibility("missing", true)
		assert.Nil(t, o)
		assert.Equal(t, myErr.ErrNotFound, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestOfferDBRepository_Delete(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	logger := zaptest.NewLogger(t).Sugar()
	repo := NewOfferDBRepository(db, logger)

	t.Run("deleted", func(t *testing.T) {
		mock.ExpectExec("DELETE FROM ofertas WHERE id =").
			WithArgs("id-1").
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, repo.Delete("id-1"))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("nothing matched", func(t *testing.T) {
		mock.ExpectExec("DELETE FROM ofertas WHERE id =").
			WithArgs("missing").
			WillReturnResult(sqlmock.NewResult(0, 0))

		assert.Equal(t, myErr.ErrNotFound, repo.Delete("missing"))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestOfferDBRepository_ListByClient(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	logger := zaptest.NewLogger(t).Sugar()
	repo := NewOfferDBRepository(db, logger)

	createdAt := time.Now().UTC()

	mock.ExpectQuery("FROM ofertas\\s+WHERE cliente_id = \\$1 AND visible = TRUE").
		WithArgs("client-1").
		WillReturnRows(sqlmock.NewRows(offerColumnList).AddRow(
			"id-1", "Clases de guitarra", "Clases de guitarra para principiantes a domicilio",
			"Música", "Bogotá", nil, 45000.0, nil, "client-1", "Ana", true, createdAt, nil,
		))

	offers, err := repo.ListByClient("client-1")
	require.NoError(t, err)
	require.Len(t, offers, 1)
	assert.Equal(t, "client-1", offers[0].ClientID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
