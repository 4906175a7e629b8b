package offer

import (
	"database/sql"
	"errors"
	"strconv"
	"strings"

	myErr "servimarket/internal/types/errors"
	types "servimarket/internal/types/offer"

	"github.com/lib/pq"
	"go.uber.org/zap"
)

const offerColumns = `id, titulo, descripcion, categoria, ubicacion, palabras_clave, costo, horario, cliente_id, cliente_nombre, visible, created_at, imagen_url`

type OfferDBRepository struct {
	DB     *sql.DB
	Logger *zap.SugaredLogger
}

func NewOfferDBRepository(db *sql.DB, l *zap.SugaredLogger) *OfferDBRepository {
	return &OfferDBRepository{
		DB:     db,
		Logger: l,
	}
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanOffer(row rowScanner) (*Offer, error) {
	var o Offer
	var schedule, imageURL sql.NullString

	err := row.Scan(
		&o.ID,
		&o.Title,
		&o.Description,
		&o.Category,
		&o.Location,
		pq.Array(&o.Keywords),
		&o.Cost,
		&schedule,
		&o.ClientID,
		&o.ClientName,
		&o.Visible,
		&o.CreatedAt,
		&imageURL,
	)
	if err != nil {
		return nil, err
	}

	o.Schedule = schedule.String
	o.ImageURL = imageURL.String

	return &o, nil
}

func (or *OfferDBRepository) Create(c types.CreateOffer) (*Offer, error) {
	query := `
	INSERT INTO ofertas (
		titulo,
		descripcion,
		categoria,
		ubicacion,
		palabras_clave,
		costo,
		horario,
		cliente_id,
		cliente_nombre,
		imagen_url
	) VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, ''), $8, $9, NULLIF($10, ''))
	RETURNING ` + offerColumns

	row := or.DB.QueryRow(
		query,
		c.Title,
		c.Description,
		c.Category,
		c.Location,
		pq.Array(c.Keywords),
		c.Cost,
		c.Schedule,
		c.ClientID,
		c.ClientName,
		c.ImageURL,
	)

	newOffer, err := scanOffer(row)
	if err != nil {
		or.Logger.Errorf("Error creating offer: %v", err)
		return nil, myErr.ErrDBInternal
	}

	return newOffer, nil
}

// buildListQuery translates the typed filter into one SQL query. Filters
// combine conjunctively; paging always applies.
func buildListQuery(f types.OfferFilter) (string, []interface{}) {
	conds := []string{}
	args := []interface{}{}
	argID := 1

	next := func() string {
		p := "$" + strconv.Itoa(argID)
		argID++
		return p
	}

	if f.VisibleOnly {
		conds = append(conds, "visible = TRUE")
	}
	if f.Category != "" {
		conds = append(conds, "categoria = "+next())
		args = append(args, f.Category)
	}
	if f.Keyword != "" {
		p := next()
		conds = append(conds, "(titulo ILIKE '%' || "+p+" || '%' OR descripcion ILIKE '%' || "+p+" || '%')")
		args = append(args, f.Keyword)
	}
	if f.Location != "" {
		conds = append(conds, "LOWER(ubicacion) = LOWER("+next()+")")
		args = append(args, f.Location)
	}
	if f.CostMin != nil {
		conds = append(conds, "costo >= "+next())
		args = append(args, *f.CostMin)
	}
	if f.CostMax != nil {
		conds = append(conds, "costo <= "+next())
		args = append(args, *f.CostMax)
	}
	if f.ClientID != "" {
		conds = append(conds, "cliente_id = "+next())
		args = append(args, f.ClientID)
	}

	query := "SELECT " + offerColumns + " FROM ofertas"
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}

	query += " ORDER BY created_at DESC OFFSET " + next() + " LIMIT " + next()
	args = append(args, f.Skip, f.Limit)

	return query, args
}

func (or *OfferDBRepository) List(f types.OfferFilter) ([]Offer, error) {
	query, args := buildListQuery(f)

	rows, err := or.DB.Query(query, args...)
	if err != nil {
		or.Logger.Errorf("Error listing offers: %v", err)
		return nil, myErr.ErrDBInternal
	}
	defer rows.Close()

	var offers []Offer
	for rows.Next() {
		o, err := scanOffer(rows)
		if err != nil {
			return nil, myErr.ErrDBInternal
		}
		offers = append(offers, *o)
	}

	return offers, nil
}

func (or *OfferDBRepository) GetByID(id string) (*Offer, error) {
	query := `SELECT ` + offerColumns + ` FROM ofertas WHERE id = $1`

	o, err := scanOffer(or.DB.QueryRow(query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, myErr.ErrNotFound
		}
		or.Logger.Errorf("Error getting offer by id %s: %v", id, err)
		return nil, myErr.ErrDBInternal
	}

	return o, nil
}

func (or *OfferDBRepository) Update(id string, u types.UpdateOffer) (*Offer, error) {
	fields := []string{}
	args := []interface{}{}
	argID := 1

	set := func(column string, value interface{}) {
		fields = append(fields, column+" = $"+strconv.Itoa(argID))
		args = append(args, value)
		argID++
	}

	// horario and imagen_url are stored as NULL when blank, same as on insert
	setNullable := func(column string, value string) {
		fields = append(fields, column+" = NULLIF($"+strconv.Itoa(argID)+", '')")
		args = append(args, value)
		argID++
	}

	if u.Title != nil {
		set("titulo", *u.Title)
	}
	if u.Description != nil {
		set("descripcion", *u.Description)
	}
	if u.Category != nil {
		set("categoria", *u.Category)
	}
	if u.Location != nil {
		set("ubicacion", *u.Location)
	}
	if u.Keywords != nil {
		set("palabras_clave", pq.Array(*u.Keywords))
	}
	if u.Cost != nil {
		set("costo", *u.Cost)
	}
	if u.Schedule != nil {
		setNullable("horario", *u.Schedule)
	}
	if u.ImageURL != nil {
		setNullable("imagen_url", *u.ImageURL)
	}

	if len(fields) == 0 {
		return or.GetByID(id)
	}

	query := "UPDATE ofertas SET " + strings.Join(fields, ", ") + " WHERE id = $" + strconv.Itoa(argID) // nolint:gosec
	args = append(args, id)

	res, err := or.DB.Exec(query, args...)
	if err != nil {
		or.Logger.Errorf("Error updating offer %s: %v", id, err)
		return nil, myErr.ErrDBInternal
	}

	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return nil, myErr.ErrDBInternal
	}
	if rowsAffected == 0 {
		return nil, myErr.ErrNotFound
	}

	return or.GetByID(id)
}

func (or *OfferDBRepository) ChangeVisibility(id string, visible bool) (*Offer, error) {
	res, err := or.DB.Exec(`UPDATE ofertas SET visible = $1 WHERE id = $2`, visible, id)
	if err != nil {
		or.Logger.Errorf("Error changing visibility of offer %s: %v", id, err)
		return nil, myErr.ErrDBInternal
	}

	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return nil, myErr.ErrDBInternal
	}
	if rowsAffected == 0 {
		return nil, myErr.ErrNotFound
	}

	return or.GetByID(id)
}

func (or *OfferDBRepository) Delete(id string) error {
	res, err := or.DB.Exec(`DELETE FROM ofertas WHERE id = $1`, id)
	if err != nil {
		or.Logger.Errorf("Error deleting offer %s: %v", id, err)
		return myErr.ErrDBInternal
	}

	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return myErr.ErrDBInternal
	}
	if rowsAffected == 0 {
		return myErr.ErrNotFound
	}

	return nil
}

func (or *OfferDBRepository) ListByClient(clientID string) ([]Offer, error) {
	query := `
	SELECT ` + offerColumns + `
	FROM ofertas
	WHERE cliente_id = $1 AND visible = TRUE
	ORDER BY created_at DESC
	`

	rows, err := or.DB.Query(query, clientID)
	if err != nil {
		or.Logger.Errorf("Error listing offers of client %s: %v", clientID, err)
		return nil, myErr.ErrDBInternal
	}
	defer rows.Close()

	var offers []Offer
	for rows.Next() {
		o, err := scanOffer(rows)
		if err != nil {
			return nil, myErr.ErrDBInternal
		}
		offers = append(offers, *o)
	}

	return offers, nil
}
