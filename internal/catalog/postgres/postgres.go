// Package postgres reads the catalog from the coffees, matchas, desserts and
// add_ons tables.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/utafrali/brewhouse/internal/catalog"
	"github.com/utafrali/brewhouse/internal/domain"
	"github.com/utafrali/brewhouse/pkg/database"
	apperrors "github.com/utafrali/brewhouse/pkg/errors"
)

// Prices are selected as text so they reach decimal.Decimal without a float hop.
const productColumns = `id::text, name, COALESCE(description, ''), price::text,
	COALESCE(image_url, ''), COALESCE(category, ''), COALESCE(rating, 0)::float8,
	popular, created_at`

// Repository implements catalog.Provider on PostgreSQL.
type Repository struct {
	db database.DBTX
}

// NewRepository creates a PostgreSQL-backed catalog.
func NewRepository(db database.DBTX) *Repository {
	return &Repository{db: db}
}

func (r *Repository) ListProducts(ctx context.Context, kind domain.Kind) (products []domain.Product, err error) {
	if !kind.Valid() {
		return nil, &catalog.FetchError{Op: "list products", Kind: kind, Err: errors.New("unknown kind")}
	}

	table := pgx.Identifier{kind.Table()}.Sanitize()
	query := fmt.Sprintf(`SELECT %s FROM %s ORDER BY popular DESC, created_at ASC, id ASC`, productColumns, table)

	ctx, end := database.TraceQuery(ctx, "ListProducts", kind.Table(), query)
	defer func() { end(err) }()

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, &catalog.FetchError{Op: "list products", Kind: kind, Err: err}
	}
	defer rows.Close()

	products = []domain.Product{}
	for rows.Next() {
		p, err := scanProduct(rows, kind)
		if err != nil {
			return nil, &catalog.FetchError{Op: "list products", Kind: kind, Err: err}
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, &catalog.FetchError{Op: "list products", Kind: kind, Err: fmt.Errorf("iterate rows: %w", err)}
	}

	return products, nil
}

func (r *Repository) GetProduct(ctx context.Context, kind domain.Kind, id string) (_ *domain.Product, err error) {
	if !kind.Valid() {
		return nil, apperrors.NotFound(string(kind), id)
	}

	table := pgx.Identifier{kind.Table()}.Sanitize()
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id::text = $1`, productColumns, table)

	ctx, end := database.TraceQuery(ctx, "GetProduct", kind.Table(), query)
	defer func() { end(err) }()

	p, err := scanProduct(r.db.QueryRow(ctx, query, id), kind)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound(string(kind), id)
		}
		return nil, &catalog.FetchError{Op: "get product", Kind: kind, Err: err}
	}
	return &p, nil
}

func (r *Repository) ListAddOns(ctx context.Context) (addOns []domain.AddOn, err error) {
	const query = `SELECT id::text, name, COALESCE(description, ''), price::text, COALESCE(type, '')
		FROM add_ons
		ORDER BY type ASC, name ASC`

	ctx, end := database.TraceQuery(ctx, "ListAddOns", "add_ons", query)
	defer func() { end(err) }()

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, &catalog.FetchError{Op: "list add-ons", Err: err}
	}
	defer rows.Close()

	addOns = []domain.AddOn{}
	for rows.Next() {
		var (
			a     domain.AddOn
			price string
		)
		if err := rows.Scan(&a.ID, &a.Name, &a.Description, &price, &a.Type); err != nil {
			return nil, &catalog.FetchError{Op: "list add-ons", Err: fmt.Errorf("scan add-on row: %w", err)}
		}
		if a.Price, err = parsePrice(price); err != nil {
			return nil, &catalog.FetchError{Op: "list add-ons", Err: fmt.Errorf("add-on %s: %w", a.ID, err)}
		}
		addOns = append(addOns, a)
	}
	if err := rows.Err(); err != nil {
		return nil, &catalog.FetchError{Op: "list add-ons", Err: fmt.Errorf("iterate rows: %w", err)}
	}

	return addOns, nil
}

func scanProduct(row pgx.Row, kind domain.Kind) (domain.Product, error) {
	var (
		p     domain.Product
		price string
	)
	if err := row.Scan(
		&p.ID,
		&p.Name,
		&p.Description,
		&price,
		&p.ImageURL,
		&p.Category,
		&p.Rating,
		&p.Popular,
		&p.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return p, err
		}
		return p, fmt.Errorf("scan product row: %w", err)
	}

	var err error
	if p.Price, err = parsePrice(price); err != nil {
		return p, fmt.Errorf("product %s: %w", p.ID, err)
	}
	p.Kind = kind
	return p, nil
}

func parsePrice(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse price %q: %w", s, err)
	}
	if d.IsNegative() {
		return decimal.Zero, fmt.Errorf("negative price %s", s)
	}
	return d, nil
}
