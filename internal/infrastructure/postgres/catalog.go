package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/example/ec-shop-assistant/internal/domain/product"
	"github.com/pkg/errors"
)

const productColumns = "id, name, description, price, size, seller_location, stock"

// Catalog reads products from the products table.
type Catalog struct {
	db *sql.DB
}

func NewCatalog(db *sql.DB) *Catalog {
	return &Catalog{db: db}
}

// buildSearchQuery renders f as a parameterized SELECT. Text filters are
// case-insensitive substring matches; the rest are exact or bounded.
func buildSearchQuery(f product.Filter) (string, []any) {
	var (
		where []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if f.Query != "" {
		p := arg(containsPattern(f.Query))
		where = append(where, fmt.Sprintf(`(name ILIKE %s ESCAPE '\' OR description ILIKE %s ESCAPE '\')`, p, p))
	}
	if f.Size != "" {
		where = append(where, "size = "+arg(f.Size))
	}
	if f.MaxPrice != nil {
		where = append(where, "price <= "+arg(*f.MaxPrice))
	}
	if f.Location != "" {
		where = append(where, "seller_location ILIKE "+arg(containsPattern(f.Location))+` ESCAPE '\'`)
	}
	if f.Quantity > 0 {
		where = append(where, "stock >= "+arg(f.Quantity))
	}

	q := "SELECT " + productColumns + " FROM products"
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	return q + " ORDER BY id", args
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern builds an ILIKE pattern matching s literally as a substring.
func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}

func (c *Catalog) Search(ctx context.Context, f product.Filter) ([]product.Product, error) {
	q, args := buildSearchQuery(f)
	rows, err := c.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, errors.Wrap(err, "search products")
	}
	defer rows.Close()

	products := make([]product.Product, 0)
	for rows.Next() {
		var p product.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.Size, &p.SellerLocation, &p.Stock); err != nil {
			return nil, errors.Wrap(err, "scan product")
		}
		products = append(products, p)
	}
	return products, errors.Wrap(rows.Err(), "iterate products")
}

func (c *Catalog) Get(ctx context.Context, id string) (product.Product, error) {
	var p product.Product
	err := c.db.QueryRowContext(ctx,
		"SELECT "+productColumns+" FROM products WHERE id = $1", id,
	).Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.Size, &p.SellerLocation, &p.Stock)
	if err == sql.ErrNoRows {
		return product.Product{}, product.ErrProductNotFound
	}
	if err != nil {
		return product.Product{}, errors.Wrap(err, "get product")
	}
	return p, nil
}

// SeedProducts inserts products that are not already present.
func SeedProducts(ctx context.Context, db *sql.DB, products []product.Product) error {
	for _, p := range products {
		_, err := db.ExecContext(ctx, `
			INSERT INTO products (`+productColumns+`)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			ON CONFLICT (id) DO NOTHING
		`, p.ID, p.Name, p.Description, p.Price, p.Size, p.SellerLocation, p.Stock)
		if err != nil {
			return errors.Wrapf(err, "seed product %s", p.ID)
		}
	}
	return nil
}
