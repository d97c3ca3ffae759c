package db

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

type CatalogStore struct {
	pool *pgxpool.Pool
}

func NewCatalogStore(pool *pgxpool.Pool) *CatalogStore {
	return &CatalogStore{pool: pool}
}

const productColumns = `
	p.id, p.title, p.slug, p.image, p.description, p.price, p.stock, p.active,
	p.created_at, p.updated_at, p.primary_category_id, pc.name`

const productFrom = `
	FROM products p
	LEFT JOIN categories pc ON pc.id = p.primary_category_id`

// ListProducts returns products ordered by id. A non-empty category keeps
// products whose primary or any secondary category has that name. A limit of
// zero returns every match.
func (s *CatalogStore) ListProducts(ctx context.Context, category string, limit, offset int) ([]*Product, error) {
	var (
		where []string
		args  []any
	)
	if category = strings.TrimSpace(category); category != "" {
		args = append(args, category)
		where = append(where, fmt.Sprintf(`(pc.name = $%d OR EXISTS (
			SELECT 1 FROM product_secondary_categories psc
			JOIN categories sc ON sc.id = psc.category_id
			WHERE psc.product_id = p.id AND sc.name = $%d))`, len(args), len(args)))
	}

	query := "SELECT " + productColumns + productFrom
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY p.id"
	if limit > 0 {
		args = append(args, limit, offset)
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)-1, len(args))
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	products, err := pgx.CollectRows(rows, scanProduct)
	if err != nil {
		return nil, err
	}
	if err := s.loadRelations(ctx, products); err != nil {
		return nil, err
	}
	return products, nil
}

func (s *CatalogStore) CountProducts(ctx context.Context) (int, error) {
	var count int
	err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM products`).Scan(&count)
	return count, err
}

func (s *CatalogStore) ListCategories(ctx context.Context) ([]Category, error) {
	rows, err := s.pool.Query(ctx, `SELECT id, name FROM categories ORDER BY name`)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowToStructByPos[Category])
}

func (s *CatalogStore) GetProductBySlug(ctx context.Context, slug string) (*Product, error) {
	return s.getProduct(ctx, "p.slug = $1", slug)
}

func (s *CatalogStore) GetProductByID(ctx context.Context, id int64) (*Product, error) {
	return s.getProduct(ctx, "p.id = $1", id)
}

func (s *CatalogStore) getProduct(ctx context.Context, where string, arg any) (*Product, error) {
	rows, err := s.pool.Query(ctx, "SELECT "+productColumns+productFrom+" WHERE "+where, arg)
	if err != nil {
		return nil, err
	}
	product, err := pgx.CollectExactlyOneRow(rows, scanProduct)
	if err != nil {
		return nil, notFound(err)
	}
	if err := s.loadRelations(ctx, []*Product{product}); err != nil {
		return nil, err
	}
	return product, nil
}

// SlugExists reports whether another product than excludeID uses slug.
func (s *CatalogStore) SlugExists(ctx context.Context, slug string, excludeID int64) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM products WHERE slug = $1 AND id <> $2)`, slug, excludeID).Scan(&exists)
	return exists, err
}

func (s *CatalogStore) CreateProduct(ctx context.Context, product *Product) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	err = tx.QueryRow(ctx, `
		INSERT INTO products (title, slug, image, description, price, stock, active, primary_category_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at
	`, product.Title, product.Slug, product.Image, product.Description, product.PriceCents, product.Stock, product.Active,
		primaryCategoryID(product)).Scan(&product.ID, &product.CreatedAt, &product.UpdatedAt)
	if err != nil {
		return err
	}
	if err := replaceProductRelations(ctx, tx, product); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (s *CatalogStore) UpdateProduct(ctx context.Context, product *Product) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	err = tx.QueryRow(ctx, `
		UPDATE products
		SET title = $1, slug = $2, image = $3, description = $4, price = $5, stock = $6,
		    active = $7, primary_category_id = $8, updated_at = NOW()
		WHERE id = $9
		RETURNING updated_at
	`, product.Title, product.Slug, product.Image, product.Description, product.PriceCents, product.Stock, product.Active,
		primaryCategoryID(product), product.ID).Scan(&product.UpdatedAt)
	if err != nil {
		return notFound(err)
	}
	if err := replaceProductRelations(ctx, tx, product); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (s *CatalogStore) DeleteProduct(ctx context.Context, id int64) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *CatalogStore) EnsureCategory(ctx context.Context, name string) (Category, error) {
	id, err := s.ensureNamed(ctx, "categories", name)
	return Category{ID: id, Name: name}, err
}

func (s *CatalogStore) EnsureColour(ctx context.Context, name string) (Variation, error) {
	id, err := s.ensureNamed(ctx, "colour_variations", name)
	return Variation{ID: id, Name: name}, err
}

func (s *CatalogStore) EnsureSize(ctx context.Context, name string) (Variation, error) {
	id, err := s.ensureNamed(ctx, "size_variations", name)
	return Variation{ID: id, Name: name}, err
}

func (s *CatalogStore) ensureNamed(ctx context.Context, table, name string) (int64, error) {
	var id int64
	err := s.pool.QueryRow(ctx, fmt.Sprintf(`
		INSERT INTO %s (name) VALUES ($1)
		ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
		RETURNING id
	`, table), name).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to ensure %s %q: %w", table, name, err)
	}
	return id, nil
}

func scanProduct(row pgx.CollectableRow) (*Product, error) {
	var (
		p                   Product
		primaryCategoryID   pgtype.Int8
		primaryCategoryName pgtype.Text
	)
	err := row.Scan(
		&p.ID, &p.Title, &p.Slug, &p.Image, &p.Description, &p.PriceCents, &p.Stock, &p.Active,
		&p.CreatedAt, &p.UpdatedAt, &primaryCategoryID, &primaryCategoryName,
	)
	if err != nil {
		return nil, err
	}
	if primaryCategoryID.Valid {
		p.PrimaryCategory = &Category{ID: primaryCategoryID.Int64, Name: primaryCategoryName.String}
	}
	p.SecondaryCategories = []Category{}
	p.Colours = []Variation{}
	p.Sizes = []Variation{}
	return &p, nil
}

// loadRelations fills colours, sizes and secondary categories for products in
// three queries.
func (s *CatalogStore) loadRelations(ctx context.Context, products []*Product) error {
	if len(products) == 0 {
		return nil
	}
	byID := make(map[int64]*Product, len(products))
	ids := make([]int64, 0, len(products))
	for _, p := range products {
		byID[p.ID] = p
		ids = append(ids, p.ID)
	}

	relations := []struct {
		query  string
		assign func(p *Product, id int64, name string)
	}{
		{
			query: `SELECT pc.product_id, c.id, c.name FROM product_colours pc
				JOIN colour_variations c ON c.id = pc.colour_id
				WHERE pc.product_id = ANY($1) ORDER BY c.id`,
			assign: func(p *Product, id int64, name string) {
				p.Colours = append(p.Colours, Variation{ID: id, Name: name})
			},
		},
		{
			query: `SELECT ps.product_id, s.id, s.name FROM product_sizes ps
				JOIN size_variations s ON s.id = ps.size_id
				WHERE ps.product_id = ANY($1) ORDER BY s.id`,
			assign: func(p *Product, id int64, name string) {
				p.Sizes = append(p.Sizes, Variation{ID: id, Name: name})
			},
		},
		{
			query: `SELECT psc.product_id, c.id, c.name FROM product_secondary_categories psc
				JOIN categories c ON c.id = psc.category_id
				WHERE psc.product_id = ANY($1) ORDER BY c.id`,
			assign: func(p *Product, id int64, name string) {
				p.SecondaryCategories = append(p.SecondaryCategories, Category{ID: id, Name: name})
			},
		},
	}

	for _, rel := range relations {
		rows, err := s.pool.Query(ctx, rel.query, ids)
		if err != nil {
			return err
		}
		var (
			productID, id int64
			name          string
		)
		_, err = pgx.ForEachRow(rows, []any{&productID, &id, &name}, func() error {
			if p, ok := byID[productID]; ok {
				rel.assign(p, id, name)
			}
			return nil
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func replaceProductRelations(ctx context.Context, tx pgx.Tx, product *Product) error {
	statements := []struct {
		table  string
		column string
		ids    []int64
	}{
		{table: "product_colours", column: "colour_id", ids: variationIDs(product.Colours)},
		{table: "product_sizes", column: "size_id", ids: variationIDs(product.Sizes)},
		{table: "product_secondary_categories", column: "category_id", ids: categoryIDs(product.SecondaryCategories)},
	}

	for _, st := range statements {
		if _, err := tx.Exec(ctx, fmt.Sprintf(`DELETE FROM %s WHERE product_id = $1`, st.table), product.ID); err != nil {
			return fmt.Errorf("failed to clear %s: %w", st.table, err)
		}
		if len(st.ids) == 0 {
			continue
		}
		_, err := tx.Exec(ctx, fmt.Sprintf(`
			INSERT INTO %s (product_id, %s)
			SELECT $1, unnest($2::bigint[])
			ON CONFLICT DO NOTHING
		`, st.table, st.column), product.ID, st.ids)
		if err != nil {
			return fmt.Errorf("failed to write %s: %w", st.table, err)
		}
	}
	return nil
}

func primaryCategoryID(product *Product) pgtype.Int8 {
	if product.PrimaryCategory == nil || product.PrimaryCategory.ID == 0 {
		return pgtype.Int8{}
	}
	return pgtype.Int8{Int64: product.PrimaryCategory.ID, Valid: true}
}

func variationIDs(variations []Variation) []int64 {
	ids := make([]int64, 0, len(variations))
	for _, v := range variations {
		ids = append(ids, v.ID)
	}
	return ids
}

func categoryIDs(categories []Category) []int64 {
	ids := make([]int64, 0, len(categories))
	for _, c := range categories {
		ids = append(ids, c.ID)
	}
	return ids
}
