package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/msomdec/product-catalog/internal/domain"
)

// ProductRepository implements domain.ProductRepository using PostgreSQL.
type ProductRepository struct {
	db *sql.DB
}

func NewProductRepository(db *sql.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

const productSelect = `
	SELECT p.id, p.name, p.price, p.category_id, p.is_deleted, p.created_at, p.updated_at,
	       c.id, c.name, c.description
	FROM products p
	JOIN categories c ON c.id = p.category_id
	WHERE NOT p.is_deleted`

const linkSelect = `
	SELECT ps.product_id, s.id, s.name
	FROM product_suppliers ps
	JOIN suppliers s ON s.id = ps.supplier_id`

func (r *ProductRepository) List(ctx context.Context) ([]domain.Product, error) {
	rows, err := r.db.QueryContext(ctx, productSelect+` ORDER BY p.id`)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	defer rows.Close()

	products := []domain.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate products: %w", err)
	}

	links, err := r.supplierLinks(ctx, linkSelect+` ORDER BY ps.product_id, s.id`)
	if err != nil {
		return nil, err
	}
	for i := range products {
		products[i].Suppliers = orEmpty(links[products[i].ID])
	}
	return products, nil
}

func (r *ProductRepository) GetByID(ctx context.Context, id int64) (*domain.Product, error) {
	p, err := scanProduct(r.db.QueryRowContext(ctx, productSelect+` AND p.id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	links, err := r.supplierLinks(ctx, linkSelect+` WHERE ps.product_id = $1 ORDER BY s.id`, id)
	if err != nil {
		return nil, err
	}
	p.Suppliers = orEmpty(links[id])
	return p, nil
}

// Create inserts the product and its supplier links in one transaction.
func (r *ProductRepository) Create(ctx context.Context, product *domain.Product) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	err = tx.QueryRowContext(ctx,
		`INSERT INTO products (name, price, category_id)
		 VALUES ($1, $2, $3)
		 RETURNING id, is_deleted, created_at, updated_at`,
		product.Name, product.Price, product.CategoryID,
	).Scan(&product.ID, &product.IsDeleted, &product.CreatedAt, &product.UpdatedAt)
	if err != nil {
		return mapWriteError("insert product", err)
	}

	if err := insertLinks(ctx, tx, product.ID, product.SupplierIDs()); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Update rewrites the product row and replaces its whole supplier set.
// Soft-deleted products are reported as domain.ErrNotFound.
func (r *ProductRepository) Update(ctx context.Context, product *domain.Product) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	err = tx.QueryRowContext(ctx,
		`UPDATE products SET name = $1, price = $2, category_id = $3, updated_at = now()
		 WHERE id = $4 AND NOT is_deleted
		 RETURNING updated_at`,
		product.Name, product.Price, product.CategoryID, product.ID,
	).Scan(&product.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrNotFound
		}
		return mapWriteError("update product", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM product_suppliers WHERE product_id = $1`, product.ID); err != nil {
		return fmt.Errorf("delete supplier links: %w", err)
	}
	if err := insertLinks(ctx, tx, product.ID, product.SupplierIDs()); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (r *ProductRepository) SoftDelete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE products SET is_deleted = TRUE, updated_at = now() WHERE id = $1 AND NOT is_deleted`, id)
	if err != nil {
		return fmt.Errorf("soft delete product: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *ProductRepository) supplierLinks(ctx context.Context, query string, args ...any) (map[int64][]domain.SupplierRef, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query supplier links: %w", err)
	}
	defer rows.Close()

	links := make(map[int64][]domain.SupplierRef)
	for rows.Next() {
		var pid int64
		var ref domain.SupplierRef
		if err := rows.Scan(&pid, &ref.ID, &ref.Name); err != nil {
			return nil, fmt.Errorf("scan supplier link: %w", err)
		}
		links[pid] = append(links[pid], ref)
	}
	return links, rows.Err()
}

func insertLinks(ctx context.Context, tx *sql.Tx, productID int64, supplierIDs []int64) error {
	if len(supplierIDs) == 0 {
		return nil
	}
	args := make([]any, 0, len(supplierIDs)+1)
	args = append(args, productID)
	values := ""
	for i, sid := range supplierIDs {
		if i > 0 {
			values += ", "
		}
		values += fmt.Sprintf("($1, $%d)", i+2)
		args = append(args, sid)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO product_suppliers (product_id, supplier_id) VALUES `+values, args...); err != nil {
		return mapWriteError("insert supplier links", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (*domain.Product, error) {
	p := &domain.Product{Category: &domain.Category{}}
	err := row.Scan(&p.ID, &p.Name, &p.Price, &p.CategoryID, &p.IsDeleted, &p.CreatedAt, &p.UpdatedAt,
		&p.Category.ID, &p.Category.Name, &p.Category.Description)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan product: %w", err)
	}
	return p, nil
}

func mapWriteError(op string, err error) error {
	switch {
	case isForeignKeyViolation(err):
		return fmt.Errorf("%s: %w: referenced category or supplier does not exist", op, domain.ErrInvalidInput)
	case isUniqueViolation(err):
		return fmt.Errorf("%s: %w: duplicate supplier link", op, domain.ErrInvalidInput)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func orEmpty(refs []domain.SupplierRef) []domain.SupplierRef {
	if refs == nil {
		return []domain.SupplierRef{}
	}
	return refs
}
