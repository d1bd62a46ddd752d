package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/msomdec/product-catalog/internal/domain"
)

// ProductRepository implements domain.ProductRepository using SQLite.
type ProductRepository struct {
	db *sql.DB
}

func NewProductRepository(db *DB) *ProductRepository {
	return &ProductRepository{db: db.SqlDB}
}

const productSelect = `
	SELECT p.id, p.name, p.price, p.category_id, p.is_deleted, p.created_at, p.updated_at,
	       c.id, c.name, c.description
	FROM products p
	JOIN categories c ON c.id = p.category_id
	WHERE p.is_deleted = 0`

func (r *ProductRepository) List(ctx context.Context) ([]domain.Product, error) {
	rows, err := r.db.QueryContext(ctx, productSelect+` ORDER BY p.id`)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}

	products := []domain.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		products = append(products, *p)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("iterate products: %w", err)
	}
	rows.Close()

	// The pool holds a single connection; rows must be closed before the
	// supplier query runs.
	links, err := r.supplierLinks(ctx, 0)
	if err != nil {
		return nil, err
	}
	for i := range products {
		products[i].Suppliers = orEmpty(links[products[i].ID])
	}
	return products, nil
}

func (r *ProductRepository) GetByID(ctx context.Context, id int64) (*domain.Product, error) {
	p, err := scanProduct(r.db.QueryRowContext(ctx, productSelect+` AND p.id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	links, err := r.supplierLinks(ctx, id)
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

	now := time.Now().UTC()
	result, err := tx.ExecContext(ctx,
		`INSERT INTO products (name, price, category_id, is_deleted, created_at, updated_at)
		 VALUES (?, ?, ?, 0, ?, ?)`,
		product.Name, product.Price, product.CategoryID, now, now,
	)
	if err != nil {
		return mapWriteError("insert product", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("get last insert id: %w", err)
	}

	if err := insertLinks(ctx, tx, id, product.SupplierIDs()); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	product.ID = id
	product.IsDeleted = false
	product.CreatedAt = now
	product.UpdatedAt = now
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

	now := time.Now().UTC()
	result, err := tx.ExecContext(ctx,
		`UPDATE products SET name = ?, price = ?, category_id = ?, updated_at = ?
		 WHERE id = ? AND is_deleted = 0`,
		product.Name, product.Price, product.CategoryID, now, product.ID,
	)
	if err != nil {
		return mapWriteError("update product", err)
	}
	if n, err := result.RowsAffected(); err != nil {
		return fmt.Errorf("rows affected: %w", err)
	} else if n == 0 {
		return domain.ErrNotFound
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM product_suppliers WHERE product_id = ?`, product.ID); err != nil {
		return fmt.Errorf("delete supplier links: %w", err)
	}
	if err := insertLinks(ctx, tx, product.ID, product.SupplierIDs()); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	product.UpdatedAt = now
	return nil
}

func (r *ProductRepository) SoftDelete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE products SET is_deleted = 1, updated_at = ? WHERE id = ? AND is_deleted = 0`,
		time.Now().UTC(), id,
	)
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

// supplierLinks loads supplier refs keyed by product id. A zero productID
// loads links for every product.
func (r *ProductRepository) supplierLinks(ctx context.Context, productID int64) (map[int64][]domain.SupplierRef, error) {
	query := `SELECT ps.product_id, s.id, s.name
		FROM product_suppliers ps
		JOIN suppliers s ON s.id = ps.supplier_id`
	var args []any
	if productID != 0 {
		query += ` WHERE ps.product_id = ?`
		args = append(args, productID)
	}
	query += ` ORDER BY ps.product_id, s.id`

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
	for _, sid := range supplierIDs {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO product_suppliers (product_id, supplier_id) VALUES (?, ?)`,
			productID, sid,
		)
		if err != nil {
			return mapWriteError("insert supplier link", err)
		}
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

// mapWriteError turns FK violations into input errors; the service checks
// references up front, so these only surface on races.
func mapWriteError(op string, err error) error {
	if isForeignKeyError(err) {
		return fmt.Errorf("%s: %w: referenced category or supplier does not exist", op, domain.ErrInvalidInput)
	}
	if isUniqueConstraintError(err) {
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
