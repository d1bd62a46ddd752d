package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/msomdec/product-catalog/internal/domain"
)

// SupplierRepository implements domain.SupplierRepository using SQLite.
type SupplierRepository struct {
	db *sql.DB
}

func NewSupplierRepository(db *DB) *SupplierRepository {
	return &SupplierRepository{db: db.SqlDB}
}

// supplierProductsQuery lists suppliers with the live products they supply,
// one row per link. Suppliers without products yield a single row of NULLs.
const supplierProductsQuery = `
	SELECT s.id, s.name, s.address, s.cnpj, s.phone, p.id, p.name, p.price
	FROM suppliers s
	LEFT JOIN product_suppliers ps ON ps.supplier_id = s.id
	LEFT JOIN products p ON p.id = ps.product_id AND p.is_deleted = 0`

func (r *SupplierRepository) List(ctx context.Context) ([]domain.Supplier, error) {
	rows, err := r.db.QueryContext(ctx, supplierProductsQuery+` ORDER BY s.id, p.id`)
	if err != nil {
		return nil, fmt.Errorf("query suppliers: %w", err)
	}
	defer rows.Close()

	suppliers, err := scanSuppliers(rows)
	if err != nil {
		return nil, err
	}
	return suppliers, nil
}

func (r *SupplierRepository) GetByID(ctx context.Context, id int64) (*domain.Supplier, error) {
	rows, err := r.db.QueryContext(ctx, supplierProductsQuery+` WHERE s.id = ? ORDER BY p.id`, id)
	if err != nil {
		return nil, fmt.Errorf("query supplier by id: %w", err)
	}
	defer rows.Close()

	suppliers, err := scanSuppliers(rows)
	if err != nil {
		return nil, err
	}
	if len(suppliers) == 0 {
		return nil, domain.ErrNotFound
	}
	return &suppliers[0], nil
}

func (r *SupplierRepository) Create(ctx context.Context, supplier *domain.Supplier) error {
	result, err := r.db.ExecContext(ctx,
		`INSERT INTO suppliers (name, address, cnpj, phone) VALUES (?, ?, ?, ?)`,
		supplier.Name, supplier.Address, supplier.CNPJ, supplier.Phone,
	)
	if err != nil {
		return fmt.Errorf("insert supplier: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("get last insert id: %w", err)
	}
	supplier.ID = id
	supplier.Products = []domain.ProductRef{}
	return nil
}

func (r *SupplierRepository) Missing(ctx context.Context, ids []int64) ([]int64, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")

	rows, err := r.db.QueryContext(ctx,
		`SELECT id FROM suppliers WHERE id IN (`+placeholders+`)`, args...)
	if err != nil {
		return nil, fmt.Errorf("query supplier ids: %w", err)
	}
	defer rows.Close()

	found := make(map[int64]bool, len(ids))
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan supplier id: %w", err)
		}
		found[id] = true
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var missing []int64
	for _, id := range ids {
		if !found[id] {
			missing = append(missing, id)
		}
	}
	return missing, nil
}

func scanSuppliers(rows *sql.Rows) ([]domain.Supplier, error) {
	suppliers := []domain.Supplier{}
	for rows.Next() {
		var (
			s         domain.Supplier
			productID sql.NullInt64
			name      sql.NullString
			price     sql.NullFloat64
		)
		if err := rows.Scan(&s.ID, &s.Name, &s.Address, &s.CNPJ, &s.Phone, &productID, &name, &price); err != nil {
			return nil, fmt.Errorf("scan supplier: %w", err)
		}

		if n := len(suppliers); n == 0 || suppliers[n-1].ID != s.ID {
			s.Products = []domain.ProductRef{}
			suppliers = append(suppliers, s)
		}
		if productID.Valid {
			last := &suppliers[len(suppliers)-1]
			last.Products = append(last.Products, domain.ProductRef{
				ID:    productID.Int64,
				Name:  name.String,
				Price: price.Float64,
			})
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate suppliers: %w", err)
	}
	return suppliers, nil
}
