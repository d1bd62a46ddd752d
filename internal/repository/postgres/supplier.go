package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/msomdec/product-catalog/internal/domain"
)

// SupplierRepository implements domain.SupplierRepository using PostgreSQL.
type SupplierRepository struct {
	db *sql.DB
}

func NewSupplierRepository(db *sql.DB) *SupplierRepository {
	return &SupplierRepository{db: db}
}

const supplierProductsQuery = `
	SELECT s.id, s.name, s.address, s.cnpj, s.phone, p.id, p.name, p.price
	FROM suppliers s
	LEFT JOIN product_suppliers ps ON ps.supplier_id = s.id
	LEFT JOIN products p ON p.id = ps.product_id AND NOT p.is_deleted`

func (r *SupplierRepository) List(ctx context.Context) ([]domain.Supplier, error) {
	rows, err := r.db.QueryContext(ctx, supplierProductsQuery+` ORDER BY s.id, p.id`)
	if err != nil {
		return nil, fmt.Errorf("query suppliers: %w", err)
	}
	defer rows.Close()
	return scanSuppliers(rows)
}

func (r *SupplierRepository) GetByID(ctx context.Context, id int64) (*domain.Supplier, error) {
	rows, err := r.db.QueryContext(ctx, supplierProductsQuery+` WHERE s.id = $1 ORDER BY p.id`, id)
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
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO suppliers (name, address, cnpj, phone) VALUES ($1, $2, $3, $4) RETURNING id`,
		supplier.Name, supplier.Address, supplier.CNPJ, supplier.Phone,
	).Scan(&supplier.ID)
	if err != nil {
		return fmt.Errorf("insert supplier: %w", err)
	}
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
	rows, err := r.db.QueryContext(ctx,
		`SELECT id FROM suppliers WHERE id IN (`+placeholders(1, len(ids))+`)`, args...)
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
		return nil, fmt.Errorf("iterate supplier ids: %w", err)
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
