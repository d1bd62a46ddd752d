// Package postgres implements the catalog store on PostgreSQL through the
// pgx database/sql driver.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/msomdec/product-catalog/internal/domain"
	"github.com/msomdec/product-catalog/internal/repository/postgres/migrations"
)

// SQLSTATE codes surfaced by the repositories.
const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
)

var _ domain.Store = (*DB)(nil)

// DB wraps a PostgreSQL connection pool and vends the repositories built on it.
type DB struct {
	SqlDB *sql.DB

	users      *UserRepository
	categories *CategoryRepository
	suppliers  *SupplierRepository
	products   *ProductRepository
}

// New opens a PostgreSQL database from a connection URL and verifies it is reachable.
func New(ctx context.Context, dsn string) (*DB, error) {
	sqlDB, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return NewFromDB(sqlDB), nil
}

// NewFromDB wraps an already opened *sql.DB.
func NewFromDB(sqlDB *sql.DB) *DB {
	return &DB{
		SqlDB:      sqlDB,
		users:      NewUserRepository(sqlDB),
		categories: NewCategoryRepository(sqlDB),
		suppliers:  NewSupplierRepository(sqlDB),
		products:   NewProductRepository(sqlDB),
	}
}

// migrateUp is a seam for tests; it applies the embedded migrations with goose.
var migrateUp = func(ctx context.Context, db *sql.DB) error {
	p, err := goose.NewProvider(goose.DialectPostgres, db, migrations.FS)
	if err != nil {
		return fmt.Errorf("create migration provider: %w", err)
	}
	_, err = p.Up(ctx)
	return err
}

// Migrate applies all pending embedded migrations.
func (d *DB) Migrate(ctx context.Context) error {
	if err := migrateUp(ctx, d.SqlDB); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}

func (d *DB) Ping(ctx context.Context) error {
	return d.SqlDB.PingContext(ctx)
}

func (d *DB) Close() error {
	return d.SqlDB.Close()
}

func (d *DB) Users() domain.UserRepository           { return d.users }
func (d *DB) Categories() domain.CategoryRepository { return d.categories }
func (d *DB) Suppliers() domain.SupplierRepository   { return d.suppliers }
func (d *DB) Products() domain.ProductRepository     { return d.products }

func pgErrorCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

func isUniqueViolation(err error) bool {
	return pgErrorCode(err) == codeUniqueViolation
}

func isForeignKeyViolation(err error) bool {
	return pgErrorCode(err) == codeForeignKeyViolation
}

// placeholders returns "$start, $start+1, ..." for n arguments.
func placeholders(start, n int) string {
	parts := make([]string, n)
	for i := range n {
		parts[i] = "$" + strconv.Itoa(start+i)
	}
	return strings.Join(parts, ", ")
}
