package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/lib/pq"

	"github.com/nickprotop/NeighborTools-sub003/internal/repository"
)

const uniqueViolation = "23505"

var dialect = goqu.Dialect("postgres")

type Store struct {
	db *sql.DB
	repository.UserRepository
	repository.ToolRepository
	repository.BundleRepository
	repository.BundleRentalRepository
	repository.RentalRepository
	repository.NotificationRepository
	repository.PaymentCaptureRepository
}

func NewStore(db *sql.DB) *Store {
	return &Store{
		db:                       db,
		UserRepository:           NewUserRepository(db),
		ToolRepository:           NewToolRepository(db),
		BundleRepository:         NewBundleRepository(db),
		BundleRentalRepository:   NewBundleRentalRepository(db),
		RentalRepository:         NewRentalRepository(db),
		NotificationRepository:   NewNotificationRepository(db),
		PaymentCaptureRepository: NewPaymentCaptureRepository(db),
	}
}

// DB exposes the underlying pool for health checks.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Open connects with the given driver ("postgres" for lib/pq, "pgx" for pgx) and pings the server.
func Open(ctx context.Context, driver, dsn string) (*sql.DB, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return db, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code) == uniqueViolation
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == uniqueViolation
	}
	return false
}
