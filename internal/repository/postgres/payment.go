package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/nickprotop/NeighborTools-sub003/internal/domain"
	"github.com/nickprotop/NeighborTools-sub003/internal/logger"
	"github.com/nickprotop/NeighborTools-sub003/internal/repository"
)

type paymentCaptureRepository struct {
	db *sql.DB
}

func NewPaymentCaptureRepository(db *sql.DB) repository.PaymentCaptureRepository {
	return &paymentCaptureRepository{db: db}
}

func (r *paymentCaptureRepository) Enqueue(ctx context.Context, req *domain.PaymentCaptureRequest) (bool, error) {
	query := `INSERT INTO payment_capture_requests (bundle_rental_id, amount_cents, idempotency_key, status, created_on)
	          VALUES ($1, $2, $3, $4, $5)
	          ON CONFLICT (bundle_rental_id) DO NOTHING RETURNING id`
	logger.DatabaseCall("INSERT", "payment_capture_requests", "bundleRentalID", req.BundleRentalID, "amountCents", req.AmountCents)

	err := r.db.QueryRowContext(ctx, query, req.BundleRentalID, req.AmountCents, req.IdempotencyKey, req.Status, req.CreatedOn).Scan(&req.ID)
	switch {
	case errors.Is(err, sql.ErrNoRows), isUniqueViolation(err):
		logger.DatabaseResult("INSERT", 0, nil, "bundleRentalID", req.BundleRentalID, "duplicate", true)
		return false, nil
	case err != nil:
		logger.DatabaseResult("INSERT", 0, err, "bundleRentalID", req.BundleRentalID)
		return false, err
	}
	logger.DatabaseResult("INSERT", 1, nil, "paymentCaptureID", req.ID)
	return true, nil
}
