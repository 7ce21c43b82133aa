package pgsql

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/leasepay/leasepay_backend/internal/apperrors"
	"github.com/leasepay/leasepay_backend/internal/core/domain"
	portsrepo "github.com/leasepay/leasepay_backend/internal/core/ports/repositories"
)

type PgxLeaseRepository struct {
	BaseRepository
}

// newPgxLeaseRepository creates a new read-only repository for lease terms.
func newPgxLeaseRepository(pool *pgxpool.Pool) portsrepo.LeaseReader {
	return &PgxLeaseRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.LeaseReader = (*PgxLeaseRepository)(nil)

// FindLeaseByID retrieves a lease owned by orgID. Missing rows and rows
// owned by a different org both come back as ErrNotFound.
func (r *PgxLeaseRepository) FindLeaseByID(ctx context.Context, orgID, leaseID string) (*domain.Lease, error) {
	query := `
		SELECT lease_id, org_id, unit_label, monthly_rent, late_fee_percent, grace_period_days,
		       currency_code, is_active, created_at, created_by, last_updated_at, last_updated_by
		FROM leases
		WHERE lease_id = $1 AND org_id = $2;
	`
	var l domain.Lease
	err := r.Pool.QueryRow(ctx, query, leaseID, orgID).Scan(
		&l.LeaseID,
		&l.OrgID,
		&l.UnitLabel,
		&l.MonthlyRent,
		&l.LateFeePercent,
		&l.GracePeriodDays,
		&l.CurrencyCode,
		&l.IsActive,
		&l.CreatedAt,
		&l.CreatedBy,
		&l.LastUpdatedAt,
		&l.LastUpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find lease by ID "+leaseID, err)
	}
	return &l, nil
}
