package pgsql

import (
	"github.com/jackc/pgx/v5/pgxpool"

	portsrepo "github.com/leasepay/leasepay_backend/internal/core/ports/repositories"
)

func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	paymentRepo := newPgxPaymentRepository(dbPool)
	ledgerRepo := newPgxLedgerRepository(dbPool)
	leaseRepo := newPgxLeaseRepository(dbPool)

	return portsrepo.RepositoryProvider{
		PaymentRepo: paymentRepo,
		LedgerRepo:  ledgerRepo,
		LeaseRepo:   leaseRepo,
	}
}
