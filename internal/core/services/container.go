package services

import (
	"time"

	portsrepo "github.com/leasepay/leasepay_backend/internal/core/ports/repositories"
	portssvc "github.com/leasepay/leasepay_backend/internal/core/ports/services"
)

// Container holds all the services and manages their dependencies
type Container struct {
	Ledger  portssvc.LedgerSvcFacade
	Payment portssvc.PaymentSvcFacade
}

// NewContainer creates a new service container with properly initialized dependencies
func NewContainer(repos *portsrepo.RepositoryProvider, gateway portssvc.PaymentGateway, defaultCurrency string, gatewayTimeout time.Duration) *Container {
	container := &Container{}

	// Ledger first since the payment orchestrator posts through it
	container.Ledger = NewLedgerService(repos.LedgerRepo, defaultCurrency)

	container.Payment = NewPaymentService(
		repos.PaymentRepo,
		repos.LeaseRepo,
		container.Ledger,
		gateway,
		gatewayTimeout,
	)

	return container
}
