package repositories

// RepositoryProvider holds all repository interfaces needed by services.
// It's passed to service constructors to provide access to data storage.
type RepositoryProvider struct {
	PaymentRepo PaymentRepositoryFacade
	LedgerRepo  LedgerRepositoryFacade
	LeaseRepo   LeaseReader
}
