package repository

import "context"

// TransactionManager runs a unit of work inside one database transaction.
// The use case layer depends on this instead of a concrete driver.
type TransactionManager interface {
	// Execute runs fn within a transaction. A returned error rolls it back.
	Execute(ctx context.Context, fn func(txRepoFactory RepositoryFactory) error) error
}

// RepositoryFactory hands out repositories bound to the current transaction.
type RepositoryFactory interface {
	NewUserRepository() UserRepository
	NewAuthRepository() AuthRepository
	NewRefreshTokenRepository() RefreshTokenRepository
	NewProductRepository() ProductRepository
	NewOrderRepository() OrderRepository
}
