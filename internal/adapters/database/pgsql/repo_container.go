package pgsql

import (
	"github.com/jackc/pgx/v5/pgxpool"

	portsrepo "github.com/elysion-gg/elysion-bank/internal/core/ports/repositories"
)

// NewRepositoryProvider builds the full PostgreSQL-backed repository set.
func NewRepositoryProvider(pool *pgxpool.Pool) *portsrepo.RepositoryProvider {
	return &portsrepo.RepositoryProvider{
		Users:         NewUserRepository(pool),
		Transactions:  NewTransactionRepository(pool),
		SalaryClaims:  NewSalaryClaimRepository(pool),
		SalaryRoles:   NewSalaryRoleRepository(pool),
		VoiceChannels: NewVoiceChannelRepository(pool),
		Tx:            NewTxManager(pool),
	}
}
