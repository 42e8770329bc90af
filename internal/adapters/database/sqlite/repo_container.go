package sqlite

import (
	"github.com/jmoiron/sqlx"

	portsrepo "github.com/elysion-gg/elysion-bank/internal/core/ports/repositories"
)

// NewRepositoryProvider builds the full sqlite-backed repository set.
func NewRepositoryProvider(db *sqlx.DB) *portsrepo.RepositoryProvider {
	return &portsrepo.RepositoryProvider{
		Users:         NewUserRepository(db),
		Transactions:  NewTransactionRepository(db),
		SalaryClaims:  NewSalaryClaimRepository(db),
		SalaryRoles:   NewSalaryRoleRepository(db),
		VoiceChannels: NewVoiceChannelRepository(db),
		Tx:            NewTxManager(db),
	}
}
