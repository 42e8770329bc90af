package repositories

// RepositoryProvider bundles every repository implementation of one storage
// backend. Exactly one provider is constructed at startup; all services
// depend on the interfaces only.
type RepositoryProvider struct {
	Users         UserRepository
	Transactions  TransactionRepository
	SalaryClaims  SalaryClaimRepository
	SalaryRoles   SalaryRoleRepository
	VoiceChannels VoiceChannelRepository
	Tx            TxManager
}
