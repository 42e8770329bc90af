package sqlite_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/elysion-gg/elysion-bank/internal/adapters/database/sqlite"
	"github.com/elysion-gg/elysion-bank/internal/apperrors"
	"github.com/elysion-gg/elysion-bank/internal/core/domain"
	portsrepo "github.com/elysion-gg/elysion-bank/internal/core/ports/repositories"
	"github.com/elysion-gg/elysion-bank/pkg/database"
)

// SqliteRepositoryTestSuite exercises the embedded backend against a real
// in-memory database, constraints included.
type SqliteRepositoryTestSuite struct {
	suite.Suite
	repos *portsrepo.RepositoryProvider
	close func()
}

func (suite *SqliteRepositoryTestSuite) SetupTest() {
	db, err := database.NewSqliteDB(":memory:")
	suite.Require().NoError(err)
	suite.Require().NoError(sqlite.Bootstrap(context.Background(), db))

	suite.repos = sqlite.NewRepositoryProvider(db)
	suite.close = func() { database.CloseSqliteDB(db) }
}

func (suite *SqliteRepositoryTestSuite) TearDownTest() {
	suite.close()
}

func (suite *SqliteRepositoryTestSuite) newUser(userID string, balance int64) domain.User {
	now := time.Now().UTC().Truncate(time.Second)
	return domain.User{UserID: userID, Balance: balance, CreatedAt: now, UpdatedAt: now}
}

// --- Test Cases ---

func (suite *SqliteRepositoryTestSuite) TestSaveUser_DuplicateRejected() {
	ctx := context.Background()
	user := suite.newUser("alice", 10000)

	suite.Require().NoError(suite.repos.Users.SaveUser(ctx, user))
	err := suite.repos.Users.SaveUser(ctx, user)

	suite.Require().ErrorIs(err, apperrors.ErrDuplicate)
}

func (suite *SqliteRepositoryTestSuite) TestFindUserByID_Missing() {
	_, err := suite.repos.Users.FindUserByID(context.Background(), "nobody")
	suite.Require().ErrorIs(err, apperrors.ErrNotFound)
}

func (suite *SqliteRepositoryTestSuite) TestAddToBalance_OverdraftBlockedByConstraint() {
	ctx := context.Background()
	suite.Require().NoError(suite.repos.Users.SaveUser(ctx, suite.newUser("alice", 100)))

	err := suite.repos.Users.AddToBalance(ctx, "alice", -500, time.Now().UTC())
	suite.Require().ErrorIs(err, apperrors.ErrInsufficientFunds)

	user, err := suite.repos.Users.FindUserByID(ctx, "alice")
	suite.Require().NoError(err)
	suite.Equal(int64(100), user.Balance)
}

func (suite *SqliteRepositoryTestSuite) TestWithinTx_RollsBackOnError() {
	ctx := context.Background()
	suite.Require().NoError(suite.repos.Users.SaveUser(ctx, suite.newUser("alice", 1000)))

	failure := errors.New("unit failed")
	err := suite.repos.Tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := suite.repos.Users.AddToBalance(ctx, "alice", -400, time.Now().UTC()); err != nil {
			return err
		}
		return failure
	})
	suite.Require().ErrorIs(err, failure)

	user, err := suite.repos.Users.FindUserByID(ctx, "alice")
	suite.Require().NoError(err)
	suite.Equal(int64(1000), user.Balance, "debit must not survive the rollback")
}

func (suite *SqliteRepositoryTestSuite) TestWithinTx_CommitsOnSuccess() {
	ctx := context.Background()
	suite.Require().NoError(suite.repos.Users.SaveUser(ctx, suite.newUser("alice", 1000)))
	suite.Require().NoError(suite.repos.Users.SaveUser(ctx, suite.newUser("bob", 0)))

	err := suite.repos.Tx.WithinTx(ctx, func(ctx context.Context) error {
		now := time.Now().UTC()
		if err := suite.repos.Users.AddToBalance(ctx, "alice", -400, now); err != nil {
			return err
		}
		return suite.repos.Users.AddToBalance(ctx, "bob", 400, now)
	})
	suite.Require().NoError(err)

	alice, err := suite.repos.Users.FindUserByID(ctx, "alice")
	suite.Require().NoError(err)
	bob, err := suite.repos.Users.FindUserByID(ctx, "bob")
	suite.Require().NoError(err)
	suite.Equal(int64(600), alice.Balance)
	suite.Equal(int64(400), bob.Balance)
}

func (suite *SqliteRepositoryTestSuite) TestWithinTx_ConcurrentTransfersConserveTotal() {
	ctx := context.Background()
	suite.Require().NoError(suite.repos.Users.SaveUser(ctx, suite.newUser("alice", 1000)))
	suite.Require().NoError(suite.repos.Users.SaveUser(ctx, suite.newUser("bob", 1000)))

	const workers = 10
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			err := suite.repos.Tx.WithinTx(ctx, func(ctx context.Context) error {
				now := time.Now().UTC()
				if err := suite.repos.Users.AddToBalance(ctx, "alice", -10, now); err != nil {
					return err
				}
				return suite.repos.Users.AddToBalance(ctx, "bob", 10, now)
			})
			suite.NoError(err)
		}()
	}
	wg.Wait()

	alice, err := suite.repos.Users.FindUserByID(ctx, "alice")
	suite.Require().NoError(err)
	bob, err := suite.repos.Users.FindUserByID(ctx, "bob")
	suite.Require().NoError(err)
	suite.Equal(int64(900), alice.Balance)
	suite.Equal(int64(1100), bob.Balance)
	suite.Equal(int64(2000), alice.Balance+bob.Balance, "money is conserved")
}

func (suite *SqliteRepositoryTestSuite) TestSaveClaim_SecondClaimSameMonthRejected() {
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	first := domain.SalaryClaim{
		ClaimID: "c1", UserID: "alice", RoleID: "admin", Amount: 30000,
		ClaimMonth: "2024-06", PaidBy: "alice", CreatedAt: now,
	}
	second := first
	second.ClaimID = "c2"
	second.RoleID = "moderator"

	suite.Require().NoError(suite.repos.SalaryClaims.SaveClaim(ctx, first))
	err := suite.repos.SalaryClaims.SaveClaim(ctx, second)

	suite.Require().ErrorIs(err, apperrors.ErrAlreadyClaimed)

	// A different month is fine.
	second.ClaimMonth = "2024-07"
	suite.Require().NoError(suite.repos.SalaryClaims.SaveClaim(ctx, second))
}

func (suite *SqliteRepositoryTestSuite) TestTransactions_ListNewestFirstWithLimit() {
	ctx := context.Background()
	base := time.Now().UTC().Truncate(time.Second)
	from := "alice"

	for i, id := range []string{"t1", "t2", "t3"} {
		txn := domain.Transaction{
			TransactionID: id,
			FromUserID:    &from,
			ToUserID:      "bob",
			Amount:        int64(100 + i),
			Kind:          domain.KindTransfer,
			CreatedAt:     base.Add(time.Duration(i) * time.Minute),
		}
		suite.Require().NoError(suite.repos.Transactions.SaveTransaction(ctx, txn))
	}

	txns, err := suite.repos.Transactions.ListTransactionsByUser(ctx, "bob", 2)
	suite.Require().NoError(err)
	suite.Require().Len(txns, 2)
	suite.Equal("t3", txns[0].TransactionID)
	suite.Equal("t2", txns[1].TransactionID)
	suite.Require().NotNil(txns[0].FromUserID)
	suite.Equal("alice", *txns[0].FromUserID)
}

func (suite *SqliteRepositoryTestSuite) TestVoiceChannels_StaleListingAndIdempotentDelete() {
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	old := domain.VoiceChannel{
		ChannelID: "vc-old", OwnerID: "alice", Name: "den",
		CreatedAt: now.Add(-time.Hour), LastActivity: now.Add(-time.Hour),
	}
	fresh := domain.VoiceChannel{
		ChannelID: "vc-new", OwnerID: "bob", Name: "hq",
		CreatedAt: now, LastActivity: now,
	}
	suite.Require().NoError(suite.repos.VoiceChannels.SaveChannel(ctx, old))
	suite.Require().NoError(suite.repos.VoiceChannels.SaveChannel(ctx, fresh))

	stale, err := suite.repos.VoiceChannels.ListStaleChannels(ctx, now.Add(-30*time.Minute))
	suite.Require().NoError(err)
	suite.Require().Len(stale, 1)
	suite.Equal("vc-old", stale[0].ChannelID)

	// Touching the old channel lifts it out of the stale window.
	suite.Require().NoError(suite.repos.VoiceChannels.TouchChannel(ctx, "vc-old", now))
	stale, err = suite.repos.VoiceChannels.ListStaleChannels(ctx, now.Add(-30*time.Minute))
	suite.Require().NoError(err)
	suite.Len(stale, 0)

	suite.Require().NoError(suite.repos.VoiceChannels.DeleteChannel(ctx, "vc-old"))
	// Deleting again is not an error.
	suite.Require().NoError(suite.repos.VoiceChannels.DeleteChannel(ctx, "vc-old"))

	_, err = suite.repos.VoiceChannels.FindChannelByID(ctx, "vc-old")
	suite.Require().ErrorIs(err, apperrors.ErrNotFound)
}

func (suite *SqliteRepositoryTestSuite) TestSalaryRoles_SaveFindUpdate() {
	ctx := context.Background()
	role := domain.SalaryRole{RoleID: "vip", Name: "VIP", MonthlyAmount: 15000, IsActive: true}

	suite.Require().NoError(suite.repos.SalaryRoles.SaveRole(ctx, role))
	suite.Require().ErrorIs(suite.repos.SalaryRoles.SaveRole(ctx, role), apperrors.ErrDuplicate)

	role.MonthlyAmount = 17500
	role.IsActive = false
	suite.Require().NoError(suite.repos.SalaryRoles.UpdateRole(ctx, role))

	found, err := suite.repos.SalaryRoles.FindRoleByID(ctx, "vip")
	suite.Require().NoError(err)
	suite.Equal(int64(17500), found.MonthlyAmount)
	suite.False(found.IsActive)

	suite.Require().ErrorIs(
		suite.repos.SalaryRoles.UpdateRole(ctx, domain.SalaryRole{RoleID: "ghost", MonthlyAmount: 1}),
		apperrors.ErrNotFound,
	)
}

func TestSqliteRepositoryTestSuite(t *testing.T) {
	suite.Run(t, new(SqliteRepositoryTestSuite))
}
