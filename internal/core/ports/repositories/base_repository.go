package repositories

import "context"

// TxManager runs a function as one atomic storage unit. The callback receives
// a context carrying the open transaction; repository methods invoked with
// that context join it. The unit is rolled back if fn returns an error and
// committed otherwise.
type TxManager interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}
