package apperrors

import "errors"

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrInvalidAmount indicates a zero, negative, or non-integer amount.
var ErrInvalidAmount = errors.New("amount must be a positive integer")

// ErrAmountTooLarge indicates an amount above the per-operation ceiling.
var ErrAmountTooLarge = errors.New("amount exceeds the per-operation limit")

// ErrInsufficientFunds indicates the account balance cannot cover the operation.
var ErrInsufficientFunds = errors.New("insufficient funds")

// ErrSelfTransfer indicates a transfer where sender and recipient are the same user.
var ErrSelfTransfer = errors.New("cannot transfer to yourself")

// ErrAlreadyClaimed indicates a salary was already granted for the claim period.
var ErrAlreadyClaimed = errors.New("salary already claimed for this period")

// ErrNotOwner indicates the caller does not own the targeted voice channel.
var ErrNotOwner = errors.New("only the channel owner may do this")

// ErrPartialFailure indicates an external side effect and its paired ledger
// mutation did not both complete, and the caller must reconcile them.
var ErrPartialFailure = errors.New("operation partially applied")

// ErrStorageUnavailable indicates the backing store could not be reached.
var ErrStorageUnavailable = errors.New("storage unavailable")
