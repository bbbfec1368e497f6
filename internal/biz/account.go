package biz

import (
	"context"

	"github.com/go-kratos/kratos/v2/errors"
)

// Account errors. All of them abort any enclosing transaction and
// propagate to the caller as distinguishable kratos error values.
var (
	// ErrAccountNotFound is returned when a debit or credit matches no row.
	ErrAccountNotFound = errors.NotFound("ACCOUNT_NOT_FOUND", "account does not exist")
	// ErrMissingAccount is returned when an account name is empty.
	ErrMissingAccount = errors.BadRequest("ACCOUNT_NAME_MISSING", "account name is required")
	// ErrInvalidAmount is returned for non-positive transfer amounts.
	ErrInvalidAmount = errors.BadRequest("INVALID_AMOUNT", "transfer amount must be positive")
	// ErrSameAccount is returned when source and destination are identical.
	ErrSameAccount = errors.BadRequest("SAME_ACCOUNT", "source and destination accounts must differ")
)

// Account represents a named account with an integer balance.
// Rows pre-exist in storage; this service only mutates balances.
type Account struct {
	Name    string
	Balance int64
}

// AccountRepo is the account persistence contract.
//
// Debit and Credit must each be a single-statement update that pushes the
// arithmetic to the storage engine (balance = balance ± amount), leaving
// no read-modify-write window. Both report ErrAccountNotFound when the
// named account matches no row.
type AccountRepo interface {
	Debit(ctx context.Context, name string, amount int64) error
	Credit(ctx context.Context, name string, amount int64) error
	GetBalance(ctx context.Context, name string) (int64, error)
	// TotalBalance returns the sum of all account balances.
	TotalBalance(ctx context.Context) (int64, error)
}
