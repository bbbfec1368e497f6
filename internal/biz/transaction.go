package biz

import "context"

// Transaction is the interface for managing database transactions.
// Defined in biz layer, implemented by data/infra layer.
//
// InTx runs fn inside a transaction boundary: every repo call made with
// the ctx passed to fn shares the same transaction, which commits when
// fn returns nil and rolls back on any error. A nested InTx call joins
// the transaction already carried by ctx instead of opening a second one.
type Transaction interface {
	InTx(context.Context, func(ctx context.Context) error) error
}
