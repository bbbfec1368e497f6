package biz

import (
	"context"
	"time"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/google/wire"
)

// ProviderSet is biz providers.
var ProviderSet = wire.NewSet(NewTransferUsecase)

// TransferCompletedEvent is published after a transfer commits.
type TransferCompletedEvent struct {
	Source      string    `json:"source"`
	Destination string    `json:"destination"`
	Amount      int64     `json:"amount"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// TransferEventPublisher publishes transfer lifecycle events.
// Implemented by the data/infra layer.
type TransferEventPublisher interface {
	PublishTransferCompleted(ctx context.Context, evt *TransferCompletedEvent) error
}

// TransferUsecase moves money between two accounts as a single atomic
// unit of work: the debit and the credit either both commit or neither
// does.
type TransferUsecase struct {
	repo AccountRepo
	tx   Transaction
	pub  TransferEventPublisher
	log  *log.Helper

	// beforeCredit runs between the debit and the credit, inside the
	// transaction. Tests use it to fault the transfer mid-flight and
	// prove the debit rolls back.
	beforeCredit func(ctx context.Context) error
}

// NewTransferUsecase creates a transfer usecase.
func NewTransferUsecase(repo AccountRepo, tx Transaction, pub TransferEventPublisher, logger log.Logger) *TransferUsecase {
	return &TransferUsecase{
		repo: repo,
		tx:   tx,
		pub:  pub,
		log:  log.NewHelper(log.With(logger, "module", "biz/transfer")),
	}
}

// Transfer debits amount from source and credits it to destination
// inside one transaction. Validation failures are rejected before any
// storage mutation; any failure after the debit rolls the debit back.
// No automatic retry is performed.
func (uc *TransferUsecase) Transfer(ctx context.Context, source, destination string, amount int64) error {
	if err := validateTransfer(source, destination, amount); err != nil {
		return err
	}

	err := uc.tx.InTx(ctx, func(ctx context.Context) error {
		if err := uc.repo.Debit(ctx, source, amount); err != nil {
			return err
		}
		if uc.beforeCredit != nil {
			if err := uc.beforeCredit(ctx); err != nil {
				return err
			}
		}
		return uc.repo.Credit(ctx, destination, amount)
	})
	if err != nil {
		uc.log.WithContext(ctx).Warnf("transfer %s -> %s amount=%d failed: %v", source, destination, amount, err)
		return err
	}

	uc.log.WithContext(ctx).Infof("transfer %s -> %s amount=%d committed", source, destination, amount)
	uc.publishCompleted(ctx, source, destination, amount)
	return nil
}

// GetBalance returns the current balance of the named account.
func (uc *TransferUsecase) GetBalance(ctx context.Context, name string) (int64, error) {
	if name == "" {
		return 0, ErrMissingAccount
	}
	return uc.repo.GetBalance(ctx, name)
}

// publishCompleted emits the transfer.completed event. The transfer has
// already committed, so a publish failure is logged, never surfaced.
func (uc *TransferUsecase) publishCompleted(ctx context.Context, source, destination string, amount int64) {
	if uc.pub == nil {
		return
	}
	evt := &TransferCompletedEvent{
		Source:      source,
		Destination: destination,
		Amount:      amount,
		OccurredAt:  time.Now(),
	}
	if err := uc.pub.PublishTransferCompleted(ctx, evt); err != nil {
		uc.log.WithContext(ctx).Errorf("publish transfer.completed %s -> %s: %v", source, destination, err)
	}
}

func validateTransfer(source, destination string, amount int64) error {
	if source == "" || destination == "" {
		return ErrMissingAccount
	}
	if source == destination {
		return ErrSameAccount
	}
	if amount <= 0 {
		return ErrInvalidAmount
	}
	return nil
}
