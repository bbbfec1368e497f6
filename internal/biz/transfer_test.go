package biz_test

import (
	"context"
	"errors"
	"testing"

	kerrors "github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/bankcore/transfer-service/internal/biz"
	"github.com/bankcore/transfer-service/internal/mocks"
)

type usecaseDeps struct {
	repo *mocks.MockAccountRepo
	tx   *mocks.MockTransaction
	pub  *mocks.MockTransferEventPublisher
}

func newUsecase(t *testing.T) (*biz.TransferUsecase, usecaseDeps) {
	ctrl := gomock.NewController(t)
	deps := usecaseDeps{
		repo: mocks.NewMockAccountRepo(ctrl),
		tx:   mocks.NewMockTransaction(ctrl),
		pub:  mocks.NewMockTransferEventPublisher(ctrl),
	}
	uc := biz.NewTransferUsecase(deps.repo, deps.tx, deps.pub, log.DefaultLogger)
	return uc, deps
}

// passthroughTx makes the mocked transaction run the enclosed function,
// returning its error, the way a real transaction commits or rolls back.
func passthroughTx(tx *mocks.MockTransaction) {
	tx.EXPECT().InTx(gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, fn func(ctx context.Context) error) error {
			return fn(ctx)
		},
	).AnyTimes()
}

func TestTransfer_Success(t *testing.T) {
	uc, deps := newUsecase(t)
	ctx := context.Background()

	passthroughTx(deps.tx)
	gomock.InOrder(
		deps.repo.EXPECT().Debit(gomock.Any(), "tom", int64(500)).Return(nil),
		deps.repo.EXPECT().Credit(gomock.Any(), "lucy", int64(500)).Return(nil),
	)

	var published *biz.TransferCompletedEvent
	deps.pub.EXPECT().PublishTransferCompleted(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, evt *biz.TransferCompletedEvent) error {
			published = evt
			return nil
		},
	)

	require.NoError(t, uc.Transfer(ctx, "tom", "lucy", 500))
	require.NotNil(t, published)
	require.Equal(t, "tom", published.Source)
	require.Equal(t, "lucy", published.Destination)
	require.Equal(t, int64(500), published.Amount)
	require.False(t, published.OccurredAt.IsZero())
}

func TestTransfer_ValidationRejectedBeforeStorage(t *testing.T) {
	tests := []struct {
		name        string
		source      string
		destination string
		amount      int64
		expected    error
	}{
		{
			name:        "negative amount",
			source:      "tom",
			destination: "lucy",
			amount:      -10,
			expected:    biz.ErrInvalidAmount,
		},
		{
			name:        "zero amount",
			source:      "tom",
			destination: "lucy",
			amount:      0,
			expected:    biz.ErrInvalidAmount,
		},
		{
			name:        "same account",
			source:      "tom",
			destination: "tom",
			amount:      50,
			expected:    biz.ErrSameAccount,
		},
		{
			name:        "empty source",
			source:      "",
			destination: "lucy",
			amount:      50,
			expected:    biz.ErrMissingAccount,
		},
		{
			name:        "empty destination",
			source:      "tom",
			destination: "",
			amount:      50,
			expected:    biz.ErrMissingAccount,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// No expectations registered: any InTx or repo call fails the test.
			uc, _ := newUsecase(t)

			err := uc.Transfer(context.Background(), tt.source, tt.destination, tt.amount)
			require.Error(t, err)
			require.True(t, errors.Is(err, tt.expected))
			require.True(t, kerrors.IsBadRequest(err))
		})
	}
}

func TestTransfer_UnknownSourceAborts(t *testing.T) {
	uc, deps := newUsecase(t)

	passthroughTx(deps.tx)
	deps.repo.EXPECT().Debit(gomock.Any(), "ghost", int64(100)).Return(biz.ErrAccountNotFound)
	// Credit and publish must never run.

	err := uc.Transfer(context.Background(), "ghost", "lucy", 100)
	require.Error(t, err)
	require.True(t, errors.Is(err, biz.ErrAccountNotFound))
	require.True(t, kerrors.IsNotFound(err))
}

func TestTransfer_FaultBetweenDebitAndCreditRollsBack(t *testing.T) {
	uc, deps := newUsecase(t)

	faultErr := errors.New("injected fault")
	uc.SetBeforeCredit(func(context.Context) error { return faultErr })

	passthroughTx(deps.tx)
	deps.repo.EXPECT().Debit(gomock.Any(), "tom", int64(500)).Return(nil)
	// The fault fires before the credit: Credit must never be called and
	// the transaction function's error propagates so InTx rolls back.

	err := uc.Transfer(context.Background(), "tom", "lucy", 500)
	require.Error(t, err)
	require.True(t, errors.Is(err, faultErr))
}

func TestTransfer_PublishFailureDoesNotFailTransfer(t *testing.T) {
	uc, deps := newUsecase(t)

	passthroughTx(deps.tx)
	deps.repo.EXPECT().Debit(gomock.Any(), "tom", int64(200)).Return(nil)
	deps.repo.EXPECT().Credit(gomock.Any(), "lucy", int64(200)).Return(nil)
	deps.pub.EXPECT().PublishTransferCompleted(gomock.Any(), gomock.Any()).Return(errors.New("broker down"))

	require.NoError(t, uc.Transfer(context.Background(), "tom", "lucy", 200))
}

func TestTransfer_NilPublisher(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockAccountRepo(ctrl)
	tx := mocks.NewMockTransaction(ctrl)
	uc := biz.NewTransferUsecase(repo, tx, nil, log.DefaultLogger)

	passthroughTx(tx)
	repo.EXPECT().Debit(gomock.Any(), "tom", int64(1)).Return(nil)
	repo.EXPECT().Credit(gomock.Any(), "lucy", int64(1)).Return(nil)

	require.NoError(t, uc.Transfer(context.Background(), "tom", "lucy", 1))
}

func TestGetBalance(t *testing.T) {
	uc, deps := newUsecase(t)

	deps.repo.EXPECT().GetBalance(gomock.Any(), "tom").Return(int64(1000), nil)

	balance, err := uc.GetBalance(context.Background(), "tom")
	require.NoError(t, err)
	require.Equal(t, int64(1000), balance)

	_, err = uc.GetBalance(context.Background(), "")
	require.True(t, errors.Is(err, biz.ErrMissingAccount))
}
