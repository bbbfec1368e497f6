package biz

import "context"

// SetBeforeCredit installs the mid-transfer fault hook. Test-only.
func (uc *TransferUsecase) SetBeforeCredit(fn func(ctx context.Context) error) {
	uc.beforeCredit = fn
}
