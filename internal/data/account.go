package data

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/bankcore/transfer-service/internal/biz"
	"github.com/bankcore/transfer-service/internal/conf"
)

// defaultBalanceTTL is the cache expiry used when the config does not
// set one.
const defaultBalanceTTL = 5 * time.Minute

// AccountModel maps the account table: one row per named account.
type AccountModel struct {
	ID      uint   `gorm:"primarykey"`
	Name    string `gorm:"size:64;uniqueIndex;not null"`
	Balance int64  `gorm:"not null"`
}

// TableName implements gorm schema.Tabler.
func (AccountModel) TableName() string {
	return "account"
}

type accountRepo struct {
	data       *Data
	log        *log.Helper
	balanceTTL time.Duration
}

// NewAccountRepo creates the storage-backed account repository.
func NewAccountRepo(data *Data, c *conf.Data, logger log.Logger) biz.AccountRepo {
	ttl := defaultBalanceTTL
	if c != nil && c.Redis != nil && c.Redis.BalanceTtl.AsDuration() > 0 {
		ttl = c.Redis.BalanceTtl.AsDuration()
	}
	return &accountRepo{
		data:       data,
		log:        log.NewHelper(log.With(logger, "module", "data/account")),
		balanceTTL: ttl,
	}
}

// Debit applies balance = balance - amount to the named row. The
// arithmetic happens in the storage engine; there is no read first.
func (r *accountRepo) Debit(ctx context.Context, name string, amount int64) error {
	return r.applyDelta(ctx, name, gorm.Expr("balance - ?", amount), "debit")
}

// Credit applies balance = balance + amount to the named row.
func (r *accountRepo) Credit(ctx context.Context, name string, amount int64) error {
	return r.applyDelta(ctx, name, gorm.Expr("balance + ?", amount), "credit")
}

func (r *accountRepo) applyDelta(ctx context.Context, name string, delta interface{}, op string) error {
	res := r.data.DB(ctx).Model(&AccountModel{}).
		Where("name = ?", name).
		UpdateColumn("balance", delta)
	if res.Error != nil {
		return fmt.Errorf("%s account %q: %w", op, name, res.Error)
	}
	if res.RowsAffected == 0 {
		return biz.ErrAccountNotFound
	}
	r.invalidateBalance(ctx, name)
	return nil
}

// GetBalance reads the balance through the redis cache.
func (r *accountRepo) GetBalance(ctx context.Context, name string) (int64, error) {
	if balance, ok := r.cachedBalance(ctx, name); ok {
		return balance, nil
	}

	var account AccountModel
	if err := r.data.DB(ctx).Where("name = ?", name).Take(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, biz.ErrAccountNotFound
		}
		return 0, fmt.Errorf("get balance of %q: %w", name, err)
	}

	r.cacheBalance(ctx, name, account.Balance)
	return account.Balance, nil
}

// TotalBalance returns the sum over all accounts, straight from storage.
func (r *accountRepo) TotalBalance(ctx context.Context) (int64, error) {
	var total int64
	err := r.data.DB(ctx).Model(&AccountModel{}).
		Select("COALESCE(SUM(balance), 0)").
		Scan(&total).Error
	if err != nil {
		return 0, fmt.Errorf("sum balances: %w", err)
	}
	return total, nil
}

func balanceCacheKey(name string) string {
	return "account:balance:" + name
}

func (r *accountRepo) cachedBalance(ctx context.Context, name string) (int64, bool) {
	if r.data.rdb == nil {
		return 0, false
	}
	val, err := r.data.rdb.Get(ctx, balanceCacheKey(name)).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			r.log.WithContext(ctx).Warnf("read balance cache for %q: %v", name, err)
		}
		return 0, false
	}
	balance, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		r.log.WithContext(ctx).Warnf("corrupt balance cache for %q: %v", name, err)
		return 0, false
	}
	return balance, true
}

func (r *accountRepo) cacheBalance(ctx context.Context, name string, balance int64) {
	if r.data.rdb == nil {
		return
	}
	if err := r.data.rdb.Set(ctx, balanceCacheKey(name), strconv.FormatInt(balance, 10), r.balanceTTL).Err(); err != nil {
		r.log.WithContext(ctx).Warnf("cache balance for %q: %v", name, err)
	}
}

// invalidateBalance drops the cached balance after a mutation. Dropping
// on a transaction that later rolls back only costs a cache miss.
func (r *accountRepo) invalidateBalance(ctx context.Context, name string) {
	if r.data.rdb == nil {
		return
	}
	if err := r.data.rdb.Del(ctx, balanceCacheKey(name)).Err(); err != nil {
		r.log.WithContext(ctx).Warnf("invalidate balance cache for %q: %v", name, err)
	}
}
