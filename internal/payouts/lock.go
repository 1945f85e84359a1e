package payouts

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	pkgredis "github.com/closingdesk/commission-backend/pkg/redis"
)

const creationLockScope = "payout-create"

// ErrCreationInProgress is returned when another request is creating a payout for the same deal.
var ErrCreationInProgress = errors.New("payout creation already in progress")

// CreationLock serializes payout creation per transaction.
type CreationLock interface {
	Acquire(ctx context.Context, transactionID uuid.UUID) (release func(context.Context) error, err error)
}

type redisCreationLock struct {
	locker pkgredis.Locker
	ttl    time.Duration
}

// NewRedisCreationLock backs CreationLock with a redis SETNX lock.
func NewRedisCreationLock(locker pkgredis.Locker, ttl time.Duration) CreationLock {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &redisCreationLock{locker: locker, ttl: ttl}
}

func (l *redisCreationLock) Acquire(ctx context.Context, transactionID uuid.UUID) (func(context.Context) error, error) {
	lock, err := l.locker.AcquireLock(ctx, creationLockScope, transactionID.String(), l.ttl)
	if err != nil {
		if errors.Is(err, pkgredis.ErrLockHeld) {
			return nil, ErrCreationInProgress
		}
		return nil, err
	}
	return lock.Release, nil
}
