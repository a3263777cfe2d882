package redlock

import (
	"context"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
)

func TestLocker_Lock_Success(t *testing.T) {
	db, mock := redismock.NewClientMock()
	locker := NewLocker(db, "test-key", "test-value")

	mock.ExpectSetNX("test-key", "test-value", 5*time.Second).SetVal(true)

	err := locker.Lock(context.Background(), 5*time.Second)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLocker_Lock_Failure(t *testing.T) {
	db, mock := redismock.NewClientMock()
	locker := NewLocker(db, "test-key", "test-value")

	mock.ExpectSetNX("test-key", "test-value", 5*time.Second).SetVal(false)

	err := locker.Lock(context.Background(), 5*time.Second)
	assert.EqualError(t, err, "lock for key test-key is already held")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSellerPayoutLocker_KeyIsSellerScoped(t *testing.T) {
	db, mock := redismock.NewClientMock()
	locker := NewSellerPayoutLocker(db, "slr_1", "owner_1")

	mock.ExpectSetNX("payout:seller:slr_1", "owner_1", time.Minute).SetVal(true)

	err := locker.Lock(context.Background(), time.Minute)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLocker_Unlock_NotHolder(t *testing.T) {
	db, mock := redismock.NewClientMock()
	locker := NewLocker(db, "test-key", "test-value")

	script := "if redis.call('get', KEYS[1]) == ARGV[1] then return redis.call('del', KEYS[1]) else return 0 end"
	mock.ExpectEval(script, []string{"test-key"}, "test-value").SetVal(int64(0))

	err := locker.Unlock(context.Background())
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
