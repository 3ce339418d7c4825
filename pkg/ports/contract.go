package ports

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunLockerContract runs a suite of tests to verify that a DistributedLocker
// implementation adheres to the defined interface contract.
func RunLockerContract(t *testing.T, locker DistributedLocker) {
	key := "contract-" + time.Now().Format("20060102150405.000000")

	t.Run("Lock and Unlock", func(t *testing.T) {
		ctx := context.Background()
		unlock, err := locker.Lock(ctx, key, time.Second)
		require.NoError(t, err)
		require.NotNil(t, unlock)
		assert.NoError(t, unlock(ctx))
	})

	t.Run("Held lock blocks until context ends", func(t *testing.T) {
		ctx := context.Background()
		unlock, err := locker.Lock(ctx, key, 5*time.Second)
		require.NoError(t, err)
		defer unlock(ctx)

		waitCtx, cancel := context.WithTimeout(ctx, 300*time.Millisecond)
		defer cancel()
		_, err = locker.Lock(waitCtx, key, time.Second)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})

	t.Run("Released lock can be reacquired", func(t *testing.T) {
		ctx := context.Background()
		unlock, err := locker.Lock(ctx, key+"-re", time.Second)
		require.NoError(t, err)
		require.NoError(t, unlock(ctx))

		ctx2, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		unlock2, err := locker.Lock(ctx2, key+"-re", time.Second)
		require.NoError(t, err)
		assert.NoError(t, unlock2(ctx))
	})
}
