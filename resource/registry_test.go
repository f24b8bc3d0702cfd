package resource

import (
	"context"
	"math/rand"
	"sync"
	"testing"

	assertT "github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xaionaro-go/hwdec/types"
)

func TestRegistryReserveUpToCapacity(t *testing.T) {
	ctx := context.Background()
	r := NewRegistry(ctx, map[types.DecoderKind]uint{
		types.DecoderKindH264: 2,
		types.DecoderKindHEVC: 0,
	})

	a, err := r.Reserve(ctx, types.DecoderKindH264)
	require.NoError(t, err)
	b, err := r.Reserve(ctx, types.DecoderKindH264)
	require.NoError(t, err)
	require.NotEqual(t, a.ID, b.ID)

	_, err = r.Reserve(ctx, types.DecoderKindH264)
	var errCap types.ErrCapacityExhausted
	require.ErrorAs(t, err, &errCap)
	require.Equal(t, types.DecoderKindH264, errCap.Kind)
	require.Equal(t, uint(2), errCap.Total)

	_, err = r.Reserve(ctx, types.DecoderKindHEVC)
	require.ErrorAs(t, err, &types.ErrCapacityExhausted{})

	_, err = r.Reserve(ctx, types.DecoderKindAV1)
	require.ErrorAs(t, err, &types.ErrUnknownDecoderKind{})

	require.NoError(t, r.Release(ctx, a))
	u, err := r.Usage(types.DecoderKindH264)
	require.NoError(t, err)
	require.Equal(t, KindUsage{Kind: types.DecoderKindH264, Reserved: 1, Total: 2}, u)

	c, err := r.Reserve(ctx, types.DecoderKindH264)
	require.NoError(t, err)
	assertT.Greater(t, c.ID, b.ID, "reservation IDs must never be reused")
}

func TestRegistryDoubleRelease(t *testing.T) {
	ctx := context.Background()
	r := NewRegistry(ctx, map[types.DecoderKind]uint{types.DecoderKindH264: 1})

	res, err := r.Reserve(ctx, types.DecoderKindH264)
	require.NoError(t, err)
	require.NoError(t, r.Release(ctx, res))

	err = r.Release(ctx, res)
	var errDouble types.ErrDoubleRelease
	require.ErrorAs(t, err, &errDouble)
	require.Equal(t, uint64(res.ID), errDouble.ReservationID)

	err = r.Release(ctx, Reservation{})
	require.ErrorAs(t, err, &types.ErrDoubleRelease{})

	u, err := r.Usage(types.DecoderKindH264)
	require.NoError(t, err)
	require.Zero(t, u.Reserved)
}

func TestRegistrySnapshot(t *testing.T) {
	ctx := context.Background()
	r := NewRegistry(ctx, map[types.DecoderKind]uint{
		types.DecoderKindAV1:  1,
		types.DecoderKindH264: 3,
	})
	_, err := r.Reserve(ctx, types.DecoderKindH264)
	require.NoError(t, err)

	require.Equal(t, []types.DecoderKind{types.DecoderKindH264, types.DecoderKindAV1}, r.Kinds())
	require.Equal(t, []KindUsage{
		{Kind: types.DecoderKindH264, Reserved: 1, Total: 3},
		{Kind: types.DecoderKindAV1, Reserved: 0, Total: 1},
	}, r.Snapshot())
}

func TestRegistryConcurrentNeverExceedsTotal(t *testing.T) {
	ctx := context.Background()
	const total = 3
	r := NewRegistry(ctx, map[types.DecoderKind]uint{types.DecoderKindH264: total})

	var wg sync.WaitGroup
	for worker := range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rng := rand.New(rand.NewSource(int64(worker)))
			var held []Reservation
			for range 200 {
				if len(held) > 0 && rng.Intn(2) == 0 {
					idx := rng.Intn(len(held))
					assertT.NoError(t, r.Release(ctx, held[idx]))
					held = append(held[:idx], held[idx+1:]...)
				} else {
					res, err := r.Reserve(ctx, types.DecoderKindH264)
					if err == nil {
						held = append(held, res)
					} else {
						assertT.ErrorAs(t, err, &types.ErrCapacityExhausted{})
					}
				}
				u, err := r.Usage(types.DecoderKindH264)
				assertT.NoError(t, err)
				assertT.LessOrEqual(t, u.Reserved, u.Total)
			}
			for _, res := range held {
				assertT.NoError(t, r.Release(ctx, res))
			}
		}()
	}
	wg.Wait()

	u, err := r.Usage(types.DecoderKindH264)
	require.NoError(t, err)
	require.Equal(t, uint(0), u.Reserved)
}
