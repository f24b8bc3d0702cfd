package closuresignaler

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClosureSignaler(t *testing.T) {
	ctx := context.Background()
	s := New()
	require.False(t, s.IsClosed())

	var wg sync.WaitGroup
	for range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-s.CloseChan()
		}()
	}

	require.True(t, s.Close(ctx))
	require.False(t, s.Close(ctx))
	wg.Wait()
	require.True(t, s.IsClosed())
}
