package pool

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type buffer struct {
	data []byte
}

func TestPoolResetsOnPut(t *testing.T) {
	allocCount := 0
	p := NewPool(
		func() *buffer {
			allocCount++
			return &buffer{data: make([]byte, 0, 16)}
		},
		func(b *buffer) {
			b.data = b.data[:0]
		},
	)

	b := p.Get()
	require.Equal(t, 1, allocCount)
	b.data = append(b.data, 1, 2, 3)
	p.Put(b)

	b = p.Get()
	require.Len(t, b.data, 0)
	require.Equal(t, 16, cap(b.data))
}
