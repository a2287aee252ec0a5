package remote

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteWithProgress(t *testing.T) {
	data := bytes.Repeat([]byte{7}, 3*writeChunkSize+10)
	var buf bytes.Buffer
	var reported []int
	err := writeWithProgress(context.Background(), &buf, data, func(percent int) bool {
		reported = append(reported, percent)
		return true
	})
	require.NoError(t, err)
	assert.Equal(t, data, buf.Bytes())
	require.Len(t, reported, 4)
	assert.Equal(t, 100, reported[len(reported)-1])
	for i := 1; i < len(reported); i++ {
		assert.Greater(t, reported[i], reported[i-1])
	}
}

func TestWriteWithProgress_Empty(t *testing.T) {
	var buf bytes.Buffer
	var reported []int
	err := writeWithProgress(context.Background(), &buf, nil, func(percent int) bool {
		reported = append(reported, percent)
		return true
	})
	require.NoError(t, err)
	assert.Equal(t, []int{100}, reported)
}

func TestWriteWithProgress_Abort(t *testing.T) {
	data := bytes.Repeat([]byte{1}, 2*writeChunkSize)
	var buf bytes.Buffer
	err := writeWithProgress(context.Background(), &buf, data, func(percent int) bool {
		return false
	})
	assert.ErrorIs(t, err, ErrWriteAborted)
	assert.Equal(t, writeChunkSize, buf.Len())
}

func TestWriteWithProgress_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var buf bytes.Buffer
	err := writeWithProgress(ctx, &buf, []byte("abc"), nil)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Zero(t, buf.Len())
}
