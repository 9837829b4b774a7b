package cache

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOptionsFromEnv_Defaults(t *testing.T) {
	opt, err := OptionsFromEnv()
	require.NoError(t, err)
	require.Equal(t, 8, opt.NumShards)
	require.Equal(t, int64(64<<20), opt.CacheSizeBytes)
	require.Equal(t, 128, opt.MaxRowDim)
	require.Equal(t, 512, opt.ItemSizeBytes)
}

func TestOptionsFromEnv_Overrides(t *testing.T) {
	t.Setenv("EMBCACHE_SHARDS", "2")
	t.Setenv("EMBCACHE_SIZE_BYTES", "1024")
	t.Setenv("EMBCACHE_ROW_DIM", "1")
	t.Setenv("EMBCACHE_ITEM_BYTES", "8")

	opt, err := OptionsFromEnv()
	require.NoError(t, err)
	require.Equal(t, 2, opt.NumShards)
	require.Equal(t, int64(1024), opt.CacheSizeBytes)
	require.Equal(t, 1, opt.MaxRowDim)
	require.Equal(t, 8, opt.ItemSizeBytes)

	require.NotPanics(t, func() { _ = New(opt).Close() })
}

func TestOptionsFromEnv_Invalid(t *testing.T) {
	t.Setenv("EMBCACHE_SHARDS", "not-a-number")
	_, err := OptionsFromEnv()
	require.Error(t, err)
}

func TestOptionsFromEnv_FailsValidation(t *testing.T) {
	t.Setenv("EMBCACHE_ROW_DIM", "3")
	t.Setenv("EMBCACHE_ITEM_BYTES", "8")

	_, err := OptionsFromEnv()
	require.Error(t, err, "ragged geometry must be rejected before New can panic")
}
