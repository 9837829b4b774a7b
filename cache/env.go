package cache

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// envOptions mirrors the required Options fields as environment variables.
type envOptions struct {
	NumShards      int   `env:"EMBCACHE_SHARDS" envDefault:"8"`
	CacheSizeBytes int64 `env:"EMBCACHE_SIZE_BYTES" envDefault:"67108864"`
	MaxRowDim      int   `env:"EMBCACHE_ROW_DIM" envDefault:"128"`
	ItemSizeBytes  int   `env:"EMBCACHE_ITEM_BYTES" envDefault:"512"`
}

// OptionsFromEnv builds Options from EMBCACHE_* environment variables,
// returning an error (rather than panicking) for unparseable or invalid
// values so host processes can report misconfiguration before start-up.
// Logger and Metrics are left nil for the caller to fill in.
func OptionsFromEnv() (Options, error) {
	var e envOptions
	if err := env.Parse(&e); err != nil {
		return Options{}, fmt.Errorf("cache: parsing environment: %w", err)
	}
	opt := Options{
		NumShards:      e.NumShards,
		CacheSizeBytes: e.CacheSizeBytes,
		MaxRowDim:      e.MaxRowDim,
		ItemSizeBytes:  e.ItemSizeBytes,
	}
	if err := validate(opt); err != nil {
		return Options{}, err
	}
	return opt, nil
}

// validate applies the construction invariants without panicking.
func validate(opt Options) error {
	switch {
	case opt.NumShards <= 0:
		return fmt.Errorf("cache: NumShards must be > 0, got %d", opt.NumShards)
	case opt.CacheSizeBytes <= 0:
		return fmt.Errorf("cache: CacheSizeBytes must be > 0, got %d", opt.CacheSizeBytes)
	case opt.MaxRowDim <= 0:
		return fmt.Errorf("cache: MaxRowDim must be > 0, got %d", opt.MaxRowDim)
	case opt.ItemSizeBytes <= 0 || opt.ItemSizeBytes%opt.MaxRowDim != 0:
		return fmt.Errorf("cache: ItemSizeBytes (%d) must be a positive multiple of MaxRowDim (%d)",
			opt.ItemSizeBytes, opt.MaxRowDim)
	}
	return nil
}
