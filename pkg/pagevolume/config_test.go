package pagevolume_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jbstore/jbstore/pkg/pagevolume"
)

func TestDefaultConfig_IsValid(t *testing.T) {
	t.Parallel()

	require.NoError(t, pagevolume.DefaultConfig().Validate())
}

func TestConfig_Validate_RejectsInvalidValues(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		mutate  func(c *pagevolume.Config)
	}{
		{"ZeroBucketCount", func(c *pagevolume.Config) { c.BucketCount = 0 }},
		{"NegativeBucketCount", func(c *pagevolume.Config) { c.BucketCount = -1 }},
		{"ZeroSharedLockCount", func(c *pagevolume.Config) { c.SharedLockCount = 0 }},
		{"ZeroSpinCountPerLock", func(c *pagevolume.Config) { c.SpinCountPerLock = 0 }},
		{"ZeroPageLockSpinCount", func(c *pagevolume.Config) { c.PageLockSpinCount = 0 }},
		{"ZeroBucketSpinCount", func(c *pagevolume.Config) { c.BucketSpinCount = 0 }},
		{"ZeroPageCacheCapacity", func(c *pagevolume.Config) { c.PageCacheCapacity = 0 }},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			cfg := pagevolume.DefaultConfig()
			tc.mutate(&cfg)

			assert.Error(t, cfg.Validate())
		})
	}
}
