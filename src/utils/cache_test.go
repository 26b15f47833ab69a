package utils_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"cryptotracker/src/utils"
)

func TestCache(t *testing.T) {
	t.Run("empty cache misses", func(t *testing.T) {
		cache := utils.NewCache[[]string]()
		_, ok := cache.Get()
		assert.False(t, ok)
	})

	t.Run("set then get within the expiration", func(t *testing.T) {
		cache := utils.NewCache[[]string]()
		cache.Set([]string{"BTC", "ETH"}, time.Minute)

		value, ok := cache.Get()
		assert.True(t, ok)
		assert.Equal(t, []string{"BTC", "ETH"}, value)
	})

	t.Run("expired value misses", func(t *testing.T) {
		cache := utils.NewCache[int]()
		cache.Set(42, -time.Second)

		_, ok := cache.Get()
		assert.False(t, ok)
	})

	t.Run("clear drops the value", func(t *testing.T) {
		cache := utils.NewCache[int]()
		cache.Set(42, time.Minute)
		cache.Clear()

		_, ok := cache.Get()
		assert.False(t, ok)
	})
}
