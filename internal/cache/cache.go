// Package cache provides caching for rendered frames and contour queries.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/allegro/bigcache/v3"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/klauspost/compress/zstd"
)

// Config contains cache configuration.
type Config struct {
	FrameCacheSizeMB int
	FrameTTL         time.Duration
	QueryCacheSize   int
}

// Manager holds the PNG frame cache and the contour query cache. Query
// results are JSON and are kept zstd compressed.
type Manager struct {
	frameCache *bigcache.BigCache
	queryCache *lru.Cache[string, []byte]
	enc        *zstd.Encoder
	dec        *zstd.Decoder
}

// NewManager creates a new cache manager.
func NewManager(cfg Config) (*Manager, error) {
	ttl := cfg.FrameTTL
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	frameCacheConfig := bigcache.Config{
		Shards:             16,
		LifeWindow:         ttl,
		CleanWindow:        ttl / 2,
		MaxEntriesInWindow: 10000,
		MaxEntrySize:       256 * 1024,
		HardMaxCacheSize:   cfg.FrameCacheSizeMB,
		Verbose:            false,
	}
	frameCache, err := bigcache.New(context.Background(), frameCacheConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create frame cache: %w", err)
	}

	size := cfg.QueryCacheSize
	if size <= 0 {
		size = 256
	}
	queryCache, err := lru.New[string, []byte](size)
	if err != nil {
		frameCache.Close()
		return nil, fmt.Errorf("failed to create query cache: %w", err)
	}

	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		frameCache.Close()
		return nil, fmt.Errorf("failed to create zstd encoder: %w", err)
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		frameCache.Close()
		enc.Close()
		return nil, fmt.Errorf("failed to create zstd decoder: %w", err)
	}

	return &Manager{
		frameCache: frameCache,
		queryCache: queryCache,
		enc:        enc,
		dec:        dec,
	}, nil
}

// GetFrame retrieves an encoded frame from cache.
func (m *Manager) GetFrame(key string) ([]byte, bool) {
	data, err := m.frameCache.Get(key)
	if err != nil {
		return nil, false
	}
	return data, true
}

// SetFrame stores an encoded frame in cache.
func (m *Manager) SetFrame(key string, data []byte) error {
	return m.frameCache.Set(key, data)
}

// GetQuery retrieves a query result from cache.
func (m *Manager) GetQuery(key string) ([]byte, bool) {
	packed, ok := m.queryCache.Get(key)
	if !ok {
		return nil, false
	}
	data, err := m.dec.DecodeAll(packed, nil)
	if err != nil {
		m.queryCache.Remove(key)
		return nil, false
	}
	return data, true
}

// SetQuery stores a query result in cache.
func (m *Manager) SetQuery(key string, data []byte) {
	m.queryCache.Add(key, m.enc.EncodeAll(data, make([]byte, 0, len(data)/2)))
}

// FrameKey generates a cache key for a rendered frame.
func FrameKey(field string, threshold, resolution, cx, cy, scale float64, w, h int, layers string) string {
	return fmt.Sprintf("frame:%s:%v:%v:%v,%v:%v:%dx%d:%s", field, threshold, resolution, cx, cy, scale, w, h, layers)
}

// ContourKey generates a cache key for a contour query over a rectangle.
func ContourKey(field string, threshold, resolution, minX, minY, maxX, maxY float64) string {
	return fmt.Sprintf("contour:%s:%v:%v:%v,%v,%v,%v", field, threshold, resolution, minX, minY, maxX, maxY)
}

// Stats returns cache statistics.
func (m *Manager) Stats() map[string]interface{} {
	st := m.frameCache.Stats()
	return map[string]interface{}{
		"frame_cache_len":    m.frameCache.Len(),
		"frame_cache_hits":   st.Hits,
		"frame_cache_misses": st.Misses,
		"query_cache_len":    m.queryCache.Len(),
	}
}

// Close releases the frame cache and the codec goroutines.
func (m *Manager) Close() error {
	m.dec.Close()
	return errors.Join(m.enc.Close(), m.frameCache.Close())
}
