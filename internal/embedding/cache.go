package embedding

import (
	"context"

	"resume-match-go/internal/logger"
)

// Embedder 文本向量化能力
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float64, error)
}

// VectorCache 向量缓存能力，由storage包的Redis实现提供
type VectorCache interface {
	GetVector(ctx context.Context, text string) ([]float64, error)
	SetVector(ctx context.Context, text string, vector []float64) error
}

// CachedEmbedder 带缓存的向量化：同一段文本只调用一次远端接口。
// 缓存读写失败只记日志，不影响向量化结果。
type CachedEmbedder struct {
	inner Embedder
	cache VectorCache
}

// NewCachedEmbedder 用缓存包装一个向量化实现
func NewCachedEmbedder(inner Embedder, cache VectorCache) *CachedEmbedder {
	return &CachedEmbedder{inner: inner, cache: cache}
}

// Embed 先查缓存，未命中再调用底层实现并回写
func (c *CachedEmbedder) Embed(ctx context.Context, text string) ([]float64, error) {
	if vector, err := c.cache.GetVector(ctx, text); err != nil {
		logger.Warn().Err(err).Msg("读取向量缓存失败，回退到远端调用")
	} else if vector != nil {
		return vector, nil
	}

	vector, err := c.inner.Embed(ctx, text)
	if err != nil {
		return nil, err
	}

	if err := c.cache.SetVector(ctx, text, vector); err != nil {
		logger.Warn().Err(err).Msg("写入向量缓存失败")
	}
	return vector, nil
}
