package matcher

import (
	"context"
	"fmt"
	"math"

	"resume-match-go/internal/types"
)

// TextEmbedder 文本向量化能力，由embedding包提供实现
type TextEmbedder interface {
	Embed(ctx context.Context, text string) ([]float64, error)
}

// SemanticMatcher 单简历语义匹配：归一化、向量化、余弦相似度，
// 外加静态词表的关键词重合
type SemanticMatcher struct {
	embedder TextEmbedder
	vocab    *Vocabulary
}

// NewSemanticMatcher 创建语义匹配器
func NewSemanticMatcher(embedder TextEmbedder, vocab *Vocabulary) *SemanticMatcher {
	return &SemanticMatcher{embedder: embedder, vocab: vocab}
}

// MatchOne 计算一份简历文本与查询文本的匹配结果
func (m *SemanticMatcher) MatchOne(ctx context.Context, resumeText, queryText string) (*types.SemanticMatchResult, error) {
	resumeVec, err := m.embedder.Embed(ctx, Normalize(resumeText))
	if err != nil {
		return nil, fmt.Errorf("简历文本向量化失败: %w", err)
	}
	queryVec, err := m.embedder.Embed(ctx, Normalize(queryText))
	if err != nil {
		return nil, fmt.Errorf("查询文本向量化失败: %w", err)
	}

	score, err := CosineSimilarity(resumeVec, queryVec)
	if err != nil {
		return nil, err
	}

	resumeKeywords := m.vocab.ExtractKeywords(resumeText)
	queryKeywords := m.vocab.ExtractKeywords(queryText)

	return &types.SemanticMatchResult{
		Score:           math.Round(score*100) / 100,
		ResumeKeywords:  resumeKeywords,
		QueryKeywords:   queryKeywords,
		OverlapKeywords: Intersect(resumeKeywords, queryKeywords),
	}, nil
}

// CosineSimilarity 计算两个向量的余弦相似度。
// 维度不一致或任一向量为零向量时返回错误。
func CosineSimilarity(a, b []float64) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("向量维度不一致: %d != %d", len(a), len(b))
	}
	if len(a) == 0 {
		return 0, fmt.Errorf("无法计算空向量的相似度")
	}

	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0, fmt.Errorf("无法计算零向量的相似度")
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB)), nil
}
