package matcher

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resume-match-go/internal/types"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"小写化并去除标点", "Senior Go Developer, Remote!", "senior go developer remote"},
		{"去除停用词", "experience with the design of systems", "experience design systems"},
		{"空文本", "", ""},
		{"仅停用词", "and the of", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.text))
		})
	}
}

func TestCosineSimilarity(t *testing.T) {
	t.Run("同向向量", func(t *testing.T) {
		score, err := CosineSimilarity([]float64{1, 2, 3}, []float64{2, 4, 6})
		require.NoError(t, err)
		assert.InDelta(t, 1.0, score, 1e-9)
	})

	t.Run("正交向量", func(t *testing.T) {
		score, err := CosineSimilarity([]float64{1, 0}, []float64{0, 1})
		require.NoError(t, err)
		assert.InDelta(t, 0.0, score, 1e-9)
	})

	t.Run("维度不一致", func(t *testing.T) {
		_, err := CosineSimilarity([]float64{1, 2}, []float64{1})
		assert.Error(t, err)
	})

	t.Run("零向量", func(t *testing.T) {
		_, err := CosineSimilarity([]float64{0, 0}, []float64{1, 1})
		assert.Error(t, err)
	})
}

func TestVocabularyExtractKeywords(t *testing.T) {
	vocab := NewVocabulary([]string{"Python", "Docker", "Kubernetes"})

	keywords := vocab.ExtractKeywords("Built python services deployed with Docker")
	assert.Equal(t, []string{"Python", "Docker"}, keywords)

	assert.Empty(t, vocab.ExtractKeywords("前端开发经验"))
}

func TestVocabularyExtractKeywordsWholeWordsOnly(t *testing.T) {
	vocab := NewVocabulary([]string{"Java", "Go", "C++"})

	// 词表项必须作为完整词出现，子串命中不算
	assert.Empty(t, vocab.ExtractKeywords("JavaScript expert, Django backend"))

	keywords := vocab.ExtractKeywords("Java and JavaScript, some C++ (no Go)")
	assert.Equal(t, []string{"Java", "Go", "C++"}, keywords)
}

func TestIntersect(t *testing.T) {
	overlap := Intersect([]string{"Python", "Docker", "SQL"}, []string{"Docker", "Python"})
	assert.Equal(t, []string{"Python", "Docker"}, overlap)

	assert.Empty(t, Intersect([]string{"Python"}, []string{"Rust"}))
}

func TestValidateThreshold(t *testing.T) {
	assert.NoError(t, ValidateThreshold(0))
	assert.NoError(t, ValidateThreshold(100))
	assert.NoError(t, ValidateThreshold(50.5)) // 范围内的小数有效
	assert.ErrorIs(t, ValidateThreshold(150), ErrInvalidThreshold)
	assert.ErrorIs(t, ValidateThreshold(-1), ErrInvalidThreshold)
}

func TestBuildSearchQueryTruncatesThreshold(t *testing.T) {
	query := BuildSearchQuery("python docker", 50.9, 10)

	multiMatch := query["query"].(map[string]interface{})["multi_match"].(map[string]interface{})
	assert.Equal(t, "50%", multiMatch["minimum_should_match"]) // 截断而非四舍五入
	assert.Equal(t, []string{"skills^2", "full_text"}, multiMatch["fields"])
	assert.Equal(t, "AUTO", multiMatch["fuzziness"])
	assert.Equal(t, 10, query["size"])
}

// fakeEmbedder 按预置表返回向量
type fakeEmbedder struct {
	vectors map[string][]float64
}

func (f *fakeEmbedder) Embed(_ context.Context, text string) ([]float64, error) {
	vec, ok := f.vectors[text]
	if !ok {
		return nil, errors.New("no vector for text")
	}
	return vec, nil
}

func TestSemanticMatcherMatchOne(t *testing.T) {
	embedder := &fakeEmbedder{vectors: map[string][]float64{
		Normalize("Python Docker engineer"):      {1, 2, 0},
		Normalize("Looking for Python engineer"): {2, 3, 1},
	}}
	vocab := NewVocabulary([]string{"Python", "Docker", "Rust"})
	m := NewSemanticMatcher(embedder, vocab)

	result, err := m.MatchOne(context.Background(), "Python Docker engineer", "Looking for Python engineer")
	require.NoError(t, err)

	// cos([1,2,0],[2,3,1]) = 8/(sqrt(5)*sqrt(14)) ≈ 0.956，保留两位小数
	assert.Equal(t, 0.96, result.Score)
	assert.Equal(t, []string{"Python", "Docker"}, result.ResumeKeywords)
	assert.Equal(t, []string{"Python"}, result.QueryKeywords)
	assert.Equal(t, []string{"Python"}, result.OverlapKeywords)
}

// fakeIndex 返回预置命中或预置错误
type fakeIndex struct {
	hits      []types.IndexHit
	err       error
	lastQuery map[string]interface{}
}

func (f *fakeIndex) Search(_ context.Context, query map[string]interface{}) ([]types.IndexHit, error) {
	f.lastQuery = query
	if f.err != nil {
		return nil, f.err
	}
	return f.hits, nil
}

// fakePresigner 记录最近一次签发的有效期
type fakePresigner struct {
	lastExpiry time.Duration
}

func (f *fakePresigner) PresignGet(_ context.Context, objectKey string, expiry time.Duration) (string, error) {
	f.lastExpiry = expiry
	return "https://minio.local/" + objectKey + "?signed", nil
}

func TestSearcherSearch(t *testing.T) {
	index := &fakeIndex{hits: []types.IndexHit{
		{
			Document: types.ResumeDocument{
				ResumeID:  "r1",
				OwnerID:   "u1",
				ObjectKey: "u1/r1.txt",
				FileName:  "resume.txt",
				Emails:    []string{"a@b.com"},
				Skills:    []string{"Python", "Docker"},
			},
			Score: 3.2,
		},
	}}
	presigner := &fakePresigner{}
	s := NewSearcher(index, presigner, 10, 0)

	results, err := s.Search(context.Background(), "python docker", 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "r1", results[0].ResumeID)
	assert.Equal(t, []string{"a@b.com"}, results[0].Emails)
	assert.Equal(t, "https://minio.local/u1/r1.txt?signed", results[0].DownloadURL)
	assert.Equal(t, 10*time.Minute, presigner.lastExpiry) // 未配置时取默认有效期
}

func TestSearcherSearchUsesConfiguredDownloadTTL(t *testing.T) {
	index := &fakeIndex{hits: []types.IndexHit{
		{Document: types.ResumeDocument{ResumeID: "r1", ObjectKey: "u1/r1.pdf"}, Score: 1.0},
	}}
	presigner := &fakePresigner{}
	s := NewSearcher(index, presigner, 10, 30*time.Minute)

	_, err := s.Search(context.Background(), "python", 10)
	require.NoError(t, err)
	assert.Equal(t, 30*time.Minute, presigner.lastExpiry)
}

func TestSearcherSearchIndexFailure(t *testing.T) {
	index := &fakeIndex{err: errors.New("connection refused")}
	s := NewSearcher(index, &fakePresigner{}, 10, 0)

	results, err := s.Search(context.Background(), "python", 10)
	assert.ErrorIs(t, err, ErrSearchUnavailable)
	assert.Nil(t, results) // 绝不返回部分结果
}

func TestSearcherSearchRejectsThresholdBeforeIndexCall(t *testing.T) {
	index := &fakeIndex{}
	s := NewSearcher(index, &fakePresigner{}, 10, 0)

	_, err := s.Search(context.Background(), "python", 150)
	assert.ErrorIs(t, err, ErrInvalidThreshold)
	assert.Nil(t, index.lastQuery) // 校验失败时不触发任何外部调用
}
