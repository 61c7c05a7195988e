package matcher

import (
	"context"
	"errors"
	"fmt"
	"time"

	"resume-match-go/internal/logger"
	"resume-match-go/internal/types"
)

var (
	// ErrInvalidThreshold 阈值超出[0,100]范围
	ErrInvalidThreshold = errors.New("匹配阈值必须在[0,100]范围内")

	// ErrSearchUnavailable 搜索索引不可达或拒绝了查询
	ErrSearchUnavailable = errors.New("搜索服务不可用")
)

// SearchIndex 搜索索引能力，由storage包的Elasticsearch实现提供
type SearchIndex interface {
	Search(ctx context.Context, query map[string]interface{}) ([]types.IndexHit, error)
}

// ObjectPresigner 为存储对象签发限时下载链接
type ObjectPresigner interface {
	PresignGet(ctx context.Context, objectKey string, expiry time.Duration) (string, error)
}

// 搜索结果中下载链接的默认有效期
const defaultDownloadURLTTL = 10 * time.Minute

// Searcher 简历库搜索：把阈值换算成词项最低命中比例交给索引执行，
// 并为每条命中签发限时下载链接
type Searcher struct {
	index       SearchIndex
	presigner   ObjectPresigner
	limit       int
	downloadTTL time.Duration
}

// NewSearcher 创建搜索器。limit为单次返回结果上限，
// downloadTTL为下载链接有效期，不为正时取默认10分钟。
func NewSearcher(index SearchIndex, presigner ObjectPresigner, limit int, downloadTTL time.Duration) *Searcher {
	if limit <= 0 {
		limit = 10
	}
	if downloadTTL <= 0 {
		downloadTTL = defaultDownloadURLTTL
	}
	return &Searcher{index: index, presigner: presigner, limit: limit, downloadTTL: downloadTTL}
}

// ValidateThreshold 校验阈值范围。允许小数，越界返回ErrInvalidThreshold。
func ValidateThreshold(threshold float64) error {
	if threshold < 0 || threshold > 100 {
		return fmt.Errorf("%w: %.2f", ErrInvalidThreshold, threshold)
	}
	return nil
}

// BuildSearchQuery 构造索引查询：技能字段权重加倍、全文兜底、
// 模糊匹配，minimum_should_match取阈值截断后的整数百分比。
func BuildSearchQuery(queryText string, threshold float64, limit int) map[string]interface{} {
	return map[string]interface{}{
		"size": limit,
		"query": map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":                queryText,
				"fields":               []string{"skills^2", "full_text"},
				"fuzziness":            "AUTO",
				"minimum_should_match": fmt.Sprintf("%d%%", int(threshold)),
			},
		},
	}
}

// Search 执行简历库搜索。
// 结果就是索引对该查询返回的全部命中，不做二次过滤；索引失败时
// 整体失败，绝不返回部分结果。
func (s *Searcher) Search(ctx context.Context, queryText string, threshold float64) ([]types.SearchHit, error) {
	if err := ValidateThreshold(threshold); err != nil {
		return nil, err
	}

	query := BuildSearchQuery(queryText, threshold, s.limit)
	hits, err := s.index.Search(ctx, query)
	if err != nil {
		logger.Error().Err(err).Str("query_text", queryText).Msg("索引查询失败")
		return nil, fmt.Errorf("%w: %v", ErrSearchUnavailable, err)
	}

	results := make([]types.SearchHit, 0, len(hits))
	for _, hit := range hits {
		url, err := s.presigner.PresignGet(ctx, hit.Document.ObjectKey, s.downloadTTL)
		if err != nil {
			return nil, fmt.Errorf("生成下载链接失败 (resume_id=%s): %w", hit.Document.ResumeID, err)
		}
		results = append(results, types.SearchHit{
			ResumeID:    hit.Document.ResumeID,
			OwnerID:     hit.Document.OwnerID,
			FileName:    hit.Document.FileName,
			Score:       hit.Score,
			Emails:      hit.Document.Emails,
			Phones:      hit.Document.Phones,
			Skills:      hit.Document.Skills,
			DownloadURL: url,
		})
	}
	return results, nil
}
