package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	elasticsearch "github.com/elastic/go-elasticsearch/v8"

	"resume-match-go/internal/config"
	"resume-match-go/internal/logger"
	"resume-match-go/internal/types"
)

// SearchIndexer 搜索索引能力
type SearchIndexer interface {
	IndexResume(ctx context.Context, doc *types.ResumeDocument) error
	Search(ctx context.Context, query map[string]interface{}) ([]types.IndexHit, error)
	Close() error
}

var _ SearchIndexer = (*Elasticsearch)(nil)

// resumeIndexMapping 简历索引的字段映射。
// skills与full_text参与全文检索，其余字段仅存储和精确过滤。
const resumeIndexMapping = `{
  "mappings": {
    "properties": {
      "resume_id":  {"type": "keyword"},
      "owner_id":   {"type": "keyword"},
      "object_key": {"type": "keyword"},
      "file_name":  {"type": "keyword"},
      "emails":     {"type": "keyword"},
      "phones":     {"type": "keyword"},
      "skills":     {"type": "text"},
      "full_text":  {"type": "text"}
    }
  }
}`

// Elasticsearch 简历搜索索引实现
type Elasticsearch struct {
	client  *elasticsearch.Client
	index   string
	timeout time.Duration
}

// NewElasticsearch 创建ES客户端并确保简历索引存在
func NewElasticsearch(ctx context.Context, cfg *config.ElasticsearchConfig) (*Elasticsearch, error) {
	if cfg == nil || len(cfg.Addresses) == 0 {
		return nil, fmt.Errorf("Elasticsearch地址配置不能为空")
	}

	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: cfg.Addresses,
		Username:  cfg.Username,
		Password:  cfg.Password,
	})
	if err != nil {
		return nil, fmt.Errorf("创建Elasticsearch客户端失败: %w", err)
	}

	es := &Elasticsearch{
		client:  client,
		index:   cfg.Index,
		timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
	}
	if err := es.ensureIndex(ctx); err != nil {
		return nil, err
	}

	logger.Info().Strs("addresses", cfg.Addresses).Str("index", cfg.Index).Msg("Elasticsearch客户端已就绪")
	return es, nil
}

func (e *Elasticsearch) ensureIndex(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	res, err := e.client.Indices.Exists([]string{e.index}, e.client.Indices.Exists.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("检查索引失败: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode == 200 {
		return nil
	}

	createRes, err := e.client.Indices.Create(e.index,
		e.client.Indices.Create.WithContext(ctx),
		e.client.Indices.Create.WithBody(strings.NewReader(resumeIndexMapping)))
	if err != nil {
		return fmt.Errorf("创建索引失败: %w", err)
	}
	defer createRes.Body.Close()
	if createRes.IsError() {
		return fmt.Errorf("创建索引失败: %s", createRes.String())
	}

	logger.Info().Str("index", e.index).Msg("已创建简历索引")
	return nil
}

// IndexResume 将简历文档写入索引，按resume_id幂等
func (e *Elasticsearch) IndexResume(ctx context.Context, doc *types.ResumeDocument) error {
	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("序列化简历文档失败: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	res, err := e.client.Index(e.index, bytes.NewReader(body),
		e.client.Index.WithContext(ctx),
		e.client.Index.WithDocumentID(doc.ResumeID))
	if err != nil {
		return fmt.Errorf("写入简历索引失败 (resume_id=%s): %w", doc.ResumeID, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("写入简历索引失败 (resume_id=%s): %s", doc.ResumeID, res.String())
	}
	return nil
}

// Search 执行查询并返回命中列表
func (e *Elasticsearch) Search(ctx context.Context, query map[string]interface{}) ([]types.IndexHit, error) {
	body, err := json.Marshal(query)
	if err != nil {
		return nil, fmt.Errorf("序列化查询失败: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	res, err := e.client.Search(
		e.client.Search.WithContext(ctx),
		e.client.Search.WithIndex(e.index),
		e.client.Search.WithBody(bytes.NewReader(body)))
	if err != nil {
		return nil, fmt.Errorf("执行搜索失败: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, fmt.Errorf("搜索请求被拒绝: %s", res.String())
	}

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("读取搜索响应失败: %w", err)
	}

	var parsed struct {
		Hits struct {
			Hits []struct {
				Score  float64              `json:"_score"`
				Source types.ResumeDocument `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("解析搜索响应失败: %w", err)
	}

	hits := make([]types.IndexHit, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		hits = append(hits, types.IndexHit{Document: h.Source, Score: h.Score})
	}
	return hits, nil
}

// Close 实现SearchIndexer接口。ES客户端基于HTTP，无需显式释放。
func (e *Elasticsearch) Close() error {
	return nil
}
