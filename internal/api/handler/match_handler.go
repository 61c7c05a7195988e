package handler

import (
	"context"
	"fmt"

	"resume-match-go/internal/matcher"
	"resume-match-go/internal/storage"
	"resume-match-go/internal/types"
)

// MatchHandler 语义匹配与简历库搜索的业务处理
type MatchHandler struct {
	semantic *matcher.SemanticMatcher
	searcher *matcher.Searcher
	records  storage.RecordStore
}

// NewMatchHandler 创建匹配处理器
func NewMatchHandler(semantic *matcher.SemanticMatcher, searcher *matcher.Searcher, records storage.RecordStore) *MatchHandler {
	return &MatchHandler{semantic: semantic, searcher: searcher, records: records}
}

// HandleMatchOne 单简历匹配。resumeID与resumeText二选一：
// 给了ID就从记录存储取回全文，否则直接用传入的文本。
func (h *MatchHandler) HandleMatchOne(ctx context.Context, resumeID, resumeText, queryText string) (*types.SemanticMatchResult, error) {
	if resumeID != "" {
		record, err := h.records.GetResumeRecord(ctx, resumeID)
		if err != nil {
			return nil, err
		}
		if record.FullText == "" {
			return nil, fmt.Errorf("简历记录未保留全文，无法做语义匹配 (resume_id=%s)", resumeID)
		}
		resumeText = record.FullText
	}
	if resumeText == "" {
		return nil, fmt.Errorf("%w: 必须提供resume_id或resume_text之一", ErrBadRequest)
	}
	if queryText == "" {
		return nil, fmt.Errorf("%w: query_text不能为空", ErrBadRequest)
	}

	return h.semantic.MatchOne(ctx, resumeText, queryText)
}

// HandleSearch 简历库搜索，阈值校验由搜索器完成
func (h *MatchHandler) HandleSearch(ctx context.Context, queryText string, threshold float64) ([]types.SearchHit, error) {
	if queryText == "" {
		return nil, fmt.Errorf("%w: query_text不能为空", ErrBadRequest)
	}
	return h.searcher.Search(ctx, queryText, threshold)
}
