package handler

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/gofrs/uuid/v5"

	"resume-match-go/internal/logger"
	"resume-match-go/internal/processor"
	"resume-match-go/internal/storage"
	"resume-match-go/internal/types"
)

// ResumeHandler 简历上传与查询的业务处理
type ResumeHandler struct {
	storage   *storage.Storage
	processor *processor.Processor
}

// NewResumeHandler 创建简历处理器
func NewResumeHandler(storage *storage.Storage, processor *processor.Processor) *ResumeHandler {
	return &ResumeHandler{storage: storage, processor: processor}
}

// ResumeUploadResponse 简历上传响应
type ResumeUploadResponse struct {
	ResumeID string `json:"resume_id"`
	Status   string `json:"status"`
}

// HandleResumeUpload 接收上传：生成ID、原始文件落对象存储、摄取任务入队。
// 上传方立即拿到resume_id，提取和挖掘异步完成。
func (h *ResumeHandler) HandleResumeUpload(ctx context.Context, reader io.Reader, fileSize int64,
	fileName, ownerID string) (*ResumeUploadResponse, error) {

	uuidV7, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("生成resume_id失败: %w", err)
	}
	resumeID := uuidV7.String()

	objectKey := fmt.Sprintf("%s/%s%s", ownerID, resumeID, filepath.Ext(fileName))
	if err := h.storage.MinIO.UploadOriginal(ctx, objectKey, reader, fileSize, fileName); err != nil {
		return nil, fmt.Errorf("上传原始文件失败: %w", err)
	}

	task := &types.IngestTask{
		ResumeID:   resumeID,
		OwnerID:    ownerID,
		ObjectKey:  objectKey,
		FileName:   fileName,
		UploadedAt: time.Now().UTC(),
	}
	if err := h.processor.Enqueue(ctx, task); err != nil {
		return nil, fmt.Errorf("摄取任务入队失败: %w", err)
	}

	logger.Info().
		Str("resume_id", resumeID).
		Str("owner_id", ownerID).
		Str("file_name", fileName).
		Msg("简历上传已受理")
	return &ResumeUploadResponse{ResumeID: resumeID, Status: "PROCESSING"}, nil
}

// ResumeListItem 上传者简历列表中的一项
type ResumeListItem struct {
	ResumeID   string    `json:"resume_id"`
	FileName   string    `json:"file_name"`
	Skills     []string  `json:"skills"`
	UploadedAt time.Time `json:"uploaded_at"`
}

// HandleListResumes 列出某个上传者已完成摄取的简历
func (h *ResumeHandler) HandleListResumes(ctx context.Context, ownerID string) ([]ResumeListItem, error) {
	ids, err := h.storage.Redis.ListOwnerResumeIDs(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	items := make([]ResumeListItem, 0, len(ids))
	for _, id := range ids {
		record, err := h.storage.Redis.GetResumeRecord(ctx, id)
		if err != nil {
			logger.Warn().Err(err).Str("resume_id", id).Msg("读取简历记录失败，跳过")
			continue
		}
		items = append(items, ResumeListItem{
			ResumeID:   record.ResumeID,
			FileName:   record.FileName,
			Skills:     record.Skills,
			UploadedAt: record.UploadedAt,
		})
	}
	return items, nil
}
