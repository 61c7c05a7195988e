package storage

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/minio/minio-go/v7/pkg/lifecycle"

	"resume-match-go/internal/config"
	"resume-match-go/internal/logger"
)

// ObjectStorage 对象存储能力
type ObjectStorage interface {
	UploadOriginal(ctx context.Context, objectKey string, reader io.Reader, size int64, fileName string) error
	DownloadToFile(ctx context.Context, objectKey, localPath string) error
	PresignGet(ctx context.Context, objectKey string, expiry time.Duration) (string, error)
	Close() error
}

var _ ObjectStorage = (*MinIO)(nil)

// MinIO 原始简历文件的对象存储实现
type MinIO struct {
	client *minio.Client
	cfg    *config.MinIOConfig
}

// NewMinIO 创建MinIO客户端，确保原始文件桶存在并应用生命周期规则
func NewMinIO(ctx context.Context, cfg *config.MinIOConfig) (*MinIO, error) {
	if cfg == nil || cfg.Endpoint == "" {
		return nil, fmt.Errorf("MinIO endpoint配置不能为空")
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("创建MinIO客户端失败: %w", err)
	}

	m := &MinIO{client: client, cfg: cfg}
	if err := m.ensureBucket(ctx); err != nil {
		return nil, err
	}
	logger.Info().Str("endpoint", cfg.Endpoint).Str("bucket", cfg.OriginalsBucket).Msg("MinIO客户端已就绪")
	return m, nil
}

func (m *MinIO) ensureBucket(ctx context.Context) error {
	exists, err := m.client.BucketExists(ctx, m.cfg.OriginalsBucket)
	if err != nil {
		return fmt.Errorf("检查存储桶失败: %w", err)
	}
	if !exists {
		if err := m.client.MakeBucket(ctx, m.cfg.OriginalsBucket, minio.MakeBucketOptions{Region: m.cfg.Location}); err != nil {
			return fmt.Errorf("创建存储桶失败: %w", err)
		}
		logger.Info().Str("bucket", m.cfg.OriginalsBucket).Msg("已创建存储桶")
	}

	if m.cfg.OriginalFileExpireDays > 0 {
		lc := lifecycle.NewConfiguration()
		lc.Rules = []lifecycle.Rule{{
			ID:         "expire-originals",
			Status:     "Enabled",
			Expiration: lifecycle.Expiration{Days: lifecycle.ExpirationDays(m.cfg.OriginalFileExpireDays)},
		}}
		if err := m.client.SetBucketLifecycle(ctx, m.cfg.OriginalsBucket, lc); err != nil {
			// 生命周期规则失败不阻塞启动
			logger.Warn().Err(err).Str("bucket", m.cfg.OriginalsBucket).Msg("设置存储桶生命周期失败")
		}
	}
	return nil
}

// UploadOriginal 上传原始简历文件
func (m *MinIO) UploadOriginal(ctx context.Context, objectKey string, reader io.Reader, size int64, fileName string) error {
	_, err := m.client.PutObject(ctx, m.cfg.OriginalsBucket, objectKey, reader, size, minio.PutObjectOptions{
		ContentType: contentTypeForFile(fileName),
	})
	if err != nil {
		return fmt.Errorf("上传原始文件失败 (key=%s): %w", objectKey, err)
	}
	logger.Debug().Str("object_key", objectKey).Int64("size", size).Msg("原始文件已上传")
	return nil
}

// DownloadToFile 将对象下载到本地文件
func (m *MinIO) DownloadToFile(ctx context.Context, objectKey, localPath string) error {
	if err := m.client.FGetObject(ctx, m.cfg.OriginalsBucket, objectKey, localPath, minio.GetObjectOptions{}); err != nil {
		return fmt.Errorf("下载原始文件失败 (key=%s): %w", objectKey, err)
	}
	return nil
}

// PresignGet 为对象签发限时下载链接
func (m *MinIO) PresignGet(ctx context.Context, objectKey string, expiry time.Duration) (string, error) {
	u, err := m.client.PresignedGetObject(ctx, m.cfg.OriginalsBucket, objectKey, expiry, nil)
	if err != nil {
		return "", fmt.Errorf("生成预签名URL失败 (key=%s): %w", objectKey, err)
	}
	return u.String(), nil
}

// Close 实现ObjectStorage接口。minio客户端没有需要释放的连接。
func (m *MinIO) Close() error {
	return nil
}

// contentTypeForFile 按扩展名推断Content-Type
func contentTypeForFile(fileName string) string {
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".pdf":
		return "application/pdf"
	case ".docx":
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	case ".doc":
		return "application/msword"
	case ".txt", ".text":
		return "text/plain"
	case ".md":
		return "text/markdown"
	default:
		return "application/octet-stream"
	}
}
