package storage

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"resume-match-go/internal/config"
	"resume-match-go/internal/logger"
	"resume-match-go/internal/types"
)

// ErrRecordNotFound 记录存储中没有对应的简历记录
var ErrRecordNotFound = errors.New("简历记录不存在")

// Redis键前缀
const (
	resumeRecordKeyPrefix = "resume:record:" // 简历记录JSON，按resume_id
	ownerIndexKeyPrefix   = "resume:owner:"  // 上传者的resume_id集合
	vectorCacheKeyPrefix  = "resume:vector:" // 查询文本的向量缓存，按文本哈希
)

// RecordStore 简历记录存储能力
type RecordStore interface {
	SaveResumeRecord(ctx context.Context, record *types.ResumeRecord) error
	GetResumeRecord(ctx context.Context, resumeID string) (*types.ResumeRecord, error)
	ListOwnerResumeIDs(ctx context.Context, ownerID string) ([]string, error)
	Close() error
}

var _ RecordStore = (*Redis)(nil)

// Redis 记录存储与向量缓存的实现
type Redis struct {
	client         *redis.Client
	vectorCacheTTL time.Duration
}

// NewRedis 创建Redis客户端并验证连通性
func NewRedis(ctx context.Context, cfg *config.RedisConfig) (*Redis, error) {
	if cfg == nil || cfg.Address == "" {
		return nil, fmt.Errorf("Redis地址配置不能为空")
	}

	client := redis.NewClient(&redis.Options{
		Addr:            cfg.Address,
		Password:        cfg.Password,
		DB:              cfg.DB,
		PoolSize:        cfg.PoolSize,
		MinIdleConns:    cfg.MinIdleConns,
		DialTimeout:     time.Duration(cfg.DialTimeoutSeconds) * time.Second,
		ReadTimeout:     time.Duration(cfg.ReadTimeoutSeconds) * time.Second,
		WriteTimeout:    time.Duration(cfg.WriteTimeoutSeconds) * time.Second,
		MaxRetries:      cfg.MaxRetries,
		MinRetryBackoff: time.Duration(cfg.MinRetryBackoffMS) * time.Millisecond,
		MaxRetryBackoff: time.Duration(cfg.MaxRetryBackoffMS) * time.Millisecond,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("连接Redis失败 (%s): %w", cfg.Address, err)
	}

	logger.Info().Str("address", cfg.Address).Int("db", cfg.DB).Msg("Redis客户端已就绪")
	return &Redis{
		client:         client,
		vectorCacheTTL: time.Duration(cfg.VectorCacheExpireHours) * time.Hour,
	}, nil
}

// Close 关闭连接
func (r *Redis) Close() error {
	return r.client.Close()
}

// SaveResumeRecord 持久化简历记录并登记到上传者索引。
// 按resume_id幂等：同一记录重复写入结果一致。记录不可变，
// 这里不提供更新或删除。
func (r *Redis) SaveResumeRecord(ctx context.Context, record *types.ResumeRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("序列化简历记录失败: %w", err)
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, resumeRecordKeyPrefix+record.ResumeID, data, 0)
	pipe.SAdd(ctx, ownerIndexKeyPrefix+record.OwnerID, record.ResumeID)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("写入简历记录失败 (resume_id=%s): %w", record.ResumeID, err)
	}
	return nil
}

// GetResumeRecord 按ID读取简历记录
func (r *Redis) GetResumeRecord(ctx context.Context, resumeID string) (*types.ResumeRecord, error) {
	data, err := r.client.Get(ctx, resumeRecordKeyPrefix+resumeID).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("%w: %s", ErrRecordNotFound, resumeID)
	}
	if err != nil {
		return nil, fmt.Errorf("读取简历记录失败 (resume_id=%s): %w", resumeID, err)
	}

	var record types.ResumeRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("反序列化简历记录失败 (resume_id=%s): %w", resumeID, err)
	}
	return &record, nil
}

// ListOwnerResumeIDs 列出某个上传者的全部简历ID
func (r *Redis) ListOwnerResumeIDs(ctx context.Context, ownerID string) ([]string, error) {
	ids, err := r.client.SMembers(ctx, ownerIndexKeyPrefix+ownerID).Result()
	if err != nil {
		return nil, fmt.Errorf("读取上传者索引失败 (owner_id=%s): %w", ownerID, err)
	}
	return ids, nil
}

// GetVector 读取文本的缓存向量，未命中时返回nil而非错误
func (r *Redis) GetVector(ctx context.Context, text string) ([]float64, error) {
	data, err := r.client.Get(ctx, vectorCacheKey(text)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var vector []float64
	if err := json.Unmarshal(data, &vector); err != nil {
		return nil, fmt.Errorf("反序列化缓存向量失败: %w", err)
	}
	return vector, nil
}

// SetVector 缓存文本向量
func (r *Redis) SetVector(ctx context.Context, text string, vector []float64) error {
	data, err := json.Marshal(vector)
	if err != nil {
		return fmt.Errorf("序列化向量失败: %w", err)
	}
	return r.client.Set(ctx, vectorCacheKey(text), data, r.vectorCacheTTL).Err()
}

// vectorCacheKey 以文本哈希作为缓存键，避免超长文本直接入键
func vectorCacheKey(text string) string {
	sum := sha256.Sum256([]byte(text))
	return vectorCacheKeyPrefix + hex.EncodeToString(sum[:])
}
