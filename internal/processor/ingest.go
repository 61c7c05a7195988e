package processor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"resume-match-go/internal/logger"
	"resume-match-go/internal/types"
)

// TextExtractor 文本提取能力
type TextExtractor interface {
	Extract(ctx context.Context, filePath string) (string, error)
}

// EntityMiner 实体挖掘能力
type EntityMiner interface {
	Mine(text string) types.MinedEntities
}

// ObjectStore 摄取需要的对象存储子集
type ObjectStore interface {
	DownloadToFile(ctx context.Context, objectKey, localPath string) error
}

// RecordStore 摄取需要的记录存储子集
type RecordStore interface {
	SaveResumeRecord(ctx context.Context, record *types.ResumeRecord) error
}

// SearchIndex 摄取需要的索引子集
type SearchIndex interface {
	IndexResume(ctx context.Context, doc *types.ResumeDocument) error
}

// TaskQueue 摄取任务的发布与消费
type TaskQueue interface {
	PublishJSON(ctx context.Context, exchangeName, routingKey string, data interface{}, persistent bool) error
	StartConsumer(queueName string, prefetchCount int, handler func([]byte) bool) (chan<- struct{}, error)
}

// Components 摄取处理器依赖的外部能力，进程启动时注入
type Components struct {
	Extractor TextExtractor
	Miner     EntityMiner
	Objects   ObjectStore
	Records   RecordStore
	Index     SearchIndex
	Queue     TaskQueue
}

// Settings 摄取处理器的运行参数
type Settings struct {
	Exchange      string // 摄取事件交换机
	RoutingKey    string // 上传事件路由键
	Queue         string // 摄取队列
	PrefetchCount int
	Workers       int // 并发消费者数量
}

// Processor 简历摄取处理器。每条摄取任务是一个严格顺序的工作单元：
// 下载、提取、挖掘、持久化、索引；不同任务之间互不共享可变状态。
type Processor struct {
	c      Components
	s      Settings
	tracer trace.Tracer
}

// NewProcessor 创建摄取处理器
func NewProcessor(c Components, s Settings) (*Processor, error) {
	if c.Extractor == nil || c.Miner == nil || c.Objects == nil ||
		c.Records == nil || c.Index == nil || c.Queue == nil {
		return nil, fmt.Errorf("摄取处理器的依赖组件不完整")
	}
	if s.Workers <= 0 {
		s.Workers = 1
	}
	if s.PrefetchCount <= 0 {
		s.PrefetchCount = 1
	}
	return &Processor{
		c:      c,
		s:      s,
		tracer: otel.Tracer("resume-match-go/processor"),
	}, nil
}

// Enqueue 发布摄取任务。调用方在此之后即可向上游返回resume_id，
// 实际处理由消费者异步完成。
func (p *Processor) Enqueue(ctx context.Context, task *types.IngestTask) error {
	if err := p.c.Queue.PublishJSON(ctx, p.s.Exchange, p.s.RoutingKey, task, true); err != nil {
		return NewStorageError(task.ResumeID, "enqueue", err)
	}
	logger.Info().
		Str("resume_id", task.ResumeID).
		Str("owner_id", task.OwnerID).
		Msg("摄取任务已入队")
	return nil
}

// StartConsumers 启动摄取消费者，返回停止函数
func (p *Processor) StartConsumers() (func(), error) {
	stops := make([]chan<- struct{}, 0, p.s.Workers)
	for i := 0; i < p.s.Workers; i++ {
		stop, err := p.c.Queue.StartConsumer(p.s.Queue, p.s.PrefetchCount, p.handleDelivery)
		if err != nil {
			for _, s := range stops {
				close(s)
			}
			return nil, fmt.Errorf("启动摄取消费者失败: %w", err)
		}
		stops = append(stops, stop)
	}

	return func() {
		for _, s := range stops {
			close(s)
		}
	}, nil
}

// handleDelivery 消费一条摄取消息。
// 返回true确认消息；存储类失败返回false让消息重新入队重试，
// 其余失败（格式、提取）属于永久性错误，确认后丢弃。
func (p *Processor) handleDelivery(body []byte) bool {
	var task types.IngestTask
	if err := json.Unmarshal(body, &task); err != nil {
		logger.Error().Err(err).Msg("摄取消息格式非法，丢弃")
		return true
	}

	err := p.ProcessTask(context.Background(), &task)
	if err == nil {
		return true
	}

	if IsRetryable(err) {
		logger.Warn().Err(err).Str("resume_id", task.ResumeID).Msg("摄取失败，消息重新入队")
		return false
	}
	logger.Error().Err(err).Str("resume_id", task.ResumeID).Msg("摄取永久失败，丢弃消息")
	return true
}

// ProcessTask 执行一个完整的摄取单元。
// 临时文件归本单元所有：无论成功失败都会清理，清理失败只记日志。
// 任何阶段失败都不会留下部分写入的记录。
func (p *Processor) ProcessTask(ctx context.Context, task *types.IngestTask) (err error) {
	ctx, span := p.tracer.Start(ctx, "processor.ProcessTask", trace.WithAttributes(
		attribute.String("resume_id", task.ResumeID),
		attribute.String("owner_id", task.OwnerID),
	))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	tmpPath, err := p.createTempFile(task.FileName)
	if err != nil {
		return NewProcessError(task.ResumeID, StageDownload, err)
	}
	defer func() {
		if removeErr := os.Remove(tmpPath); removeErr != nil && !os.IsNotExist(removeErr) {
			// 清理失败不影响摄取结果
			logger.Warn().Err(removeErr).Str("tmp_path", tmpPath).Msg("清理临时文件失败")
		}
	}()

	if err := p.download(ctx, task, tmpPath); err != nil {
		return err
	}

	text, err := p.extract(ctx, task, tmpPath)
	if err != nil {
		return err
	}

	entities := p.mine(ctx, text)

	record := &types.ResumeRecord{
		ResumeID:   task.ResumeID,
		OwnerID:    task.OwnerID,
		ObjectKey:  task.ObjectKey,
		FileName:   task.FileName,
		Emails:     entities.Emails,
		Phones:     entities.Phones,
		Skills:     entities.Skills,
		FullText:   text,
		UploadedAt: task.UploadedAt,
	}
	if err := p.persist(ctx, record); err != nil {
		return err
	}

	if err := p.indexDocument(ctx, record, text); err != nil {
		return err
	}

	logger.Info().
		Str("resume_id", task.ResumeID).
		Int("email_count", len(entities.Emails)).
		Int("phone_count", len(entities.Phones)).
		Int("skill_count", len(entities.Skills)).
		Msg("简历摄取完成")
	return nil
}

func (p *Processor) createTempFile(fileName string) (string, error) {
	tmpFile, err := os.CreateTemp("", "resume-*"+filepath.Ext(fileName))
	if err != nil {
		return "", fmt.Errorf("创建临时文件失败: %w", err)
	}
	tmpPath := tmpFile.Name()
	if err := tmpFile.Close(); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("关闭临时文件失败: %w", err)
	}
	return tmpPath, nil
}

func (p *Processor) download(ctx context.Context, task *types.IngestTask, tmpPath string) error {
	ctx, span := p.tracer.Start(ctx, "processor.download")
	defer span.End()

	if err := p.c.Objects.DownloadToFile(ctx, task.ObjectKey, tmpPath); err != nil {
		span.RecordError(err)
		return NewStorageError(task.ResumeID, StageDownload, err)
	}
	return nil
}

func (p *Processor) extract(ctx context.Context, task *types.IngestTask, tmpPath string) (string, error) {
	ctx, span := p.tracer.Start(ctx, "processor.extract")
	defer span.End()

	text, err := p.c.Extractor.Extract(ctx, tmpPath)
	if err != nil {
		span.RecordError(err)
		return "", NewProcessError(task.ResumeID, StageExtract, err)
	}
	span.SetAttributes(attribute.Int("text_length", len(text)))
	return text, nil
}

func (p *Processor) mine(ctx context.Context, text string) types.MinedEntities {
	_, span := p.tracer.Start(ctx, "processor.mine")
	defer span.End()

	entities := p.c.Miner.Mine(text)
	span.SetAttributes(
		attribute.Int("email_count", len(entities.Emails)),
		attribute.Int("phone_count", len(entities.Phones)),
		attribute.Int("skill_count", len(entities.Skills)),
	)
	return entities
}

func (p *Processor) persist(ctx context.Context, record *types.ResumeRecord) error {
	ctx, span := p.tracer.Start(ctx, "processor.persist")
	defer span.End()

	if err := p.c.Records.SaveResumeRecord(ctx, record); err != nil {
		span.RecordError(err)
		return NewStorageError(record.ResumeID, StagePersist, err)
	}
	return nil
}

func (p *Processor) indexDocument(ctx context.Context, record *types.ResumeRecord, fullText string) error {
	ctx, span := p.tracer.Start(ctx, "processor.index")
	defer span.End()

	doc := &types.ResumeDocument{
		ResumeID:  record.ResumeID,
		OwnerID:   record.OwnerID,
		ObjectKey: record.ObjectKey,
		FileName:  record.FileName,
		Emails:    record.Emails,
		Phones:    record.Phones,
		Skills:    record.Skills,
		FullText:  fullText,
	}
	if err := p.c.Index.IndexResume(ctx, doc); err != nil {
		span.RecordError(err)
		return NewStorageError(record.ResumeID, StageIndex, err)
	}
	return nil
}

// IsRetryable 判断摄取错误是否值得重试。
// 存储类失败通常是暂时的，且写入幂等；格式与提取失败重试无意义。
func IsRetryable(err error) bool {
	return errors.Is(err, ErrStorage)
}
