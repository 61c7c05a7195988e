package storage

import (
	"context"
	"fmt"

	"resume-match-go/internal/config"
	"resume-match-go/internal/logger"
)

// Storage 聚合全部外部存储客户端，进程启动时构建一次，
// 以引用方式传给需要的组件
type Storage struct {
	MinIO    *MinIO
	RabbitMQ *RabbitMQ
	Redis    *Redis
	Elastic  *Elasticsearch
}

// NewStorage 按配置初始化所有存储客户端，任何一个失败都视为启动失败，
// 并回收已建立的连接
func NewStorage(ctx context.Context, cfg *config.Config) (*Storage, error) {
	s := &Storage{}

	var err error
	if s.MinIO, err = NewMinIO(ctx, &cfg.MinIO); err != nil {
		return nil, fmt.Errorf("初始化MinIO失败: %w", err)
	}
	if s.RabbitMQ, err = NewRabbitMQ(&cfg.RabbitMQ); err != nil {
		s.Close()
		return nil, fmt.Errorf("初始化RabbitMQ失败: %w", err)
	}
	if s.Redis, err = NewRedis(ctx, &cfg.Redis); err != nil {
		s.Close()
		return nil, fmt.Errorf("初始化Redis失败: %w", err)
	}
	if s.Elastic, err = NewElasticsearch(ctx, &cfg.Elasticsearch); err != nil {
		s.Close()
		return nil, fmt.Errorf("初始化Elasticsearch失败: %w", err)
	}

	return s, nil
}

// Close 关闭全部已建立的客户端，逐个记录关闭失败
func (s *Storage) Close() {
	if s.RabbitMQ != nil {
		if err := s.RabbitMQ.Close(); err != nil {
			logger.Error().Err(err).Msg("关闭RabbitMQ连接失败")
		}
	}
	if s.Redis != nil {
		if err := s.Redis.Close(); err != nil {
			logger.Error().Err(err).Msg("关闭Redis连接失败")
		}
	}
	if s.Elastic != nil {
		if err := s.Elastic.Close(); err != nil {
			logger.Error().Err(err).Msg("关闭Elasticsearch客户端失败")
		}
	}
	if s.MinIO != nil {
		if err := s.MinIO.Close(); err != nil {
			logger.Error().Err(err).Msg("关闭MinIO客户端失败")
		}
	}
}
