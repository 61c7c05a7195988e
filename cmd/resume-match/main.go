package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/cloudwego/hertz/pkg/app/server"

	"resume-match-go/internal/api/handler"
	"resume-match-go/internal/api/router"
	"resume-match-go/internal/config"
	"resume-match-go/internal/embedding"
	"resume-match-go/internal/extractor"
	"resume-match-go/internal/logger"
	"resume-match-go/internal/matcher"
	"resume-match-go/internal/miner"
	"resume-match-go/internal/processor"
	"resume-match-go/internal/storage"
)

func main() {
	configPath := flag.String("config", "", "配置文件路径，留空时在默认位置查找")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}

	logger.Init(logger.Config{
		Level:        cfg.Logger.Level,
		Format:       cfg.Logger.Format,
		TimeFormat:   cfg.Logger.TimeFormat,
		ReportCaller: cfg.Logger.ReportCaller,
	})

	ctx := context.Background()

	store, err := storage.NewStorage(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("初始化存储失败")
	}
	defer store.Close()

	textExtractor, err := extractor.New(ctx)
	if err != nil {
		logger.Fatal().Err(err).Msg("初始化文本提取器失败")
	}
	entityMiner := miner.New(cfg.Miner.DefaultRegion)

	proc, err := processor.NewProcessor(processor.Components{
		Extractor: textExtractor,
		Miner:     entityMiner,
		Objects:   store.MinIO,
		Records:   store.Redis,
		Index:     store.Elastic,
		Queue:     store.RabbitMQ,
	}, processor.Settings{
		Exchange:      cfg.RabbitMQ.ResumeEventsExchange,
		RoutingKey:    cfg.RabbitMQ.UploadedRoutingKey,
		Queue:         cfg.RabbitMQ.IngestQueue,
		PrefetchCount: cfg.RabbitMQ.PrefetchCount,
		Workers:       cfg.RabbitMQ.ConsumerWorkers,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("初始化摄取处理器失败")
	}

	stopConsumers, err := proc.StartConsumers()
	if err != nil {
		logger.Fatal().Err(err).Msg("启动摄取消费者失败")
	}
	defer stopConsumers()

	embedder, err := embedding.NewAliyunEmbedder(cfg.Embedding)
	if err != nil {
		logger.Fatal().Err(err).Msg("初始化向量化客户端失败")
	}
	cachedEmbedder := embedding.NewCachedEmbedder(embedder, store.Redis)

	vocabTerms, err := cfg.LoadVocabulary()
	if err != nil {
		logger.Fatal().Err(err).Msg("加载技能词表失败")
	}
	if len(vocabTerms) == 0 {
		logger.Warn().Msg("技能词表为空，关键词重合结果将始终为空")
	}

	semantic := matcher.NewSemanticMatcher(cachedEmbedder, matcher.NewVocabulary(vocabTerms))
	searcher := matcher.NewSearcher(store.Elastic, store.MinIO, cfg.Elasticsearch.SearchLimit,
		time.Duration(cfg.MinIO.PresignExpiryMinutes)*time.Minute)

	resumeHandler := handler.NewResumeHandler(store, proc)
	matchHandler := handler.NewMatchHandler(semantic, searcher, store.Redis)

	h := server.Default(
		server.WithHostPorts(cfg.Server.Address),
		server.WithMaxRequestBodySize(cfg.Server.MaxUploadSizeMB*1024*1024),
		server.WithExitWaitTime(config.GetDuration(cfg.Server.ShutdownTimeout, 10*time.Second)),
	)
	if cfg.Server.EnableAccessLogs {
		h.Use(router.AccessLog())
	}
	router.RegisterRoutes(h, resumeHandler, matchHandler)

	logger.Info().Str("address", cfg.Server.Address).Msg("HTTP服务已启动")
	h.Spin()
}
