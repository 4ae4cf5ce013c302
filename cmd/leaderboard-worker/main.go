package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/radieske/campus-bet-ledger/internal/leaderboard-worker/cache"
	"github.com/radieske/campus-bet-ledger/internal/leaderboard-worker/consumer"
	"github.com/radieske/campus-bet-ledger/internal/leaderboard-worker/repository"
	sharedcache "github.com/radieske/campus-bet-ledger/internal/shared/cache"
	"github.com/radieske/campus-bet-ledger/internal/shared/config"
	"github.com/radieske/campus-bet-ledger/internal/shared/db"
	sharedkafka "github.com/radieske/campus-bet-ledger/internal/shared/kafka"
	"github.com/radieske/campus-bet-ledger/internal/shared/logger"
	"github.com/radieske/campus-bet-ledger/internal/shared/metrics"
)

func main() {
	cfg := config.Load()
	log, err := logger.New(cfg.ServiceName, cfg.Env)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	// Inicializa dependências: Postgres e Redis
	pg, err := db.ConnectPostgres(cfg.PostgresDSN)
	if err != nil {
		log.Fatal("postgres connect", zap.Error(err))
	}
	defer pg.Close()

	redisClient, err := sharedcache.ConnectRedis(cfg.RedisAddr)
	if err != nil {
		log.Fatal("redis connect", zap.Error(err))
	}
	defer redisClient.Close()

	// Cache Redis da classificação e repositório de leitura
	ttl := 60 * time.Second
	rcache := cache.NewRedisCache(redisClient, ttl)
	repo := repository.NewPostgresRepo(pg)

	// Consumer Kafka (consumer group leaderboard)
	reader := sharedkafka.NewReader(cfg.KafkaBrokers, cfg.TopicQuestionSettled, "leaderboard")
	defer reader.Close()

	// DLQ para mensagens indecifráveis
	var dlqWriter *kafka.Writer
	if cfg.TopicQuestionSettledDLQ != "" {
		dlqWriter = sharedkafka.NewWriter(cfg.KafkaBrokers, cfg.TopicQuestionSettledDLQ)
		defer dlqWriter.Close()
	}

	// Métricas Prometheus para monitoramento do processamento
	consumed := prometheus.NewCounter(prometheus.CounterOpts{Name: "leaderboard_events_consumed_total", Help: "eventos consumidos"})
	refreshed := prometheus.NewCounter(prometheus.CounterOpts{Name: "leaderboard_refreshes_total", Help: "atualizações do cache de classificação"})
	errorsBy := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "leaderboard_errors_total", Help: "erros por estágio"}, []string{"stage"})
	prometheus.MustRegister(consumed, refreshed, errorsBy)

	proc := &consumer.Processor{
		Log:         log,
		Reader:      reader,
		Repo:        repo,
		Cache:       rcache,
		DLQ:         dlqWriter,
		OnConsumed:  func() { consumed.Inc() },
		OnRefreshed: func() { refreshed.Inc() },
		OnError:     func(stage string) { errorsBy.WithLabelValues(stage).Inc() },
	}

	// Servidor HTTP para métricas e health check
	metricsSrv := metrics.StartMetricsServer(cfg.MetricsPort, func(ctx context.Context) error {
		if err := pg.PingContext(ctx); err != nil {
			return err
		}
		return redisClient.Ping(ctx).Err()
	})
	log.Info("metrics/health listening", zap.String("addr", metricsSrv.Addr))

	// Sinalização para shutdown gracioso (SIGINT/SIGTERM)
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Popula o cache na subida; um boot sem liquidações recentes ainda serve classificação
	if err := proc.Refresh(ctx); err != nil {
		log.Warn("initial standings refresh failed", zap.Error(err))
	}

	log.Info("leaderboard-worker started", zap.String("consume", cfg.TopicQuestionSettled))
	if err := proc.Run(ctx); err != nil && ctx.Err() == nil {
		log.Fatal("processor stopped with error", zap.Error(err))
	}
	log.Info("leaderboard-worker stopped")
}
