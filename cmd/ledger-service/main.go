package main

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	lhttp "github.com/radieske/campus-bet-ledger/internal/ledger-service/http"
	"github.com/radieske/campus-bet-ledger/internal/ledger-service/producer"
	lrepo "github.com/radieske/campus-bet-ledger/internal/ledger-service/repo"
	"github.com/radieske/campus-bet-ledger/internal/ledger-service/standings"
	sharedcache "github.com/radieske/campus-bet-ledger/internal/shared/cache"
	"github.com/radieske/campus-bet-ledger/internal/shared/config"
	"github.com/radieske/campus-bet-ledger/internal/shared/db"
	sharedkafka "github.com/radieske/campus-bet-ledger/internal/shared/kafka"
	"github.com/radieske/campus-bet-ledger/internal/shared/logger"
	"github.com/radieske/campus-bet-ledger/internal/shared/metrics"
)

func main() {
	cfg := config.Load()

	// Inicializa logger estruturado
	log, err := logger.New("ledger-service", cfg.Env)
	if err != nil {
		panic(err)
	}
	defer log.Sync()
	log.Info("starting service", zap.String("service", "ledger-service"), zap.String("env", cfg.Env))

	// Conexão com Postgres para o ledger
	pg, err := db.ConnectPostgres(cfg.PostgresDSN)
	if err != nil {
		log.Fatal("postgres connect", zap.Error(err))
	}
	defer pg.Close()

	// Conexão com Redis para o cache de classificação
	redisClient, err := sharedcache.ConnectRedis(cfg.RedisAddr)
	if err != nil {
		log.Fatal("redis connect", zap.Error(err))
	}
	defer redisClient.Close()

	// Instancia repositório e garante o schema
	repo := lrepo.NewPostgres(pg)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := repo.EnsureSchema(ctx); err != nil {
		cancel()
		log.Fatal("ensure schema", zap.Error(err))
	}
	cancel()

	// Writers Kafka para os eventos do ledger
	betPlacedWriter := sharedkafka.NewWriter(cfg.KafkaBrokers, cfg.TopicBetPlaced)
	defer betPlacedWriter.Close()
	settledWriter := sharedkafka.NewWriter(cfg.KafkaBrokers, cfg.TopicQuestionSettled)
	defer settledWriter.Close()
	publ := producer.NewKafkaPublisher(betPlacedWriter, settledWriter)

	// Cache de classificação (mesma chave escrita pelo leaderboard-worker)
	standingsCache := standings.New(redisClient, 60*time.Second)

	// Métricas Prometheus do ledger
	betsPlaced := prometheus.NewCounter(prometheus.CounterOpts{Name: "ledger_bets_placed_total", Help: "apostas registradas"})
	settled := prometheus.NewCounter(prometheus.CounterOpts{Name: "ledger_questions_settled_total", Help: "perguntas liquidadas"})
	paid := prometheus.NewCounter(prometheus.CounterOpts{Name: "ledger_points_paid_total", Help: "pontos creditados a vencedores"})
	prometheus.MustRegister(betsPlaced, settled, paid)

	api := lhttp.NewServer(log, repo, standingsCache, publ)
	api.OnBetPlaced = func() { betsPlaced.Inc() }
	api.OnSettled = func(_ int, totalPaid int64) {
		settled.Inc()
		paid.Add(float64(totalPaid))
	}

	// Servidor de métricas e health check em porta separada
	metricsSrv := metrics.StartMetricsServer(cfg.MetricsPort, func(ctx context.Context) error {
		if err := pg.PingContext(ctx); err != nil {
			return err
		}
		return redisClient.Ping(ctx).Err()
	})
	log.Info("metrics/health listening", zap.String("addr", metricsSrv.Addr))

	// Servidor principal da API do ledger
	apiSrv := &http.Server{
		Addr:    ":" + cfg.HTTPPort, // ex: 8084
		Handler: api.Router(),
	}
	log.Info("api listening", zap.String("addr", apiSrv.Addr))
	if err := apiSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal("api srv", zap.Error(err))
	}
}
