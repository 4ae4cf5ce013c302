package consumer

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/radieske/campus-bet-ledger/pkg/contracts/events"
	"github.com/radieske/campus-bet-ledger/pkg/rank"
)

// StandingsRepo lê os usuários elegíveis do banco
type StandingsRepo interface {
	ListBettors(ctx context.Context) ([]rank.Entrant, error)
}

// StandingsCache grava o snapshot de classificação
type StandingsCache interface {
	SetStandings(ctx context.Context, s []rank.Standing) error
}

// Processor consome eventos question_settled do Kafka e atualiza o cache de
// classificação a partir do estado pós-liquidação do banco.
// Callbacks de métricas podem ser usadas para monitoramento de cada etapa
type Processor struct {
	Log    *zap.Logger
	Reader *kafka.Reader
	Repo   StandingsRepo
	Cache  StandingsCache
	DLQ    *kafka.Writer // opcional: mensagens indecifráveis vão pra cá

	OnConsumed  func()       // métricas (counter++)
	OnRefreshed func()       // métricas
	OnError     func(string) // métricas por fase
}

// Run inicia o loop principal de consumo e atualização da classificação
func (p *Processor) Run(ctx context.Context) error {
	for {
		m, err := p.Reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err() // encerra se o contexto for cancelado
			}
			p.Log.Warn("kafka read failed", zap.Error(err))
			if p.OnError != nil {
				p.OnError("read")
			}
			time.Sleep(500 * time.Millisecond)
			continue
		}

		if p.OnConsumed != nil {
			p.OnConsumed() // callback de métrica: mensagem consumida
		}

		var ev events.QuestionSettled
		if err := json.Unmarshal(m.Value, &ev); err != nil {
			p.Log.Warn("invalid message", zap.Error(err))
			if p.OnError != nil {
				p.OnError("decode")
			}
			p.sendToDLQ(ctx, m)
			continue
		}

		if err := p.Refresh(ctx); err != nil {
			p.Log.Warn("standings refresh failed", zap.String("questionId", ev.QuestionID), zap.Error(err))
			if p.OnError != nil {
				p.OnError("refresh")
			}
			continue
		}

		if p.OnRefreshed != nil {
			p.OnRefreshed()
		}
		p.Log.Info("standings refreshed",
			zap.String("questionId", ev.QuestionID),
			zap.Int("betsSettled", ev.BetsSettled),
			zap.Int64("totalPaid", ev.TotalPaid),
		)
	}
}

// Refresh recalcula a classificação do banco e grava no cache.
// O cálculo é o mesmo rank.Standings servido pela API: uma única fonte de verdade.
func (p *Processor) Refresh(ctx context.Context) error {
	entrants, err := p.Repo.ListBettors(ctx)
	if err != nil {
		return err
	}
	return p.Cache.SetStandings(ctx, rank.Standings(entrants))
}

// sendToDLQ encaminha a mensagem crua pra DLQ, se configurada
func (p *Processor) sendToDLQ(ctx context.Context, m kafka.Message) {
	if p.DLQ == nil {
		return
	}
	wctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := p.DLQ.WriteMessages(wctx, kafka.Message{Key: m.Key, Value: m.Value}); err != nil {
		p.Log.Warn("dlq write failed", zap.Error(err))
		if p.OnError != nil {
			p.OnError("dlq")
		}
	}
}
