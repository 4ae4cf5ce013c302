package producer

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/radieske/campus-bet-ledger/pkg/contracts/events"
)

// KafkaPublisher publica os eventos do ledger em seus respectivos tópicos
type KafkaPublisher struct {
	BetPlacedWriter       *kafka.Writer
	QuestionSettledWriter *kafka.Writer
}

func NewKafkaPublisher(betPlaced, questionSettled *kafka.Writer) *KafkaPublisher {
	return &KafkaPublisher{BetPlacedWriter: betPlaced, QuestionSettledWriter: questionSettled}
}

func (p *KafkaPublisher) PublishBetPlaced(ctx context.Context, e events.BetPlaced) error {
	e.TsUnixMs = time.Now().UnixMilli()
	b, _ := json.Marshal(e)
	return p.BetPlacedWriter.WriteMessages(ctx, kafka.Message{Key: []byte(e.BetID), Value: b})
}

func (p *KafkaPublisher) PublishQuestionSettled(ctx context.Context, e events.QuestionSettled) error {
	e.TsUnixMs = time.Now().UnixMilli()
	b, _ := json.Marshal(e)
	return p.QuestionSettledWriter.WriteMessages(ctx, kafka.Message{Key: []byte(e.QuestionID), Value: b})
}
