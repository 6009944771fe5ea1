package producer

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/arenaslot/tournament-platform/pkg/contracts/events"
)

// KafkaPublisher publica os eventos de reserva consumidos pelo roster-projection-worker
type KafkaPublisher struct {
	ReservedWriter *kafka.Writer
	ReleasedWriter *kafka.Writer
}

func NewKafkaPublisher(reserved, released *kafka.Writer) *KafkaPublisher {
	return &KafkaPublisher{ReservedWriter: reserved, ReleasedWriter: released}
}

func (p *KafkaPublisher) PublishSlotReserved(ctx context.Context, e events.SlotReserved) error {
	e.TsUnixMs = time.Now().UnixMilli()
	b, _ := json.Marshal(e)
	return p.ReservedWriter.WriteMessages(ctx, kafka.Message{Key: []byte(e.TournamentID), Value: b})
}

func (p *KafkaPublisher) PublishSlotReleased(ctx context.Context, e events.SlotReleased) error {
	e.TsUnixMs = time.Now().UnixMilli()
	b, _ := json.Marshal(e)
	return p.ReleasedWriter.WriteMessages(ctx, kafka.Message{Key: []byte(e.TournamentID), Value: b})
}
