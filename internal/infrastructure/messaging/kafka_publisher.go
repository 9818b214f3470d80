// Package messaging publica los registros conciliados en Kafka (o Redpanda) con franz-go.
package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/twmb/franz-go/pkg/kgo"

	"github.com/jhoicas/conciliador-ubl/internal/application/ports"
	"github.com/jhoicas/conciliador-ubl/internal/domain/entity"
	"github.com/jhoicas/conciliador-ubl/pkg/config"
)

// HeaderRunID cabecera con el identificador del lote.
const HeaderRunID = "conciliador-run-id"

var _ ports.RecordPublisher = (*KafkaPublisher)(nil)

// producer lo que el publicador usa de *kgo.Client.
type producer interface {
	ProduceSync(ctx context.Context, rs ...*kgo.Record) kgo.ProduceResults
	Close()
}

// KafkaPublisher un mensaje JSON por registro, con clave = identidad del registro
// para que las copias de una misma factura caigan en la misma partición.
type KafkaPublisher struct {
	client producer
	topic  string
	log    zerolog.Logger
}

// NewKafkaPublisher crea el cliente. No se conecta hasta el primer Publish.
func NewKafkaPublisher(cfg config.KafkaConfig, log zerolog.Logger) (*KafkaPublisher, error) {
	if len(cfg.Brokers) == 0 {
		return nil, errors.New("kafka: KAFKA_BROKERS vacío")
	}
	if cfg.Topic == "" {
		return nil, errors.New("kafka: KAFKA_TOPIC vacío")
	}
	client, err := kgo.NewClient(
		kgo.SeedBrokers(cfg.Brokers...),
		kgo.DefaultProduceTopic(cfg.Topic),
		kgo.RequiredAcks(kgo.AllISRAcks()),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka: crear cliente: %w", err)
	}
	return newKafkaPublisher(client, cfg.Topic, log), nil
}

func newKafkaPublisher(client producer, topic string, log zerolog.Logger) *KafkaPublisher {
	return &KafkaPublisher{client: client, topic: topic, log: log.With().Str("topic", topic).Logger()}
}

// Publish produce los registros de forma síncrona y devuelve el primer error de entrega.
func (p *KafkaPublisher) Publish(ctx context.Context, runID string, records []*entity.InvoiceRecord) error {
	if len(records) == 0 {
		return nil
	}
	msgs := make([]*kgo.Record, 0, len(records))
	for _, r := range records {
		value, err := json.Marshal(r)
		if err != nil {
			return fmt.Errorf("kafka: serializar %s: %w", r.InvoiceNumber, err)
		}
		msgs = append(msgs, &kgo.Record{
			Topic:   p.topic,
			Key:     []byte(r.Key()),
			Value:   value,
			Headers: []kgo.RecordHeader{{Key: HeaderRunID, Value: []byte(runID)}},
		})
	}

	if err := p.client.ProduceSync(ctx, msgs...).FirstErr(); err != nil {
		return fmt.Errorf("kafka: publicar %d registros: %w", len(msgs), err)
	}
	p.log.Debug().Str("run_id", runID).Int("records", len(msgs)).Msg("registros publicados")
	return nil
}

// Close libera el cliente.
func (p *KafkaPublisher) Close() {
	p.client.Close()
}
