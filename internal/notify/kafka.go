package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"

	"github.com/snaggle-market/snaggle/internal/model"
)

// DefaultTopic задаёт топик для событий о завершении аукционов.
const DefaultTopic = "snaggle.auction.ended"

type producer interface {
	ProduceSync(ctx context.Context, rs ...*kgo.Record) kgo.ProduceResults
}

// KafkaPublisher публикует события в Kafka. Ключом записи служит идентификатор аукциона.
type KafkaPublisher struct {
	client producer
	topic  string
}

// NewKafkaPublisher создаёт публикатора поверх готового клиента.
func NewKafkaPublisher(client *kgo.Client, topic string) *KafkaPublisher {
	return newKafkaPublisher(client, topic)
}

func newKafkaPublisher(client producer, topic string) *KafkaPublisher {
	if topic == "" {
		topic = DefaultTopic
	}
	return &KafkaPublisher{client: client, topic: topic}
}

// NewKafkaClient создаёт клиента franz-go для списка брокеров.
func NewKafkaClient(brokers []string, clientID string) (*kgo.Client, error) {
	return kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.ClientID(clientID),
		kgo.RequiredAcks(kgo.AllISRAcks()),
	)
}

func (p *KafkaPublisher) NotifyAuctionEnded(ctx context.Context, event model.AuctionEnded) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	record := &kgo.Record{
		Topic: p.topic,
		Key:   []byte(event.AuctionID),
		Value: payload,
		Headers: []kgo.RecordHeader{
			{Key: "event_id", Value: []byte(event.EventID)},
			{Key: "event_type", Value: []byte("auction.ended")},
		},
	}

	if err := p.client.ProduceSync(ctx, record).FirstErr(); err != nil {
		return fmt.Errorf("produce to %s: %w", p.topic, err)
	}
	return nil
}

// EnsureTopic создаёт топик, если его ещё нет.
func EnsureTopic(ctx context.Context, client *kgo.Client, topic string, partitions int32, replicationFactor int16) error {
	adm := kadm.NewClient(client)

	resp, err := adm.CreateTopics(ctx, partitions, replicationFactor, nil, topic)
	if err != nil {
		return fmt.Errorf("create topic %s: %w", topic, err)
	}
	for _, detail := range resp {
		if detail.Err != nil && !errors.Is(detail.Err, kerr.TopicAlreadyExists) {
			return fmt.Errorf("create topic %s: %w", detail.Topic, detail.Err)
		}
	}
	return nil
}
