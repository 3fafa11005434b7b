package internal

import (
	"fmt"

	"github.com/confluentinc/confluent-kafka-go/kafka"

	"github.com/tasktrail/tasktrail-api/internal/envvar"
)

// KafkaProducer holds the producer and the topic events are published to.
type KafkaProducer struct {
	Producer *kafka.Producer
	Topic    string
}

// KafkaConsumer holds the consumer subscribed to the events topic.
type KafkaConsumer struct {
	Consumer *kafka.Consumer
}

// NewKafkaProducer instantiates the Kafka producer using configuration defined
// in environment variables.
func NewKafkaProducer(conf *envvar.Configuration) (*KafkaProducer, error) {
	host, topic, err := kafkaSettings(conf)
	if err != nil {
		return nil, err
	}

	config := kafka.ConfigMap{
		"bootstrap.servers": host,
	}

	producer, err := kafka.NewProducer(&config)
	if err != nil {
		return nil, fmt.Errorf("kafka.NewProducer %w", err)
	}

	return &KafkaProducer{
		Producer: producer,
		Topic:    topic,
	}, nil
}

// NewKafkaConsumer instantiates the Kafka consumer using configuration defined
// in environment variables.
func NewKafkaConsumer(conf *envvar.Configuration, groupID string) (*KafkaConsumer, error) {
	host, topic, err := kafkaSettings(conf)
	if err != nil {
		return nil, err
	}

	config := kafka.ConfigMap{
		"bootstrap.servers":  host,
		"group.id":           groupID,
		"auto.offset.reset":  "earliest",
		"enable.auto.commit": false,
	}

	consumer, err := kafka.NewConsumer(&config)
	if err != nil {
		return nil, fmt.Errorf("kafka.NewConsumer %w", err)
	}

	if err := consumer.Subscribe(topic, nil); err != nil {
		return nil, fmt.Errorf("consumer.Subscribe %w", err)
	}

	return &KafkaConsumer{
		Consumer: consumer,
	}, nil
}

func kafkaSettings(conf *envvar.Configuration) (host, topic string, err error) {
	host, err = conf.Get("KAFKA_HOST")
	if err != nil {
		return "", "", fmt.Errorf("conf.Get KAFKA_HOST: %w", err)
	}

	topic, err = conf.Get("KAFKA_TOPIC")
	if err != nil {
		return "", "", fmt.Errorf("conf.Get KAFKA_TOPIC: %w", err)
	}

	return host, topic, nil
}
