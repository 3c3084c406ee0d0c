package kafka

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"filevault/internal/events"

	"github.com/segmentio/kafka-go"
)

type Producer struct {
	fileWriter  *kafka.Writer
	shareWriter *kafka.Writer
}

// NewProducer creates a Kafka producer with writers for both activity topics.
func NewProducer(brokers []string) *Producer {
	fileWriter := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        events.FileActivityTopic,
		Balancer:     &kafka.LeastBytes{},
		WriteTimeout: 10 * time.Second,
		ReadTimeout:  10 * time.Second,
	}

	shareWriter := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        events.ShareActivityTopic,
		Balancer:     &kafka.LeastBytes{},
		WriteTimeout: 10 * time.Second,
		ReadTimeout:  10 * time.Second,
	}

	return &Producer{
		fileWriter:  fileWriter,
		shareWriter: shareWriter,
	}
}

// PublishFileEvent publishes to the file.activity topic.
func (p *Producer) PublishFileEvent(ctx context.Context, event *events.FileEvent) error {
	value, err := json.Marshal(event)
	if err != nil {
		log.Printf("Failed to marshal file event: %v", err)
		return err
	}

	message := kafka.Message{
		Key:   []byte(event.ResourceID),
		Value: value,
		Time:  event.Timestamp,
	}

	if err := p.fileWriter.WriteMessages(ctx, message); err != nil {
		log.Printf("Failed to publish file event: %v", err)
		return err
	}

	log.Printf("Published file event: %s for %s %s", event.EventType, event.ResourceType, event.ResourceID)
	return nil
}

// PublishShareEvent publishes to the share.activity topic.
func (p *Producer) PublishShareEvent(ctx context.Context, event *events.ShareEvent) error {
	value, err := json.Marshal(event)
	if err != nil {
		log.Printf("Failed to marshal share event: %v", err)
		return err
	}

	message := kafka.Message{
		Key:   []byte(event.ResourceID),
		Value: value,
		Time:  event.Timestamp,
	}

	if err := p.shareWriter.WriteMessages(ctx, message); err != nil {
		log.Printf("Failed to publish share event: %v", err)
		return err
	}

	log.Printf("Published share event: %s for %s %s", event.EventType, event.ResourceType, event.ResourceID)
	return nil
}

// Close closes the Kafka writers.
func (p *Producer) Close() error {
	var err1, err2 error
	if p.fileWriter != nil {
		err1 = p.fileWriter.Close()
	}
	if p.shareWriter != nil {
		err2 = p.shareWriter.Close()
	}

	if err1 != nil {
		return err1
	}
	return err2
}
