package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"io"

	"filevault/internal/events"
	"filevault/pkg/logger"

	"github.com/segmentio/kafka-go"
)

// Consumer reads both activity topics and writes an audit trail to the log.
type Consumer struct {
	fileReader  *kafka.Reader
	shareReader *kafka.Reader
}

func NewConsumer(brokers []string, groupID string) *Consumer {
	fileReader := kafka.NewReader(kafka.ReaderConfig{
		Brokers: brokers,
		GroupID: groupID,
		Topic:   events.FileActivityTopic,
	})

	shareReader := kafka.NewReader(kafka.ReaderConfig{
		Brokers: brokers,
		GroupID: groupID,
		Topic:   events.ShareActivityTopic,
	})

	return &Consumer{
		fileReader:  fileReader,
		shareReader: shareReader,
	}
}

// StartFileEventConsumer blocks, auditing file.activity until ctx is cancelled.
func (c *Consumer) StartFileEventConsumer(ctx context.Context) {
	for {
		message, err := c.fileReader.ReadMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, io.EOF) {
				return
			}
			logger.Log.Error().Err(err).Msg("Failed to read file event")
			continue
		}

		var event events.FileEvent
		if err := json.Unmarshal(message.Value, &event); err != nil {
			logger.Log.Error().Err(err).Str("key", string(message.Key)).Msg("Failed to decode file event")
			continue
		}

		logger.Log.Info().
			Str("event_type", event.EventType).
			Str("resource_type", event.ResourceType).
			Str("resource_id", event.ResourceID).
			Str("owner_id", event.OwnerID).
			Str("action_by", event.ActionBy).
			Time("event_time", event.Timestamp).
			Msg("File activity")
	}
}

// StartShareEventConsumer blocks, auditing share.activity until ctx is cancelled.
func (c *Consumer) StartShareEventConsumer(ctx context.Context) {
	for {
		message, err := c.shareReader.ReadMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, io.EOF) {
				return
			}
			logger.Log.Error().Err(err).Msg("Failed to read share event")
			continue
		}

		var event events.ShareEvent
		if err := json.Unmarshal(message.Value, &event); err != nil {
			logger.Log.Error().Err(err).Str("key", string(message.Key)).Msg("Failed to decode share event")
			continue
		}

		logger.Log.Info().
			Str("event_type", event.EventType).
			Str("resource_type", event.ResourceType).
			Str("resource_id", event.ResourceID).
			Str("grantor_id", event.GrantorID).
			Str("grantee_id", event.GranteeID).
			Str("permission", event.Permission).
			Time("event_time", event.Timestamp).
			Msg("Share activity")
	}
}

// Close closes the Kafka readers.
func (c *Consumer) Close() error {
	var err1, err2 error
	if c.fileReader != nil {
		err1 = c.fileReader.Close()
	}
	if c.shareReader != nil {
		err2 = c.shareReader.Close()
	}

	if err1 != nil {
		return err1
	}
	return err2
}
