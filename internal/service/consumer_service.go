package service

import (
	"context"
	"encoding/json"

	"axonflow-be/internal/dto"
	"axonflow-be/internal/pkg/logger"
	"axonflow-be/pkg/docproc"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

// consumerService drains the document-processing topic and hands each
// message to the pipeline. Each run is an independent unit of work, so
// multiple documents may process concurrently.
type consumerService struct {
	pubSub    *gochannel.GoChannel
	topicName string
	processor *docproc.Processor
	logger    logger.ILogger
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	processor *docproc.Processor,
	log logger.ILogger,
) IConsumerService {
	return &consumerService{
		pubSub:    pubSub,
		topicName: topicName,
		processor: processor,
		logger:    log,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.ProcessDocumentMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		cs.logger.Error("consumer", "Failed to unmarshal message", map[string]interface{}{
			"error": err.Error(),
		})
		// Ack malformed messages to prevent infinite redelivery.
		msg.Ack()
		return
	}

	cs.logger.Info("consumer", "Processing document", map[string]interface{}{
		"document_id": payload.DocumentId.String(),
		"reprocess":   payload.Reprocess,
	})

	var err error
	if payload.Reprocess {
		err = cs.processor.Reprocess(ctx, payload.DocumentId)
	} else {
		err = cs.processor.Process(ctx, payload.DocumentId)
	}
	if err != nil {
		cs.logger.Error("consumer", "Pipeline run errored", map[string]interface{}{
			"document_id": payload.DocumentId.String(),
			"error":       err.Error(),
		})
		msg.Nack()
		return
	}

	msg.Ack()
}
