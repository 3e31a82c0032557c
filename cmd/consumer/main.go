// Package main provides the notification consumer for action events
// published to Redis Streams.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/rueidis"

	"github.com/ecolog-app/ecolog/internal/config"
	"github.com/ecolog-app/ecolog/internal/logger"
	"github.com/ecolog-app/ecolog/internal/model"
	"github.com/ecolog-app/ecolog/internal/service"
)

const (
	consumerGroup     = "notifications"
	redisBlockTimeout = 1000 // milliseconds
	errorRetryDelay   = 1 * time.Second
	signalBufferSize  = 1
	exitCode          = 1
)

// EventHandler processes action events from Redis Streams.
type EventHandler struct {
	redisClient rueidis.Client
}

// NewEventHandler creates a new event handler instance.
func NewEventHandler(redisClient rueidis.Client) *EventHandler {
	return &EventHandler{
		redisClient: redisClient,
	}
}

// HandleActionLoggedEvent notifies the user about the points earned by
// a freshly logged action.
func (h *EventHandler) HandleActionLoggedEvent(ctx context.Context, event *model.ActionLoggedEvent) error {
	slog.Info("processing action event",
		slog.String("event_type", string(model.EventActionLogged)),
		slog.String("action_id", event.ActionID),
		slog.String("user_id", event.UserID),
		slog.String("category", string(event.Category)),
	)

	if err := h.sendPointsNotification(ctx, event); err != nil {
		return err
	}

	slog.Info("action event processed successfully",
		slog.String("action_id", event.ActionID),
	)

	return nil
}

func (*EventHandler) sendPointsNotification(_ context.Context, event *model.ActionLoggedEvent) error {
	// TODO: deliver through the notification service once it exists.
	slog.Info("sending points notification",
		slog.String("user_id", event.UserID),
		slog.Int("points_earned", event.PointsEarned),
		slog.Float64("co2_reduced", event.CO2Reduced),
	)

	return nil
}

func setupRedisClient(cfg *config.Config) (rueidis.Client, error) {
	redisClient, err := rueidis.NewClient(rueidis.ClientOption{
		InitAddress: []string{cfg.RedisAddr},
	})
	if err != nil {
		return nil, err
	}

	return redisClient, nil
}

func setupSignalHandling() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, signalBufferSize)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		slog.Info("shutdown signal received, stopping consumer")
		cancel()
	}()

	return ctx, cancel
}

func createConsumerGroup(ctx context.Context, redisClient rueidis.Client, streamKey, groupName string) {
	createGroupCmd := redisClient.B().XgroupCreate().Key(streamKey).Group(groupName).Id("0").Mkstream().Build()
	if err := redisClient.Do(ctx, createGroupCmd).Error(); err != nil {
		slog.Info("consumer group creation result (may already exist)", slog.String("error", err.Error()))
	}
}

func runConsumerLoop(ctx context.Context, handler *EventHandler, streamKey, groupName, consumerName string) {
	for {
		select {
		case <-ctx.Done():
			slog.Info("consumer stopped")
			return
		default:
			if err := handler.consumeMessages(ctx, streamKey, groupName, consumerName); err != nil {
				slog.Error("error consuming messages", slog.String("error", err.Error()))
				time.Sleep(errorRetryDelay)
			}
		}
	}
}

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(exitCode)
	}

	loggerInstance := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(loggerInstance)

	redisClient, err := setupRedisClient(cfg)
	if err != nil {
		slog.Error("failed to connect to Redis", slog.String("error", err.Error()))
		os.Exit(exitCode)
	}
	defer redisClient.Close()

	handler := NewEventHandler(redisClient)
	ctx, cancel := setupSignalHandling()
	defer cancel()

	streamKey := service.ActionEventStream
	consumerName := cfg.ConsumerName

	createConsumerGroup(ctx, redisClient, streamKey, consumerGroup)

	slog.Info("starting event consumer",
		slog.String("service", "consumer"),
		slog.String("stream", streamKey),
		slog.String("group", consumerGroup),
		slog.String("consumer", consumerName),
	)

	runConsumerLoop(ctx, handler, streamKey, consumerGroup, consumerName)
}

func (h *EventHandler) readMessages(
	ctx context.Context,
	streamKey, groupName, consumerName string,
) (map[string][]rueidis.XRangeEntry, error) {
	readCmd := h.redisClient.B().Xreadgroup().Group(groupName, consumerName).
		Count(1).
		Block(redisBlockTimeout).
		Streams().
		Key(streamKey).
		Id(">").
		Build()

	result := h.redisClient.Do(ctx, readCmd)
	if err := result.Error(); err != nil {
		if rueidis.IsRedisNil(err) {
			return nil, nil // timeout, nothing pending
		}

		return nil, err
	}

	return result.AsXRead()
}

func (h *EventHandler) acknowledgeMessage(ctx context.Context, streamKey, groupName, messageID string) {
	ackCmd := h.redisClient.B().Xack().Key(streamKey).Group(groupName).Id(messageID).Build()
	if err := h.redisClient.Do(ctx, ackCmd).Error(); err != nil {
		slog.Error("failed to ACK message",
			slog.String("message_id", messageID),
			slog.String("error", err.Error()),
		)
	} else {
		slog.Debug("ACKed message", slog.String("message_id", messageID))
	}
}

func (h *EventHandler) processStreamMessages(
	ctx context.Context,
	streamKey, groupName string,
	messages []rueidis.XRangeEntry,
) {
	for _, message := range messages {
		if err := h.processMessage(ctx, message); err != nil {
			slog.Error("failed to process message",
				slog.String("message_id", message.ID),
				slog.String("error", err.Error()),
			)

			continue
		}

		h.acknowledgeMessage(ctx, streamKey, groupName, message.ID)
	}
}

func (h *EventHandler) consumeMessages(ctx context.Context, streamKey, groupName, consumerName string) error {
	streams, err := h.readMessages(ctx, streamKey, groupName, consumerName)
	if err != nil {
		return err
	}

	if streams == nil {
		return nil
	}

	for streamName, messages := range streams {
		slog.Debug("processing stream",
			slog.String("stream", streamName),
			slog.Int("message_count", len(messages)),
		)
		h.processStreamMessages(ctx, streamKey, groupName, messages)
	}

	return nil
}

func (h *EventHandler) processMessage(ctx context.Context, message rueidis.XRangeEntry) error {
	slog.Debug("received message",
		slog.String("message_id", message.ID),
		slog.Any("fields", message.FieldValues),
	)

	eventType, ok := message.FieldValues["event_type"]
	if !ok {
		return errors.New("missing event_type in message")
	}

	payloadStr, ok := message.FieldValues["payload"]
	if !ok {
		return errors.New("missing payload in message")
	}

	switch model.EventAction(eventType) {
	case model.EventActionLogged:
		var event model.ActionLoggedEvent
		if err := json.Unmarshal([]byte(payloadStr), &event); err != nil {
			return fmt.Errorf("failed to parse action_logged payload: %w", err)
		}

		return h.HandleActionLoggedEvent(ctx, &event)
	default:
		slog.Warn("unknown event type", slog.String("event_type", eventType))
		return nil // ignore unknown event types
	}
}
