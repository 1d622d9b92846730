package service

import (
	"context"

	"golang-stock-advisor/pkg/common"
	"golang-stock-advisor/pkg/logger"

	"github.com/redis/go-redis/v9"
)

// ackNDel acknowledges a consumed stream message and deletes it so the
// stream does not grow unbounded.
func ackNDel(ctx context.Context, redisClient *redis.Client, log *logger.Logger, streamName string, messageID string) error {
	if err := redisClient.XAck(ctx, streamName, common.RedisStreamGroup, messageID).Err(); err != nil {
		log.Error("Failed to acknowledge stream message", logger.ErrorField(err), logger.Field("message_id", messageID))
		return err
	}
	if err := redisClient.XDel(ctx, streamName, messageID).Err(); err != nil {
		log.Error("Failed to delete stream message", logger.ErrorField(err), logger.Field("message_id", messageID))
		return err
	}
	return nil
}
