package repository

import (
	"context"
	"strconv"

	"github.com/devayla/base-counter/common/cache"
	"github.com/devayla/base-counter/common/models"
)

// NotificationRepository keeps the push token a host client issued per fid.
type NotificationRepository interface {
	Get(ctx context.Context, fid int64) (*models.NotificationDetails, error)
	Set(ctx context.Context, fid int64, details models.NotificationDetails) error
	Delete(ctx context.Context, fid int64) error
}

type notificationRepo struct {
	redis *cache.RedisClient
}

func NewNotificationRepository(redis *cache.RedisClient) NotificationRepository {
	return &notificationRepo{redis: redis}
}

func notificationKey(fid int64) string {
	return strconv.FormatInt(fid, 10)
}

// Get returns nil when no details are stored
func (r *notificationRepo) Get(ctx context.Context, fid int64) (*models.NotificationDetails, error) {
	var details models.NotificationDetails
	found, err := r.redis.GetJSON(ctx, notificationKey(fid), &details)
	if err != nil || !found {
		return nil, err
	}
	return &details, nil
}

func (r *notificationRepo) Set(ctx context.Context, fid int64, details models.NotificationDetails) error {
	return r.redis.SetJSON(ctx, notificationKey(fid), details, 0)
}

func (r *notificationRepo) Delete(ctx context.Context, fid int64) error {
	return r.redis.Delete(ctx, notificationKey(fid))
}
