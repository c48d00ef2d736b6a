package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/walldriyan/pos11v-sub000/internal/domain/promotion"
)

const defaultCampaignTTL = 5 * time.Minute

// RedisCampaignCache caches each tenant's resolved default campaign so the
// sale path does not hit the database on every bill. Entries expire on a
// short TTL and are dropped eagerly whenever a campaign is saved.
type RedisCampaignCache struct {
	client    *redis.Client
	keyPrefix string
	ttl       time.Duration
}

// NewRedisCampaignCache creates a cache backed by an existing Redis client.
func NewRedisCampaignCache(client *redis.Client) *RedisCampaignCache {
	return &RedisCampaignCache{
		client:    client,
		keyPrefix: "campaign:default:",
		ttl:       defaultCampaignTTL,
	}
}

func (c *RedisCampaignCache) key(tenantID uuid.UUID) string {
	return c.keyPrefix + tenantID.String()
}

// GetDefault returns the cached default campaign for a tenant, or nil on a
// miss. A corrupt entry is treated as a miss and removed.
func (c *RedisCampaignCache) GetDefault(ctx context.Context, tenantID uuid.UUID) (*promotion.Campaign, error) {
	payload, err := c.client.Get(ctx, c.key(tenantID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read cached campaign: %w", err)
	}

	var campaign promotion.Campaign
	if err := json.Unmarshal(payload, &campaign); err != nil {
		c.client.Del(ctx, c.key(tenantID))
		return nil, nil
	}
	return &campaign, nil
}

// SetDefault stores the tenant's default campaign with the cache TTL.
func (c *RedisCampaignCache) SetDefault(ctx context.Context, tenantID uuid.UUID, campaign *promotion.Campaign) error {
	if campaign == nil {
		return nil
	}
	payload, err := json.Marshal(campaign)
	if err != nil {
		return fmt.Errorf("failed to serialize campaign: %w", err)
	}
	if err := c.client.Set(ctx, c.key(tenantID), payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache campaign: %w", err)
	}
	return nil
}

// InvalidateDefault drops the tenant's cached default campaign.
func (c *RedisCampaignCache) InvalidateDefault(ctx context.Context, tenantID uuid.UUID) error {
	if err := c.client.Del(ctx, c.key(tenantID)).Err(); err != nil {
		return fmt.Errorf("failed to invalidate cached campaign: %w", err)
	}
	return nil
}

// NewRedisClient connects to Redis and verifies the connection before
// returning the client.
func NewRedisClient(addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}
