package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Listing and share caches. Values are snapshots, never live references;
// invalidation is manual and call-site-driven.
const (
	rootParentKey = "root"

	ListingTTL      = 5 * time.Minute
	SharedWithMeTTL = time.Minute
)

// FolderListingKey is the cache key for one (owner, parent) listing.
func FolderListingKey(ownerID uuid.UUID, parentID *uuid.UUID) string {
	parent := rootParentKey
	if parentID != nil {
		parent = parentID.String()
	}
	return fmt.Sprintf("folders:%s:%s", ownerID, parent)
}

// SharedWithMeKey caches the active grants visible to one user.
func SharedWithMeKey(userID uuid.UUID) string {
	return fmt.Sprintf("shared_with:%s", userID)
}

// SharesOfKey caches the grant list of one resource.
func SharesOfKey(resourceID uuid.UUID) string {
	return fmt.Sprintf("shares_of:%s", resourceID)
}

// Service is a process-scoped cache over redis. A nil *Service is valid and
// degrades to no caching, so tests and cache-less deployments need no stub.
type Service struct {
	client *redis.Client
}

func NewService(addr, password string, db int) *Service {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := client.Ping(ctx).Result(); err != nil {
		log.Printf("Failed to connect to Redis: %v", err)
		return nil
	}

	log.Println("Successfully connected to Redis")
	return &Service{client: client}
}

// GetJSON loads key into dest. The bool reports a cache hit.
func (s *Service) GetJSON(ctx context.Context, key string, dest any) (bool, error) {
	if s == nil || s.client == nil {
		return false, nil
	}

	data, err := s.client.Get(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			return false, nil
		}
		log.Printf("Failed to read cache key %s: %v", key, err)
		return false, err
	}

	if err := json.Unmarshal([]byte(data), dest); err != nil {
		log.Printf("Failed to unmarshal cache key %s: %v", key, err)
		return false, err
	}

	return true, nil
}

func (s *Service) SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error {
	if s == nil || s.client == nil {
		return nil
	}

	data, err := json.Marshal(value)
	if err != nil {
		log.Printf("Failed to marshal cache key %s: %v", key, err)
		return err
	}

	if err := s.client.Set(ctx, key, data, ttl).Err(); err != nil {
		log.Printf("Failed to write cache key %s: %v", key, err)
		return err
	}

	return nil
}

func (s *Service) Remove(ctx context.Context, keys ...string) error {
	if s == nil || s.client == nil || len(keys) == 0 {
		return nil
	}
	return s.client.Del(ctx, keys...).Err()
}

func (s *Service) Close() error {
	if s == nil || s.client == nil {
		return nil
	}
	return s.client.Close()
}
