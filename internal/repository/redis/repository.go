package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/joshdurbin/imagefeed/internal/repository"
)

// TokenKey is the key holding the access token
const TokenKey = "imagefeed:oauth:token"

// Options configures the Redis connection
type Options struct {
	Addr     string
	Password string
	DB       int
}

// Repository implements repository.TokenRepository on top of Redis
type Repository struct {
	client *redis.Client
}

// New connects to Redis and verifies the connection
func New(ctx context.Context, opts Options) (*Repository, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &Repository{client: client}, nil
}

// NewWithClient wraps an existing client
func NewWithClient(client *redis.Client) *Repository {
	return &Repository{client: client}
}

// LoadToken returns the stored token
func (r *Repository) LoadToken(ctx context.Context) (string, error) {
	token, err := r.client.Get(ctx, TokenKey).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", repository.ErrTokenNotFound
		}
		return "", fmt.Errorf("failed to load token: %w", err)
	}
	return token, nil
}

// SaveToken stores the token without expiry
func (r *Repository) SaveToken(ctx context.Context, token string) error {
	if err := r.client.Set(ctx, TokenKey, token, 0).Err(); err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}
	return nil
}

// DeleteToken removes the stored token
func (r *Repository) DeleteToken(ctx context.Context) error {
	if err := r.client.Del(ctx, TokenKey).Err(); err != nil {
		return fmt.Errorf("failed to delete token: %w", err)
	}
	return nil
}

// Close closes the client
func (r *Repository) Close() error {
	return r.client.Close()
}

var _ repository.TokenRepository = (*Repository)(nil)
