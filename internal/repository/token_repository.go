package repository

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// TokenRepo keeps the set of revoked session token ids in Redis.  Each entry
// expires together with the token it blocks, so the set never outgrows the
// number of live tokens.
type TokenRepo struct {
	rdb    *redis.Client
	prefix string
}

func NewTokenRepo(rdb *redis.Client, prefix string) *TokenRepo {
	if prefix == "" {
		prefix = "revoked"
	}
	return &TokenRepo{rdb: rdb, prefix: prefix}
}

func (r *TokenRepo) key(tokenID string) string { return r.prefix + ":" + tokenID }

// Revoke blocks tokenID until exp.  Already expired tokens need no entry.
func (r *TokenRepo) Revoke(ctx context.Context, tokenID string, exp time.Time) error {
	if tokenID == "" {
		return errors.New("empty token id")
	}
	ttl := time.Until(exp)
	if ttl <= 0 {
		return nil
	}
	return r.rdb.Set(ctx, r.key(tokenID), 1, ttl).Err()
}

// IsRevoked reports whether tokenID has been revoked.
func (r *TokenRepo) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	if tokenID == "" {
		return false, nil
	}
	n, err := r.rdb.Exists(ctx, r.key(tokenID)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
