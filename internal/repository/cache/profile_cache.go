// Package cache decorates repositories with a Redis read-through cache.
package cache

import (
	"context"
	"errors"
	"time"

	"go-profile-portal/internal/domain"
	"go-profile-portal/pkg/logger"
	"go-profile-portal/pkg/redis"
)

const distinctSkillsKey = "distinct_skills"

// JSONCache is the subset of redis.Cache used here.
type JSONCache interface {
	GetJSON(ctx context.Context, key string, dst any) (bool, error)
	SetJSON(ctx context.Context, key string, v any, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// ProfileRepository caches the distinct skill list shown on the export page.
// Every other method goes straight to the wrapped repository.
type ProfileRepository struct {
	domain.ProfileRepository
	cache JSONCache
	ttl   time.Duration
}

func NewProfileRepository(inner domain.ProfileRepository, c JSONCache, ttl time.Duration) *ProfileRepository {
	return &ProfileRepository{ProfileRepository: inner, cache: c, ttl: ttl}
}

func (r *ProfileRepository) DistinctSkills(ctx context.Context) ([]string, error) {
	var cached []string
	ok, err := r.cache.GetJSON(ctx, distinctSkillsKey, &cached)
	if ok {
		return cached, nil
	}
	if err != nil && !errors.Is(err, redis.ErrNoClient) {
		logger.Log.Warn("skills cache read failed", "error", err)
	}

	all, err := r.ProfileRepository.DistinctSkills(ctx)
	if err != nil {
		return nil, err
	}
	if err := r.cache.SetJSON(ctx, distinctSkillsKey, all, r.ttl); err != nil && !errors.Is(err, redis.ErrNoClient) {
		logger.Log.Warn("skills cache write failed", "error", err)
	}
	return all, nil
}

// UpdateWithUser drops the cached skill list once the write commits.
func (r *ProfileRepository) UpdateWithUser(ctx context.Context, profile *domain.Profile, user *domain.User) error {
	if err := r.ProfileRepository.UpdateWithUser(ctx, profile, user); err != nil {
		return err
	}
	if err := r.cache.Delete(ctx, distinctSkillsKey); err != nil && !errors.Is(err, redis.ErrNoClient) {
		logger.Log.Warn("skills cache invalidation failed", "error", err)
	}
	return nil
}
