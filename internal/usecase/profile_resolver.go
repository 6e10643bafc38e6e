package usecase

import (
	"context"
	"time"

	"campusconnect/infrastructure/cache"
	"campusconnect/internal/entity"
	"campusconnect/internal/repository"
	"campusconnect/pkg/logging"
)

const (
	FallbackName      = "Unknown"
	FallbackBio       = "Student"
	FallbackGroupName = "Group Chat"
	DefaultAvatar     = "https://cdn-icons-png.flaticon.com/512/149/149071.png"
	GroupIcon         = "https://cdn-icons-png.flaticon.com/512/681/681494.png"
)

// ProfileResolver turns a user id into display fields. A lookup failure
// degrades to fallbacks for that user only.
type ProfileResolver struct {
	users repository.UserRepository
	cache *cache.MemCache[entity.DisplayProfile]
	ttl   time.Duration
}

// NewProfileResolver caches successful lookups for ttl. A nil cache or a
// non-positive ttl disables caching.
func NewProfileResolver(users repository.UserRepository, c *cache.MemCache[entity.DisplayProfile], ttl time.Duration) *ProfileResolver {
	return &ProfileResolver{users: users, cache: c, ttl: ttl}
}

func (r *ProfileResolver) Resolve(ctx context.Context, userId string) entity.DisplayProfile {
	load := func() (entity.DisplayProfile, error) {
		user, err := r.users.Get(ctx, userId)
		if err != nil {
			return entity.DisplayProfile{}, err
		}
		return entity.DisplayProfile{Name: user.Name, Photo: user.Photo, Bio: user.Bio}, nil
	}

	var (
		profile entity.DisplayProfile
		err     error
	)
	if r.cache != nil && r.ttl > 0 {
		profile, err = r.cache.GetOrLoad(userId, r.ttl, load)
	} else {
		profile, err = load()
	}
	if err != nil {
		logging.FromContext(ctx).Warn("profile lookup failed, using fallback", logging.User(userId), logging.Err(err))
		return entity.DisplayProfile{Name: FallbackName, Photo: DefaultAvatar, Bio: FallbackBio}
	}

	if profile.Name == "" {
		profile.Name = FallbackName
	}
	if profile.Photo == "" {
		profile.Photo = DefaultAvatar
	}
	if profile.Bio == "" {
		profile.Bio = FallbackBio
	}
	return profile
}

// Forget drops a cached profile after it changed.
func (r *ProfileResolver) Forget(userId string) {
	if r.cache != nil {
		r.cache.Delete(userId)
	}
}
