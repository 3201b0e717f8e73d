package service

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/persistence"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

// DirectoryService resolves actor and organization lookups for the search
// compiler. Fuzzy lookups are cached in Redis for a short TTL since the
// same qualifier values tend to repeat across searches.
type DirectoryService struct {
	users  repository.UserRepository
	orgs   repository.OrganizationRepository
	cache  *persistence.Redis
	ttl    time.Duration
	logger *zap.Logger
}

// NewDirectoryService constructs the service.
func NewDirectoryService(users repository.UserRepository, orgs repository.OrganizationRepository, cache *persistence.Redis, ttl time.Duration, logger *zap.Logger) *DirectoryService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DirectoryService{
		users:  users,
		orgs:   orgs,
		cache:  cache,
		ttl:    ttl,
		logger: logger,
	}
}

// FindLike fuzzy-matches users on name or email.
func (d *DirectoryService) FindLike(ctx context.Context, text string) ([]domain.User, error) {
	key := "directory:users:" + text
	var cached []domain.User
	if d.readCache(ctx, key, &cached) {
		return cached, nil
	}

	users, err := d.users.FindLike(ctx, text)
	if err != nil {
		return nil, err
	}
	d.writeCache(ctx, key, users)
	return users, nil
}

// CurrentUser returns the authenticated user carried by the request
// context.
func (d *DirectoryService) CurrentUser(ctx context.Context) (*domain.User, error) {
	user, ok := auth.UserFromContext(ctx)
	if !ok {
		return nil, apperrors.NewUnauthorized("no authenticated user")
	}
	return user, nil
}

// FindLikeOrganizations fuzzy-matches organizations on name.
func (d *DirectoryService) FindLikeOrganizations(ctx context.Context, text string) ([]domain.Organization, error) {
	key := "directory:orgs:" + text
	var cached []domain.Organization
	if d.readCache(ctx, key, &cached) {
		return cached, nil
	}

	orgs, err := d.orgs.FindLike(ctx, text)
	if err != nil {
		return nil, err
	}
	d.writeCache(ctx, key, orgs)
	return orgs, nil
}

// OrganizationDirectory adapts the service to the search package's
// organization interface, whose method is also named FindLike.
type OrganizationDirectory struct {
	*DirectoryService
}

// FindLike fuzzy-matches organizations on name.
func (d OrganizationDirectory) FindLike(ctx context.Context, text string) ([]domain.Organization, error) {
	return d.FindLikeOrganizations(ctx, text)
}

func (d *DirectoryService) readCache(ctx context.Context, key string, out any) bool {
	if d.cache == nil || d.cache.Client == nil || d.ttl <= 0 {
		return false
	}
	data, err := d.cache.Client.Get(ctx, key).Bytes()
	if err != nil {
		return false
	}
	if err := json.Unmarshal(data, out); err != nil {
		return false
	}
	return true
}

func (d *DirectoryService) writeCache(ctx context.Context, key string, value any) {
	if d.cache == nil || d.cache.Client == nil || d.ttl <= 0 {
		return
	}
	data, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := d.cache.Client.Set(ctx, key, data, d.ttl).Err(); err != nil {
		d.logger.Debug("directory cache write failed", zap.Error(err))
	}
}
